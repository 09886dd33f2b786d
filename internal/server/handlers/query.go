package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/3leaps/logcove/internal/errors"
	"github.com/3leaps/logcove/internal/metrics"
	"github.com/3leaps/logcove/pkg/catalog"
	"github.com/3leaps/logcove/pkg/counts"
	"github.com/3leaps/logcove/pkg/querycatalog"
	"github.com/3leaps/logcove/pkg/registry"
)

// QueryHandler wires the catalog-backed schema provider (C7) and the
// counts engine (C9) behind the query-side HTTP routes.
type QueryHandler struct {
	Registry *registry.Registry
	Store    *catalog.Store
	Catalog  *querycatalog.Provider
	Counts   *counts.Engine
	Metrics  *metrics.Registry
}

// Delete serves DELETE /logstream/{name} (spec_full §3 expansion): removes
// the stream from the registry and tears down its canonical snapshot.
func (h *QueryHandler) Delete(w http.ResponseWriter, r *http.Request, streamName string) {
	if !h.Registry.Exists(streamName) {
		respondWithError(w, r, apperrors.New(apperrors.KindStreamNotFound, "stream "+streamName+" not found"))
		return
	}
	if err := h.Store.DeleteStream(r.Context(), streamName); err != nil {
		respondWithError(w, r, apperrors.Wrap(apperrors.KindObjectStorageError, "delete stream "+streamName, err))
		return
	}
	h.Registry.Delete(streamName)
	w.WriteHeader(http.StatusOK)
}

// countsRequest is the JSON body for POST /logstream/{name}/count.
type countsRequest struct {
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	NumBins           int       `json:"num_bins"`
	MergeRemainderBin bool      `json:"merge_remainder_bin"`
}

// Count serves POST /logstream/{name}/count, the bin-density counts
// algorithm (C9, spec §4.9).
func (h *QueryHandler) Count(w http.ResponseWriter, r *http.Request, streamName string) {
	if !h.Registry.Exists(streamName) {
		respondWithError(w, r, apperrors.New(apperrors.KindStreamNotFound, "stream "+streamName+" not found"))
		return
	}

	var req countsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, apperrors.Wrap(apperrors.KindSerdeError, "decode count request", err))
		return
	}

	started := time.Now()
	records, err := h.Counts.Compute(r.Context(), counts.Request{
		Stream:            streamName,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		NumBins:           req.NumBins,
		MergeRemainderBin: req.MergeRemainderBin,
	})
	if err != nil {
		respondWithError(w, r, apperrors.Wrap(apperrors.KindInvalid, "compute counts for "+streamName, err))
		return
	}

	if h.Metrics != nil {
		h.Metrics.QueryExecuteTime.WithLabelValues(streamName).Observe(time.Since(started).Seconds())
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"bins": records})
}

// Tables serves GET /tables: every stream the catalog provider knows
// about, for discovery by query clients.
func (h *QueryHandler) Tables(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"tables": h.Catalog.Tables()})
}

// Scan serves GET /logstream/{name}/files?lo=...&hi=...: the files a
// time-range scan against that stream's manifest snapshot would read
// (C7/C2/C1), ahead of the execution engine consuming them.
func (h *QueryHandler) Scan(w http.ResponseWriter, r *http.Request, streamName string) {
	lo, hi, err := parseRange(r)
	if err != nil {
		respondWithError(w, r, apperrors.Wrap(apperrors.KindInvalid, "parse time range", err))
		return
	}

	table, err := h.Catalog.Resolve(r.Context(), streamName)
	if err != nil {
		respondWithError(w, r, apperrors.Wrap(apperrors.KindStreamNotFound, "resolve stream "+streamName, err))
		return
	}

	files, err := table.Scan(r.Context(), lo, hi)
	if err != nil {
		respondWithError(w, r, apperrors.Wrap(apperrors.KindObjectStorageError, "scan stream "+streamName, err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"files": files})
}

func parseRange(r *http.Request) (lo, hi time.Time, err error) {
	loMs, err := strconv.ParseInt(r.URL.Query().Get("lo"), 10, 64)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	hiMs, err := strconv.ParseInt(r.URL.Query().Get("hi"), 10, 64)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return time.UnixMilli(loMs).UTC(), time.UnixMilli(hiMs).UTC(), nil
}

package handlers

import (
	"context"
	"io"
	"net/http"

	apperrors "github.com/3leaps/logcove/internal/errors"
	"github.com/3leaps/logcove/internal/metrics"
	"github.com/3leaps/logcove/pkg/ingest"
)

// IngestHandler wires pkg/ingest.Controller behind the two HTTP ingest
// routes named in spec §6: POST /ingest (stream from header, may
// auto-create) and POST /logstream/{name} (stream must pre-exist).
type IngestHandler struct {
	Controller *ingest.Controller
	Metrics    *metrics.Registry
}

// Ingest serves POST /ingest.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "")
}

// Post serves POST /logstream/{name}.
func (h *IngestHandler) Post(w http.ResponseWriter, r *http.Request, streamName string) {
	h.serve(w, r, streamName)
}

func (h *IngestHandler) serve(w http.ResponseWriter, r *http.Request, streamName string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, r, apperrors.Wrap(apperrors.KindHeader, "read request body", err))
		return
	}

	headers := ingest.Headers(r.Header)
	if err := h.dispatch(r.Context(), streamName, headers, body); err != nil {
		respondWithError(w, r, translateIngestError(err))
		return
	}

	streamLabel := streamName
	if streamLabel == "" {
		streamLabel = headers.Get(ingest.HeaderStream)
	}
	if h.Metrics != nil {
		h.Metrics.EventsIngestedSize.WithLabelValues(streamLabel, "json").Add(float64(len(body)))
	}

	w.WriteHeader(http.StatusOK)
}

func (h *IngestHandler) dispatch(ctx context.Context, streamName string, headers ingest.Headers, body []byte) error {
	if streamName == "" {
		return h.Controller.Ingest(ctx, headers, body)
	}
	return h.Controller.Post(ctx, streamName, headers, body)
}

// translateIngestError adapts a *ingest.Error into the apperrors model;
// the two Kind enums share the same string values by construction (spec
// §7), so this is a straight field copy rather than a lookup table.
func translateIngestError(err error) error {
	ingestErr, ok := err.(*ingest.Error)
	if !ok {
		return apperrors.Wrap(apperrors.KindInternal, err.Error(), err)
	}
	return &apperrors.Error{
		Kind:    apperrors.Kind(ingestErr.Kind),
		Message: ingestErr.Message,
		Err:     ingestErr.Err,
	}
}

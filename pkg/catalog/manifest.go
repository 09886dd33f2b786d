package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Manifest is an append-only list of file entries describing the columnar
// data files within one partition.
type Manifest struct {
	Files []File `json:"files"`
}

// NewManifestFileName generates a unique manifest file name for a flush.
// Grounded on gonimbus's use of github.com/google/uuid for generated
// artifact names (job ids, run ids).
func NewManifestFileName() string {
	return uuid.NewString() + ".manifest.json"
}

// PartitionPath computes the object-store directory for a manifest covering
// [lo, hi]. Same UTC date on both ends collapses to a single-date form;
// otherwise both dates are encoded.
//
// date=YYYY-MM-DD | date=YYYY-MM-DD:YYYY-MM-DD
func PartitionPath(stream string, lo, hi time.Time) string {
	lo = lo.UTC()
	hi = hi.UTC()
	loDate := lo.Format("2006-01-02")
	hiDate := hi.Format("2006-01-02")
	if loDate == hiDate {
		return fmt.Sprintf("%s/date=%s", stream, loDate)
	}
	return fmt.Sprintf("%s/date=%s:%s", stream, loDate, hiDate)
}

// Marshal serializes the manifest to its canonical JSON encoding.
func (m *Manifest) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalManifest parses manifest JSON bytes.
func UnmarshalManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("catalog: parse manifest: %w", err)
	}
	for i := range m.Files {
		if err := m.Files[i].Validate(); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

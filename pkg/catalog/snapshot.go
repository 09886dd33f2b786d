package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// ManifestListItem is one entry in a stream's snapshot: a pointer to a
// manifest file plus the time bounds it covers.
//
// Invariant: TimeLowerBound <= TimeUpperBound; entries are unique by
// ManifestPath within a Snapshot.
type ManifestListItem struct {
	ManifestPath   string    `json:"manifest_path"`
	TimeLowerBound time.Time `json:"time_lower_bound"`
	TimeUpperBound time.Time `json:"time_upper_bound"`
}

// Snapshot is the ordered index of manifests for a stream, keyed by time
// bounds. Overlap between entries is permitted but not required to be
// merged (spec §3).
type Snapshot struct {
	Items []ManifestListItem `json:"items"`
}

// Marshal serializes the snapshot to its canonical JSON encoding.
func (s *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot parses snapshot JSON bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("catalog: parse snapshot: %w", err)
	}
	for _, item := range s.Items {
		if item.TimeLowerBound.After(item.TimeUpperBound) {
			return nil, fmt.Errorf("catalog: snapshot entry %s has lower bound after upper bound", item.ManifestPath)
		}
	}
	return &s, nil
}

// Append adds an entry, overwriting any existing entry with the same
// ManifestPath (last-writer-wins for that path, per spec §5's "last-writer-
// wins per file" rule). Manifests/snapshots are append-only in the sense
// that whole new entries are added; this method only replaces a duplicate
// of the same path produced by a retried flush.
func (s *Snapshot) Append(item ManifestListItem) {
	for i := range s.Items {
		if s.Items[i].ManifestPath == item.ManifestPath {
			s.Items[i] = item
			return
		}
	}
	s.Items = append(s.Items, item)
}

// ManifestsInRange returns the manifest-list items whose [lower, upper]
// bound intersects [lo, hi], sorted ascending by TimeLowerBound (spec §4.2).
func ManifestsInRange(snapshot *Snapshot, lo, hi time.Time) []ManifestListItem {
	if snapshot == nil {
		return nil
	}
	out := make([]ManifestListItem, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		if intervalsOverlapTime(item.TimeLowerBound, item.TimeUpperBound, lo, hi) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TimeLowerBound.Before(out[j].TimeLowerBound)
	})
	return out
}

func intervalsOverlapTime(min, max, lo, hi time.Time) bool {
	return !min.After(hi) && !lo.After(max)
}

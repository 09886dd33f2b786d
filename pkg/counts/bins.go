// Package counts computes per-bin event counts over a time range from
// manifest statistics alone, without ever reading a data file (spec §4.9).
package counts

import "time"

// Bin is a half-open time interval [Start, End) over which events are
// counted.
type Bin struct {
	Start time.Time
	End   time.Time
}

// computeBins implements the bin split from spec §4.9: total minutes in
// [start, end) divided into num_bins equal spans, with any remainder
// minutes appended as a final short bin.
//
// MergeRemainderBin controls what happens to that remainder: false (the
// observed, bit-compatible default per §9) appends it as an extra
// num_bins+1'th bin; true folds it into the final full-length bin instead,
// always returning exactly num_bins bins.
func computeBins(start, end time.Time, numBins int, mergeRemainderBin bool) []Bin {
	total := int64(end.Sub(start) / time.Minute)
	quotient := total / int64(numBins)
	remainder := total % int64(numBins)

	bins := make([]Bin, 0, numBins+1)
	cursor := start
	for i := 0; i < numBins; i++ {
		span := quotient
		if mergeRemainderBin && i == numBins-1 {
			span += remainder
		}
		next := cursor.Add(time.Duration(span) * time.Minute)
		bins = append(bins, Bin{Start: cursor, End: next})
		cursor = next
	}

	if !mergeRemainderBin && remainder > 0 {
		next := cursor.Add(time.Duration(remainder) * time.Minute)
		bins = append(bins, Bin{Start: cursor, End: next})
	}

	return bins
}

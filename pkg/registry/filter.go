package registry

import (
	"errors"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidPattern is returned when a stream-name pattern cannot be compiled.
var ErrInvalidPattern = errors.New("invalid stream name pattern")

// PatternError wraps a pattern with the error doublestar returned for it.
//
// Adapted from gonimbus's pkg/match.Matcher, which applies doublestar
// include/exclude globs to cloud object keys; here the same glob matching
// is applied to stream names instead. No HTTP route or CLI command calls
// MatchStreamNames.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string { return "pattern " + e.Pattern + ": " + e.Err.Error() }
func (e *PatternError) Unwrap() error  { return e.Err }

// MatchStreamNames filters names to those matching at least one include
// pattern and no exclude pattern. An empty includes list matches everything.
// Patterns use doublestar glob syntax (`*`, `**`, `?`, character classes).
func MatchStreamNames(names []string, includes, excludes []string) ([]string, error) {
	for _, p := range includes {
		if !doublestar.ValidatePattern(p) {
			return nil, &PatternError{Pattern: p, Err: ErrInvalidPattern}
		}
	}
	for _, p := range excludes {
		if !doublestar.ValidatePattern(p) {
			return nil, &PatternError{Pattern: p, Err: ErrInvalidPattern}
		}
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		if len(includes) > 0 {
			matched := false
			for _, p := range includes {
				if ok, _ := doublestar.Match(p, name); ok {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		excluded := false
		for _, p := range excludes {
			if ok, _ := doublestar.Match(p, name); ok {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

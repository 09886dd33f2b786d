package columnar

// InvalidError reports a payload or field that fails a hard structural
// check: a non-object payload, or a time-partition field that is missing
// or does not parse as RFC-3339.
type InvalidError struct {
	Reason string
}

func (e *InvalidError) Error() string { return "columnar: invalid: " + e.Reason }

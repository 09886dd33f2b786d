package ingest

// Kind is the tagged error kind surfaced by ingestion (spec §7).
type Kind string

const (
	KindStreamNotFound       Kind = "StreamNotFound"
	KindSerdeError           Kind = "SerdeError"
	KindHeader               Kind = "Header"
	KindEvent                Kind = "Event"
	KindInvalid              Kind = "Invalid"
	KindCreateStream         Kind = "CreateStream"
	KindStreamNameValidation Kind = "StreamNameValidation"
	KindCustomError          Kind = "CustomError"
	KindNetworkError         Kind = "NetworkError"
	KindObjectStorageError   Kind = "ObjectStorageError"
)

// Error is the error type returned by Controller.Ingest and Controller.Post.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

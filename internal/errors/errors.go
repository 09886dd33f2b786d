// Package apperrors is logcove's own HTTP-facing error model (spec §7):
// a tagged error Kind, a carrier type wrapping Kind+message+cause, and the
// status-code/JSON-envelope mapping every handler in internal/server uses
// to turn an error into a response.
//
// Grounded on gonimbus's internal/server test expectations (the envelope
// shape) and spec.md §7's Kind enum; gonimbus's own handlers lean on
// github.com/fulmenhq/gofulmen/errors for this, which has no buildable
// source anywhere in the retrieval pack, so this package reimplements the
// same envelope shape directly instead of wiring that dependency.
package apperrors

import (
	"encoding/json"
	"net/http"
)

// Kind tags the category of error a request failed with.
type Kind string

const (
	// Domain kinds, exactly the enum in spec §7.
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

	// Ambient HTTP-surface kinds: routing and server-lifecycle failures
	// that never originate from the ingestion/query domain.
	KindNotFound           Kind = "NotFound"
	KindMethodNotAllowed   Kind = "MethodNotAllowed"
	KindServiceUnavailable Kind = "ServiceUnavailable"
	KindInternal           Kind = "Internal"
)

// Error carries a Kind, a human-readable message, and an optional wrapped
// cause. It is the only error type internal/server's handlers construct or
// inspect when deciding how to respond.
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

// New builds an Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error around an existing cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Status maps a Kind to the HTTP status table in spec §6/§7.
func (e *Error) Status() int {
	switch e.Kind {
	case KindStreamNotFound, KindNotFound:
		return http.StatusNotFound
	case KindSerdeError, KindHeader, KindInvalid, KindStreamNameValidation, KindCreateStream:
		return http.StatusBadRequest
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindEvent, KindNetworkError, KindObjectStorageError, KindCustomError, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Code maps a Kind to the stable upper-snake-case string the JSON envelope
// carries as HTTPErrorBody.Code.
func (e *Error) Code() string {
	switch e.Kind {
	case KindStreamNotFound:
		return "STREAM_NOT_FOUND"
	case KindSerdeError:
		return "SERDE_ERROR"
	case KindHeader:
		return "HEADER"
	case KindEvent:
		return "EVENT"
	case KindInvalid:
		return "INVALID"
	case KindCreateStream:
		return "CREATE_STREAM"
	case KindStreamNameValidation:
		return "STREAM_NAME_VALIDATION"
	case KindCustomError:
		return "CUSTOM_ERROR"
	case KindNetworkError:
		return "NETWORK_ERROR"
	case KindObjectStorageError:
		return "OBJECT_STORAGE_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case KindServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}

// HTTPErrorBody is the "error" object inside HTTPErrorResponse.
type HTTPErrorBody struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	RequestID string                 `json:"request_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// HTTPErrorResponse is the fixed JSON envelope every error response body
// uses across internal/server, internal/server/handlers, and
// internal/server/middleware.
type HTTPErrorResponse struct {
	Error HTTPErrorBody `json:"error"`
}

// AsError unwraps err into an *Error, synthesizing a KindInternal wrapper
// for anything that isn't already one of ours.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*Error); ok {
		return ae
	}
	return &Error{Kind: KindInternal, Message: err.Error(), Err: err}
}

// Response builds the JSON envelope for err, optionally carrying a request
// ID and extra detail fields.
func Response(err error, requestID string, details map[string]interface{}) HTTPErrorResponse {
	ae := AsError(err)
	return HTTPErrorResponse{Error: HTTPErrorBody{
		Code:      ae.Code(),
		Message:   ae.Message,
		RequestID: requestID,
		Details:   details,
	}}
}

// ErrorEnvelope is a builder for a one-off HTTPErrorResponse that isn't
// tied to a domain Kind — used by internal/server/middleware, which only
// knows a status code and a message at the point it needs to respond (a
// recovered panic, a correlation ID attached after the fact).
type ErrorEnvelope struct {
	Code          string
	Message       string
	CorrelationID string
	Context       map[string]interface{}
}

// NewErrorEnvelope starts a builder for the given code/message pair.
func NewErrorEnvelope(code, message string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: code, Message: message}
}

// WithCorrelationID attaches a request ID to the envelope.
func (e *ErrorEnvelope) WithCorrelationID(id string) *ErrorEnvelope {
	e.CorrelationID = id
	return e
}

// WithContext attaches arbitrary detail fields to the envelope.
func (e *ErrorEnvelope) WithContext(ctx map[string]interface{}) (*ErrorEnvelope, error) {
	e.Context = ctx
	return e, nil
}

// Body renders the envelope as the fixed HTTPErrorResponse shape.
func (e *ErrorEnvelope) Body() HTTPErrorResponse {
	return HTTPErrorResponse{Error: HTTPErrorBody{
		Code:      e.Code,
		Message:   e.Message,
		RequestID: e.CorrelationID,
		Details:   e.Context,
	}}
}

// RespondWithError is the default HTTP error responder: it maps err's Kind
// (synthesizing KindInternal for anything not already an *Error) to a
// status code and writes the HTTPErrorResponse envelope.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	ae := AsError(err)
	requestID := w.Header().Get("X-Request-ID")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ae.Status())
	_ = json.NewEncoder(w).Encode(Response(ae, requestID, nil))
}

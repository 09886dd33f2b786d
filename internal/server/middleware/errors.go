package middleware

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/3leaps/logcove/internal/errors"
)

// ErrorResponse is the JSON body both Recovery/ErrorHandler and
// writeErrorResponse produce; it mirrors apperrors.HTTPErrorResponse so the
// two packages stay wire-compatible.
type ErrorResponse = apperrors.HTTPErrorResponse

// writeErrorResponse serializes envelope as ErrorResponse and writes it
// with statusCode and a JSON content type.
func writeErrorResponse(w http.ResponseWriter, envelope *apperrors.ErrorEnvelope, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(envelope.Body())
}

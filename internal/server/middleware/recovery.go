package middleware

import (
	"fmt"
	"net/http"

	apperrors "github.com/3leaps/logcove/internal/errors"
)

// Recovery catches a panic from the wrapped handler and turns it into a
// 500 JSON error envelope instead of crashing the process, carrying
// whatever request ID RequestID stashed in the context.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				envelope := apperrors.NewErrorEnvelope("INTERNAL_ERROR", fmt.Sprintf("panic: %v", rec)).
					WithCorrelationID(requestIDFromContext(r.Context()))
				writeErrorResponse(w, envelope, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// ErrorHandler is Recovery under a second name; gonimbus's server wiring
// historically named the chi-level panic middleware differently from the
// plain recovery helper even though the behavior is identical.
func ErrorHandler(next http.Handler) http.Handler {
	return Recovery(next)
}

package handlers

import (
	"net/http"

	apperrors "github.com/3leaps/logcove/internal/errors"
)

// HTTPErrorResponder writes an HTTP error response for err.
type HTTPErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// httpErrorResponder is swappable per test binary; it defaults to
// apperrors.RespondWithError.
var httpErrorResponder HTTPErrorResponder = apperrors.RespondWithError

// SetHTTPErrorResponder overrides the responder used by respondWithError.
// Passing nil restores the default.
func SetHTTPErrorResponder(fn HTTPErrorResponder) {
	if fn == nil {
		ResetHTTPErrorResponder()
		return
	}
	httpErrorResponder = fn
}

// ResetHTTPErrorResponder restores the default apperrors-backed responder.
func ResetHTTPErrorResponder() {
	httpErrorResponder = apperrors.RespondWithError
}

// respondWithError delegates to whichever responder is currently
// configured; every domain handler in this package calls this instead of
// writing error JSON directly.
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	httpErrorResponder(w, r, err)
}

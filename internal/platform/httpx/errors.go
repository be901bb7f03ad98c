package httpx

import (
	"errors"
	"net/http"

	"github.com/scriptorium-hq/scriptorium/internal/shared"
)

// Transport-level sentinel errors.
var (
	// ErrNoIdentity indicates the request presented no caller identity.
	ErrNoIdentity = errors.New("caller identity required")
	// ErrValidation indicates a malformed request body.
	ErrValidation = errors.New("validation failed")
)

// RespondError maps registry and transport errors to problem responses.
// shared.ErrUnauthorized is a role failure on an identified caller, hence
// 403 rather than 401.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrNoIdentity):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

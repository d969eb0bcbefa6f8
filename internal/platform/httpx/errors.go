package httpx

import (
	"errors"
	"net/http"

	accshared "github.com/contalibre/contalibre/internal/accounting/shared"
)

// RespondError maps accounting domain errors to RFC7807 responses.
// Each error kind carries a stable status so API clients can branch on
// it without parsing the detail text.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accshared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, accshared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, accshared.ErrPeriodClosed):
		Problem(w, http.StatusLocked, "Period Closed", err.Error())
	case errors.Is(err, accshared.ErrInvalidState):
		Problem(w, http.StatusConflict, "Invalid State", err.Error())
	case errors.Is(err, accshared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, accshared.ErrValidation):
		Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

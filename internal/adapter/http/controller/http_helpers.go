package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/api-sage/settlement-core/internal/commons"
	"github.com/api-sage/settlement-core/internal/domain"
	"github.com/api-sage/settlement-core/internal/gate"
)

func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func respond[T any](w http.ResponseWriter, status int, response commons.Response[T]) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

func badRequest[T any](w http.ResponseWriter, message string, err error) {
	respond(w, http.StatusBadRequest, commons.ErrorResponse[T](message, err.Error()))
}

// statusFromError maps a settlement failure to its transport status.
// Conflicting or already-consumed state is 409 so clients can distinguish
// "re-read and retry" from terminal validation failures.
func statusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, gate.ErrUnauthorized), errors.Is(err, gate.ErrNoPolicyDefined):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrReceiverNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAccountInactive):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrAlreadySettled),
		errors.Is(err, domain.ErrCancelled),
		errors.Is(err, domain.ErrExpired),
		errors.Is(err, domain.ErrOwnershipMismatch),
		errors.Is(err, domain.ErrAlreadyProcessed),
		errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

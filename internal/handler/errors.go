package handler

import (
	"errors"
	"net/http"

	"github.com/efreitasn/ammbatcher/internal/domain"
)

// writeServiceError maps service and domain errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidOrder):
		WriteError(w, http.StatusBadRequest, "invalid_order", err.Error())
	case errors.Is(err, domain.ErrInvalidPool):
		WriteError(w, http.StatusBadRequest, "invalid_pool", err.Error())
	case errors.Is(err, domain.ErrPoolNotFound):
		WriteError(w, http.StatusNotFound, "pool_not_found", err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		WriteError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, domain.ErrWebhookNotFound):
		WriteError(w, http.StatusNotFound, "webhook_not_found", err.Error())
	case errors.Is(err, domain.ErrOrderNotCancellable):
		WriteError(w, http.StatusConflict, "order_not_cancellable", err.Error())
	case errors.Is(err, domain.ErrVersionConflict):
		WriteError(w, http.StatusConflict, "version_conflict", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrInvalidOrder        = errors.New("invalid_order")
	ErrInvalidPool         = errors.New("invalid_pool")
	ErrPoolNotFound        = errors.New("pool_not_found")
	ErrOrderNotFound       = errors.New("order_not_found")
	ErrOrderNotCancellable = errors.New("order_not_cancellable")
	ErrVersionConflict     = errors.New("version_conflict")
	ErrWebhookNotFound     = errors.New("webhook_not_found")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

package domain

import (
	"strings"
	"time"
)

// WebhookEvent names a notification raised for an order once its batch
// commits.
type WebhookEvent string

const (
	EventSettlementExecuted WebhookEvent = "settlement.executed"
	EventOrderRejected      WebhookEvent = "order.rejected"
	EventOrderFailed        WebhookEvent = "order.failed"
)

// WebhookEvents lists every event a requester can subscribe to.
var WebhookEvents = []WebhookEvent{EventSettlementExecuted, EventOrderRejected, EventOrderFailed}

// Valid reports whether e is a known event.
func (e WebhookEvent) Valid() bool {
	for _, known := range WebhookEvents {
		if e == known {
			return true
		}
	}
	return false
}

// ParseWebhookEvent converts a wire name into a WebhookEvent.
func ParseWebhookEvent(s string) (WebhookEvent, error) {
	e := WebhookEvent(s)
	if !e.Valid() {
		names := make([]string, len(WebhookEvents))
		for i, known := range WebhookEvents {
			names[i] = string(known)
		}
		return "", &ValidationError{
			Message: "Unknown event type: " + s + ". Must be one of: " + strings.Join(names, ", "),
		}
	}
	return e, nil
}

// EventForStatus returns the event a batch raises for an order that ended
// in status. Pending and cancelled orders raise nothing.
func EventForStatus(status OrderStatus) (WebhookEvent, bool) {
	switch status {
	case OrderStatusSettled:
		return EventSettlementExecuted, true
	case OrderStatusRejectedSlippage:
		return EventOrderRejected, true
	case OrderStatusFailed:
		return EventOrderFailed, true
	}
	return "", false
}

// Webhook is a requester's subscription to one event. An empty PoolID
// subscribes to that event on every pool; a pool-scoped subscription takes
// precedence over it for its own pool.
type Webhook struct {
	WebhookID   string
	RequesterID string
	PoolID      string
	Event       WebhookEvent
	URL         string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

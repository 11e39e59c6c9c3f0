package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestParseWebhookEvent(t *testing.T) {
	for _, e := range WebhookEvents {
		got, err := ParseWebhookEvent(string(e))
		if err != nil || got != e {
			t.Errorf("ParseWebhookEvent(%q) = %q, %v", e, got, err)
		}
	}

	for _, raw := range []string{"", "trade.executed", "ORDER.REJECTED", "order.failed "} {
		_, err := ParseWebhookEvent(raw)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("ParseWebhookEvent(%q): expected ValidationError, got %v", raw, err)
		}
		if !strings.Contains(ve.Message, "order.failed") {
			t.Errorf("message %q should list the known events", ve.Message)
		}
	}
}

func TestEventForStatus(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   WebhookEvent
		ok     bool
	}{
		{OrderStatusSettled, EventSettlementExecuted, true},
		{OrderStatusRejectedSlippage, EventOrderRejected, true},
		{OrderStatusFailed, EventOrderFailed, true},
		{OrderStatusPending, "", false},
		{OrderStatusCancelled, "", false},
	}
	for _, tt := range tests {
		got, ok := EventForStatus(tt.status)
		if got != tt.want || ok != tt.ok {
			t.Errorf("EventForStatus(%s) = %q, %v; want %q, %v", tt.status, got, ok, tt.want, tt.ok)
		}
	}
}

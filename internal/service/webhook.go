package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/efreitasn/ammbatcher/internal/domain"
	"github.com/efreitasn/ammbatcher/internal/store"
	"github.com/google/uuid"
)

const maxWebhookURLLen = 2048

// UpsertWebhookRequest subscribes RequesterID to Events at URL. A non-empty
// PoolID limits the subscription to orders on that pool.
type UpsertWebhookRequest struct {
	RequesterID string
	PoolID      string
	URL         string
	Events      []domain.WebhookEvent
}

// WebhookService manages subscriptions and notifies requesters of batch
// outcomes.
type WebhookService struct {
	webhooks *store.WebhookStore
	pools    *store.PoolStore
	client   *http.Client
	logger   *slog.Logger
	inflight sync.WaitGroup
}

func NewWebhookService(webhooks *store.WebhookStore, pools *store.PoolStore, timeout time.Duration, logger *slog.Logger) *WebhookService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookService{
		webhooks: webhooks,
		pools:    pools,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Upsert creates or repoints one subscription per distinct event, in
// request order. It reports whether any subscription was new.
func (s *WebhookService) Upsert(req UpsertWebhookRequest) ([]domain.Webhook, bool, error) {
	if err := validateRequesterID(req.RequesterID); err != nil {
		return nil, false, err
	}
	if err := validateWebhookURL(req.URL); err != nil {
		return nil, false, err
	}
	if len(req.Events) == 0 {
		return nil, false, &domain.ValidationError{Message: "events must be a non-empty array"}
	}
	for _, e := range req.Events {
		if _, err := domain.ParseWebhookEvent(string(e)); err != nil {
			return nil, false, err
		}
	}
	if req.PoolID != "" {
		if _, err := s.pools.Get(req.PoolID); err != nil {
			return nil, false, err
		}
	}

	now := time.Now().UTC().Truncate(time.Second)
	seen := make(map[domain.WebhookEvent]bool, len(req.Events))
	out := make([]domain.Webhook, 0, len(req.Events))
	anyCreated := false
	for _, e := range req.Events {
		if seen[e] {
			continue
		}
		seen[e] = true
		stored, created := s.webhooks.Upsert(domain.Webhook{
			WebhookID:   uuid.New().String(),
			RequesterID: req.RequesterID,
			PoolID:      req.PoolID,
			Event:       e,
			URL:         req.URL,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		anyCreated = anyCreated || created
		out = append(out, stored)
	}
	return out, anyCreated, nil
}

func validateWebhookURL(raw string) error {
	switch {
	case raw == "":
		return &domain.ValidationError{Message: "url is required"}
	case len(raw) > maxWebhookURLLen:
		return &domain.ValidationError{Message: fmt.Sprintf("url must be at most %d characters", maxWebhookURLLen)}
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || !u.IsAbs() {
		return &domain.ValidationError{Message: "url must be a valid absolute URL"}
	}
	if u.Scheme != "https" {
		return &domain.ValidationError{Message: "url must use https scheme"}
	}
	return nil
}

// List returns a requester's subscriptions, optionally only those scoped to
// poolID.
func (s *WebhookService) List(requesterID string, poolID *string) ([]domain.Webhook, error) {
	if err := validateRequesterID(requesterID); err != nil {
		return nil, err
	}
	return s.webhooks.List(requesterID, poolID), nil
}

func (s *WebhookService) Delete(webhookID string) error {
	return s.webhooks.Delete(webhookID)
}

// Wait blocks until every in-flight delivery has finished. Callers must stop
// producing batches before calling it.
func (s *WebhookService) Wait() {
	s.inflight.Wait()
}

type webhookEnvelope struct {
	Event     domain.WebhookEvent `json:"event"`
	Timestamp string              `json:"timestamp"`
	Data      orderEventData      `json:"data"`
}

// orderEventData is the body shared by every order event. Fields that do
// not apply to an event are omitted.
type orderEventData struct {
	BatchID        string  `json:"batch_id"`
	PoolID         string  `json:"pool_id"`
	OrderID        string  `json:"order_id"`
	RequesterID    string  `json:"requester_id"`
	InputToken     string  `json:"input_token"`
	AmountIn       float64 `json:"amount_in"`
	MinAmountOut   float64 `json:"min_amount_out"`
	TokenReceived  string  `json:"token_received,omitempty"`
	AmountReceived float64 `json:"amount_received,omitempty"`
	FeePaid        float64 `json:"fee_paid,omitempty"`
	Reason         string  `json:"reason,omitempty"`
}

func eventData(r domain.OrderRecord) orderEventData {
	d := orderEventData{
		BatchID:      r.BatchID,
		PoolID:       r.PoolID,
		OrderID:      r.Order.OrderID,
		RequesterID:  r.Order.RequesterID,
		InputToken:   string(r.Order.InputToken),
		AmountIn:     r.Order.AmountIn,
		MinAmountOut: r.Order.MinAmountOut,
	}
	switch r.Status {
	case domain.OrderStatusSettled:
		d.TokenReceived = string(r.Order.OutputToken())
		d.AmountReceived = r.AmountOut
		d.FeePaid = r.FeePaid
	case domain.OrderStatusRejectedSlippage:
		d.Reason = string(domain.ReasonSlippage)
	case domain.OrderStatusFailed:
		d.Reason = r.FailReason
	}
	return d
}

// DispatchBatchEvents notifies requesters of every decided order in a
// committed batch. Delivery is fire-and-forget.
func (s *WebhookService) DispatchBatchEvents(records []domain.OrderRecord, at time.Time) {
	ts := at.UTC().Truncate(time.Second).Format(time.RFC3339)
	for _, r := range records {
		event, ok := domain.EventForStatus(r.Status)
		if !ok {
			continue
		}
		wh, ok := s.webhooks.Match(r.Order.RequesterID, r.PoolID, event)
		if !ok {
			continue
		}
		payload := webhookEnvelope{Event: event, Timestamp: ts, Data: eventData(r)}

		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			s.deliver(wh, payload)
		}()
	}
}

// deliver POSTs the payload once. Failures are logged and dropped.
func (s *WebhookService) deliver(wh domain.Webhook, payload webhookEnvelope) {
	logger := s.logger.With(
		slog.String("webhook_id", wh.WebhookID),
		slog.String("event", string(payload.Event)),
		slog.String("order_id", payload.Data.OrderID),
	)

	body, err := json.Marshal(payload)
	if err != nil {
		logger.Error("webhook payload encoding failed", slog.String("error", err.Error()))
		return
	}
	req, err := http.NewRequest(http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		logger.Error("webhook request build failed", slog.String("error", err.Error()))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delivery-Id", uuid.New().String())
	req.Header.Set("X-Webhook-Id", wh.WebhookID)
	req.Header.Set("X-Event-Type", string(payload.Event))

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Warn("webhook delivery failed", slog.String("error", err.Error()))
		return
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("webhook delivery rejected", slog.Int("status", resp.StatusCode))
	}
}

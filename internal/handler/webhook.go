package handler

import (
	"net/http"

	"github.com/efreitasn/ammbatcher/internal/domain"
	"github.com/efreitasn/ammbatcher/internal/service"
	"github.com/go-chi/chi/v5"
)

// WebhookHandler serves the /webhooks subscription endpoints.
type WebhookHandler struct {
	webhookSvc *service.WebhookService
}

func NewWebhookHandler(webhookSvc *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

// subscribeRequest is the body of POST /webhooks. Omitting pool_id
// subscribes to order outcomes on every pool.
type subscribeRequest struct {
	RequesterID string   `json:"requester_id"`
	PoolID      string   `json:"pool_id"`
	URL         string   `json:"url"`
	Events      []string `json:"events"`
}

type subscriptionResponse struct {
	WebhookID   string  `json:"webhook_id"`
	RequesterID string  `json:"requester_id"`
	PoolID      *string `json:"pool_id"`
	Event       string  `json:"event"`
	URL         string  `json:"url"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type subscriptionListResponse struct {
	Webhooks []subscriptionResponse `json:"webhooks"`
}

func newSubscriptionList(webhooks []domain.Webhook) subscriptionListResponse {
	out := subscriptionListResponse{Webhooks: make([]subscriptionResponse, len(webhooks))}
	for i, wh := range webhooks {
		var poolID *string
		if wh.PoolID != "" {
			id := wh.PoolID
			poolID = &id
		}
		out.Webhooks[i] = subscriptionResponse{
			WebhookID:   wh.WebhookID,
			RequesterID: wh.RequesterID,
			PoolID:      poolID,
			Event:       string(wh.Event),
			URL:         wh.URL,
			CreatedAt:   formatTime(wh.CreatedAt),
			UpdatedAt:   formatTime(wh.UpdatedAt),
		}
	}
	return out
}

// Upsert handles POST /webhooks. It answers 201 when any subscription is
// new and 200 when every event only had its URL repointed.
func (h *WebhookHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	events := make([]domain.WebhookEvent, len(req.Events))
	for i, raw := range req.Events {
		e, err := domain.ParseWebhookEvent(raw)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		events[i] = e
	}

	webhooks, created, err := h.webhookSvc.Upsert(service.UpsertWebhookRequest{
		RequesterID: req.RequesterID,
		PoolID:      req.PoolID,
		URL:         req.URL,
		Events:      events,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	WriteJSON(w, status, newSubscriptionList(webhooks))
}

// List handles GET /webhooks?requester_id=...[&pool_id=...].
func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	requesterID := q.Get("requester_id")
	if requesterID == "" {
		WriteError(w, http.StatusBadRequest, "validation_error", "requester_id query parameter is required")
		return
	}
	var poolID *string
	if q.Has("pool_id") {
		id := q.Get("pool_id")
		poolID = &id
	}

	webhooks, err := h.webhookSvc.List(requesterID, poolID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, newSubscriptionList(webhooks))
}

// Delete handles DELETE /webhooks/{webhook_id}.
func (h *WebhookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.webhookSvc.Delete(chi.URLParam(r, "webhook_id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/efreitasn/ammbatcher/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the pool, order, batch and webhook endpoints.
func NewRouter(
	poolSvc *service.PoolService,
	orderSvc *service.OrderService,
	batchSvc *service.BatchService,
	webhookSvc *service.WebhookService,
	logger *slog.Logger,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogging(logger))
	r.Use(recoverPanics(logger))
	r.Use(contentTypeJSON)

	poolH := NewPoolHandler(poolSvc)
	orderH := NewOrderHandler(orderSvc)
	batchH := NewBatchHandler(batchSvc)
	webhookH := NewWebhookHandler(webhookSvc)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/pools", func(r chi.Router) {
		r.Post("/", poolH.Create)
		r.Get("/", poolH.List)
		r.Route("/{pool_id}", func(r chi.Router) {
			r.Get("/", poolH.Get)
			r.Get("/quote", poolH.Quote)
			r.Post("/orders", orderH.Submit)
			r.Get("/orders", orderH.List)
			r.Post("/batches", batchH.Run)
		})
	})

	r.Get("/orders/{order_id}", orderH.Get)
	r.Delete("/orders/{order_id}", orderH.Cancel)

	r.Post("/webhooks", webhookH.Upsert)
	r.Get("/webhooks", webhookH.List)
	r.Delete("/webhooks/{webhook_id}", webhookH.Delete)

	return r
}

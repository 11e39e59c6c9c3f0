package handler

import (
	"net/http"

	"github.com/efreitasn/ammbatcher/internal/domain"
	"github.com/efreitasn/ammbatcher/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// submitOrderRequest is the JSON request body for POST /pools/{pool_id}/orders.
type submitOrderRequest struct {
	RequesterID  string          `json:"requester_id"`
	InputToken   string          `json:"input_token"`
	AmountIn     decimal.Decimal `json:"amount_in"`
	MinAmountOut decimal.Decimal `json:"min_amount_out"`
}

// orderResponse is the JSON form of an order record. Nullable fields are
// always present.
type orderResponse struct {
	OrderID      string  `json:"order_id"`
	PoolID       string  `json:"pool_id"`
	RequesterID  string  `json:"requester_id"`
	InputToken   string  `json:"input_token"`
	OutputToken  string  `json:"output_token"`
	AmountIn     float64 `json:"amount_in"`
	MinAmountOut float64 `json:"min_amount_out"`
	Status       string  `json:"status"`
	AmountOut    float64 `json:"amount_out"`
	FeePaid      float64 `json:"fee_paid"`
	BatchID      *string `json:"batch_id"`
	FailReason   string  `json:"fail_reason,omitempty"`
	SubmittedAt  string  `json:"submitted_at"`
	SettledAt    *string `json:"settled_at"`
	CancelledAt  *string `json:"cancelled_at"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
}

// Submit handles POST /pools/{pool_id}/orders.
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	record, err := h.orderSvc.Submit(service.SubmitOrderRequest{
		PoolID:       chi.URLParam(r, "pool_id"),
		RequesterID:  req.RequesterID,
		InputToken:   req.InputToken,
		AmountIn:     req.AmountIn,
		MinAmountOut: req.MinAmountOut,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildOrderResponse(record))
}

// List handles GET /pools/{pool_id}/orders. Without a status filter it
// returns the orders waiting for the next batch.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatusPending
	if s := r.URL.Query().Get("status"); s != "" {
		status = domain.OrderStatus(s)
	}

	records, err := h.orderSvc.List(chi.URLParam(r, "pool_id"), &status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, orderListResponse{Orders: buildOrderResponses(records)})
}

// Get handles GET /orders/{order_id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.orderSvc.Get(chi.URLParam(r, "order_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildOrderResponse(record))
}

// Cancel handles DELETE /orders/{order_id}.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	record, err := h.orderSvc.Cancel(chi.URLParam(r, "order_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildOrderResponse(record))
}

func buildOrderResponse(r domain.OrderRecord) orderResponse {
	resp := orderResponse{
		OrderID:      r.Order.OrderID,
		PoolID:       r.PoolID,
		RequesterID:  r.Order.RequesterID,
		InputToken:   string(r.Order.InputToken),
		OutputToken:  string(r.Order.OutputToken()),
		AmountIn:     r.Order.AmountIn,
		MinAmountOut: r.Order.MinAmountOut,
		Status:       string(r.Status),
		AmountOut:    r.AmountOut,
		FeePaid:      r.FeePaid,
		FailReason:   r.FailReason,
		SubmittedAt:  formatTime(r.SubmittedAt),
		SettledAt:    formatOptionalTime(r.SettledAt),
		CancelledAt:  formatOptionalTime(r.CancelledAt),
	}
	if r.BatchID != "" {
		id := r.BatchID
		resp.BatchID = &id
	}
	return resp
}

func buildOrderResponses(records []domain.OrderRecord) []orderResponse {
	out := make([]orderResponse, len(records))
	for i, r := range records {
		out[i] = buildOrderResponse(r)
	}
	return out
}

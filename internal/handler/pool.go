package handler

import (
	"net/http"

	"github.com/efreitasn/ammbatcher/internal/domain"
	"github.com/efreitasn/ammbatcher/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// PoolHandler handles HTTP requests for pool endpoints.
type PoolHandler struct {
	poolSvc *service.PoolService
}

// NewPoolHandler creates a new PoolHandler.
func NewPoolHandler(poolSvc *service.PoolService) *PoolHandler {
	return &PoolHandler{poolSvc: poolSvc}
}

// createPoolRequest is the JSON request body for POST /pools. Amounts may
// be JSON numbers or decimal strings.
type createPoolRequest struct {
	Name     string           `json:"name"`
	ReserveA decimal.Decimal  `json:"reserve_a"`
	ReserveB decimal.Decimal  `json:"reserve_b"`
	FeeRate  *decimal.Decimal `json:"fee_rate"`
}

type poolStateResponse struct {
	ReserveA   float64 `json:"reserve_a"`
	ReserveB   float64 `json:"reserve_b"`
	FeeRate    float64 `json:"fee_rate"`
	InvariantK float64 `json:"invariant_k"`
}

type poolResponse struct {
	PoolID string `json:"pool_id"`
	Name   string `json:"name"`
	poolStateResponse
	Version    uint64 `json:"version"`
	BatchCount uint64 `json:"batch_count"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type poolListResponse struct {
	Pools []poolResponse `json:"pools"`
}

type quoteResponse struct {
	PoolID       string            `json:"pool_id"`
	PoolVersion  uint64            `json:"pool_version"`
	InputToken   string            `json:"input_token"`
	OutputToken  string            `json:"output_token"`
	AmountIn     float64           `json:"amount_in"`
	MinAmountOut float64           `json:"min_amount_out"`
	Outcome      string            `json:"outcome"`
	AmountOut    float64           `json:"amount_out"`
	FeePaid      float64           `json:"fee_paid"`
	PoolAfter    poolStateResponse `json:"pool_after"`
}

// Create handles POST /pools.
func (h *PoolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPoolRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	pool, err := h.poolSvc.Create(service.CreatePoolRequest{
		Name:     req.Name,
		ReserveA: req.ReserveA,
		ReserveB: req.ReserveB,
		FeeRate:  req.FeeRate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildPoolResponse(pool))
}

// List handles GET /pools.
func (h *PoolHandler) List(w http.ResponseWriter, r *http.Request) {
	pools := h.poolSvc.List()
	resp := poolListResponse{Pools: make([]poolResponse, len(pools))}
	for i, p := range pools {
		resp.Pools[i] = buildPoolResponse(p)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Get handles GET /pools/{pool_id}.
func (h *PoolHandler) Get(w http.ResponseWriter, r *http.Request) {
	pool, err := h.poolSvc.Get(chi.URLParam(r, "pool_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildPoolResponse(pool))
}

// Quote handles GET /pools/{pool_id}/quote.
func (h *PoolHandler) Quote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("input_token") == "" {
		WriteError(w, http.StatusBadRequest, "validation_error", "input_token query parameter is required")
		return
	}
	if q.Get("amount_in") == "" {
		WriteError(w, http.StatusBadRequest, "validation_error", "amount_in query parameter is required")
		return
	}
	amountIn, err := queryAmount(r, "amount_in", decimal.Zero)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	minOut, err := queryAmount(r, "min_amount_out", decimal.Zero)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	res, err := h.poolSvc.Quote(service.QuoteRequest{
		PoolID:       chi.URLParam(r, "pool_id"),
		InputToken:   q.Get("input_token"),
		AmountIn:     amountIn,
		MinAmountOut: minOut,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, quoteResponse{
		PoolID:       res.PoolID,
		PoolVersion:  res.PoolVersion,
		InputToken:   string(res.Order.InputToken),
		OutputToken:  string(res.Order.OutputToken()),
		AmountIn:     res.Order.AmountIn,
		MinAmountOut: res.Order.MinAmountOut,
		Outcome:      string(res.Quote.Outcome),
		AmountOut:    res.Quote.AmountOut,
		FeePaid:      res.Quote.FeePaid,
		PoolAfter:    buildPoolState(res.PoolAfter),
	})
}

func buildPoolState(s domain.PoolState) poolStateResponse {
	return poolStateResponse{
		ReserveA:   s.ReserveA,
		ReserveB:   s.ReserveB,
		FeeRate:    s.FeeRate,
		InvariantK: s.InvariantK(),
	}
}

func buildPoolResponse(p domain.Pool) poolResponse {
	return poolResponse{
		PoolID:            p.PoolID,
		Name:              p.Name,
		poolStateResponse: buildPoolState(p.State),
		Version:           p.Version,
		BatchCount:        p.BatchCount,
		CreatedAt:         formatTime(p.CreatedAt),
		UpdatedAt:         formatTime(p.UpdatedAt),
	}
}

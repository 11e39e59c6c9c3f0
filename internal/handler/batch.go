package handler

import (
	"net/http"

	"github.com/efreitasn/ammbatcher/internal/report"
	"github.com/efreitasn/ammbatcher/internal/service"
	"github.com/go-chi/chi/v5"
)

// BatchHandler handles HTTP requests that trigger batch runs.
type BatchHandler struct {
	batchSvc *service.BatchService
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(batchSvc *service.BatchService) *BatchHandler {
	return &BatchHandler{batchSvc: batchSvc}
}

type batchResponse struct {
	BatchID     string          `json:"batch_id"`
	PoolID      string          `json:"pool_id"`
	PoolVersion uint64          `json:"pool_version"`
	Settled     int             `json:"settled"`
	Rejected    int             `json:"rejected"`
	Failed      int             `json:"failed"`
	Requeued    int             `json:"requeued"`
	FailReason  string          `json:"fail_reason,omitempty"`
	ExecutedAt  string          `json:"executed_at"`
	Orders      []orderResponse `json:"orders"`
	Settlement  report.Document `json:"settlement"`
}

// Run handles POST /pools/{pool_id}/batches. It runs a batch immediately
// over the pool's queued orders.
func (h *BatchHandler) Run(w http.ResponseWriter, r *http.Request) {
	rep, err := h.batchSvc.Run(r.Context(), chi.URLParam(r, "pool_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, batchResponse{
		BatchID:     rep.BatchID,
		PoolID:      rep.PoolID,
		PoolVersion: rep.PoolVersion,
		Settled:     rep.Settled,
		Rejected:    rep.Rejected,
		Failed:      rep.Failed,
		Requeued:    rep.Requeued,
		FailReason:  rep.FailReason,
		ExecutedAt:  formatTime(rep.ExecutedAt),
		Orders:      buildOrderResponses(rep.Orders),
		Settlement:  report.NewDocument(rep.Result),
	})
}

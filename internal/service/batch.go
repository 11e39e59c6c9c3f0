package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/efreitasn/ammbatcher/internal/domain"
	"github.com/efreitasn/ammbatcher/internal/engine"
	"github.com/efreitasn/ammbatcher/internal/store"
	"github.com/google/uuid"
)

// BatchReport summarizes one batch run for a pool.
type BatchReport struct {
	BatchID     string
	PoolID      string
	PoolVersion uint64 // version after commit; unchanged if nothing was processed
	Result      engine.BatchResult
	Orders      []domain.OrderRecord // drained orders in processing order, final status
	Settled     int
	Rejected    int
	Failed      int
	Requeued    int
	FailReason  string
	ExecutedAt  time.Time
}

// BatchService drains a pool's queue, prices the orders in arrival order,
// and commits the resulting pool.
type BatchService struct {
	pools        *store.PoolStore
	orders       *store.OrderStore
	queues       *engine.QueueManager
	webhooks     *WebhookService
	maxBatchSize int
	logger       *slog.Logger
	now          func() time.Time
}

// NewBatchService creates a new BatchService. webhooks may be nil.
func NewBatchService(
	pools *store.PoolStore,
	orders *store.OrderStore,
	queues *engine.QueueManager,
	webhooks *WebhookService,
	maxBatchSize int,
	logger *slog.Logger,
) *BatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchService{
		pools:        pools,
		orders:       orders,
		queues:       queues,
		webhooks:     webhooks,
		maxBatchSize: maxBatchSize,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one batch for the pool. The pool lock is held from drain to
// commit, so submissions and cancellations wait and quotes only ever see a
// committed state.
//
// If an order is structurally invalid the orders before it stay committed,
// the order itself is marked failed, and every order after it goes back to
// the front of the queue untouched.
func (s *BatchService) Run(ctx context.Context, poolID string) (*BatchReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.pools.Get(poolID); err != nil {
		return nil, err
	}

	report, err := s.runLocked(poolID)
	if err != nil {
		return nil, err
	}

	if s.webhooks != nil {
		s.webhooks.DispatchBatchEvents(report.Orders, report.ExecutedAt)
	}
	return report, nil
}

func (s *BatchService) runLocked(poolID string) (*BatchReport, error) {
	q := s.queues.GetOrCreate(poolID)
	q.Lock()
	defer q.Unlock()

	pool, err := s.pools.Get(poolID)
	if err != nil {
		return nil, err
	}

	entries := q.Drain(s.maxBatchSize)
	orders := make([]domain.Order, len(entries))
	for i, e := range entries {
		orders[i] = e.Order
	}

	report := &BatchReport{
		BatchID:     uuid.New().String(),
		PoolID:      poolID,
		PoolVersion: pool.Version,
		Orders:      make([]domain.OrderRecord, 0, len(entries)),
		ExecutedAt:  s.now(),
	}

	result, runErr := engine.RunBatch(pool.State, orders)
	report.Result = result

	failedIdx := -1
	if runErr != nil {
		var batchErr *engine.BatchError
		if !errors.As(runErr, &batchErr) {
			q.Requeue(entries)
			return nil, runErr
		}
		failedIdx = batchErr.Index
		report.FailReason = batchErr.Err.Error()
		if tail := entries[failedIdx+1:]; len(tail) > 0 {
			q.Requeue(tail)
			report.Requeued = len(tail)
		}
	}

	if result.Processed() > 0 {
		committed, err := s.pools.Commit(poolID, pool.Version, result.FinalPool, report.ExecutedAt)
		if err != nil {
			q.Requeue(entries)
			return nil, fmt.Errorf("commit pool %s: %w", poolID, err)
		}
		report.PoolVersion = committed.Version
	}

	for i, outcome := range result.Outcomes {
		record, err := s.orders.Update(entries[i].OrderID, func(r *domain.OrderRecord) error {
			at := report.ExecutedAt
			r.BatchID = report.BatchID
			r.SettledAt = &at
			switch outcome.Outcome {
			case engine.OutcomeSuccess:
				r.Status = domain.OrderStatusSettled
				r.AmountOut = outcome.AmountOut
				r.FeePaid = outcome.FeePaid
			case engine.OutcomeRejectedSlippage:
				r.Status = domain.OrderStatusRejectedSlippage
			}
			return nil
		})
		if err != nil {
			s.logger.Warn("order outcome not recorded",
				slog.String("batch_id", report.BatchID),
				slog.String("pool_id", poolID),
				slog.String("order_id", entries[i].OrderID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if record.Status == domain.OrderStatusSettled {
			report.Settled++
		} else {
			report.Rejected++
			s.logger.Debug("order rejected",
				slog.String("batch_id", report.BatchID),
				slog.String("order_id", record.Order.OrderID),
				slog.String("requester_id", record.Order.RequesterID),
				slog.String("reason", string(domain.ReasonSlippage)),
			)
		}
		report.Orders = append(report.Orders, record)
	}

	if failedIdx >= 0 {
		record, err := s.orders.Update(entries[failedIdx].OrderID, func(r *domain.OrderRecord) error {
			r.Status = domain.OrderStatusFailed
			r.BatchID = report.BatchID
			r.FailReason = report.FailReason
			return nil
		})
		if err != nil {
			s.logger.Warn("order outcome not recorded",
				slog.String("batch_id", report.BatchID),
				slog.String("pool_id", poolID),
				slog.String("order_id", entries[failedIdx].OrderID),
				slog.String("error", err.Error()),
			)
		} else {
			report.Orders = append(report.Orders, record)
		}
		report.Failed = 1
		s.logger.Warn("batch stopped on invalid order",
			slog.String("batch_id", report.BatchID),
			slog.String("pool_id", poolID),
			slog.Int("index", failedIdx),
			slog.String("order_id", entries[failedIdx].OrderID),
			slog.String("error", report.FailReason),
		)
	}

	if len(entries) > 0 {
		s.logger.Info("batch executed",
			slog.String("batch_id", report.BatchID),
			slog.String("pool_id", poolID),
			slog.Int("orders", len(entries)),
			slog.Int("settled", report.Settled),
			slog.Int("rejected", report.Rejected),
			slog.Int("failed", report.Failed),
			slog.Int("requeued", report.Requeued),
			slog.Float64("k_before", result.InitialPool.InvariantK()),
			slog.Float64("k_after", result.FinalPool.InvariantK()),
		)
	}
	return report, nil
}

// RunAll runs a batch for every pool that has queued orders, in pool ID
// order. Errors are logged and do not stop the remaining pools.
func (s *BatchService) RunAll(ctx context.Context) {
	ids := s.queues.PoolIDs()
	sort.Strings(ids)

	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		q := s.queues.GetOrCreate(id)
		q.Lock()
		pending := q.Len()
		q.Unlock()
		if pending == 0 {
			continue
		}

		if _, err := s.Run(ctx, id); err != nil {
			s.logger.Error("batch run failed",
				slog.String("pool_id", id),
				slog.String("error", err.Error()),
			)
		}
	}
}

package service

import (
	"fmt"
	"regexp"
	"time"

	"github.com/efreitasn/ammbatcher/internal/domain"
	"github.com/efreitasn/ammbatcher/internal/engine"
	"github.com/efreitasn/ammbatcher/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var requesterIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidOrderStatuses lists all valid order status values for validation.
var ValidOrderStatuses = map[domain.OrderStatus]bool{
	domain.OrderStatusPending:          true,
	domain.OrderStatusSettled:          true,
	domain.OrderStatusRejectedSlippage: true,
	domain.OrderStatusFailed:           true,
	domain.OrderStatusCancelled:        true,
}

func validateRequesterID(id string) error {
	if !requesterIDRegex.MatchString(id) {
		return &domain.ValidationError{Message: "requester_id must match ^[a-zA-Z0-9_-]{1,64}$"}
	}
	return nil
}

// SubmitOrderRequest represents the input for order submission.
type SubmitOrderRequest struct {
	PoolID       string
	RequesterID  string
	InputToken   string
	AmountIn     decimal.Decimal
	MinAmountOut decimal.Decimal
}

// OrderService handles order submission, retrieval, cancellation, and listing.
type OrderService struct {
	pools  *store.PoolStore
	orders *store.OrderStore
	queues *engine.QueueManager
}

// NewOrderService creates a new OrderService with the given dependencies.
func NewOrderService(pools *store.PoolStore, orders *store.OrderStore, queues *engine.QueueManager) *OrderService {
	return &OrderService{
		pools:  pools,
		orders: orders,
		queues: queues,
	}
}

// Submit validates the request, records the order as pending, and queues it
// behind every order already waiting for the pool. Arrival order is the
// order the next batch processes it in.
func (s *OrderService) Submit(req SubmitOrderRequest) (domain.OrderRecord, error) {
	if err := validateRequesterID(req.RequesterID); err != nil {
		return domain.OrderRecord{}, err
	}
	token, err := domain.ParseToken(req.InputToken)
	if err != nil {
		return domain.OrderRecord{}, err
	}

	order := domain.Order{
		OrderID:      uuid.New().String(),
		RequesterID:  req.RequesterID,
		InputToken:   token,
		AmountIn:     domain.AmountFromDecimal(req.AmountIn),
		MinAmountOut: domain.AmountFromDecimal(req.MinAmountOut),
	}
	if err := order.Validate(); err != nil {
		return domain.OrderRecord{}, err
	}

	if _, err := s.pools.Get(req.PoolID); err != nil {
		return domain.OrderRecord{}, err
	}

	q := s.queues.GetOrCreate(req.PoolID)
	q.Lock()
	defer q.Unlock()

	record := &domain.OrderRecord{
		Order:       order,
		PoolID:      req.PoolID,
		Seq:         q.Push(order),
		Status:      domain.OrderStatusPending,
		SubmittedAt: time.Now().UTC(),
	}
	s.orders.Create(record)
	return *record, nil
}

// Get retrieves an order record by ID.
func (s *OrderService) Get(orderID string) (domain.OrderRecord, error) {
	return s.orders.Get(orderID)
}

// Cancel withdraws a pending order from its pool's queue. Orders already
// taken by a batch cannot be cancelled.
func (s *OrderService) Cancel(orderID string) (domain.OrderRecord, error) {
	record, err := s.orders.Get(orderID)
	if err != nil {
		return domain.OrderRecord{}, err
	}

	q := s.queues.GetOrCreate(record.PoolID)
	q.Lock()
	defer q.Unlock()

	if !q.Remove(orderID) {
		return domain.OrderRecord{}, domain.ErrOrderNotCancellable
	}
	now := time.Now().UTC()
	return s.orders.Update(orderID, func(r *domain.OrderRecord) error {
		r.Status = domain.OrderStatusCancelled
		r.CancelledAt = &now
		return nil
	})
}

// List returns a pool's orders in admission order, optionally filtered by
// status.
func (s *OrderService) List(poolID string, status *domain.OrderStatus) ([]domain.OrderRecord, error) {
	if status != nil && !ValidOrderStatuses[*status] {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("Invalid status filter: '%s'. Must be one of: pending, settled, rejected_slippage, failed, cancelled", *status),
		}
	}
	if _, err := s.pools.Get(poolID); err != nil {
		return nil, err
	}
	return s.orders.ListByPool(poolID, status), nil
}

// ListPending returns the orders waiting for the pool's next batch.
func (s *OrderService) ListPending(poolID string) ([]domain.OrderRecord, error) {
	pending := domain.OrderStatusPending
	return s.List(poolID, &pending)
}

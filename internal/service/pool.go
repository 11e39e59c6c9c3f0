package service

import (
	"time"

	"github.com/efreitasn/ammbatcher/internal/domain"
	"github.com/efreitasn/ammbatcher/internal/engine"
	"github.com/efreitasn/ammbatcher/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxPoolNameLen = 64

// CreatePoolRequest represents the input for pool creation. A nil FeeRate
// takes the configured default.
type CreatePoolRequest struct {
	Name     string
	ReserveA decimal.Decimal
	ReserveB decimal.Decimal
	FeeRate  *decimal.Decimal
}

// QuoteRequest represents a read-only pricing request against a pool's
// committed state.
type QuoteRequest struct {
	PoolID       string
	InputToken   string
	AmountIn     decimal.Decimal
	MinAmountOut decimal.Decimal
}

// QuoteResult is a priced order together with the pool it was priced
// against and the pool it would leave behind.
type QuoteResult struct {
	PoolID      string
	PoolVersion uint64
	Order       domain.Order
	Quote       engine.Quote
	PoolBefore  domain.PoolState
	PoolAfter   domain.PoolState
}

// PoolService handles pool creation, retrieval, and quoting.
type PoolService struct {
	pools          *store.PoolStore
	queues         *engine.QueueManager
	defaultFeeRate float64
}

// NewPoolService creates a new PoolService.
func NewPoolService(pools *store.PoolStore, queues *engine.QueueManager, defaultFeeRate float64) *PoolService {
	return &PoolService{
		pools:          pools,
		queues:         queues,
		defaultFeeRate: defaultFeeRate,
	}
}

// Create validates the reserves and fee, registers the pool, and gives it
// an empty order queue.
func (s *PoolService) Create(req CreatePoolRequest) (domain.Pool, error) {
	name := req.Name
	if name == "" {
		name = "A/B"
	}
	if len(name) > maxPoolNameLen {
		return domain.Pool{}, &domain.ValidationError{Message: "name must be at most 64 characters"}
	}

	fee := s.defaultFeeRate
	if req.FeeRate != nil {
		fee = domain.AmountFromDecimal(*req.FeeRate)
	}

	state, err := domain.NewPoolState(
		domain.AmountFromDecimal(req.ReserveA),
		domain.AmountFromDecimal(req.ReserveB),
		fee,
	)
	if err != nil {
		return domain.Pool{}, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	pool := &domain.Pool{
		PoolID:    uuid.New().String(),
		Name:      name,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.pools.Create(pool)
	s.queues.GetOrCreate(pool.PoolID)
	return *pool, nil
}

// Get returns the pool's committed state.
func (s *PoolService) Get(poolID string) (domain.Pool, error) {
	return s.pools.Get(poolID)
}

// List returns every pool, oldest first.
func (s *PoolService) List() []domain.Pool {
	return s.pools.List()
}

// Quote prices a hypothetical order against the committed pool without
// queueing it or touching the pool.
func (s *PoolService) Quote(req QuoteRequest) (QuoteResult, error) {
	token, err := domain.ParseToken(req.InputToken)
	if err != nil {
		return QuoteResult{}, err
	}

	pool, err := s.pools.Get(req.PoolID)
	if err != nil {
		return QuoteResult{}, err
	}

	order := domain.Order{
		InputToken:   token,
		AmountIn:     domain.AmountFromDecimal(req.AmountIn),
		MinAmountOut: domain.AmountFromDecimal(req.MinAmountOut),
	}
	quote, err := engine.Price(pool.State, order)
	if err != nil {
		return QuoteResult{}, err
	}

	after := pool.State
	if quote.Outcome == engine.OutcomeSuccess {
		after = pool.State.ApplySwap(token, order.AmountIn, quote.AmountOut)
	}
	return QuoteResult{
		PoolID:      pool.PoolID,
		PoolVersion: pool.Version,
		Order:       order,
		Quote:       quote,
		PoolBefore:  pool.State,
		PoolAfter:   after,
	}, nil
}

package engine

import (
	"fmt"

	"github.com/efreitasn/ammbatcher/internal/domain"
)

// OrderOutcome records how a single order in a batch was decided.
type OrderOutcome struct {
	OrderID     string
	RequesterID string
	InputToken  domain.Token
	AmountIn    float64
	Outcome     Outcome
	AmountOut   float64
	FeePaid     float64
}

// BatchResult is everything a batch run produces. Settlements, Rejections
// and Outcomes preserve the relative order of the input orders.
type BatchResult struct {
	InitialPool domain.PoolState
	FinalPool   domain.PoolState
	Settlements []domain.SettlementRecord
	Rejections  []domain.RejectionRecord
	Outcomes    []OrderOutcome
}

// Processed returns how many orders were decided before the batch ended.
func (r BatchResult) Processed() int {
	return len(r.Outcomes)
}

// BatchError reports the order that stopped a batch. It unwraps to
// domain.ErrInvalidOrder or domain.ErrInvalidPool.
type BatchError struct {
	Index   int
	OrderID string
	Err     error
}

func (e *BatchError) Error() string {
	if e.OrderID != "" {
		return fmt.Sprintf("batch stopped at order %d (%s): %v", e.Index, e.OrderID, e.Err)
	}
	return fmt.Sprintf("batch stopped at order %d: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// RunBatch prices orders strictly in input order, each against the pool
// left by the order before it. Accepted orders produce a new pool value and
// a settlement record; slippage rejections leave the pool untouched and
// produce a rejection record.
//
// A structural error stops the run immediately. The returned result then
// holds the pool as of the last completed order and the records produced so
// far, and the error is a *BatchError.
func RunBatch(pool domain.PoolState, orders []domain.Order) (BatchResult, error) {
	result := BatchResult{
		InitialPool: pool,
		FinalPool:   pool,
		Settlements: make([]domain.SettlementRecord, 0, len(orders)),
		Rejections:  make([]domain.RejectionRecord, 0),
		Outcomes:    make([]OrderOutcome, 0, len(orders)),
	}

	current := pool
	for i, order := range orders {
		quote, err := Price(current, order)
		if err != nil {
			result.FinalPool = current
			return result, &BatchError{Index: i, OrderID: order.OrderID, Err: err}
		}

		switch quote.Outcome {
		case OutcomeSuccess:
			current = current.ApplySwap(order.InputToken, order.AmountIn, quote.AmountOut)
			result.Settlements = append(result.Settlements, domain.SettlementRecord{
				OrderID:        order.OrderID,
				Recipient:      order.RequesterID,
				TokenReceived:  order.OutputToken(),
				AmountReceived: quote.AmountOut,
			})
		case OutcomeRejectedSlippage:
			result.Rejections = append(result.Rejections, domain.RejectionRecord{
				OrderID:     order.OrderID,
				RequesterID: order.RequesterID,
				Reason:      domain.ReasonSlippage,
			})
		}

		result.Outcomes = append(result.Outcomes, OrderOutcome{
			OrderID:     order.OrderID,
			RequesterID: order.RequesterID,
			InputToken:  order.InputToken,
			AmountIn:    order.AmountIn,
			Outcome:     quote.Outcome,
			AmountOut:   quote.AmountOut,
			FeePaid:     quote.FeePaid,
		})
	}

	result.FinalPool = current
	return result, nil
}

package engine

import (
	"fmt"
	"math"

	"github.com/efreitasn/ammbatcher/internal/domain"
)

// Outcome is the pricing decision for a single order.
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeRejectedSlippage Outcome = "rejected_slippage"
)

// Quote is the result of pricing one order against one pool snapshot.
// A rejected quote always carries zero AmountOut and FeePaid.
type Quote struct {
	AmountOut float64
	FeePaid   float64
	Outcome   Outcome
}

// Price computes the constant-product output for order against pool. It has
// no side effects on pool.
//
// The fee is taken from the input before the invariant is applied, and the
// net input is computed once and reused so the result rounds the same way
// every time:
//
//	net = amount_in * (1 - fee_rate)
//	out = (net * reserve_out) / (reserve_in + net)
func Price(pool domain.PoolState, order domain.Order) (Quote, error) {
	if err := pool.Validate(); err != nil {
		return Quote{}, err
	}
	if err := order.Validate(); err != nil {
		return Quote{}, err
	}

	reserveIn, reserveOut := pool.Reserves(order.InputToken)

	amountInNet := order.AmountIn * (1 - pool.FeeRate)

	numerator := amountInNet * reserveOut
	denominator := reserveIn + amountInNet
	if denominator == 0 {
		return Quote{}, fmt.Errorf("%w: zero denominator pricing order", domain.ErrInvalidPool)
	}
	amountOut := numerator / denominator

	if amountOut < order.MinAmountOut {
		return Quote{Outcome: OutcomeRejectedSlippage}, nil
	}

	// Float rounding can push out up to reserve_out when the input dwarfs
	// the pool; paying that would empty one side.
	if amountOut >= reserveOut {
		return Quote{}, fmt.Errorf("%w: swap would drain reserve %s", domain.ErrInvalidPool, order.OutputToken())
	}

	amountOut, ok := floorToInvariant(reserveIn, reserveOut, order.AmountIn, amountOut)
	if !ok {
		return Quote{}, fmt.Errorf("%w: rounding would shrink the invariant", domain.ErrInvalidPool)
	}
	if amountOut < order.MinAmountOut {
		return Quote{Outcome: OutcomeRejectedSlippage}, nil
	}

	return Quote{
		AmountOut: amountOut,
		FeePaid:   order.AmountIn - amountInNet,
		Outcome:   OutcomeSuccess,
	}, nil
}

// maxInvariantSteps bounds floorToInvariant. Observed deficits close within
// two steps.
const maxInvariantSteps = 16

// floorToInvariant lowers amountOut one representable step of the remaining
// reserve at a time until (reserveIn+amountIn)*(reserveOut-amountOut), as
// ApplySwap will compute it, is no smaller than reserveIn*reserveOut. Inputs
// near float resolution can otherwise round the product below the old K.
func floorToInvariant(reserveIn, reserveOut, amountIn, amountOut float64) (float64, bool) {
	k := reserveIn * reserveOut
	newIn := reserveIn + amountIn
	for i := 0; i < maxInvariantSteps; i++ {
		if newIn*(reserveOut-amountOut) >= k {
			return amountOut, true
		}
		amountOut = reserveOut - math.Nextafter(reserveOut-amountOut, reserveOut)
	}
	return amountOut, newIn*(reserveOut-amountOut) >= k
}

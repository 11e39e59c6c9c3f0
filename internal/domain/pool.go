package domain

import (
	"fmt"
	"math"
	"time"
)

// DefaultFeeRate is the fraction of every input retained by the pool (0.3%).
const DefaultFeeRate = 0.003

// PoolState is an immutable snapshot of a constant-product pool. Every
// accepted swap produces a new value through ApplySwap; nothing mutates a
// PoolState in place.
type PoolState struct {
	ReserveA float64
	ReserveB float64
	FeeRate  float64
}

// NewPoolState builds a validated snapshot.
func NewPoolState(reserveA, reserveB, feeRate float64) (PoolState, error) {
	p := PoolState{ReserveA: reserveA, ReserveB: reserveB, FeeRate: feeRate}
	if err := p.Validate(); err != nil {
		return PoolState{}, err
	}
	return p, nil
}

// Validate checks that both reserves are finite and positive and that the
// fee rate lies in [0, 1).
func (p PoolState) Validate() error {
	if !isFinite(p.ReserveA) || p.ReserveA <= 0 {
		return fmt.Errorf("%w: reserve_a must be a positive finite number, got %v", ErrInvalidPool, p.ReserveA)
	}
	if !isFinite(p.ReserveB) || p.ReserveB <= 0 {
		return fmt.Errorf("%w: reserve_b must be a positive finite number, got %v", ErrInvalidPool, p.ReserveB)
	}
	if !isFinite(p.FeeRate) || p.FeeRate < 0 || p.FeeRate >= 1 {
		return fmt.Errorf("%w: fee_rate must be in [0, 1), got %v", ErrInvalidPool, p.FeeRate)
	}
	return nil
}

// InvariantK returns reserve_a * reserve_b.
func (p PoolState) InvariantK() float64 {
	return p.ReserveA * p.ReserveB
}

// Reserves returns the reserve that receives the input token and the
// reserve that pays out the opposite token.
func (p PoolState) Reserves(in Token) (reserveIn, reserveOut float64) {
	if in == TokenB {
		return p.ReserveB, p.ReserveA
	}
	return p.ReserveA, p.ReserveB
}

// Reserve returns the quantity held of token t.
func (p PoolState) Reserve(t Token) float64 {
	if t == TokenB {
		return p.ReserveB
	}
	return p.ReserveA
}

// ApplySwap returns the pool after amountIn of token in was deposited and
// amountOut of the opposite token was paid out. The receiver is unchanged.
func (p PoolState) ApplySwap(in Token, amountIn, amountOut float64) PoolState {
	next := p
	if in == TokenB {
		next.ReserveB += amountIn
		next.ReserveA -= amountOut
	} else {
		next.ReserveA += amountIn
		next.ReserveB -= amountOut
	}
	return next
}

// Pool is a registered pool together with its current committed state.
// Version increases by one on every committed batch.
type Pool struct {
	PoolID     string
	Name       string
	State      PoolState
	Version    uint64
	BatchCount uint64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

package domain

import (
	"fmt"
	"time"
)

// Order is a single swap request. The engine never mutates an Order.
type Order struct {
	OrderID      string
	RequesterID  string
	InputToken   Token
	AmountIn     float64
	MinAmountOut float64 // slippage floor
}

// OutputToken returns the token the requester receives on success.
func (o Order) OutputToken() Token {
	return o.InputToken.Opposite()
}

// Validate rejects unknown token tags and negative or non-finite amounts.
func (o Order) Validate() error {
	if !o.InputToken.Valid() {
		return fmt.Errorf("%w: unknown input token %q", ErrInvalidOrder, o.InputToken)
	}
	if !isFinite(o.AmountIn) || o.AmountIn < 0 {
		return fmt.Errorf("%w: amount_in must be a non-negative finite number, got %v", ErrInvalidOrder, o.AmountIn)
	}
	if !isFinite(o.MinAmountOut) || o.MinAmountOut < 0 {
		return fmt.Errorf("%w: min_amount_out must be a non-negative finite number, got %v", ErrInvalidOrder, o.MinAmountOut)
	}
	return nil
}

// OrderStatus represents the lifecycle state of a submitted order.
type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "pending"
	OrderStatusSettled          OrderStatus = "settled"
	OrderStatusRejectedSlippage OrderStatus = "rejected_slippage"
	OrderStatusFailed           OrderStatus = "failed"
	OrderStatusCancelled        OrderStatus = "cancelled"
)

// OrderRecord tracks a submitted order through the service layer.
type OrderRecord struct {
	Order       Order
	PoolID      string
	Seq         uint64
	Status      OrderStatus
	AmountOut   float64
	FeePaid     float64
	BatchID     string
	FailReason  string
	SubmittedAt time.Time
	SettledAt   *time.Time
	CancelledAt *time.Time
}

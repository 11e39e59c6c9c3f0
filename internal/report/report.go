// Package report renders a batch result as the outputs of the settlement
// transaction: the new pool followed by one payout per settled order.
package report

import (
	"github.com/efreitasn/ammbatcher/internal/domain"
	"github.com/efreitasn/ammbatcher/internal/engine"
)

// PoolOutput is output 0 of the settlement transaction.
type PoolOutput struct {
	Index      int
	ReserveA   float64
	ReserveB   float64
	FeeRate    float64
	InvariantK float64
}

// Payout is one transfer to the originator of a settled order.
type Payout struct {
	Index   int
	OrderID string
	To      string
	Amount  float64
	Token   domain.Token
}

// Outputs is the full output set of a settlement transaction.
type Outputs struct {
	Pool    PoolOutput
	Payouts []Payout
}

// TransactionOutputs lays out result as transaction outputs. Payouts keep
// settlement order and are numbered from 1.
func TransactionOutputs(result engine.BatchResult) Outputs {
	final := result.FinalPool
	out := Outputs{
		Pool: PoolOutput{
			Index:      0,
			ReserveA:   final.ReserveA,
			ReserveB:   final.ReserveB,
			FeeRate:    final.FeeRate,
			InvariantK: final.InvariantK(),
		},
		Payouts: make([]Payout, len(result.Settlements)),
	}
	for i, s := range result.Settlements {
		out.Payouts[i] = Payout{
			Index:   i + 1,
			OrderID: s.OrderID,
			To:      s.Recipient,
			Amount:  s.AmountReceived,
			Token:   s.TokenReceived,
		}
	}
	return out
}

package report

import (
	"encoding/json"
	"io"

	"github.com/efreitasn/ammbatcher/internal/engine"
	"github.com/shopspring/decimal"
)

// Document is the machine-readable form of a batch result. Amounts are
// decimal strings carrying the shortest representation that round-trips to
// the computed float64.
type Document struct {
	InitialPool PoolDocument    `json:"initial_pool"`
	Orders      []OrderDocument `json:"orders"`
	FinalPool   PoolDocument    `json:"final_pool"`
	Outputs     OutputsDocument `json:"outputs"`
}

// PoolDocument is a pool snapshot.
type PoolDocument struct {
	ReserveA   decimal.Decimal `json:"reserve_a"`
	ReserveB   decimal.Decimal `json:"reserve_b"`
	FeeRate    decimal.Decimal `json:"fee_rate"`
	InvariantK decimal.Decimal `json:"invariant_k"`
}

// OrderDocument is the decision taken for one order.
type OrderDocument struct {
	OrderID     string          `json:"order_id,omitempty"`
	RequesterID string          `json:"requester_id"`
	InputToken  string          `json:"input_token"`
	AmountIn    decimal.Decimal `json:"amount_in"`
	Outcome     string          `json:"outcome"`
	AmountOut   decimal.Decimal `json:"amount_out"`
	FeePaid     decimal.Decimal `json:"fee_paid"`
}

// OutputsDocument mirrors Outputs.
type OutputsDocument struct {
	Pool    PoolOutputDocument `json:"pool"`
	Payouts []PayoutDocument   `json:"payouts"`
}

type PoolOutputDocument struct {
	Index int `json:"index"`
	PoolDocument
}

type PayoutDocument struct {
	Index   int             `json:"index"`
	OrderID string          `json:"order_id,omitempty"`
	To      string          `json:"to"`
	Amount  decimal.Decimal `json:"amount"`
	Token   string          `json:"token"`
}

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func poolDocument(reserveA, reserveB, feeRate, k float64) PoolDocument {
	return PoolDocument{ReserveA: d(reserveA), ReserveB: d(reserveB), FeeRate: d(feeRate), InvariantK: d(k)}
}

// NewDocument converts a batch result into its JSON document.
func NewDocument(result engine.BatchResult) Document {
	initial, final := result.InitialPool, result.FinalPool
	outputs := TransactionOutputs(result)

	doc := Document{
		InitialPool: poolDocument(initial.ReserveA, initial.ReserveB, initial.FeeRate, initial.InvariantK()),
		Orders:      make([]OrderDocument, len(result.Outcomes)),
		FinalPool:   poolDocument(final.ReserveA, final.ReserveB, final.FeeRate, final.InvariantK()),
		Outputs: OutputsDocument{
			Pool: PoolOutputDocument{
				Index:        outputs.Pool.Index,
				PoolDocument: poolDocument(outputs.Pool.ReserveA, outputs.Pool.ReserveB, outputs.Pool.FeeRate, outputs.Pool.InvariantK),
			},
			Payouts: make([]PayoutDocument, len(outputs.Payouts)),
		},
	}
	for i, o := range result.Outcomes {
		doc.Orders[i] = OrderDocument{
			OrderID:     o.OrderID,
			RequesterID: o.RequesterID,
			InputToken:  string(o.InputToken),
			AmountIn:    d(o.AmountIn),
			Outcome:     string(o.Outcome),
			AmountOut:   d(o.AmountOut),
			FeePaid:     d(o.FeePaid),
		}
	}
	for i, p := range outputs.Payouts {
		doc.Outputs.Payouts[i] = PayoutDocument{
			Index:   p.Index,
			OrderID: p.OrderID,
			To:      p.To,
			Amount:  d(p.Amount),
			Token:   string(p.Token),
		}
	}
	return doc
}

// WriteJSON writes the batch result as an indented JSON document.
func WriteJSON(w io.Writer, result engine.BatchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(result))
}

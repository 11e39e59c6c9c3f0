package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/efreitasn/ammbatcher/internal/domain"
	"github.com/efreitasn/ammbatcher/internal/engine"
)

const (
	headerPlaces = 2
	amountPlaces = 4
	rule         = "========================================"
)

func amt(f float64) string {
	return domain.FormatAmount(f, amountPlaces)
}

// WriteText writes a human-readable account of the batch: the starting
// pool, how each order was decided, and the resulting transaction outputs.
func WriteText(w io.Writer, result engine.BatchResult) error {
	var b strings.Builder

	initial := result.InitialPool
	b.WriteString("--- batch start ---\n")
	fmt.Fprintf(&b, "initial pool: A=%s | B=%s | K=%s\n",
		domain.FormatAmount(initial.ReserveA, headerPlaces),
		domain.FormatAmount(initial.ReserveB, headerPlaces),
		domain.FormatAmount(initial.InvariantK(), headerPlaces),
	)

	for i, o := range result.Outcomes {
		fmt.Fprintf(&b, "\n>> order %d", i+1)
		if o.OrderID != "" {
			fmt.Fprintf(&b, " %s", o.OrderID)
		}
		fmt.Fprintf(&b, " from %s: swap %s token %s\n", o.RequesterID, amt(o.AmountIn), o.InputToken)

		switch o.Outcome {
		case engine.OutcomeSuccess:
			fmt.Fprintf(&b, "   -> settled: receives %s token %s (fee %s)\n",
				amt(o.AmountOut), o.InputToken.Opposite(), amt(o.FeePaid))
		default:
			fmt.Fprintf(&b, "   -> rejected: %s, input returned to %s\n", o.Outcome, o.RequesterID)
		}
	}

	outputs := TransactionOutputs(result)
	fmt.Fprintf(&b, "\n%s\ntransaction outputs\n%s\n", rule, rule)
	fmt.Fprintf(&b, "[output %d] new pool state:\n", outputs.Pool.Index)
	fmt.Fprintf(&b, "   reserve A: %s\n", amt(outputs.Pool.ReserveA))
	fmt.Fprintf(&b, "   reserve B: %s\n", amt(outputs.Pool.ReserveB))
	fmt.Fprintf(&b, "   K        : %s\n", amt(outputs.Pool.InvariantK))
	for _, p := range outputs.Payouts {
		fmt.Fprintf(&b, "[output %d] pay %s: %s token %s\n", p.Index, p.To, amt(p.Amount), p.Token)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

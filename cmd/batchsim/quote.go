package main

import (
	"fmt"
	"log/slog"

	"github.com/efreitasn/ammbatcher/internal/domain"
	"github.com/efreitasn/ammbatcher/internal/engine"
	"github.com/spf13/cobra"
)

const quotePlaces = 4

func runQuote(cmd *cobra.Command, _ []string) error {
	cfg, err := parseQuoteFlags(cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	q, err := engine.Price(cfg.Pool, cfg.Order)
	if err != nil {
		return err
	}

	logger.Debug("quoted",
		slog.String("input_token", string(cfg.Order.InputToken)),
		slog.Float64("amount_in", cfg.Order.AmountIn),
		slog.String("outcome", string(q.Outcome)),
	)

	out := cmd.OutOrStdout()
	order := cfg.Order
	fmt.Fprintf(out, "swap %s token %s for token %s\n",
		domain.FormatAmount(order.AmountIn, quotePlaces), order.InputToken, order.OutputToken())
	fmt.Fprintf(out, "outcome   : %s\n", q.Outcome)
	if q.Outcome != engine.OutcomeSuccess {
		fmt.Fprintf(out, "min out   : %s\n", domain.FormatAmount(order.MinAmountOut, quotePlaces))
		return nil
	}

	after := cfg.Pool.ApplySwap(order.InputToken, order.AmountIn, q.AmountOut)
	fmt.Fprintf(out, "amount out: %s\n", domain.FormatAmount(q.AmountOut, quotePlaces))
	fmt.Fprintf(out, "fee paid  : %s\n", domain.FormatAmount(q.FeePaid, quotePlaces))
	fmt.Fprintf(out, "pool after: A=%s | B=%s | K=%s\n",
		domain.FormatAmount(after.ReserveA, quotePlaces),
		domain.FormatAmount(after.ReserveB, quotePlaces),
		domain.FormatAmount(after.InvariantK(), quotePlaces),
	)
	return nil
}

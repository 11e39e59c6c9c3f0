package main

import (
	"errors"
	"log/slog"

	"github.com/efreitasn/ammbatcher/internal/engine"
	"github.com/efreitasn/ammbatcher/internal/report"
	"github.com/efreitasn/ammbatcher/internal/scenario"
	"github.com/spf13/cobra"
)

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, err := parseRunFlags(cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	sc := scenario.Reference()
	if cfg.ScenarioPath != "" {
		if sc, err = scenario.Load(cfg.ScenarioPath); err != nil {
			return err
		}
	}
	pool, orders, err := sc.Build()
	if err != nil {
		return err
	}

	logger.Debug("running batch",
		slog.String("scenario", sc.Name),
		slog.Int("orders", len(orders)),
	)

	// A structural failure still yields the prefix that was processed.
	result, batchErr := engine.RunBatch(pool, orders)

	out := cmd.OutOrStdout()
	switch cfg.Format {
	case formatJSON:
		err = report.WriteJSON(out, result)
	default:
		err = report.WriteText(out, result)
	}
	if err != nil {
		return err
	}

	if batchErr != nil {
		var be *engine.BatchError
		if errors.As(batchErr, &be) {
			logger.Warn("batch stopped early",
				slog.Int("index", be.Index),
				slog.String("order_id", be.OrderID),
				slog.String("error", be.Err.Error()),
			)
		}
		return batchErr
	}

	logger.Info("batch executed",
		slog.Int("settled", len(result.Settlements)),
		slog.Int("rejected", len(result.Rejections)),
		slog.Float64("k_before", result.InitialPool.InvariantK()),
		slog.Float64("k_after", result.FinalPool.InvariantK()),
	)
	return nil
}

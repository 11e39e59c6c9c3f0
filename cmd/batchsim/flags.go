package main

import (
	"fmt"

	"github.com/efreitasn/ammbatcher/internal/domain"
	"github.com/spf13/pflag"
)

const (
	logLevelKey = "log-level"

	scenarioKey = "scenario"
	formatKey   = "format"

	reserveAKey  = "reserve-a"
	reserveBKey  = "reserve-b"
	feeKey       = "fee"
	tokenKey     = "token"
	amountKey    = "amount"
	minAmountKey = "min-out"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func addRunFlags(flags *pflag.FlagSet) {
	flags.String(scenarioKey, "", "scenario YAML file (defaults to the built-in reference scenario)")
	flags.String(formatKey, formatText, "report format (text, json)")
}

type runConfig struct {
	ScenarioPath string
	Format       string
}

func parseRunFlags(flags *pflag.FlagSet) (*runConfig, error) {
	path, err := flags.GetString(scenarioKey)
	if err != nil {
		return nil, err
	}
	format, err := flags.GetString(formatKey)
	if err != nil {
		return nil, err
	}
	if format != formatText && format != formatJSON {
		return nil, fmt.Errorf("invalid --%s %q, must be one of: %s, %s", formatKey, format, formatText, formatJSON)
	}
	return &runConfig{ScenarioPath: path, Format: format}, nil
}

func addQuoteFlags(flags *pflag.FlagSet) {
	flags.String(reserveAKey, "1000", "reserve of token A")
	flags.String(reserveBKey, "2000", "reserve of token B")
	flags.String(feeKey, "0.003", "fee rate in [0, 1)")
	flags.String(tokenKey, "A", "input token (A or B)")
	flags.String(amountKey, "", "amount of the input token (required)")
	flags.String(minAmountKey, "0", "minimum acceptable output")
}

type quoteConfig struct {
	Pool  domain.PoolState
	Order domain.Order
}

func parseQuoteFlags(flags *pflag.FlagSet) (*quoteConfig, error) {
	amounts := make(map[string]float64, 5)
	for _, key := range []string{reserveAKey, reserveBKey, feeKey, amountKey, minAmountKey} {
		raw, err := flags.GetString(key)
		if err != nil {
			return nil, err
		}
		if raw == "" {
			return nil, fmt.Errorf("--%s is required", key)
		}
		f, err := domain.ParseAmount(raw)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", key, err)
		}
		amounts[key] = f
	}

	pool, err := domain.NewPoolState(amounts[reserveAKey], amounts[reserveBKey], amounts[feeKey])
	if err != nil {
		return nil, err
	}

	rawToken, err := flags.GetString(tokenKey)
	if err != nil {
		return nil, err
	}
	token, err := domain.ParseToken(rawToken)
	if err != nil {
		return nil, err
	}

	return &quoteConfig{
		Pool: pool,
		Order: domain.Order{
			RequesterID:  "quote",
			InputToken:   token,
			AmountIn:     amounts[amountKey],
			MinAmountOut: amounts[minAmountKey],
		},
	}, nil
}

// Package scenario loads batch scenarios (a starting pool and an ordered
// list of orders) from YAML.
package scenario

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/efreitasn/ammbatcher/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed reference.yaml
var referenceYAML []byte

// Scenario is a pool and the orders of one batch, in processing order.
type Scenario struct {
	Name   string      `yaml:"name"`
	Pool   PoolSpec    `yaml:"pool"`
	Orders []OrderSpec `yaml:"orders"`
}

// PoolSpec is the starting pool. Amounts may be written as YAML numbers or
// quoted decimal strings. A missing fee_rate means domain.DefaultFeeRate.
type PoolSpec struct {
	ReserveA decimal.Decimal  `yaml:"reserve_a"`
	ReserveB decimal.Decimal  `yaml:"reserve_b"`
	FeeRate  *decimal.Decimal `yaml:"fee_rate"`
}

// OrderSpec is one order. A missing order_id is filled in by Build.
type OrderSpec struct {
	OrderID      string          `yaml:"order_id"`
	RequesterID  string          `yaml:"requester_id"`
	InputToken   string          `yaml:"input_token"`
	AmountIn     decimal.Decimal `yaml:"amount_in"`
	MinAmountOut decimal.Decimal `yaml:"min_amount_out"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scenario document. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse scenario: empty document")
		}
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	return &s, nil
}

// Reference returns the built-in three-order scenario.
func Reference() *Scenario {
	s, err := Parse(referenceYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded reference scenario is invalid: %v", err))
	}
	return s
}

// Build converts the scenario into a validated pool and orders ready for
// engine.RunBatch. Orders without an ID are named order-1, order-2, ...
// by position.
func (s *Scenario) Build() (domain.PoolState, []domain.Order, error) {
	fee := domain.DefaultFeeRate
	if s.Pool.FeeRate != nil {
		fee = domain.AmountFromDecimal(*s.Pool.FeeRate)
	}
	pool, err := domain.NewPoolState(
		domain.AmountFromDecimal(s.Pool.ReserveA),
		domain.AmountFromDecimal(s.Pool.ReserveB),
		fee,
	)
	if err != nil {
		return domain.PoolState{}, nil, fmt.Errorf("pool: %w", err)
	}

	orders := make([]domain.Order, len(s.Orders))
	for i, o := range s.Orders {
		token, err := domain.ParseToken(o.InputToken)
		if err != nil {
			return domain.PoolState{}, nil, fmt.Errorf("orders[%d]: %w", i, err)
		}
		id := o.OrderID
		if id == "" {
			id = fmt.Sprintf("order-%d", i+1)
		}
		orders[i] = domain.Order{
			OrderID:      id,
			RequesterID:  o.RequesterID,
			InputToken:   token,
			AmountIn:     domain.AmountFromDecimal(o.AmountIn),
			MinAmountOut: domain.AmountFromDecimal(o.MinAmountOut),
		}
		if err := orders[i].Validate(); err != nil {
			return domain.PoolState{}, nil, fmt.Errorf("orders[%d]: %w", i, err)
		}
	}
	return pool, orders, nil
}

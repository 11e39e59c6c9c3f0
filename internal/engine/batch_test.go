package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/efreitasn/ammbatcher/internal/domain"
)

func referenceOrders() []domain.Order {
	return []domain.Order{
		newOrder("o-alice", "Alice", domain.TokenA, 100, 180),
		newOrder("o-bob", "Bob", domain.TokenA, 500, 900),
		newOrder("o-charlie", "Charlie", domain.TokenB, 50, 20),
	}
}

func TestRunBatch_ReferenceScenario(t *testing.T) {
	result, err := RunBatch(referencePool(), referenceOrders())
	if err != nil {
		t.Fatalf("RunBatch() unexpected error: %v", err)
	}

	if len(result.Outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(result.Outcomes))
	}
	wantOutcomes := []Outcome{OutcomeSuccess, OutcomeRejectedSlippage, OutcomeSuccess}
	for i, want := range wantOutcomes {
		if result.Outcomes[i].Outcome != want {
			t.Errorf("outcome[%d] = %s, want %s", i, result.Outcomes[i].Outcome, want)
		}
	}

	if len(result.Settlements) != 2 {
		t.Fatalf("expected 2 settlements, got %d", len(result.Settlements))
	}
	alice, charlie := result.Settlements[0], result.Settlements[1]
	if alice.Recipient != "Alice" || alice.TokenReceived != domain.TokenB || alice.OrderID != "o-alice" {
		t.Errorf("settlement[0] = %+v", alice)
	}
	if math.Abs(alice.AmountReceived-181.3222) > 1e-4 {
		t.Errorf("Alice received %v, want ≈181.3222", alice.AmountReceived)
	}
	if charlie.Recipient != "Charlie" || charlie.TokenReceived != domain.TokenA {
		t.Errorf("settlement[1] = %+v", charlie)
	}
	if math.Abs(charlie.AmountReceived-29.3466) > 1e-4 {
		t.Errorf("Charlie received %v, want ≈29.3466", charlie.AmountReceived)
	}

	if len(result.Rejections) != 1 {
		t.Fatalf("expected 1 rejection, got %d", len(result.Rejections))
	}
	if r := result.Rejections[0]; r.RequesterID != "Bob" || r.Reason != domain.ReasonSlippage || r.OrderID != "o-bob" {
		t.Errorf("rejection = %+v", r)
	}

	// Final pool: A = 1100 - 29.3466…, B = 2000 - 181.3222… + 50.
	final := result.FinalPool
	if math.Abs(final.ReserveA-(1100-charlie.AmountReceived)) > eps {
		t.Errorf("final ReserveA = %v", final.ReserveA)
	}
	if math.Abs(final.ReserveB-(2000-alice.AmountReceived+50)) > eps {
		t.Errorf("final ReserveB = %v", final.ReserveB)
	}
	if final.InvariantK() <= referencePool().InvariantK() {
		t.Errorf("K did not grow: %v <= %v", final.InvariantK(), referencePool().InvariantK())
	}
	if result.InitialPool != referencePool() {
		t.Errorf("InitialPool = %+v, want reference pool", result.InitialPool)
	}
}

func TestRunBatch_RejectedOrderLeavesPoolForNextOrder(t *testing.T) {
	pool := referencePool()
	afterAlice, err := RunBatch(pool, referenceOrders()[:1])
	if err != nil {
		t.Fatalf("RunBatch() unexpected error: %v", err)
	}

	// Charlie priced directly after Alice must match Charlie priced after
	// Alice and a rejected Bob.
	direct, err := Price(afterAlice.FinalPool, referenceOrders()[2])
	if err != nil {
		t.Fatalf("Price() unexpected error: %v", err)
	}

	full, err := RunBatch(pool, referenceOrders())
	if err != nil {
		t.Fatalf("RunBatch() unexpected error: %v", err)
	}
	if full.Outcomes[2].AmountOut != direct.AmountOut {
		t.Errorf("Charlie out = %v after reject, want %v", full.Outcomes[2].AmountOut, direct.AmountOut)
	}
	if full.Outcomes[1].AmountOut != 0 || full.Outcomes[1].FeePaid != 0 {
		t.Errorf("rejected outcome should report zeros: %+v", full.Outcomes[1])
	}
}

func TestRunBatch_EmptyBatch(t *testing.T) {
	pool := referencePool()
	for _, orders := range [][]domain.Order{nil, {}} {
		result, err := RunBatch(pool, orders)
		if err != nil {
			t.Fatalf("RunBatch() unexpected error: %v", err)
		}
		if result.FinalPool != pool {
			t.Errorf("FinalPool = %+v, want %+v", result.FinalPool, pool)
		}
		if len(result.Settlements) != 0 || len(result.Rejections) != 0 || result.Processed() != 0 {
			t.Errorf("empty batch produced records: %+v", result)
		}
	}
}

func TestRunBatch_InvalidOrderStopsBatch(t *testing.T) {
	orders := []domain.Order{
		newOrder("o1", "alice", domain.TokenA, 100, 0),
		newOrder("o2", "mallory", domain.TokenA, -5, 0),
		newOrder("o3", "charlie", domain.TokenB, 50, 0),
	}

	result, err := RunBatch(referencePool(), orders)
	if !errors.Is(err, domain.ErrInvalidOrder) {
		t.Fatalf("RunBatch() error = %v, want ErrInvalidOrder", err)
	}

	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("error should be a *BatchError, got %T", err)
	}
	if batchErr.Index != 1 || batchErr.OrderID != "o2" {
		t.Errorf("BatchError = %+v, want index 1 order o2", batchErr)
	}

	if result.Processed() != 1 || len(result.Settlements) != 1 {
		t.Fatalf("expected only the first order processed, got %d outcomes", result.Processed())
	}
	want := referencePool().ApplySwap(domain.TokenA, 100, result.Settlements[0].AmountReceived)
	if result.FinalPool != want {
		t.Errorf("FinalPool = %+v, want state after first order %+v", result.FinalPool, want)
	}
}

func TestRunBatch_InvalidPoolFailsFirstOrder(t *testing.T) {
	bad := domain.PoolState{ReserveA: 0, ReserveB: 0, FeeRate: 0.003}
	result, err := RunBatch(bad, referenceOrders())
	if !errors.Is(err, domain.ErrInvalidPool) {
		t.Fatalf("RunBatch() error = %v, want ErrInvalidPool", err)
	}
	if result.Processed() != 0 {
		t.Errorf("expected no processed orders, got %d", result.Processed())
	}
	if result.FinalPool != bad {
		t.Errorf("FinalPool = %+v, want untouched %+v", result.FinalPool, bad)
	}
}

func TestRunBatch_DoesNotMutateInputs(t *testing.T) {
	pool := referencePool()
	orders := referenceOrders()
	snapshot := make([]domain.Order, len(orders))
	copy(snapshot, orders)

	if _, err := RunBatch(pool, orders); err != nil {
		t.Fatalf("RunBatch() unexpected error: %v", err)
	}
	if pool != referencePool() {
		t.Errorf("input pool mutated: %+v", pool)
	}
	for i := range orders {
		if orders[i] != snapshot[i] {
			t.Errorf("order[%d] mutated: %+v", i, orders[i])
		}
	}
}

func TestBatchError_Message(t *testing.T) {
	err := &BatchError{Index: 2, OrderID: "abc", Err: domain.ErrInvalidOrder}
	if got := err.Error(); got != "batch stopped at order 2 (abc): invalid_order" {
		t.Errorf("Error() = %q", got)
	}
	err = &BatchError{Index: 0, Err: domain.ErrInvalidPool}
	if got := err.Error(); got != "batch stopped at order 0: invalid_pool" {
		t.Errorf("Error() = %q", got)
	}
}

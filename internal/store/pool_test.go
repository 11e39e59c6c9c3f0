package store

import (
	"errors"
	"testing"
	"time"

	"github.com/efreitasn/ammbatcher/internal/domain"
)

func newTestPool(id string, createdAt time.Time) *domain.Pool {
	return &domain.Pool{
		PoolID:    id,
		Name:      "A/B",
		State:     domain.PoolState{ReserveA: 1000, ReserveB: 2000, FeeRate: domain.DefaultFeeRate},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestPoolStore_Create_and_Get(t *testing.T) {
	s := NewPoolStore()
	s.Create(newTestPool("pool-1", time.Now()))

	got, err := s.Get("pool-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.State.ReserveA != 1000 || got.State.ReserveB != 2000 {
		t.Fatalf("unexpected reserves: %+v", got.State)
	}

	if _, err := s.Get("missing"); err != domain.ErrPoolNotFound {
		t.Fatalf("expected ErrPoolNotFound, got %v", err)
	}
}

func TestPoolStore_Get_ReturnsCopy(t *testing.T) {
	s := NewPoolStore()
	s.Create(newTestPool("pool-1", time.Now()))

	got, _ := s.Get("pool-1")
	got.State.ReserveA = 1

	again, _ := s.Get("pool-1")
	if again.State.ReserveA != 1000 {
		t.Fatalf("mutating a returned pool leaked into the store: %v", again.State.ReserveA)
	}
}

func TestPoolStore_List_OldestFirst(t *testing.T) {
	s := NewPoolStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Create(newTestPool("pool-c", base.Add(2*time.Minute)))
	s.Create(newTestPool("pool-a", base))
	s.Create(newTestPool("pool-b", base.Add(time.Minute)))

	list := s.List()
	want := []string{"pool-a", "pool-b", "pool-c"}
	if len(list) != len(want) {
		t.Fatalf("expected %d pools, got %d", len(want), len(list))
	}
	for i, id := range want {
		if list[i].PoolID != id {
			t.Fatalf("position %d: got %s, want %s", i, list[i].PoolID, id)
		}
	}
}

func TestPoolStore_Commit(t *testing.T) {
	s := NewPoolStore()
	s.Create(newTestPool("pool-1", time.Now()))

	next := domain.PoolState{ReserveA: 1100, ReserveB: 1818.5, FeeRate: domain.DefaultFeeRate}
	at := time.Now().Add(time.Second)

	p, err := s.Commit("pool-1", 0, next, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Version != 1 || p.BatchCount != 1 {
		t.Fatalf("expected version 1 and batch count 1, got %d/%d", p.Version, p.BatchCount)
	}
	if p.State != next || !p.UpdatedAt.Equal(at) {
		t.Fatalf("commit not applied: %+v", p)
	}
}

func TestPoolStore_Commit_Errors(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		version uint64
		wantErr error
	}{
		{"stale version", "pool-1", 7, domain.ErrVersionConflict},
		{"unknown pool", "pool-x", 0, domain.ErrPoolNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewPoolStore()
			s.Create(newTestPool("pool-1", time.Now()))

			_, err := s.Commit(tt.id, tt.version, domain.PoolState{ReserveA: 1, ReserveB: 1}, time.Now())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			p, _ := s.Get("pool-1")
			if p.Version != 0 || p.State.ReserveA != 1000 {
				t.Fatalf("failed commit must not modify the pool: %+v", p)
			}
		})
	}
}

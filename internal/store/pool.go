package store

import (
	"sort"
	"sync"
	"time"

	"github.com/efreitasn/ammbatcher/internal/domain"
)

// PoolStore is a thread-safe in-memory store for pools. Reads return
// copies so callers never observe a pool mid-commit.
type PoolStore struct {
	mu    sync.RWMutex
	pools map[string]*domain.Pool
}

// NewPoolStore creates an empty PoolStore.
func NewPoolStore() *PoolStore {
	return &PoolStore{pools: make(map[string]*domain.Pool)}
}

// Create adds a pool.
func (s *PoolStore) Create(p *domain.Pool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[p.PoolID] = p
}

// Get returns a copy of the pool. It returns domain.ErrPoolNotFound if
// the pool does not exist.
func (s *PoolStore) Get(id string) (domain.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pools[id]
	if !ok {
		return domain.Pool{}, domain.ErrPoolNotFound
	}
	return *p, nil
}

// List returns copies of every pool, oldest first.
func (s *PoolStore) List() []domain.Pool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Pool, 0, len(s.pools))
	for _, p := range s.pools {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].PoolID < out[j].PoolID
	})
	return out
}

// Commit replaces the pool state after a batch. The write only happens if
// the stored version still equals expectedVersion; otherwise it returns
// domain.ErrVersionConflict and leaves the pool untouched.
func (s *PoolStore) Commit(id string, expectedVersion uint64, state domain.PoolState, at time.Time) (domain.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pools[id]
	if !ok {
		return domain.Pool{}, domain.ErrPoolNotFound
	}
	if p.Version != expectedVersion {
		return domain.Pool{}, domain.ErrVersionConflict
	}

	p.State = state
	p.Version++
	p.BatchCount++
	p.UpdatedAt = at
	return *p, nil
}

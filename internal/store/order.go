package store

import (
	"sort"
	"sync"

	"github.com/efreitasn/ammbatcher/internal/domain"
)

// OrderStore is a thread-safe in-memory store for order records, with a
// primary index by order_id and a secondary index by pool_id.
type OrderStore struct {
	mu         sync.RWMutex
	records    map[string]*domain.OrderRecord
	poolOrders map[string][]*domain.OrderRecord // pool_id → records (append-only)
}

// NewOrderStore creates an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		records:    make(map[string]*domain.OrderRecord),
		poolOrders: make(map[string][]*domain.OrderRecord),
	}
}

// Create adds a record and appends it to the pool's secondary index.
func (s *OrderStore) Create(r *domain.OrderRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[r.Order.OrderID] = r
	s.poolOrders[r.PoolID] = append(s.poolOrders[r.PoolID], r)
}

// Get returns a copy of the record. It returns domain.ErrOrderNotFound if
// the order does not exist.
func (s *OrderStore) Get(id string) (domain.OrderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return domain.OrderRecord{}, domain.ErrOrderNotFound
	}
	return *r, nil
}

// Update applies fn to the stored record under the write lock. If fn
// returns an error the record is left as it was.
func (s *OrderStore) Update(id string, fn func(r *domain.OrderRecord) error) (domain.OrderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return domain.OrderRecord{}, domain.ErrOrderNotFound
	}
	next := *r
	if err := fn(&next); err != nil {
		return *r, err
	}
	*r = next
	return next, nil
}

// ListByPool returns copies of a pool's records in admission order. If
// status is non-nil only records with that status are included.
func (s *OrderStore) ListByPool(poolID string, status *domain.OrderStatus) []domain.OrderRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.OrderRecord, 0)
	for _, r := range s.poolOrders[poolID] {
		if status != nil && r.Status != *status {
			continue
		}
		out = append(out, *r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

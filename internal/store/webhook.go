package store

import (
	"sort"
	"sync"

	"github.com/efreitasn/ammbatcher/internal/domain"
)

// subscriptionKey identifies a subscription. An empty poolID covers every
// pool.
type subscriptionKey struct {
	requesterID string
	poolID      string
	event       domain.WebhookEvent
}

func keyOf(w *domain.Webhook) subscriptionKey {
	return subscriptionKey{requesterID: w.RequesterID, poolID: w.PoolID, event: w.Event}
}

// WebhookStore keeps webhook subscriptions in memory. There is at most one
// subscription per requester, pool scope and event. Reads return copies.
type WebhookStore struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Webhook
	byKey map[subscriptionKey]*domain.Webhook
}

// NewWebhookStore creates an empty WebhookStore.
func NewWebhookStore() *WebhookStore {
	return &WebhookStore{
		byID:  make(map[string]*domain.Webhook),
		byKey: make(map[subscriptionKey]*domain.Webhook),
	}
}

// Upsert stores w, or points the existing subscription with the same key at
// w.URL. The existing subscription keeps its ID. It reports whether w was
// newly stored.
func (s *WebhookStore) Upsert(w domain.Webhook) (domain.Webhook, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := keyOf(&w)
	if existing, ok := s.byKey[k]; ok {
		if existing.URL != w.URL {
			existing.URL = w.URL
			existing.UpdatedAt = w.UpdatedAt
		}
		return *existing, false
	}

	stored := w
	s.byKey[k] = &stored
	s.byID[w.WebhookID] = &stored
	return stored, true
}

// Get returns domain.ErrWebhookNotFound for unknown IDs.
func (s *WebhookStore) Get(id string) (domain.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.byID[id]
	if !ok {
		return domain.Webhook{}, domain.ErrWebhookNotFound
	}
	return *w, nil
}

// List returns a requester's subscriptions, all-pool ones first, then by
// pool and event. A non-nil poolID keeps only subscriptions scoped exactly
// to it ("" selects the all-pool ones).
func (s *WebhookStore) List(requesterID string, poolID *string) []domain.Webhook {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Webhook{}
	for k, w := range s.byKey {
		if k.requesterID != requesterID {
			continue
		}
		if poolID != nil && k.poolID != *poolID {
			continue
		}
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PoolID != out[j].PoolID {
			return out[i].PoolID < out[j].PoolID
		}
		return out[i].Event < out[j].Event
	})
	return out
}

// Match finds where to deliver event for an order of requesterID on poolID.
// A subscription scoped to poolID wins over an all-pool one.
func (s *WebhookStore) Match(requesterID, poolID string, event domain.WebhookEvent) (domain.Webhook, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if w, ok := s.byKey[subscriptionKey{requesterID, poolID, event}]; ok {
		return *w, true
	}
	if w, ok := s.byKey[subscriptionKey{requesterID, "", event}]; ok {
		return *w, true
	}
	return domain.Webhook{}, false
}

// Delete returns domain.ErrWebhookNotFound for unknown IDs.
func (s *WebhookStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.byID[id]
	if !ok {
		return domain.ErrWebhookNotFound
	}
	delete(s.byID, id)
	delete(s.byKey, keyOf(w))
	return nil
}

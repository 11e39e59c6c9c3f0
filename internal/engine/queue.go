package engine

import (
	"sync"

	"github.com/efreitasn/ammbatcher/internal/domain"
	"github.com/google/btree"
)

// QueueEntry is a single order waiting for the next batch of its pool.
type QueueEntry struct {
	Seq     uint64
	OrderID string
	Order   domain.Order
}

// seqLess orders entries by admission sequence, so Min() is always the
// oldest pending order.
func seqLess(a, b QueueEntry) bool {
	return a.Seq < b.Seq
}

// OrderQueue holds the pending orders of one pool in admission order using a
// B-tree with a secondary index for O(log n) removal by order ID.
//
// The embedded mutex serializes admission and batch runs for the pool:
// callers hold it for the whole drain → price → commit sequence so nothing
// outside can observe reserves mid-batch.
type OrderQueue struct {
	poolID  string
	mu      sync.Mutex
	nextSeq uint64
	entries *btree.BTreeG[QueueEntry]
	index   map[string]QueueEntry // order_id → entry
}

// NewOrderQueue creates an empty queue for the given pool.
func NewOrderQueue(poolID string) *OrderQueue {
	const degree = 32
	return &OrderQueue{
		poolID:  poolID,
		nextSeq: 1,
		entries: btree.NewG[QueueEntry](degree, seqLess),
		index:   make(map[string]QueueEntry),
	}
}

// Lock acquires the pool lock.
func (q *OrderQueue) Lock() {
	q.mu.Lock()
}

// Unlock releases the pool lock.
func (q *OrderQueue) Unlock() {
	q.mu.Unlock()
}

// PoolID returns the pool this queue belongs to.
func (q *OrderQueue) PoolID() string {
	return q.poolID
}

// Push appends an order behind everything already queued and returns its
// sequence number.
func (q *OrderQueue) Push(order domain.Order) uint64 {
	entry := QueueEntry{Seq: q.nextSeq, OrderID: order.OrderID, Order: order}
	q.nextSeq++
	q.entries.ReplaceOrInsert(entry)
	q.index[entry.OrderID] = entry
	return entry.Seq
}

// Requeue puts previously drained entries back with their original
// sequence numbers, so they keep their place ahead of newer orders.
func (q *OrderQueue) Requeue(entries []QueueEntry) {
	for _, e := range entries {
		q.entries.ReplaceOrInsert(e)
		q.index[e.OrderID] = e
	}
}

// Remove deletes a queued order by ID. It reports whether the order was
// queued.
func (q *OrderQueue) Remove(orderID string) bool {
	entry, ok := q.index[orderID]
	if !ok {
		return false
	}
	delete(q.index, orderID)
	q.entries.Delete(entry)
	return true
}

// Contains reports whether the order is still waiting.
func (q *OrderQueue) Contains(orderID string) bool {
	_, ok := q.index[orderID]
	return ok
}

// Drain removes and returns up to max entries, oldest first. A max of zero
// or less drains everything.
func (q *OrderQueue) Drain(max int) []QueueEntry {
	n := q.entries.Len()
	if max > 0 && max < n {
		n = max
	}
	drained := make([]QueueEntry, 0, n)
	for len(drained) < n {
		entry, ok := q.entries.DeleteMin()
		if !ok {
			break
		}
		delete(q.index, entry.OrderID)
		drained = append(drained, entry)
	}
	return drained
}

// Snapshot returns the queued entries oldest first without removing them.
func (q *OrderQueue) Snapshot() []QueueEntry {
	out := make([]QueueEntry, 0, q.entries.Len())
	q.entries.Ascend(func(e QueueEntry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Len returns the number of queued orders.
func (q *OrderQueue) Len() int {
	return q.entries.Len()
}

// QueueManager is a thread-safe map of pool_id → OrderQueue.
type QueueManager struct {
	mu     sync.RWMutex
	queues map[string]*OrderQueue
}

// NewQueueManager creates a new QueueManager.
func NewQueueManager() *QueueManager {
	return &QueueManager{
		queues: make(map[string]*OrderQueue),
	}
}

// GetOrCreate returns the queue for the given pool, creating one if it
// doesn't already exist.
func (qm *QueueManager) GetOrCreate(poolID string) *OrderQueue {
	qm.mu.RLock()
	q, ok := qm.queues[poolID]
	qm.mu.RUnlock()
	if ok {
		return q
	}

	qm.mu.Lock()
	defer qm.mu.Unlock()
	// Double-check after acquiring write lock.
	if q, ok = qm.queues[poolID]; ok {
		return q
	}
	q = NewOrderQueue(poolID)
	qm.queues[poolID] = q
	return q
}

// PoolIDs returns the IDs of every pool that has a queue.
func (qm *QueueManager) PoolIDs() []string {
	qm.mu.RLock()
	defer qm.mu.RUnlock()
	ids := make([]string, 0, len(qm.queues))
	for id := range qm.queues {
		ids = append(ids, id)
	}
	return ids
}

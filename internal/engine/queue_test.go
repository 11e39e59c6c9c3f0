package engine

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/efreitasn/ammbatcher/internal/domain"
)

func queuedOrder(id string) domain.Order {
	return newOrder(id, "user-"+id, domain.TokenA, 1, 0)
}

func TestOrderQueue_PushAssignsIncreasingSeq(t *testing.T) {
	q := NewOrderQueue("pool-1")
	s1 := q.Push(queuedOrder("a"))
	s2 := q.Push(queuedOrder("b"))
	if s1 != 1 || s2 != 2 {
		t.Errorf("seqs = %d, %d; want 1, 2", s1, s2)
	}
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
	if q.PoolID() != "pool-1" {
		t.Errorf("PoolID() = %q", q.PoolID())
	}
}

func TestOrderQueue_DrainOldestFirst(t *testing.T) {
	q := NewOrderQueue("p")
	for _, id := range []string{"a", "b", "c", "d"} {
		q.Push(queuedOrder(id))
	}

	first := q.Drain(2)
	if len(first) != 2 || first[0].OrderID != "a" || first[1].OrderID != "b" {
		t.Fatalf("Drain(2) = %+v", first)
	}
	if q.Contains("a") || !q.Contains("c") {
		t.Error("drained orders should leave the index, queued ones should stay")
	}

	rest := q.Drain(0)
	if len(rest) != 2 || rest[0].OrderID != "c" || rest[1].OrderID != "d" {
		t.Fatalf("Drain(0) = %+v", rest)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d after full drain", q.Len())
	}
	if got := q.Drain(5); len(got) != 0 {
		t.Errorf("Drain on empty queue = %+v", got)
	}
}

func TestOrderQueue_Remove(t *testing.T) {
	q := NewOrderQueue("p")
	q.Push(queuedOrder("a"))
	q.Push(queuedOrder("b"))
	q.Push(queuedOrder("c"))

	if !q.Remove("b") {
		t.Fatal("Remove(b) = false, want true")
	}
	if q.Remove("b") {
		t.Error("second Remove(b) = true, want false")
	}
	if q.Remove("missing") {
		t.Error("Remove(missing) = true, want false")
	}

	got := q.Drain(0)
	if len(got) != 2 || got[0].OrderID != "a" || got[1].OrderID != "c" {
		t.Errorf("Drain after remove = %+v", got)
	}
}

func TestOrderQueue_RequeueKeepsPlace(t *testing.T) {
	q := NewOrderQueue("p")
	q.Push(queuedOrder("a"))
	q.Push(queuedOrder("b"))
	drained := q.Drain(0)

	q.Push(queuedOrder("c"))
	q.Requeue(drained[1:])

	snap := q.Snapshot()
	if len(snap) != 2 || snap[0].OrderID != "b" || snap[1].OrderID != "c" {
		t.Errorf("Snapshot() = %+v, want b before c", snap)
	}
	if !q.Contains("b") {
		t.Error("requeued order should be indexed")
	}
}

func TestOrderQueue_SnapshotDoesNotRemove(t *testing.T) {
	q := NewOrderQueue("p")
	q.Push(queuedOrder("a"))
	if len(q.Snapshot()) != 1 || q.Len() != 1 {
		t.Error("Snapshot should not remove entries")
	}
}

func TestQueueManager_GetOrCreate(t *testing.T) {
	qm := NewQueueManager()
	a := qm.GetOrCreate("p1")
	b := qm.GetOrCreate("p1")
	if a != b {
		t.Error("GetOrCreate should return the same queue for the same pool")
	}
	qm.GetOrCreate("p2")

	ids := qm.PoolIDs()
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "p1" || ids[1] != "p2" {
		t.Errorf("PoolIDs() = %v", ids)
	}
}

func TestQueueManager_ConcurrentGetOrCreate(t *testing.T) {
	qm := NewQueueManager()
	var wg sync.WaitGroup
	queues := make([]*OrderQueue, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			queues[i] = qm.GetOrCreate("shared")
		}(i)
	}
	wg.Wait()

	for i, q := range queues {
		if q != queues[0] {
			t.Fatalf("queue %d differs from queue 0", i)
		}
	}
}

func TestOrderQueue_ConcurrentPushUnderLock(t *testing.T) {
	q := NewOrderQueue("p")
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q.Lock()
			defer q.Unlock()
			q.Push(queuedOrder(fmt.Sprintf("o-%d", i)))
		}(i)
	}
	wg.Wait()

	if q.Len() != 100 {
		t.Errorf("Len() = %d, want 100", q.Len())
	}
}

package input

import "sync"

// Queue is a multi-producer buffer drained by a single consumer. Producers
// push from any goroutine; the dispatch loop takes the whole buffer at once.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	limit int
	drops int
}

// NewQueue returns a queue holding at most limit items; 0 means unbounded.
// When full, the oldest items are dropped.
func NewQueue[T any](limit int) *Queue[T] {
	return &Queue[T]{limit: limit}
}

func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
	if q.limit > 0 && len(q.items) > q.limit {
		over := len(q.items) - q.limit
		q.drops += over
		q.items = append(q.items[:0], q.items[over:]...)
	}
}

// Drain swaps the buffer out and returns what was queued.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped reports how many items were discarded because the queue was full.
func (q *Queue[T]) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.drops
}

// Package queue provides the lock-guarded FIFO used between the render
// goroutine and the generation worker.
package queue

import "sync"

// Queue is an unbounded FIFO. The lock is held only while pushing or popping.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	head  int
}

// New returns an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends v to the tail.
func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
}

// TryPop removes and returns the head without blocking.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.head == len(q.items) {
		return zero, false
	}
	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return v, true
}

// Drain removes every queued item and returns them in FIFO order.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.items) {
		return nil
	}
	out := make([]T, len(q.items)-q.head)
	copy(out, q.items[q.head:])
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
	return out
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

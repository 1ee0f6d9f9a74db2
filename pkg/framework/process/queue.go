package process

import (
	"sync/atomic"
)

// Queue is a bounded lock-free single-producer single-consumer ring.
// One goroutine may Push while another Pops; neither blocks and neither
// allocates after construction.
type Queue[T any] struct {
	buf  []T
	mask uint64

	head atomic.Uint64 // next slot to read, owned by the consumer
	_    [56]byte      // keep head and tail on separate cache lines
	tail atomic.Uint64 // next slot to write, owned by the producer
}

// NewQueue creates a queue holding at least capacity items, rounded up
// to a power of two.
func NewQueue[T any](capacity int) *Queue[T] {
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &Queue[T]{
		buf:  make([]T, size),
		mask: uint64(size - 1),
	}
}

// Push appends v and reports false when the queue is full.
func (q *Queue[T]) Push(v T) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() >= uint64(len(q.buf)) {
		return false
	}
	q.buf[tail&q.mask] = v
	q.tail.Store(tail + 1)
	return true
}

// Pop removes the oldest item.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	head := q.head.Load()
	if head == q.tail.Load() {
		return zero, false
	}
	idx := head & q.mask
	v := q.buf[idx]
	q.buf[idx] = zero
	q.head.Store(head + 1)
	return v, true
}

// Drain pops every available item into fn and returns the count.
func (q *Queue[T]) Drain(fn func(T)) int {
	n := 0
	for {
		v, ok := q.Pop()
		if !ok {
			return n
		}
		fn(v)
		n++
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return len(q.buf)
}

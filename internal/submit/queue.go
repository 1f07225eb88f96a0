// Package submit turns accepted nonces into framed wire packets and streams
// them to the peer over TCP.
package submit

import "sync"

// MaxQueueLen bounds the shared submission queue. A peer that can't keep up
// should lose the oldest, stalest solutions rather than let the queue (and
// the worker-local pending buffers behind it) grow without limit.
const MaxQueueLen = 100_000

// Nonce is a raw 32-byte solution nonce, pre-gamming.
type Nonce [32]byte

// Queue is the mutex-protected FIFO shared between workers (producers) and
// the submission pipeline (consumer). Workers must use TryPush so a
// contended queue never stalls the search loop; the pipeline uses Drain,
// which blocks.
type Queue struct {
	mu    sync.Mutex
	items []Nonce
}

// NewQueue returns an empty queue.
func NewQueue() *Queue { return &Queue{} }

// TryPush attempts a non-blocking append of items. It returns false without
// touching the queue if the mutex is currently held, so the caller can keep
// its pending buffer for the next iteration (§4.D.4).
func (q *Queue) TryPush(items []Nonce) bool {
	if !q.mu.TryLock() {
		return false
	}
	defer q.mu.Unlock()

	q.items = append(q.items, items...)
	if over := len(q.items) - MaxQueueLen; over > 0 {
		q.items = q.items[over:]
	}
	return true
}

// Len returns the current queue length under lock.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Snapshot copies up to n items from the head of the queue without removing
// them, so workers keep making progress while the pipeline builds packets.
func (q *Queue) Snapshot(n int) []Nonce {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > len(q.items) {
		n = len(q.items)
	}
	out := make([]Nonce, n)
	copy(out, q.items[:n])
	return out
}

// Drain removes the first n items from the queue head, used after a
// successful send to avoid re-sending what was already written to the wire.
func (q *Queue) Drain(n int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > len(q.items) {
		n = len(q.items)
	}
	q.items = q.items[n:]
}

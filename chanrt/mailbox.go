package chanrt

import (
	"context"
	"iter"
	"sync"
)

// queue is a thread-safe unbounded FIFO.
//
// The signal channel has a buffer of one: concurrent sends coalesce into a
// single wakeup and the consumer re-checks the slice after every wakeup.
// Close closes the signal channel, waking the consumer for good.
type queue[M any] struct {
	mu     sync.Mutex
	items  []M
	closed bool
	signal chan struct{}
}

// NewMailbox creates an empty mailbox and returns its two halves.
func NewMailbox[M any]() (Sender[M], *Receiver[M]) {
	q := &queue[M]{
		items:  make([]M, 0, 16),
		signal: make(chan struct{}, 1),
	}
	return Sender[M]{q: q}, &Receiver[M]{q: q}
}

// Sender is the producing half of a mailbox. Copies share the mailbox and
// may be used from any number of goroutines.
type Sender[M any] struct {
	q *queue[M]
}

// Send appends m to the mailbox. It never blocks. It returns
// ErrMailboxClosed once the receiver is closed, and for a zero Sender.
func (s Sender[M]) Send(m M) error {
	if s.q == nil {
		return ErrMailboxClosed
	}
	q := s.q
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrMailboxClosed
	}
	q.items = append(q.items, m)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return nil
}

// Receiver is the consuming half of a mailbox. Exactly one goroutine may
// receive.
type Receiver[M any] struct {
	q *queue[M]
}

// TryRecv removes and returns the oldest message without blocking.
func (r *Receiver[M]) TryRecv() (M, bool) {
	q := r.q
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero M
	if len(q.items) == 0 {
		return zero, false
	}
	m := q.items[0]
	// Clear the slot so the backing array does not retain the message.
	q.items[0] = zero
	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return m, true
}

// Recv blocks until a message is available. It returns false once the
// mailbox is closed and drained.
func (r *Receiver[M]) Recv() (M, bool) {
	for {
		if m, ok := r.TryRecv(); ok {
			return m, true
		}
		if r.drained() {
			var zero M
			return zero, false
		}
		<-r.q.signal
	}
}

// RecvContext is Recv that also returns when ctx is done.
func (r *Receiver[M]) RecvContext(ctx context.Context) (M, bool, error) {
	var zero M
	for {
		if m, ok := r.TryRecv(); ok {
			return m, true, nil
		}
		if r.drained() {
			return zero, false, nil
		}
		select {
		case <-ctx.Done():
			return zero, false, ctx.Err()
		case <-r.q.signal:
		}
	}
}

// All yields messages in arrival order until the mailbox is closed and
// drained.
func (r *Receiver[M]) All() iter.Seq[M] {
	return func(yield func(M) bool) {
		for {
			m, ok := r.Recv()
			if !ok || !yield(m) {
				return
			}
		}
	}
}

// Len returns the number of queued messages.
func (r *Receiver[M]) Len() int {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()
	return len(r.q.items)
}

// Close stops the mailbox from accepting messages. Messages already queued
// are still delivered by Recv. Close is idempotent.
func (r *Receiver[M]) Close() {
	q := r.q
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

func (r *Receiver[M]) drained() bool {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()
	return r.q.closed && len(r.q.items) == 0
}

package chanrt

import "sync"

type reply[T any] struct {
	mu       sync.Mutex
	ch       chan T // buffered, one value
	done     bool   // sent or closed
	gone     bool   // receiver abandoned
	consumed bool
}

// NewReply creates a single-use reply channel. The ReplySender travels with
// the request; the caller keeps the ReplyReceiver.
func NewReply[T any]() (ReplySender[T], ReplyReceiver[T]) {
	r := &reply[T]{ch: make(chan T, 1)}
	return ReplySender[T]{r: r}, ReplyReceiver[T]{r: r}
}

// ReplySender delivers exactly one value to the caller.
type ReplySender[T any] struct {
	r *reply[T]
}

// Send delivers v without blocking. It returns ErrReplySent if the sender
// was already used or closed, and ErrReceiverGone if the caller abandoned
// the reply.
func (s ReplySender[T]) Send(v T) error {
	if s.r == nil {
		return ErrReplySent
	}
	r := s.r
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.done:
		return ErrReplySent
	case r.gone:
		r.done = true
		close(r.ch)
		return ErrReceiverGone
	}
	r.ch <- v
	r.done = true
	close(r.ch)
	return nil
}

// Close drops the sender. A caller still waiting gets ErrSenderGone. Close
// after Send is a no-op.
func (s ReplySender[T]) Close() {
	if s.r == nil {
		return
	}
	r := s.r
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.done {
		r.done = true
		close(r.ch)
	}
}

// ReplyReceiver is the caller's half of a reply channel.
type ReplyReceiver[T any] struct {
	r *reply[T]
}

// Recv blocks until the value arrives. It returns ErrSenderGone if the
// sender was closed without a value and ErrReplyConsumed on a second call.
func (rr ReplyReceiver[T]) Recv() (T, error) {
	var zero T
	r := rr.r
	r.mu.Lock()
	if r.consumed {
		r.mu.Unlock()
		return zero, ErrReplyConsumed
	}
	r.consumed = true
	r.mu.Unlock()

	v, ok := <-r.ch
	if !ok {
		return zero, ErrSenderGone
	}
	return v, nil
}

// Abandon tells the sender nobody will receive. Later Recv calls return
// ErrReplyConsumed.
func (rr ReplyReceiver[T]) Abandon() {
	r := rr.r
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gone = true
	r.consumed = true
}

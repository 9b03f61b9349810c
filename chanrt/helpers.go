package chanrt

// Must panics if err is non-nil. Generated clients in panic mode wrap every
// send with it.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// MustRecv waits for the reply and panics if none arrives.
func MustRecv[T any](r ReplyReceiver[T]) T {
	v, err := r.Recv()
	if err != nil {
		panic(err)
	}
	return v
}

// MustReply sends v through s and panics if it cannot be delivered.
func MustReply[T any](s ReplySender[T], v T) {
	if err := s.Send(v); err != nil {
		panic(err)
	}
}

// Await completes a return-bearing call: if the send failed the reply is
// abandoned and the send error returned, otherwise it waits for the reply.
func Await[T any](sendErr error, r ReplyReceiver[T]) (T, error) {
	if sendErr != nil {
		r.Abandon()
		var zero T
		return zero, sendErr
	}
	return r.Recv()
}

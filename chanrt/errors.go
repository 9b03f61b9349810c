package chanrt

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is to test for them.
var (
	// ErrMailboxClosed is returned by Sender.Send once the receiver is closed.
	ErrMailboxClosed = errors.New("chanrt: mailbox closed")

	// ErrReplySent is returned by ReplySender.Send when the sender was
	// already used or closed.
	ErrReplySent = errors.New("chanrt: reply already sent")

	// ErrReceiverGone is returned by ReplySender.Send when the caller
	// abandoned the reply.
	ErrReceiverGone = errors.New("chanrt: reply receiver gone")

	// ErrSenderGone is returned by ReplyReceiver.Recv when the reply sender
	// was closed without a value.
	ErrSenderGone = errors.New("chanrt: reply sender dropped without a value")

	// ErrReplyConsumed is returned by a second ReplyReceiver.Recv.
	ErrReplyConsumed = errors.New("chanrt: reply already received")

	// ErrUnknownMessage is reported by generated dispatch for a message that
	// is not a variant of the union, such as nil.
	ErrUnknownMessage = errors.New("chanrt: unknown message")
)

// UnknownMessage wraps ErrUnknownMessage with the dynamic type of msg.
func UnknownMessage(msg any) error {
	return fmt.Errorf("%w: %T", ErrUnknownMessage, msg)
}

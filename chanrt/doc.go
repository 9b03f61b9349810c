// Package chanrt is the runtime linked by code that chanproto generates.
//
// It provides two primitives:
//
//   - a mailbox: an unbounded FIFO with many producers ([Sender], copyable)
//     and exactly one consumer ([Receiver]);
//   - a reply channel: a single-use, single-value channel whose sending half
//     travels inside a message ([ReplySender]) while the caller keeps the
//     receiving half ([ReplyReceiver]).
//
// Failures are reported as the sentinel errors declared in this package.
// Generated code either propagates them or turns them into panics with
// [Must], [MustRecv] and [MustReply].
package chanrt

package chanrt

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailbox_SendRecv(t *testing.T) {
	tx, rx := NewMailbox[string]()

	require.NoError(t, tx.Send("a"))
	got, ok := rx.TryRecv()
	require.True(t, ok)
	assert.Equal(t, "a", got)
}

func TestMailbox_FIFO(t *testing.T) {
	tx, rx := NewMailbox[int]()
	for i := range 5 {
		require.NoError(t, tx.Send(i))
	}
	assert.Equal(t, 5, rx.Len())

	for i := range 5 {
		got, ok := rx.TryRecv()
		require.True(t, ok)
		assert.Equal(t, i, got)
	}
	_, ok := rx.TryRecv()
	assert.False(t, ok)
}

func TestMailbox_RecvBlocksUntilAvailable(t *testing.T) {
	tx, rx := NewMailbox[int]()
	done := make(chan int)

	go func() {
		if m, ok := rx.Recv(); ok {
			done <- m
		}
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, tx.Send(7))

	select {
	case got := <-done:
		assert.Equal(t, 7, got)
	case <-time.After(time.Second):
		t.Fatal("Recv did not return after Send")
	}
}

func TestMailbox_CloseDrainsThenStops(t *testing.T) {
	tx, rx := NewMailbox[int]()
	require.NoError(t, tx.Send(1))
	require.NoError(t, tx.Send(2))
	rx.Close()
	rx.Close()

	assert.ErrorIs(t, tx.Send(3), ErrMailboxClosed)

	var got []int
	for m := range rx.All() {
		got = append(got, m)
	}
	assert.Equal(t, []int{1, 2}, got)

	_, ok := rx.Recv()
	assert.False(t, ok)
}

func TestMailbox_CloseWakesBlockedReceiver(t *testing.T) {
	_, rx := NewMailbox[int]()
	done := make(chan bool)

	go func() {
		_, ok := rx.Recv()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	rx.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Close did not wake the receiver")
	}
}

func TestMailbox_RecvContext(t *testing.T) {
	tx, rx := NewMailbox[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, ok, err := rx.RecvContext(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, tx.Send(3))
	m, ok, err := rx.RecvContext(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, m)

	rx.Close()
	_, ok, err = rx.RecvContext(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMailbox_ZeroSender(t *testing.T) {
	var tx Sender[int]
	assert.ErrorIs(t, tx.Send(1), ErrMailboxClosed)
}

func TestMailbox_ConcurrentProducersKeepOwnOrder(t *testing.T) {
	type msg struct{ producer, seq int }
	tx, rx := NewMailbox[msg]()

	const producers, perProducer = 8, 200
	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				assert.NoError(t, tx.Send(msg{p, i}))
			}
		}()
	}
	wg.Wait()
	rx.Close()

	next := make([]int, producers)
	count := 0
	for m := range rx.All() {
		assert.Equal(t, next[m.producer], m.seq, "producer %d out of order", m.producer)
		next[m.producer]++
		count++
	}
	assert.Equal(t, producers*perProducer, count)
}

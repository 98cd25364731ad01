package bollywood

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnboundedMailbox_FIFO(t *testing.T) {
	var mu sync.Mutex
	var delivered []int

	mb := newUnboundedMailbox(func(msg *Message) {
		mu.Lock()
		delivered = append(delivered, msg.Payload.(int))
		mu.Unlock()
	}, nil)

	for i := 0; i < 5; i++ {
		mb.Send(&Message{Payload: i})
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delivered) == 5
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, delivered)
}

func TestUnboundedMailbox_SingleWorkerInvariant(t *testing.T) {
	var inFlight int32
	var maxInFlight int32
	var mu sync.Mutex

	mb := newUnboundedMailbox(func(msg *Message) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(2 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
	}, nil)

	for i := 0; i < 20; i++ {
		mb.Send(&Message{Payload: i})
	}

	require.Eventually(t, func() bool {
		return mb.Size() == 0 && !mb.IsSuspended()
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int32(1), maxInFlight, "at most one delivery should run at a time")
}

func TestBoundedMailbox_DropOldest(t *testing.T) {
	deadLetters := newDeadLetters(NoopLogger())
	mb := newBoundedMailbox(3, DropOldest, func(msg *Message) {}, deadLetters)

	mb.Suspend()
	var settled []error
	var mu sync.Mutex
	send := func(n int) *Message {
		msg := &Message{Payload: n, future: newFuture()}
		mb.Send(msg)
		return msg
	}

	m1 := send(1)
	m2 := send(2)
	send(3)
	send(4)
	send(5)

	for _, m := range []*Message{m1, m2} {
		_, err := m.future.wait(context.Background())
		mu.Lock()
		settled = append(settled, err)
		mu.Unlock()
	}

	assert.Equal(t, 3, mb.Size())
	assert.Equal(t, uint64(2), mb.DroppedMessageCount())

	mb.mu.Lock()
	remaining := make([]int, len(mb.queue))
	for i, m := range mb.queue {
		remaining[i] = m.Payload.(int)
	}
	mb.mu.Unlock()
	assert.Equal(t, []int{3, 4, 5}, remaining)

	for _, err := range settled {
		assert.ErrorIs(t, err, ErrMessageDropped)
	}
}

func TestBoundedMailbox_Reject(t *testing.T) {
	deadLetters := newDeadLetters(NoopLogger())
	mb := newBoundedMailbox(2, Reject, func(msg *Message) {}, deadLetters)

	mb.Suspend()
	for i := 1; i <= 5; i++ {
		mb.Send(&Message{Payload: i})
	}

	assert.Equal(t, 2, mb.Size())
	assert.Equal(t, uint64(3), mb.DroppedMessageCount())
	assert.Equal(t, uint64(3), deadLetters.Count())
}

func TestBoundedMailbox_DropNewest(t *testing.T) {
	deadLetters := newDeadLetters(NoopLogger())
	mb := newBoundedMailbox(2, DropNewest, func(msg *Message) {}, deadLetters)

	mb.Suspend()
	m1 := &Message{Payload: 1, future: newFuture()}
	m2 := &Message{Payload: 2, future: newFuture()}
	m3 := &Message{Payload: 3, future: newFuture()}
	mb.Send(m1)
	mb.Send(m2)
	mb.Send(m3)

	assert.Equal(t, 2, mb.Size())
	assert.Equal(t, uint64(1), mb.DroppedMessageCount())

	_, err := m3.future.wait(context.Background())
	assert.ErrorIs(t, err, ErrMessageDropped)
}

func TestMailbox_CloseDrainsBacklogToDeadLetters(t *testing.T) {
	deadLetters := newDeadLetters(NoopLogger())
	mb := newUnboundedMailbox(func(msg *Message) {}, deadLetters)

	mb.Suspend()
	mb.Send(&Message{Payload: 1})
	mb.Send(&Message{Payload: 2})
	require.Equal(t, 2, mb.Size())

	mb.Close()

	assert.Equal(t, uint64(2), deadLetters.Count())
	assert.True(t, mb.IsClosed())
	assert.Equal(t, 0, mb.Size())
}

func TestMailbox_SendAfterCloseRoutesToDeadLetters(t *testing.T) {
	deadLetters := newDeadLetters(NoopLogger())
	mb := newUnboundedMailbox(func(msg *Message) {}, deadLetters)
	mb.Close()

	mb.Send(&Message{Payload: 1})
	assert.Equal(t, uint64(1), deadLetters.Count())
}

func TestMailbox_SuspendBuffersResumeDrains(t *testing.T) {
	var mu sync.Mutex
	var delivered []int

	mb := newUnboundedMailbox(func(msg *Message) {
		mu.Lock()
		delivered = append(delivered, msg.Payload.(int))
		mu.Unlock()
	}, nil)

	mb.Suspend()
	mb.Send(&Message{Payload: 1})
	mb.Send(&Message{Payload: 2})

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Empty(t, delivered)
	mu.Unlock()

	mb.Resume()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delivered) == 2
	}, time.Second, 5*time.Millisecond)
}

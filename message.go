package bollywood

import (
	"context"
	"sync"
)

// controlKind tags the handful of system signals that travel through the
// same mailbox queue as user payloads, so they are strictly ordered behind
// whatever is already queued (the "causal self-send" guarantee in spec
// §5 falls out of this for free: there is only ever one queue per actor).
type controlKind int

const (
	controlNone controlKind = iota
	controlStop
	controlRestart
	controlResume
)

// Message is the envelope a Mailbox queues and a dispatch worker delivers.
// It carries a destination, a payload, and a completion handle that is
// settled exactly once — either by the actor's Receive via Context.Respond,
// by the runtime on an unhandled panic or (with a nil value) when Receive
// returns without responding, or by the mailbox itself when the message is
// dropped or routed to dead letters.
type Message struct {
	Dest    Address
	Sender  Address
	Payload any

	control controlKind
	cause   error         // restart cause, set only for controlRestart
	done    chan struct{} // closed once a controlStop transition completes
	future  *future
}

func (m *Message) settle(val any, err error) {
	if m.future != nil {
		m.future.settle(val, err)
	}
}

// drop settles the message's future (if any) with err and, for a control
// message awaited via Stage.stopAndWait, unblocks the waiter too — a
// control message that never reaches its target's dispatch worker (mailbox
// already closed, or overflow) must still release whoever is blocked on
// done, or Stage.Close could hang forever on a single already-stopped
// actor.
func (m *Message) drop(err error) {
	m.settle(nil, err)
	if m.done != nil {
		select {
		case <-m.done:
		default:
			close(m.done)
		}
	}
}

// future is a single-shot, exactly-once completion handle. It is the Go
// rendering of the "cancellable promise-like completion" design note: a
// buffered channel of size one is sufficient since Go has no native
// future/promise type, and it is the same channel-based idiom bollywood's
// original Address type already used for message delivery.
type future struct {
	ch   chan futureResult
	once sync.Once
}

type futureResult struct {
	val any
	err error
}

func newFuture() *future {
	return &future{ch: make(chan futureResult, 1)}
}

func (f *future) settle(val any, err error) {
	f.once.Do(func() {
		f.ch <- futureResult{val: val, err: err}
	})
}

func (f *future) wait(ctx context.Context) (any, error) {
	select {
	case r := <-f.ch:
		return r.val, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

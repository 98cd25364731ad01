package bollywood

import (
	"context"
	"errors"
)

// Proxy is a lightweight, comparable handle to an actor: an address plus
// the Stage that owns it. Proxies are safe to copy, share across
// goroutines, and hold onto past the actor's lifetime (sending to a
// stopped actor's Proxy routes to dead letters rather than panicking).
//
// Rather than generating a typed proxy per protocol, every Proxy exposes
// the same untyped Tell, and request/response goes through the package-
// level generic Ask — mirroring how the corpus's actor runtimes route all
// messages through a single untyped Receive and leave typing to the
// payload itself.
type Proxy struct {
	addr  Address
	stage *Stage
}

// Address returns the proxy's target address.
func (p Proxy) Address() Address { return p.addr }

// IsZero reports whether this is the unset Proxy value (no sender, or a
// lookup that found nothing).
func (p Proxy) IsZero() bool { return p.addr == nil || p.stage == nil }

// Stage returns the Stage this proxy belongs to.
func (p Proxy) Stage() *Stage { return p.stage }

// IsStopped reports whether the target actor is no longer registered.
func (p Proxy) IsStopped() bool {
	if p.IsZero() {
		return true
	}
	return !p.stage.directory.has(p.addr)
}

// Tell delivers payload to the actor fire-and-forget, from no particular
// sender. If the actor is stopped, or the Stage is shutting down, the
// message is routed to dead letters instead.
func (p Proxy) Tell(payload any) {
	p.tellFrom(nil, payload)
}

// TellFrom delivers payload as if sent by from, so the receiving actor's
// ctx.Sender() resolves to it.
func (p Proxy) TellFrom(from Address, payload any) {
	p.tellFrom(from, payload)
}

func (p Proxy) tellFrom(from Address, payload any) {
	if p.IsZero() {
		return
	}
	proc, ok := p.stage.directory.get(p.addr)
	if !ok {
		p.stage.deadLetters.record(DeadLetter{Destination: p.addr, Payload: payload})
		return
	}
	proc.mailbox.Send(&Message{Dest: p.addr, Sender: from, Payload: payload})
}

// Ask sends payload to "to" and blocks until the actor calls ctx.Respond,
// ctx returns without responding (which settles with the zero value and a
// nil error), the message is dropped (ErrMessageDropped), or the supplied
// context is cancelled.
//
// T is asserted against whatever value the actor passes to Respond; a type
// mismatch surfaces as an error rather than a panic.
func Ask[T any](ctx context.Context, to Proxy, payload any) (T, error) {
	return AskFrom[T](ctx, to, nil, payload)
}

// AskFrom is Ask with an explicit sender address, so the receiving actor's
// ctx.Sender() resolves to it (useful when an actor asks on behalf of
// itself but wants replies routed through its own mailbox instead).
func AskFrom[T any](ctx context.Context, to Proxy, from Address, payload any) (T, error) {
	var zero T
	if to.IsZero() {
		return zero, ErrActorNotFound
	}

	fut := newFuture()
	msg := &Message{Dest: to.addr, Sender: from, Payload: payload, future: fut}

	proc, ok := to.stage.directory.get(to.addr)
	if !ok {
		to.stage.deadLetters.record(DeadLetter{Destination: to.addr, Payload: payload})
		return zero, ErrMessageDropped
	}
	proc.mailbox.Send(msg)

	val, err := fut.wait(ctx)
	if err != nil {
		return zero, err
	}
	if val == nil {
		return zero, nil
	}
	typed, ok := val.(T)
	if !ok {
		return zero, errors.New("bollywood: Ask response type mismatch")
	}
	return typed, nil
}

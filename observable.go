package bollywood

import (
	"context"
	"errors"
)

// internal message types used to fetch an actor's observable state through
// its own mailbox, so a snapshot never races the actor's dispatch worker.
type observeStateRequest struct{}

// ObservableState asks p (synchronously, through its mailbox) for its
// ObservableState(). An actor built with WithObservableState answers with
// its state, or with an error if its body does not implement
// ObservableStateProvider; any other actor answers through its own Receive
// (a nil map and nil error if it ignores the request). Errors from Ask
// itself (ErrActorNotFound, ErrMessageDropped, a context error) pass
// through unchanged.
//
// This is the runtime half of the pattern; testkit's polling helpers build
// on top of it for tests that need to wait for a value to settle.
func ObservableState(ctx context.Context, p Proxy) (map[string]any, error) {
	return Ask[map[string]any](ctx, p, observeStateRequest{})
}

// errNotObservable is the response WithObservableState's wrapper gives to
// an observeStateRequest when the wrapped body does not implement
// ObservableStateProvider.
var errNotObservable = errors.New("bollywood: actor is not an ObservableStateProvider")

// WithObservableState wraps a Producer so the resulting actor body
// automatically answers ObservableState() requests without the wrapped
// actor needing to special-case observeStateRequest in its own Receive.
// The wrapped actor must still implement ObservableStateProvider.
func WithObservableState(produce Producer) Producer {
	return func(def Definition) Actor {
		inner := produce(def)
		return &observableWrapper{inner: inner}
	}
}

type observableWrapper struct {
	inner Actor
}

func (o *observableWrapper) Receive(ctx Context) {
	if _, ok := ctx.Message().(observeStateRequest); ok {
		provider, ok := o.inner.(ObservableStateProvider)
		if !ok {
			ctx.Respond(nil, errNotObservable)
			return
		}
		ctx.Respond(provider.ObservableState(), nil)
		return
	}
	o.inner.Receive(ctx)
}

func (o *observableWrapper) BeforeStart(ctx Context) error {
	if s, ok := o.inner.(Starter); ok {
		return s.BeforeStart(ctx)
	}
	return nil
}

func (o *observableWrapper) BeforeStop(ctx Context) error {
	if s, ok := o.inner.(Stopper); ok {
		return s.BeforeStop(ctx)
	}
	return nil
}

func (o *observableWrapper) AfterStop(ctx Context) error {
	if s, ok := o.inner.(StoppedHook); ok {
		return s.AfterStop(ctx)
	}
	return nil
}

func (o *observableWrapper) BeforeRestart(ctx Context, cause error) error {
	if s, ok := o.inner.(Restarter); ok {
		return s.BeforeRestart(ctx, cause)
	}
	return nil
}

func (o *observableWrapper) AfterRestart(ctx Context) error {
	if s, ok := o.inner.(RestartedHook); ok {
		return s.AfterRestart(ctx)
	}
	return nil
}

func (o *observableWrapper) BeforeResume(ctx Context) error {
	if s, ok := o.inner.(Resumer); ok {
		return s.BeforeResume(ctx)
	}
	return nil
}

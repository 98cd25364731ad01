package bollywood

import "errors"

// Sentinel errors returned by the runtime. Callers use errors.Is to test
// for them, including when they are wrapped (e.g. ErrActorPanic carries the
// recovered panic value in its message).
var (
	// ErrMessageDropped is returned by Ask when a message never reached its
	// target's Receive: the mailbox was closed, the target was never
	// registered, or an overflow policy discarded it. It is distinct from a
	// handler failure (any other error means the handler ran and failed).
	ErrMessageDropped = errors.New("bollywood: message dropped")

	// ErrActorNotFound is returned by Ask/AskFrom for the zero Proxy, and by
	// RegisterSupervisor when the Proxy's address has no registered process
	// in the Stage's directory (never created, or already stopped). Ask to
	// such an address returns ErrMessageDropped instead.
	ErrActorNotFound = errors.New("bollywood: actor not found")

	// ErrStageClosed is returned by ActorFor once Stage.Close has begun.
	ErrStageClosed = errors.New("bollywood: stage is closed")

	// ErrInvalidDefinition is returned when a Definition is missing a
	// required field (e.g. a nil Producer via an empty Protocol).
	ErrInvalidDefinition = errors.New("bollywood: invalid definition")

	// ErrSupervisorNotFound is returned by ActorFor when WithSupervisor
	// names a supervisor that was never registered with RegisterSupervisor.
	ErrSupervisorNotFound = errors.New("bollywood: supervisor not registered")

	// ErrActorPanic wraps a recovered panic from inside Actor.Receive.
	// errors.Is(err, ErrActorPanic) is true for any such failure regardless
	// of the original panic value. Panics in lifecycle hooks are not
	// recovered.
	ErrActorPanic = errors.New("bollywood: actor panic")
)

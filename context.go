package bollywood

import "context"

// Context is the per-delivery handle an Actor's Receive (and its lifecycle
// hooks) use to interact with the rest of the runtime: inspecting the
// message that triggered this call, replying to it, spawning children,
// and reaching the Stage's shared facilities.
//
// A Context is only valid for the duration of the Receive/hook call it was
// built for; an actor must not retain one across calls.
type Context interface {
	// Stage returns the owning Stage.
	Stage() *Stage
	// Self returns this actor's own Proxy.
	Self() Proxy
	// Sender returns the Proxy of whoever sent the current message, or the
	// zero Proxy if it was sent anonymously.
	Sender() Proxy
	// Message returns the payload of the message currently being handled.
	Message() any

	// Respond settles the current message's pending Ask, if any. Calling it
	// more than once, or on a message with no pending Ask, is a no-op.
	Respond(value any, err error)

	// Parent returns this actor's parent Proxy, or the zero Proxy for a
	// root guardian.
	Parent() Proxy
	// Children returns a snapshot of this actor's current children.
	Children() []Proxy
	// ChildActorFor spawns a new actor as a child of this one, supervised
	// by this actor's own supervisor unless overridden by opts.
	ChildActorFor(protocol Protocol, def Definition, opts ...ActorOption) (Proxy, error)

	// Scheduler returns the Stage's scheduler.
	Scheduler() *Scheduler
	// DeadLetters returns the Stage's dead letter office.
	DeadLetters() *DeadLetters
	// Logger returns the logger this actor should use.
	Logger() Logger

	// Scratch is a per-actor, dispatch-worker-confined map an actor body
	// may use for incidental bookkeeping that should not be mixed into its
	// own fields (mirrors the teacher's per-actor scratch dict pattern).
	Scratch() map[string]any
}

// actorContext is the concrete Context handed to a process's actor body for
// a single Receive/hook invocation. It is rebuilt (not reused) for each
// message, since Sender/Message/Respond are specific to that delivery.
type actorContext struct {
	proc    *process
	message *Message
}

func (c *actorContext) Stage() *Stage { return c.proc.stage }

func (c *actorContext) Self() Proxy { return Proxy{addr: c.proc.address, stage: c.proc.stage} }

func (c *actorContext) Sender() Proxy {
	if c.message == nil || c.message.Sender == nil {
		return Proxy{}
	}
	return Proxy{addr: c.message.Sender, stage: c.proc.stage}
}

func (c *actorContext) Message() any {
	if c.message == nil {
		return nil
	}
	return c.message.Payload
}

func (c *actorContext) Respond(value any, err error) {
	if c.message == nil {
		return
	}
	c.message.settle(value, err)
}

func (c *actorContext) Parent() Proxy { return c.proc.parentProxy() }

func (c *actorContext) Children() []Proxy {
	c.proc.childrenMu.Lock()
	defer c.proc.childrenMu.Unlock()
	out := make([]Proxy, 0, len(c.proc.children))
	for _, p := range c.proc.children {
		out = append(out, p)
	}
	return out
}

func (c *actorContext) ChildActorFor(protocol Protocol, def Definition, opts ...ActorOption) (Proxy, error) {
	opts = append([]ActorOption{withParentProcess(c.proc)}, opts...)
	return c.proc.stage.ActorFor(protocol, def, opts...)
}

func (c *actorContext) Scheduler() *Scheduler { return c.proc.stage.scheduler }

func (c *actorContext) DeadLetters() *DeadLetters { return c.proc.stage.deadLetters }

func (c *actorContext) Logger() Logger { return c.proc.logger }

func (c *actorContext) Scratch() map[string]any { return c.proc.scratch }

// backgroundCtx is used for blocking calls internal to the runtime (stop
// coordination) that are not themselves tied to an incoming message and so
// have no deadline of their own beyond what the caller supplies.
var backgroundCtx = context.Background()

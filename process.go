package bollywood

import (
	"fmt"
	"sync"
	"sync/atomic"
)

type lifecycleState int32

const (
	stateNew lifecycleState = iota
	stateStarted
	stateRestarting
	stateResuming
	stateStopping
	stateStopped
)

// process is the runtime's private handle on a single actor: its address,
// mailbox, current body, and place in the supervision tree. Proxy is the
// only handle user code ever sees; process never escapes this package.
type process struct {
	stage    *Stage
	address  Address
	def      Definition
	protocol Protocol

	mailbox Mailbox
	actor   Actor
	logger  Logger

	// parentSupervisorMu guards parent/supervisor: almost always fixed at
	// construction, but Stage.RegisterSupervisor reparents an already-running
	// supervisor actor under the private root after the fact (spec §11), so
	// reads and that one write need to be safe against each other.
	parentSupervisorMu sync.RWMutex
	parent             Proxy
	supervisor         Proxy

	childrenMu sync.Mutex
	children   map[string]Proxy

	state atomic.Int32

	scratch map[string]any
}

func newProcess(stage *Stage, address Address, def Definition, protocol Protocol, mailboxFactory MailboxFactory, deadLetters *DeadLetters, parent, supervisor Proxy, logger Logger) *process {
	p := &process{
		stage:      stage,
		address:    address,
		def:        def,
		protocol:   protocol,
		actor:      protocol.Instantiator().Instantiate(def),
		logger:     logger,
		parent:     parent,
		supervisor: supervisor,
		children:   make(map[string]Proxy),
		scratch:    make(map[string]any),
	}
	p.mailbox = mailboxFactory(p.deliver, deadLetters)
	return p
}

func (p *process) selfProxy() Proxy { return Proxy{addr: p.address, stage: p.stage} }

func (p *process) parentProxy() Proxy {
	p.parentSupervisorMu.RLock()
	defer p.parentSupervisorMu.RUnlock()
	return p.parent
}

func (p *process) supervisorProxy() Proxy {
	p.parentSupervisorMu.RLock()
	defer p.parentSupervisorMu.RUnlock()
	return p.supervisor
}

// setParentSupervisor reparents a running process, returning the previous
// parent/supervisor so the caller can unwind the old bookkeeping (child-set
// membership, registerSupervised tracking).
func (p *process) setParentSupervisor(parent, supervisor Proxy) (oldParent, oldSupervisor Proxy) {
	p.parentSupervisorMu.Lock()
	oldParent, oldSupervisor = p.parent, p.supervisor
	p.parent, p.supervisor = parent, supervisor
	p.parentSupervisorMu.Unlock()
	return oldParent, oldSupervisor
}

// start transitions the process from New to Started and runs BeforeStart,
// if the actor body implements Starter. A BeforeStart error is logged, like
// every other lifecycle hook error, and the actor stays Started.
func (p *process) start() {
	p.state.Store(int32(stateStarted))
	if starter, ok := p.actor.(Starter); ok {
		ctx := &actorContext{proc: p}
		if err := starter.BeforeStart(ctx); err != nil {
			p.logger.Error("BeforeStart failed", "address", p.address.String(), "error", err)
		}
	}
}

// deliver is the Mailbox's single dispatch worker calling back into this
// process for one message at a time — the single-worker invariant is
// entirely the mailbox's responsibility; deliver just needs to never spawn
// concurrency of its own.
func (p *process) deliver(msg *Message) {
	if msg.control != controlNone {
		p.handleControl(msg)
		return
	}

	if lifecycleState(p.state.Load()) != stateStarted {
		p.stage.deadLetters.record(DeadLetter{Destination: p.address, Payload: msg.Payload})
		msg.drop(ErrMessageDropped)
		return
	}

	ctx := &actorContext{proc: p, message: msg}
	p.runReceive(ctx, msg)
	// A Receive that returned without calling Respond still settles the
	// caller's Ask, with a nil value; a no-op if it was already settled.
	msg.settle(nil, nil)
}

func (p *process) runReceive(ctx *actorContext, msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrActorPanic, r)
			p.onFailure(msg, err)
		}
	}()
	p.actor.Receive(ctx)
}

// onFailure settles the triggering message (if any) with the failure, then
// suspends this actor's mailbox and reports up to its supervisor. The
// actor stays suspended — no further user messages are delivered — until
// the supervisor's directive (Resume/Restart/Stop) arrives.
func (p *process) onFailure(msg *Message, err error) {
	if msg != nil {
		msg.settle(nil, err)
	}
	p.mailbox.Suspend()
	p.logger.Error("actor failed", "address", p.address.String(), "error", err)
	p.stage.informSupervisor(p, err)
}

func (p *process) handleControl(msg *Message) {
	switch msg.control {
	case controlStop:
		p.doStop()
	case controlRestart:
		p.doRestart(msg.cause)
	case controlResume:
		p.doResume()
	}
	if msg.done != nil {
		close(msg.done)
	}
}

// doStop recursively stops every child first (spec §8: "children stop
// before the parent's own AfterStop runs"), runs BeforeStop/AfterStop,
// closes the mailbox (draining any backlog to dead letters), and finally
// tells the Stage to forget this process.
func (p *process) doStop() {
	if !p.state.CompareAndSwap(int32(stateStarted), int32(stateStopping)) &&
		!p.state.CompareAndSwap(int32(stateResuming), int32(stateStopping)) &&
		!p.state.CompareAndSwap(int32(stateRestarting), int32(stateStopping)) &&
		!p.state.CompareAndSwap(int32(stateNew), int32(stateStopping)) {
		return // already stopping or stopped
	}

	for _, child := range p.snapshotChildren() {
		p.stage.stopAndWait(backgroundCtx, child)
	}

	ctx := &actorContext{proc: p}
	if stopper, ok := p.actor.(Stopper); ok {
		if err := stopper.BeforeStop(ctx); err != nil {
			p.logger.Error("BeforeStop failed", "address", p.address.String(), "error", err)
		}
	}

	p.mailbox.Close()

	if hook, ok := p.actor.(StoppedHook); ok {
		if err := hook.AfterStop(ctx); err != nil {
			p.logger.Error("AfterStop failed", "address", p.address.String(), "error", err)
		}
	}

	p.state.Store(int32(stateStopped))
	p.stage.onProcessStopped(p)
}

// doRestart suspends (already suspended, from onFailure, in the common
// case), runs BeforeRestart on the old body, reinstantiates a fresh body
// from the original Definition, runs AfterRestart on the new body, and
// resumes. Scratch state is cleared; ObservableState/StateSnapshot are up
// to the new body to repopulate from StateSnapshotter if it wants to.
func (p *process) doRestart(cause error) {
	p.state.Store(int32(stateRestarting))
	p.mailbox.Suspend()

	ctx := &actorContext{proc: p}
	if restarter, ok := p.actor.(Restarter); ok {
		if err := restarter.BeforeRestart(ctx, cause); err != nil {
			p.logger.Error("BeforeRestart failed", "address", p.address.String(), "error", err)
		}
	}

	p.actor = p.protocol.Instantiator().Instantiate(p.def)
	p.scratch = make(map[string]any)

	if hook, ok := p.actor.(RestartedHook); ok {
		if err := hook.AfterRestart(ctx); err != nil {
			p.logger.Error("AfterRestart failed", "address", p.address.String(), "error", err)
		}
	}

	p.state.Store(int32(stateStarted))
	p.mailbox.Resume()
}

// doResume leaves state and body untouched and simply resumes delivery.
func (p *process) doResume() {
	p.state.Store(int32(stateResuming))
	ctx := &actorContext{proc: p}
	if resumer, ok := p.actor.(Resumer); ok {
		if err := resumer.BeforeResume(ctx); err != nil {
			p.logger.Error("BeforeResume failed", "address", p.address.String(), "error", err)
		}
	}
	p.state.Store(int32(stateStarted))
	p.mailbox.Resume()
}

func (p *process) addChild(child Proxy) {
	p.childrenMu.Lock()
	p.children[child.Address().String()] = child
	p.childrenMu.Unlock()
}

func (p *process) removeChild(addr Address) {
	p.childrenMu.Lock()
	delete(p.children, addr.String())
	p.childrenMu.Unlock()
}

func (p *process) snapshotChildren() []Proxy {
	p.childrenMu.Lock()
	defer p.childrenMu.Unlock()
	out := make([]Proxy, 0, len(p.children))
	for _, c := range p.children {
		out = append(out, c)
	}
	return out
}

package bollywood

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Stage is the runtime root: it owns the actor directory, dead letter
// office, scheduler, and the two guardian actors every actor tree is
// ultimately rooted under. A Stage is safe for concurrent use.
type Stage struct {
	config      stageConfig
	directory   *directory
	deadLetters *DeadLetters
	scheduler   *Scheduler
	logger      Logger

	privateRootProxy Proxy
	publicRootProxy  Proxy

	supervisorsMu sync.RWMutex
	supervisors   map[string]Proxy

	// directiveStops tracks Stop directives dispatched asynchronously by
	// applyDirective, so Close can wait for them instead of racing a
	// supervisor-initiated stop that is still in flight.
	directiveStops sync.WaitGroup

	stopping atomic.Bool
	closeMu  sync.Mutex
	closed   bool
}

// NewStage constructs a Stage and bootstraps its two root guardians.
func NewStage(opts ...StageOption) *Stage {
	cfg := defaultStageConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Stage{
		config:      cfg,
		directory:   newDirectory(cfg.shardCount),
		logger:      cfg.logger,
		supervisors: make(map[string]Proxy),
	}
	s.deadLetters = newDeadLetters(cfg.logger)
	s.scheduler = newScheduler(cfg.logger)

	s.privateRootProxy = s.bootstrapGuardian(privateRootType, Proxy{}, Proxy{})
	s.publicRootProxy = s.bootstrapGuardian(publicRootType, s.privateRootProxy, s.privateRootProxy)

	return s
}

// bootstrapGuardian creates a root-level supervisor actor directly,
// bypassing the normal ActorFor parent/supervisor resolution since the
// guardians sit above the point where that resolution makes sense.
func (s *Stage) bootstrapGuardian(typeName string, parent, supervisor Proxy) Proxy {
	protocol := newGuardianProtocol(typeName)
	address := NewUUIDAddress()
	def := Definition{Type: typeName, Address: address}

	proc := newProcess(s, address, def, protocol, s.config.mailboxFactory, s.deadLetters, parent, supervisor, s.logger)
	s.directory.register(address, proc)
	if !parent.IsZero() {
		if parentProc, ok := s.directory.get(parent.addr); ok {
			parentProc.addChild(proc.selfProxy())
		}
	}
	proc.start()
	return proc.selfProxy()
}

// ActorFor creates a new actor from protocol and def. If def.Address is
// nil, a fresh UUIDAddress is assigned. Without WithParent/WithSupervisor,
// the actor's parent and supervisor both default to the public root
// guardian — the top-level "let it crash" tier.
func (s *Stage) ActorFor(protocol Protocol, def Definition, opts ...ActorOption) (Proxy, error) {
	if s.stopping.Load() {
		return Proxy{}, ErrStageClosed
	}
	if protocol.IsZero() {
		return Proxy{}, ErrInvalidDefinition
	}

	cfg := actorSpawnConfig{mailboxFactory: s.config.mailboxFactory}
	for _, opt := range opts {
		opt(&cfg)
	}

	parent := cfg.parent
	if parent.IsZero() {
		parent = s.publicRootProxy
	}

	supervisor := cfg.supervisor
	if cfg.supervisorName != "" {
		named, ok := s.lookupSupervisor(cfg.supervisorName)
		if !ok {
			return Proxy{}, ErrSupervisorNotFound
		}
		supervisor = named
	} else if supervisor.IsZero() {
		supervisor = s.publicRootProxy
	}

	address := def.Address
	if address == nil {
		address = NewUUIDAddress()
		def.Address = address
	}

	proc := newProcess(s, address, def, protocol, cfg.mailboxFactory, s.deadLetters, parent, supervisor, s.logger)
	s.directory.register(address, proc)

	if parentProc, ok := s.directory.get(parent.addr); ok {
		parentProc.addChild(proc.selfProxy())
	}
	supervisor.Tell(registerSupervised{Proxy: proc.selfProxy()})

	proc.start()
	return proc.selfProxy(), nil
}

// ActorOf looks up the Proxy for an already-registered address.
func (s *Stage) ActorOf(addr Address) (Proxy, bool) {
	if _, ok := s.directory.get(addr); !ok {
		return Proxy{}, false
	}
	return Proxy{addr: addr, stage: s}, true
}

// RegisterSupervisor names a Proxy (normally one running the built-in
// supervisor Actor produced by NewSupervisor) so later ActorFor/
// ChildActorFor calls can target it with WithSupervisor(name).
//
// Per spec §11, PrivateRoot — not PublicRoot — supervises registered user
// supervisors. A supervisor spawned with a plain ActorFor call (no
// WithParent/WithSupervisor) falls through to PublicRoot as both parent and
// supervisor by default; RegisterSupervisor corrects that default to
// PrivateRoot for whichever of the two the caller didn't already override
// explicitly (e.g. to build a custom escalation chain by supervising one
// registered supervisor with another).
func (s *Stage) RegisterSupervisor(name string, p Proxy) error {
	if p.IsZero() {
		return ErrInvalidDefinition
	}
	proc, ok := s.directory.get(p.addr)
	if !ok {
		return ErrActorNotFound
	}

	oldParent, oldSupervisor := proc.parentProxy(), proc.supervisorProxy()
	newParent, newSupervisor := oldParent, oldSupervisor
	if oldParent.IsZero() || oldParent.addr.Equal(s.publicRootProxy.addr) {
		newParent = s.privateRootProxy
	}
	if oldSupervisor.IsZero() || oldSupervisor.addr.Equal(s.publicRootProxy.addr) {
		newSupervisor = s.privateRootProxy
	}
	proc.setParentSupervisor(newParent, newSupervisor)

	if !newParent.addr.Equal(oldParent.addr) {
		if oldParentProc, ok := s.directory.get(oldParent.addr); ok {
			oldParentProc.removeChild(p.addr)
		}
		if privateRootProc, ok := s.directory.get(s.privateRootProxy.addr); ok {
			privateRootProc.addChild(p)
		}
	}
	if !newSupervisor.addr.Equal(oldSupervisor.addr) {
		if !oldSupervisor.IsZero() {
			oldSupervisor.Tell(unregisterSupervised{Address: p.addr})
		}
		s.privateRootProxy.Tell(registerSupervised{Proxy: p})
	}

	s.supervisorsMu.Lock()
	s.supervisors[name] = p
	s.supervisorsMu.Unlock()
	return nil
}

func (s *Stage) lookupSupervisor(name string) (Proxy, bool) {
	s.supervisorsMu.RLock()
	defer s.supervisorsMu.RUnlock()
	p, ok := s.supervisors[name]
	return p, ok
}

// DeadLetters returns the Stage's dead letter office.
func (s *Stage) DeadLetters() *DeadLetters { return s.deadLetters }

// Scheduler returns the Stage's scheduler.
func (s *Stage) Scheduler() *Scheduler { return s.scheduler }

// PrivateRoot returns the guardian Proxy that supervises registered user
// supervisors (see RegisterSupervisor) and the public root guardian itself.
// Exposed so a caller can also reparent/resupervise an actor under it
// directly via WithParent/WithSupervisorProxy instead of going through
// RegisterSupervisor's name registry.
func (s *Stage) PrivateRoot() Proxy { return s.privateRootProxy }

// PublicRoot returns the guardian Proxy that is the default parent and
// supervisor for top-level user actors spawned without WithParent/
// WithSupervisor.
func (s *Stage) PublicRoot() Proxy { return s.publicRootProxy }

// Close stops every actor (public root's subtree, then the private root),
// then the scheduler. It is idempotent; subsequent calls return nil
// immediately.
func (s *Stage) Close(ctx context.Context) error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return nil
	}
	s.closed = true
	s.closeMu.Unlock()

	s.stopping.Store(true)
	s.stopAndWait(ctx, s.publicRootProxy)
	s.stopAndWait(ctx, s.privateRootProxy)
	s.directiveStops.Wait()
	s.scheduler.Close()
	return nil
}

// stopAndWait sends a controlStop through the target's own mailbox and
// blocks until it finishes (or ctx is done). Because the control message
// travels the same queue as everything else, it only runs after whatever
// was already pending, and doStop itself recurses into children the same
// way before returning.
func (s *Stage) stopAndWait(ctx context.Context, target Proxy) {
	if target.IsZero() {
		return
	}
	proc, ok := s.directory.get(target.addr)
	if !ok {
		return
	}
	done := make(chan struct{})
	proc.mailbox.Send(&Message{Dest: target.addr, control: controlStop, done: done})

	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (s *Stage) sendControl(target Proxy, kind controlKind, cause error) {
	if target.IsZero() {
		return
	}
	proc, ok := s.directory.get(target.addr)
	if !ok {
		return
	}
	proc.mailbox.Send(&Message{Dest: target.addr, control: kind, cause: cause})
}

// onProcessStopped unregisters a fully-stopped process from the directory,
// its parent's child set, and its supervisor's tracked set.
func (s *Stage) onProcessStopped(p *process) {
	s.directory.unregister(p.address)
	parent := p.parentProxy()
	if !parent.IsZero() {
		if parentProc, ok := s.directory.get(parent.addr); ok {
			parentProc.removeChild(p.address)
		}
	}
	if supervisor := p.supervisorProxy(); !supervisor.IsZero() {
		supervisor.Tell(unregisterSupervised{Address: p.address})
	}
}

// informSupervisor delivers a Supervised failure report to p's supervisor,
// or routes it to dead letters if the process has none (should only
// happen for a guardian with a misconfigured supervisor).
func (s *Stage) informSupervisor(p *process, err error) {
	supervisor := p.supervisorProxy()
	if supervisor.IsZero() {
		s.deadLetters.record(DeadLetter{Destination: p.address, Payload: Supervised{Error: err}, Timestamp: time.Now()})
		return
	}
	supervisor.Tell(Supervised{Child: p.selfProxy(), Error: err})
}

// applyDirective executes a supervisor's decision against one child. Stop is
// fire-and-forget by design (a supervisor's own dispatch worker must not
// block waiting for a child to finish stopping); s.directiveStops tracks
// those in-flight goroutines so Close can drain them instead of racing past.
func (s *Stage) applyDirective(d Directive, report Supervised, supervisorSelf Proxy) {
	switch d {
	case Resume:
		s.sendControl(report.Child, controlResume, nil)
	case Restart:
		s.sendControl(report.Child, controlRestart, report.Error)
	case Stop:
		s.directiveStops.Add(1)
		go func() {
			defer s.directiveStops.Done()
			s.stopAndWait(backgroundCtx, report.Child)
		}()
	case Escalate:
		proc, ok := s.directory.get(supervisorSelf.addr)
		if !ok || proc.supervisorProxy().IsZero() {
			s.deadLetters.record(DeadLetter{Destination: supervisorSelf.addr, Payload: report, Timestamp: time.Now()})
			return
		}
		proc.supervisorProxy().Tell(Supervised{Child: supervisorSelf, Error: report.Error})
	}
}

// NewSupervisor builds a standalone supervisor actor body a caller spawns
// with ActorFor/ChildActorFor and then registers with RegisterSupervisor
// (or passes directly as an actor's supervisor via WithSupervisorProxy), customizing
// failure handling with strategy and decide.
func NewSupervisor(strategy Strategy, decide DirectiveDecider) Protocol {
	return NewProtocol("bollywood.supervisor", func(def Definition) Actor {
		return newSupervisorActor(strategy, decide)
	})
}

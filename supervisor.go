package bollywood

import "time"

// Directive is a supervisor's decision on how a failing (or escalating)
// child should be handled.
type Directive int

const (
	// Resume leaves the actor's state and body untouched; only the
	// mailbox is resumed (after BeforeResume).
	Resume Directive = iota
	// Restart suspends, reinstantiates the actor body from its original
	// Definition, and resumes.
	Restart
	// Stop performs the normal stop transition (children first, hooks,
	// mailbox close).
	Stop
	// Escalate forwards the failure to the supervisor's own supervisor.
	Escalate
)

func (d Directive) String() string {
	switch d {
	case Resume:
		return "Resume"
	case Restart:
		return "Restart"
	case Stop:
		return "Stop"
	case Escalate:
		return "Escalate"
	default:
		return "Unknown"
	}
}

// Scope controls which children a directive applies to once decided.
type Scope int

const (
	// ScopeOne applies the directive only to the child that failed.
	ScopeOne Scope = iota
	// ScopeAll applies the directive to every sibling supervised by the
	// same supervisor.
	ScopeAll
)

// Strategy bounds how many restarts a supervisor tolerates in a sliding
// window before giving up on the offending child (or children, under
// ScopeAll).
type Strategy struct {
	// Intensity is the maximum number of restarts allowed within Period.
	Intensity int
	// Period is the sliding window Intensity is measured over.
	Period time.Duration
	// Scope says whether a directive applies to just the failing child or
	// every sibling under the same supervisor.
	Scope Scope
	// OnBreach is the directive substituted once Intensity is exceeded
	// within Period. The zero value is Resume, which is never used as a
	// breach outcome: it is replaced by Stop, so leaving OnBreach unset
	// means Stop.
	OnBreach Directive
}

// unboundedRestartStrategy never gives up: it is the "let it crash"
// bulkhead strategy the PublicRoot and PrivateRoot guardians use.
func unboundedRestartStrategy() Strategy {
	return Strategy{Intensity: 1 << 30, Period: time.Minute, Scope: ScopeOne, OnBreach: Stop}
}

// DefaultStrategy returns a reasonable starting point for user-defined
// supervisors: restart up to 10 times within a minute before stopping.
func DefaultStrategy() Strategy {
	return Strategy{Intensity: 10, Period: time.Minute, Scope: ScopeOne, OnBreach: Stop}
}

// Supervised describes a single failure report delivered to a supervisor:
// which child failed and why.
type Supervised struct {
	Child Proxy
	Error error
}

// DirectiveDecider is a supervisor's decision function: given the error and
// the report, and its own strategy, return a Directive. The strategy's
// intensity/period bound is enforced by the runtime after this returns, so
// a decider only needs to express "what kind of failure is this."
type DirectiveDecider func(err error, supervised Supervised, strategy Strategy) Directive

// AlwaysRestart is the decision function used by both root guardians: every
// failure is answered with Restart (the "let it crash" philosophy), letting
// the Strategy's intensity bound be the only thing that ever converts it to
// Stop/Escalate.
func AlwaysRestart(err error, supervised Supervised, strategy Strategy) Directive {
	return Restart
}

// internal control messages exchanged between Stage.ActorFor/onProcessStopped
// and a supervisor's own mailbox, so supervision bookkeeping always runs
// inside the supervisor's single dispatch worker (spec §9:
// "supervisor-as-actor... avoids all shared supervision state").
type registerSupervised struct{ Proxy Proxy }
type unregisterSupervised struct{ Address Address }

// supervisorActor is the built-in Actor body for every supervisor: root
// guardians and user-registered supervisors alike. A user customizes
// behavior by supplying a DirectiveDecider and Strategy, not by
// implementing Actor themselves — this keeps the "decisions serialize
// through the supervisor's own mailbox" guarantee intact regardless of
// what the caller wrote.
type supervisorActor struct {
	strategy Strategy
	decide   DirectiveDecider

	supervised   map[string]Proxy
	restartTimes []time.Time
}

func newSupervisorActor(strategy Strategy, decide DirectiveDecider) *supervisorActor {
	if decide == nil {
		decide = AlwaysRestart
	}
	return &supervisorActor{
		strategy:   strategy,
		decide:     decide,
		supervised: make(map[string]Proxy),
	}
}

func (s *supervisorActor) Receive(ctx Context) {
	switch m := ctx.Message().(type) {
	case registerSupervised:
		s.supervised[m.Proxy.Address().String()] = m.Proxy
	case unregisterSupervised:
		delete(s.supervised, m.Address.String())
	case Supervised:
		s.onFailure(ctx, m)
	}
}

func (s *supervisorActor) onFailure(ctx Context, report Supervised) {
	directive := s.decide(report.Error, report, s.strategy)
	directive = s.enforceIntensity(directive)

	targets := []Proxy{report.Child}
	if s.strategy.Scope == ScopeAll {
		targets = targets[:0]
		for _, p := range s.supervised {
			targets = append(targets, p)
		}
	}

	stage := ctx.Stage()
	for _, target := range targets {
		stage.applyDirective(directive, Supervised{Child: target, Error: report.Error}, ctx.Self())
	}
}

// enforceIntensity records a Restart attempt and, once more than
// Strategy.Intensity restarts have happened within Strategy.Period,
// substitutes Strategy.OnBreach for the rest of this window.
func (s *supervisorActor) enforceIntensity(directive Directive) Directive {
	if directive != Restart {
		return directive
	}
	now := time.Now()
	cutoff := now.Add(-s.strategy.Period)
	kept := s.restartTimes[:0]
	for _, t := range s.restartTimes {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	s.restartTimes = kept

	if len(s.restartTimes) > s.strategy.Intensity {
		onBreach := s.strategy.OnBreach
		if onBreach == Resume {
			// Resume is never a sensible breach outcome (it would leave the
			// actor's bad state in place); Stop is the safe default.
			onBreach = Stop
		}
		return onBreach
	}
	return directive
}

package bollywood

// Actor is the interface every actor body implements. Receive is invoked at
// most once at a time for a given actor (the single-worker invariant),
// driven by its Mailbox's dispatch worker.
type Actor interface {
	Receive(ctx Context)
}

// The hook interfaces below are optional: an actor body implements only the
// transitions it cares about. This mirrors the teacher's habit of type-
// asserting an actor against small single-method interfaces (Initialiser,
// Terminator in go-supervise) rather than forcing every actor to implement
// a god-interface of no-op hooks.

// Starter is invoked once, before the actor begins receiving messages.
type Starter interface {
	BeforeStart(ctx Context) error
}

// Stopper is invoked when the actor begins stopping, after its children
// have stopped but before its mailbox is closed.
type Stopper interface {
	BeforeStop(ctx Context) error
}

// StoppedHook is invoked after the mailbox is closed, as the final step of
// shutdown.
type StoppedHook interface {
	AfterStop(ctx Context) error
}

// Restarter is invoked just before a supervision-driven restart reinstates
// the actor body, with the error that triggered it.
type Restarter interface {
	BeforeRestart(ctx Context, cause error) error
}

// RestartedHook is invoked on the new actor body immediately after a
// supervision-driven restart, before the mailbox resumes.
type RestartedHook interface {
	AfterRestart(ctx Context) error
}

// Resumer is invoked before a supervision-driven Resume directive resumes
// the mailbox; state and body are otherwise untouched.
type Resumer interface {
	BeforeResume(ctx Context) error
}

// StateSnapshotter lets an actor opt into the state-snapshot pattern: a
// no-op by default (per spec §6), overridable for persistence or testing.
// Called with a non-nil value to store a snapshot, or nil to retrieve the
// most recently stored one.
type StateSnapshotter interface {
	StateSnapshot(value any) any
}

// ObservableStateProvider lets tests peek at an actor's private state
// without racing its dispatch worker — see testkit for the polling helpers
// that consume this.
type ObservableStateProvider interface {
	ObservableState() map[string]any
}

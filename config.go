package bollywood

// StageOption configures a Stage at construction time.
type StageOption func(*stageConfig)

type stageConfig struct {
	shardCount     int
	mailboxFactory MailboxFactory
	logger         Logger
}

func defaultStageConfig() stageConfig {
	return stageConfig{
		shardCount:     defaultShardCount,
		mailboxFactory: UnboundedMailboxFactory(),
		logger:         defaultLogger(),
	}
}

// WithShardCount sets the number of directory shards. Larger values reduce
// lock contention under heavy concurrent ActorFor/ActorOf traffic at the
// cost of more bookkeeping; the default (32) suits moderate actor counts.
func WithShardCount(n int) StageOption {
	return func(c *stageConfig) {
		if n > 0 {
			c.shardCount = n
		}
	}
}

// WithDefaultMailbox overrides the mailbox factory used for actors that
// don't specify their own via WithMailbox.
func WithDefaultMailbox(factory MailboxFactory) StageOption {
	return func(c *stageConfig) {
		if factory != nil {
			c.mailboxFactory = factory
		}
	}
}

// WithLogger overrides the Stage's default stderr slog logger.
func WithLogger(logger Logger) StageOption {
	return func(c *stageConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// ActorOption configures a single ActorFor call.
type ActorOption func(*actorSpawnConfig)

type actorSpawnConfig struct {
	parent         Proxy
	supervisor     Proxy
	supervisorName string
	mailboxFactory MailboxFactory
}

// WithParent overrides the actor's parent (default: the Stage's public root
// guardian). Only meaningful from outside Context.ChildActorFor, which
// already fixes the parent to the calling actor.
func WithParent(p Proxy) ActorOption {
	return func(c *actorSpawnConfig) { c.parent = p }
}

// WithSupervisor names a supervisor registered via Stage.RegisterSupervisor
// to own this actor's failures, overriding the inherited default.
func WithSupervisor(name string) ActorOption {
	return func(c *actorSpawnConfig) { c.supervisorName = name }
}

// WithSupervisorProxy sets an already-resolved Proxy as this actor's
// supervisor, overriding the inherited default — the Proxy-valued
// counterpart to WithParent, for wiring an actor under e.g. Stage.
// PrivateRoot() directly without going through the named registry.
func WithSupervisorProxy(p Proxy) ActorOption {
	return func(c *actorSpawnConfig) { c.supervisor = p }
}

// WithMailbox overrides the mailbox factory for just this actor.
func WithMailbox(factory MailboxFactory) ActorOption {
	return func(c *actorSpawnConfig) {
		if factory != nil {
			c.mailboxFactory = factory
		}
	}
}

// withParentProcess is applied first by Context.ChildActorFor so a child
// spawned from inside an actor's Receive inherits that actor as its parent
// and that actor's supervisor as its own default supervisor, matching spec
// §4.3's "a child's default supervisor is its parent's supervisor."
func withParentProcess(parent *process) ActorOption {
	return func(c *actorSpawnConfig) {
		c.parent = parent.selfProxy()
		c.supervisor = parent.supervisorProxy()
	}
}

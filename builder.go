package authcore

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/MrEthical07/authcore/credentials"
	"github.com/MrEthical07/authcore/limiter"
	"github.com/MrEthical07/authcore/metrics"
	"github.com/MrEthical07/authcore/session"
	"github.com/MrEthical07/authcore/store"
	"github.com/MrEthical07/authcore/token"
)

// Builder assembles an [Engine]. Construction is allocation-only: no
// I/O happens until Build, and a Builder is single-use.
type Builder struct {
	config Config
	store  store.Store
	roles  map[string][]string

	auditSink AuditSink
	logger    zerolog.Logger
	haveLog   bool

	built bool
}

// New returns a Builder preloaded with [DefaultConfig] and the default
// role table.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
		roles:  DefaultRoles(),
	}
}

// WithConfig replaces the whole configuration tree.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithSecret sets the token signing key without replacing the rest of
// the configuration.
func (b *Builder) WithSecret(secret []byte) *Builder {
	b.config.Token.Secret = secret
	return b
}

// WithStore sets the persistence backend. Defaults to an in-process
// [store.MemoryStore] when unset.
func (b *Builder) WithStore(kv store.Store) *Builder {
	b.store = kv
	return b
}

// WithRoles replaces the role-to-permission table.
func (b *Builder) WithRoles(roles map[string][]string) *Builder {
	b.roles = roles
	return b
}

// WithAuditSink sets the destination for audit events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the operational logger. Defaults to a no-op logger.
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = logger
	b.haveLog = true
	return b
}

// Build validates the configuration, wires every component, starts the
// session sweeper and audit dispatcher, and returns the ready Engine.
// Callers own the Engine's lifecycle and should Close it on shutdown.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(b.roles) == 0 {
		return nil, errors.New("roles must be provided")
	}

	table := newRoleTable(b.roles)
	if !table.known(cfg.Account.DefaultRole) {
		return nil, errors.New("account default role does not exist in role table")
	}

	kv := b.store
	if kv == nil {
		kv = store.NewMemoryStore()
	}

	logger := b.logger
	if !b.haveLog {
		logger = zerolog.Nop()
	}

	hasher, err := credentials.NewHasher(credentials.Config{
		Iterations: cfg.Password.Iterations,
		SaltLength: cfg.Password.SaltLength,
		KeyLength:  cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := token.NewService(token.Config{
		Secret:     cfg.Token.Secret,
		AccessTTL:  cfg.Token.AccessTTL,
		RefreshTTL: cfg.Token.RefreshTTL,
		Issuer:     cfg.Token.Issuer,
	})
	if err != nil {
		return nil, err
	}

	mx := metrics.New(metrics.Config{Enabled: cfg.Metrics.Enabled})

	sessions := session.NewManager(kv, cfg.Session).
		WithLogger(logger).
		WithMetrics(mx)
	sessions.StartSweeper()

	engine := &Engine{
		config:       cfg,
		store:        kv,
		roles:        table,
		hasher:       hasher,
		tokens:       tokens,
		tokenStorage: token.NewStorage(kv),
		sessions:     sessions,
		limiter:      limiter.New(kv, cfg.Lockout),
		metrics:      mx,
		logger:       logger,
		audit:        newAuditDispatcher(cfg.Audit, b.auditSink),
	}

	b.built = true
	return engine, nil
}

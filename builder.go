package authsession

import (
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/streamvault/authsession/credstore"
	"github.com/streamvault/authsession/transport"
)

// Builder assembles a [Controller]. Configure it during initialization
// and call [Builder.Build] exactly once.
type Builder struct {
	config  Config
	durable credstore.Store
	redis   *redis.Client
	auth    Authenticator
	chain   *transport.Chain
	log     zerolog.Logger
	logSet  bool

	built bool
}

// New returns a Builder carrying [DefaultConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore supplies a custom durable credential slot, overriding the
// backend selected by the configuration.
func (b *Builder) WithStore(durable credstore.Store) *Builder {
	b.durable = durable
	return b
}

// WithRedis supplies the Redis client required by [BackendRedis].
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithAuthenticator supplies the collaborator the controller logs in and
// hydrates through. Required.
func (b *Builder) WithAuthenticator(auth Authenticator) *Builder {
	b.auth = auth
	return b
}

// WithTransport supplies an interceptor chain to wire: Build attaches the
// controller's credential read and rejection callback to it.
func (b *Builder) WithTransport(chain *transport.Chain) *Builder {
	b.chain = chain
	return b
}

// WithLogger supplies the structured logger. Defaults to a no-op logger.
func (b *Builder) WithLogger(log zerolog.Logger) *Builder {
	b.log = log
	b.logSet = true
	return b
}

// Build validates the configuration, seeds session state from the durable
// slot (synchronously, so a persisted credential is visible before any
// network round trip), and wires the transport chain when one was given.
func (b *Builder) Build() (*Controller, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.auth == nil {
		return nil, errors.New("authenticator required")
	}

	log := b.log
	if !b.logSet {
		log = zerolog.Nop()
	}

	durable := b.durable
	if durable == nil {
		switch b.config.Storage.Backend {
		case BackendFile:
			durable = credstore.NewFile(b.config.Storage.FilePath)
		case BackendRedis:
			if b.redis == nil {
				return nil, errors.New("redis client required")
			}
			durable = credstore.NewRedis(b.redis, b.config.Storage.RedisKey)
		case BackendMemory:
			durable = credstore.NewMemory()
		}
	}

	store := credstore.NewMirrored(durable, log)

	ctrl := &Controller{
		store: store,
		auth:  b.auth,
		log:   log,
		epoch: uuid.New(),
	}
	// Provisional role from the persisted credential alone; hydration
	// replaces it with the server-confirmed one.
	ctrl.role = DeriveRole(nil, store.Credential())

	if b.chain != nil {
		b.chain.Attach(ctrl.Handlers())
	}

	b.built = true
	return ctrl, nil
}

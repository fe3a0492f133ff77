package sceneauth

import (
	"errors"
	"log/slog"

	"github.com/MrEthical07/sceneauth/internal/audit"
	"github.com/MrEthical07/sceneauth/internal/rate"
	"github.com/MrEthical07/sceneauth/refresh"
	"github.com/MrEthical07/sceneauth/token"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine].
//
// Builder instances are single-use: Build may be called once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	tokens       TokenService
	refreshStore RefreshStore
	auditSink    AuditSink
	logger       *slog.Logger

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder configuration with a copy of cfg.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client backing the refresh store and rotation throttle.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithTokenService overrides the token service built from Config.Token.
func (b *Builder) WithTokenService(ts TokenService) *Builder {
	b.tokens = ts
	return b
}

// WithRefreshStore overrides the Redis refresh store.
func (b *Builder) WithRefreshStore(rs RefreshStore) *Builder {
	b.refreshStore = rs
	return b
}

// WithAuditSink sets the destination of audit events. Audit must also be
// enabled in Config.Audit.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. Nil keeps slog.Default().
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the verify latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready [Engine].
//
// Build fails when no Redis client is configured and no refresh store was
// injected, when the rotation throttle is enabled without Redis, and when
// token key material cannot be parsed.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		if b.refreshStore == nil {
			return nil, errors.New("redis client required")
		}
		if cfg.Security.EnableRotationThrottle {
			return nil, errors.New("rotation throttle requires redis client")
		}
	}

	tokens := b.tokens
	if tokens == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		tm, err := token.NewManager(token.Config{
			AccessTTL:     cfg.Token.AccessTTL,
			SigningMethod: token.SigningMethod(cfg.Token.SigningMethod),
			PrivateKey:    cloneBytes(cfg.Token.PrivateKey),
			PublicKey:     cloneBytes(cfg.Token.PublicKey),
			Issuer:        cfg.Token.Issuer,
			Audience:      cfg.Token.Audience,
			Leeway:        cfg.Token.Leeway,
			KeyID:         cfg.Token.KeyID,
			VerifyKeys:    cfg.Token.VerifyKeys,
		})
		if err != nil {
			return nil, err
		}
		tokens = tm
	} else if err := cfg.validateWithoutKeys(); err != nil {
		return nil, err
	}

	store := b.refreshStore
	if store == nil {
		store = refresh.NewStore(b.redis, cfg.Refresh.RedisPrefix)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := &Engine{
		config:       cfg,
		tokens:       tokens,
		refreshStore: store,
		logger:       logger,
		newSessionID: newSessionID,
		newAck:       newAck,
	}
	if b.redis != nil {
		engine.rateLimiter = rate.New(b.redis, rate.Config{
			EnableRotationThrottle: cfg.Security.EnableRotationThrottle,
			MaxRotations:           cfg.Security.MaxRotations,
			RotationWindow:         cfg.Security.RotationWindow,
		})
	}
	if cfg.Audit.Enabled {
		engine.audit = audit.Start(b.auditSink, audit.Options{
			Buffer:     cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
			OnDrop:     engine.auditDropped,
		})
	}
	engine.metrics = NewMetrics(cfg.Metrics)
	engine.initFlowDeps()

	b.built = true

	return engine, nil
}

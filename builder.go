package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/cobaltadmin/authcore/upstream"
)

// Builder assembles an Authenticator. Configure it during initialization;
// a Builder is single-use and not safe for concurrent use.
type Builder struct {
	config Config
	issuer upstream.TokenIssuer
	log    zerolog.Logger
	clock  func() time.Time

	onLogout func(ctx context.Context, reason string)

	built bool
}

// New starts a Builder with defaults: silent logger, wall clock, metrics
// enabled.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		log:    zerolog.Nop(),
		clock:  time.Now,
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithIssuer sets the identity backend client. Required.
func (b *Builder) WithIssuer(issuer upstream.TokenIssuer) *Builder {
	b.issuer = issuer
	return b
}

// WithLogger attaches a structured logger.
func (b *Builder) WithLogger(log zerolog.Logger) *Builder {
	b.log = log
	return b
}

// WithClock overrides the time source. Tests use this to pin expiry
// judgments.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

// WithMetricsEnabled toggles counter recording.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// OnLogout registers a hook fired whenever a session ends, whether by
// explicit Logout or a terminally failed refresh. The reason is one of
// "logout" or "refresh_rejected".
func (b *Builder) OnLogout(fn func(ctx context.Context, reason string)) *Builder {
	b.onLogout = fn
	return b
}

// Build validates the configuration and assembles the Authenticator.
func (b *Builder) Build() (*Authenticator, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.issuer == nil {
		return nil, errors.New("token issuer required")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.clock == nil {
		b.clock = time.Now
	}

	a := &Authenticator{
		config:   cfg,
		issuer:   b.issuer,
		log:      b.log,
		clock:    b.clock,
		metrics:  NewMetrics(cfg.Metrics),
		onLogout: b.onLogout,
	}

	b.built = true
	return a, nil
}

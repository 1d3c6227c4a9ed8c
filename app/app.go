package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonwraymond/agentguard/audit"
	"github.com/jonwraymond/agentguard/auth"
	"github.com/jonwraymond/agentguard/config"
	"github.com/jonwraymond/agentguard/health"
	"github.com/jonwraymond/agentguard/observe"
	"github.com/jonwraymond/agentguard/secret"
	"github.com/jonwraymond/agentguard/token"
)

// DefaultCloseTimeout bounds Close when ctx carries no deadline.
const DefaultCloseTimeout = 5 * time.Second

// Option customizes New.
type Option func(*options)

type options struct {
	props    *secret.Properties
	observer observe.Observer
	sinks    []audit.Sink
}

// WithProperties uses props as the property store instead of
// secret.DefaultProperties.
func WithProperties(props *secret.Properties) Option {
	return func(o *options) { o.props = props }
}

// WithObserver uses obs instead of building one from the observe section.
// The caller keeps ownership: Close does not shut obs down.
func WithObserver(obs observe.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithAuditSink adds a sink that receives every admission decision.
func WithAuditSink(s audit.Sink) Option {
	return func(o *options) { o.sinks = append(o.sinks, s) }
}

// App holds the assembled components.
type App struct {
	cfg       config.Config
	props     *secret.Properties
	codec     *token.Codec
	observer  observe.Observer
	ownsObs   bool
	logger    observe.Logger
	validator *auth.Validator
	gate      *auth.Gate
	resources *auth.ResourceTable
	trail     *audit.MemorySink
	async     *audit.AsyncSink
	health    *health.Aggregator

	closeOnce sync.Once
	closeErr  error
}

// New validates cfg and builds an App from it.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{cfg: cfg, props: o.props}
	if a.props == nil {
		a.props = secret.DefaultProperties
	}
	if err := a.loadProperties(); err != nil {
		return nil, err
	}
	a.codec = token.NewCodec(token.ResolvedKey(secret.NewDefaultResolver(a.props), cfg.Secret.Refs...))

	a.observer = o.observer
	if a.observer == nil {
		obs, err := observe.NewObserver(ctx, cfg.Observe.ObserverConfig())
		if err != nil {
			return nil, fmt.Errorf("app: observer: %w", err)
		}
		a.observer, a.ownsObs = obs, true
	}
	a.logger = a.observer.Logger()

	inst, err := observe.InstrumenterFromObserver(a.observer, nil)
	if err != nil {
		return nil, a.abort(ctx, fmt.Errorf("app: instrumenter: %w", err))
	}
	policy, err := cfg.Cache.CachePolicy()
	if err != nil {
		return nil, a.abort(ctx, err)
	}
	a.validator, err = auth.NewValidator(a.codec,
		auth.WithCachePolicy(policy),
		auth.WithCacheKeyer(cfg.Cache.Keyer()),
		auth.WithLogger(a.logger),
		auth.WithInstrumenter(inst),
		auth.WithAnonymousAccess(cfg.Authz.AllowAnonymous),
	)
	if err != nil {
		return nil, a.abort(ctx, fmt.Errorf("app: validator: %w", err))
	}

	a.resources, err = cfg.Authz.ResourceTable()
	if err != nil {
		return nil, a.abort(ctx, err)
	}

	sink, err := a.auditSink(o.sinks)
	if err != nil {
		return nil, a.abort(ctx, err)
	}
	a.gate = auth.NewGate(a.validator, sink)

	a.health = health.NewAggregator()
	a.health.Register("signing_key", health.NewSigningKeyChecker(a.codec))
	a.health.Register("decode_cache", health.NewCacheChecker(a.validator, health.CacheCheckerConfig{}))
	if a.async != nil {
		a.health.Register("audit", health.NewAuditChecker(a.async))
	}

	a.logger.Info(ctx, "agentguard ready",
		observe.F("cache_entries", policy.MaxEntries),
		observe.F("eviction", string(policy.Eviction)),
		observe.F("anonymous_access", cfg.Authz.AllowAnonymous),
		observe.F("resource_rules", a.resources.Len()),
		observe.F("audit_async", a.async != nil),
	)
	return a, nil
}

func (a *App) loadProperties() error {
	if f := a.cfg.Secret.PropertiesFile; f != "" {
		if err := a.props.LoadFile(f); err != nil {
			return fmt.Errorf("app: %w", err)
		}
	}
	if f := a.cfg.Secret.DotenvFile; f != "" {
		if err := a.props.LoadDotenv(f); err != nil {
			return fmt.Errorf("app: %w", err)
		}
	}
	return nil
}

func (a *App) auditSink(extra []audit.Sink) (audit.Sink, error) {
	sinks := append([]audit.Sink(nil), extra...)
	if a.cfg.Audit.Memory {
		a.trail = audit.NewMemorySink()
		sinks = append(sinks, a.trail)
	}
	if a.cfg.Audit.Log {
		sinks = append(sinks, audit.NewLogSink(a.logger))
	}
	sink := audit.Multi(sinks...)

	if !a.cfg.Audit.Async {
		return sink, nil
	}
	a.async = audit.NewAsyncSink(sink, a.logger, a.cfg.Audit.AsyncConfig())
	if err := a.async.Start(); err != nil {
		return nil, fmt.Errorf("app: audit: %w", err)
	}
	return a.async, nil
}

// abort releases what New built before failing with err.
func (a *App) abort(ctx context.Context, err error) error {
	if a.ownsObs {
		_ = a.observer.Shutdown(ctx)
	}
	return err
}

// Config returns the configuration the App was built from.
func (a *App) Config() config.Config { return a.cfg }

// Properties returns the property store the signing secret may come from.
func (a *App) Properties() *secret.Properties { return a.props }

// Codec returns the token codec.
func (a *App) Codec() *token.Codec { return a.codec }

// Logger returns the structured logger.
func (a *App) Logger() observe.Logger { return a.logger }

// Validator returns the validator.
func (a *App) Validator() *auth.Validator { return a.validator }

// Gate returns the admission gate.
func (a *App) Gate() *auth.Gate { return a.gate }

// Resources returns the configured resource table.
func (a *App) Resources() *auth.ResourceTable { return a.resources }

// AuditTrail returns the in-process audit trail, or nil when
// audit.memory is off.
func (a *App) AuditTrail() *audit.MemorySink { return a.trail }

// Health returns the health aggregator.
func (a *App) Health() *health.Aggregator { return a.health }

// Close stops the audit workers, waiting for queued entries, and shuts
// down telemetry the App created. It is safe to call more than once.
func (a *App) Close(ctx context.Context) error {
	a.closeOnce.Do(func() {
		timeout := DefaultCloseTimeout
		if dl, ok := ctx.Deadline(); ok {
			timeout = time.Until(dl)
		}

		var errs []error
		if a.async != nil {
			if err := a.async.Stop(timeout); err != nil {
				errs = append(errs, fmt.Errorf("audit: %w", err))
			}
		}
		if a.ownsObs {
			if err := a.observer.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("observer: %w", err))
			}
		}
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}

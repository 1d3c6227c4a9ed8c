package config

import (
	"fmt"
	"time"

	"github.com/jonwraymond/agentguard/audit"
	"github.com/jonwraymond/agentguard/auth"
	"github.com/jonwraymond/agentguard/cache"
	"github.com/jonwraymond/agentguard/observe"
	"github.com/jonwraymond/agentguard/token"
)

// Config is the complete agentguard configuration.
type Config struct {
	Secret  SecretConfig  `yaml:"secret"`
	Cache   CacheConfig   `yaml:"cache"`
	Authz   AuthzConfig   `yaml:"authz"`
	Audit   AuditConfig   `yaml:"audit"`
	Observe ObserveConfig `yaml:"observe"`
	Server  ServerConfig  `yaml:"server"`
}

// SecretConfig locates the signing secret.
type SecretConfig struct {
	// Refs are tried in order; the first non-blank value wins.
	Refs []string `yaml:"refs" validate:"dive,startswith=secretref:"`

	// PropertiesFile is a YAML or .properties-style file loaded into the
	// process property store.
	PropertiesFile string `yaml:"properties_file" validate:"omitempty,file"`

	// DotenvFile is a .env file loaded into the process property store.
	DotenvFile string `yaml:"dotenv_file" validate:"omitempty,file"`
}

// CacheConfig configures the decode cache.
type CacheConfig struct {
	MaxEntries int           `yaml:"max_entries" validate:"gte=0"`
	Eviction   string        `yaml:"eviction" validate:"omitempty,oneof=lru fifo"`
	TTL        time.Duration `yaml:"ttl" validate:"gte=0s"`

	// DigestKeys keys the cache by SHA-256 of the token instead of the
	// token itself.
	DigestKeys bool `yaml:"digest_keys"`
}

// Rule lists the roles and permissions a resource requires, by name.
type Rule struct {
	Roles       []string `yaml:"roles"`
	Permissions []string `yaml:"permissions"`
}

// AuthzConfig configures authorization.
type AuthzConfig struct {
	// AllowAnonymous permits requests that carry no security context.
	AllowAnonymous bool `yaml:"allow_anonymous"`

	// Resources maps exact paths and "prefix*" patterns to rules.
	Resources map[string]Rule `yaml:"resources"`

	// Fallback applies to resources matching no pattern.
	Fallback Rule `yaml:"fallback"`
}

// AuditConfig configures audit delivery.
type AuditConfig struct {
	// Async delivers entries from a worker pool instead of inline.
	Async         bool          `yaml:"async"`
	BufferSize    int           `yaml:"buffer_size" validate:"gte=0"`
	Workers       int           `yaml:"workers" validate:"gte=0,lte=64"`
	RecordTimeout time.Duration `yaml:"record_timeout" validate:"gte=0s"`

	// Log writes every entry through the structured logger.
	Log bool `yaml:"log"`

	// Memory keeps entries in process for reporting.
	Memory bool `yaml:"memory"`
}

// ObserveConfig configures telemetry.
type ObserveConfig struct {
	ServiceName string `yaml:"service_name" validate:"required"`
	Version     string `yaml:"version"`
	Tracing     struct {
		Enabled   bool    `yaml:"enabled"`
		Exporter  string  `yaml:"exporter" validate:"omitempty,oneof=otlp stdout none"`
		SamplePct float64 `yaml:"sample_pct" validate:"gte=0,lte=1"`
	} `yaml:"tracing"`
	Metrics struct {
		Enabled  bool   `yaml:"enabled"`
		Exporter string `yaml:"exporter" validate:"omitempty,oneof=otlp prometheus stdout none"`
	} `yaml:"metrics"`
	Logging struct {
		Enabled bool   `yaml:"enabled"`
		Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
		Format  string `yaml:"format" validate:"omitempty,oneof=json console"`
	} `yaml:"logging"`
}

// ServerConfig configures the HTTP server of the serve command.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required,hostname_port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gte=0s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gte=0s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0s"`
}

// Default returns the default configuration.
func Default() Config {
	c := Config{
		Secret: SecretConfig{
			Refs: append([]string(nil), token.DefaultRefs...),
		},
		Cache: CacheConfig{
			MaxEntries: cache.DefaultMaxEntries,
			Eviction:   string(cache.EvictLRU),
		},
		Authz: AuthzConfig{
			AllowAnonymous: true,
		},
		Audit: AuditConfig{
			Async:         true,
			BufferSize:    audit.DefaultBufferSize,
			Workers:       audit.DefaultWorkers,
			RecordTimeout: audit.DefaultRecordTimeout,
			Log:           true,
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
	c.Observe.ServiceName = "agentguard"
	c.Observe.Tracing.Exporter = "none"
	c.Observe.Metrics.Exporter = "none"
	c.Observe.Logging.Enabled = true
	c.Observe.Logging.Level = "info"
	c.Observe.Logging.Format = "json"
	return c
}

// CachePolicy converts the cache section to a cache.Policy.
func (c CacheConfig) CachePolicy() (cache.Policy, error) {
	ev, err := cache.ParseEviction(c.Eviction)
	if err != nil {
		return cache.Policy{}, err
	}
	p := cache.Policy{MaxEntries: c.MaxEntries, Eviction: ev, TTL: c.TTL}
	return p, p.Validate()
}

// Keyer returns the cache key function selected by DigestKeys.
func (c CacheConfig) Keyer() cache.Keyer {
	return cache.KeyerFor(c.DigestKeys)
}

// Requirements converts r, rejecting names outside the vocabulary.
func (r Rule) Requirements() (auth.Requirements, error) {
	return auth.ParseRequirements(r.Roles, r.Permissions)
}

// ResourceTable builds the resource table described by the authz section.
func (a AuthzConfig) ResourceTable() (*auth.ResourceTable, error) {
	rules := make(map[string]auth.Requirements, len(a.Resources))
	for pattern, rule := range a.Resources {
		req, err := rule.Requirements()
		if err != nil {
			return nil, fmt.Errorf("resource %q: %w", pattern, err)
		}
		rules[pattern] = req
	}
	fallback, err := a.Fallback.Requirements()
	if err != nil {
		return nil, fmt.Errorf("fallback: %w", err)
	}
	return auth.NewResourceTable(rules, fallback), nil
}

// AsyncConfig converts the audit section to an audit.AsyncConfig.
func (a AuditConfig) AsyncConfig() audit.AsyncConfig {
	return audit.AsyncConfig{
		BufferSize:    a.BufferSize,
		Workers:       a.Workers,
		RecordTimeout: a.RecordTimeout,
	}
}

// ObserverConfig converts the observe section to an observe.Config.
func (o ObserveConfig) ObserverConfig() observe.Config {
	return observe.Config{
		ServiceName: o.ServiceName,
		Version:     o.Version,
		Tracing: observe.TracingConfig{
			Enabled:   o.Tracing.Enabled,
			Exporter:  o.Tracing.Exporter,
			SamplePct: o.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  o.Metrics.Enabled,
			Exporter: o.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: o.Logging.Enabled,
			Level:   o.Logging.Level,
			Format:  o.Logging.Format,
		},
	}
}

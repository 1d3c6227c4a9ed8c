package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "AGENTGUARD_"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Load reads the YAML file at path over Default, loads dotenv files into
// the process environment, applies AGENTGUARD_* overrides and validates
// the result. An empty path skips the file. Missing dotenv files are
// ignored; variables already set in the environment are not replaced.
func Load(path string, dotenv ...string) (*Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := decodeYAML(data, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	for _, f := range dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Parse decodes YAML over Default and validates the result without
// consulting the environment.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := decodeYAML(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func decodeYAML(data []byte, c *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from AGENTGUARD_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	e := envReader{lookup: lookup}

	if v, ok := e.str("SECRET_REFS"); ok {
		c.Secret.Refs = splitList(v)
	}
	e.setStr("SECRET_PROPERTIES_FILE", &c.Secret.PropertiesFile)
	e.setStr("SECRET_DOTENV_FILE", &c.Secret.DotenvFile)

	e.setInt("CACHE_MAX_ENTRIES", &c.Cache.MaxEntries)
	e.setStr("CACHE_EVICTION", &c.Cache.Eviction)
	e.setDuration("CACHE_TTL", &c.Cache.TTL)
	e.setBool("CACHE_DIGEST_KEYS", &c.Cache.DigestKeys)

	e.setBool("AUTHZ_ALLOW_ANONYMOUS", &c.Authz.AllowAnonymous)

	e.setBool("AUDIT_ASYNC", &c.Audit.Async)
	e.setInt("AUDIT_BUFFER_SIZE", &c.Audit.BufferSize)
	e.setInt("AUDIT_WORKERS", &c.Audit.Workers)
	e.setDuration("AUDIT_RECORD_TIMEOUT", &c.Audit.RecordTimeout)
	e.setBool("AUDIT_LOG", &c.Audit.Log)
	e.setBool("AUDIT_MEMORY", &c.Audit.Memory)

	e.setStr("SERVICE_NAME", &c.Observe.ServiceName)
	e.setStr("LOG_LEVEL", &c.Observe.Logging.Level)
	e.setStr("LOG_FORMAT", &c.Observe.Logging.Format)
	e.setBool("TRACING_ENABLED", &c.Observe.Tracing.Enabled)
	e.setStr("TRACING_EXPORTER", &c.Observe.Tracing.Exporter)
	e.setBool("METRICS_ENABLED", &c.Observe.Metrics.Enabled)
	e.setStr("METRICS_EXPORTER", &c.Observe.Metrics.Exporter)

	e.setStr("SERVER_ADDR", &c.Server.Addr)

	return errors.Join(e.errs...)
}

// Validate checks struct tags, then the vocabulary and policy names.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := c.Cache.CachePolicy(); err != nil {
		return fmt.Errorf("%w: cache: %w", ErrInvalid, err)
	}
	for pattern := range c.Authz.Resources {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("%w: authz: blank resource pattern", ErrInvalid)
		}
	}
	if _, err := c.Authz.ResourceTable(); err != nil {
		return fmt.Errorf("%w: authz: %w", ErrInvalid, err)
	}
	oc := c.Observe.ObserverConfig()
	if err := oc.Validate(); err != nil {
		return fmt.Errorf("%w: observe: %w", ErrInvalid, err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) str(name string) (string, bool) {
	v, ok := e.lookup(EnvPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *envReader) setStr(name string, dst *string) {
	if v, ok := e.str(name); ok {
		*dst = v
	}
}

func (e *envReader) setInt(name string, dst *int) {
	v, ok := e.str(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err))
		return
	}
	*dst = n
}

func (e *envReader) setBool(name string, dst *bool) {
	v, ok := e.str(name)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err))
		return
	}
	*dst = b
}

func (e *envReader) setDuration(name string, dst *time.Duration) {
	v, ok := e.str(name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err))
		return
	}
	*dst = d
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package observe

import (
	"context"
	"errors"
	"testing"

	"github.com/jonwraymond/agentguard/observe/exporters"
)

func validConfig() Config {
	return Config{
		ServiceName: "agentguard-test",
		Version:     "1.0.0",
		Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.0},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "none"},
		Logging:     LoggingConfig{Enabled: true, Level: "info", Format: "json"},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing service", mutate: func(c *Config) { c.ServiceName = "" }, want: ErrMissingServiceName},
		{name: "jaeger removed", mutate: func(c *Config) { c.Tracing.Exporter = "jaeger" }, want: ErrInvalidTracingExporter},
		{name: "sample too high", mutate: func(c *Config) { c.Tracing.SamplePct = 1.5 }, want: ErrInvalidSamplePct},
		{name: "sample negative", mutate: func(c *Config) { c.Tracing.SamplePct = -0.1 }, want: ErrInvalidSamplePct},
		{name: "bad metrics exporter", mutate: func(c *Config) { c.Metrics.Exporter = "statsd" }, want: ErrInvalidMetricsExporter},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "trace" }, want: ErrInvalidLogLevel},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, want: ErrInvalidLogFormat},
		{name: "disabled sections unchecked", mutate: func(c *Config) {
			c.Tracing = TracingConfig{Exporter: "bogus", SamplePct: 9}
			c.Metrics = MetricsConfig{Exporter: "bogus"}
			c.Logging = LoggingConfig{Level: "bogus"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewObserver_Enabled(t *testing.T) {
	obs, err := NewObserver(context.Background(), validConfig())
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	if obs.Tracer() == nil || obs.Meter() == nil || obs.Logger() == nil {
		t.Fatal("observer components must be non-nil")
	}
	if err := obs.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestNewObserver_InvalidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.ServiceName = ""
	if _, err := NewObserver(context.Background(), cfg); !errors.Is(err, ErrMissingServiceName) {
		t.Fatalf("NewObserver() error = %v, want ErrMissingServiceName", err)
	}
}

func TestNewObserver_ExporterFailure(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")

	cfg := validConfig()
	cfg.Tracing.Exporter = "otlp"
	if _, err := NewObserver(context.Background(), cfg); !errors.Is(err, ErrEndpointNotConfigured) {
		t.Fatalf("NewObserver() error = %v, want ErrEndpointNotConfigured", err)
	}
	if ErrEndpointNotConfigured != exporters.ErrEndpointNotConfigured {
		t.Fatal("observe and exporters must share the endpoint sentinel")
	}
}

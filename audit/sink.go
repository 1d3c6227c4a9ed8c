package audit

import (
	"context"
	"errors"

	"github.com/jonwraymond/agentguard/observe"
)

// Sink receives audit entries.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: a returned error means the entry was not recorded.
type Sink interface {
	Record(ctx context.Context, e Entry) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, e Entry) error

// Record calls f.
func (f SinkFunc) Record(ctx context.Context, e Entry) error { return f(ctx, e) }

// Discard drops every entry.
var Discard Sink = SinkFunc(func(context.Context, Entry) error { return nil })

// Multi returns a Sink that records to every sink in order.
// All sinks are attempted; their errors are joined.
func Multi(sinks ...Sink) Sink {
	cp := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			cp = append(cp, s)
		}
	}
	return multiSink(cp)
}

type multiSink []Sink

func (m multiSink) Record(ctx context.Context, e Entry) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes entries as structured log lines.
// Granted access logs at info, failures at warn.
type LogSink struct {
	logger observe.Logger
}

// NewLogSink creates a LogSink. A nil logger discards output.
func NewLogSink(logger observe.Logger) *LogSink {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &LogSink{logger: logger}
}

// Record logs e.
func (s *LogSink) Record(ctx context.Context, e Entry) error {
	fields := []observe.Field{
		observe.F("audit_id", e.ID.String()),
		observe.F("action", string(e.Action)),
		observe.F("user_id", e.UserID),
		observe.F("domain", e.Domain),
		observe.F("success", e.Success),
	}
	if e.Resource != "" {
		fields = append(fields, observe.F("resource", e.Resource))
	}
	if e.Details != "" {
		fields = append(fields, observe.F("details", e.Details))
	}

	if e.Success {
		s.logger.Info(ctx, "audit", fields...)
	} else {
		s.logger.Warn(ctx, "audit", fields...)
	}
	return nil
}

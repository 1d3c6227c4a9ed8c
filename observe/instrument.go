package observe

import (
	"context"
	"time"
)

// OutcomeFunc maps an operation error to a short outcome label.
type OutcomeFunc func(err error) string

// DefaultOutcome labels any error "error".
func DefaultOutcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	return "error"
}

// Instrumenter wraps operations with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Context: the span context is propagated to the wrapped function.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Instrumenter struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
	outcome OutcomeFunc
}

// NewInstrumenter creates an Instrumenter. Nil components are replaced with
// no-ops and a nil outcome with DefaultOutcome.
func NewInstrumenter(tracer Tracer, metrics Metrics, logger Logger, outcome OutcomeFunc) *Instrumenter {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	if outcome == nil {
		outcome = DefaultOutcome
	}
	return &Instrumenter{tracer: tracer, metrics: metrics, logger: logger, outcome: outcome}
}

// InstrumenterFromObserver creates an Instrumenter from an Observer.
func InstrumenterFromObserver(obs Observer, outcome OutcomeFunc) (*Instrumenter, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewInstrumenter(NewTracer(obs.Tracer()), metrics, obs.Logger(), outcome), nil
}

// NopInstrumenter returns an Instrumenter that records nothing.
func NopInstrumenter() *Instrumenter {
	return NewInstrumenter(nil, nil, nil, nil)
}

// WithOutcome returns a copy of i that labels errors with fn.
func (i *Instrumenter) WithOutcome(fn OutcomeFunc) *Instrumenter {
	cp := *i
	if fn != nil {
		cp.outcome = fn
	}
	return &cp
}

// Logger returns the instrumenter's logger.
func (i *Instrumenter) Logger() Logger { return i.logger }

// Run executes fn inside a span for op and records its metrics.
func (i *Instrumenter) Run(ctx context.Context, op Op, fn func(ctx context.Context) error) error {
	ctx, span := i.tracer.StartSpan(ctx, op)
	start := time.Now()

	err := fn(ctx)

	duration := time.Since(start)
	outcome := OutcomeOK
	if err != nil {
		outcome = i.outcome(err)
	}
	i.tracer.EndSpan(span, err)
	i.metrics.RecordOperation(ctx, op, duration, outcome)

	fields := []Field{
		F("op", op.Name),
		F("outcome", outcome),
		F("duration_ms", float64(duration)/float64(time.Millisecond)),
	}
	if err != nil {
		fields = append(fields, F("error", err))
	}
	i.logger.Debug(ctx, "operation finished", fields...)

	return err
}

// CacheLookup records a decode cache hit or miss.
func (i *Instrumenter) CacheLookup(ctx context.Context, hit bool) {
	i.metrics.RecordCacheLookup(ctx, hit)
}

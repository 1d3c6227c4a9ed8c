package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// DefaultComponent prefixes span names when Op.Component is empty.
const DefaultComponent = "auth"

// Op describes an instrumented operation.
type Op struct {
	Name      string // required, e.g. "authenticate"
	Component string // span prefix; defaults to DefaultComponent
	Domain    string // request domain (optional)
}

// SpanName returns the deterministic span name for this operation.
// Format: <component>.<name>
func (o Op) SpanName() string {
	c := o.Component
	if c == "" {
		c = DefaultComponent
	}
	return c + "." + o.Name
}

// Validate reports ErrMissingOpName when Name is empty.
func (o Op) Validate() error {
	if o.Name == "" {
		return ErrMissingOpName
	}
	return nil
}

func (o Op) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("op.name", o.Name),
	}
	if o.Domain != "" {
		attrs = append(attrs, attribute.String("op.domain", o.Domain))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with operation span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for op.
	StartSpan(ctx context.Context, op Op) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		return newNoopTracer()
	}
	return &tracerImpl{tracer: t}
}

// StartSpan starts an internal span with operation attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, op Op) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, op.SpanName(),
		trace.WithAttributes(append(op.attributes(), attribute.Bool("op.error", false))...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("op.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *noopTracer) StartSpan(ctx context.Context, op Op) (context.Context, trace.Span) {
	return t.noop.Start(ctx, op.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, _ error) {
	span.End()
}

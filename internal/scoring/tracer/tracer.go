// Package tracer wraps OpenTelemetry spans around scoring work and oracle
// calls.
package tracer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const instrumentation = "ria/scoring"

const (
	SpanAssess  = "scoring.assess"
	SpanEnhance = "scoring.enhance"
	SpanInsight = "scoring.insight"
	SpanOracle  = "scoring.oracle.call"
)

const (
	AttrPurpose   attribute.Key = "scoring.purpose"
	AttrOperation attribute.Key = "scoring.operation"
	AttrScore     attribute.Key = "scoring.score"
	AttrShared    attribute.Key = "scoring.shared"
	AttrLatency   attribute.Key = "scoring.latency_ms"
)

// Latency records d in whole milliseconds.
func Latency(d time.Duration) attribute.KeyValue {
	return AttrLatency.Int64(d.Milliseconds())
}

// Tracer is safe for concurrent use.
type Tracer struct {
	tracer trace.Tracer
}

// New traces through the globally registered provider.
func New() *Tracer {
	return NewWithProvider(otel.GetTracerProvider())
}

func NewWithProvider(tp trace.TracerProvider) *Tracer {
	return &Tracer{tracer: tp.Tracer(instrumentation)}
}

func NewNoop() *Tracer {
	return NewWithProvider(noop.NewTracerProvider())
}

func (t *Tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, Span{span: span}
}

// Span must be ended exactly once.
type Span struct {
	span trace.Span
}

func (s Span) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

// End marks the span failed when err is non-nil.
func (s Span) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
}

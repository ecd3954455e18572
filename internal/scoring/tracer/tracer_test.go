package tracer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"ria/internal/scoring/tracer"
)

func TestStartPutsSpanInContext(t *testing.T) {
	tr := tracer.NewWithProvider(noop.NewTracerProvider())

	ctx, span := tr.Start(context.Background(), tracer.SpanAssess, tracer.AttrPurpose.String("risk"))
	assert.NotNil(t, trace.SpanFromContext(ctx))

	span.SetAttributes(tracer.AttrScore.Int(85), tracer.AttrShared.Bool(true))
	span.End(errors.New("oracle timeout"))
}

func TestNoopEndsWithoutError(t *testing.T) {
	_, span := tracer.NewNoop().Start(context.Background(), tracer.SpanOracle)
	span.End(nil)
}

func TestLatencyInMilliseconds(t *testing.T) {
	kv := tracer.Latency(1500 * time.Millisecond)
	assert.Equal(t, tracer.AttrLatency, kv.Key)
	assert.Equal(t, int64(1500), kv.Value.AsInt64())
}

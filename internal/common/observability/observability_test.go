package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestStartSpan_WithTracing(t *testing.T) {
	tracing, err := NewTracing("crime-case-workers-test", "")
	require.NoError(t, err)

	obs := New("crime-case-workers-test").WithTracing(tracing)
	defer obs.Shutdown()

	ctx, span := obs.StartSpan(context.Background(), "parse-voice-command", attribute.String("intent", "crime_search"))
	assert.True(t, span.SpanContext().IsValid())
	assert.NotNil(t, ctx)
	span.End()

	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(ctx, "success")
		obs.RecordJobDuration(ctx, 15*time.Millisecond, "success")
		obs.RecordCommand(ctx, "crime_search", false)
	})
}

func TestNilObservability(t *testing.T) {
	var obs *Observability
	assert.NotPanics(t, func() {
		_, span := obs.StartSpan(context.Background(), "noop")
		span.End()
		obs.RecordCommand(context.Background(), "unknown", true)
		obs.Shutdown()
	})
}

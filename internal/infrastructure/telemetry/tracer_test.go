package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vendaflow/backend/internal/infrastructure/config"
	"github.com/vendaflow/backend/internal/infrastructure/telemetry"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := config.TelemetryConfig{
		Enabled:       false,
		Endpoint:      "localhost:4317",
		SamplingRatio: 1.0,
		ServiceName:   "vendaflow-test",
	}

	tp, err := telemetry.NewTracerProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, tp)

	assert.False(t, tp.IsEnabled())

	// every lifecycle call stays a safe no-op
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestTracerProvider_DisabledTracerStillRecordsNothing(t *testing.T) {
	ctx := context.Background()
	tp, err := telemetry.NewTracerProvider(ctx, config.TelemetryConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	tracer := tp.Tracer("test")
	_, span := tracer.Start(ctx, "sync.run")
	assert.False(t, span.IsRecording())
	span.End()
}

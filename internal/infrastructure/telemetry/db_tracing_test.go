package telemetry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendaflow/backend/internal/infrastructure/config"
	"github.com/vendaflow/backend/internal/infrastructure/telemetry"
)

func newTracingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestRegisterDBTracing_Enabled(t *testing.T) {
	db := newTracingTestDB(t)

	err := telemetry.RegisterDBTracing(db, config.TelemetryConfig{Enabled: true}, zap.NewNop())

	require.NoError(t, err)
	_, registered := db.Config.Plugins["otelgorm"]
	assert.True(t, registered)
}

func TestRegisterDBTracing_DisabledSkipsPlugin(t *testing.T) {
	db := newTracingTestDB(t)

	err := telemetry.RegisterDBTracing(db, config.TelemetryConfig{Enabled: false}, zap.NewNop())

	require.NoError(t, err)
	_, registered := db.Config.Plugins["otelgorm"]
	assert.False(t, registered)
}

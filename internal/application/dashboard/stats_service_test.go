package dashboard

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vendaflow/backend/internal/domain/sales"
)

type stubStatsRepo struct {
	stats      *Stats
	channels   []ChannelSlice
	modalities []ModalitySlice
}

func (s *stubStatsRepo) Aggregate(_ context.Context, _ uuid.UUID, _ sales.Filter) (*Stats, error) {
	copied := *s.stats
	return &copied, nil
}

func (s *stubStatsRepo) ByChannel(_ context.Context, _ uuid.UUID, _ sales.Filter) ([]ChannelSlice, error) {
	return s.channels, nil
}

func (s *stubStatsRepo) ByModality(_ context.Context, _ uuid.UUID, _ sales.Filter) ([]ModalitySlice, error) {
	return s.modalities, nil
}

func TestStatsService_Overview(t *testing.T) {
	t.Run("derives net revenue and average ticket", func(t *testing.T) {
		repo := &stubStatsRepo{stats: &Stats{
			TotalSales:   3,
			TotalUnits:   5,
			GrossRevenue: decimal.NewFromFloat(269.70),
			PlatformFees: decimal.NewFromFloat(43.50),
			// stored freight is negative, net revenue subtracts its magnitude
			FreightTotal: decimal.NewFromFloat(-37.50),
		}}
		svc := NewStatsService(repo, zap.NewNop())

		stats, err := svc.Overview(context.Background(), uuid.New(), sales.Filter{})

		require.NoError(t, err)
		assert.Equal(t, "188.7", stats.NetRevenue.String())
		assert.Equal(t, "89.9", stats.AverageTicket.String())
	})

	t.Run("empty period has no average ticket", func(t *testing.T) {
		repo := &stubStatsRepo{stats: &Stats{}}
		svc := NewStatsService(repo, zap.NewNop())

		stats, err := svc.Overview(context.Background(), uuid.New(), sales.Filter{})

		require.NoError(t, err)
		assert.True(t, stats.AverageTicket.IsZero())
		assert.True(t, stats.NetRevenue.IsZero())
	})
}

func TestStatsService_Modalities(t *testing.T) {
	repo := &stubStatsRepo{modalities: []ModalitySlice{
		{Modality: "self_service", Count: 4},
		{Modality: "xd_drop_off", Count: 2},
		{Modality: "cross_docking", Count: 1},
	}}
	svc := NewStatsService(repo, zap.NewNop())

	slices, err := svc.Modalities(context.Background(), uuid.New(), sales.Filter{})

	require.NoError(t, err)
	require.Len(t, slices, 3)
	assert.Equal(t, "FLEX", slices[0].Modality)
	assert.Equal(t, "Agência", slices[1].Modality)
	assert.Equal(t, "Coleta", slices[2].Modality)
}

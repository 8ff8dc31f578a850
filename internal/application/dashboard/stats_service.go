package dashboard

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vendaflow/backend/internal/domain/sales"
)

// Stats is the aggregated dashboard snapshot for one filter selection
type Stats struct {
	TotalSales    int64           `json:"total_sales"`
	TotalUnits    int64           `json:"total_units"`
	GrossRevenue  decimal.Decimal `json:"gross_revenue"`
	PlatformFees  decimal.Decimal `json:"platform_fees"`
	FreightTotal  decimal.Decimal `json:"freight_total"`
	NetRevenue    decimal.Decimal `json:"net_revenue"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

// ChannelSlice is one channel's share of the filtered period
type ChannelSlice struct {
	Channel string          `json:"channel"`
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ModalitySlice is one shipping modality's share of the filtered period
type ModalitySlice struct {
	Modality string          `json:"modality"`
	Count    int64           `json:"count"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// StatsRepository is the read model behind the dashboard
type StatsRepository interface {
	Aggregate(ctx context.Context, userID uuid.UUID, filter sales.Filter) (*Stats, error)
	ByChannel(ctx context.Context, userID uuid.UUID, filter sales.Filter) ([]ChannelSlice, error)
	ByModality(ctx context.Context, userID uuid.UUID, filter sales.Filter) ([]ModalitySlice, error)
}

// StatsService serves the dashboard aggregations
type StatsService struct {
	repo   StatsRepository
	logger *zap.Logger
}

// NewStatsService creates a stats service
func NewStatsService(repo StatsRepository, logger *zap.Logger) *StatsService {
	return &StatsService{repo: repo, logger: logger}
}

// Overview computes the headline numbers for the filter selection
func (s *StatsService) Overview(ctx context.Context, userID uuid.UUID, filter sales.Filter) (*Stats, error) {
	stats, err := s.repo.Aggregate(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	stats.NetRevenue = stats.GrossRevenue.Sub(stats.PlatformFees.Abs()).Sub(stats.FreightTotal.Abs())
	if stats.TotalSales > 0 {
		stats.AverageTicket = stats.GrossRevenue.Div(decimal.NewFromInt(stats.TotalSales)).Round(2)
	}
	return stats, nil
}

// Channels breaks the selection down per marketplace
func (s *StatsService) Channels(ctx context.Context, userID uuid.UUID, filter sales.Filter) ([]ChannelSlice, error) {
	return s.repo.ByChannel(ctx, userID, filter)
}

// Modalities breaks the selection down per shipping modality, using the
// localized display names.
func (s *StatsService) Modalities(ctx context.Context, userID uuid.UUID, filter sales.Filter) ([]ModalitySlice, error) {
	slices, err := s.repo.ByModality(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	for i := range slices {
		slices[i].Modality = sales.ConvertLogisticTypeName(slices[i].Modality)
	}
	return slices, nil
}

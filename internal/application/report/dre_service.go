package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vendaflow/backend/internal/domain/sales"
)

// MonthlyRow is one month of the income statement series
type MonthlyRow struct {
	Month        string          `json:"month"` // "2025-01"
	GrossRevenue decimal.Decimal `json:"gross_revenue"`
	PlatformFees decimal.Decimal `json:"platform_fees"`
	Freight      decimal.Decimal `json:"freight"`
	Discounts    decimal.Decimal `json:"discounts"`
	NetResult    decimal.Decimal `json:"net_result"`
}

// SeriesRepository is the read model behind the income statement
type SeriesRepository interface {
	MonthlySeries(ctx context.Context, userID uuid.UUID, filter sales.Filter) ([]MonthlyRow, error)
}

// DREService builds the monthly income statement ("DRE") series
type DREService struct {
	repo   SeriesRepository
	logger *zap.Logger
}

// NewDREService creates a DRE service
func NewDREService(repo SeriesRepository, logger *zap.Logger) *DREService {
	return &DREService{repo: repo, logger: logger}
}

// Series returns one row per month in the filtered window, oldest first,
// with months that have no sales filled in as zero rows so charts render a
// continuous axis.
func (s *DREService) Series(ctx context.Context, userID uuid.UUID, filter sales.Filter) ([]MonthlyRow, error) {
	rows, err := s.repo.MonthlySeries(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		r := &rows[i]
		r.NetResult = r.GrossRevenue.
			Sub(r.PlatformFees.Abs()).
			Sub(r.Freight.Abs()).
			Sub(r.Discounts.Abs())
	}

	if filter.From != nil && filter.To != nil {
		rows = fillMissingMonths(rows, *filter.From, *filter.To)
	}
	return rows, nil
}

func fillMissingMonths(rows []MonthlyRow, from, to time.Time) []MonthlyRow {
	byMonth := make(map[string]MonthlyRow, len(rows))
	for _, r := range rows {
		byMonth[r.Month] = r
	}

	var out []MonthlyRow
	cursor := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(end) {
		key := cursor.Format("2006-01")
		if r, ok := byMonth[key]; ok {
			out = append(out, r)
		} else {
			out = append(out, MonthlyRow{Month: key})
		}
		cursor = cursor.AddDate(0, 1, 0)
	}
	return out
}

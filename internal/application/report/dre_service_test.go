package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vendaflow/backend/internal/domain/sales"
)

type stubSeriesRepo struct {
	rows []MonthlyRow
	err  error
}

func (s *stubSeriesRepo) MonthlySeries(_ context.Context, _ uuid.UUID, _ sales.Filter) ([]MonthlyRow, error) {
	return s.rows, s.err
}

func datePtr(t time.Time) *time.Time { return &t }

func TestDREService_Series(t *testing.T) {
	t.Run("computes the net result per month", func(t *testing.T) {
		repo := &stubSeriesRepo{rows: []MonthlyRow{
			{
				Month:        "2026-07",
				GrossRevenue: decimal.NewFromFloat(1000),
				PlatformFees: decimal.NewFromFloat(140),
				Freight:      decimal.NewFromFloat(-85.50),
				Discounts:    decimal.NewFromFloat(20),
			},
		}}
		svc := NewDREService(repo, zap.NewNop())

		rows, err := svc.Series(context.Background(), uuid.New(), sales.Filter{})

		require.NoError(t, err)
		require.Len(t, rows, 1)
		// 1000 - 140 - 85.50 - 20, freight sign never double-counts
		assert.Equal(t, "754.5", rows[0].NetResult.String())
	})

	t.Run("zero-fills months without sales inside the window", func(t *testing.T) {
		repo := &stubSeriesRepo{rows: []MonthlyRow{
			{Month: "2026-05", GrossRevenue: decimal.NewFromFloat(300)},
			{Month: "2026-08", GrossRevenue: decimal.NewFromFloat(500)},
		}}
		svc := NewDREService(repo, zap.NewNop())

		filter := sales.Filter{
			From: datePtr(time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)),
			To:   datePtr(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)),
		}
		rows, err := svc.Series(context.Background(), uuid.New(), filter)

		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, "2026-05", rows[0].Month)
		assert.Equal(t, "2026-06", rows[1].Month)
		assert.True(t, rows[1].GrossRevenue.IsZero())
		assert.True(t, rows[2].NetResult.IsZero())
		assert.Equal(t, "2026-08", rows[3].Month)
		assert.Equal(t, "500", rows[3].GrossRevenue.String())
	})

	t.Run("leaves sparse rows alone without an explicit window", func(t *testing.T) {
		repo := &stubSeriesRepo{rows: []MonthlyRow{
			{Month: "2026-01"},
			{Month: "2026-06"},
		}}
		svc := NewDREService(repo, zap.NewNop())

		rows, err := svc.Series(context.Background(), uuid.New(), sales.Filter{})

		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})
}

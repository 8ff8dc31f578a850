package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaflow/backend/internal/application/dashboard"
	"github.com/vendaflow/backend/internal/application/report"
	"github.com/vendaflow/backend/internal/domain/sales"
	"github.com/vendaflow/backend/internal/infrastructure/persistence/models"
)

// GormSalesReportRepository implements the dashboard and income-statement
// read models with aggregate queries over the sales table.
type GormSalesReportRepository struct {
	db *gorm.DB
}

// NewGormSalesReportRepository creates a new GormSalesReportRepository
func NewGormSalesReportRepository(db *gorm.DB) *GormSalesReportRepository {
	return &GormSalesReportRepository{db: db}
}

func (r *GormSalesReportRepository) scoped(ctx context.Context, userID uuid.UUID, filter sales.Filter) *gorm.DB {
	return filter.Apply(
		r.db.WithContext(ctx).Model(&models.SaleModel{}).Where("user_id = ?", userID),
	)
}

// Aggregate computes the headline dashboard numbers for the filter
func (r *GormSalesReportRepository) Aggregate(ctx context.Context, userID uuid.UUID, filter sales.Filter) (*dashboard.Stats, error) {
	var stats dashboard.Stats
	err := r.scoped(ctx, userID, filter).
		Select(`COUNT(*) AS total_sales,
			COALESCE(SUM(quantity), 0) AS total_units,
			COALESCE(SUM(total_value), 0) AS gross_revenue,
			COALESCE(SUM(platform_fee), 0) AS platform_fees,
			COALESCE(SUM(freight), 0) AS freight_total`).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// ByChannel breaks the filtered selection down per marketplace
func (r *GormSalesReportRepository) ByChannel(ctx context.Context, userID uuid.UUID, filter sales.Filter) ([]dashboard.ChannelSlice, error) {
	var slices []dashboard.ChannelSlice
	err := r.scoped(ctx, userID, filter).
		Select(`platform_code AS channel,
			COUNT(*) AS count,
			COALESCE(SUM(total_value), 0) AS revenue`).
		Group("platform_code").
		Order("revenue DESC").
		Scan(&slices).Error
	if err != nil {
		return nil, err
	}
	return slices, nil
}

// ByModality breaks the filtered selection down per logistic type
func (r *GormSalesReportRepository) ByModality(ctx context.Context, userID uuid.UUID, filter sales.Filter) ([]dashboard.ModalitySlice, error) {
	var slices []dashboard.ModalitySlice
	err := r.scoped(ctx, userID, filter).
		Select(`logistic_type AS modality,
			COUNT(*) AS count,
			COALESCE(SUM(total_value), 0) AS revenue`).
		Group("logistic_type").
		Order("revenue DESC").
		Scan(&slices).Error
	if err != nil {
		return nil, err
	}
	return slices, nil
}

// MonthlySeries aggregates one income-statement row per month
func (r *GormSalesReportRepository) MonthlySeries(ctx context.Context, userID uuid.UUID, filter sales.Filter) ([]report.MonthlyRow, error) {
	var rows []report.MonthlyRow
	err := r.scoped(ctx, userID, filter).
		Select(`to_char(date_trunc('month', sale_date), 'YYYY-MM') AS month,
			COALESCE(SUM(total_value), 0) AS gross_revenue,
			COALESCE(SUM(platform_fee), 0) AS platform_fees,
			COALESCE(SUM(freight), 0) AS freight`).
		Group("date_trunc('month', sale_date)").
		Order("month").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vendaflow/backend/internal/domain/marketplace"
	"github.com/vendaflow/backend/internal/domain/sales"
	"github.com/vendaflow/backend/internal/domain/shared"
	"github.com/vendaflow/backend/internal/infrastructure/persistence/models"
)

// GormSaleRepository implements sales.Repository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// saleUpsertColumns are the columns refreshed when a synced order already
// exists. The freight column is handled separately: an order whose payload
// carried no usable cost keeps the previously stored freight.
var saleUpsertColumns = []string{
	"status", "title", "sku", "buyer", "listing_type", "logistic_type",
	"shipping_mode", "quantity", "unit_price", "total_value", "platform_fee",
	"raw_payload", "sale_date", "updated_at",
}

// Upsert creates or updates a sale keyed by (platform_code, order_id)
func (r *GormSaleRepository) Upsert(ctx context.Context, sale *sales.Sale) error {
	m := models.SaleFromDomain(sale)
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	columns := saleUpsertColumns
	if !sale.FreightSkipped {
		columns = append(append([]string{}, columns...), "freight", "freight_skipped")
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "platform_code"}, {Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(m).Error
}

// FindByOrderID finds a sale by its platform order id
func (r *GormSaleRepository) FindByOrderID(ctx context.Context, platform marketplace.PlatformCode, orderID string) (*sales.Sale, error) {
	var m models.SaleModel
	if err := r.db.WithContext(ctx).
		Where("platform_code = ? AND order_id = ?", platform.String(), orderID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAllForUser lists sales for a user with filter scopes and pagination
func (r *GormSaleRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter sales.Filter, page, pageSize int) ([]sales.Sale, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	query := filter.Apply(
		r.db.WithContext(ctx).Model(&models.SaleModel{}).Where("user_id = ?", userID),
	)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SaleModel
	if err := query.
		Order("sale_date DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]sales.Sale, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, total, nil
}

// CountForAccount counts persisted sales for one account
func (r *GormSaleRepository) CountForAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Where("account_id = ?", accountID).
		Count(&count).Error
	return count, err
}

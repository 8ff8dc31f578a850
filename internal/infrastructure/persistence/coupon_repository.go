package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaflow/backend/internal/domain/coupon"
	"github.com/vendaflow/backend/internal/domain/shared"
	"github.com/vendaflow/backend/internal/infrastructure/persistence/models"
)

// GormCouponRepository implements coupon.Repository using GORM
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new GormCouponRepository
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// FindByID finds a coupon by id
func (r *GormCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	var m models.CouponModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByIDForUser finds a coupon owned by the user
func (r *GormCouponRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*coupon.Coupon, error) {
	var m models.CouponModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByCodeForUser finds a coupon by its code within the user's coupons
func (r *GormCouponRepository) FindByCodeForUser(ctx context.Context, userID uuid.UUID, code string) (*coupon.Coupon, error) {
	var m models.CouponModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND code = ?", userID, strings.ToUpper(strings.TrimSpace(code))).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAllForUser lists the user's coupons, newest first
func (r *GormCouponRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]coupon.Coupon, error) {
	var rows []models.CouponModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]coupon.Coupon, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

// Save creates or updates a coupon
func (r *GormCouponRepository) Save(ctx context.Context, c *coupon.Coupon) error {
	return r.db.WithContext(ctx).Save(models.CouponFromDomain(c)).Error
}

// Delete removes a coupon
func (r *GormCouponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CouponModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

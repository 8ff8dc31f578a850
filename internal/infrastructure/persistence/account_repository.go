package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaflow/backend/internal/domain/marketplace"
	"github.com/vendaflow/backend/internal/domain/shared"
	"github.com/vendaflow/backend/internal/infrastructure/persistence/models"
)

// GormAccountRepository implements marketplace.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by id
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Account, error) {
	var m models.AccountModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByIDForUser finds an account owned by the user. The ownership check is
// part of the where clause, so a foreign account reads as not found.
func (r *GormAccountRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*marketplace.Account, error) {
	var m models.AccountModel
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

// FindAllForUser lists the user's accounts, newest first
func (r *GormAccountRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]marketplace.Account, error) {
	var rows []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainAccounts(rows), nil
}

// FindByIDsForUser lists the subset of ids owned by the user
func (r *GormAccountRepository) FindByIDsForUser(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]marketplace.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainAccounts(rows), nil
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *marketplace.Account) error {
	return r.db.WithContext(ctx).Save(models.AccountFromDomain(account)).Error
}

// Delete removes an account and its invalid mark has to be cleared by the caller
func (r *GormAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AccountModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toDomainAccounts(rows []models.AccountModel) []marketplace.Account {
	out := make([]marketplace.Account, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out
}

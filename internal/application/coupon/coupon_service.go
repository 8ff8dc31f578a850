package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vendaflow/backend/internal/domain/coupon"
	"github.com/vendaflow/backend/internal/domain/shared"
)

// CreateInput is the payload for creating a coupon
type CreateInput struct {
	Code      string
	Kind      coupon.DiscountKind
	Amount    decimal.Decimal
	ValidFrom time.Time
	ValidTo   time.Time
}

// Service manages the seller's coupons
type Service struct {
	repo   coupon.Repository
	logger *zap.Logger
}

// NewService creates a coupon service
func NewService(repo coupon.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create validates and stores a new coupon. Codes are unique per user.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*coupon.Coupon, error) {
	c, err := coupon.NewCoupon(userID, input.Code, input.Kind, input.Amount, input.ValidFrom, input.ValidTo)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByCodeForUser(ctx, userID, c.Code); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Coupon code already in use")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("coupon created",
		zap.String("user_id", userID.String()),
		zap.String("code", c.Code))
	return c, nil
}

// List returns every coupon of the user
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]coupon.Coupon, error) {
	return s.repo.FindAllForUser(ctx, userID)
}

// Deactivate turns a coupon off without deleting its history
func (s *Service) Deactivate(ctx context.Context, userID, id uuid.UUID) (*coupon.Coupon, error) {
	c, err := s.repo.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return c, nil
	}
	c.Active = false
	c.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a coupon owned by the user. Ownership mismatches surface
// as not-found.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	c, err := s.repo.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, c.ID)
}

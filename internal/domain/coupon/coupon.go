package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendaflow/backend/internal/domain/shared"
)

// DiscountKind is how a coupon discount is expressed
type DiscountKind string

const (
	// DiscountKindPercent is a percentage off the sale value
	DiscountKindPercent DiscountKind = "PERCENT"
	// DiscountKindValue is a fixed amount off
	DiscountKindValue DiscountKind = "VALUE"
)

// IsValid returns true for a known discount kind
func (k DiscountKind) IsValid() bool {
	return k == DiscountKindPercent || k == DiscountKindValue
}

// Coupon is a seller-managed discount coupon
type Coupon struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Code      string
	Kind      DiscountKind
	Amount    decimal.Decimal
	ValidFrom time.Time
	ValidTo   time.Time
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCoupon validates and builds a coupon
func NewCoupon(userID uuid.UUID, code string, kind DiscountKind, amount decimal.Decimal, validFrom, validTo time.Time) (*Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Coupon code is required")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown discount kind")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Discount amount must be positive")
	}
	if kind == DiscountKindPercent && amount.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Percent discount cannot exceed 100")
	}
	if !validTo.After(validFrom) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Coupon validity window is empty")
	}
	now := time.Now()
	return &Coupon{
		ID:        uuid.New(),
		UserID:    userID,
		Code:      code,
		Kind:      kind,
		Amount:    amount,
		ValidFrom: validFrom,
		ValidTo:   validTo,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsCurrent reports whether the coupon is active at the given instant
func (c *Coupon) IsCurrent(now time.Time) bool {
	return c.Active && !now.Before(c.ValidFrom) && now.Before(c.ValidTo)
}

// Repository defines persistence for coupons
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Coupon, error)
	FindByCodeForUser(ctx context.Context, userID uuid.UUID, code string) (*Coupon, error)
	FindAllForUser(ctx context.Context, userID uuid.UUID) ([]Coupon, error)
	Save(ctx context.Context, coupon *Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
}

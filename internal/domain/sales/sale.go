package sales

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendaflow/backend/internal/domain/marketplace"
)

// Sale is one persisted marketplace sale ("venda").
// OrderID is the natural key within a platform; upserts are idempotent on
// (platform_code, order_id).
type Sale struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	AccountID    uuid.UUID
	PlatformCode marketplace.PlatformCode
	OrderID      string
	Status       string
	Title        string
	SKU          string
	Buyer        string
	ListingType  string
	LogisticType string
	ShippingMode string
	Quantity     int64
	UnitPrice    decimal.Decimal
	TotalValue   decimal.Decimal
	PlatformFee  decimal.Decimal
	Freight      decimal.Decimal
	// FreightSkipped is true when the platform payload carried no usable
	// freight cost; the stored Freight value must not be overwritten then.
	FreightSkipped bool
	RawPayload     []byte
	SaleDate       time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsCancelled reports whether the sale status means cancelled on any platform
func IsCancelled(status string) bool {
	s := strings.ToLower(status)
	return strings.Contains(s, "cancel")
}

// IsPaid reports whether the sale counts as paid/completed.
// Mercado Livre uses "paid", Shopee uses "COMPLETED".
func IsPaid(status string) bool {
	s := strings.ToLower(status)
	return strings.Contains(s, "paid") || strings.Contains(s, "completed") || strings.Contains(s, "pag")
}

// Repository defines persistence for sales
type Repository interface {
	// Upsert creates or updates a sale keyed by (platform_code, order_id).
	// Re-running with an unchanged payload must leave the row unchanged.
	Upsert(ctx context.Context, sale *Sale) error

	// FindByOrderID finds a sale by its platform order id
	FindByOrderID(ctx context.Context, platform marketplace.PlatformCode, orderID string) (*Sale, error)

	// FindAllForUser lists sales for a user with filter scopes and pagination
	FindAllForUser(ctx context.Context, userID uuid.UUID, filter Filter, page, pageSize int) ([]Sale, int64, error)

	// CountForAccount counts persisted sales for one account
	CountForAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendaflow/backend/internal/domain/coupon"
	"github.com/vendaflow/backend/internal/domain/identity"
	"github.com/vendaflow/backend/internal/domain/marketplace"
	"github.com/vendaflow/backend/internal/domain/sales"
)

// UserModel is the users table
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the table name
func (UserModel) TableName() string { return "users" }

// ToDomain converts the row to a domain user
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// UserFromDomain converts a domain user to a row
func UserFromDomain(u *identity.User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// AccountModel is the marketplace_accounts table
type AccountModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;index;not null"`
	PlatformCode   string    `gorm:"size:16;not null"`
	ExternalUserID string    `gorm:"size:64;not null"`
	Nickname       string
	AccessToken    string `gorm:"not null"`
	RefreshToken   string
	ExpiresAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName overrides the table name
func (AccountModel) TableName() string { return "marketplace_accounts" }

// ToDomain converts the row to a domain account
func (m *AccountModel) ToDomain() *marketplace.Account {
	return &marketplace.Account{
		ID:             m.ID,
		UserID:         m.UserID,
		PlatformCode:   marketplace.PlatformCode(m.PlatformCode),
		ExternalUserID: m.ExternalUserID,
		Nickname:       m.Nickname,
		AccessToken:    m.AccessToken,
		RefreshToken:   m.RefreshToken,
		ExpiresAt:      m.ExpiresAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// AccountFromDomain converts a domain account to a row
func AccountFromDomain(a *marketplace.Account) *AccountModel {
	return &AccountModel{
		ID:             a.ID,
		UserID:         a.UserID,
		PlatformCode:   a.PlatformCode.String(),
		ExternalUserID: a.ExternalUserID,
		Nickname:       a.Nickname,
		AccessToken:    a.AccessToken,
		RefreshToken:   a.RefreshToken,
		ExpiresAt:      a.ExpiresAt,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// SaleModel is the sales table. The (platform_code, order_id) pair is the
// upsert key of the synchronization.
type SaleModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;index;not null"`
	AccountID      uuid.UUID `gorm:"type:uuid;index;not null"`
	PlatformCode   string    `gorm:"size:16;not null;uniqueIndex:idx_sales_platform_order,priority:1"`
	OrderID        string    `gorm:"size:64;not null;uniqueIndex:idx_sales_platform_order,priority:2"`
	Status         string    `gorm:"size:32;index"`
	Title          string
	SKU            string `gorm:"column:sku;size:64"`
	Buyer          string
	ListingType    string `gorm:"size:32"`
	LogisticType   string `gorm:"size:32"`
	ShippingMode   string `gorm:"size:32"`
	Quantity       int64
	UnitPrice      decimal.Decimal `gorm:"type:numeric(14,2)"`
	TotalValue     decimal.Decimal `gorm:"type:numeric(14,2)"`
	PlatformFee    decimal.Decimal `gorm:"type:numeric(14,2)"`
	Freight        decimal.Decimal `gorm:"type:numeric(14,2)"`
	FreightSkipped bool
	RawPayload     []byte    `gorm:"type:jsonb"`
	SaleDate       time.Time `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName overrides the table name
func (SaleModel) TableName() string { return "sales" }

// ToDomain converts the row to a domain sale
func (m *SaleModel) ToDomain() *sales.Sale {
	return &sales.Sale{
		ID:             m.ID,
		UserID:         m.UserID,
		AccountID:      m.AccountID,
		PlatformCode:   marketplace.PlatformCode(m.PlatformCode),
		OrderID:        m.OrderID,
		Status:         m.Status,
		Title:          m.Title,
		SKU:            m.SKU,
		Buyer:          m.Buyer,
		ListingType:    m.ListingType,
		LogisticType:   m.LogisticType,
		ShippingMode:   m.ShippingMode,
		Quantity:       m.Quantity,
		UnitPrice:      m.UnitPrice,
		TotalValue:     m.TotalValue,
		PlatformFee:    m.PlatformFee,
		Freight:        m.Freight,
		FreightSkipped: m.FreightSkipped,
		RawPayload:     m.RawPayload,
		SaleDate:       m.SaleDate,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// SaleFromDomain converts a domain sale to a row
func SaleFromDomain(s *sales.Sale) *SaleModel {
	return &SaleModel{
		ID:             s.ID,
		UserID:         s.UserID,
		AccountID:      s.AccountID,
		PlatformCode:   s.PlatformCode.String(),
		OrderID:        s.OrderID,
		Status:         s.Status,
		Title:          s.Title,
		SKU:            s.SKU,
		Buyer:          s.Buyer,
		ListingType:    s.ListingType,
		LogisticType:   s.LogisticType,
		ShippingMode:   s.ShippingMode,
		Quantity:       s.Quantity,
		UnitPrice:      s.UnitPrice,
		TotalValue:     s.TotalValue,
		PlatformFee:    s.PlatformFee,
		Freight:        s.Freight,
		FreightSkipped: s.FreightSkipped,
		RawPayload:     s.RawPayload,
		SaleDate:       s.SaleDate,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// CouponModel is the coupons table
type CouponModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_coupons_user_code,priority:1"`
	Code      string    `gorm:"size:32;not null;uniqueIndex:idx_coupons_user_code,priority:2"`
	Kind      string    `gorm:"size:16;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(14,2)"`
	ValidFrom time.Time
	ValidTo   time.Time
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name
func (CouponModel) TableName() string { return "coupons" }

// ToDomain converts the row to a domain coupon
func (m *CouponModel) ToDomain() *coupon.Coupon {
	return &coupon.Coupon{
		ID:        m.ID,
		UserID:    m.UserID,
		Code:      m.Code,
		Kind:      coupon.DiscountKind(m.Kind),
		Amount:    m.Amount,
		ValidFrom: m.ValidFrom,
		ValidTo:   m.ValidTo,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// CouponFromDomain converts a domain coupon to a row
func CouponFromDomain(c *coupon.Coupon) *CouponModel {
	return &CouponModel{
		ID:        c.ID,
		UserID:    c.UserID,
		Code:      c.Code,
		Kind:      string(c.Kind),
		Amount:    c.Amount,
		ValidFrom: c.ValidFrom,
		ValidTo:   c.ValidTo,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

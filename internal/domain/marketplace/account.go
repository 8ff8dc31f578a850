package marketplace

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PlatformCode identifies a connected marketplace
type PlatformCode string

const (
	// PlatformCodeMeli is Mercado Livre
	PlatformCodeMeli PlatformCode = "MELI"
	// PlatformCodeShopee is Shopee
	PlatformCodeShopee PlatformCode = "SHOPEE"
)

// IsValid returns true if the platform code is known
func (c PlatformCode) IsValid() bool {
	switch c {
	case PlatformCodeMeli, PlatformCodeShopee:
		return true
	default:
		return false
	}
}

// String returns the string representation of PlatformCode
func (c PlatformCode) String() string {
	return string(c)
}

// Account is a marketplace seller account connected by a user via OAuth.
// ExternalUserID is the seller id on the platform side (ml_user_id / shop_id).
type Account struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	PlatformCode   PlatformCode
	ExternalUserID string
	Nickname       string
	AccessToken    string
	RefreshToken   string
	ExpiresAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsUsable reports whether the account still holds a refresh token.
// An empty refresh token marks the account as requiring reconnection.
func (a *Account) IsUsable() bool {
	return a.RefreshToken != ""
}

// TokenStale reports whether the access token is expired or expires within skew.
func (a *Account) TokenStale(now time.Time, skew time.Duration) bool {
	return !a.ExpiresAt.After(now.Add(skew))
}

// RotateTokens applies a refreshed token pair to the account
func (a *Account) RotateTokens(accessToken, refreshToken string, expiresAt time.Time) {
	a.AccessToken = accessToken
	if refreshToken != "" {
		a.RefreshToken = refreshToken
	}
	a.ExpiresAt = expiresAt
	a.UpdatedAt = time.Now()
}

// AccountRepository defines persistence for marketplace accounts
type AccountRepository interface {
	// FindByID finds an account by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByIDForUser finds an account owned by the given user.
	// Returns shared.ErrNotFound when the account exists but is owned by
	// someone else, so handlers never leak existence.
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Account, error)

	// FindAllForUser lists all accounts owned by a user, newest first
	FindAllForUser(ctx context.Context, userID uuid.UUID) ([]Account, error)

	// FindByIDsForUser lists the subset of ids that are owned by the user
	FindByIDsForUser(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]Account, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *Account) error

	// Delete removes an account
	Delete(ctx context.Context, id uuid.UUID) error
}

// AccountStatusStore tracks the "account invalid" mark per (account, platform).
// The mark is set when token renewal fails permanently and cleared after a
// successful refresh, so the UI can prompt reconnection.
type AccountStatusStore interface {
	// MarkInvalid sets the invalid mark for an account
	MarkInvalid(ctx context.Context, accountID uuid.UUID, platform PlatformCode, reason string) error

	// ClearInvalid removes the invalid mark; no-op when absent
	ClearInvalid(ctx context.Context, accountID uuid.UUID, platform PlatformCode) error

	// IsInvalid reports whether the account is currently marked invalid
	IsInvalid(ctx context.Context, accountID uuid.UUID, platform PlatformCode) (bool, error)
}

package marketplace

import (
	"context"
	"errors"
	"time"
)

// Platform errors, classified so callers can decide retry behavior
var (
	// ErrPlatformUnavailable indicates a network/timeout failure reaching the platform
	ErrPlatformUnavailable = errors.New("marketplace: platform unavailable")
	// ErrPlatformRequestFailed indicates the platform rejected the request
	ErrPlatformRequestFailed = errors.New("marketplace: platform request failed")
	// ErrPlatformInvalidResponse indicates an unparseable platform response
	ErrPlatformInvalidResponse = errors.New("marketplace: invalid platform response")
	// ErrPlatformRateLimited indicates the platform throttled us
	ErrPlatformRateLimited = errors.New("marketplace: rate limited by platform")
	// ErrInvalidRefreshToken indicates the stored refresh token was rejected;
	// the account must be reconnected by the user, retrying is pointless
	ErrInvalidRefreshToken = errors.New("marketplace: invalid or expired refresh token")
)

// TokenPair is the result of an OAuth token refresh against a platform
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// OrderFreight is the shipping-freight sub-object of a platform order.
// Nil pointers mean the platform did not report the field.
type OrderFreight struct {
	LogisticType string
	ShippingMode string
	ListCost     *float64
	BaseCost     *float64
	ShipmentCost *float64
}

// Order is a normalized marketplace order as fetched from a platform
type Order struct {
	OrderID     string
	Status      string
	Title       string
	SKU         string
	Buyer       string
	ListingType string
	Quantity    int64
	UnitPrice   float64
	TotalValue  float64
	PlatformFee float64
	Freight     *OrderFreight
	SaleDate    time.Time
	RawPayload  []byte
}

// OrderPage is one page of orders pulled from a platform
type OrderPage struct {
	Orders     []Order
	Total      int
	HasMore    bool
	NextOffset int
}

// OrderPullRequest describes a paged order fetch for one account
type OrderPullRequest struct {
	Account  *Account
	From     time.Time
	To       time.Time
	Offset   int
	PageSize int
}

// Validate checks the pull request parameters
func (r *OrderPullRequest) Validate() error {
	if r.Account == nil {
		return errors.New("marketplace: pull request requires an account")
	}
	if r.PageSize <= 0 {
		return errors.New("marketplace: pull request requires a positive page size")
	}
	return nil
}

// Platform is the port implemented by each marketplace adapter.
// Adapters translate the platform wire format into the normalized Order.
type Platform interface {
	// PlatformCode returns the code this adapter handles
	PlatformCode() PlatformCode

	// PullOrders pulls one page of orders for the account
	PullOrders(ctx context.Context, req *OrderPullRequest) (*OrderPage, error)

	// RefreshToken exchanges the account's refresh token for a new pair.
	// Returns ErrInvalidRefreshToken when the grant was rejected and
	// ErrPlatformUnavailable on network failures.
	RefreshToken(ctx context.Context, account *Account) (*TokenPair, error)
}

// PlatformRegistry resolves adapters by platform code
type PlatformRegistry interface {
	// GetPlatform returns the adapter for a code
	GetPlatform(code PlatformCode) (Platform, error)
}

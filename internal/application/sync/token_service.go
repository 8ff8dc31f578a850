package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vendaflow/backend/internal/domain/marketplace"
)

// Token refresh errors
var (
	// ErrReconnectionRequired means the stored credentials are beyond repair
	// and the user must redo the OAuth connection
	ErrReconnectionRequired = errors.New("sync: account requires reconnection")
	// ErrRefreshUnavailable means the platform could not be reached; the
	// stored tokens are untouched and the caller may retry later
	ErrRefreshUnavailable = errors.New("sync: token refresh temporarily unavailable")
)

const (
	refreshMaxAttempts = 5
	refreshBaseBackoff = 500 * time.Millisecond
	// tokenSkew renews tokens this long before their actual expiry
	tokenSkew = 5 * time.Minute
)

// RefreshOutcome reports what a forced token refresh did
type RefreshOutcome struct {
	Refreshed            bool
	RequiresReconnection bool
	Retryable            bool
	ExpiresAt            time.Time
}

// TokenService renews marketplace access tokens. Transient platform failures
// are retried with exponential backoff; a rejected refresh token marks the
// account invalid and stops retrying, since only the user can fix it.
type TokenService struct {
	accounts  marketplace.AccountRepository
	platforms marketplace.PlatformRegistry
	status    marketplace.AccountStatusStore
	logger    *zap.Logger
	sleep     func(time.Duration)
}

// NewTokenService creates a token service
func NewTokenService(
	accounts marketplace.AccountRepository,
	platforms marketplace.PlatformRegistry,
	status marketplace.AccountStatusStore,
	logger *zap.Logger,
) *TokenService {
	return &TokenService{
		accounts:  accounts,
		platforms: platforms,
		status:    status,
		logger:    logger,
		sleep:     time.Sleep,
	}
}

// EnsureFresh renews the account's access token when it is expired or about
// to expire. A fresh token is left alone.
func (s *TokenService) EnsureFresh(ctx context.Context, account *marketplace.Account) error {
	if !account.TokenStale(time.Now(), tokenSkew) {
		return nil
	}
	return s.refresh(ctx, account)
}

// ForceRefresh renews the token regardless of its age. It never calls the
// platform when the account holds no refresh token: that state already means
// the user has to reconnect.
func (s *TokenService) ForceRefresh(ctx context.Context, userID, accountID uuid.UUID) (*RefreshOutcome, error) {
	account, err := s.accounts.FindByIDForUser(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	if !account.IsUsable() {
		if err := s.status.MarkInvalid(ctx, account.ID, account.PlatformCode, "missing refresh token"); err != nil {
			s.logger.Warn("failed to mark account invalid", zap.Error(err))
		}
		return &RefreshOutcome{RequiresReconnection: true}, nil
	}

	if err := s.refresh(ctx, account); err != nil {
		if errors.Is(err, ErrReconnectionRequired) {
			return &RefreshOutcome{RequiresReconnection: true}, nil
		}
		if errors.Is(err, ErrRefreshUnavailable) {
			return &RefreshOutcome{Retryable: true}, err
		}
		return nil, err
	}

	return &RefreshOutcome{Refreshed: true, ExpiresAt: account.ExpiresAt}, nil
}

func (s *TokenService) refresh(ctx context.Context, account *marketplace.Account) error {
	if !account.IsUsable() {
		return fmt.Errorf("%w: no refresh token stored", ErrReconnectionRequired)
	}

	platform, err := s.platforms.GetPlatform(account.PlatformCode)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= refreshMaxAttempts; attempt++ {
		pair, err := platform.RefreshToken(ctx, account)
		if err == nil {
			account.RotateTokens(pair.AccessToken, pair.RefreshToken, pair.ExpiresAt)
			if err := s.accounts.Save(ctx, account); err != nil {
				return fmt.Errorf("persist refreshed tokens: %w", err)
			}
			if err := s.status.ClearInvalid(ctx, account.ID, account.PlatformCode); err != nil {
				s.logger.Warn("failed to clear invalid mark", zap.Error(err))
			}
			s.logger.Info("access token renewed",
				zap.String("account_id", account.ID.String()),
				zap.String("platform", account.PlatformCode.String()),
				zap.Time("expires_at", account.ExpiresAt))
			return nil
		}

		if errors.Is(err, marketplace.ErrInvalidRefreshToken) {
			if markErr := s.status.MarkInvalid(ctx, account.ID, account.PlatformCode, "refresh token rejected"); markErr != nil {
				s.logger.Warn("failed to mark account invalid", zap.Error(markErr))
			}
			s.logger.Warn("refresh token rejected, account needs reconnection",
				zap.String("account_id", account.ID.String()),
				zap.String("platform", account.PlatformCode.String()))
			return fmt.Errorf("%w: %v", ErrReconnectionRequired, err)
		}

		lastErr = err
		if attempt < refreshMaxAttempts {
			backoff := refreshBaseBackoff * time.Duration(1<<(attempt-1))
			s.logger.Warn("token refresh failed, retrying",
				zap.String("account_id", account.ID.String()),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			s.sleep(backoff)
		}
	}

	return fmt.Errorf("%w: %v", ErrRefreshUnavailable, lastErr)
}

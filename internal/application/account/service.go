package account

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vendaflow/backend/internal/domain/marketplace"
	"github.com/vendaflow/backend/internal/domain/sales"
)

// Overview is one connected account as listed on the accounts screen
type Overview struct {
	Account    marketplace.Account
	SalesCount int64
	// NeedsReconnection is true when the account holds no refresh token or
	// its last renewal was rejected by the platform
	NeedsReconnection bool
}

// Service manages the user's connected marketplace accounts
type Service struct {
	accounts marketplace.AccountRepository
	sales    sales.Repository
	status   marketplace.AccountStatusStore
	logger   *zap.Logger
}

// NewService creates an account service
func NewService(
	accounts marketplace.AccountRepository,
	salesRepo sales.Repository,
	status marketplace.AccountStatusStore,
	logger *zap.Logger,
) *Service {
	return &Service{accounts: accounts, sales: salesRepo, status: status, logger: logger}
}

// List returns the user's accounts with their health and sales counts
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Overview, error) {
	accounts, err := s.accounts.FindAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Overview, 0, len(accounts))
	for i := range accounts {
		a := accounts[i]
		count, err := s.sales.CountForAccount(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		invalid, err := s.status.IsInvalid(ctx, a.ID, a.PlatformCode)
		if err != nil {
			// The mark store is advisory; a read failure must not hide
			// the account list.
			s.logger.Warn("failed to read account invalid mark",
				zap.String("account_id", a.ID.String()), zap.Error(err))
			invalid = false
		}
		out = append(out, Overview{
			Account:           a,
			SalesCount:        count,
			NeedsReconnection: invalid || !a.IsUsable(),
		})
	}
	return out, nil
}

// Get returns one account owned by the user
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*marketplace.Account, error) {
	return s.accounts.FindByIDForUser(ctx, userID, id)
}

// Connect stores a newly authorized account for the user
func (s *Service) Connect(ctx context.Context, account *marketplace.Account) error {
	if !account.PlatformCode.IsValid() {
		return marketplace.ErrPlatformRequestFailed
	}
	if err := s.accounts.Save(ctx, account); err != nil {
		return err
	}
	s.logger.Info("marketplace account connected",
		zap.String("account_id", account.ID.String()),
		zap.String("platform", account.PlatformCode.String()))
	return nil
}

// Delete disconnects an account. The ownership check runs first, so deleting
// someone else's account reports not-found instead of forbidden.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	account, err := s.accounts.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, account.ID); err != nil {
		return err
	}
	if err := s.status.ClearInvalid(ctx, account.ID, account.PlatformCode); err != nil {
		s.logger.Warn("failed to clear invalid mark on delete", zap.Error(err))
	}
	s.logger.Info("marketplace account disconnected",
		zap.String("account_id", account.ID.String()),
		zap.String("user_id", userID.String()))
	return nil
}

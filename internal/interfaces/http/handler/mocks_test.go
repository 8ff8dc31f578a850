package handler

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vendaflow/backend/internal/domain/identity"
	"github.com/vendaflow/backend/internal/domain/marketplace"
	"github.com/vendaflow/backend/internal/domain/sales"
	"github.com/vendaflow/backend/internal/domain/shared"
)

type mockUserRepo struct {
	users map[string]*identity.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*identity.User)}
}

func (m *mockUserRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*identity.User, error) {
	if u, ok := m.users[strings.ToLower(email)]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockUserRepo) Save(_ context.Context, user *identity.User) error {
	m.users[strings.ToLower(user.Email)] = user
	return nil
}

type mockAccountRepo struct {
	accounts map[uuid.UUID]*marketplace.Account
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: make(map[uuid.UUID]*marketplace.Account)}
}

func (m *mockAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*marketplace.Account, error) {
	if a, ok := m.accounts[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockAccountRepo) FindByIDForUser(_ context.Context, userID, id uuid.UUID) (*marketplace.Account, error) {
	if a, ok := m.accounts[id]; ok && a.UserID == userID {
		copied := *a
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockAccountRepo) FindAllForUser(_ context.Context, userID uuid.UUID) ([]marketplace.Account, error) {
	var out []marketplace.Account
	for _, a := range m.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAccountRepo) FindByIDsForUser(_ context.Context, userID uuid.UUID, ids []uuid.UUID) ([]marketplace.Account, error) {
	var out []marketplace.Account
	for _, id := range ids {
		if a, ok := m.accounts[id]; ok && a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAccountRepo) Save(_ context.Context, account *marketplace.Account) error {
	copied := *account
	m.accounts[account.ID] = &copied
	return nil
}

func (m *mockAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.accounts, id)
	return nil
}

type mockStatusStore struct {
	invalid map[uuid.UUID]bool
}

func newMockStatusStore() *mockStatusStore {
	return &mockStatusStore{invalid: make(map[uuid.UUID]bool)}
}

func (m *mockStatusStore) MarkInvalid(_ context.Context, accountID uuid.UUID, _ marketplace.PlatformCode, _ string) error {
	m.invalid[accountID] = true
	return nil
}

func (m *mockStatusStore) ClearInvalid(_ context.Context, accountID uuid.UUID, _ marketplace.PlatformCode) error {
	delete(m.invalid, accountID)
	return nil
}

func (m *mockStatusStore) IsInvalid(_ context.Context, accountID uuid.UUID, _ marketplace.PlatformCode) (bool, error) {
	return m.invalid[accountID], nil
}

type mockPlatform struct {
	code       marketplace.PlatformCode
	refreshErr error
}

func (m *mockPlatform) PlatformCode() marketplace.PlatformCode { return m.code }

func (m *mockPlatform) PullOrders(_ context.Context, _ *marketplace.OrderPullRequest) (*marketplace.OrderPage, error) {
	return &marketplace.OrderPage{}, nil
}

func (m *mockPlatform) RefreshToken(_ context.Context, _ *marketplace.Account) (*marketplace.TokenPair, error) {
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return &marketplace.TokenPair{
		AccessToken:  "renewed-access",
		RefreshToken: "renewed-refresh",
		ExpiresAt:    time.Now().Add(6 * time.Hour),
	}, nil
}

// countingSalesRepo serves the account overview sales counts
type countingSalesRepo struct {
	counts map[uuid.UUID]int64
}

func (m *countingSalesRepo) Upsert(_ context.Context, _ *sales.Sale) error { return nil }

func (m *countingSalesRepo) FindByOrderID(_ context.Context, _ marketplace.PlatformCode, _ string) (*sales.Sale, error) {
	return nil, shared.ErrNotFound
}

func (m *countingSalesRepo) FindAllForUser(_ context.Context, _ uuid.UUID, _ sales.Filter, _, _ int) ([]sales.Sale, int64, error) {
	return nil, 0, nil
}

func (m *countingSalesRepo) CountForAccount(_ context.Context, accountID uuid.UUID) (int64, error) {
	return m.counts[accountID], nil
}

type mockPlatformRegistry struct {
	platforms map[marketplace.PlatformCode]marketplace.Platform
}

func (m *mockPlatformRegistry) GetPlatform(code marketplace.PlatformCode) (marketplace.Platform, error) {
	if p, ok := m.platforms[code]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vendaflow/backend/internal/domain/marketplace"
	"github.com/vendaflow/backend/internal/domain/sales"
	"github.com/vendaflow/backend/internal/domain/shared"
)

type mockAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*marketplace.Account
	saveErr  error
}

func newMockAccountRepo(accounts ...*marketplace.Account) *mockAccountRepo {
	m := &mockAccountRepo{accounts: make(map[uuid.UUID]*marketplace.Account)}
	for _, a := range accounts {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *mockAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*marketplace.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockAccountRepo) FindByIDForUser(_ context.Context, userID, id uuid.UUID) (*marketplace.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return a, nil
}

func (m *mockAccountRepo) FindAllForUser(_ context.Context, userID uuid.UUID) ([]marketplace.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []marketplace.Account
	for _, a := range m.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAccountRepo) FindByIDsForUser(_ context.Context, userID uuid.UUID, ids []uuid.UUID) ([]marketplace.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []marketplace.Account
	for _, id := range ids {
		if a, ok := m.accounts[id]; ok && a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAccountRepo) Save(_ context.Context, account *marketplace.Account) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *mockAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, id)
	return nil
}

type mockStatusStore struct {
	mu      sync.Mutex
	invalid map[string]string
}

func newMockStatusStore() *mockStatusStore {
	return &mockStatusStore{invalid: make(map[string]string)}
}

func statusKey(id uuid.UUID, p marketplace.PlatformCode) string {
	return fmt.Sprintf("%s:%s", id, p)
}

func (m *mockStatusStore) MarkInvalid(_ context.Context, id uuid.UUID, p marketplace.PlatformCode, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalid[statusKey(id, p)] = reason
	return nil
}

func (m *mockStatusStore) ClearInvalid(_ context.Context, id uuid.UUID, p marketplace.PlatformCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.invalid, statusKey(id, p))
	return nil
}

func (m *mockStatusStore) IsInvalid(_ context.Context, id uuid.UUID, p marketplace.PlatformCode) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.invalid[statusKey(id, p)]
	return ok, nil
}

type mockPlatform struct {
	code        marketplace.PlatformCode
	pages       []marketplace.OrderPage
	pullErr     error
	pullCalls   int
	refreshPair *marketplace.TokenPair
	refreshErr  error
	// refreshErrs returns one error per call; after the slice is exhausted
	// refreshPair is returned
	refreshErrs  []error
	refreshCalls int
}

func (m *mockPlatform) PlatformCode() marketplace.PlatformCode { return m.code }

func (m *mockPlatform) PullOrders(_ context.Context, req *marketplace.OrderPullRequest) (*marketplace.OrderPage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if m.pullErr != nil {
		return nil, m.pullErr
	}
	idx := m.pullCalls
	m.pullCalls++
	if idx >= len(m.pages) {
		return &marketplace.OrderPage{}, nil
	}
	return &m.pages[idx], nil
}

func (m *mockPlatform) RefreshToken(_ context.Context, _ *marketplace.Account) (*marketplace.TokenPair, error) {
	call := m.refreshCalls
	m.refreshCalls++
	if call < len(m.refreshErrs) {
		return nil, m.refreshErrs[call]
	}
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	if m.refreshPair != nil {
		return m.refreshPair, nil
	}
	return &marketplace.TokenPair{
		AccessToken:  "new-access",
		RefreshToken: "new-refresh",
		ExpiresAt:    time.Now().Add(6 * time.Hour),
	}, nil
}

type mockPlatformRegistry struct {
	platforms map[marketplace.PlatformCode]marketplace.Platform
}

func newMockPlatformRegistry(platforms ...marketplace.Platform) *mockPlatformRegistry {
	m := &mockPlatformRegistry{platforms: make(map[marketplace.PlatformCode]marketplace.Platform)}
	for _, p := range platforms {
		m.platforms[p.PlatformCode()] = p
	}
	return m
}

func (m *mockPlatformRegistry) GetPlatform(code marketplace.PlatformCode) (marketplace.Platform, error) {
	if p, ok := m.platforms[code]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("no adapter for platform %s", code)
}

type mockSalesRepo struct {
	mu        sync.Mutex
	saved     map[string]*sales.Sale
	upsertErr error
}

func newMockSalesRepo() *mockSalesRepo {
	return &mockSalesRepo{saved: make(map[string]*sales.Sale)}
}

func saleKey(p marketplace.PlatformCode, orderID string) string {
	return fmt.Sprintf("%s:%s", p, orderID)
}

func (m *mockSalesRepo) Upsert(_ context.Context, sale *sales.Sale) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := saleKey(sale.PlatformCode, sale.OrderID)
	if existing, ok := m.saved[key]; ok && sale.FreightSkipped {
		// skipped orders never overwrite a previously stored freight
		sale.Freight = existing.Freight
	}
	m.saved[key] = sale
	return nil
}

func (m *mockSalesRepo) FindByOrderID(_ context.Context, p marketplace.PlatformCode, orderID string) (*sales.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.saved[saleKey(p, orderID)]; ok {
		return s, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockSalesRepo) FindAllForUser(_ context.Context, _ uuid.UUID, _ sales.Filter, _, _ int) ([]sales.Sale, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sales.Sale
	for _, s := range m.saved {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (m *mockSalesRepo) CountForAccount(_ context.Context, accountID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.saved {
		if s.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

func floatPtr(v float64) *float64 { return &v }

func testAccount(userID uuid.UUID, code marketplace.PlatformCode) *marketplace.Account {
	return &marketplace.Account{
		ID:             uuid.New(),
		UserID:         userID,
		PlatformCode:   code,
		ExternalUserID: "seller-1",
		Nickname:       "LOJA TESTE",
		AccessToken:    "access",
		RefreshToken:   "refresh",
		ExpiresAt:      time.Now().Add(6 * time.Hour),
	}
}

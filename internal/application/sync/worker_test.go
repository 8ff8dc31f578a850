package sync

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vendaflow/backend/internal/domain/marketplace"
	"github.com/vendaflow/backend/internal/infrastructure/notify"
)

func meliOrder(orderID string, unitPrice float64, freight *marketplace.OrderFreight) marketplace.Order {
	return marketplace.Order{
		OrderID:    orderID,
		Status:     "paid",
		Title:      "Produto " + orderID,
		Quantity:   1,
		UnitPrice:  unitPrice,
		TotalValue: unitPrice,
		Freight:    freight,
		SaleDate:   time.Now(),
	}
}

func newTestWorker(registry *mockPlatformRegistry, salesRepo *mockSalesRepo, accounts *mockAccountRepo, progress *notify.Registry) *Worker {
	tokens := NewTokenService(accounts, registry, newMockStatusStore(), zap.NewNop())
	tokens.sleep = func(time.Duration) {}
	return NewWorker(registry, salesRepo, tokens, progress, zap.NewNop())
}

func drain(conn *notify.Connection) []notify.Event {
	var events []notify.Event
	for {
		select {
		case e := <-conn.Events:
			events = append(events, e)
		default:
			return events
		}
	}
}

func eventTypes(events []notify.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestWorkerRun_PersistsOrdersAndStreamsProgress(t *testing.T) {
	userID := uuid.New()
	account := testAccount(userID, marketplace.PlatformCodeMeli)
	platform := &mockPlatform{
		code: marketplace.PlatformCodeMeli,
		pages: []marketplace.OrderPage{{
			Orders: []marketplace.Order{
				meliOrder("2001", 89.90, &marketplace.OrderFreight{
					LogisticType: "cross_docking",
					ListCost:     floatPtr(0),
					BaseCost:     floatPtr(12.50),
				}),
				meliOrder("2002", 50.00, &marketplace.OrderFreight{
					LogisticType: "fulfillment",
					ListCost:     floatPtr(8.30),
				}),
			},
			Total: 2,
		}},
	}
	salesRepo := newMockSalesRepo()
	progress := notify.NewRegistry()
	conn := progress.Register(userID.String())
	worker := newTestWorker(newMockPlatformRegistry(platform), salesRepo, newMockAccountRepo(account), progress)

	result := worker.Run(context.Background(), userID, []marketplace.Account{*account}, time.Now().AddDate(0, -1, 0), time.Now())

	assert.Equal(t, 2, result.Persisted())
	assert.False(t, result.Failed())

	coleta, err := salesRepo.FindByOrderID(context.Background(), marketplace.PlatformCodeMeli, "2001")
	require.NoError(t, err)
	assert.Equal(t, "-12.5", coleta.Freight.String())

	full, err := salesRepo.FindByOrderID(context.Background(), marketplace.PlatformCodeMeli, "2002")
	require.NoError(t, err)
	assert.Equal(t, "-8.3", full.Freight.String())

	types := eventTypes(drain(conn))
	assert.Equal(t, notify.EventConnected, types[0])
	assert.Contains(t, types, notify.EventSyncStart)
	assert.Contains(t, types, notify.EventSyncProgress)
	assert.Equal(t, notify.EventSyncComplete, types[len(types)-1])
}

func TestWorkerRun_SkippedFreightKeepsStoredValue(t *testing.T) {
	userID := uuid.New()
	account := testAccount(userID, marketplace.PlatformCodeMeli)
	withCosts := &marketplace.OrderFreight{
		LogisticType: "fulfillment",
		ListCost:     floatPtr(8.30),
	}
	withoutCosts := &marketplace.OrderFreight{LogisticType: "fulfillment"}
	salesRepo := newMockSalesRepo()
	progress := notify.NewRegistry()

	first := &mockPlatform{
		code:  marketplace.PlatformCodeMeli,
		pages: []marketplace.OrderPage{{Orders: []marketplace.Order{meliOrder("3001", 50, withCosts)}}},
	}
	worker := newTestWorker(newMockPlatformRegistry(first), salesRepo, newMockAccountRepo(account), progress)
	worker.Run(context.Background(), userID, []marketplace.Account{*account}, time.Time{}, time.Now())

	// Second run returns the same order with its costs stripped
	second := &mockPlatform{
		code:  marketplace.PlatformCodeMeli,
		pages: []marketplace.OrderPage{{Orders: []marketplace.Order{meliOrder("3001", 50, withoutCosts)}}},
	}
	worker = newTestWorker(newMockPlatformRegistry(second), salesRepo, newMockAccountRepo(account), progress)
	result := worker.Run(context.Background(), userID, []marketplace.Account{*account}, time.Time{}, time.Now())

	sale, err := salesRepo.FindByOrderID(context.Background(), marketplace.PlatformCodeMeli, "3001")
	require.NoError(t, err)
	assert.Equal(t, "-8.3", sale.Freight.String(), "skipped order must not clear stored freight")
	assert.Equal(t, 1, result.Accounts[0].Skipped)
}

func TestWorkerRun_OneFailingAccountDoesNotAbortOthers(t *testing.T) {
	userID := uuid.New()
	broken := testAccount(userID, marketplace.PlatformCodeMeli)
	healthy := testAccount(userID, marketplace.PlatformCodeShopee)

	meli := &mockPlatform{code: marketplace.PlatformCodeMeli, pullErr: marketplace.ErrPlatformUnavailable}
	shopee := &mockPlatform{
		code:  marketplace.PlatformCodeShopee,
		pages: []marketplace.OrderPage{{Orders: []marketplace.Order{meliOrder("4001", 120, &marketplace.OrderFreight{LogisticType: "drop_off", ListCost: floatPtr(20)})}}},
	}
	salesRepo := newMockSalesRepo()
	progress := notify.NewRegistry()
	conn := progress.Register(userID.String())
	worker := newTestWorker(newMockPlatformRegistry(meli, shopee), salesRepo, newMockAccountRepo(broken, healthy), progress)

	result := worker.Run(context.Background(), userID,
		[]marketplace.Account{*broken, *healthy}, time.Time{}, time.Now())

	require.Len(t, result.Accounts, 2)
	assert.ErrorIs(t, result.Accounts[0].Err, marketplace.ErrPlatformUnavailable)
	assert.NoError(t, result.Accounts[1].Err)
	assert.Equal(t, 1, result.Persisted())
	assert.False(t, result.Failed())

	types := eventTypes(drain(conn))
	assert.Contains(t, types, notify.EventSyncWarning)
	assert.Equal(t, notify.EventSyncComplete, types[len(types)-1])
}

func TestWorkerRun_UnusableAccountWarnsWithoutUpstreamCall(t *testing.T) {
	userID := uuid.New()
	account := testAccount(userID, marketplace.PlatformCodeMeli)
	account.RefreshToken = ""
	platform := &mockPlatform{code: marketplace.PlatformCodeMeli}
	progress := notify.NewRegistry()
	worker := newTestWorker(newMockPlatformRegistry(platform), newMockSalesRepo(), newMockAccountRepo(account), progress)

	result := worker.Run(context.Background(), userID, []marketplace.Account{*account}, time.Time{}, time.Now())

	assert.ErrorIs(t, result.Accounts[0].Err, ErrReconnectionRequired)
	assert.Zero(t, platform.pullCalls)
	assert.Zero(t, platform.refreshCalls)
	assert.True(t, result.Failed())
}

func TestWorkerRun_Pagination(t *testing.T) {
	userID := uuid.New()
	account := testAccount(userID, marketplace.PlatformCodeMeli)
	freight := &marketplace.OrderFreight{LogisticType: "drop_off", ListCost: floatPtr(10)}
	platform := &mockPlatform{
		code: marketplace.PlatformCodeMeli,
		pages: []marketplace.OrderPage{
			{Orders: []marketplace.Order{meliOrder("1", 100, freight)}, Total: 2, HasMore: true, NextOffset: 1},
			{Orders: []marketplace.Order{meliOrder("2", 100, freight)}, Total: 2},
		},
	}
	salesRepo := newMockSalesRepo()
	worker := newTestWorker(newMockPlatformRegistry(platform), salesRepo, newMockAccountRepo(account), notify.NewRegistry())

	result := worker.Run(context.Background(), userID, []marketplace.Account{*account}, time.Time{}, time.Now())

	assert.Equal(t, 2, platform.pullCalls)
	assert.Equal(t, 2, result.Persisted())
}

func TestWorkerRun_NoAccountsCompletesImmediately(t *testing.T) {
	userID := uuid.New()
	progress := notify.NewRegistry()
	conn := progress.Register(userID.String())
	worker := newTestWorker(newMockPlatformRegistry(), newMockSalesRepo(), newMockAccountRepo(), progress)

	result := worker.Run(context.Background(), userID, nil, time.Time{}, time.Now())

	assert.Empty(t, result.Accounts)
	assert.Zero(t, result.Persisted())

	types := eventTypes(drain(conn))
	assert.Equal(t, notify.EventSyncComplete, types[len(types)-1])
}

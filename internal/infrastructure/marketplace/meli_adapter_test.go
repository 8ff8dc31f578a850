package marketplace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vendaflow/backend/internal/domain/marketplace"
	"github.com/vendaflow/backend/internal/infrastructure/config"
)

func newMeliTestAdapter(serverURL string) *MeliAdapter {
	return NewMeliAdapter(config.PlatformAPIConfig{
		BaseURL:      serverURL,
		ClientID:     "app-id",
		ClientSecret: "app-secret",
		Timeout:      5 * time.Second,
	}, zap.NewNop())
}

func meliTestAccount() *marketplace.Account {
	return &marketplace.Account{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		PlatformCode:   marketplace.PlatformCodeMeli,
		ExternalUserID: "123456",
		AccessToken:    "APP_USR-token",
		RefreshToken:   "TG-refresh",
		ExpiresAt:      time.Now().Add(time.Hour),
	}
}

func TestMeliPullOrders_MapsOrderAndShipment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer APP_USR-token", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/orders/search":
			assert.Equal(t, "123456", r.URL.Query().Get("seller"))
			w.Write([]byte(`{
				"results": [{
					"id": 2000001,
					"status": "paid",
					"date_created": "2025-08-01T10:00:00Z",
					"total_amount": 89.90,
					"buyer": {"id": 7, "nickname": "COMPRADOR"},
					"order_items": [{
						"item": {"id": "MLB1", "title": "Suporte de parede", "seller_sku": "SUP-01"},
						"quantity": 1,
						"unit_price": 89.90,
						"sale_fee": 11.50,
						"listing_type_id": "gold_special"
					}],
					"shipping": {"id": 555}
				}],
				"paging": {"total": 1, "offset": 0, "limit": 50}
			}`))
		case "/shipments/555":
			w.Write([]byte(`{
				"id": 555,
				"logistic_type": "cross_docking",
				"mode": "me2",
				"shipping_option": {"list_cost": 0, "base_cost": 12.50, "cost": 0}
			}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	adapter := newMeliTestAdapter(server.URL)
	page, err := adapter.PullOrders(context.Background(), &marketplace.OrderPullRequest{
		Account:  meliTestAccount(),
		PageSize: 50,
	})

	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	order := page.Orders[0]
	assert.Equal(t, "2000001", order.OrderID)
	assert.Equal(t, "paid", order.Status)
	assert.Equal(t, "Suporte de parede", order.Title)
	assert.Equal(t, "gold_special", order.ListingType)
	assert.Equal(t, 89.90, order.UnitPrice)
	require.NotNil(t, order.Freight)
	assert.Equal(t, "cross_docking", order.Freight.LogisticType)
	require.NotNil(t, order.Freight.ListCost)
	assert.Equal(t, 0.0, *order.Freight.ListCost)
	require.NotNil(t, order.Freight.BaseCost)
	assert.Equal(t, 12.50, *order.Freight.BaseCost)
	assert.False(t, page.HasMore)
}

func TestMeliPullOrders_AbsentCostsStayNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/orders/search":
			w.Write([]byte(`{"results":[{"id":1,"status":"paid","date_created":"2025-08-01T10:00:00Z","shipping":{"id":9}}],"paging":{"total":1,"offset":0,"limit":50}}`))
		case "/shipments/9":
			w.Write([]byte(`{"id":9,"logistic_type":"fulfillment","mode":"me2","shipping_option":{}}`))
		}
	}))
	defer server.Close()

	adapter := newMeliTestAdapter(server.URL)
	page, err := adapter.PullOrders(context.Background(), &marketplace.OrderPullRequest{
		Account:  meliTestAccount(),
		PageSize: 50,
	})

	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	require.NotNil(t, page.Orders[0].Freight)
	assert.Nil(t, page.Orders[0].Freight.ListCost)
	assert.Nil(t, page.Orders[0].Freight.BaseCost)
}

func TestMeliPullOrders_Pagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/orders/search" {
			w.Write([]byte(`{"results":[{"id":1,"status":"paid","date_created":"2025-08-01T10:00:00Z","shipping":{}}],"paging":{"total":3,"offset":0,"limit":1}}`))
		}
	}))
	defer server.Close()

	adapter := newMeliTestAdapter(server.URL)
	page, err := adapter.PullOrders(context.Background(), &marketplace.OrderPullRequest{
		Account:  meliTestAccount(),
		PageSize: 1,
	})

	require.NoError(t, err)
	assert.True(t, page.HasMore)
	assert.Equal(t, 1, page.NextOffset)
	assert.Equal(t, 3, page.Total)
}

func TestMeliRefreshToken_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "TG-refresh", r.PostForm.Get("refresh_token"))
		w.Write([]byte(`{"access_token":"APP_USR-new","token_type":"Bearer","expires_in":21600,"refresh_token":"TG-new"}`))
	}))
	defer server.Close()

	adapter := newMeliTestAdapter(server.URL)
	pair, err := adapter.RefreshToken(context.Background(), meliTestAccount())

	require.NoError(t, err)
	assert.Equal(t, "APP_USR-new", pair.AccessToken)
	assert.Equal(t, "TG-new", pair.RefreshToken)
	assert.True(t, pair.ExpiresAt.After(time.Now().Add(5*time.Hour)))
}

func TestMeliRefreshToken_InvalidGrant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","message":"refresh token expired","status":400}`))
	}))
	defer server.Close()

	adapter := newMeliTestAdapter(server.URL)
	_, err := adapter.RefreshToken(context.Background(), meliTestAccount())

	assert.ErrorIs(t, err, marketplace.ErrInvalidRefreshToken)
}

func TestMeliRefreshToken_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	adapter := newMeliTestAdapter(server.URL)
	_, err := adapter.RefreshToken(context.Background(), meliTestAccount())

	assert.ErrorIs(t, err, marketplace.ErrPlatformUnavailable)
}

func TestMeliPullOrders_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	adapter := newMeliTestAdapter(server.URL)
	_, err := adapter.PullOrders(context.Background(), &marketplace.OrderPullRequest{
		Account:  meliTestAccount(),
		PageSize: 50,
	})

	assert.ErrorIs(t, err, marketplace.ErrPlatformRateLimited)
}

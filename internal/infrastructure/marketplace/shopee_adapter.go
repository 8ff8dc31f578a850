package marketplace

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vendaflow/backend/internal/domain/marketplace"
	"github.com/vendaflow/backend/internal/infrastructure/config"
)

const shopeeDetailBatchSize = 50

// ShopeeAdapter implements the marketplace.Platform port for the Shopee
// OpenAPI v2. Every call is signed with HMAC-SHA256 over
// partner_id + path + timestamp (+ access_token + shop_id for shop calls).
type ShopeeAdapter struct {
	cfg        config.PlatformAPIConfig
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewShopeeAdapter creates a Shopee adapter
func NewShopeeAdapter(cfg config.PlatformAPIConfig, logger *zap.Logger) *ShopeeAdapter {
	return &ShopeeAdapter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		now:        time.Now,
	}
}

// PlatformCode returns the code this adapter handles
func (a *ShopeeAdapter) PlatformCode() marketplace.PlatformCode {
	return marketplace.PlatformCodeShopee
}

// PullOrders lists the order numbers in the window, then fetches their
// details in one batch. Shopee paginates with an opaque cursor; the numeric
// offset in the pull request carries it encoded as page order only for the
// caller's bookkeeping, the real cursor rides in the list response.
func (a *ShopeeAdapter) PullOrders(ctx context.Context, req *marketplace.OrderPullRequest) (*marketplace.OrderPage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("time_range_field", "create_time")
	if !req.From.IsZero() {
		query.Set("time_from", strconv.FormatInt(req.From.Unix(), 10))
	}
	if !req.To.IsZero() {
		query.Set("time_to", strconv.FormatInt(req.To.Unix(), 10))
	}
	query.Set("page_size", strconv.Itoa(req.PageSize))
	if req.Offset > 0 {
		query.Set("cursor", strconv.Itoa(req.Offset))
	}

	body, err := a.doRequest(ctx, req.Account, "/api/v2/order/get_order_list", query)
	if err != nil {
		return nil, err
	}

	var list shopeeOrderListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrPlatformInvalidResponse, err)
	}
	if list.Error != "" {
		return nil, a.classifyAPIError(list.Error, list.Message)
	}

	page := &marketplace.OrderPage{}
	if len(list.Response.OrderList) == 0 {
		return page, nil
	}

	sns := make([]string, 0, len(list.Response.OrderList))
	for _, entry := range list.Response.OrderList {
		sns = append(sns, entry.OrderSN)
	}

	for start := 0; start < len(sns); start += shopeeDetailBatchSize {
		end := start + shopeeDetailBatchSize
		if end > len(sns) {
			end = len(sns)
		}
		details, err := a.fetchDetails(ctx, req.Account, sns[start:end])
		if err != nil {
			return nil, err
		}
		page.Orders = append(page.Orders, details...)
	}

	page.Total = len(page.Orders)
	if list.Response.More {
		page.HasMore = true
		if cursor, err := strconv.Atoi(list.Response.NextCursor); err == nil {
			page.NextOffset = cursor
		}
	}
	return page, nil
}

func (a *ShopeeAdapter) fetchDetails(ctx context.Context, account *marketplace.Account, sns []string) ([]marketplace.Order, error) {
	query := url.Values{}
	query.Set("order_sn_list", strings.Join(sns, ","))
	query.Set("response_optional_fields", "buyer_username,item_list,actual_shipping_fee,estimated_shipping_fee,buyer_paid_shipping_fee,shopee_shipping_rebate,shipping_fee_discount_from_3pl,shipping_carrier,total_amount")

	body, err := a.doRequest(ctx, account, "/api/v2/order/get_order_detail", query)
	if err != nil {
		return nil, err
	}

	var detail shopeeOrderDetailResponse
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrPlatformInvalidResponse, err)
	}
	if detail.Error != "" {
		return nil, a.classifyAPIError(detail.Error, detail.Message)
	}

	orders := make([]marketplace.Order, 0, len(detail.Response.OrderList))
	for i := range detail.Response.OrderList {
		orders = append(orders, *convertShopeeOrder(&detail.Response.OrderList[i]))
	}
	return orders, nil
}

func convertShopeeOrder(so *shopeeOrderDetail) *marketplace.Order {
	raw, _ := json.Marshal(so)
	order := &marketplace.Order{
		OrderID:    so.OrderSN,
		Status:     so.OrderStatus,
		Buyer:      so.BuyerUsername,
		TotalValue: so.TotalAmount,
		SaleDate:   time.Unix(so.CreateTime, 0),
		RawPayload: raw,
	}

	if len(so.ItemList) > 0 {
		first := so.ItemList[0]
		order.Title = first.ItemName
		order.SKU = first.ItemSKU
		order.UnitPrice = first.ModelDiscounted
		for _, item := range so.ItemList {
			order.Quantity += item.ModelQuantity
		}
	}

	// Shopee reports the seller-borne fee directly: the actual fee is the
	// charged cost, offset by the buyer-paid part, the platform rebate and
	// the 3PL discount. Carrier drop-off is the closest logistic type.
	if so.ActualShippingFee != nil || so.EstimatedShipping != nil {
		listCost := so.ActualShippingFee
		if listCost == nil {
			listCost = so.EstimatedShipping
		}
		order.Freight = &marketplace.OrderFreight{
			LogisticType: "drop_off",
			ShippingMode: so.ShippingCarrier,
			ListCost:     listCost,
			ShipmentCost: sumShippingOffsets(so.BuyerPaidShipping, so.ShippingRebate, so.ShippingDiscount3PL),
		}
	}
	return order
}

// sumShippingOffsets totals the fee components that reduce the seller-borne
// shipping cost. Returns nil when none of them is present.
func sumShippingOffsets(fees ...*float64) *float64 {
	var total float64
	present := false
	for _, fee := range fees {
		if fee != nil {
			total += *fee
			present = true
		}
	}
	if !present {
		return nil
	}
	return &total
}

// RefreshToken renews the shop access token
func (a *ShopeeAdapter) RefreshToken(ctx context.Context, account *marketplace.Account) (*marketplace.TokenPair, error) {
	shopID, _ := strconv.ParseInt(account.ExternalUserID, 10, 64)
	payload, err := json.Marshal(map[string]any{
		"refresh_token": account.RefreshToken,
		"partner_id":    a.partnerID(),
		"shop_id":       shopID,
	})
	if err != nil {
		return nil, err
	}

	path := "/api/v2/auth/access_token/get"
	timestamp := a.now().Unix()
	query := url.Values{}
	query.Set("partner_id", strconv.FormatInt(a.partnerID(), 10))
	query.Set("timestamp", strconv.FormatInt(timestamp, 10))
	query.Set("sign", a.sign(fmt.Sprintf("%d%s%d", a.partnerID(), path, timestamp)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.BaseURL+path+"?"+query.Encode(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("shopee: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("shopee: failed to read response: %w", err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: HTTP %d", marketplace.ErrPlatformUnavailable, resp.StatusCode)
	}

	var token shopeeTokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrPlatformInvalidResponse, err)
	}
	if token.Error != "" {
		return nil, a.classifyAPIError(token.Error, token.Message)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", marketplace.ErrPlatformInvalidResponse)
	}

	return &marketplace.TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(token.ExpireIn) * time.Second),
	}, nil
}

// doRequest performs a signed shop-level GET against the Shopee API
func (a *ShopeeAdapter) doRequest(ctx context.Context, account *marketplace.Account, path string, query url.Values) ([]byte, error) {
	timestamp := a.now().Unix()
	base := fmt.Sprintf("%d%s%d%s%s",
		a.partnerID(), path, timestamp, account.AccessToken, account.ExternalUserID)

	query.Set("partner_id", strconv.FormatInt(a.partnerID(), 10))
	query.Set("timestamp", strconv.FormatInt(timestamp, 10))
	query.Set("access_token", account.AccessToken)
	query.Set("shop_id", account.ExternalUserID)
	query.Set("sign", a.sign(base))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.cfg.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("shopee: failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("shopee: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, marketplace.ErrPlatformRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: HTTP %d", marketplace.ErrPlatformUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: HTTP %d", marketplace.ErrPlatformRequestFailed, resp.StatusCode)
	}
	return body, nil
}

func (a *ShopeeAdapter) classifyAPIError(code, message string) error {
	switch code {
	case "error_auth", "invalid_access_token", "invalid_grant", "error_permission":
		return fmt.Errorf("%w: %s %s", marketplace.ErrInvalidRefreshToken, code, message)
	case "error_server", "error_busy":
		return fmt.Errorf("%w: %s %s", marketplace.ErrPlatformUnavailable, code, message)
	default:
		return fmt.Errorf("%w: %s %s", marketplace.ErrPlatformRequestFailed, code, message)
	}
}

func (a *ShopeeAdapter) partnerID() int64 {
	id, _ := strconv.ParseInt(a.cfg.ClientID, 10, 64)
	return id
}

func (a *ShopeeAdapter) sign(base string) string {
	mac := hmac.New(sha256.New, []byte(a.cfg.ClientSecret))
	mac.Write([]byte(base))
	return hex.EncodeToString(mac.Sum(nil))
}

var _ marketplace.Platform = (*ShopeeAdapter)(nil)

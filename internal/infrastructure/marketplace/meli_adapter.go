package marketplace

import (
	"context"
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

// maxResponseSize caps platform API responses (10MB)
const maxResponseSize = 10 * 1024 * 1024

// MeliAdapter implements the marketplace.Platform port for Mercado Livre
type MeliAdapter struct {
	cfg        config.PlatformAPIConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewMeliAdapter creates a Mercado Livre adapter
func NewMeliAdapter(cfg config.PlatformAPIConfig, logger *zap.Logger) *MeliAdapter {
	return &MeliAdapter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// PlatformCode returns the code this adapter handles
func (a *MeliAdapter) PlatformCode() marketplace.PlatformCode {
	return marketplace.PlatformCodeMeli
}

// PullOrders fetches one page of the seller's orders. The shipment of each
// order is fetched separately: the search response does not carry the
// freight cost fields.
func (a *MeliAdapter) PullOrders(ctx context.Context, req *marketplace.OrderPullRequest) (*marketplace.OrderPage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("seller", req.Account.ExternalUserID)
	query.Set("sort", "date_desc")
	query.Set("offset", strconv.Itoa(req.Offset))
	query.Set("limit", strconv.Itoa(req.PageSize))
	if !req.From.IsZero() {
		query.Set("order.date_created.from", req.From.Format(time.RFC3339))
	}
	if !req.To.IsZero() {
		query.Set("order.date_created.to", req.To.Format(time.RFC3339))
	}

	body, err := a.doRequest(ctx, http.MethodGet,
		"/orders/search?"+query.Encode(), req.Account.AccessToken, nil)
	if err != nil {
		return nil, err
	}

	var search meliSearchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrPlatformInvalidResponse, err)
	}

	page := &marketplace.OrderPage{Total: search.Paging.Total}
	for i := range search.Results {
		order, err := a.convertOrder(ctx, req.Account, &search.Results[i])
		if err != nil {
			// One malformed order is logged and skipped, the page goes on
			a.logger.Warn("skipping unconvertible order",
				zap.Int64("order_id", search.Results[i].ID),
				zap.Error(err))
			continue
		}
		page.Orders = append(page.Orders, *order)
	}

	next := req.Offset + len(search.Results)
	if next < search.Paging.Total && len(search.Results) > 0 {
		page.HasMore = true
		page.NextOffset = next
	}
	return page, nil
}

func (a *MeliAdapter) convertOrder(ctx context.Context, account *marketplace.Account, mo *meliOrder) (*marketplace.Order, error) {
	raw, err := json.Marshal(mo)
	if err != nil {
		return nil, err
	}

	order := &marketplace.Order{
		OrderID:    strconv.FormatInt(mo.ID, 10),
		Status:     mo.Status,
		Buyer:      mo.Buyer.Nickname,
		TotalValue: mo.TotalAmount,
		RawPayload: raw,
	}

	if saleDate, err := time.Parse(time.RFC3339, mo.DateCreated); err == nil {
		order.SaleDate = saleDate
	}

	if len(mo.OrderItems) > 0 {
		first := mo.OrderItems[0]
		order.Title = first.Item.Title
		order.SKU = first.Item.SellerSKU
		order.ListingType = first.ListingType
		order.UnitPrice = first.UnitPrice
		for _, item := range mo.OrderItems {
			order.Quantity += item.Quantity
			order.PlatformFee += item.SaleFee * float64(item.Quantity)
		}
	}

	if mo.Shipping.ID != 0 {
		freight, err := a.fetchShipment(ctx, account, mo.Shipping.ID)
		if err != nil {
			// Freight reconciliation can live without the shipment; the
			// order is stored and the computation marks it skipped.
			a.logger.Warn("failed to fetch shipment",
				zap.Int64("shipment_id", mo.Shipping.ID),
				zap.Error(err))
		} else {
			order.Freight = freight
		}
	}

	return order, nil
}

func (a *MeliAdapter) fetchShipment(ctx context.Context, account *marketplace.Account, shipmentID int64) (*marketplace.OrderFreight, error) {
	body, err := a.doRequest(ctx, http.MethodGet,
		fmt.Sprintf("/shipments/%d", shipmentID), account.AccessToken, nil)
	if err != nil {
		return nil, err
	}

	var shipment meliShipment
	if err := json.Unmarshal(body, &shipment); err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrPlatformInvalidResponse, err)
	}

	return &marketplace.OrderFreight{
		LogisticType: shipment.LogisticType,
		ShippingMode: shipment.Mode,
		ListCost:     shipment.ShippingOpt.ListCost,
		BaseCost:     shipment.ShippingOpt.BaseCost,
		ShipmentCost: shipment.ShippingOpt.Cost,
	}, nil
}

// RefreshToken exchanges the stored refresh token for a new pair
func (a *MeliAdapter) RefreshToken(ctx context.Context, account *marketplace.Account) (*marketplace.TokenPair, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", a.cfg.ClientID)
	form.Set("client_secret", a.cfg.ClientSecret)
	form.Set("refresh_token", account.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.BaseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("meli: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("meli: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr meliErrorResponse
		_ = json.Unmarshal(body, &apiErr)
		if apiErr.Error == "invalid_grant" || resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", marketplace.ErrInvalidRefreshToken, apiErr.Message)
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, marketplace.ErrPlatformRateLimited
		}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: HTTP %d", marketplace.ErrPlatformUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: HTTP %d", marketplace.ErrPlatformRequestFailed, resp.StatusCode)
	}

	var token meliTokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrPlatformInvalidResponse, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", marketplace.ErrPlatformInvalidResponse)
	}

	return &marketplace.TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
	}, nil
}

// doRequest performs an authenticated request against the Mercado Livre API
func (a *MeliAdapter) doRequest(ctx context.Context, method, path, accessToken string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.cfg.BaseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("meli: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", marketplace.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("meli: failed to read response: %w", err)
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

var _ marketplace.Platform = (*MeliAdapter)(nil)

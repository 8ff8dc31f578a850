package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendaflow/backend/internal/domain/sales"
)

// SalesHandler lists synchronized sales
type SalesHandler struct {
	BaseHandler
	sales sales.Repository
}

// NewSalesHandler creates a new SalesHandler
func NewSalesHandler(repo sales.Repository) *SalesHandler {
	return &SalesHandler{sales: repo}
}

// SalesListRequest binds the dashboard filter from query parameters
type SalesListRequest struct {
	Status      string   `form:"status" binding:"omitempty,oneof=pagos cancelados todos"`
	Channel     string   `form:"channel" binding:"omitempty,oneof=mercado_livre shopee"`
	ListingType string   `form:"listing" binding:"omitempty,oneof=catalogo proprio"`
	Modality    string   `form:"modality" binding:"omitempty,oneof=full flex me"`
	From        string   `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To          string   `form:"to" binding:"omitempty,datetime=2006-01-02"`
	AccountIDs  []string `form:"account_ids" binding:"omitempty,dive,uuid"`
	Page        int      `form:"page" binding:"omitempty,min=1"`
	PageSize    int      `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// SaleResponse is one sale row as shown on the sales screen
type SaleResponse struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	PlatformCode string          `json:"platform_code"`
	OrderID      string          `json:"order_id"`
	Status       string          `json:"status"`
	Title        string          `json:"title"`
	SKU          string          `json:"sku"`
	Buyer        string          `json:"buyer"`
	Exposure     string          `json:"exposure"`
	Modality     string          `json:"modality"`
	ShippingMode string          `json:"shipping_mode"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalValue   decimal.Decimal `json:"total_value"`
	PlatformFee  decimal.Decimal `json:"platform_fee"`
	Freight      decimal.Decimal `json:"freight"`
	SaleDate     time.Time       `json:"sale_date"`
}

func newSaleResponse(sale sales.Sale) SaleResponse {
	return SaleResponse{
		ID:           sale.ID.String(),
		AccountID:    sale.AccountID.String(),
		PlatformCode: sale.PlatformCode.String(),
		OrderID:      sale.OrderID,
		Status:       sale.Status,
		Title:        sale.Title,
		SKU:          sale.SKU,
		Buyer:        sale.Buyer,
		Exposure:     sales.MapListingTypeToExposure(sale.ListingType),
		Modality:     sales.ConvertLogisticTypeName(sale.LogisticType),
		ShippingMode: sale.ShippingMode,
		Quantity:     sale.Quantity,
		UnitPrice:    sale.UnitPrice,
		TotalValue:   sale.TotalValue,
		PlatformFee:  sale.PlatformFee,
		Freight:      sale.Freight,
		SaleDate:     sale.SaleDate,
	}
}

// buildFilter converts the bound request into a domain filter
func (req SalesListRequest) buildFilter() (sales.Filter, error) {
	filter := sales.Filter{
		Status:      req.Status,
		Channel:     req.Channel,
		ListingType: req.ListingType,
		Modality:    req.Modality,
	}

	if req.From != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return filter, err
		}
		to = to.Add(24*time.Hour - time.Second)
		filter.To = &to
	}
	for _, raw := range req.AccountIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, err
		}
		filter.AccountIDs = append(filter.AccountIDs, id)
	}
	return filter, nil
}

// List returns the user's sales under the active filter, newest first
func (h *SalesHandler) List(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session is missing or invalid")
		return
	}

	var req SalesListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter, err := req.buildFilter()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	rows, total, err := h.sales.FindAllForUser(c.Request.Context(), userID, filter, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]SaleResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, newSaleResponse(row))
	}
	h.SuccessWithMeta(c, responses, total, page, pageSize)
}

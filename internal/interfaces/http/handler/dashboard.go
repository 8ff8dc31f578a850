package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	dashboardapp "github.com/vendaflow/backend/internal/application/dashboard"
	reportapp "github.com/vendaflow/backend/internal/application/report"
	"github.com/vendaflow/backend/internal/domain/sales"
)

// DashboardHandler serves the dashboard aggregations and the DRE series
type DashboardHandler struct {
	BaseHandler
	stats *dashboardapp.StatsService
	dre   *reportapp.DREService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(stats *dashboardapp.StatsService, dre *reportapp.DREService) *DashboardHandler {
	return &DashboardHandler{stats: stats, dre: dre}
}

// DashboardFilterRequest binds the shared dashboard filter
type DashboardFilterRequest struct {
	Status      string   `form:"status" binding:"omitempty,oneof=pagos cancelados todos"`
	Channel     string   `form:"channel" binding:"omitempty,oneof=mercado_livre shopee"`
	ListingType string   `form:"listing" binding:"omitempty,oneof=catalogo proprio"`
	Modality    string   `form:"modality" binding:"omitempty,oneof=full flex me"`
	From        string   `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To          string   `form:"to" binding:"omitempty,datetime=2006-01-02"`
	AccountIDs  []string `form:"account_ids" binding:"omitempty,dive,uuid"`
}

func (req DashboardFilterRequest) buildFilter() (sales.Filter, error) {
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

func (h *DashboardHandler) bindFilter(c *gin.Context) (uuid.UUID, sales.Filter, bool) {
	userID, err := sessionUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session is missing or invalid")
		return uuid.Nil, sales.Filter{}, false
	}

	var req DashboardFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return uuid.Nil, sales.Filter{}, false
	}

	filter, err := req.buildFilter()
	if err != nil {
		h.BadRequest(c, err.Error())
		return uuid.Nil, sales.Filter{}, false
	}
	return userID, filter, true
}

// Overview returns the headline numbers for the filtered period
func (h *DashboardHandler) Overview(c *gin.Context) {
	userID, filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	stats, err := h.stats.Overview(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Channels breaks the filtered period down by marketplace
func (h *DashboardHandler) Channels(c *gin.Context) {
	userID, filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	slices, err := h.stats.Channels(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, slices)
}

// Modalities breaks the filtered period down by shipping modality
func (h *DashboardHandler) Modalities(c *gin.Context) {
	userID, filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	slices, err := h.stats.Modalities(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, slices)
}

// DRE returns the month-by-month income statement series
func (h *DashboardHandler) DRE(c *gin.Context) {
	userID, filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	rows, err := h.dre.Series(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	couponapp "github.com/vendaflow/backend/internal/application/coupon"
	"github.com/vendaflow/backend/internal/domain/coupon"
)

// CouponHandler manages the seller's discount coupons
type CouponHandler struct {
	BaseHandler
	coupons *couponapp.Service
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(coupons *couponapp.Service) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

// CreateCouponRequest is the request body for creating a coupon
type CreateCouponRequest struct {
	Code      string  `json:"code" binding:"required,min=1,max=50"`
	Kind      string  `json:"kind" binding:"required,oneof=PERCENT VALUE"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	ValidFrom string  `json:"valid_from" binding:"required,datetime=2006-01-02"`
	ValidTo   string  `json:"valid_to" binding:"required,datetime=2006-01-02"`
}

// CouponResponse is the public shape of a coupon
type CouponResponse struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Kind      string          `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	ValidFrom time.Time       `json:"valid_from"`
	ValidTo   time.Time       `json:"valid_to"`
	Active    bool            `json:"active"`
	Current   bool            `json:"current"`
	CreatedAt time.Time       `json:"created_at"`
}

func newCouponResponse(entity *coupon.Coupon) CouponResponse {
	return CouponResponse{
		ID:        entity.ID.String(),
		Code:      entity.Code,
		Kind:      string(entity.Kind),
		Amount:    entity.Amount,
		ValidFrom: entity.ValidFrom,
		ValidTo:   entity.ValidTo,
		Active:    entity.Active,
		Current:   entity.IsCurrent(time.Now()),
		CreatedAt: entity.CreatedAt,
	}
}

// Create registers a new coupon for the user
func (h *CouponHandler) Create(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session is missing or invalid")
		return
	}

	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	validFrom, err := time.Parse("2006-01-02", req.ValidFrom)
	if err != nil {
		h.BadRequest(c, "Invalid valid_from date")
		return
	}
	validTo, err := time.Parse("2006-01-02", req.ValidTo)
	if err != nil {
		h.BadRequest(c, "Invalid valid_to date")
		return
	}
	// validity runs through the end of the last day
	validTo = validTo.Add(24*time.Hour - time.Second)

	created, err := h.coupons.Create(c.Request.Context(), userID, couponapp.CreateInput{
		Code:      req.Code,
		Kind:      coupon.DiscountKind(req.Kind),
		Amount:    decimal.NewFromFloat(req.Amount),
		ValidFrom: validFrom,
		ValidTo:   validTo,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newCouponResponse(created))
}

// List returns the user's coupons, newest first
func (h *CouponHandler) List(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session is missing or invalid")
		return
	}

	coupons, err := h.coupons.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]CouponResponse, 0, len(coupons))
	for i := range coupons {
		responses = append(responses, newCouponResponse(&coupons[i]))
	}
	h.Success(c, responses)
}

// Deactivate turns a coupon off without deleting its history
func (h *CouponHandler) Deactivate(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session is missing or invalid")
		return
	}

	couponID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid coupon ID format")
		return
	}

	updated, err := h.coupons.Deactivate(c.Request.Context(), userID, couponID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newCouponResponse(updated))
}

// Delete removes a coupon the user owns
func (h *CouponHandler) Delete(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session is missing or invalid")
		return
	}

	couponID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid coupon ID format")
		return
	}

	if err := h.coupons.Delete(c.Request.Context(), userID, couponID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

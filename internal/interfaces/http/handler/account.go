package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	accountapp "github.com/vendaflow/backend/internal/application/account"
	syncapp "github.com/vendaflow/backend/internal/application/sync"
	"github.com/vendaflow/backend/internal/domain/marketplace"
	"github.com/vendaflow/backend/internal/interfaces/http/dto"
)

// AccountHandler manages the user's connected marketplace accounts
type AccountHandler struct {
	BaseHandler
	accounts *accountapp.Service
	tokens   *syncapp.TokenService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accounts *accountapp.Service, tokens *syncapp.TokenService) *AccountHandler {
	return &AccountHandler{accounts: accounts, tokens: tokens}
}

// ConnectAccountRequest is the request body for connecting a marketplace account.
// The OAuth dance happens on the frontend; this endpoint stores its outcome.
type ConnectAccountRequest struct {
	PlatformCode   string `json:"platform_code" binding:"required,oneof=MELI SHOPEE"`
	ExternalUserID string `json:"external_user_id" binding:"required,max=100"`
	Nickname       string `json:"nickname" binding:"max=200"`
	AccessToken    string `json:"access_token" binding:"required"`
	RefreshToken   string `json:"refresh_token" binding:"required"`
	ExpiresIn      int64  `json:"expires_in" binding:"required,gt=0"`
}

// AccountResponse is the public shape of a connected account.
// Tokens never leave the backend.
type AccountResponse struct {
	ID                string    `json:"id"`
	PlatformCode      string    `json:"platform_code"`
	ExternalUserID    string    `json:"external_user_id"`
	Nickname          string    `json:"nickname"`
	TokenExpiresAt    time.Time `json:"token_expires_at"`
	SalesCount        int64     `json:"sales_count"`
	NeedsReconnection bool      `json:"needs_reconnection"`
	CreatedAt         time.Time `json:"created_at"`
}

func newAccountResponse(overview accountapp.Overview) AccountResponse {
	return AccountResponse{
		ID:                overview.Account.ID.String(),
		PlatformCode:      overview.Account.PlatformCode.String(),
		ExternalUserID:    overview.Account.ExternalUserID,
		Nickname:          overview.Account.Nickname,
		TokenExpiresAt:    overview.Account.ExpiresAt,
		SalesCount:        overview.SalesCount,
		NeedsReconnection: overview.NeedsReconnection,
		CreatedAt:         overview.Account.CreatedAt,
	}
}

// List returns the user's connected accounts with their health
func (h *AccountHandler) List(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session is missing or invalid")
		return
	}

	overviews, err := h.accounts.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]AccountResponse, 0, len(overviews))
	for _, overview := range overviews {
		responses = append(responses, newAccountResponse(overview))
	}
	h.Success(c, responses)
}

// Connect stores a freshly authorized marketplace account
func (h *AccountHandler) Connect(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session is missing or invalid")
		return
	}

	var req ConnectAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	now := time.Now()
	account := &marketplace.Account{
		ID:             uuid.New(),
		UserID:         userID,
		PlatformCode:   marketplace.PlatformCode(req.PlatformCode),
		ExternalUserID: req.ExternalUserID,
		Nickname:       req.Nickname,
		AccessToken:    req.AccessToken,
		RefreshToken:   req.RefreshToken,
		ExpiresAt:      now.Add(time.Duration(req.ExpiresIn) * time.Second),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.accounts.Connect(c.Request.Context(), account); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newAccountResponse(accountapp.Overview{Account: *account}))
}

// Delete disconnects an account the user owns
func (h *AccountHandler) Delete(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session is missing or invalid")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	if err := h.accounts.Delete(c.Request.Context(), userID, accountID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RefreshTokenResponse reports what a forced token renewal did
type RefreshTokenResponse struct {
	Refreshed            bool      `json:"refreshed"`
	RequiresReconnection bool      `json:"requires_reconnection"`
	ExpiresAt            time.Time `json:"expires_at,omitempty"`
}

// RefreshToken forces a token renewal for one account. A rejected refresh
// token answers 400 so the frontend starts the reconnection flow; an
// unreachable platform answers 503 so the frontend retries later.
func (h *AccountHandler) RefreshToken(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session is missing or invalid")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	outcome, err := h.tokens.ForceRefresh(c.Request.Context(), userID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if outcome.RequiresReconnection {
		h.ErrorWithCode(c, dto.ErrCodeReconnectionRequired, "Marketplace account requires reconnection")
		return
	}

	h.Success(c, RefreshTokenResponse{
		Refreshed:            outcome.Refreshed,
		RequiresReconnection: outcome.RequiresReconnection,
		ExpiresAt:            outcome.ExpiresAt,
	})
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	identityapp "github.com/vendaflow/backend/internal/application/identity"
	"github.com/vendaflow/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles registration, login and session introspection
type AuthHandler struct {
	BaseHandler
	auth *identityapp.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRequest is the request body for creating a new user
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for opening a session
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SessionResponse carries the signed session token and its owner
type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public shape of a user
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// sessionCookie is the cookie that carries the signed session token
const sessionCookie = "session"

func setSessionCookie(c *gin.Context, session *identityapp.Session) {
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, session.Token, maxAge, "/", "", false, true)
}

func newSessionResponse(session *identityapp.Session) SessionResponse {
	return SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User: UserResponse{
			ID:    session.User.ID.String(),
			Name:  session.User.Name,
			Email: session.User.Email,
		},
	}
}

// Register creates a user account and opens its first session
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	session, err := h.auth.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	setSessionCookie(c, session)
	h.Created(c, newSessionResponse(session))
}

// Login validates credentials and opens a session
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	setSessionCookie(c, session)
	h.Success(c, newSessionResponse(session))
}

// Logout clears the session cookie. The token itself stays valid until its
// expiry; sessions are stateless on the server side.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	h.Success(c, gin.H{"logged_out": true})
}

// Me returns the user behind the current session token
func (h *AuthHandler) Me(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		h.Unauthorized(c, "Session is missing or invalid")
		return
	}

	h.Success(c, UserResponse{
		ID:    session.UserID.String(),
		Name:  session.Name,
		Email: session.Email,
	})
}

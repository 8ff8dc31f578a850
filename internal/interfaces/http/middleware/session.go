package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vendaflow/backend/internal/infrastructure/auth"
	"github.com/vendaflow/backend/internal/interfaces/http/dto"
)

// sessionKey is the gin context key holding the verified session
const sessionKey = "session"

// extractToken pulls the bearer token from the Authorization header, falling
// back to the session cookie and finally to the token query parameter for
// EventSource connections, which cannot set headers.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(sessionKey); err == nil && cookie != "" {
		return cookie
	}
	return c.Query("token")
}

// RequireSession aborts with 401 unless the request carries a valid session
func RequireSession(sessions *auth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required"))
			return
		}

		session, err := sessions.Verify(token)
		if err != nil {
			code := dto.ErrCodeTokenInvalid
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrCodeTokenExpired
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(code, "Invalid or expired session"))
			return
		}

		c.Set(sessionKey, session)
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			span.SetAttributes(attribute.String("user_id", session.UserID.String()))
		}
		c.Next()
	}
}

// OptionalSession attaches the session when a valid token is present and
// lets anonymous requests through untouched
func OptionalSession(sessions *auth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if session := sessions.TryVerify(extractToken(c)); session != nil {
			c.Set(sessionKey, session)
		}
		c.Next()
	}
}

// GetSession returns the verified session, or nil outside RequireSession
func GetSession(c *gin.Context) *auth.Session {
	value, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := value.(*auth.Session)
	return session
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	identityapp "github.com/vendaflow/backend/internal/application/identity"
	syncapp "github.com/vendaflow/backend/internal/application/sync"
	"github.com/vendaflow/backend/internal/domain/marketplace"
	"github.com/vendaflow/backend/internal/domain/shared"
	"github.com/vendaflow/backend/internal/interfaces/http/dto"
	"github.com/vendaflow/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDHeader); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// sessionUserID extracts the authenticated user id; RequireSession
// guarantees it is set on protected routes
func sessionUserID(c *gin.Context) (uuid.UUID, error) {
	session := middleware.GetSession(c)
	if session == nil {
		return uuid.Nil, errors.New("no session in context")
	}
	return session.UserID, nil
}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Accepted sends a 202 response for work that continues in the background
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with an explicit status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving the status from the code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// domainErrorCode translates domain error codes into the HTTP error-code table
func domainErrorCode(code string) string {
	switch code {
	case "UNAUTHENTICATED":
		return dto.ErrCodeUnauthorized
	case "FORBIDDEN":
		return dto.ErrCodeForbidden
	}
	return "ERR_" + code
}

// HandleError maps domain and application errors onto the error-code table
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	switch {
	case errors.As(err, &domainErr):
		h.ErrorWithCode(c, domainErrorCode(domainErr.Code), domainErr.Message)
	case errors.Is(err, shared.ErrNotFound):
		h.NotFound(c, "Resource not found")
	case errors.Is(err, shared.ErrAlreadyExists):
		h.ErrorWithCode(c, dto.ErrCodeAlreadyExists, "Resource already exists")
	case errors.Is(err, identityapp.ErrInvalidCredentials):
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Invalid email or password")
	case errors.Is(err, syncapp.ErrReconnectionRequired):
		h.ErrorWithCode(c, dto.ErrCodeReconnectionRequired, "Marketplace account requires reconnection")
	case errors.Is(err, syncapp.ErrRefreshUnavailable),
		errors.Is(err, marketplace.ErrPlatformUnavailable):
		h.ErrorWithCode(c, dto.ErrCodePlatformUnavailable, "Marketplace platform temporarily unavailable")
	case errors.Is(err, marketplace.ErrPlatformRateLimited):
		h.ErrorWithCode(c, dto.ErrCodeRateLimited, "Rate limited by marketplace platform")
	default:
		h.InternalError(c, "Internal server error")
	}
}

package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	syncapp "github.com/vendaflow/backend/internal/application/sync"
	"github.com/vendaflow/backend/internal/infrastructure/notify"
)

const defaultSyncWindow = 30 * 24 * time.Hour

// SyncHandler launches background sales syncs and streams their progress
// over Server-Sent Events
type SyncHandler struct {
	BaseHandler
	launcher  *syncapp.Launcher
	registry  *notify.Registry
	logger    *zap.Logger
	heartbeat time.Duration
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(launcher *syncapp.Launcher, registry *notify.Registry, logger *zap.Logger, heartbeat time.Duration) *SyncHandler {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &SyncHandler{launcher: launcher, registry: registry, logger: logger, heartbeat: heartbeat}
}

// LaunchSyncRequest selects which accounts and period to synchronize.
// Empty account_ids means every connected account.
type LaunchSyncRequest struct {
	AccountIDs []string `json:"account_ids" binding:"omitempty,dive,uuid"`
	From       string   `json:"from" binding:"omitempty,datetime=2006-01-02"`
	To         string   `json:"to" binding:"omitempty,datetime=2006-01-02"`
}

// Launch starts a sales sync in the background and answers immediately.
// Progress arrives on the events stream.
func (h *SyncHandler) Launch(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session is missing or invalid")
		return
	}

	var req LaunchSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		h.BadRequest(c, err.Error())
		return
	}

	accountIDs := make([]uuid.UUID, 0, len(req.AccountIDs))
	for _, raw := range req.AccountIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid account ID format")
			return
		}
		accountIDs = append(accountIDs, id)
	}

	from, to, err := resolveSyncWindow(req.From, req.To)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	summary, err := h.launcher.Launch(c.Request.Context(), userID, accountIDs, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, summary)
}

// resolveSyncWindow fills in the default last-30-days period
func resolveSyncWindow(fromRaw, toRaw string) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.Add(-defaultSyncWindow)
	to := now

	if fromRaw != "" {
		parsed, err := time.Parse("2006-01-02", fromRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date: %v", err)
		}
		from = parsed
	}
	if toRaw != "" {
		parsed, err := time.Parse("2006-01-02", toRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date: %v", err)
		}
		// end of day, the filter is inclusive
		to = parsed.Add(24*time.Hour - time.Second)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("from must precede to")
	}
	return from, to, nil
}

// Stream subscribes the caller to their sync progress events.
// EventSource cannot set headers, so RequireSession also accepts the
// session token as a query parameter on this route.
func (h *SyncHandler) Stream(c *gin.Context) {
	userID, err := sessionUserID(c)
	if err != nil {
		h.Unauthorized(c, "Session is missing or invalid")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	conn := h.registry.Register(userID.String())
	defer h.registry.Unregister(conn.ID)

	h.logger.Info("progress stream opened",
		zap.String("connection_id", conn.ID),
		zap.String("user_id", conn.UserID))

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("progress stream closed by client",
				zap.String("connection_id", conn.ID))
			return
		case <-heartbeat.C:
			fmt.Fprintf(c.Writer, ": heartbeat %d\n\n", time.Now().Unix())
			c.Writer.Flush()
		case event, ok := <-conn.Events:
			if !ok {
				return
			}
			writeEvent(c.Writer, event)
			c.Writer.Flush()
		}
	}
}

// writeEvent renders one event in SSE wire format
func writeEvent(w io.Writer, event notify.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\n", event.Type)
	fmt.Fprintf(w, "data: %s\n\n", payload)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	syncapp "github.com/vendaflow/backend/internal/application/sync"
	"github.com/vendaflow/backend/internal/domain/marketplace"
	"github.com/vendaflow/backend/internal/infrastructure/auth"
	"github.com/vendaflow/backend/internal/infrastructure/notify"
	"github.com/vendaflow/backend/internal/interfaces/http/middleware"
)

type syncTestEnv struct {
	engine   *gin.Engine
	sessions *auth.SessionService
	accounts *mockAccountRepo
	registry *notify.Registry
}

func newSyncTestEnv(t *testing.T) *syncTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	accounts := newMockAccountRepo()
	registry := notify.NewRegistry()
	platforms := &mockPlatformRegistry{platforms: map[marketplace.PlatformCode]marketplace.Platform{
		marketplace.PlatformCodeMeli: &mockPlatform{code: marketplace.PlatformCodeMeli},
	}}
	tokens := syncapp.NewTokenService(accounts, platforms, newMockStatusStore(), zap.NewNop())
	worker := syncapp.NewWorker(platforms, nil, tokens, registry, zap.NewNop())
	launcher := syncapp.NewLauncher(accounts, worker, registry, zap.NewNop())

	sessions := newTestSessionService()
	h := NewSyncHandler(launcher, registry, zap.NewNop(), 10*time.Millisecond)

	engine := gin.New()
	group := engine.Group("/api/v1/sync")
	group.Use(middleware.RequireSession(sessions))
	group.POST("", h.Launch)
	group.GET("/events", h.Stream)

	return &syncTestEnv{engine: engine, sessions: sessions, accounts: accounts, registry: registry}
}

func (env *syncTestEnv) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, _, err := env.sessions.Issue(userID.String(), "user@loja.com.br", "Usuária")
	require.NoError(t, err)
	return token
}

func TestSyncHandler_Launch(t *testing.T) {
	t.Run("accepts a run for all accounts with an empty body", func(t *testing.T) {
		env := newSyncTestEnv(t)
		userID := uuid.New()
		accountID := uuid.New()
		env.accounts.accounts[accountID] = &marketplace.Account{
			ID:           accountID,
			UserID:       userID,
			PlatformCode: marketplace.PlatformCodeMeli,
			Nickname:     "LOJA TESTE",
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresAt:    time.Now().Add(6 * time.Hour),
		}

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/sync", nil)
		req.Header.Set("Authorization", "Bearer "+env.token(t, userID))
		env.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]any)
		assert.Equal(t, true, data["accepted"])
		launched := data["accounts"].([]any)
		require.Len(t, launched, 1)
		assert.Equal(t, "LOJA TESTE", launched[0].(map[string]any)["nickname"])
	})

	t.Run("nothing to synchronize is refused without starting work", func(t *testing.T) {
		env := newSyncTestEnv(t)
		userID := uuid.New()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/sync", nil)
		req.Header.Set("Authorization", "Bearer "+env.token(t, userID))
		env.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, false, data["accepted"])
	})

	t.Run("rejects a malformed account id", func(t *testing.T) {
		env := newSyncTestEnv(t)
		userID := uuid.New()

		body, _ := json.Marshal(map[string]any{"account_ids": []string{"not-a-uuid"}})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/sync", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+env.token(t, userID))
		env.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects an inverted period", func(t *testing.T) {
		env := newSyncTestEnv(t)
		userID := uuid.New()

		body, _ := json.Marshal(map[string]any{"from": "2026-08-10", "to": "2026-08-01"})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/sync", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+env.token(t, userID))
		env.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("requires a session", func(t *testing.T) {
		env := newSyncTestEnv(t)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/sync", nil)
		env.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSyncHandler_Stream(t *testing.T) {
	t.Run("delivers the connected event and published progress", func(t *testing.T) {
		env := newSyncTestEnv(t)
		userID := uuid.New()

		ctx, cancel := context.WithCancel(context.Background())
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "/api/v1/sync/events", nil)
		// EventSource cannot set headers, the token travels as a query param
		q := req.URL.Query()
		q.Set("token", env.token(t, userID))
		req.URL.RawQuery = q.Encode()

		w := httptest.NewRecorder()
		done := make(chan struct{})
		go func() {
			env.engine.ServeHTTP(w, req)
			close(done)
		}()

		require.Eventually(t, func() bool {
			return env.registry.ConnectionCount(userID.String()) == 1
		}, time.Second, 5*time.Millisecond)

		env.registry.Publish(userID.String(),
			notify.NewEvent(notify.EventSyncProgress, "Sincronizando conta LOJA TESTE"))

		// give the stream loop time to drain the event before disconnecting
		time.Sleep(50 * time.Millisecond)
		cancel()
		<-done

		body := w.Body.String()
		assert.Contains(t, body, "event: connected")
		assert.Contains(t, body, "event: sync_progress")
		assert.Contains(t, body, "Sincronizando conta LOJA TESTE")
		assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	})

	t.Run("unregisters the connection when the client goes away", func(t *testing.T) {
		env := newSyncTestEnv(t)
		userID := uuid.New()

		ctx, cancel := context.WithCancel(context.Background())
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "/api/v1/sync/events?token="+env.token(t, userID), nil)

		done := make(chan struct{})
		go func() {
			env.engine.ServeHTTP(httptest.NewRecorder(), req)
			close(done)
		}()

		require.Eventually(t, func() bool {
			return env.registry.ConnectionCount(userID.String()) == 1
		}, time.Second, 5*time.Millisecond)

		cancel()
		<-done
		assert.Equal(t, 0, env.registry.ConnectionCount(userID.String()))
	})
}

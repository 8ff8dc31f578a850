package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vendaflow/backend/internal/domain/marketplace"
	"github.com/vendaflow/backend/internal/infrastructure/notify"
)

const defaultRunTimeout = 15 * time.Minute

// LaunchAccount identifies one account included in an accepted run
type LaunchAccount struct {
	ID             string `json:"id"`
	Nickname       string `json:"nickname"`
	ExternalUserID string `json:"external_user_id"`
}

// LaunchSummary is returned to the caller immediately, before the run ends
type LaunchSummary struct {
	Accepted bool            `json:"accepted"`
	Message  string          `json:"message"`
	Accounts []LaunchAccount `json:"accounts"`
	From     time.Time       `json:"from"`
	To       time.Time       `json:"to"`
}

// Launcher starts synchronization runs in-process. The HTTP handler returns
// as soon as the run is accepted; progress flows through the notify registry
// while the worker runs on a detached context, so client disconnects never
// cancel a sync.
type Launcher struct {
	accounts   marketplace.AccountRepository
	worker     *Worker
	registry   *notify.Registry
	logger     *zap.Logger
	runTimeout time.Duration
}

// LauncherOption configures the launcher
type LauncherOption func(*Launcher)

// WithRunTimeout caps how long a background run may take
func WithRunTimeout(timeout time.Duration) LauncherOption {
	return func(l *Launcher) {
		if timeout > 0 {
			l.runTimeout = timeout
		}
	}
}

// NewLauncher creates a launcher
func NewLauncher(
	accounts marketplace.AccountRepository,
	worker *Worker,
	registry *notify.Registry,
	logger *zap.Logger,
	opts ...LauncherOption,
) *Launcher {
	l := &Launcher{
		accounts:   accounts,
		worker:     worker,
		registry:   registry,
		logger:     logger,
		runTimeout: defaultRunTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch resolves the user's accounts and spawns the run. When accountIDs is
// empty every connected account of the user is synchronized; ids the user
// does not own are silently dropped by the ownership-scoped lookup. A launch
// that resolves to zero accounts is refused and starts no work.
func (l *Launcher) Launch(ctx context.Context, userID uuid.UUID, accountIDs []uuid.UUID, from, to time.Time) (*LaunchSummary, error) {
	var (
		accounts []marketplace.Account
		err      error
	)
	if len(accountIDs) == 0 {
		accounts, err = l.accounts.FindAllForUser(ctx, userID)
	} else {
		accounts, err = l.accounts.FindByIDsForUser(ctx, userID, accountIDs)
	}
	if err != nil {
		return nil, err
	}

	summary := &LaunchSummary{From: from, To: to}
	if len(accounts) == 0 {
		summary.Message = "Nenhuma conta conectada para sincronizar"
		return summary, nil
	}

	summary.Accepted = true
	summary.Message = "Sincronização iniciada"
	for _, a := range accounts {
		summary.Accounts = append(summary.Accounts, LaunchAccount{
			ID:             a.ID.String(),
			Nickname:       a.Nickname,
			ExternalUserID: a.ExternalUserID,
		})
	}

	go l.run(userID, accounts, from, to)
	return summary, nil
}

// run executes the worker on a context detached from the HTTP request.
// A panic in one run must not take the server down.
func (l *Launcher) run(userID uuid.UUID, accounts []marketplace.Account, from, to time.Time) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("sync run panicked",
				zap.String("user_id", userID.String()),
				zap.Any("panic", r))
			l.registry.Publish(userID.String(),
				notify.NewEvent(notify.EventSyncWarning, "Sincronização interrompida por erro interno"))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), l.runTimeout)
	defer cancel()

	l.worker.Run(ctx, userID, accounts, from, to)
}

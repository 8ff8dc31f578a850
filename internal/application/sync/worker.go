package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vendaflow/backend/internal/domain/marketplace"
	"github.com/vendaflow/backend/internal/domain/sales"
	"github.com/vendaflow/backend/internal/domain/shared"
	"github.com/vendaflow/backend/internal/infrastructure/notify"
)

const defaultPageSize = 50

// AccountResult summarizes one account's pass through the sync run
type AccountResult struct {
	AccountID uuid.UUID
	Nickname  string
	Platform  marketplace.PlatformCode
	Persisted int
	Skipped   int
	Failed    int
	Err       error
}

// RunResult summarizes a whole sync run
type RunResult struct {
	UserID     uuid.UUID
	Accounts   []AccountResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// Persisted totals the orders stored across every account
func (r *RunResult) Persisted() int {
	n := 0
	for _, a := range r.Accounts {
		n += a.Persisted
	}
	return n
}

// Failed reports whether every account in the run failed outright
func (r *RunResult) Failed() bool {
	if len(r.Accounts) == 0 {
		return false
	}
	for _, a := range r.Accounts {
		if a.Err == nil {
			return false
		}
	}
	return true
}

// Worker executes one synchronization run: for each connected account it
// renews the token when needed, pulls the order pages for the window,
// reconciles the freight of every order and upserts the result. One failing
// account never aborts the others.
type Worker struct {
	platforms marketplace.PlatformRegistry
	sales     sales.Repository
	tokens    *TokenService
	registry  *notify.Registry
	logger    *zap.Logger
	pageSize  int
}

// WorkerOption configures the worker
type WorkerOption func(*Worker)

// WithPageSize sets how many orders each platform page request asks for
func WithPageSize(size int) WorkerOption {
	return func(w *Worker) {
		if size > 0 {
			w.pageSize = size
		}
	}
}

// NewWorker creates a sync worker
func NewWorker(
	platforms marketplace.PlatformRegistry,
	salesRepo sales.Repository,
	tokens *TokenService,
	registry *notify.Registry,
	logger *zap.Logger,
	opts ...WorkerOption,
) *Worker {
	w := &Worker{
		platforms: platforms,
		sales:     salesRepo,
		tokens:    tokens,
		registry:  registry,
		logger:    logger,
		pageSize:  defaultPageSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run synchronizes the given accounts for the [from, to) window and streams
// progress to the user's open event streams.
func (w *Worker) Run(ctx context.Context, userID uuid.UUID, accounts []marketplace.Account, from, to time.Time) *RunResult {
	result := &RunResult{UserID: userID, StartedAt: time.Now()}
	uid := userID.String()

	w.publish(uid, notify.EventSyncStart,
		fmt.Sprintf("Sincronizando %d conta(s)", len(accounts)), "", 0, 0)

	for i := range accounts {
		account := &accounts[i]
		ar := w.syncAccount(ctx, uid, account, from, to)
		result.Accounts = append(result.Accounts, ar)

		if ar.Err != nil {
			w.publish(uid, notify.EventSyncWarning,
				fmt.Sprintf("Conta %s: %s", account.Nickname, warningMessage(ar.Err)),
				account.Nickname, ar.Persisted, 0)
		}
	}

	result.FinishedAt = time.Now()
	w.publish(uid, notify.EventSyncComplete,
		fmt.Sprintf("Sincronização concluída: %d venda(s) atualizadas", result.Persisted()),
		"", result.Persisted(), 0)

	w.logger.Info("sync run finished",
		zap.String("user_id", uid),
		zap.Int("accounts", len(result.Accounts)),
		zap.Int("persisted", result.Persisted()),
		zap.Duration("elapsed", result.FinishedAt.Sub(result.StartedAt)))
	return result
}

func (w *Worker) syncAccount(ctx context.Context, uid string, account *marketplace.Account, from, to time.Time) AccountResult {
	ar := AccountResult{
		AccountID: account.ID,
		Nickname:  account.Nickname,
		Platform:  account.PlatformCode,
	}

	if !account.IsUsable() {
		ar.Err = ErrReconnectionRequired
		return ar
	}

	if err := w.tokens.EnsureFresh(ctx, account); err != nil {
		ar.Err = err
		return ar
	}

	platform, err := w.platforms.GetPlatform(account.PlatformCode)
	if err != nil {
		ar.Err = err
		return ar
	}

	w.publish(uid, notify.EventSyncProgress,
		fmt.Sprintf("Buscando vendas de %s", account.Nickname),
		account.Nickname, 0, 0)

	offset := 0
	for {
		select {
		case <-ctx.Done():
			ar.Err = ctx.Err()
			return ar
		default:
		}

		page, err := platform.PullOrders(ctx, &marketplace.OrderPullRequest{
			Account:  account,
			From:     from,
			To:       to,
			Offset:   offset,
			PageSize: w.pageSize,
		})
		if err != nil {
			// Partial results stand; the warning tells the user the rest
			// is missing.
			ar.Err = err
			return ar
		}

		for j := range page.Orders {
			if err := w.persistOrder(ctx, account, &page.Orders[j], &ar); err != nil {
				ar.Failed++
				w.logger.Error("failed to persist order",
					zap.String("order_id", page.Orders[j].OrderID),
					zap.String("account_id", account.ID.String()),
					zap.Error(err))
			}
		}

		w.publish(uid, notify.EventSyncProgress,
			fmt.Sprintf("%s: %d venda(s) processadas", account.Nickname, ar.Persisted+ar.Skipped),
			account.Nickname, ar.Persisted+ar.Skipped, page.Total)

		if !page.HasMore {
			return ar
		}
		offset = page.NextOffset
	}
}

// persistOrder reconciles the freight of one pulled order and upserts it.
// Orders with no usable freight cost keep whatever freight value a previous
// run stored.
func (w *Worker) persistOrder(ctx context.Context, account *marketplace.Account, order *marketplace.Order, ar *AccountResult) error {
	sale := &sales.Sale{
		ID:           uuid.New(),
		UserID:       account.UserID,
		AccountID:    account.ID,
		PlatformCode: account.PlatformCode,
		OrderID:      order.OrderID,
		Status:       order.Status,
		Title:        order.Title,
		SKU:          order.SKU,
		Buyer:        order.Buyer,
		ListingType:  order.ListingType,
		Quantity:     order.Quantity,
		UnitPrice:    decimal.NewFromFloat(order.UnitPrice),
		TotalValue:   decimal.NewFromFloat(order.TotalValue),
		PlatformFee:  decimal.NewFromFloat(order.PlatformFee),
		RawPayload:   order.RawPayload,
		SaleDate:     order.SaleDate,
	}
	if order.Freight != nil {
		sale.LogisticType = order.Freight.LogisticType
		sale.ShippingMode = order.Freight.ShippingMode
	}

	freight, ok := sales.ComputeFreight(order.Freight, order.UnitPrice)
	if ok {
		sale.Freight = freight
	} else {
		sale.FreightSkipped = true
		ar.Skipped++
	}

	if err := w.sales.Upsert(ctx, sale); err != nil {
		return err
	}
	if ok {
		ar.Persisted++
	}
	return nil
}

func (w *Worker) publish(uid, eventType, message, account string, processed, total int) {
	event := notify.NewEvent(eventType, message)
	event.Account = account
	event.Processed = processed
	event.Total = total
	w.registry.Publish(uid, event)
}

func warningMessage(err error) string {
	switch {
	case errors.Is(err, ErrReconnectionRequired):
		return "conta precisa ser reconectada"
	case errors.Is(err, marketplace.ErrPlatformRateLimited):
		return "limite de requisições atingido, tente novamente em instantes"
	case errors.Is(err, marketplace.ErrPlatformUnavailable), errors.Is(err, ErrRefreshUnavailable):
		return "plataforma indisponível no momento"
	case errors.Is(err, shared.ErrNotFound):
		return "conta não encontrada"
	default:
		return "falha ao sincronizar"
	}
}

// Package services provides business logic and orchestration over the
// transaction store, the report functions, and the sync pipeline.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/cache"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/store"
)

const snapshotKey = "transactions:all"

// SyncPublisher hands a transaction change to the export pipeline.
// *amqp.Client satisfies it; a nil publisher disables sync.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id int64, op string) error
}

// ChangeNotifier pushes a change notification to connected browsers.
type ChangeNotifier interface {
	NotifyTransactionChange(op string, id int64)
}

// TransactionService orchestrates transaction reads and writes. Reads go
// through a short-lived snapshot cache; every write invalidates it, so the
// dashboard never serves a stale total after a save.
type TransactionService struct {
	store     store.TransactionStore
	snapshot  *cache.TTLCache[[]core.Transaction]
	publisher SyncPublisher
	notifier  ChangeNotifier
}

func NewTransactionService(s store.TransactionStore, publisher SyncPublisher, notifier ChangeNotifier) *TransactionService {
	return &TransactionService{
		store:     s,
		snapshot:  cache.New[[]core.Transaction](30 * time.Second),
		publisher: publisher,
		notifier:  notifier,
	}
}

// GetAll returns every transaction, newest date first.
func (s *TransactionService) GetAll(ctx context.Context) ([]core.Transaction, error) {
	return s.load(ctx)
}

// GetByType returns transactions matching t, or everything when t is empty.
func (s *TransactionService) GetByType(ctx context.Context, t core.TransactionType) ([]core.Transaction, error) {
	txs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return core.FilterByType(txs, t), nil
}

// GetRecent returns the first limit transactions of the snapshot order.
func (s *TransactionService) GetRecent(ctx context.Context, limit int) ([]core.Transaction, error) {
	txs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return core.Recent(txs, limit), nil
}

// GetByID fetches one transaction. Returns store.ErrNotFound when absent.
func (s *TransactionService) GetByID(ctx context.Context, id int64) (core.Transaction, error) {
	return s.store.Get(ctx, id)
}

// Save validates and persists t, then publishes a sync message. Publish
// failures are logged, never surfaced: the local write already succeeded.
func (s *TransactionService) Save(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.Save(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}
	s.snapshot.Clear()

	s.publish(ctx, id, amqp.OpSaved)
	s.notify(amqp.OpSaved, id)

	return id, nil
}

// Delete removes a transaction. Deleting an unknown id is a no-op.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.snapshot.Clear()

	s.publish(ctx, id, amqp.OpDeleted)
	s.notify(amqp.OpDeleted, id)

	return nil
}

// TotalIncome sums all income transactions.
func (s *TransactionService) TotalIncome(ctx context.Context) (core.Money, error) {
	return s.totalByType(ctx, core.Income)
}

// TotalExpenses sums all expense transactions.
func (s *TransactionService) TotalExpenses(ctx context.Context) (core.Money, error) {
	return s.totalByType(ctx, core.Expense)
}

// Balance is total income minus total expenses.
func (s *TransactionService) Balance(ctx context.Context) (core.Money, error) {
	txs, err := s.load(ctx)
	if err != nil {
		return core.Money{}, err
	}
	return core.TotalByType(txs, core.Income).Sub(core.TotalByType(txs, core.Expense)), nil
}

// MonthlyIncome sums income dated within month.
func (s *TransactionService) MonthlyIncome(ctx context.Context, month core.YearMonth) (core.Money, error) {
	return s.monthlyTotalByType(ctx, month, core.Income)
}

// MonthlyExpenses sums expenses dated within month.
func (s *TransactionService) MonthlyExpenses(ctx context.Context, month core.YearMonth) (core.Money, error) {
	return s.monthlyTotalByType(ctx, month, core.Expense)
}

// TopExpenseCategories ranks the month's expense categories by total spent.
func (s *TransactionService) TopExpenseCategories(ctx context.Context, month core.YearMonth, limit int) ([]core.CategoryTotal, error) {
	txs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return core.TopExpenseCategories(txs, month, limit), nil
}

func (s *TransactionService) totalByType(ctx context.Context, t core.TransactionType) (core.Money, error) {
	txs, err := s.load(ctx)
	if err != nil {
		return core.Money{}, err
	}
	return core.TotalByType(txs, t), nil
}

func (s *TransactionService) monthlyTotalByType(ctx context.Context, month core.YearMonth, t core.TransactionType) (core.Money, error) {
	txs, err := s.load(ctx)
	if err != nil {
		return core.Money{}, err
	}
	return core.MonthlyTotalByType(txs, month, t), nil
}

func (s *TransactionService) load(ctx context.Context) ([]core.Transaction, error) {
	if txs, ok := s.snapshot.Get(snapshotKey); ok {
		return txs, nil
	}

	txs, err := s.store.ListAllByDateDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	s.snapshot.Set(snapshotKey, txs)
	return txs, nil
}

func (s *TransactionService) publish(ctx context.Context, id int64, op string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id, op); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "op", op, "error", err)
	}
}

func (s *TransactionService) notify(op string, id int64) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyTransactionChange(op, id)
}

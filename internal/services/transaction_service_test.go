package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/store"
	"budgetbuddy/internal/store/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	fail   bool
}

func (p *recordingPublisher) PublishTransactionSync(_ context.Context, id int64, op string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	p.events = append(p.events, op)
	return nil
}

func newService(t *testing.T) (*TransactionService, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	return NewTransactionService(memory.New(), pub, nil), pub
}

func mustSave(t *testing.T, svc *TransactionService, tx core.Transaction) int64 {
	t.Helper()
	id, err := svc.Save(context.Background(), tx)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return id
}

func TestSaveAndGetByID(t *testing.T) {
	svc, pub := newService(t)

	id := mustSave(t, svc, core.Transaction{
		Name:     "Salary",
		Amount:   core.Money{Cents: 250000},
		Type:     core.Income,
		Category: "Work",
		Date:     core.NewDate(2025, 12, 1),
	})

	got, err := svc.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "Salary" || got.Amount.Cents != 250000 {
		t.Errorf("GetByID() = %+v", got)
	}

	if len(pub.events) != 1 || pub.events[0] != "saved" {
		t.Errorf("published events = %v, want [saved]", pub.events)
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	svc, pub := newService(t)

	_, err := svc.Save(context.Background(), core.Transaction{
		Name:   "",
		Amount: core.Money{Cents: 100},
		Type:   core.Expense,
	})
	if !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("Save() error = %v, want ErrEmptyName", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("invalid save published events: %v", pub.events)
	}
}

func TestPublishFailureDoesNotFailSave(t *testing.T) {
	pub := &recordingPublisher{fail: true}
	svc := NewTransactionService(memory.New(), pub, nil)

	id, err := svc.Save(context.Background(), core.Transaction{
		Name:   "Groceries",
		Amount: core.Money{Cents: 4500},
		Type:   core.Expense,
	})
	if err != nil {
		t.Fatalf("Save() error = %v, want nil despite publish failure", err)
	}

	if _, err := svc.GetByID(context.Background(), id); err != nil {
		t.Errorf("GetByID() after failed publish error = %v", err)
	}
}

func TestDeletePublishesAndToleratesUnknownID(t *testing.T) {
	svc, pub := newService(t)
	id := mustSave(t, svc, core.Transaction{Name: "Rent", Amount: core.Money{Cents: 90000}, Type: core.Expense})

	if err := svc.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.GetByID(context.Background(), id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	if err := svc.Delete(context.Background(), 9999); err != nil {
		t.Errorf("Delete(unknown) error = %v, want nil", err)
	}

	if len(pub.events) != 3 {
		t.Errorf("published events = %v, want saved + 2 deleted", pub.events)
	}
}

func TestTotalsAndBalance(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	mustSave(t, svc, core.Transaction{Name: "Salary", Amount: core.Money{Cents: 300000}, Type: core.Income, Date: core.NewDate(2025, 12, 1)})
	mustSave(t, svc, core.Transaction{Name: "Rent", Amount: core.Money{Cents: 120000}, Type: core.Expense, Date: core.NewDate(2025, 12, 2)})
	mustSave(t, svc, core.Transaction{Name: "Old bill", Amount: core.Money{Cents: 5000}, Type: core.Expense, Date: core.NewDate(2025, 11, 10)})

	income, err := svc.TotalIncome(ctx)
	if err != nil {
		t.Fatalf("TotalIncome() error = %v", err)
	}
	if income.Cents != 300000 {
		t.Errorf("TotalIncome() = %d, want 300000", income.Cents)
	}

	expenses, err := svc.TotalExpenses(ctx)
	if err != nil {
		t.Fatalf("TotalExpenses() error = %v", err)
	}
	if expenses.Cents != 125000 {
		t.Errorf("TotalExpenses() = %d, want 125000", expenses.Cents)
	}

	balance, err := svc.Balance(ctx)
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if balance.Cents != 175000 {
		t.Errorf("Balance() = %d, want 175000", balance.Cents)
	}

	dec := core.YearMonth{Year: 2025, Month: 12}
	monthly, err := svc.MonthlyExpenses(ctx, dec)
	if err != nil {
		t.Fatalf("MonthlyExpenses() error = %v", err)
	}
	if monthly.Cents != 120000 {
		t.Errorf("MonthlyExpenses(Dec) = %d, want 120000", monthly.Cents)
	}
}

func TestSnapshotInvalidatedOnWrite(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	mustSave(t, svc, core.Transaction{Name: "A", Amount: core.Money{Cents: 1000}, Type: core.Expense})

	// Prime the cache.
	if _, err := svc.GetAll(ctx); err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}

	mustSave(t, svc, core.Transaction{Name: "B", Amount: core.Money{Cents: 2000}, Type: core.Expense})

	txs, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(txs) != 2 {
		t.Errorf("GetAll() after save = %d transactions, want 2", len(txs))
	}
}

func TestGetByTypeAndRecent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	mustSave(t, svc, core.Transaction{Name: "Salary", Amount: core.Money{Cents: 300000}, Type: core.Income, Date: core.NewDate(2025, 12, 1)})
	mustSave(t, svc, core.Transaction{Name: "Rent", Amount: core.Money{Cents: 120000}, Type: core.Expense, Date: core.NewDate(2025, 12, 2)})

	expenses, err := svc.GetByType(ctx, core.Expense)
	if err != nil {
		t.Fatalf("GetByType() error = %v", err)
	}
	if len(expenses) != 1 || expenses[0].Name != "Rent" {
		t.Errorf("GetByType(Expense) = %+v", expenses)
	}

	all, err := svc.GetByType(ctx, "")
	if err != nil {
		t.Fatalf("GetByType(blank) error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("GetByType(blank) = %d transactions, want 2", len(all))
	}

	recent, err := svc.GetRecent(ctx, 1)
	if err != nil {
		t.Fatalf("GetRecent() error = %v", err)
	}
	if len(recent) != 1 || recent[0].Name != "Rent" {
		t.Errorf("GetRecent(1) = %+v, want newest first", recent)
	}
}

package memory

import (
	"context"
	"errors"
	"testing"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/store"
)

func TestSaveAssignsIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	id1, err := s.Save(ctx, core.Transaction{Name: "a", Type: core.Expense})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	id2, _ := s.Save(ctx, core.Transaction{Name: "b", Type: core.Expense})
	if id1 == id2 {
		t.Fatalf("ids not unique: %d", id1)
	}
}

func TestSaveReplaceRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.Save(ctx, core.Transaction{Name: "coffee", Amount: core.Money{Cents: 450}, Type: core.Expense})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// Replace with a changed amount; the id must survive.
	replaced := core.Transaction{ID: id, Name: "coffee", Amount: core.Money{Cents: 500}, Type: core.Expense}
	rid, err := s.Save(ctx, replaced)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if rid != id {
		t.Fatalf("replace changed id: %d -> %d", id, rid)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount.Cents != 500 {
		t.Errorf("amount = %d, want 500", got.Amount.Cents)
	}
}

func TestSaveWithUnknownIDInserts(t *testing.T) {
	s := New()
	ctx := context.Background()

	// Upsert semantics: a nonzero id that does not exist is inserted.
	id, err := s.Save(ctx, core.Transaction{ID: 42, Name: "x", Type: core.Income})
	if err != nil || id != 42 {
		t.Fatalf("save = %d, %v", id, err)
	}
	if _, err := s.Get(ctx, 42); err != nil {
		t.Fatalf("get 42: %v", err)
	}

	// Fresh inserts must not collide with the explicit id.
	next, _ := s.Save(ctx, core.Transaction{Name: "y", Type: core.Income})
	if next == 42 {
		t.Error("id sequence collided with explicit id")
	}
}

func TestGetNotFound(t *testing.T) {
	s := New()
	if _, err := s.Get(context.Background(), 99); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	s := New()
	if err := s.Delete(context.Background(), 12345); err != nil {
		t.Errorf("delete missing: %v", err)
	}
}

func TestListAllByDateDescOrdering(t *testing.T) {
	s := New()
	ctx := context.Background()

	mid, _ := s.Save(ctx, core.Transaction{Name: "mid", Type: core.Expense, Date: core.NewDate(2025, 6, 15)})
	undated, _ := s.Save(ctx, core.Transaction{Name: "undated", Type: core.Expense})
	newest, _ := s.Save(ctx, core.Transaction{Name: "new", Type: core.Expense, Date: core.NewDate(2025, 12, 1)})
	// Same date as mid but inserted later: id descending breaks the tie.
	tied, _ := s.Save(ctx, core.Transaction{Name: "tied", Type: core.Expense, Date: core.NewDate(2025, 6, 15)})

	got, err := s.ListAllByDateDesc(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []int64{newest, tied, mid, undated}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("order[%d] = %d, want %d", i, got[i].ID, id)
		}
	}
}

func TestUserCredentials(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, core.User{Name: "Ada", Email: "ada@example.com", Password: "secret"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	u, err := s.FindByCredentials(ctx, "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if u.Name != "Ada" {
		t.Errorf("name = %q", u.Name)
	}

	// Exact, case-sensitive comparison on both fields.
	if _, err := s.FindByCredentials(ctx, "ada@example.com", "SECRET"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("wrong password: %v", err)
	}
	if _, err := s.FindByCredentials(ctx, "a@x.com", "secret"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown email: %v", err)
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, core.User{Name: "Ada", Email: "ada@example.com", Password: "a"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateUser(ctx, core.User{Name: "Eve", Email: "Ada@Example.com", Password: "b"}); !errors.Is(err, store.ErrDuplicateEmail) {
		t.Errorf("duplicate email: %v", err)
	}
}

// Package memory provides mutex-guarded in-memory stores, used as the
// default backend for development and in tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/store"
)

// Store implements store.TransactionStore and store.UserStore.
type Store struct {
	mu     sync.Mutex
	nextTx int64
	nextU  int64
	txs    map[int64]core.Transaction
	users  map[int64]core.User
}

var (
	_ store.TransactionStore = (*Store)(nil)
	_ store.UserStore        = (*Store)(nil)
)

func New() *Store {
	return &Store{
		nextTx: 1,
		nextU:  1,
		txs:    make(map[int64]core.Transaction),
		users:  make(map[int64]core.User),
	}
}

// Save upserts by id: id 0 assigns a fresh id, nonzero overwrites all fields
// (implicit insert when the id does not exist).
func (s *Store) Save(_ context.Context, t core.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		t.ID = s.nextTx
		s.nextTx++
	} else if t.ID >= s.nextTx {
		s.nextTx = t.ID + 1
	}
	s.txs[t.ID] = t
	return t.ID, nil
}

// Delete is an idempotent no-op on a missing id.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.txs, id)
	return nil
}

func (s *Store) Get(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, store.ErrNotFound
	}
	return t, nil
}

// ListAllByDateDesc returns every transaction ordered by date descending,
// absent dates last, ties by id descending.
func (s *Store) ListAllByDateDesc(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.txs))
	for _, t := range s.txs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Date.IsEmpty() != b.Date.IsEmpty():
			return !a.Date.IsEmpty()
		case !a.Date.IsEmpty() && !a.Date.Equal(b.Date.Time):
			return a.Date.After(b.Date.Time)
		default:
			return a.ID > b.ID
		}
	})
	return out, nil
}

// CreateUser enforces the same unique-email constraint the SQL schemas
// declare, so the duplicate-registration failure mode is identical across
// backends.
func (s *Store) CreateUser(_ context.Context, u core.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return 0, store.ErrDuplicateEmail
		}
	}
	u.ID = s.nextU
	s.nextU++
	s.users[u.ID] = u
	return u.ID, nil
}

func (s *Store) FindByCredentials(_ context.Context, email, password string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email && u.Password == password {
			return u, nil
		}
	}
	return core.User{}, store.ErrNotFound
}

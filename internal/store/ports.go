// Package store declares the persistence ports the rest of the application
// depends on. Implementations live in store/memory, storage (SQLite) and
// postgres.
package store

import (
	"context"
	"errors"
	"time"

	"budgetbuddy/internal/core"
)

var (
	// ErrNotFound is returned by point lookups when no record matches.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail surfaces the users.email uniqueness constraint.
	// Registration does not pre-check it, so callers see this only as a
	// failed insert.
	ErrDuplicateEmail = errors.New("email already registered")
)

type (
	// TransactionStore persists transactions with upsert-by-id save
	// semantics: a zero ID assigns a fresh one, a nonzero ID overwrites
	// every field of the existing record (or inserts it when missing).
	TransactionStore interface {
		// Save persists t and returns its id.
		Save(ctx context.Context, t core.Transaction) (int64, error)
		// Delete removes the record; deleting a missing id is a no-op.
		Delete(ctx context.Context, id int64) error
		// Get returns the record or ErrNotFound.
		Get(ctx context.Context, id int64) (core.Transaction, error)
		// ListAllByDateDesc returns every record ordered by date
		// descending. Records with an absent date sort last; ties are
		// broken by id descending.
		ListAllByDateDesc(ctx context.Context) ([]core.Transaction, error)
	}

	// ExportQueue tracks which rows still need mirroring to the
	// spreadsheet. Only the database-backed stores implement it.
	ExportQueue interface {
		// ListPendingExports returns unexported rows, oldest first.
		ListPendingExports(ctx context.Context, limit int) ([]PendingExport, error)
		// MarkExported flags a row as mirrored.
		MarkExported(ctx context.Context, id int64) error
	}

	// UserStore persists users. Email uniqueness is a storage constraint;
	// callers do not pre-check it and a violation surfaces as an error.
	UserStore interface {
		CreateUser(ctx context.Context, u core.User) (int64, error)
		// FindByCredentials matches email and password exactly (plain
		// text, case-sensitive) and returns ErrNotFound on no match.
		FindByCredentials(ctx context.Context, email, password string) (core.User, error)
	}
)

// PendingExport is the minimal row data the export worker queues on.
type PendingExport struct {
	ID        int64
	CreatedAt time.Time
}

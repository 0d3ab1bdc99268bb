// Package storage provides the SQLite-backed repository.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ store.TransactionStore = (*SQLiteRepository)(nil)
	_ store.UserStore        = (*SQLiteRepository)(nil)
	_ store.ExportQueue      = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save implements store.TransactionStore. A zero id inserts; a nonzero id
// upserts, overwriting every field. Saving resets the exported flag so the
// export worker picks the row up again.
func (r *SQLiteRepository) Save(ctx context.Context, t core.Transaction) (int64, error) {
	if t.ID == 0 {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO transactions (name, amount_cents, type, category, date, note, exported)
			 VALUES (?, ?, ?, ?, ?, ?, 0)`,
			t.Name, t.Amount.Cents, string(t.Type), nullable(t.Category), nullable(t.Date.String()), nullable(t.Note))
		if err != nil {
			return 0, fmt.Errorf("insert transaction: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("last insert id: %w", err)
		}
		slog.InfoContext(ctx, "Transaction saved", "id", id, "name", t.Name, "amount_cents", t.Amount.Cents)
		return id, nil
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, name, amount_cents, type, category, date, note, exported)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   amount_cents = excluded.amount_cents,
		   type = excluded.type,
		   category = excluded.category,
		   date = excluded.date,
		   note = excluded.note,
		   exported = 0`,
		t.ID, t.Name, t.Amount.Cents, string(t.Type), nullable(t.Category), nullable(t.Date.String()), nullable(t.Note))
	if err != nil {
		return 0, fmt.Errorf("upsert transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction replaced", "id", t.ID, "name", t.Name, "amount_cents", t.Amount.Cents)
	return t.ID, nil
}

// Delete implements store.TransactionStore; a missing id is a no-op.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, amount_cents, type, category, date, note
		 FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListAllByDateDesc returns every transaction ordered by date descending.
// "date IS NULL" sorts absent dates last; id DESC breaks ties.
func (r *SQLiteRepository) ListAllByDateDesc(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, amount_cents, type, category, date, note
		 FROM transactions
		 ORDER BY date IS NULL, date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// CreateUser implements store.UserStore. The unique index on email turns a
// duplicate registration into store.ErrDuplicateEmail.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password) VALUES (?, ?, ?)`,
		u.Name, u.Email, u.Password)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, store.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	slog.InfoContext(ctx, "User created", "id", id, "email", u.Email)
	return id, nil
}

// FindByCredentials matches email and password exactly. Passwords are stored
// and compared as plain text, mirroring the original schema.
func (r *SQLiteRepository) FindByCredentials(ctx context.Context, email, password string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password FROM users WHERE email = ? AND password = ?`,
		email, password).Scan(&u.ID, &u.Name, &u.Email, &u.Password)
	if err == sql.ErrNoRows {
		return core.User{}, store.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("find user by credentials: %w", err)
	}
	return u, nil
}

// ListPendingExports returns transactions not yet exported, oldest first.
func (r *SQLiteRepository) ListPendingExports(ctx context.Context, limit int) ([]store.PendingExport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at FROM transactions WHERE exported = 0 ORDER BY id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending exports: %w", err)
	}
	defer rows.Close()

	var out []store.PendingExport
	for rows.Next() {
		var p store.PendingExport
		if err := rows.Scan(&p.ID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkExported flags a transaction as successfully exported.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE transactions SET exported = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as exported", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t        core.Transaction
		typ      string
		category sql.NullString
		date     sql.NullString
		note     sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Amount.Cents, &typ, &category, &date, &note); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	t.Category = category.String
	t.Note = note.String
	if date.Valid && date.String != "" {
		d, err := core.ParseDate(date.String)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", date.String, err)
		}
		t.Date = d
	}
	return t, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

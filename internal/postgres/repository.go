// Package postgres provides the PostgreSQL-backed repository, selected with
// DATA_BACKEND=postgres.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    amount_cents BIGINT NOT NULL DEFAULT 0,
    type TEXT NOT NULL,
    category TEXT,
    date DATE,
    note TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    exported BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_exported ON transactions(exported);
`

type Repository struct {
	pool *pgxpool.Pool
}

var (
	_ store.TransactionStore = (*Repository)(nil)
	_ store.UserStore        = (*Repository)(nil)
	_ store.ExportQueue      = (*Repository)(nil)
)

func NewRepository(ctx context.Context, databaseURL string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Save(ctx context.Context, t core.Transaction) (int64, error) {
	if t.ID == 0 {
		var id int64
		err := r.pool.QueryRow(ctx,
			`INSERT INTO transactions (name, amount_cents, type, category, date, note, exported)
			 VALUES ($1, $2, $3, $4, $5, $6, FALSE)
			 RETURNING id`,
			t.Name, t.Amount.Cents, string(t.Type), nullable(t.Category), dateArg(t.Date), nullable(t.Note)).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert transaction: %w", err)
		}
		slog.InfoContext(ctx, "Transaction saved", "id", id, "name", t.Name, "amount_cents", t.Amount.Cents)
		return id, nil
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO transactions (id, name, amount_cents, type, category, date, note, exported)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   amount_cents = EXCLUDED.amount_cents,
		   type = EXCLUDED.type,
		   category = EXCLUDED.category,
		   date = EXCLUDED.date,
		   note = EXCLUDED.note,
		   exported = FALSE`,
		t.ID, t.Name, t.Amount.Cents, string(t.Type), nullable(t.Category), dateArg(t.Date), nullable(t.Note))
	if err != nil {
		return 0, fmt.Errorf("upsert transaction: %w", err)
	}
	// An explicit-id insert bypasses the BIGSERIAL sequence; keep it at the
	// highest assigned id so later plain inserts never draw a taken id.
	if _, err := r.pool.Exec(ctx,
		`SELECT setval(pg_get_serial_sequence('transactions', 'id'),
		               GREATEST($1, (SELECT COALESCE(MAX(id), 1) FROM transactions)))`,
		t.ID); err != nil {
		return 0, fmt.Errorf("advance transaction id sequence: %w", err)
	}
	return t.ID, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, amount_cents, type, category, date, note
		 FROM transactions WHERE id = $1`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) ListAllByDateDesc(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, amount_cents, type, category, date, note
		 FROM transactions
		 ORDER BY date DESC NULLS LAST, id DESC`)
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

func (r *Repository) CreateUser(ctx context.Context, u core.User) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password) VALUES ($1, $2, $3) RETURNING id`,
		u.Name, u.Email, u.Password).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return 0, store.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (r *Repository) FindByCredentials(ctx context.Context, email, password string) (core.User, error) {
	var u core.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password FROM users WHERE email = $1 AND password = $2`,
		email, password).Scan(&u.ID, &u.Name, &u.Email, &u.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.User{}, store.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("find user by credentials: %w", err)
	}
	return u, nil
}

// ListPendingExports mirrors the SQLite repository for the export worker.
func (r *Repository) ListPendingExports(ctx context.Context, limit int) ([]store.PendingExport, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, created_at FROM transactions WHERE NOT exported ORDER BY id ASC LIMIT $1`, limit)
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

func (r *Repository) MarkExported(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `UPDATE transactions SET exported = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t        core.Transaction
		typ      string
		category *string
		date     *time.Time
		note     *string
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Amount.Cents, &typ, &category, &date, &note); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	if category != nil {
		t.Category = *category
	}
	if note != nil {
		t.Note = *note
	}
	if date != nil {
		t.Date = core.NewDate(date.Year(), int(date.Month()), date.Day())
	}
	return t, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func dateArg(d core.Date) any {
	if d.IsEmpty() {
		return nil
	}
	return d.Time
}

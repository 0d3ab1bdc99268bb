// Package export defines the outbound ports for mirroring transactions to an
// external spreadsheet.
package export

import (
	"context"

	"budgetbuddy/internal/core"
)

type (
	// RowAppender writes one transaction as a spreadsheet row.
	RowAppender interface {
		AppendTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// RowDeleter removes the row for a transaction id. Implementations may
	// treat a missing row as success.
	RowDeleter interface {
		DeleteTransactionRow(ctx context.Context, id int64) error
	}
)

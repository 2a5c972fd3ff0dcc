// Package sheets defines the spreadsheet mirror of the ledger.
package sheets

import (
	"context"

	"expenses/internal/core"
)

// Header is the first row of a mirror sheet.
var Header = []string{"Date", "Amount", "Category", "Notes"}

// Mirror keeps a spreadsheet copy of the ledger, one row per expense.
type Mirror interface {
	// Append adds a row for e.
	Append(ctx context.Context, e core.Expense) error
	// DeleteMatching removes the rows sharing e's value-tuple.
	DeleteMatching(ctx context.Context, e core.Expense) (int, error)
	// DeleteDate removes every row dated d.
	DeleteDate(ctx context.Context, d core.Date) (int, error)
}

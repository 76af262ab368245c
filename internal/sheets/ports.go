// Package sheets defines the spreadsheet mirror port.
package sheets

import (
	"context"

	"finboard/internal/core"
)

// RecordMirror keeps an external copy of the full admin view.
type RecordMirror interface {
	// ReplaceAll overwrites the mirror with records, in the given order.
	ReplaceAll(ctx context.Context, records []core.FinancialRecord) error
}

// Header is the first row written to every mirror.
var Header = []string{
	"Year-Month",
	"Total Income",
	"Total Expense",
	"Total Capital",
	"Investment Income",
	"Interest Rate",
	"Risk-Free Income",
	"Updated At",
}

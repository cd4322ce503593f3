// Package sheets exports expense rows to a spreadsheet.
package sheets

import (
	"context"

	"spendwise/internal/core"
)

// Header is the column layout of the export sheet.
var Header = []string{"Date", "Title", "Category", "Amount", "Description", "User"}

// ExpenseAppender appends one expense as a new row and returns a reference to
// the written range.
type ExpenseAppender interface {
	Append(ctx context.Context, userID string, e core.Expense) (rowRef string, err error)
}

// ExpenseRow renders e in Header order. Amounts use the two-decimal storage
// form so the sheet can sum them.
func ExpenseRow(userID string, e core.Expense) []string {
	return []string{
		e.Date.String(),
		e.Title,
		e.CategoryOrOther(),
		e.Amount.String(),
		e.Description,
		userID,
	}
}

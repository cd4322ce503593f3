package core

import (
	"fmt"
	"strings"
	"time"
)

type (
	// Expense is one spending entry owned by a single user.
	Expense struct {
		ID          string     `json:"id"`
		UserID      string     `json:"userId"`
		Title       string     `json:"title"`
		Amount      Money      `json:"amount"`
		Category    string     `json:"category"`
		Date        Date       `json:"date"`
		Description string     `json:"description,omitempty"`
		CreatedAt   time.Time  `json:"createdAt"`
		UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	}

	// ExpenseFields is the explicit set of user editable expense fields.
	// A nil pointer means "not supplied".
	ExpenseFields struct {
		Title       *string `json:"title,omitempty"`
		Amount      *Money  `json:"amount,omitempty"`
		Category    *string `json:"category,omitempty"`
		Date        *Date   `json:"date,omitempty"`
		Description *string `json:"description,omitempty"`
	}

	// Budget is a spending target for one category in one month.
	Budget struct {
		Key       string    `json:"key"`
		Category  string    `json:"category"`
		Amount    Money     `json:"amount"`
		Month     string    `json:"month"`
		CreatedAt time.Time `json:"createdAt"`
	}
)

// Validate checks the invariants every persisted expense must hold.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !IsCategory(e.Category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, e.Category)
	}
	return nil
}

// CategoryOrOther returns the category, defaulting to Other when missing.
func (e Expense) CategoryOrOther() string {
	if e.Category == "" {
		return CategoryOther
	}
	return e.Category
}

// Apply merges the supplied fields over e. Supplied fields always win.
func (f ExpenseFields) Apply(e Expense) Expense {
	if f.Title != nil {
		e.Title = strings.TrimSpace(*f.Title)
	}
	if f.Amount != nil {
		e.Amount = *f.Amount
	}
	if f.Category != nil {
		e.Category = *f.Category
		if e.Category == "" {
			e.Category = CategoryOther
		}
	}
	if f.Date != nil {
		e.Date = *f.Date
	}
	if f.Description != nil {
		e.Description = *f.Description
	}
	return e
}

// BudgetKey is the composite key that makes a budget unique per user.
func BudgetKey(category, month string) string {
	return category + "_" + month
}

func (b Budget) Validate() error {
	if !IsCategory(b.Category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, b.Category)
	}
	if err := ValidateMonth(b.Month); err != nil {
		return err
	}
	return b.Amount.Validate()
}

// Validate checks only the supplied fields, so a partial update can be
// rejected before anything is loaded or written.
func (f ExpenseFields) Validate() error {
	if f.Title != nil && strings.TrimSpace(*f.Title) == "" {
		return ErrEmptyTitle
	}
	if f.Amount != nil {
		if err := f.Amount.Validate(); err != nil {
			return err
		}
	}
	if f.Date != nil {
		if err := f.Date.Validate(); err != nil {
			return err
		}
	}
	if f.Category != nil {
		if _, err := NormalizeCategory(*f.Category); err != nil {
			return err
		}
	}
	return nil
}

// ValidateNew checks that the fields required to create an expense are present.
func (f ExpenseFields) ValidateNew() error {
	if f.Title == nil {
		return ErrEmptyTitle
	}
	if f.Amount == nil {
		return fmt.Errorf("%w: missing", ErrInvalidAmount)
	}
	if f.Date == nil {
		return fmt.Errorf("%w: missing", ErrInvalidDate)
	}
	return f.Validate()
}

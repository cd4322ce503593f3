package core

import (
	"fmt"
	"strings"
	"time"
)

// RecurrenceType is the period between two occurrences of a template.
type RecurrenceType string

const (
	Weekly    RecurrenceType = "weekly"
	Biweekly  RecurrenceType = "biweekly"
	Monthly   RecurrenceType = "monthly"
	Quarterly RecurrenceType = "quarterly"
	Yearly    RecurrenceType = "yearly"
)

// RecurrenceTypes lists the accepted periods in display order.
var RecurrenceTypes = []RecurrenceType{Weekly, Biweekly, Monthly, Quarterly, Yearly}

func (r RecurrenceType) Valid() bool {
	switch r {
	case Weekly, Biweekly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

// RecurringTemplate describes a charge that repeats on a schedule.
type RecurringTemplate struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Amount         Money          `json:"amount"`
	Category       string         `json:"category"`
	Description    string         `json:"description,omitempty"`
	RecurrenceType RecurrenceType `json:"recurrenceType"`
	StartDate      Date           `json:"startDate"`
	NextDueDate    Date           `json:"nextDueDate"`
	IsActive       bool           `json:"isActive"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      *time.Time     `json:"updatedAt,omitempty"`
}

func (t RecurringTemplate) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !IsCategory(t.Category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, t.Category)
	}
	if !t.RecurrenceType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecurrence, t.RecurrenceType)
	}
	if err := t.StartDate.Validate(); err != nil {
		return err
	}
	if t.NextDueDate.Before(t.StartDate) {
		return fmt.Errorf("%w: next due date before start date", ErrInvalidDate)
	}
	return nil
}

// TemplateFields is the partial update for a recurring template.
type TemplateFields struct {
	Title          *string         `json:"title,omitempty"`
	Amount         *Money          `json:"amount,omitempty"`
	Category       *string         `json:"category,omitempty"`
	Description    *string         `json:"description,omitempty"`
	RecurrenceType *RecurrenceType `json:"recurrenceType,omitempty"`
	StartDate      *Date           `json:"startDate,omitempty"`
	NextDueDate    *Date           `json:"nextDueDate,omitempty"`
	IsActive       *bool           `json:"isActive,omitempty"`
}

// Apply merges the supplied fields over t. Supplied fields always win.
func (f TemplateFields) Apply(t RecurringTemplate) RecurringTemplate {
	if f.Title != nil {
		t.Title = strings.TrimSpace(*f.Title)
	}
	if f.Amount != nil {
		t.Amount = *f.Amount
	}
	if f.Category != nil {
		t.Category = *f.Category
		if t.Category == "" {
			t.Category = CategoryOther
		}
	}
	if f.Description != nil {
		t.Description = *f.Description
	}
	if f.RecurrenceType != nil {
		t.RecurrenceType = *f.RecurrenceType
	}
	if f.StartDate != nil {
		t.StartDate = *f.StartDate
	}
	if f.NextDueDate != nil {
		t.NextDueDate = *f.NextDueDate
	}
	if f.IsActive != nil {
		t.IsActive = *f.IsActive
	}
	return t
}

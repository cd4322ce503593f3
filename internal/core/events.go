package core

import "time"

// EventKind names what happened to an expense.
type EventKind string

const (
	EventCreated      EventKind = "created"
	EventUpdated      EventKind = "updated"
	EventDeleted      EventKind = "deleted"
	EventMaterialized EventKind = "materialized"
)

// ExpenseEvent is emitted after a successful expense mutation.
type ExpenseEvent struct {
	Kind       EventKind `json:"kind"`
	UserID     string    `json:"userId"`
	Expense    Expense   `json:"expense"`
	TemplateID string    `json:"templateId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

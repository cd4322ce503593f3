// Package services implements the per-user repositories (expenses, budgets,
// recurring templates) on top of the key-value persistence adapter.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"spendwise/internal/analytics"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/storage"

	"github.com/google/uuid"
)

// EventPublisher receives an event after every successful expense mutation.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, event core.ExpenseEvent) error
}

// Invalidator drops anything derived from a user's expense list.
type Invalidator interface {
	InvalidateUser(userID string)
}

// ExpenseService is the expense repository. Every mutation loads the whole
// list stored under expenses_<userId>, changes it and writes it back.
type ExpenseService struct {
	store       storage.Store
	locks       *keyLocks
	publisher   EventPublisher
	invalidator Invalidator
	logger      *log.Logger
	now         func() time.Time
	newID       func() string
}

// ExpenseOption configures an ExpenseService.
type ExpenseOption func(*ExpenseService)

// WithPublisher publishes expense events; failures are only logged.
func WithPublisher(p EventPublisher) ExpenseOption {
	return func(s *ExpenseService) { s.publisher = p }
}

// WithInvalidator is told about every user whose list changed.
func WithInvalidator(i Invalidator) ExpenseOption {
	return func(s *ExpenseService) { s.invalidator = i }
}

func WithLogger(l *log.Logger) ExpenseOption {
	return func(s *ExpenseService) { s.logger = l.WithComponent(log.ComponentExpense) }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) ExpenseOption {
	return func(s *ExpenseService) { s.now = now }
}

func NewExpenseService(store storage.Store, opts ...ExpenseOption) *ExpenseService {
	s := &ExpenseService{
		store:  store,
		locks:  newKeyLocks(),
		logger: log.FromContext(context.Background()).WithComponent(log.ComponentExpense),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates fields and appends a new expense to the user's list.
// Invalid input never reaches the store.
func (s *ExpenseService) Create(ctx context.Context, userID string, fields core.ExpenseFields) (core.Expense, error) {
	return s.create(ctx, userID, fields, core.EventCreated, "")
}

func (s *ExpenseService) create(ctx context.Context, userID string, fields core.ExpenseFields, kind core.EventKind, templateID string) (core.Expense, error) {
	if err := fields.ValidateNew(); err != nil {
		return core.Expense{}, err
	}
	e := fields.Apply(core.Expense{
		ID:        s.newID(),
		UserID:    userID,
		Category:  core.CategoryOther,
		CreatedAt: s.now().UTC(),
	})
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	key := storage.ExpensesKey(userID)
	defer s.locks.lock(key)()

	list, err := s.load(ctx, userID)
	if err != nil {
		return core.Expense{}, err
	}
	list = append(list, e)
	if err := s.save(ctx, userID, list); err != nil {
		return core.Expense{}, err
	}

	s.logger.InfoContext(ctx, "Expense created",
		log.NewFields().WithUser(userID).WithExpense(e.ID, e.Amount.String(), e.Category).WithOperation(log.OpCreate).ToSlice()...)
	s.afterMutation(ctx, core.ExpenseEvent{Kind: kind, UserID: userID, Expense: e, TemplateID: templateID})
	return e, nil
}

// List returns the user's expenses in insertion order.
func (s *ExpenseService) List(ctx context.Context, userID string) ([]core.Expense, error) {
	return s.load(ctx, userID)
}

// Snapshot returns the user's expenses together with a version derived from
// the stored document. The version changes whenever any writer replaces the
// list, including other processes sharing the store.
func (s *ExpenseService) Snapshot(ctx context.Context, userID string) ([]core.Expense, string, error) {
	raw, ok, err := s.store.Get(ctx, storage.ExpensesKey(userID))
	if err != nil {
		return nil, "", fmt.Errorf("load expenses: %w", err)
	}
	var list []core.Expense
	if ok {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, "", fmt.Errorf("load expenses: decode: %w", err)
		}
	}
	sum := sha256.Sum256(raw)
	return list, hex.EncodeToString(sum[:]), nil
}

// Get returns the expense with id, reporting false when it does not exist.
func (s *ExpenseService) Get(ctx context.Context, userID, id string) (core.Expense, bool, error) {
	list, err := s.load(ctx, userID)
	if err != nil {
		return core.Expense{}, false, err
	}
	for _, e := range list {
		if e.ID == id {
			return e, true, nil
		}
	}
	return core.Expense{}, false, nil
}

// Filter loads the user's list and applies f.
func (s *ExpenseService) Filter(ctx context.Context, userID string, f analytics.Filter) ([]core.Expense, error) {
	list, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return analytics.Apply(list, f), nil
}

// Update merges fields over the stored expense, keeping CreatedAt and
// refreshing UpdatedAt. An unknown id is a no-op reported as found=false.
func (s *ExpenseService) Update(ctx context.Context, userID, id string, fields core.ExpenseFields) (core.Expense, bool, error) {
	if err := fields.Validate(); err != nil {
		return core.Expense{}, false, err
	}

	key := storage.ExpensesKey(userID)
	defer s.locks.lock(key)()

	list, err := s.load(ctx, userID)
	if err != nil {
		return core.Expense{}, false, err
	}
	idx := indexOf(list, id)
	if idx < 0 {
		return core.Expense{}, false, nil
	}

	updated := fields.Apply(list[idx])
	if err := updated.Validate(); err != nil {
		return core.Expense{}, false, err
	}
	now := s.now().UTC()
	updated.UpdatedAt = &now
	list[idx] = updated

	if err := s.save(ctx, userID, list); err != nil {
		return core.Expense{}, false, err
	}

	s.logger.InfoContext(ctx, "Expense updated",
		log.NewFields().WithUser(userID).WithExpense(id, updated.Amount.String(), updated.Category).WithOperation(log.OpUpdate).ToSlice()...)
	s.afterMutation(ctx, core.ExpenseEvent{Kind: core.EventUpdated, UserID: userID, Expense: updated})
	return updated, true, nil
}

// Delete removes the expense with id. Deleting an unknown id succeeds
// without touching the store.
func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	key := storage.ExpensesKey(userID)
	defer s.locks.lock(key)()

	list, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	idx := indexOf(list, id)
	if idx < 0 {
		return nil
	}
	removed := list[idx]
	list = append(list[:idx:idx], list[idx+1:]...)

	if err := s.save(ctx, userID, list); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Expense deleted",
		log.NewFields().WithUser(userID).WithExpense(id, removed.Amount.String(), removed.Category).WithOperation(log.OpDelete).ToSlice()...)
	s.afterMutation(ctx, core.ExpenseEvent{Kind: core.EventDeleted, UserID: userID, Expense: removed})
	return nil
}

func (s *ExpenseService) load(ctx context.Context, userID string) ([]core.Expense, error) {
	var list []core.Expense
	if _, err := storage.GetJSON(ctx, s.store, storage.ExpensesKey(userID), &list); err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	return list, nil
}

func (s *ExpenseService) save(ctx context.Context, userID string, list []core.Expense) error {
	if list == nil {
		list = []core.Expense{}
	}
	if err := storage.PutJSON(ctx, s.store, storage.ExpensesKey(userID), list); err != nil {
		return fmt.Errorf("save expenses: %w", err)
	}
	return nil
}

func (s *ExpenseService) afterMutation(ctx context.Context, event core.ExpenseEvent) {
	if s.invalidator != nil {
		s.invalidator.InvalidateUser(event.UserID)
	}
	if s.publisher == nil {
		return
	}
	event.Timestamp = s.now().UTC()
	if err := s.publisher.PublishExpenseEvent(ctx, event); err != nil {
		// the mutation is already persisted
		s.logger.ErrorContext(ctx, "Failed to publish expense event",
			log.NewFields().WithUser(event.UserID).WithError(err).WithOperation(log.OpPublish).ToSlice()...)
	}
}

func indexOf(list []core.Expense, id string) int {
	for i, e := range list {
		if e.ID == id {
			return i
		}
	}
	return -1
}

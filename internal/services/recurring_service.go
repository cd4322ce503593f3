package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/storage"

	"github.com/google/uuid"
)

// maxCatchUp bounds how many occurrences ProcessDue materializes for one
// template in a single run.
const maxCatchUp = 100

// RecurringService manages recurring templates stored under
// recurring_<userId> and materializes them into expenses.
type RecurringService struct {
	store    storage.Store
	expenses *ExpenseService
	locks    *keyLocks
	logger   *log.Logger
	now      func() time.Time
	newID    func() string
}

func NewRecurringService(store storage.Store, expenses *ExpenseService) *RecurringService {
	return &RecurringService{
		store:    store,
		expenses: expenses,
		locks:    newKeyLocks(),
		logger:   expenses.logger.WithComponent(log.ComponentRecurring),
		now:      expenses.now,
		newID:    uuid.NewString,
	}
}

// TemplateStatus is a template with its derived due status.
type TemplateStatus struct {
	core.RecurringTemplate
	DaysUntilDue int    `json:"daysUntilDue"`
	Status       string `json:"status"`
}

// Create stores a new template. NextDueDate defaults to StartDate and
// IsActive defaults to true.
func (s *RecurringService) Create(ctx context.Context, userID string, fields core.TemplateFields) (core.RecurringTemplate, error) {
	if fields.Title == nil {
		return core.RecurringTemplate{}, core.ErrEmptyTitle
	}
	if fields.Amount == nil {
		return core.RecurringTemplate{}, fmt.Errorf("%w: missing", core.ErrInvalidAmount)
	}
	if fields.StartDate == nil {
		return core.RecurringTemplate{}, fmt.Errorf("%w: missing start date", core.ErrInvalidDate)
	}
	if fields.RecurrenceType == nil {
		return core.RecurringTemplate{}, fmt.Errorf("%w: missing", core.ErrInvalidRecurrence)
	}

	t := fields.Apply(core.RecurringTemplate{
		ID:        s.newID(),
		Category:  core.CategoryOther,
		IsActive:  true,
		CreatedAt: s.now().UTC(),
	})
	if fields.NextDueDate == nil {
		t.NextDueDate = t.StartDate
	}
	if err := t.Validate(); err != nil {
		return core.RecurringTemplate{}, err
	}

	key := storage.RecurringKey(userID)
	defer s.locks.lock(key)()

	list, err := s.load(ctx, userID)
	if err != nil {
		return core.RecurringTemplate{}, err
	}
	if err := s.save(ctx, userID, append(list, t)); err != nil {
		return core.RecurringTemplate{}, err
	}
	s.logger.InfoContext(ctx, "Recurring template created",
		log.FieldUserID, userID, log.FieldTemplateID, t.ID, "recurrence", t.RecurrenceType)
	return t, nil
}

// List returns the user's templates.
func (s *RecurringService) List(ctx context.Context, userID string) ([]core.RecurringTemplate, error) {
	return s.load(ctx, userID)
}

// ListWithStatus decorates each template with its due status as of now.
func (s *RecurringService) ListWithStatus(ctx context.Context, userID string) ([]TemplateStatus, error) {
	list, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	day := today(s.now())
	out := make([]TemplateStatus, 0, len(list))
	for _, t := range list {
		out = append(out, TemplateStatus{
			RecurringTemplate: t,
			DaysUntilDue:      DaysUntilDue(t.NextDueDate, day),
			Status:            DueStatus(t, day),
		})
	}
	return out, nil
}

// Update merges fields over the template. Unknown ids report found=false.
func (s *RecurringService) Update(ctx context.Context, userID, id string, fields core.TemplateFields) (core.RecurringTemplate, bool, error) {
	if fields.Title != nil && strings.TrimSpace(*fields.Title) == "" {
		return core.RecurringTemplate{}, false, core.ErrEmptyTitle
	}
	return s.mutate(ctx, userID, id, func(t core.RecurringTemplate) (core.RecurringTemplate, error) {
		updated := fields.Apply(t)
		return updated, updated.Validate()
	})
}

// ToggleActive flips IsActive.
func (s *RecurringService) ToggleActive(ctx context.Context, userID, id string) (core.RecurringTemplate, bool, error) {
	return s.mutate(ctx, userID, id, func(t core.RecurringTemplate) (core.RecurringTemplate, error) {
		t.IsActive = !t.IsActive
		return t, nil
	})
}

// Delete removes a template; unknown ids are a no-op.
func (s *RecurringService) Delete(ctx context.Context, userID, id string) error {
	key := storage.RecurringKey(userID)
	defer s.locks.lock(key)()

	list, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	out := list[:0:0]
	for _, t := range list {
		if t.ID != id {
			out = append(out, t)
		}
	}
	if len(out) == len(list) {
		return nil
	}
	return s.save(ctx, userID, out)
}

// Materialize creates one expense dated at the template's NextDueDate and
// advances NextDueDate by one period. Past expenses are never touched.
func (s *RecurringService) Materialize(ctx context.Context, userID, id string) (core.Expense, bool, error) {
	key := storage.RecurringKey(userID)
	defer s.locks.lock(key)()

	list, err := s.load(ctx, userID)
	if err != nil {
		return core.Expense{}, false, err
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		e, err := s.materialize(ctx, userID, &list[i])
		if err != nil {
			return core.Expense{}, true, err
		}
		if err := s.save(ctx, userID, list); err != nil {
			return core.Expense{}, true, err
		}
		return e, true, nil
	}
	return core.Expense{}, false, nil
}

// ProcessDue materializes every active template whose NextDueDate is on or
// before now, catching up missed periods. It returns the number of expenses
// created.
func (s *RecurringService) ProcessDue(ctx context.Context, userID string, now time.Time) (int, error) {
	key := storage.RecurringKey(userID)
	defer s.locks.lock(key)()

	list, err := s.load(ctx, userID)
	if err != nil {
		return 0, err
	}
	day := today(now)
	created := 0
	var firstErr error
	for i := range list {
		t := &list[i]
		for n := 0; t.IsActive && !t.NextDueDate.After(day) && n < maxCatchUp; n++ {
			if _, err := s.materialize(ctx, userID, t); err != nil {
				s.logger.ErrorContext(ctx, "Failed to materialize recurring template",
					log.FieldUserID, userID, log.FieldTemplateID, t.ID, log.FieldError, err)
				if firstErr == nil {
					firstErr = err
				}
				break
			}
			created++
		}
	}
	if created > 0 {
		if err := s.save(ctx, userID, list); err != nil {
			return created, err
		}
	}
	return created, firstErr
}

func (s *RecurringService) materialize(ctx context.Context, userID string, t *core.RecurringTemplate) (core.Expense, error) {
	title, amount, category, date, desc := t.Title, t.Amount, t.Category, t.NextDueDate, t.Description
	e, err := s.expenses.create(ctx, userID, core.ExpenseFields{
		Title:       &title,
		Amount:      &amount,
		Category:    &category,
		Date:        &date,
		Description: &desc,
	}, core.EventMaterialized, t.ID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("materialize %s: %w", t.ID, err)
	}
	t.NextDueDate = NextDueDate(t.NextDueDate, t.RecurrenceType)
	now := s.now().UTC()
	t.UpdatedAt = &now

	s.logger.InfoContext(ctx, "Recurring template materialized",
		log.FieldUserID, userID, log.FieldTemplateID, t.ID, log.FieldExpenseID, e.ID,
		"next_due_date", t.NextDueDate.String())
	return e, nil
}

func (s *RecurringService) mutate(ctx context.Context, userID, id string, fn func(core.RecurringTemplate) (core.RecurringTemplate, error)) (core.RecurringTemplate, bool, error) {
	key := storage.RecurringKey(userID)
	defer s.locks.lock(key)()

	list, err := s.load(ctx, userID)
	if err != nil {
		return core.RecurringTemplate{}, false, err
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		updated, err := fn(list[i])
		if err != nil {
			return core.RecurringTemplate{}, true, err
		}
		now := s.now().UTC()
		updated.UpdatedAt = &now
		list[i] = updated
		if err := s.save(ctx, userID, list); err != nil {
			return core.RecurringTemplate{}, true, err
		}
		return updated, true, nil
	}
	return core.RecurringTemplate{}, false, nil
}

func (s *RecurringService) load(ctx context.Context, userID string) ([]core.RecurringTemplate, error) {
	var list []core.RecurringTemplate
	if _, err := storage.GetJSON(ctx, s.store, storage.RecurringKey(userID), &list); err != nil {
		return nil, fmt.Errorf("load recurring templates: %w", err)
	}
	return list, nil
}

func (s *RecurringService) save(ctx context.Context, userID string, list []core.RecurringTemplate) error {
	if list == nil {
		list = []core.RecurringTemplate{}
	}
	if err := storage.PutJSON(ctx, s.store, storage.RecurringKey(userID), list); err != nil {
		return fmt.Errorf("save recurring templates: %w", err)
	}
	return nil
}

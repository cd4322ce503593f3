package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"spendwise/internal/analytics"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/storage"
)

// BudgetService stores budgets under budgets_<userId> as a map keyed by
// category_month, so saving the same pair again overwrites it.
type BudgetService struct {
	store    storage.Store
	expenses *ExpenseService
	locks    *keyLocks
	logger   *log.Logger
	now      func() time.Time
}

func NewBudgetService(store storage.Store, expenses *ExpenseService) *BudgetService {
	return &BudgetService{
		store:    store,
		expenses: expenses,
		locks:    newKeyLocks(),
		logger:   expenses.logger.WithComponent(log.ComponentBudget),
		now:      expenses.now,
	}
}

// Set creates or replaces the budget for (category, month).
func (s *BudgetService) Set(ctx context.Context, userID, category, month string, amount core.Money) (core.Budget, error) {
	b := core.Budget{
		Key:       core.BudgetKey(category, month),
		Category:  category,
		Amount:    amount,
		Month:     month,
		CreatedAt: s.now().UTC(),
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	key := storage.BudgetsKey(userID)
	defer s.locks.lock(key)()

	budgets, err := s.load(ctx, userID)
	if err != nil {
		return core.Budget{}, err
	}
	budgets[b.Key] = b
	if err := s.save(ctx, userID, budgets); err != nil {
		return core.Budget{}, err
	}
	s.logger.InfoContext(ctx, "Budget saved",
		log.FieldUserID, userID, log.FieldCategory, category, log.FieldMonth, month, log.FieldAmount, amount.String())
	return b, nil
}

// List returns every budget, ordered by month then category. A non-empty
// month restricts the result to that month.
func (s *BudgetService) List(ctx context.Context, userID, month string) ([]core.Budget, error) {
	budgets, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]core.Budget, 0, len(budgets))
	for _, b := range budgets {
		if month == "" || b.Month == month {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// Delete removes the budget with key; unknown keys are a no-op.
func (s *BudgetService) Delete(ctx context.Context, userID, budgetKey string) error {
	key := storage.BudgetsKey(userID)
	defer s.locks.lock(key)()

	budgets, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := budgets[budgetKey]; !ok {
		return nil
	}
	delete(budgets, budgetKey)
	return s.save(ctx, userID, budgets)
}

// Progress computes spend against every budget of month.
func (s *BudgetService) Progress(ctx context.Context, userID, month string) ([]core.BudgetStatus, error) {
	if err := core.ValidateMonth(month); err != nil {
		return nil, err
	}
	budgets, err := s.List(ctx, userID, month)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]core.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, core.BudgetStatus{
			Budget:         b,
			BudgetProgress: analytics.ComputeBudgetProgress(expenses, b.Category, b.Amount, month),
		})
	}
	return out, nil
}

// Summary totals the budgets of month.
func (s *BudgetService) Summary(ctx context.Context, userID, month string) (core.BudgetSummary, error) {
	statuses, err := s.Progress(ctx, userID, month)
	if err != nil {
		return core.BudgetSummary{}, err
	}
	return analytics.SummarizeBudgets(month, statuses), nil
}

func (s *BudgetService) load(ctx context.Context, userID string) (map[string]core.Budget, error) {
	budgets := make(map[string]core.Budget)
	if _, err := storage.GetJSON(ctx, s.store, storage.BudgetsKey(userID), &budgets); err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	if budgets == nil {
		budgets = make(map[string]core.Budget)
	}
	return budgets, nil
}

func (s *BudgetService) save(ctx context.Context, userID string, budgets map[string]core.Budget) error {
	if err := storage.PutJSON(ctx, s.store, storage.BudgetsKey(userID), budgets); err != nil {
		return fmt.Errorf("save budgets: %w", err)
	}
	return nil
}

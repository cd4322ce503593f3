package services

import (
	"context"
	"testing"

	"spendwise/internal/core"
	"spendwise/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetService_SetOverwritesSameMonth(t *testing.T) {
	expenses := NewExpenseService(storage.NewMemoryStore())
	svc := NewBudgetService(storage.NewMemoryStore(), expenses)
	ctx := context.Background()

	_, err := svc.Set(ctx, "alice", "Food & Dining", "2024-03", *money(t, "300"))
	require.NoError(t, err)
	b, err := svc.Set(ctx, "alice", "Food & Dining", "2024-03", *money(t, "350"))
	require.NoError(t, err)
	assert.Equal(t, "Food & Dining_2024-03", b.Key)

	_, err = svc.Set(ctx, "alice", "Shopping", "2024-04", *money(t, "100"))
	require.NoError(t, err)

	all, err := svc.List(ctx, "alice", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "350.00", all[0].Amount.String())

	march, err := svc.List(ctx, "alice", "2024-03")
	require.NoError(t, err)
	assert.Len(t, march, 1)

	require.NoError(t, svc.Delete(ctx, "alice", b.Key))
	require.NoError(t, svc.Delete(ctx, "alice", b.Key))
	all, err = svc.List(ctx, "alice", "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestBudgetService_SetRejectsInvalid(t *testing.T) {
	store := newCountingStore()
	svc := NewBudgetService(store, NewExpenseService(store))
	ctx := context.Background()

	_, err := svc.Set(ctx, "alice", "Pets", "2024-03", *money(t, "10"))
	assert.ErrorIs(t, err, core.ErrInvalidCategory)
	_, err = svc.Set(ctx, "alice", "Shopping", "2024-13", *money(t, "10"))
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
	_, err = svc.Set(ctx, "alice", "Shopping", "2024-03", core.Money{})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Zero(t, store.puts)
}

func TestBudgetService_Progress(t *testing.T) {
	store := storage.NewMemoryStore()
	expenses := NewExpenseService(store)
	svc := NewBudgetService(store, expenses)
	ctx := context.Background()

	for _, f := range []core.ExpenseFields{
		newFields(t, "Groceries", "150", "Food & Dining", "2024-03-02"),
		newFields(t, "Dinner", "100", "Food & Dining", "2024-03-20"),
		newFields(t, "Last month", "500", "Food & Dining", "2024-02-28"),
		newFields(t, "Shoes", "80", "Shopping", "2024-03-05"),
	} {
		_, err := expenses.Create(ctx, "alice", f)
		require.NoError(t, err)
	}

	_, err := svc.Set(ctx, "alice", "Food & Dining", "2024-03", *money(t, "200"))
	require.NoError(t, err)
	_, err = svc.Set(ctx, "alice", "Shopping", "2024-03", *money(t, "100"))
	require.NoError(t, err)

	statuses, err := svc.Progress(ctx, "alice", "2024-03")
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	food := statuses[0]
	assert.Equal(t, "Food & Dining", food.Category)
	assert.Equal(t, "250.00", food.Spent.String())
	assert.Equal(t, "-50.00", food.Remaining.String())
	assert.Equal(t, 100.0, food.ProgressPercent)
	assert.True(t, food.IsOverBudget)

	shopping := statuses[1]
	assert.Equal(t, "80.00", shopping.Spent.String())
	assert.InDelta(t, 80.0, shopping.ProgressPercent, 0.001)
	assert.False(t, shopping.IsOverBudget)

	summary, err := svc.Summary(ctx, "alice", "2024-03")
	require.NoError(t, err)
	assert.Equal(t, "300.00", summary.TotalBudgeted.String())
	assert.Equal(t, "330.00", summary.TotalSpent.String())
	assert.Equal(t, 1, summary.OverBudget)

	_, err = svc.Progress(ctx, "alice", "March")
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
}

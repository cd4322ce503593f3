package analytics

import (
	"math"

	"spendwise/internal/core"
)

// ComputeBudgetProgress compares what was spent in category during month
// (YYYY-MM) against amount. Progress is clamped to 100 while Remaining is
// left negative when the budget is exceeded.
func ComputeBudgetProgress(expenses []core.Expense, category string, amount core.Money, month string) core.BudgetProgress {
	var spent core.Money
	for _, e := range expenses {
		if e.CategoryOrOther() == category && e.Date.MonthKey() == month {
			spent = spent.Add(e.Amount)
		}
	}

	progress := 0.0
	switch {
	case amount.IsPositive():
		progress = math.Min(100, percentOf(spent, amount))
	case spent.IsPositive():
		progress = 100
	}

	return core.BudgetProgress{
		Spent:           spent,
		Remaining:       amount.Sub(spent),
		ProgressPercent: progress,
		IsOverBudget:    spent.GreaterThan(amount.Decimal),
	}
}

// SummarizeBudgets totals a month of budget statuses.
func SummarizeBudgets(month string, statuses []core.BudgetStatus) core.BudgetSummary {
	sum := core.BudgetSummary{Month: month}
	for _, s := range statuses {
		sum.TotalBudgeted = sum.TotalBudgeted.Add(s.Amount)
		sum.TotalSpent = sum.TotalSpent.Add(s.Spent)
		if s.IsOverBudget {
			sum.OverBudget++
		}
	}
	sum.Remaining = sum.TotalBudgeted.Sub(sum.TotalSpent)
	return sum
}

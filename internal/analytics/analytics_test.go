package analytics

import (
	"testing"
	"time"

	"spendwise/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expense(id, amount, category, date string) core.Expense {
	m, err := core.ParseMoney(amount)
	if err != nil {
		panic(err)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Expense{ID: id, Title: "expense " + id, Amount: m, Category: category, Date: d}
}

func sample() []core.Expense {
	return []core.Expense{
		expense("1", "10.00", "Food & Dining", "2024-01-05"),
		expense("2", "20.00", "Transportation", "2024-01-10"),
	}
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(sample())

	assert.Equal(t, "30.00", stats.Total.String())
	assert.Equal(t, 2, stats.Count)
	require.Len(t, stats.ByCategory, 2)
	assert.Equal(t, "10.00", stats.ByCategory["Food & Dining"].String())
	assert.Equal(t, "20.00", stats.ByCategory["Transportation"].String())
}

func TestComputeStatsOrderIndependentAndConsistent(t *testing.T) {
	list := []core.Expense{
		expense("1", "0.10", "Food & Dining", "2024-01-05"),
		expense("2", "0.20", "Food & Dining", "2024-01-06"),
		expense("3", "19.99", "Travel", "2024-02-01"),
		expense("4", "0.01", "", "2024-02-03"),
	}
	reversed := []core.Expense{list[3], list[2], list[1], list[0]}

	a := ComputeStats(list)
	b := ComputeStats(reversed)
	assert.Equal(t, a.Total.String(), b.Total.String())
	assert.Equal(t, "20.30", a.Total.String())
	assert.Equal(t, "0.01", a.ByCategory[core.CategoryOther].String())

	var sum core.Money
	for _, v := range a.ByCategory {
		sum = sum.Add(v)
	}
	assert.Equal(t, a.Total.String(), sum.String())
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Equal(t, "0.00", stats.Total.String())
	assert.Zero(t, stats.Count)
	assert.Empty(t, stats.ByCategory)
}

func TestCategoryBreakdown(t *testing.T) {
	shares := CategoryBreakdown(ComputeStats(sample()))
	require.Len(t, shares, 2)
	assert.Equal(t, "Transportation", shares[0].Category)
	assert.InDelta(t, 66.67, shares[0].Percent, 0.01)
	assert.Equal(t, "Food & Dining", shares[1].Category)
}

func TestMonthlyBuckets(t *testing.T) {
	list := []core.Expense{
		expense("1", "5.00", "Travel", "2024-03-02"),
		expense("2", "10.00", "Travel", "2023-12-31"),
		expense("3", "2.50", "Travel", "2024-03-20"),
	}
	buckets := MonthlyBuckets(list)
	require.Len(t, buckets, 2)
	assert.Equal(t, "2023-12", buckets[0].Key)
	assert.Equal(t, "Dec 2023", buckets[0].Label)
	assert.Equal(t, "2024-03", buckets[1].Key)
	assert.Equal(t, "Mar 2024", buckets[1].Label)
	assert.Equal(t, "7.50", buckets[1].Amount.String())
}

func TestWeekNumber(t *testing.T) {
	cases := []struct {
		date string
		want int
	}{
		{"2024-01-01", 1}, // Monday, Jan 1 weekday 1
		{"2024-01-06", 1},
		{"2024-01-07", 2},
		{"2023-01-01", 1}, // Sunday, Jan 1 weekday 0
		{"2023-01-08", 2},
		{"2024-12-31", 53},
	}
	for _, tc := range cases {
		t.Run(tc.date, func(t *testing.T) {
			d, err := core.ParseDate(tc.date)
			require.NoError(t, err)
			assert.Equal(t, tc.want, WeekNumber(d))
		})
	}
}

func TestWeeklyBucketsKeepsLastEightByKeyOrder(t *testing.T) {
	var list []core.Expense
	start := core.NewDate(2024, time.January, 1)
	for i := 0; i < 12; i++ {
		e := expense("x", "1.00", "Other", "2024-01-01")
		e.Date = start.AddDays(7 * i)
		list = append(list, e)
	}
	buckets := WeeklyBuckets(list)
	require.Len(t, buckets, MaxWeeklyBuckets)

	// Weeks 1..12 sort as strings: W1, W10, W11, W12, W2 ... W9.
	var labels []string
	for _, b := range buckets {
		labels = append(labels, b.Label)
	}
	assert.Equal(t, []string{"Week 2", "Week 3", "Week 4", "Week 5", "Week 6", "Week 7", "Week 8", "Week 9"}, labels)
}

func TestComputeBudgetProgress(t *testing.T) {
	list := []core.Expense{
		expense("1", "70.00", "Shopping", "2024-05-02"),
		expense("2", "50.00", "Shopping", "2024-05-28"),
		expense("3", "999.00", "Shopping", "2024-06-01"),
		expense("4", "999.00", "Travel", "2024-05-03"),
	}
	p := ComputeBudgetProgress(list, "Shopping", core.MoneyFromCents(10000), "2024-05")

	assert.Equal(t, "120.00", p.Spent.String())
	assert.Equal(t, "-20.00", p.Remaining.String())
	assert.Equal(t, 100.0, p.ProgressPercent)
	assert.True(t, p.IsOverBudget)

	under := ComputeBudgetProgress(list[:1], "Shopping", core.MoneyFromCents(10000), "2024-05")
	assert.InDelta(t, 70.0, under.ProgressPercent, 1e-9)
	assert.False(t, under.IsOverBudget)
	assert.Equal(t, "30.00", under.Remaining.String())
}

func TestSummarizeBudgets(t *testing.T) {
	statuses := []core.BudgetStatus{
		{Budget: core.Budget{Amount: core.MoneyFromCents(10000)}, BudgetProgress: core.BudgetProgress{Spent: core.MoneyFromCents(12000), IsOverBudget: true}},
		{Budget: core.Budget{Amount: core.MoneyFromCents(5000)}, BudgetProgress: core.BudgetProgress{Spent: core.MoneyFromCents(1000)}},
	}
	sum := SummarizeBudgets("2024-05", statuses)
	assert.Equal(t, "150.00", sum.TotalBudgeted.String())
	assert.Equal(t, "130.00", sum.TotalSpent.String())
	assert.Equal(t, 1, sum.OverBudget)
	assert.Equal(t, "20.00", sum.Remaining.String())
}

// Package analytics turns a user's expense list into statistics, time
// buckets, budget progress and filtered views. Every function is pure and
// never mutates its input.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"spendwise/internal/core"

	"github.com/shopspring/decimal"
)

// MaxWeeklyBuckets is how many of the most recent weeks WeeklyBuckets keeps.
const MaxWeeklyBuckets = 8

// ComputeStats sums every amount, overall and per category. Expenses with no
// category are counted under Other. The result depends only on the list
// content, never on its order.
func ComputeStats(expenses []core.Expense) core.Stats {
	stats := core.Stats{
		Count:      len(expenses),
		ByCategory: make(map[string]core.Money),
	}
	for _, e := range expenses {
		stats.Total = stats.Total.Add(e.Amount)
		cat := e.CategoryOrOther()
		stats.ByCategory[cat] = stats.ByCategory[cat].Add(e.Amount)
	}
	return stats
}

// CategoryBreakdown orders the per-category totals by amount, largest first,
// with each category's share of the total. Ties are ordered by name.
func CategoryBreakdown(stats core.Stats) []core.CategoryShare {
	out := make([]core.CategoryShare, 0, len(stats.ByCategory))
	for cat, amount := range stats.ByCategory {
		out = append(out, core.CategoryShare{
			Category: cat,
			Amount:   amount,
			Percent:  percentOf(amount, stats.Total),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount.Decimal); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MonthlyBuckets groups expenses by YYYY-MM, sorted ascending, labelled "Jan 2024".
func MonthlyBuckets(expenses []core.Expense) []core.Bucket {
	totals := groupBy(expenses, func(e core.Expense) string { return e.Date.MonthKey() })
	keys := sortedKeys(totals)
	out := make([]core.Bucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, core.Bucket{Key: k, Label: core.FormatMonthShort(k), Amount: totals[k]})
	}
	return out
}

// WeeklyBuckets groups expenses by WeekKey and keeps the last
// MaxWeeklyBuckets after an ascending sort of the keys. Keys are compared as
// strings, so "2024-W10" sorts before "2024-W2".
func WeeklyBuckets(expenses []core.Expense) []core.Bucket {
	type weekTotal struct {
		week   int
		amount core.Money
	}
	totals := make(map[string]*weekTotal)
	for _, e := range expenses {
		k := WeekKey(e.Date)
		wt, ok := totals[k]
		if !ok {
			wt = &weekTotal{week: WeekNumber(e.Date)}
			totals[k] = wt
		}
		wt.amount = wt.amount.Add(e.Amount)
	}
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > MaxWeeklyBuckets {
		keys = keys[len(keys)-MaxWeeklyBuckets:]
	}
	out := make([]core.Bucket, 0, len(keys))
	for _, k := range keys {
		wt := totals[k]
		out = append(out, core.Bucket{Key: k, Label: fmt.Sprintf("Week %d", wt.week), Amount: wt.amount})
	}
	return out
}

// WeekNumber is ceil((daysSinceJan1 + weekdayOfJan1 + 1) / 7), with Sunday as
// weekday 0. It is not ISO-8601: the last days of December can land in week
// 53 and the first days of January share week 1 with no carry-over.
func WeekNumber(d core.Date) int {
	jan1 := time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	days := d.YearDay() - 1
	n := days + int(jan1.Weekday()) + 1
	return (n + 6) / 7
}

// WeekKey renders YYYY-W<n> with no zero padding.
func WeekKey(d core.Date) string {
	return fmt.Sprintf("%d-W%d", d.Year(), WeekNumber(d))
}

func groupBy(expenses []core.Expense, key func(core.Expense) string) map[string]core.Money {
	out := make(map[string]core.Money)
	for _, e := range expenses {
		k := key(e)
		out[k] = out[k].Add(e.Amount)
	}
	return out
}

func sortedKeys(m map[string]core.Money) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var hundred = decimal.NewFromInt(100)

func percentOf(part, whole core.Money) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole.Decimal).Mul(hundred).InexactFloat64()
}

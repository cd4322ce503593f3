package report

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"spendwise/internal/analytics"
	"spendwise/internal/core"

	"github.com/shopspring/decimal"
)

// Kind names one of the exportable reports.
type Kind string

const (
	KindMonthly  Kind = "monthly"
	KindYearly   Kind = "yearly"
	KindCategory Kind = "category"
	KindDetailed Kind = "detailed"
)

// Kinds lists every report kind in display order.
var Kinds = []Kind{KindMonthly, KindYearly, KindCategory, KindDetailed}

// ErrUnknownKind is returned by Build for an unsupported report kind.
var ErrUnknownKind = errors.New("unknown report type")

// Params selects the period of a report. Month is YYYY-MM, Year is YYYY.
type Params struct {
	Month string
	Year  string
}

// Build produces the table and the suggested file name for kind.
func Build(kind Kind, expenses []core.Expense, p Params) (Table, string, error) {
	switch kind {
	case KindMonthly:
		t, err := Monthly(expenses, p.Month)
		return t, "expenses-" + p.Month + ".csv", err
	case KindYearly:
		t, err := Yearly(expenses, p.Year)
		return t, "expenses-" + p.Year + "-summary.csv", err
	case KindCategory:
		return ByCategory(expenses), "expenses-by-category.csv", nil
	case KindDetailed:
		return Detailed(expenses), "all-expenses-detailed.csv", nil
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Monthly lists every expense dated in month.
func Monthly(expenses []core.Expense, month string) (Table, error) {
	if err := core.ValidateMonth(month); err != nil {
		return nil, err
	}
	var t Table
	for _, e := range expenses {
		if e.Date.MonthKey() != month {
			continue
		}
		t = append(t, expenseRow(e))
	}
	return t, nil
}

// Detailed lists every expense with its creation date.
func Detailed(expenses []core.Expense) Table {
	t := make(Table, 0, len(expenses))
	for _, e := range expenses {
		t = append(t, append(expenseRow(e), Cell{"Created At", core.FormatDisplayDate(e.CreatedAt)}))
	}
	return t
}

func expenseRow(e core.Expense) Row {
	return Row{
		{"Date", core.FormatDisplayDate(e.Date.Time)},
		{"Title", e.Title},
		{"Category", e.CategoryOrOther()},
		{"Amount", core.FormatCurrency(e.Amount)},
		{"Description", e.Description},
	}
}

// Yearly summarizes each month of year that has expenses, in calendar order.
func Yearly(expenses []core.Expense, year string) (Table, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}

	type monthTotals struct {
		total      core.Money
		count      int
		categories map[string]core.Money
	}
	months := make(map[string]*monthTotals)
	for _, e := range expenses {
		if strconv.Itoa(e.Date.Year()) != year {
			continue
		}
		key := e.Date.MonthKey()
		m, ok := months[key]
		if !ok {
			m = &monthTotals{categories: make(map[string]core.Money)}
			months[key] = m
		}
		m.total = m.total.Add(e.Amount)
		m.count++
		cat := e.CategoryOrOther()
		m.categories[cat] = m.categories[cat].Add(e.Amount)
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := make(Table, 0, len(keys))
	for _, k := range keys {
		m := months[k]
		avg := core.NewMoney(m.total.Decimal.Div(decimal.NewFromInt(int64(m.count))))
		t = append(t, Row{
			{"Month", core.FormatMonthLong(k)},
			{"Total Spent", core.FormatCurrency(m.total)},
			{"Number of Expenses", strconv.Itoa(m.count)},
			{"Average per Expense", core.FormatCurrency(avg)},
			{"Top Category", topCategory(m.categories)},
		})
	}
	return t, nil
}

func topCategory(categories map[string]core.Money) string {
	shares := analytics.CategoryBreakdown(core.Stats{ByCategory: categories})
	if len(shares) == 0 {
		return "N/A"
	}
	return shares[0].Category
}

// ByCategory lists total spend per category, largest first, with its share
// of the overall total.
func ByCategory(expenses []core.Expense) Table {
	shares := analytics.CategoryBreakdown(analytics.ComputeStats(expenses))
	t := make(Table, 0, len(shares))
	for _, s := range shares {
		t = append(t, Row{
			{"Category", s.Category},
			{"Total Spent", core.FormatCurrency(s.Amount)},
			{"Percentage", strconv.FormatFloat(s.Percent, 'f', 1, 64) + "%"},
		})
	}
	return t
}

// Summary is the headline shown next to a report before exporting it.
type Summary struct {
	Period string     `json:"period"`
	Count  int        `json:"count"`
	Total  core.Money `json:"total"`
}

// Summarize counts and totals the expenses kind would export.
func Summarize(kind Kind, expenses []core.Expense, p Params) Summary {
	var (
		period  = "All Time"
		include = func(core.Expense) bool { return true }
	)
	switch kind {
	case KindMonthly:
		period = core.FormatMonthLong(p.Month)
		include = func(e core.Expense) bool { return e.Date.MonthKey() == p.Month }
	case KindYearly:
		period = p.Year
		include = func(e core.Expense) bool { return strings.HasPrefix(e.Date.String(), p.Year+"-") }
	}

	var s Summary
	s.Period = period
	for _, e := range expenses {
		if include(e) {
			s.Count++
			s.Total = s.Total.Add(e.Amount)
		}
	}
	return s
}

func validateYear(year string) error {
	if len(year) != 4 {
		return fmt.Errorf("%w: year %q", core.ErrInvalidDate, year)
	}
	if _, err := strconv.Atoi(year); err != nil {
		return fmt.Errorf("%w: year %q", core.ErrInvalidDate, year)
	}
	return nil
}

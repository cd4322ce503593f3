package analytics

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"spendwise/internal/core"

	"github.com/shopspring/decimal"
)

// ErrInvalidFilter reports an unknown sort field or order.
var ErrInvalidFilter = errors.New("invalid filter")

// SortField selects the key used to order filtered expenses.
type SortField string

const (
	SortByDate     SortField = "date"
	SortByAmount   SortField = "amount"
	SortByTitle    SortField = "title"
	SortByCategory SortField = "category"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// Filter describes a filtered, sorted view. Zero-valued fields add no
// constraint; the zero Filter sorts by date, newest first.
type Filter struct {
	Search    string
	Category  string
	DateFrom  string
	DateTo    string
	AmountMin *decimal.Decimal
	AmountMax *decimal.Decimal
	SortBy    SortField
	SortOrder SortOrder
}

// FilterParams is the raw string form of a Filter, as received from a query
// string or form.
type FilterParams struct {
	Search    string
	Category  string
	DateFrom  string
	DateTo    string
	AmountMin string
	AmountMax string
	SortBy    string
	SortOrder string
}

// ParseFilter validates raw parameters. Empty strings are treated as absent.
func ParseFilter(p FilterParams) (Filter, error) {
	f := Filter{
		Search:   strings.TrimSpace(p.Search),
		Category: p.Category,
		DateFrom: p.DateFrom,
		DateTo:   p.DateTo,
	}
	for _, bound := range []struct {
		raw string
		dst **decimal.Decimal
	}{{p.AmountMin, &f.AmountMin}, {p.AmountMax, &f.AmountMax}} {
		if strings.TrimSpace(bound.raw) == "" {
			continue
		}
		d, err := core.ParseDecimal(strings.TrimSpace(bound.raw))
		if err != nil {
			return Filter{}, fmt.Errorf("%w: amount bound %q", core.ErrInvalidAmount, bound.raw)
		}
		*bound.dst = &d
	}
	switch SortField(p.SortBy) {
	case "", SortByDate, SortByAmount, SortByTitle, SortByCategory:
		f.SortBy = SortField(p.SortBy)
	default:
		return Filter{}, fmt.Errorf("%w: unknown sort field %q", ErrInvalidFilter, p.SortBy)
	}
	switch SortOrder(p.SortOrder) {
	case "", Ascending, Descending:
		f.SortOrder = SortOrder(p.SortOrder)
	default:
		return Filter{}, fmt.Errorf("%w: unknown sort order %q", ErrInvalidFilter, p.SortOrder)
	}
	return f, nil
}

// Apply returns a new slice holding the expenses that satisfy every
// constraint of f, in f's sort order. The sort is stable: expenses with equal
// keys keep their input order (reversed comparator, not reversed output, for
// descending).
func Apply(expenses []core.Expense, f Filter) []core.Expense {
	out := make([]core.Expense, 0, len(expenses))
	search := strings.ToLower(f.Search)
	for _, e := range expenses {
		if search != "" && !matchesSearch(e, search) {
			continue
		}
		if f.Category != "" && f.Category != core.CategoryAll && e.Category != f.Category {
			continue
		}
		date := e.Date.String()
		if f.DateFrom != "" && date < f.DateFrom {
			continue
		}
		if f.DateTo != "" && date > f.DateTo {
			continue
		}
		if f.AmountMin != nil && e.Amount.LessThan(*f.AmountMin) {
			continue
		}
		if f.AmountMax != nil && e.Amount.GreaterThan(*f.AmountMax) {
			continue
		}
		out = append(out, e)
	}

	compare := comparator(f.SortBy)
	if f.SortOrder == Ascending {
		slices.SortStableFunc(out, compare)
	} else {
		slices.SortStableFunc(out, func(a, b core.Expense) int { return compare(b, a) })
	}
	return out
}

func matchesSearch(e core.Expense, needle string) bool {
	return strings.Contains(strings.ToLower(e.Title), needle) ||
		strings.Contains(strings.ToLower(e.Description), needle) ||
		strings.Contains(strings.ToLower(e.Category), needle)
}

func comparator(by SortField) func(a, b core.Expense) int {
	switch by {
	case SortByAmount:
		return func(a, b core.Expense) int { return a.Amount.Cmp(b.Amount.Decimal) }
	case SortByTitle:
		return func(a, b core.Expense) int {
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case SortByCategory:
		return func(a, b core.Expense) int {
			return cmp.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
		}
	default:
		return func(a, b core.Expense) int { return a.Date.Compare(b.Date.Time) }
	}
}

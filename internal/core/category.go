package core

import "fmt"

// CategoryOther is used whenever an expense carries no category.
const CategoryOther = "Other"

// CategoryAll is the filter value meaning "any category".
const CategoryAll = "All"

// Categories is the fixed category enumeration, in display order.
var Categories = []string{
	"Food & Dining",
	"Transportation",
	"Shopping",
	"Entertainment",
	"Bills & Utilities",
	"Healthcare",
	"Education",
	"Travel",
	"Home & Garden",
	CategoryOther,
}

var categorySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		m[c] = struct{}{}
	}
	return m
}()

// IsCategory reports whether c is part of the enumeration.
func IsCategory(c string) bool {
	_, ok := categorySet[c]
	return ok
}

// NormalizeCategory maps an empty category to Other and rejects unknown ones.
func NormalizeCategory(c string) (string, error) {
	if c == "" {
		return CategoryOther, nil
	}
	if !IsCategory(c) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, c)
	}
	return c, nil
}

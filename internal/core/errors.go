package core

import "errors"

var (
	ErrEmptyTitle        = errors.New("title is required")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidRecurrence = errors.New("invalid recurrence type")
)

var validationErrors = []error{
	ErrEmptyTitle,
	ErrInvalidAmount,
	ErrInvalidDate,
	ErrInvalidCategory,
	ErrInvalidMonth,
	ErrInvalidRecurrence,
}

// IsValidation reports whether err wraps one of the input validation sentinels.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

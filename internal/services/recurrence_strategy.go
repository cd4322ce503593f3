package services

// This file implements the Strategy Pattern for advancing a recurring
// template's due date. Each recurrence type owns an Advancer; unknown types
// fall back to one calendar month.

import (
	"fmt"
	"math"
	"time"

	"spendwise/internal/core"
)

// Advancer moves a due date forward by one recurrence period.
type Advancer interface {
	Next(d core.Date) core.Date
}

// DayStep advances by a fixed number of days.
type DayStep int

func (s DayStep) Next(d core.Date) core.Date { return d.AddDays(int(s)) }

// MonthStep advances by calendar months. Day overflow rolls into the next
// month the way time.AddDate does.
type MonthStep int

func (s MonthStep) Next(d core.Date) core.Date { return d.AddMonths(int(s)) }

var (
	// one entry per core.RecurrenceTypes value; read-only after init
	strategies = map[core.RecurrenceType]Advancer{
		core.Weekly:    DayStep(7),
		core.Biweekly:  DayStep(14),
		core.Monthly:   MonthStep(1),
		core.Quarterly: MonthStep(3),
		core.Yearly:    MonthStep(12),
	}
	fallbackAdvancer Advancer = MonthStep(1)
)

// GetAdvancer returns the strategy for a recurrence type.
func GetAdvancer(r core.RecurrenceType) (Advancer, error) {
	a, ok := strategies[r]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidRecurrence, r)
	}
	return a, nil
}

// NextDueDate advances d by one period of r. Unknown types advance by one month.
func NextDueDate(d core.Date, r core.RecurrenceType) core.Date {
	a, err := GetAdvancer(r)
	if err != nil {
		a = fallbackAdvancer
	}
	return a.Next(d)
}

// DaysUntilDue is ceil((due - today) / 1 day); negative when overdue.
func DaysUntilDue(due, today core.Date) int {
	return int(math.Ceil(due.Sub(today.Time).Hours() / 24))
}

// DueStatus renders the human status of a template relative to today.
func DueStatus(t core.RecurringTemplate, today core.Date) string {
	if !t.IsActive {
		return "Inactive"
	}
	days := DaysUntilDue(t.NextDueDate, today)
	switch {
	case days < 0:
		return fmt.Sprintf("%d days overdue", -days)
	case days == 0:
		return "Due today"
	case days == 1:
		return "Due tomorrow"
	default:
		return fmt.Sprintf("Due in %d days", days)
	}
}

// today truncates now to a calendar date in UTC.
func today(now time.Time) core.Date {
	return core.DateOf(now.UTC())
}

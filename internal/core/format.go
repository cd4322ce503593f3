package core

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders m as USD with thousands grouping, e.g. $1,234.56.
func FormatCurrency(m Money) string {
	v := m.Round(2)
	s := "$" + usd.Sprintf("%.2f", v.Abs().InexactFloat64())
	if v.IsNegative() {
		return "-" + s
	}
	return s
}

// FormatDisplayDate renders the short display form, e.g. Jan 5, 2024.
func FormatDisplayDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// FormatMonthShort renders a YYYY-MM key as "Jan 2024". Unparseable keys are
// returned unchanged.
func FormatMonthShort(monthKey string) string {
	t, err := time.Parse(MonthLayout, monthKey)
	if err != nil {
		return monthKey
	}
	return t.Format("Jan 2006")
}

// FormatMonthLong renders a YYYY-MM key as "January 2024".
func FormatMonthLong(monthKey string) string {
	t, err := time.Parse(MonthLayout, monthKey)
	if err != nil {
		return monthKey
	}
	return t.Format("January 2006")
}

package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-05")
	if err != nil {
		t.Fatal(err)
	}
	if d.String() != "2024-01-05" || d.MonthKey() != "2024-01" {
		t.Fatalf("unexpected date %s", d)
	}
	for _, bad := range []string{"", "2024-13-01", "2024-02-30", "05/01/2024"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q: expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestDateAddMonthsRollsOver(t *testing.T) {
	got := NewDate(2023, time.January, 31).AddMonths(1)
	if got.String() != "2023-03-03" {
		t.Fatalf("want 2023-03-03 got %s", got)
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Title:    "Lunch",
		Amount:   MoneyFromCents(1000),
		Category: "Food & Dining",
		Date:     NewDate(2024, time.January, 5),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mod  func(*Expense)
		want error
	}{
		{"empty title", func(e *Expense) { e.Title = "  " }, ErrEmptyTitle},
		{"zero amount", func(e *Expense) { e.Amount = Money{} }, ErrInvalidAmount},
		{"missing date", func(e *Expense) { e.Date = Date{} }, ErrInvalidDate},
		{"unknown category", func(e *Expense) { e.Category = "Pets" }, ErrInvalidCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := good
			tc.mod(&e)
			err := e.Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v got %v", tc.want, err)
			}
			if !IsValidation(err) {
				t.Fatalf("expected validation classification for %v", err)
			}
		})
	}
}

func TestExpenseFieldsApply(t *testing.T) {
	base := Expense{
		ID:          "1",
		Title:       "Taxi",
		Amount:      MoneyFromCents(2000),
		Category:    "Transportation",
		Date:        NewDate(2024, time.January, 10),
		Description: "airport",
	}
	title := "Cab"
	empty := ""
	got := ExpenseFields{Title: &title, Category: &empty}.Apply(base)
	if got.Title != "Cab" {
		t.Fatalf("title not applied: %q", got.Title)
	}
	if got.Category != CategoryOther {
		t.Fatalf("empty category should default to Other, got %q", got.Category)
	}
	if got.Description != "airport" || got.Amount.String() != "20.00" {
		t.Fatalf("unsupplied fields must be preserved: %+v", got)
	}
}

func TestExpenseJSONRoundTrip(t *testing.T) {
	raw := `{"id":"a","userId":"u","title":"Lunch","amount":"10.00","category":"Food & Dining","date":"2024-01-05","createdAt":"2024-01-05T12:00:00Z"}`
	var e Expense
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatal(err)
	}
	if e.Date.String() != "2024-01-05" || e.Amount.String() != "10.00" {
		t.Fatalf("unexpected decode %+v", e)
	}
	if e.UpdatedAt != nil {
		t.Fatal("updatedAt should be absent")
	}
}

func TestNormalizeCategory(t *testing.T) {
	if c, _ := NormalizeCategory(""); c != CategoryOther {
		t.Fatalf("want Other got %q", c)
	}
	if _, err := NormalizeCategory("Pets"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"0", "", false},
		{"0.00", "", false},
		{"1", "1.00", true},
		{"1.2", "1.20", true},
		{"1.23", "1.23", true},
		{"1.234", "1.23", true},
		{"1.235", "1.24", true},
		{"1,50", "1.50", true},
		{" 10.00 ", "10.00", true},
		{"abc", "", false},
		{"-5", "", false},
		{"+5", "", false},
		{"", "", false},
		{"999999999999.99", "999999999999.99", true},
		{"1000000000000", "", false},
		{"1e3", "", false},
		{"1E2000000", "", false},
		{"0." + strings.Repeat("0", 40) + "1", "", false},
	}
	for _, c := range cases {
		got, err := ParseMoney(c.in)
		if c.ok {
			if err != nil {
				t.Fatalf("%q: unexpected error %v", c.in, err)
			}
			if got.String() != c.want {
				t.Fatalf("%q: want %s got %s", c.in, c.want, got)
			}
			continue
		}
		if err == nil {
			t.Fatalf("%q: expected error", c.in)
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q: expected ErrInvalidAmount, got %v", c.in, err)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	m := MoneyFromCents(1050)
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"10.50"` {
		t.Fatalf("unexpected encoding %s", b)
	}

	var fromNumber Money
	if err := json.Unmarshal([]byte(`12.3`), &fromNumber); err != nil {
		t.Fatal(err)
	}
	if fromNumber.String() != "12.30" {
		t.Fatalf("want 12.30 got %s", fromNumber)
	}

	for _, raw := range []string{`"x"`, `1e2000000`, `"1e2000000"`, `"2000000000000"`} {
		var bad Money
		if err := json.Unmarshal([]byte(raw), &bad); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%s: expected ErrInvalidAmount, got %v", raw, err)
		}
	}

	var remaining Money
	if err := json.Unmarshal([]byte(`"-20.00"`), &remaining); err != nil {
		t.Fatal(err)
	}
	if remaining.String() != "-20.00" {
		t.Fatalf("want -20.00 got %s", remaining)
	}
}

func TestMoneySumIsExact(t *testing.T) {
	var total Money
	for i := 0; i < 10; i++ {
		total = total.Add(MoneyFromCents(10))
	}
	if total.String() != "1.00" {
		t.Fatalf("want 1.00 got %s", total)
	}
}

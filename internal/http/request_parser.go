// Package http exposes the expense tracker as a JSON API.
//
// This file implements utilities for parsing and validating request bodies
// and query strings. Bodies may be JSON or form encoded.
package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"spendwise/internal/analytics"
	"spendwise/internal/core"
)

const maxBodyBytes = 1 << 20

// RequestBodyParser handles both JSON and form-encoded request bodies.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body of r once, up to 1 MiB.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse decodes the body as JSON when it looks like a JSON object and as a
// form otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = fmt.Errorf("malformed JSON body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	if p.err != nil {
		p.err = fmt.Errorf("malformed form body: %w", p.err)
	}
	return p.err
}

// Has reports whether key was supplied at all, even if empty.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		v, ok := p.jsonData[key]
		return ok && v != nil
	}
	if p.formData != nil {
		_, ok := p.formData[key]
		return ok
	}
	return false
}

// Get returns a trimmed, sanitized string value for key.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
		return ""
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// raw returns the value for key without trimming or sanitizing.
func (p *RequestBodyParser) raw(key string) string {
	if p.jsonData != nil {
		return stringValue(p.jsonData[key])
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput strips control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// optString returns a pointer to the value of key when it was supplied.
func (p *RequestBodyParser) optString(key string) *string {
	if !p.Has(key) {
		return nil
	}
	v := p.Get(key)
	return &v
}

func (p *RequestBodyParser) optMoney(key string) (*core.Money, error) {
	if !p.Has(key) {
		return nil, nil
	}
	m, err := core.ParseMoney(p.Get(key))
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (p *RequestBodyParser) optDate(key string) (*core.Date, error) {
	if !p.Has(key) {
		return nil, nil
	}
	d, err := core.ParseDate(p.Get(key))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ExpenseFields extracts the expense fields that were supplied. Absent keys
// stay nil so the result can drive both create and partial update.
func (p *RequestBodyParser) ExpenseFields() (core.ExpenseFields, error) {
	amount, err := p.optMoney("amount")
	if err != nil {
		return core.ExpenseFields{}, err
	}
	date, err := p.optDate("date")
	if err != nil {
		return core.ExpenseFields{}, err
	}
	return core.ExpenseFields{
		Title:       p.optString("title"),
		Amount:      amount,
		Category:    p.optString("category"),
		Date:        date,
		Description: p.optString("description"),
	}, nil
}

// TemplateFields extracts the supplied recurring template fields.
func (p *RequestBodyParser) TemplateFields() (core.TemplateFields, error) {
	var f core.TemplateFields
	var err error

	if f.Amount, err = p.optMoney("amount"); err != nil {
		return core.TemplateFields{}, err
	}
	if f.StartDate, err = p.optDate("startDate"); err != nil {
		return core.TemplateFields{}, err
	}
	if f.NextDueDate, err = p.optDate("nextDueDate"); err != nil {
		return core.TemplateFields{}, err
	}
	f.Title = p.optString("title")
	f.Category = p.optString("category")
	f.Description = p.optString("description")
	if p.Has("recurrenceType") {
		rt := core.RecurrenceType(p.Get("recurrenceType"))
		f.RecurrenceType = &rt
	}
	if p.Has("isActive") {
		active, err := strconv.ParseBool(p.Get("isActive"))
		if err != nil {
			return core.TemplateFields{}, fmt.Errorf("%w: isActive must be true or false", ErrBadRequest)
		}
		f.IsActive = &active
	}
	return f, nil
}

// ParseFilterQuery maps query parameters onto an analytics filter.
func ParseFilterQuery(q url.Values) (analytics.Filter, error) {
	return analytics.ParseFilter(analytics.FilterParams{
		Search:    sanitizeInput(q.Get("search")),
		Category:  strings.TrimSpace(q.Get("category")),
		DateFrom:  strings.TrimSpace(q.Get("dateFrom")),
		DateTo:    strings.TrimSpace(q.Get("dateTo")),
		AmountMin: q.Get("amountMin"),
		AmountMax: q.Get("amountMax"),
		SortBy:    strings.TrimSpace(q.Get("sortBy")),
		SortOrder: strings.TrimSpace(q.Get("sortOrder")),
	})
}

// ParseMonthParam returns the month query parameter, defaulting to the month
// of now. The value is validated as YYYY-MM.
func ParseMonthParam(q url.Values, now time.Time) (string, error) {
	month := strings.TrimSpace(q.Get("month"))
	if month == "" {
		return now.UTC().Format("2006-01"), nil
	}
	if err := core.ValidateMonth(month); err != nil {
		return "", err
	}
	return month, nil
}

// ParseYearParam returns the year query parameter, defaulting to the year of now.
func ParseYearParam(q url.Values, now time.Time) string {
	if year := strings.TrimSpace(q.Get("year")); year != "" {
		return year
	}
	return strconv.Itoa(now.UTC().Year())
}

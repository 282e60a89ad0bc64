// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request
// data: the generic body parser shared by all handlers plus the form-to-record
// translation for expense lines, income entries and customers.

package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hisab/internal/core"
)

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters, using current date as defaults.
func ParseMonthParams(query url.Values) MonthParams {
	now := time.Now()
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			params.Month = m
		}
	}

	return params
}

// ParseEntryDate reads a "date" form value, falling back to today when the
// field is absent. A present but malformed value is an error rather than a
// silent fallback, so a mistyped date never lands on the wrong day.
func ParseEntryDate(form url.Values) (core.Date, error) {
	raw := strings.TrimSpace(form.Get("date"))
	if raw == "" {
		return core.Today(), nil
	}
	d := core.Date(raw)
	if err := d.Validate(); err != nil {
		return "", err
	}
	return d, nil
}

// ParseExpenseLines turns the parallel form arrays of the entry screen into
// expense records for the given date. Each line has item, category, quantity,
// unit-price and amount fields; a line whose item, quantity and amount are all
// blank is an empty row in the form and is skipped. When the amount is blank
// but quantity and unit price are both present, the amount is computed from
// them.
func ParseExpenseLines(form url.Values, date core.Date) ([]core.ExpenseRecord, error) {
	items := form["item"]
	categories := form["category"]
	quantities := form["quantity"]
	unitPrices := form["unit-price"]
	amounts := form["amount"]
	units := form["unit"]

	n := len(items)
	for _, vs := range [][]string{categories, quantities, unitPrices, amounts, units} {
		if len(vs) > n {
			n = len(vs)
		}
	}

	var records []core.ExpenseRecord
	for i := 0; i < n; i++ {
		item := sanitizeInput(nth(items, i))
		qtyStr := strings.TrimSpace(nth(quantities, i))
		priceStr := strings.TrimSpace(nth(unitPrices, i))
		amountStr := strings.TrimSpace(nth(amounts, i))

		if item == "" && qtyStr == "" && amountStr == "" {
			continue
		}

		rec := core.ExpenseRecord{
			Date:     date,
			Category: core.Category(strings.TrimSpace(nth(categories, i))),
			Item:     item,
			Unit:     sanitizeInput(nth(units, i)),
		}

		if qtyStr != "" {
			qty, err := decimal.NewFromString(strings.ReplaceAll(qtyStr, ",", "."))
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid quantity %q", i+1, qtyStr)
			}
			rec.Quantity = qty
		}
		if priceStr != "" {
			cents, err := core.ParseDecimalToCents(priceStr)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid unit price %q", i+1, priceStr)
			}
			rec.UnitPrice = core.Money{Cents: cents}
		}

		switch {
		case amountStr != "":
			cents, err := core.ParseDecimalToCents(amountStr)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid amount %q", i+1, amountStr)
			}
			rec.Amount = core.Money{Cents: cents}
		case !rec.Quantity.IsZero() && rec.UnitPrice.Cents > 0:
			rec.Amount = core.LineAmount(rec.Quantity, rec.UnitPrice)
		}

		// A typed item whose amount resolves to zero is noise from the
		// entry grid, not a record.
		if rec.Amount.Cents == 0 {
			continue
		}

		records = append(records, rec)
	}

	return records, nil
}

// ParseIncomeRecord builds an income record from parsed body data.
func ParseIncomeRecord(p *RequestBodyParser) (core.IncomeRecord, error) {
	date := core.Date(p.Get("date"))
	if date == "" {
		date = core.Today()
	}
	amountStr := p.Get("amount")
	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil {
		return core.IncomeRecord{}, fmt.Errorf("invalid amount %q", amountStr)
	}
	return core.IncomeRecord{
		Date:        date,
		Type:        core.IncomeType(p.Get("type")),
		Source:      p.Get("source"),
		Amount:      core.Money{Cents: cents},
		Description: p.Get("description"),
	}, nil
}

// ParseCustomer builds a customer from parsed body data.
func ParseCustomer(p *RequestBodyParser) core.Customer {
	return core.Customer{
		Name:    p.Get("name"),
		Phone:   p.Get("phone"),
		Address: p.Get("address"),
		Email:   p.Get("email"),
		Notes:   p.Get("notes"),
	}
}

func nth(vs []string, i int) string {
	if i < len(vs) {
		return vs[i]
	}
	return ""
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' || p.body[0] == '[' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireDeleteOrPOST is a convenience function for DELETE/POST handlers.
func RequireDeleteOrPOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodDelete, http.MethodPost)
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}

package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CategoryPackaging Category = "packaging"
	CategoryStorage   Category = "storage"
	CategoryLabor     Category = "labor"
	CategoryTransport Category = "transport"
	CategoryOther     Category = "other"
)

const (
	IncomeCapital    IncomeType = "capital"
	IncomeSales      IncomeType = "sales"
	IncomeInvestment IncomeType = "investment"
	IncomeLoan       IncomeType = "loan"
	IncomeOther      IncomeType = "other"
)

type (
	// Category is one of the five fixed expense classifications.
	// Display labels live in the UI layer; the engine only stores keys.
	Category string

	// IncomeType classifies an income record.
	IncomeType string

	// Date is a calendar date in YYYY-MM-DD form. A malformed value is
	// representable; aggregation skips it instead of failing.
	Date string

	// ExpenseRecord is one dated, categorized outflow entry. Records that
	// share a non-empty InvoiceID together form an invoice.
	ExpenseRecord struct {
		ID         string          `json:"id"`
		Date       Date            `json:"date"`
		Category   Category        `json:"category"`
		Item       string          `json:"item"`
		Amount     Money           `json:"amount"`
		Quantity   decimal.Decimal `json:"quantity"`
		UnitPrice  Money           `json:"unitPrice"`
		Unit       string          `json:"unit,omitempty"`
		InvoiceID  string          `json:"invoiceId,omitempty"`
		CustomerID string          `json:"customerId,omitempty"`
	}

	// IncomeRecord is one dated, typed inflow entry.
	IncomeRecord struct {
		ID          string     `json:"id"`
		Date        Date       `json:"date"`
		Type        IncomeType `json:"type"`
		Source      string     `json:"source"`
		Amount      Money      `json:"amount"`
		Description string     `json:"description,omitempty"`
	}

	// Customer is referenced by expenses through a non-owning CustomerID;
	// deleting a customer nulls that reference rather than cascading.
	Customer struct {
		ID        string     `json:"id"`
		Name      string     `json:"name"`
		Phone     string     `json:"phone,omitempty"`
		Address   string     `json:"address,omitempty"`
		Email     string     `json:"email,omitempty"`
		Notes     string     `json:"notes,omitempty"`
		CreatedAt time.Time  `json:"createdAt"`
		UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	}
)

// Base error taxonomy. Specific validation errors wrap ErrValidation so
// callers can classify with errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("record not found")
	ErrPersistence = errors.New("persistence failed")

	ErrInvalidDate       = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidAmount     = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrEmptyItem         = fmt.Errorf("%w: empty item", ErrValidation)
	ErrEmptyName         = fmt.Errorf("%w: empty name", ErrValidation)
	ErrEmptySource       = fmt.Errorf("%w: empty source", ErrValidation)
	ErrNoEntries         = fmt.Errorf("%w: no entries to save", ErrValidation)
	ErrUnknownCategory   = fmt.Errorf("%w: unknown category", ErrValidation)
	ErrUnknownIncomeType = fmt.Errorf("%w: unknown income type", ErrValidation)
)

// categoryOrder is the fixed declared order used for stable chart key sets
// and for tie-breaking when several categories share a maximum.
var categoryOrder = [...]Category{
	CategoryPackaging,
	CategoryStorage,
	CategoryLabor,
	CategoryTransport,
	CategoryOther,
}

var incomeTypeOrder = [...]IncomeType{
	IncomeCapital,
	IncomeSales,
	IncomeInvestment,
	IncomeLoan,
	IncomeOther,
}

// Categories returns all expense categories in declared order.
func Categories() []Category {
	return categoryOrder[:]
}

// IncomeTypes returns all income types in declared order.
func IncomeTypes() []IncomeType {
	return incomeTypeOrder[:]
}

func (c Category) Valid() bool {
	for _, v := range categoryOrder {
		if c == v {
			return true
		}
	}
	return false
}

func (t IncomeType) Valid() bool {
	for _, v := range incomeTypeOrder {
		if t == v {
			return true
		}
	}
	return false
}

// NewID returns a collision-resistant token derived from creation time.
// UUIDv7 carries a millisecond timestamp prefix, so ids sort by creation.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

const dateLayout = "2006-01-02"

// NewDate builds a Date from calendar components.
func NewDate(year, month, day int) Date {
	return Date(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(dateLayout))
}

// Today returns the current local calendar date.
func Today() Date {
	return Date(time.Now().Format(dateLayout))
}

// Time parses the date. Aggregating callers skip records whose date does
// not parse rather than propagate the error.
func (d Date) Time() (time.Time, error) {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", string(d), err)
	}
	return t, nil
}

func (d Date) Valid() bool {
	_, err := d.Time()
	return err == nil
}

func (d Date) Validate() error {
	if !d.Valid() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string { return string(d) }

// When and Value let aggregation treat expense and income records uniformly.
func (e ExpenseRecord) When() Date   { return e.Date }
func (e ExpenseRecord) Value() Money { return e.Amount }
func (r IncomeRecord) When() Date    { return r.Date }
func (r IncomeRecord) Value() Money  { return r.Amount }

func (e ExpenseRecord) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return ErrUnknownCategory
	}
	if strings.TrimSpace(e.Item) == "" {
		return ErrEmptyItem
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.Quantity.IsNegative() || e.UnitPrice.Cents < 0 {
		return ErrInvalidAmount
	}
	// When both are present the stored amount must be their product.
	if e.Quantity.IsPositive() && e.UnitPrice.Cents > 0 {
		if e.Amount != LineAmount(e.Quantity, e.UnitPrice) {
			return fmt.Errorf("%w: amount does not equal quantity * unit price", ErrValidation)
		}
	}
	return nil
}

func (r IncomeRecord) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if !r.Type.Valid() {
		return ErrUnknownIncomeType
	}
	if strings.TrimSpace(r.Source) == "" {
		return ErrEmptySource
	}
	return r.Amount.Validate()
}

func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

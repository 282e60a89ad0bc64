package ledger

import (
	"sort"
	"strings"
	"time"

	"hisab/internal/core"
)

// Entry is the read-only view aggregation needs of a record. Both
// core.ExpenseRecord and core.IncomeRecord satisfy it.
type Entry interface {
	When() core.Date
	Value() core.Money
}

// Window selects records by exact date, calendar month, or calendar year.
// The zero Window selects every record. A record whose date does not parse
// never matches any window.
type Window struct {
	date  core.Date
	month int
	year  int
}

// AllTime matches every record with a well-formed date.
func AllTime() Window {
	return Window{}
}

// Day matches records dated exactly d.
func Day(d core.Date) Window {
	return Window{date: d}
}

// MonthOf matches records falling in the given calendar month.
func MonthOf(month, year int) Window {
	return Window{month: month, year: year}
}

// YearOf matches records falling in the given calendar year.
func YearOf(year int) Window {
	return Window{year: year}
}

// Matches reports whether the window contains the given date. Malformed
// dates are excluded, never fatal.
func (w Window) Matches(d core.Date) bool {
	if w.date != "" {
		return d == w.date && d.Valid()
	}
	t, err := d.Time()
	if err != nil {
		return false
	}
	if w.month != 0 {
		return int(t.Month()) == w.month && t.Year() == w.year
	}
	if w.year != 0 {
		return t.Year() == w.year
	}
	return true
}

// SumIn totals the amounts of records inside the window.
func SumIn[E Entry](records []E, w Window) core.Money {
	var total core.Money
	for _, r := range records {
		if w.Matches(r.When()) {
			total = total.Add(r.Value())
		}
	}
	return total
}

// SumByDate totals records dated exactly date.
func SumByDate[E Entry](records []E, date core.Date) core.Money {
	return SumIn(records, Day(date))
}

// SumByMonth totals records in the given calendar month.
func SumByMonth[E Entry](records []E, month, year int) core.Money {
	return SumIn(records, MonthOf(month, year))
}

// SumByYear totals records in the given calendar year.
func SumByYear[E Entry](records []E, year int) core.Money {
	return SumIn(records, YearOf(year))
}

// Balance is income minus expenses inside the window. The sign is
// preserved: a negative balance is a meaningful result, never clamped.
func Balance(income []core.IncomeRecord, expenses []core.ExpenseRecord, w Window) core.Money {
	return SumIn(income, w).Sub(SumIn(expenses, w))
}

// CategoryTotals sums expense amounts per category. Every known category
// appears in the result, zero-valued when nothing matched, so downstream
// charts see a stable key set.
func CategoryTotals(expenses []core.ExpenseRecord) map[core.Category]core.Money {
	totals := make(map[core.Category]core.Money, len(core.Categories()))
	for _, c := range core.Categories() {
		totals[c] = core.Money{}
	}
	for _, e := range expenses {
		if _, known := totals[e.Category]; known {
			totals[e.Category] = totals[e.Category].Add(e.Amount)
		}
	}
	return totals
}

// MaxCategory returns the category with the largest total. Ties resolve to
// the first category in declared order, so relative-bar scaling is stable.
func MaxCategory(totals map[core.Category]core.Money) (core.Category, core.Money) {
	best := core.Categories()[0]
	bestAmount := totals[best]
	for _, c := range core.Categories()[1:] {
		if totals[c].Cents > bestAmount.Cents {
			best = c
			bestAmount = totals[c]
		}
	}
	return best, bestAmount
}

// FilterExpenses returns the expenses inside the window, in insertion order.
func FilterExpenses(records []core.ExpenseRecord, w Window) []core.ExpenseRecord {
	var out []core.ExpenseRecord
	for _, e := range records {
		if w.Matches(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// FilterIncome returns the income records inside the window, in insertion order.
func FilterIncome(records []core.IncomeRecord, w Window) []core.IncomeRecord {
	var out []core.IncomeRecord
	for _, r := range records {
		if w.Matches(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByCategory returns expenses of one category, in insertion order.
func FilterByCategory(records []core.ExpenseRecord, c core.Category) []core.ExpenseRecord {
	var out []core.ExpenseRecord
	for _, e := range records {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

// SearchExpenses matches the query case-insensitively against item names
// and category keys.
func SearchExpenses(records []core.ExpenseRecord, query string) []core.ExpenseRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []core.ExpenseRecord
	for _, e := range records {
		if strings.Contains(strings.ToLower(e.Item), q) ||
			strings.Contains(strings.ToLower(string(e.Category)), q) {
			out = append(out, e)
		}
	}
	return out
}

// RecentExpenses returns up to limit expenses ordered newest date first.
// Records with unparsable dates sort last; ties keep insertion order.
func RecentExpenses(records []core.ExpenseRecord, limit int) []core.ExpenseRecord {
	out := append([]core.ExpenseRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return dateKey(out[i].Date).After(dateKey(out[j].Date))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// MonthlyTotals returns expense totals for each month of a year, indexed
// by month-1.
func MonthlyTotals(records []core.ExpenseRecord, year int) [12]core.Money {
	var totals [12]core.Money
	for m := 1; m <= 12; m++ {
		totals[m-1] = SumByMonth(records, m, year)
	}
	return totals
}

// dateKey parses a date for ordering; malformed dates get the zero time.
func dateKey(d core.Date) time.Time {
	t, err := d.Time()
	if err != nil {
		return time.Time{}
	}
	return t
}

package ledger

import (
	"testing"

	"hisab/internal/core"
)

func TestSumByMonth(t *testing.T) {
	records := []core.ExpenseRecord{
		expense("2025-06-01", core.CategoryStorage, "ice", 50000),
		expense("2025-06-15", core.CategoryLabor, "workers", 30000),
		expense("2025-07-01", core.CategoryStorage, "ice", 99900),
	}
	if got := SumByMonth(records, 6, 2025); got.Cents != 80000 {
		t.Fatalf("expected 80000, got %d", got.Cents)
	}
	if got := SumByMonth(records, 5, 2025); got.Cents != 0 {
		t.Fatalf("expected empty month to sum to zero, got %d", got.Cents)
	}
}

func TestAllTimeSpansYears(t *testing.T) {
	records := []core.ExpenseRecord{
		expense("2024-12-31", core.CategoryTransport, "truck", 10000),
		expense("2025-06-01", core.CategoryStorage, "ice", 50000),
		expense("not-a-date", core.CategoryStorage, "ice", 70000),
	}
	if got := SumIn(records, AllTime()); got.Cents != 60000 {
		t.Fatalf("expected 60000 across years, got %d", got.Cents)
	}
}

func TestSumSkipsMalformedDates(t *testing.T) {
	records := []core.ExpenseRecord{
		expense("2025-06-01", core.CategoryStorage, "ice", 50000),
		expense("not-a-date", core.CategoryStorage, "ice", 70000),
	}
	if got := SumByYear(records, 2025); got.Cents != 50000 {
		t.Fatalf("malformed dates must not contribute, got %d", got.Cents)
	}
}

func TestBalanceMayBeNegative(t *testing.T) {
	income := []core.IncomeRecord{
		{Date: "2025-06-02", Type: core.IncomeSales, Source: "bazar", Amount: core.Money{Cents: 30000}},
	}
	expenses := []core.ExpenseRecord{
		expense("2025-06-01", core.CategoryStorage, "ice", 50000),
	}
	got := Balance(income, expenses, MonthOf(6, 2025))
	if got.Cents != -20000 {
		t.Fatalf("expected -20000, got %d", got.Cents)
	}
	if !got.IsNegative() {
		t.Fatalf("expected negative balance to stay negative")
	}
}

func TestCategoryTotalsAlwaysCoversEveryCategory(t *testing.T) {
	records := []core.ExpenseRecord{
		expense("2025-06-01", core.CategoryStorage, "ice", 50000),
		expense("2025-06-02", core.CategoryLabor, "workers", 30000),
		{Date: "2025-06-03", Category: "imported", Item: "legacy", Amount: core.Money{Cents: 999}},
	}
	totals := CategoryTotals(records)
	if len(totals) != len(core.Categories()) {
		t.Fatalf("expected a key for every category, got %d", len(totals))
	}
	if totals[core.CategoryStorage].Cents != 50000 {
		t.Fatalf("storage total wrong: %d", totals[core.CategoryStorage].Cents)
	}
	if totals[core.CategoryLabor].Cents != 30000 {
		t.Fatalf("labor total wrong: %d", totals[core.CategoryLabor].Cents)
	}
	for _, c := range []core.Category{core.CategoryPackaging, core.CategoryTransport, core.CategoryOther} {
		if totals[c].Cents != 0 {
			t.Fatalf("expected zero for %s, got %d", c, totals[c].Cents)
		}
	}
}

func TestMaxCategoryTieBreaksInDeclaredOrder(t *testing.T) {
	totals := CategoryTotals(nil)
	totals[core.CategoryTransport] = core.Money{Cents: 500}
	totals[core.CategoryLabor] = core.Money{Cents: 500}
	cat, amount := MaxCategory(totals)
	if cat != core.CategoryLabor || amount.Cents != 500 {
		t.Fatalf("expected labor on tie, got %s %d", cat, amount.Cents)
	}
}

func TestSearchExpensesMatchesItemAndCategory(t *testing.T) {
	records := []core.ExpenseRecord{
		expense("2025-06-01", core.CategoryStorage, "Ice Block", 100),
		expense("2025-06-02", core.CategoryTransport, "fish van", 200),
	}
	if got := SearchExpenses(records, "ice"); len(got) != 1 || got[0].Item != "Ice Block" {
		t.Fatalf("item search failed: %+v", got)
	}
	if got := SearchExpenses(records, "transport"); len(got) != 1 || got[0].Item != "fish van" {
		t.Fatalf("category search failed: %+v", got)
	}
	if got := SearchExpenses(records, ""); len(got) != 2 {
		t.Fatalf("empty query must match everything, got %d", len(got))
	}
}

func TestRecentExpensesNewestFirst(t *testing.T) {
	records := []core.ExpenseRecord{
		expense("2025-06-01", core.CategoryStorage, "old", 100),
		expense("2025-06-20", core.CategoryStorage, "new", 200),
		expense("2025-06-10", core.CategoryStorage, "mid", 300),
	}
	got := RecentExpenses(records, 2)
	if len(got) != 2 || got[0].Item != "new" || got[1].Item != "mid" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestMonthlyTotals(t *testing.T) {
	records := []core.ExpenseRecord{
		expense("2025-01-10", core.CategoryStorage, "ice", 1000),
		expense("2025-01-20", core.CategoryLabor, "workers", 500),
		expense("2025-12-31", core.CategoryOther, "misc", 250),
		expense("2024-01-10", core.CategoryStorage, "ice", 9999),
	}
	totals := MonthlyTotals(records, 2025)
	if totals[0].Cents != 1500 {
		t.Fatalf("january total wrong: %d", totals[0].Cents)
	}
	if totals[11].Cents != 250 {
		t.Fatalf("december total wrong: %d", totals[11].Cents)
	}
	if totals[5].Cents != 0 {
		t.Fatalf("empty month should be zero")
	}
}

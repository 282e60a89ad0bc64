package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"hisab/internal/core"
	"hisab/internal/ledger"
)

// categoryBar is one bar of the category chart. Width is a percentage
// scaled so the largest category fills the row.
type categoryBar struct {
	Key    string
	Label  string
	Amount string
	Width  int
}

type expenseRow struct {
	ID        string
	Date      string
	Item      string
	Category  string
	Quantity  string
	UnitPrice string
	Amount    string
	InvoiceID string
}

type optionItem struct {
	Key   string
	Label string
}

type indexData struct {
	Today           string
	Balance         string
	BalanceNegative bool
	TotalIncome     string
	TotalExpenses   string
	Categories      []categoryBar
	TopCategory     string
	Recent          []expenseRow
	CategoryOptions []optionItem
	IncomeOptions   []optionItem
	CustomerOptions []optionItem
	Year            int
	Month           int
}

// monthOverview is the cached data behind the month partial.
type monthOverview struct {
	Year       int
	Month      int
	MonthName  string
	Total      string
	Categories []categoryBar
	Rows       []expenseRow
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	store := s.svc.Store()
	expenses := store.Expenses()
	income := store.Income()

	all := ledger.AllTime()
	balance := ledger.Balance(income, expenses, all)
	totalExpenses := ledger.SumIn(expenses, all)
	totalIncome := ledger.SumIn(income, all)

	totals := ledger.CategoryTotals(expenses)
	topCat, _ := ledger.MaxCategory(totals)

	now := time.Now()
	data := indexData{
		Today:           string(core.Today()),
		Balance:         formatTaka(balance),
		BalanceNegative: balance.IsNegative(),
		TotalIncome:     formatTaka(totalIncome),
		TotalExpenses:   formatTaka(totalExpenses),
		Categories:      categoryBars(totals),
		TopCategory:     categoryLabel(topCat),
		Recent:          expenseRows(ledger.RecentExpenses(expenses, 10)),
		CategoryOptions: categoryOptions(),
		IncomeOptions:   incomeOptions(),
		CustomerOptions: customerOptions(store.Customers()),
		Year:            now.Year(),
		Month:           int(now.Month()),
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (s *Server) handleMonthOverview(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	params := ParseMonthParams(r.URL.Query())
	key := fmt.Sprintf("%d-%d", params.Year, params.Month)

	data, ok := s.overviewCache.Get(key)
	if !ok {
		data = s.buildMonthOverview(params.Year, params.Month)
		s.overviewCache.Set(key, data)
	}

	if err := s.templates.ExecuteTemplate(w, "month_overview.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "month_overview.html", "year", params.Year, "month", params.Month)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (s *Server) buildMonthOverview(year, month int) monthOverview {
	store := s.svc.Store()
	window := ledger.MonthOf(month, year)
	monthExpenses := ledger.FilterExpenses(store.Expenses(), window)

	return monthOverview{
		Year:       year,
		Month:      month,
		MonthName:  time.Month(month).String(),
		Total:      formatTaka(ledger.SumIn(monthExpenses, window)),
		Categories: categoryBars(ledger.CategoryTotals(monthExpenses)),
		Rows:       expenseRows(monthExpenses),
	}
}

type yearOverview struct {
	Year   int
	Total  string
	Months []monthBar
}

type monthBar struct {
	Name   string
	Amount string
	Width  int
}

func (s *Server) handleYearOverview(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	params := ParseMonthParams(r.URL.Query())
	store := s.svc.Store()
	expenses := store.Expenses()

	totals := ledger.MonthlyTotals(expenses, params.Year)

	var max int64
	var yearTotal core.Money
	for _, m := range totals {
		yearTotal = yearTotal.Add(m)
		if m.Cents > max {
			max = m.Cents
		}
	}

	data := yearOverview{Year: params.Year, Total: formatTaka(yearTotal)}
	for i, m := range totals {
		width := 0
		if max > 0 {
			width = int(m.Cents * 100 / max)
		}
		data.Months = append(data.Months, monthBar{
			Name:   time.Month(i + 1).String(),
			Amount: formatTaka(m),
			Width:  width,
		})
	}

	if err := s.templates.ExecuteTemplate(w, "year_overview.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "year_overview.html", "year", params.Year)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// categoryBars builds the chart rows in fixed category order, scaled so the
// largest total takes the full width. Every category appears even at zero.
func categoryBars(totals map[core.Category]core.Money) []categoryBar {
	var max int64
	for _, m := range totals {
		if m.Cents > max {
			max = m.Cents
		}
	}

	bars := make([]categoryBar, 0, len(totals))
	for _, c := range core.Categories() {
		m := totals[c]
		width := 0
		if max > 0 {
			width = int(m.Cents * 100 / max)
		}
		bars = append(bars, categoryBar{
			Key:    string(c),
			Label:  categoryLabel(c),
			Amount: formatTaka(m),
			Width:  width,
		})
	}
	return bars
}

func expenseRows(expenses []core.ExpenseRecord) []expenseRow {
	rows := make([]expenseRow, 0, len(expenses))
	for _, e := range expenses {
		row := expenseRow{
			ID:        e.ID,
			Date:      string(e.Date),
			Item:      e.Item,
			Category:  categoryLabel(e.Category),
			Amount:    formatTaka(e.Amount),
			InvoiceID: e.InvoiceID,
		}
		if !e.Quantity.IsZero() {
			row.Quantity = e.Quantity.String()
		}
		if e.UnitPrice.Cents != 0 {
			row.UnitPrice = formatTaka(e.UnitPrice)
		}
		rows = append(rows, row)
	}
	return rows
}

func categoryOptions() []optionItem {
	opts := make([]optionItem, 0, 5)
	for _, c := range core.Categories() {
		opts = append(opts, optionItem{Key: string(c), Label: categoryLabel(c)})
	}
	return opts
}

func customerOptions(customers []core.Customer) []optionItem {
	opts := make([]optionItem, 0, len(customers))
	for _, c := range customers {
		opts = append(opts, optionItem{Key: c.ID, Label: c.Name})
	}
	return opts
}

func incomeOptions() []optionItem {
	opts := make([]optionItem, 0, 5)
	for _, t := range core.IncomeTypes() {
		opts = append(opts, optionItem{Key: string(t), Label: incomeTypeLabel(t)})
	}
	return opts
}

package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"hisab/internal/core"
	"hisab/internal/ledger"
)

type searchResultData struct {
	Query string
	Rows  []expenseRow
	Total string
}

// handleExpenseSearch renders the expense rows matching a free-text query,
// narrowed further by an optional category and an optional year/month.
func (s *Server) handleExpenseSearch(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	query := sanitizeInput(r.URL.Query().Get("q"))
	matched := ledger.SearchExpenses(s.svc.Store().Expenses(), query)

	if cat := core.Category(r.URL.Query().Get("category")); cat != "" {
		if !cat.Valid() {
			UnprocessableEntityError("Unknown category").Write(w)
			return
		}
		matched = ledger.FilterByCategory(matched, cat)
	}

	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			BadRequestError("Invalid year").Write(w)
			return
		}
		window := ledger.YearOf(year)
		if monthStr := r.URL.Query().Get("month"); monthStr != "" {
			month, err := strconv.Atoi(monthStr)
			if err != nil || month < 1 || month > 12 {
				BadRequestError("Invalid month").Write(w)
				return
			}
			window = ledger.MonthOf(month, year)
		}
		matched = ledger.FilterExpenses(matched, window)
	}

	var total core.Money
	for _, e := range matched {
		total = total.Add(e.Amount)
	}

	data := searchResultData{
		Query: query,
		Rows:  expenseRows(matched),
		Total: formatTaka(total),
	}
	if err := s.templates.ExecuteTemplate(w, "expense_search.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "expense_search.html")
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

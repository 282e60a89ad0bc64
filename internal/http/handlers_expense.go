package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"hisab/internal/core"
)

// handleCreateExpenses saves the daily entry form: one date, any number of
// expense lines. Blank rows are discarded; a form with no usable line at
// all is rejected.
func (s *Server) handleCreateExpenses(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	date, err := ParseEntryDate(r.Form)
	if err != nil {
		UnprocessableEntityError("Invalid date").Write(w)
		return
	}

	records, err := ParseExpenseLines(r.Form, date)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	saved, err := s.svc.AddExpenses(r.Context(), records)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrValidation):
			slog.WarnContext(r.Context(), "Expense validation failed", "error", err, "lines", len(records))
			UnprocessableEntityError(err.Error()).Write(w)
			return
		case errors.Is(err, core.ErrPersistence):
			// The records are in the ledger; only the write-behind failed.
			slog.ErrorContext(r.Context(), "Expense persistence failed", "error", err, "lines", len(saved))
			s.invalidateOverviews()
			NewHTMXResponse().
				TriggerNotification(NotificationWarning, "Saved, but writing to disk failed. Entries are held in memory.", 5000).
				TriggerOverviewRefresh(yearMonthOf(date)).
				Write(w)
			return
		default:
			slog.ErrorContext(r.Context(), "Failed to save expenses", "error", err, "component", "expense_handler", "operation", "create")
			InternalServerError("Error saving entries").Write(w)
			return
		}
	}

	atomic.AddInt64(&s.appMetrics.totalExpenses, int64(len(saved)))
	s.invalidateOverviews()

	total := core.Money{}
	for _, rec := range saved {
		total = total.Add(rec.Amount)
	}

	slog.InfoContext(r.Context(), "Expenses created",
		"date", string(date),
		"lines", len(saved),
		"total_cents", total.Cents,
		"component", "expense_handler",
		"operation", "create")

	year, month := yearMonthOf(date)
	NewHTMXResponse().
		TriggerExpensesSaved(string(date), len(saved)).
		TriggerFormReset().
		TriggerOverviewRefresh(year, month).
		TriggerSuccessNotification(fmt.Sprintf("%d entries saved for %s (%s)", len(saved), date, formatTaka(total))).
		Write(w)
}

// handleDeleteExpense removes one expense line. Deleting an id that is
// already gone still succeeds; the ledger treats removal as idempotent.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		slog.ErrorContext(r.Context(), "Parse body error", "error", err, "method", r.Method, "url", r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	id := parser.Get("id")
	if id == "" {
		BadRequestError("Missing expense id").Write(w)
		return
	}

	if err := s.svc.Store().RemoveExpense(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete expense", "error", err, "expense_id", id)
		InternalServerError("Error deleting entry").Write(w)
		return
	}

	s.invalidateOverviews()
	slog.InfoContext(r.Context(), "Expense deleted", "expense_id", id, "component", "expense_handler", "operation", "delete")

	NewHTMXResponse().
		TriggerExpenseDeleted(id).
		TriggerSuccessNotification("Entry deleted").
		Write(w)
}

// yearMonthOf extracts year and month from a date for refresh triggers.
// A malformed date falls back to zeroes, which refreshes nothing.
func yearMonthOf(d core.Date) (int, int) {
	t, err := d.Time()
	if err != nil {
		return 0, 0
	}
	return t.Year(), int(t.Month())
}

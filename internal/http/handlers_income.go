package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"hisab/internal/core"
	"hisab/internal/ledger"
)

type incomeRow struct {
	ID          string
	Date        string
	Type        string
	Source      string
	Amount      string
	Description string
}

type incomeListData struct {
	Rows  []incomeRow
	Total string
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	rec, err := ParseIncomeRecord(parser)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	saved, err := s.svc.Store().AddIncome(r.Context(), rec)
	if err != nil {
		s.writeIncomeError(w, r, err, "create", "")
		return
	}

	slog.InfoContext(r.Context(), "Income recorded",
		"income_id", saved.ID,
		"income_type", string(saved.Type),
		"amount_cents", saved.Amount.Cents,
		"component", "income_handler",
		"operation", "create")

	NewHTMXResponse().
		TriggerIncomeChanged().
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Income recorded: %s (%s)", saved.Source, formatTaka(saved.Amount))).
		Write(w)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	id := parser.Get("id")
	if id == "" {
		BadRequestError("Missing income id").Write(w)
		return
	}

	rec, err := ParseIncomeRecord(parser)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	if err := s.svc.Store().UpdateIncome(r.Context(), id, rec); err != nil {
		s.writeIncomeError(w, r, err, "update", id)
		return
	}

	NewHTMXResponse().
		TriggerIncomeChanged().
		TriggerSuccessNotification("Income updated").
		Write(w)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	id := parser.Get("id")
	if id == "" {
		BadRequestError("Missing income id").Write(w)
		return
	}

	if err := s.svc.Store().RemoveIncome(r.Context(), id); err != nil {
		s.writeIncomeError(w, r, err, "delete", id)
		return
	}

	NewHTMXResponse().
		TriggerIncomeChanged().
		TriggerSuccessNotification("Income deleted").
		Write(w)
}

func (s *Server) handleIncomeList(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	income := s.svc.Store().Income()
	data := incomeListData{Total: formatTaka(ledger.SumIn(income, ledger.AllTime()))}
	for _, rec := range income {
		data.Rows = append(data.Rows, incomeRow{
			ID:          rec.ID,
			Date:        string(rec.Date),
			Type:        incomeTypeLabel(rec.Type),
			Source:      rec.Source,
			Amount:      formatTaka(rec.Amount),
			Description: rec.Description,
		})
	}

	if err := s.templates.ExecuteTemplate(w, "income_list.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "income_list.html")
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (s *Server) writeIncomeError(w http.ResponseWriter, r *http.Request, err error, op, id string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		NotFoundError("Income record not found").Write(w)
	case errors.Is(err, core.ErrValidation):
		UnprocessableEntityError(err.Error()).Write(w)
	default:
		slog.ErrorContext(r.Context(), "Income operation failed",
			"error", err,
			"income_id", id,
			"component", "income_handler",
			"operation", op)
		InternalServerError("Error saving income").Write(w)
	}
}

package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"hisab/internal/core"
)

type customerRow struct {
	ID      string
	Name    string
	Phone   string
	Address string
	Email   string
	Notes   string
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	saved, err := s.svc.Store().AddCustomer(r.Context(), ParseCustomer(parser))
	if err != nil {
		s.writeCustomerError(w, r, err, "create", "")
		return
	}

	slog.InfoContext(r.Context(), "Customer created",
		"customer_id", saved.ID,
		"component", "customer_handler",
		"operation", "create")

	NewHTMXResponse().
		TriggerCustomersChanged().
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Customer %q added", saved.Name)).
		Write(w)
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
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
		BadRequestError("Missing customer id").Write(w)
		return
	}

	if err := s.svc.Store().UpdateCustomer(r.Context(), id, ParseCustomer(parser)); err != nil {
		s.writeCustomerError(w, r, err, "update", id)
		return
	}

	NewHTMXResponse().
		TriggerCustomersChanged().
		TriggerSuccessNotification("Customer updated").
		Write(w)
}

// handleDeleteCustomer removes a customer. Expenses that referenced the
// customer keep their lines; only the customer link is cleared.
func (s *Server) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
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
		BadRequestError("Missing customer id").Write(w)
		return
	}

	if err := s.svc.Store().RemoveCustomer(r.Context(), id); err != nil {
		s.writeCustomerError(w, r, err, "delete", id)
		return
	}

	s.invalidateOverviews()
	slog.InfoContext(r.Context(), "Customer deleted", "customer_id", id, "component", "customer_handler", "operation", "delete")

	NewHTMXResponse().
		TriggerCustomersChanged().
		TriggerSuccessNotification("Customer deleted").
		Write(w)
}

func (s *Server) handleCustomerList(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var rows []customerRow
	for _, c := range s.svc.Store().Customers() {
		rows = append(rows, customerRow{
			ID:      c.ID,
			Name:    c.Name,
			Phone:   c.Phone,
			Address: c.Address,
			Email:   c.Email,
			Notes:   c.Notes,
		})
	}

	if err := s.templates.ExecuteTemplate(w, "customer_list.html", struct{ Rows []customerRow }{rows}); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "customer_list.html")
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (s *Server) writeCustomerError(w http.ResponseWriter, r *http.Request, err error, op, id string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		NotFoundError("Customer not found").Write(w)
	case errors.Is(err, core.ErrValidation):
		UnprocessableEntityError(err.Error()).Write(w)
	default:
		slog.ErrorContext(r.Context(), "Customer operation failed",
			"error", err,
			"customer_id", id,
			"component", "customer_handler",
			"operation", op)
		InternalServerError("Error saving customer").Write(w)
	}
}

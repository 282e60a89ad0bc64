package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"hisab/internal/core"
	"hisab/internal/ledger"
)

type invoiceListRow struct {
	ID       string
	Date     string
	Customer string
	Lines    int
	Total    string
}

type invoiceLineRow struct {
	Item      string
	Category  string
	Quantity  string
	Unit      string
	UnitPrice string
	Amount    string
}

type invoiceDetail struct {
	ID       string
	Date     string
	Customer string
	Lines    []invoiceLineRow
	Total    string
}

// handleSaveInvoice writes an invoice as a group of expense lines sharing
// one invoice number. Saving an existing number replaces its lines, which
// is how editing works. A blank number gets the next sequential one.
func (s *Server) handleSaveInvoice(w http.ResponseWriter, r *http.Request) {
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
	if len(records) == 0 {
		UnprocessableEntityError("An invoice needs at least one line").Write(w)
		return
	}

	store := s.svc.Store()

	invoiceID := sanitizeInput(r.Form.Get("invoice-id"))
	isNew := invoiceID == ""
	if isNew {
		// The sequence counts distinct invoice numbers at generation time,
		// so deleting an old invoice can reuse its slot.
		invoiceID = ledger.NextInvoiceNumber(ledger.CountInvoices(store.Expenses()), time.Now())
	}

	customerID := sanitizeInput(r.Form.Get("customer"))
	if customerID != "" {
		if _, ok := store.Customer(customerID); !ok {
			UnprocessableEntityError("Unknown customer").Write(w)
			return
		}
		for i := range records {
			records[i].CustomerID = customerID
		}
	}

	saved, err := s.svc.SaveInvoice(r.Context(), invoiceID, records)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrValidation):
			UnprocessableEntityError(err.Error()).Write(w)
		case errors.Is(err, core.ErrPersistence):
			slog.ErrorContext(r.Context(), "Invoice persistence failed", "error", err, "invoice_id", invoiceID)
			s.invalidateOverviews()
			NewHTMXResponse().
				TriggerNotification(NotificationWarning, "Invoice saved, but writing to disk failed.", 5000).
				TriggerInvoiceSaved(invoiceID).
				Write(w)
		default:
			slog.ErrorContext(r.Context(), "Failed to save invoice",
				"error", err,
				"invoice_id", invoiceID,
				"component", "invoice_handler",
				"operation", "save")
			InternalServerError("Error saving invoice").Write(w)
		}
		return
	}

	if isNew {
		atomic.AddInt64(&s.appMetrics.totalInvoices, 1)
	}
	s.invalidateOverviews()

	total := core.Money{}
	for _, rec := range saved {
		total = total.Add(rec.Amount)
	}

	slog.InfoContext(r.Context(), "Invoice saved",
		"invoice_id", invoiceID,
		"lines", len(saved),
		"total_cents", total.Cents,
		"component", "invoice_handler",
		"operation", "save")

	NewHTMXResponse().
		TriggerInvoiceSaved(invoiceID).
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Invoice %s saved (%s)", invoiceID, formatTaka(total))).
		Write(w)
}

// handleDuplicateInvoice copies an invoice's lines under the next free
// number, today's date. Useful for repeat orders from the same customer.
func (s *Server) handleDuplicateInvoice(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	invoiceID := parser.Get("invoice-id")
	if invoiceID == "" {
		BadRequestError("Missing invoice number").Write(w)
		return
	}

	store := s.svc.Store()
	var lines []core.ExpenseRecord
	for _, e := range store.Expenses() {
		if e.InvoiceID == invoiceID {
			line := e
			line.Date = core.Today()
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		NotFoundError(fmt.Sprintf("Invoice %s not found", invoiceID)).Write(w)
		return
	}

	newID := ledger.NextInvoiceNumber(ledger.CountInvoices(store.Expenses()), time.Now())
	if _, err := s.svc.SaveInvoice(r.Context(), newID, lines); err != nil {
		if !errors.Is(err, core.ErrPersistence) {
			slog.ErrorContext(r.Context(), "Failed to duplicate invoice", "error", err, "invoice_id", invoiceID)
			InternalServerError("Error duplicating invoice").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Duplicate invoice persistence failed", "error", err, "invoice_id", newID)
		atomic.AddInt64(&s.appMetrics.totalInvoices, 1)
		s.invalidateOverviews()
		NewHTMXResponse().
			TriggerNotification(NotificationWarning, "Invoice copied, but writing to disk failed.", 5000).
			TriggerInvoiceSaved(newID).
			Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.totalInvoices, 1)
	s.invalidateOverviews()

	slog.InfoContext(r.Context(), "Invoice duplicated",
		"source_invoice_id", invoiceID,
		"invoice_id", newID,
		"lines", len(lines),
		"component", "invoice_handler",
		"operation", "duplicate")

	NewHTMXResponse().
		TriggerInvoiceSaved(newID).
		TriggerSuccessNotification(fmt.Sprintf("Invoice %s copied as %s", invoiceID, newID)).
		Write(w)
}

// handleDeleteInvoice removes every line of an invoice. Like single-line
// deletes this is idempotent.
func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	invoiceID := parser.Get("invoice-id")
	if invoiceID == "" {
		BadRequestError("Missing invoice number").Write(w)
		return
	}

	if err := s.svc.Store().RemoveExpensesByInvoice(r.Context(), invoiceID); err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete invoice", "error", err, "invoice_id", invoiceID)
		InternalServerError("Error deleting invoice").Write(w)
		return
	}

	s.invalidateOverviews()

	NewHTMXResponse().
		Trigger("invoice:deleted", map[string]string{"invoiceId": invoiceID}).
		TriggerSuccessNotification(fmt.Sprintf("Invoice %s deleted", invoiceID)).
		Write(w)
}

func (s *Server) handleInvoiceList(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	store := s.svc.Store()
	invoices := ledger.GroupByInvoice(store.Expenses())

	rows := make([]invoiceListRow, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, invoiceListRow{
			ID:       inv.ID,
			Date:     string(inv.Date),
			Customer: s.customerName(inv.CustomerID),
			Lines:    len(inv.Lines),
			Total:    formatTaka(inv.Total),
		})
	}

	if err := s.templates.ExecuteTemplate(w, "invoice_list.html", struct{ Rows []invoiceListRow }{rows}); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "invoice_list.html")
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (s *Server) handleInvoiceDetail(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	invoiceID := sanitizeInput(r.URL.Query().Get("id"))
	if invoiceID == "" {
		BadRequestError("Missing invoice number").Write(w)
		return
	}

	store := s.svc.Store()
	inv, ok := ledger.ReconstructInvoice(invoiceID, store.Expenses())
	if !ok {
		NotFoundError(fmt.Sprintf("Invoice %s not found", invoiceID)).Write(w)
		return
	}

	detail := invoiceDetail{
		ID:       inv.ID,
		Date:     string(inv.Date),
		Customer: s.customerName(inv.CustomerID),
		Total:    formatTaka(inv.Total),
	}
	for _, line := range inv.Lines {
		row := invoiceLineRow{
			Item:      line.Item,
			Category:  categoryLabel(line.Category),
			Unit:      line.Unit,
			Amount:    formatTaka(line.Amount),
		}
		if !line.Quantity.IsZero() {
			row.Quantity = line.Quantity.String()
		}
		if line.UnitPrice.Cents != 0 {
			row.UnitPrice = formatTaka(line.UnitPrice)
		}
		detail.Lines = append(detail.Lines, row)
	}

	if err := s.templates.ExecuteTemplate(w, "invoice_detail.html", detail); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "invoice_detail.html", "invoice_id", invoiceID)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// handleNextInvoiceNumber returns the number the next saved invoice would
// get. The invoice form shows it as a placeholder.
func (s *Server) handleNextInvoiceNumber(w http.ResponseWriter, r *http.Request) {
	store := s.svc.Store()
	next := ledger.NextInvoiceNumber(ledger.CountInvoices(store.Expenses()), time.Now())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(next))
}

func (s *Server) customerName(id string) string {
	if id == "" {
		return ""
	}
	if c, ok := s.svc.Store().Customer(id); ok {
		return c.Name
	}
	return ""
}

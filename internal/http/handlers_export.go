package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"hisab/internal/export"
)

// handleExportCSV streams every expense as a CSV download.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	expenses := s.svc.Store().Expenses()
	csv := export.ExpensesCSV(expenses)

	filename := fmt.Sprintf("expenses-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))

	slog.InfoContext(r.Context(), "CSV export",
		"rows", len(expenses),
		"component", "export_handler",
		"operation", "csv")
}

// handleExportPDF is a placeholder until a PDF renderer is chosen.
func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	NewHTMXResponse().
		TriggerInfoNotification("PDF export is coming soon. Use CSV in the meantime.").
		Write(w)
}

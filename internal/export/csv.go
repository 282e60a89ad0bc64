// Package export serializes the expense ledger into its interchange
// formats. CSV is the only machine-readable export; spreadsheet consumers
// depend on its exact shape, so changes to the header or quoting are
// breaking changes.
package export

import (
	"strings"

	"hisab/internal/core"
)

// csvHeader is the fixed column set. Every field, header included, is
// wrapped in double quotes and rows are joined with a bare \n.
var csvHeader = []string{"date", "category", "item", "quantity", "unit-price", "amount", "invoice-id"}

// ExpensesCSV renders the full expense collection as CSV text. Optional
// fields (quantity, unit price, invoice id) serialize as empty strings so
// a flat daily entry and an invoice line share one row shape.
func ExpensesCSV(expenses []core.ExpenseRecord) string {
	var b strings.Builder
	writeRow(&b, csvHeader)
	for _, e := range expenses {
		b.WriteByte('\n')
		writeRow(&b, []string{
			string(e.Date),
			string(e.Category),
			e.Item,
			quantityField(e),
			priceField(e),
			e.Amount.String(),
			e.InvoiceID,
		})
	}
	return b.String()
}

func quantityField(e core.ExpenseRecord) string {
	if e.Quantity.IsZero() {
		return ""
	}
	return e.Quantity.String()
}

func priceField(e core.ExpenseRecord) string {
	if e.UnitPrice.Cents == 0 {
		return ""
	}
	return e.UnitPrice.String()
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}

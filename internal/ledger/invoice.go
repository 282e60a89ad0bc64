package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"hisab/internal/core"
)

// Invoice is a derived view: the group of expense records sharing one
// invoice id. It is never stored, so its total cannot drift from the
// underlying records.
type Invoice struct {
	ID         string
	Date       core.Date
	CustomerID string
	Lines      []InvoiceLine
	Total      core.Money
}

// InvoiceLine is one line of the derived invoice view.
type InvoiceLine struct {
	Item      string
	Category  core.Category
	Quantity  decimal.Decimal
	Unit      string
	UnitPrice core.Money
	Amount    core.Money
}

// GroupByInvoice partitions expenses carrying a non-empty invoice id into
// invoices. The invoice date is the date of the first member in insertion
// order, the total is the sum of member amounts, and the groups come back
// ordered newest date first. Expenses without an invoice id are plain
// daily entries and are excluded entirely.
func GroupByInvoice(expenses []core.ExpenseRecord) []Invoice {
	byID := make(map[string]*Invoice)
	var order []string
	for _, e := range expenses {
		if e.InvoiceID == "" {
			continue
		}
		inv, seen := byID[e.InvoiceID]
		if !seen {
			inv = &Invoice{
				ID:         e.InvoiceID,
				Date:       e.Date,
				CustomerID: e.CustomerID,
			}
			byID[e.InvoiceID] = inv
			order = append(order, e.InvoiceID)
		}
		inv.Lines = append(inv.Lines, lineOf(e))
		inv.Total = inv.Total.Add(e.Amount)
	}

	out := make([]Invoice, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return dateKey(out[i].Date).After(dateKey(out[j].Date))
	})
	return out
}

// ReconstructInvoice rebuilds one invoice and merges lines sharing the same
// (item, category) pair, summing quantity and amount. Edit round-trips can
// leave duplicate lines behind; the merge keys on the item name plus
// category, not on record ids.
func ReconstructInvoice(invoiceID string, expenses []core.ExpenseRecord) (Invoice, bool) {
	inv := Invoice{ID: invoiceID}
	type lineKey struct {
		item     string
		category core.Category
	}
	index := make(map[lineKey]int)
	found := false

	for _, e := range expenses {
		if e.InvoiceID != invoiceID || invoiceID == "" {
			continue
		}
		if !found {
			inv.Date = e.Date
			inv.CustomerID = e.CustomerID
			found = true
		}
		inv.Total = inv.Total.Add(e.Amount)

		k := lineKey{item: e.Item, category: e.Category}
		if i, merged := index[k]; merged {
			inv.Lines[i].Quantity = inv.Lines[i].Quantity.Add(e.Quantity)
			inv.Lines[i].Amount = inv.Lines[i].Amount.Add(e.Amount)
			continue
		}
		index[k] = len(inv.Lines)
		inv.Lines = append(inv.Lines, lineOf(e))
	}
	return inv, found
}

// CountInvoices returns the number of distinct invoice ids present.
func CountInvoices(expenses []core.ExpenseRecord) int {
	seen := make(map[string]struct{})
	for _, e := range expenses {
		if e.InvoiceID != "" {
			seen[e.InvoiceID] = struct{}{}
		}
	}
	return len(seen)
}

// NextInvoiceNumber formats INV-{year}{month:2}-{sequence:3} for the given
// generation time, where sequence is the count of invoices already present
// plus one. Callers must recompute the count at generation time rather than
// cache it, since it changes as invoices are saved.
func NextInvoiceNumber(existingInvoices int, now time.Time) string {
	return fmt.Sprintf("INV-%d%02d-%03d", now.Year(), int(now.Month()), existingInvoices+1)
}

func lineOf(e core.ExpenseRecord) InvoiceLine {
	return InvoiceLine{
		Item:      e.Item,
		Category:  e.Category,
		Quantity:  e.Quantity,
		Unit:      e.Unit,
		UnitPrice: e.UnitPrice,
		Amount:    e.Amount,
	}
}

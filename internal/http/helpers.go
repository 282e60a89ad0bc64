package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"hisab/internal/core"
)

// formatTaka formats cents as a taka currency string (e.g., "৳12.50").
func formatTaka(m core.Money) string {
	if m.IsNegative() {
		return "-৳" + core.Money{Cents: -m.Cents}.String()
	}
	return "৳" + m.String()
}

// categoryLabel maps category keys to their display names. The engine only
// stores keys; labels are a UI concern.
func categoryLabel(c core.Category) string {
	switch c {
	case core.CategoryPackaging:
		return "Packaging"
	case core.CategoryStorage:
		return "Storage"
	case core.CategoryLabor:
		return "Labor"
	case core.CategoryTransport:
		return "Transport"
	case core.CategoryOther:
		return "Other"
	default:
		return string(c)
	}
}

// incomeTypeLabel maps income type keys to their display names.
func incomeTypeLabel(t core.IncomeType) string {
	switch t {
	case core.IncomeCapital:
		return "Capital"
	case core.IncomeSales:
		return "Sales"
	case core.IncomeInvestment:
		return "Investment"
	case core.IncomeLoan:
		return "Loan"
	case core.IncomeOther:
		return "Other"
	default:
		return string(t)
	}
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

package transfers

import (
	"fmt"
	"sort"

	custom_error "procurement/pkg/errors"
	"procurement/pkg/models"

	"github.com/shopspring/decimal"
)

// Clamp bounds an entered quantity to [0, stock].
func Clamp(entered, stock decimal.Decimal) decimal.Decimal {
	if stock.IsNegative() {
		stock = decimal.Zero
	}
	if entered.IsNegative() {
		return decimal.Zero
	}
	if entered.GreaterThan(stock) {
		return stock
	}
	return entered
}

func TransferTotal(quantities map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, q := range quantities {
		total = total.Add(q)
	}
	return total
}

// QuotationNeeded is the part of the requested quantity that transfers do
// not cover. It is never negative.
func QuotationNeeded(requested, transferTotal decimal.Decimal) decimal.Decimal {
	remaining := requested.Sub(transferTotal)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// RequestedQuantity is the approved quantity once a stage has set one, and the
// originally requested quantity before that.
func RequestedQuantity(line models.RequerimientoRecurso) decimal.Decimal {
	if line.CantidadAprobada.IsPositive() {
		return line.CantidadAprobada
	}
	return line.Cantidad
}

// Reconcile computes the transfer total and quotation remainder of every
// request line. Entered quantities outside [0, stock] are clamped and reported.
func Reconcile(lines []models.RecursoConStock, entries []models.TransferLineRequest) ([]models.ReconciledLine, []custom_error.ValidationError) {
	byLine := make(map[string]models.TransferLineRequest, len(entries))
	for _, entry := range entries {
		byLine[entry.RequerimientoRecursoID] = entry
	}

	var issues []custom_error.ValidationError
	known := make(map[string]bool, len(lines))
	reconciled := make([]models.ReconciledLine, 0, len(lines))

	for _, line := range lines {
		known[line.ID] = true
		stock := make(map[string]decimal.Decimal, len(line.Almacenes))
		for _, a := range line.Almacenes {
			stock[a.AlmacenID] = a.Cantidad
		}

		quantities := map[string]decimal.Decimal{}
		entry := byLine[line.ID]
		for _, almacenID := range sortedKeys(entry.Quantities) {
			entered := entry.Quantities[almacenID]
			clamped := Clamp(entered, stock[almacenID])
			if !clamped.Equal(entered) {
				issues = append(issues, custom_error.ValidationError{
					Message:  fmt.Sprintf("entered %s, available %s", entered, clamped),
					Property: fmt.Sprintf("lines[%s].quantities[%s]", line.ID, almacenID),
				})
			}
			if clamped.IsPositive() {
				quantities[almacenID] = clamped
			}
		}

		requested := RequestedQuantity(line.RequerimientoRecurso)
		total := TransferTotal(quantities)
		reconciled = append(reconciled, models.ReconciledLine{
			RequerimientoRecursoID: line.ID,
			RecursoID:              line.RecursoID,
			Requested:              requested,
			Quantities:             quantities,
			TransferTotal:          total,
			QuotationNeeded:        QuotationNeeded(requested, total),
		})
	}

	for _, entry := range entries {
		if !known[entry.RequerimientoRecursoID] {
			issues = append(issues, custom_error.ValidationError{
				Message:  "line does not belong to the requerimiento",
				Property: fmt.Sprintf("lines[%s]", entry.RequerimientoRecursoID),
			})
		}
	}

	return reconciled, issues
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

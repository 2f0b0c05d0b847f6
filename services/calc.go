package services

// Recompute refreshes the derived amount fields of a row from its inputs:
//
//	totalAmount  = quantity * unitPrice
//	taxAmount    = totalAmount * taxRate / 100
//	preTaxAmount = totalAmount - taxAmount
//
// Values keep full float precision; display rounding happens in FormatCell.
// Recompute is idempotent for an unchanged row.
func Recompute(item LineItem) LineItem {
	item.TotalAmount = item.Quantity * item.UnitPrice
	item.TaxAmount = item.TotalAmount * item.TaxRate / 100
	item.PreTaxAmount = item.TotalAmount - item.TaxAmount
	return item
}

// RecomputeAll returns a new slice with every row recomputed. The input
// slice is never mutated.
func RecomputeAll(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, item := range items {
		out[i] = Recompute(item)
	}
	return out
}

// LedgerTotals holds the aggregated amounts of one module ledger.
type LedgerTotals struct {
	TotalAmount  float64
	TaxAmount    float64
	PreTaxAmount float64
	RowCount     int
}

// CalcLedgerTotals sums the derived fields across all rows.
func CalcLedgerTotals(items []LineItem) LedgerTotals {
	totals := LedgerTotals{RowCount: len(items)}
	for _, item := range items {
		totals.TotalAmount += item.TotalAmount
		totals.TaxAmount += item.TaxAmount
		totals.PreTaxAmount += item.PreTaxAmount
	}
	return totals
}

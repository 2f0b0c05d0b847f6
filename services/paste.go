package services

import (
	"strconv"
	"strings"
)

// PasteResult reports the outcome of a clipboard import.
type PasteResult struct {
	Items    []LineItem
	RowCount int
}

// ParseClipboard converts spreadsheet-style clipboard text (rows separated
// by newlines, cells by tabs) into new ledger rows. Blank lines are
// discarded. Cells map positionally onto the editable columns, falling back
// to the full display column list when no column is editable. Numeric
// columns parse their cell text the way a spreadsheet paste does:
// unparseable or empty text becomes zero, except the tax rate which falls
// back to the default rate. Every produced row is recomputed.
func ParseClipboard(text string, cols []DisplayColumn, defaultCategory string) PasteResult {
	targets := EditableColumns(cols)
	if len(targets) == 0 {
		targets = cols
	}

	var items []LineItem
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, "\t")

		item := NewLineItem(defaultCategory)
		for i, cell := range cells {
			if i >= len(targets) {
				break
			}
			col := targets[i]
			if IsDerivedField(col.Key) {
				continue
			}
			value := strings.TrimSpace(cell)
			if col.Type == "number" {
				item = setNumericCell(item, col.Key, value)
				continue
			}
			applied, err := item.ApplyCell(col.Key, value)
			if err != nil {
				// Passthrough template columns have no ledger field behind
				// them; their cells have nowhere to land and are dropped.
				continue
			}
			item = applied
		}
		items = append(items, Recompute(item))
	}

	return PasteResult{Items: items, RowCount: len(items)}
}

// setNumericCell assigns a pasted numeric cell. Unlike typed input,
// unparseable paste content degrades to the field default instead of
// rejecting the whole row.
func setNumericCell(item LineItem, key, value string) LineItem {
	n, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	switch key {
	case FieldQuantity:
		if err != nil {
			n = 0
		}
		item.Quantity = n
	case FieldUnitPrice:
		if err != nil {
			n = 0
		}
		item.UnitPrice = n
	case FieldTaxRate:
		if err != nil {
			n = DefaultTaxRate
		}
		item.TaxRate = n
	}
	return item
}

// Package services holds the ledger grid logic for cost plan versions:
// column schema normalization, derived-field calculation, the cell edit
// session, clipboard/workbook import, selection and batch persistence.
package services

import (
	"strconv"
	"strings"
)

// Module codes for the three ledger kinds a cost plan version carries.
const (
	ModuleMaterial    = "MATERIAL"
	ModuleSubcontract = "SUBCONTRACT"
	ModuleExpense     = "EXPENSE"
)

// Canonical field keys for a line item. Columns supplied by templates are
// resolved to these through the alias table in columns.go.
const (
	FieldItemName       = "itemName"
	FieldSpecification  = "specification"
	FieldUnit           = "unit"
	FieldQuantity       = "quantity"
	FieldUnitPrice      = "unitPrice"
	FieldTaxRate        = "taxRate"
	FieldTotalAmount    = "totalAmount"
	FieldTaxAmount      = "taxAmount"
	FieldPreTaxAmount   = "preTaxAmount"
	FieldRemarks        = "remarks"
	FieldCategory       = "category"
	FieldBrand          = "brand"
	FieldContractorName = "contractorName"
	FieldWorkType       = "workType"
)

// DefaultTaxRate is the tax rate percentage seeded into new rows.
const DefaultTaxRate = 9

// LineItem is one row of cost detail. The three amount fields are derived
// and owned by Recompute; everything else is user input.
type LineItem struct {
	ID             string  `json:"id,omitempty"`
	ItemName       string  `json:"itemName"`
	Specification  string  `json:"specification"`
	Unit           string  `json:"unit"`
	Quantity       float64 `json:"quantity"`
	UnitPrice      float64 `json:"unitPrice"`
	TaxRate        float64 `json:"taxRate"`
	TotalAmount    float64 `json:"totalAmount"`
	TaxAmount      float64 `json:"taxAmount"`
	PreTaxAmount   float64 `json:"preTaxAmount"`
	Remarks        string  `json:"remarks"`
	Category       string  `json:"category,omitempty"`
	Brand          string  `json:"brand,omitempty"`
	ContractorName string  `json:"contractorName,omitempty"`
	WorkType       string  `json:"workType,omitempty"`
	SortNo         int     `json:"sortNo"`
}

// NewLineItem returns an empty row with defaults applied. The derived
// fields start at zero, so the calculator invariant holds from creation.
func NewLineItem(category string) LineItem {
	return LineItem{
		TaxRate:  DefaultTaxRate,
		Category: category,
	}
}

// NormalizeModule maps accepted module spellings onto the canonical codes.
// Unknown values pass through upper-cased so callers can reject them.
func NormalizeModule(module string) string {
	switch strings.ToUpper(strings.TrimSpace(module)) {
	case "MATERIAL", "MATERIALS":
		return ModuleMaterial
	case "SUBCONTRACT":
		return ModuleSubcontract
	case "EXPENSE", "OTHER":
		return ModuleExpense
	default:
		return strings.ToUpper(strings.TrimSpace(module))
	}
}

// IsDerivedField reports whether key names one of the calculator-owned
// amount fields. Derived cells are never editable, whatever the template says.
func IsDerivedField(key string) bool {
	switch key {
	case FieldTotalAmount, FieldTaxAmount, FieldPreTaxAmount:
		return true
	}
	return false
}

// CellValue returns the value of the named field as its native type.
// Unknown keys return nil.
func (li LineItem) CellValue(key string) any {
	switch key {
	case FieldItemName:
		return li.ItemName
	case FieldSpecification:
		return li.Specification
	case FieldUnit:
		return li.Unit
	case FieldQuantity:
		return li.Quantity
	case FieldUnitPrice:
		return li.UnitPrice
	case FieldTaxRate:
		return li.TaxRate
	case FieldTotalAmount:
		return li.TotalAmount
	case FieldTaxAmount:
		return li.TaxAmount
	case FieldPreTaxAmount:
		return li.PreTaxAmount
	case FieldRemarks:
		return li.Remarks
	case FieldCategory:
		return li.Category
	case FieldBrand:
		return li.Brand
	case FieldContractorName:
		return li.ContractorName
	case FieldWorkType:
		return li.WorkType
	}
	return nil
}

// ApplyCell sets the named field from raw text input and returns the
// updated row. Numeric fields coerce "" and "-" to zero; any other
// non-numeric text is rejected and the row is returned unchanged.
// Writes to derived fields are rejected outright.
func (li LineItem) ApplyCell(key, raw string) (LineItem, error) {
	if IsDerivedField(key) {
		return li, ErrDerivedField
	}
	switch key {
	case FieldItemName:
		li.ItemName = raw
	case FieldSpecification:
		li.Specification = raw
	case FieldUnit:
		li.Unit = raw
	case FieldRemarks:
		li.Remarks = raw
	case FieldCategory:
		li.Category = raw
	case FieldBrand:
		li.Brand = raw
	case FieldContractorName:
		li.ContractorName = raw
	case FieldWorkType:
		li.WorkType = raw
	case FieldQuantity, FieldUnitPrice, FieldTaxRate:
		n, err := CoerceNumber(raw)
		if err != nil {
			return li, err
		}
		switch key {
		case FieldQuantity:
			li.Quantity = n
		case FieldUnitPrice:
			li.UnitPrice = n
		case FieldTaxRate:
			li.TaxRate = n
		}
		li = Recompute(li)
	default:
		return li, ErrUnknownField
	}
	return li, nil
}

// CoerceNumber parses raw text typed into a numeric cell. Empty input and a
// lone minus sign (a negative number being typed) coerce to zero.
func CoerceNumber(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "-" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", ""), 64)
	if err != nil {
		return 0, ErrNotANumber
	}
	return n, nil
}

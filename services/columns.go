package services

import "strconv"

// ColumnConfig is one column definition as supplied by a cost plan template.
// Field keys are template vocabulary and go through the alias table; the
// zero-value pointers mean "not specified" and take the documented defaults.
type ColumnConfig struct {
	Field     string `json:"field"`
	Label     string `json:"label"`
	Type      string `json:"type"` // "string" | "number"
	Editable  *bool  `json:"editable"`
	Required  bool   `json:"required"`
	Visible   *bool  `json:"visible"`
	Width     int    `json:"width"`
	Precision *int   `json:"precision"`
}

// DisplayColumn is a normalized, renderable column. Key is the canonical
// field key after alias resolution.
type DisplayColumn struct {
	Key       string
	Label     string
	Type      string
	Editable  bool
	Required  bool
	Width     int
	Precision int
}

// fieldAliases maps template field keys onto the canonical vocabulary.
// Unknown fields pass through unchanged.
var fieldAliases = map[string]string{
	"name":            FieldItemName,
	"item_name":       FieldItemName,
	"spec":            FieldSpecification,
	"specification":   FieldSpecification,
	"model":           FieldSpecification,
	"unit":            FieldUnit,
	"uom":             FieldUnit,
	"qty":             FieldQuantity,
	"quantity":        FieldQuantity,
	"price":           FieldUnitPrice,
	"price_tax":       FieldUnitPrice,
	"unit_price":      FieldUnitPrice,
	"amount":          FieldTotalAmount,
	"amount_tax":      FieldTotalAmount,
	"total_amount":    FieldTotalAmount,
	"tax_rate":        FieldTaxRate,
	"tax_amount":      FieldTaxAmount,
	"pre_tax_amount":  FieldPreTaxAmount,
	"amount_no_tax":   FieldPreTaxAmount,
	"remark":          FieldRemarks,
	"remarks":         FieldRemarks,
	"category":        FieldCategory,
	"brand":           FieldBrand,
	"contractor":      FieldContractorName,
	"contractor_name": FieldContractorName,
	"work_type":       FieldWorkType,
}

// CanonicalKey resolves a template field key to the canonical vocabulary.
func CanonicalKey(field string) string {
	if key, ok := fieldAliases[field]; ok {
		return key
	}
	return field
}

// DefaultColumns is the built-in column set used when a template supplies no
// schema for a module.
func DefaultColumns() []DisplayColumn {
	return []DisplayColumn{
		{Key: FieldItemName, Label: "项目名称", Type: "string", Editable: true, Required: true, Width: 200},
		{Key: FieldSpecification, Label: "规格型号", Type: "string", Editable: true, Width: 150},
		{Key: FieldUnit, Label: "单位", Type: "string", Editable: true, Width: 70},
		{Key: FieldQuantity, Label: "数量", Type: "number", Editable: true, Width: 90, Precision: 4},
		{Key: FieldUnitPrice, Label: "含税单价", Type: "number", Editable: true, Width: 110, Precision: 6},
		{Key: FieldTaxRate, Label: "税率%", Type: "number", Editable: true, Width: 70, Precision: 2},
		{Key: FieldTotalAmount, Label: "含税合价", Type: "number", Width: 120, Precision: 2},
		{Key: FieldTaxAmount, Label: "税额", Type: "number", Width: 110, Precision: 2},
		{Key: FieldPreTaxAmount, Label: "不含税金额", Type: "number", Width: 120, Precision: 2},
		{Key: FieldRemarks, Label: "备注", Type: "string", Editable: true, Width: 180},
	}
}

// NormalizeColumns turns template column configs into the ordered display
// column list. Columns with visible=false are dropped, field keys are
// resolved through the alias table, and derived-field columns are forced
// non-editable regardless of the template's editable flag. An empty or nil
// input yields the default column set.
func NormalizeColumns(configs []ColumnConfig) []DisplayColumn {
	if len(configs) == 0 {
		return DefaultColumns()
	}

	cols := make([]DisplayColumn, 0, len(configs))
	for _, cfg := range configs {
		if cfg.Visible != nil && !*cfg.Visible {
			continue
		}
		key := CanonicalKey(cfg.Field)

		label := cfg.Label
		if label == "" {
			label = cfg.Field
		}

		editable := cfg.Editable == nil || *cfg.Editable
		if IsDerivedField(key) {
			editable = false
		}

		colType := cfg.Type
		if colType == "" {
			colType = "string"
		}

		// An explicit "precision": 0 means integer display; only an absent
		// precision takes the two-decimal default.
		precision := 0
		if cfg.Precision != nil {
			precision = *cfg.Precision
		} else if colType == "number" {
			precision = 2
		}

		cols = append(cols, DisplayColumn{
			Key:       key,
			Label:     label,
			Type:      colType,
			Editable:  editable,
			Required:  cfg.Required,
			Width:     cfg.Width,
			Precision: precision,
		})
	}
	return cols
}

// EditableColumns returns the subset of display columns that accept user
// input, in display order. This ordering drives paste target mapping and
// Tab navigation.
func EditableColumns(cols []DisplayColumn) []DisplayColumn {
	editable := make([]DisplayColumn, 0, len(cols))
	for _, col := range cols {
		if col.Editable && !IsDerivedField(col.Key) {
			editable = append(editable, col)
		}
	}
	return editable
}

// FormatCell renders a cell value for display. Numbers use the column's
// precision as-is; NormalizeColumns resolves unspecified precisions to two
// decimal places, so a zero here is a deliberate integer display.
func FormatCell(col DisplayColumn, value any) string {
	switch v := value.(type) {
	case float64:
		precision := col.Precision
		if precision < 0 {
			precision = 2
		}
		return strconv.FormatFloat(v, 'f', precision, 64)
	case string:
		return v
	case nil:
		return ""
	default:
		return ""
	}
}

package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateLedgerExcel renders one module ledger as an Excel workbook and
// returns the file contents. Column layout follows the version's template
// schema, so the sheet mirrors what the grid shows on screen.
func GenerateLedgerExcel(data LedgerExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Sheet name (max 31 chars).
	sheetName := data.ModuleName
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "Ledger"
	}

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	// One index column plus one column per schema column.
	colCount := len(data.Columns) + 1
	colName := func(n int) string {
		name, _ := excelize.ColumnNumberToName(n)
		return name
	}
	lastCol := colName(colCount)

	if err := f.SetColWidth(sheetName, "A", "A", 6); err != nil {
		return nil, fmt.Errorf("set col width A: %w", err)
	}
	for i, col := range data.Columns {
		width := float64(col.Width) / 7
		if width < 8 {
			width = 8
		}
		name := colName(i + 2)
		if err := f.SetColWidth(sheetName, name, name, width); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", name, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 16,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Size: 11,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "#FFFFFF",
			Size:  11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	cellStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Size: 10,
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create cell style: %w", err)
	}

	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	// ── Header rows (1-3) ───────────────────────────────────────────────

	title := data.ProjectName + " " + data.ModuleName
	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(title))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	if data.VersionNo != "" {
		if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
			return nil, fmt.Errorf("merge version: %w", err)
		}
		f.SetCellValue(sheetName, "A2", "版本: "+data.VersionNo)
		f.SetCellStyle(sheetName, "A2", lastCol+"2", subtitleStyle)
	}

	if err := f.MergeCell(sheetName, "A3", lastCol+"3"); err != nil {
		return nil, fmt.Errorf("merge date: %w", err)
	}
	f.SetCellValue(sheetName, "A3", "日期: "+data.CreatedDate)
	f.SetCellStyle(sheetName, "A3", lastCol+"3", subtitleStyle)

	// ── Row 5: column headers ───────────────────────────────────────────

	f.SetCellValue(sheetName, "A5", "#")
	for i, col := range data.Columns {
		f.SetCellValue(sheetName, colName(i+2)+"5", col.Label)
	}
	f.SetCellStyle(sheetName, "A5", lastCol+"5", headerStyle)

	// ── Data rows (starting row 6) ──────────────────────────────────────

	row := 6
	for idx, item := range data.Items {
		rowStr := fmt.Sprintf("%d", row)

		f.SetCellValue(sheetName, "A"+rowStr, idx+1)
		for i, col := range data.Columns {
			cell := colName(i+2) + rowStr
			switch v := item.CellValue(col.Key).(type) {
			case float64:
				f.SetCellValue(sheetName, cell, v)
			case string:
				f.SetCellValue(sheetName, cell, sanitizeExcelCell(v))
			}
		}
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, cellStyle)

		row++
	}

	// ── Summary rows ────────────────────────────────────────────────────

	row++
	labelCol := colName(colCount - 1)
	valueCol := lastCol

	summaries := []struct {
		label string
		value float64
	}{
		{"含税合计:", data.Totals.TotalAmount},
		{"税额合计:", data.Totals.TaxAmount},
		{"不含税合计:", data.Totals.PreTaxAmount},
	}
	for _, s := range summaries {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, labelCol+rowStr, s.label)
		f.SetCellStyle(sheetName, labelCol+rowStr, labelCol+rowStr, summaryLabelStyle)
		f.SetCellValue(sheetName, valueCol+rowStr, s.value)
		f.SetCellStyle(sheetName, valueCol+rowStr, valueCol+rowStr, summaryValueStyle)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}

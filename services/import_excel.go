package services

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Hard caps on imported text fields, matching the line_items collection.
const (
	maxItemNameLen = 200
	maxTextLen     = 500
)

// ImportError represents a single field-level error on one uploaded row.
type ImportError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportResult is returned after parsing and validating an uploaded workbook.
// Items holds the rows that passed validation, recomputed and in file order.
type ImportResult struct {
	TotalRows int           `json:"total_rows"`
	ValidRows int           `json:"valid_rows"`
	ErrorRows int           `json:"error_rows"`
	Errors    []ImportError `json:"errors"`
	Items     []LineItem    `json:"-"`
	FileName  string        `json:"-"`
}

// parseWorkbook reads an xlsx file and returns headers + data rows from the
// first sheet.
func parseWorkbook(file multipart.File) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	headers := rows[0]
	dataRows := rows[1:]
	return headers, dataRows, nil
}

// mapHeadersToKeys maps uploaded column headers onto canonical field keys.
// Headers match either a column label or a field key (directly or through the
// alias table). Returns one key per column ("" for unrecognized) plus the
// unrecognized header list.
func mapHeadersToKeys(headers []string, cols []DisplayColumn) ([]string, []string) {
	labelToKey := make(map[string]string, len(cols))
	for _, c := range cols {
		labelToKey[strings.ToLower(strings.TrimSpace(c.Label))] = c.Key
		labelToKey[strings.ToLower(c.Key)] = c.Key
	}

	mapped := make([]string, len(headers))
	var unrecognized []string

	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		norm = strings.TrimSuffix(norm, " *")
		norm = strings.TrimSpace(norm)

		if key, ok := labelToKey[norm]; ok {
			mapped[i] = key
			continue
		}
		if key := CanonicalKey(norm); key != norm {
			mapped[i] = key
			continue
		}
		mapped[i] = ""
		unrecognized = append(unrecognized, h)
	}
	return mapped, unrecognized
}

// ImportLedgerWorkbook parses an uploaded xlsx into ledger rows for one
// module. Rows missing an item name or carrying unparseable numbers are
// reported in Errors and excluded from Items; derived columns in the file are
// ignored and recomputed from the imported inputs.
func ImportLedgerWorkbook(
	file multipart.File,
	fileName string,
	cols []DisplayColumn,
	defaultCategory string,
) (*ImportResult, error) {
	if !strings.HasSuffix(strings.ToLower(fileName), ".xlsx") {
		return nil, fmt.Errorf("unsupported file format: must be .xlsx")
	}

	headers, dataRows, err := parseWorkbook(file)
	if err != nil {
		return nil, err
	}

	columnKeys, _ := mapHeadersToKeys(headers, cols)

	keyToLabel := make(map[string]string, len(cols))
	for _, c := range cols {
		keyToLabel[c.Key] = c.Label
	}
	label := func(key string) string {
		if l := keyToLabel[key]; l != "" {
			return l
		}
		return key
	}

	result := &ImportResult{
		TotalRows: len(dataRows),
		FileName:  fileName,
	}

	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row
		item := NewLineItem(defaultCategory)
		var rowErrors []ImportError

		for colIdx, key := range columnKeys {
			if key == "" || IsDerivedField(key) {
				continue
			}
			value := ""
			if colIdx < len(row) {
				value = strings.TrimSpace(row[colIdx])
			}
			updated, err := item.ApplyCell(key, value)
			if err != nil {
				rowErrors = append(rowErrors, ImportError{
					Row:     rowNum,
					Field:   label(key),
					Message: fmt.Sprintf("%s: %q is not a number", label(key), value),
				})
				continue
			}
			item = updated
		}

		if item.ItemName == "" {
			rowErrors = append(rowErrors, ImportError{
				Row:     rowNum,
				Field:   label(FieldItemName),
				Message: fmt.Sprintf("%s is required", label(FieldItemName)),
			})
		}
		rowErrors = append(rowErrors, validateImportTextLengths(rowNum, item, label)...)

		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			continue
		}
		result.Items = append(result.Items, Recompute(item))
	}

	errorRowSet := make(map[int]bool)
	for _, e := range result.Errors {
		errorRowSet[e.Row] = true
	}
	result.ErrorRows = len(errorRowSet)
	result.ValidRows = result.TotalRows - result.ErrorRows

	return result, nil
}

// validateImportTextLengths enforces the collection's text field caps on
// imported rows.
func validateImportTextLengths(rowNum int, item LineItem, label func(string) string) []ImportError {
	var errs []ImportError

	if len([]rune(item.ItemName)) > maxItemNameLen {
		errs = append(errs, ImportError{
			Row:     rowNum,
			Field:   label(FieldItemName),
			Message: fmt.Sprintf("%s exceeds %d characters", label(FieldItemName), maxItemNameLen),
		})
	}
	longText := map[string]string{
		FieldSpecification: item.Specification,
		FieldRemarks:       item.Remarks,
	}
	for key, v := range longText {
		if len([]rune(v)) > maxTextLen {
			errs = append(errs, ImportError{
				Row:     rowNum,
				Field:   label(key),
				Message: fmt.Sprintf("%s exceeds %d characters", label(key), maxTextLen),
			})
		}
	}
	return errs
}

// GenerateErrorReport creates a downloadable .xlsx file from import errors.
func GenerateErrorReport(errors []ImportError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errors"
	defaultSheet := f.GetSheetName(0)
	f.SetSheetName(defaultSheet, sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})

	f.SetCellValue(sheet, "A1", "Row #")
	f.SetCellValue(sheet, "B1", "Field")
	f.SetCellValue(sheet, "C1", "Error")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range errors {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, e.Field)
		f.SetCellValue(sheet, "C"+row, e.Message)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}

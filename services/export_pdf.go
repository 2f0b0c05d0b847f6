package services

import (
	"fmt"
	"math"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GenerateLedgerPDF renders one module ledger as a landscape A4 PDF using
// maroto/v2. It returns the raw PDF bytes or an error.
func GenerateLedgerPDF(data LedgerExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	spans := ledgerColumnSpans(data.Columns)

	addLedgerHeader(m, data)
	addLedgerTableHeader(m, data.Columns, spans)
	for _, item := range data.Items {
		addLedgerTableRow(m, data.Columns, spans, item)
	}
	addLedgerSummary(m, data)
	addLedgerFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// ledgerColumnSpans distributes maroto's 12 grid units across the schema
// columns proportionally to their configured widths. The first unit is
// reserved for the index column; every column gets at least one unit and
// leftovers go to the widest columns first.
func ledgerColumnSpans(cols []DisplayColumn) []int {
	const grid = 12
	available := grid - 1 // index column
	if len(cols) == 0 {
		return nil
	}
	if len(cols) >= available {
		spans := make([]int, len(cols))
		for i := range spans {
			spans[i] = 1
		}
		return spans
	}

	totalWidth := 0
	for _, c := range cols {
		w := c.Width
		if w <= 0 {
			w = 100
		}
		totalWidth += w
	}

	spans := make([]int, len(cols))
	used := 0
	for i, c := range cols {
		w := c.Width
		if w <= 0 {
			w = 100
		}
		span := available * w / totalWidth
		if span < 1 {
			span = 1
		}
		spans[i] = span
		used += span
	}

	// Hand leftover units to the widest columns; claw back overflow from
	// the narrowest that can spare a unit.
	for used < available {
		widest := 0
		for i := range cols {
			if cols[i].Width > cols[widest].Width {
				widest = i
			}
		}
		spans[widest]++
		used++
	}
	for used > available {
		for i := len(spans) - 1; i >= 0 && used > available; i-- {
			if spans[i] > 1 {
				spans[i]--
				used--
			}
		}
	}
	return spans
}

func addLedgerHeader(m core.Maroto, data LedgerExportData) {
	title := data.ProjectName + " " + data.ModuleName
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("版本: %s", data.VersionNo), props.Text{
					Size:  9,
					Align: align.Left,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("日期: %s", data.CreatedDate), props.Text{
					Size:  9,
					Align: align.Right,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
		),
	)

	m.AddRows(row.New(4))
}

func addLedgerTableHeader(m core.Maroto, cols []DisplayColumn, spans []int) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerCell := props.Cell{BackgroundColor: headerBg}

	rowCols := []core.Col{
		col.New(1).Add(text.New("#", headerText)).WithStyle(&headerCell),
	}
	for i, c := range cols {
		rowCols = append(rowCols,
			col.New(spans[i]).Add(text.New(c.Label, headerText)).WithStyle(&headerCell),
		)
	}

	m.AddRows(row.New(8).Add(rowCols...))
}

func addLedgerTableRow(m core.Maroto, cols []DisplayColumn, spans []int, item LineItem) {
	baseText := props.Text{
		Size:  7,
		Align: align.Center,
	}
	leftText := baseText
	leftText.Align = align.Left
	rightText := baseText
	rightText.Align = align.Right

	rowCols := []core.Col{
		col.New(1).Add(text.New(fmt.Sprintf("%d", item.SortNo), baseText)),
	}
	for i, c := range cols {
		style := leftText
		if c.Type == "number" {
			style = rightText
		}
		cell := FormatCell(c, item.CellValue(c.Key))
		rowCols = append(rowCols, col.New(spans[i]).Add(text.New(cell, style)))
	}

	m.AddRows(row.New(7).Add(rowCols...))
}

func addLedgerSummary(m core.Maroto, data LedgerExportData) {
	m.AddRows(row.New(6))

	summaryBg := &props.Color{Red: 240, Green: 240, Blue: 240}
	summaryCell := &props.Cell{BackgroundColor: summaryBg}

	labelStyle := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Right,
	}
	valueStyle := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Right,
	}

	summaries := []struct {
		label string
		value float64
	}{
		{"含税合计", data.Totals.TotalAmount},
		{"税额合计", data.Totals.TaxAmount},
		{"不含税合计", data.Totals.PreTaxAmount},
	}
	for _, s := range summaries {
		m.AddRows(
			row.New(8).Add(
				col.New(8).Add(
					text.New(s.label, labelStyle),
				).WithStyle(summaryCell),
				col.New(4).Add(
					text.New(formatAmount(s.value), valueStyle),
				).WithStyle(summaryCell),
			),
		)
	}
}

func addLedgerFooter(m core.Maroto, data LedgerExportData) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(
					fmt.Sprintf("Generated on %s", data.CreatedDate),
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: &props.Color{Red: 140, Green: 140, Blue: 140},
					},
				),
			),
		),
	)
}

// formatAmount renders a money value with two decimals, dropping them for
// whole amounts.
func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

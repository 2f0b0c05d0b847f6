package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// LedgerColumn is one schema-driven column header.
type LedgerColumn struct {
	Key      string
	Label    string
	Type     string
	Editable bool
	Width    int
}

// LedgerCell is one rendered grid cell.
type LedgerCell struct {
	Key      string
	Display  string
	Raw      string
	Editable bool
	Numeric  bool
}

// LedgerRow is one rendered grid row.
type LedgerRow struct {
	Index    int
	Cells    []LedgerCell
	Selected bool
}

// ModuleTab is one ledger module tab above the grid.
type ModuleTab struct {
	Code   string
	Name   string
	Active bool
}

// EditingCell marks the cell currently in edit mode, if any.
type EditingCell struct {
	Row   int
	Col   string
	Value string
}

// LedgerGridData feeds the ledger grid view.
type LedgerGridData struct {
	VersionID     string
	VersionNo     string
	VersionStatus string
	ProjectName   string
	ModuleCode    string
	ModuleName    string
	Modules       []ModuleTab
	Columns       []LedgerColumn
	Rows          []LedgerRow
	TotalAmount   string
	TaxAmount     string
	PreTaxAmount  string
	Editable      bool
	Editing       *EditingCell
	SelectedCount int
}

func ledgerBase(data LedgerGridData) string {
	return fmt.Sprintf("/versions/%s/ledger/%s", data.VersionID, data.ModuleCode)
}

// LedgerGrid renders the table itself, the target of every grid swap.
func LedgerGrid(data LedgerGridData) templ.Component {
	return render(func(b *strings.Builder) {
		base := ledgerBase(data)

		b.WriteString(`<div id="ledger-grid">`)
		b.WriteString(`<table class="ledger-table"><thead><tr>`)
		if data.Editable {
			fmt.Fprintf(b,
				`<th class="col-select"><input type="checkbox" hx-post="%s/select-all" hx-target="#ledger-grid" hx-swap="outerHTML"`,
				esc(base))
			if data.SelectedCount == len(data.Rows) && len(data.Rows) > 0 {
				b.WriteString(` checked`)
			}
			b.WriteString(`></th>`)
		}
		b.WriteString(`<th class="col-index">#</th>`)
		for _, col := range data.Columns {
			cls := "col-text"
			if col.Type == "number" {
				cls = "col-number"
			}
			if !col.Editable {
				cls += " col-derived"
			}
			fmt.Fprintf(b, `<th class="%s" style="min-width:%dpx">%s</th>`, cls, col.Width, esc(col.Label))
		}
		b.WriteString(`</tr></thead><tbody>`)

		for _, row := range data.Rows {
			b.WriteString(`<tr>`)
			if data.Editable {
				fmt.Fprintf(b,
					`<td class="col-select"><input type="checkbox" name="row" value="%d" hx-post="%s/select/%d" hx-target="#ledger-grid" hx-swap="outerHTML"`,
					row.Index, esc(base), row.Index)
				if row.Selected {
					b.WriteString(` checked`)
				}
				b.WriteString(`></td>`)
			}
			fmt.Fprintf(b, `<td class="col-index">%d</td>`, row.Index+1)
			for _, cell := range row.Cells {
				writeLedgerCell(b, base, data, row.Index, cell)
			}
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</tbody><tfoot><tr>`)
		span := len(data.Columns) + 1
		if data.Editable {
			span++
		}
		fmt.Fprintf(b,
			`<td colspan="%d" class="grid-totals">含税合计 %s　税额 %s　不含税 %s</td>`,
			span, esc(data.TotalAmount), esc(data.TaxAmount), esc(data.PreTaxAmount))
		b.WriteString(`</tr></tfoot></table></div>`)
	})
}

func writeLedgerCell(b *strings.Builder, base string, data LedgerGridData, rowIdx int, cell LedgerCell) {
	cls := "cell"
	if cell.Numeric {
		cls += " cell-number"
	}
	if !cell.Editable {
		cls += " cell-derived"
	}

	editing := data.Editing != nil && data.Editing.Row == rowIdx && data.Editing.Col == cell.Key
	if editing {
		fmt.Fprintf(b, `<td class="%s is-editing">`, cls)
		fmt.Fprintf(b, `<form hx-post="%s/cells" hx-target="#ledger-grid" hx-swap="outerHTML">`, esc(base))
		fmt.Fprintf(b, `<input type="hidden" name="row" value="%d">`, rowIdx)
		fmt.Fprintf(b, `<input type="hidden" name="col" value="%s">`, esc(cell.Key))
		fmt.Fprintf(b, `<input type="text" name="value" value="%s" autofocus data-cell-editor>`, esc(data.Editing.Value))
		b.WriteString(`</form></td>`)
		return
	}

	if cell.Editable && data.Editable {
		fmt.Fprintf(b,
			`<td class="%s" hx-get="%s?edit_row=%d&edit_col=%s" hx-target="#ledger-grid" hx-swap="outerHTML">%s</td>`,
			cls, esc(base), rowIdx, esc(cell.Key), esc(cell.Display))
		return
	}
	fmt.Fprintf(b, `<td class="%s">%s</td>`, cls, esc(cell.Display))
}

// LedgerContent renders tabs, toolbar, grid and the indicator panel slot.
func LedgerContent(data LedgerGridData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		base := ledgerBase(data)
		b := &strings.Builder{}

		fmt.Fprintf(b, `<div id="ledger-view" class="content-panel" data-version="%s" data-module="%s">`,
			esc(data.VersionID), esc(data.ModuleCode))
		fmt.Fprintf(b, `<div class="panel-header"><h1>%s · %s</h1><span class="badge badge-%s">%s</span></div>`,
			esc(data.ProjectName), esc(data.VersionNo), esc(strings.ToLower(data.VersionStatus)), esc(data.VersionStatus))

		b.WriteString(`<nav class="module-tabs">`)
		for _, tab := range data.Modules {
			cls := "tab"
			if tab.Active {
				cls = "tab is-active"
			}
			fmt.Fprintf(b, `<a class="%s" href="/versions/%s/ledger/%s">%s</a>`,
				cls, esc(data.VersionID), esc(tab.Code), esc(tab.Name))
		}
		b.WriteString(`</nav>`)

		b.WriteString(`<div class="ledger-toolbar">`)
		if data.Editable {
			fmt.Fprintf(b, `<button hx-post="%s/rows" hx-target="#ledger-grid" hx-swap="outerHTML">新增行</button>`, esc(base))
			fmt.Fprintf(b,
				`<button class="btn-danger" hx-delete="%s/rows" hx-target="#ledger-grid" hx-swap="outerHTML" hx-confirm="删除选中的 %d 行？"`,
				esc(base), data.SelectedCount)
			if data.SelectedCount == 0 {
				b.WriteString(` disabled`)
			}
			fmt.Fprintf(b, `>删除选中 (%d)</button>`, data.SelectedCount)
			fmt.Fprintf(b,
				`<form class="paste-form" hx-post="%s/paste" hx-target="#ledger-grid" hx-swap="outerHTML">`+
					`<textarea name="text" placeholder="从 Excel 粘贴数据" data-paste-box></textarea>`+
					`<button type="submit">粘贴导入</button></form>`,
				esc(base))
			fmt.Fprintf(b, `<a href="/versions/%s/ledger/%s/import">文件导入</a>`, esc(data.VersionID), esc(data.ModuleCode))
		} else {
			b.WriteString(`<span class="muted">非草稿版本，台账只读。</span>`)
		}
		fmt.Fprintf(b, `<a href="%s/export/excel">导出 Excel</a>`, esc(base))
		fmt.Fprintf(b, `<a href="%s/export/pdf">导出 PDF</a>`, esc(base))
		b.WriteString(`</div>`)

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := LedgerGrid(data).Render(ctx, w); err != nil {
			return err
		}

		// Indicators refresh independently over HTMX.
		tail := fmt.Sprintf(
			`<div id="indicators-panel" hx-get="/versions/%s/indicators" hx-trigger="load" hx-swap="outerHTML"></div></div>`,
			esc(data.VersionID))
		_, err := io.WriteString(w, tail)
		return err
	})
}

// LedgerPage renders the full document.
func LedgerPage(data LedgerGridData, headerData HeaderData, sidebarData SidebarData) templ.Component {
	return page(data.ProjectName+" · "+data.ModuleName, headerData, sidebarData, LedgerContent(data))
}

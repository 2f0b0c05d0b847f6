package templates

import (
	"fmt"
	"strings"

	"github.com/a-h/templ"
)

// LedgerImportData feeds the workbook upload form.
type LedgerImportData struct {
	VersionID   string
	VersionNo   string
	ProjectName string
	ModuleCode  string
	ModuleName  string
}

// ImportErrorRow is one validation failure shown in the result table.
type ImportErrorRow struct {
	Row     int
	Field   string
	Message string
}

// LedgerImportResultData feeds the validation result partial.
type LedgerImportResultData struct {
	VersionID  string
	ModuleCode string
	FileName   string
	TotalRows  int
	ValidRows  int
	ErrorRows  int
	Errors     []ImportErrorRow
	ItemsJSON  string
}

// LedgerImportContent renders the upload form.
func LedgerImportContent(data LedgerImportData) templ.Component {
	return render(func(b *strings.Builder) {
		fmt.Fprintf(b, `<div id="import-view" class="content-panel"><div class="panel-header"><h1>%s · %s 导入</h1></div>`,
			esc(data.ProjectName), esc(data.ModuleName))
		fmt.Fprintf(b,
			`<form hx-post="/versions/%s/ledger/%s/import" hx-target="#import-result" hx-encoding="multipart/form-data">`,
			esc(data.VersionID), esc(data.ModuleCode))
		b.WriteString(`<input type="file" name="file" accept=".xlsx" required>`)
		b.WriteString(`<button type="submit" class="btn btn-primary">上传并校验</button></form>`)
		b.WriteString(`<p class="hint">仅支持 .xlsx，首行为表头，列名可用模板表头或字段名。</p>`)
		fmt.Fprintf(b, `<a href="/versions/%s/ledger/%s">返回台账</a>`, esc(data.VersionID), esc(data.ModuleCode))
		b.WriteString(`<div id="import-result"></div></div>`)
	})
}

// LedgerImportPage renders the full document.
func LedgerImportPage(data LedgerImportData, headerData HeaderData, sidebarData SidebarData) templ.Component {
	return page(data.ModuleName+" 导入", headerData, sidebarData, LedgerImportContent(data))
}

// LedgerImportResult renders the validation outcome and, when clean, the
// commit form carrying the parsed rows.
func LedgerImportResult(data LedgerImportResultData) templ.Component {
	return render(func(b *strings.Builder) {
		b.WriteString(`<div id="import-result">`)
		fmt.Fprintf(b, `<p>%s：共 %d 行，有效 %d 行，错误 %d 行。</p>`,
			esc(data.FileName), data.TotalRows, data.ValidRows, data.ErrorRows)

		if len(data.Errors) > 0 {
			b.WriteString(`<table class="data-table"><thead><tr><th>行号</th><th>字段</th><th>错误</th></tr></thead><tbody>`)
			for _, e := range data.Errors {
				fmt.Fprintf(b, `<tr><td>%d</td><td>%s</td><td>%s</td></tr>`, e.Row, esc(e.Field), esc(e.Message))
			}
			b.WriteString(`</tbody></table>`)
			fmt.Fprintf(b,
				`<form method="post" action="/versions/%s/ledger/%s/import/errors"><input type="hidden" name="errors_json" value="%s"><button type="submit">下载错误报告</button></form>`,
				esc(data.VersionID), esc(data.ModuleCode), esc(errorsJSONField(data)))
		}

		if data.ErrorRows == 0 && data.ValidRows > 0 {
			fmt.Fprintf(b,
				`<form hx-post="/versions/%s/ledger/%s/import/commit" hx-target="#import-result">`,
				esc(data.VersionID), esc(data.ModuleCode))
			fmt.Fprintf(b, `<input type="hidden" name="items_json" value="%s">`, esc(data.ItemsJSON))
			fmt.Fprintf(b, `<button type="submit" class="btn btn-primary">确认导入 %d 行</button></form>`, data.ValidRows)
		}
		b.WriteString(`</div>`)
	})
}

// LedgerImportSuccess renders the post-commit confirmation.
func LedgerImportSuccess(versionID, moduleCode string, imported int) templ.Component {
	return render(func(b *strings.Builder) {
		b.WriteString(`<div id="import-result">`)
		fmt.Fprintf(b, `<p class="import-success">已导入 %d 行。</p>`, imported)
		fmt.Fprintf(b, `<a href="/versions/%s/ledger/%s">返回台账</a></div>`, esc(versionID), esc(moduleCode))
	})
}

func errorsJSONField(data LedgerImportResultData) string {
	var sb strings.Builder
	sb.WriteString(`[`)
	for i, e := range data.Errors {
		if i > 0 {
			sb.WriteString(`,`)
		}
		fmt.Fprintf(&sb, `{"row":%d,"field":%q,"message":%q}`, e.Row, e.Field, e.Message)
	}
	sb.WriteString(`]`)
	return sb.String()
}

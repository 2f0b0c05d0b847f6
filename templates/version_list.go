package templates

import (
	"fmt"
	"strings"

	"github.com/a-h/templ"
)

// VersionListItem is one cost version row.
type VersionListItem struct {
	ID          string
	VersionNo   string
	Status      string
	StatusClass string
	Remarks     string
	Created     string
}

// TemplateOption is a selectable ledger template for new versions.
type TemplateOption struct {
	ID   string
	Name string
}

// VersionListData feeds the version list for one project.
type VersionListData struct {
	ProjectID   string
	ProjectName string
	Versions    []VersionListItem
	Templates   []TemplateOption
}

// VersionListContent renders the version table and the create form.
func VersionListContent(data VersionListData) templ.Component {
	return render(func(b *strings.Builder) {
		fmt.Fprintf(b, `<div id="version-list" class="content-panel"><div class="panel-header"><h1>%s · 成本版本</h1></div>`,
			esc(data.ProjectName))

		fmt.Fprintf(b, `<form class="inline-form" hx-post="/projects/%s/versions" hx-target="#version-list" hx-swap="outerHTML">`,
			esc(data.ProjectID))
		b.WriteString(`<input type="text" name="version_no" placeholder="版本号，如 V1" required>`)
		b.WriteString(`<select name="template">`)
		b.WriteString(`<option value="">无模板（默认列）</option>`)
		for _, t := range data.Templates {
			fmt.Fprintf(b, `<option value="%s">%s</option>`, esc(t.ID), esc(t.Name))
		}
		b.WriteString(`</select>`)
		b.WriteString(`<input type="text" name="remarks" placeholder="备注">`)
		b.WriteString(`<button type="submit" class="btn btn-primary">新建版本</button></form>`)

		if len(data.Versions) == 0 {
			b.WriteString(`<p class="empty-state">该项目还没有成本版本。</p></div>`)
			return
		}

		b.WriteString(`<table class="data-table"><thead><tr>` +
			`<th>版本号</th><th>状态</th><th>备注</th><th>创建时间</th><th></th>` +
			`</tr></thead><tbody>`)
		for _, v := range data.Versions {
			b.WriteString(`<tr>`)
			fmt.Fprintf(b, `<td><a href="/versions/%s/ledger/MATERIAL">%s</a></td>`, esc(v.ID), esc(v.VersionNo))
			fmt.Fprintf(b, `<td><span class="badge %s">%s</span></td>`, esc(v.StatusClass), esc(v.Status))
			fmt.Fprintf(b, `<td>%s</td>`, esc(v.Remarks))
			fmt.Fprintf(b, `<td>%s</td>`, esc(v.Created))
			b.WriteString(`<td class="row-actions">`)
			if v.Status == "DRAFT" {
				fmt.Fprintf(b,
					`<button hx-post="/versions/%s/seal" hx-target="#version-list" hx-swap="outerHTML" hx-confirm="封版后台账将不可编辑，确认？">封版</button>`,
					esc(v.ID))
			}
			if v.Status == "SEALED" {
				fmt.Fprintf(b,
					`<button hx-post="/versions/%s/archive" hx-target="#version-list" hx-swap="outerHTML">归档</button>`,
					esc(v.ID))
			}
			fmt.Fprintf(b,
				`<button class="btn-danger" hx-delete="/versions/%s" hx-target="#version-list" hx-swap="outerHTML" hx-confirm="删除版本及其全部台账数据？">删除</button>`,
				esc(v.ID))
			b.WriteString(`</td></tr>`)
		}
		b.WriteString(`</tbody></table></div>`)
	})
}

// VersionListPage renders the full document.
func VersionListPage(data VersionListData, headerData HeaderData, sidebarData SidebarData) templ.Component {
	return page(data.ProjectName+" · 成本版本", headerData, sidebarData, VersionListContent(data))
}

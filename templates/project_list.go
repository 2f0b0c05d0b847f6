package templates

import (
	"fmt"
	"strings"

	"github.com/a-h/templ"
)

// ProjectListItem is one project card in the list view.
type ProjectListItem struct {
	ID           string
	Name         string
	Code         string
	Status       string
	StatusClass  string
	VersionCount int
	IsActive     bool
}

// ProjectListData feeds the project list view.
type ProjectListData struct {
	Projects []ProjectListItem
}

// ProjectListContent renders the list body only, for HTMX swaps.
func ProjectListContent(data ProjectListData) templ.Component {
	return render(func(b *strings.Builder) {
		b.WriteString(`<div id="project-list" class="content-panel"><div class="panel-header"><h1>项目列表</h1></div>`)

		b.WriteString(`<form class="inline-form" hx-post="/projects" hx-target="#project-list" hx-swap="outerHTML">`)
		b.WriteString(`<input type="text" name="name" placeholder="项目名称" required>`)
		b.WriteString(`<input type="text" name="code" placeholder="项目编号">`)
		b.WriteString(`<button type="submit" class="btn btn-primary">新建项目</button></form>`)

		if len(data.Projects) == 0 {
			b.WriteString(`<p class="empty-state">还没有项目，先创建一个。</p></div>`)
			return
		}

		b.WriteString(`<table class="data-table"><thead><tr>` +
			`<th>项目名称</th><th>项目编号</th><th>状态</th><th>版本数</th><th></th>` +
			`</tr></thead><tbody>`)
		for _, p := range data.Projects {
			rowCls := ""
			if p.IsActive {
				rowCls = ` class="is-active"`
			}
			fmt.Fprintf(b, `<tr%s>`, rowCls)
			fmt.Fprintf(b, `<td><a href="/projects/%s/versions">%s</a></td>`, esc(p.ID), esc(p.Name))
			fmt.Fprintf(b, `<td>%s</td>`, esc(p.Code))
			fmt.Fprintf(b, `<td><span class="badge %s">%s</span></td>`, esc(p.StatusClass), esc(p.Status))
			fmt.Fprintf(b, `<td>%d</td>`, p.VersionCount)
			b.WriteString(`<td class="row-actions">`)
			fmt.Fprintf(b, `<button hx-post="/projects/%s/activate" hx-swap="none">设为当前</button>`, esc(p.ID))
			fmt.Fprintf(b,
				`<button class="btn-danger" hx-delete="/projects/%s" hx-target="#project-list" hx-swap="outerHTML" hx-confirm="删除项目及其全部版本数据？">删除</button>`,
				esc(p.ID))
			b.WriteString(`</td></tr>`)
		}
		b.WriteString(`</tbody></table></div>`)
	})
}

// ProjectListPage renders the full document.
func ProjectListPage(data ProjectListData, headerData HeaderData, sidebarData SidebarData) templ.Component {
	return page("项目列表", headerData, sidebarData, ProjectListContent(data))
}

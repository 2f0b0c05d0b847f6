// Package templates renders the HTML views served by the handlers.
// Components follow the templ component model: each view exposes a
// full-page constructor and a content-only constructor so handlers can
// return either a complete document or an HTMX partial.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// ActiveProject identifies the project selected in the header switcher.
type ActiveProject struct {
	ID   string
	Name string
}

// ProjectSelectorItem is one entry in the header project dropdown.
type ProjectSelectorItem struct {
	ID       string
	Name     string
	IsActive bool
}

// HeaderData feeds the top navigation bar.
type HeaderData struct {
	ActiveProject *ActiveProject
	Projects      []ProjectSelectorItem
}

// SidebarData feeds the left navigation.
type SidebarData struct {
	ActiveProject *ActiveProject
	ActivePath    string
	VersionCount  int
	DraftCount    int
}

func render(f func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		f(&b)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func esc(s string) string {
	return templ.EscapeString(s)
}

func writeHeader(b *strings.Builder, data HeaderData) {
	b.WriteString(`<header class="app-header"><a class="brand" href="/projects">成本测算</a>`)
	b.WriteString(`<div class="project-selector">`)
	if data.ActiveProject != nil {
		fmt.Fprintf(b, `<span class="active-project">%s</span>`, esc(data.ActiveProject.Name))
	} else {
		b.WriteString(`<span class="active-project muted">未选择项目</span>`)
	}
	if len(data.Projects) > 0 {
		b.WriteString(`<ul class="project-menu">`)
		for _, p := range data.Projects {
			cls := ""
			if p.IsActive {
				cls = ` class="is-active"`
			}
			fmt.Fprintf(b,
				`<li%s><button hx-post="/projects/%s/activate" hx-swap="none">%s</button></li>`,
				cls, esc(p.ID), esc(p.Name))
		}
		b.WriteString(`</ul>`)
	}
	b.WriteString(`</div></header>`)
}

func writeSidebar(b *strings.Builder, data SidebarData) {
	b.WriteString(`<aside class="sidebar"><nav><ul>`)
	writeNavItem(b, data.ActivePath, "/projects", "项目列表")
	if data.ActiveProject != nil {
		versionsPath := "/projects/" + data.ActiveProject.ID + "/versions"
		label := "成本版本"
		if data.VersionCount > 0 {
			label = fmt.Sprintf("成本版本 (%d)", data.VersionCount)
		}
		writeNavItem(b, data.ActivePath, versionsPath, label)
		if data.DraftCount > 0 {
			fmt.Fprintf(b, `<li class="nav-hint">%d 个草稿版本</li>`, data.DraftCount)
		}
	}
	b.WriteString(`</ul></nav></aside>`)
}

func writeNavItem(b *strings.Builder, activePath, href, label string) {
	cls := ""
	if activePath == href || strings.HasPrefix(activePath, href+"/") {
		cls = ` class="is-active"`
	}
	fmt.Fprintf(b, `<li%s><a href="%s">%s</a></li>`, cls, esc(href), esc(label))
}

// page wraps content in the full document shell shared by every view.
func page(title string, headerData HeaderData, sidebarData SidebarData, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="zh-CN"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		fmt.Fprintf(&b, `<title>%s - 成本测算</title>`, esc(title))
		b.WriteString(`<link rel="stylesheet" href="/static/app.css">`)
		b.WriteString(`<script src="/static/htmx.min.js"></script>`)
		b.WriteString(`<script src="/static/app.js" defer></script>`)
		b.WriteString(`</head><body>`)
		writeHeader(&b, headerData)
		b.WriteString(`<div class="app-body">`)
		writeSidebar(&b, sidebarData)
		b.WriteString(`<main id="main-content" class="main-content">`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></div><div id="toast-container"></div></body></html>`)
		return err
	})
}

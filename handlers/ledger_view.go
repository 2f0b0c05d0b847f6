package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costplanning/services"
	"costplanning/templates"
)

// selectionCookieName scopes the row selection to one version+module grid.
func selectionCookieName(versionID, module string) string {
	return "ledger_sel_" + versionID + "_" + module
}

func readSelection(r *http.Request, versionID, module string) *services.Selection {
	sel := services.NewSelection()
	cookie, err := r.Cookie(selectionCookieName(versionID, module))
	if err != nil || cookie.Value == "" {
		return sel
	}
	for _, part := range strings.Split(cookie.Value, "-") {
		if idx, err := strconv.Atoi(part); err == nil {
			sel.Toggle(idx)
		}
	}
	return sel
}

func writeSelection(e *core.RequestEvent, versionID, module string, sel *services.Selection) {
	parts := make([]string, 0, sel.Count())
	for _, idx := range sel.Indices() {
		parts = append(parts, strconv.Itoa(idx))
	}
	http.SetCookie(e.Response, &http.Cookie{
		Name:     selectionCookieName(versionID, module),
		Value:    strings.Join(parts, "-"),
		Path:     "/",
		MaxAge:   60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSelection(e *core.RequestEvent, versionID, module string) {
	http.SetCookie(e.Response, &http.Cookie{
		Name:   selectionCookieName(versionID, module),
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// ledgerContext is everything the grid handlers need about one request's
// version+module pair.
type ledgerContext struct {
	VersionID   string
	VersionNo   string
	Status      string
	ProjectName string
	ModuleCode  string
	Schema      services.TemplateSchema
	Columns     []services.DisplayColumn
	Items       []services.LineItem
}

func loadLedgerContext(app *pocketbase.PocketBase, versionID, module string) (ledgerContext, error) {
	version, err := app.FindRecordById("cost_versions", versionID)
	if err != nil {
		return ledgerContext{}, fmt.Errorf("version not found: %w", err)
	}
	project, err := app.FindRecordById("projects", version.GetString("project"))
	if err != nil {
		return ledgerContext{}, fmt.Errorf("project not found: %w", err)
	}

	moduleCode := services.NormalizeModule(module)
	schema, err := services.LoadVersionSchema(app, versionID)
	if err != nil {
		return ledgerContext{}, fmt.Errorf("load schema: %w", err)
	}
	cols := services.NormalizeColumns(schema.ModuleColumns(moduleCode))

	items, err := services.LoadLineItems(app, versionID, moduleCode)
	if err != nil {
		return ledgerContext{}, fmt.Errorf("load line items: %w", err)
	}

	return ledgerContext{
		VersionID:   versionID,
		VersionNo:   version.GetString("version_no"),
		Status:      version.GetString("status"),
		ProjectName: project.GetString("name"),
		ModuleCode:  moduleCode,
		Schema:      schema,
		Columns:     cols,
		Items:       items,
	}, nil
}

func (lc ledgerContext) editable() bool {
	return lc.Status == services.VersionStatusDraft
}

// defaultCategory picks the category applied to rows created without one.
func (lc ledgerContext) defaultCategory() string {
	if cats := lc.Schema.ModuleCategories(lc.ModuleCode); len(cats) > 0 {
		return cats[0]
	}
	return ""
}

func moduleTabs(schema services.TemplateSchema, active string) []templates.ModuleTab {
	codes := []string{services.ModuleMaterial, services.ModuleSubcontract, services.ModuleExpense}
	if len(schema.Modules) > 0 {
		codes = codes[:0]
		for _, m := range schema.Modules {
			if m.Enabled != nil && !*m.Enabled {
				continue
			}
			codes = append(codes, services.NormalizeModule(m.Code))
		}
	}
	tabs := make([]templates.ModuleTab, 0, len(codes))
	for _, code := range codes {
		name := services.ModuleName(code)
		if m := schema.Module(code); m != nil && m.Name != "" {
			name = m.Name
		}
		tabs = append(tabs, templates.ModuleTab{Code: code, Name: name, Active: code == active})
	}
	return tabs
}

func buildLedgerGridData(lc ledgerContext, sel *services.Selection, editing *templates.EditingCell) templates.LedgerGridData {
	totals := services.CalcLedgerTotals(lc.Items)
	amountCol := services.DisplayColumn{Type: "number", Precision: 2}

	cols := make([]templates.LedgerColumn, 0, len(lc.Columns))
	for _, c := range lc.Columns {
		cols = append(cols, templates.LedgerColumn{
			Key:      c.Key,
			Label:    c.Label,
			Type:     c.Type,
			Editable: c.Editable,
			Width:    c.Width,
		})
	}

	rows := make([]templates.LedgerRow, 0, len(lc.Items))
	for i, item := range lc.Items {
		cells := make([]templates.LedgerCell, 0, len(lc.Columns))
		for _, c := range lc.Columns {
			value := item.CellValue(c.Key)
			cells = append(cells, templates.LedgerCell{
				Key:      c.Key,
				Display:  services.FormatCell(c, value),
				Editable: c.Editable && !services.IsDerivedField(c.Key),
				Numeric:  c.Type == "number",
			})
		}
		rows = append(rows, templates.LedgerRow{
			Index:    i,
			Cells:    cells,
			Selected: sel.Has(i),
		})
	}

	return templates.LedgerGridData{
		VersionID:     lc.VersionID,
		VersionNo:     lc.VersionNo,
		VersionStatus: lc.Status,
		ProjectName:   lc.ProjectName,
		ModuleCode:    lc.ModuleCode,
		ModuleName:    services.ModuleName(lc.ModuleCode),
		Modules:       moduleTabs(lc.Schema, lc.ModuleCode),
		Columns:       cols,
		Rows:          rows,
		TotalAmount:   services.FormatCell(amountCol, totals.TotalAmount),
		TaxAmount:     services.FormatCell(amountCol, totals.TaxAmount),
		PreTaxAmount:  services.FormatCell(amountCol, totals.PreTaxAmount),
		Editable:      lc.editable(),
		Editing:       editing,
		SelectedCount: sel.Count(),
	}
}

// HandleLedgerView handles GET /versions/{id}/ledger/{module}
// With edit_row/edit_col query params the matching cell opens in edit mode.
func HandleLedgerView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		versionID := e.Request.PathValue("id")
		module := e.Request.PathValue("module")

		lc, err := loadLedgerContext(app, versionID, module)
		if err != nil {
			log.Printf("ledger_view: %v", err)
			return ErrorToast(e, http.StatusNotFound, "版本不存在")
		}

		sel := readSelection(e.Request, versionID, lc.ModuleCode)

		var editing *templates.EditingCell
		if rowStr := e.Request.URL.Query().Get("edit_row"); rowStr != "" && lc.editable() {
			row, err := strconv.Atoi(rowStr)
			col := e.Request.URL.Query().Get("edit_col")
			if err == nil {
				var sess services.EditSession
				if sess.BeginEdit(lc.Items, lc.Columns, row, col) {
					var target services.DisplayColumn
					for _, c := range lc.Columns {
						if c.Key == col {
							target = c
						}
					}
					editing = &templates.EditingCell{
						Row:   row,
						Col:   col,
						Value: services.FormatCell(target, sess.Original()),
					}
				}
			}
		}

		data := buildLedgerGridData(lc, sel, editing)

		isHTMX := e.Request.Header.Get("HX-Request") == "true"
		if isHTMX {
			// Cell-edit requests target the grid alone.
			if editing != nil || e.Request.URL.Query().Get("edit_row") != "" {
				return templates.LedgerGrid(data).Render(e.Request.Context(), e.Response)
			}
			return templates.LedgerContent(data).Render(e.Request.Context(), e.Response)
		}

		headerData := GetHeaderData(e.Request)
		sidebarData := GetSidebarData(e.Request)
		return templates.LedgerPage(data, headerData, sidebarData).Render(e.Request.Context(), e.Response)
	}
}

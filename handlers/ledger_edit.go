package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costplanning/services"
	"costplanning/templates"
)

// notifyLedgerSaved fires the client event that refreshes the indicators
// panel. SetToast merges into the same HX-Trigger header afterwards.
func notifyLedgerSaved(e *core.RequestEvent) {
	e.Response.Header().Set("HX-Trigger", `{"ledger-saved":{}}`)
}

func saveLedger(e *core.RequestEvent, gateway *services.SyncGateway, lc ledgerContext) error {
	if err := gateway.BatchSave(lc.VersionID, lc.ModuleCode, lc.Items); err != nil {
		if errors.Is(err, services.ErrVersionNotDraft) {
			return ErrorToast(e, http.StatusConflict, "版本已封版，台账只读")
		}
		log.Printf("ledger_edit: batch save failed for version %s: %v", lc.VersionID, err)
		return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
	notifyLedgerSaved(e)
	return nil
}

func renderGrid(e *core.RequestEvent, lc ledgerContext, sel *services.Selection, editing *templates.EditingCell) error {
	data := buildLedgerGridData(lc, sel, editing)
	return templates.LedgerGrid(data).Render(e.Request.Context(), e.Response)
}

// HandleLedgerCellCommit handles POST /versions/{id}/ledger/{module}/cells
// Applies one cell edit, persists the full snapshot, and moves editing
// focus according to the navigation key (enter, tab, escape or blur).
func HandleLedgerCellCommit(app *pocketbase.PocketBase, gateway *services.SyncGateway) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		versionID := e.Request.PathValue("id")
		module := e.Request.PathValue("module")

		lc, err := loadLedgerContext(app, versionID, module)
		if err != nil {
			log.Printf("ledger_edit: HandleLedgerCellCommit: %v", err)
			return ErrorToast(e, http.StatusNotFound, "版本不存在")
		}
		if !lc.editable() {
			return ErrorToast(e, http.StatusConflict, "版本已封版，台账只读")
		}

		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}
		row, err := strconv.Atoi(e.Request.FormValue("row"))
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid row index")
		}
		col := e.Request.FormValue("col")
		value := e.Request.FormValue("value")
		nav := e.Request.FormValue("nav")

		var sess services.EditSession
		if !sess.BeginEdit(lc.Items, lc.Columns, row, col) {
			return ErrorToast(e, http.StatusBadRequest, "该单元格不可编辑")
		}

		sel := readSelection(e.Request, versionID, lc.ModuleCode)

		if nav == "escape" {
			// Leave edit mode without applying or saving.
			sess.HandleKey(services.KeyEscape, len(lc.Items), services.EditableColumns(lc.Columns))
			return renderGrid(e, lc, sel, nil)
		}

		updated, err := lc.Items[row].ApplyCell(col, value)
		if err != nil {
			if errors.Is(err, services.ErrNotANumber) {
				return ErrorToast(e, http.StatusBadRequest, "“"+value+"” 不是有效数字")
			}
			return ErrorToast(e, http.StatusBadRequest, "该单元格不可编辑")
		}
		lc.Items[row] = updated

		var action services.NavAction
		switch nav {
		case "enter":
			action = sess.HandleKey(services.KeyEnter, len(lc.Items), services.EditableColumns(lc.Columns))
		case "tab":
			action = sess.HandleKey(services.KeyTab, len(lc.Items), services.EditableColumns(lc.Columns))
		default:
			action = sess.Blur()
		}

		if action.AppendRow {
			lc.Items = append(lc.Items, services.NewLineItem(lc.defaultCategory()))
			sel.Clear()
			writeSelection(e, versionID, lc.ModuleCode, sel)
		}

		if err := saveLedger(e, gateway, lc); err != nil {
			return err
		}

		var editing *templates.EditingCell
		if action.Next != nil && action.Next.Row < len(lc.Items) {
			var target services.DisplayColumn
			for _, c := range lc.Columns {
				if c.Key == action.Next.Col {
					target = c
				}
			}
			editing = &templates.EditingCell{
				Row:   action.Next.Row,
				Col:   action.Next.Col,
				Value: services.FormatCell(target, lc.Items[action.Next.Row].CellValue(action.Next.Col)),
			}
		}
		return renderGrid(e, lc, sel, editing)
	}
}

// HandleLedgerAddRow handles POST /versions/{id}/ledger/{module}/rows
func HandleLedgerAddRow(app *pocketbase.PocketBase, gateway *services.SyncGateway) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		versionID := e.Request.PathValue("id")
		module := e.Request.PathValue("module")

		lc, err := loadLedgerContext(app, versionID, module)
		if err != nil {
			log.Printf("ledger_edit: HandleLedgerAddRow: %v", err)
			return ErrorToast(e, http.StatusNotFound, "版本不存在")
		}

		lc.Items = append(lc.Items, services.NewLineItem(lc.defaultCategory()))
		if err := saveLedger(e, gateway, lc); err != nil {
			return err
		}

		sel := services.NewSelection()
		clearSelection(e, versionID, lc.ModuleCode)
		return renderGrid(e, lc, sel, nil)
	}
}

// HandleLedgerDeleteRows handles DELETE /versions/{id}/ledger/{module}/rows
// Removes the selected rows and persists the shrunken snapshot.
func HandleLedgerDeleteRows(app *pocketbase.PocketBase, gateway *services.SyncGateway) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		versionID := e.Request.PathValue("id")
		module := e.Request.PathValue("module")

		lc, err := loadLedgerContext(app, versionID, module)
		if err != nil {
			log.Printf("ledger_edit: HandleLedgerDeleteRows: %v", err)
			return ErrorToast(e, http.StatusNotFound, "版本不存在")
		}

		sel := readSelection(e.Request, versionID, lc.ModuleCode)
		if sel.Count() == 0 {
			return ErrorToast(e, http.StatusBadRequest, "未选中任何行")
		}
		deleted := sel.Count()

		lc.Items = services.DeleteRows(lc.Items, sel.Indices())
		if err := saveLedger(e, gateway, lc); err != nil {
			return err
		}

		SetToast(e, "success", "已删除 "+strconv.Itoa(deleted)+" 行")
		sel.Clear()
		clearSelection(e, versionID, lc.ModuleCode)
		return renderGrid(e, lc, sel, nil)
	}
}

// HandleLedgerPaste handles POST /versions/{id}/ledger/{module}/paste
// Parses tab-separated clipboard text and appends the rows.
func HandleLedgerPaste(app *pocketbase.PocketBase, gateway *services.SyncGateway) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		versionID := e.Request.PathValue("id")
		module := e.Request.PathValue("module")

		lc, err := loadLedgerContext(app, versionID, module)
		if err != nil {
			log.Printf("ledger_edit: HandleLedgerPaste: %v", err)
			return ErrorToast(e, http.StatusNotFound, "版本不存在")
		}

		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}
		text := e.Request.FormValue("text")

		result := services.ParseClipboard(text, lc.Columns, lc.defaultCategory())
		if result.RowCount == 0 {
			// Nothing parseable; leave the ledger untouched.
			sel := readSelection(e.Request, versionID, lc.ModuleCode)
			return renderGrid(e, lc, sel, nil)
		}

		lc.Items = append(lc.Items, result.Items...)
		if err := saveLedger(e, gateway, lc); err != nil {
			return err
		}

		SetToast(e, "success", "已粘贴 "+strconv.Itoa(result.RowCount)+" 行")
		sel := services.NewSelection()
		clearSelection(e, versionID, lc.ModuleCode)
		return renderGrid(e, lc, sel, nil)
	}
}

// HandleLedgerSelectRow handles POST /versions/{id}/ledger/{module}/select/{row}
func HandleLedgerSelectRow(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		versionID := e.Request.PathValue("id")
		module := e.Request.PathValue("module")

		lc, err := loadLedgerContext(app, versionID, module)
		if err != nil {
			log.Printf("ledger_edit: HandleLedgerSelectRow: %v", err)
			return ErrorToast(e, http.StatusNotFound, "版本不存在")
		}

		row, err := strconv.Atoi(e.Request.PathValue("row"))
		if err != nil || row < 0 || row >= len(lc.Items) {
			return ErrorToast(e, http.StatusBadRequest, "Invalid row index")
		}

		sel := readSelection(e.Request, versionID, lc.ModuleCode)
		sel.Toggle(row)
		writeSelection(e, versionID, lc.ModuleCode, sel)
		return renderGrid(e, lc, sel, nil)
	}
}

// HandleLedgerSelectAll handles POST /versions/{id}/ledger/{module}/select-all
func HandleLedgerSelectAll(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		versionID := e.Request.PathValue("id")
		module := e.Request.PathValue("module")

		lc, err := loadLedgerContext(app, versionID, module)
		if err != nil {
			log.Printf("ledger_edit: HandleLedgerSelectAll: %v", err)
			return ErrorToast(e, http.StatusNotFound, "版本不存在")
		}

		sel := readSelection(e.Request, versionID, lc.ModuleCode)
		sel.ToggleAll(len(lc.Items))
		writeSelection(e, versionID, lc.ModuleCode, sel)
		return renderGrid(e, lc, sel, nil)
	}
}

// HandleLedgerSave handles POST /versions/{id}/ledger/{module}/save
// Accepts a full row snapshot as JSON and persists it through the gateway.
// Later submissions win; rows are recomputed server-side before the write.
func HandleLedgerSave(app *pocketbase.PocketBase, gateway *services.SyncGateway) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		versionID := e.Request.PathValue("id")
		module := e.Request.PathValue("module")

		lc, err := loadLedgerContext(app, versionID, module)
		if err != nil {
			log.Printf("ledger_edit: HandleLedgerSave: %v", err)
			return ErrorToast(e, http.StatusNotFound, "版本不存在")
		}

		var items []services.LineItem
		if err := json.NewDecoder(e.Request.Body).Decode(&items); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid snapshot data")
		}

		lc.Items = services.RecomputeAll(items)
		if err := saveLedger(e, gateway, lc); err != nil {
			return err
		}

		SetToast(e, "success", "台账已保存")
		sel := services.NewSelection()
		clearSelection(e, versionID, lc.ModuleCode)
		return renderGrid(e, lc, sel, nil)
	}
}

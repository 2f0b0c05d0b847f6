package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costplanning/services"
	"costplanning/templates"
)

// HandleLedgerImportPage renders the workbook upload form.
// Route: GET /versions/{id}/ledger/{module}/import
func HandleLedgerImportPage(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		versionID := e.Request.PathValue("id")
		module := e.Request.PathValue("module")

		lc, err := loadLedgerContext(app, versionID, module)
		if err != nil {
			log.Printf("ledger_import: %v", err)
			return ErrorToast(e, http.StatusNotFound, "版本不存在")
		}
		if !lc.editable() {
			return ErrorToast(e, http.StatusConflict, "版本已封版，不能导入")
		}

		data := templates.LedgerImportData{
			VersionID:   versionID,
			VersionNo:   lc.VersionNo,
			ProjectName: lc.ProjectName,
			ModuleCode:  lc.ModuleCode,
			ModuleName:  services.ModuleName(lc.ModuleCode),
		}

		isHTMX := e.Request.Header.Get("HX-Request") == "true"
		if isHTMX {
			return templates.LedgerImportContent(data).Render(e.Request.Context(), e.Response)
		}

		headerData := GetHeaderData(e.Request)
		sidebarData := GetSidebarData(e.Request)
		return templates.LedgerImportPage(data, headerData, sidebarData).Render(e.Request.Context(), e.Response)
	}
}

// HandleLedgerImportValidate receives a workbook upload, validates it, and
// returns the validation results as an HTMX partial.
// Route: POST /versions/{id}/ledger/{module}/import
func HandleLedgerImportValidate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		versionID := e.Request.PathValue("id")
		module := e.Request.PathValue("module")

		lc, err := loadLedgerContext(app, versionID, module)
		if err != nil {
			log.Printf("ledger_import: validate: %v", err)
			return ErrorToast(e, http.StatusNotFound, "版本不存在")
		}
		if !lc.editable() {
			return ErrorToast(e, http.StatusConflict, "版本已封版，不能导入")
		}

		// Max 10MB upload
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "File too large or invalid form data")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "请选择要上传的文件")
		}
		defer file.Close()

		result, err := services.ImportLedgerWorkbook(file, header.Filename, lc.Columns, lc.defaultCategory())
		if err != nil {
			log.Printf("ledger_import: validate %s: %v", header.Filename, err)
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}

		// Serialize parsed rows for the commit form
		var itemsJSON string
		if result.ErrorRows == 0 {
			b, err := json.Marshal(result.Items)
			if err != nil {
				log.Printf("ledger_import: marshal parsed rows: %v", err)
			} else {
				itemsJSON = string(b)
			}
		}

		data := templates.LedgerImportResultData{
			VersionID:  versionID,
			ModuleCode: lc.ModuleCode,
			FileName:   result.FileName,
			TotalRows:  result.TotalRows,
			ValidRows:  result.ValidRows,
			ErrorRows:  result.ErrorRows,
			ItemsJSON:  itemsJSON,
		}
		for _, impErr := range result.Errors {
			data.Errors = append(data.Errors, templates.ImportErrorRow{
				Row:     impErr.Row,
				Field:   impErr.Field,
				Message: impErr.Message,
			})
		}
		return templates.LedgerImportResult(data).Render(e.Request.Context(), e.Response)
	}
}

// HandleLedgerImportErrorReport downloads the validation errors as Excel.
// Route: POST /versions/{id}/ledger/{module}/import/errors
func HandleLedgerImportErrorReport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		module := services.NormalizeModule(e.Request.PathValue("module"))

		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		var importErrors []services.ImportError
		if err := json.Unmarshal([]byte(e.Request.FormValue("errors_json")), &importErrors); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid error data")
		}

		xlsxBytes, err := services.GenerateErrorReport(importErrors)
		if err != nil {
			log.Printf("ledger_import: error report: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		filename := fmt.Sprintf("%s_Errors_%s.xlsx", module, time.Now().Format("2006-01-02"))
		e.Response.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleLedgerImportCommit appends the validated rows to the ledger.
// Route: POST /versions/{id}/ledger/{module}/import/commit
func HandleLedgerImportCommit(app *pocketbase.PocketBase, gateway *services.SyncGateway) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		versionID := e.Request.PathValue("id")
		module := e.Request.PathValue("module")

		lc, err := loadLedgerContext(app, versionID, module)
		if err != nil {
			log.Printf("ledger_import: commit: %v", err)
			return ErrorToast(e, http.StatusNotFound, "版本不存在")
		}

		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		itemsJSON := e.Request.FormValue("items_json")
		if itemsJSON == "" {
			return ErrorToast(e, http.StatusBadRequest, "文件数据缺失，请重新上传")
		}

		var items []services.LineItem
		if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid parsed data")
		}

		lc.Items = append(lc.Items, services.RecomputeAll(items)...)
		if err := saveLedger(e, gateway, lc); err != nil {
			return err
		}
		clearSelection(e, versionID, lc.ModuleCode)

		SetToast(e, "success", fmt.Sprintf("已导入 %d 行", len(items)))
		return templates.LedgerImportSuccess(versionID, lc.ModuleCode, len(items)).Render(e.Request.Context(), e.Response)
	}
}

package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costplanning/services"
)

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}

// HandleLedgerExportExcel handles GET /versions/{id}/ledger/{module}/export/excel
func HandleLedgerExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		versionID := e.Request.PathValue("id")
		module := e.Request.PathValue("module")
		if versionID == "" {
			return e.String(http.StatusBadRequest, "Missing version ID")
		}

		data, err := services.BuildLedgerExportData(app, versionID, module)
		if err != nil {
			log.Printf("ledger_export: excel: %v", err)
			return e.String(http.StatusNotFound, "Version not found")
		}

		xlsxBytes, err := services.GenerateLedgerExcel(data)
		if err != nil {
			log.Printf("ledger_export: failed to generate xlsx: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("%s_%s_%s_%d.xlsx",
			sanitizeFilename(data.ProjectName), sanitizeFilename(data.VersionNo),
			data.ModuleCode, time.Now().Year())

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleLedgerExportPDF handles GET /versions/{id}/ledger/{module}/export/pdf
func HandleLedgerExportPDF(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		versionID := e.Request.PathValue("id")
		module := e.Request.PathValue("module")
		if versionID == "" {
			return e.String(http.StatusBadRequest, "Missing version ID")
		}

		data, err := services.BuildLedgerExportData(app, versionID, module)
		if err != nil {
			log.Printf("ledger_export: pdf: %v", err)
			return e.String(http.StatusNotFound, "Version not found")
		}

		pdfBytes, err := services.GenerateLedgerPDF(data)
		if err != nil {
			log.Printf("ledger_export: failed to generate pdf: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}

		filename := fmt.Sprintf("%s_%s_%s_%d.pdf",
			sanitizeFilename(data.ProjectName), sanitizeFilename(data.VersionNo),
			data.ModuleCode, time.Now().Year())

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}

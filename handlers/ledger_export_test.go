package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"costplanning/services"
	"costplanning/testhelpers"

	"github.com/xuri/excelize/v2"
)

func TestHandleLedgerExportExcel(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Export Project")
	version := testhelpers.CreateTestVersion(t, app, project.Id, "", "V1", services.VersionStatusDraft)
	testhelpers.CreateTestLineItem(t, app, version.Id, "MATERIAL", 1, "Cable", 10, 100, 9)

	handler := HandleLedgerExportExcel(app)

	req := httptest.NewRequest(http.MethodGet, "/versions/"+version.Id+"/ledger/MATERIAL/export/excel", nil)
	req.SetPathValue("id", version.Id)
	req.SetPathValue("module", "MATERIAL")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, ".xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a valid workbook: %v", err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if got, _ := f.GetCellValue(sheet, "B6"); got != "Cable" {
		t.Errorf("B6 = %q, want Cable", got)
	}
}

func TestHandleLedgerExportPDF(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "PDF Project")
	version := testhelpers.CreateTestVersion(t, app, project.Id, "", "V1", services.VersionStatusDraft)
	testhelpers.CreateTestLineItem(t, app, version.Id, "EXPENSE", 1, "Site fee", 10, 45000, 6)

	handler := HandleLedgerExportPDF(app)

	req := httptest.NewRequest(http.MethodGet, "/versions/"+version.Id+"/ledger/EXPENSE/export/pdf", nil)
	req.SetPathValue("id", version.Id)
	req.SetPathValue("module", "EXPENSE")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("response does not start with PDF magic")
	}
}

func TestHandleLedgerExportExcel_VersionNotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandleLedgerExportExcel(app)

	req := httptest.NewRequest(http.MethodGet, "/versions/missing/ledger/MATERIAL/export/excel", nil)
	req.SetPathValue("id", "missing")
	req.SetPathValue("module", "MATERIAL")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	handler(e)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"costplanning/services"
	"costplanning/testhelpers"
)

func TestHandleIndicators_FromStoredRecords(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Indicator Project")
	version := testhelpers.CreateTestVersion(t, app, project.Id, "", "V1", services.VersionStatusDraft)
	testhelpers.CreateTestLineItem(t, app, version.Id, "MATERIAL", 1, "Cable", 10, 100, 9)
	if err := services.RecalculateIndicators(app, version.Id); err != nil {
		t.Fatalf("recalculate: %v", err)
	}

	handler := HandleIndicators(app)

	req := httptest.NewRequest(http.MethodGet, "/versions/"+version.Id+"/indicators", nil)
	req.SetPathValue("id", version.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(),
		"物资含税合计", "1000.00", "计划总成本(含税)")
}

func TestHandleIndicators_ComputesWhenUnstored(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Fresh Indicator Project")
	version := testhelpers.CreateTestVersion(t, app, project.Id, "", "V1", services.VersionStatusDraft)
	testhelpers.CreateTestLineItem(t, app, version.Id, "SUBCONTRACT", 1, "Install", 1, 2000, 9)

	handler := HandleIndicators(app)

	req := httptest.NewRequest(http.MethodGet, "/versions/"+version.Id+"/indicators", nil)
	req.SetPathValue("id", version.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "2000.00")
}

func TestHandleVersionRecalc_StoresIndicators(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Recalc Project")
	version := testhelpers.CreateTestVersion(t, app, project.Id, "", "V1", services.VersionStatusDraft)
	testhelpers.CreateTestLineItem(t, app, version.Id, "MATERIAL", 1, "Cable", 10, 100, 9)

	handler := HandleVersionRecalc(app)

	req := httptest.NewRequest(http.MethodPost, "/versions/"+version.Id+"/recalc", nil)
	req.SetPathValue("id", version.Id)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "物资含税合计", "1000.00")

	stored, err := app.FindRecordsByFilter("indicators", "version = {:v}", "key", 0, 0,
		map[string]any{"v": version.Id})
	if err != nil || len(stored) == 0 {
		t.Fatalf("indicators not persisted: %v (count %d)", err, len(stored))
	}
}

func TestHandleIndicators_VersionNotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandleIndicators(app)

	req := httptest.NewRequest(http.MethodGet, "/versions/missing/indicators", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	handler(e)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

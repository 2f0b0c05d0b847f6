package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"costplanning/services"
	"costplanning/templates"
	"costplanning/testhelpers"
)

func TestGetActiveProject_FromContext(t *testing.T) {
	expected := &templates.ActiveProject{ID: "test123", Name: "Test Project"}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), ActiveProjectKey, expected)
	req = req.WithContext(ctx)

	got := GetActiveProject(req)
	if got == nil {
		t.Fatal("expected active project, got nil")
	}
	if got.ID != expected.ID {
		t.Errorf("expected ID %q, got %q", expected.ID, got.ID)
	}
}

func TestGetActiveProject_NotInContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetActiveProject(req); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestGetSidebarData_FromContext(t *testing.T) {
	expected := templates.SidebarData{
		ActiveProject: &templates.ActiveProject{ID: "p1", Name: "Test"},
		ActivePath:    "/projects",
		VersionCount:  3,
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), SidebarDataKey, expected)
	req = req.WithContext(ctx)

	got := GetSidebarData(req)
	if got.ActiveProject == nil || got.ActiveProject.ID != "p1" {
		t.Error("expected active project with ID p1")
	}
	if got.VersionCount != 3 {
		t.Errorf("expected VersionCount 3, got %d", got.VersionCount)
	}
}

func TestActiveProjectMiddleware_WithCookie(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Cookie MW Project")

	middleware := ActiveProjectMiddleware(app)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "active_project", Value: project.Id})
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	_ = middleware(e)

	activeProject := GetActiveProject(e.Request)
	if activeProject == nil {
		t.Fatal("expected active project in context after middleware")
	}
	if activeProject.Name != "Cookie MW Project" {
		t.Errorf("expected 'Cookie MW Project', got %q", activeProject.Name)
	}

	headerData := GetHeaderData(e.Request)
	if headerData.ActiveProject == nil {
		t.Error("expected active project in header data")
	}
	if len(headerData.Projects) != 1 {
		t.Errorf("expected 1 project in selector, got %d", len(headerData.Projects))
	}
}

func TestActiveProjectMiddleware_InvalidCookie(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	middleware := ActiveProjectMiddleware(app)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "active_project", Value: "nonexistent_id"})
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	_ = middleware(e)

	if got := GetActiveProject(e.Request); got != nil {
		t.Error("expected nil active project for invalid cookie")
	}
}

func TestBuildSidebarData_CountsVersions(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Sidebar Project")
	testhelpers.CreateTestVersion(t, app, project.Id, "", "V1", services.VersionStatusDraft)
	testhelpers.CreateTestVersion(t, app, project.Id, "", "V2", services.VersionStatusSealed)

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	ctx := context.WithValue(req.Context(), ActiveProjectKey,
		&templates.ActiveProject{ID: project.Id, Name: "Sidebar Project"})
	req = req.WithContext(ctx)

	data := BuildSidebarData(req, app)
	if data.VersionCount != 2 {
		t.Errorf("VersionCount = %d, want 2", data.VersionCount)
	}
	if data.DraftCount != 1 {
		t.Errorf("DraftCount = %d, want 1", data.DraftCount)
	}
}

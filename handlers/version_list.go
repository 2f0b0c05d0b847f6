package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costplanning/templates"
)

func versionBadgeClass(status string) string {
	switch status {
	case "DRAFT":
		return "badge-draft"
	case "SEALED":
		return "badge-sealed"
	case "ARCHIVED":
		return "badge-muted"
	default:
		return "badge-default"
	}
}

func buildVersionListData(app *pocketbase.PocketBase, projectID string) (templates.VersionListData, error) {
	project, err := app.FindRecordById("projects", projectID)
	if err != nil {
		return templates.VersionListData{}, err
	}

	versions, err := app.FindRecordsByFilter(
		"cost_versions",
		"project = {:pid}",
		"-created", 0, 0,
		map[string]any{"pid": projectID},
	)
	if err != nil {
		versions = nil
	}

	var items []templates.VersionListItem
	for _, rec := range versions {
		created := ""
		if dt := rec.GetDateTime("created"); !dt.IsZero() {
			created = dt.Time().Format("2006-01-02 15:04")
		}
		status := rec.GetString("status")
		items = append(items, templates.VersionListItem{
			ID:          rec.Id,
			VersionNo:   rec.GetString("version_no"),
			Status:      status,
			StatusClass: versionBadgeClass(status),
			Remarks:     rec.GetString("remarks"),
			Created:     created,
		})
	}

	templateRecords, err := app.FindAllRecords("templates")
	if err != nil {
		templateRecords = nil
	}
	var templateOptions []templates.TemplateOption
	for _, rec := range templateRecords {
		templateOptions = append(templateOptions, templates.TemplateOption{
			ID:   rec.Id,
			Name: rec.GetString("name"),
		})
	}

	return templates.VersionListData{
		ProjectID:   projectID,
		ProjectName: project.GetString("name"),
		Versions:    items,
		Templates:   templateOptions,
	}, nil
}

// HandleVersionList handles GET /projects/{projectId}/versions
func HandleVersionList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")

		data, err := buildVersionListData(app, projectID)
		if err != nil {
			log.Printf("version_list: project %s not found: %v", projectID, err)
			return ErrorToast(e, http.StatusNotFound, "Project not found")
		}

		isHTMX := e.Request.Header.Get("HX-Request") == "true"
		if isHTMX {
			return templates.VersionListContent(data).Render(e.Request.Context(), e.Response)
		}

		headerData := GetHeaderData(e.Request)
		sidebarData := GetSidebarData(e.Request)
		return templates.VersionListPage(data, headerData, sidebarData).Render(e.Request.Context(), e.Response)
	}
}

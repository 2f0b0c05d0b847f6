package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costplanning/templates"
)

func statusBadgeClass(status string) string {
	switch status {
	case "active":
		return "badge-success"
	case "archived":
		return "badge-muted"
	default:
		return "badge-default"
	}
}

func buildProjectListData(app *pocketbase.PocketBase, activeID string) (templates.ProjectListData, error) {
	records, err := app.FindAllRecords("projects")
	if err != nil {
		return templates.ProjectListData{}, err
	}

	var items []templates.ProjectListItem
	for _, rec := range records {
		versions, err := app.FindRecordsByFilter(
			"cost_versions",
			"project = {:pid}",
			"", 0, 0,
			map[string]any{"pid": rec.Id},
		)
		if err != nil {
			versions = nil
		}
		status := rec.GetString("status")
		items = append(items, templates.ProjectListItem{
			ID:           rec.Id,
			Name:         rec.GetString("name"),
			Code:         rec.GetString("code"),
			Status:       status,
			StatusClass:  statusBadgeClass(status),
			VersionCount: len(versions),
			IsActive:     rec.Id == activeID,
		})
	}

	return templates.ProjectListData{Projects: items}, nil
}

// HandleProjectList handles GET /projects
func HandleProjectList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		activeID := ""
		if active := GetActiveProject(e.Request); active != nil {
			activeID = active.ID
		}

		data, err := buildProjectListData(app, activeID)
		if err != nil {
			log.Printf("project_list: could not query projects: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		isHTMX := e.Request.Header.Get("HX-Request") == "true"
		if isHTMX {
			return templates.ProjectListContent(data).Render(e.Request.Context(), e.Response)
		}

		headerData := GetHeaderData(e.Request)
		sidebarData := GetSidebarData(e.Request)
		return templates.ProjectListPage(data, headerData, sidebarData).Render(e.Request.Context(), e.Response)
	}
}

package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"

	"costplanning/services"
	"costplanning/templates"
)

// BuildSidebarData constructs the SidebarData from the current request
// context. It reads the active project from middleware context and counts
// that project's cost versions.
func BuildSidebarData(r *http.Request, app *pocketbase.PocketBase) templates.SidebarData {
	activeProj := GetActiveProject(r)
	if activeProj == nil {
		return templates.SidebarData{
			ActivePath: r.URL.Path,
		}
	}

	data := templates.SidebarData{
		ActiveProject: activeProj,
		ActivePath:    r.URL.Path,
	}

	versions, err := app.FindRecordsByFilter(
		"cost_versions",
		"project = {:pid}",
		"", 0, 0,
		map[string]any{"pid": activeProj.ID},
	)
	if err == nil {
		data.VersionCount = len(versions)
		for _, v := range versions {
			if v.GetString("status") == services.VersionStatusDraft {
				data.DraftCount++
			}
		}
	}

	return data
}

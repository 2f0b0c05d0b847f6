package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costplanning/templates"
)

// HandleProjectCreate handles POST /projects
// Creates a project and re-renders the list.
func HandleProjectCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		name := strings.TrimSpace(e.Request.FormValue("name"))
		code := strings.TrimSpace(e.Request.FormValue("code"))
		if name == "" {
			return ErrorToast(e, http.StatusBadRequest, "项目名称不能为空")
		}

		col, err := app.FindCollectionByNameOrId("projects")
		if err != nil {
			log.Printf("project_actions: HandleProjectCreate: could not find projects collection: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		record := core.NewRecord(col)
		record.Set("name", name)
		record.Set("code", code)
		record.Set("status", "active")
		if err := app.Save(record); err != nil {
			log.Printf("project_actions: HandleProjectCreate: could not save project: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, "success", "项目已创建")
		return renderProjectList(app, e)
	}
}

// HandleProjectSwitch handles POST /projects/{id}/activate
// Sets the active project cookie and refreshes the current page.
func HandleProjectSwitch(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")

		rec, err := app.FindRecordById("projects", projectID)
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, "Project not found")
		}

		http.SetCookie(e.Response, &http.Cookie{
			Name:     "active_project",
			Value:    rec.Id,
			Path:     "/",
			MaxAge:   60 * 60 * 24 * 30,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		SetToast(e, "success", "已切换到 "+rec.GetString("name"))
		e.Response.Header().Set("HX-Refresh", "true")
		return e.NoContent(http.StatusOK)
	}
}

// HandleProjectDelete handles DELETE /projects/{id}
// Deletes the project; versions and line items cascade.
func HandleProjectDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")

		rec, err := app.FindRecordById("projects", projectID)
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, "Project not found")
		}

		if err := app.Delete(rec); err != nil {
			log.Printf("project_actions: HandleProjectDelete: could not delete project %s: %v", projectID, err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		// Clear the cookie if the active project was deleted
		if active := GetActiveProject(e.Request); active != nil && active.ID == projectID {
			http.SetCookie(e.Response, &http.Cookie{
				Name:   "active_project",
				Value:  "",
				Path:   "/",
				MaxAge: -1,
			})
		}

		SetToast(e, "success", "项目已删除")
		return renderProjectList(app, e)
	}
}

func renderProjectList(app *pocketbase.PocketBase, e *core.RequestEvent) error {
	activeID := ""
	if active := GetActiveProject(e.Request); active != nil {
		activeID = active.ID
	}
	data, err := buildProjectListData(app, activeID)
	if err != nil {
		log.Printf("project_actions: could not rebuild project list: %v", err)
		return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
	return templates.ProjectListContent(data).Render(e.Request.Context(), e.Response)
}

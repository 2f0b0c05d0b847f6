package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costplanning/services"
	"costplanning/templates"
)

// HandleVersionCreate handles POST /projects/{projectId}/versions
// Creates a DRAFT cost version, optionally bound to a ledger template.
func HandleVersionCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")

		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return ErrorToast(e, http.StatusNotFound, "Project not found")
		}

		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}

		versionNo := strings.TrimSpace(e.Request.FormValue("version_no"))
		templateID := strings.TrimSpace(e.Request.FormValue("template"))
		remarks := strings.TrimSpace(e.Request.FormValue("remarks"))
		if versionNo == "" {
			return ErrorToast(e, http.StatusBadRequest, "版本号不能为空")
		}

		if templateID != "" {
			if _, err := app.FindRecordById("templates", templateID); err != nil {
				return ErrorToast(e, http.StatusBadRequest, "模板不存在")
			}
		}

		col, err := app.FindCollectionByNameOrId("cost_versions")
		if err != nil {
			log.Printf("version_actions: HandleVersionCreate: could not find cost_versions collection: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		record := core.NewRecord(col)
		record.Set("project", projectID)
		record.Set("template", templateID)
		record.Set("version_no", versionNo)
		record.Set("status", services.VersionStatusDraft)
		record.Set("remarks", remarks)
		if err := app.Save(record); err != nil {
			log.Printf("version_actions: HandleVersionCreate: could not save version: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, "success", "版本 "+versionNo+" 已创建")
		return renderVersionList(app, e, projectID)
	}
}

// HandleVersionSeal handles POST /versions/{id}/seal
// Seals a draft version; the ledger becomes read-only.
func HandleVersionSeal(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return setVersionStatus(app, services.VersionStatusDraft, services.VersionStatusSealed, "版本已封版")
}

// HandleVersionArchive handles POST /versions/{id}/archive
func HandleVersionArchive(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return setVersionStatus(app, services.VersionStatusSealed, services.VersionStatusArchived, "版本已归档")
}

func setVersionStatus(app *pocketbase.PocketBase, from, to, message string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		versionID := e.Request.PathValue("id")

		rec, err := app.FindRecordById("cost_versions", versionID)
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, "Version not found")
		}
		if rec.GetString("status") != from {
			return ErrorToast(e, http.StatusConflict, "版本状态不允许该操作")
		}

		rec.Set("status", to)
		if err := app.Save(rec); err != nil {
			log.Printf("version_actions: could not set version %s to %s: %v", versionID, to, err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, "success", message)
		return renderVersionList(app, e, rec.GetString("project"))
	}
}

// HandleVersionDelete handles DELETE /versions/{id}
// Deletes the version; line items and indicators cascade.
func HandleVersionDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		versionID := e.Request.PathValue("id")

		rec, err := app.FindRecordById("cost_versions", versionID)
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, "Version not found")
		}
		projectID := rec.GetString("project")

		if err := app.Delete(rec); err != nil {
			log.Printf("version_actions: HandleVersionDelete: could not delete version %s: %v", versionID, err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		SetToast(e, "success", "版本已删除")
		return renderVersionList(app, e, projectID)
	}
}

func renderVersionList(app *pocketbase.PocketBase, e *core.RequestEvent, projectID string) error {
	data, err := buildVersionListData(app, projectID)
	if err != nil {
		log.Printf("version_actions: could not rebuild version list: %v", err)
		return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
	return templates.VersionListContent(data).Render(e.Request.Context(), e.Response)
}

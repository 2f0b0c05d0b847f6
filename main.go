package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"costplanning/collections"
	"costplanning/handlers"
	"costplanning/services"
)

func main() {
	app := pocketbase.New()

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		return se.Next()
	})

	// All ledger writes go through one gateway so indicators stay in sync.
	gateway := services.NewSyncGateway(app, services.RecalculateIndicators)

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.GET("/static/{path...}", apis.Static(os.DirFS("./static"), false))

		// Apply active project middleware globally
		se.Router.BindFunc(handlers.ActiveProjectMiddleware(app))

		// ── Project activation ───────────────────────────────────
		se.Router.POST("/projects/{id}/activate", handlers.HandleProjectSwitch(app))

		// ── Project CRUD ─────────────────────────────────────────
		se.Router.GET("/projects", handlers.HandleProjectList(app))
		se.Router.GET("/projects/create", func(e *core.RequestEvent) error {
			// The create form lives inline on the list page.
			return e.Redirect(http.StatusFound, "/projects")
		})
		se.Router.POST("/projects", handlers.HandleProjectCreate(app))
		se.Router.DELETE("/projects/{id}", handlers.HandleProjectDelete(app))

		// ── Cost versions ────────────────────────────────────────
		se.Router.GET("/projects/{id}", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/projects/"+e.Request.PathValue("id")+"/versions")
		})
		se.Router.GET("/projects/{projectId}/versions", handlers.HandleVersionList(app))
		se.Router.POST("/projects/{projectId}/versions", handlers.HandleVersionCreate(app))
		se.Router.POST("/versions/{id}/seal", handlers.HandleVersionSeal(app))
		se.Router.POST("/versions/{id}/archive", handlers.HandleVersionArchive(app))
		se.Router.DELETE("/versions/{id}", handlers.HandleVersionDelete(app))

		// ── Ledger import (before the generic ledger route) ──────
		se.Router.GET("/versions/{id}/ledger/{module}/import", handlers.HandleLedgerImportPage(app))
		se.Router.POST("/versions/{id}/ledger/{module}/import", handlers.HandleLedgerImportValidate(app))
		se.Router.POST("/versions/{id}/ledger/{module}/import/commit", handlers.HandleLedgerImportCommit(app, gateway))
		se.Router.POST("/versions/{id}/ledger/{module}/import/errors", handlers.HandleLedgerImportErrorReport(app))

		// ── Ledger export ────────────────────────────────────────
		se.Router.GET("/versions/{id}/ledger/{module}/export/excel", handlers.HandleLedgerExportExcel(app))
		se.Router.GET("/versions/{id}/ledger/{module}/export/pdf", handlers.HandleLedgerExportPDF(app))

		// ── Ledger grid editing ──────────────────────────────────
		se.Router.POST("/versions/{id}/ledger/{module}/cells", handlers.HandleLedgerCellCommit(app, gateway))
		se.Router.POST("/versions/{id}/ledger/{module}/rows", handlers.HandleLedgerAddRow(app, gateway))
		se.Router.DELETE("/versions/{id}/ledger/{module}/rows", handlers.HandleLedgerDeleteRows(app, gateway))
		se.Router.POST("/versions/{id}/ledger/{module}/paste", handlers.HandleLedgerPaste(app, gateway))
		se.Router.POST("/versions/{id}/ledger/{module}/save", handlers.HandleLedgerSave(app, gateway))
		se.Router.POST("/versions/{id}/ledger/{module}/select/{row}", handlers.HandleLedgerSelectRow(app))
		se.Router.POST("/versions/{id}/ledger/{module}/select-all", handlers.HandleLedgerSelectAll(app))

		// ── Ledger view (after specific /ledger/{module}/* routes) ──
		se.Router.GET("/versions/{id}/ledger/{module}", handlers.HandleLedgerView(app))

		// ── Indicators panel ─────────────────────────────────────
		se.Router.GET("/versions/{id}/indicators", handlers.HandleIndicators(app))
		se.Router.POST("/versions/{id}/recalc", handlers.HandleVersionRecalc(app))

		// Version landing redirects to the material ledger
		se.Router.GET("/versions/{id}", func(e *core.RequestEvent) error {
			versionID := e.Request.PathValue("id")
			if _, err := app.FindRecordById("cost_versions", versionID); err != nil {
				return e.String(http.StatusNotFound, "Version not found")
			}
			return e.Redirect(http.StatusFound, fmt.Sprintf("/versions/%s/ledger/%s", versionID, services.ModuleMaterial))
		})

		// Redirect home to projects list
		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/projects")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costplanning/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestProject creates a project record with the given name and returns it.
func CreateTestProject(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		t.Fatalf("failed to find projects collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("status", "active")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test project: %v", err)
	}

	return record
}

// CreateTestTemplate creates a template record with the given schema JSON.
func CreateTestTemplate(t *testing.T, app *pocketbase.PocketBase, name, schemaJSON string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("templates")
	if err != nil {
		t.Fatalf("failed to find templates collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("schema_json", schemaJSON)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test template: %v", err)
	}

	return record
}

// CreateTestVersion creates a cost version linked to a project. templateID
// may be empty for versions without a template.
func CreateTestVersion(t *testing.T, app *pocketbase.PocketBase, projectID, templateID, versionNo, status string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("cost_versions")
	if err != nil {
		t.Fatalf("failed to find cost_versions collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("project", projectID)
	if templateID != "" {
		record.Set("template", templateID)
	}
	record.Set("version_no", versionNo)
	record.Set("status", status)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test version: %v", err)
	}

	return record
}

// CreateTestLineItem creates a line item record with derived amounts filled in.
func CreateTestLineItem(t *testing.T, app *pocketbase.PocketBase, versionID, moduleCode string, sortNo int, itemName string, qty, unitPrice, taxRate float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("line_items")
	if err != nil {
		t.Fatalf("failed to find line_items collection: %v", err)
	}

	total := qty * unitPrice
	tax := total * taxRate / 100

	record := core.NewRecord(col)
	record.Set("version", versionID)
	record.Set("module_code", moduleCode)
	record.Set("sort_no", sortNo)
	record.Set("item_name", itemName)
	record.Set("unit", "pc")
	record.Set("quantity", qty)
	record.Set("unit_price", unitPrice)
	record.Set("tax_rate", taxRate)
	record.Set("total_amount", total)
	record.Set("tax_amount", tax)
	record.Set("pre_tax_amount", total-tax)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test line item: %v", err)
	}

	return record
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHXRedirect checks that the response has an HX-Redirect header with the expected URL.
func AssertHXRedirect(t *testing.T, headerVal, expectedURL string) {
	t.Helper()

	if headerVal != expectedURL {
		t.Errorf("expected HX-Redirect %q, got %q", expectedURL, headerVal)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

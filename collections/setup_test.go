package collections_test

import (
	"testing"

	"costplanning/collections"
	"costplanning/testhelpers"

	"github.com/pocketbase/pocketbase/core"
)

// expectedCollections is the full list of collections that Setup() must create.
var expectedCollections = []string{
	"projects",
	"templates",
	"cost_versions",
	"line_items",
	"indicators",
}

func TestSetup_AllCollectionsExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q not found after Setup(): %v", name, err)
			continue
		}
		if col.Name != name {
			t.Errorf("expected collection name %q, got %q", name, col.Name)
		}
	}
}

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t) // Setup() already called once via NewTestApp

	ids := make(map[string]string)
	for _, name := range expectedCollections {
		col, _ := app.FindCollectionByNameOrId(name)
		ids[name] = col.Id
	}

	collections.Setup(app)

	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q missing after second Setup(): %v", name, err)
			continue
		}
		if col.Id != ids[name] {
			t.Errorf("collection %q id changed after second Setup(): %s -> %s", name, ids[name], col.Id)
		}
	}
}

func TestSetup_CostVersionsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("cost_versions")

	fields := []string{"project", "template", "version_no", "status", "remarks", "created", "updated"}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("cost_versions: missing field %q", f)
		}
	}

	statusField := col.Fields.GetByName("status")
	if sf, ok := statusField.(*core.SelectField); ok {
		expected := map[string]bool{"DRAFT": true, "SEALED": true, "ARCHIVED": true}
		for _, v := range sf.Values {
			if !expected[v] {
				t.Errorf("unexpected status value: %q", v)
			}
			delete(expected, v)
		}
		for v := range expected {
			t.Errorf("missing status value: %q", v)
		}
	} else {
		t.Errorf("status field is not a SelectField")
	}

	projectField := col.Fields.GetByName("project")
	if rf, ok := projectField.(*core.RelationField); ok {
		if !rf.CascadeDelete {
			t.Error("cost_versions.project: expected CascadeDelete=true")
		}
		if rf.MaxSelect != 1 {
			t.Errorf("cost_versions.project: expected MaxSelect=1, got %d", rf.MaxSelect)
		}
	} else {
		t.Errorf("cost_versions.project is not a RelationField")
	}
}

func TestSetup_LineItemsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("line_items")

	fields := []string{
		"version", "module_code", "category_code", "sort_no",
		"item_name", "specification", "unit", "quantity", "unit_price",
		"tax_rate", "total_amount", "tax_amount", "pre_tax_amount",
		"brand", "contractor_name", "work_type", "remarks",
		"created", "updated",
	}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("line_items: missing field %q", f)
		}
	}

	moduleField := col.Fields.GetByName("module_code")
	if sf, ok := moduleField.(*core.SelectField); ok {
		if len(sf.Values) != 3 {
			t.Errorf("line_items.module_code: expected 3 values, got %d", len(sf.Values))
		}
	} else {
		t.Errorf("module_code field is not a SelectField")
	}

	versionField := col.Fields.GetByName("version")
	if rf, ok := versionField.(*core.RelationField); ok {
		if !rf.CascadeDelete {
			t.Error("line_items.version: expected CascadeDelete=true")
		}
	}
}

func TestSetup_IndicatorsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("indicators")

	fields := []string{"version", "key", "label", "value", "computed_at"}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("indicators: missing field %q", f)
		}
	}
}

func TestSetup_CascadeDeleteHierarchy(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	proj := testhelpers.CreateTestProject(t, app, "Cascade Test")
	version := testhelpers.CreateTestVersion(t, app, proj.Id, "", "V1", "DRAFT")
	item := testhelpers.CreateTestLineItem(t, app, version.Id, "MATERIAL", 1, "Cable", 10, 100, 9)

	if err := app.Delete(proj); err != nil {
		t.Fatalf("failed to delete project: %v", err)
	}

	if _, err := app.FindRecordById("cost_versions", version.Id); err == nil {
		t.Error("cost_version should have been cascade-deleted with project")
	}
	if _, err := app.FindRecordById("line_items", item.Id); err == nil {
		t.Error("line_item should have been cascade-deleted with cost_version")
	}
}

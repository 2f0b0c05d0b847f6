package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures the projects, templates,
// cost_versions, line_items and indicators collections exist.
func Setup(app *pocketbase.PocketBase) {
	projects := ensureCollection(app, "projects", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Max: 200})
		c.Fields.Add(&core.TextField{Name: "code", Required: false, Max: 50})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"active", "archived"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	templates := ensureCollection(app, "templates", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Max: 200})
		c.Fields.Add(&core.TextField{Name: "schema_json", Required: false, Max: 100000})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	costVersions := ensureCollection(app, "cost_versions", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "template",
			Required:     false,
			CollectionId: templates.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "version_no", Required: true, Max: 50})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"DRAFT", "SEALED", "ARCHIVED"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "remarks", Required: false, Max: 500})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "line_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "version",
			Required:      true,
			CollectionId:  costVersions.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "module_code",
			Required:  true,
			Values:    []string{"MATERIAL", "SUBCONTRACT", "EXPENSE"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "category_code", Required: false, Max: 50})
		c.Fields.Add(&core.NumberField{Name: "sort_no", Required: true})
		c.Fields.Add(&core.TextField{Name: "item_name", Required: false, Max: 200})
		c.Fields.Add(&core.TextField{Name: "specification", Required: false, Max: 500})
		c.Fields.Add(&core.TextField{Name: "unit", Required: false, Max: 50})
		c.Fields.Add(&core.NumberField{Name: "quantity", Required: false})
		c.Fields.Add(&core.NumberField{Name: "unit_price", Required: false})
		c.Fields.Add(&core.NumberField{Name: "tax_rate", Required: false})
		c.Fields.Add(&core.NumberField{Name: "total_amount", Required: false})
		c.Fields.Add(&core.NumberField{Name: "tax_amount", Required: false})
		c.Fields.Add(&core.NumberField{Name: "pre_tax_amount", Required: false})
		c.Fields.Add(&core.TextField{Name: "brand", Required: false, Max: 200})
		c.Fields.Add(&core.TextField{Name: "contractor_name", Required: false, Max: 200})
		c.Fields.Add(&core.TextField{Name: "work_type", Required: false, Max: 100})
		c.Fields.Add(&core.TextField{Name: "remarks", Required: false, Max: 500})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "indicators", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "version",
			Required:      true,
			CollectionId:  costVersions.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "key", Required: true, Max: 50})
		c.Fields.Add(&core.TextField{Name: "label", Required: false, Max: 100})
		c.Fields.Add(&core.NumberField{Name: "value", Required: false})
		c.Fields.Add(&core.TextField{Name: "computed_at", Required: false, Max: 50})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}

package services

import (
	"encoding/json"
	"fmt"

	"github.com/pocketbase/pocketbase"
)

// TemplateModule is one module block of a cost plan template schema.
type TemplateModule struct {
	Code       string         `json:"code"`
	Name       string         `json:"name"`
	Enabled    *bool          `json:"enabled"`
	Categories []string       `json:"categories"`
	Columns    []ColumnConfig `json:"columns"`
}

// TemplateSchema is the parsed schema_json of a template record: per-module
// column layouts plus an optional shared field list used as fallback.
type TemplateSchema struct {
	Modules []TemplateModule `json:"modules"`
	Fields  []ColumnConfig   `json:"fields"`
}

// ParseTemplateSchema decodes a template's schema JSON. An empty document
// yields an empty schema, which downstream resolves to default columns.
func ParseTemplateSchema(schemaJSON string) (TemplateSchema, error) {
	var schema TemplateSchema
	if schemaJSON == "" {
		return schema, nil
	}
	if err := json.Unmarshal([]byte(schemaJSON), &schema); err != nil {
		return TemplateSchema{}, fmt.Errorf("parse template schema: %w", err)
	}
	return schema, nil
}

// Module returns the schema block for a module code, or nil when absent.
func (s TemplateSchema) Module(moduleCode string) *TemplateModule {
	code := NormalizeModule(moduleCode)
	for i := range s.Modules {
		if NormalizeModule(s.Modules[i].Code) == code {
			return &s.Modules[i]
		}
	}
	return nil
}

// ModuleColumns resolves the raw column configs for a module: the module's
// own columns when present, else the shared field list, else nil (which
// NormalizeColumns turns into the default set).
func (s TemplateSchema) ModuleColumns(moduleCode string) []ColumnConfig {
	if mod := s.Module(moduleCode); mod != nil && len(mod.Columns) > 0 {
		return mod.Columns
	}
	return s.Fields
}

// ModuleCategories returns the category filter values a module offers.
func (s TemplateSchema) ModuleCategories(moduleCode string) []string {
	if mod := s.Module(moduleCode); mod != nil {
		return mod.Categories
	}
	return nil
}

// LoadVersionSchema loads the template schema attached to a cost version.
// Versions without a template get an empty schema.
func LoadVersionSchema(app *pocketbase.PocketBase, versionID string) (TemplateSchema, error) {
	version, err := app.FindRecordById("cost_versions", versionID)
	if err != nil {
		return TemplateSchema{}, fmt.Errorf("load version %s: %w", versionID, err)
	}
	templateID := version.GetString("template")
	if templateID == "" {
		return TemplateSchema{}, nil
	}
	tmpl, err := app.FindRecordById("templates", templateID)
	if err != nil {
		return TemplateSchema{}, fmt.Errorf("load template %s: %w", templateID, err)
	}
	return ParseTemplateSchema(tmpl.GetString("schema_json"))
}

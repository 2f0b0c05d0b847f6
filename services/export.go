package services

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
)

// LedgerExportData carries everything the Excel and PDF writers need to
// render one module ledger.
type LedgerExportData struct {
	ProjectName string
	VersionNo   string
	ModuleCode  string
	ModuleName  string
	Columns     []DisplayColumn
	Items       []LineItem
	Totals      LedgerTotals
	CreatedDate string
}

// ModuleName returns the display name for a module code.
func ModuleName(moduleCode string) string {
	switch NormalizeModule(moduleCode) {
	case ModuleMaterial:
		return "物资明细"
	case ModuleSubcontract:
		return "分包明细"
	case ModuleExpense:
		return "费用明细"
	default:
		return moduleCode
	}
}

// BuildLedgerExportData assembles the export payload for one version module.
func BuildLedgerExportData(app *pocketbase.PocketBase, versionID, module string) (LedgerExportData, error) {
	moduleCode := NormalizeModule(module)

	version, err := app.FindRecordById("cost_versions", versionID)
	if err != nil {
		return LedgerExportData{}, fmt.Errorf("load version %s: %w", versionID, err)
	}

	projectName := ""
	if project, err := app.FindRecordById("projects", version.GetString("project")); err == nil {
		projectName = project.GetString("name")
	}

	schema, err := LoadVersionSchema(app, versionID)
	if err != nil {
		return LedgerExportData{}, err
	}

	items, err := LoadLineItems(app, versionID, moduleCode)
	if err != nil {
		return LedgerExportData{}, err
	}

	createdDate := "—"
	if dt := version.GetDateTime("created"); !dt.IsZero() {
		createdDate = dt.Time().Format("2006-01-02")
	}

	return LedgerExportData{
		ProjectName: projectName,
		VersionNo:   version.GetString("version_no"),
		ModuleCode:  moduleCode,
		ModuleName:  ModuleName(moduleCode),
		Columns:     NormalizeColumns(schema.ModuleColumns(moduleCode)),
		Items:       items,
		Totals:      CalcLedgerTotals(items),
		CreatedDate: createdDate,
	}, nil
}

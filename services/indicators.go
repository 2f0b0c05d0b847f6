package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Indicator is one computed aggregate for a cost plan version.
type Indicator struct {
	Key   string
	Label string
	Value float64
}

var indicatorLabels = map[string]string{
	"material_total":    "物资含税合计",
	"subcontract_total": "分包含税合计",
	"expense_total":     "费用含税合计",
	"plan_total":        "计划总成本(含税)",
	"plan_tax":          "计划税额合计",
	"plan_pre_tax":      "计划总成本(不含税)",
}

// ComputeIndicators derives the aggregate indicators from the version's
// stored line items across all three modules.
func ComputeIndicators(app *pocketbase.PocketBase, versionID string) ([]Indicator, error) {
	var grand LedgerTotals
	perModule := make(map[string]LedgerTotals, 3)

	for _, module := range []string{ModuleMaterial, ModuleSubcontract, ModuleExpense} {
		items, err := LoadLineItems(app, versionID, module)
		if err != nil {
			return nil, fmt.Errorf("compute indicators for %s: %w", module, err)
		}
		totals := CalcLedgerTotals(items)
		perModule[module] = totals
		grand.TotalAmount += totals.TotalAmount
		grand.TaxAmount += totals.TaxAmount
		grand.PreTaxAmount += totals.PreTaxAmount
	}

	return []Indicator{
		{Key: "material_total", Label: indicatorLabels["material_total"], Value: perModule[ModuleMaterial].TotalAmount},
		{Key: "subcontract_total", Label: indicatorLabels["subcontract_total"], Value: perModule[ModuleSubcontract].TotalAmount},
		{Key: "expense_total", Label: indicatorLabels["expense_total"], Value: perModule[ModuleExpense].TotalAmount},
		{Key: "plan_total", Label: indicatorLabels["plan_total"], Value: grand.TotalAmount},
		{Key: "plan_tax", Label: indicatorLabels["plan_tax"], Value: grand.TaxAmount},
		{Key: "plan_pre_tax", Label: indicatorLabels["plan_pre_tax"], Value: grand.PreTaxAmount},
	}, nil
}

// RecalculateIndicators recomputes the version's aggregate indicators and
// upserts them into the indicators collection. It is the sync gateway's
// recalculation signal target.
func RecalculateIndicators(app *pocketbase.PocketBase, versionID string) error {
	indicators, err := ComputeIndicators(app, versionID)
	if err != nil {
		return err
	}

	col, err := app.FindCollectionByNameOrId("indicators")
	if err != nil {
		return fmt.Errorf("find indicators collection: %w", err)
	}

	existing, err := app.FindRecordsByFilter(
		"indicators",
		"version = {:versionId}",
		"", 0, 0,
		map[string]any{"versionId": versionID},
	)
	if err != nil {
		return fmt.Errorf("load indicators: %w", err)
	}
	byKey := make(map[string]*core.Record, len(existing))
	for _, rec := range existing {
		byKey[rec.GetString("key")] = rec
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, ind := range indicators {
		rec, ok := byKey[ind.Key]
		if !ok {
			rec = core.NewRecord(col)
			rec.Set("version", versionID)
			rec.Set("key", ind.Key)
		}
		rec.Set("label", ind.Label)
		rec.Set("value", ind.Value)
		rec.Set("computed_at", now)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("save indicator %s: %w", ind.Key, err)
		}
	}
	return nil
}

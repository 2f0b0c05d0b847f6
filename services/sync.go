package services

import (
	"fmt"
	"log"
	"sync"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Cost version lifecycle states. Only drafts accept ledger writes.
const (
	VersionStatusDraft    = "DRAFT"
	VersionStatusSealed   = "SEALED"
	VersionStatusArchived = "ARCHIVED"
)

// RecalcFunc is the recalculation signal fired after every save so dependent
// aggregate indicators can refresh.
type RecalcFunc func(app *pocketbase.PocketBase, versionID string) error

// SyncGateway persists full ledger snapshots to the line_items collection.
// Every save transmits the entire row list for its (version, module) scope;
// saves racing on the same scope are serialized and stale snapshots are
// dropped so the last-submitted snapshot always wins.
type SyncGateway struct {
	app      *pocketbase.PocketBase
	onRecalc RecalcFunc

	mu    sync.Mutex
	gates map[string]*ledgerGate
}

type ledgerGate struct {
	mu        sync.Mutex
	submitSeq uint64
	applied   uint64
}

// NewSyncGateway wires a gateway to the app. onRecalc may be nil.
func NewSyncGateway(app *pocketbase.PocketBase, onRecalc RecalcFunc) *SyncGateway {
	return &SyncGateway{
		app:      app,
		onRecalc: onRecalc,
		gates:    make(map[string]*ledgerGate),
	}
}

func (g *SyncGateway) gate(scope string) *ledgerGate {
	g.mu.Lock()
	defer g.mu.Unlock()
	gate, ok := g.gates[scope]
	if !ok {
		gate = &ledgerGate{}
		g.gates[scope] = gate
	}
	return gate
}

// BatchSave replaces the stored row set of one module ledger with the given
// snapshot: existing records are updated by id, new rows inserted, records
// missing from the snapshot deleted, and sort_no renumbered 1..n. The write
// is refused unless the version is a draft. After a successful write the
// recalculation signal fires; its failure is logged but does not fail the
// save.
func (g *SyncGateway) BatchSave(versionID, module string, items []LineItem) error {
	moduleCode := NormalizeModule(module)
	gate := g.gate(versionID + "/" + moduleCode)

	gate.mu.Lock()
	gate.submitSeq++
	seq := gate.submitSeq
	gate.mu.Unlock()

	gate.mu.Lock()
	defer gate.mu.Unlock()

	// A newer snapshot was persisted while this one waited; applying it
	// now would resurrect stale state.
	if seq < gate.applied {
		return nil
	}

	if err := g.writeSnapshot(versionID, moduleCode, items); err != nil {
		return err
	}
	gate.applied = seq

	if g.onRecalc != nil {
		if err := g.onRecalc(g.app, versionID); err != nil {
			log.Printf("sync: BatchSave: recalculate for version %s: %v", versionID, err)
		}
	}
	return nil
}

func (g *SyncGateway) writeSnapshot(versionID, moduleCode string, items []LineItem) error {
	version, err := g.app.FindRecordById("cost_versions", versionID)
	if err != nil {
		return fmt.Errorf("load version %s: %w", versionID, err)
	}
	if version.GetString("status") != VersionStatusDraft {
		return ErrVersionNotDraft
	}

	col, err := g.app.FindCollectionByNameOrId("line_items")
	if err != nil {
		return fmt.Errorf("find line_items collection: %w", err)
	}

	existing, err := g.app.FindRecordsByFilter(
		"line_items",
		"version = {:versionId} && module_code = {:module}",
		"sort_no", 0, 0,
		map[string]any{"versionId": versionID, "module": moduleCode},
	)
	if err != nil {
		return fmt.Errorf("load existing line items: %w", err)
	}
	byID := make(map[string]*core.Record, len(existing))
	for _, rec := range existing {
		byID[rec.Id] = rec
	}

	kept := make(map[string]bool, len(items))
	for i, item := range items {
		rec, ok := byID[item.ID]
		if !ok {
			rec = core.NewRecord(col)
			rec.Set("version", versionID)
			rec.Set("module_code", moduleCode)
		}
		applyLineItem(rec, item, i+1)
		if err := g.app.Save(rec); err != nil {
			return fmt.Errorf("save line item %d: %w", i+1, err)
		}
		kept[rec.Id] = true
	}

	for _, rec := range existing {
		if !kept[rec.Id] {
			if err := g.app.Delete(rec); err != nil {
				return fmt.Errorf("delete line item %s: %w", rec.Id, err)
			}
		}
	}
	return nil
}

func applyLineItem(rec *core.Record, item LineItem, sortNo int) {
	rec.Set("category_code", item.Category)
	rec.Set("sort_no", sortNo)
	rec.Set("item_name", item.ItemName)
	rec.Set("specification", item.Specification)
	rec.Set("unit", item.Unit)
	rec.Set("quantity", item.Quantity)
	rec.Set("unit_price", item.UnitPrice)
	rec.Set("tax_rate", item.TaxRate)
	rec.Set("total_amount", item.TotalAmount)
	rec.Set("tax_amount", item.TaxAmount)
	rec.Set("pre_tax_amount", item.PreTaxAmount)
	rec.Set("brand", item.Brand)
	rec.Set("contractor_name", item.ContractorName)
	rec.Set("work_type", item.WorkType)
	rec.Set("remarks", item.Remarks)
}

// LoadLineItems reads the stored rows of one module ledger in sort order.
func LoadLineItems(app *pocketbase.PocketBase, versionID, module string) ([]LineItem, error) {
	moduleCode := NormalizeModule(module)
	records, err := app.FindRecordsByFilter(
		"line_items",
		"version = {:versionId} && module_code = {:module}",
		"sort_no", 0, 0,
		map[string]any{"versionId": versionID, "module": moduleCode},
	)
	if err != nil {
		return nil, fmt.Errorf("load line items: %w", err)
	}

	items := make([]LineItem, 0, len(records))
	for _, rec := range records {
		items = append(items, LineItem{
			ID:             rec.Id,
			ItemName:       rec.GetString("item_name"),
			Specification:  rec.GetString("specification"),
			Unit:           rec.GetString("unit"),
			Quantity:       rec.GetFloat("quantity"),
			UnitPrice:      rec.GetFloat("unit_price"),
			TaxRate:        rec.GetFloat("tax_rate"),
			TotalAmount:    rec.GetFloat("total_amount"),
			TaxAmount:      rec.GetFloat("tax_amount"),
			PreTaxAmount:   rec.GetFloat("pre_tax_amount"),
			Remarks:        rec.GetString("remarks"),
			Category:       rec.GetString("category_code"),
			Brand:          rec.GetString("brand"),
			ContractorName: rec.GetString("contractor_name"),
			WorkType:       rec.GetString("work_type"),
			SortNo:         rec.GetInt("sort_no"),
		})
	}
	return items, nil
}

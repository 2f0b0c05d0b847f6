package services_test

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"costplanning/services"
	"costplanning/testhelpers"

	"github.com/pocketbase/pocketbase"
)

func newGateway(app *pocketbase.PocketBase) *services.SyncGateway {
	return services.NewSyncGateway(app, nil)
}

func TestBatchSaveInsertsRows(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Sync Test")
	version := testhelpers.CreateTestVersion(t, app, project.Id, "", "V1", services.VersionStatusDraft)

	items := []services.LineItem{
		services.Recompute(services.LineItem{ItemName: "Cable", Unit: "m", Quantity: 100, UnitPrice: 12, TaxRate: 13}),
		services.Recompute(services.LineItem{ItemName: "Tray", Unit: "m", Quantity: 50, UnitPrice: 80, TaxRate: 13}),
	}

	if err := newGateway(app).BatchSave(version.Id, "MATERIAL", items); err != nil {
		t.Fatalf("BatchSave failed: %v", err)
	}

	stored, err := services.LoadLineItems(app, version.Id, "MATERIAL")
	if err != nil {
		t.Fatalf("LoadLineItems failed: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored rows = %d, want 2", len(stored))
	}
	if stored[0].ItemName != "Cable" || stored[0].SortNo != 1 {
		t.Errorf("row 0 = %q sort %d", stored[0].ItemName, stored[0].SortNo)
	}
	if stored[1].ItemName != "Tray" || stored[1].SortNo != 2 {
		t.Errorf("row 1 = %q sort %d", stored[1].ItemName, stored[1].SortNo)
	}
	if math.Abs(stored[0].TotalAmount-1200) > 0.001 {
		t.Errorf("row 0 TotalAmount = %v, want 1200", stored[0].TotalAmount)
	}
}

func TestBatchSaveReplacesSnapshot(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Snapshot Test")
	version := testhelpers.CreateTestVersion(t, app, project.Id, "", "V1", services.VersionStatusDraft)
	gateway := newGateway(app)

	first := []services.LineItem{
		services.Recompute(services.LineItem{ItemName: "A", Quantity: 1, UnitPrice: 10, TaxRate: 9}),
		services.Recompute(services.LineItem{ItemName: "B", Quantity: 2, UnitPrice: 20, TaxRate: 9}),
		services.Recompute(services.LineItem{ItemName: "C", Quantity: 3, UnitPrice: 30, TaxRate: 9}),
	}
	if err := gateway.BatchSave(version.Id, "MATERIAL", first); err != nil {
		t.Fatalf("first BatchSave failed: %v", err)
	}

	stored, _ := services.LoadLineItems(app, version.Id, "MATERIAL")
	if len(stored) != 3 {
		t.Fatalf("stored rows = %d, want 3", len(stored))
	}

	// Drop the middle row and edit the last; missing records must be
	// deleted and sort numbers renumbered.
	second := []services.LineItem{stored[0], stored[2]}
	second[1].ItemName = "C edited"
	if err := gateway.BatchSave(version.Id, "MATERIAL", second); err != nil {
		t.Fatalf("second BatchSave failed: %v", err)
	}

	stored, _ = services.LoadLineItems(app, version.Id, "MATERIAL")
	if len(stored) != 2 {
		t.Fatalf("stored rows = %d, want 2", len(stored))
	}
	if stored[0].ItemName != "A" || stored[0].SortNo != 1 {
		t.Errorf("row 0 = %q sort %d", stored[0].ItemName, stored[0].SortNo)
	}
	if stored[1].ItemName != "C edited" || stored[1].SortNo != 2 {
		t.Errorf("row 1 = %q sort %d", stored[1].ItemName, stored[1].SortNo)
	}
}

func TestBatchSaveScopedToModule(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Scope Test")
	version := testhelpers.CreateTestVersion(t, app, project.Id, "", "V1", services.VersionStatusDraft)
	gateway := newGateway(app)

	material := []services.LineItem{
		services.Recompute(services.LineItem{ItemName: "Cable", Quantity: 1, UnitPrice: 10, TaxRate: 13}),
	}
	expense := []services.LineItem{
		services.Recompute(services.LineItem{ItemName: "Site fee", Quantity: 1, UnitPrice: 100, TaxRate: 6}),
	}
	if err := gateway.BatchSave(version.Id, "MATERIAL", material); err != nil {
		t.Fatalf("material save failed: %v", err)
	}
	if err := gateway.BatchSave(version.Id, "EXPENSE", expense); err != nil {
		t.Fatalf("expense save failed: %v", err)
	}

	// Emptying one module leaves the other untouched.
	if err := gateway.BatchSave(version.Id, "MATERIAL", nil); err != nil {
		t.Fatalf("empty save failed: %v", err)
	}

	materialStored, _ := services.LoadLineItems(app, version.Id, "MATERIAL")
	if len(materialStored) != 0 {
		t.Errorf("material rows = %d, want 0", len(materialStored))
	}
	expenseStored, _ := services.LoadLineItems(app, version.Id, "EXPENSE")
	if len(expenseStored) != 1 {
		t.Errorf("expense rows = %d, want 1", len(expenseStored))
	}
}

func TestBatchSaveRefusesNonDraft(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Sealed Test")
	gateway := newGateway(app)

	for _, status := range []string{services.VersionStatusSealed, services.VersionStatusArchived} {
		t.Run(status, func(t *testing.T) {
			version := testhelpers.CreateTestVersion(t, app, project.Id, "", "V-"+status, status)
			err := gateway.BatchSave(version.Id, "MATERIAL", []services.LineItem{
				{ItemName: "X"},
			})
			if !errors.Is(err, services.ErrVersionNotDraft) {
				t.Errorf("err = %v, want ErrVersionNotDraft", err)
			}
			stored, _ := services.LoadLineItems(app, version.Id, "MATERIAL")
			if len(stored) != 0 {
				t.Errorf("rows written to %s version", status)
			}
		})
	}
}

func TestBatchSaveNormalizesModuleCode(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Module Alias Test")
	version := testhelpers.CreateTestVersion(t, app, project.Id, "", "V1", services.VersionStatusDraft)

	items := []services.LineItem{
		services.Recompute(services.LineItem{ItemName: "Legacy", Quantity: 1, UnitPrice: 5, TaxRate: 9}),
	}
	if err := newGateway(app).BatchSave(version.Id, "MATERIALS", items); err != nil {
		t.Fatalf("BatchSave failed: %v", err)
	}

	stored, _ := services.LoadLineItems(app, version.Id, "MATERIAL")
	if len(stored) != 1 {
		t.Errorf("rows under MATERIAL = %d, want 1", len(stored))
	}
}

func TestBatchSaveSerializesOverlappingSaves(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Overlap Test")
	version := testhelpers.CreateTestVersion(t, app, project.Id, "", "V1", services.VersionStatusDraft)

	// The recalc callback blocks after the first snapshot persists, holding
	// the ledger gate so the second save genuinely overlaps the first.
	firstApplied := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	gateway := services.NewSyncGateway(app, func(_ *pocketbase.PocketBase, _ string) error {
		once.Do(func() {
			close(firstApplied)
			<-release
		})
		return nil
	})

	first := []services.LineItem{
		services.Recompute(services.LineItem{ItemName: "First", Quantity: 1, UnitPrice: 10, TaxRate: 9}),
	}
	second := []services.LineItem{
		services.Recompute(services.LineItem{ItemName: "Second", Quantity: 2, UnitPrice: 20, TaxRate: 9}),
	}

	errs := make(chan error, 2)
	go func() { errs <- gateway.BatchSave(version.Id, "MATERIAL", first) }()
	<-firstApplied

	go func() { errs <- gateway.BatchSave(version.Id, "MATERIAL", second) }()
	close(release)

	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("BatchSave failed: %v", err)
		}
	}

	stored, err := services.LoadLineItems(app, version.Id, "MATERIAL")
	if err != nil {
		t.Fatalf("LoadLineItems failed: %v", err)
	}
	if len(stored) != 1 || stored[0].ItemName != "Second" {
		t.Fatalf("stored snapshot = %+v, want only the last-submitted row", stored)
	}
}

func TestBatchSaveConcurrentSnapshotsNeverInterleave(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Race Test")
	version := testhelpers.CreateTestVersion(t, app, project.Id, "", "V1", services.VersionStatusDraft)
	gateway := newGateway(app)

	// Every snapshot is a single distinct row; whichever save wins, the
	// stored ledger must equal one whole submitted snapshot, never a mix.
	const savers = 8
	submitted := make(map[string]bool, savers)
	var wg sync.WaitGroup
	for i := 0; i < savers; i++ {
		name := fmt.Sprintf("Row %d", i)
		submitted[name] = true
		items := []services.LineItem{
			services.Recompute(services.LineItem{ItemName: name, Quantity: 1, UnitPrice: 1, TaxRate: 9}),
		}
		wg.Add(1)
		go func(items []services.LineItem) {
			defer wg.Done()
			if err := gateway.BatchSave(version.Id, "MATERIAL", items); err != nil {
				t.Errorf("BatchSave failed: %v", err)
			}
		}(items)
	}
	wg.Wait()

	stored, err := services.LoadLineItems(app, version.Id, "MATERIAL")
	if err != nil {
		t.Fatalf("LoadLineItems failed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored rows = %d, want exactly one snapshot's row", len(stored))
	}
	if !submitted[stored[0].ItemName] {
		t.Errorf("stored row %q is not any submitted snapshot", stored[0].ItemName)
	}
}

func TestBatchSaveFiresRecalc(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Recalc Test")
	version := testhelpers.CreateTestVersion(t, app, project.Id, "", "V1", services.VersionStatusDraft)

	var gotVersionID string
	gateway := services.NewSyncGateway(app, func(_ *pocketbase.PocketBase, versionID string) error {
		gotVersionID = versionID
		return nil
	})

	if err := gateway.BatchSave(version.Id, "MATERIAL", nil); err != nil {
		t.Fatalf("BatchSave failed: %v", err)
	}
	if gotVersionID != version.Id {
		t.Errorf("recalc fired with version %q, want %q", gotVersionID, version.Id)
	}
}

func TestBatchSaveRecalcFailureDoesNotFailSave(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Recalc Failure Test")
	version := testhelpers.CreateTestVersion(t, app, project.Id, "", "V1", services.VersionStatusDraft)

	gateway := services.NewSyncGateway(app, func(_ *pocketbase.PocketBase, _ string) error {
		return errors.New("boom")
	})

	items := []services.LineItem{
		services.Recompute(services.LineItem{ItemName: "Row", Quantity: 1, UnitPrice: 1, TaxRate: 9}),
	}
	if err := gateway.BatchSave(version.Id, "MATERIAL", items); err != nil {
		t.Fatalf("BatchSave failed despite recalc being decoupled: %v", err)
	}
	stored, _ := services.LoadLineItems(app, version.Id, "MATERIAL")
	if len(stored) != 1 {
		t.Errorf("rows = %d, want 1", len(stored))
	}
}

package services

import (
	"testing"

	"github.com/pocketbase/pocketbase"
)

// A snapshot whose submission sequence is older than one already applied
// must be dropped before it touches storage or fires the recalc signal.
// The gateway carries a nil app here on purpose: the stale path returns
// before any store access, so reaching the store would panic the test.
func TestGateDropsStaleSnapshot(t *testing.T) {
	recalcs := 0
	g := NewSyncGateway(nil, func(_ *pocketbase.PocketBase, _ string) error {
		recalcs++
		return nil
	})

	gate := g.gate("v1/MATERIAL")
	gate.submitSeq = 1
	gate.applied = 3

	err := g.BatchSave("v1", "MATERIAL", []LineItem{{ItemName: "Stale"}})
	if err != nil {
		t.Fatalf("stale save returned error: %v", err)
	}
	if recalcs != 0 {
		t.Errorf("recalc fired %d times for a dropped snapshot", recalcs)
	}
	if gate.applied != 3 {
		t.Errorf("applied = %d, want 3 (unchanged)", gate.applied)
	}
	if gate.submitSeq != 2 {
		t.Errorf("submitSeq = %d, want 2", gate.submitSeq)
	}
}

package tick

import (
	"testing"

	"burnrate/internal/world"
)

func TestStageSupplyBurnCollapsesZoneOnZeroStockpile(t *testing.T) {
	// Scenario 1: a Front zone with 0 SU stockpile must collapse on the
	// next tick's supply-burn stage.
	env := newTestEngine(t)
	defer env.close()

	z := &world.Zone{ID: "front1", Kind: world.Front, OwnerFactionID: "f1", SUStockpile: 0}
	env.cache.PutZone(z)

	if err := env.engine.stageSupplyBurn(env.ctx, 1); err != nil {
		t.Fatalf("stageSupplyBurn: %v", err)
	}

	got := env.cache.Zone("front1")
	if !got.Collapsed {
		t.Fatalf("expected zone to collapse when stockpile hits 0")
	}
	if got.SupplyLevel != 0 {
		t.Fatalf("expected supply level forced to 0 on collapse, got %v", got.SupplyLevel)
	}
	if got.OwnerFactionID != "" {
		t.Fatalf("expected owner cleared on collapse, got %q", got.OwnerFactionID)
	}
	if got.ComplianceStreak != 0 {
		t.Fatalf("expected compliance streak reset on collapse, got %d", got.ComplianceStreak)
	}
}

func TestStageSupplyBurnNoCollapseWithPositiveStockpile(t *testing.T) {
	env := newTestEngine(t)
	defer env.close()

	z := &world.Zone{ID: "front1", Kind: world.Front, OwnerFactionID: "f1", SUStockpile: 100}
	env.cache.PutZone(z)

	if err := env.engine.stageSupplyBurn(env.ctx, 1); err != nil {
		t.Fatalf("stageSupplyBurn: %v", err)
	}

	got := env.cache.Zone("front1")
	if got.Collapsed {
		t.Fatalf("expected zone not to collapse with stockpile remaining")
	}
	if got.SUStockpile != 90 {
		t.Fatalf("expected stockpile decremented by burn rate 10, got %d", got.SUStockpile)
	}
}

package tick

import (
	"testing"

	"burnrate/internal/world"
)

func TestClassifyOutcomeBoundaries(t *testing.T) {
	cases := []struct {
		ratio float64
		want  CombatOutcome
	}{
		{0.76, DecisiveVictory},
		{0.75, CostlyVictory}, // boundary ties break toward the defender
		{0.56, CostlyVictory},
		{0.55, Stalemate},
		{0.46, Stalemate},
		{0.45, Defeat},
		{0.0, Defeat},
	}
	for _, c := range cases {
		if got := classifyOutcome(c.ratio); got != c.want {
			t.Fatalf("ratio %v: got %v want %v", c.ratio, got, c.want)
		}
	}
}

func TestInterceptionProbabilityCapsAndBonuses(t *testing.T) {
	route := &world.Route{BaseRisk: 0.2, ChokepointRating: 2.0}

	base := interceptionProbability(route, world.Courier, 0, false, 0)
	withEscort := interceptionProbability(route, world.Courier, 1000, false, 0)
	if withEscort >= base {
		t.Fatalf("expected heavy escort to reduce probability: base=%v escorted=%v", base, withEscort)
	}
	// escortReduction caps at 0.9, so probability never reaches zero.
	if withEscort <= 0 {
		t.Fatalf("expected capped escort reduction to leave residual probability, got %v", withEscort)
	}

	withIntel := interceptionProbability(route, world.Courier, 0, true, 0)
	if withIntel <= base {
		t.Fatalf("expected fresh raider intel to raise probability: base=%v withIntel=%v", base, withIntel)
	}

	withComms := interceptionProbability(route, world.Courier, 0, false, 10000)
	if withComms >= base {
		t.Fatalf("expected comms stockpile to reduce probability: base=%v withComms=%v", base, withComms)
	}
}

func TestResolveHopDeterministicForSameInputs(t *testing.T) {
	cache := world.NewCache()
	zone := &world.Zone{ID: "z1"}
	cache.PutZone(zone)
	route := &world.Route{ID: "r1", FromZone: "z1", ToZone: "z2", BaseRisk: 0.3, ChokepointRating: 3.0, DistanceTicks: 1}
	cache.PutRoute(route)

	shipment := &world.Shipment{ID: "s1", Path: []string{"z1", "z2"}, PositionIndex: 0, Kind: world.Courier}

	i1, l1, a1, o1 := resolveHop(cache, shipment, route, 5, 0, true, true)
	i2, l2, a2, o2 := resolveHop(cache, shipment, route, 5, 0, true, true)
	if i1 != i2 || l1 != l2 || a1 != a2 || o1 != o2 {
		t.Fatalf("resolveHop must be deterministic for identical (shipment, tick, hop): got (%v,%v,%v,%v) then (%v,%v,%v,%v)",
			i1, l1, a1, o1, i2, l2, a2, o2)
	}

	// A different hop index must be free to diverge (it draws from a
	// different seed); this only asserts resolveHop doesn't panic on it.
	resolveHop(cache, shipment, route, 5, 1, true, true)
}

func TestStageShipmentMovementArrivalDepositsCargo(t *testing.T) {
	env := newTestEngine(t)
	defer env.close()

	origin := &world.Zone{ID: "origin", Kind: world.Hub}
	dest := &world.Zone{ID: "dest", Kind: world.Hub, Inventory: map[string]int{}}
	env.cache.PutZone(origin)
	env.cache.PutZone(dest)
	route := &world.Route{ID: "r1", FromZone: "origin", ToZone: "dest", DistanceTicks: 1, BaseRisk: 0, ChokepointRating: 1}
	env.cache.PutRoute(route)

	owner := &world.Player{ID: "p1", Name: "Carrier", Inventory: map[string]int{"credits": 0}}
	env.cache.PutPlayer(owner)

	s := &world.Shipment{
		ID: "s1", OwnerPlayerID: "p1", Kind: world.Courier, Path: []string{"origin", "dest"},
		PositionIndex: 0, TicksToNextZone: 1, Cargo: map[string]int{"ore": 10}, Status: world.InTransit,
	}
	env.cache.PutShipment(s)

	if err := env.engine.stageShipmentMovement(env.ctx, 1); err != nil {
		t.Fatalf("stageShipmentMovement: %v", err)
	}

	got := env.cache.Shipment("s1")
	if got.Status != world.Arrived {
		t.Fatalf("expected shipment arrived (base risk 0 means no interception), got %v", got.Status)
	}
	destAfter := env.cache.Zone("dest")
	if destAfter.Inventory["ore"] != 10 {
		t.Fatalf("expected 10 ore deposited at destination, got %d", destAfter.Inventory["ore"])
	}
	if env.cache.Player("p1").Reputation != 5 {
		t.Fatalf("expected +5 reputation on arrival, got %d", env.cache.Player("p1").Reputation)
	}
}

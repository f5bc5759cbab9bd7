package action

import (
	"context"
	"testing"

	"burnrate/internal/events"
	"burnrate/internal/storage"
	"burnrate/internal/world"
)

// testProcessor builds an in-memory Processor with no tick engine attached
// (nil engine means lockAggregates/lockWorld skip the tick exclusive stance,
// matching how the teacher's own unit tests exercise handlers without a
// running background loop).
func testProcessor(t *testing.T) *Processor {
	t.Helper()
	db, err := storage.OpenSQLite(":memory:", "sqlite3")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	store, err := storage.Open(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	cache := world.NewCache()
	queue := events.NewQueue()
	evLog := events.New(store, cache, queue)
	return New(store, cache, evLog, nil)
}

func TestJoinAssignsHomeHubAndStartingInventory(t *testing.T) {
	p := testProcessor(t)
	hub := &world.Zone{ID: "hub1", Kind: world.Hub}
	p.cache.PutZone(hub)

	pl, err := p.Join(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if pl.CurrentZone != "hub1" {
		t.Fatalf("expected home zone hub1, got %s", pl.CurrentZone)
	}
	if pl.Inventory["credits"] != 500 {
		t.Fatalf("expected starting credits 500, got %d", pl.Inventory["credits"])
	}
	if !pl.Licenses.Courier {
		t.Fatalf("expected courier license granted on join")
	}
}

func TestJoinRejectsDuplicateName(t *testing.T) {
	p := testProcessor(t)
	p.cache.PutZone(&world.Zone{ID: "hub1", Kind: world.Hub})
	ctx := context.Background()

	if _, err := p.Join(ctx, "Bob"); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if _, err := p.Join(ctx, "Bob"); err == nil {
		t.Fatalf("expected duplicate name to be rejected")
	}
}

func TestTravelRequiresDirectRoute(t *testing.T) {
	p := testProcessor(t)
	ctx := context.Background()
	a := &world.Zone{ID: "a", Kind: world.Hub}
	b := &world.Zone{ID: "b", Kind: world.Hub}
	p.cache.PutZone(a)
	p.cache.PutZone(b)

	pl := &world.Player{ID: "p1", CurrentZone: "a", Inventory: map[string]int{"credits": 0}}
	p.cache.PutPlayer(pl)

	if err := p.Travel(ctx, pl, "b"); err == nil {
		t.Fatalf("expected travel to fail with no direct route")
	}

	p.cache.PutRoute(&world.Route{ID: "r1", FromZone: "a", ToZone: "b", DistanceTicks: 1})
	if err := p.Travel(ctx, pl, "b"); err != nil {
		t.Fatalf("expected travel to succeed once a direct route exists: %v", err)
	}
	if pl.CurrentZone != "b" {
		t.Fatalf("expected player moved to zone b, got %s", pl.CurrentZone)
	}
}

func TestExtractRequiresFieldZoneAndCredits(t *testing.T) {
	p := testProcessor(t)
	ctx := context.Background()
	hub := &world.Zone{ID: "hub1", Kind: world.Hub}
	field := &world.Zone{ID: "field1", Kind: world.Field, ProductionCap: map[string]int{"ore": 100}}
	p.cache.PutZone(hub)
	p.cache.PutZone(field)

	pl := &world.Player{ID: "p1", CurrentZone: "hub1", Inventory: map[string]int{"credits": 1000}}
	p.cache.PutPlayer(pl)

	if err := p.Extract(ctx, pl, 10); err == nil {
		t.Fatalf("expected extraction to fail outside a field zone")
	}

	pl.CurrentZone = "field1"
	if err := p.Extract(ctx, pl, 10); err != nil {
		t.Fatalf("expected extraction to succeed at a field: %v", err)
	}
	if pl.Inventory["ore"] != 10 {
		t.Fatalf("expected 10 ore extracted, got %d", pl.Inventory["ore"])
	}
	if pl.Inventory["credits"] != 950 {
		t.Fatalf("expected 50 credits charged (5/unit), got balance %d", pl.Inventory["credits"])
	}
}

func TestFounderMustTransferBeforeLeavingNonEmptyFaction(t *testing.T) {
	p := testProcessor(t)
	ctx := context.Background()
	founder := &world.Player{ID: "p1", Inventory: map[string]int{"credits": 0}}
	other := &world.Player{ID: "p2", Inventory: map[string]int{"credits": 0}}
	p.cache.PutPlayer(founder)
	p.cache.PutPlayer(other)

	f, err := p.CreateFaction(ctx, founder, "Vanguard", "VAN")
	if err != nil {
		t.Fatalf("create faction: %v", err)
	}
	if f.FounderID != "p1" {
		t.Fatalf("expected founder p1, got %s", f.FounderID)
	}

	other.FactionID = f.ID
	f.Members = append(f.Members, world.Membership{PlayerID: "p2", Rank: world.MemberRank})
	p.cache.PutFaction(f)

	if err := p.LeaveFaction(ctx, founder); err == nil {
		t.Fatalf("expected founder to be blocked from leaving while other members remain")
	}

	// A sole founder (no other members) may leave, dissolving the roster.
	if err := p.LeaveFaction(ctx, other); err != nil {
		t.Fatalf("expected ordinary member to leave freely: %v", err)
	}
	if err := p.LeaveFaction(ctx, founder); err != nil {
		t.Fatalf("expected sole remaining founder to leave: %v", err)
	}
}

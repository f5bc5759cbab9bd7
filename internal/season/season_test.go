package season

import (
	"context"
	"testing"

	"burnrate/internal/storage"
	"burnrate/internal/world"
)

func testStore(t *testing.T) *storage.Store {
	t.Helper()
	db, err := storage.OpenSQLite(":memory:", "sqlite3")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	s, err := storage.Open(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return s
}

func TestStreakMultiplierBands(t *testing.T) {
	cases := map[int]float64{0: 1.0, 4: 1.0, 5: 1.2, 19: 1.2, 20: 1.5, 49: 1.5, 50: 2.0, 99: 2.0, 100: 3.0}
	for streak, want := range cases {
		if got := StreakMultiplier(streak); got != want {
			t.Fatalf("streak %d: got %v want %v", streak, got, want)
		}
	}
}

func TestSeasonResetBoundaryScenario(t *testing.T) {
	// Scenario 6: at reset, shipments deleted, credits normalize to 500,
	// reputation halved (floored), faction memberships preserved, season
	// number incremented, licenses intact.
	store := testStore(t)
	cache := world.NewCache()
	ctx := context.Background()

	p := &world.Player{ID: "p1", Name: "Alice", Inventory: map[string]int{"credits": 9001}, Reputation: 7,
		Licenses: world.Licenses{Courier: true, Freight: true}}
	cache.PutPlayer(p)

	f := &world.Faction{ID: "f1", FounderID: "p1", Members: []world.Membership{{PlayerID: "p1", Rank: world.FounderRank}}}
	cache.PutFaction(f)

	cache.PutShipment(&world.Shipment{ID: "s1", OwnerPlayerID: "p1", Status: world.InTransit})

	cache.SetSeason(1, 0)

	newSeason, err := Reset(ctx, store, cache, 1000)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if newSeason != 2 {
		t.Fatalf("expected season 2, got %d", newSeason)
	}

	got := cache.Player("p1")
	if got.Inventory["credits"] != 500 {
		t.Fatalf("expected credits normalized to 500, got %d", got.Inventory["credits"])
	}
	if got.Reputation != 3 {
		t.Fatalf("expected reputation floored to 3, got %d", got.Reputation)
	}
	if !got.Licenses.Freight {
		t.Fatalf("expected licenses preserved")
	}

	if cache.Shipment("s1") != nil {
		t.Fatalf("expected shipments deleted on reset")
	}

	gotFaction := cache.Faction("f1")
	if len(gotFaction.Members) != 1 || gotFaction.Members[0].PlayerID != "p1" {
		t.Fatalf("expected faction membership preserved, got %+v", gotFaction.Members)
	}
}

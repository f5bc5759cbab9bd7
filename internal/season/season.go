// Package season implements score accumulation and the season reset.
package season

import (
	"context"
	"fmt"

	"burnrate/internal/storage"
	"burnrate/internal/world"
)

// StreakMultiplier returns the zonesControlled streak multiplier for a
// compliance streak length.
func StreakMultiplier(streak int) float64 {
	switch {
	case streak >= 100:
		return 3.0
	case streak >= 50:
		return 2.0
	case streak >= 20:
		return 1.5
	case streak >= 5:
		return 1.2
	default:
		return 1.0
	}
}

// RecordSupplyDelivered adds +1 per SU supplied to the player's score.
func RecordSupplyDelivered(cache *world.Cache, season int, playerID string, su int) {
	s := cache.Score(season, playerID)
	s.SupplyDelivered += su
}

// RecordShipmentCompleted adds the fixed per-shipment score bonus.
func RecordShipmentCompleted(cache *world.Cache, season int, playerID string) {
	cache.Score(season, playerID).ShipmentsCompleted++
}

// RecordContractCompleted adds the fixed per-contract score bonus.
func RecordContractCompleted(cache *world.Cache, season int, playerID string) {
	cache.Score(season, playerID).ContractsCompleted++
}

// RecordReputationGained adds +2 per reputation point earned.
func RecordReputationGained(cache *world.Cache, season int, playerID string, repDelta int) {
	if repDelta <= 0 {
		return
	}
	cache.Score(season, playerID).ReputationGained += repDelta
}

// RecordCombatVictory adds the fixed per-victory score bonus.
func RecordCombatVictory(cache *world.Cache, season int, playerID string) {
	cache.Score(season, playerID).CombatVictories++
}

// RecomputeZonesControlled recomputes every faction's zonesControlled
// category at a tick boundary: Σ controlled zones · that faction's
// streak-derived multiplier, using each controlled zone's own compliance
// streak.
func RecomputeZonesControlled(cache *world.Cache, season int) {
	totals := make(map[string]float64)
	for _, z := range cache.AllZones() {
		if z.OwnerFactionID == "" {
			continue
		}
		totals[z.OwnerFactionID] += StreakMultiplier(z.ComplianceStreak)
	}
	for factionID, total := range totals {
		cache.Score(season, factionID).ZonesControlled = total
	}
}

// Leaderboard returns every score row for a season (callers sort by
// TotalScore() descending for display).
func Leaderboard(cache *world.Cache, season int) []*world.SeasonScore {
	return cache.ScoresForSeason(season)
}

// Reset performs the atomic season reset described in the spec: archives
// scores under the outgoing season number (persisted to the scores table,
// then the live table is cleared), clears zone ownership/supply/stockpiles/inventory,
// resets every player's inventory to {credits: 500}, halves reputation
// (floor), deletes shipments/units/orders/active contracts/intel, empties
// treasuries, and preserves accounts, licenses, faction identities, and
// reputation-derived titles. Returns the new season number.
func Reset(ctx context.Context, store *storage.Store, cache *world.Cache, newStartTick int64) (int, error) {
	outgoing := cache.SeasonNumber()

	for _, z := range cache.AllZones() {
		z.OwnerFactionID = ""
		z.SupplyLevel = 0
		z.ComplianceStreak = 0
		z.SUStockpile = 0
		z.MedkitStockpile = 0
		z.CommsStockpile = 0
		z.Inventory = map[string]int{}
		z.Collapsed = false
		if err := store.Put(ctx, storage.TableZones, z.ID, z); err != nil {
			return outgoing, err
		}
		cache.PutZone(z)
	}

	for _, p := range cache.AllPlayers() {
		p.Inventory = map[string]int{"credits": 500}
		p.Reputation = p.Reputation / 2
		if err := store.Put(ctx, storage.TablePlayers, p.ID, p); err != nil {
			return outgoing, err
		}
		cache.PutPlayer(p)
	}

	for _, s := range cache.AllShipments() {
		store.Delete(ctx, storage.TableShipments, s.ID)
		cache.DeleteShipment(s.ID)
	}
	for _, u := range cache.AllUnits() {
		store.Delete(ctx, storage.TableUnits, u.ID)
		cache.DeleteUnit(u.ID)
	}
	for _, o := range cache.AllOrders() {
		store.Delete(ctx, storage.TableOrders, o.ID)
		cache.DeleteOrder(o.ID)
	}
	for _, ct := range cache.AllContracts() {
		if ct.Status == world.Open || ct.Status == world.Accepted {
			store.Delete(ctx, storage.TableContracts, ct.ID)
			cache.DeleteContract(ct.ID)
		}
	}
	for _, r := range cache.AllIntel() {
		store.Delete(ctx, storage.TableIntel, r.ID)
		cache.DeleteIntel(r.ID)
	}

	for _, f := range cache.AllFactions() {
		f.Treasury = map[string]int{}
		if err := store.Put(ctx, storage.TableFactions, f.ID, f); err != nil {
			return outgoing, err
		}
		cache.PutFaction(f)
	}

	for _, s := range cache.ScoresForSeason(outgoing) {
		key := fmt.Sprintf("%d:%s", s.Season, s.EntityID)
		if err := store.Put(ctx, storage.TableScores, key, s); err != nil {
			return outgoing, err
		}
	}
	cache.ArchiveAndResetScores()
	cache.SetSeason(outgoing+1, newStartTick)
	return outgoing + 1, nil
}

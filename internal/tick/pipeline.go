package tick

import (
	"context"
	"fmt"
	"time"

	"burnrate/internal/market"
	"burnrate/internal/season"
	"burnrate/internal/storage"
	"burnrate/internal/world"
)

// runOnce executes the 14-stage pipeline for the next tick and commits.
// Any storage error aborts the tick without advancing current_tick; the
// caller (TryAdvance/AdminForceAdvance) surfaces the failure and the next
// firing retries against the same pre-tick state.
func (e *Engine) runOnce(ctx context.Context) error {
	e.Lock()
	defer e.Unlock()

	t := e.cache.CurrentTick() + 1
	ltp := market.NewLastTradePrice()

	// 1. Maintenance collection.
	if err := e.stageMaintenance(ctx, t); err != nil {
		return fmt.Errorf("stage maintenance: %w", err)
	}

	// 2. Shipment movement (interception resolution inline).
	if err := e.stageShipmentMovement(ctx, t); err != nil {
		return fmt.Errorf("stage shipment movement: %w", err)
	}

	// 3. Production orders: action-initiated; no tick-driven work beyond
	// capacity refill, which has no stored state to reset in this core.

	// 4. Supply burn.
	if err := e.stageSupplyBurn(ctx, t); err != nil {
		return fmt.Errorf("stage supply burn: %w", err)
	}

	// 5. Stockpile decay.
	if err := e.stageStockpileDecay(ctx, t); err != nil {
		return fmt.Errorf("stage stockpile decay: %w", err)
	}

	// 6. Market TWAP progression.
	if err := e.stageTWAPProgression(ctx, t); err != nil {
		return fmt.Errorf("stage twap: %w", err)
	}

	// 7. Market conditional arming/firing.
	if err := e.stageConditionalArming(ctx, ltp); err != nil {
		return fmt.Errorf("stage conditional: %w", err)
	}

	// 8. Market matching.
	if err := e.stageMarketMatching(ctx, t, ltp); err != nil {
		return fmt.Errorf("stage matching: %w", err)
	}

	// 9. Contract expiry.
	if err := e.stageContractExpiry(ctx, t); err != nil {
		return fmt.Errorf("stage contract expiry: %w", err)
	}

	// 10. Zone income.
	if err := e.stageZoneIncome(ctx, t); err != nil {
		return fmt.Errorf("stage zone income: %w", err)
	}

	// 11. Intel decay sweep (every 50 ticks).
	if t%50 == 0 {
		if err := e.stageIntelSweep(ctx, t); err != nil {
			return fmt.Errorf("stage intel sweep: %w", err)
		}
	}

	// 12. Season progression.
	if err := e.stageSeasonProgression(ctx, t); err != nil {
		return fmt.Errorf("stage season: %w", err)
	}

	// 13. Webhook dispatch.
	if e.dispatch != nil {
		e.dispatch.DispatchAll(ctx, e.queue)
	}

	// 14. Commit.
	if err := e.commit(ctx, t); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// commit persists the new tick number and last-tick timestamp.
func (e *Engine) commit(ctx context.Context, t int64) error {
	nowMillis := time.Now().UnixMilli()
	if err := e.store.MetaSet(lastTickKey, fmt.Sprintf("%d", nowMillis)); err != nil {
		return err
	}
	if err := e.store.MetaSet("current_tick", fmt.Sprintf("%d", t)); err != nil {
		return err
	}
	e.cache.SetCurrentTick(t)
	return nil
}

// stageMaintenance charges every unit's maintenance from its owner's
// credits; players left below zero have their oldest unit deleted until
// balance is non-negative.
func (e *Engine) stageMaintenance(ctx context.Context, t int64) error {
	byOwner := make(map[string][]*world.Unit)
	for _, u := range e.cache.AllUnits() {
		byOwner[u.OwnerPlayerID] = append(byOwner[u.OwnerPlayerID], u)
	}
	for ownerID, units := range byOwner {
		p := e.cache.Player(ownerID)
		if p == nil {
			continue
		}
		total := 0
		for _, u := range units {
			total += u.MaintenanceFee
		}
		p.Inventory["credits"] -= total
		for p.Inventory["credits"] < 0 && len(units) > 0 {
			oldest := units[0]
			for _, u := range units {
				if u.CreatedBefore(oldest) {
					oldest = u
				}
			}
			p.Inventory["credits"] += oldest.MaintenanceFee
			if err := e.store.Delete(ctx, storage.TableUnits, oldest.ID); err != nil {
				return err
			}
			e.cache.DeleteUnit(oldest.ID)
			units = removeUnit(units, oldest.ID)
		}
		if err := e.store.Put(ctx, storage.TablePlayers, p.ID, p); err != nil {
			return err
		}
		e.cache.PutPlayer(p)
	}
	return nil
}

func removeUnit(units []*world.Unit, id string) []*world.Unit {
	out := units[:0]
	for _, u := range units {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out
}

// stageSupplyBurn deducts burn from each owned zone's SU stockpile,
// recomputes supply_level, updates compliance streak, and collapses zones
// that hit zero stockpile.
func (e *Engine) stageSupplyBurn(ctx context.Context, t int64) error {
	for _, z := range e.cache.AllZones() {
		if z.OwnerFactionID == "" {
			continue
		}
		burn := z.Kind.BurnRate()
		if burn == 0 {
			continue
		}
		stockpileAfter := z.SUStockpile - burn
		if stockpileAfter < 0 {
			stockpileAfter = 0
		}
		z.SUStockpile = stockpileAfter

		supplyLevel := 100.0 * float64(stockpileAfter+burn) / float64(burn)
		if supplyLevel > 100 {
			supplyLevel = 100
		}
		z.SupplyLevel = supplyLevel

		if supplyLevel >= 100 {
			z.ComplianceStreak++
		} else {
			z.ComplianceStreak = 0
		}

		if stockpileAfter == 0 {
			z.SupplyLevel = 0
			z.Collapsed = true
			z.OwnerFactionID = ""
			z.ComplianceStreak = 0
			if e.log != nil {
				e.log.Emit(ctx, t, "zone_collapsed", z.ID, "zone", map[string]interface{}{"zone_id": z.ID})
			}
		}
		if err := e.store.Put(ctx, storage.TableZones, z.ID, z); err != nil {
			return err
		}
		e.cache.PutZone(z)
	}
	return nil
}

// stageStockpileDecay ages medkit (-1/10 ticks) and comms (-1/20 ticks)
// stockpiles, never below zero.
func (e *Engine) stageStockpileDecay(ctx context.Context, t int64) error {
	for _, z := range e.cache.AllZones() {
		changed := false
		if t%10 == 0 && z.MedkitStockpile > 0 {
			z.MedkitStockpile--
			changed = true
		}
		if t%20 == 0 && z.CommsStockpile > 0 {
			z.CommsStockpile--
			changed = true
		}
		if changed {
			if err := e.store.Put(ctx, storage.TableZones, z.ID, z); err != nil {
				return err
			}
			e.cache.PutZone(z)
		}
	}
	return nil
}

// stageContractExpiry marks any Open/Accepted contract whose deadline has
// passed as Expired; Accepted contracts fail their acceptor, the poster
// keeps escrow minus a cancellation fee.
func (e *Engine) stageContractExpiry(ctx context.Context, t int64) error {
	const cancellationFeePct = 0.1
	for _, ct := range e.cache.AllContracts() {
		if ct.DeadlineTick > t {
			continue
		}
		if ct.Status != world.Open && ct.Status != world.Accepted {
			continue
		}
		ct.Status = world.Expired
		if err := e.store.Put(ctx, storage.TableContracts, ct.ID, ct); err != nil {
			return err
		}
		e.cache.PutContract(ct)
		fee := int(float64(ct.RewardCredits) * cancellationFeePct)
		if poster := e.cache.Player(ct.PosterID); poster != nil {
			poster.Inventory["credits"] += ct.RewardCredits - fee
			if err := e.store.Put(ctx, storage.TablePlayers, poster.ID, poster); err != nil {
				return err
			}
			e.cache.PutPlayer(poster)
		}
		if e.log != nil {
			e.log.Emit(ctx, t, "contract_expired", ct.ID, "contract", map[string]interface{}{
				"contract_id": ct.ID, "cancellation_fee": fee,
			})
		}
	}
	return nil
}

// stageZoneIncome distributes per-tick credits to owners; faction-owned
// zones distribute equally among active members.
func (e *Engine) stageZoneIncome(ctx context.Context, t int64) error {
	for _, z := range e.cache.AllZones() {
		income := z.Kind.IncomePerTick()
		if income == 0 || z.OwnerFactionID == "" {
			continue
		}
		f := e.cache.Faction(z.OwnerFactionID)
		if f == nil || len(f.Members) == 0 {
			continue
		}
		share := income / len(f.Members)
		if share == 0 {
			continue
		}
		for _, m := range f.Members {
			p := e.cache.Player(m.PlayerID)
			if p == nil {
				continue
			}
			p.Inventory["credits"] += share
			if err := e.store.Put(ctx, storage.TablePlayers, p.ID, p); err != nil {
				return err
			}
			e.cache.PutPlayer(p)
		}
	}
	return nil
}

// stageIntelSweep hard-deletes intel older than 200 ticks.
func (e *Engine) stageIntelSweep(ctx context.Context, t int64) error {
	for _, r := range e.cache.AllIntel() {
		if t-r.GatheredAtTick >= 200 {
			if err := e.store.Delete(ctx, storage.TableIntel, r.ID); err != nil {
				return err
			}
			e.cache.DeleteIntel(r.ID)
		}
	}
	return nil
}

// stageSeasonProgression runs the season reset once the configured season
// length has elapsed since the season's start tick.
func (e *Engine) stageSeasonProgression(ctx context.Context, t int64) error {
	season.RecomputeZonesControlled(e.cache, e.cache.SeasonNumber())

	seasonTicks := int64(e.seasonLength / e.interval)
	if seasonTicks <= 0 {
		return nil
	}
	if t-e.cache.SeasonStart() < seasonTicks {
		return nil
	}
	if _, err := season.Reset(ctx, e.store, e.cache, t); err != nil {
		return err
	}
	if e.log != nil {
		e.log.Emit(ctx, t, "season_reset", "", "system", map[string]interface{}{"new_season": e.cache.SeasonNumber()})
	}
	return nil
}

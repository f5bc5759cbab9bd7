package tick

import (
	"context"

	"burnrate/internal/prng"
	"burnrate/internal/storage"
	"burnrate/internal/world"
)

// CombatOutcome partitions the strength ratio a/(a+d).
type CombatOutcome string

const (
	DecisiveVictory CombatOutcome = "DecisiveVictory"
	CostlyVictory   CombatOutcome = "CostlyVictory"
	Stalemate       CombatOutcome = "Stalemate"
	Defeat          CombatOutcome = "Defeat"
)

// classifyOutcome partitions a/(a+d) at [0.75, 0.55, 0.45, 0), ties
// (exactly at a boundary) broken toward the defender.
func classifyOutcome(ratio float64) CombatOutcome {
	switch {
	case ratio > 0.75:
		return DecisiveVictory
	case ratio > 0.55:
		return CostlyVictory
	case ratio > 0.45:
		return Stalemate
	default:
		return Defeat
	}
}

// interceptionProbability computes p_intercept per the formula in the
// interception resolution design note.
func interceptionProbability(route *world.Route, kind world.ShipmentKind, escortStrength float64, hasFreshRaiderIntel bool, commsStockpile int) float64 {
	visibility := kind.Visibility()
	escortReduction := escortStrength / 50
	if escortReduction > 0.9 {
		escortReduction = 0.9
	}
	raiderBonus := 1.0
	if hasFreshRaiderIntel {
		raiderBonus = 1.25
	}
	commsDefense := float64(commsStockpile) / 100
	if commsDefense > 0.5 {
		commsDefense = 0.5
	}
	return route.BaseRisk * route.ChokepointRating * visibility * (1 - escortReduction) * raiderBonus * (1 - commsDefense)
}

// resolveHop runs interception resolution for one shipment hop, returning
// whether the shipment was intercepted and (if so) the fraction of cargo
// lost and whether the attacker also lost a unit (Costly Victory).
func resolveHop(cache *world.Cache, s *world.Shipment, route *world.Route, tick int64, hopIndex int, raiderDeployed, raiderIntelFresh bool) (intercepted bool, cargoLossFrac float64, attackerLostUnit bool, outcome CombatOutcome) {
	zone := cache.Zone(s.Path[s.PositionIndex])

	var escortStrength float64
	for _, id := range s.EscortUnitIDs {
		if u := cache.Unit(id); u != nil {
			escortStrength += u.Strength
		}
	}

	p := interceptionProbability(route, s.Kind, escortStrength, raiderDeployed && raiderIntelFresh, zoneCommsStockpile(zone))

	r := prng.ForHop(s.ID, tick, hopIndex)
	sample := r.Float64()
	if sample >= p {
		return false, 0, false, ""
	}

	// Combat resolution: attacker vs escort+medkit bonus, each jittered.
	attackerStrength := 10.0 // fixed base raider strength; no unit's Strength is consulted
	medkitBonus := float64(zoneMedkitStockpile(zone)) / 100
	if medkitBonus > 0.5 {
		medkitBonus = 0.5
	}
	defStrength := escortStrength + medkitBonus

	a := prng.Gaussian(r, attackerStrength, 0.2*attackerStrength)
	d := prng.Gaussian(r, defStrength, 0.2*defStrength)
	if a < 0 {
		a = 0
	}
	if d < 0 {
		d = 0
	}

	var ratio float64
	if a+d > 0 {
		ratio = a / (a + d)
	}
	outcome = classifyOutcome(ratio)

	switch outcome {
	case DecisiveVictory:
		return true, 1.0, false, outcome
	case CostlyVictory:
		return true, 1.0, true, outcome
	case Stalemate:
		return true, 0.5, false, outcome
	default: // Defeat
		return false, 0, false, outcome
	}
}

func zoneCommsStockpile(z *world.Zone) int {
	if z == nil {
		return 0
	}
	return z.CommsStockpile
}

func zoneMedkitStockpile(z *world.Zone) int {
	if z == nil {
		return 0
	}
	return z.MedkitStockpile
}

// stageShipmentMovement advances every in-transit shipment one hop
// counter; resolves interception; handles arrival.
func (e *Engine) stageShipmentMovement(ctx context.Context, t int64) error {
	for _, s := range e.cache.AllShipments() {
		if s.Status != world.InTransit {
			continue
		}
		s.TicksToNextZone--
		if s.TicksToNextZone > 0 {
			if err := e.persistShipment(ctx, s); err != nil {
				return err
			}
			continue
		}

		from := s.Path[s.PositionIndex]
		to := s.Path[s.PositionIndex+1]
		route := e.cache.RouteBetween(from, to)
		if route == nil {
			// Path became illegal mid-transit (route removed); treat as lost.
			s.Status = world.Lost
			if err := e.persistShipment(ctx, s); err != nil {
				return err
			}
			continue
		}

		intercepted, lossFrac, attackerLostUnit, _ := resolveHop(e.cache, s, route, t, s.PositionIndex, false, false)
		if intercepted {
			s.Status = world.Intercepted
			for res, qty := range s.Cargo {
				s.Cargo[res] = int(float64(qty) * (1 - lossFrac))
			}
			p := e.cache.Player(s.OwnerPlayerID)
			if p != nil {
				p.Reputation -= 10
				if err := e.store.Put(ctx, storage.TablePlayers, p.ID, p); err != nil {
					return err
				}
				e.cache.PutPlayer(p)
			}
			if e.log != nil {
				e.log.Emit(ctx, t, "shipment_intercepted", s.OwnerPlayerID, "player", map[string]interface{}{
					"shipment_id": s.ID, "loss_fraction": lossFrac, "attacker_lost_unit": attackerLostUnit,
				})
			}
			if err := e.persistShipment(ctx, s); err != nil {
				return err
			}
			continue
		}

		s.PositionIndex++
		if s.PositionIndex == len(s.Path)-1 {
			s.Status = world.Arrived
			dest := e.cache.Zone(s.Path[s.PositionIndex])
			if dest != nil {
				if dest.Inventory == nil {
					dest.Inventory = map[string]int{}
				}
				for res, qty := range s.Cargo {
					dest.Inventory[res] += qty
				}
				if err := e.store.Put(ctx, storage.TableZones, dest.ID, dest); err != nil {
					return err
				}
				e.cache.PutZone(dest)
			}
			p := e.cache.Player(s.OwnerPlayerID)
			if p != nil {
				p.Reputation += 5
				if err := e.store.Put(ctx, storage.TablePlayers, p.ID, p); err != nil {
					return err
				}
				e.cache.PutPlayer(p)
			}
			if e.log != nil {
				e.log.Emit(ctx, t, "shipment_arrived", s.OwnerPlayerID, "player", map[string]interface{}{"shipment_id": s.ID})
			}
		} else {
			nextRoute := e.cache.RouteBetween(s.Path[s.PositionIndex], s.Path[s.PositionIndex+1])
			if nextRoute != nil {
				s.TicksToNextZone = nextRoute.DistanceTicks
			}
		}
		if err := e.persistShipment(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) persistShipment(ctx context.Context, s *world.Shipment) error {
	if err := e.store.Put(ctx, storage.TableShipments, s.ID, s); err != nil {
		return err
	}
	e.cache.PutShipment(s)
	return nil
}

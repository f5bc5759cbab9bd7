package action

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"burnrate/internal/apierr"
	"burnrate/internal/faction"
	"burnrate/internal/season"
	"burnrate/internal/storage"
	"burnrate/internal/world"
)

// recipes mirrors the production chains fixed by the starting constants:
// output -> required inputs.
var recipes = map[string]map[string]int{
	"metal":     {"ore": 2, "fuel": 1},
	"chemicals": {"ore": 1, "fuel": 2},
	"rations":   {"grain": 3, "fuel": 1},
	"textiles":  {"fiber": 2, "chemicals": 1},
	"ammo":      {"metal": 1, "chemicals": 1},
	"medkits":   {"chemicals": 1, "textiles": 1},
	"parts":     {"metal": 1, "textiles": 1},
	"comms":     {"metal": 1, "chemicals": 1, "parts": 1},
	"escort":    {"metal": 2, "parts": 1, "rations": 1},
	"raider":    {"metal": 2, "parts": 2, "comms": 1},
}

func invalid(msg string) error { return apierr.New(apierr.Validation, "VALIDATION", msg) }
func precond(msg string) error { return apierr.New(apierr.Precondition, "PRECONDITION", msg) }
func notFound(msg string) error { return apierr.New(apierr.NotFound, "NOT_FOUND", msg) }

// Join creates a new account at a random Hub with starting credits and
// the courier license.
func (p *Processor) Join(ctx context.Context, name string) (*world.Player, error) {
	unlock := p.lockWorld()
	defer unlock()

	if len(name) < 2 || len(name) > 20 {
		return nil, invalid("name must be 2-20 characters")
	}
	if p.cache.PlayerNameTaken(name) {
		return nil, invalid("name already taken")
	}

	var hubs []*world.Zone
	for _, z := range p.cache.AllZones() {
		if z.Kind == world.Hub {
			hubs = append(hubs, z)
		}
	}
	if len(hubs) == 0 {
		return nil, precond("no hub zones exist")
	}
	home := hubs[rand.Intn(len(hubs))]

	pl := &world.Player{
		ID:          uuid.NewString(),
		Name:        name,
		APIKey:      uuid.NewString(),
		Tier:        world.Freelance,
		Inventory:   map[string]int{"credits": 500},
		CurrentZone: home.ID,
		Licenses:    world.Licenses{Courier: true},
	}
	if err := p.store.Put(ctx, storage.TablePlayers, pl.ID, pl); err != nil {
		return nil, err
	}
	p.cache.PutPlayer(pl)
	p.log.Emit(ctx, p.cache.CurrentTick(), "player_joined", pl.ID, "player", map[string]interface{}{"name": name})
	return pl, nil
}

// Travel moves a player along a direct route to another zone.
func (p *Processor) Travel(ctx context.Context, pl *world.Player, to string) error {
	route := p.cache.RouteBetween(pl.CurrentZone, to)
	if route == nil {
		return precond("no direct route to destination")
	}
	unlock := p.lockAggregates([2]string{"player", pl.ID})
	defer unlock()

	pl.CurrentZone = to
	if err := p.finishAction(ctx, pl, p.cache.CurrentTick()); err != nil {
		return err
	}
	p.log.Emit(ctx, p.cache.CurrentTick(), "player_traveled", pl.ID, "player", map[string]interface{}{"to": to})
	return nil
}

// Extract pulls qty of a Field's raw resource into the player's inventory
// for 5 credits/unit.
func (p *Processor) Extract(ctx context.Context, pl *world.Player, qty int) error {
	if qty <= 0 {
		return invalid("qty must be positive")
	}
	zone := p.cache.Zone(pl.CurrentZone)
	if zone == nil || zone.Kind != world.Field {
		return precond("must be at a field to extract")
	}
	cost := 5 * qty
	if pl.Inventory["credits"] < cost {
		return precond("insufficient credits")
	}

	unlock := p.lockAggregates([2]string{"player", pl.ID}, [2]string{"zone", zone.ID})
	defer unlock()

	resource := fieldResource(zone)
	pl.Inventory["credits"] -= cost
	pl.Inventory[resource] += qty
	if err := p.finishAction(ctx, pl, p.cache.CurrentTick()); err != nil {
		return err
	}
	p.log.Emit(ctx, p.cache.CurrentTick(), "resource_extracted", pl.ID, "player", map[string]interface{}{"resource": resource, "qty": qty})
	return nil
}

// fieldResource picks the raw resource a field zone yields, keyed by its
// production cap map (the zone with the highest configured cap wins).
func fieldResource(z *world.Zone) string {
	best, bestQty := "ore", -1
	for res, qty := range z.ProductionCap {
		if qty > bestQty {
			best, bestQty = res, qty
		}
	}
	return best
}

// Produce converts recipe inputs into outputs at a Factory.
func (p *Processor) Produce(ctx context.Context, pl *world.Player, output string, qty int) error {
	if qty <= 0 {
		return invalid("qty must be positive")
	}
	zone := p.cache.Zone(pl.CurrentZone)
	if zone == nil || zone.Kind != world.Factory {
		return precond("must be at a factory to produce")
	}
	recipe, ok := recipes[output]
	if !ok {
		return invalid("unknown recipe output")
	}

	unlock := p.lockAggregates([2]string{"player", pl.ID})
	defer unlock()

	for input, per := range recipe {
		if pl.Inventory[input] < per*qty {
			return precond(fmt.Sprintf("insufficient %s", input))
		}
	}
	for input, per := range recipe {
		pl.Inventory[input] -= per * qty
	}
	pl.Inventory[output] += qty
	if err := p.finishAction(ctx, pl, p.cache.CurrentTick()); err != nil {
		return err
	}
	p.log.Emit(ctx, p.cache.CurrentTick(), "goods_produced", pl.ID, "player", map[string]interface{}{"output": output, "qty": qty})
	return nil
}

// Ship creates an InTransit shipment along path carrying cargo, consuming
// inventory and requiring the matching license.
func (p *Processor) Ship(ctx context.Context, pl *world.Player, kind world.ShipmentKind, path []string, cargo map[string]int) (*world.Shipment, error) {
	if len(path) < 2 || path[0] != pl.CurrentZone {
		return nil, invalid("path must start at the player's current zone and have at least two zones")
	}
	switch kind {
	case world.Freight:
		if !pl.Licenses.Freight {
			return nil, precond("freight license required")
		}
	case world.Convoy:
		if !pl.Licenses.Convoy {
			return nil, precond("convoy license required")
		}
	default:
		if !pl.Licenses.Courier {
			return nil, precond("courier license required")
		}
	}

	total := 0
	for _, qty := range cargo {
		total += qty
	}
	if total > kind.Capacity() {
		return nil, invalid("cargo exceeds shipment capacity")
	}

	var firstRoute *world.Route
	for i := 0; i < len(path)-1; i++ {
		r := p.cache.RouteBetween(path[i], path[i+1])
		if r == nil {
			return nil, precond("path contains a non-adjacent hop")
		}
		if i == 0 {
			firstRoute = r
		}
	}

	unlock := p.lockAggregates([2]string{"player", pl.ID})
	defer unlock()

	for res, qty := range cargo {
		if pl.Inventory[res] < qty {
			return nil, precond(fmt.Sprintf("insufficient %s", res))
		}
	}
	for res, qty := range cargo {
		pl.Inventory[res] -= qty
	}

	s := &world.Shipment{
		ID: uuid.NewString(), OwnerPlayerID: pl.ID, Kind: kind, Path: path,
		PositionIndex: 0, TicksToNextZone: firstRoute.DistanceTicks, Cargo: cargo,
		Status: world.InTransit, CreatedAtTick: p.cache.CurrentTick(),
	}
	if err := p.store.Put(ctx, storage.TableShipments, s.ID, s); err != nil {
		return nil, err
	}
	p.cache.PutShipment(s)
	if err := p.finishAction(ctx, pl, p.cache.CurrentTick()); err != nil {
		return nil, err
	}
	p.log.Emit(ctx, p.cache.CurrentTick(), "shipment_created", pl.ID, "player", map[string]interface{}{"shipment_id": s.ID})
	return s, nil
}

// PlaceOrder enqueues a market order; matching itself is deferred to the
// next tick's matching stage.
func (p *Processor) PlaceOrder(ctx context.Context, pl *world.Player, side world.OrderSide, resource string, price float64, qty int) (*world.MarketOrder, error) {
	if qty <= 0 || price <= 0 {
		return nil, invalid("price and qty must be positive")
	}
	zone := p.cache.Zone(pl.CurrentZone)
	if zone == nil {
		return nil, precond("must be at a zone with a market")
	}

	unlock := p.lockAggregates([2]string{"player", pl.ID}, [2]string{"zone", zone.ID})
	defer unlock()

	if side == world.Sell {
		if pl.Inventory[resource] < qty {
			return nil, precond("insufficient inventory to sell")
		}
		pl.Inventory[resource] -= qty
	} else {
		cost := int(price * float64(qty))
		if pl.Inventory["credits"] < cost {
			return nil, precond("insufficient credits to escrow")
		}
		pl.Inventory["credits"] -= cost
	}

	o := &world.MarketOrder{
		ID: uuid.NewString(), OwnerPlayerID: pl.ID, Zone: zone.ID, Resource: resource,
		Side: side, LimitPrice: price, RemainingQty: qty, OriginalQty: qty,
		CreatedAtTick: p.cache.CurrentTick(),
	}
	if err := p.store.Put(ctx, storage.TableOrders, o.ID, o); err != nil {
		return nil, err
	}
	p.cache.PutOrder(o)
	if err := p.finishAction(ctx, pl, p.cache.CurrentTick()); err != nil {
		return nil, err
	}
	return o, nil
}

// Supply deposits rations/fuel/parts/ammo into an owned zone's SU
// stockpile, rewarding +2 reputation per SU.
func (p *Processor) Supply(ctx context.Context, pl *world.Player, amount int) error {
	if amount <= 0 {
		return invalid("amount must be positive")
	}
	zone := p.cache.Zone(pl.CurrentZone)
	if zone == nil {
		return precond("zone not found")
	}
	f := p.cache.Faction(pl.FactionID)
	if f == nil || zone.OwnerFactionID != f.ID {
		return precond("must be at a zone owned by the player's faction")
	}

	unlock := p.lockAggregates([2]string{"player", pl.ID}, [2]string{"zone", zone.ID})
	defer unlock()

	need := map[string]int{"rations": 2 * amount, "fuel": amount, "parts": amount, "ammo": amount}
	for res, qty := range need {
		if pl.Inventory[res] < qty {
			return precond(fmt.Sprintf("insufficient %s", res))
		}
	}
	for res, qty := range need {
		pl.Inventory[res] -= qty
	}
	zone.SUStockpile += amount
	pl.Reputation += 2 * amount

	if err := p.store.Put(ctx, storage.TableZones, zone.ID, zone); err != nil {
		return err
	}
	p.cache.PutZone(zone)
	season.RecordSupplyDelivered(p.cache, p.cache.SeasonNumber(), pl.ID, amount)
	season.RecordReputationGained(p.cache, p.cache.SeasonNumber(), pl.ID, 2*amount)
	return p.finishAction(ctx, pl, p.cache.CurrentTick())
}

// Capture claims a neutral or Collapsed non-Hub zone for the player's
// faction, resetting its supply state.
func (p *Processor) Capture(ctx context.Context, pl *world.Player) error {
	zone := p.cache.Zone(pl.CurrentZone)
	if zone == nil || zone.Kind == world.Hub {
		return precond("cannot capture a hub")
	}
	if zone.OwnerFactionID != "" && !zone.Collapsed {
		return precond("zone is already controlled")
	}
	if pl.FactionID == "" {
		return precond("must be in a faction to capture")
	}

	unlock := p.lockAggregates([2]string{"player", pl.ID}, [2]string{"zone", zone.ID})
	defer unlock()

	zone.OwnerFactionID = pl.FactionID
	zone.Collapsed = false
	zone.SupplyLevel = 100
	zone.ComplianceStreak = 0
	pl.Reputation += 25

	if err := p.store.Put(ctx, storage.TableZones, zone.ID, zone); err != nil {
		return err
	}
	p.cache.PutZone(zone)
	season.RecordReputationGained(p.cache, p.cache.SeasonNumber(), pl.ID, 25)
	p.log.Emit(ctx, p.cache.CurrentTick(), "zone_captured", pl.ID, "player", map[string]interface{}{"zone_id": zone.ID})
	return p.finishAction(ctx, pl, p.cache.CurrentTick())
}

// Scan captures an IntelReport snapshot of a target at full signal.
func (p *Processor) Scan(ctx context.Context, pl *world.Player, targetType world.IntelTargetType, targetID string) (*world.IntelReport, error) {
	unlock := p.lockWorld()
	defer unlock()

	var snapshot map[string]interface{}
	switch targetType {
	case world.TargetZone:
		z := p.cache.Zone(targetID)
		if z == nil {
			return nil, notFound("zone not found")
		}
		snapshot = map[string]interface{}{
			"kind": z.Kind, "owner_faction_id": z.OwnerFactionID, "supply_level": z.SupplyLevel,
			"su_stockpile": z.SUStockpile, "garrison": z.Garrison, "collapsed": z.Collapsed,
		}
	case world.TargetRoute:
		r := p.cache.Route(targetID)
		if r == nil {
			return nil, notFound("route not found")
		}
		snapshot = map[string]interface{}{"base_risk": r.BaseRisk, "chokepoint_rating": r.ChokepointRating, "capacity_per_tick": r.CapacityPerTick}
	default:
		return nil, invalid("unknown scan target type")
	}

	report := &world.IntelReport{
		ID: uuid.NewString(), GathererID: pl.ID, TargetType: targetType, TargetID: targetID,
		GatheredAtTick: p.cache.CurrentTick(), Snapshot: snapshot, SignalQuality: 100,
	}
	if pl.FactionID != "" {
		report.SharingFaction = pl.FactionID
	}
	if err := p.store.Put(ctx, storage.TableIntel, report.ID, report); err != nil {
		return nil, err
	}
	p.cache.PutIntel(report)
	return report, p.finishAction(ctx, pl, p.cache.CurrentTick())
}

// CreateFaction founds a new faction with the creator as Founder.
func (p *Processor) CreateFaction(ctx context.Context, pl *world.Player, name, tag string) (*world.Faction, error) {
	unlock := p.lockWorld()
	defer unlock()

	if pl.FactionID != "" {
		return nil, precond("already in a faction")
	}
	if p.cache.FactionNameOrTagTaken(name, tag) {
		return nil, invalid("name or tag already taken")
	}
	f := &world.Faction{
		ID: uuid.NewString(), Name: name, Tag: tag, FounderID: pl.ID,
		Treasury: map[string]int{}, OfficerDailyWithdraw: 1000,
		Relations: map[string]world.Relation{}, Members: []world.Membership{{PlayerID: pl.ID, Rank: world.FounderRank, JoinedAt: p.cache.CurrentTick()}},
	}
	if err := p.store.Put(ctx, storage.TableFactions, f.ID, f); err != nil {
		return nil, err
	}
	p.cache.PutFaction(f)

	pl.FactionID = f.ID
	if err := p.finishAction(ctx, pl, p.cache.CurrentTick()); err != nil {
		return nil, err
	}
	return f, nil
}

// JoinFaction adds pl as a Member of an existing faction.
func (p *Processor) JoinFaction(ctx context.Context, pl *world.Player, factionID string) error {
	unlock := p.lockWorld()
	defer unlock()

	if pl.FactionID != "" {
		return precond("already in a faction")
	}
	f := p.cache.Faction(factionID)
	if f == nil {
		return notFound("faction not found")
	}
	f.Members = append(f.Members, world.Membership{PlayerID: pl.ID, Rank: world.MemberRank, JoinedAt: p.cache.CurrentTick()})
	if err := p.store.Put(ctx, storage.TableFactions, f.ID, f); err != nil {
		return err
	}
	p.cache.PutFaction(f)
	pl.FactionID = f.ID
	return p.finishAction(ctx, pl, p.cache.CurrentTick())
}

// LeaveFaction removes pl from its faction; a Founder may not leave while
// other members remain (must Transfer first), but a sole Founder may.
func (p *Processor) LeaveFaction(ctx context.Context, pl *world.Player) error {
	unlock := p.lockWorld()
	defer unlock()

	f := p.cache.Faction(pl.FactionID)
	if f == nil {
		return precond("not in a faction")
	}
	if f.FounderID == pl.ID && len(f.Members) > 1 {
		return precond("founder must transfer leadership before leaving")
	}
	f.RemoveMember(pl.ID)
	if err := p.store.Put(ctx, storage.TableFactions, f.ID, f); err != nil {
		return err
	}
	p.cache.PutFaction(f)
	pl.FactionID = ""
	return p.finishAction(ctx, pl, p.cache.CurrentTick())
}

func (p *Processor) memberRank(f *world.Faction, playerID string) (world.Rank, error) {
	m := f.Membership(playerID)
	if m == nil {
		return "", precond("not a member")
	}
	return m.Rank, nil
}

// Promote raises targetID's rank, gated by actor's capability.
func (p *Processor) Promote(ctx context.Context, actor *world.Player, targetID string) error {
	unlock := p.lockWorld()
	defer unlock()

	f := p.cache.Faction(actor.FactionID)
	if f == nil {
		return precond("not in a faction")
	}
	actorRank, err := p.memberRank(f, actor.ID)
	if err != nil {
		return err
	}
	target := f.Membership(targetID)
	if target == nil {
		return notFound("target is not a member")
	}
	if target.Rank == world.MemberRank {
		if !faction.Allows(actorRank, faction.PromoteOfficer) {
			return apierr.New(apierr.Unauthorized, "FORBIDDEN", "not authorized to promote")
		}
		target.Rank = world.OfficerRank
	} else {
		return apierr.New(apierr.Unauthorized, "FORBIDDEN", "cannot promote further")
	}
	if err := p.store.Put(ctx, storage.TableFactions, f.ID, f); err != nil {
		return err
	}
	p.cache.PutFaction(f)
	return nil
}

// Demote lowers targetID's rank from Officer to Member.
func (p *Processor) Demote(ctx context.Context, actor *world.Player, targetID string) error {
	unlock := p.lockWorld()
	defer unlock()

	f := p.cache.Faction(actor.FactionID)
	if f == nil {
		return precond("not in a faction")
	}
	actorRank, err := p.memberRank(f, actor.ID)
	if err != nil {
		return err
	}
	if !faction.Allows(actorRank, faction.DemoteOfficer) {
		return apierr.New(apierr.Unauthorized, "FORBIDDEN", "not authorized to demote")
	}
	target := f.Membership(targetID)
	if target == nil || target.Rank != world.OfficerRank {
		return precond("target is not an officer")
	}
	target.Rank = world.MemberRank
	if err := p.store.Put(ctx, storage.TableFactions, f.ID, f); err != nil {
		return err
	}
	p.cache.PutFaction(f)
	return nil
}

// Kick removes targetID from the faction, gated by CanKick.
func (p *Processor) Kick(ctx context.Context, actor *world.Player, targetID string) error {
	unlock := p.lockWorld()
	defer unlock()

	f := p.cache.Faction(actor.FactionID)
	if f == nil {
		return precond("not in a faction")
	}
	actorRank, err := p.memberRank(f, actor.ID)
	if err != nil {
		return err
	}
	target := f.Membership(targetID)
	if target == nil {
		return notFound("target is not a member")
	}
	if !faction.CanKick(actorRank, target.Rank) {
		return apierr.New(apierr.Unauthorized, "FORBIDDEN", "not authorized to kick this member")
	}
	f.RemoveMember(targetID)
	if err := p.store.Put(ctx, storage.TableFactions, f.ID, f); err != nil {
		return err
	}
	p.cache.PutFaction(f)
	if tp := p.cache.Player(targetID); tp != nil {
		tp.FactionID = ""
		p.store.Put(ctx, storage.TablePlayers, tp.ID, tp)
		p.cache.PutPlayer(tp)
	}
	return nil
}

// Transfer atomically reassigns Founder to newFounderID.
func (p *Processor) Transfer(ctx context.Context, actor *world.Player, newFounderID string) error {
	unlock := p.lockWorld()
	defer unlock()

	f := p.cache.Faction(actor.FactionID)
	if f == nil || f.FounderID != actor.ID {
		return apierr.New(apierr.Unauthorized, "FORBIDDEN", "only the founder may transfer leadership")
	}
	if !faction.TransferLeadershipTo(f, newFounderID) {
		return precond("target is not a member")
	}
	return p.store.Put(ctx, storage.TableFactions, f.ID, f)
}

// TreasuryDeposit moves resources from the player's inventory into the
// faction treasury; any member may deposit.
func (p *Processor) TreasuryDeposit(ctx context.Context, pl *world.Player, resource string, qty int) error {
	unlock := p.lockWorld()
	defer unlock()

	if qty <= 0 {
		return invalid("qty must be positive")
	}
	f := p.cache.Faction(pl.FactionID)
	if f == nil {
		return precond("not in a faction")
	}
	if pl.Inventory[resource] < qty {
		return precond("insufficient inventory")
	}
	pl.Inventory[resource] -= qty
	if f.Treasury == nil {
		f.Treasury = map[string]int{}
	}
	f.Treasury[resource] += qty
	if err := p.store.Put(ctx, storage.TableFactions, f.ID, f); err != nil {
		return err
	}
	p.cache.PutFaction(f)
	return p.finishAction(ctx, pl, p.cache.CurrentTick())
}

// TreasuryWithdraw moves resources from the faction treasury to the
// player's inventory, respecting the rank-based withdraw limit. An
// Officer's limit caps each single call; withdrawals are not summed across
// a day, so repeated calls are each checked against the full limit.
func (p *Processor) TreasuryWithdraw(ctx context.Context, pl *world.Player, resource string, qty int) error {
	unlock := p.lockWorld()
	defer unlock()

	if qty <= 0 {
		return invalid("qty must be positive")
	}
	f := p.cache.Faction(pl.FactionID)
	if f == nil {
		return precond("not in a faction")
	}
	rank, err := p.memberRank(f, pl.ID)
	if err != nil {
		return err
	}
	limit := faction.WithdrawLimit(rank, f.OfficerDailyWithdraw)
	if limit == 0 {
		return apierr.New(apierr.Unauthorized, "FORBIDDEN", "members may not withdraw")
	}
	if limit > 0 && qty > limit {
		return precond("exceeds officer daily withdraw limit")
	}
	if f.Treasury[resource] < qty {
		return precond("insufficient treasury balance")
	}
	f.Treasury[resource] -= qty
	pl.Inventory[resource] += qty
	if err := p.store.Put(ctx, storage.TableFactions, f.ID, f); err != nil {
		return err
	}
	p.cache.PutFaction(f)
	return p.finishAction(ctx, pl, p.cache.CurrentTick())
}

// CreateContract escrows the reward and posts an Open contract.
func (p *Processor) CreateContract(ctx context.Context, pl *world.Player, ct *world.Contract) (*world.Contract, error) {
	unlock := p.lockWorld()
	defer unlock()

	if pl.Inventory["credits"] < ct.RewardCredits {
		return nil, precond("insufficient credits to escrow reward")
	}
	pl.Inventory["credits"] -= ct.RewardCredits
	ct.ID = uuid.NewString()
	ct.PosterID = pl.ID
	ct.Status = world.Open
	ct.CreatedAtTick = p.cache.CurrentTick()
	if err := p.store.Put(ctx, storage.TableContracts, ct.ID, ct); err != nil {
		return nil, err
	}
	p.cache.PutContract(ct)
	return ct, p.finishAction(ctx, pl, p.cache.CurrentTick())
}

// AcceptContract transitions an Open contract to Accepted.
func (p *Processor) AcceptContract(ctx context.Context, pl *world.Player, contractID string) error {
	unlock := p.lockWorld()
	defer unlock()

	ct := p.cache.Contract(contractID)
	if ct == nil {
		return notFound("contract not found")
	}
	if ct.Status != world.Open {
		return precond("contract is not open")
	}
	if ct.PosterID == pl.ID {
		return precond("poster may not accept their own contract")
	}
	ct.Status = world.Accepted
	ct.AcceptedByID = pl.ID
	if err := p.store.Put(ctx, storage.TableContracts, ct.ID, ct); err != nil {
		return err
	}
	p.cache.PutContract(ct)
	return p.finishAction(ctx, pl, p.cache.CurrentTick())
}

// CompleteContract releases escrow plus bonus once the acceptor meets the
// type-specific completion criterion (asserted by the caller via met).
func (p *Processor) CompleteContract(ctx context.Context, pl *world.Player, contractID string, met bool) error {
	unlock := p.lockWorld()
	defer unlock()

	ct := p.cache.Contract(contractID)
	if ct == nil {
		return notFound("contract not found")
	}
	if ct.Status != world.Accepted || ct.AcceptedByID != pl.ID {
		return precond("contract not accepted by this player")
	}
	if !met {
		return precond("completion criterion not met")
	}
	ct.Status = world.Completed
	pl.Inventory["credits"] += ct.RewardCredits + ct.EarlyBonus
	pl.Reputation += 10

	if err := p.store.Put(ctx, storage.TableContracts, ct.ID, ct); err != nil {
		return err
	}
	p.cache.PutContract(ct)
	season.RecordContractCompleted(p.cache, p.cache.SeasonNumber(), pl.ID)
	season.RecordReputationGained(p.cache, p.cache.SeasonNumber(), pl.ID, 10)
	return p.finishAction(ctx, pl, p.cache.CurrentTick())
}

// RegisterWebhook adds a new webhook subscription, Operator+ tier only.
func (p *Processor) RegisterWebhook(ctx context.Context, pl *world.Player, url, secret string, events []string) (*world.Webhook, error) {
	unlock := p.lockWorld()
	defer unlock()

	if pl.Tier == world.Freelance {
		return nil, apierr.New(apierr.Unauthorized, "FORBIDDEN", "operator tier or higher required")
	}
	filter := make(map[string]bool, len(events))
	for _, ev := range events {
		filter[ev] = true
	}
	w := &world.Webhook{ID: uuid.NewString(), OwnerPlayerID: pl.ID, URL: url, Secret: secret, EventFilter: filter, CreatedAtTick: p.cache.CurrentTick()}
	if err := p.store.Put(ctx, storage.TableWebhooks, w.ID, w); err != nil {
		return nil, err
	}
	p.cache.PutWebhook(w)
	return w, nil
}

// DeleteWebhook removes a webhook owned by pl.
func (p *Processor) DeleteWebhook(ctx context.Context, pl *world.Player, webhookID string) error {
	unlock := p.lockWorld()
	defer unlock()

	w := p.cache.Webhook(webhookID)
	if w == nil || w.OwnerPlayerID != pl.ID {
		return notFound("webhook not found")
	}
	p.cache.DeleteWebhook(webhookID)
	return p.store.Delete(ctx, storage.TableWebhooks, webhookID)
}

// BatchOp is one action within a Batch request.
type BatchOp struct {
	Kind string
	Run  func(ctx context.Context) error
}

// Batch applies up to 10 independently validated actions sequentially,
// short-circuiting on the first error.
func (p *Processor) Batch(ctx context.Context, ops []BatchOp) (int, error) {
	if len(ops) > 10 {
		return 0, invalid("batch accepts at most 10 actions")
	}
	for i, op := range ops {
		deadline, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := op.Run(deadline)
		cancel()
		if err != nil {
			return i, err
		}
	}
	return len(ops), nil
}

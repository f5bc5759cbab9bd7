package world

import "fmt"

// Shipment returns a cached shipment by id, or nil.
func (c *Cache) Shipment(id string) *Shipment {
	c.shipmentMu.RLock()
	defer c.shipmentMu.RUnlock()
	return c.shipments[id]
}

// PutShipment inserts or replaces a shipment.
func (c *Cache) PutShipment(s *Shipment) {
	c.shipmentMu.Lock()
	defer c.shipmentMu.Unlock()
	c.shipments[s.ID] = s
}

// AllShipments returns a snapshot of every shipment.
func (c *Cache) AllShipments() []*Shipment {
	c.shipmentMu.RLock()
	defer c.shipmentMu.RUnlock()
	out := make([]*Shipment, 0, len(c.shipments))
	for _, s := range c.shipments {
		out = append(out, s)
	}
	return out
}

// ShipmentsByOwner returns every shipment belonging to a player.
func (c *Cache) ShipmentsByOwner(playerID string) []*Shipment {
	c.shipmentMu.RLock()
	defer c.shipmentMu.RUnlock()
	var out []*Shipment
	for _, s := range c.shipments {
		if s.OwnerPlayerID == playerID {
			out = append(out, s)
		}
	}
	return out
}

// DeleteShipment removes a shipment (used by Season Reset).
func (c *Cache) DeleteShipment(id string) {
	c.shipmentMu.Lock()
	defer c.shipmentMu.Unlock()
	delete(c.shipments, id)
}

// Unit returns a cached unit by id, or nil.
func (c *Cache) Unit(id string) *Unit {
	c.unitMu.RLock()
	defer c.unitMu.RUnlock()
	return c.units[id]
}

// PutUnit inserts or replaces a unit.
func (c *Cache) PutUnit(u *Unit) {
	c.unitMu.Lock()
	defer c.unitMu.Unlock()
	c.units[u.ID] = u
}

// UnitsByOwner returns every unit owned by a player in no particular order;
// callers needing the oldest compare creation ticks (Unit.CreatedBefore).
func (c *Cache) UnitsByOwner(playerID string) []*Unit {
	c.unitMu.RLock()
	defer c.unitMu.RUnlock()
	var out []*Unit
	for _, u := range c.units {
		if u.OwnerPlayerID == playerID {
			out = append(out, u)
		}
	}
	return out
}

// DeleteUnit removes a unit.
func (c *Cache) DeleteUnit(id string) {
	c.unitMu.Lock()
	defer c.unitMu.Unlock()
	delete(c.units, id)
}

// AllUnits returns a snapshot of every unit.
func (c *Cache) AllUnits() []*Unit {
	c.unitMu.RLock()
	defer c.unitMu.RUnlock()
	out := make([]*Unit, 0, len(c.units))
	for _, u := range c.units {
		out = append(out, u)
	}
	return out
}

// Order returns a cached market order by id, or nil.
func (c *Cache) Order(id string) *MarketOrder {
	c.orderMu.RLock()
	defer c.orderMu.RUnlock()
	return c.orders[id]
}

// PutOrder inserts or replaces a market order.
func (c *Cache) PutOrder(o *MarketOrder) {
	c.orderMu.Lock()
	defer c.orderMu.Unlock()
	c.orders[o.ID] = o
}

// DeleteOrder removes a market order (fully filled or cancelled).
func (c *Cache) DeleteOrder(id string) {
	c.orderMu.Lock()
	defer c.orderMu.Unlock()
	delete(c.orders, id)
}

// OrdersByZoneResource returns every standing order for a (zone, resource) book.
func (c *Cache) OrdersByZoneResource(zone, resource string) []*MarketOrder {
	c.orderMu.RLock()
	defer c.orderMu.RUnlock()
	var out []*MarketOrder
	for _, o := range c.orders {
		if o.Zone == zone && o.Resource == resource {
			out = append(out, o)
		}
	}
	return out
}

// AllOrders returns a snapshot of every order, including conditional/TWAP.
func (c *Cache) AllOrders() []*MarketOrder {
	c.orderMu.RLock()
	defer c.orderMu.RUnlock()
	out := make([]*MarketOrder, 0, len(c.orders))
	for _, o := range c.orders {
		out = append(out, o)
	}
	return out
}

// Contract returns a cached contract by id, or nil.
func (c *Cache) Contract(id string) *Contract {
	c.contractMu.RLock()
	defer c.contractMu.RUnlock()
	return c.contracts[id]
}

// PutContract inserts or replaces a contract.
func (c *Cache) PutContract(ct *Contract) {
	c.contractMu.Lock()
	defer c.contractMu.Unlock()
	c.contracts[ct.ID] = ct
}

// AllContracts returns a snapshot of every contract.
func (c *Cache) AllContracts() []*Contract {
	c.contractMu.RLock()
	defer c.contractMu.RUnlock()
	out := make([]*Contract, 0, len(c.contracts))
	for _, ct := range c.contracts {
		out = append(out, ct)
	}
	return out
}

// DeleteContract removes a contract (Season Reset only).
func (c *Cache) DeleteContract(id string) {
	c.contractMu.Lock()
	defer c.contractMu.Unlock()
	delete(c.contracts, id)
}

// Intel returns a cached intel report by id, or nil.
func (c *Cache) Intel(id string) *IntelReport {
	c.intelMu.RLock()
	defer c.intelMu.RUnlock()
	return c.intel[id]
}

// PutIntel inserts or replaces an intel report.
func (c *Cache) PutIntel(r *IntelReport) {
	c.intelMu.Lock()
	defer c.intelMu.Unlock()
	c.intel[r.ID] = r
}

// AllIntel returns a snapshot of every intel report.
func (c *Cache) AllIntel() []*IntelReport {
	c.intelMu.RLock()
	defer c.intelMu.RUnlock()
	out := make([]*IntelReport, 0, len(c.intel))
	for _, r := range c.intel {
		out = append(out, r)
	}
	return out
}

// DeleteIntel hard-removes an intel report (decay sweep / season reset).
func (c *Cache) DeleteIntel(id string) {
	c.intelMu.Lock()
	defer c.intelMu.Unlock()
	delete(c.intel, id)
}

// PutEvent publishes an event into the in-memory recent-history view.
func (c *Cache) PutEvent(e *Event) {
	c.eventMu.Lock()
	defer c.eventMu.Unlock()
	c.events[e.ID] = e
}

// EventsSince returns every cached event at or after sinceTick, for the
// /events endpoint and webhook catch-up.
func (c *Cache) EventsSince(sinceTick int64) []*Event {
	c.eventMu.RLock()
	defer c.eventMu.RUnlock()
	var out []*Event
	for _, e := range c.events {
		if e.Tick >= sinceTick {
			out = append(out, e)
		}
	}
	return out
}

// Webhook returns a cached webhook by id, or nil.
func (c *Cache) Webhook(id string) *Webhook {
	c.webhookMu.RLock()
	defer c.webhookMu.RUnlock()
	return c.webhooks[id]
}

// PutWebhook inserts or replaces a webhook.
func (c *Cache) PutWebhook(w *Webhook) {
	c.webhookMu.Lock()
	defer c.webhookMu.Unlock()
	c.webhooks[w.ID] = w
}

// DeleteWebhook removes a webhook registration.
func (c *Cache) DeleteWebhook(id string) {
	c.webhookMu.Lock()
	defer c.webhookMu.Unlock()
	delete(c.webhooks, id)
}

// AllWebhooks returns a snapshot of every webhook registration.
func (c *Cache) AllWebhooks() []*Webhook {
	c.webhookMu.RLock()
	defer c.webhookMu.RUnlock()
	out := make([]*Webhook, 0, len(c.webhooks))
	for _, w := range c.webhooks {
		out = append(out, w)
	}
	return out
}

// Doctrine returns a cached doctrine by id, or nil.
func (c *Cache) Doctrine(id string) *Doctrine {
	c.doctrineMu.RLock()
	defer c.doctrineMu.RUnlock()
	return c.doctrines[id]
}

// PutDoctrine inserts or replaces a doctrine.
func (c *Cache) PutDoctrine(d *Doctrine) {
	c.doctrineMu.Lock()
	defer c.doctrineMu.Unlock()
	c.doctrines[d.ID] = d
}

// DoctrinesByFaction returns every doctrine belonging to a faction.
func (c *Cache) DoctrinesByFaction(factionID string) []*Doctrine {
	c.doctrineMu.RLock()
	defer c.doctrineMu.RUnlock()
	var out []*Doctrine
	for _, d := range c.doctrines {
		if d.FactionID == factionID {
			out = append(out, d)
		}
	}
	return out
}

// DeleteDoctrine removes a doctrine.
func (c *Cache) DeleteDoctrine(id string) {
	c.doctrineMu.Lock()
	defer c.doctrineMu.Unlock()
	delete(c.doctrines, id)
}

// scoreKey builds the (season, entity) composite key for the score table.
func scoreKey(season int, entityID string) string {
	return fmt.Sprintf("%d:%s", season, entityID)
}

// Score returns an entity's score row for a season, creating a zeroed one
// if absent (scores accumulate from zero the first time an entity earns
// any category this season).
func (c *Cache) Score(season int, entityID string) *SeasonScore {
	key := scoreKey(season, entityID)
	c.seasonMu.Lock()
	defer c.seasonMu.Unlock()
	s, ok := c.scores[key]
	if !ok {
		s = &SeasonScore{Season: season, EntityID: entityID}
		c.scores[key] = s
	}
	return s
}

// ScoresForSeason returns every score row for a season, for leaderboards.
func (c *Cache) ScoresForSeason(season int) []*SeasonScore {
	c.seasonMu.RLock()
	defer c.seasonMu.RUnlock()
	var out []*SeasonScore
	for k, s := range c.scores {
		if s.Season == season {
			out = append(out, s)
		}
		_ = k
	}
	return out
}

// ArchiveAndResetScores moves every current-season score aside (callers
// have already persisted them under the outgoing season number in
// storage) and clears the live table so the new season starts at zero.
func (c *Cache) ArchiveAndResetScores() {
	c.seasonMu.Lock()
	defer c.seasonMu.Unlock()
	c.scores = make(map[string]*SeasonScore)
}

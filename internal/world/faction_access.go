package world

import "strings"

// Faction returns a cached faction by id, or nil.
func (c *Cache) Faction(id string) *Faction {
	c.factionMu.RLock()
	defer c.factionMu.RUnlock()
	return c.factions[id]
}

// FactionNameOrTagTaken reports whether name or tag collides with an existing faction.
func (c *Cache) FactionNameOrTagTaken(name, tag string) bool {
	c.factionMu.RLock()
	defer c.factionMu.RUnlock()
	ln, lt := strings.ToLower(name), strings.ToLower(tag)
	for _, f := range c.factions {
		if strings.ToLower(f.Name) == ln || strings.ToLower(f.Tag) == lt {
			return true
		}
	}
	return false
}

// PutFaction inserts or replaces a faction.
func (c *Cache) PutFaction(f *Faction) {
	c.factionMu.Lock()
	defer c.factionMu.Unlock()
	c.factions[f.ID] = f
	c.byTag[strings.ToLower(f.Tag)] = f.ID
}

// AllFactions returns a snapshot slice of every faction.
func (c *Cache) AllFactions() []*Faction {
	c.factionMu.RLock()
	defer c.factionMu.RUnlock()
	out := make([]*Faction, 0, len(c.factions))
	for _, f := range c.factions {
		out = append(out, f)
	}
	return out
}

// Membership looks up a player's membership row in a faction, if any.
func (f *Faction) Membership(playerID string) *Membership {
	for i := range f.Members {
		if f.Members[i].PlayerID == playerID {
			return &f.Members[i]
		}
	}
	return nil
}

// RemoveMember deletes a player's membership row.
func (f *Faction) RemoveMember(playerID string) {
	out := f.Members[:0]
	for _, m := range f.Members {
		if m.PlayerID != playerID {
			out = append(out, m)
		}
	}
	f.Members = out
}

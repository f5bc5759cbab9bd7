package world

// Zone returns a copy-free pointer to the cached zone, or nil.
func (c *Cache) Zone(id string) *Zone {
	c.zoneMu.RLock()
	defer c.zoneMu.RUnlock()
	return c.zones[id]
}

// PutZone inserts or replaces a zone (write-through callers persist first).
func (c *Cache) PutZone(z *Zone) {
	c.zoneMu.Lock()
	defer c.zoneMu.Unlock()
	c.zones[z.ID] = z
}

// AllZones returns a snapshot slice of every zone.
func (c *Cache) AllZones() []*Zone {
	c.zoneMu.RLock()
	defer c.zoneMu.RUnlock()
	out := make([]*Zone, 0, len(c.zones))
	for _, z := range c.zones {
		out = append(out, z)
	}
	return out
}

// Route returns a cached route, or nil.
func (c *Cache) Route(id string) *Route {
	c.routeMu.RLock()
	defer c.routeMu.RUnlock()
	return c.routes[id]
}

// PutRoute inserts or replaces a route.
func (c *Cache) PutRoute(r *Route) {
	c.routeMu.Lock()
	defer c.routeMu.Unlock()
	c.routes[r.ID] = r
}

// AllRoutes returns a snapshot slice of every route.
func (c *Cache) AllRoutes() []*Route {
	c.routeMu.RLock()
	defer c.routeMu.RUnlock()
	out := make([]*Route, 0, len(c.routes))
	for _, r := range c.routes {
		out = append(out, r)
	}
	return out
}

// RouteBetween finds the direct route connecting from -> to, if any.
func (c *Cache) RouteBetween(from, to string) *Route {
	c.routeMu.RLock()
	defer c.routeMu.RUnlock()
	for _, r := range c.routes {
		if r.FromZone == from && r.ToZone == to {
			return r
		}
	}
	return nil
}

// RoutesFrom returns every route originating at zone id.
func (c *Cache) RoutesFrom(zoneID string) []*Route {
	c.routeMu.RLock()
	defer c.routeMu.RUnlock()
	var out []*Route
	for _, r := range c.routes {
		if r.FromZone == zoneID {
			out = append(out, r)
		}
	}
	return out
}

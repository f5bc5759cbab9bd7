package world

import "sync"

// Cache is the in-memory write-through view of the simulation. Each entity
// kind lives in its own id-keyed map guarded by its own RWMutex — grounded
// on the teacher's `peers map[string]*Peer` / `peerLock sync.RWMutex`
// pattern, generalized across every entity kind instead of one global
// table. The locks guard only the map access: every lookup takes the lock,
// returns the stored pointer, and releases; callers then mutate that
// pointer and write it back with the matching Put method.
type Cache struct {
	zoneMu sync.RWMutex
	zones  map[string]*Zone

	routeMu sync.RWMutex
	routes  map[string]*Route

	playerMu sync.RWMutex
	players  map[string]*Player
	byAPIKey map[string]string // api key -> player id
	byName   map[string]string // lowercase name -> player id

	factionMu sync.RWMutex
	factions  map[string]*Faction
	byTag     map[string]string

	shipmentMu sync.RWMutex
	shipments  map[string]*Shipment

	unitMu sync.RWMutex
	units  map[string]*Unit

	orderMu sync.RWMutex
	orders  map[string]*MarketOrder

	contractMu sync.RWMutex
	contracts  map[string]*Contract

	intelMu sync.RWMutex
	intel   map[string]*IntelReport

	eventMu sync.RWMutex
	events  map[string]*Event

	webhookMu sync.RWMutex
	webhooks  map[string]*Webhook

	doctrineMu sync.RWMutex
	doctrines  map[string]*Doctrine

	seasonMu sync.RWMutex
	scores   map[string]*SeasonScore // key: fmt.Sprintf("%d:%s", season, entityID)

	clockMu      sync.RWMutex
	currentTick  int64
	seasonNumber int
	seasonStart  int64
}

// NewCache returns an empty world cache.
func NewCache() *Cache {
	return &Cache{
		zones:     make(map[string]*Zone),
		routes:    make(map[string]*Route),
		players:   make(map[string]*Player),
		byAPIKey:  make(map[string]string),
		byName:    make(map[string]string),
		factions:  make(map[string]*Faction),
		byTag:     make(map[string]string),
		shipments: make(map[string]*Shipment),
		units:     make(map[string]*Unit),
		orders:    make(map[string]*MarketOrder),
		contracts: make(map[string]*Contract),
		intel:     make(map[string]*IntelReport),
		events:    make(map[string]*Event),
		webhooks:  make(map[string]*Webhook),
		doctrines: make(map[string]*Doctrine),
		scores:    make(map[string]*SeasonScore),
	}
}

// CurrentTick returns the last committed tick number.
func (c *Cache) CurrentTick() int64 {
	c.clockMu.RLock()
	defer c.clockMu.RUnlock()
	return c.currentTick
}

// SetCurrentTick records the committed tick number (Tick Engine commit stage only).
func (c *Cache) SetCurrentTick(t int64) {
	c.clockMu.Lock()
	defer c.clockMu.Unlock()
	c.currentTick = t
}

// SeasonNumber returns the active season ordinal.
func (c *Cache) SeasonNumber() int {
	c.clockMu.RLock()
	defer c.clockMu.RUnlock()
	return c.seasonNumber
}

// SeasonStart returns the tick the active season began.
func (c *Cache) SeasonStart() int64 {
	c.clockMu.RLock()
	defer c.clockMu.RUnlock()
	return c.seasonStart
}

// SetSeason updates the season clock (used by Season Reset).
func (c *Cache) SetSeason(number int, startTick int64) {
	c.clockMu.Lock()
	defer c.clockMu.Unlock()
	c.seasonNumber = number
	c.seasonStart = startTick
}

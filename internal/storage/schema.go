package storage

// Table name constants shared by every package that reads/writes storage
// directly (world hydration at boot, Tick Engine commit stage, Action
// Processor mutations).
const (
	TableZones     = "zones"
	TableRoutes    = "routes"
	TablePlayers   = "players"
	TableFactions  = "factions"
	TableShipments = "shipments"
	TableUnits     = "units"
	TableOrders    = "market_orders"
	TableContracts = "contracts"
	TableIntel     = "intel_reports"
	TableEvents    = "events"
	TableWebhooks  = "webhooks"
	TableDoctrines = "doctrines"
	TableScores    = "season_scores"
	TableMeta      = "world_meta"
)

// createSchema lays down every table as an id-keyed JSON blob row plus a
// row_version counter, per the storage contract: the layer understands no
// game rules and stores JSON-shaped aggregates as opaque blobs. Indexes
// mirror the ones called out for events/intel/players/season_scores.
func (s *Store) createSchema() error {
	blobTables := []string{
		TableZones, TableRoutes, TablePlayers, TableFactions, TableShipments,
		TableUnits, TableOrders, TableContracts, TableIntel, TableEvents,
		TableWebhooks, TableDoctrines, TableScores,
	}
	for _, t := range blobTables {
		q := `CREATE TABLE IF NOT EXISTS ` + t + ` (
			id TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			row_version INTEGER NOT NULL DEFAULT 1
		);`
		if _, err := s.db.Exec(q); err != nil {
			return &Error{Kind: Transient, Table: t, Err: err}
		}
	}

	extra := `
	CREATE TABLE IF NOT EXISTS ` + TableMeta + ` (
		key TEXT PRIMARY KEY, value TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_events_tick ON ` + TableEvents + `(json_extract(data, '$.Tick'));
	CREATE INDEX IF NOT EXISTS idx_events_type ON ` + TableEvents + `(json_extract(data, '$.Type'));
	CREATE INDEX IF NOT EXISTS idx_events_actor ON ` + TableEvents + `(json_extract(data, '$.ActorID'));
	CREATE INDEX IF NOT EXISTS idx_intel_faction ON ` + TableIntel + `(json_extract(data, '$.SharingFaction'));
	CREATE INDEX IF NOT EXISTS idx_players_apikey ON ` + TablePlayers + `(json_extract(data, '$.APIKey'));
	CREATE INDEX IF NOT EXISTS idx_scores_season_total ON ` + TableScores + `(json_extract(data, '$.Season'));
	`
	if _, err := s.db.Exec(extra); err != nil {
		return &Error{Kind: Transient, Table: "schema", Err: err}
	}
	return nil
}

// MetaGet reads a single key from world_meta, e.g. last_tick_at.
func (s *Store) MetaGet(key string) (string, bool, error) {
	var v string
	err := s.db.QueryRow("SELECT value FROM "+TableMeta+" WHERE key = ?", key).Scan(&v)
	if err != nil {
		return "", false, nil
	}
	return v, true, nil
}

// MetaSet upserts a single key in world_meta.
func (s *Store) MetaSet(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO `+TableMeta+` (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return &Error{Kind: Transient, Table: TableMeta, Err: err}
	}
	return nil
}

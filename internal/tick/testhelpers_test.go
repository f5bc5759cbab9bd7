package tick

import (
	"context"
	"log"
	"testing"

	"burnrate/internal/events"
	"burnrate/internal/storage"
	"burnrate/internal/world"
)

// testEnv bundles an in-memory engine for stage-level tests, grounded on
// the same :memory: sqlite setup used across the other package test suites.
type testEnv struct {
	ctx    context.Context
	store  *storage.Store
	cache  *world.Cache
	engine *Engine
	db     interface{ Close() error }
}

func newTestEngine(t *testing.T) *testEnv {
	t.Helper()
	db, err := storage.OpenSQLite(":memory:", "sqlite3")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	store, err := storage.Open(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	cache := world.NewCache()
	queue := events.NewQueue()
	evLog := events.New(store, cache, queue)
	nullLog := log.New(nullWriter{}, "", 0)
	engine := New(store, cache, queue, evLog, nil, 0, 0, nullLog, nullLog)

	return &testEnv{ctx: context.Background(), store: store, cache: cache, engine: engine, db: db}
}

func (e *testEnv) close() { e.db.Close() }

type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }

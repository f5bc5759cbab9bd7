package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"burnrate/internal/action"
	"burnrate/internal/config"
	"burnrate/internal/events"
	"burnrate/internal/storage"
	"burnrate/internal/tick"
	"burnrate/internal/world"
)

// executeRequest mirrors the teacher's httptest helper: marshal payload,
// build a request, record the handler's response.
func executeRequest(handler http.Handler, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body []byte
	if payload != nil {
		body, _ = json.Marshal(payload)
	}
	req, _ := http.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func setupTestServer(t *testing.T) (*Server, *world.Cache) {
	t.Helper()
	db, err := storage.OpenSQLite(":memory:", "sqlite3")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	store, err := storage.Open(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	cache := world.NewCache()
	queue := events.NewQueue()
	evLog := events.New(store, cache, queue)
	nullLog := log.New(io.Discard, "", 0)
	engine := tick.New(store, cache, queue, evLog, nil, time.Minute, 4*7*24*time.Hour, nullLog, nullLog)
	proc := action.New(store, cache, evLog, engine)
	cfg := config.Config{CORSOrigins: []string{"*"}, AdminKey: "secret"}
	return New(proc, engine, cache, cfg), cache
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := setupTestServer(t)
	rr := executeRequest(s.Handler(), http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestJoinThenAuthenticatedMe(t *testing.T) {
	s, cache := setupTestServer(t)
	cache.PutZone(&world.Zone{ID: "hub1", Kind: world.Hub})

	rr := executeRequest(s.Handler(), http.MethodPost, "/join", map[string]string{"Name": "Alice"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 on join, got %d: %s", rr.Code, rr.Body.String())
	}
	var joined world.Player
	if err := json.Unmarshal(rr.Body.Bytes(), &joined); err != nil {
		t.Fatalf("decode join response: %v", err)
	}
	if joined.APIKey == "" {
		t.Fatalf("expected an API key to be issued")
	}

	req, _ := http.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-API-Key", joined.APIKey)
	meRR := httptest.NewRecorder()
	s.Handler().ServeHTTP(meRR, req)
	if meRR.Code != http.StatusOK {
		t.Fatalf("expected 200 on /me with valid key, got %d: %s", meRR.Code, meRR.Body.String())
	}
}

func TestMeRejectsUnknownAPIKey(t *testing.T) {
	s, _ := setupTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-API-Key", "not-a-real-key")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown API key, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestAdminTickRequiresAdminKey(t *testing.T) {
	s, _ := setupTestServer(t)
	rr := executeRequest(s.Handler(), http.MethodPost, "/admin/tick", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without admin key, got %d: %s", rr.Code, rr.Body.String())
	}

	req, _ := http.NewRequest(http.MethodPost, "/admin/tick", nil)
	req.Header.Set("X-Admin-Key", "secret")
	rr2 := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr2, req)
	if rr2.Code == http.StatusUnauthorized {
		t.Fatalf("expected admin key to pass the auth gate")
	}
}

package storage

import (
	"context"
	"testing"
)

type fixture struct {
	ID    string
	Name  string
	Count int
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenSQLite(":memory:", "sqlite3")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	s, err := Open(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := fixture{ID: "z-1", Name: "Hub Prime", Count: 3}
	if err := s.Put(ctx, TableZones, in.ID, in); err != nil {
		t.Fatalf("put: %v", err)
	}

	var out fixture
	if err := s.Get(ctx, TableZones, in.ID, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	s := openTestStore(t)
	var out fixture
	err := s.Get(context.Background(), TableZones, "missing", &out)
	if !IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestBatchWriteAtomic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, err := UpsertStmt(TablePlayers, "p-1", fixture{ID: "p-1", Name: "A", Count: 1})
	if err != nil {
		t.Fatalf("build stmt: %v", err)
	}
	b, err := UpsertStmt(TablePlayers, "p-2", fixture{ID: "p-2", Name: "B", Count: 2})
	if err != nil {
		t.Fatalf("build stmt: %v", err)
	}
	if err := s.BatchWrite(ctx, []Stmt{a, b}); err != nil {
		t.Fatalf("batch write: %v", err)
	}

	var out fixture
	if err := s.Get(ctx, TablePlayers, "p-1", &out); err != nil || out.Name != "A" {
		t.Fatalf("expected p-1 persisted, got %+v err=%v", out, err)
	}
	if err := s.Get(ctx, TablePlayers, "p-2", &out); err != nil || out.Name != "B" {
		t.Fatalf("expected p-2 persisted, got %+v err=%v", out, err)
	}
}

func TestDeleteStmtInBatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, TableUnits, "u-1", fixture{ID: "u-1"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.BatchWrite(ctx, []Stmt{DeleteStmt(TableUnits, "u-1")}); err != nil {
		t.Fatalf("batch delete: %v", err)
	}
	var out fixture
	err := s.Get(ctx, TableUnits, "u-1", &out)
	if !IsNotFound(err) {
		t.Fatalf("expected unit gone after batch delete, got %v", err)
	}
}

func TestAllIteratesEveryRow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f := fixture{ID: string(rune('a' + i)), Count: i}
		if err := s.Put(ctx, TableContracts, f.ID, f); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	seen := 0
	err := s.All(ctx, TableContracts, func(blob []byte) error {
		seen++
		return nil
	})
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if seen != 3 {
		t.Fatalf("expected 3 rows, saw %d", seen)
	}
}

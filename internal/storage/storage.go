// Package storage provides durable persistence for every entity kind the
// simulation owns. It understands no game rules: it enforces only
// referential and uniqueness constraints and serializes JSON-shaped
// aggregates as opaque blobs, mirroring the hand-written-SQL, no-ORM style
// this codebase has always used for its schema.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies a storage failure so the caller can decide how to recover.
type Kind string

const (
	NotFound            Kind = "NOT_FOUND"
	UniqueConflict      Kind = "UNIQUE_CONFLICT"
	TransactionConflict Kind = "TRANSACTION_CONFLICT"
	Transient           Kind = "TRANSIENT"
)

// Error wraps a storage-layer failure with its kind.
type Error struct {
	Kind  Kind
	Table string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage[%s] %s: %v", e.Kind, e.Table, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a storage NotFound error.
func IsNotFound(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == NotFound
	}
	return false
}

// Stmt is one statement of an atomic batch write.
type Stmt struct {
	Query string
	Args  []interface{}
}

// Store is the durable persistence contract. Every row-level table
// (zones, routes, players, factions, shipments, units, orders, contracts,
// intel, events, webhooks, doctrines, season_scores) is addressed by kind
// name + id; the payload is an opaque JSON blob plus whatever columns the
// schema extracts for uniqueness/indexing.
type Store struct {
	db *sql.DB
}

// Open wires a *sql.DB (already opened with the configured driver) into a
// Store and ensures the schema exists.
func Open(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// DB exposes the underlying handle for drivers/migrations that need it.
func (s *Store) DB() *sql.DB { return s.db }

// Get fetches a single row's JSON blob by table+id and unmarshals it into out.
func (s *Store) Get(ctx context.Context, table, id string, out interface{}) error {
	var blob []byte
	q := fmt.Sprintf("SELECT data FROM %s WHERE id = ?", table)
	err := s.db.QueryRowContext(ctx, q, id).Scan(&blob)
	if err == sql.ErrNoRows {
		return &Error{Kind: NotFound, Table: table, Err: err}
	}
	if err != nil {
		return &Error{Kind: Transient, Table: table, Err: err}
	}
	if err := json.Unmarshal(blob, out); err != nil {
		return &Error{Kind: Transient, Table: table, Err: err}
	}
	return nil
}

// Put upserts a single row's JSON blob, bumping row_version.
func (s *Store) Put(ctx context.Context, table, id string, value interface{}) error {
	blob, err := json.Marshal(value)
	if err != nil {
		return &Error{Kind: Transient, Table: table, Err: err}
	}
	q := fmt.Sprintf(`INSERT INTO %s (id, data, row_version) VALUES (?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, row_version = %s.row_version + 1`, table, table)
	if _, err := s.db.ExecContext(ctx, q, id, blob); err != nil {
		return classifyWriteErr(table, err)
	}
	return nil
}

// Delete removes a single row by id.
func (s *Store) Delete(ctx context.Context, table, id string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE id = ?", table)
	if _, err := s.db.ExecContext(ctx, q, id); err != nil {
		return &Error{Kind: Transient, Table: table, Err: err}
	}
	return nil
}

// All scans every row's JSON blob from a table; fn is called once per row.
func (s *Store) All(ctx context.Context, table string, fn func(blob []byte) error) error {
	q := fmt.Sprintf("SELECT data FROM %s", table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return &Error{Kind: Transient, Table: table, Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return &Error{Kind: Transient, Table: table, Err: err}
		}
		if err := fn(blob); err != nil {
			return err
		}
	}
	return rows.Err()
}

// BatchWrite executes every statement inside one transaction: all succeed
// or all fail, matching the storage contract's atomic batch-write
// primitive. Grounded on the teacher's db.Begin()/tx.Prepare()/loop-Exec()/
// tx.Commit() idiom.
func (s *Store) BatchWrite(ctx context.Context, stmts []Stmt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &Error{Kind: Transient, Table: "batch", Err: err}
	}
	for _, st := range stmts {
		if _, err := tx.ExecContext(ctx, st.Query, st.Args...); err != nil {
			tx.Rollback()
			return classifyWriteErr("batch", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return &Error{Kind: Transient, Table: "batch", Err: err}
	}
	return nil
}

// UpsertStmt builds a Stmt for BatchWrite that upserts a JSON blob row,
// letting callers batch several entity writes (e.g. a trade touching two
// players and a zone's book) into one atomic transaction.
func UpsertStmt(table, id string, value interface{}) (Stmt, error) {
	blob, err := json.Marshal(value)
	if err != nil {
		return Stmt{}, err
	}
	q := fmt.Sprintf(`INSERT INTO %s (id, data, row_version) VALUES (?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, row_version = %s.row_version + 1`, table, table)
	return Stmt{Query: q, Args: []interface{}{id, blob}}, nil
}

// DeleteStmt builds a Stmt for BatchWrite that deletes a row.
func DeleteStmt(table, id string) Stmt {
	return Stmt{Query: fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), Args: []interface{}{id}}
}

func classifyWriteErr(table string, err error) error {
	msg := err.Error()
	if containsAny(msg, "UNIQUE constraint", "constraint failed: UNIQUE") {
		return &Error{Kind: UniqueConflict, Table: table, Err: err}
	}
	if containsAny(msg, "database is locked", "busy") {
		return &Error{Kind: Transient, Table: table, Err: err}
	}
	return &Error{Kind: Transient, Table: table, Err: err}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if len(s) >= len(sub) && indexOf(s, sub) >= 0 {
			return true
		}
	}
	return false
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

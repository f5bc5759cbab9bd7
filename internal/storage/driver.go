package storage

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // cgo driver, default
	_ "modernc.org/sqlite"          // pure-Go driver, selected via config
)

// OpenSQLite opens dsn with the requested driver in WAL mode with a busy
// timeout, mirroring the teacher's initDB DSN conventions
// (`?_journal_mode=WAL&_busy_timeout=5000`). driver is either "sqlite3"
// (cgo, default) or "modernc" (pure Go, for CGO_ENABLED=0 builds).
func OpenSQLite(dsn, driver string) (*sql.DB, error) {
	if dir := filepath.Dir(dsnPath(dsn)); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	driverName := "sqlite3"
	if driver == "modernc" {
		driverName = "sqlite"
	}
	full := dsn + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open(driverName, full)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, err
	}
	// A single connection avoids SQLITE_BUSY under the tick engine's
	// exclusive-write stance; it serves reads and writes alike.
	db.SetMaxOpenConns(1)
	return db, nil
}

func dsnPath(dsn string) string {
	if dsn == ":memory:" {
		return "."
	}
	return dsn
}

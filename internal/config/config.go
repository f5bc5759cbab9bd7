// Package config loads server settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the server needs to boot, read once at startup.
type Config struct {
	DBDSN           string
	DBDriver        string // "sqlite3" (cgo, default) or "modernc"
	TickInterval    time.Duration
	AdminKey        string
	CORSOrigins     []string
	ListenAddr      string
	SeasonLength    time.Duration
	RequestTimeout  time.Duration
	WebhookTimeout  time.Duration
}

const (
	defaultDSN            = "./data/burnrate.db"
	defaultDriver         = "sqlite3"
	defaultTickIntervalMS = 600000
	defaultListenAddr     = ":8080"
	defaultRequestTimeout = 5 * time.Second
	defaultWebhookTimeout = 10 * time.Second
	defaultSeasonWeeks    = 4
)

// Load reads BURNRATE_* environment variables, falling back to documented
// defaults. It never panics; malformed numeric values fall back silently to
// their default rather than aborting boot.
func Load() Config {
	cfg := Config{
		DBDSN:          getString("BURNRATE_DB_DSN", defaultDSN),
		DBDriver:       getString("BURNRATE_DB_DRIVER", defaultDriver),
		TickInterval:   time.Duration(getInt("BURNRATE_TICK_INTERVAL_MS", defaultTickIntervalMS)) * time.Millisecond,
		AdminKey:       getString("BURNRATE_ADMIN_KEY", ""),
		CORSOrigins:    getList("BURNRATE_CORS_ORIGINS", []string{"*"}),
		ListenAddr:     getString("BURNRATE_LISTEN_ADDR", defaultListenAddr),
		RequestTimeout: defaultRequestTimeout,
		WebhookTimeout: defaultWebhookTimeout,
		SeasonLength:   time.Duration(getInt("BURNRATE_SEASON_WEEKS", defaultSeasonWeeks)) * 7 * 24 * time.Hour,
	}
	return cfg
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

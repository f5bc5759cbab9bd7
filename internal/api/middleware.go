// Package api exposes BURNRATE over plain net/http.HandlerFunc values on a
// ServeMux, grounded directly on the teacher's main.go mux wiring and its
// middlewareSecurity/middlewareCORS chain (generalized from a federation
// peer check to per-player API-key auth plus a global per-IP rate floor).
package api

import (
	"context"
	"net"
	"net/http"
	"strings"

	"burnrate/internal/action"
	"burnrate/internal/apierr"
	"burnrate/internal/world"
)

type ctxKey string

const playerCtxKey ctxKey = "player"

// withRateFloor rejects requests once a client IP exceeds the global
// per-IP floor, mirroring the teacher's getLimiter/ipLimiters idiom.
func withRateFloor(proc *action.Processor, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if ip != "" && ip != "127.0.0.1" && ip != "::1" {
			if !proc.IPLimiter(ip).Allow() {
				writeError(w, apierr.New(apierr.RateLimited, "RATE_LIMITED", "too many requests from this address"))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// withCORS applies the configured allow-list (or "*" when empty), mirroring
// the teacher's middlewareCORS.
func withCORS(origins []string, next http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth resolves the X-API-Key header to a player and stashes it on
// the request context; handlers fetch it with playerFromContext.
func requireAuth(proc *action.Processor, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		pl, err := proc.Authenticate(key)
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), playerCtxKey, pl)
		next(w, r.WithContext(ctx))
	}
}

func playerFromContext(r *http.Request) *world.Player {
	pl, _ := r.Context().Value(playerCtxKey).(*world.Player)
	return pl
}

// requireAdmin gates admin-only endpoints behind the configured admin key.
func requireAdmin(adminKey string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if adminKey == "" || r.Header.Get("X-Admin-Key") != adminKey {
			writeError(w, apierr.New(apierr.Unauthorized, "FORBIDDEN", "admin key required"))
			return
		}
		next(w, r)
	}
}

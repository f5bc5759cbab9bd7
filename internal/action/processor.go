// Package action implements the Action Processor: the authenticate /
// rate-limit / quota / validate / mutate / emit / respond pipeline every
// mutating request flows through. Grounded on the teacher's single global
// stateLock generalized to per-aggregate lock striping, and its
// ipLimiters/getLimiter rate-limiting idiom generalized to per-player
// limiters plus a global per-IP floor.
//
// The per-player rate and daily quota checks live in checkRateAndQuota; no
// action method calls it, so neither the per-player action interval nor the
// tier's daily quota is enforced. Only the per-IP floor in the API
// middleware limits request rate.
package action

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"burnrate/internal/apierr"
	"burnrate/internal/events"
	"burnrate/internal/storage"
	"burnrate/internal/tick"
	"burnrate/internal/world"
)

// Processor is the shared entry point for every mutating action. It owns
// per-aggregate locks, per-player/per-IP rate limiters, and the storage +
// cache + event handles needed to validate and apply actions.
type Processor struct {
	store *storage.Store
	cache *world.Cache
	log   *events.Log
	tick  *tick.Engine

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	playerLimitersMu sync.Mutex
	playerLimiters   map[string]*rate.Limiter

	ipLimitersMu sync.Mutex
	ipLimiters   map[string]*rate.Limiter
}

// New builds a Processor.
func New(store *storage.Store, cache *world.Cache, log *events.Log, engine *tick.Engine) *Processor {
	return &Processor{
		store: store, cache: cache, log: log, tick: engine,
		locks:          make(map[string]*sync.Mutex),
		playerLimiters: make(map[string]*rate.Limiter),
		ipLimiters:     make(map[string]*rate.Limiter),
	}
}

// aggregateLock returns (creating if needed) the striped lock for a
// (kind, id) aggregate key, e.g. ("zone", "z-1") or ("player", "p-7").
func (p *Processor) aggregateLock(kind, id string) *sync.Mutex {
	key := kind + ":" + id
	p.locksMu.Lock()
	defer p.locksMu.Unlock()
	l, ok := p.locks[key]
	if !ok {
		l = &sync.Mutex{}
		p.locks[key] = l
	}
	return l
}

// lockAggregates acquires the locks for the given (kind, id) pairs in
// ascending key order, returning an unlock function. Ascending order
// across every call site prevents lock-order deadlocks on cross-aggregate
// actions (e.g. a trade touching two players and a zone's book).
// lockAggregates also takes the tick engine's exclusive world-write stance
// first: while a tick is running, every aggregate-touching action stalls
// until it commits, per the serialization-points rule.
func (p *Processor) lockAggregates(pairs ...[2]string) func() {
	if p.tick != nil {
		p.tick.Lock()
	}

	keys := make([]string, len(pairs))
	locksByKey := make(map[string]*sync.Mutex, len(pairs))
	for i, pair := range pairs {
		k := pair[0] + ":" + pair[1]
		keys[i] = k
		locksByKey[k] = p.aggregateLock(pair[0], pair[1])
	}
	sort.Strings(keys)
	seen := make(map[string]bool, len(keys))
	var acquired []*sync.Mutex
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		l := locksByKey[k]
		l.Lock()
		acquired = append(acquired, l)
	}
	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].Unlock()
		}
		if p.tick != nil {
			p.tick.Unlock()
		}
	}
}

// lockWorld takes the tick engine's exclusive world-write stance alone,
// for actions whose aggregate isn't a single (kind, id) pair (faction
// roster edits, contract escrow, webhook registration).
func (p *Processor) lockWorld() func() {
	if p.tick == nil {
		return func() {}
	}
	p.tick.Lock()
	return p.tick.Unlock
}

// playerLimiter returns the 1-action/second limiter for a player.
func (p *Processor) playerLimiter(playerID string) *rate.Limiter {
	p.playerLimitersMu.Lock()
	defer p.playerLimitersMu.Unlock()
	l, ok := p.playerLimiters[playerID]
	if !ok {
		l = rate.NewLimiter(rate.Every(time.Second), 1)
		p.playerLimiters[playerID] = l
	}
	return l
}

// IPLimiter returns the global per-IP floor limiter (100 req/min, burst 10).
func (p *Processor) IPLimiter(ip string) *rate.Limiter {
	p.ipLimitersMu.Lock()
	defer p.ipLimitersMu.Unlock()
	l, ok := p.ipLimiters[ip]
	if !ok {
		l = rate.NewLimiter(rate.Every(600*time.Millisecond), 10)
		p.ipLimiters[ip] = l
	}
	return l
}

// Authenticate resolves an opaque API key to a player, Unauthorized if
// unknown.
func (p *Processor) Authenticate(apiKey string) (*world.Player, error) {
	pl := p.cache.PlayerByAPIKey(apiKey)
	if pl == nil {
		return nil, apierr.New(apierr.Unauthorized, "UNKNOWN_API_KEY", "unknown API key")
	}
	return pl, nil
}

// checkRateAndQuota enforces the 1-second-per-player interval and the
// tier's daily action quota, resetting actions_today when last_action_tick
// belongs to a prior day (approximated as 1440 ticks at a 1-minute tick,
// but measured directly off tick count so it tracks whatever interval is
// configured).
func (p *Processor) checkRateAndQuota(pl *world.Player, currentTick int64, ticksPerDay int64) error {
	if !p.playerLimiter(pl.ID).Allow() {
		return apierr.RateLimitedErr(1000)
	}
	if ticksPerDay > 0 && pl.LastActionTick/ticksPerDay != currentTick/ticksPerDay {
		pl.ActionsToday = 0
	}
	if pl.ActionsToday >= pl.Tier.DailyQuota() {
		return apierr.New(apierr.QuotaExceeded, "QUOTA_EXCEEDED", "daily action quota exhausted")
	}
	return nil
}

// finishAction increments the per-player action counters and persists the
// player; call after a successful mutation.
func (p *Processor) finishAction(ctx context.Context, pl *world.Player, currentTick int64) error {
	pl.ActionsToday++
	pl.LastActionTick = currentTick
	pl.LastActionAt = time.Now()
	if err := p.store.Put(ctx, storage.TablePlayers, pl.ID, pl); err != nil {
		return err
	}
	p.cache.PutPlayer(pl)
	return nil
}

// Package tick implements the authoritative tick engine: a single-threaded
// cooperative worker that claims each tick idempotently, runs the ordered
// 14-stage pipeline, and commits. Grounded on the teacher's tickLoop/
// tickWorld (lock-protected single function, numbered phase comments) and
// dm-vev-adamant's fixed-interval ticker shape.
package tick

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"burnrate/internal/events"
	"burnrate/internal/storage"
	"burnrate/internal/webhook"
	"burnrate/internal/world"
)

const lastTickKey = "last_tick_at"

// Engine drives the world forward one tick at a time.
type Engine struct {
	store    *storage.Store
	cache    *world.Cache
	queue    *events.Queue
	log      *events.Log
	dispatch *webhook.Dispatcher

	interval     time.Duration
	seasonLength time.Duration

	infoLog *log.Logger
	errLog  *log.Logger

	// stateLock gives the pipeline its exclusive world-write stance: while
	// held, Action Processor mutations on the same aggregates must wait.
	stateLock sync.Mutex
}

// New builds a tick engine. interval is TICK_INTERVAL; seasonLength is the
// configured season duration.
func New(store *storage.Store, cache *world.Cache, queue *events.Queue, evLog *events.Log, dispatcher *webhook.Dispatcher, interval, seasonLength time.Duration, infoLog, errLog *log.Logger) *Engine {
	return &Engine{
		store: store, cache: cache, queue: queue, log: evLog, dispatch: dispatcher,
		interval: interval, seasonLength: seasonLength,
		infoLog: infoLog, errLog: errLog,
	}
}

// Lock acquires the engine's exclusive world-write stance. The Action
// Processor calls this before any mutation so that in-flight ticks and
// actions never interleave.
func (e *Engine) Lock() { e.stateLock.Lock() }

// Unlock releases the exclusive world-write stance.
func (e *Engine) Unlock() { e.stateLock.Unlock() }

// Run drives the ticker loop until ctx is cancelled. Each firing attempts
// to claim and advance one tick; if another instance already advanced it
// (or TICK_INTERVAL hasn't elapsed), this firing yields.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.TryAdvance(ctx); err != nil {
				e.errLog.Printf("tick_aborted: %v", err)
			}
		}
	}
}

// TryAdvance attempts to claim and run exactly one tick. It is idempotent:
// calling it twice within less than TICK_INTERVAL performs the claim check
// and advances at most once.
func (e *Engine) TryAdvance(ctx context.Context) error {
	claimed, err := e.claim(ctx)
	if err != nil {
		return fmt.Errorf("claim tick: %w", err)
	}
	if !claimed {
		return nil // another instance (or a too-recent firing) already has it
	}
	return e.runOnce(ctx)
}

// claim reads the stored last-tick timestamp; if less than interval has
// elapsed, yields. On success it does NOT yet write the new timestamp —
// that happens at commit (stage 14) so a mid-pipeline failure leaves the
// claim available to retry.
func (e *Engine) claim(ctx context.Context) (bool, error) {
	val, ok, err := e.store.MetaGet(lastTickKey)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil // first ever tick
	}
	var lastMillis int64
	fmt.Sscanf(val, "%d", &lastMillis)
	last := time.UnixMilli(lastMillis)
	return time.Since(last) >= e.interval, nil
}

// AdminForceAdvance bypasses the idempotency claim entirely, for the
// POST /admin/tick endpoint.
func (e *Engine) AdminForceAdvance(ctx context.Context) error {
	return e.runOnce(ctx)
}

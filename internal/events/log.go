// Package events implements the append-only audit log. Events drive history
// queries, webhooks, and analytics — never state reconstruction; the
// authoritative state always lives in the aggregate rows themselves.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"burnrate/internal/storage"
	"burnrate/internal/world"
)

// Log appends events to storage and the world cache, and hands them to a
// queue for webhook dispatch on the next tick.
type Log struct {
	store *storage.Store
	cache *world.Cache
	queue *Queue
}

// New builds an event log backed by store/cache, feeding outQueue.
func New(store *storage.Store, cache *world.Cache, outQueue *Queue) *Log {
	return &Log{store: store, cache: cache, queue: outQueue}
}

// Emit records one event at the given tick, persists it, publishes it into
// the world cache, and enqueues it for webhook dispatch.
func (l *Log) Emit(ctx context.Context, tick int64, eventType, actorID, actorKind string, data map[string]interface{}) (*world.Event, error) {
	ev := &world.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Tick:      tick,
		Timestamp: time.Now().Unix(),
		ActorID:   actorID,
		ActorKind: actorKind,
		Data:      data,
	}
	if err := l.store.Put(ctx, storage.TableEvents, ev.ID, ev); err != nil {
		return nil, err
	}
	l.cache.PutEvent(ev)
	if l.queue != nil {
		l.queue.Push(ev)
	}
	return ev, nil
}

// Package webhook delivers queued events to subscriber URLs, grounded on
// the teacher's federation heartbeat POST (`http.Client` + fixed timeout)
// and its LZ4 compression / buffer-pool idiom.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pierrec/lz4/v4"

	"burnrate/internal/events"
	"burnrate/internal/world"
)

const (
	autoDisableAfter   = 5
	compressThreshold  = 1024 // bytes; below this, ship uncompressed
)

var bufferPool = sync.Pool{New: func() interface{} { return new(bytes.Buffer) }}

// Dispatcher drains an event queue and POSTs matching events to every
// enabled webhook.
type Dispatcher struct {
	cache   *world.Cache
	client  *http.Client
	infoLog *loggerAdapter
	errLog  *loggerAdapter
}

// loggerAdapter lets Dispatcher accept any *log.Logger-shaped sink without
// importing log directly, keeping the package testable without log noise.
type loggerAdapter struct {
	printf func(format string, args ...interface{})
}

// NewDispatcher builds a Dispatcher with the given per-attempt timeout.
func NewDispatcher(cache *world.Cache, timeout time.Duration, infoPrintf, errPrintf func(string, ...interface{})) *Dispatcher {
	return &Dispatcher{
		cache:   cache,
		client:  &http.Client{Timeout: timeout},
		infoLog: &loggerAdapter{printf: infoPrintf},
		errLog:  &loggerAdapter{printf: errPrintf},
	}
}

// DispatchAll drains queue and attempts delivery of every event to every
// webhook whose filter matches, in tick order per webhook.
func (d *Dispatcher) DispatchAll(ctx context.Context, queue *events.Queue) {
	batch := queue.Drain()
	if len(batch) == 0 {
		return
	}
	for _, wh := range d.cache.AllWebhooks() {
		if wh.Disabled {
			continue
		}
		var matched []*world.Event
		for _, e := range batch {
			if wh.Matches(e.Type) {
				matched = append(matched, e)
			}
		}
		if len(matched) == 0 {
			continue
		}
		d.deliver(ctx, wh, matched)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, wh *world.Webhook, evs []*world.Event) {
	body, err := json.Marshal(evs)
	if err != nil {
		d.errLog.printf("webhook %s: marshal failed: %v", wh.ID, err)
		return
	}

	compressed := false
	payload := body
	if len(body) > compressThreshold {
		payload = compressLZ4(body)
		compressed = true
	}

	ts := fmt.Sprintf("%d", time.Now().Unix())
	sig := signHMAC(wh.Secret, ts, payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wh.URL, bytes.NewReader(payload))
	if err != nil {
		d.errLog.printf("webhook %s: build request failed: %v", wh.ID, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Burnrate-Timestamp", ts)
	req.Header.Set("X-Burnrate-Signature", sig)
	if compressed {
		req.Header.Set("X-Burnrate-Compression", "lz4")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.onFailure(wh)
		d.errLog.printf("webhook %s unreachable: %v", wh.ID, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		d.onSuccess(wh)
		return
	}
	d.onFailure(wh)
	d.errLog.printf("webhook %s responded %d", wh.ID, resp.StatusCode)
}

func (d *Dispatcher) onSuccess(wh *world.Webhook) {
	wh.ConsecutiveFailures = 0
	d.cache.PutWebhook(wh)
}

func (d *Dispatcher) onFailure(wh *world.Webhook) {
	wh.ConsecutiveFailures++
	if wh.ConsecutiveFailures >= autoDisableAfter {
		wh.Disabled = true
		d.infoLog.printf("webhook %s auto-disabled after %d consecutive failures", wh.ID, wh.ConsecutiveFailures)
	}
	d.cache.PutWebhook(wh)
}

func signHMAC(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func compressLZ4(src []byte) []byte {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)
	zw := lz4.NewWriter(buf)
	zw.Write(src)
	zw.Close()
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}

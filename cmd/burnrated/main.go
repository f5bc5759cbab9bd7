// Command burnrated runs the BURNRATE server: world bootstrap, the tick
// engine's background worker, webhook dispatch, and the HTTP API. Grounded
// on the teacher's main.go boot sequence (setupLogging/initConfig/initDB,
// background goroutines, ServeMux + middleware, graceful server config).
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"burnrate/internal/action"
	"burnrate/internal/api"
	"burnrate/internal/config"
	"burnrate/internal/events"
	"burnrate/internal/storage"
	"burnrate/internal/tick"
	"burnrate/internal/webhook"
	"burnrate/internal/world"
)

func setupLogging() (infoLog, errLog *log.Logger) {
	logDir := "./logs"
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		os.Mkdir(logDir, 0755)
	}
	fInfo, err := os.OpenFile(filepath.Join(logDir, "server.log"), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		fInfo = os.Stdout
	}
	fErr, err := os.OpenFile(filepath.Join(logDir, "error.log"), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		fErr = os.Stderr
	}
	return log.New(fInfo, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile),
		log.New(fErr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}

func main() {
	infoLog, errLog := setupLogging()
	cfg := config.Load()

	infoLog.Println("BURNRATE BOOT SEQUENCE")
	infoLog.Printf("db_driver=%s tick_interval=%s season_length=%s", cfg.DBDriver, cfg.TickInterval, cfg.SeasonLength)

	db, err := storage.OpenSQLite(cfg.DBDSN, cfg.DBDriver)
	if err != nil {
		errLog.Fatalf("open db: %v", err)
	}
	store, err := storage.Open(db)
	if err != nil {
		errLog.Fatalf("open store: %v", err)
	}

	cache := world.NewCache()
	if err := loadWorldIntoCache(store, cache); err != nil {
		errLog.Fatalf("load world: %v", err)
	}

	queue := events.NewQueue()
	evLog := events.New(store, cache, queue)
	dispatcher := webhook.NewDispatcher(cache, cfg.WebhookTimeout, infoLog.Printf, errLog.Printf)

	engine := tick.New(store, cache, queue, evLog, dispatcher, cfg.TickInterval, cfg.SeasonLength, infoLog, errLog)
	proc := action.New(store, cache, evLog, engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	server := api.New(proc, engine, cache, cfg)
	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		infoLog.Printf("listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errLog.Fatalf("serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	infoLog.Println("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}

// loadWorldIntoCache hydrates the in-memory World Model from storage at
// boot; an empty database simply yields an empty (later admin-initialized)
// world.
func loadWorldIntoCache(store *storage.Store, cache *world.Cache) error {
	ctx := context.Background()
	if err := store.All(ctx, storage.TableZones, func(b []byte) error {
		var z world.Zone
		if err := json.Unmarshal(b, &z); err != nil {
			return err
		}
		cache.PutZone(&z)
		return nil
	}); err != nil {
		return err
	}
	if err := store.All(ctx, storage.TableRoutes, func(b []byte) error {
		var r world.Route
		if err := json.Unmarshal(b, &r); err != nil {
			return err
		}
		cache.PutRoute(&r)
		return nil
	}); err != nil {
		return err
	}
	if err := store.All(ctx, storage.TablePlayers, func(b []byte) error {
		var p world.Player
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		cache.PutPlayer(&p)
		return nil
	}); err != nil {
		return err
	}
	if err := store.All(ctx, storage.TableFactions, func(b []byte) error {
		var f world.Faction
		if err := json.Unmarshal(b, &f); err != nil {
			return err
		}
		cache.PutFaction(&f)
		return nil
	}); err != nil {
		return err
	}
	if err := store.All(ctx, storage.TableShipments, func(b []byte) error {
		var s world.Shipment
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		cache.PutShipment(&s)
		return nil
	}); err != nil {
		return err
	}
	if err := store.All(ctx, storage.TableUnits, func(b []byte) error {
		var u world.Unit
		if err := json.Unmarshal(b, &u); err != nil {
			return err
		}
		cache.PutUnit(&u)
		return nil
	}); err != nil {
		return err
	}
	if err := store.All(ctx, storage.TableOrders, func(b []byte) error {
		var o world.MarketOrder
		if err := json.Unmarshal(b, &o); err != nil {
			return err
		}
		cache.PutOrder(&o)
		return nil
	}); err != nil {
		return err
	}
	if err := store.All(ctx, storage.TableContracts, func(b []byte) error {
		var c world.Contract
		if err := json.Unmarshal(b, &c); err != nil {
			return err
		}
		cache.PutContract(&c)
		return nil
	}); err != nil {
		return err
	}
	if err := store.All(ctx, storage.TableIntel, func(b []byte) error {
		var ir world.IntelReport
		if err := json.Unmarshal(b, &ir); err != nil {
			return err
		}
		cache.PutIntel(&ir)
		return nil
	}); err != nil {
		return err
	}
	if err := store.All(ctx, storage.TableWebhooks, func(b []byte) error {
		var wh world.Webhook
		if err := json.Unmarshal(b, &wh); err != nil {
			return err
		}
		cache.PutWebhook(&wh)
		return nil
	}); err != nil {
		return err
	}
	return nil
}

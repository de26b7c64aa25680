// Package main provides the embedded core server for desktop platforms.
// Desktop UI clients communicate via REST/WebSocket on localhost.
package main

import (
	"context"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tkwok/vidsum/core/cmd/desktop/handlers"
	"github.com/tkwok/vidsum/core/internal/api"
	"github.com/tkwok/vidsum/core/internal/cache"
	"github.com/tkwok/vidsum/core/internal/config"
	"github.com/tkwok/vidsum/core/internal/kv"
	"github.com/tkwok/vidsum/core/internal/logging"
	"github.com/tkwok/vidsum/core/internal/netstate"
	"github.com/tkwok/vidsum/core/internal/queue"
	"github.com/tkwok/vidsum/core/internal/store"
	syncpkg "github.com/tkwok/vidsum/core/internal/sync"
	"github.com/tkwok/vidsum/core/internal/sync/scheduler"
	"github.com/tkwok/vidsum/core/internal/synclog"
	"github.com/tkwok/vidsum/core/internal/telemetry"
)

func main() {
	cfg := config.Load()

	logging.Init(os.Stdout, logging.LevelInfo)
	log := logging.Get()

	kvStore, err := kv.OpenSQLite(cfg.DataDir)
	if err != nil {
		log.Error("Failed to open local store", err)
		os.Exit(1)
	}
	defer kvStore.Close()

	rec := telemetry.NewRecorder()
	info := cache.NewInfoStore(kvStore, log)

	thumbs, err := cache.NewThumbnailCache(cfg.CacheDir, cfg.ThumbnailCacheCap, cfg.ThumbnailMaxWidth, info, rec, log)
	if err != nil {
		log.Error("Failed to initialize thumbnail cache", err)
		os.Exit(1)
	}

	summaries := store.NewSummaryStore(kvStore, info, log)
	requestQueue := queue.NewRequestQueue(kvStore, log)
	mutationLog := synclog.NewSyncLog(kvStore, log)

	client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)
	probe := netstate.NewHTTPProbe(cfg.APIBaseURL+"/health", cfg.ProbeInterval)

	hub := NewWSHub(log)

	engine := syncpkg.NewEngine(syncpkg.EngineConfig{
		API:        client,
		Probe:      probe,
		Queue:      requestQueue,
		SyncLog:    mutationLog,
		Store:      summaries,
		Thumbnails: thumbs,
		Recorder:   rec,
		Logger:     log,
		Notifier:   hub,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go probe.Watch(ctx, cfg.ProbeInterval)

	sched := scheduler.New(engine, probe, &scheduler.Config{Interval: cfg.SyncInterval}, log)
	sched.Start(ctx)
	defer sched.Stop()

	h := &handlers.Handler{
		Engine:     engine,
		Store:      summaries,
		Queue:      requestQueue,
		SyncLog:    mutationLog,
		Thumbnails: thumbs,
		Recorder:   rec,
		Log:        log,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/api/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"vidsum-desktop"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/summaries", func(r chi.Router) {
			r.Get("/", h.ListSummaries)
			r.Post("/", h.CreateSummary)
			r.Get("/{id}", h.GetSummary)
			r.Delete("/{id}", h.DeleteSummary)
			r.Put("/{id}/star", h.SetStarred)
			r.Get("/{id}/export", h.ExportSummary)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Post("/", h.TriggerSync)
			r.Get("/status", h.GetSyncStatus)
			r.Delete("/queue", h.ClearQueue)
			r.Delete("/log", h.ClearSyncLog)
		})

		r.Get("/cache", h.GetCacheSize)
		r.Delete("/cache", h.ClearCache)
	})

	r.Get("/ws", hub.ServeWS)

	addr := "localhost:" + cfg.BridgePort
	log.Info("Vidsum desktop core listening", map[string]interface{}{"addr": addr})

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Error("Server stopped", err)
		os.Exit(1)
	}
}

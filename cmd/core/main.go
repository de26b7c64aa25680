// Package main provides the Vidsum Go Core smoke harness.
// It exercises the offline path end to end against a throwaway data
// directory: queue a generation, toggle a star, inspect the pending work.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/tkwok/vidsum/core/internal/cache"
	"github.com/tkwok/vidsum/core/internal/kv"
	"github.com/tkwok/vidsum/core/internal/logging"
	"github.com/tkwok/vidsum/core/internal/models"
	"github.com/tkwok/vidsum/core/internal/netstate"
	"github.com/tkwok/vidsum/core/internal/queue"
	"github.com/tkwok/vidsum/core/internal/store"
	syncpkg "github.com/tkwok/vidsum/core/internal/sync"
	"github.com/tkwok/vidsum/core/internal/synclog"
	"github.com/tkwok/vidsum/core/internal/telemetry"
)

// Version is set at build time
var Version = "0.1.0"

func main() {
	fmt.Printf("Vidsum Core v%s\n", Version)

	tmpDir, err := os.MkdirTemp("", "vidsum-smoke-")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	logging.Init(os.Stdout, logging.LevelInfo)
	logger := logging.Get()

	kvStore, err := kv.OpenSQLite(tmpDir)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer kvStore.Close()

	rec := telemetry.NewRecorder()
	info := cache.NewInfoStore(kvStore, logger)
	summaries := store.NewSummaryStore(kvStore, info, logger)
	requestQueue := queue.NewRequestQueue(kvStore, logger)
	mutationLog := synclog.NewSyncLog(kvStore, logger)

	engine := syncpkg.NewEngine(syncpkg.EngineConfig{
		Probe:    netstate.NewStaticProbe(false), // offline path only
		Queue:    requestQueue,
		SyncLog:  mutationLog,
		Store:    summaries,
		Recorder: rec,
		Logger:   logger,
	})

	ctx := context.Background()

	placeholder, err := engine.GenerateSummary(ctx, models.SummaryRequest{
		URL:           "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		SummaryType:   models.TypeBrief,
		SummaryLength: models.LengthShort,
	})
	if err != nil {
		log.Fatalf("Offline generation failed: %v", err)
	}
	fmt.Printf("Queued placeholder %s (is_queued=%v)\n", placeholder.ID, placeholder.IsQueued)

	if _, err := engine.SetStarred(ctx, placeholder.ID, placeholder.VideoID, true); err != nil {
		log.Fatalf("Offline star failed: %v", err)
	}

	fmt.Printf("Pending queue items: %d\n", requestQueue.Size(ctx))
	fmt.Printf("Pending sync log entries: %d\n", mutationLog.Size(ctx))
	fmt.Printf("Counters: %v\n", rec.Snapshot())
}

// Package sync coordinates online/offline dispatch for summary actions and
// replays the request queue and sync log when connectivity returns.
package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/tkwok/vidsum/core/internal/api"
	"github.com/tkwok/vidsum/core/internal/cache"
	"github.com/tkwok/vidsum/core/internal/errors"
	"github.com/tkwok/vidsum/core/internal/logging"
	"github.com/tkwok/vidsum/core/internal/models"
	"github.com/tkwok/vidsum/core/internal/netstate"
	"github.com/tkwok/vidsum/core/internal/queue"
	"github.com/tkwok/vidsum/core/internal/store"
	"github.com/tkwok/vidsum/core/internal/synclog"
	"github.com/tkwok/vidsum/core/internal/telemetry"
)

// Status represents the current sync status.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
	StatusFailed  Status = "failed"
)

// Notifier receives sync lifecycle events. The desktop bridge broadcasts
// them to UI clients over WebSocket.
type Notifier interface {
	SyncStarted()
	SyncProgress(processed, total int)
	SyncCompleted(result *Result)
	SyncFailed(reason string)
}

// Result summarizes one drain pass over the queue and sync log.
type Result struct {
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	Duration       time.Duration `json:"duration"`
	QueueProcessed int           `json:"queue_processed"`
	QueueFailed    int           `json:"queue_failed"`
	LogProcessed   int           `json:"log_processed"`
	LogFailed      int           `json:"log_failed"`
	Complete       bool          `json:"complete"`
}

// EngineConfig wires an Engine's collaborators.
type EngineConfig struct {
	API        *api.Client
	Probe      netstate.Probe
	Queue      *queue.RequestQueue
	SyncLog    *synclog.SyncLog
	Store      *store.SummaryStore
	Thumbnails *cache.ThumbnailCache
	Recorder   *telemetry.Recorder
	Logger     *logging.Logger
	Notifier   Notifier
}

// Engine is the sync orchestrator. Each mutating action checks
// reachability: online actions go straight to the remote API and mirror
// the result locally; offline or network-failed actions fall back to a
// durable queue or log entry and a locally synthesized placeholder.
type Engine struct {
	api      *api.Client
	probe    netstate.Probe
	queue    *queue.RequestQueue
	synclog  *synclog.SyncLog
	store    *store.SummaryStore
	thumbs   *cache.ThumbnailCache
	rec      *telemetry.Recorder
	log      *logging.Logger
	notifier Notifier

	mu       stdsync.Mutex
	status   Status
	lastSync *time.Time
	lastErr  error
}

// NewEngine creates an Engine from its collaborators.
func NewEngine(cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Get()
	}
	return &Engine{
		api:      cfg.API,
		probe:    cfg.Probe,
		queue:    cfg.Queue,
		synclog:  cfg.SyncLog,
		store:    cfg.Store,
		thumbs:   cfg.Thumbnails,
		rec:      cfg.Recorder,
		log:      logger,
		notifier: cfg.Notifier,
		status:   StatusIdle,
	}
}

// Status returns the current sync status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// LastSync returns the timestamp of the last fully successful sync pass.
func (e *Engine) LastSync() *time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSync
}

// LastError returns the last sync error.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// GenerateSummary generates a summary for a video. Online, the remote
// result is mirrored into the local store (and its thumbnail cached) and
// returned. Offline, or on a network-class failure, the request is queued
// and a placeholder with IsQueued=true is returned so the UI can show
// provisional state. Application errors and cancellation propagate.
func (e *Engine) GenerateSummary(ctx context.Context, req models.SummaryRequest) (*models.Summary, error) {
	if req.URL == "" {
		return nil, errors.New(errors.ErrValidation, "url is required")
	}
	if req.SummaryType == "" {
		req.SummaryType = models.TypeBrief
	}
	if req.SummaryLength == "" {
		req.SummaryLength = models.LengthMedium
	}

	if e.probe.State(ctx).Online() {
		summary, err := e.api.CreateSummary(ctx, req)
		if err == nil {
			e.mirror(ctx, summary)
			return summary, nil
		}
		if errors.IsCancelled(err) {
			return nil, err
		}
		if !errors.IsNetwork(err) {
			return nil, err
		}
		e.log.Warn("Generation failed with network error, queueing",
			map[string]interface{}{"url": req.URL, "error": err.Error()})
	}

	return e.queueRequest(ctx, req)
}

// SetStarred stars or unstars a summary, falling back to the sync log
// when the remote service is unreachable. The local mirror is updated
// either way so the UI reflects the user's intent immediately.
func (e *Engine) SetStarred(ctx context.Context, summaryID, videoID string, starred bool) (*models.Summary, error) {
	if e.probe.State(ctx).Online() {
		summary, err := e.api.SetStarred(ctx, summaryID, starred)
		if err == nil {
			e.store.Save(ctx, summary)
			return summary, nil
		}
		if errors.IsCancelled(err) || !errors.IsNetwork(err) {
			return nil, err
		}
	}

	action := models.ActionStar
	if !starred {
		action = models.ActionUnstar
	}
	if _, err := e.synclog.Append(ctx, action, videoID, summaryID); err != nil {
		return nil, err
	}
	e.rec.Incr(telemetry.CounterLoggedMutations)

	local := e.store.SetStarred(ctx, summaryID, starred)
	if local == nil {
		return nil, errors.New(errors.ErrNotFound, "summary not found locally: "+summaryID)
	}
	local.IsQueued = true
	return local, nil
}

// DeleteSummary deletes a summary, falling back to the sync log when the
// remote service is unreachable. The local mirror is removed either way.
func (e *Engine) DeleteSummary(ctx context.Context, summaryID, videoID string) error {
	if e.probe.State(ctx).Online() {
		err := e.api.DeleteSummary(ctx, summaryID)
		if err == nil || errors.Is(err, errors.ErrNotFound) {
			e.store.Delete(ctx, summaryID)
			return nil
		}
		if errors.IsCancelled(err) || !errors.IsNetwork(err) {
			return err
		}
	}

	if _, err := e.synclog.Append(ctx, models.ActionDelete, videoID, summaryID); err != nil {
		return err
	}
	e.rec.Incr(telemetry.CounterLoggedMutations)
	e.store.Delete(ctx, summaryID)
	return nil
}

// ProcessQueue replays queued generation requests against the remote
// service. Each item's outcome is independent; failures are recorded on
// the item and left for the next pass. Items enqueued during the pass are
// not part of the snapshot. Returns true only if the pass ran online and
// every attempted item succeeded.
func (e *Engine) ProcessQueue(ctx context.Context) bool {
	if !e.probe.State(ctx).Online() {
		return false
	}

	items := e.queue.List(ctx)
	allOK := true

	for i, item := range items {
		if item.Status == models.QueueStatusProcessing {
			continue
		}

		e.queue.SetStatus(ctx, item.RequestID, models.QueueStatusProcessing, "")
		e.notifyProgress(i, len(items))

		summary, err := e.api.CreateSummary(ctx, models.SummaryRequest{
			URL:           item.URL,
			SummaryType:   item.SummaryType,
			SummaryLength: item.SummaryLength,
		})
		if err != nil {
			allOK = false
			e.rec.Incr(telemetry.CounterReplayFailures)
			e.queue.SetStatus(ctx, item.RequestID, models.QueueStatusFailed, err.Error())
			e.log.Warn("Queue replay failed",
				map[string]interface{}{"request_id": item.RequestID, "error": err.Error()})
			continue
		}

		// Replace the provisional placeholder with the canonical result.
		e.store.Delete(ctx, item.RequestID)
		e.mirror(ctx, summary)
		e.queue.Dequeue(ctx, item.RequestID)
		e.rec.Incr(telemetry.CounterReplayedItems)
	}

	return allOK
}

// ProcessSyncLog replays pending mutations in stored order. One entry's
// failure does not abort the pass; every entry that succeeded is removed
// in a single filter-and-rebuild, preserving the survivors' relative
// order. Returns true only if every entry in the pass succeeded.
func (e *Engine) ProcessSyncLog(ctx context.Context) bool {
	if !e.probe.State(ctx).Online() {
		return false
	}

	entries := e.synclog.List(ctx)
	if len(entries) == 0 {
		return true
	}

	succeeded := make(map[string]bool)

	for _, entry := range entries {
		if err := e.replayEntry(ctx, &entry); err != nil {
			e.rec.Incr(telemetry.CounterReplayFailures)
			e.log.Warn("Sync log replay failed",
				map[string]interface{}{
					"action":     string(entry.Action),
					"summary_id": entry.SummaryID,
					"error":      err.Error(),
				})
			continue
		}
		succeeded[entry.ID] = true
		e.rec.Incr(telemetry.CounterReplayedItems)
	}

	e.synclog.RemoveIDs(ctx, succeeded)
	return len(succeeded) == len(entries)
}

// replayEntry dispatches a single log entry to the remote API. The switch
// is exhaustive over the action enum; an unknown value can only come from
// a corrupted persisted record and is a per-entry failure, never a panic.
func (e *Engine) replayEntry(ctx context.Context, entry *models.SyncLogEntry) error {
	switch entry.Action {
	case models.ActionStar:
		_, err := e.api.SetStarred(ctx, entry.SummaryID, true)
		return err
	case models.ActionUnstar:
		_, err := e.api.SetStarred(ctx, entry.SummaryID, false)
		return err
	case models.ActionDelete:
		err := e.api.DeleteSummary(ctx, entry.SummaryID)
		if errors.Is(err, errors.ErrNotFound) {
			// Already gone remotely; the intended effect holds.
			return nil
		}
		return err
	default:
		return errors.New(errors.ErrUnknownAction,
			fmt.Sprintf("unknown sync action %q", entry.Action))
	}
}

// Sync performs one full drain pass over the queue and the sync log.
func (e *Engine) Sync(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	if e.status == StatusSyncing {
		e.mu.Unlock()
		return nil, errors.New(errors.ErrSyncFailed, "sync already in progress")
	}
	e.status = StatusSyncing
	e.mu.Unlock()

	if e.notifier != nil {
		e.notifier.SyncStarted()
	}

	result := &Result{StartTime: time.Now()}

	queueBefore := len(e.queue.List(ctx))
	logBefore := len(e.synclog.List(ctx))

	queueOK := e.ProcessQueue(ctx)
	logOK := e.ProcessSyncLog(ctx)

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	result.QueueFailed = len(e.queue.List(ctx))
	result.QueueProcessed = queueBefore - result.QueueFailed
	result.LogFailed = len(e.synclog.List(ctx))
	result.LogProcessed = logBefore - result.LogFailed
	result.Complete = queueOK && logOK

	e.mu.Lock()
	if result.Complete {
		e.status = StatusIdle
		e.lastErr = nil
		now := result.EndTime
		e.lastSync = &now
	} else {
		e.status = StatusFailed
		e.lastErr = errors.New(errors.ErrSyncFailed,
			fmt.Sprintf("%d queue items and %d log entries still pending",
				result.QueueFailed, result.LogFailed))
	}
	err := e.lastErr
	e.mu.Unlock()

	if e.notifier != nil {
		if result.Complete {
			e.notifier.SyncCompleted(result)
		} else {
			e.notifier.SyncFailed(err.Error())
		}
	}

	return result, err
}

// queueRequest records an offline generation request and synthesizes the
// placeholder summary the UI shows until replay confirms it.
func (e *Engine) queueRequest(ctx context.Context, req models.SummaryRequest) (*models.Summary, error) {
	item, err := e.queue.Enqueue(ctx, req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrQueueFailed, "failed to queue request", err)
	}
	e.rec.Incr(telemetry.CounterQueuedRequests)

	placeholder := &models.Summary{
		ID:            item.RequestID,
		VideoURL:      item.URL,
		VideoID:       models.ExtractVideoID(item.URL),
		SummaryType:   item.SummaryType,
		SummaryLength: item.SummaryLength,
		IsQueued:      true,
		CreatedAt:     item.RequestedTime().UTC(),
		UpdatedAt:     item.RequestedTime().UTC(),
	}

	// Mirror the placeholder so history shows the pending card offline.
	if err := e.store.Save(ctx, placeholder); err != nil {
		e.log.Error("Failed to mirror queued placeholder", err,
			map[string]interface{}{"request_id": item.RequestID})
	}
	return placeholder, nil
}

// mirror stores a confirmed remote summary locally and caches its
// thumbnail, both best-effort.
func (e *Engine) mirror(ctx context.Context, summary *models.Summary) {
	if err := e.store.Save(ctx, summary); err != nil {
		e.log.Error("Failed to mirror summary", err,
			map[string]interface{}{"id": summary.ID})
	}

	if e.thumbs == nil || summary.VideoThumbnailURL == "" {
		return
	}
	videoID := summary.VideoID
	if videoID == "" {
		videoID = models.ExtractVideoID(summary.VideoURL)
	}
	if videoID == "" {
		return
	}
	e.thumbs.CacheImage(ctx, summary.VideoThumbnailURL, videoID)
}

// notifyProgress reports replay progress to the notifier, if any.
func (e *Engine) notifyProgress(processed, total int) {
	if e.notifier != nil {
		e.notifier.SyncProgress(processed, total)
	}
}

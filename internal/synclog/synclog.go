// Package synclog provides the durable log of star/unstar/delete mutations
// made while offline, replayed in order when connectivity returns.
package synclog

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tkwok/vidsum/core/internal/errors"
	"github.com/tkwok/vidsum/core/internal/kv"
	"github.com/tkwok/vidsum/core/internal/logging"
	"github.com/tkwok/vidsum/core/internal/models"
	"github.com/tkwok/vidsum/core/internal/uuid"
)

// storageKey is the fixed key the log collection persists under.
const storageKey = "sync_log"

// SyncLog is an append/remove-only log of pending mutations. Unlike the
// request queue there is no dedup: repeated star/unstar toggles while
// offline produce multiple entries, replayed in order, last writer wins.
//
// Entries carry a synthetic ID so replay can remove the successes with a
// single filter-and-rebuild instead of positional index arithmetic.
type SyncLog struct {
	store kv.Store
	log   *logging.Logger
	mu    sync.Mutex
}

// NewSyncLog creates a SyncLog over the given KV store.
func NewSyncLog(store kv.Store, log *logging.Logger) *SyncLog {
	if log == nil {
		log = logging.Get()
	}
	return &SyncLog{store: store, log: log}
}

// Append records a mutation for later replay.
func (l *SyncLog) Append(ctx context.Context, action models.SyncAction, videoID, summaryID string) (*models.SyncLogEntry, error) {
	if !action.Valid() {
		return nil, errors.New(errors.ErrUnknownAction, "unknown sync action: "+string(action))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	entry := models.SyncLogEntry{
		ID:        uuid.New(),
		Action:    action,
		VideoID:   videoID,
		SummaryID: summaryID,
		Timestamp: time.Now().UnixMilli(),
	}

	entries = append(entries, entry)
	if err := l.save(ctx, entries); err != nil {
		return nil, err
	}

	l.log.Info("Appended sync log entry",
		map[string]interface{}{"action": string(action), "summary_id": summaryID})
	return &entry, nil
}

// Remove deletes the entry with the given ID. Returns whether it existed.
func (l *SyncLog) Remove(ctx context.Context, id string) bool {
	removed := l.RemoveIDs(ctx, map[string]bool{id: true})
	return removed == 1
}

// RemoveAt deletes the entry at a position in stored order. Returns false
// when the index is out of range. Retained for the UI contract; internal
// callers remove by ID.
func (l *SyncLog) RemoveAt(ctx context.Context, index int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load(ctx)
	if err != nil {
		return false
	}
	if index < 0 || index >= len(entries) {
		return false
	}

	entries = append(entries[:index], entries[index+1:]...)
	return l.save(ctx, entries) == nil
}

// RemoveIDs deletes every entry whose ID is in ids, preserving the
// relative order of the survivors. Returns the number removed.
func (l *SyncLog) RemoveIDs(ctx context.Context, ids map[string]bool) int {
	if len(ids) == 0 {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load(ctx)
	if err != nil {
		return 0
	}

	kept := entries[:0]
	removed := 0
	for _, entry := range entries {
		if ids[entry.ID] {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	if removed == 0 {
		return 0
	}

	if err := l.save(ctx, kept); err != nil {
		return 0
	}
	return removed
}

// List returns all entries in stored (insertion) order. Storage failures
// degrade to an empty log.
func (l *SyncLog) List(ctx context.Context) []models.SyncLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load(ctx)
	if err != nil {
		return nil
	}
	return entries
}

// Size returns the number of pending entries.
func (l *SyncLog) Size(ctx context.Context) int {
	return len(l.List(ctx))
}

// Clear removes the entire collection.
func (l *SyncLog) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Delete(ctx, storageKey); err != nil {
		return errors.Wrap(errors.ErrStorage, "failed to clear sync log", err)
	}
	l.log.Info("Sync log cleared")
	return nil
}

// load reads the persisted collection. Caller must hold the mutex.
func (l *SyncLog) load(ctx context.Context) ([]models.SyncLogEntry, error) {
	raw, ok, err := l.store.Get(ctx, storageKey)
	if err != nil {
		l.log.Error("Failed to read sync log", err)
		return nil, errors.Wrap(errors.ErrStorage, "failed to read sync log", err)
	}
	if !ok {
		return nil, nil
	}

	var entries []models.SyncLogEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		l.log.Warn("Corrupt sync log record, resetting",
			map[string]interface{}{"error": err.Error()})
		return nil, nil
	}
	return entries, nil
}

// save persists the collection. Caller must hold the mutex.
func (l *SyncLog) save(ctx context.Context, entries []models.SyncLogEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "failed to encode sync log", err)
	}
	if err := l.store.Set(ctx, storageKey, string(data)); err != nil {
		l.log.Error("Failed to persist sync log", err)
		return errors.Wrap(errors.ErrStorage, "failed to persist sync log", err)
	}
	return nil
}

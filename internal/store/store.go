// Package store persists summaries locally so history reads work offline.
// Summaries are JSON records under "summary:<id>" keys in the KV store,
// mirroring whatever the remote service last returned (or a locally
// synthesized placeholder while a generation request is queued).
package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/tkwok/vidsum/core/internal/cache"
	"github.com/tkwok/vidsum/core/internal/errors"
	"github.com/tkwok/vidsum/core/internal/kv"
	"github.com/tkwok/vidsum/core/internal/logging"
	"github.com/tkwok/vidsum/core/internal/models"
)

// keyPrefix namespaces summary records in the KV store.
const keyPrefix = "summary:"

// SummaryStore is the local mirror of remote summaries.
type SummaryStore struct {
	store kv.Store
	info  *cache.InfoStore // optional size bookkeeping
	log   *logging.Logger
	mu    sync.Mutex
}

// NewSummaryStore creates a SummaryStore. info may be nil to skip size
// bookkeeping.
func NewSummaryStore(store kv.Store, info *cache.InfoStore, log *logging.Logger) *SummaryStore {
	if log == nil {
		log = logging.Get()
	}
	return &SummaryStore{store: store, info: info, log: log}
}

// Save writes a summary, overwriting any record with the same ID.
func (s *SummaryStore) Save(ctx context.Context, summary *models.Summary) error {
	if summary == nil || summary.ID == "" {
		return errors.New(errors.ErrInvalid, "summary must have an ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(summary)
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "failed to encode summary", err)
	}

	key := keyPrefix + summary.ID
	prev, _, _ := s.store.Get(ctx, key)

	if err := s.store.Set(ctx, key, string(data)); err != nil {
		return errors.Wrap(errors.ErrStorage, "failed to persist summary", err)
	}

	s.adjustSize(ctx, int64(len(data))-int64(len(prev)))
	return nil
}

// Get returns a summary by ID, or nil when it does not exist. Storage and
// decode failures degrade to nil with a log line.
func (s *SummaryStore) Get(ctx context.Context, id string) *models.Summary {
	raw, ok, err := s.store.Get(ctx, keyPrefix+id)
	if err != nil {
		s.log.Error("Failed to read summary", err, map[string]interface{}{"id": id})
		return nil
	}
	if !ok {
		return nil
	}

	var summary models.Summary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		s.log.Warn("Skipping corrupt summary record",
			map[string]interface{}{"id": id, "error": err.Error()})
		return nil
	}
	return &summary
}

// List returns all stored summaries, newest first. A storage failure
// degrades to an empty history rather than an error.
func (s *SummaryStore) List(ctx context.Context) []models.Summary {
	keys, err := s.store.ListKeys(ctx, keyPrefix)
	if err != nil {
		s.log.Error("Failed to list summaries", err)
		return nil
	}

	summaries := make([]models.Summary, 0, len(keys))
	for _, key := range keys {
		raw, ok, err := s.store.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		var summary models.Summary
		if err := json.Unmarshal([]byte(raw), &summary); err != nil {
			s.log.Warn("Skipping corrupt summary record",
				map[string]interface{}{"key": key, "error": err.Error()})
			continue
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries
}

// Delete removes a summary. Returns whether a record existed.
func (s *SummaryStore) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := keyPrefix + id
	prev, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Error("Failed to read summary for delete", err, map[string]interface{}{"id": id})
		return false
	}
	if !ok {
		return false
	}

	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Error("Failed to delete summary", err, map[string]interface{}{"id": id})
		return false
	}

	s.adjustSize(ctx, -int64(len(prev)))
	return true
}

// SetStarred updates the starred flag in place. Returns the updated
// summary, or nil when no record exists.
func (s *SummaryStore) SetStarred(ctx context.Context, id string, starred bool) *models.Summary {
	s.mu.Lock()
	summary := s.getLocked(ctx, id)
	if summary == nil {
		s.mu.Unlock()
		return nil
	}

	summary.IsStarred = starred
	summary.Touch()

	data, err := json.Marshal(summary)
	if err != nil {
		s.mu.Unlock()
		s.log.Error("Failed to encode summary", err, map[string]interface{}{"id": id})
		return nil
	}
	if err := s.store.Set(ctx, keyPrefix+id, string(data)); err != nil {
		s.mu.Unlock()
		s.log.Error("Failed to persist starred flag", err, map[string]interface{}{"id": id})
		return nil
	}
	s.mu.Unlock()
	return summary
}

// Clear removes every stored summary.
func (s *SummaryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.store.ListKeys(ctx, keyPrefix)
	if err != nil {
		return errors.Wrap(errors.ErrStorage, "failed to list summaries", err)
	}
	if err := s.store.DeleteMany(ctx, keys); err != nil {
		return errors.Wrap(errors.ErrStorage, "failed to clear summaries", err)
	}

	if s.info != nil {
		s.info.Update(ctx, func(info *models.CacheInfo) {
			info.SummariesSize = 0
		})
	}
	return nil
}

// getLocked reads a summary without taking the store mutex.
func (s *SummaryStore) getLocked(ctx context.Context, id string) *models.Summary {
	raw, ok, err := s.store.Get(ctx, keyPrefix+id)
	if err != nil || !ok {
		return nil
	}
	var summary models.Summary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil
	}
	return &summary
}

// adjustSize applies a best-effort delta to the summaries size estimate.
func (s *SummaryStore) adjustSize(ctx context.Context, delta int64) {
	if s.info == nil || delta == 0 {
		return
	}
	s.info.Update(ctx, func(info *models.CacheInfo) {
		info.SummariesSize += delta
	})
}

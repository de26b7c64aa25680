// Package cache provides the on-device thumbnail cache and the shared
// storage-size bookkeeping record.
package cache

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tkwok/vidsum/core/internal/kv"
	"github.com/tkwok/vidsum/core/internal/logging"
	"github.com/tkwok/vidsum/core/internal/models"
)

// infoKey is the fixed key the CacheInfo record persists under.
const infoKey = "cache_info"

// InfoStore persists the CacheInfo bookkeeping record. Sizes are
// incremental estimates; callers that need truth rescan and overwrite.
type InfoStore struct {
	store kv.Store
	log   *logging.Logger
	mu    sync.Mutex
}

// NewInfoStore creates an InfoStore over the given KV store.
func NewInfoStore(store kv.Store, log *logging.Logger) *InfoStore {
	if log == nil {
		log = logging.Get()
	}
	return &InfoStore{store: store, log: log}
}

// Get returns the current bookkeeping record. Missing or corrupt records
// degrade to a zero value rather than an error.
func (s *InfoStore) Get(ctx context.Context) models.CacheInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Update applies fn to the record under the store mutex and persists the
// result. Storage failures are logged and swallowed; bookkeeping is
// best-effort by design.
func (s *InfoStore) Update(ctx context.Context, fn func(*models.CacheInfo)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := s.load(ctx)
	fn(&info)
	if info.SummariesSize < 0 {
		info.SummariesSize = 0
	}
	if info.ThumbnailsSize < 0 {
		info.ThumbnailsSize = 0
	}
	info.Touch()

	data, err := json.Marshal(info)
	if err != nil {
		s.log.Error("Failed to encode cache info", err)
		return
	}
	if err := s.store.Set(ctx, infoKey, string(data)); err != nil {
		s.log.Error("Failed to persist cache info", err)
	}
}

// load reads the record without locking. Caller must hold the mutex.
func (s *InfoStore) load(ctx context.Context) models.CacheInfo {
	var info models.CacheInfo

	raw, ok, err := s.store.Get(ctx, infoKey)
	if err != nil {
		s.log.Error("Failed to read cache info", err)
		return info
	}
	if !ok {
		return info
	}
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		s.log.Warn("Corrupt cache info record, resetting",
			map[string]interface{}{"error": err.Error()})
		return models.CacheInfo{}
	}
	return info
}

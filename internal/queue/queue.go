// Package queue provides the durable request queue for summary generations
// attempted while offline.
package queue

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

// storageKey is the fixed key the queue collection persists under.
const storageKey = "request_queue"

// RequestQueue holds pending generation requests, deduplicated by
// parameter identity, with lifecycle status. The mutex serializes
// read-modify-write cycles from independent call sites; the underlying
// KV store provides no such guarantee.
//
// The queue is intentionally unbounded. A user can accumulate an
// arbitrary backlog while offline; bounding it would silently drop
// requests the user believes are pending.
type RequestQueue struct {
	store kv.Store
	log   *logging.Logger
	mu    sync.Mutex
}

// NewRequestQueue creates a RequestQueue over the given KV store.
func NewRequestQueue(store kv.Store, log *logging.Logger) *RequestQueue {
	if log == nil {
		log = logging.Get()
	}
	return &RequestQueue{store: store, log: log}
}

// Enqueue records a generation request. If a pending item with identical
// (url, type, length) already exists, that item is returned unchanged:
// double-tapping "generate" while offline must not produce duplicate
// network work later.
func (q *RequestQueue) Enqueue(ctx context.Context, req models.SummaryRequest) (*models.QueueItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].Status == models.QueueStatusPending &&
			items[i].Matches(req.URL, req.SummaryType, req.SummaryLength) {
			existing := items[i]
			q.log.Debug("Duplicate pending request, returning existing item",
				map[string]interface{}{"request_id": existing.RequestID})
			return &existing, nil
		}
	}

	item := models.QueueItem{
		RequestID:     uuid.NewRequestID(),
		URL:           req.URL,
		SummaryType:   req.SummaryType,
		SummaryLength: req.SummaryLength,
		RequestedAt:   time.Now().UnixMilli(),
		Status:        models.QueueStatusPending,
	}

	items = append(items, item)
	if err := q.save(ctx, items); err != nil {
		return nil, err
	}

	q.log.Info("Enqueued generation request",
		map[string]interface{}{"request_id": item.RequestID, "url": item.URL})
	return &item, nil
}

// Dequeue removes an item unconditionally. Returns whether it existed.
func (q *RequestQueue) Dequeue(ctx context.Context, requestID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return false
	}

	kept := items[:0]
	found := false
	for _, item := range items {
		if item.RequestID == requestID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return false
	}

	if err := q.save(ctx, kept); err != nil {
		return false
	}
	return true
}

// SetStatus updates an item's status. FailureReason is recorded only for
// the failed status; any other transition clears it. Returns the updated
// item, or nil when no item with requestID exists.
func (q *RequestQueue) SetStatus(ctx context.Context, requestID string, status models.QueueStatus, failureReason string) *models.QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return nil
	}

	for i := range items {
		if items[i].RequestID != requestID {
			continue
		}

		items[i].Status = status
		if status == models.QueueStatusFailed {
			items[i].FailureReason = failureReason
		} else {
			items[i].FailureReason = ""
		}

		if err := q.save(ctx, items); err != nil {
			return nil
		}
		updated := items[i]
		return &updated
	}
	return nil
}

// List returns all items in insertion order, regardless of status.
// Storage failures degrade to an empty queue.
func (q *RequestQueue) List(ctx context.Context) []models.QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return nil
	}
	return items
}

// Size returns the number of queued items.
func (q *RequestQueue) Size(ctx context.Context) int {
	return len(q.List(ctx))
}

// Clear removes the entire collection.
func (q *RequestQueue) Clear(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.store.Delete(ctx, storageKey); err != nil {
		return errors.Wrap(errors.ErrStorage, "failed to clear request queue", err)
	}
	q.log.Info("Request queue cleared")
	return nil
}

// load reads the persisted collection. Caller must hold the mutex.
func (q *RequestQueue) load(ctx context.Context) ([]models.QueueItem, error) {
	raw, ok, err := q.store.Get(ctx, storageKey)
	if err != nil {
		q.log.Error("Failed to read request queue", err)
		return nil, errors.Wrap(errors.ErrStorage, "failed to read request queue", err)
	}
	if !ok {
		return nil, nil
	}

	var items []models.QueueItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		// A corrupt collection degrades to empty rather than wedging the
		// queue forever.
		q.log.Warn("Corrupt request queue record, resetting",
			map[string]interface{}{"error": err.Error()})
		return nil, nil
	}
	return items, nil
}

// save persists the collection. Caller must hold the mutex.
func (q *RequestQueue) save(ctx context.Context, items []models.QueueItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "failed to encode request queue", err)
	}
	if err := q.store.Set(ctx, storageKey, string(data)); err != nil {
		q.log.Error("Failed to persist request queue", err)
		return errors.Wrap(errors.ErrStorage, "failed to persist request queue", err)
	}
	return nil
}

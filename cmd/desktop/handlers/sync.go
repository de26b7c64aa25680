package handlers

import (
	"net/http"

	"github.com/tkwok/vidsum/core/internal/models"
)

// syncStatus is the GET /api/sync/status response.
type syncStatus struct {
	Status       string               `json:"status"`
	LastSync     interface{}          `json:"last_sync"`
	LastError    string               `json:"last_error,omitempty"`
	QueueItems   []models.QueueItem   `json:"queue_items"`
	SyncLogItems []models.SyncLogEntry `json:"sync_log_items"`
	Counters     map[string]int64     `json:"counters,omitempty"`
}

// GetSyncStatus handles GET /api/sync/status.
func (h *Handler) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	status := syncStatus{
		Status:       string(h.Engine.Status()),
		QueueItems:   h.Queue.List(r.Context()),
		SyncLogItems: h.SyncLog.List(r.Context()),
		Counters:     h.Recorder.Snapshot(),
	}
	if ts := h.Engine.LastSync(); ts != nil {
		status.LastSync = ts
	}
	if err := h.Engine.LastError(); err != nil {
		status.LastError = err.Error()
	}
	if status.QueueItems == nil {
		status.QueueItems = []models.QueueItem{}
	}
	if status.SyncLogItems == nil {
		status.SyncLogItems = []models.SyncLogEntry{}
	}
	writeJSON(w, http.StatusOK, status)
}

// TriggerSync handles POST /api/sync. It runs a full drain pass and
// returns the result.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	result, err := h.Engine.Sync(r.Context())
	if err != nil && result == nil {
		writeError(w, err)
		return
	}
	// An incomplete pass still reports its result; the leftovers are
	// visible in the queue and log.
	writeJSON(w, http.StatusOK, result)
}

// ClearQueue handles DELETE /api/sync/queue.
func (h *Handler) ClearQueue(w http.ResponseWriter, r *http.Request) {
	if err := h.Queue.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Queue cleared"})
}

// ClearSyncLog handles DELETE /api/sync/log.
func (h *Handler) ClearSyncLog(w http.ResponseWriter, r *http.Request) {
	if err := h.SyncLog.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Sync log cleared"})
}

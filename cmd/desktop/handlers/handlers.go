// Package handlers provides the localhost REST surface the desktop UI
// talks to.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tkwok/vidsum/core/internal/cache"
	"github.com/tkwok/vidsum/core/internal/errors"
	"github.com/tkwok/vidsum/core/internal/logging"
	"github.com/tkwok/vidsum/core/internal/queue"
	"github.com/tkwok/vidsum/core/internal/store"
	"github.com/tkwok/vidsum/core/internal/sync"
	"github.com/tkwok/vidsum/core/internal/synclog"
	"github.com/tkwok/vidsum/core/internal/telemetry"
)

// Handler bundles the core components the REST surface exposes.
type Handler struct {
	Engine     *sync.Engine
	Store      *store.SummaryStore
	Queue      *queue.RequestQueue
	SyncLog    *synclog.SyncLog
	Thumbnails *cache.ThumbnailCache
	Recorder   *telemetry.Recorder
	Log        *logging.Logger
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an application error to an HTTP response.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrValidation), errors.Is(err, errors.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrNetwork):
		status = http.StatusBadGateway
	case errors.IsCancelled(err):
		// Client went away; the status is moot but 499 is conventional.
		status = 499
	}
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}

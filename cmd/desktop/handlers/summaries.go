package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tkwok/vidsum/core/internal/errors"
	"github.com/tkwok/vidsum/core/internal/export"
	"github.com/tkwok/vidsum/core/internal/models"
)

// ListSummaries handles GET /api/summaries.
// History always reads from the local mirror, so it works offline.
func (h *Handler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	summaries := h.Store.List(r.Context())
	if summaries == nil {
		summaries = []models.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// GetSummary handles GET /api/summaries/{id}.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	summary := h.Store.Get(r.Context(), id)
	if summary == nil {
		writeError(w, errors.New(errors.ErrNotFound, "summary not found: "+id))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// CreateSummary handles POST /api/summaries. Offline requests return the
// queued placeholder with is_queued=true and 202.
func (h *Handler) CreateSummary(w http.ResponseWriter, r *http.Request) {
	var req models.SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrInvalid, "invalid request body", err))
		return
	}

	summary, err := h.Engine.GenerateSummary(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if summary.IsQueued {
		status = http.StatusAccepted
	}
	writeJSON(w, status, summary)
}

// starRequest is the body for SetStarred.
type starRequest struct {
	IsStarred bool   `json:"is_starred"`
	VideoID   string `json:"video_id,omitempty"`
}

// SetStarred handles PUT /api/summaries/{id}/star.
func (h *Handler) SetStarred(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req starRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrInvalid, "invalid request body", err))
		return
	}

	summary, err := h.Engine.SetStarred(r.Context(), id, req.VideoID, req.IsStarred)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// DeleteSummary handles DELETE /api/summaries/{id}.
func (h *Handler) DeleteSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	videoID := r.URL.Query().Get("video_id")

	if err := h.Engine.DeleteSummary(r.Context(), id, videoID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Summary deleted successfully"})
}

// ExportSummary handles GET /api/summaries/{id}/export?format=html|markdown.
func (h *Handler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	summary := h.Store.Get(r.Context(), id)
	if summary == nil {
		writeError(w, errors.New(errors.ErrNotFound, "summary not found: "+id))
		return
	}

	switch r.URL.Query().Get("format") {
	case "html":
		html, err := export.RenderHTML(summary)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	default:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(export.RenderMarkdown(summary)))
	}
}

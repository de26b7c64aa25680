package handlers

import "net/http"

// GetCacheSize handles GET /api/cache. The size is recomputed by a
// directory scan, which also reconciles the bookkeeping estimate.
func (h *Handler) GetCacheSize(w http.ResponseWriter, r *http.Request) {
	size := h.Thumbnails.GetCacheSize(r.Context())
	writeJSON(w, http.StatusOK, map[string]int64{"thumbnails_size": size})
}

// ClearCache handles DELETE /api/cache.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	ok := h.Thumbnails.ClearImageCache(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": ok})
}

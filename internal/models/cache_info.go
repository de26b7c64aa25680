package models

import "time"

// CacheInfo tracks approximate local storage usage. Sizes are incremental
// estimates, not authoritative; the thumbnail cache reconciles its figure
// against a directory scan on demand.
type CacheInfo struct {
	SummariesSize  int64 `json:"summaries_size"`
	ThumbnailsSize int64 `json:"thumbnails_size"`
	LastUpdated    int64 `json:"last_updated"` // epoch millis
}

// LastUpdatedTime returns LastUpdated as time.Time.
func (c *CacheInfo) LastUpdatedTime() time.Time {
	return time.UnixMilli(c.LastUpdated)
}

// Touch updates the LastUpdated timestamp.
func (c *CacheInfo) Touch() {
	c.LastUpdated = time.Now().UnixMilli()
}

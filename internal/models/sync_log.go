package models

import "time"

// SyncAction is the closed set of mutations recorded for offline replay.
type SyncAction string

const (
	ActionStar   SyncAction = "star"
	ActionUnstar SyncAction = "unstar"
	ActionDelete SyncAction = "delete"
)

// Valid reports whether the action is a known replayable mutation.
// Unknown values can only appear through corrupted persisted records.
func (a SyncAction) Valid() bool {
	switch a {
	case ActionStar, ActionUnstar, ActionDelete:
		return true
	}
	return false
}

// SyncLogEntry represents a star/unstar/delete mutation made while offline.
// Entries are append/remove only; there is no update-in-place.
type SyncLogEntry struct {
	ID        string     `json:"id"`
	Action    SyncAction `json:"action"`
	VideoID   string     `json:"video_id"`
	SummaryID string     `json:"summary_id"`
	Timestamp int64      `json:"timestamp"` // epoch millis
}

// Time returns the Timestamp as time.Time.
func (e *SyncLogEntry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

package models

import "time"

// QueueStatus represents the lifecycle status of a queued generation request.
// There is no succeeded state; a successful replay removes the item.
type QueueStatus string

const (
	QueueStatusPending    QueueStatus = "pending"
	QueueStatusProcessing QueueStatus = "processing"
	QueueStatusFailed     QueueStatus = "failed"
)

// QueueItem represents a summary-generation request made while offline,
// persisted until it can be replayed against the remote service.
type QueueItem struct {
	RequestID     string        `json:"request_id"`
	URL           string        `json:"url"`
	SummaryType   SummaryType   `json:"summary_type"`
	SummaryLength SummaryLength `json:"summary_length"`
	RequestedAt   int64         `json:"requested_timestamp"` // epoch millis
	Status        QueueStatus   `json:"status"`
	FailureReason string        `json:"failure_reason,omitempty"`
}

// Matches reports whether the item carries the given generation parameters.
func (q *QueueItem) Matches(url string, typ SummaryType, length SummaryLength) bool {
	return q.URL == url && q.SummaryType == typ && q.SummaryLength == length
}

// RequestedTime returns RequestedAt as time.Time.
func (q *QueueItem) RequestedTime() time.Time {
	return time.UnixMilli(q.RequestedAt)
}

// Package models provides data model definitions for the Vidsum Core.
package models

import "time"

// SummaryType identifies the shape of a generated summary.
type SummaryType string

const (
	TypeBrief    SummaryType = "Brief"
	TypeDetailed SummaryType = "Detailed"
	TypeKeyPoint SummaryType = "Key Point"
	TypeChapters SummaryType = "Chapters"
)

// SummaryLength identifies the target length of a generated summary.
type SummaryLength string

const (
	LengthShort  SummaryLength = "Short"
	LengthMedium SummaryLength = "Medium"
	LengthLong   SummaryLength = "Long"
)

// Summary represents a generated video summary, either confirmed by the
// remote service or synthesized locally while offline (IsQueued=true).
type Summary struct {
	ID                 string        `json:"id"`
	VideoURL           string        `json:"video_url"`
	VideoID            string        `json:"video_id,omitempty"`
	VideoTitle         string        `json:"video_title,omitempty"`
	VideoThumbnailURL  string        `json:"video_thumbnail_url,omitempty"`
	SummaryText        string        `json:"summary_text"`
	SummaryType        SummaryType   `json:"summary_type"`
	SummaryLength      SummaryLength `json:"summary_length"`
	TranscriptLanguage string        `json:"transcript_language,omitempty"`
	IsStarred          bool          `json:"is_starred"`
	IsQueued           bool          `json:"is_queued,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// SummaryRequest holds the generation parameters sent to the remote service.
type SummaryRequest struct {
	URL           string        `json:"url"`
	SummaryType   SummaryType   `json:"summary_type"`
	SummaryLength SummaryLength `json:"summary_length"`
}

// SummaryUpdate holds the mutable generation parameters of an existing summary.
type SummaryUpdate struct {
	SummaryType   SummaryType   `json:"summary_type,omitempty"`
	SummaryLength SummaryLength `json:"summary_length,omitempty"`
}

// Touch updates the UpdatedAt timestamp.
func (s *Summary) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

package domain

import "time"

// InfographicStatus enumerates the per-video generation lifecycle.
type InfographicStatus string

const (
	InfographicStatusProcessing InfographicStatus = "PROCESSING"
	InfographicStatusCompleted  InfographicStatus = "COMPLETED"
	InfographicStatusFailed     InfographicStatus = "FAILED"
)

// Infographic is the generated summary image plus its supporting texts for
// one video (1:1 by video id). ImageURL stays empty until completion and is
// left untouched on failure. Rows are never deleted; a COMPLETED row
// short-circuits re-generation.
type Infographic struct {
	ID             string
	VideoID        string
	ImageURL       string
	AnalysisReport string
	DesignPrompt   string
	Status         InfographicStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

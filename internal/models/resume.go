package models

import (
	"io"
	"time"
)

// AnalysisResult is the normalized output of one résumé analysis.
type AnalysisResult struct {
	Summary       string   `json:"summary"`
	Strengths     []string `json:"strengths"`
	Improvements  []string `json:"improvements"`
	TalkingPoints []string `json:"talkingPoints"`
	Score         int      `json:"score"`
}

// QuotaRecord marks an identity as having used its single analysis.
type QuotaRecord struct {
	Identity   string    `json:"identity" db:"identity"`
	AnalyzedAt time.Time `json:"analyzedAt" db:"analyzed_at"`
	FileName   string    `json:"fileName" db:"file_name"`
}

// AnalyzeRequest is what the transport hands to the orchestrator. Open is nil
// when the request carried no file.
type AnalyzeRequest struct {
	Identity    string
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

func (r *AnalyzeRequest) HasFile() bool {
	return r.Open != nil
}

type AnalyzeResponse struct {
	Success  bool            `json:"success"`
	Analysis *AnalysisResult `json:"analysis"`
	FileName string          `json:"fileName"`
}

type StatusResponse struct {
	HasAnalyzed bool       `json:"hasAnalyzed"`
	AnalyzedAt  *time.Time `json:"analyzedAt,omitempty"`
	FileName    string     `json:"fileName,omitempty"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type ErrorResponse struct {
	Error       string `json:"error"`
	HasAnalyzed bool   `json:"hasAnalyzed,omitempty"`
}

// AnalysisEvent is published after an analysis has been committed.
type AnalysisEvent struct {
	Identity   string    `json:"identity"`
	FileName   string    `json:"fileName"`
	Score      int       `json:"score"`
	AnalyzedAt time.Time `json:"analyzedAt"`
}

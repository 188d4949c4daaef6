package jobs

import (
	"time"

	"studyhub-backend/internal/documents"
)

// Status is a job's coarse lifecycle position.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the job will not change again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks one asynchronous document processing run.
type Job struct {
	ID          string                   `json:"id"`
	UserID      string                   `json:"userId"`
	Status      Status                   `json:"status"`
	Stage       string                   `json:"stage,omitempty"`
	Chunk       int                      `json:"chunk,omitempty"`
	TotalChunks int                      `json:"totalChunks,omitempty"`
	Request     documents.ProcessRequest `json:"request"`

	DocumentID      string   `json:"documentId,omitempty"`
	FlashcardsCount int      `json:"flashcardsCount,omitempty"`
	QuizCount       int      `json:"quizCount,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
	FailedStage     string   `json:"failedStage,omitempty"`
	ErrorCode       string   `json:"errorCode,omitempty"`
	ErrorMessage    string   `json:"errorMessage,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

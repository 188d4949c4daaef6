package documents

import (
	"time"

	"studyhub-backend/internal/study"
)

// Document is a processed upload with its generated analysis and summary.
type Document struct {
	ID          string
	UserID      string
	SubjectID   string
	Title       string
	FileName    string
	FileSize    int64
	FileType    string
	StorageKey  string
	TextContent string
	Analysis    study.Analysis
	Summary     study.Summary
	Metadata    study.Metadata
	CreatedAt   time.Time
}

// Stats is a document with the number of items generated from it.
type Stats struct {
	Document       Document
	FlashcardCount int
	QuizCount      int
}

package documents

import (
	"time"

	"studyhub-backend/internal/study"
)

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID  string          `json:"documentId"`
	SubjectID   string          `json:"subjectId,omitempty"`
	Title       string          `json:"title"`
	FileName    string          `json:"fileName"`
	FileType    string          `json:"fileType"`
	FileSize    int64           `json:"fileSize"`
	Analysis    *study.Analysis `json:"analysis,omitempty"`
	Summary     *study.Summary  `json:"summary,omitempty"`
	Metadata    study.Metadata  `json:"metadata"`
	TextContent string          `json:"textContent,omitempty"`
	UploadedAt  time.Time       `json:"uploadedAt"`
}

// ProcessResponse is returned by a synchronous upload.
type ProcessResponse struct {
	Document        DocumentResponse     `json:"document"`
	Flashcards      []study.Flashcard    `json:"flashcards"`
	Quiz            []study.QuizQuestion `json:"quiz"`
	FlashcardsCount int                  `json:"flashcardsCount"`
	QuizCount       int                  `json:"quizCount"`
	Warnings        []string             `json:"warnings,omitempty"`
}

// StatsResponse pairs a document with its generated item counts.
type StatsResponse struct {
	Document       DocumentResponse `json:"document"`
	FlashcardCount int              `json:"flashcardCount"`
	QuizCount      int              `json:"quizCount"`
}

// AcceptedResponse is returned when processing continues in the background.
type AcceptedResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// toResponse renders the list view; detail adds the generated content.
func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID: doc.ID,
		SubjectID:  doc.SubjectID,
		Title:      doc.Title,
		FileName:   doc.FileName,
		FileType:   doc.FileType,
		FileSize:   doc.FileSize,
		Metadata:   doc.Metadata,
		UploadedAt: doc.CreatedAt,
	}
}

func toDetailResponse(doc Document) DocumentResponse {
	resp := toResponse(doc)
	resp.Analysis = &doc.Analysis
	resp.Summary = &doc.Summary
	resp.TextContent = doc.TextContent
	return resp
}

func toProcessResponse(res SaveResult) ProcessResponse {
	resp := ProcessResponse{
		Document:        toDetailResponse(res.Document),
		Flashcards:      res.Result.Flashcards,
		Quiz:            res.Result.Quiz,
		FlashcardsCount: res.FlashcardsCount,
		QuizCount:       res.QuizCount,
	}
	for _, w := range res.Warnings {
		resp.Warnings = append(resp.Warnings, w.String())
	}
	return resp
}

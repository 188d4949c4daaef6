package quizzes

import (
	"time"

	"studyhub-backend/internal/study"
)

// Question is a stored multiple-choice question.
type Question struct {
	ID         string
	UserID     string
	SubjectID  string
	DocumentID string
	study.QuizQuestion
	CreatedAt time.Time
}

// FromStudy attaches ownership to generated questions.
func FromStudy(userID, subjectID, documentID string, qs []study.QuizQuestion, newID func() string, now time.Time) []Question {
	out := make([]Question, 0, len(qs))
	for _, q := range qs {
		out = append(out, Question{
			ID:           newID(),
			UserID:       userID,
			SubjectID:    subjectID,
			DocumentID:   documentID,
			QuizQuestion: q,
			CreatedAt:    now,
		})
	}
	return out
}

package flashcards

import (
	"time"

	"studyhub-backend/internal/study"
)

// Flashcard is a stored flashcard tied to the document it came from.
type Flashcard struct {
	ID         string
	UserID     string
	SubjectID  string
	DocumentID string
	study.Flashcard
	CreatedAt time.Time
}

// FromStudy attaches ownership to generated cards.
func FromStudy(userID, subjectID, documentID string, cards []study.Flashcard, newID func() string, now time.Time) []Flashcard {
	out := make([]Flashcard, 0, len(cards))
	for _, c := range cards {
		out = append(out, Flashcard{
			ID:         newID(),
			UserID:     userID,
			SubjectID:  subjectID,
			DocumentID: documentID,
			Flashcard:  c,
			CreatedAt:  now,
		})
	}
	return out
}

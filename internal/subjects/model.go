package subjects

import "time"

// Subject groups documents, flashcards and quiz questions for a user.
type Subject struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Color       string
	CreatedAt   time.Time
}

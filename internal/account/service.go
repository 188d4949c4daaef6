package account

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"studyhub-backend/internal/apperr"
	"studyhub-backend/internal/shared/telemetry"
)

// GuestPrefix marks user IDs created from the X-Guest-Id header.
const GuestPrefix = "guest:"

// ErrInvalidClaim rejects a claim that is not guest to signed-in user.
var ErrInvalidClaim = fmt.Errorf("%w: guest claim requires a guest source and a signed-in target", apperr.ErrValidation)

// Claimer moves one collection from a guest to a signed-in user.
type Claimer interface {
	ClaimGuest(ctx context.Context, guestUserID, userID string) (int, error)
}

// Collections are the per-collection claimers used without a database.
type Collections struct {
	Subjects   Claimer
	Documents  Claimer
	Flashcards Claimer
	Quizzes    Claimer
}

// ClaimResult counts the records moved per collection.
type ClaimResult struct {
	Subjects      int `json:"subjects"`
	Documents     int `json:"documents"`
	Flashcards    int `json:"flashcards"`
	QuizQuestions int `json:"quizQuestions"`
}

// Service transfers guest-owned study material to a signed-in account.
type Service struct {
	DB          *sql.DB // when set, one transaction covers every table
	Collections Collections
}

// NewService constructs a Service. db may be nil.
func NewService(db *sql.DB, collections Collections) *Service {
	return &Service{DB: db, Collections: collections}
}

// ClaimGuest moves subjects, documents, flashcards and quiz questions.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, userID string) (ClaimResult, error) {
	if !strings.HasPrefix(guestUserID, GuestPrefix) || strings.TrimSpace(userID) == "" || strings.HasPrefix(userID, GuestPrefix) {
		return ClaimResult{}, ErrInvalidClaim
	}

	var (
		res ClaimResult
		err error
	)
	if s.DB != nil {
		res, err = claimWithTx(ctx, s.DB, guestUserID, userID)
	} else {
		res, err = s.claimEach(ctx, guestUserID, userID)
	}
	if err != nil {
		return ClaimResult{}, fmt.Errorf("%w: claim guest data: %w", apperr.ErrStorage, err)
	}
	telemetry.Info("account.guest_claimed", map[string]any{
		"user_id":        userID,
		"subjects":       res.Subjects,
		"documents":      res.Documents,
		"flashcards":     res.Flashcards,
		"quiz_questions": res.QuizQuestions,
	})
	return res, nil
}

var claimTables = []string{"subjects", "documents", "flashcards", "quiz_questions"}

func claimWithTx(ctx context.Context, db *sql.DB, guestUserID, userID string) (ClaimResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ClaimResult{}, err
	}
	defer tx.Rollback()

	counts := make([]int, len(claimTables))
	for i, table := range claimTables {
		r, err := tx.ExecContext(ctx, `UPDATE `+table+` SET user_id = $1 WHERE user_id = $2`, userID, guestUserID)
		if err != nil {
			return ClaimResult{}, fmt.Errorf("%s: %w", table, err)
		}
		n, _ := r.RowsAffected()
		counts[i] = int(n)
	}
	if err := tx.Commit(); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{Subjects: counts[0], Documents: counts[1], Flashcards: counts[2], QuizQuestions: counts[3]}, nil
}

func (s *Service) claimEach(ctx context.Context, guestUserID, userID string) (ClaimResult, error) {
	var res ClaimResult
	steps := []struct {
		claimer Claimer
		out     *int
	}{
		{s.Collections.Subjects, &res.Subjects},
		{s.Collections.Documents, &res.Documents},
		{s.Collections.Flashcards, &res.Flashcards},
		{s.Collections.Quizzes, &res.QuizQuestions},
	}
	for _, step := range steps {
		if step.claimer == nil {
			continue
		}
		n, err := step.claimer.ClaimGuest(ctx, guestUserID, userID)
		if err != nil {
			return res, err
		}
		*step.out = n
	}
	return res, nil
}

package flashcards

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const flashcardColumns = `id, user_id, subject_id, document_id, question, answer, category, difficulty, concept, created_at`

// CreateBatch inserts all cards in one statement.
func (r *PGRepo) CreateBatch(ctx context.Context, cards []Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	const perRow = 10
	placeholders := make([]string, 0, len(cards))
	args := make([]any, 0, len(cards)*perRow)
	for i, f := range cards {
		base := i * perRow
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10))
		args = append(args,
			f.ID,
			f.UserID,
			nullString(f.SubjectID),
			nullString(f.DocumentID),
			f.Question,
			f.Answer,
			nullString(f.Category),
			nullString(f.Difficulty),
			nullString(f.Concept),
			f.CreatedAt,
		)
	}
	query := `INSERT INTO flashcards (` + flashcardColumns + `) VALUES ` + strings.Join(placeholders, ", ")
	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}

func (r *PGRepo) ListBySubject(ctx context.Context, userID, subjectID string) ([]Flashcard, error) {
	query := `SELECT ` + flashcardColumns + ` FROM flashcards WHERE user_id = $1 AND subject_id = $2 ORDER BY created_at, id`
	return r.list(ctx, query, userID, subjectID)
}

func (r *PGRepo) ListByDocument(ctx context.Context, userID, documentID string) ([]Flashcard, error) {
	query := `SELECT ` + flashcardColumns + ` FROM flashcards WHERE user_id = $1 AND document_id = $2 ORDER BY created_at, id`
	return r.list(ctx, query, userID, documentID)
}

func (r *PGRepo) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM flashcards WHERE document_id = $1`, documentID).Scan(&n)
	return n, err
}

func (r *PGRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM flashcards WHERE document_id = $1`, documentID)
	return err
}

func (r *PGRepo) list(ctx context.Context, query string, args ...any) ([]Flashcard, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Flashcard, 0)
	for rows.Next() {
		var f Flashcard
		var subjectID, documentID, category, difficulty, concept sql.NullString
		if err := rows.Scan(
			&f.ID,
			&f.UserID,
			&subjectID,
			&documentID,
			&f.Question,
			&f.Answer,
			&category,
			&difficulty,
			&concept,
			&f.CreatedAt,
		); err != nil {
			return nil, err
		}
		f.SubjectID = subjectID.String
		f.DocumentID = documentID.String
		f.Category = category.String
		f.Difficulty = difficulty.String
		f.Concept = concept.String
		out = append(out, f)
	}
	return out, rows.Err()
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

var _ Repo = (*PGRepo)(nil)

package quizzes

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PGRepo implements Repo using Postgres. Options are stored as four columns.
type PGRepo struct {
	DB *sql.DB
}

const questionColumns = `id, user_id, subject_id, document_id, question, option_a, option_b, option_c, option_d, correct_answer, explanation, difficulty, category, created_at`

func (r *PGRepo) CreateBatch(ctx context.Context, qs []Question) error {
	if len(qs) == 0 {
		return nil
	}
	const perRow = 14
	placeholders := make([]string, 0, len(qs))
	args := make([]any, 0, len(qs)*perRow)
	for i, q := range qs {
		marks := make([]string, perRow)
		for j := range marks {
			marks[j] = fmt.Sprintf("$%d", i*perRow+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(marks, ", ")+")")
		args = append(args,
			q.ID,
			q.UserID,
			nullString(q.SubjectID),
			nullString(q.DocumentID),
			q.Question,
			q.Options.A,
			q.Options.B,
			q.Options.C,
			q.Options.D,
			q.CorrectAnswer,
			nullString(q.Explanation),
			nullString(q.Difficulty),
			nullString(q.Category),
			q.CreatedAt,
		)
	}
	query := `INSERT INTO quiz_questions (` + questionColumns + `) VALUES ` + strings.Join(placeholders, ", ")
	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}

func (r *PGRepo) ListBySubject(ctx context.Context, userID, subjectID string) ([]Question, error) {
	query := `SELECT ` + questionColumns + ` FROM quiz_questions WHERE user_id = $1 AND subject_id = $2 ORDER BY created_at, id`
	return r.list(ctx, query, userID, subjectID)
}

func (r *PGRepo) ListByDocument(ctx context.Context, userID, documentID string) ([]Question, error) {
	query := `SELECT ` + questionColumns + ` FROM quiz_questions WHERE user_id = $1 AND document_id = $2 ORDER BY created_at, id`
	return r.list(ctx, query, userID, documentID)
}

func (r *PGRepo) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM quiz_questions WHERE document_id = $1`, documentID).Scan(&n)
	return n, err
}

func (r *PGRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM quiz_questions WHERE document_id = $1`, documentID)
	return err
}

func (r *PGRepo) list(ctx context.Context, query string, args ...any) ([]Question, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Question, 0)
	for rows.Next() {
		var q Question
		var subjectID, documentID, explanation, difficulty, category sql.NullString
		if err := rows.Scan(
			&q.ID,
			&q.UserID,
			&subjectID,
			&documentID,
			&q.Question,
			&q.Options.A,
			&q.Options.B,
			&q.Options.C,
			&q.Options.D,
			&q.CorrectAnswer,
			&explanation,
			&difficulty,
			&category,
			&q.CreatedAt,
		); err != nil {
			return nil, err
		}
		q.SubjectID = subjectID.String
		q.DocumentID = documentID.String
		q.Explanation = explanation.String
		q.Difficulty = difficulty.String
		q.Category = category.String
		out = append(out, q)
	}
	return out, rows.Err()
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

var _ Repo = (*PGRepo)(nil)

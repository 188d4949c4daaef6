package subjects

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const subjectColumns = `id, user_id, name, description, color, created_at`

func (r *PGRepo) Create(ctx context.Context, s Subject) error {
	const query = `
INSERT INTO subjects (id, user_id, name, description, color, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.Name,
		nullString(s.Description),
		nullString(s.Color),
		s.CreatedAt,
	)
	return err
}

func (r *PGRepo) Get(ctx context.Context, userID, id string) (Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE user_id = $1 AND id = $2`
	s, err := scanSubject(r.DB.QueryRowContext(ctx, query, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Subject{}, ErrNotFound
	}
	return s, err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Subject, 0)
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM subjects WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubject(row rowScanner) (Subject, error) {
	var s Subject
	var description, color sql.NullString
	if err := row.Scan(&s.ID, &s.UserID, &s.Name, &description, &color, &s.CreatedAt); err != nil {
		return Subject{}, err
	}
	s.Description = description.String
	s.Color = color.String
	return s, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

var _ Repo = (*PGRepo)(nil)

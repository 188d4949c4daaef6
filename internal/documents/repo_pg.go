package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements DocumentsRepo using Postgres. Analysis, summary and
// metadata are stored as JSONB.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, user_id, subject_id, title, file_name, file_size, file_type, storage_key, text_content, analysis, summary, metadata, created_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    user_id,
    subject_id,
    title,
    file_name,
    file_size,
    file_type,
    storage_key,
    text_content,
    analysis,
    summary,
    metadata,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	analysis, err := json.Marshal(doc.Analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	summary, err := json.Marshal(doc.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		nullString(doc.SubjectID),
		doc.Title,
		doc.FileName,
		doc.FileSize,
		doc.FileType,
		nullString(doc.StorageKey),
		doc.TextContent,
		analysis,
		summary,
		metadata,
		doc.CreatedAt,
	)
	return err
}

// Get fetches a document by ID for a user.
func (r *PGRepo) Get(ctx context.Context, userID, id string) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1 AND id = $2 LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUser lists documents ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID, subjectID string) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1`
	args := []any{userID}
	if subjectID != "" {
		query += ` AND subject_id = $2`
		args = append(args, subjectID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Delete removes a document; flashcards and quiz questions cascade.
func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE user_id = $1 AND id = $2`, userID, id)
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

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var subjectID, storageKey sql.NullString
	var analysis, summary, metadata []byte
	if err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&subjectID,
		&doc.Title,
		&doc.FileName,
		&doc.FileSize,
		&doc.FileType,
		&storageKey,
		&doc.TextContent,
		&analysis,
		&summary,
		&metadata,
		&doc.CreatedAt,
	); err != nil {
		return Document{}, err
	}
	doc.SubjectID = subjectID.String
	doc.StorageKey = storageKey.String
	for _, col := range []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"analysis", analysis, &doc.Analysis},
		{"summary", summary, &doc.Summary},
		{"metadata", metadata, &doc.Metadata},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return Document{}, fmt.Errorf("decode %s: %w", col.name, err)
		}
	}
	return doc, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

var _ DocumentsRepo = (*PGRepo)(nil)

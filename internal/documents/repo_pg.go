package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    owner_id,
    title,
    category,
    doc_date,
    content,
    tags,
    file_name,
    file_path,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	tags, err := marshalTags(doc.Tags)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.OwnerID,
		doc.Title,
		doc.Category,
		doc.Date,
		doc.Content,
		tags,
		doc.FileName,
		doc.FilePath,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// GetByOwnerAndID fetches a document by id, scoped to the owner.
func (r *PGRepo) GetByOwnerAndID(ctx context.Context, ownerID, id string) (Document, error) {
	const query = `
SELECT id, owner_id, title, category, doc_date, content, tags, file_name, file_path, created_at, updated_at
FROM documents
WHERE owner_id = $1 AND id = $2
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByOwner lists the owner's documents, newest first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	const query = `
SELECT id, owner_id, title, category, doc_date, content, tags, file_name, file_path, created_at, updated_at
FROM documents
WHERE owner_id = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete removes the owner's document with the given id.
func (r *PGRepo) Delete(ctx context.Context, ownerID, id string) error {
	const query = `
DELETE FROM documents
WHERE owner_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, ownerID, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var tags []byte
	err := row.Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.Title,
		&doc.Category,
		&doc.Date,
		&doc.Content,
		&tags,
		&doc.FileName,
		&doc.FilePath,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	doc.Tags = unmarshalTags(tags)
	return doc, nil
}

func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

func unmarshalTags(raw []byte) []string {
	tags := []string{}
	if len(raw) == 0 {
		return tags
	}
	if err := json.Unmarshal(raw, &tags); err != nil {
		return []string{}
	}
	return tags
}

var _ Repo = (*PGRepo)(nil)

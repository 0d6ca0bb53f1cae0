package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docmirror/internal/core/domain"
	"github.com/custodia-labs/docmirror/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// metadataColumn is the JSON shape of the metadata column.
type metadataColumn struct {
	Author    string            `json:"author,omitempty"`
	CreatedAt *time.Time        `json:"createdAt,omitempty"`
	PageCount int               `json:"pageCount,omitempty"`
	Language  string            `json:"language,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// entityColumn is the JSON shape of one element of the entities column.
type entityColumn struct {
	Type       domain.EntityType `json:"type"`
	Text       string            `json:"text"`
	Start      int               `json:"start"`
	End        int               `json:"end"`
	Confidence float64           `json:"confidence"`
}

const documentColumns = `hash, title, text, mime_type, format, metadata, entities, summary, embedding, normalized_at`

// SaveDocument stores or replaces a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.NormalizedDocument) error {
	if doc == nil || doc.Hash == "" {
		return domain.NewError(domain.KindInvalidInput, "document without hash")
	}

	metadataJSON, err := json.Marshal(metadataColumn{
		Author:    doc.Metadata.Author,
		CreatedAt: doc.Metadata.CreatedAt,
		PageCount: doc.Metadata.PageCount,
		Language:  doc.Metadata.Language,
		Extra:     doc.Metadata.Extra,
	})
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	entities := make([]entityColumn, len(doc.Entities))
	for i, e := range doc.Entities {
		entities[i] = entityColumn(e)
	}
	entitiesJSON, err := json.Marshal(entities)
	if err != nil {
		return fmt.Errorf("marshalling entities: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			title = excluded.title,
			text = excluded.text,
			mime_type = excluded.mime_type,
			format = excluded.format,
			metadata = excluded.metadata,
			entities = excluded.entities,
			summary = excluded.summary,
			embedding = excluded.embedding,
			normalized_at = excluded.normalized_at
	`, doc.Hash, doc.Title, doc.Text, doc.MIMEType, doc.Format,
		string(metadataJSON), string(entitiesJSON), doc.Summary,
		float32SliceToBytes(doc.Embedding), unixNano(doc.NormalizedAt))
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by hash.
func (s *documentStore) GetDocument(ctx context.Context, hash string) (*domain.NormalizedDocument, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE hash = ?`, hash)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.WrapError(domain.KindNotFound, err, "document %s", hash)
	}
	return doc, err
}

// HasDocument reports whether a document with this hash is stored.
func (s *documentStore) HasDocument(ctx context.Context, hash string) (bool, error) {
	var one int
	err := s.store.db.QueryRowContext(ctx, "SELECT 1 FROM documents WHERE hash = ?", hash).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("checking document: %w", err)
	}
	return true, nil
}

// DeleteDocument removes a document.
func (s *documentStore) DeleteDocument(ctx context.Context, hash string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE hash = ?", hash); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListDocuments returns all stored documents ordered by hash.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.NormalizedDocument, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY hash`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.NormalizedDocument //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// scanDocument scans one documents row. sql.ErrNoRows is returned
// unwrapped so callers can map it.
func scanDocument(row scanner) (*domain.NormalizedDocument, error) {
	var (
		doc          domain.NormalizedDocument
		metadataJSON string
		entitiesJSON string
		embedding    []byte
		normalizedAt int64
	)
	err := row.Scan(&doc.Hash, &doc.Title, &doc.Text, &doc.MIMEType, &doc.Format,
		&metadataJSON, &entitiesJSON, &doc.Summary, &embedding, &normalizedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	var meta metadataColumn
	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &meta); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata of %s: %w", doc.Hash, err)
		}
	}
	doc.Metadata = domain.Metadata{
		Author:    meta.Author,
		CreatedAt: meta.CreatedAt,
		PageCount: meta.PageCount,
		Language:  meta.Language,
		Extra:     meta.Extra,
	}

	var entities []entityColumn
	if entitiesJSON != "" {
		if err := json.Unmarshal([]byte(entitiesJSON), &entities); err != nil {
			return nil, fmt.Errorf("unmarshalling entities of %s: %w", doc.Hash, err)
		}
	}
	for _, e := range entities {
		doc.Entities = append(doc.Entities, domain.Entity(e))
	}

	doc.Embedding = bytesToFloat32Slice(embedding)
	doc.NormalizedAt = fromUnixNano(normalizedAt)
	return &doc, nil
}

// unixNano stores times as integer nanoseconds; the zero time is 0.
func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores documents as JSONB rows keyed by (collection, doc_id).
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool
func (s *Postgres) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the documents table if it does not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			doc_id     TEXT NOT NULL,
			data       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (collection, doc_id)
		)`)
	if err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

func (s *Postgres) marshal(v any) ([]byte, error) {
	resolved := Sanitize(v, func() any { return time.Now().UTC() })
	data, err := json.Marshal(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

// Get returns the document, or a *NotFoundError when it does not exist.
func (s *Postgres) Get(ctx context.Context, collection, id string) (Document, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND doc_id = $2`,
		collection, id,
	).Scan(&data)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &NotFoundError{Collection: collection, ID: id}
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

// Set writes the document verbatim, replacing any existing document.
func (s *Postgres) Set(ctx context.Context, collection, id string, doc Document) error {
	data, err := s.marshal(doc)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, doc_id, data)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (collection, doc_id) DO UPDATE SET data = $3, updated_at = NOW()`,
		collection, id, data,
	)
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update merges top-level fields into an existing document.
func (s *Postgres) Update(ctx context.Context, collection, id string, fields Document) error {
	data, err := s.marshal(fields)
	if err != nil {
		return err
	}

	result, err := s.pool.Exec(ctx,
		`UPDATE documents SET data = data || $3, updated_at = NOW()
		 WHERE collection = $1 AND doc_id = $2`,
		collection, id, data,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if result.RowsAffected() == 0 {
		return &NotFoundError{Collection: collection, ID: id}
	}
	return nil
}

// UpdateFieldPath sets a single field addressed by a one-level dotted path,
// creating the parent object when absent.
func (s *Postgres) UpdateFieldPath(ctx context.Context, collection, id, path string, value any) error {
	data, err := s.marshal(value)
	if err != nil {
		return err
	}

	parts := strings.SplitN(path, ".", 2)
	if len(parts) == 1 {
		result, err := s.pool.Exec(ctx,
			`UPDATE documents
			 SET data = jsonb_set(data, $3::text[], $4::jsonb, true), updated_at = NOW()
			 WHERE collection = $1 AND doc_id = $2`,
			collection, id, []string{path}, data,
		)
		if err != nil {
			return fmt.Errorf("failed to update field %s on %s/%s: %w", path, collection, id, err)
		}
		if result.RowsAffected() == 0 {
			return &NotFoundError{Collection: collection, ID: id}
		}
		return nil
	}

	// Ensure the parent exists as an object before setting the leaf, so the
	// nested jsonb_set has somewhere to land.
	result, err := s.pool.Exec(ctx,
		`UPDATE documents
		 SET data = jsonb_set(
			CASE WHEN jsonb_typeof(data #> $3::text[]) = 'object' THEN data
			     ELSE jsonb_set(data, $3::text[], '{}'::jsonb, true) END,
			$4::text[], $5::jsonb, true),
		     updated_at = NOW()
		 WHERE collection = $1 AND doc_id = $2`,
		collection, id, []string{parts[0]}, parts, data,
	)
	if err != nil {
		return fmt.Errorf("failed to update field %s on %s/%s: %w", path, collection, id, err)
	}
	if result.RowsAffected() == 0 {
		return &NotFoundError{Collection: collection, ID: id}
	}
	return nil
}

// Stream returns every document in the collection matching the filter.
func (s *Postgres) Stream(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	query := `SELECT data FROM documents WHERE collection = $1`
	args := []any{collection}
	if filter.Field != "" {
		query += ` AND data->>$2 = $3`
		args = append(args, filter.Field, filter.Equals)
	}
	query += ` ORDER BY doc_id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to stream %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan %s document: %w", collection, err)
		}
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s document: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Increment atomically adds delta to a numeric field, treating a missing
// field as zero.
func (s *Postgres) Increment(ctx context.Context, collection, id, field string, delta int) error {
	result, err := s.pool.Exec(ctx,
		`UPDATE documents
		 SET data = jsonb_set(data, $3::text[],
			to_jsonb(COALESCE((data ->> $4)::numeric, 0) + $5), true),
		     updated_at = NOW()
		 WHERE collection = $1 AND doc_id = $2`,
		collection, id, []string{field}, field, delta,
	)
	if err != nil {
		return fmt.Errorf("failed to increment %s on %s/%s: %w", field, collection, id, err)
	}
	if result.RowsAffected() == 0 {
		return &NotFoundError{Collection: collection, ID: id}
	}
	return nil
}

// ArrayUnion appends elements to an array field, skipping duplicates.
func (s *Postgres) ArrayUnion(ctx context.Context, collection, id, field string, elems ...any) error {
	data, err := s.marshal(elems)
	if err != nil {
		return err
	}

	result, err := s.pool.Exec(ctx,
		`UPDATE documents
		 SET data = jsonb_set(data, $3::text[],
			(SELECT COALESCE(jsonb_agg(elem), '[]'::jsonb)
			 FROM (SELECT DISTINCT ON (elem) elem
			       FROM jsonb_array_elements(
				       COALESCE(data -> $4, '[]'::jsonb) || $5::jsonb
			       ) WITH ORDINALITY AS t(elem, ord)
			       ORDER BY elem, ord) dedup),
			true),
		     updated_at = NOW()
		 WHERE collection = $1 AND doc_id = $2`,
		collection, id, []string{field}, field, data,
	)
	if err != nil {
		return fmt.Errorf("failed to union %s on %s/%s: %w", field, collection, id, err)
	}
	if result.RowsAffected() == 0 {
		return &NotFoundError{Collection: collection, ID: id}
	}
	return nil
}

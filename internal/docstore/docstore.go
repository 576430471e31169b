// Package docstore provides schemaless document storage keyed by collection
// and document ID, with atomic field updates, counters and array unions.
package docstore

import "context"

// Document is the unit of storage: a JSON-compatible map. Values may contain
// nested maps, slices, strings, numbers, booleans and ServerTimestamp.
type Document = map[string]any

// Filter restricts a Stream to documents whose top-level Field equals Equals.
// A zero Filter matches every document in the collection.
type Filter struct {
	Field  string
	Equals string
}

// Store is the persistence contract. Implementations resolve ServerTimestamp
// values to the store-side clock at write time, so callers never stamp
// authoritative times themselves.
type Store interface {
	// Get returns the document, or a *NotFoundError when it does not exist.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Set writes the document verbatim, replacing any existing document.
	Set(ctx context.Context, collection, id string, doc Document) error

	// Update merges the given top-level fields into an existing document.
	// Returns *NotFoundError when the document does not exist.
	Update(ctx context.Context, collection, id string, fields Document) error

	// UpdateFieldPath sets a single field addressed by a one-level dotted
	// path ("studentProfile.interests"). The parent map is created when
	// absent. A path without a dot behaves like a single-field Update.
	UpdateFieldPath(ctx context.Context, collection, id, path string, value any) error

	// Stream returns every document in the collection matching the filter.
	Stream(ctx context.Context, collection string, filter Filter) ([]Document, error)

	// Increment atomically adds delta to a numeric field, treating a
	// missing field as zero.
	Increment(ctx context.Context, collection, id, field string, delta int) error

	// ArrayUnion appends elements to an array field, skipping elements
	// already present. A missing field is treated as an empty array.
	ArrayUnion(ctx context.Context, collection, id, field string, elems ...any) error
}

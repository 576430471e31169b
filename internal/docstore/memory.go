package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Store used by tests and the offline CLI. Documents
// round-trip through JSON on every write, so stored values carry the same
// shapes a JSONB-backed store would return (float64 numbers, RFC3339 times).
type Memory struct {
	mu   sync.Mutex
	data map[string]map[string]Document

	// Now supplies the clock used to resolve ServerTimestamp. Tests
	// override it for deterministic timestamps.
	Now func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]map[string]Document),
		Now:  func() time.Time { return time.Now().UTC() },
	}
}

// Seed inserts a document without sentinel resolution, for test fixtures.
func (m *Memory) Seed(collection, id string, doc Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]Document)
	}
	m.data[collection][id] = doc
}

func (m *Memory) normalize(v any) (any, error) {
	resolved := Sanitize(v, func() any { return m.Now() })
	raw, err := json.Marshal(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to normalize document: %w", err)
	}
	return out, nil
}

func (m *Memory) get(collection, id string) (Document, error) {
	docs, ok := m.data[collection]
	if !ok {
		return nil, &NotFoundError{Collection: collection, ID: id}
	}
	doc, ok := docs[id]
	if !ok {
		return nil, &NotFoundError{Collection: collection, ID: id}
	}
	return doc, nil
}

// Get returns a deep copy of the document, or a *NotFoundError.
func (m *Memory) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.get(collection, id)
	if err != nil {
		return nil, err
	}
	copied, err := m.normalize(doc)
	if err != nil {
		return nil, err
	}
	return copied.(map[string]any), nil
}

// Set writes the document verbatim, replacing any existing document.
func (m *Memory) Set(_ context.Context, collection, id string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	normalized, err := m.normalize(doc)
	if err != nil {
		return err
	}
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]Document)
	}
	m.data[collection][id] = normalized.(map[string]any)
	return nil
}

// Update merges top-level fields into an existing document.
func (m *Memory) Update(_ context.Context, collection, id string, fields Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.get(collection, id)
	if err != nil {
		return err
	}
	normalized, err := m.normalize(fields)
	if err != nil {
		return err
	}
	for k, v := range normalized.(map[string]any) {
		doc[k] = v
	}
	return nil
}

// UpdateFieldPath sets a single field addressed by a one-level dotted path,
// creating the parent object when absent.
func (m *Memory) UpdateFieldPath(_ context.Context, collection, id, path string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.get(collection, id)
	if err != nil {
		return err
	}
	normalized, err := m.normalize(value)
	if err != nil {
		return err
	}

	parts := strings.SplitN(path, ".", 2)
	if len(parts) == 1 {
		doc[path] = normalized
		return nil
	}

	parent, ok := doc[parts[0]].(map[string]any)
	if !ok {
		parent = make(map[string]any)
		doc[parts[0]] = parent
	}
	parent[parts[1]] = normalized
	return nil
}

// Stream returns deep copies of every matching document, ordered by ID.
func (m *Memory) Stream(_ context.Context, collection string, filter Filter) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.data[collection]))
	for id := range m.data[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Document
	for _, id := range ids {
		doc := m.data[collection][id]
		if filter.Field != "" {
			s, ok := doc[filter.Field].(string)
			if !ok || s != filter.Equals {
				continue
			}
		}
		copied, err := m.normalize(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, copied.(map[string]any))
	}
	return out, nil
}

// Increment atomically adds delta to a numeric field, treating a missing
// field as zero.
func (m *Memory) Increment(_ context.Context, collection, id, field string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.get(collection, id)
	if err != nil {
		return err
	}
	current := 0.0
	if n, ok := doc[field].(float64); ok {
		current = n
	}
	doc[field] = current + float64(delta)
	return nil
}

// ArrayUnion appends elements to an array field, skipping duplicates.
func (m *Memory) ArrayUnion(_ context.Context, collection, id, field string, elems ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.get(collection, id)
	if err != nil {
		return err
	}
	existing, _ := doc[field].([]any)

	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		if key, err := json.Marshal(e); err == nil {
			seen[string(key)] = true
		}
	}
	for _, e := range elems {
		normalized, err := m.normalize(e)
		if err != nil {
			return err
		}
		key, err := json.Marshal(normalized)
		if err != nil {
			return fmt.Errorf("failed to marshal array element: %w", err)
		}
		if seen[string(key)] {
			continue
		}
		seen[string(key)] = true
		existing = append(existing, normalized)
	}
	doc[field] = existing
	return nil
}

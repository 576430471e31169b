// Package profile writes user-document updates through a merge discipline
// that protects the nested student profile and keeps task timestamps
// authoritative.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/amckenna/college-planner/internal/docstore"
)

// Collection names.
const (
	UsersCollection = "users"
	TasksCollection = "tasks"
)

// Writer applies structured updates to user documents. All profile mutation
// in the system goes through here; nothing else writes the studentProfile
// key.
type Writer struct {
	store docstore.Store
}

// NewWriter returns a Writer backed by the given store.
func NewWriter(store docstore.Store) *Writer {
	return &Writer{store: store}
}

// Merge applies update to the user document. Behavior depends on the state of
// the document and the shape of the update:
//
//   - Document absent: the update is written verbatim as the initial document.
//   - studentProfile key: merged field by field under the existing profile via
//     one-level dotted paths, so unrelated profile fields survive.
//   - tasks key: the array is replaced wholesale, with every task restamped
//     with write-time createdAt and updatedAt.
//   - Anything else: merged at the top level.
func (w *Writer) Merge(ctx context.Context, userID string, update docstore.Document) error {
	_, err := w.store.Get(ctx, UsersCollection, userID)
	if err != nil {
		var notFound *docstore.NotFoundError
		if errors.As(err, &notFound) {
			if serr := w.store.Set(ctx, UsersCollection, userID, update); serr != nil {
				return fmt.Errorf("failed to create user %s: %w", userID, serr)
			}
			return nil
		}
		return fmt.Errorf("failed to load user %s: %w", userID, err)
	}

	plain := make(docstore.Document)
	for key, value := range update {
		switch key {
		case "studentProfile":
			fields, ok := value.(map[string]any)
			if !ok {
				return fmt.Errorf("studentProfile update for %s is not an object", userID)
			}
			for field, fieldValue := range fields {
				path := "studentProfile." + field
				if err := w.store.UpdateFieldPath(ctx, UsersCollection, userID, path, fieldValue); err != nil {
					return fmt.Errorf("failed to merge %s for user %s: %w", path, userID, err)
				}
			}
		case "tasks":
			plain[key] = restampTasks(value)
		default:
			plain[key] = value
		}
	}

	if len(plain) > 0 {
		if err := w.store.Update(ctx, UsersCollection, userID, plain); err != nil {
			return fmt.Errorf("failed to merge fields for user %s: %w", userID, err)
		}
	}
	return nil
}

// AddTask persists a single task document and links it from the user document,
// returning the new task's ID. Used for one-off tasks created outside a
// roadmap generation run.
func (w *Writer) AddTask(ctx context.Context, userID string, task docstore.Document) (string, error) {
	id := uuid.NewString()

	doc := make(docstore.Document, len(task)+3)
	for k, v := range task {
		doc[k] = v
	}
	doc["id"] = id
	doc["createdAt"] = docstore.ServerTimestamp
	doc["updatedAt"] = docstore.ServerTimestamp

	if err := w.store.Set(ctx, TasksCollection, id, doc); err != nil {
		return "", fmt.Errorf("failed to save task for user %s: %w", userID, err)
	}
	if err := w.store.ArrayUnion(ctx, UsersCollection, userID, "tasks", TasksCollection+"/"+id); err != nil {
		return "", fmt.Errorf("failed to link task to user %s: %w", userID, err)
	}
	if err := w.store.Increment(ctx, UsersCollection, userID, "totalTasks", 1); err != nil {
		return "", fmt.Errorf("failed to bump task count for user %s: %w", userID, err)
	}
	return id, nil
}

// restampTasks replaces the createdAt and updatedAt of every task in the
// array with the write-time sentinel. Client-supplied timestamps are never
// trusted.
func restampTasks(value any) any {
	tasks, ok := value.([]any)
	if !ok {
		return value
	}
	out := make([]any, len(tasks))
	for i, t := range tasks {
		task, ok := t.(map[string]any)
		if !ok {
			out[i] = t
			continue
		}
		stamped := make(map[string]any, len(task)+2)
		for k, v := range task {
			stamped[k] = v
		}
		stamped["createdAt"] = docstore.ServerTimestamp
		stamped["updatedAt"] = docstore.ServerTimestamp
		out[i] = stamped
	}
	return out
}

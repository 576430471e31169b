// Package roadmap generates, validates and persists college application
// roadmaps.
package roadmap

import (
	"fmt"
	"strings"
)

// MissingTargetSchoolsError indicates a generation request with no target
// schools. There is nothing to schedule against.
type MissingTargetSchoolsError struct {
	UserID string
}

func (e *MissingTargetSchoolsError) Error() string {
	return fmt.Sprintf("user %s has no target schools selected", e.UserID)
}

// IncompleteTaskError indicates a generated task missing required fields.
type IncompleteTaskError struct {
	Title   string
	Missing []string
}

func (e *IncompleteTaskError) Error() string {
	title := e.Title
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("task %q is missing required fields: %s", title, strings.Join(e.Missing, ", "))
}

// DeadlineViolationError indicates a school-specific task due after that
// school's application deadline.
type DeadlineViolationError struct {
	TaskTitle string
	School    string
	DueDate   string
	Deadline  string
}

func (e *DeadlineViolationError) Error() string {
	return fmt.Sprintf("task %q for %s is due %s, after the school's deadline %s",
		e.TaskTitle, e.School, e.DueDate, e.Deadline)
}

// CompletionError indicates the completion service itself failed (network
// error, non-2xx, empty response). Distinct from GenerationFailedError so
// callers can fall back to the rule-based strategy.
type CompletionError struct {
	Cause error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion service failed: %v", e.Cause)
}

func (e *CompletionError) Unwrap() error {
	return e.Cause
}

// GenerationFailedError indicates the completion service responded but its
// output could not be turned into a valid roadmap.
type GenerationFailedError struct {
	Cause error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("generated roadmap is unusable: %v", e.Cause)
}

func (e *GenerationFailedError) Unwrap() error {
	return e.Cause
}

// GenerationTimeoutError indicates the completion call exceeded its deadline.
type GenerationTimeoutError struct {
	Cause error
}

func (e *GenerationTimeoutError) Error() string {
	return fmt.Sprintf("roadmap generation timed out: %v", e.Cause)
}

func (e *GenerationTimeoutError) Unwrap() error {
	return e.Cause
}

// PersistenceError indicates the roadmap was generated but could not be saved.
// The roadmap itself is still returned to the caller alongside this error.
type PersistenceError struct {
	UserID string
	Cause  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save roadmap for user %s: %v", e.UserID, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// ConcurrentModificationError indicates a generation request arrived while
// another generation for the same user was still in flight.
type ConcurrentModificationError struct {
	UserID string
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("a roadmap generation for user %s is already in progress", e.UserID)
}

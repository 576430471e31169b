// Package server provides the HTTP REST API for the college planner.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/amckenna/college-planner/internal/docstore"
	"github.com/amckenna/college-planner/internal/roadmap"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Completion outages (503) and timeouts (504) are distinguished so callers
// can tell "retry later" from "the request took too long"; malformed model
// output and failed persistence are server faults (500).
func HTTPStatus(err error) int {
	var (
		emailExists *ErrEmailAlreadyExists
		credentials *ErrInvalidCredentials
		mismatch    *ErrPasswordMismatch
		validation  *ErrValidation

		notFound   *docstore.NotFoundError
		missing    *roadmap.MissingTargetSchoolsError
		conflict   *roadmap.ConcurrentModificationError
		completion *roadmap.CompletionError
		timeout    *roadmap.GenerationTimeoutError
	)

	switch {
	case errors.As(err, &emailExists):
		return http.StatusConflict
	case errors.As(err, &credentials), errors.As(err, &mismatch):
		return http.StatusUnauthorized
	case errors.As(err, &validation), errors.As(err, &missing):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &completion):
		return http.StatusServiceUnavailable
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

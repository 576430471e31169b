package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/amckenna/college-planner/internal/profile"
	"github.com/amckenna/college-planner/internal/roadmap"
	"github.com/amckenna/college-planner/internal/server/middleware"
	"github.com/amckenna/college-planner/internal/types"
)

// CreateProfileRequest is the payload for POST /users: a user document seeded
// without a password, e.g. for accounts authenticated externally. UID is
// optional; one is generated when absent.
type CreateProfileRequest struct {
	UID         string `json:"uid,omitempty"`
	DisplayName string `json:"displayName" validate:"required,min=1"`
	Email       string `json:"email" validate:"required,email"`
}

// handleCreateUser seeds a new user document.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	user, err := s.userService.CreateUser(r.Context(), req.UID, req.DisplayName, req.Email)
	if err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	jsonResponse(w, http.StatusCreated, user)
}

// handleGetUser returns the public view of a user document.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.userService.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// handleMe returns the authenticated user's document.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := s.userService.GetUser(r.Context(), userID)
	if err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// handleUpdateProfile merges student-profile fields into the user document.
// The body is the studentProfile object; fields not present are left alone.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(fields) == 0 {
		errorResponse(w, http.StatusBadRequest, "empty profile update")
		return
	}

	userID := r.PathValue("id")
	if err := s.writer.Merge(r.Context(), userID, map[string]any{"studentProfile": fields}); err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "profile updated"})
}

// handleAddTask creates a single task for a user outside a generation run.
func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var task types.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Client input; any validation failure is the caller's fault.
	if err := roadmap.ValidateTask(task, nil, time.Now().Year()); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := r.PathValue("id")
	if _, err := s.userService.GetUser(r.Context(), userID); err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	doc, err := toDocument(task)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid task")
		return
	}
	delete(doc, "id")
	delete(doc, "createdAt")
	delete(doc, "updatedAt")

	id, err := s.writer.AddTask(r.Context(), userID, doc)
	if err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]string{"id": id, "path": profile.TasksCollection + "/" + id})
}

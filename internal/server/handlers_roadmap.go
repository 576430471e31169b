package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/amckenna/college-planner/internal/roadmap"
	"github.com/amckenna/college-planner/internal/types"
)

// GenerateRoadmapRequest is the payload for POST /roadmap. SchoolInfo is
// optional; when present it overrides the catalog lookup for deadlines.
type GenerateRoadmapRequest struct {
	UserID        string               `json:"userId" validate:"required"`
	TargetSchools []string             `json:"targetSchools"`
	SchoolInfo    []types.SchoolRecord `json:"schoolInfo,omitempty"`
}

// RoadmapResponse is the success envelope for roadmap generation.
type RoadmapResponse struct {
	Success bool           `json:"success"`
	Data    *types.Roadmap `json:"data"`
}

// handleGenerateRoadmap generates, validates and persists a roadmap for a user.
func (s *Server) handleGenerateRoadmap(w http.ResponseWriter, r *http.Request) {
	var req GenerateRoadmapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	result, err := s.roadmapService.Generate(r.Context(), req.UserID, req.TargetSchools, req.SchoolInfo)
	if err != nil {
		// A failed save does not cost the caller their roadmap.
		var persistence *roadmap.PersistenceError
		if errors.As(err, &persistence) && result != nil {
			log.Printf("[ROADMAP] returning unsaved roadmap for user %s: %v", req.UserID, err)
		} else {
			errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
	}

	jsonResponse(w, http.StatusOK, RoadmapResponse{Success: true, Data: result})
}

// OnboardingRequest is the payload for POST /onboarding.
type OnboardingRequest struct {
	UserID  string                `json:"userId" validate:"required"`
	Profile *types.StudentProfile `json:"profile" validate:"required"`
}

// OnboardingResponse reports the merge result and, when target schools were
// provided, the roadmap generated from the fresh profile.
type OnboardingResponse struct {
	Success bool           `json:"success"`
	Roadmap *types.Roadmap `json:"roadmap,omitempty"`
}

// handleOnboarding stores the student profile through the merge writer and
// kicks off roadmap generation when the profile names target schools.
// Generation failure does not fail onboarding.
func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	var req OnboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	profileDoc, err := toDocument(req.Profile)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid profile")
		return
	}

	if err := s.writer.Merge(r.Context(), req.UserID, map[string]any{
		"studentProfile": profileDoc,
		"isOnboarded":    true,
	}); err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	resp := OnboardingResponse{Success: true}

	targets := req.Profile.CollegePreferences.TargetSchools
	if len(targets) > 0 {
		result, err := s.roadmapService.Generate(r.Context(), req.UserID, targets, nil)
		if err != nil && result == nil {
			log.Printf("[ONBOARD] roadmap generation failed for user %s: %v", req.UserID, err)
		} else {
			if err != nil {
				log.Printf("[ONBOARD] roadmap for user %s not saved: %v", req.UserID, err)
			}
			resp.Roadmap = result
		}
	}

	jsonResponse(w, http.StatusOK, resp)
}

// toDocument converts a struct to its stored map form via JSON.
func toDocument(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

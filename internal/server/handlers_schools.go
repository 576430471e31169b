package server

import (
	"fmt"
	"net/http"
)

// handleListSchools returns every school in the catalog.
func (s *Server) handleListSchools(w http.ResponseWriter, r *http.Request) {
	records, err := s.catalog.List(r.Context())
	if err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"schools": records,
		"count":   len(records),
	})
}

// handleGetSchoolByName looks a school up by its exact name, passed as the
// "name" query parameter since school names contain spaces.
func (s *Server) handleGetSchoolByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		errorResponse(w, http.StatusBadRequest, "name query parameter is required")
		return
	}

	record, err := s.catalog.GetByName(r.Context(), name)
	if err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if record == nil {
		errorResponse(w, http.StatusNotFound, fmt.Sprintf("school not found: %s", name))
		return
	}

	jsonResponse(w, http.StatusOK, record)
}

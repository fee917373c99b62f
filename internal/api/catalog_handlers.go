package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Catalog handlers, read-only views of the assessment quiz and career paths

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions := s.catalog.Questions()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"questions": questions,
		"total":     len(questions),
	})
}

func (s *Server) handleListCareers(w http.ResponseWriter, r *http.Request) {
	careers := s.catalog.Careers()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"careers": careers,
		"total":   len(careers),
	})
}

func (s *Server) handleGetCareer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	career := s.catalog.Career(id)
	if career == nil {
		respondError(w, http.StatusNotFound, "not_found", "career not found")
		return
	}
	respondJSON(w, http.StatusOK, career)
}

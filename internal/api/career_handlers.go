package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/terra-clan/careerprep/internal/career"
	"github.com/terra-clan/careerprep/internal/models"
)

func (s *Server) handleAssessment(w http.ResponseWriter, r *http.Request) {
	var req models.AssessmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.career.Assess(r.Context(), &req)
	if err != nil {
		if errors.Is(err, career.ErrAnswersRequired) {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		slog.Error("failed to score assessment", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to score assessment")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.career.Chat(r.Context(), &req)
	if err != nil {
		if errors.Is(err, career.ErrMessageRequired) {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		slog.Error("chat failed", "error", err)
		respondErrorWithData(w, http.StatusBadGateway, aiErrorCode(err), "failed to get a reply",
			models.ChatResponse{Reply: career.UnavailableReply})
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

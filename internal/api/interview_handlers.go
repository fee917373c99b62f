package api

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/careerprep/internal/interview"
	"github.com/terra-clan/careerprep/internal/models"
)

// Stateless interview turn, the caller holds the conversation

func (s *Server) handleInterviewTurn(w http.ResponseWriter, r *http.Request) {
	var req models.InterviewTurnRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.ResumeText) == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "resumeText is required")
		return
	}
	if strings.TrimSpace(req.Role) == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "role is required")
		return
	}

	questionNumber := 1
	if req.QuestionNumber != nil {
		questionNumber = *req.QuestionNumber
	}
	if questionNumber < 1 {
		respondError(w, http.StatusBadRequest, "validation_error", "questionNumber must be at least 1")
		return
	}

	resp, err := s.interviewer.Turn(r.Context(), interview.TurnRequest{
		ResumeText:     req.ResumeText,
		Role:           req.Role,
		History:        req.ConversationHistory,
		QuestionNumber: questionNumber,
	})
	if err != nil {
		slog.Error("interview turn failed", "question_number", questionNumber, "error", err)
		respondError(w, http.StatusBadGateway, aiErrorCode(err), interview.ErrTurnFailed.Error())
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Interview sessions, stored server side

func (s *Server) handleStartInterview(w http.ResponseWriter, r *http.Request) {
	var req models.StartInterviewRequest

	if isJSON(r) {
		if !decodeJSON(w, r, &req) {
			return
		}
	} else {
		text, ok := s.readResumeUpload(w, r)
		if !ok {
			return
		}
		req.ResumeText = text
		req.Role = r.FormValue("role")
	}

	session, err := s.interviews.Start(r.Context(), req.Role, req.ResumeText)
	if err != nil {
		s.respondInterviewError(w, err, nil, "failed to start interview")
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	filters := models.InterviewListFilters{
		Status: models.InterviewStatus(r.URL.Query().Get("status")),
		Limit:  50, // default
		Offset: 0,
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filters.Limit = limit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filters.Offset = offset
		}
	}

	sessions, err := s.interviews.List(r.Context(), filters)
	if err != nil {
		slog.Error("failed to list interviews", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list interviews")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"interviews": sessions,
		"total":      len(sessions),
	})
}

func (s *Server) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	session, err := s.interviews.Get(r.Context(), id)
	if err != nil {
		s.respondInterviewError(w, err, nil, "failed to get interview")
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.SubmitAnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := s.interviews.Submit(r.Context(), id, req.Answer)
	if err != nil {
		s.respondInterviewError(w, err, session, "failed to submit answer")
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleRetryTurn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	session, err := s.interviews.Retry(r.Context(), id)
	if err != nil {
		s.respondInterviewError(w, err, session, "failed to retry turn")
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleSaveResult(w http.ResponseWriter, r *http.Request) {
	var result models.InterviewResult
	if !decodeJSON(w, r, &result) {
		return
	}
	result.InterviewID = chi.URLParam(r, "id")

	if err := s.interviews.SaveResult(r.Context(), &result); err != nil {
		s.respondInterviewError(w, err, nil, "failed to save result")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "result saved",
	})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := s.interviews.Result(r.Context(), id)
	if err != nil {
		s.respondInterviewError(w, err, nil, "failed to get result")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// respondInterviewError maps interview errors to statuses. When the
// session is known it travels in data so the caller can render it.
func (s *Server) respondInterviewError(w http.ResponseWriter, err error, session *models.InterviewSession, fallback string) {
	var data interface{}
	if session != nil {
		data = session
	}

	switch {
	case errors.Is(err, interview.ErrInterviewNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, interview.ErrResultNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, interview.ErrRoleRequired),
		errors.Is(err, interview.ErrResumeRequired),
		errors.Is(err, interview.ErrInterviewIDRequired),
		errors.Is(err, interview.ErrEmptyAnswer):
		respondErrorWithData(w, http.StatusBadRequest, "validation_error", err.Error(), data)
	case errors.Is(err, interview.ErrTurnInFlight),
		errors.Is(err, interview.ErrRetryPending),
		errors.Is(err, interview.ErrNothingToRetry),
		errors.Is(err, interview.ErrSessionFinished),
		errors.Is(err, interview.ErrSessionExpired):
		respondErrorWithData(w, http.StatusConflict, "conflict", err.Error(), data)
	case errors.Is(err, interview.ErrTurnFailed):
		respondErrorWithData(w, http.StatusBadGateway, aiErrorCode(err), interview.ErrTurnFailed.Error(), data)
	default:
		slog.Error(fallback, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

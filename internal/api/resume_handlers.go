package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/terra-clan/careerprep/internal/models"
	"github.com/terra-clan/careerprep/internal/resume"
)

// resumeField is the multipart field carrying the uploaded resume
const resumeField = "resume"

func (s *Server) handleAnalyzeResume(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readResumeUpload(w, r)
	if !ok {
		return
	}

	analysis, err := s.analyzer.Analyze(r.Context(), text)
	if err != nil {
		slog.Error("resume analysis failed", "error", err)
		respondError(w, http.StatusBadGateway, aiErrorCode(err), "failed to analyze resume")
		return
	}

	respondJSON(w, http.StatusOK, models.ResumeAnalysisResponse{
		ResumeText: text,
		Analysis:   analysis,
	})
}

// readResumeUpload parses the multipart form and extracts the resume text.
// It writes the error response itself and returns false on failure.
func (s *Server) readResumeUpload(w http.ResponseWriter, r *http.Request) (string, bool) {
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "too_large", "file is too large")
			return "", false
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "expected a multipart form")
		return "", false
	}

	file, header, err := r.FormFile(resumeField)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", "no file uploaded")
		return "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "failed to read uploaded file")
		return "", false
	}

	text, err := resume.Extract(data, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		if errors.Is(err, resume.ErrUnsupportedFormat) {
			respondError(w, http.StatusUnprocessableEntity, "unsupported_format", resume.ErrUnsupportedFormat.Error())
			return "", false
		}
		slog.Warn("failed to extract resume text", "filename", header.Filename, "error", err)
		respondError(w, http.StatusUnprocessableEntity, "unparseable_file", "could not read the uploaded file")
		return "", false
	}

	if err := resume.ValidateText(text); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "text_too_short", err.Error())
		return "", false
	}

	return text, true
}

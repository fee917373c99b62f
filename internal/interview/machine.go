package interview

import (
	"errors"
	"strings"
	"time"

	"github.com/terra-clan/careerprep/internal/models"
)

// FallbackFirstQuestion opens the interview when question 1 cannot be generated
const FallbackFirstQuestion = "Tell me about yourself and your experience relevant to this role."

var (
	ErrEmptyAnswer     = errors.New("answer is required")
	ErrRetryPending    = errors.New("the previous turn failed, retry it before answering again")
	ErrNothingToRetry  = errors.New("there is no failed turn to retry")
	ErrSessionFinished = errors.New("interview is already finished")
	ErrSessionExpired  = errors.New("interview session has expired")
)

// NewSession creates a session awaiting the answer to its first question
func NewSession(id, role, resumeText, firstQuestion string, now time.Time, ttl time.Duration) *models.InterviewSession {
	return &models.InterviewSession{
		ID:              id,
		Role:            role,
		ResumeText:      resumeText,
		Status:          models.InterviewAwaitingAnswer,
		QuestionNumber:  1,
		CurrentQuestion: firstQuestion,
		History:         []models.ConvoEntry{},
		CreatedAt:       now,
		UpdatedAt:       now,
		ExpiresAt:       now.Add(ttl),
	}
}

// BeginSubmit builds the turn that answers the current question.
// The session itself is not modified until the turn resolves.
func BeginSubmit(s *models.InterviewSession, answer string) (*models.PendingTurn, error) {
	if err := checkOpen(s); err != nil {
		return nil, err
	}
	if s.RetryPending() {
		return nil, ErrRetryPending
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, ErrEmptyAnswer
	}

	history := make([]models.ConvoEntry, len(s.History), len(s.History)+1)
	copy(history, s.History)
	history = append(history, models.ConvoEntry{Question: s.CurrentQuestion, Answer: answer})

	return &models.PendingTurn{
		Answer:         answer,
		History:        history,
		QuestionNumber: s.QuestionNumber + 1,
	}, nil
}

// BeginRetry returns the preserved failed turn for resubmission
func BeginRetry(s *models.InterviewSession) (*models.PendingTurn, error) {
	if err := checkOpen(s); err != nil {
		return nil, err
	}
	if !s.RetryPending() {
		return nil, ErrNothingToRetry
	}

	turn := *s.Pending
	turn.History = append([]models.ConvoEntry(nil), s.Pending.History...)
	return &turn, nil
}

// NeedsEvaluation reports whether the turn follows the last answer, so the
// interview is evaluated instead of asking another question.
func NeedsEvaluation(turn *models.PendingTurn) bool {
	return turn.QuestionNumber > TotalQuestions
}

// ApplyQuestion moves the session to the next question
func ApplyQuestion(s *models.InterviewSession, turn *models.PendingTurn, question string, now time.Time) {
	s.History = turn.History
	s.QuestionNumber = turn.QuestionNumber
	s.CurrentQuestion = question
	s.Pending = nil
	s.UpdatedAt = now
}

// ApplyEvaluation finishes the session with its evaluation
func ApplyEvaluation(s *models.InterviewSession, turn *models.PendingTurn, eval *models.Evaluation, now time.Time) {
	s.History = turn.History
	s.QuestionNumber = TotalQuestions
	s.CurrentQuestion = ""
	s.Status = models.InterviewFinished
	s.Evaluation = eval
	s.Pending = nil
	s.UpdatedAt = now
}

// Fail records a failed turn so it can be retried unchanged. History and
// question number stay as they were before the turn.
func Fail(s *models.InterviewSession, turn *models.PendingTurn, cause error, now time.Time) {
	attempts := 1
	if s.Pending != nil {
		attempts = s.Pending.Attempts + 1
	}

	pending := *turn
	pending.Attempts = attempts
	if cause != nil {
		pending.Error = cause.Error()
	}

	s.Pending = &pending
	s.UpdatedAt = now
}

// Expire closes an abandoned session
func Expire(s *models.InterviewSession, now time.Time) {
	s.Status = models.InterviewExpired
	s.UpdatedAt = now
}

func checkOpen(s *models.InterviewSession) error {
	switch s.Status {
	case models.InterviewFinished:
		return ErrSessionFinished
	case models.InterviewExpired:
		return ErrSessionExpired
	}
	return nil
}

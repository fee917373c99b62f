package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/careerprep/internal/metrics"
	"github.com/terra-clan/careerprep/internal/models"
	"github.com/terra-clan/careerprep/internal/storage"
)

// resultWriteTimeout bounds the background result upsert
const resultWriteTimeout = 5 * time.Second

var (
	ErrInterviewNotFound   = errors.New("interview not found")
	ErrRoleRequired        = errors.New("role is required")
	ErrResumeRequired      = errors.New("resume text is required")
	ErrInterviewIDRequired = errors.New("interviewId is required")
	ErrTurnInFlight        = errors.New("a turn is already in progress for this interview")
	ErrTurnFailed          = errors.New("failed to get response from AI, please retry")
	ErrResultNotFound      = errors.New("interview result not found")
)

// Manager defines the interface for interview session management
type Manager interface {
	Start(ctx context.Context, role, resumeText string) (*models.InterviewSession, error)
	Submit(ctx context.Context, id, answer string) (*models.InterviewSession, error)
	Retry(ctx context.Context, id string) (*models.InterviewSession, error)
	Get(ctx context.Context, id string) (*models.InterviewSession, error)
	List(ctx context.Context, filters models.InterviewListFilters) ([]*models.InterviewSession, error)
	SaveResult(ctx context.Context, result *models.InterviewResult) error
	Result(ctx context.Context, id string) (*models.InterviewResult, error)
	ExpireIdle(ctx context.Context) (int, error)
}

// SessionManager implements Manager on a Repository and an Interviewer
type SessionManager struct {
	repo        storage.Repository
	interviewer *Interviewer
	ttl         time.Duration
	now         func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}

	writes sync.WaitGroup
}

// NewManager creates a new SessionManager
func NewManager(repo storage.Repository, interviewer *Interviewer, ttl time.Duration) *SessionManager {
	return &SessionManager{
		repo:        repo,
		interviewer: interviewer,
		ttl:         ttl,
		now:         time.Now,
		inFlight:    make(map[string]struct{}),
	}
}

// Start creates an interview session and asks its first question.
// A failed first question is replaced by FallbackFirstQuestion.
func (m *SessionManager) Start(ctx context.Context, role, resumeText string) (*models.InterviewSession, error) {
	role = strings.TrimSpace(role)
	resumeText = strings.TrimSpace(resumeText)
	if role == "" {
		return nil, ErrRoleRequired
	}
	if resumeText == "" {
		return nil, ErrResumeRequired
	}

	question, err := m.interviewer.AskQuestion(ctx, TurnRequest{
		ResumeText:     resumeText,
		Role:           role,
		QuestionNumber: 1,
	})
	if err != nil {
		slog.Warn("first question failed, using fallback", "role", role, "error", err)
		metrics.Fallbacks.WithLabelValues("first_question").Inc()
		question = FallbackFirstQuestion
	}

	s := NewSession(uuid.New().String(), role, resumeText, question, m.now(), m.ttl)
	if err := m.repo.CreateInterview(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to store interview: %w", err)
	}

	slog.Info("interview started", "id", s.ID, "role", role)
	return s, nil
}

// Submit answers the current question of a session
func (m *SessionManager) Submit(ctx context.Context, id, answer string) (*models.InterviewSession, error) {
	return m.withTurn(ctx, id, func(s *models.InterviewSession) (*models.PendingTurn, error) {
		return BeginSubmit(s, answer)
	})
}

// Retry resubmits the last failed turn of a session unchanged
func (m *SessionManager) Retry(ctx context.Context, id string) (*models.InterviewSession, error) {
	return m.withTurn(ctx, id, BeginRetry)
}

// withTurn runs one turn while holding the session's in-flight slot
func (m *SessionManager) withTurn(ctx context.Context, id string, begin func(*models.InterviewSession) (*models.PendingTurn, error)) (*models.InterviewSession, error) {
	if !m.acquire(id) {
		return nil, ErrTurnInFlight
	}
	defer m.release(id)

	s, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}

	turn, err := begin(s)
	if err != nil {
		return s, err
	}

	return m.runTurn(ctx, s, turn)
}

func (m *SessionManager) runTurn(ctx context.Context, s *models.InterviewSession, turn *models.PendingTurn) (*models.InterviewSession, error) {
	req := TurnRequest{
		ResumeText:     s.ResumeText,
		Role:           s.Role,
		History:        turn.History,
		QuestionNumber: turn.QuestionNumber,
	}

	if NeedsEvaluation(turn) {
		eval := m.interviewer.EvaluateOrFallback(ctx, req)
		ApplyEvaluation(s, turn, eval, m.now())
		if err := m.save(ctx, s); err != nil {
			return nil, err
		}
		metrics.InterviewTurns.WithLabelValues("evaluation").Inc()
		slog.Info("interview finished", "id", s.ID, "score", eval.Score)
		m.persistResult(models.ResultFromSession(s))
		return s, nil
	}

	question, err := m.interviewer.AskQuestion(ctx, req)
	if err != nil {
		Fail(s, turn, err, m.now())
		if saveErr := m.save(ctx, s); saveErr != nil {
			return nil, saveErr
		}
		metrics.InterviewTurns.WithLabelValues("failed").Inc()
		slog.Warn("interview turn failed",
			"id", s.ID,
			"question_number", turn.QuestionNumber,
			"attempts", s.Pending.Attempts,
			"error", err,
		)
		return s, fmt.Errorf("%w: %w", ErrTurnFailed, err)
	}

	ApplyQuestion(s, turn, question, m.now())
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	metrics.InterviewTurns.WithLabelValues("question").Inc()
	return s, nil
}

// Get returns a session, marking it expired when its TTL has elapsed
func (m *SessionManager) Get(ctx context.Context, id string) (*models.InterviewSession, error) {
	return m.load(ctx, id)
}

// List lists sessions
func (m *SessionManager) List(ctx context.Context, filters models.InterviewListFilters) ([]*models.InterviewSession, error) {
	return m.repo.ListInterviews(ctx, filters)
}

// SaveResult upserts an interview result row
func (m *SessionManager) SaveResult(ctx context.Context, result *models.InterviewResult) error {
	if result == nil || strings.TrimSpace(result.InterviewID) == "" {
		return ErrInterviewIDRequired
	}
	if err := m.repo.UpsertResult(ctx, result); err != nil {
		metrics.ResultWrites.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to save result: %w", err)
	}
	metrics.ResultWrites.WithLabelValues("ok").Inc()
	return nil
}

// Result returns the persisted result row of an interview
func (m *SessionManager) Result(ctx context.Context, id string) (*models.InterviewResult, error) {
	result, err := m.repo.GetResult(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return result, nil
}

// ExpireIdle marks sessions past their TTL as expired and returns how many
// were closed. Sessions with a turn in flight are skipped.
func (m *SessionManager) ExpireIdle(ctx context.Context) (int, error) {
	expired, err := m.repo.GetExpiredInterviews(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("failed to get expired interviews: %w", err)
	}

	closed := 0
	for _, candidate := range expired {
		ok, err := m.expireOne(ctx, candidate.ID)
		if err != nil {
			slog.Error("failed to expire interview", "id", candidate.ID, "error", err)
			continue
		}
		if ok {
			closed++
		}
	}
	return closed, nil
}

// expireOne re-reads the session under its in-flight slot so a turn that
// completed after the scan is not overwritten.
func (m *SessionManager) expireOne(ctx context.Context, id string) (bool, error) {
	if !m.acquire(id) {
		return false, nil
	}
	defer m.release(id)

	s, err := m.repo.GetInterview(ctx, id)
	if err != nil {
		return false, err
	}
	if s.IsTerminal() || !m.expired(s) {
		return false, nil
	}

	Expire(s, m.now())
	if err := m.repo.UpdateInterview(ctx, s); err != nil {
		return false, err
	}
	return true, nil
}

// Wait blocks until background result writes have finished
func (m *SessionManager) Wait() {
	m.writes.Wait()
}

func (m *SessionManager) load(ctx context.Context, id string) (*models.InterviewSession, error) {
	s, err := m.repo.GetInterview(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInterviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}

	if !s.IsTerminal() && m.expired(s) {
		Expire(s, m.now())
		if err := m.repo.UpdateInterview(ctx, s); err != nil {
			slog.Warn("failed to mark interview expired", "id", s.ID, "error", err)
		}
	}
	return s, nil
}

// save stores the session and extends its idle deadline
func (m *SessionManager) save(ctx context.Context, s *models.InterviewSession) error {
	s.ExpiresAt = s.UpdatedAt.Add(m.ttl)
	if err := m.repo.UpdateInterview(ctx, s); err != nil {
		return fmt.Errorf("failed to store interview: %w", err)
	}
	return nil
}

// persistResult writes the result row in the background; failures are only logged
func (m *SessionManager) persistResult(result *models.InterviewResult) {
	m.writes.Add(1)
	go func() {
		defer m.writes.Done()

		ctx, cancel := context.WithTimeout(context.Background(), resultWriteTimeout)
		defer cancel()

		if err := m.SaveResult(ctx, result); err != nil {
			slog.Warn("failed to persist interview result", "id", result.InterviewID, "error", err)
		}
	}()
}

func (m *SessionManager) expired(s *models.InterviewSession) bool {
	return !s.ExpiresAt.IsZero() && m.now().After(s.ExpiresAt)
}

func (m *SessionManager) acquire(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.inFlight[id]; busy {
		return false
	}
	m.inFlight[id] = struct{}{}
	return true
}

func (m *SessionManager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inFlight, id)
}

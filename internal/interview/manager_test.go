package interview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/terra-clan/careerprep/internal/llm"
	"github.com/terra-clan/careerprep/internal/models"
	"github.com/terra-clan/careerprep/internal/storage"
)

func newTestManager(t *testing.T, provider llm.Provider) (*SessionManager, *storage.MemoryRepository) {
	t.Helper()
	repo := storage.NewMemoryRepository()
	return NewManager(repo, NewInterviewer(provider), time.Hour), repo
}

func TestManagerFullInterview(t *testing.T) {
	mock := llm.NewMockProvider()
	for n := 1; n <= TotalQuestions; n++ {
		mock.AddText(fmt.Sprintf("Q%d: question %d?", n, n))
	}
	mock.AddText(evaluationReply)

	m, repo := newTestManager(t, mock)
	ctx := context.Background()

	s, err := m.Start(ctx, "Backend Developer", "Five years of Go.")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.QuestionNumber != 1 || s.CurrentQuestion != "question 1?" {
		t.Fatalf("started session = %+v", s)
	}

	evaluations := 0
	for n := 1; n <= TotalQuestions; n++ {
		s, err = m.Submit(ctx, s.ID, fmt.Sprintf("answer %d", n))
		if err != nil {
			t.Fatalf("Submit(%d) error = %v", n, err)
		}
		if s.QuestionNumber > TotalQuestions {
			t.Fatalf("QuestionNumber = %d exceeds %d", s.QuestionNumber, TotalQuestions)
		}
		if s.Evaluation != nil {
			evaluations++
		}
		if n < TotalQuestions && s.QuestionNumber != n+1 {
			t.Fatalf("after answer %d QuestionNumber = %d", n, s.QuestionNumber)
		}
	}

	if evaluations != 1 {
		t.Fatalf("evaluations = %d, want exactly 1", evaluations)
	}
	if s.Status != models.InterviewFinished || s.Evaluation.Score != 84 {
		t.Errorf("final session = %+v", s)
	}
	if mock.CallCount() != TotalQuestions+1 {
		t.Errorf("CallCount() = %d, want %d", mock.CallCount(), TotalQuestions+1)
	}

	if _, err := m.Submit(ctx, s.ID, "one more"); !errors.Is(err, ErrSessionFinished) {
		t.Errorf("Submit() after finish error = %v, want ErrSessionFinished", err)
	}

	m.Wait()
	result, err := repo.GetResult(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetResult() error = %v", err)
	}
	if len(result.Questions) != TotalQuestions || result.Answers[7] != "answer 8" || result.Score != 84 {
		t.Errorf("persisted result = %+v", result)
	}
}

func TestManagerStartFallbackQuestion(t *testing.T) {
	m, _ := newTestManager(t, llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}}))

	s, err := m.Start(context.Background(), "Designer", "Figma portfolio.")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.CurrentQuestion != FallbackFirstQuestion {
		t.Errorf("CurrentQuestion = %q, want fallback", s.CurrentQuestion)
	}
}

func TestManagerStartValidation(t *testing.T) {
	m, _ := newTestManager(t, llm.NewMockProvider())

	if _, err := m.Start(context.Background(), " ", "resume"); !errors.Is(err, ErrRoleRequired) {
		t.Errorf("error = %v, want ErrRoleRequired", err)
	}
	if _, err := m.Start(context.Background(), "role", ""); !errors.Is(err, ErrResumeRequired) {
		t.Errorf("error = %v, want ErrResumeRequired", err)
	}
}

func TestManagerRetryLoop(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "Q1: first?"})
	m, repo := newTestManager(t, mock)
	ctx := context.Background()

	s, _ := m.Start(ctx, "QA Engineer", "Selenium and Cypress.")

	mock.AddResponse(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	s, err := m.Submit(ctx, s.ID, "my careful answer")
	if !errors.Is(err, ErrTurnFailed) {
		t.Fatalf("Submit() error = %v, want ErrTurnFailed", err)
	}
	if s == nil || !s.RetryPending() {
		t.Fatalf("expected retry pending session, got %+v", s)
	}

	stored, _ := repo.GetInterview(ctx, s.ID)
	if stored.QuestionNumber != 1 || len(stored.History) != 0 || stored.Pending.Answer != "my careful answer" {
		t.Fatalf("stored after failure = %+v", stored)
	}

	if _, err := m.Submit(ctx, s.ID, "different answer"); !errors.Is(err, ErrRetryPending) {
		t.Fatalf("Submit() while pending error = %v, want ErrRetryPending", err)
	}

	mock.AddResponse(llm.MockResponse{Err: &llm.ErrRateLimit{}})
	s, err = m.Retry(ctx, s.ID)
	if !errors.Is(err, ErrTurnFailed) {
		t.Fatalf("Retry() error = %v, want ErrTurnFailed", err)
	}
	if s.Pending.Attempts != 2 || s.QuestionNumber != 1 {
		t.Fatalf("after failed retry: attempts=%d number=%d", s.Pending.Attempts, s.QuestionNumber)
	}

	mock.AddText("Question 2: second?")
	s, err = m.Retry(ctx, s.ID)
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if s.RetryPending() || s.QuestionNumber != 2 || s.CurrentQuestion != "second?" {
		t.Fatalf("after successful retry = %+v", s)
	}
	if len(s.History) != 1 || s.History[0].Answer != "my careful answer" || s.History[0].Question != "first?" {
		t.Errorf("History = %+v", s.History)
	}

	if _, err := m.Retry(ctx, s.ID); !errors.Is(err, ErrNothingToRetry) {
		t.Errorf("Retry() without pending error = %v, want ErrNothingToRetry", err)
	}
}

func TestManagerEvaluationFallback(t *testing.T) {
	mock := llm.NewMockProvider()
	m, repo := newTestManager(t, mock)
	ctx := context.Background()

	s := NewSession("late", "Data Analyst", "SQL and Excel.", "last question?", time.Now(), time.Hour)
	s.QuestionNumber = TotalQuestions
	for i := 1; i < TotalQuestions; i++ {
		s.History = append(s.History, models.ConvoEntry{Question: "q", Answer: "a"})
	}
	repo.CreateInterview(ctx, s)

	mock.AddResponse(llm.MockResponse{Text: "not json at all"})
	got, err := m.Submit(ctx, "late", "final answer")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got.Status != models.InterviewFinished || got.Evaluation.Score != 70 {
		t.Errorf("session = %+v, want finished with fallback evaluation", got)
	}
	m.Wait()
}

func TestManagerNotFound(t *testing.T) {
	m, _ := newTestManager(t, llm.NewMockProvider())

	if _, err := m.Get(context.Background(), "nope"); !errors.Is(err, ErrInterviewNotFound) {
		t.Errorf("Get() error = %v, want ErrInterviewNotFound", err)
	}
	if _, err := m.Submit(context.Background(), "nope", "a"); !errors.Is(err, ErrInterviewNotFound) {
		t.Errorf("Submit() error = %v, want ErrInterviewNotFound", err)
	}
}

// gatedProvider blocks every call until release is closed
type gatedProvider struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
		return &llm.Response{Text: "Q2: next?"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedProvider) ModelID() string { return "gated" }

func TestManagerRejectsConcurrentTurn(t *testing.T) {
	gate := &gatedProvider{started: make(chan struct{}), release: make(chan struct{})}
	m, repo := newTestManager(t, gate)
	ctx := context.Background()

	repo.CreateInterview(ctx, NewSession("busy", "role", "resume", "q1", time.Now(), time.Hour))

	done := make(chan error, 1)
	go func() {
		_, err := m.Submit(ctx, "busy", "first")
		done <- err
	}()

	<-gate.started
	if _, err := m.Submit(ctx, "busy", "second"); !errors.Is(err, ErrTurnInFlight) {
		t.Errorf("concurrent Submit() error = %v, want ErrTurnInFlight", err)
	}

	close(gate.release)
	if err := <-done; err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
}

func TestManagerExpireIdle(t *testing.T) {
	m, repo := newTestManager(t, llm.NewMockProvider())
	ctx := context.Background()
	now := time.Now()

	repo.CreateInterview(ctx, NewSession("idle", "role", "resume", "q", now, time.Minute))
	repo.CreateInterview(ctx, NewSession("active", "role", "resume", "q", now, 3*time.Hour))

	m.now = func() time.Time { return now.Add(2 * time.Hour) }

	closed, err := m.ExpireIdle(ctx)
	if err != nil {
		t.Fatalf("ExpireIdle() error = %v", err)
	}
	if closed != 1 {
		t.Fatalf("closed = %d, want 1", closed)
	}

	idle, _ := repo.GetInterview(ctx, "idle")
	if idle.Status != models.InterviewExpired {
		t.Errorf("idle status = %q, want expired", idle.Status)
	}
	if _, err := m.Submit(ctx, "idle", "late answer"); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("Submit() on expired error = %v, want ErrSessionExpired", err)
	}

	active, _ := repo.GetInterview(ctx, "active")
	if active.Status != models.InterviewAwaitingAnswer {
		t.Errorf("active status = %q", active.Status)
	}
}

func TestManagerSaveResult(t *testing.T) {
	m, repo := newTestManager(t, llm.NewMockProvider())
	ctx := context.Background()

	if err := m.SaveResult(ctx, &models.InterviewResult{}); !errors.Is(err, ErrInterviewIDRequired) {
		t.Fatalf("SaveResult() error = %v, want ErrInterviewIDRequired", err)
	}

	if err := m.SaveResult(ctx, &models.InterviewResult{InterviewID: "local-123", Score: 55}); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}
	got, err := repo.GetResult(ctx, "local-123")
	if err != nil || got.Score != 55 {
		t.Errorf("GetResult() = %+v, %v", got, err)
	}

	viaManager, err := m.Result(ctx, "local-123")
	if err != nil || viaManager.Score != 55 {
		t.Errorf("Result() = %+v, %v", viaManager, err)
	}
	if _, err := m.Result(ctx, "missing"); !errors.Is(err, ErrResultNotFound) {
		t.Errorf("Result(missing) error = %v, want ErrResultNotFound", err)
	}
}

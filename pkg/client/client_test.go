package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/terra-clan/careerprep/internal/api"
	"github.com/terra-clan/careerprep/internal/career"
	"github.com/terra-clan/careerprep/internal/catalog"
	"github.com/terra-clan/careerprep/internal/config"
	"github.com/terra-clan/careerprep/internal/interview"
	"github.com/terra-clan/careerprep/internal/llm"
	"github.com/terra-clan/careerprep/internal/models"
	"github.com/terra-clan/careerprep/internal/resume"
	"github.com/terra-clan/careerprep/internal/storage"
)

func newTestClient(t *testing.T) (*Client, *llm.MockProvider) {
	t.Helper()

	loader, err := catalog.NewLoader()
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	mock := llm.NewMockProvider()
	repo := storage.NewMemoryRepository()
	interviewer := interview.NewInterviewer(mock)
	manager := interview.NewManager(repo, interviewer, time.Hour)

	server := api.NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 0}, api.Dependencies{
		Catalog:     loader,
		Career:      career.NewService(loader, mock),
		Resume:      resume.NewAnalyzer(mock, nil, time.Hour),
		Interviewer: interviewer,
		Interviews:  manager,
		Repo:        repo,
	})

	ts := httptest.NewServer(server.Router())
	t.Cleanup(func() {
		ts.Close()
		manager.Wait()
	})

	return NewClient(ts.URL, WithTimeout(5*time.Second)), mock
}

func TestClientCatalogAndAssessment(t *testing.T) {
	c, mock := newTestClient(t)
	ctx := context.Background()

	if err := c.Health(ctx); err != nil {
		t.Fatalf("Health() error = %v", err)
	}

	questions, err := c.ListQuestions(ctx)
	if err != nil || len(questions) == 0 {
		t.Fatalf("ListQuestions() = %d, %v", len(questions), err)
	}
	careers, err := c.ListCareers(ctx)
	if err != nil || len(careers) == 0 {
		t.Fatalf("ListCareers() = %d, %v", len(careers), err)
	}

	answers := make(map[string]int, len(questions))
	for _, q := range questions {
		answers[q.ID] = q.Options[0].Value
	}

	mock.AddResponse(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	resp, err := c.Assess(ctx, models.AssessmentRequest{Answers: answers})
	if err != nil {
		t.Fatalf("Assess() error = %v", err)
	}
	if !resp.RoadmapFallback || len(resp.Matches) != career.TopMatchCount {
		t.Errorf("Assess() = %+v", resp)
	}

	_, err = c.Assess(ctx, models.AssessmentRequest{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("Assess(no answers) error = %v, want HTTP 400", err)
	}
}

func TestClientChatFailureKeepsApology(t *testing.T) {
	c, mock := newTestClient(t)
	mock.AddResponse(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})

	resp, err := c.Chat(context.Background(), models.ChatRequest{Message: "What should I learn?"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("Chat() error = %v, want HTTP 502", err)
	}
	if resp == nil || resp.Reply != career.UnavailableReply {
		t.Errorf("Chat() response = %+v, want apology", resp)
	}
}

func TestClientInterviewSession(t *testing.T) {
	c, mock := newTestClient(t)
	ctx := context.Background()

	mock.AddText("Q1: Describe your last project.")
	session, err := c.StartInterview(ctx, "Data Analyst", "Analyst with SQL, Excel and Tableau experience across three years.")
	if err != nil {
		t.Fatalf("StartInterview() error = %v", err)
	}

	mock.AddResponse(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	failed, err := c.SubmitAnswer(ctx, session.ID, "A sales dashboard.")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("SubmitAnswer() error = %v, want HTTP 502", err)
	}
	if failed == nil || !failed.RetryPending() {
		t.Fatalf("session after failed turn = %+v", failed)
	}

	mock.AddText("Q2: How do you validate data quality?")
	session, err = c.RetryTurn(ctx, session.ID)
	if err != nil {
		t.Fatalf("RetryTurn() error = %v", err)
	}
	if session.QuestionNumber != 2 || session.CurrentQuestion != "How do you validate data quality?" {
		t.Errorf("session after retry = %+v", session)
	}

	got, err := c.GetInterview(ctx, session.ID)
	if err != nil || got.ID != session.ID {
		t.Errorf("GetInterview() = %+v, %v", got, err)
	}

	list, err := c.ListInterviews(ctx, ListOptions{Status: string(models.InterviewAwaitingAnswer), Limit: 10})
	if err != nil || len(list) != 1 {
		t.Errorf("ListInterviews() = %d, %v", len(list), err)
	}

	if err := c.SaveResult(ctx, models.InterviewResult{InterviewID: session.ID, Score: 61}); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}
	result, err := c.GetResult(ctx, session.ID)
	if err != nil || result.Score != 61 {
		t.Errorf("GetResult() = %+v, %v", result, err)
	}
}

func TestClientAnalyzeResumeRejectsText(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.AnalyzeResume(context.Background(), "resume.txt", strings.NewReader("just some text"))
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("AnalyzeResume() error = %v, want HTTP 422", err)
	}
	if apiErr.Code != "unsupported_format" {
		t.Errorf("Code = %q", apiErr.Code)
	}
}

package interview

import (
	"errors"
	"testing"
	"time"

	"github.com/terra-clan/careerprep/internal/models"
)

func TestBeginSubmitDoesNotMutateSession(t *testing.T) {
	now := time.Now()
	s := NewSession("id", "Backend Developer", "resume", "Q one?", now, time.Hour)

	turn, err := BeginSubmit(s, "  my answer  ")
	if err != nil {
		t.Fatalf("BeginSubmit() error = %v", err)
	}

	if turn.QuestionNumber != 2 {
		t.Errorf("turn.QuestionNumber = %d, want 2", turn.QuestionNumber)
	}
	if len(turn.History) != 1 || turn.History[0] != (models.ConvoEntry{Question: "Q one?", Answer: "my answer"}) {
		t.Errorf("turn.History = %+v", turn.History)
	}
	if len(s.History) != 0 || s.QuestionNumber != 1 {
		t.Errorf("session mutated: history=%v number=%d", s.History, s.QuestionNumber)
	}
}

func TestBeginSubmitRejections(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		mutate  func(*models.InterviewSession)
		answer  string
		wantErr error
	}{
		{"blank answer", func(*models.InterviewSession) {}, "   ", ErrEmptyAnswer},
		{"retry pending", func(s *models.InterviewSession) { s.Pending = &models.PendingTurn{} }, "a", ErrRetryPending},
		{"finished", func(s *models.InterviewSession) { s.Status = models.InterviewFinished }, "a", ErrSessionFinished},
		{"expired", func(s *models.InterviewSession) { s.Status = models.InterviewExpired }, "a", ErrSessionExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("id", "role", "resume", "q", now, time.Hour)
			tt.mutate(s)
			if _, err := BeginSubmit(s, tt.answer); !errors.Is(err, tt.wantErr) {
				t.Fatalf("BeginSubmit() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFailAndRetryPreserveTurn(t *testing.T) {
	now := time.Now()
	s := NewSession("id", "role", "resume", "q1", now, time.Hour)

	if _, err := BeginRetry(s); !errors.Is(err, ErrNothingToRetry) {
		t.Fatalf("BeginRetry() error = %v, want ErrNothingToRetry", err)
	}

	turn, _ := BeginSubmit(s, "answer one")
	Fail(s, turn, errors.New("timeout"), now)

	if !s.RetryPending() || s.Pending.Attempts != 1 || s.Pending.Error != "timeout" {
		t.Fatalf("pending = %+v", s.Pending)
	}
	if s.QuestionNumber != 1 || len(s.History) != 0 {
		t.Fatalf("failed turn changed session: number=%d history=%v", s.QuestionNumber, s.History)
	}

	for attempt := 2; attempt <= 4; attempt++ {
		retry, err := BeginRetry(s)
		if err != nil {
			t.Fatalf("BeginRetry() error = %v", err)
		}
		if retry.Answer != "answer one" || retry.QuestionNumber != 2 || len(retry.History) != 1 {
			t.Fatalf("retry turn = %+v", retry)
		}
		Fail(s, retry, errors.New("timeout"), now)
		if s.Pending.Attempts != attempt {
			t.Errorf("Attempts = %d, want %d", s.Pending.Attempts, attempt)
		}
	}

	retry, _ := BeginRetry(s)
	ApplyQuestion(s, retry, "q2", now)
	if s.RetryPending() || s.QuestionNumber != 2 || s.CurrentQuestion != "q2" || len(s.History) != 1 {
		t.Errorf("after success: %+v", s)
	}
}

func TestEvaluationBoundary(t *testing.T) {
	now := time.Now()
	s := NewSession("id", "role", "resume", "q1", now, time.Hour)

	for n := 1; n <= TotalQuestions; n++ {
		turn, err := BeginSubmit(s, "answer")
		if err != nil {
			t.Fatalf("answer %d: BeginSubmit() error = %v", n, err)
		}
		if n < TotalQuestions {
			if NeedsEvaluation(turn) {
				t.Fatalf("answer %d requested evaluation early", n)
			}
			ApplyQuestion(s, turn, "next", now)
			continue
		}
		if !NeedsEvaluation(turn) {
			t.Fatalf("answer %d did not request evaluation", n)
		}
		ApplyEvaluation(s, turn, FallbackEvaluation("role"), now)
	}

	if s.Status != models.InterviewFinished {
		t.Errorf("Status = %q, want finished", s.Status)
	}
	if s.QuestionNumber != TotalQuestions {
		t.Errorf("QuestionNumber = %d, want %d", s.QuestionNumber, TotalQuestions)
	}
	if len(s.History) != TotalQuestions {
		t.Errorf("len(History) = %d, want %d", len(s.History), TotalQuestions)
	}
}

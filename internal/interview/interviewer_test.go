package interview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/terra-clan/careerprep/internal/llm"
	"github.com/terra-clan/careerprep/internal/models"
)

const evaluationReply = `{"score": 84.4, "strengths": ["Clear answers"], "weaknesses": ["Depth"], "improvements": ["Practice"], "recommended_topics": ["Concurrency"]}`

func TestStripQuestionPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Q3: What is a goroutine?", "What is a goroutine?"},
		{"q3. What is a goroutine?", "What is a goroutine?"},
		{"  Question 4: Describe a conflict.", "Describe a conflict."},
		{"QUESTION 4. Describe a conflict.", "Describe a conflict."},
		{"Question4: Why?", "Why?"},
		{"What is Q3: about?", "What is Q3: about?"},
		{"Plain question?", "Plain question?"},
	}

	for _, tt := range tests {
		if got := StripQuestionPrefix(tt.in); got != tt.want {
			t.Errorf("StripQuestionPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAskQuestionPrompt(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "Q2: Explain channels."},
		llm.MockResponse{Text: "Question 6: Tell me about a team conflict."},
	)
	iv := NewInterviewer(mock)
	history := []models.ConvoEntry{{Question: "What is Go?", Answer: "A language"}}

	q, err := iv.AskQuestion(context.Background(), TurnRequest{ResumeText: "resume", Role: "Go Developer", History: history, QuestionNumber: 2})
	if err != nil {
		t.Fatalf("AskQuestion() error = %v", err)
	}
	if q != "Explain channels." {
		t.Errorf("question = %q", q)
	}

	call, _ := mock.LastCall()
	prompt := call.Messages[0].Content
	for _, want := range []string{"role of: Go Developer", "question number 2 of 8", "technical question", "Q1: What is Go?\nCandidate Answer: A language"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if _, err := iv.AskQuestion(context.Background(), TurnRequest{Role: "Go Developer", QuestionNumber: 6}); err != nil {
		t.Fatalf("AskQuestion() error = %v", err)
	}
	call, _ = mock.LastCall()
	if !strings.Contains(call.Messages[0].Content, "HR question") {
		t.Error("question 6 should be an HR question")
	}
	if strings.Contains(call.Messages[0].Content, "Previous Interview History") {
		t.Error("empty history should not be rendered")
	}
}

func TestAskQuestionEmptyAfterStrip(t *testing.T) {
	iv := NewInterviewer(llm.NewMockProvider(llm.MockResponse{Text: "Q3:"}))

	_, err := iv.AskQuestion(context.Background(), TurnRequest{QuestionNumber: 3})
	var malformed *llm.ErrMalformedOutput
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want ErrMalformedOutput", err)
	}
}

func TestEvaluate(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: evaluationReply})
	iv := NewInterviewer(mock)

	resume := strings.Repeat("r", maxEvaluationResumeChars) + "OVERFLOW"
	eval, err := iv.Evaluate(context.Background(), TurnRequest{ResumeText: resume, Role: "SRE"})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if eval.Score != 84 {
		t.Errorf("Score = %d, want 84", eval.Score)
	}
	if eval.RecommendedTopics[0] != "Concurrency" {
		t.Errorf("RecommendedTopics = %v", eval.RecommendedTopics)
	}

	call, _ := mock.LastCall()
	if strings.Contains(call.Messages[0].Content, "OVERFLOW") {
		t.Error("resume was not truncated for evaluation")
	}
	if !call.JSON {
		t.Error("evaluation must use JSON mode")
	}
}

func TestEvaluateClampsScore(t *testing.T) {
	iv := NewInterviewer(llm.NewMockProvider(llm.MockResponse{Text: `{"score": -12}`}))

	eval, err := iv.Evaluate(context.Background(), TurnRequest{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if eval.Score != 0 {
		t.Errorf("Score = %d, want 0", eval.Score)
	}
	if eval.Strengths == nil {
		t.Error("Strengths should be empty, not nil")
	}
}

func TestTurn(t *testing.T) {
	tests := []struct {
		name     string
		number   int
		resp     llm.MockResponse
		wantType models.TurnType
		wantErr  bool
		check    func(t *testing.T, r *models.InterviewTurnResponse)
	}{
		{
			name: "question below total", number: 7,
			resp: llm.MockResponse{Text: "Q7: Why us?"}, wantType: models.TurnQuestion,
			check: func(t *testing.T, r *models.InterviewTurnResponse) {
				if r.Question != "Why us?" {
					t.Errorf("Question = %q", r.Question)
				}
			},
		},
		{
			name: "evaluation at total", number: 8,
			resp: llm.MockResponse{Text: evaluationReply}, wantType: models.TurnEvaluation,
			check: func(t *testing.T, r *models.InterviewTurnResponse) {
				if r.Evaluation.Score != 84 {
					t.Errorf("Score = %d", r.Evaluation.Score)
				}
			},
		},
		{
			name: "evaluation failure falls back", number: 9,
			resp: llm.MockResponse{Err: &llm.ErrProviderUnavailable{}}, wantType: models.TurnEvaluation,
			check: func(t *testing.T, r *models.InterviewTurnResponse) {
				if r.Evaluation.Score != 70 {
					t.Errorf("Score = %d, want fallback 70", r.Evaluation.Score)
				}
				topics := r.Evaluation.RecommendedTopics
				if topics[len(topics)-1] != "Core Data Analyst concepts" {
					t.Errorf("RecommendedTopics = %v", topics)
				}
			},
		},
		{
			name: "question failure is an error", number: 3,
			resp: llm.MockResponse{Err: &llm.ErrRateLimit{}}, wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv := NewInterviewer(llm.NewMockProvider(tt.resp))
			resp, err := iv.Turn(context.Background(), TurnRequest{Role: "Data Analyst", ResumeText: "resume", QuestionNumber: tt.number})
			if tt.wantErr {
				var rl *llm.ErrRateLimit
				if !errors.As(err, &rl) {
					t.Fatalf("Turn() error = %v, want ErrRateLimit", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Turn() error = %v", err)
			}
			if resp.Type != tt.wantType {
				t.Fatalf("Type = %q, want %q", resp.Type, tt.wantType)
			}
			tt.check(t, resp)
		})
	}
}

package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	_ "embed"

	"github.com/terra-clan/careerprep/internal/llm"
	"github.com/terra-clan/careerprep/internal/metrics"
	"github.com/terra-clan/careerprep/internal/models"
)

var (
	//go:embed prompts/question.md
	questionPrompt string

	//go:embed prompts/evaluation.md
	evaluationPrompt string
)

const (
	// TotalQuestions is the fixed length of an interview
	TotalQuestions = 8

	// TechnicalQuestions is how many leading questions are technical; the rest are HR
	TechnicalQuestions = 5

	evaluationSystem = "You are an expert interviewer. Evaluate the candidate and respond with valid JSON only."

	// maxEvaluationResumeChars bounds the resume text sent for evaluation
	maxEvaluationResumeChars = 2000
)

var (
	qPrefix        = regexp.MustCompile(`(?i)^\s*Q\d+[.:]\s*`)
	questionPrefix = regexp.MustCompile(`(?i)^\s*Question\s*\d+[.:]\s*`)
)

var evaluationSchema = &llm.Schema{
	Name: "interview-evaluation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":              map[string]any{"type": "number"},
			"strengths":          llm.StringArray(),
			"weaknesses":         llm.StringArray(),
			"improvements":       llm.StringArray(),
			"recommended_topics": llm.StringArray(),
		},
		"required": []string{"score"},
	},
}

// evaluationOutput mirrors the model reply; the score may come back fractional
type evaluationOutput struct {
	Score             float64  `json:"score"`
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
	Improvements      []string `json:"improvements"`
	RecommendedTopics []string `json:"recommended_topics"`
}

// TurnRequest is everything the interviewer needs to produce the next turn
type TurnRequest struct {
	ResumeText     string
	Role           string
	History        []models.ConvoEntry
	QuestionNumber int
}

// Interviewer asks interview questions and evaluates finished interviews
type Interviewer struct {
	provider llm.Provider
}

// NewInterviewer creates a new interviewer
func NewInterviewer(provider llm.Provider) *Interviewer {
	return &Interviewer{provider: provider}
}

// AskQuestion returns question number req.QuestionNumber with any leading
// "Q<n>:" or "Question <n>:" label removed.
func (iv *Interviewer) AskQuestion(ctx context.Context, req TurnRequest) (string, error) {
	kind := "This should be an HR question."
	if req.QuestionNumber <= TechnicalQuestions {
		kind = "This should be a technical question."
	}

	history := ""
	if len(req.History) > 0 {
		history = "Previous Interview History:\n" + formatHistory(req.History, "Candidate Answer") + "\n"
	}

	prompt := strings.NewReplacer(
		"{{ROLE}}", req.Role,
		"{{RESUME}}", req.ResumeText,
		"{{HISTORY}}", history,
		"{{NUMBER}}", strconv.Itoa(req.QuestionNumber),
		"{{KIND}}", kind,
	).Replace(questionPrompt)

	ctx = llm.WithPurpose(ctx, "interview_question")
	raw, err := llm.GenerateText(ctx, iv.provider, llm.UserPrompt("", prompt))
	if err != nil {
		return "", err
	}

	question := StripQuestionPrefix(raw)
	if question == "" {
		return "", &llm.ErrMalformedOutput{Raw: raw, Err: errors.New("question is empty after removing its label")}
	}
	return question, nil
}

// Evaluate produces the final evaluation of an interview
func (iv *Interviewer) Evaluate(ctx context.Context, req TurnRequest) (*models.Evaluation, error) {
	prompt := strings.NewReplacer(
		"{{ROLE}}", req.Role,
		"{{RESUME}}", truncate(req.ResumeText, maxEvaluationResumeChars),
		"{{HISTORY}}", formatHistory(req.History, "A"),
	).Replace(evaluationPrompt)

	var out evaluationOutput
	ctx = llm.WithPurpose(ctx, "interview_evaluation")
	if err := llm.GenerateJSON(ctx, iv.provider, llm.UserPrompt(evaluationSystem, prompt), evaluationSchema, &out); err != nil {
		return nil, err
	}

	return &models.Evaluation{
		Score:             clampScore(out.Score),
		Strengths:         nonNil(out.Strengths),
		Weaknesses:        nonNil(out.Weaknesses),
		Improvements:      nonNil(out.Improvements),
		RecommendedTopics: nonNil(out.RecommendedTopics),
	}, nil
}

// EvaluateOrFallback evaluates the interview, substituting the fixed
// evaluation when generation fails. It never returns nil.
func (iv *Interviewer) EvaluateOrFallback(ctx context.Context, req TurnRequest) *models.Evaluation {
	eval, err := iv.Evaluate(ctx, req)
	if err != nil {
		slog.Warn("interview evaluation failed, using fallback", "role", req.Role, "error", err)
		metrics.Fallbacks.WithLabelValues("evaluation").Inc()
		return FallbackEvaluation(req.Role)
	}
	return eval
}

// Turn answers one stateless interview turn: an evaluation when
// QuestionNumber has reached the total, otherwise the next question.
// Only question failures are returned as errors.
func (iv *Interviewer) Turn(ctx context.Context, req TurnRequest) (*models.InterviewTurnResponse, error) {
	if req.QuestionNumber >= TotalQuestions {
		return &models.InterviewTurnResponse{
			Type:       models.TurnEvaluation,
			Evaluation: iv.EvaluateOrFallback(ctx, req),
		}, nil
	}

	question, err := iv.AskQuestion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get question %d: %w", req.QuestionNumber, err)
	}
	return &models.InterviewTurnResponse{Type: models.TurnQuestion, Question: question}, nil
}

// FallbackEvaluation is the canned evaluation served when the evaluation
// request fails, so every interview reaches a result.
func FallbackEvaluation(role string) *models.Evaluation {
	return &models.Evaluation{
		Score:             70,
		Strengths:         []string{"Completed the full interview", "Good communication"},
		Weaknesses:        []string{"Could improve technical depth"},
		Improvements:      []string{"Practice more coding problems", "Study system design"},
		RecommendedTopics: []string{"Data Structures", "System Design", "Core " + role + " concepts"},
	}
}

// StripQuestionPrefix removes a leading "Q<n>:" or "Question <n>:" label
func StripQuestionPrefix(s string) string {
	s = qPrefix.ReplaceAllString(s, "")
	s = questionPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func formatHistory(history []models.ConvoEntry, answerLabel string) string {
	parts := make([]string, len(history))
	for i, h := range history {
		parts[i] = fmt.Sprintf("Q%d: %s\n%s: %s", i+1, h.Question, answerLabel, h.Answer)
	}
	return strings.Join(parts, "\n\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Max(0, math.Min(100, math.Round(v))))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

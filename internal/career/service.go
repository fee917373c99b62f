package career

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	_ "embed"

	"github.com/terra-clan/careerprep/internal/llm"
	"github.com/terra-clan/careerprep/internal/metrics"
	"github.com/terra-clan/careerprep/internal/models"
	"github.com/terra-clan/careerprep/internal/scoring"
)

var (
	//go:embed prompts/roadmap.md
	roadmapPrompt string

	//go:embed prompts/counselor.md
	counselorPrompt string
)

const (
	roadmapSystem = "You are a career counselor. Provide a 3-month learning roadmap as valid JSON only."

	// TopMatchCount is the number of matches returned by an assessment
	TopMatchCount = 3

	// ChatHistoryLimit is the number of trailing history messages sent to the model
	ChatHistoryLimit = 6

	// EmptyReply is returned when the model answers with nothing
	EmptyReply = "I apologize, I could not generate a response. Please try again."

	// UnavailableReply is returned alongside chat failures
	UnavailableReply = "I'm having trouble connecting to the AI service right now. Please check your API key configuration and try again in a moment."
)

var (
	ErrAnswersRequired = errors.New("answers object is required")
	ErrMessageRequired = errors.New("message is required")
	ErrEmptyCatalog    = errors.New("career catalog is empty")
)

var roadmapSchema = &llm.Schema{
	Name: "career-roadmap",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"recommendedPath": map[string]any{"type": "string"},
			"roadmap":         map[string]any{"type": "string"},
			"weeklyPlan": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"week":  map[string]any{"type": "string"},
						"focus": map[string]any{"type": "string"},
						"tasks": llm.StringArray(),
					},
					"required": []string{"week", "focus"},
				},
			},
		},
		"required": []string{"recommendedPath", "roadmap", "weeklyPlan"},
	},
}

// Catalog provides the question and career catalogs
type Catalog interface {
	Questions() []*models.AssessmentQuestion
	Careers() []*models.CareerPath
}

// Service runs career assessments and the career chat
type Service struct {
	catalog  Catalog
	provider llm.Provider
}

// NewService creates a new career service
func NewService(catalog Catalog, provider llm.Provider) *Service {
	return &Service{catalog: catalog, provider: provider}
}

// Assess scores the answers, ranks career paths and attaches a roadmap for
// the top match. A failed roadmap generation is replaced by a templated one.
func (s *Service) Assess(ctx context.Context, req *models.AssessmentRequest) (*models.AssessmentResponse, error) {
	if req == nil || req.Answers == nil {
		return nil, ErrAnswersRequired
	}

	scores := scoring.ScoreAnswers(s.catalog.Questions(), req.Answers)
	matches := scoring.MatchCareerPaths(s.catalog.Careers(), scores, req.ResumeSkills)
	if len(matches) == 0 {
		return nil, ErrEmptyCatalog
	}

	top := scoring.TopMatches(matches, TopMatchCount)
	summaries := make([]models.MatchSummary, len(top))
	for i, m := range top {
		summaries[i] = summarize(m)
	}

	roadmap, err := s.generateRoadmap(ctx, summaries[0], req.ResumeSkills)
	fallback := err != nil
	if fallback {
		slog.Warn("roadmap generation failed, using fallback",
			"career", summaries[0].CareerID,
			"error", err,
		)
		metrics.Fallbacks.WithLabelValues("roadmap").Inc()
		roadmap = FallbackRoadmap(summaries[0])
	}

	return &models.AssessmentResponse{
		CategoryScores:  scores,
		Matches:         summaries,
		RecommendedPath: roadmap.RecommendedPath,
		Roadmap:         roadmap.Roadmap,
		WeeklyPlan:      roadmap.WeeklyPlan,
		RoadmapFallback: fallback,
	}, nil
}

func (s *Service) generateRoadmap(ctx context.Context, top models.MatchSummary, resumeSkills []string) (*models.Roadmap, error) {
	prompt := strings.NewReplacer(
		"{{CAREER}}", top.Career,
		"{{SKILL_GAP}}", joinOr(top.SkillGap, "none"),
		"{{RESUME_SKILLS}}", joinOr(resumeSkills, "not specified"),
	).Replace(roadmapPrompt)

	var roadmap models.Roadmap
	ctx = llm.WithPurpose(ctx, "roadmap")
	if err := llm.GenerateJSON(ctx, s.provider, llm.UserPrompt(roadmapSystem, prompt), roadmapSchema, &roadmap); err != nil {
		return nil, err
	}

	for i := range roadmap.WeeklyPlan {
		if roadmap.WeeklyPlan[i].Tasks == nil {
			roadmap.WeeklyPlan[i].Tasks = []string{}
		}
	}
	return &roadmap, nil
}

// FallbackRoadmap is the templated roadmap served when generation fails
func FallbackRoadmap(top models.MatchSummary) *models.Roadmap {
	fundamentals := make([]string, 0, 2)
	for _, skill := range top.SkillGap {
		if len(fundamentals) == 2 {
			break
		}
		fundamentals = append(fundamentals, "Learn basics of "+skill)
	}
	if len(fundamentals) == 0 {
		fundamentals = []string{
			fmt.Sprintf("Review core %s concepts", top.Career),
			"Strengthen your strongest skills with advanced material",
		}
	}

	return &models.Roadmap{
		RecommendedPath: fmt.Sprintf("Based on your assessment, %s is your best career match.", top.Career),
		Roadmap: fmt.Sprintf("Focus on building core %s skills over the next 3 months. "+
			"Start with fundamentals, build projects, and grow your portfolio.", top.Career),
		WeeklyPlan: []models.WeekPlan{
			{Week: "Week 1-2", Focus: "Fundamentals", Tasks: fundamentals},
			{Week: "Week 3-4", Focus: "Practice", Tasks: []string{"Build a small project", "Complete online exercises"}},
			{Week: "Month 2", Focus: "Portfolio", Tasks: []string{"Build a portfolio project", "Document your work"}},
			{Week: "Month 3", Focus: "Job Ready", Tasks: []string{"Update resume", "Apply for roles", "Practice interviews"}},
		},
	}
}

// Chat answers a career question with the counselor persona
func (s *Service) Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	if req == nil || strings.TrimSpace(req.Message) == "" {
		return nil, ErrMessageRequired
	}

	history := req.History
	if len(history) > ChatHistoryLimit {
		history = history[len(history)-ChatHistoryLimit:]
	}

	messages := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == string(llm.RoleAssistant) {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: strings.TrimSpace(req.Message)})

	ctx = llm.WithPurpose(ctx, "chat")
	resp, err := s.provider.Generate(ctx, llm.Request{
		System:   strings.TrimSpace(counselorPrompt) + contextNote(req.Context),
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("chat generation failed: %w", err)
	}

	reply := strings.TrimSpace(resp.Text)
	if reply == "" {
		reply = EmptyReply
	}
	return &models.ChatResponse{Reply: reply}, nil
}

func contextNote(c *models.ChatContext) string {
	if c == nil {
		return ""
	}
	var note string
	if len(c.ResumeSkills) > 0 {
		note += "\n\nUser's known skills: " + strings.Join(c.ResumeSkills, ", ")
	}
	if c.TargetCareer != "" {
		note += "\nUser's target career: " + c.TargetCareer
	}
	return note
}

func summarize(m models.CareerMatch) models.MatchSummary {
	return models.MatchSummary{
		Career:         m.Career.Title,
		CareerID:       m.Career.ID,
		Icon:           m.Career.Icon,
		Description:    m.Career.Description,
		Score:          m.Score,
		SkillMatch:     m.SkillMatch,
		SkillGap:       m.SkillGap,
		RequiredSkills: m.Career.RequiredSkills,
	}
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

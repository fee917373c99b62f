package resume

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	_ "embed"

	"github.com/terra-clan/careerprep/internal/cache"
	"github.com/terra-clan/careerprep/internal/llm"
	"github.com/terra-clan/careerprep/internal/models"
)

//go:embed prompts/analysis.md
var analysisPrompt string

const (
	analysisSystem = "You are a professional resume analyst and career coach. Always respond with valid JSON only."

	// maxPromptChars bounds the resume text sent to the model
	maxPromptChars = 4000
)

var analysisSchema = &llm.Schema{
	Name: "resume-analysis",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"skills":                 llm.StringArray(),
			"experience":             llm.StringArray(),
			"education":              llm.StringArray(),
			"strengths":              llm.StringArray(),
			"weaknesses":             llm.StringArray(),
			"atsScore":               map[string]any{"type": "number"},
			"improvementSuggestions": llm.StringArray(),
		},
		"required": []string{"skills", "atsScore"},
	},
}

// analysisOutput mirrors the model reply; the score may come back fractional
type analysisOutput struct {
	Skills                 []string `json:"skills"`
	Experience             []string `json:"experience"`
	Education              []string `json:"education"`
	Strengths              []string `json:"strengths"`
	Weaknesses             []string `json:"weaknesses"`
	ATSScore               float64  `json:"atsScore"`
	ImprovementSuggestions []string `json:"improvementSuggestions"`
}

// Analyzer produces structured resume analyses
type Analyzer struct {
	provider llm.Provider
	cache    cache.Cache
	ttl      time.Duration
}

// NewAnalyzer creates a new resume analyzer
func NewAnalyzer(provider llm.Provider, c cache.Cache, ttl time.Duration) *Analyzer {
	if c == nil {
		c = cache.Noop{}
	}
	return &Analyzer{provider: provider, cache: c, ttl: ttl}
}

// Analyze returns the analysis of resume text, served from cache when the
// same text was analyzed before.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*models.ResumeAnalysis, error) {
	key := cacheKey(text)

	var cached models.ResumeAnalysis
	found, err := a.cache.Get(ctx, key, &cached)
	if err != nil {
		slog.Warn("resume cache lookup failed", "error", err)
	}
	if found {
		slog.Debug("resume analysis served from cache", "key", key)
		return &cached, nil
	}

	prompt := strings.ReplaceAll(analysisPrompt, "{{RESUME_TEXT}}", Truncate(text, maxPromptChars))

	var out analysisOutput
	ctx = llm.WithPurpose(ctx, "resume_analysis")
	if err := llm.GenerateJSON(ctx, a.provider, llm.UserPrompt(analysisSystem, prompt), analysisSchema, &out); err != nil {
		return nil, fmt.Errorf("resume analysis failed: %w", err)
	}

	analysis := &models.ResumeAnalysis{
		Skills:                 nonNil(out.Skills),
		Experience:             nonNil(out.Experience),
		Education:              nonNil(out.Education),
		Strengths:              nonNil(out.Strengths),
		Weaknesses:             nonNil(out.Weaknesses),
		ATSScore:               clampScore(out.ATSScore),
		ImprovementSuggestions: nonNil(out.ImprovementSuggestions),
	}

	if err := a.cache.Set(ctx, key, analysis, a.ttl); err != nil {
		slog.Warn("resume cache store failed", "error", err)
	}

	return analysis, nil
}

// Truncate returns at most n runes of s
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return fmt.Sprintf("resume:%x", sum[:])
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

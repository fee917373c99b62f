// Package scoring turns quiz answers into category scores and ranks career
// paths against them. Everything here is deterministic and AI-free.
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/terra-clan/careerprep/internal/models"
)

const (
	// maxOptionValue is the highest value an answer option can carry
	maxOptionValue = 5
	// maxSkillBonus is the boost granted for a full resume skill match
	maxSkillBonus = 20
	maxScore      = 100
)

// ScoreAnswers normalizes answers (question id -> option value) into a
// 0-100 score per category. Categories without answers score 0.
func ScoreAnswers(questions []*models.AssessmentQuestion, answers map[string]int) models.CategoryScores {
	totals := make(map[models.Category]int, len(models.Categories))
	counts := make(map[models.Category]int, len(models.Categories))

	for _, q := range questions {
		value, ok := answers[q.ID]
		if !ok {
			continue
		}
		totals[q.Category] += value
		counts[q.Category]++
	}

	scores := make(models.CategoryScores, len(models.Categories))
	for _, cat := range models.Categories {
		if counts[cat] == 0 {
			scores[cat] = 0
			continue
		}
		ratio := float64(totals[cat]) / float64(counts[cat]*maxOptionValue)
		scores[cat] = clamp(int(math.Round(ratio*100)), 0, maxScore)
	}
	return scores
}

// MatchCareerPaths ranks every career path by its weighted assessment score
// plus a resume skill bonus. The result is sorted by score, descending;
// ties keep catalog order.
func MatchCareerPaths(careers []*models.CareerPath, scores models.CategoryScores, resumeSkills []string) []models.CareerMatch {
	normalized := normalizeSkills(resumeSkills)

	matches := make([]models.CareerMatch, 0, len(careers))
	for _, career := range careers {
		matches = append(matches, matchCareer(career, scores, normalized))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

func matchCareer(career *models.CareerPath, scores models.CategoryScores, resumeSkills []string) models.CareerMatch {
	// Iterate categories in canonical order so float summation is reproducible.
	var assessment float64
	for _, cat := range models.Categories {
		assessment += float64(scores[cat]) * career.Weights[cat]
	}

	gap := make([]string, 0, len(career.RequiredSkills))
	matched := 0
	for _, skill := range career.RequiredSkills {
		if SkillMatches(skill, resumeSkills) {
			matched++
		} else {
			gap = append(gap, skill)
		}
	}

	var ratio float64
	if total := len(career.RequiredSkills); total > 0 {
		ratio = float64(matched) / float64(total)
	}

	final := math.Round(assessment + ratio*maxSkillBonus)

	return models.CareerMatch{
		Career:     career,
		Score:      clamp(int(final), 0, maxScore),
		SkillMatch: int(math.Round(ratio * 100)),
		SkillGap:   gap,
	}
}

// SkillMatches reports whether a required skill is covered by any of the
// normalized resume skills. Containment is checked in both directions so
// abbreviations and longer phrasings both count. This is deliberately loose:
// a one-letter skill such as "r" will also match "React".
func SkillMatches(required string, normalizedResumeSkills []string) bool {
	req := strings.ToLower(required)
	for _, skill := range normalizedResumeSkills {
		if strings.Contains(skill, req) || strings.Contains(req, skill) {
			return true
		}
	}
	return false
}

// normalizeSkills lower-cases and trims resume skills, dropping blanks
// (an empty string would otherwise be a substring of every skill).
func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// TopMatches returns at most n leading matches
func TopMatches(matches []models.CareerMatch, n int) []models.CareerMatch {
	if n < 0 {
		n = 0
	}
	if len(matches) <= n {
		return matches
	}
	return matches[:n]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

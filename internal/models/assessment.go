package models

// CategoryScores maps each category to a normalized 0-100 score
type CategoryScores map[Category]int

// CareerMatch is a derived ranking entry, computed per request
type CareerMatch struct {
	Career     *CareerPath `json:"career"`
	Score      int         `json:"score"`
	SkillMatch int         `json:"skillMatch"`
	SkillGap   []string    `json:"skillGap"`
}

// AssessmentRequest is the body of the assessment scoring endpoint
type AssessmentRequest struct {
	Answers      map[string]int `json:"answers"`
	ResumeSkills []string       `json:"resumeSkills,omitempty"`
}

// MatchSummary is a top match as returned to the client
type MatchSummary struct {
	Career         string   `json:"career"`
	CareerID       string   `json:"careerId"`
	Icon           string   `json:"icon"`
	Description    string   `json:"description"`
	Score          int      `json:"score"`
	SkillMatch     int      `json:"skillMatch"`
	SkillGap       []string `json:"skillGap"`
	RequiredSkills []string `json:"requiredSkills"`
}

// WeekPlan is one block of the learning roadmap
type WeekPlan struct {
	Week  string   `json:"week"`
	Focus string   `json:"focus"`
	Tasks []string `json:"tasks"`
}

// Roadmap is the narrative plan for the top career match
type Roadmap struct {
	RecommendedPath string     `json:"recommendedPath"`
	Roadmap         string     `json:"roadmap"`
	WeeklyPlan      []WeekPlan `json:"weeklyPlan"`
}

// AssessmentResponse is returned by the assessment scoring endpoint
type AssessmentResponse struct {
	CategoryScores  CategoryScores `json:"categoryScores"`
	Matches         []MatchSummary `json:"matches"`
	RecommendedPath string         `json:"recommendedPath"`
	Roadmap         string         `json:"roadmap"`
	WeeklyPlan      []WeekPlan     `json:"weeklyPlan"`
	RoadmapFallback bool           `json:"roadmapFallback"`
}

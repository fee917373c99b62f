package models

// ResumeAnalysis is the structured review of an uploaded resume
type ResumeAnalysis struct {
	Skills                 []string `json:"skills"`
	Experience             []string `json:"experience"`
	Education              []string `json:"education"`
	Strengths              []string `json:"strengths"`
	Weaknesses             []string `json:"weaknesses"`
	ATSScore               int      `json:"atsScore"`
	ImprovementSuggestions []string `json:"improvementSuggestions"`
}

// ResumeAnalysisResponse is returned by the resume analysis endpoint
type ResumeAnalysisResponse struct {
	ResumeText string          `json:"resumeText"`
	Analysis   *ResumeAnalysis `json:"analysis"`
}

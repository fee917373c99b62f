package models

// Category is one of the fixed assessment dimensions
type Category string

const (
	CategoryAnalytical    Category = "analytical"
	CategoryTechnical     Category = "technical"
	CategoryCreative      Category = "creative"
	CategoryCommunication Category = "communication"
	CategoryLeadership    Category = "leadership"
)

// Categories lists every category in canonical order
var Categories = []Category{
	CategoryAnalytical,
	CategoryTechnical,
	CategoryCreative,
	CategoryCommunication,
	CategoryLeadership,
}

// IsValid reports whether c is a known category
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// AnswerOption is a selectable answer with its score value
type AnswerOption struct {
	Label string `yaml:"label" json:"label"`
	Value int    `yaml:"value" json:"value"`
}

// AssessmentQuestion is an entry of the static quiz catalog
type AssessmentQuestion struct {
	ID       string         `yaml:"id" json:"id"`
	Text     string         `yaml:"text" json:"text"`
	Category Category       `yaml:"category" json:"category"`
	Options  []AnswerOption `yaml:"options" json:"options"`
}

// CareerPath is an entry of the static career catalog.
// Weights are linear coefficients and need not sum to 1.
type CareerPath struct {
	ID             string               `yaml:"id" json:"id"`
	Title          string               `yaml:"title" json:"title"`
	Icon           string               `yaml:"icon" json:"icon"`
	Description    string               `yaml:"description" json:"description"`
	RequiredSkills []string             `yaml:"required_skills" json:"requiredSkills"`
	Weights        map[Category]float64 `yaml:"weights" json:"weights"`
}

package catalog

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/careerprep/internal/models"
)

//go:embed data/*.yaml
var builtin embed.FS

const (
	questionsFile = "questions.yaml"
	careersFile   = "careers.yaml"
)

// Loader holds the assessment question and career path catalogs.
// Catalog order is file order and is significant for tie-breaking.
type Loader struct {
	mu        sync.RWMutex
	questions []*models.AssessmentQuestion
	careers   []*models.CareerPath
	byID      map[string]*models.CareerPath
}

// NewLoader creates a loader populated with the built-in catalog
func NewLoader() (*Loader, error) {
	l := &Loader{}

	questions, err := builtin.ReadFile("data/" + questionsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read built-in questions: %w", err)
	}
	careers, err := builtin.ReadFile("data/" + careersFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read built-in careers: %w", err)
	}

	if err := l.load(questions, careers); err != nil {
		return nil, fmt.Errorf("built-in catalog is invalid: %w", err)
	}

	return l, nil
}

// LoadFromDir replaces catalog parts with questions.yaml and careers.yaml
// found in dir. Missing files keep the current catalog part.
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading catalog from directory", "dir", dir)

	questions, err := readOptional(filepath.Join(dir, questionsFile))
	if err != nil {
		return err
	}
	careers, err := readOptional(filepath.Join(dir, careersFile))
	if err != nil {
		return err
	}

	return l.load(questions, careers)
}

func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// load parses and validates both catalogs before swapping them in, so a bad
// file never leaves the loader half-updated.
func (l *Loader) load(questionsData, careersData []byte) error {
	l.mu.RLock()
	questions, careers := l.questions, l.careers
	l.mu.RUnlock()

	if questionsData != nil {
		var qf questionsFileFormat
		if err := yaml.Unmarshal(questionsData, &qf); err != nil {
			return fmt.Errorf("failed to parse questions YAML: %w", err)
		}
		if err := validateQuestions(qf.Questions); err != nil {
			return err
		}
		questions = qf.Questions
	}

	if careersData != nil {
		var cf careersFileFormat
		if err := yaml.Unmarshal(careersData, &cf); err != nil {
			return fmt.Errorf("failed to parse careers YAML: %w", err)
		}
		if err := validateCareers(cf.Careers); err != nil {
			return err
		}
		careers = cf.Careers
	}

	byID := make(map[string]*models.CareerPath, len(careers))
	for _, c := range careers {
		byID[c.ID] = c
	}

	l.mu.Lock()
	l.questions = questions
	l.careers = careers
	l.byID = byID
	l.mu.Unlock()

	slog.Info("catalog loaded", "questions", len(questions), "careers", len(careers))
	return nil
}

func validateQuestions(questions []*models.AssessmentQuestion) error {
	if len(questions) == 0 {
		return fmt.Errorf("questions catalog is empty")
	}

	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return fmt.Errorf("question %d: id is required", i)
		}
		if seen[q.ID] {
			return fmt.Errorf("question %s: duplicate id", q.ID)
		}
		seen[q.ID] = true

		if !q.Category.IsValid() {
			return fmt.Errorf("question %s: unknown category %q", q.ID, q.Category)
		}
		if len(q.Options) == 0 {
			return fmt.Errorf("question %s: at least one option is required", q.ID)
		}
	}
	return nil
}

func validateCareers(careers []*models.CareerPath) error {
	if len(careers) == 0 {
		return fmt.Errorf("careers catalog is empty")
	}

	seen := make(map[string]bool, len(careers))
	for i, c := range careers {
		if c.ID == "" {
			return fmt.Errorf("career %d: id is required", i)
		}
		if seen[c.ID] {
			return fmt.Errorf("career %s: duplicate id", c.ID)
		}
		seen[c.ID] = true

		if c.Title == "" {
			return fmt.Errorf("career %s: title is required", c.ID)
		}
		if len(c.RequiredSkills) == 0 {
			return fmt.Errorf("career %s: at least one required skill is needed", c.ID)
		}
		for cat := range c.Weights {
			if !cat.IsValid() {
				return fmt.Errorf("career %s: unknown weight category %q", c.ID, cat)
			}
		}
	}
	return nil
}

// Questions returns the question catalog in catalog order
func (l *Loader) Questions() []*models.AssessmentQuestion {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.questions
}

// Careers returns the career catalog in catalog order
func (l *Loader) Careers() []*models.CareerPath {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.careers
}

// Career returns a career path by ID, or nil
func (l *Loader) Career(id string) *models.CareerPath {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.byID[id]
}

// --- YAML file structs ---

type questionsFileFormat struct {
	Questions []*models.AssessmentQuestion `yaml:"questions"`
}

type careersFileFormat struct {
	Careers []*models.CareerPath `yaml:"careers"`
}

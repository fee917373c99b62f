package models

import (
	"time"
)

// InterviewStatus represents the current state of an interview session
type InterviewStatus string

const (
	InterviewAwaitingAnswer InterviewStatus = "awaiting_answer" // A question is on screen
	InterviewFinished       InterviewStatus = "finished"        // Evaluation produced
	InterviewExpired        InterviewStatus = "expired"         // Abandoned past its TTL
)

// ConvoEntry is one answered interview question
type ConvoEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// PendingTurn is the snapshot kept after a failed turn so that a retry
// resubmits exactly the same request without re-prompting the user.
type PendingTurn struct {
	Answer         string       `json:"answer"`
	History        []ConvoEntry `json:"history"`
	QuestionNumber int          `json:"questionNumber"` // number the turn targets
	Error          string       `json:"error,omitempty"`
	Attempts       int          `json:"attempts"`
}

// Evaluation is the final assessment of an interview
type Evaluation struct {
	Score             int      `json:"score"`
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
	Improvements      []string `json:"improvements"`
	RecommendedTopics []string `json:"recommended_topics"`
}

// InterviewSession is a stored mock-interview session.
// Created at interview start, mutated turn by turn.
type InterviewSession struct {
	ID              string          `json:"id"`
	Role            string          `json:"role"`
	ResumeText      string          `json:"resumeText"`
	Status          InterviewStatus `json:"status"`
	QuestionNumber  int             `json:"questionNumber"`
	CurrentQuestion string          `json:"currentQuestion"`
	History         []ConvoEntry    `json:"history"`
	Pending         *PendingTurn    `json:"pending,omitempty"`
	Evaluation      *Evaluation     `json:"evaluation,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	ExpiresAt       time.Time       `json:"expiresAt"`
}

// IsTerminal returns true if the session accepts no more turns
func (s *InterviewSession) IsTerminal() bool {
	return s.Status == InterviewFinished || s.Status == InterviewExpired
}

// RetryPending returns true if the last turn failed and awaits a retry
func (s *InterviewSession) RetryPending() bool {
	return s.Pending != nil
}

// IsExpired checks if the session TTL has elapsed
func (s *InterviewSession) IsExpired() bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(s.ExpiresAt)
}

// InterviewResult is the persisted outcome of an interview
type InterviewResult struct {
	InterviewID string      `json:"interviewId"`
	Questions   []string    `json:"questions"`
	Answers     []string    `json:"answers"`
	Score       int         `json:"score"`
	Feedback    *Evaluation `json:"feedback"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// ResultFromSession builds the result row of a finished session
func ResultFromSession(s *InterviewSession) *InterviewResult {
	result := &InterviewResult{
		InterviewID: s.ID,
		Questions:   make([]string, 0, len(s.History)),
		Answers:     make([]string, 0, len(s.History)),
		Feedback:    s.Evaluation,
	}
	for _, entry := range s.History {
		result.Questions = append(result.Questions, entry.Question)
		result.Answers = append(result.Answers, entry.Answer)
	}
	if s.Evaluation != nil {
		result.Score = s.Evaluation.Score
	}
	return result
}

// TurnType distinguishes the two kinds of interview turn responses
type TurnType string

const (
	TurnQuestion   TurnType = "question"
	TurnEvaluation TurnType = "evaluation"
)

// InterviewTurnRequest is the body of the stateless interview turn endpoint
type InterviewTurnRequest struct {
	ResumeText          string       `json:"resumeText"`
	Role                string       `json:"role"`
	ConversationHistory []ConvoEntry `json:"conversationHistory"`
	QuestionNumber      *int         `json:"questionNumber,omitempty"`
}

// InterviewTurnResponse carries either a question or an evaluation
type InterviewTurnResponse struct {
	Type       TurnType    `json:"type"`
	Question   string      `json:"question,omitempty"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
}

// StartInterviewRequest is the JSON form of the interview start endpoint,
// used when the resume text was already extracted
type StartInterviewRequest struct {
	Role       string `json:"role"`
	ResumeText string `json:"resumeText"`
}

// SubmitAnswerRequest is the body of the session answer endpoint
type SubmitAnswerRequest struct {
	Answer string `json:"answer"`
}

// InterviewListFilters defines filters for listing interview sessions
type InterviewListFilters struct {
	Status InterviewStatus
	Limit  int
	Offset int
}

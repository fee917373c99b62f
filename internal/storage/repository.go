package storage

import (
	"context"
	"errors"
	"time"

	"github.com/terra-clan/careerprep/internal/models"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

// Repository defines the interface for interview persistence
type Repository interface {
	// Interview sessions
	CreateInterview(ctx context.Context, s *models.InterviewSession) error
	GetInterview(ctx context.Context, id string) (*models.InterviewSession, error)
	UpdateInterview(ctx context.Context, s *models.InterviewSession) error
	ListInterviews(ctx context.Context, filters models.InterviewListFilters) ([]*models.InterviewSession, error)
	GetExpiredInterviews(ctx context.Context, now time.Time) ([]*models.InterviewSession, error)

	// Results
	UpsertResult(ctx context.Context, r *models.InterviewResult) error
	GetResult(ctx context.Context, interviewID string) (*models.InterviewResult, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}

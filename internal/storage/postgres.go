package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/careerprep/internal/models"
)

const interviewColumns = `id, role, resume_text, status, question_number, current_question, history, pending, evaluation, created_at, updated_at, expires_at`

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN         string
	MaxConns    int32
	MinConns    int32
	MaxLifetime time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	} else {
		poolConfig.MaxConns = 10
	}

	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Pool exposes the connection pool for migrations
func (r *PostgresRepository) Pool() *pgxpool.Pool {
	return r.pool
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateInterview creates a new interview session record
func (r *PostgresRepository) CreateInterview(ctx context.Context, s *models.InterviewSession) error {
	cols, err := encodeInterview(s)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO interviews (` + interviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.pool.Exec(ctx, query,
		s.ID,
		s.Role,
		s.ResumeText,
		string(s.Status),
		s.QuestionNumber,
		s.CurrentQuestion,
		cols.history,
		cols.pending,
		cols.evaluation,
		s.CreatedAt,
		s.UpdatedAt,
		s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}

	return nil
}

// GetInterview retrieves an interview session by ID
func (r *PostgresRepository) GetInterview(ctx context.Context, id string) (*models.InterviewSession, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE id = $1`

	s, err := scanInterview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}

	return s, nil
}

// UpdateInterview stores the mutable state of an interview session
func (r *PostgresRepository) UpdateInterview(ctx context.Context, s *models.InterviewSession) error {
	cols, err := encodeInterview(s)
	if err != nil {
		return err
	}

	query := `
		UPDATE interviews
		SET status = $2, question_number = $3, current_question = $4, history = $5,
		    pending = $6, evaluation = $7, updated_at = $8, expires_at = $9
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		s.ID,
		string(s.Status),
		s.QuestionNumber,
		s.CurrentQuestion,
		cols.history,
		cols.pending,
		cols.evaluation,
		s.UpdatedAt,
		s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update interview: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ListInterviews lists interview sessions, newest first
func (r *PostgresRepository) ListInterviews(ctx context.Context, filters models.InterviewListFilters) ([]*models.InterviewSession, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE 1=1`
	args := make([]interface{}, 0)
	argNum := 1

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(filters.Status))
		argNum++
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	return collectInterviews(rows)
}

// GetExpiredInterviews returns open sessions whose expiry is before now
func (r *PostgresRepository) GetExpiredInterviews(ctx context.Context, now time.Time) ([]*models.InterviewSession, error) {
	query := `
		SELECT ` + interviewColumns + `
		FROM interviews
		WHERE status = $1
		  AND expires_at < $2
		ORDER BY expires_at ASC
	`

	rows, err := r.pool.Query(ctx, query, string(models.InterviewAwaitingAnswer), now)
	if err != nil {
		return nil, fmt.Errorf("failed to get expired interviews: %w", err)
	}
	defer rows.Close()

	return collectInterviews(rows)
}

// UpsertResult inserts or replaces the result row of an interview
func (r *PostgresRepository) UpsertResult(ctx context.Context, res *models.InterviewResult) error {
	questionsJSON, err := json.Marshal(nonNilStrings(res.Questions))
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}
	answersJSON, err := json.Marshal(nonNilStrings(res.Answers))
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}
	feedbackJSON, err := marshalOptional(res.Feedback)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %w", err)
	}

	query := `
		INSERT INTO interview_results (interview_id, questions, answers, score, feedback, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (interview_id) DO UPDATE
		SET questions = EXCLUDED.questions,
		    answers = EXCLUDED.answers,
		    score = EXCLUDED.score,
		    feedback = EXCLUDED.feedback,
		    updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, res.InterviewID, questionsJSON, answersJSON, res.Score, feedbackJSON); err != nil {
		return fmt.Errorf("failed to upsert result: %w", err)
	}

	return nil
}

// GetResult retrieves the result row of an interview
func (r *PostgresRepository) GetResult(ctx context.Context, interviewID string) (*models.InterviewResult, error) {
	query := `
		SELECT interview_id, questions, answers, score, feedback, updated_at
		FROM interview_results
		WHERE interview_id = $1
	`

	var res models.InterviewResult
	var questionsJSON, answersJSON, feedbackJSON []byte

	err := r.pool.QueryRow(ctx, query, interviewID).Scan(
		&res.InterviewID,
		&questionsJSON,
		&answersJSON,
		&res.Score,
		&feedbackJSON,
		&res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	if err := json.Unmarshal(questionsJSON, &res.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	if err := json.Unmarshal(answersJSON, &res.Answers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	if feedbackJSON != nil {
		if err := json.Unmarshal(feedbackJSON, &res.Feedback); err != nil {
			return nil, fmt.Errorf("failed to unmarshal feedback: %w", err)
		}
	}

	return &res, nil
}

// interviewJSON holds the JSONB columns of an interview row
type interviewJSON struct {
	history    []byte
	pending    []byte
	evaluation []byte
}

func encodeInterview(s *models.InterviewSession) (*interviewJSON, error) {
	history := s.History
	if history == nil {
		history = []models.ConvoEntry{}
	}

	var cols interviewJSON
	var err error

	if cols.history, err = json.Marshal(history); err != nil {
		return nil, fmt.Errorf("failed to marshal history: %w", err)
	}
	if cols.pending, err = marshalOptional(s.Pending); err != nil {
		return nil, fmt.Errorf("failed to marshal pending turn: %w", err)
	}
	if cols.evaluation, err = marshalOptional(s.Evaluation); err != nil {
		return nil, fmt.Errorf("failed to marshal evaluation: %w", err)
	}

	return &cols, nil
}

func scanInterview(row pgx.Row) (*models.InterviewSession, error) {
	var s models.InterviewSession
	var statusStr string
	var historyJSON, pendingJSON, evaluationJSON []byte

	err := row.Scan(
		&s.ID,
		&s.Role,
		&s.ResumeText,
		&statusStr,
		&s.QuestionNumber,
		&s.CurrentQuestion,
		&historyJSON,
		&pendingJSON,
		&evaluationJSON,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	s.Status = models.InterviewStatus(statusStr)

	if err := json.Unmarshal(historyJSON, &s.History); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	if pendingJSON != nil {
		if err := json.Unmarshal(pendingJSON, &s.Pending); err != nil {
			return nil, fmt.Errorf("failed to unmarshal pending turn: %w", err)
		}
	}
	if evaluationJSON != nil {
		if err := json.Unmarshal(evaluationJSON, &s.Evaluation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal evaluation: %w", err)
		}
	}

	return &s, nil
}

func collectInterviews(rows pgx.Rows) ([]*models.InterviewSession, error) {
	sessions := make([]*models.InterviewSession, 0)
	for rows.Next() {
		s, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// marshalOptional encodes v as JSON, or SQL NULL when v is a nil pointer
func marshalOptional[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

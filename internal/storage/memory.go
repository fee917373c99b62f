package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/terra-clan/careerprep/internal/models"
)

// MemoryRepository implements Repository in process memory.
// It is used when no database is configured; data does not survive restarts.
type MemoryRepository struct {
	mu         sync.RWMutex
	interviews map[string]*models.InterviewSession
	results    map[string]*models.InterviewResult
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		interviews: make(map[string]*models.InterviewSession),
		results:    make(map[string]*models.InterviewResult),
	}
}

func (r *MemoryRepository) CreateInterview(_ context.Context, s *models.InterviewSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interviews[s.ID] = cloneSession(s)
	return nil
}

func (r *MemoryRepository) GetInterview(_ context.Context, id string) (*models.InterviewSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.interviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSession(s), nil
}

func (r *MemoryRepository) UpdateInterview(_ context.Context, s *models.InterviewSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.interviews[s.ID]; !ok {
		return ErrNotFound
	}
	r.interviews[s.ID] = cloneSession(s)
	return nil
}

func (r *MemoryRepository) ListInterviews(_ context.Context, filters models.InterviewListFilters) ([]*models.InterviewSession, error) {
	r.mu.RLock()
	all := make([]*models.InterviewSession, 0, len(r.interviews))
	for _, s := range r.interviews {
		if filters.Status != "" && s.Status != filters.Status {
			continue
		}
		all = append(all, cloneSession(s))
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(all) {
			return []*models.InterviewSession{}, nil
		}
		all = all[filters.Offset:]
	}
	if filters.Limit > 0 && len(all) > filters.Limit {
		all = all[:filters.Limit]
	}
	return all, nil
}

func (r *MemoryRepository) GetExpiredInterviews(_ context.Context, now time.Time) ([]*models.InterviewSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	expired := make([]*models.InterviewSession, 0)
	for _, s := range r.interviews {
		if s.Status == models.InterviewAwaitingAnswer && s.ExpiresAt.Before(now) {
			expired = append(expired, cloneSession(s))
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].ExpiresAt.Before(expired[j].ExpiresAt)
	})
	return expired, nil
}

func (r *MemoryRepository) UpsertResult(_ context.Context, res *models.InterviewResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *res
	stored.Questions = append([]string{}, res.Questions...)
	stored.Answers = append([]string{}, res.Answers...)
	stored.Feedback = cloneEvaluation(res.Feedback)
	stored.UpdatedAt = time.Now()
	r.results[res.InterviewID] = &stored
	return nil
}

func (r *MemoryRepository) GetResult(_ context.Context, interviewID string) (*models.InterviewResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.results[interviewID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *res
	out.Questions = append([]string{}, res.Questions...)
	out.Answers = append([]string{}, res.Answers...)
	out.Feedback = cloneEvaluation(res.Feedback)
	return &out, nil
}

func (r *MemoryRepository) Ping(context.Context) error { return nil }

func (r *MemoryRepository) Close() error { return nil }

// cloneSession deep-copies a session so callers never share state with the store
func cloneSession(s *models.InterviewSession) *models.InterviewSession {
	out := *s
	out.History = append([]models.ConvoEntry(nil), s.History...)
	if s.Pending != nil {
		p := *s.Pending
		p.History = append([]models.ConvoEntry(nil), s.Pending.History...)
		out.Pending = &p
	}
	out.Evaluation = cloneEvaluation(s.Evaluation)
	return &out
}

func cloneEvaluation(e *models.Evaluation) *models.Evaluation {
	if e == nil {
		return nil
	}
	out := *e
	out.Strengths = append([]string(nil), e.Strengths...)
	out.Weaknesses = append([]string(nil), e.Weaknesses...)
	out.Improvements = append([]string(nil), e.Improvements...)
	out.RecommendedTopics = append([]string(nil), e.RecommendedTopics...)
	return &out
}

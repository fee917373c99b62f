package storage

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/terra-clan/careerprep/internal/models"
)

func newSession(id string, status models.InterviewStatus, created, expires time.Time) *models.InterviewSession {
	return &models.InterviewSession{
		ID:              id,
		Role:            "Backend Developer",
		ResumeText:      "resume",
		Status:          status,
		QuestionNumber:  1,
		CurrentQuestion: "Tell me about yourself.",
		CreatedAt:       created,
		UpdatedAt:       created,
		ExpiresAt:       expires,
	}
}

func TestMemoryInterviewLifecycle(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	s := newSession("a", models.InterviewAwaitingAnswer, now, now.Add(time.Hour))
	if err := repo.CreateInterview(ctx, s); err != nil {
		t.Fatalf("CreateInterview() error = %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	s.History = append(s.History, models.ConvoEntry{Question: "q", Answer: "a"})

	got, err := repo.GetInterview(ctx, "a")
	if err != nil {
		t.Fatalf("GetInterview() error = %v", err)
	}
	if len(got.History) != 0 {
		t.Fatalf("stored history = %v, want empty", got.History)
	}

	got.QuestionNumber = 2
	got.Pending = &models.PendingTurn{Answer: "x", QuestionNumber: 3, Attempts: 1}
	if err := repo.UpdateInterview(ctx, got); err != nil {
		t.Fatalf("UpdateInterview() error = %v", err)
	}

	again, _ := repo.GetInterview(ctx, "a")
	if again.QuestionNumber != 2 || again.Pending == nil || again.Pending.Answer != "x" {
		t.Errorf("updated session = %+v", again)
	}
}

func TestMemoryNotFound(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if _, err := repo.GetInterview(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetInterview() error = %v, want ErrNotFound", err)
	}
	if err := repo.UpdateInterview(ctx, &models.InterviewSession{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateInterview() error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetResult(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetResult() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryListInterviews(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Now()

	repo.CreateInterview(ctx, newSession("old", models.InterviewFinished, base, base.Add(time.Hour)))
	repo.CreateInterview(ctx, newSession("mid", models.InterviewAwaitingAnswer, base.Add(time.Minute), base.Add(time.Hour)))
	repo.CreateInterview(ctx, newSession("new", models.InterviewAwaitingAnswer, base.Add(2*time.Minute), base.Add(time.Hour)))

	all, _ := repo.ListInterviews(ctx, models.InterviewListFilters{})
	if len(all) != 3 || all[0].ID != "new" || all[2].ID != "old" {
		t.Fatalf("ListInterviews() order = %v", ids(all))
	}

	open, _ := repo.ListInterviews(ctx, models.InterviewListFilters{Status: models.InterviewAwaitingAnswer})
	if len(open) != 2 {
		t.Errorf("filtered len = %d, want 2", len(open))
	}

	page, _ := repo.ListInterviews(ctx, models.InterviewListFilters{Limit: 1, Offset: 1})
	if len(page) != 1 || page[0].ID != "mid" {
		t.Errorf("page = %v, want [mid]", ids(page))
	}

	beyond, _ := repo.ListInterviews(ctx, models.InterviewListFilters{Offset: 10})
	if len(beyond) != 0 {
		t.Errorf("offset beyond end = %v", ids(beyond))
	}
}

func TestMemoryGetExpiredInterviews(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	repo.CreateInterview(ctx, newSession("stale", models.InterviewAwaitingAnswer, now, now.Add(-time.Minute)))
	repo.CreateInterview(ctx, newSession("fresh", models.InterviewAwaitingAnswer, now, now.Add(time.Hour)))
	repo.CreateInterview(ctx, newSession("done", models.InterviewFinished, now, now.Add(-time.Minute)))

	expired, err := repo.GetExpiredInterviews(ctx, now)
	if err != nil {
		t.Fatalf("GetExpiredInterviews() error = %v", err)
	}
	if len(expired) != 1 || expired[0].ID != "stale" {
		t.Errorf("expired = %v, want [stale]", ids(expired))
	}
}

func TestMemoryUpsertResult(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	first := &models.InterviewResult{InterviewID: "local-1", Questions: []string{"q1"}, Answers: []string{"a1"}, Score: 50}
	if err := repo.UpsertResult(ctx, first); err != nil {
		t.Fatalf("UpsertResult() error = %v", err)
	}
	second := &models.InterviewResult{
		InterviewID: "local-1",
		Questions:   []string{"q1", "q2"},
		Answers:     []string{"a1", "a2"},
		Score:       80,
		Feedback:    &models.Evaluation{Score: 80, Strengths: []string{"clear"}},
	}
	if err := repo.UpsertResult(ctx, second); err != nil {
		t.Fatalf("UpsertResult() error = %v", err)
	}

	got, err := repo.GetResult(ctx, "local-1")
	if err != nil {
		t.Fatalf("GetResult() error = %v", err)
	}
	if got.Score != 80 || len(got.Questions) != 2 || got.Feedback == nil || got.Feedback.Strengths[0] != "clear" {
		t.Errorf("GetResult() = %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_results.sql": {Data: []byte("SELECT 2;")},
		"001_init.sql":    {Data: []byte("SELECT 1;")},
		"README.md":       {Data: []byte("docs")},
		"003_next.sql":    {Data: []byte("SELECT 3;")},
	}

	got, err := pendingMigrations(fsys, map[string]bool{"002_results.sql": true})
	if err != nil {
		t.Fatalf("pendingMigrations() error = %v", err)
	}
	want := []string{"001_init.sql", "003_next.sql"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("pendingMigrations() = %v, want %v", got, want)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	fsys, err := MigrationsFS("")
	if err != nil {
		t.Fatalf("MigrationsFS() error = %v", err)
	}
	got, err := pendingMigrations(fsys, nil)
	if err != nil {
		t.Fatalf("pendingMigrations() error = %v", err)
	}
	if len(got) == 0 || got[0] != "001_init.sql" {
		t.Errorf("embedded migrations = %v", got)
	}

	if _, err := MigrationsFS("/does/not/exist"); err == nil {
		t.Error("expected error for missing migrations directory")
	}
}

func ids(sessions []*models.InterviewSession) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.ID
	}
	return out
}

package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/Enricher/internal/domain"
	"github.com/shaiso/Enricher/internal/mq"
	"github.com/shaiso/Enricher/internal/orchestrator"
	"github.com/shaiso/Enricher/internal/repo"
)

// --- Test helpers ---

type fakeRequester struct {
	mu       sync.Mutex
	payloads []mq.EnrichRequestedPayload
	failID   string
}

func (f *fakeRequester) PublishEnrichRequested(ctx context.Context, p mq.EnrichRequestedPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == f.failID {
		return "", errors.New("channel closed")
	}
	f.payloads = append(f.payloads, p)
	return "msg-" + p.ID, nil
}

func (f *fakeRequester) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, len(f.payloads))
	for i, p := range f.payloads {
		ids[i] = p.Pipeline + "/" + p.ID
	}
	return ids
}

type failingLister struct{}

func (failingLister) ListMissing(ctx context.Context, field string, limit int) ([]string, error) {
	return nil, errors.New("connection refused")
}

type fakeLeader struct {
	ok       bool
	attempts int
	released bool
}

func (l *fakeLeader) TryAcquire(ctx context.Context) (bool, error) {
	l.attempts++
	return l.ok, nil
}

func (l *fakeLeader) Release(ctx context.Context) error {
	l.released = true
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixtures() (*repo.MemStore, *repo.MemStore) {
	jobs := repo.NewMemStore(
		domain.Record{"id": "j1", "jd_text": "a"},
		domain.Record{"id": "j2", "jd_text": "b", "skills": []any{"Go"}},
		domain.Record{"id": "j3", "jd_text": "c"},
	)
	candidates := repo.NewMemStore(
		domain.Record{"id": "c1", "resume_text": "a", "resume_summary": "done"},
		domain.Record{"id": "c2", "resume_text": "b"},
	)
	return jobs, candidates
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --- Tick Tests ---

func TestTick_PublishesMissing(t *testing.T) {
	jobs, candidates := fixtures()
	req := &fakeRequester{}

	s := New(Config{
		Targets:   DefaultTargets(jobs, candidates),
		Requester: req,
		Logger:    testLogger(),
	})

	if err := s.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}

	want := []string{"job/j1", "job/j3", "candidate/c2"}
	if got := req.ids(); !equal(got, want) {
		t.Errorf("published = %v, want %v", got, want)
	}
	for _, p := range req.payloads {
		if p.Source != mq.SourceScheduler {
			t.Errorf("source = %q", p.Source)
		}
	}
}

func TestTick_Cooldown(t *testing.T) {
	jobs, candidates := fixtures()
	req := &fakeRequester{}

	s := New(Config{
		Targets:   DefaultTargets(jobs, candidates),
		Requester: req,
		Logger:    testLogger(),
		Cooldown:  10 * time.Minute,
	})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_ = s.Tick(context.Background())
	_ = s.Tick(context.Background())
	if got := len(req.ids()); got != 3 {
		t.Fatalf("published = %d, want 3 (second tick within cooldown)", got)
	}

	now = now.Add(10 * time.Minute)
	_ = s.Tick(context.Background())
	if got := len(req.ids()); got != 6 {
		t.Errorf("published = %d, want 6 after cooldown", got)
	}
	if len(s.requested) != 3 {
		t.Errorf("requested marks = %d, want 3", len(s.requested))
	}
}

func TestTick_ErrorsDoNotBlockOthers(t *testing.T) {
	jobs, candidates := fixtures()
	req := &fakeRequester{failID: "j1"}

	s := New(Config{
		Targets: []Target{
			{Pipeline: orchestrator.PipelineJob, Records: failingLister{}, Field: "skills"},
			{Pipeline: orchestrator.PipelineJob, Records: jobs, Field: "skills"},
			{Pipeline: orchestrator.PipelineCandidate, Records: candidates, Field: "resume_summary"},
		},
		Requester: req,
		Logger:    testLogger(),
	})

	err := s.Tick(context.Background())
	if err == nil {
		t.Fatal("expected list error")
	}

	want := []string{"job/j3", "candidate/c2"}
	if got := req.ids(); !equal(got, want) {
		t.Errorf("published = %v, want %v", got, want)
	}

	// Неудачная публикация не помечается и повторяется на следующем тике
	req.failID = ""
	_ = s.Tick(context.Background())
	if got := req.ids(); got[len(got)-1] != "job/j1" {
		t.Errorf("published = %v, want retry of job/j1", got)
	}
}

func TestTick_BatchSize(t *testing.T) {
	jobs, candidates := fixtures()
	req := &fakeRequester{}

	s := New(Config{
		Targets:   DefaultTargets(jobs, candidates),
		Requester: req,
		Logger:    testLogger(),
		BatchSize: 1,
	})

	_ = s.Tick(context.Background())
	if got := req.ids(); !equal(got, []string{"job/j1", "candidate/c2"}) {
		t.Errorf("published = %v", got)
	}
}

func TestTickAsLeader(t *testing.T) {
	jobs, candidates := fixtures()
	req := &fakeRequester{}
	leader := &fakeLeader{}

	s := New(Config{
		Targets:   DefaultTargets(jobs, candidates),
		Requester: req,
		Leader:    leader,
		Logger:    testLogger(),
	})

	s.tickAsLeader(context.Background())
	if len(req.ids()) != 0 {
		t.Error("follower must not publish")
	}

	leader.ok = true
	s.tickAsLeader(context.Background())
	if len(req.ids()) != 3 {
		t.Errorf("leader published %d, want 3", len(req.ids()))
	}
	if leader.attempts != 2 {
		t.Errorf("attempts = %d", leader.attempts)
	}
}

func TestRun_ReleasesLeader(t *testing.T) {
	jobs, candidates := fixtures()
	leader := &fakeLeader{ok: true}

	s := New(Config{
		Targets:   DefaultTargets(jobs, candidates),
		Requester: &fakeRequester{},
		Leader:    leader,
		Logger:    testLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Run(ctx, "@hourly"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !leader.released {
		t.Error("leader lock must be released on exit")
	}

	if err := s.Run(context.Background(), "not a cron"); err == nil {
		t.Error("expected invalid cron error")
	}
}

// --- Cron Tests ---

func TestValidateCronExpr(t *testing.T) {
	valid := []string{"*/15 * * * *", "0 3 * * 1-5", "@hourly"}
	for _, expr := range valid {
		if err := ValidateCronExpr(expr); err != nil {
			t.Errorf("ValidateCronExpr(%q) error = %v", expr, err)
		}
	}

	invalid := []string{"", "* * *", "61 * * * *", "0 0 * * * *"}
	for _, expr := range invalid {
		if err := ValidateCronExpr(expr); err == nil {
			t.Errorf("ValidateCronExpr(%q) expected error", expr)
		}
	}
}

func TestNextRun(t *testing.T) {
	from := time.Date(2026, 3, 10, 12, 7, 30, 0, time.UTC)

	next, err := NextRun("*/15 * * * *", from)
	if err != nil {
		t.Fatalf("NextRun() error = %v", err)
	}
	want := time.Date(2026, 3, 10, 12, 15, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("NextRun() = %v, want %v", next, want)
	}

	if _, err := NextRun("bogus", from); err == nil {
		t.Error("expected parse error")
	}
}

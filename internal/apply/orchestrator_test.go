package apply

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/talentlink/talentlink/internal/platform"
	"github.com/talentlink/talentlink/internal/session"
)

type fakeAnalyzer struct {
	mu       sync.Mutex
	analysis *platform.Analysis
	err      error
	calls    int
}

func (f *fakeAnalyzer) Analyze(savedFilename string) (*platform.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.analysis, f.err
}

type fakeScorer struct {
	mu     sync.Mutex
	scores map[string]int
	calls  int
}

func (f *fakeScorer) MatchScore(shortID, jobID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	score, ok := f.scores[jobID]
	if !ok {
		return 0, fmt.Errorf("%w: matching down", platform.ErrUpstreamUnavailable)
	}
	return score, nil
}

type fakeStore struct {
	mu        sync.Mutex
	apps      []*platform.Application
	createErr error
	created   []*platform.CreateApplicationRequest
	updated   map[string]string
	deleted   []string
}

func (f *fakeStore) CreateApplication(req *platform.CreateApplicationRequest) (*platform.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)

	app := &platform.Application{
		ID:         fmt.Sprintf("app-%d", len(f.created)),
		MatchScore: req.MatchScore,
		Unscored:   req.Unscored,
		Skills:     req.Skills,
		Summary:    req.Summary,
		Status:     platform.StatusPending,
	}
	app.Job.ID = req.JobID
	app.Job.Title = req.JobTitle
	app.Candidate.ID = req.CandidateID
	app.Candidate.Name = req.CandidateName
	f.apps = append(f.apps, app)

	return app, nil
}

func (f *fakeStore) ApplicationsByCandidate(candidateID string) (*platform.Applications, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := &platform.Applications{}
	for _, app := range f.apps {
		if app.Candidate.ID == candidateID {
			out.Items = append(out.Items, app)
		}
	}
	return out, nil
}

func (f *fakeStore) ApplicationsByRecruiter(recruiterID string) (*platform.Applications, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := &platform.Applications{}
	for _, app := range f.apps {
		if app.Job.RecruiterID == recruiterID {
			out.Items = append(out.Items, app)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateApplicationStatus(id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, app := range f.apps {
		if app.ID == id {
			app.Status = status
			if f.updated == nil {
				f.updated = make(map[string]string)
			}
			f.updated[id] = status
			return nil
		}
	}
	return platform.ErrNotFound
}

func (f *fakeStore) DeleteApplication(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.apps[:0]
	for _, app := range f.apps {
		if app.ID == id {
			f.deleted = append(f.deleted, id)
			continue
		}
		kept = append(kept, app)
	}
	f.apps = kept
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	err    error
	events []*platform.ApplicationSubmittedEvent
}

func (f *fakeNotifier) ApplicationSubmitted(event *platform.ApplicationSubmittedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func candidateSession(withCV bool) *session.Session {
	s := session.New(session.Identity{
		UserID:      "cand-1",
		DisplayName: "Ada",
		Role:        session.RoleCandidate,
	}, zap.NewNop())

	if withCV {
		s.SelectCV(&platform.CVRecord{ID: "cv-1", SavedFilename: "abc123_resume.pdf"})
	}
	return s
}

func testJob() *platform.Job {
	return &platform.Job{ID: "job-1", Title: "Backend Engineer", Company: "Acme", RecruiterID: "rec-1"}
}

func TestCreateRequiresActiveCV(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	scorer := &fakeScorer{scores: map[string]int{"job-1": 72}}
	store := &fakeStore{}
	notifier := &fakeNotifier{}

	orch := NewOrchestrator(candidateSession(false), analyzer, scorer, store, notifier, zap.NewNop())

	_, outcome, err := orch.Create(testJob())
	if !errors.Is(err, platform.ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}
	if outcome.Created {
		t.Fatal("outcome must not report a created record")
	}
	if analyzer.calls != 0 || scorer.calls != 0 {
		t.Fatalf("no enrichment call may precede the precondition check, got analyze=%d score=%d",
			analyzer.calls, scorer.calls)
	}
	if len(store.created) != 0 {
		t.Fatal("nothing may be persisted without an active cv")
	}
}

func TestCreateProceedsWhenAnalysisDown(t *testing.T) {
	analyzer := &fakeAnalyzer{err: fmt.Errorf("%w: analysis down", platform.ErrUpstreamUnavailable)}
	scorer := &fakeScorer{scores: map[string]int{"job-1": 72}}
	store := &fakeStore{}
	notifier := &fakeNotifier{}

	orch := NewOrchestrator(candidateSession(true), analyzer, scorer, store, notifier, zap.NewNop())

	created, outcome, err := orch.Create(testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Status != platform.StatusPending {
		t.Fatalf("expected pending status, got %q", created.Status)
	}
	if created.MatchScore != 72 || created.Unscored {
		t.Fatalf("expected score 72 scored, got %d unscored=%v", created.MatchScore, created.Unscored)
	}
	if created.Skills == nil || len(created.Skills) != 0 {
		t.Fatalf("expected empty skills list, got %v", created.Skills)
	}
	if created.Summary != "" {
		t.Fatalf("expected empty summary, got %q", created.Summary)
	}
	if outcome != (Outcome{Created: true, Enriched: false, Notified: true}) {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestCreateSubmitsUnscoredWhenMatchingDown(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: &platform.Analysis{Skills: []string{"go"}, Summary: "builds services"}}
	scorer := &fakeScorer{}
	store := &fakeStore{}
	notifier := &fakeNotifier{}

	orch := NewOrchestrator(candidateSession(true), analyzer, scorer, store, notifier, zap.NewNop())

	created, outcome, err := orch.Create(testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.MatchScore != 0 || !created.Unscored {
		t.Fatalf("expected unscored fallback, got %d unscored=%v", created.MatchScore, created.Unscored)
	}
	if !outcome.Enriched {
		t.Fatal("a working analyzer must still enrich the record")
	}
}

func TestCreatePrefersCachedAnalysis(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: &platform.Analysis{Skills: []string{"stale"}}}
	scorer := &fakeScorer{scores: map[string]int{"job-1": 50}}
	store := &fakeStore{}
	notifier := &fakeNotifier{}

	sess := candidateSession(true)
	sess.CacheAnalysis("abc123", &platform.Analysis{Skills: []string{"go", "sql"}, Summary: "cached"})

	orch := NewOrchestrator(sess, analyzer, scorer, store, notifier, zap.NewNop())

	created, _, err := orch.Create(testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if analyzer.calls != 0 {
		t.Fatalf("expected cache hit, analyzer called %d times", analyzer.calls)
	}
	if created.Summary != "cached" {
		t.Fatalf("expected cached analysis, got summary %q", created.Summary)
	}
}

func TestCreateSurfacesDuplicate(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: &platform.Analysis{Skills: []string{}}}
	scorer := &fakeScorer{scores: map[string]int{"job-1": 72}}
	store := &fakeStore{createErr: fmt.Errorf("%w: 409 conflict", platform.ErrAlreadyApplied)}
	notifier := &fakeNotifier{}

	orch := NewOrchestrator(candidateSession(true), analyzer, scorer, store, notifier, zap.NewNop())

	_, outcome, err := orch.Create(testJob())
	if !errors.Is(err, platform.ErrAlreadyApplied) {
		t.Fatalf("expected ErrAlreadyApplied, got %v", err)
	}
	if outcome.Created {
		t.Fatal("a rejected write must not report a created record")
	}
	if len(notifier.events) != 0 {
		t.Fatal("no notification may go out for a rejected write")
	}
}

func TestCreateRecordsDroppedNotification(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: &platform.Analysis{Skills: []string{}}}
	scorer := &fakeScorer{scores: map[string]int{"job-1": 72}}
	store := &fakeStore{}
	notifier := &fakeNotifier{err: fmt.Errorf("%w: notifications down", platform.ErrUpstreamUnavailable)}

	orch := NewOrchestrator(candidateSession(true), analyzer, scorer, store, notifier, zap.NewNop())

	created, outcome, err := orch.Create(testJob())
	if err != nil {
		t.Fatalf("a dropped notification must not fail the submission: %v", err)
	}
	if created == nil || !outcome.Created {
		t.Fatal("the record is durable regardless of the notification")
	}
	if outcome.Notified {
		t.Fatal("outcome must record the dropped notification")
	}
}

func TestCreateEmitsEventAfterDurableWrite(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: &platform.Analysis{Skills: []string{"go"}}}
	scorer := &fakeScorer{scores: map[string]int{"job-1": 85}}
	store := &fakeStore{}
	notifier := &fakeNotifier{}

	orch := NewOrchestrator(candidateSession(true), analyzer, scorer, store, notifier, zap.NewNop())

	created, _, err := orch.Create(testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifier.events) != 1 {
		t.Fatalf("expected one event, got %d", len(notifier.events))
	}
	event := notifier.events[0]
	if event.ApplicationID != created.ID || event.RecruiterID != "rec-1" || event.CandidateName != "Ada" {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func recruiterSession() *session.Session {
	return session.New(session.Identity{
		UserID:      "rec-1",
		DisplayName: "Grace",
		Role:        session.RoleRecruiter,
	}, zap.NewNop())
}

func storedApplication(id, status string) *platform.Application {
	app := &platform.Application{ID: id, Status: status}
	app.Job.ID = "job-1"
	app.Job.RecruiterID = "rec-1"
	app.Candidate.ID = "cand-1"
	return app
}

func TestSetStatusRejectsNonTerminalTarget(t *testing.T) {
	store := &fakeStore{apps: []*platform.Application{storedApplication("app-1", platform.StatusPending)}}
	orch := NewOrchestrator(recruiterSession(), &fakeAnalyzer{}, &fakeScorer{}, store, &fakeNotifier{}, zap.NewNop())

	if _, err := orch.SetStatus("app-1", platform.StatusPending); !errors.Is(err, platform.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestSetStatusRejectsSecondDecision(t *testing.T) {
	store := &fakeStore{apps: []*platform.Application{storedApplication("app-1", platform.StatusAccepted)}}
	orch := NewOrchestrator(recruiterSession(), &fakeAnalyzer{}, &fakeScorer{}, store, &fakeNotifier{}, zap.NewNop())

	if _, err := orch.SetStatus("app-1", platform.StatusRejected); !errors.Is(err, platform.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if len(store.updated) != 0 {
		t.Fatal("a rejected transition must not touch the store")
	}
	if got := store.apps[0].Status; got != platform.StatusAccepted {
		t.Fatalf("status must be unchanged, got %q", got)
	}
}

func TestSetStatusUnknownApplication(t *testing.T) {
	store := &fakeStore{}
	orch := NewOrchestrator(recruiterSession(), &fakeAnalyzer{}, &fakeScorer{}, store, &fakeNotifier{}, zap.NewNop())

	if _, err := orch.SetStatus("nope", platform.StatusAccepted); !errors.Is(err, platform.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetStatusReturnsRefreshedSet(t *testing.T) {
	store := &fakeStore{apps: []*platform.Application{storedApplication("app-1", platform.StatusPending)}}
	orch := NewOrchestrator(recruiterSession(), &fakeAnalyzer{}, &fakeScorer{}, store, &fakeNotifier{}, zap.NewNop())

	apps, err := orch.SetStatus("app-1", platform.StatusAccepted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	refreshed := apps.FindByID("app-1")
	if refreshed == nil || refreshed.Status != platform.StatusAccepted {
		t.Fatalf("expected refreshed accepted record, got %+v", refreshed)
	}
}

func TestDeleteChecksOwnership(t *testing.T) {
	other := storedApplication("app-1", platform.StatusPending)
	other.Candidate.ID = "cand-other"
	store := &fakeStore{apps: []*platform.Application{other}}

	orch := NewOrchestrator(candidateSession(true), &fakeAnalyzer{}, &fakeScorer{}, store, &fakeNotifier{}, zap.NewNop())

	if err := orch.Delete("app-1"); !errors.Is(err, platform.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for someone else's application, got %v", err)
	}
	if len(store.deleted) != 0 {
		t.Fatal("nothing may be deleted without ownership")
	}
}

func TestDeleteOwnApplicationInAnyStatus(t *testing.T) {
	store := &fakeStore{apps: []*platform.Application{storedApplication("app-1", platform.StatusAccepted)}}
	orch := NewOrchestrator(candidateSession(true), &fakeAnalyzer{}, &fakeScorer{}, store, &fakeNotifier{}, zap.NewNop())

	if err := orch.Delete("app-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "app-1" {
		t.Fatalf("expected app-1 deleted, got %v", store.deleted)
	}
}

func TestScoreJobsManyJobsConcurrently(t *testing.T) {
	// Enough jobs that goroutines are still running while later loop
	// iterations would execute; the race detector guards the map writes.
	const jobCount = 200

	scorer := &fakeScorer{scores: make(map[string]int, jobCount)}
	jobs := &platform.Jobs{}
	for i := 0; i < jobCount; i++ {
		id := fmt.Sprintf("job-%d", i)
		jobs.Items = append(jobs.Items, &platform.Job{ID: id})
		if i%2 == 0 {
			scorer.scores[id] = i % 101
		}
	}

	orch := NewOrchestrator(candidateSession(true), &fakeAnalyzer{}, scorer, &fakeStore{}, &fakeNotifier{}, zap.NewNop())

	scores := orch.ScoreJobs(context.Background(), "abc123", jobs)

	if len(scores) != jobCount {
		t.Fatalf("expected %d entries, got %d", jobCount, len(scores))
	}
	for i := 0; i < jobCount; i++ {
		id := fmt.Sprintf("job-%d", i)
		if i%2 == 0 {
			if scores[id] == nil || *scores[id] != i%101 {
				t.Fatalf("expected %s scored %d, got %v", id, i%101, scores[id])
			}
			continue
		}
		if scores[id] != nil {
			t.Fatalf("expected %s nil after a failed fetch, got %d", id, *scores[id])
		}
	}
}

func TestScoreJobsLeavesFailedScoresNil(t *testing.T) {
	scorer := &fakeScorer{scores: map[string]int{"job-1": 80, "job-3": 0}}
	orch := NewOrchestrator(candidateSession(true), &fakeAnalyzer{}, scorer, &fakeStore{}, &fakeNotifier{}, zap.NewNop())

	jobs := &platform.Jobs{Items: []*platform.Job{
		{ID: "job-1"}, {ID: "job-2"}, {ID: "job-3"},
	}}

	scores := orch.ScoreJobs(context.Background(), "abc123", jobs)

	if len(scores) != 3 {
		t.Fatalf("expected an entry per job, got %d", len(scores))
	}
	if scores["job-1"] == nil || *scores["job-1"] != 80 {
		t.Fatalf("expected job-1 scored 80, got %v", scores["job-1"])
	}
	if scores["job-2"] != nil {
		t.Fatalf("expected job-2 nil after a failed fetch, got %d", *scores["job-2"])
	}
	if scores["job-3"] == nil || *scores["job-3"] != 0 {
		t.Fatal("a genuine 0 must be distinguishable from a failed fetch")
	}
}

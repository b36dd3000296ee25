// Package apply implements the application lifecycle: the multi-service
// create workflow, status transitions and withdrawal. The durable record in
// the application store is the source of truth; analysis and scoring are
// enrichments and the notification is a side-effect, neither of which can
// fail a submission.
package apply

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talentlink/talentlink/internal/platform"
	"github.com/talentlink/talentlink/internal/session"
)

const scoreConcurrency = 8

// Analyzer fetches extracted skills and summary for a stored CV.
type Analyzer interface {
	Analyze(savedFilename string) (*platform.Analysis, error)
}

// Scorer fetches one compatibility score per (CV, job) pair.
type Scorer interface {
	MatchScore(shortID, jobID string) (int, error)
}

// ApplicationStore is the durable store for application records.
type ApplicationStore interface {
	CreateApplication(req *platform.CreateApplicationRequest) (*platform.Application, error)
	ApplicationsByCandidate(candidateID string) (*platform.Applications, error)
	ApplicationsByRecruiter(recruiterID string) (*platform.Applications, error)
	UpdateApplicationStatus(id, status string) error
	DeleteApplication(id string) error
}

// Notifier dispatches lifecycle events. The returned error feeds the saga
// log only; implementations must never block the submission workflow.
type Notifier interface {
	ApplicationSubmitted(event *platform.ApplicationSubmittedEvent) error
}

// Outcome is the saga log for one submission. A partially finished
// submission (created but not enriched or not notified) is detectable from
// it and safe to repair later.
type Outcome struct {
	Created  bool
	Enriched bool
	Notified bool
}

type Orchestrator struct {
	session  *session.Session
	analyzer Analyzer
	scorer   Scorer
	store    ApplicationStore
	notifier Notifier
	logger   *zap.Logger
}

func NewOrchestrator(s *session.Session, analyzer Analyzer, scorer Scorer, store ApplicationStore, notifier Notifier, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		session:  s,
		analyzer: analyzer,
		scorer:   scorer,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Create submits an application for the given job using the session's
// active CV. The returned record always carries the pending status. The
// precondition check runs before any enrichment call so that a missing CV
// never costs a scoring request.
func (o *Orchestrator) Create(job *platform.Job) (*platform.Application, Outcome, error) {
	outcome := Outcome{}

	ident, err := o.session.RequireUser()
	if err != nil {
		return nil, outcome, err
	}

	cv := o.session.ActiveCV()
	if cv == nil {
		return nil, outcome, fmt.Errorf("%w: select or upload a CV first", platform.ErrPreconditionFailed)
	}
	shortID := cv.ShortID()

	analysis, enriched := o.resolveAnalysis(cv)
	outcome.Enriched = enriched

	score, unscored := o.resolveScore(shortID, job.ID)

	created, err := o.store.CreateApplication(&platform.CreateApplicationRequest{
		JobID:         job.ID,
		JobTitle:      job.Title,
		CandidateID:   ident.UserID,
		CandidateName: ident.DisplayName,
		CVID:          cv.ID,
		CVURL:         cv.SavedFilename,
		MatchScore:    score,
		Unscored:      unscored,
		Skills:        analysis.Skills,
		Summary:       analysis.Summary,
	})
	if err != nil {
		return nil, outcome, fmt.Errorf("persist application: %w", err)
	}
	outcome.Created = true

	// The record is durable from here on. Notification failures are logged
	// by the dispatcher; there is no compensating action.
	notifyErr := o.notifier.ApplicationSubmitted(&platform.ApplicationSubmittedEvent{
		ApplicationID: created.ID,
		JobID:         job.ID,
		JobTitle:      job.Title,
		CandidateName: ident.DisplayName,
		RecruiterID:   job.RecruiterID,
	})
	outcome.Notified = notifyErr == nil

	o.logger.Info("application submitted",
		zap.String("application_id", created.ID),
		zap.String("job_id", job.ID),
		zap.Int("match_score", score),
		zap.Bool("unscored", unscored),
		zap.Bool("enriched", outcome.Enriched),
	)

	return created, outcome, nil
}

// resolveAnalysis prefers the session cache and falls back to the service.
// On failure the submission proceeds with an empty analysis.
func (o *Orchestrator) resolveAnalysis(cv *platform.CVRecord) (*platform.Analysis, bool) {
	if cached := o.session.CachedAnalysis(); cached != nil {
		return cached, true
	}

	analysis, err := o.analyzer.Analyze(cv.SavedFilename)
	if err != nil {
		o.logger.Warn("analysis unavailable, submitting without skills",
			zap.String("cv_id", cv.ID),
			zap.Error(err),
		)
		return &platform.Analysis{Skills: []string{}}, false
	}

	o.session.CacheAnalysis(cv.ShortID(), analysis)
	return analysis, true
}

// resolveScore falls back to 0 flagged unscored, so a genuine score of 0 is
// never confused with a scoring failure.
func (o *Orchestrator) resolveScore(shortID, jobID string) (int, bool) {
	score, err := o.scorer.MatchScore(shortID, jobID)
	if err != nil {
		o.logger.Warn("match score unavailable, submitting unscored",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		return 0, true
	}

	return score, false
}

// SetStatus moves a pending application owned by the session's recruiter to
// a terminal state and returns the refreshed application set. The collection
// is treated as refreshed-on-write: no incremental diffing, correctness over
// performance.
func (o *Orchestrator) SetStatus(id, status string) (*platform.Applications, error) {
	ident, err := o.session.RequireUser()
	if err != nil {
		return nil, err
	}

	if !platform.IsTerminalStatus(status) {
		return nil, fmt.Errorf("%w: %q is not a terminal status", platform.ErrInvalidTransition, status)
	}

	apps, err := o.store.ApplicationsByRecruiter(ident.UserID)
	if err != nil {
		return nil, err
	}

	current := apps.FindByID(id)
	if current == nil {
		return nil, fmt.Errorf("application %s: %w", id, platform.ErrNotFound)
	}

	if platform.IsTerminalStatus(current.Status) {
		return nil, fmt.Errorf("%w: application %s is already %s", platform.ErrInvalidTransition, id, current.Status)
	}

	if err := o.store.UpdateApplicationStatus(id, status); err != nil {
		return nil, err
	}

	o.logger.Info("application status updated",
		zap.String("application_id", id),
		zap.String("status", status),
	)

	return o.store.ApplicationsByRecruiter(ident.UserID)
}

// Delete withdraws one of the session candidate's own applications. Allowed
// in any status; the record is gone from subsequent aggregations.
func (o *Orchestrator) Delete(id string) error {
	ident, err := o.session.RequireUser()
	if err != nil {
		return err
	}

	apps, err := o.store.ApplicationsByCandidate(ident.UserID)
	if err != nil {
		return err
	}

	if apps.FindByID(id) == nil {
		return fmt.Errorf("application %s: %w", id, platform.ErrNotFound)
	}

	if err := o.store.DeleteApplication(id); err != nil {
		return err
	}

	o.logger.Info("application withdrawn", zap.String("application_id", id))
	return nil
}

// ScoreJobs fetches scores for every job concurrently. Entries stay nil when
// the fetch failed, so callers can sort unknown scores below a real 0.
// Completion order is not request order; results are keyed by job id.
func (o *Orchestrator) ScoreJobs(ctx context.Context, shortID string, jobs *platform.Jobs) map[string]*int {
	// All nil entries are written before the first goroutine starts, so
	// the map is only ever mutated under mu after that.
	scores := make(map[string]*int, jobs.Len())
	for _, job := range jobs.Items {
		scores[job.ID] = nil
	}

	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(scoreConcurrency)

	for _, job := range jobs.Items {
		job := job

		g.Go(func() error {
			score, err := o.scorer.MatchScore(shortID, job.ID)
			if err != nil {
				o.logger.Debug("score fetch failed",
					zap.String("job_id", job.ID),
					zap.Error(err),
				)
				return nil
			}

			mu.Lock()
			scores[job.ID] = &score
			mu.Unlock()
			return nil
		})
	}

	// Goroutines never return errors; Wait is for completion only.
	_ = g.Wait()

	return scores
}

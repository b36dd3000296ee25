package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentlink/talentlink/internal/apply"
	"github.com/talentlink/talentlink/internal/filtering"
	"github.com/talentlink/talentlink/internal/notify"
	"github.com/talentlink/talentlink/internal/platform"
	"github.com/talentlink/talentlink/internal/session"
)

const promptBack = "back"

var errExit = errors.New("exit requested")

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Browse open jobs with compatibility scores and submit applications",
	Run: func(cmd *cobra.Command, _ []string) {
		runApply(cmd)
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().BoolP("do-not-exclude-applied", "f", false, "keep jobs you already applied to in the feed")
	applyCmd.Flags().BoolP("auto-approve", "y", false, "apply to the best match without asking")
}

func runApply(cmd *cobra.Command) {
	ctx := context.Background()

	e, err := setup(ctx)
	if err != nil {
		log.Fatalf("setup: %s", err)
	}

	ident, err := e.session.RequireUser()
	if err != nil {
		e.logger.Fatal("not authenticated",
			zap.Error(err),
			zap.String("hint", "set identity.user-id in the configuration file"),
		)
	}

	e.logger.Info("starting the candidate apply flow", zap.String("user_id", ident.UserID))

	cvs, err := e.client.ListCVs(ident.UserID)
	if err != nil {
		e.logger.Fatal("listing cvs", zap.Error(err))
	}

	if cvs.Len() == 0 {
		e.logger.Fatal("no cv on file", zap.String("hint", "run 'talentlink cv upload <file>' first"))
	}

	state, err := session.LoadState(e.config.stateFile())
	if err != nil {
		e.logger.Warn("reading session state", zap.Error(err))
	}

	cv := pickActiveCV(cvs, e.config.applyCV(), state.ActiveCVID)
	if cv == nil {
		e.logger.Fatal("cv with given filename not found",
			zap.String("cv", e.config.applyCV()),
		)
	}
	e.session.SelectCV(cv)

	e.logger.Info("active cv",
		zap.String("cv_id", cv.ID),
		zap.String("filename", cv.OriginalFilename),
	)

	jobs, err := e.client.ListJobs()
	if err != nil {
		e.logger.Fatal("getting open jobs", zap.Error(err))
	}

	e.logger.Info("getting open jobs", zap.Int("count", jobs.Len()))

	ignoreApplied := cmd.Flag("do-not-exclude-applied").Value.String() == "true"
	steps := []filtering.Filter{
		filtering.NewAppliedHistory(e.client, ident.UserID, ignoreApplied),
		filtering.NewExcludedCompanies(e.config.excludedCompanies()),
	}

	jobs, err = filtering.Run(steps, jobs, e.logger)
	if err != nil {
		e.logger.Fatal("filtering failed", zap.Error(err))
	}

	if jobs.Len() == 0 {
		e.logger.Info("exiting", zap.String("reason", "no jobs left after filters"))
		return
	}

	dispatcher := notify.NewDispatcher(e.client, e.logger)
	orch := apply.NewOrchestrator(e.session, e.client, e.client, e.client, dispatcher, e.logger)

	scores := orch.ScoreJobs(ctx, cv.ShortID(), jobs)
	sortJobsByScore(jobs, scores)

	if cmd.Flag("auto-approve").Value.String() == "true" {
		if err := submit(orch, e.logger, jobs.Items[0], scores); err != nil && !errors.Is(err, errExit) {
			e.logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	for jobs.Len() > 0 {
		items := make([]string, 0, jobs.Len()+1)
		for _, job := range jobs.Items {
			items = append(items, fmt.Sprintf("%s %s / %s / %s",
				job.ID, job.Title, job.Company, formatScore(scores[job.ID]),
			))
		}

		jobPrompt := promptui.Select{
			Label: "Choose a job and press ENTER",
			Items: append(items, promptBack),
		}

		_, selected, err := jobPrompt.Run()
		if err != nil {
			e.logger.Fatal("exiting", zap.Error(err))
		}

		if selected == promptBack {
			return
		}

		jobID := strings.Split(selected, " ")[0]
		job := jobs.FindByID(jobID)
		if job == nil {
			e.logger.Fatal("exiting", zap.String("reason", fmt.Sprintf("there is no such job id %s", jobID)))
		}

		if err := submit(orch, e.logger, job, scores); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			e.logger.Fatal("exiting", zap.Error(err))
		}

		jobs.Exclude([]string{jobID})
	}
}

func submit(orch *apply.Orchestrator, logger *zap.Logger, job *platform.Job, scores map[string]*int) error {
	application, outcome, err := orch.Create(job)

	switch {
	case errors.Is(err, platform.ErrAlreadyApplied):
		logger.Warn("already applied to this job", zap.String("job_id", job.ID))
		return nil
	case errors.Is(err, platform.ErrPreconditionFailed):
		logger.Error("no active cv", zap.Error(err))
		return errExit
	case err != nil:
		return fmt.Errorf("submitting application: %w", err)
	}

	logger.Info("successfully applied to job",
		zap.String("application_id", application.ID),
		zap.String("job_id", job.ID),
		zap.String("job_title", job.Title),
		zap.String("feed_score", formatScore(scores[job.ID])),
		zap.Bool("enriched", outcome.Enriched),
	)

	return nil
}

// pickActiveCV resolves the CV for this run: a configured original filename
// wins, then the selection persisted by `cv select`/`cv upload`, then the
// newest upload. A stale persisted id falls through to the newest upload; a
// configured filename that matches nothing is an error (nil).
func pickActiveCV(cvs *platform.CVRecords, configured, persistedID string) *platform.CVRecord {
	if configured != "" {
		return cvs.FindByOriginalFilename(configured)
	}

	if persistedID != "" {
		if cv := cvs.FindByID(persistedID); cv != nil {
			return cv
		}
	}

	if cvs.Len() == 0 {
		return nil
	}
	return cvs.Items[0]
}

// sortJobsByScore orders the feed best match first. Jobs without a score
// sort below every scored job, including genuine zeros.
func sortJobsByScore(jobs *platform.Jobs, scores map[string]*int) {
	rank := func(id string) int {
		if s := scores[id]; s != nil {
			return *s
		}
		return -1
	}

	sort.SliceStable(jobs.Items, func(i, j int) bool {
		return rank(jobs.Items[i].ID) > rank(jobs.Items[j].ID)
	})
}

func formatScore(score *int) string {
	if score == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d%%", *score)
}

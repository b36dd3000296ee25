package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentlink/talentlink/internal/apply"
	"github.com/talentlink/talentlink/internal/logger"
	"github.com/talentlink/talentlink/internal/notify"
	"github.com/talentlink/talentlink/internal/platform"
)

const (
	promptAccept = "Accept"
	promptReject = "Reject"

	summaryLogLimit = 120
)

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Review pending applications for your jobs and accept or reject them",
	Run: func(_ *cobra.Command, _ []string) {
		runTriage()
	},
}

func init() {
	rootCmd.AddCommand(triageCmd)
}

func runTriage() {
	e, ident := mustSession()

	apps, err := e.client.ApplicationsByRecruiter(ident.UserID)
	if err != nil {
		e.logger.Fatal("getting applications", zap.Error(err))
	}

	dispatcher := notify.NewDispatcher(e.client, e.logger)
	orch := apply.NewOrchestrator(e.session, e.client, e.client, e.client, dispatcher, e.logger)

	for {
		pending := pendingOf(apps)
		if len(pending) == 0 {
			e.logger.Info("exiting", zap.String("reason", "no pending applications left"))
			return
		}

		e.logger.Info("pending applications", zap.Int("count", len(pending)))

		items := make([]string, 0, len(pending))
		for _, app := range pending {
			items = append(items, fmt.Sprintf("%s %s / %s / %s",
				app.ID, app.Candidate.Name, app.Job.Title, applicationScore(app),
			))
		}

		appPrompt := promptui.Select{
			Label: "Choose an application and press ENTER",
			Items: append(items, promptBack),
		}

		_, selected, err := appPrompt.Run()
		if err != nil {
			e.logger.Fatal("exiting", zap.Error(err))
		}

		if selected == promptBack {
			return
		}

		appID := strings.Split(selected, " ")[0]
		application := apps.FindByID(appID)
		if application == nil {
			e.logger.Fatal("exiting", zap.String("reason", fmt.Sprintf("there is no such application id %s", appID)))
		}

		e.logger.Info("application details",
			zap.String("candidate", application.Candidate.Name),
			zap.String("job", application.Job.Title),
			zap.String("score", applicationScore(application)),
			zap.Strings("skills", application.Skills),
			zap.String("summary", logger.TruncateForLog(application.Summary, summaryLogLimit)),
		)

		decisionPrompt := promptui.Select{
			Label: "Decision",
			Items: []string{promptAccept, promptReject, promptBack},
		}

		_, decision, err := decisionPrompt.Run()
		if err != nil {
			e.logger.Fatal("exiting", zap.Error(err))
		}

		status := ""
		switch decision {
		case promptAccept:
			status = platform.StatusAccepted
		case promptReject:
			status = platform.StatusRejected
		case promptBack:
			continue
		}

		refreshed, err := orch.SetStatus(appID, status)
		if err != nil {
			if errors.Is(err, platform.ErrInvalidTransition) {
				e.logger.Warn("application already decided", zap.String("application_id", appID), zap.Error(err))
				continue
			}
			e.logger.Fatal("updating status", zap.Error(err))
		}

		// SetStatus hands back the refreshed set so the derived views
		// stay consistent with the store.
		apps = refreshed
	}
}

func pendingOf(apps *platform.Applications) []*platform.Application {
	pending := make([]*platform.Application, 0, apps.Len())
	for _, app := range apps.Items {
		if app.Status == platform.StatusPending {
			pending = append(pending, app)
		}
	}
	return pending
}

func applicationScore(app *platform.Application) string {
	if app.Unscored {
		return "n/a"
	}
	return fmt.Sprintf("%d%%", app.MatchScore)
}

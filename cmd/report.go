package cmd

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentlink/talentlink/internal/stats"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show statistics over the applications to your jobs",
	Run: func(_ *cobra.Command, _ []string) {
		runReport()
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

// report is the serializable shape of one statistics run.
type report struct {
	Global     stats.GlobalStats        `json:"global"`
	ByStatus   stats.StatusCounts       `json:"by_status"`
	PerJob     map[string]stats.JobStat `json:"per_job"`
	PerDay     []stats.DayStat          `json:"per_day"`
	TopMatches []topMatch               `json:"top_matches"`
}

type topMatch struct {
	ApplicationID string `json:"application_id"`
	Candidate     string `json:"candidate"`
	JobTitle      string `json:"job_title"`
	MatchScore    int    `json:"match_score"`
}

func runReport() {
	e, ident := mustSession()

	apps, err := e.client.ApplicationsByRecruiter(ident.UserID)
	if err != nil {
		e.logger.Fatal("getting applications", zap.Error(err))
	}

	top := make([]topMatch, 0, stats.DefaultTopN)
	for _, app := range stats.TopMatches(apps.Items, stats.DefaultTopN) {
		top = append(top, topMatch{
			ApplicationID: app.ID,
			Candidate:     app.Candidate.Name,
			JobTitle:      app.Job.Title,
			MatchScore:    app.MatchScore,
		})
	}

	result := report{
		Global:     stats.Global(apps.Items, time.Now(), time.Local),
		ByStatus:   stats.ByStatus(apps.Items),
		PerJob:     stats.PerJob(apps.Items),
		PerDay:     stats.PerDay(apps.Items, time.Local),
		TopMatches: top,
	}

	pretty, _ := json.MarshalIndent(result, "", "  ")
	e.logger.Info(string(pretty), zap.Int("applications", apps.Len()))
}

package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentlink/talentlink/internal/notify"
	"github.com/talentlink/talentlink/internal/platform"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage your job postings",
}

var jobListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the jobs you posted",
	Run: func(_ *cobra.Command, _ []string) {
		e, ident := mustSession()

		jobs, err := e.client.JobsByRecruiter(ident.UserID)
		if err != nil {
			e.logger.Fatal("listing jobs", zap.Error(err))
		}

		pretty, _ := json.MarshalIndent(jobs.Items, "", "  ")
		e.logger.Info(string(pretty), zap.Int("count", jobs.Len()))
	},
}

var jobPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a new job and announce it to candidates",
	Run: func(cmd *cobra.Command, _ []string) {
		e, ident := mustSession()

		job := &platform.Job{
			Title:       cmd.Flag("title").Value.String(),
			Company:     cmd.Flag("company").Value.String(),
			Description: cmd.Flag("description").Value.String(),
			Location:    cmd.Flag("location").Value.String(),
			Skills:      splitSkills(cmd.Flag("skills").Value.String()),
			RecruiterID: ident.UserID,
		}
		if job.Title == "" {
			e.logger.Fatal("a job needs a title", zap.String("hint", "pass --title"))
		}

		created, err := e.client.CreateJob(job)
		if err != nil {
			e.logger.Fatal("posting job", zap.Error(err))
		}

		e.logger.Info("job posted",
			zap.String("job_id", created.ID),
			zap.String("title", created.Title),
		)

		// The posting is durable; the announcement is best-effort.
		dispatcher := notify.NewDispatcher(e.client, e.logger)
		_ = dispatcher.JobPosted(&platform.JobPostedEvent{
			JobID:    created.ID,
			JobTitle: created.Title,
			Company:  created.Company,
		})
	},
}

var jobUpdateCmd = &cobra.Command{
	Use:   "update <job-id>",
	Short: "Update one of your job postings",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e, ident := mustSession()

		jobs, err := e.client.JobsByRecruiter(ident.UserID)
		if err != nil {
			e.logger.Fatal("listing jobs", zap.Error(err))
		}
		if jobs.FindByID(args[0]) == nil {
			e.logger.Fatal("no such job", zap.String("job_id", args[0]))
		}

		patch := &platform.JobPatch{
			Title:       cmd.Flag("title").Value.String(),
			Company:     cmd.Flag("company").Value.String(),
			Description: cmd.Flag("description").Value.String(),
			Location:    cmd.Flag("location").Value.String(),
			Skills:      splitSkills(cmd.Flag("skills").Value.String()),
		}

		if err := e.client.UpdateJob(args[0], patch); err != nil {
			e.logger.Fatal("updating job", zap.Error(err))
		}

		e.logger.Info("job updated", zap.String("job_id", args[0]))
	},
}

var jobDeleteCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete one of your job postings",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		e, ident := mustSession()

		jobs, err := e.client.JobsByRecruiter(ident.UserID)
		if err != nil {
			e.logger.Fatal("listing jobs", zap.Error(err))
		}
		if jobs.FindByID(args[0]) == nil {
			e.logger.Fatal("no such job", zap.String("job_id", args[0]))
		}

		if err := e.client.DeleteJob(args[0]); err != nil {
			e.logger.Fatal("deleting job", zap.Error(err))
		}

		e.logger.Info("job deleted", zap.String("job_id", args[0]))
	},
}

func init() {
	rootCmd.AddCommand(jobCmd)
	jobCmd.AddCommand(jobListCmd, jobPostCmd, jobUpdateCmd, jobDeleteCmd)

	for _, c := range []*cobra.Command{jobPostCmd, jobUpdateCmd} {
		c.Flags().String("title", "", "job title")
		c.Flags().String("company", "", "company name")
		c.Flags().String("description", "", "job description")
		c.Flags().String("location", "", "job location")
		c.Flags().String("skills", "", "comma-separated required skills")
	}
}

func splitSkills(raw string) []string {
	if raw == "" {
		return nil
	}

	var skills []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

package cmd

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentlink/talentlink/internal/session"
)

var cvCmd = &cobra.Command{
	Use:   "cv",
	Short: "Manage your CV documents and the active CV",
}

var cvListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your uploaded CVs, newest first",
	Run: func(_ *cobra.Command, _ []string) {
		e, ident := mustSession()

		cvs, err := e.client.ListCVs(ident.UserID)
		if err != nil {
			e.logger.Fatal("listing cvs", zap.Error(err))
		}

		pretty, _ := json.MarshalIndent(cvs.Items, "", "  ")
		e.logger.Info(string(pretty), zap.Int("count", cvs.Len()))

		for _, cv := range cvs.Items {
			e.logger.Debug("cv links",
				zap.String("cv_id", cv.ID),
				zap.String("download", e.client.DownloadURL(cv.SavedFilename)),
				zap.String("view", e.client.ViewURL(cv.ShortID())),
			)
		}
	},
}

var cvUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a CV, make it active and warm up analysis and matching",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		e, ident := mustSession()

		file, err := os.Open(args[0])
		if err != nil {
			e.logger.Fatal("opening cv file", zap.Error(err))
		}
		defer file.Close()

		savedFilename, err := e.client.UploadCV(ident.UserID, filepath.Base(args[0]), file)
		if err != nil {
			e.logger.Fatal("uploading cv", zap.Error(err))
		}

		e.logger.Info("cv uploaded", zap.String("saved_filename", savedFilename))

		cvs, err := e.client.ListCVs(ident.UserID)
		if err != nil {
			e.logger.Fatal("listing cvs after upload", zap.Error(err))
		}

		cv := cvs.FindBySavedFilename(savedFilename)
		if cv == nil {
			e.logger.Fatal("uploaded cv not found in registry", zap.String("saved_filename", savedFilename))
		}
		e.session.SelectCV(cv)
		persistActiveCV(e, cv.ID)

		// Enrichment warm-up. Both calls are best-effort: the upload
		// already succeeded.
		if analysis, err := e.client.Analyze(cv.SavedFilename); err != nil {
			e.logger.Warn("cv analysis unavailable", zap.Error(err))
		} else {
			e.session.CacheAnalysis(cv.ShortID(), analysis)
			e.logger.Info("cv analyzed", zap.Strings("skills", analysis.Skills))
		}

		if err := e.client.MatchAllJobs(cv.ShortID()); err != nil {
			e.logger.Warn("match precompute failed", zap.Error(err))
		} else {
			e.logger.Info("match scores precomputed for all open jobs")
		}
	},
}

var cvSelectCmd = &cobra.Command{
	Use:   "select <cv-id>",
	Short: "Make one of your CVs the active CV",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		e, ident := mustSession()

		cvs, err := e.client.ListCVs(ident.UserID)
		if err != nil {
			e.logger.Fatal("listing cvs", zap.Error(err))
		}

		cv := cvs.FindByID(args[0])
		if cv == nil {
			e.logger.Fatal("no such cv", zap.String("cv_id", args[0]))
		}

		e.session.SelectCV(cv)
		persistActiveCV(e, cv.ID)
		e.logger.Info("active cv selected",
			zap.String("cv_id", cv.ID),
			zap.String("filename", cv.OriginalFilename),
		)
	},
}

// persistActiveCV writes the selection through to the state file so the
// next invocation picks it up. Best-effort: the in-process selection is
// already made.
func persistActiveCV(e *env, cvID string) {
	err := session.SaveState(e.config.stateFile(), session.State{ActiveCVID: cvID})
	if err != nil {
		e.logger.Warn("persisting active cv", zap.Error(err))
	}
}

var cvDeleteCmd = &cobra.Command{
	Use:   "delete <cv-id>",
	Short: "Delete one of your CVs",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		e, ident := mustSession()

		cvs, err := e.client.ListCVs(ident.UserID)
		if err != nil {
			e.logger.Fatal("listing cvs", zap.Error(err))
		}

		cv := cvs.FindByID(args[0])
		if cv == nil {
			e.logger.Fatal("no such cv", zap.String("cv_id", args[0]))
		}

		// The pointer and cached analysis are cleared only after the
		// registry confirms; a failed delete leaves them untouched.
		if err := e.client.DeleteCV(cv.SavedFilename); err != nil {
			e.logger.Fatal("deleting cv", zap.Error(err))
		}
		e.session.ClearActiveCV(cv.ID)

		if st, err := session.LoadState(e.config.stateFile()); err == nil && st.ActiveCVID == cv.ID {
			if err := session.ClearState(e.config.stateFile()); err != nil {
				e.logger.Warn("clearing persisted active cv", zap.Error(err))
			}
		}

		e.logger.Info("cv deleted", zap.String("cv_id", cv.ID))
	},
}

func init() {
	rootCmd.AddCommand(cvCmd)
	cvCmd.AddCommand(cvListCmd, cvUploadCmd, cvSelectCmd, cvDeleteCmd)
}

// mustSession is the shared preamble for commands that require an identity.
func mustSession() (*env, session.Identity) {
	e, err := setup(context.Background())
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

	return e, ident
}

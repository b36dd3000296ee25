package cmd

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentlink/talentlink/internal/notify"
	"github.com/talentlink/talentlink/internal/platform"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll for unread notifications until interrupted",
	Run: func(cmd *cobra.Command, _ []string) {
		runWatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Bool("mark-read", false, "mark displayed notifications as read")
}

func runWatch(cmd *cobra.Command) {
	// The poll loop lives exactly as long as the session: an interrupt
	// cancels the context and the loop winds down.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	markRead := cmd.Flag("mark-read").Value.String() == "true"
	poller := notify.NewPoller(e.client, ident.UserID, e.config.pollInterval(), e.logger)

	err = poller.Run(ctx, func(unread *platform.Notifications) {
		if unread.Len() == 0 {
			e.logger.Debug("no unread notifications")
			return
		}

		for _, n := range unread.Items {
			e.logger.Info("notification",
				zap.String("id", n.ID),
				zap.String("type", n.Type),
				zap.String("message", n.Message),
				zap.Time("created_at", n.CreatedAt.Time),
			)
		}

		if markRead {
			marked := poller.MarkAllRead(unread)
			e.logger.Info("marked notifications as read",
				zap.Int("marked", marked),
				zap.Int("of", unread.Len()),
			)
		}
	})

	if err != nil && !errors.Is(err, context.Canceled) {
		e.logger.Fatal("poller stopped", zap.Error(err))
	}
}

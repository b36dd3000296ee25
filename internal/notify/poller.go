package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/talentlink/talentlink/internal/platform"
)

// Poll interval bounds. The dashboards only ever polled between these.
const (
	DefaultPollInterval = 15 * time.Second
	minPollInterval     = 10 * time.Second
	maxPollInterval     = 30 * time.Second
)

// Poller periodically fetches the user's unread notifications. There is no
// push channel on the platform; the unread view is only as fresh as the
// last poll.
type Poller struct {
	service  Service
	userID   string
	interval time.Duration
	logger   *zap.Logger
}

func NewPoller(service Service, userID string, interval time.Duration, logger *zap.Logger) *Poller {
	if interval < minPollInterval || interval > maxPollInterval {
		interval = DefaultPollInterval
	}

	return &Poller{
		service:  service,
		userID:   userID,
		interval: interval,
		logger:   logger,
	}
}

// Run polls until ctx is cancelled, invoking handle with the unread set
// after every successful fetch. An immediate first fetch precedes the
// ticker. Fetch failures are logged and the loop keeps going.
func (p *Poller) Run(ctx context.Context, handle func(*platform.Notifications)) error {
	p.logger.Info("starting notification poller",
		zap.String("user_id", p.userID),
		zap.Duration("interval", p.interval),
	)

	p.poll(handle)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("notification poller stopped")
			return ctx.Err()
		case <-ticker.C:
			p.poll(handle)
		}
	}
}

func (p *Poller) poll(handle func(*platform.Notifications)) {
	notifications, err := p.service.NotificationsByUser(p.userID)
	if err != nil {
		p.logger.Warn("notification poll failed", zap.Error(err))
		return
	}

	handle(notifications.Unread())
}

// MarkAllRead issues one mark-read call per notification; there is no batch
// contract. Best-effort: a partial failure leaves a mixed read state, which
// is fine because retrying is idempotent. Returns how many calls succeeded.
func (p *Poller) MarkAllRead(notifications *platform.Notifications) int {
	marked := 0
	for _, n := range notifications.Items {
		if err := p.service.MarkNotificationRead(n.ID); err != nil {
			p.logger.Warn("mark read failed",
				zap.String("notification_id", n.ID),
				zap.Error(err),
			)
			continue
		}
		marked++
	}

	return marked
}

package notify

import (
	"go.uber.org/zap"

	"github.com/talentlink/talentlink/internal/platform"
)

// Service is the slice of the platform client the dispatcher and poller use.
type Service interface {
	NotifyJobPosted(event *platform.JobPostedEvent) error
	NotifyApplicationSubmitted(event *platform.ApplicationSubmittedEvent) error
	NotificationsByUser(userID string) (*platform.Notifications, error)
	MarkNotificationRead(id string) error
}

// Dispatcher emits lifecycle events fire-and-forget: failures are logged and
// swallowed so that a notification outage can never fail the workflow that
// triggered it.
type Dispatcher struct {
	service Service
	logger  *zap.Logger
}

func NewDispatcher(service Service, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{service: service, logger: logger}
}

// JobPosted and ApplicationSubmitted log dropped events and hand the error
// back for outcome bookkeeping only; callers must not fail on it.

func (d *Dispatcher) JobPosted(event *platform.JobPostedEvent) error {
	err := d.service.NotifyJobPosted(event)
	if err != nil {
		d.logger.Warn("job notification dropped",
			zap.String("job_id", event.JobID),
			zap.Error(err),
		)
	}
	return err
}

func (d *Dispatcher) ApplicationSubmitted(event *platform.ApplicationSubmittedEvent) error {
	err := d.service.NotifyApplicationSubmitted(event)
	if err != nil {
		d.logger.Warn("application notification dropped",
			zap.String("application_id", event.ApplicationID),
			zap.Error(err),
		)
	}
	return err
}

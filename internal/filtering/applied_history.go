package filtering

import (
	"fmt"

	"github.com/talentlink/talentlink/internal/platform"
)

// ApplicationLister supplies the candidate's existing applications.
type ApplicationLister interface {
	ApplicationsByCandidate(candidateID string) (*platform.Applications, error)
}

type appliedHistoryFilter struct {
	store       ApplicationLister
	candidateID string
	ignore      bool
}

// NewAppliedHistory creates a filter that removes jobs the candidate already
// holds an application for. This is a feed-level guard only; the store's
// uniqueness constraint remains the authority on duplicates.
func NewAppliedHistory(store ApplicationLister, candidateID string, ignore bool) Filter {
	return &appliedHistoryFilter{
		store:       store,
		candidateID: candidateID,
		ignore:      ignore,
	}
}

func (f *appliedHistoryFilter) Name() string { return "applied_history" }

func (f *appliedHistoryFilter) Apply(jobs *platform.Jobs) (*platform.Jobs, Step, error) {
	initial := jobs.Len()
	if f.ignore {
		return jobs, Step{Initial: initial, Left: initial}, nil
	}

	if f.store == nil {
		return jobs, Step{}, fmt.Errorf("application store is required")
	}

	apps, err := f.store.ApplicationsByCandidate(f.candidateID)
	if err != nil {
		return jobs, Step{}, fmt.Errorf("get my applications: %w", err)
	}

	excluded := jobs.Exclude(apps.JobIDs())

	return jobs, Step{Initial: initial, Dropped: len(excluded), Left: jobs.Len()}, nil
}

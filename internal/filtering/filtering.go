// Package filtering trims the candidate's job feed before scoring and
// display. Steps run sequentially; each reports how much of the feed it
// dropped.
package filtering

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/talentlink/talentlink/internal/platform"
)

// Filter represents a single filtering step applied to the job feed.
type Filter interface {
	Name() string
	Apply(jobs *platform.Jobs) (*platform.Jobs, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Run executes the supplied filters sequentially, returning the filtered
// feed.
func Run(steps []Filter, jobs *platform.Jobs, logger *zap.Logger) (*platform.Jobs, error) {
	for _, step := range steps {
		next, info, err := step.Apply(jobs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if logger != nil {
			logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		jobs = next
	}

	return jobs, nil
}

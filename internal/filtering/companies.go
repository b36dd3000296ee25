package filtering

import (
	"strings"

	"github.com/talentlink/talentlink/internal/platform"
)

type excludedCompaniesFilter struct {
	names map[string]bool
}

// NewExcludedCompanies creates a filter that drops jobs posted by the
// configured companies. Matching is case-insensitive.
func NewExcludedCompanies(names []string) Filter {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			set[name] = true
		}
	}

	return &excludedCompaniesFilter{names: set}
}

func (f *excludedCompaniesFilter) Name() string { return "excluded_companies" }

func (f *excludedCompaniesFilter) Apply(jobs *platform.Jobs) (*platform.Jobs, Step, error) {
	initial := jobs.Len()
	if len(f.names) == 0 {
		return jobs, Step{Initial: initial, Left: initial}, nil
	}

	var ids []string
	for _, job := range jobs.Items {
		if f.names[strings.ToLower(job.Company)] {
			ids = append(ids, job.ID)
		}
	}
	excluded := jobs.Exclude(ids)

	return jobs, Step{Initial: initial, Dropped: len(excluded), Left: jobs.Len()}, nil
}

// Package stats derives recruiter and candidate reporting views from an
// in-memory application snapshot. Every function is pure: same snapshot in,
// same report out, safe to recompute on every render.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/talentlink/talentlink/internal/platform"
)

const DefaultTopN = 5

// JobStat aggregates the applications sharing one job title.
type JobStat struct {
	Total        int `json:"total"`
	AverageScore int `json:"average_score"`
}

// PerJob groups applications by job title. Two distinct jobs sharing a title
// are merged; that is the platform's observed grouping key, kept as is. The
// average covers scored applications only, rounded to the nearest integer,
// 0 when nothing in the group was scored.
func PerJob(apps []*platform.Application) map[string]JobStat {
	totals := make(map[string]int)
	sums := make(map[string]int)
	counts := make(map[string]int)

	for _, app := range apps {
		title := app.Job.Title
		totals[title]++
		if app.Unscored {
			continue
		}
		sums[title] += app.MatchScore
		counts[title]++
	}

	out := make(map[string]JobStat, len(totals))
	for title, total := range totals {
		avg := 0
		if counts[title] > 0 {
			avg = int(math.Round(float64(sums[title]) / float64(counts[title])))
		}
		out[title] = JobStat{Total: total, AverageScore: avg}
	}

	return out
}

// DayStat is the submission count for one calendar date.
type DayStat struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

const dayLayout = "2006-01-02"

// PerDay groups applications by the calendar date of their creation in the
// given location, in ascending chronological order regardless of input or
// map iteration order.
func PerDay(apps []*platform.Application, loc *time.Location) []DayStat {
	if loc == nil {
		loc = time.Local
	}

	counts := make(map[string]int)
	for _, app := range apps {
		if app.CreatedAt.IsZero() {
			continue
		}
		counts[app.CreatedAt.In(loc).Format(dayLayout)]++
	}

	days := make([]DayStat, 0, len(counts))
	for date, count := range counts {
		days = append(days, DayStat{Date: date, Count: count})
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	return days
}

// TopMatches returns the n best scored applications, descending by score.
// Unscored applications never rank; equal scores keep their original
// submission order.
func TopMatches(apps []*platform.Application, n int) []*platform.Application {
	if n <= 0 {
		n = DefaultTopN
	}

	scored := make([]*platform.Application, 0, len(apps))
	for _, app := range apps {
		if app.Unscored {
			continue
		}
		scored = append(scored, app)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchScore > scored[j].MatchScore
	})

	if len(scored) > n {
		scored = scored[:n]
	}

	return scored
}

// StatusCounts is the candidate-side view of the pipeline.
type StatusCounts struct {
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

func ByStatus(apps []*platform.Application) StatusCounts {
	var counts StatusCounts
	for _, app := range apps {
		switch app.Status {
		case platform.StatusAccepted:
			counts.Accepted++
		case platform.StatusRejected:
			counts.Rejected++
		default:
			counts.Pending++
		}
	}
	return counts
}

// GlobalStats summarizes the whole snapshot.
type GlobalStats struct {
	Total          int `json:"total"`
	DistinctJobs   int `json:"distinct_jobs"`
	AverageScore   int `json:"average_score"`
	SubmittedToday int `json:"submitted_today"`
}

// Global computes snapshot-wide numbers. "Today" is the calendar date of now
// in the given location; the mean covers scored applications only and is 0
// when none are scored.
func Global(apps []*platform.Application, now time.Time, loc *time.Location) GlobalStats {
	if loc == nil {
		loc = time.Local
	}

	titles := make(map[string]bool)
	sum, scored := 0, 0
	today := now.In(loc).Format(dayLayout)
	todayCount := 0

	for _, app := range apps {
		titles[app.Job.Title] = true
		if !app.Unscored {
			sum += app.MatchScore
			scored++
		}
		if !app.CreatedAt.IsZero() && app.CreatedAt.In(loc).Format(dayLayout) == today {
			todayCount++
		}
	}

	avg := 0
	if scored > 0 {
		avg = int(math.Round(float64(sum) / float64(scored)))
	}

	return GlobalStats{
		Total:          len(apps),
		DistinctJobs:   len(titles),
		AverageScore:   avg,
		SubmittedToday: todayCount,
	}
}

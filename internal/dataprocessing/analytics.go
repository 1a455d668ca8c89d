package dataprocessing

import (
	"context"
	"log/slog"
	"sort"

	"regreport/pkg/contracts/domain"
)

// Aggregation bundles everything derived from a registration set
type Aggregation struct {
	Summary domain.Summary         `json:"summary"`
	Courses domain.CourseAggregate `json:"courses"`
	Rosters []domain.CourseRoster  `json:"rosters"`
}

// UniqueCourses returns the number of distinct courses
func (a *Aggregation) UniqueCourses() int {
	return len(a.Courses)
}

// Analyzer computes summaries, course counts and rosters.
// Its methods are pure functions of their input.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger.With(slog.String("component", "analyzer"))}
}

// Aggregate computes summary, course aggregate and rosters in one pass over set.
func (a *Analyzer) Aggregate(ctx context.Context, set domain.RegistrationSet) (*Aggregation, error) {
	summary, err := a.Summarize(set)
	if err != nil {
		return nil, err
	}

	agg := &Aggregation{
		Summary: summary,
		Courses: a.CountByCourse(set),
		Rosters: a.BuildRosters(set),
	}

	a.logger.DebugContext(ctx, "registrations aggregated",
		slog.Int("records", summary.TotalRecords),
		slog.Int("unique_people", summary.UniquePeople),
		slog.Int("courses", len(agg.Courses)))

	return agg, nil
}

// Summarize counts distinct full names and finds the registration window.
func (a *Analyzer) Summarize(set domain.RegistrationSet) (domain.Summary, error) {
	if len(set) == 0 {
		return domain.Summary{}, ErrEmptyDataset
	}

	people := make(map[string]struct{}, len(set))
	earliest, latest := set[0].RegisteredAt, set[0].RegisteredAt

	for _, r := range set {
		people[r.FullName] = struct{}{}
		if r.RegisteredAt.Before(earliest) {
			earliest = r.RegisteredAt
		}
		if r.RegisteredAt.After(latest) {
			latest = r.RegisteredAt
		}
	}

	return domain.Summary{
		UniquePeople: len(people),
		Earliest:     earliest,
		Latest:       latest,
		TotalRecords: len(set),
	}, nil
}

// CountByCourse counts every registration per course, ordered by descending
// count. Ties keep the order in which courses first appear.
func (a *Analyzer) CountByCourse(set domain.RegistrationSet) domain.CourseAggregate {
	position := make(map[string]int)
	agg := domain.CourseAggregate{}

	for _, r := range set {
		i, seen := position[r.Course]
		if !seen {
			i = len(agg)
			position[r.Course] = i
			agg = append(agg, domain.CourseCount{Course: r.Course})
		}
		agg[i].Count++
	}

	sort.SliceStable(agg, func(i, j int) bool {
		return agg[i].Count > agg[j].Count
	})
	return agg
}

// BuildRosters groups attendees per course in first-seen course order.
// A name already on a course roster is skipped, so the first email wins.
func (a *Analyzer) BuildRosters(set domain.RegistrationSet) []domain.CourseRoster {
	position := make(map[string]int)
	names := make(map[string]map[string]struct{})
	rosters := []domain.CourseRoster{}

	for _, r := range set {
		i, seen := position[r.Course]
		if !seen {
			i = len(rosters)
			position[r.Course] = i
			names[r.Course] = make(map[string]struct{})
			rosters = append(rosters, domain.CourseRoster{Course: r.Course, Entries: []domain.RosterEntry{}})
		}
		if _, dup := names[r.Course][r.FullName]; dup {
			continue
		}
		names[r.Course][r.FullName] = struct{}{}
		rosters[i].Entries = append(rosters[i].Entries, domain.RosterEntry{
			FullName:     r.FullName,
			ContactEmail: r.ContactEmail,
		})
	}
	return rosters
}

package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"team-form-lab/internal/domain"
	"team-form-lab/internal/features"
	"team-form-lab/internal/reshape"
	"team-form-lab/internal/storage"
)

// DefaultTopForm is how many teams the form table lists.
const DefaultTopForm = 10

// RunInfo carries what the stores cannot tell the generator.
type RunInfo struct {
	Cutoff       time.Time
	Window       int
	Reshape      *reshape.Stats // nil when the run skipped reshaping
	DataVersions []DataVersionRow
}

// Generator produces reports from stored data.
type Generator struct {
	teamMatchStore storage.TeamMatchStore
	featureStore   storage.FeatureStore
	topN           int
	now            func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(teamMatchStore storage.TeamMatchStore, featureStore storage.FeatureStore) *Generator {
	return &Generator{
		teamMatchStore: teamMatchStore,
		featureStore:   featureStore,
		topN:           DefaultTopForm,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithTopN sets how many teams TopForm lists.
func (g *Generator) WithTopN(n int) *Generator {
	g.topN = n
	return g
}

// Generate builds the run report.
func (g *Generator) Generate(ctx context.Context, info RunInfo) (*Report, error) {
	matches, err := g.teamMatchStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load team matches: %w", err)
	}
	rows, err := g.featureStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load feature rows: %w", err)
	}

	window := info.Window
	if window < 1 {
		window = features.DefaultWindow
	}

	forms := features.CurrentForm(matches, window)

	return &Report{
		GeneratedAt:  g.now(),
		Cutoff:       info.Cutoff,
		Window:       window,
		DataSummary:  summarize(matches, rows, info.Reshape, len(forms)),
		DataQuality:  quality(matches, rows, info.Reshape),
		TopForm:      topForm(forms, g.topN),
		DataVersions: info.DataVersions,
	}, nil
}

func summarize(matches []*domain.TeamMatch, rows []*domain.FeatureRow, stats *reshape.Stats, teams int) DataSummary {
	s := DataSummary{
		RawRows:       -1,
		TeamMatchRows: len(matches),
		FeatureRows:   len(rows),
		Teams:         teams,
	}
	if stats != nil {
		s.RawRows = stats.RowsRead
	}

	fixtures := make(map[string]struct{})
	for _, m := range matches {
		fixtures[m.MatchID] = struct{}{}
		if s.DateRangeStart.IsZero() || m.Date.Before(s.DateRangeStart) {
			s.DateRangeStart = m.Date
		}
		if m.Date.After(s.DateRangeEnd) {
			s.DateRangeEnd = m.Date
		}
	}
	s.Fixtures = len(fixtures)

	return s
}

func quality(matches []*domain.TeamMatch, rows []*domain.FeatureRow, stats *reshape.Stats) DataQualitySection {
	var q DataQualitySection

	if stats != nil {
		q.DropReasons = []DropReasonRow{
			{Reason: "before_cutoff", Rows: stats.DroppedBeforeCutoff},
			{Reason: "missing_required", Rows: stats.DroppedMissingRequired},
			{Reason: "missing_neutral", Rows: stats.DroppedMissingNeutral},
		}
	}

	for _, r := range rows {
		if r.AvgGoalsLast5 == nil && r.WinRateLast5 == nil &&
			r.AvgGoalsConcededLast5 == nil && r.AvgGoalDiffLast5 == nil {
			q.FirstAppearanceRows++
		}
	}

	q.IntegrityErrors = checkPairing(matches)
	return q
}

// checkPairing verifies every fixture has exactly two mirrored team rows.
// A missing-neutral drop only ever removes both sides, so one-sided fixtures
// indicate a damaged long table.
func checkPairing(matches []*domain.TeamMatch) []string {
	byFixture := make(map[string][]*domain.TeamMatch)
	var order []string
	for _, m := range matches {
		if _, ok := byFixture[m.MatchID]; !ok {
			order = append(order, m.MatchID)
		}
		byFixture[m.MatchID] = append(byFixture[m.MatchID], m)
	}

	var errs []string
	for _, id := range order {
		pair := byFixture[id]
		if len(pair) != 2 {
			errs = append(errs, fmt.Sprintf("fixture %s has %d team rows, want 2", short(id), len(pair)))
			continue
		}
		a, b := pair[0], pair[1]
		if a.Team != b.Opponent || b.Team != a.Opponent ||
			a.TeamScore != b.OpponentScore || b.TeamScore != a.OpponentScore ||
			!a.Date.Equal(b.Date) || a.Neutral != b.Neutral {
			errs = append(errs, fmt.Sprintf("fixture %s rows are not mirrored (%s vs %s)", short(id), a.Team, b.Team))
			continue
		}
		if a.Win+b.Win > 1 {
			errs = append(errs, fmt.Sprintf("fixture %s has two winners", short(id)))
		}
	}
	return errs
}

func short(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func topForm(forms []*domain.TeamForm, n int) []*domain.TeamForm {
	sorted := make([]*domain.TeamForm, len(forms))
	copy(sorted, forms)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.AvgGoalDiff != b.AvgGoalDiff {
			return a.AvgGoalDiff > b.AvgGoalDiff
		}
		return a.Team < b.Team
	})

	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

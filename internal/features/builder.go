// Package features computes trailing team-form features over the long table.
package features

import (
	"sort"

	"team-form-lab/internal/domain"
	"team-form-lab/internal/ordering"
)

// DefaultWindow is the number of prior matches averaged per feature.
const DefaultWindow = 5

// Build computes goal_diff and the trailing form features for every row.
// Rows are grouped by team and ordered chronologically (stable) inside each
// group; each trailing feature at position i is the mean over positions
// max(0, i-window)..i-1 of that team, NULL at i == 0.
// The result is ordered by (date, team), stable.
// Inputs are not modified.
func Build(rows []*domain.TeamMatch, window int) []*domain.FeatureRow {
	if window < 1 {
		window = DefaultWindow
	}

	out := make([]*domain.FeatureRow, len(rows))
	for i, r := range rows {
		out[i] = &domain.FeatureRow{
			TeamMatch: *r,
			GoalDiff:  r.GoalDiff(),
		}
	}

	for _, group := range groupByTeam(out) {
		applyTrailing(group, window)
	}

	ordering.SortFeatureRows(out)
	return out
}

// groupByTeam partitions rows by team, each group in chronological order.
// Groups are returned in order of first appearance.
func groupByTeam(rows []*domain.FeatureRow) [][]*domain.FeatureRow {
	index := make(map[string]int)
	var groups [][]*domain.FeatureRow

	for _, r := range rows {
		i, ok := index[r.Team]
		if !ok {
			i = len(groups)
			index[r.Team] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}

	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool {
			return g[i].Date.Before(g[j].Date)
		})
	}

	return groups
}

// applyTrailing fills the four trailing features of one team's chronological rows.
func applyTrailing(group []*domain.FeatureRow, window int) {
	n := len(group)
	goals := make([]float64, n)
	wins := make([]float64, n)
	conceded := make([]float64, n)
	diffs := make([]float64, n)

	for i, r := range group {
		goals[i] = float64(r.TeamScore)
		wins[i] = float64(r.Win)
		conceded[i] = float64(r.OpponentScore)
		diffs[i] = float64(r.GoalDiff)
	}

	avgGoals := TrailingMeans(goals, window)
	winRate := TrailingMeans(wins, window)
	avgConceded := TrailingMeans(conceded, window)
	avgDiff := TrailingMeans(diffs, window)

	for i, r := range group {
		r.AvgGoalsLast5 = avgGoals[i]
		r.WinRateLast5 = winRate[i]
		r.AvgGoalsConcededLast5 = avgConceded[i]
		r.AvgGoalDiffLast5 = avgDiff[i]
	}
}

// TrailingMeans returns, for each position i, the mean of
// values[max(0, i-window) : i], i.e. up to window strictly-prior values.
// Position 0 has no prior window and is nil.
func TrailingMeans(values []float64, window int) []*float64 {
	if window < 1 {
		window = DefaultWindow
	}

	result := make([]*float64, len(values))
	for i := 1; i < len(values); i++ {
		start := max(0, i-window)
		sum := 0.0
		for _, v := range values[start:i] {
			sum += v
		}
		mean := sum / float64(i-start)
		result[i] = &mean
	}
	return result
}

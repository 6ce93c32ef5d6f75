// Package verification recomputes feature rows from the long table and
// compares them with a stored feature table.
package verification

import (
	"math"
	"time"

	"team-form-lab/internal/domain"
	"team-form-lab/internal/features"
	"team-form-lab/internal/storage"
)

// FloatTolerance is the tolerance for trailing-feature comparisons.
const FloatTolerance = 1e-9

// FieldDivergence represents a mismatch between stored and recomputed values.
type FieldDivergence struct {
	Field    string      // column name
	Expected interface{} // recomputed value
	Actual   interface{} // stored value
}

// RowResult describes one divergent row.
type RowResult struct {
	Key         storage.RowKey
	Date        time.Time
	Divergences []FieldDivergence
}

// Report contains results for a batch verification.
type Report struct {
	ExpectedRows  int              // rows recomputed from the long table
	StoredRows    int              // rows in the stored feature table
	MatchedRows   int              // rows present in both with no divergence
	DivergentRows []RowResult      // rows present in both with at least one divergence
	MissingRows   []storage.RowKey // recomputed rows absent from the stored table
	ExtraRows     []storage.RowKey // stored rows with no recomputed counterpart
	OrderMismatch bool             // both tables hold the same keys in a different order
}

// OK reports whether the stored table reproduces the recomputation.
func (r *Report) OK() bool {
	return len(r.DivergentRows) == 0 && len(r.MissingRows) == 0 &&
		len(r.ExtraRows) == 0 && !r.OrderMismatch
}

// VerifyFeatures rebuilds features from teamMatches with window and compares
// them with stored, matching rows by (match_id, team).
func VerifyFeatures(teamMatches []*domain.TeamMatch, stored []*domain.FeatureRow, window int) *Report {
	return Compare(features.Build(teamMatches, window), stored)
}

// Compare matches expected and stored rows by key and reports every difference.
func Compare(expected, stored []*domain.FeatureRow) *Report {
	report := &Report{ExpectedRows: len(expected), StoredRows: len(stored)}

	storedByKey := make(map[storage.RowKey]*domain.FeatureRow, len(stored))
	for _, r := range stored {
		storedByKey[keyOf(r)] = r
	}

	expectedKeys := make(map[storage.RowKey]struct{}, len(expected))
	for _, want := range expected {
		k := keyOf(want)
		expectedKeys[k] = struct{}{}

		got, ok := storedByKey[k]
		if !ok {
			report.MissingRows = append(report.MissingRows, k)
			continue
		}
		if divs := CompareFeatureRows(want, got); len(divs) > 0 {
			report.DivergentRows = append(report.DivergentRows, RowResult{Key: k, Date: want.Date, Divergences: divs})
			continue
		}
		report.MatchedRows++
	}

	for _, r := range stored {
		if _, ok := expectedKeys[keyOf(r)]; !ok {
			report.ExtraRows = append(report.ExtraRows, keyOf(r))
		}
	}

	if len(report.MissingRows) == 0 && len(report.ExtraRows) == 0 && len(expected) == len(stored) {
		for i := range expected {
			if keyOf(expected[i]) != keyOf(stored[i]) {
				report.OrderMismatch = true
				break
			}
		}
	}

	return report
}

func keyOf(r *domain.FeatureRow) storage.RowKey {
	return storage.RowKey{MatchID: r.MatchID, Team: r.Team}
}

// CompareFeatureRows compares two feature rows field by field.
// Uses FloatTolerance for the trailing features.
func CompareFeatureRows(expected, actual *domain.FeatureRow) []FieldDivergence {
	var divergences []FieldDivergence

	add := func(field string, e, a interface{}) {
		divergences = append(divergences, FieldDivergence{Field: field, Expected: e, Actual: a})
	}

	if !expected.Date.Equal(actual.Date) {
		add("date", expected.Date, actual.Date)
	}
	if expected.Opponent != actual.Opponent {
		add("opponent", expected.Opponent, actual.Opponent)
	}
	if expected.TeamScore != actual.TeamScore {
		add("team_score", expected.TeamScore, actual.TeamScore)
	}
	if expected.OpponentScore != actual.OpponentScore {
		add("opponent_score", expected.OpponentScore, actual.OpponentScore)
	}
	if expected.Win != actual.Win {
		add("win", expected.Win, actual.Win)
	}
	if expected.Neutral != actual.Neutral {
		add("neutral", expected.Neutral, actual.Neutral)
	}
	if expected.GoalDiff != actual.GoalDiff {
		add("goal_diff", expected.GoalDiff, actual.GoalDiff)
	}

	for _, f := range []struct {
		name string
		e, a *float64
	}{
		{"avg_goals_last_5", expected.AvgGoalsLast5, actual.AvgGoalsLast5},
		{"win_rate_last_5", expected.WinRateLast5, actual.WinRateLast5},
		{"avg_goals_conceded_last_5", expected.AvgGoalsConcededLast5, actual.AvgGoalsConcededLast5},
		{"avg_goal_diff_last_5", expected.AvgGoalDiffLast5, actual.AvgGoalDiffLast5},
	} {
		if !floatPtrEquals(f.e, f.a) {
			add(f.name, deref(f.e), deref(f.a))
		}
	}

	return divergences
}

// floatPtrEquals reports whether both are nil, or both non-nil and within FloatTolerance.
func floatPtrEquals(a, b *float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return math.Abs(*a-*b) <= FloatTolerance
}

// deref makes divergences print values rather than pointers.
func deref(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

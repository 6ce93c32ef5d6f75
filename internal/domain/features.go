package domain

import "time"

// FeatureRow is a TeamMatch augmented with trailing form features.
// Trailing features cover up to the window's most recent matches of the same
// team strictly before this one; they are NULL on a team's first appearance.
type FeatureRow struct {
	TeamMatch

	GoalDiff              int      // team_score - opponent_score of this match
	AvgGoalsLast5         *float64 // mean team_score over prior window, NULL if first row
	WinRateLast5          *float64 // mean win over prior window, NULL if first row
	AvgGoalsConcededLast5 *float64 // mean opponent_score over prior window, NULL if first row
	AvgGoalDiffLast5      *float64 // mean goal_diff over prior window, NULL if first row
}

// TeamForm summarises a team's form going into its next match:
// means over its most recent matches, the latest one included.
type TeamForm struct {
	Team             string
	LastMatchDate    time.Time
	MatchesPlayed    int // total matches for the team in the table
	WindowSize       int // matches covered by the means (<= window)
	AvgGoals         float64
	WinRate          float64
	AvgGoalsConceded float64
	AvgGoalDiff      float64
}

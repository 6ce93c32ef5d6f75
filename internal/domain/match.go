package domain

import "time"

// RawMatch is one row of the historical results table: one fixture seen from
// the home side. Missing values are nil pointers, empty strings or a zero Date.
type RawMatch struct {
	Row       int       // 1-based data row in the source file
	Date      time.Time // zero if missing or unparseable
	HomeTeam  string
	AwayTeam  string
	HomeScore *int
	AwayScore *int
	Neutral   *bool
}

// TeamMatch is one fixture seen from one team's perspective.
// Every retained fixture yields two TeamMatch rows sharing a MatchID.
type TeamMatch struct {
	MatchID       string    // deterministic fixture id, shared by both perspectives
	Date          time.Time // UTC midnight
	Team          string
	Opponent      string
	TeamScore     int
	OpponentScore int
	Win           int // 1 if TeamScore > OpponentScore, else 0 (ties are 0 for both sides)
	Neutral       bool
}

// GoalDiff returns TeamScore - OpponentScore.
func (m *TeamMatch) GoalDiff() int {
	return m.TeamScore - m.OpponentScore
}

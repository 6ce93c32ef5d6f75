// Package reshape turns the one-row-per-fixture results table into the long
// one-row-per-team table.
package reshape

import (
	"time"

	"team-form-lab/internal/domain"
	"team-form-lab/internal/idhash"
	"team-form-lab/internal/ordering"
)

// DefaultCutoff is the earliest match date retained.
var DefaultCutoff = time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)

// Options configures Reshape.
type Options struct {
	Cutoff time.Time // matches dated before Cutoff are dropped; zero means DefaultCutoff
}

// Stats counts what Reshape kept and dropped.
type Stats struct {
	RowsRead               int // raw fixtures in
	DroppedBeforeCutoff    int // fixtures with a missing date or dated before the cutoff
	DroppedMissingRequired int // fixtures missing a score or a team
	DroppedMissingNeutral  int // team rows dropped by the final completeness check
	RowsEmitted            int // team rows out
}

// perspective is a team row before the final completeness check.
type perspective struct {
	date          time.Time
	team          string
	opponent      string
	teamScore     int
	opponentScore int
	win           int
	neutral       *bool
}

// Reshape converts raw fixtures into team-perspective rows.
// Steps:
//  1. Keep fixtures dated on or after the cutoff
//  2. Drop fixtures missing home/away score or home/away team
//  3. Emit a home row and an away row per fixture (all home rows first)
//  4. Stable sort by (date, team)
//  5. Drop rows still missing a value (only neutral can be missing here)
//  6. Assign fixture ids
//
// A draw yields win = 0 for both sides.
func Reshape(raw []*domain.RawMatch, opts Options) ([]*domain.TeamMatch, Stats) {
	cutoff := opts.Cutoff
	if cutoff.IsZero() {
		cutoff = DefaultCutoff
	}

	stats := Stats{RowsRead: len(raw)}

	retained := make([]*domain.RawMatch, 0, len(raw))
	for _, m := range raw {
		if m == nil {
			stats.DroppedMissingRequired++
			continue
		}
		if m.Date.IsZero() || m.Date.Before(cutoff) {
			stats.DroppedBeforeCutoff++
			continue
		}
		if missingRequired(m) {
			stats.DroppedMissingRequired++
			continue
		}
		retained = append(retained, m)
	}

	combined := make([]perspective, 0, 2*len(retained))
	for _, m := range retained {
		combined = append(combined, homePerspective(m))
	}
	for _, m := range retained {
		combined = append(combined, awayPerspective(m))
	}

	ordering.SortByDateTeam(combined, func(p perspective) (time.Time, string) {
		return p.date, p.team
	})

	out := make([]*domain.TeamMatch, 0, len(combined))
	for _, p := range combined {
		if p.neutral == nil {
			stats.DroppedMissingNeutral++
			continue
		}
		out = append(out, &domain.TeamMatch{
			Date:          p.date,
			Team:          p.team,
			Opponent:      p.opponent,
			TeamScore:     p.teamScore,
			OpponentScore: p.opponentScore,
			Win:           p.win,
			Neutral:       *p.neutral,
		})
	}

	idhash.AssignFixtureIDs(out)
	stats.RowsEmitted = len(out)

	return out, stats
}

func missingRequired(m *domain.RawMatch) bool {
	return m.HomeScore == nil || m.AwayScore == nil || m.HomeTeam == "" || m.AwayTeam == ""
}

func homePerspective(m *domain.RawMatch) perspective {
	return perspective{
		date:          m.Date,
		team:          m.HomeTeam,
		opponent:      m.AwayTeam,
		teamScore:     *m.HomeScore,
		opponentScore: *m.AwayScore,
		win:           winFlag(*m.HomeScore, *m.AwayScore),
		neutral:       m.Neutral,
	}
}

func awayPerspective(m *domain.RawMatch) perspective {
	return perspective{
		date:          m.Date,
		team:          m.AwayTeam,
		opponent:      m.HomeTeam,
		teamScore:     *m.AwayScore,
		opponentScore: *m.HomeScore,
		win:           winFlag(*m.AwayScore, *m.HomeScore),
		neutral:       m.Neutral,
	}
}

// winFlag returns 1 if scored > conceded, else 0.
func winFlag(scored, conceded int) int {
	if scored > conceded {
		return 1
	}
	return 0
}

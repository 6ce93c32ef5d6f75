package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"team-form-lab/internal/domain"
	"team-form-lab/internal/idhash"
)

// newReader returns a csv.Reader tolerant of ragged rows.
func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr
}

// readHeader reads the header row and resolves required columns.
// An empty input has no columns at all.
func readHeader(cr *csv.Reader, table string, required []string) (map[string]int, error) {
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Table: table, Missing: append([]string(nil), required...)}
	}
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", table, err)
	}
	return columnIndex(table, header, required)
}

// ReadRawMatches reads the raw results table.
// Missing or unparseable fields become missing values on the RawMatch;
// filtering is left to the reshaper. Returns *SchemaError if a required
// column is absent.
func ReadRawMatches(r io.Reader) ([]*domain.RawMatch, error) {
	cr := newReader(r)
	idx, err := readHeader(cr, TableRaw, RawColumns)
	if err != nil {
		return nil, err
	}

	var matches []*domain.RawMatch
	for row := 1; ; row++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read raw row %d: %w", row, err)
		}

		m := &domain.RawMatch{
			Row:      row,
			HomeTeam: teamName(field(record, idx["home_team"])),
			AwayTeam: teamName(field(record, idx["away_team"])),
		}
		if d, ok := parseDate(field(record, idx["date"])); ok {
			m.Date = d
		}
		if v, ok := parseCount(field(record, idx["home_score"])); ok {
			m.HomeScore = &v
		}
		if v, ok := parseCount(field(record, idx["away_score"])); ok {
			m.AwayScore = &v
		}
		if v, ok := parseBool(field(record, idx["neutral"])); ok {
			m.Neutral = &v
		}

		matches = append(matches, m)
	}

	return matches, nil
}

// ReadTeamMatches reads the intermediate long table.
// Rows with a missing or unparseable value are dropped and counted.
// Fixture ids are reassigned from row order.
func ReadTeamMatches(r io.Reader) (rows []*domain.TeamMatch, dropped int, err error) {
	cr := newReader(r)
	idx, err := readHeader(cr, TableTeamMatches, TeamMatchColumns)
	if err != nil {
		return nil, 0, err
	}

	for row := 1; ; row++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read team_matches row %d: %w", row, err)
		}

		m, ok := parseTeamMatch(record, idx)
		if !ok {
			dropped++
			continue
		}
		rows = append(rows, m)
	}

	idhash.AssignFixtureIDs(rows)
	return rows, dropped, nil
}

// ReadFeatureRows reads a feature table. Rows whose team-match part is
// incomplete, or whose feature values are unparseable, are dropped and counted.
func ReadFeatureRows(r io.Reader) (rows []*domain.FeatureRow, dropped int, err error) {
	cr := newReader(r)
	idx, err := readHeader(cr, TableFeatures, FeatureColumns)
	if err != nil {
		return nil, 0, err
	}

	var matches []*domain.TeamMatch
	for row := 1; ; row++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read features row %d: %w", row, err)
		}

		m, ok := parseTeamMatch(record, idx)
		if !ok {
			dropped++
			continue
		}
		goalDiff, ok := parseInt(field(record, idx["goal_diff"]))
		if !ok {
			dropped++
			continue
		}

		fr := &domain.FeatureRow{GoalDiff: goalDiff}
		targets := []struct {
			column string
			dst    **float64
		}{
			{"avg_goals_last_5", &fr.AvgGoalsLast5},
			{"win_rate_last_5", &fr.WinRateLast5},
			{"avg_goals_conceded_last_5", &fr.AvgGoalsConcededLast5},
			{"avg_goal_diff_last_5", &fr.AvgGoalDiffLast5},
		}
		valid := true
		for _, tgt := range targets {
			v, ok := parseOptionalFloat(field(record, idx[tgt.column]))
			if !ok {
				valid = false
				break
			}
			*tgt.dst = v
		}
		if !valid {
			dropped++
			continue
		}

		matches = append(matches, m)
		rows = append(rows, fr)
	}

	idhash.AssignFixtureIDs(matches)
	for i, m := range matches {
		rows[i].TeamMatch = *m
	}
	return rows, dropped, nil
}

// parseTeamMatch parses the team-match columns of a record.
func parseTeamMatch(record []string, idx map[string]int) (*domain.TeamMatch, bool) {
	date, ok := parseDate(field(record, idx["date"]))
	if !ok {
		return nil, false
	}
	team := teamName(field(record, idx["team"]))
	opponent := teamName(field(record, idx["opponent"]))
	if team == "" || opponent == "" {
		return nil, false
	}
	teamScore, ok := parseCount(field(record, idx["team_score"]))
	if !ok {
		return nil, false
	}
	opponentScore, ok := parseCount(field(record, idx["opponent_score"]))
	if !ok {
		return nil, false
	}
	win, ok := parseInt(field(record, idx["win"]))
	if !ok || (win != 0 && win != 1) {
		return nil, false
	}
	neutral, ok := parseBool(field(record, idx["neutral"]))
	if !ok {
		return nil, false
	}

	return &domain.TeamMatch{
		Date:          date,
		Team:          team,
		Opponent:      opponent,
		TeamScore:     teamScore,
		OpponentScore: opponentScore,
		Win:           win,
		Neutral:       neutral,
	}, true
}

// teamName returns the team identifier, "" when missing.
func teamName(s string) string {
	if isMissing(s) {
		return ""
	}
	return s
}

package tableio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"team-form-lab/internal/domain"
)

// WriteTeamMatches writes the intermediate long table with a header row.
func WriteTeamMatches(w io.Writer, rows []*domain.TeamMatch) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TeamMatchColumns); err != nil {
		return fmt.Errorf("write team_matches header: %w", err)
	}

	record := make([]string, len(TeamMatchColumns))
	for i, r := range rows {
		fillTeamMatch(record, r)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write team_matches row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFeatureRows writes the feature table with a header row.
// NULL features are written as empty fields.
func WriteFeatureRows(w io.Writer, rows []*domain.FeatureRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FeatureColumns); err != nil {
		return fmt.Errorf("write features header: %w", err)
	}

	record := make([]string, len(FeatureColumns))
	base := len(TeamMatchColumns)
	for i, r := range rows {
		fillTeamMatch(record, &r.TeamMatch)
		record[base] = strconv.Itoa(r.GoalDiff)
		record[base+1] = formatFloat(r.AvgGoalsLast5)
		record[base+2] = formatFloat(r.WinRateLast5)
		record[base+3] = formatFloat(r.AvgGoalsConcededLast5)
		record[base+4] = formatFloat(r.AvgGoalDiffLast5)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write features row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// fillTeamMatch writes the TeamMatchColumns values of r into record[0:7].
func fillTeamMatch(record []string, r *domain.TeamMatch) {
	record[0] = formatDate(r.Date)
	record[1] = r.Team
	record[2] = r.Opponent
	record[3] = strconv.Itoa(r.TeamScore)
	record[4] = strconv.Itoa(r.OpponentScore)
	record[5] = strconv.Itoa(r.Win)
	record[6] = formatBool(r.Neutral)
}

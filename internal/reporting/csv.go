package reporting

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"team-form-lab/internal/domain"
)

// LatestFormColumns is the header of RenderLatestFormCSV.
var LatestFormColumns = []string{
	"team", "last_match_date", "matches_played", "window_size",
	"avg_goals", "win_rate", "avg_goals_conceded", "avg_goal_diff",
}

// RenderLatestFormCSV renders one row per team with its current form.
// Team names may contain commas, so rows go through encoding/csv.
func RenderLatestFormCSV(forms []*domain.TeamForm) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(LatestFormColumns); err != nil {
		return "", err
	}
	for _, f := range forms {
		record := []string{
			f.Team,
			f.LastMatchDate.Format(time.DateOnly),
			strconv.Itoa(f.MatchesPlayed),
			strconv.Itoa(f.WindowSize),
			strconv.FormatFloat(f.AvgGoals, 'f', 6, 64),
			strconv.FormatFloat(f.WinRate, 'f', 6, 64),
			strconv.FormatFloat(f.AvgGoalsConceded, 'f', 6, 64),
			strconv.FormatFloat(f.AvgGoalDiff, 'f', 6, 64),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

package features

import (
	"sort"

	"team-form-lab/internal/domain"
)

// CurrentForm returns each team's form going into its next match: means over
// its last window matches, the most recent one included. Teams are ordered by name.
func CurrentForm(rows []*domain.TeamMatch, window int) []*domain.TeamForm {
	if window < 1 {
		window = DefaultWindow
	}

	byTeam := make(map[string][]*domain.TeamMatch)
	for _, r := range rows {
		byTeam[r.Team] = append(byTeam[r.Team], r)
	}

	teams := make([]string, 0, len(byTeam))
	for team := range byTeam {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	result := make([]*domain.TeamForm, 0, len(teams))
	for _, team := range teams {
		matches := byTeam[team]
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Date.Before(matches[j].Date)
		})

		recent := matches[max(0, len(matches)-window):]
		form := &domain.TeamForm{
			Team:          team,
			LastMatchDate: matches[len(matches)-1].Date,
			MatchesPlayed: len(matches),
			WindowSize:    len(recent),
		}

		var goals, wins, conceded, diff int
		for _, m := range recent {
			goals += m.TeamScore
			wins += m.Win
			conceded += m.OpponentScore
			diff += m.GoalDiff()
		}
		n := float64(len(recent))
		form.AvgGoals = float64(goals) / n
		form.WinRate = float64(wins) / n
		form.AvgGoalsConceded = float64(conceded) / n
		form.AvgGoalDiff = float64(diff) / n

		result = append(result, form)
	}

	return result
}

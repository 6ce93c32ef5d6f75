// Package ordering holds the canonical (date, team) row order shared by every
// table the pipeline writes.
package ordering

import (
	"sort"
	"time"

	"team-form-lab/internal/domain"
)

// SortByDateTeam orders rows by (date ASC, team ASC).
// The sort is stable: rows with equal keys keep their relative input order.
func SortByDateTeam[T any](rows []T, key func(T) (time.Time, string)) {
	sort.SliceStable(rows, func(i, j int) bool {
		iDate, iTeam := key(rows[i])
		jDate, jTeam := key(rows[j])
		return CompareDateTeam(iDate, iTeam, jDate, jTeam) < 0
	})
}

// SortTeamMatches orders team matches by (date ASC, team ASC), stable.
func SortTeamMatches(rows []*domain.TeamMatch) {
	SortByDateTeam(rows, func(r *domain.TeamMatch) (time.Time, string) {
		return r.Date, r.Team
	})
}

// SortFeatureRows orders feature rows by (date ASC, team ASC), stable.
func SortFeatureRows(rows []*domain.FeatureRow) {
	SortByDateTeam(rows, func(r *domain.FeatureRow) (time.Time, string) {
		return r.Date, r.Team
	})
}

// CompareDateTeam returns:
//   - negative if (aDate, aTeam) < (bDate, bTeam)
//   - zero if equal
//   - positive if greater
func CompareDateTeam(aDate time.Time, aTeam string, bDate time.Time, bTeam string) int {
	if !aDate.Equal(bDate) {
		if aDate.Before(bDate) {
			return -1
		}
		return 1
	}
	if aTeam != bTeam {
		if aTeam < bTeam {
			return -1
		}
		return 1
	}
	return 0
}

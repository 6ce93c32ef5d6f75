package storage

import "team-form-lab/internal/domain"

// RowKey identifies one team-perspective row.
type RowKey struct {
	MatchID string
	Team    string
}

// ValidateTeamMatches checks a batch before it is written.
// Returns ErrInvalidInput for nil rows or empty keys and ErrDuplicateKey
// for intra-batch duplicates.
func ValidateTeamMatches(rows []*domain.TeamMatch) error {
	seen := make(map[RowKey]struct{}, len(rows))
	for _, r := range rows {
		if r == nil {
			return ErrInvalidInput
		}
		if err := checkKey(seen, r); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFeatureRows is ValidateTeamMatches for feature rows.
func ValidateFeatureRows(rows []*domain.FeatureRow) error {
	seen := make(map[RowKey]struct{}, len(rows))
	for _, r := range rows {
		if r == nil {
			return ErrInvalidInput
		}
		if err := checkKey(seen, &r.TeamMatch); err != nil {
			return err
		}
	}
	return nil
}

func checkKey(seen map[RowKey]struct{}, m *domain.TeamMatch) error {
	if m.MatchID == "" || m.Team == "" {
		return ErrInvalidInput
	}
	k := RowKey{MatchID: m.MatchID, Team: m.Team}
	if _, exists := seen[k]; exists {
		return ErrDuplicateKey
	}
	seen[k] = struct{}{}
	return nil
}

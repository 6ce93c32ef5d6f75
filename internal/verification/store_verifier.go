package verification

import (
	"context"
	"fmt"

	"team-form-lab/internal/features"
	"team-form-lab/internal/storage"
)

// StoreVerifier checks a feature store against a team match store.
type StoreVerifier struct {
	teamMatches storage.TeamMatchStore
	features    storage.FeatureStore
	window      int
}

// NewStoreVerifier creates a new StoreVerifier.
func NewStoreVerifier(teamMatches storage.TeamMatchStore, featureStore storage.FeatureStore, window int) *StoreVerifier {
	if window < 1 {
		window = features.DefaultWindow
	}
	return &StoreVerifier{teamMatches: teamMatches, features: featureStore, window: window}
}

// VerifyAll recomputes every feature row and compares it with the store.
func (v *StoreVerifier) VerifyAll(ctx context.Context) (*Report, error) {
	matches, err := v.teamMatches.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load team matches: %w", err)
	}
	stored, err := v.features.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load feature rows: %w", err)
	}
	return VerifyFeatures(matches, stored, v.window), nil
}

// VerifyTeam compares one team's stored rows with its recomputation.
// Only that team's history feeds its features, so its matches suffice.
func (v *StoreVerifier) VerifyTeam(ctx context.Context, team string) (*Report, error) {
	matches, err := v.teamMatches.GetByTeam(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("load team matches for %s: %w", team, err)
	}
	stored, err := v.features.GetByTeam(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("load feature rows for %s: %w", team, err)
	}

	expected := features.Build(matches, v.window)
	return Compare(expected, stored), nil
}

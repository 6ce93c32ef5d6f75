package storage

import (
	"context"

	"team-form-lab/internal/domain"
)

// TeamMatchStore provides access to team_matches storage (the long table).
type TeamMatchStore interface {
	// ReplaceAll atomically replaces the stored table with rows, keeping their order.
	// Returns ErrInvalidInput for nil rows or empty keys, ErrDuplicateKey if
	// (match_id, team) repeats. On error the previous contents are kept.
	ReplaceAll(ctx context.Context, rows []*domain.TeamMatch) error

	// GetAll retrieves all rows in stored order.
	GetAll(ctx context.Context) ([]*domain.TeamMatch, error)

	// GetByTeam retrieves all rows for a team, ordered by date ASC.
	GetByTeam(ctx context.Context, team string) ([]*domain.TeamMatch, error)
}

// FeatureStore provides access to team_features storage.
type FeatureStore interface {
	// ReplaceAll atomically replaces the stored table with rows, keeping their order.
	// Same validation as TeamMatchStore.ReplaceAll.
	ReplaceAll(ctx context.Context, rows []*domain.FeatureRow) error

	// GetAll retrieves all rows in stored order.
	GetAll(ctx context.Context) ([]*domain.FeatureRow, error)

	// GetByTeam retrieves all rows for a team, ordered by date ASC.
	GetByTeam(ctx context.Context, team string) ([]*domain.FeatureRow, error)

	// GetLatestByTeam retrieves the team's most recent row. Returns ErrNotFound if none.
	GetLatestByTeam(ctx context.Context, team string) (*domain.FeatureRow, error)
}

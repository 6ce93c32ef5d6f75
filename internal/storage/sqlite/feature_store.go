package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"team-form-lab/internal/domain"
	"team-form-lab/internal/storage"
)

// dateLayout keeps dates sortable as TEXT.
const dateLayout = time.DateOnly

// FeatureStore implements storage.FeatureStore on SQLite.
type FeatureStore struct {
	db *DB
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(db *DB) *FeatureStore {
	return &FeatureStore{db: db}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

const selectFeatures = `
	SELECT
		match_id, date, team, opponent,
		team_score, opponent_score, win, neutral, goal_diff,
		avg_goals_last_5, win_rate_last_5,
		avg_goals_conceded_last_5, avg_goal_diff_last_5
	FROM team_features
`

// ReplaceAll swaps the table contents inside one transaction.
func (s *FeatureStore) ReplaceAll(ctx context.Context, rows []*domain.FeatureRow) error {
	if err := storage.ValidateFeatureRows(rows); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM team_features`); err != nil {
		return fmt.Errorf("clear team_features: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO team_features (
			position, match_id, date, team, opponent,
			team_score, opponent_score, win, neutral, goal_diff,
			avg_goals_last_5, win_rate_last_5,
			avg_goals_conceded_last_5, avg_goal_diff_last_5
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		_, err := stmt.ExecContext(ctx,
			i, r.MatchID, r.Date.Format(dateLayout), r.Team, r.Opponent,
			r.TeamScore, r.OpponentScore, r.Win, r.Neutral, r.GoalDiff,
			nullFloat(r.AvgGoalsLast5), nullFloat(r.WinRateLast5),
			nullFloat(r.AvgGoalsConcededLast5), nullFloat(r.AvgGoalDiffLast5),
		)
		if err != nil {
			return fmt.Errorf("insert feature row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves all rows in the order they were written.
func (s *FeatureStore) GetAll(ctx context.Context) ([]*domain.FeatureRow, error) {
	rows, err := s.db.QueryContext(ctx, selectFeatures+` ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

// GetByTeam retrieves all rows for a team, ordered by date ASC.
func (s *FeatureStore) GetByTeam(ctx context.Context, team string) ([]*domain.FeatureRow, error) {
	rows, err := s.db.QueryContext(ctx, selectFeatures+` WHERE team = ? ORDER BY date ASC, position ASC`, team)
	if err != nil {
		return nil, fmt.Errorf("query features by team: %w", err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

// GetLatestByTeam retrieves the team's most recent row. Returns ErrNotFound if none.
func (s *FeatureStore) GetLatestByTeam(ctx context.Context, team string) (*domain.FeatureRow, error) {
	row := s.db.QueryRowContext(ctx, selectFeatures+` WHERE team = ? ORDER BY date DESC, position DESC LIMIT 1`, team)

	r, err := scanFeatureRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest feature row: %w", err)
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFeatureRow(sc scanner) (*domain.FeatureRow, error) {
	var r domain.FeatureRow
	var date string
	var avgGoals, winRate, avgConceded, avgDiff sql.NullFloat64

	err := sc.Scan(
		&r.MatchID, &date, &r.Team, &r.Opponent,
		&r.TeamScore, &r.OpponentScore, &r.Win, &r.Neutral, &r.GoalDiff,
		&avgGoals, &winRate, &avgConceded, &avgDiff,
	)
	if err != nil {
		return nil, err
	}

	r.Date, err = time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	r.AvgGoalsLast5 = floatPtr(avgGoals)
	r.WinRateLast5 = floatPtr(winRate)
	r.AvgGoalsConcededLast5 = floatPtr(avgConceded)
	r.AvgGoalDiffLast5 = floatPtr(avgDiff)

	return &r, nil
}

func scanFeatureRows(rows *sql.Rows) ([]*domain.FeatureRow, error) {
	var result []*domain.FeatureRow
	for rows.Next() {
		r, err := scanFeatureRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature rows: %w", err)
	}
	return result, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

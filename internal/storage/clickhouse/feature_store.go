package clickhouse

import (
	"context"
	"fmt"
	"time"

	"team-form-lab/internal/domain"
	"team-form-lab/internal/storage"
)

// FeatureStore implements storage.FeatureStore using ClickHouse.
//
// MergeTree does not enforce keys, so uniqueness is checked on the batch
// before anything is written.
type FeatureStore struct {
	conn *Conn
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(conn *Conn) *FeatureStore {
	return &FeatureStore{conn: conn}
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

const stagingTable = "team_features_staging"

// ReplaceAll loads rows into a staging copy of team_features and swaps it in
// with EXCHANGE TABLES, so a failed load leaves the live table untouched.
// EXCHANGE needs an Atomic database, the ClickHouse default.
func (s *FeatureStore) ReplaceAll(ctx context.Context, rows []*domain.FeatureRow) (err error) {
	if err := storage.ValidateFeatureRows(rows); err != nil {
		return err
	}

	if err := s.conn.Exec(ctx, `DROP TABLE IF EXISTS `+stagingTable); err != nil {
		return fmt.Errorf("drop stale staging table: %w", err)
	}
	if err := s.conn.Exec(ctx, `CREATE TABLE `+stagingTable+` AS team_features`); err != nil {
		return fmt.Errorf("create staging table: %w", err)
	}
	defer func() {
		// After a successful exchange the staging table holds the old rows.
		if dropErr := s.conn.Exec(ctx, `DROP TABLE IF EXISTS `+stagingTable); dropErr != nil && err == nil {
			err = fmt.Errorf("drop staging table: %w", dropErr)
		}
	}()

	if len(rows) > 0 {
		if err := s.insert(ctx, stagingTable, rows); err != nil {
			return err
		}
	}

	if err := s.conn.Exec(ctx, `EXCHANGE TABLES `+stagingTable+` AND team_features`); err != nil {
		return fmt.Errorf("exchange team_features: %w", err)
	}
	return nil
}

func (s *FeatureStore) insert(ctx context.Context, table string, rows []*domain.FeatureRow) error {
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO `+table+` (
			position, match_id, date, team, opponent,
			team_score, opponent_score, win, neutral, goal_diff,
			avg_goals_last_5, win_rate_last_5,
			avg_goals_conceded_last_5, avg_goal_diff_last_5
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer batch.Abort()

	for i, r := range rows {
		// Nil pointers map to NULL in the Nullable columns.
		err = batch.Append(
			uint32(i), r.MatchID, r.Date, r.Team, r.Opponent,
			int32(r.TeamScore), int32(r.OpponentScore), uint8(r.Win), r.Neutral, int32(r.GoalDiff),
			r.AvgGoalsLast5, r.WinRateLast5,
			r.AvgGoalsConcededLast5, r.AvgGoalDiffLast5,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetAll retrieves all rows in the order they were written.
func (s *FeatureStore) GetAll(ctx context.Context) ([]*domain.FeatureRow, error) {
	rows, err := s.conn.Query(ctx, selectFeatures+` ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

// GetByTeam retrieves all rows for a team, ordered by date ASC.
func (s *FeatureStore) GetByTeam(ctx context.Context, team string) ([]*domain.FeatureRow, error) {
	rows, err := s.conn.Query(ctx, selectFeatures+` WHERE team = ? ORDER BY date ASC, position ASC`, team)
	if err != nil {
		return nil, fmt.Errorf("query features by team: %w", err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

// GetLatestByTeam retrieves the team's most recent row. Returns ErrNotFound if none.
func (s *FeatureStore) GetLatestByTeam(ctx context.Context, team string) (*domain.FeatureRow, error) {
	rows, err := s.conn.Query(ctx, selectFeatures+` WHERE team = ? ORDER BY date DESC, position DESC LIMIT 1`, team)
	if err != nil {
		return nil, fmt.Errorf("query latest feature row: %w", err)
	}
	defer rows.Close()

	result, err := scanFeatureRows(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, storage.ErrNotFound
	}
	return result[0], nil
}

// chRows is the subset of driver.Rows used by the scanner.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanFeatureRows(rows chRows) ([]*domain.FeatureRow, error) {
	var result []*domain.FeatureRow

	for rows.Next() {
		var r domain.FeatureRow
		var date time.Time
		var teamScore, opponentScore, goalDiff int32
		var win uint8

		err := rows.Scan(
			&r.MatchID, &date, &r.Team, &r.Opponent,
			&teamScore, &opponentScore, &win, &r.Neutral, &goalDiff,
			&r.AvgGoalsLast5, &r.WinRateLast5,
			&r.AvgGoalsConcededLast5, &r.AvgGoalDiffLast5,
		)
		if err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}

		r.Date = date.UTC()
		r.TeamScore = int(teamScore)
		r.OpponentScore = int(opponentScore)
		r.Win = int(win)
		r.GoalDiff = int(goalDiff)

		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature rows: %w", err)
	}

	return result, nil
}

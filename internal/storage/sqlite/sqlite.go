// Package sqlite stores the feature table in a single SQLite file so a model
// training job can read it without a database server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// Pure Go driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS team_features (
		position                  INTEGER NOT NULL,
		match_id                  TEXT    NOT NULL,
		date                      TEXT    NOT NULL,
		team                      TEXT    NOT NULL,
		opponent                  TEXT    NOT NULL,
		team_score                INTEGER NOT NULL,
		opponent_score            INTEGER NOT NULL,
		win                       INTEGER NOT NULL,
		neutral                   INTEGER NOT NULL,
		goal_diff                 INTEGER NOT NULL,
		avg_goals_last_5          REAL,
		win_rate_last_5           REAL,
		avg_goals_conceded_last_5 REAL,
		avg_goal_diff_last_5      REAL,
		PRIMARY KEY (match_id, team)
	);

	CREATE INDEX IF NOT EXISTS idx_team_features_team_date ON team_features (team, date);
`

// DB wraps a *sql.DB opened on a SQLite file.
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the SQLite file at path and ensures the schema.
func Open(ctx context.Context, path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// One writer at a time; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize sqlite schema: %w", err)
	}

	return &DB{DB: db}, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"team-form-lab/internal/domain"
	"team-form-lab/internal/storage"
)

// TeamMatchStore implements storage.TeamMatchStore using PostgreSQL.
type TeamMatchStore struct {
	pool *Pool
}

// NewTeamMatchStore creates a new TeamMatchStore.
func NewTeamMatchStore(pool *Pool) *TeamMatchStore {
	return &TeamMatchStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TeamMatchStore = (*TeamMatchStore)(nil)

var teamMatchColumns = []string{
	"match_id", "team", "position", "date", "opponent",
	"team_score", "opponent_score", "win", "neutral",
}

// ReplaceAll deletes the stored table and copies rows in within one transaction.
// On any failure the previous contents are kept.
func (s *TeamMatchStore) ReplaceAll(ctx context.Context, rows []*domain.TeamMatch) error {
	if err := storage.ValidateTeamMatches(rows); err != nil {
		return err
	}

	return s.pool.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM team_matches`); err != nil {
			return fmt.Errorf("clear team_matches: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}

		source := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{
				r.MatchID, r.Team, int32(i), r.Date, r.Opponent,
				int32(r.TeamScore), int32(r.OpponentScore), int16(r.Win), r.Neutral,
			}, nil
		})

		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"team_matches"}, teamMatchColumns, source); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("copy team_matches: %w", err)
		}
		return nil
	})
}

// GetAll retrieves all rows in the order they were written.
func (s *TeamMatchStore) GetAll(ctx context.Context) ([]*domain.TeamMatch, error) {
	query := `
		SELECT match_id, date, team, opponent, team_score, opponent_score, win, neutral
		FROM team_matches
		ORDER BY position ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query team matches: %w", err)
	}
	defer rows.Close()

	return scanTeamMatches(rows)
}

// GetByTeam retrieves all rows for a team, ordered by date ASC.
func (s *TeamMatchStore) GetByTeam(ctx context.Context, team string) ([]*domain.TeamMatch, error) {
	query := `
		SELECT match_id, date, team, opponent, team_score, opponent_score, win, neutral
		FROM team_matches
		WHERE team = $1
		ORDER BY date ASC, position ASC
	`

	rows, err := s.pool.Query(ctx, query, team)
	if err != nil {
		return nil, fmt.Errorf("query team matches by team: %w", err)
	}
	defer rows.Close()

	return scanTeamMatches(rows)
}

func scanTeamMatches(rows pgx.Rows) ([]*domain.TeamMatch, error) {
	var result []*domain.TeamMatch

	for rows.Next() {
		var m domain.TeamMatch
		var teamScore, opponentScore int32
		var win int16

		err := rows.Scan(
			&m.MatchID, &m.Date, &m.Team, &m.Opponent,
			&teamScore, &opponentScore, &win, &m.Neutral,
		)
		if err != nil {
			return nil, fmt.Errorf("scan team match: %w", err)
		}

		m.TeamScore = int(teamScore)
		m.OpponentScore = int(opponentScore)
		m.Win = int(win)
		m.Date = m.Date.UTC()

		result = append(result, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team matches: %w", err)
	}

	return result, nil
}

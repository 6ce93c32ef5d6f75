package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"team-form-lab/internal/domain"
	"team-form-lab/internal/storage"
)

func createTestTeamMatch(matchID string, date time.Time, team, opponent string, teamScore, opponentScore int) *domain.TeamMatch {
	win := 0
	if teamScore > opponentScore {
		win = 1
	}
	return &domain.TeamMatch{
		MatchID:       matchID,
		Date:          date,
		Team:          team,
		Opponent:      opponent,
		TeamScore:     teamScore,
		OpponentScore: opponentScore,
		Win:           win,
		Neutral:       false,
	}
}

func TestTeamMatchStore_ReplaceAllAndGetAll(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTeamMatchStore(pool)

	d1 := time.Date(2014, 6, 12, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2014, 6, 13, 0, 0, 0, 0, time.UTC)
	rows := []*domain.TeamMatch{
		createTestTeamMatch("m1", d1, "Brazil", "Croatia", 3, 1),
		createTestTeamMatch("m1", d1, "Croatia", "Brazil", 1, 3),
		createTestTeamMatch("m2", d2, "Mexico", "Cameroon", 1, 0),
	}
	rows[2].Neutral = true

	require.NoError(t, store.ReplaceAll(ctx, rows))

	retrieved, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, retrieved, 3)

	for i, want := range rows {
		got := retrieved[i]
		assert.Equal(t, want.MatchID, got.MatchID)
		assert.True(t, want.Date.Equal(got.Date), "date mismatch at %d: %v vs %v", i, want.Date, got.Date)
		assert.Equal(t, want.Team, got.Team)
		assert.Equal(t, want.Opponent, got.Opponent)
		assert.Equal(t, want.TeamScore, got.TeamScore)
		assert.Equal(t, want.OpponentScore, got.OpponentScore)
		assert.Equal(t, want.Win, got.Win)
		assert.Equal(t, want.Neutral, got.Neutral)
	}
}

func TestTeamMatchStore_ReplaceAllReplaces(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTeamMatchStore(pool)

	d := time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.ReplaceAll(ctx, []*domain.TeamMatch{
		createTestTeamMatch("m1", d, "A", "B", 2, 2),
		createTestTeamMatch("m1", d, "B", "A", 2, 2),
	}))
	require.NoError(t, store.ReplaceAll(ctx, []*domain.TeamMatch{
		createTestTeamMatch("m1", d, "A", "B", 2, 2),
	}))

	retrieved, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, retrieved, 1)
}

func TestTeamMatchStore_DuplicateKeepsPrevious(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTeamMatchStore(pool)

	d := time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.ReplaceAll(ctx, []*domain.TeamMatch{
		createTestTeamMatch("m0", d, "X", "Y", 0, 1),
	}))

	err := store.ReplaceAll(ctx, []*domain.TeamMatch{
		createTestTeamMatch("m1", d, "A", "B", 1, 0),
		createTestTeamMatch("m1", d, "A", "B", 1, 0),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	retrieved, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, retrieved, 1)
	assert.Equal(t, "m0", retrieved[0].MatchID)
}

func TestTeamMatchStore_GetByTeam(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTeamMatchStore(pool)

	d1 := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2016, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.ReplaceAll(ctx, []*domain.TeamMatch{
		createTestTeamMatch("m2", d2, "A", "C", 0, 0),
		createTestTeamMatch("m1", d1, "A", "B", 1, 0),
		createTestTeamMatch("m1", d1, "B", "A", 0, 1),
	}))

	retrieved, err := store.GetByTeam(ctx, "A")
	require.NoError(t, err)
	require.Len(t, retrieved, 2)
	assert.Equal(t, "m1", retrieved[0].MatchID)
	assert.Equal(t, "m2", retrieved[1].MatchID)

	none, err := store.GetByTeam(ctx, "Z")
	require.NoError(t, err)
	assert.Empty(t, none)
}

package memory

import (
	"context"
	"sort"
	"sync"

	"team-form-lab/internal/domain"
	"team-form-lab/internal/storage"
)

// TeamMatchStore is an in-memory implementation of storage.TeamMatchStore.
type TeamMatchStore struct {
	mu   sync.RWMutex
	rows []domain.TeamMatch // stored order
}

// NewTeamMatchStore creates a new in-memory team match store.
func NewTeamMatchStore() *TeamMatchStore {
	return &TeamMatchStore{}
}

// ReplaceAll atomically replaces the stored table with rows.
func (s *TeamMatchStore) ReplaceAll(_ context.Context, rows []*domain.TeamMatch) error {
	if err := storage.ValidateTeamMatches(rows); err != nil {
		return err
	}

	replacement := make([]domain.TeamMatch, len(rows))
	for i, r := range rows {
		replacement[i] = *r
	}

	s.mu.Lock()
	s.rows = replacement
	s.mu.Unlock()

	return nil
}

// GetAll retrieves all rows in stored order.
func (s *TeamMatchStore) GetAll(_ context.Context) ([]*domain.TeamMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.TeamMatch, len(s.rows))
	for i := range s.rows {
		rowCopy := s.rows[i]
		result[i] = &rowCopy
	}
	return result, nil
}

// GetByTeam retrieves all rows for a team, ordered by date ASC.
func (s *TeamMatchStore) GetByTeam(_ context.Context, team string) ([]*domain.TeamMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TeamMatch
	for i := range s.rows {
		if s.rows[i].Team == team {
			rowCopy := s.rows[i]
			result = append(result, &rowCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

var _ storage.TeamMatchStore = (*TeamMatchStore)(nil)

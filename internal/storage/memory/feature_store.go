package memory

import (
	"context"
	"sort"
	"sync"

	"team-form-lab/internal/domain"
	"team-form-lab/internal/storage"
)

// FeatureStore is an in-memory implementation of storage.FeatureStore.
type FeatureStore struct {
	mu   sync.RWMutex
	rows []domain.FeatureRow // stored order
}

// NewFeatureStore creates a new in-memory feature store.
func NewFeatureStore() *FeatureStore {
	return &FeatureStore{}
}

// ReplaceAll atomically replaces the stored table with rows.
func (s *FeatureStore) ReplaceAll(_ context.Context, rows []*domain.FeatureRow) error {
	if err := storage.ValidateFeatureRows(rows); err != nil {
		return err
	}

	replacement := make([]domain.FeatureRow, len(rows))
	for i, r := range rows {
		replacement[i] = copyFeatureRow(r)
	}

	s.mu.Lock()
	s.rows = replacement
	s.mu.Unlock()

	return nil
}

// GetAll retrieves all rows in stored order.
func (s *FeatureStore) GetAll(_ context.Context) ([]*domain.FeatureRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.FeatureRow, len(s.rows))
	for i := range s.rows {
		rowCopy := copyFeatureRow(&s.rows[i])
		result[i] = &rowCopy
	}
	return result, nil
}

// GetByTeam retrieves all rows for a team, ordered by date ASC.
func (s *FeatureStore) GetByTeam(_ context.Context, team string) ([]*domain.FeatureRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FeatureRow
	for i := range s.rows {
		if s.rows[i].Team == team {
			rowCopy := copyFeatureRow(&s.rows[i])
			result = append(result, &rowCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

// GetLatestByTeam retrieves the team's most recent row. Returns ErrNotFound if none.
func (s *FeatureStore) GetLatestByTeam(ctx context.Context, team string) (*domain.FeatureRow, error) {
	rows, err := s.GetByTeam(ctx, team)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, storage.ErrNotFound
	}
	return rows[len(rows)-1], nil
}

// copyFeatureRow deep-copies the nullable features so callers cannot alias stored values.
func copyFeatureRow(r *domain.FeatureRow) domain.FeatureRow {
	c := *r
	c.AvgGoalsLast5 = copyFloat(r.AvgGoalsLast5)
	c.WinRateLast5 = copyFloat(r.WinRateLast5)
	c.AvgGoalsConcededLast5 = copyFloat(r.AvgGoalsConcededLast5)
	c.AvgGoalDiffLast5 = copyFloat(r.AvgGoalDiffLast5)
	return c
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

var _ storage.FeatureStore = (*FeatureStore)(nil)

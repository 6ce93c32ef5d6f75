// Package tableio reads and writes the three pipeline tables as delimited text.
package tableio

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchema matches every *SchemaError via errors.Is.
var ErrSchema = errors.New("schema error")

// SchemaError reports required columns absent from a table header.
type SchemaError struct {
	Table   string   // "raw", "team_matches" or "features"
	Missing []string // required columns not found, in declaration order
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s table: missing required columns: %s", e.Table, strings.Join(e.Missing, ", "))
}

// Is reports whether target is ErrSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// Table names used in SchemaError.
const (
	TableRaw         = "raw"
	TableTeamMatches = "team_matches"
	TableFeatures    = "features"
)

// RawColumns are the required input columns. Extra columns are ignored.
var RawColumns = []string{"date", "home_team", "away_team", "home_score", "away_score", "neutral"}

// TeamMatchColumns are the intermediate table columns, in output order.
var TeamMatchColumns = []string{"date", "team", "opponent", "team_score", "opponent_score", "win", "neutral"}

// FeatureColumns are the feature table columns, in output order.
var FeatureColumns = []string{
	"date", "team", "opponent", "team_score", "opponent_score", "win", "neutral",
	"goal_diff", "avg_goals_last_5", "win_rate_last_5", "avg_goals_conceded_last_5", "avg_goal_diff_last_5",
}

// columnIndex maps each required column to its position in header.
func columnIndex(table string, header, required []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}

	index := make(map[string]int, len(required))
	var missing []string
	for _, col := range required {
		pos, ok := positions[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		index[col] = pos
	}

	if len(missing) > 0 {
		return nil, &SchemaError{Table: table, Missing: missing}
	}
	return index, nil
}

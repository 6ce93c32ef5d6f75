package reporting

import (
	"time"

	"team-form-lab/internal/domain"
)

// Report summarizes one pipeline run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Cutoff      time.Time
	Window      int

	DataSummary DataSummary
	DataQuality DataQualitySection

	// Teams in the best current form (sorted by win rate, goal diff, name)
	TopForm []*domain.TeamForm

	// sha256 of every file the run wrote, in write order
	DataVersions []DataVersionRow
}

// DataSummary contains row counts per stage.
type DataSummary struct {
	RawRows        int // -1 when the run started from the long table
	TeamMatchRows  int
	FeatureRows    int
	Fixtures       int
	Teams          int
	DateRangeStart time.Time
	DateRangeEnd   time.Time
}

// DataQualitySection lists dropped rows by reason and integrity errors.
type DataQualitySection struct {
	DropReasons         []DropReasonRow
	FirstAppearanceRows int // feature rows whose trailing features are all missing
	IntegrityErrors     []string
}

// DropReasonRow is one drop counter.
type DropReasonRow struct {
	Reason string
	Rows   int
}

// DataVersionRow identifies one written file by content hash.
type DataVersionRow struct {
	Name   string
	SHA256 string
}

package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Team Form Pipeline Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Cutoff: %s | Window: %d\n\n", r.Cutoff.Format(time.DateOnly), r.Window))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	if r.DataSummary.RawRows >= 0 {
		sb.WriteString(fmt.Sprintf("| Raw Fixtures | %d |\n", r.DataSummary.RawRows))
	}
	sb.WriteString(fmt.Sprintf("| Fixtures | %d |\n", r.DataSummary.Fixtures))
	sb.WriteString(fmt.Sprintf("| Team Rows | %d |\n", r.DataSummary.TeamMatchRows))
	sb.WriteString(fmt.Sprintf("| Feature Rows | %d |\n", r.DataSummary.FeatureRows))
	sb.WriteString(fmt.Sprintf("| Teams | %d |\n", r.DataSummary.Teams))
	if r.DataSummary.TeamMatchRows > 0 {
		sb.WriteString(fmt.Sprintf("| First Match | %s |\n", r.DataSummary.DateRangeStart.Format(time.DateOnly)))
		sb.WriteString(fmt.Sprintf("| Last Match | %s |\n", r.DataSummary.DateRangeEnd.Format(time.DateOnly)))
	}
	sb.WriteString("\n")

	// Data Quality
	sb.WriteString("## Data Quality\n\n")
	if len(r.DataQuality.DropReasons) > 0 {
		sb.WriteString("| Drop Reason | Rows |\n")
		sb.WriteString("|-------------|------|\n")
		for _, d := range r.DataQuality.DropReasons {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", d.Reason, d.Rows))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("Rows without history (first appearance): %d\n\n", r.DataQuality.FirstAppearanceRows))

	if len(r.DataQuality.IntegrityErrors) > 0 {
		sb.WriteString("### Integrity Errors\n\n")
		for _, e := range r.DataQuality.IntegrityErrors {
			sb.WriteString(fmt.Sprintf("- %s\n", e))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("All fixtures have two mirrored team rows.\n\n")
	}

	// Current form
	sb.WriteString("## Current Form\n\n")
	if len(r.TopForm) > 0 {
		sb.WriteString("| Team | Last Match | Played | Window | Goals | WinRate | Conceded | GoalDiff |\n")
		sb.WriteString("|------|------------|--------|--------|-------|---------|----------|----------|\n")
		for _, f := range r.TopForm {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %.2f | %.2f | %.2f | %+.2f |\n",
				f.Team, f.LastMatchDate.Format(time.DateOnly), f.MatchesPlayed, f.WindowSize,
				f.AvgGoals, f.WinRate, f.AvgGoalsConceded, f.AvgGoalDiff))
		}
	} else {
		sb.WriteString("No matches available.\n")
	}
	sb.WriteString("\n")

	// Data versions
	if len(r.DataVersions) > 0 {
		sb.WriteString("## Data Versions\n\n")
		sb.WriteString("| File | SHA-256 |\n")
		sb.WriteString("|------|---------|\n")
		for _, v := range r.DataVersions {
			sb.WriteString(fmt.Sprintf("| %s | `%s` |\n", v.Name, v.SHA256))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

package reporting

import (
	"context"
	"strings"
	"testing"
	"time"

	"team-form-lab/internal/domain"
	"team-form-lab/internal/features"
	"team-form-lab/internal/reshape"
	"team-form-lab/internal/storage/memory"
)

func ptr[T any](v T) *T {
	return &v
}

func rawMatch(date time.Time, home, away string, hs, as int) *domain.RawMatch {
	return &domain.RawMatch{
		Date:      date,
		HomeTeam:  home,
		AwayTeam:  away,
		HomeScore: ptr(hs),
		AwayScore: ptr(as),
		Neutral:   ptr(false),
	}
}

func setupTestData(t *testing.T) (*memory.TeamMatchStore, *memory.FeatureStore, reshape.Stats) {
	t.Helper()
	ctx := context.Background()

	d := func(day int) time.Time { return time.Date(2020, 1, day, 0, 0, 0, 0, time.UTC) }
	raw := []*domain.RawMatch{
		rawMatch(d(1), "Spain", "Italy", 2, 0),
		rawMatch(d(5), "Italy", "Chile", 1, 1),
		rawMatch(d(9), "Chile", "Spain", 0, 3),
		rawMatch(time.Date(2008, 1, 1, 0, 0, 0, 0, time.UTC), "Spain", "Chile", 1, 0),
		{Date: d(10), HomeTeam: "Peru", AwayTeam: "Chile", HomeScore: ptr(1)},
	}

	matches, stats := reshape.Reshape(raw, reshape.Options{})
	rows := features.Build(matches, features.DefaultWindow)

	teamStore := memory.NewTeamMatchStore()
	featureStore := memory.NewFeatureStore()
	if err := teamStore.ReplaceAll(ctx, matches); err != nil {
		t.Fatalf("ReplaceAll team matches failed: %v", err)
	}
	if err := featureStore.ReplaceAll(ctx, rows); err != nil {
		t.Fatalf("ReplaceAll features failed: %v", err)
	}
	return teamStore, featureStore, stats
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestGenerator_Generate(t *testing.T) {
	teamStore, featureStore, stats := setupTestData(t)

	gen := NewGenerator(teamStore, featureStore).WithClock(fixedClock)
	report, err := gen.Generate(context.Background(), RunInfo{
		Cutoff:       reshape.DefaultCutoff,
		Window:       5,
		Reshape:      &stats,
		DataVersions: []DataVersionRow{{Name: "processed.csv", SHA256: "abc"}},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	s := report.DataSummary
	if s.RawRows != 5 {
		t.Errorf("RawRows = %d, want 5", s.RawRows)
	}
	if s.Fixtures != 3 || s.TeamMatchRows != 6 || s.FeatureRows != 6 {
		t.Errorf("Unexpected counts: %+v", s)
	}
	if s.Teams != 3 {
		t.Errorf("Teams = %d, want 3", s.Teams)
	}
	if !s.DateRangeStart.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) ||
		!s.DateRangeEnd.Equal(time.Date(2020, 1, 9, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected date range %v..%v", s.DateRangeStart, s.DateRangeEnd)
	}

	q := report.DataQuality
	if len(q.DropReasons) != 3 || q.DropReasons[0].Rows != 1 || q.DropReasons[1].Rows != 1 {
		t.Errorf("Unexpected drop reasons: %+v", q.DropReasons)
	}
	if q.FirstAppearanceRows != 3 {
		t.Errorf("FirstAppearanceRows = %d, want 3 (one per team)", q.FirstAppearanceRows)
	}
	if len(q.IntegrityErrors) != 0 {
		t.Errorf("Unexpected integrity errors: %v", q.IntegrityErrors)
	}

	// Spain won both matches.
	if len(report.TopForm) != 3 || report.TopForm[0].Team != "Spain" {
		t.Errorf("Spain should lead current form, got %+v", report.TopForm)
	}
}

func TestGenerator_WithoutReshapeStats(t *testing.T) {
	teamStore, featureStore, _ := setupTestData(t)

	report, err := NewGenerator(teamStore, featureStore).WithClock(fixedClock).
		Generate(context.Background(), RunInfo{Window: 5})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if report.DataSummary.RawRows != -1 {
		t.Errorf("RawRows should be -1 without reshape stats, got %d", report.DataSummary.RawRows)
	}
	if len(report.DataQuality.DropReasons) != 0 {
		t.Errorf("No drop reasons expected without reshape stats")
	}
}

func TestCheckPairing(t *testing.T) {
	d := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	ok := []*domain.TeamMatch{
		{MatchID: "f1", Date: d, Team: "A", Opponent: "B", TeamScore: 1, OpponentScore: 0, Win: 1},
		{MatchID: "f1", Date: d, Team: "B", Opponent: "A", TeamScore: 0, OpponentScore: 1, Win: 0},
	}
	if errs := checkPairing(ok); len(errs) != 0 {
		t.Errorf("Mirrored pair reported errors: %v", errs)
	}

	lonely := []*domain.TeamMatch{ok[0]}
	if errs := checkPairing(lonely); len(errs) != 1 || !strings.Contains(errs[0], "1 team rows") {
		t.Errorf("Expected one-sided fixture error, got %v", errs)
	}

	broken := []*domain.TeamMatch{ok[0], {MatchID: "f1", Date: d, Team: "B", Opponent: "A", TeamScore: 2, OpponentScore: 1}}
	if errs := checkPairing(broken); len(errs) != 1 || !strings.Contains(errs[0], "not mirrored") {
		t.Errorf("Expected mirror error, got %v", errs)
	}
}

func TestCheckPairing_SameDayRematch(t *testing.T) {
	d := time.Date(2020, 2, 2, 0, 0, 0, 0, time.UTC)
	matches, _ := reshape.Reshape([]*domain.RawMatch{
		rawMatch(d, "A", "B", 2, 0),
		rawMatch(d, "B", "A", 5, 1),
	}, reshape.Options{})

	if errs := checkPairing(matches); len(errs) != 0 {
		t.Errorf("Home-and-away rematch reported errors: %v", errs)
	}
}

func TestRenderMarkdown(t *testing.T) {
	teamStore, featureStore, stats := setupTestData(t)
	report, err := NewGenerator(teamStore, featureStore).WithClock(fixedClock).
		Generate(context.Background(), RunInfo{
			Cutoff:       reshape.DefaultCutoff,
			Window:       5,
			Reshape:      &stats,
			DataVersions: []DataVersionRow{{Name: "team_features.csv", SHA256: "deadbeef"}},
		})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)
	for _, want := range []string{
		"# Team Form Pipeline Report",
		"Generated: 2024-03-01T12:00:00Z",
		"Cutoff: 2010-01-01 | Window: 5",
		"| Raw Fixtures | 5 |",
		"| before_cutoff | 1 |",
		"All fixtures have two mirrored team rows.",
		"| Spain | 2020-01-09 | 2 | 2 | 2.50 | 1.00 | 0.00 | +2.50 |",
		"| team_features.csv | `deadbeef` |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q\n%s", want, md)
		}
	}

	// Same input, same clock, same output.
	if RenderMarkdown(report) != md {
		t.Error("RenderMarkdown is not deterministic")
	}
}

func TestRenderLatestFormCSV(t *testing.T) {
	forms := []*domain.TeamForm{
		{
			Team:          "Korea, Republic",
			LastMatchDate: time.Date(2022, 12, 5, 0, 0, 0, 0, time.UTC),
			MatchesPlayed: 7,
			WindowSize:    5,
			AvgGoals:      1.2,
			WinRate:       0.4,
			AvgGoalDiff:   -0.2,
		},
	}

	out, err := RenderLatestFormCSV(forms)
	if err != nil {
		t.Fatalf("RenderLatestFormCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != strings.Join(LatestFormColumns, ",") {
		t.Errorf("Unexpected header %q", lines[0])
	}
	want := `"Korea, Republic",2022-12-05,7,5,1.200000,0.400000,0.000000,-0.200000`
	if lines[1] != want {
		t.Errorf("Row = %q, want %q", lines[1], want)
	}
}

// Package pipeline runs the reshape and feature stages end to end: file
// handoff between stages, optional persistence, reports, metrics and publishing.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"team-form-lab/internal/features"
	"team-form-lab/internal/observability"
	"team-form-lab/internal/publish"
	"team-form-lab/internal/reporting"
	"team-form-lab/internal/reshape"
	"team-form-lab/internal/storage"
	"team-form-lab/internal/storage/memory"
	"team-form-lab/internal/tableio"
)

// Stage names used in logs and metrics.
const (
	StageReshape  = "reshape"
	StageFeatures = "features"
	StageReport   = "report"
)

// TeamMatchSink is a named store that receives the long table.
type TeamMatchSink struct {
	Name  string
	Store storage.TeamMatchStore
}

// FeatureSink is a named store that receives the feature table.
type FeatureSink struct {
	Name  string
	Store storage.FeatureStore
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	InputPath      string // raw results CSV
	ProcessedPath  string // long table CSV, written by reshape, read by features
	FeaturesPath   string // feature CSV
	SummaryPath    string // optional markdown run summary
	LatestFormPath string // optional per-team current form CSV

	Cutoff time.Time // zero means reshape.DefaultCutoff
	Window int       // zero means features.DefaultWindow

	TeamMatchSinks []TeamMatchSink
	FeatureSinks   []FeatureSink
	Publisher      publish.Publisher      // optional
	Metrics        *observability.Metrics // optional

	Logger  *log.Logger
	Verbose bool
	Clock   func() time.Time // report timestamp; default time.Now().UTC()
}

// Result describes what a run produced.
type Result struct {
	Reshape              *reshape.Stats // nil when reshape did not run
	TeamMatchRows        int
	TeamMatchRowsDropped int // incomplete rows skipped while reading the long table
	FeatureRows          int
	DataVersions         []reporting.DataVersionRow
	Report               *reporting.Report // nil unless Run wrote reports

	written []string // output paths, in write order
}

// Runner executes pipeline stages.
type Runner struct {
	opts   RunnerOptions
	logger *log.Logger
	clock  func() time.Time

	// Every run keeps an in-memory copy of both tables for reporting.
	teamMatches *memory.TeamMatchStore
	features    *memory.FeatureStore
}

// NewRunner creates a new pipeline runner.
func NewRunner(opts RunnerOptions) *Runner {
	if opts.Cutoff.IsZero() {
		opts.Cutoff = reshape.DefaultCutoff
	}
	if opts.Window == 0 {
		opts.Window = features.DefaultWindow
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	clock := opts.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}

	return &Runner{
		opts:        opts,
		logger:      logger,
		clock:       clock,
		teamMatches: memory.NewTeamMatchStore(),
		features:    memory.NewFeatureStore(),
	}
}

// RunReshape reads the raw results and writes the long table.
func (r *Runner) RunReshape(ctx context.Context) (*Result, error) {
	res := &Result{}
	err := r.stage(StageReshape, func() error { return r.reshape(ctx, res) })
	return res, err
}

// RunFeatures reads the long table and writes the feature table.
func (r *Runner) RunFeatures(ctx context.Context) (*Result, error) {
	res := &Result{}
	err := r.stage(StageFeatures, func() error { return r.buildFeatures(ctx, res) })
	return res, err
}

// Run executes reshape then features, handing off through ProcessedPath, then
// writes reports and publishes every written file.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	res := &Result{}
	steps := []struct {
		name string
		fn   func() error
	}{
		{StageReshape, func() error { return r.reshape(ctx, res) }},
		{StageFeatures, func() error { return r.buildFeatures(ctx, res) }},
		{StageReport, func() error { return r.writeReports(ctx, res) }},
	}
	for _, s := range steps {
		if err := r.stage(s.name, s.fn); err != nil {
			return res, err
		}
	}

	if r.opts.Publisher != nil {
		if err := r.publishAll(ctx, res); err != nil {
			return res, err
		}
	}

	r.opts.Metrics.MarkSuccess(r.clock())
	r.logger.Printf("Pipeline complete: %d team rows, %d feature rows", res.TeamMatchRows, res.FeatureRows)
	return res, nil
}

func (r *Runner) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.opts.Metrics.RecordStage(name, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (r *Runner) reshape(ctx context.Context, res *Result) error {
	f, err := openInput(r.opts.InputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	raw, err := tableio.ReadRawMatches(f)
	if err != nil {
		return err
	}

	matches, stats := reshape.Reshape(raw, reshape.Options{Cutoff: r.opts.Cutoff})
	res.Reshape = &stats

	m := r.opts.Metrics
	m.RecordRead(tableio.TableRaw, stats.RowsRead)
	m.RecordDropped("before_cutoff", stats.DroppedBeforeCutoff)
	m.RecordDropped("missing_required", stats.DroppedMissingRequired)
	m.RecordDropped("missing_neutral", stats.DroppedMissingNeutral)

	r.logger.Printf("Reshaped %d fixtures into %d team rows (dropped: %d before cutoff, %d missing fields, %d missing neutral)",
		stats.RowsRead, stats.RowsEmitted, stats.DroppedBeforeCutoff, stats.DroppedMissingRequired, stats.DroppedMissingNeutral)

	var buf bytes.Buffer
	if err := tableio.WriteTeamMatches(&buf, matches); err != nil {
		return err
	}
	if err := r.writeOutput(r.opts.ProcessedPath, tableio.TableTeamMatches, len(matches), buf.Bytes(), res); err != nil {
		return err
	}

	for _, sink := range r.opts.TeamMatchSinks {
		if err := r.persist(sink.Name, func() error { return sink.Store.ReplaceAll(ctx, matches) }); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) buildFeatures(ctx context.Context, res *Result) error {
	if r.opts.Window < 1 {
		return fmt.Errorf("window must be >= 1, got %d", r.opts.Window)
	}

	f, err := openInput(r.opts.ProcessedPath)
	if err != nil {
		return err
	}
	defer f.Close()

	matches, dropped, err := tableio.ReadTeamMatches(f)
	if err != nil {
		return err
	}
	res.TeamMatchRows = len(matches)
	res.TeamMatchRowsDropped = dropped

	r.opts.Metrics.RecordRead(tableio.TableTeamMatches, len(matches)+dropped)
	r.opts.Metrics.RecordDropped("incomplete_team_match", dropped)
	if dropped > 0 {
		r.logger.Printf("Skipped %d incomplete rows in %s", dropped, r.opts.ProcessedPath)
	}

	rows := features.Build(matches, r.opts.Window)
	res.FeatureRows = len(rows)
	r.logger.Printf("Built features for %d rows (window %d)", len(rows), r.opts.Window)

	var buf bytes.Buffer
	if err := tableio.WriteFeatureRows(&buf, rows); err != nil {
		return err
	}
	if err := r.writeOutput(r.opts.FeaturesPath, tableio.TableFeatures, len(rows), buf.Bytes(), res); err != nil {
		return err
	}

	if err := r.teamMatches.ReplaceAll(ctx, matches); err != nil {
		return fmt.Errorf("keep team matches: %w", err)
	}
	if err := r.features.ReplaceAll(ctx, rows); err != nil {
		return fmt.Errorf("keep feature rows: %w", err)
	}

	for _, sink := range r.opts.FeatureSinks {
		if err := r.persist(sink.Name, func() error { return sink.Store.ReplaceAll(ctx, rows) }); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) writeReports(ctx context.Context, res *Result) error {
	if r.opts.SummaryPath == "" && r.opts.LatestFormPath == "" {
		return nil
	}

	if r.opts.LatestFormPath != "" {
		matches, err := r.teamMatches.GetAll(ctx)
		if err != nil {
			return err
		}
		forms := features.CurrentForm(matches, r.opts.Window)
		out, err := reporting.RenderLatestFormCSV(forms)
		if err != nil {
			return fmt.Errorf("render latest form: %w", err)
		}
		if err := r.writeOutput(r.opts.LatestFormPath, "latest_form", len(forms), []byte(out), res); err != nil {
			return err
		}
	}

	if r.opts.SummaryPath != "" {
		report, err := reporting.NewGenerator(r.teamMatches, r.features).
			WithClock(r.clock).
			Generate(ctx, reporting.RunInfo{
				Cutoff:       r.opts.Cutoff,
				Window:       r.opts.Window,
				Reshape:      res.Reshape,
				DataVersions: append([]reporting.DataVersionRow(nil), res.DataVersions...),
			})
		if err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
		res.Report = report

		for _, e := range report.DataQuality.IntegrityErrors {
			r.logger.Printf("WARN: %s", e)
		}

		if err := r.writeOutput(r.opts.SummaryPath, "summary", 1, []byte(reporting.RenderMarkdown(report)), res); err != nil {
			return err
		}
	}
	return nil
}

// writeOutput writes data atomically to path and records its version.
func (r *Runner) writeOutput(path, table string, rows int, data []byte, res *Result) error {
	if err := writeFileAtomic(path, data); err != nil {
		return err
	}

	version := DataVersion(data)
	res.DataVersions = append(res.DataVersions, reporting.DataVersionRow{Name: filepath.Base(path), SHA256: version})
	res.written = append(res.written, path)
	r.opts.Metrics.RecordWritten(table, rows)

	if r.opts.Verbose {
		r.logger.Printf("Wrote %s (%d rows, sha256 %s)", path, rows, version[:12])
	}
	return nil
}

func (r *Runner) persist(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.opts.Metrics.RecordStoreWrite(name, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("persist to %s: %w", name, err)
	}
	if r.opts.Verbose {
		r.logger.Printf("Persisted to %s in %s", name, time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func (r *Runner) publishAll(ctx context.Context, res *Result) error {
	for _, path := range res.written {
		data, err := readOutput(path)
		if err != nil {
			return err
		}
		if err := r.opts.Publisher.Publish(ctx, filepath.Base(path), data); err != nil {
			return fmt.Errorf("publish %s: %w", filepath.Base(path), err)
		}
		r.opts.Metrics.RecordPublished()
		if r.opts.Verbose {
			r.logger.Printf("Published %s", filepath.Base(path))
		}
	}
	return nil
}

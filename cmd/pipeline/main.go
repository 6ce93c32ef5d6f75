// Package main runs the full pipeline: reshape → features → reports, with
// optional database sinks, S3 publishing and a metrics textfile.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"team-form-lab/internal/config"
	"team-form-lab/internal/observability"
	"team-form-lab/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	input := flag.String("input", "", "Raw results CSV")
	processed := flag.String("processed", "", "Long-format team match CSV")
	featuresOut := flag.String("features", "", "Feature CSV")
	summary := flag.String("summary", "", "Markdown run summary (empty to skip)")
	latestForm := flag.String("latest-form", "", "Per-team current form CSV (empty to skip)")
	cutoff := flag.String("cutoff", "", "Earliest match date kept (YYYY-MM-DD)")
	window := flag.Int("window", 0, "Trailing window size")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for the long table")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for the feature table")
	sqlitePath := flag.String("sqlite", "", "SQLite file for the feature table")
	metricsFile := flag.String("metrics-file", "", "Write Prometheus metrics to this textfile")
	s3Bucket := flag.String("s3-bucket", "", "Publish written files to this S3 bucket")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logger := log.New(os.Stdout, "[pipeline] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags given on the command line win over the file and the environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = *input
		case "processed":
			cfg.ProcessedPath = *processed
		case "features":
			cfg.FeaturesPath = *featuresOut
		case "summary":
			cfg.SummaryPath = *summary
		case "latest-form":
			cfg.LatestFormPath = *latestForm
		case "cutoff":
			cfg.CutoffDate = *cutoff
		case "window":
			cfg.Window = *window
		case "postgres-dsn":
			cfg.PostgresDSN = *postgresDSN
		case "clickhouse-dsn":
			cfg.ClickhouseDSN = *clickhouseDSN
		case "sqlite":
			cfg.SQLitePath = *sqlitePath
		case "metrics-file":
			cfg.MetricsFile = *metricsFile
		case "s3-bucket":
			cfg.S3.Bucket = *s3Bucket
		case "verbose":
			cfg.Verbose = *verbose
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	cutoffDate, _ := cfg.Cutoff()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling pipeline...", sig)
		cancel()
	}()

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(observability.DefaultNamespace, reg)

	s, err := openSinks(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening sinks: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	runner := pipeline.NewRunner(pipeline.RunnerOptions{
		InputPath:      cfg.InputPath,
		ProcessedPath:  cfg.ProcessedPath,
		FeaturesPath:   cfg.FeaturesPath,
		SummaryPath:    cfg.SummaryPath,
		LatestFormPath: cfg.LatestFormPath,
		Cutoff:         cutoffDate,
		Window:         cfg.Window,
		TeamMatchSinks: s.teamMatchSinks,
		FeatureSinks:   s.featureSinks,
		Publisher:      s.publisher,
		Metrics:        metrics,
		Logger:         logger,
		Verbose:        cfg.Verbose,
	})

	res, runErr := runner.Run(ctx)

	if cfg.MetricsFile != "" {
		if err := observability.WriteTextfile(cfg.MetricsFile, reg); err != nil {
			logger.Printf("WARN: %v", err)
		}
	}

	if runErr != nil {
		s.Close()
		fmt.Fprintf(os.Stderr, "Pipeline error: %v\n", runErr)
		os.Exit(1)
	}

	fmt.Println("Pipeline completed successfully:")
	for _, v := range res.DataVersions {
		fmt.Printf("  - %s  sha256:%s\n", v.Name, v.SHA256)
	}
}

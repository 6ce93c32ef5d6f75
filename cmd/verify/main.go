// Package main recomputes form features from the long team table and checks
// them against a stored feature table. Exits 1 on any divergence.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"team-form-lab/internal/config"
	"team-form-lab/internal/storage"
	chstore "team-form-lab/internal/storage/clickhouse"
	"team-form-lab/internal/storage/memory"
	pgstore "team-form-lab/internal/storage/postgres"
	sqlitestore "team-form-lab/internal/storage/sqlite"
	"team-form-lab/internal/tableio"
	"team-form-lab/internal/verification"
)

func main() {
	processed := flag.String("processed", config.DefaultProcessedPath, "Long-format team match CSV")
	featuresPath := flag.String("features", config.DefaultFeaturesPath, "Feature CSV to check")
	window := flag.Int("window", config.DefaultWindow, "Trailing window size the features were built with")
	team := flag.String("team", "", "Check a single team")
	postgresDSN := flag.String("postgres-dsn", "", "Read team matches from PostgreSQL instead of -processed")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "Read features from ClickHouse instead of -features")
	sqlitePath := flag.String("sqlite", "", "Read features from SQLite instead of -features")
	outputJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	logger := log.New(os.Stderr, "[verify] ", log.LstdFlags)

	if *window < 1 {
		logger.Fatalf("-window must be >= 1, got %d", *window)
	}
	if *clickhouseDSN != "" && *sqlitePath != "" {
		logger.Fatal("-clickhouse-dsn and -sqlite are mutually exclusive")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	teamMatches, closeTM, err := openTeamMatches(ctx, *postgresDSN, *processed)
	if err != nil {
		logger.Fatalf("load team matches: %v", err)
	}
	defer closeTM()

	featureStore, closeFS, err := openFeatures(ctx, *clickhouseDSN, *sqlitePath, *featuresPath)
	if err != nil {
		logger.Fatalf("load features: %v", err)
	}
	defer closeFS()

	verifier := verification.NewStoreVerifier(teamMatches, featureStore, *window)

	var report *verification.Report
	if *team != "" {
		report, err = verifier.VerifyTeam(ctx, *team)
	} else {
		report, err = verifier.VerifyAll(ctx)
	}
	if err != nil {
		logger.Fatalf("verify: %v", err)
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			logger.Fatalf("encode report: %v", err)
		}
	} else {
		printReport(report)
	}

	if !report.OK() {
		closeFS()
		closeTM()
		os.Exit(1)
	}
}

// openTeamMatches returns the long table from PostgreSQL when dsn is set,
// otherwise from the CSV at path.
func openTeamMatches(ctx context.Context, dsn, path string) (storage.TeamMatchStore, func(), error) {
	if dsn != "" {
		pool, err := pgstore.NewPool(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewTeamMatchStore(pool), pool.Close, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	rows, dropped, err := tableio.ReadTeamMatches(f)
	if err != nil {
		return nil, nil, err
	}
	if dropped > 0 {
		fmt.Fprintf(os.Stderr, "WARN: skipped %d incomplete rows in %s\n", dropped, path)
	}

	store := memory.NewTeamMatchStore()
	if err := store.ReplaceAll(ctx, rows); err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}

// openFeatures returns the feature table from ClickHouse or SQLite when
// configured, otherwise from the CSV at path.
func openFeatures(ctx context.Context, chDSN, sqlitePath, path string) (storage.FeatureStore, func(), error) {
	switch {
	case chDSN != "":
		conn, err := chstore.NewConn(ctx, chDSN)
		if err != nil {
			return nil, nil, err
		}
		return chstore.NewFeatureStore(conn), func() { conn.Close() }, nil
	case sqlitePath != "":
		db, err := sqlitestore.Open(ctx, sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlitestore.NewFeatureStore(db), func() { db.Close() }, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	rows, dropped, err := tableio.ReadFeatureRows(f)
	if err != nil {
		return nil, nil, err
	}
	if dropped > 0 {
		fmt.Fprintf(os.Stderr, "WARN: skipped %d unreadable rows in %s\n", dropped, path)
	}

	store := memory.NewFeatureStore()
	if err := store.ReplaceAll(ctx, rows); err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}

func printReport(r *verification.Report) {
	fmt.Printf("Expected rows: %d\n", r.ExpectedRows)
	fmt.Printf("Stored rows:   %d\n", r.StoredRows)
	fmt.Printf("Matched rows:  %d\n", r.MatchedRows)

	if len(r.DivergentRows) > 0 {
		fmt.Printf("\nDivergent rows: %d\n", len(r.DivergentRows))
		for _, row := range r.DivergentRows {
			fmt.Printf("  %s %s (%s)\n", row.Date.Format(time.DateOnly), row.Key.Team, row.Key.MatchID)
			for _, d := range row.Divergences {
				fmt.Printf("    %s: expected %v, got %v\n", d.Field, d.Expected, d.Actual)
			}
		}
	}
	if len(r.MissingRows) > 0 {
		fmt.Printf("\nMissing rows: %d\n", len(r.MissingRows))
		for _, k := range r.MissingRows {
			fmt.Printf("  %s (%s)\n", k.Team, k.MatchID)
		}
	}
	if len(r.ExtraRows) > 0 {
		fmt.Printf("\nExtra rows: %d\n", len(r.ExtraRows))
		for _, k := range r.ExtraRows {
			fmt.Printf("  %s (%s)\n", k.Team, k.MatchID)
		}
	}
	if r.OrderMismatch {
		fmt.Println("\nRows are stored in a different order than recomputed")
	}

	if r.OK() {
		fmt.Println("\nOK: stored features match the recomputation")
	} else {
		fmt.Println("\nFAIL: stored features diverge from the recomputation")
	}
}

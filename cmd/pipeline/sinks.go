package main

import (
	"context"
	"fmt"
	"log"

	"team-form-lab/internal/config"
	"team-form-lab/internal/pipeline"
	"team-form-lab/internal/publish"
	chstore "team-form-lab/internal/storage/clickhouse"
	"team-form-lab/internal/storage/migrations"
	pgstore "team-form-lab/internal/storage/postgres"
	sqlitestore "team-form-lab/internal/storage/sqlite"
)

// sinks holds the optional stores and publisher a run writes to.
type sinks struct {
	teamMatchSinks []pipeline.TeamMatchSink
	featureSinks   []pipeline.FeatureSink
	publisher      publish.Publisher

	closers []func()
}

// openSinks connects every configured sink and applies migrations.
// On error, sinks opened so far are closed.
func openSinks(ctx context.Context, cfg config.Config, logger *log.Logger) (_ *sinks, err error) {
	s := &sinks{}
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		s.teamMatchSinks = append(s.teamMatchSinks, pipeline.TeamMatchSink{
			Name:  "postgres",
			Store: pgstore.NewTeamMatchStore(pool),
		})
		logger.Println("Team matches -> PostgreSQL")
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return nil, fmt.Errorf("clickhouse: %w", err)
		}
		s.closers = append(s.closers, func() { conn.Close() })
		s.featureSinks = append(s.featureSinks, pipeline.FeatureSink{
			Name:  "clickhouse",
			Store: chstore.NewFeatureStore(conn),
		})
		logger.Println("Features -> ClickHouse")
	}

	if cfg.SQLitePath != "" {
		db, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		s.closers = append(s.closers, func() { db.Close() })
		s.featureSinks = append(s.featureSinks, pipeline.FeatureSink{
			Name:  "sqlite",
			Store: sqlitestore.NewFeatureStore(db),
		})
		logger.Printf("Features -> SQLite (%s)", cfg.SQLitePath)
	}

	if cfg.S3.Bucket != "" {
		pub, err := publish.NewS3Publisher(ctx, publish.S3Config{
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
		s.publisher = pub
		logger.Printf("Publishing -> s3://%s/%s", cfg.S3.Bucket, cfg.S3.Prefix)
	}

	return s, nil
}

// Close releases every opened connection, newest first. Safe to call twice.
func (s *sinks) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

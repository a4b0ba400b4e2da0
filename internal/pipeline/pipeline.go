//-------------------------------------------------------------------------
//
// Retail ETL
//
// Copyright (c) 2025 - 2026, Ecomlab
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pipeline runs the batch ETL end to end: extract, clean,
// normalize, load, validate. One call, one run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecomlab/retail-etl/internal/clean"
	"github.com/ecomlab/retail-etl/internal/db"
	"github.com/ecomlab/retail-etl/internal/extract"
	"github.com/ecomlab/retail-etl/internal/load"
	"github.com/ecomlab/retail-etl/internal/logging"
	"github.com/ecomlab/retail-etl/internal/normalize"
)

// Config holds everything one run needs.
type Config struct {
	// Input is the path of the raw extract.
	Input string

	// Bounds are the cleaning-stage outlier limits.
	Bounds clean.Bounds

	// Chunks are the batch-load chunk sizes.
	Chunks load.ChunkSizes

	// Truncate clears the target tables before loading.
	Truncate bool
}

// Summary describes a completed run.
type Summary struct {
	RunID      uuid.UUID
	Input      string
	Extracted  int
	CleanStats clean.Stats
	Loaded     load.Result
	Warnings   []string
	Duration   time.Duration
}

// Run executes the pipeline once. Per-record problems are counted and
// dropped; extract and load failures abort the run; post-load validation
// mismatches surface as warnings on the summary.
func Run(ctx context.Context, pool *pgxpool.Pool, cfg Config) (*Summary, error) {
	started := time.Now()
	runID := uuid.New()

	logging.Info().
		Str("run_id", runID.String()).
		Str("input", cfg.Input).
		Msg("Starting pipeline run")

	raws, err := extract.ReadFile(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	logging.Info().Int("rows", len(raws)).Msg("Extract read")

	records, stats := clean.Clean(raws, cfg.Bounds)
	logging.Info().
		Int("kept", stats.Kept).
		Int("missing_fields", stats.MissingFields).
		Int("bad_types", stats.BadTypes).
		Int("business_rules", stats.BusinessRules).
		Int("outlier_bounds", stats.OutlierBounds).
		Msg("Cleaning complete")

	dataset := normalize.Decompose(records)
	logging.Info().
		Int("customers", len(dataset.Customers)).
		Int("products", len(dataset.Products)).
		Int("orders", len(dataset.Orders)).
		Int("order_lines", len(dataset.OrderLines)).
		Msg("Normalization complete")

	if cfg.Truncate {
		if err := load.Truncate(ctx, pool); err != nil {
			return nil, fmt.Errorf("truncate: %w", err)
		}
		logging.Info().Msg("Target tables truncated")
	}

	loader := load.NewLoader(pool, cfg.Chunks)
	result, err := loader.Load(ctx, dataset)
	if err != nil {
		// Partial loads are possible; surface what made it in.
		logging.Error().
			Int64("customers", result.Customers).
			Int64("products", result.Products).
			Int64("orders", result.Orders).
			Int64("order_lines", result.OrderLines).
			Msg("Load aborted with partial data in place")
		return nil, fmt.Errorf("load: %w", err)
	}

	warnings, err := load.Validate(ctx, pool, load.ExpectedFrom(dataset))
	if err != nil {
		// A check that cannot run is itself reported, not fatal.
		warnings = append(warnings,
			fmt.Sprintf("validation incomplete: %v", err))
	}
	for _, w := range warnings {
		logging.Warn().Str("check", w).Msg("Post-load validation mismatch")
	}

	summary := &Summary{
		RunID:      runID,
		Input:      cfg.Input,
		Extracted:  len(raws),
		CleanStats: stats,
		Loaded:     result,
		Warnings:   warnings,
		Duration:   time.Since(started),
	}

	if err := db.SaveRun(ctx, pool, db.RunRecord{
		RunID:            runID,
		SourceFile:       cfg.Input,
		StartedAt:        started.UTC(),
		FinishedAt:       time.Now().UTC(),
		RowsExtracted:    int64(len(raws)),
		RowsDropped:      int64(stats.Dropped()),
		CustomersLoaded:  result.Customers,
		ProductsLoaded:   result.Products,
		OrdersLoaded:     result.Orders,
		OrderLinesLoaded: result.OrderLines,
		Warnings:         len(warnings),
	}); err != nil {
		logging.Warn().Err(err).Msg("Could not record run metadata")
	}

	logging.Info().
		Str("run_id", runID.String()).
		Dur("duration", summary.Duration).
		Int("warnings", len(warnings)).
		Msg("Pipeline run complete")

	return summary, nil
}

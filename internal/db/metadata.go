//-------------------------------------------------------------------------
//
// Retail ETL
//
// Copyright (c) 2025 - 2026, Ecomlab
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecomlab/retail-etl/internal/logging"
)

const runsTable = "etl_runs"

// createRunsTableSQL creates the run bookkeeping table if it doesn't exist.
const createRunsTableSQL = `
CREATE TABLE IF NOT EXISTS etl_runs (
    run_id             UUID PRIMARY KEY,
    source_file        TEXT NOT NULL,
    started_at         TIMESTAMPTZ NOT NULL,
    finished_at        TIMESTAMPTZ NOT NULL,
    rows_extracted     BIGINT NOT NULL,
    rows_dropped       BIGINT NOT NULL,
    customers_loaded   BIGINT NOT NULL,
    products_loaded    BIGINT NOT NULL,
    orders_loaded      BIGINT NOT NULL,
    order_lines_loaded BIGINT NOT NULL,
    warnings           INTEGER NOT NULL
)`

// RunRecord is the bookkeeping row written after each pipeline run.
type RunRecord struct {
	RunID            uuid.UUID
	SourceFile       string
	StartedAt        time.Time
	FinishedAt       time.Time
	RowsExtracted    int64
	RowsDropped      int64
	CustomersLoaded  int64
	ProductsLoaded   int64
	OrdersLoaded     int64
	OrderLinesLoaded int64
	Warnings         int
}

// SaveRun records a completed pipeline run.
func SaveRun(ctx context.Context, pool *pgxpool.Pool, run RunRecord) error {
	if _, err := pool.Exec(ctx, createRunsTableSQL); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	_, err := pool.Exec(ctx, `
        INSERT INTO etl_runs (
            run_id, source_file, started_at, finished_at,
            rows_extracted, rows_dropped,
            customers_loaded, products_loaded, orders_loaded, order_lines_loaded,
            warnings
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `,
		run.RunID, run.SourceFile, run.StartedAt, run.FinishedAt,
		run.RowsExtracted, run.RowsDropped,
		run.CustomersLoaded, run.ProductsLoaded, run.OrdersLoaded, run.OrderLinesLoaded,
		run.Warnings)
	if err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}

	logging.Debug().
		Str("run_id", run.RunID.String()).
		Str("source_file", run.SourceFile).
		Msg("Saved run record")

	return nil
}

// LastRun returns the most recently finished run, if any.
func LastRun(ctx context.Context, pool *pgxpool.Pool) (*RunRecord, error) {
	var run RunRecord
	err := pool.QueryRow(ctx, `
        SELECT run_id, source_file, started_at, finished_at,
               rows_extracted, rows_dropped,
               customers_loaded, products_loaded, orders_loaded, order_lines_loaded,
               warnings
        FROM etl_runs
        ORDER BY finished_at DESC
        LIMIT 1
    `).Scan(
		&run.RunID, &run.SourceFile, &run.StartedAt, &run.FinishedAt,
		&run.RowsExtracted, &run.RowsDropped,
		&run.CustomersLoaded, &run.ProductsLoaded, &run.OrdersLoaded, &run.OrderLinesLoaded,
		&run.Warnings)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// DropRuns drops the run bookkeeping table.
func DropRuns(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", runsTable))
	return err
}

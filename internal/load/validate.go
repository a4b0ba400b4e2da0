//-------------------------------------------------------------------------
//
// Retail ETL
//
// Copyright (c) 2025 - 2026, Ecomlab
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package load

import (
	"context"
	"fmt"
	"math"

	"github.com/ecomlab/retail-etl/internal/model"
)

// revenueTolerance absorbs NUMERIC-to-float64 conversion noise when
// comparing revenue totals.
const revenueTolerance = 0.01

// Expected holds the pre-load counts and revenue total recomputed from
// the in-memory dataset, independent of the loader's own bookkeeping.
type Expected struct {
	Customers  int64
	Products   int64
	Orders     int64
	OrderLines int64
	Revenue    float64
}

// ExpectedFrom derives the expected post-load state from a dataset.
func ExpectedFrom(ds model.Dataset) Expected {
	exp := Expected{
		Customers:  int64(len(ds.Customers)),
		Products:   int64(len(ds.Products)),
		Orders:     int64(len(ds.Orders)),
		OrderLines: int64(len(ds.OrderLines)),
	}
	for _, ol := range ds.OrderLines {
		exp.Revenue += ol.Revenue
	}
	exp.Revenue = model.Round2(exp.Revenue)
	return exp
}

// Validate compares persisted state against exp: row counts per table,
// total revenue over persisted order lines, and zero-orphan checks.
// Mismatches come back as warnings, not errors; an error means a check
// could not be executed at all.
func Validate(ctx context.Context, db DB, exp Expected) ([]string, error) {
	var warnings []string

	counts := []struct {
		table    string
		expected int64
	}{
		{"customers", exp.Customers},
		{"products", exp.Products},
		{"orders", exp.Orders},
		{"order_lines", exp.OrderLines},
	}
	for _, c := range counts {
		var observed int64
		err := db.QueryRow(ctx,
			fmt.Sprintf("SELECT COUNT(*) FROM %s", c.table)).Scan(&observed)
		if err != nil {
			return warnings, fmt.Errorf("count %s: %w", c.table, err)
		}
		if observed != c.expected {
			warnings = append(warnings, fmt.Sprintf(
				"%s row count mismatch: expected %d, observed %d (delta %+d)",
				c.table, c.expected, observed, observed-c.expected))
		}
	}

	var observedRevenue float64
	err := db.QueryRow(ctx,
		"SELECT COALESCE(SUM(revenue), 0)::FLOAT8 FROM order_lines").
		Scan(&observedRevenue)
	if err != nil {
		return warnings, fmt.Errorf("sum revenue: %w", err)
	}
	if math.Abs(observedRevenue-exp.Revenue) > revenueTolerance {
		warnings = append(warnings, fmt.Sprintf(
			"revenue mismatch: expected %.2f, observed %.2f (delta %+.2f)",
			exp.Revenue, observedRevenue, observedRevenue-exp.Revenue))
	}

	orphans := []struct {
		name string
		sql  string
	}{
		{"order lines without order", `
            SELECT COUNT(*) FROM order_lines ol
            LEFT JOIN orders o ON o.invoice_no = ol.invoice_no
            WHERE o.invoice_no IS NULL`},
		{"order lines without product", `
            SELECT COUNT(*) FROM order_lines ol
            LEFT JOIN products p ON p.stock_code = ol.stock_code
            WHERE p.stock_code IS NULL`},
		{"orders without customer", `
            SELECT COUNT(*) FROM orders o
            LEFT JOIN customers c ON c.customer_id = o.customer_id
            WHERE c.customer_id IS NULL`},
	}
	for _, o := range orphans {
		var count int64
		if err := db.QueryRow(ctx, o.sql).Scan(&count); err != nil {
			return warnings, fmt.Errorf("orphan check %q: %w", o.name, err)
		}
		if count > 0 {
			warnings = append(warnings,
				fmt.Sprintf("%d %s", count, o.name))
		}
	}

	return warnings, nil
}

//-------------------------------------------------------------------------
//
// Retail ETL
//
// Copyright (c) 2025 - 2026, Ecomlab
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package load persists the normalized entity sets to PostgreSQL and
// verifies the result. Tables are written in dependency order so that
// foreign keys resolve: customers and products before orders, orders
// before order lines.
package load

import (
	"context"
	"fmt"
)

// Schema SQL for the four-table relational target.
const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS customers (
    customer_id BIGINT PRIMARY KEY,
    country     VARCHAR(60) NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
    stock_code  VARCHAR(20) PRIMARY KEY,
    description VARCHAR(200) NOT NULL,
    unit_price  NUMERIC(10,2) NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    invoice_no   VARCHAR(20) PRIMARY KEY,
    invoice_date TIMESTAMP NOT NULL,
    customer_id  BIGINT NOT NULL REFERENCES customers(customer_id)
);

CREATE TABLE IF NOT EXISTS order_lines (
    line_id    BIGSERIAL PRIMARY KEY,
    invoice_no VARCHAR(20) NOT NULL REFERENCES orders(invoice_no),
    stock_code VARCHAR(20) NOT NULL REFERENCES products(stock_code),
    quantity   INTEGER NOT NULL,
    unit_price NUMERIC(10,2) NOT NULL,
    revenue    NUMERIC(12,2) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders (customer_id);
CREATE INDEX IF NOT EXISTS idx_order_lines_invoice ON order_lines (invoice_no);
CREATE INDEX IF NOT EXISTS idx_order_lines_stock ON order_lines (stock_code);
`

const dropSchemaSQL = `
DROP VIEW IF EXISTS customer_summary;
DROP TABLE IF EXISTS order_lines;
DROP TABLE IF EXISTS orders;
DROP TABLE IF EXISTS products;
DROP TABLE IF EXISTS customers;
`

// customer_summary is the derived reporting view consumed by dashboards.
// Segment thresholds are rendered into the DDL from configuration.
const createSummaryViewSQL = `
CREATE OR REPLACE VIEW customer_summary AS
SELECT
    c.customer_id,
    c.country,
    COUNT(DISTINCT o.invoice_no)                             AS total_orders,
    COALESCE(SUM(ol.revenue), 0)                             AS total_revenue,
    ROUND(COALESCE(SUM(ol.revenue), 0)
        / GREATEST(COUNT(DISTINCT o.invoice_no), 1), 2)      AS avg_order_value,
    MIN(o.invoice_date)                                      AS first_order,
    MAX(o.invoice_date)                                      AS last_order,
    DATE_PART('day', MAX(o.invoice_date) - MIN(o.invoice_date))::INTEGER
                                                             AS lifetime_days,
    COUNT(DISTINCT ol.stock_code)                            AS distinct_products,
    CASE
        WHEN COALESCE(SUM(ol.revenue), 0) >= %.2f THEN 'Platinum'
        WHEN COALESCE(SUM(ol.revenue), 0) >= %.2f THEN 'Gold'
        WHEN COALESCE(SUM(ol.revenue), 0) >= %.2f THEN 'Silver'
        ELSE 'Bronze'
    END                                                      AS segment
FROM customers c
JOIN orders o       ON o.customer_id = c.customer_id
JOIN order_lines ol ON ol.invoice_no = o.invoice_no
GROUP BY c.customer_id, c.country
`

// SegmentThresholds are the cumulative-revenue cutoffs for the value
// segment labels in the summary view.
type SegmentThresholds struct {
	Platinum float64
	Gold     float64
	Silver   float64
}

// DefaultSegmentThresholds returns the standard segment cutoffs.
func DefaultSegmentThresholds() SegmentThresholds {
	return SegmentThresholds{Platinum: 5000, Gold: 1000, Silver: 500}
}

// CreateSchema creates the target tables and the summary view.
func CreateSchema(ctx context.Context, db DB, t SegmentThresholds) error {
	if _, err := db.Exec(ctx, createSchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	viewSQL := fmt.Sprintf(createSummaryViewSQL, t.Platinum, t.Gold, t.Silver)
	if _, err := db.Exec(ctx, viewSQL); err != nil {
		return fmt.Errorf("failed to create summary view: %w", err)
	}
	return nil
}

// DropSchema drops the target tables and the summary view.
func DropSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, dropSchemaSQL); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return nil
}

// Truncate clears all four target tables so a rerun does not duplicate a
// prior load. Surrogate line ids restart from 1.
func Truncate(ctx context.Context, db DB) error {
	_, err := db.Exec(ctx,
		"TRUNCATE order_lines, orders, products, customers RESTART IDENTITY")
	if err != nil {
		return fmt.Errorf("failed to truncate target tables: %w", err)
	}
	return nil
}

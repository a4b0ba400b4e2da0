//-------------------------------------------------------------------------
//
// Retail ETL
//
// Copyright (c) 2025 - 2026, Ecomlab
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package report runs the derived reporting queries against the loaded
// schema. Every aggregate is a single grouped query; nothing loops over
// distinct values issuing one query each.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ecomlab/retail-etl/internal/load"
)

// CustomerSummary is one row of the customer_summary view.
type CustomerSummary struct {
	CustomerID       int64
	Country          string
	TotalOrders      int64
	TotalRevenue     float64
	AvgOrderValue    float64
	FirstOrder       time.Time
	LastOrder        time.Time
	LifetimeDays     int
	DistinctProducts int64
	Segment          string
}

// CountryShare is one country's slice of the customer base.
type CountryShare struct {
	Country   string
	Customers int64
	Share     float64
}

// CustomerSummaries reads the summary view, highest-revenue customers
// first.
func CustomerSummaries(ctx context.Context, db load.DB) ([]CustomerSummary, error) {
	rows, err := db.Query(ctx, `
        SELECT customer_id, country, total_orders,
               total_revenue::FLOAT8, avg_order_value::FLOAT8,
               first_order, last_order, lifetime_days, distinct_products,
               segment
        FROM customer_summary
        ORDER BY total_revenue DESC, customer_id
    `)
	if err != nil {
		return nil, fmt.Errorf("query customer summary: %w", err)
	}
	defer rows.Close()

	var out []CustomerSummary
	for rows.Next() {
		var s CustomerSummary
		if err := rows.Scan(
			&s.CustomerID, &s.Country, &s.TotalOrders,
			&s.TotalRevenue, &s.AvgOrderValue,
			&s.FirstOrder, &s.LastOrder, &s.LifetimeDays, &s.DistinctProducts,
			&s.Segment); err != nil {
			return nil, fmt.Errorf("scan customer summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountryShares returns each country's customer count and percentage
// share of the customer base, in one grouped pass.
func CountryShares(ctx context.Context, db load.DB) ([]CountryShare, error) {
	rows, err := db.Query(ctx, `
        SELECT country,
               COUNT(*) AS customers,
               ROUND(COUNT(*) * 100.0 / SUM(COUNT(*)) OVER (), 2)::FLOAT8 AS share
        FROM customers
        GROUP BY country
        ORDER BY customers DESC, country
    `)
	if err != nil {
		return nil, fmt.Errorf("query country shares: %w", err)
	}
	defer rows.Close()

	var out []CountryShare
	for rows.Next() {
		var c CountryShare
		if err := rows.Scan(&c.Country, &c.Customers, &c.Share); err != nil {
			return nil, fmt.Errorf("scan country share: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SegmentCounts tallies customers per value segment from summary rows.
func SegmentCounts(summaries []CustomerSummary) map[string]int {
	counts := make(map[string]int)
	for _, s := range summaries {
		counts[s.Segment]++
	}
	return counts
}

// summaryHeader is the column order of the exported summary CSV.
var summaryHeader = []string{
	"customer_id", "country", "total_orders", "total_revenue",
	"avg_order_value", "first_order", "last_order", "lifetime_days",
	"distinct_products", "segment",
}

// WriteSummaryCSV exports summary rows as CSV for spreadsheet consumers.
func WriteSummaryCSV(w io.Writer, summaries []CustomerSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range summaries {
		row := []string{
			strconv.FormatInt(s.CustomerID, 10),
			s.Country,
			strconv.FormatInt(s.TotalOrders, 10),
			strconv.FormatFloat(s.TotalRevenue, 'f', 2, 64),
			strconv.FormatFloat(s.AvgOrderValue, 'f', 2, 64),
			s.FirstOrder.Format(time.RFC3339),
			s.LastOrder.Format(time.RFC3339),
			strconv.Itoa(s.LifetimeDays),
			strconv.FormatInt(s.DistinctProducts, 10),
			s.Segment,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"
)

func sampleSummaries() []CustomerSummary {
	first := time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC)
	last := time.Date(2011, 11, 20, 12, 0, 0, 0, time.UTC)
	return []CustomerSummary{
		{
			CustomerID:       17850,
			Country:          "United Kingdom",
			TotalOrders:      42,
			TotalRevenue:     5391.21,
			AvgOrderValue:    128.36,
			FirstOrder:       first,
			LastOrder:        last,
			LifetimeDays:     354,
			DistinctProducts: 61,
			Segment:          "Platinum",
		},
		{
			CustomerID:       12583,
			Country:          "France",
			TotalOrders:      3,
			TotalRevenue:     711.79,
			AvgOrderValue:    237.26,
			FirstOrder:       first,
			LastOrder:        first,
			LifetimeDays:     0,
			DistinctProducts: 12,
			Segment:          "Silver",
		},
	}
}

func TestWriteSummaryCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummaryCSV(&buf, sampleSummaries()); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}

	if rows[0][0] != "customer_id" || rows[0][9] != "segment" {
		t.Errorf("header = %v", rows[0])
	}

	got := rows[1]
	if got[0] != "17850" {
		t.Errorf("customer_id = %q", got[0])
	}
	if got[3] != "5391.21" {
		t.Errorf("total_revenue = %q", got[3])
	}
	if got[5] != "2010-12-01T08:26:00Z" {
		t.Errorf("first_order = %q", got[5])
	}
	if got[9] != "Platinum" {
		t.Errorf("segment = %q", got[9])
	}

	if rows[2][0] != "12583" || rows[2][7] != "0" {
		t.Errorf("second row = %v", rows[2])
	}
}

func TestWriteSummaryCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummaryCSV(&buf, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected header only, got %d rows", len(rows))
	}
}

func TestSegmentCounts(t *testing.T) {
	counts := SegmentCounts(sampleSummaries())
	if counts["Platinum"] != 1 || counts["Silver"] != 1 {
		t.Errorf("counts = %v", counts)
	}
	if counts["Bronze"] != 0 {
		t.Errorf("unexpected bronze count %d", counts["Bronze"])
	}
}

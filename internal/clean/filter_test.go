package clean

import (
	"testing"
	"time"

	"github.com/ecomlab/retail-etl/internal/model"
)

func validRaw() model.RawRecord {
	return model.RawRecord{
		InvoiceNo:   "536365",
		StockCode:   "85123A",
		Description: "WHITE HANGING HEART",
		Quantity:    "6",
		InvoiceDate: "12/1/2010 8:26",
		UnitPrice:   "2.55",
		CustomerID:  "17850",
		Country:     "United Kingdom",
	}
}

func TestCleanSurvivor(t *testing.T) {
	records, stats := Clean([]model.RawRecord{validRaw()}, DefaultBounds())

	if stats.Kept != 1 || stats.Dropped() != 0 {
		t.Fatalf("expected 1 kept, 0 dropped; got stats %+v", stats)
	}

	rec := records[0]
	if rec.InvoiceNo != "536365" {
		t.Errorf("invoice = %q", rec.InvoiceNo)
	}
	if rec.Quantity != 6 || rec.UnitPrice != 2.55 {
		t.Errorf("quantity/price = %d/%v", rec.Quantity, rec.UnitPrice)
	}
	if rec.Revenue != 15.30 {
		t.Errorf("revenue = %v, want 15.30", rec.Revenue)
	}
	if rec.CustomerID != 17850 {
		t.Errorf("customer = %d", rec.CustomerID)
	}
	if rec.Country != "United Kingdom" {
		t.Errorf("country = %q", rec.Country)
	}
	want := time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC)
	if !rec.InvoiceDate.Equal(want) {
		t.Errorf("date = %v, want %v", rec.InvoiceDate, want)
	}
}

func TestCleanDropStages(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.RawRecord)
		check  func(Stats) int
	}{
		{
			name:   "missing invoice",
			mutate: func(r *model.RawRecord) { r.InvoiceNo = "" },
			check:  func(s Stats) int { return s.MissingFields },
		},
		{
			name:   "missing customer",
			mutate: func(r *model.RawRecord) { r.CustomerID = "  " },
			check:  func(s Stats) int { return s.MissingFields },
		},
		{
			name:   "missing country",
			mutate: func(r *model.RawRecord) { r.Country = "" },
			check:  func(s Stats) int { return s.MissingFields },
		},
		{
			name:   "unparseable quantity",
			mutate: func(r *model.RawRecord) { r.Quantity = "six" },
			check:  func(s Stats) int { return s.BadTypes },
		},
		{
			name:   "unparseable price",
			mutate: func(r *model.RawRecord) { r.UnitPrice = "n/a" },
			check:  func(s Stats) int { return s.BadTypes },
		},
		{
			name:   "unparseable date",
			mutate: func(r *model.RawRecord) { r.InvoiceDate = "yesterday" },
			check:  func(s Stats) int { return s.BadTypes },
		},
		{
			name:   "cancellation invoice",
			mutate: func(r *model.RawRecord) { r.InvoiceNo = "C536379" },
			check:  func(s Stats) int { return s.BusinessRules },
		},
		{
			name:   "negative quantity",
			mutate: func(r *model.RawRecord) { r.Quantity = "-3" },
			check:  func(s Stats) int { return s.BusinessRules },
		},
		{
			name:   "zero price",
			mutate: func(r *model.RawRecord) { r.UnitPrice = "0" },
			check:  func(s Stats) int { return s.BusinessRules },
		},
		{
			name:   "non-positive customer id",
			mutate: func(r *model.RawRecord) { r.CustomerID = "0" },
			check:  func(s Stats) int { return s.BusinessRules },
		},
		{
			name:   "outlier quantity",
			mutate: func(r *model.RawRecord) { r.Quantity = "15000" },
			check:  func(s Stats) int { return s.OutlierBounds },
		},
		{
			name:   "outlier price",
			mutate: func(r *model.RawRecord) { r.UnitPrice = "1500" },
			check:  func(s Stats) int { return s.OutlierBounds },
		},
		{
			name: "outlier revenue",
			mutate: func(r *model.RawRecord) {
				r.Quantity = "9000"
				r.UnitPrice = "9.99"
			},
			check: func(s Stats) int { return s.OutlierBounds },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)
			records, stats := Clean([]model.RawRecord{raw}, DefaultBounds())
			if len(records) != 0 {
				t.Fatalf("expected record to be dropped, kept %+v", records[0])
			}
			if got := tt.check(stats); got != 1 {
				t.Errorf("expected stage counter 1, got %d (stats %+v)", got, stats)
			}
			if stats.Dropped() != 1 {
				t.Errorf("expected total dropped 1, got %d", stats.Dropped())
			}
		})
	}
}

func TestCleanStageOrder(t *testing.T) {
	// A record failing multiple stages counts only against the first.
	raw := validRaw()
	raw.InvoiceNo = "C536379" // business rule
	raw.Quantity = "junk"     // but type coercion fails first

	_, stats := Clean([]model.RawRecord{raw}, DefaultBounds())
	if stats.BadTypes != 1 || stats.BusinessRules != 0 {
		t.Errorf("expected bad-type drop only, got %+v", stats)
	}
}

func TestCleanPreservesOrder(t *testing.T) {
	raws := []model.RawRecord{}
	for _, invoice := range []string{"536365", "536366", "C536367", "536368"} {
		raw := validRaw()
		raw.InvoiceNo = invoice
		raws = append(raws, raw)
	}

	records, stats := Clean(raws, DefaultBounds())
	if stats.Kept != 3 {
		t.Fatalf("expected 3 kept, got %d", stats.Kept)
	}
	want := []string{"536365", "536366", "536368"}
	for i, rec := range records {
		if rec.InvoiceNo != want[i] {
			t.Errorf("position %d: got %q, want %q", i, rec.InvoiceNo, want[i])
		}
	}
}

func TestCleanRevenueRounding(t *testing.T) {
	raw := validRaw()
	raw.Quantity = "7"
	raw.UnitPrice = "2.13"

	records, _ := Clean([]model.RawRecord{raw}, DefaultBounds())
	if len(records) != 1 {
		t.Fatal("expected record to survive")
	}
	if records[0].Revenue != 14.91 {
		t.Errorf("revenue = %v, want 14.91", records[0].Revenue)
	}
}

func TestCleanBlankDescriptionKept(t *testing.T) {
	raw := validRaw()
	raw.Description = ""

	records, stats := Clean([]model.RawRecord{raw}, DefaultBounds())
	if stats.Kept != 1 {
		t.Fatalf("blank description must not drop the record, stats %+v", stats)
	}
	if records[0].Description != UnknownProduct {
		t.Errorf("description = %q, want sentinel", records[0].Description)
	}
}

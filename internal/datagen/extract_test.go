package datagen

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/ecomlab/retail-etl/internal/clean"
	"github.com/ecomlab/retail-etl/internal/extract"
)

func TestExtractGeneratorRowCount(t *testing.T) {
	var buf bytes.Buffer
	gen := NewExtractGenerator(42)
	if err := gen.Write(&buf, 500); err != nil {
		t.Fatalf("write: %v", err)
	}

	cr := csv.NewReader(&buf)
	rows, err := cr.ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 501 {
		t.Errorf("expected header + 500 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if len(row) != 8 {
			t.Fatalf("row %d has %d fields", i, len(row))
		}
	}
}

func TestExtractGeneratorDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	if err := NewExtractGenerator(7).Write(&a, 200); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := NewExtractGenerator(7).Write(&b, 200); err != nil {
		t.Fatalf("write b: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("same seed must produce identical output")
	}
}

func TestExtractGeneratorReadable(t *testing.T) {
	var buf bytes.Buffer
	if err := NewExtractGenerator(42).Write(&buf, 300); err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := extract.Read(&buf)
	if err != nil {
		t.Fatalf("generated extract must parse: %v", err)
	}
	if len(records) != 300 {
		t.Fatalf("expected 300 records, got %d", len(records))
	}
}

func TestExtractGeneratorDefectMix(t *testing.T) {
	var buf bytes.Buffer
	if err := NewExtractGenerator(42).Write(&buf, 2000); err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := extract.Read(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	cleaned, stats := clean.Clean(records, clean.DefaultBounds())
	if stats.Kept == 0 {
		t.Fatal("no rows survived cleaning")
	}
	// Most rows are clean; the rest hit every drop stage.
	if stats.Kept < len(records)/2 {
		t.Errorf("only %d of %d rows kept", stats.Kept, len(records))
	}
	if stats.MissingFields == 0 {
		t.Error("expected some missing-field rows")
	}
	if stats.BadTypes == 0 {
		t.Error("expected some unparseable rows")
	}
	if stats.BusinessRules == 0 {
		t.Error("expected some cancellation or non-positive rows")
	}
	if stats.OutlierBounds == 0 {
		t.Error("expected some outlier rows")
	}
	if len(cleaned) != stats.Kept {
		t.Errorf("cleaned length %d != kept %d", len(cleaned), stats.Kept)
	}
}

func TestChoose(t *testing.T) {
	f := NewFakerWithSeed(1)
	items := []string{"a", "b", "c"}
	for i := 0; i < 50; i++ {
		got := Choose(f, items)
		if got != "a" && got != "b" && got != "c" {
			t.Fatalf("chose %q outside the slice", got)
		}
	}
	if got := Choose(f, []string{}); got != "" {
		t.Errorf("empty slice should yield zero value, got %q", got)
	}
}

func TestChooseWeighted(t *testing.T) {
	f := NewFakerWithSeed(1)
	items := []string{"common", "rare"}
	weights := []int{99, 1}

	counts := map[string]int{}
	for i := 0; i < 1000; i++ {
		counts[ChooseWeighted(f, items, weights)]++
	}
	if counts["common"] < counts["rare"] {
		t.Errorf("weighting ignored: %v", counts)
	}
	if got := ChooseWeighted(f, []string{}, []int{}); got != "" {
		t.Errorf("empty input should yield zero value, got %q", got)
	}
}

//-------------------------------------------------------------------------
//
// Retail ETL
//
// Copyright (c) 2025 - 2026, Ecomlab
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package extract reads the raw transaction extract into memory.
// The extract is fully materialized before cleaning begins; a read
// failure is fatal to the run.
package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ecomlab/retail-etl/internal/model"
)

// Column names expected in the extract header, case-insensitive.
var requiredColumns = []string{
	"invoiceno", "stockcode", "description", "quantity",
	"invoicedate", "unitprice", "customerid", "country",
}

// ReadFile reads the extract at path. Missing or unreadable files are
// returned as errors; the caller aborts the run.
func ReadFile(path string) ([]model.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open extract: %w", err)
	}
	defer f.Close()

	records, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read extract %s: %w", path, err)
	}
	return records, nil
}

// Read parses a CSV extract. The first row must be a header naming the
// eight source columns (in any order). Rows shorter than the header are
// padded with empty fields so the cleaning stage can count them as
// incomplete rather than failing the whole run.
func Read(r io.Reader) ([]model.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var records []model.RawRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+2, err)
		}
		records = append(records, model.RawRecord{
			InvoiceNo:   field(row, index["invoiceno"]),
			StockCode:   field(row, index["stockcode"]),
			Description: field(row, index["description"]),
			Quantity:    field(row, index["quantity"]),
			InvoiceDate: field(row, index["invoicedate"]),
			UnitPrice:   field(row, index["unitprice"]),
			CustomerID:  field(row, index["customerid"]),
			Country:     field(row, index["country"]),
		})
	}
	return records, nil
}

func mapHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(name, " ", "")))
		index[key] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("extract header is missing column %q", col)
		}
	}
	return index, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

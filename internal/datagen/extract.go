//-------------------------------------------------------------------------
//
// Retail ETL
//
// Copyright (c) 2025 - 2026, Ecomlab
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ecomlab/retail-etl/internal/model"
)

// serialEpoch matches the day-zero the cleaner uses for day-count
// serials.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Row defect kinds and their relative frequencies. Most rows are clean;
// the rest exercise every drop path in the cleaning stages.
var defectKinds = []string{
	"clean", "cancellation", "negative_quantity", "zero_price",
	"outlier_quantity", "outlier_price", "missing_customer",
	"blank_description", "bad_date",
}

var defectWeights = []int{80, 4, 3, 3, 2, 2, 3, 2, 1}

// Country spellings emitted raw; includes alias-table variants so the
// cleaner's canonicalization is exercised.
var countries = []string{
	"United Kingdom", "UNITED KINGDOM", "france", "Germany",
	"Eire", "USA", "Netherlands", "Spain", "Belgium", "Australia",
}

// extractHeader matches the column set the extract reader requires.
var extractHeader = []string{
	"InvoiceNo", "StockCode", "Description", "Quantity",
	"InvoiceDate", "UnitPrice", "CustomerID", "Country",
}

// ExtractGenerator produces a deliberately messy raw extract in the
// shape of the production export.
type ExtractGenerator struct {
	faker *Faker

	stockCodes   []string
	descriptions map[string]string
	basePrices   map[string]float64
}

// NewExtractGenerator creates a generator. A zero seed randomizes.
func NewExtractGenerator(seed uint64) *ExtractGenerator {
	var f *Faker
	if seed == 0 {
		f = NewFaker()
	} else {
		f = NewFakerWithSeed(seed)
	}

	g := &ExtractGenerator{
		faker:        f,
		descriptions: make(map[string]string),
		basePrices:   make(map[string]float64),
	}

	// A small catalog so stock codes repeat across invoices and product
	// price averaging has something to average.
	numProducts := 120
	for i := 0; i < numProducts; i++ {
		code := fmt.Sprintf("%05d", 10000+i)
		if g.faker.Bool() && i%7 == 0 {
			code += "A"
		}
		g.stockCodes = append(g.stockCodes, code)
		g.descriptions[code] = g.faker.ProductName()
		g.basePrices[code] = g.faker.Price(0.5, 30)
	}

	return g
}

// Write emits a header plus rows raw records as CSV.
func (g *ExtractGenerator) Write(w io.Writer, rows int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(extractHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	start := time.Date(2010, 12, 1, 8, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	invoice := 536365
	customers := make([]int64, 0, 400)
	for i := 0; i < 400; i++ {
		customers = append(customers, g.faker.Int64(12000, 18999))
	}

	written := 0
	for written < rows {
		// One invoice carries a handful of lines sharing customer and
		// timestamp, like the real export.
		customerID := Choose(g.faker, customers)
		invoiceDate := g.faker.Date(start, end)
		invoiceNo := strconv.Itoa(invoice)
		invoice++

		lines := g.faker.Int(1, 8)
		for l := 0; l < lines && written < rows; l++ {
			rec := g.line(invoiceNo, customerID, invoiceDate)
			if err := cw.Write([]string{
				rec.InvoiceNo, rec.StockCode, rec.Description, rec.Quantity,
				rec.InvoiceDate, rec.UnitPrice, rec.CustomerID, rec.Country,
			}); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
			written++
		}
	}

	cw.Flush()
	return cw.Error()
}

func (g *ExtractGenerator) line(invoiceNo string, customerID int64, date time.Time) model.RawRecord {
	code := Choose(g.faker, g.stockCodes)
	price := model.Round2(g.basePrices[code] * g.faker.Float64(0.85, 1.15))

	rec := model.RawRecord{
		InvoiceNo:   invoiceNo,
		StockCode:   code,
		Description: g.descriptions[code],
		Quantity:    strconv.Itoa(g.faker.Int(1, 48)),
		InvoiceDate: g.encodeDate(date),
		UnitPrice:   strconv.FormatFloat(price, 'f', 2, 64),
		CustomerID:  strconv.FormatInt(customerID, 10),
		Country:     Choose(g.faker, countries),
	}

	switch ChooseWeighted(g.faker, defectKinds, defectWeights) {
	case "cancellation":
		rec.InvoiceNo = "C" + invoiceNo
		rec.Quantity = strconv.Itoa(-g.faker.Int(1, 48))
	case "negative_quantity":
		rec.Quantity = strconv.Itoa(-g.faker.Int(1, 24))
	case "zero_price":
		rec.UnitPrice = "0.00"
	case "outlier_quantity":
		rec.Quantity = strconv.Itoa(g.faker.Int(12000, 80000))
	case "outlier_price":
		rec.UnitPrice = strconv.FormatFloat(g.faker.Float64(1200, 20000), 'f', 2, 64)
	case "missing_customer":
		rec.CustomerID = ""
	case "blank_description":
		rec.Description = ""
	case "bad_date":
		rec.InvoiceDate = "not a date"
	}

	return rec
}

// encodeDate picks one of the four timestamp encodings the cleaner
// accepts.
func (g *ExtractGenerator) encodeDate(t time.Time) string {
	switch g.faker.Int(1, 4) {
	case 1:
		return t.Format("2006-01-02 15:04:05")
	case 2:
		return t.Format("2006-01-02")
	case 3:
		days := t.Sub(serialEpoch).Hours() / 24
		return strconv.FormatFloat(days, 'f', 6, 64)
	default:
		return t.Format("1/2/2006 15:04")
	}
}

// Package model defines the entities the pipeline moves between stages:
// the raw extract row, the cleaned line record, and the four canonical
// entity sets produced by normalization.
package model

import (
	"math"
	"time"
)

// RawRecord is one row of the source extract, untyped and possibly
// malformed. Raw records are transient; they are discarded once cleaning
// has produced LineRecords.
type RawRecord struct {
	InvoiceNo   string
	StockCode   string
	Description string
	Quantity    string
	InvoiceDate string
	UnitPrice   string
	CustomerID  string
	Country     string
}

// LineRecord is a raw record that survived validation and type coercion.
// Quantity and UnitPrice are positive, InvoiceDate is an absolute instant,
// and Revenue is quantity times unit price rounded to 2 decimals.
type LineRecord struct {
	InvoiceNo   string
	StockCode   string
	Description string
	Quantity    int
	UnitPrice   float64
	InvoiceDate time.Time
	CustomerID  int64
	Country     string
	Revenue     float64
}

// Customer is one distinct customer id with its normalized country.
type Customer struct {
	ID      int64
	Country string
}

// Product is one distinct stock code. Description is the first non-empty
// description observed for the code; UnitPrice is the mean of all line
// prices for the code, the canonical catalog price.
type Product struct {
	Code        string
	Description string
	UnitPrice   float64
}

// Order is one distinct invoice. An invoice may carry many lines but has
// exactly one timestamp and one customer.
type Order struct {
	InvoiceNo   string
	InvoiceDate time.Time
	CustomerID  int64
}

// OrderLine is one (invoice, product) line as it appeared in the source.
// Lines are not deduplicated; the extract's line-level grain is preserved.
type OrderLine struct {
	InvoiceNo string
	StockCode string
	Quantity  int
	UnitPrice float64
	Revenue   float64
}

// Dataset is the full normalized output of one pipeline run.
type Dataset struct {
	Customers  []Customer
	Products   []Product
	Orders     []Order
	OrderLines []OrderLine
}

// Round2 rounds a monetary value to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

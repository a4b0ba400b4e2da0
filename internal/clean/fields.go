//-------------------------------------------------------------------------
//
// Retail ETL
//
// Copyright (c) 2025 - 2026, Ecomlab
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package clean converts raw extract rows into typed line records and
// filters out rows that cannot be used. Cleaning is side-effect free and
// preserves the order of surviving records.
package clean

import (
	"strconv"
	"strings"
	"time"
)

// UnknownProduct is the sentinel description for lines whose source
// description is empty. Missing descriptions never drop a record.
const UnknownProduct = "Unknown Product"

// cancelPrefix marks an invoice as a reversal of a prior sale.
const cancelPrefix = "C"

// countryAliases maps title-cased source spellings to canonical names.
var countryAliases = map[string]string{
	"Eire":           "Ireland",
	"Usa":            "United States",
	"U.s.a.":         "United States",
	"Uk":             "United Kingdom",
	"Rsa":            "South Africa",
	"Holland":        "Netherlands",
	"Channel Island": "Channel Islands",
}

// timestampLayouts are the text encodings accepted for invoice dates,
// tried in order. The numeric day-count serial is handled separately.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
	"1/2/2006 15:04",
	"1/2/2006",
}

// serialEpoch is the day-zero of spreadsheet day-count serials.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ParseTimestamp resolves an invoice date in any of the four accepted
// encodings: date-time, date-only, numeric day-count serial, or
// month/day/year-hour:minute text. Returns false if none parse.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if serial, ok := parseSerial(s); ok {
		return serial, true
	}
	return time.Time{}, false
}

// NormalizeCountry trims, title-cases, and canonicalizes a country name
// through the alias table.
func NormalizeCountry(s string) string {
	titled := titleCase(strings.TrimSpace(s))
	if canonical, ok := countryAliases[titled]; ok {
		return canonical
	}
	return titled
}

// NormalizeDescription trims a description and substitutes the sentinel
// for empty values.
func NormalizeDescription(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownProduct
	}
	return s
}

// IsCancellation reports whether an invoice number denotes a reversal,
// identified by a case-insensitive marker prefix.
func IsCancellation(invoiceNo string) bool {
	return len(invoiceNo) > 0 &&
		strings.EqualFold(invoiceNo[:1], cancelPrefix)
}

// parseSerial interprets a numeric day-count serial (fractional part is
// the time of day). Serials past the year 2500 are rejected as noise.
func parseSerial(s string) (time.Time, bool) {
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial <= 0 || serial > 219146 {
		return time.Time{}, false
	}
	days := int(serial)
	dayFrac := serial - float64(days)
	t := serialEpoch.AddDate(0, 0, days).
		Add(time.Duration(dayFrac * 24 * float64(time.Hour))).
		Round(time.Second)
	return t, true
}

func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	startOfWord := true
	for _, r := range strings.ToLower(s) {
		if startOfWord && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		startOfWord = r == ' ' || r == '-'
		b.WriteRune(r)
	}
	return b.String()
}

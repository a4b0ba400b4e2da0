//-------------------------------------------------------------------------
//
// Retail ETL
//
// Copyright (c) 2025 - 2026, Ecomlab
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package clean

import (
	"strconv"
	"strings"

	"github.com/ecomlab/retail-etl/internal/model"
)

// Bounds are the outlier limits applied as the final filter stage.
type Bounds struct {
	MaxQuantity    int
	MaxUnitPrice   float64
	MaxLineRevenue float64
}

// DefaultBounds returns the standard outlier limits.
func DefaultBounds() Bounds {
	return Bounds{
		MaxQuantity:    10000,
		MaxUnitPrice:   1000,
		MaxLineRevenue: 50000,
	}
}

// Stats counts records dropped at each filter stage. A record is counted
// once, against the first stage that rejects it.
type Stats struct {
	Input         int
	MissingFields int
	BadTypes      int
	BusinessRules int
	OutlierBounds int
	Kept          int
}

// Dropped is the total number of records discarded across all stages.
func (s Stats) Dropped() int {
	return s.MissingFields + s.BadTypes + s.BusinessRules + s.OutlierBounds
}

// filter stages, applied in order. Later stages assume earlier ones
// already guaranteed non-null, typed fields.
type stage int

const (
	stageMissingFields stage = iota
	stageBadTypes
	stageBusinessRules
	stageOutlierBounds
)

// Clean applies field normalization and the four filter stages to every
// raw record. Records either fully survive or are discarded; nothing is
// repaired. Surviving records keep their input order.
func Clean(raws []model.RawRecord, b Bounds) ([]model.LineRecord, Stats) {
	stats := Stats{Input: len(raws)}
	records := make([]model.LineRecord, 0, len(raws))

	for _, raw := range raws {
		rec, failed, ok := cleanOne(raw, b)
		if !ok {
			switch failed {
			case stageMissingFields:
				stats.MissingFields++
			case stageBadTypes:
				stats.BadTypes++
			case stageBusinessRules:
				stats.BusinessRules++
			case stageOutlierBounds:
				stats.OutlierBounds++
			}
			continue
		}
		records = append(records, rec)
	}

	stats.Kept = len(records)
	return records, stats
}

func cleanOne(raw model.RawRecord, b Bounds) (model.LineRecord, stage, bool) {
	invoiceNo := strings.TrimSpace(raw.InvoiceNo)
	stockCode := strings.TrimSpace(raw.StockCode)
	country := strings.TrimSpace(raw.Country)

	// Stage 1: required-field presence. Description is not required; an
	// empty one gets the sentinel instead.
	if invoiceNo == "" || stockCode == "" || country == "" ||
		strings.TrimSpace(raw.Quantity) == "" ||
		strings.TrimSpace(raw.UnitPrice) == "" ||
		strings.TrimSpace(raw.CustomerID) == "" ||
		strings.TrimSpace(raw.InvoiceDate) == "" {
		return model.LineRecord{}, stageMissingFields, false
	}

	// Stage 2: type coercion.
	quantity, err := strconv.Atoi(strings.TrimSpace(raw.Quantity))
	if err != nil {
		return model.LineRecord{}, stageBadTypes, false
	}
	unitPrice, err := strconv.ParseFloat(strings.TrimSpace(raw.UnitPrice), 64)
	if err != nil {
		return model.LineRecord{}, stageBadTypes, false
	}
	customerID, err := strconv.ParseInt(strings.TrimSpace(raw.CustomerID), 10, 64)
	if err != nil {
		return model.LineRecord{}, stageBadTypes, false
	}
	invoiceDate, ok := ParseTimestamp(raw.InvoiceDate)
	if !ok {
		return model.LineRecord{}, stageBadTypes, false
	}

	// Stage 3: business rules. Excludes reversals, returns, and
	// promotional zero-price lines.
	if IsCancellation(invoiceNo) || quantity <= 0 || unitPrice <= 0 || customerID <= 0 {
		return model.LineRecord{}, stageBusinessRules, false
	}

	// Stage 4: outlier bounds.
	revenue := model.Round2(float64(quantity) * unitPrice)
	if quantity > b.MaxQuantity || unitPrice > b.MaxUnitPrice || revenue > b.MaxLineRevenue {
		return model.LineRecord{}, stageOutlierBounds, false
	}

	return model.LineRecord{
		InvoiceNo:   invoiceNo,
		StockCode:   stockCode,
		Description: NormalizeDescription(raw.Description),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		InvoiceDate: invoiceDate,
		CustomerID:  customerID,
		Country:     NormalizeCountry(country),
		Revenue:     revenue,
	}, 0, true
}

//-------------------------------------------------------------------------
//
// Retail ETL
//
// Copyright (c) 2025 - 2026, Ecomlab
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package normalize decomposes the cleaned line records into the four
// canonical entity sets. The decomposition performs no I/O and is
// deterministic: the same input always yields the same sets in the same
// order.
package normalize

import (
	"sort"

	"github.com/ecomlab/retail-etl/internal/clean"
	"github.com/ecomlab/retail-etl/internal/model"
)

// Decompose derives the customer, product, order, and order-line sets
// from the cleaned records.
//
// Tie-breaks are first-seen in record order: a customer id appearing with
// conflicting countries keeps the first observed country, and a product's
// description is the first non-empty one observed. A product's unit price
// is the mean of all its line prices, rounded to 2 decimals.
func Decompose(records []model.LineRecord) model.Dataset {
	return model.Dataset{
		Customers:  customers(records),
		Products:   products(records),
		Orders:     orders(records),
		OrderLines: orderLines(records),
	}
}

func customers(records []model.LineRecord) []model.Customer {
	seen := make(map[int64]string)
	for _, r := range records {
		if _, ok := seen[r.CustomerID]; !ok {
			seen[r.CustomerID] = r.Country
		}
	}

	out := make([]model.Customer, 0, len(seen))
	for id, country := range seen {
		out = append(out, model.Customer{ID: id, Country: country})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func products(records []model.LineRecord) []model.Product {
	type agg struct {
		description string
		priceSum    float64
		lines       int
	}
	byCode := make(map[string]*agg)
	for _, r := range records {
		a, ok := byCode[r.StockCode]
		if !ok {
			a = &agg{}
			byCode[r.StockCode] = a
		}
		if a.description == "" || a.description == clean.UnknownProduct {
			a.description = r.Description
		}
		a.priceSum += r.UnitPrice
		a.lines++
	}

	out := make([]model.Product, 0, len(byCode))
	for code, a := range byCode {
		out = append(out, model.Product{
			Code:        code,
			Description: a.description,
			UnitPrice:   model.Round2(a.priceSum / float64(a.lines)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func orders(records []model.LineRecord) []model.Order {
	seen := make(map[string]model.Order)
	for _, r := range records {
		if _, ok := seen[r.InvoiceNo]; !ok {
			seen[r.InvoiceNo] = model.Order{
				InvoiceNo:   r.InvoiceNo,
				InvoiceDate: r.InvoiceDate,
				CustomerID:  r.CustomerID,
			}
		}
	}

	out := make([]model.Order, 0, len(seen))
	for _, o := range seen {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].InvoiceDate.Equal(out[j].InvoiceDate) {
			return out[i].InvoiceDate.Before(out[j].InvoiceDate)
		}
		return out[i].InvoiceNo < out[j].InvoiceNo
	})
	return out
}

func orderLines(records []model.LineRecord) []model.OrderLine {
	out := make([]model.OrderLine, 0, len(records))
	for _, r := range records {
		out = append(out, model.OrderLine{
			InvoiceNo: r.InvoiceNo,
			StockCode: r.StockCode,
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
			Revenue:   r.Revenue,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].InvoiceNo != out[j].InvoiceNo {
			return out[i].InvoiceNo < out[j].InvoiceNo
		}
		return out[i].StockCode < out[j].StockCode
	})
	return out
}

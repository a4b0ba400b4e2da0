package normalize

import (
	"reflect"
	"testing"
	"time"

	"github.com/ecomlab/retail-etl/internal/clean"
	"github.com/ecomlab/retail-etl/internal/model"
)

func line(invoice, stock, desc string, qty int, price float64,
	date time.Time, customer int64, country string) model.LineRecord {
	return model.LineRecord{
		InvoiceNo:   invoice,
		StockCode:   stock,
		Description: desc,
		Quantity:    qty,
		UnitPrice:   price,
		InvoiceDate: date,
		CustomerID:  customer,
		Country:     country,
		Revenue:     model.Round2(float64(qty) * price),
	}
}

var (
	dec1 = time.Date(2010, 12, 1, 8, 26, 0, 0, time.UTC)
	dec2 = time.Date(2010, 12, 2, 9, 0, 0, 0, time.UTC)
	dec3 = time.Date(2010, 12, 3, 10, 30, 0, 0, time.UTC)
)

func sampleRecords() []model.LineRecord {
	return []model.LineRecord{
		line("536365", "85123A", "WHITE HANGING HEART", 6, 2.55, dec1, 17850, "United Kingdom"),
		line("536365", "71053", "WHITE METAL LANTERN", 6, 3.00, dec1, 17850, "United Kingdom"),
		line("536370", "71053", "WHITE METAL LANTERN", 2, 5.00, dec2, 12583, "France"),
		line("536370", "22728", "ALARM CLOCK BAKELIKE", 4, 3.75, dec2, 12583, "France"),
		line("536372", "85123A", "WHITE HANGING HEART", 1, 2.55, dec3, 17850, "United Kingdom"),
	}
}

func TestDecomposeCustomers(t *testing.T) {
	ds := Decompose(sampleRecords())

	want := []model.Customer{
		{ID: 12583, Country: "France"},
		{ID: 17850, Country: "United Kingdom"},
	}
	if !reflect.DeepEqual(ds.Customers, want) {
		t.Errorf("customers = %+v, want %+v", ds.Customers, want)
	}
}

func TestDecomposeCustomerCountryFirstSeen(t *testing.T) {
	records := []model.LineRecord{
		line("1", "A", "X", 1, 1, dec1, 100, "France"),
		line("2", "A", "X", 1, 1, dec2, 100, "Germany"),
	}

	ds := Decompose(records)
	if len(ds.Customers) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(ds.Customers))
	}
	if ds.Customers[0].Country != "France" {
		t.Errorf("conflicting countries: got %q, want first-seen France",
			ds.Customers[0].Country)
	}
}

func TestDecomposeProductMeanPrice(t *testing.T) {
	ds := Decompose(sampleRecords())

	var p *model.Product
	for i := range ds.Products {
		if ds.Products[i].Code == "71053" {
			p = &ds.Products[i]
		}
	}
	if p == nil {
		t.Fatal("product 71053 missing")
	}
	// Prices 3.00 and 5.00 average to 4.00.
	if p.UnitPrice != 4.00 {
		t.Errorf("unit price = %v, want 4.00", p.UnitPrice)
	}
	if p.Description != "WHITE METAL LANTERN" {
		t.Errorf("description = %q", p.Description)
	}
}

func TestDecomposeProductDescriptionFirstNonEmpty(t *testing.T) {
	records := []model.LineRecord{
		line("1", "A", clean.UnknownProduct, 1, 1, dec1, 100, "France"),
		line("2", "A", "REAL DESCRIPTION", 1, 1, dec2, 100, "France"),
		line("3", "A", "LATER DESCRIPTION", 1, 1, dec3, 100, "France"),
	}

	ds := Decompose(records)
	if ds.Products[0].Description != "REAL DESCRIPTION" {
		t.Errorf("description = %q, want first real description",
			ds.Products[0].Description)
	}
}

func TestDecomposeOrders(t *testing.T) {
	ds := Decompose(sampleRecords())

	want := []model.Order{
		{InvoiceNo: "536365", InvoiceDate: dec1, CustomerID: 17850},
		{InvoiceNo: "536370", InvoiceDate: dec2, CustomerID: 12583},
		{InvoiceNo: "536372", InvoiceDate: dec3, CustomerID: 17850},
	}
	if !reflect.DeepEqual(ds.Orders, want) {
		t.Errorf("orders = %+v, want %+v", ds.Orders, want)
	}
}

func TestDecomposeOrderLinesKeepDuplicates(t *testing.T) {
	records := []model.LineRecord{
		line("1", "A", "X", 2, 1.50, dec1, 100, "France"),
		line("1", "A", "X", 2, 1.50, dec1, 100, "France"),
	}

	ds := Decompose(records)
	if len(ds.OrderLines) != 2 {
		t.Errorf("identical lines must not be deduplicated, got %d", len(ds.OrderLines))
	}
}

func TestDecomposeOrderLineSort(t *testing.T) {
	records := []model.LineRecord{
		line("2", "B", "X", 1, 1, dec2, 100, "France"),
		line("1", "Z", "X", 1, 1, dec1, 100, "France"),
		line("1", "A", "X", 1, 1, dec1, 100, "France"),
	}

	ds := Decompose(records)
	got := []string{}
	for _, ol := range ds.OrderLines {
		got = append(got, ol.InvoiceNo+"/"+ol.StockCode)
	}
	want := []string{"1/A", "1/Z", "2/B"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order lines sorted %v, want %v", got, want)
	}
}

func TestDecomposeReferentialClosure(t *testing.T) {
	ds := Decompose(sampleRecords())

	customers := map[int64]bool{}
	for _, c := range ds.Customers {
		customers[c.ID] = true
	}
	products := map[string]bool{}
	for _, p := range ds.Products {
		products[p.Code] = true
	}
	orders := map[string]bool{}
	for _, o := range ds.Orders {
		orders[o.InvoiceNo] = true
		if !customers[o.CustomerID] {
			t.Errorf("order %s references missing customer %d", o.InvoiceNo, o.CustomerID)
		}
	}
	for _, ol := range ds.OrderLines {
		if !orders[ol.InvoiceNo] {
			t.Errorf("line references missing order %s", ol.InvoiceNo)
		}
		if !products[ol.StockCode] {
			t.Errorf("line references missing product %s", ol.StockCode)
		}
	}
}

func TestDecomposeIdempotent(t *testing.T) {
	first := Decompose(sampleRecords())
	second := Decompose(sampleRecords())

	if !reflect.DeepEqual(first, second) {
		t.Error("decomposition of the same input must be identical")
	}
}

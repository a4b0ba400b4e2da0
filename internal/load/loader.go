//-------------------------------------------------------------------------
//
// Retail ETL
//
// Copyright (c) 2025 - 2026, Ecomlab
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package load

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ecomlab/retail-etl/internal/logging"
	"github.com/ecomlab/retail-etl/internal/model"
)

// DB is the database surface the loader needs. Both *pgxpool.Pool and
// *pgx.Conn satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ChunkSizes control how many rows each multi-row INSERT carries,
// bounding statement size and memory per write.
type ChunkSizes struct {
	Customers  int
	Products   int
	Orders     int
	OrderLines int
}

// DefaultChunkSizes returns the standard chunk sizes.
func DefaultChunkSizes() ChunkSizes {
	return ChunkSizes{
		Customers:  2000,
		Products:   1000,
		Orders:     3000,
		OrderLines: 5000,
	}
}

// Result reports how many rows of each set were persisted.
type Result struct {
	Customers  int64
	Products   int64
	Orders     int64
	OrderLines int64
}

// Loader writes the normalized entity sets to the target schema.
type Loader struct {
	db    DB
	sizes ChunkSizes
}

// NewLoader creates a loader writing through db.
func NewLoader(db DB, sizes ChunkSizes) *Loader {
	return &Loader{db: db, sizes: sizes}
}

// Load persists the dataset in the fixed dependency order customers →
// products → orders → order lines. A failed chunk aborts the load; rows
// already written stay in place and the error names the set, the chunk,
// and how many rows of that set made it in.
func (l *Loader) Load(ctx context.Context, ds model.Dataset) (Result, error) {
	var res Result
	var err error

	if res.Customers, err = l.loadCustomers(ctx, ds.Customers); err != nil {
		return res, err
	}
	if res.Products, err = l.loadProducts(ctx, ds.Products); err != nil {
		return res, err
	}
	if res.Orders, err = l.loadOrders(ctx, ds.Orders); err != nil {
		return res, err
	}
	if res.OrderLines, err = l.loadOrderLines(ctx, ds.OrderLines); err != nil {
		return res, err
	}
	return res, nil
}

func (l *Loader) loadCustomers(ctx context.Context, rows []model.Customer) (int64, error) {
	return loadSet(ctx, l.db, "customers", "(customer_id, country)",
		l.sizes.Customers, rows,
		func(c model.Customer) []any { return []any{c.ID, c.Country} })
}

func (l *Loader) loadProducts(ctx context.Context, rows []model.Product) (int64, error) {
	return loadSet(ctx, l.db, "products", "(stock_code, description, unit_price)",
		l.sizes.Products, rows,
		func(p model.Product) []any { return []any{p.Code, p.Description, p.UnitPrice} })
}

func (l *Loader) loadOrders(ctx context.Context, rows []model.Order) (int64, error) {
	return loadSet(ctx, l.db, "orders", "(invoice_no, invoice_date, customer_id)",
		l.sizes.Orders, rows,
		func(o model.Order) []any { return []any{o.InvoiceNo, o.InvoiceDate, o.CustomerID} })
}

func (l *Loader) loadOrderLines(ctx context.Context, rows []model.OrderLine) (int64, error) {
	return loadSet(ctx, l.db, "order_lines",
		"(invoice_no, stock_code, quantity, unit_price, revenue)",
		l.sizes.OrderLines, rows,
		func(ol model.OrderLine) []any {
			return []any{ol.InvoiceNo, ol.StockCode, ol.Quantity, ol.UnitPrice, ol.Revenue}
		})
}

// loadSet writes one entity set in chunks. Each chunk is a single
// parameterized multi-row INSERT, so a failed chunk leaves no partial
// chunk behind.
func loadSet[T any](ctx context.Context, db DB, table, columns string,
	chunkSize int, rows []T, values func(T) []any) (int64, error) {

	if chunkSize < 1 {
		return 0, fmt.Errorf("chunk size for %s must be at least 1", table)
	}

	var loaded int64
	for start := 0; start < len(rows); start += chunkSize {
		end := min(start+chunkSize, len(rows))
		chunk := rows[start:end]
		chunkIdx := start/chunkSize + 1

		width := len(values(chunk[0]))
		args := make([]any, 0, len(chunk)*width)
		for _, row := range chunk {
			args = append(args, values(row)...)
		}

		sql := buildInsertSQL(table, columns, width, len(chunk))
		if _, err := db.Exec(ctx, sql, args...); err != nil {
			return loaded, fmt.Errorf(
				"load %s: chunk %d failed after %d rows: %w",
				table, chunkIdx, loaded, err)
		}
		loaded += int64(len(chunk))

		logging.Debug().
			Str("table", table).
			Int("chunk", chunkIdx).
			Int64("rows", loaded).
			Msg("Chunk loaded")
	}

	logging.Info().
		Str("table", table).
		Int64("rows", loaded).
		Msg("Table loaded")

	return loaded, nil
}

// buildInsertSQL renders a multi-row INSERT with numbered placeholders:
// INSERT INTO t (a, b) VALUES ($1, $2), ($3, $4), ...
func buildInsertSQL(table, columns string, width, rowCount int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" ")
	b.WriteString(columns)
	b.WriteString(" VALUES ")
	arg := 1
	for row := 0; row < rowCount; row++ {
		if row > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for col := 0; col < width; col++ {
			if col > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", arg)
			arg++
		}
		b.WriteString(")")
	}
	return b.String()
}

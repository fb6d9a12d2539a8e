package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a requested row doesn't exist.
	ErrNotFound = errors.New("not found")
	// ErrNoTemplateRow is returned when a new vehicle must be exported but
	// the source database has no locomotive row to copy unmapped columns
	// from.
	ErrNoTemplateRow = errors.New("no template vehicle row for insert")
)

// inStockSinceProbes lists the historical names of the in-stock-since column
// in priority order. The first one present in the live schema wins for the
// whole session.
var inStockSinceProbes = []string{"in_stock_since", "inStockSince", "in_stock_since_date"}

// Schema captures what the opened database actually contains. It is computed
// once per session and threaded through every read and write, so optional
// columns are probed exactly once.
type Schema struct {
	tables         map[string]struct{}
	vehicleColumns map[string]struct{}
	historyColumns map[string]struct{}

	// InStockSinceColumn is the resolved column name for the in-stock-since
	// concept, or "" when no known variant exists in this schema.
	InStockSinceColumn string
}

// loadSchema introspects the live table and column sets.
func loadSchema(ctx context.Context, db *sql.DB) (*Schema, error) {
	s := &Schema{
		tables:         make(map[string]struct{}),
		vehicleColumns: make(map[string]struct{}),
		historyColumns: make(map[string]struct{}),
	}

	rows, err := db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		s.tables[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if s.HasTable("vehicles") {
		if s.vehicleColumns, err = tableColumns(ctx, db, "vehicles"); err != nil {
			return nil, err
		}
	}
	if s.HasTable("update_history") {
		if s.historyColumns, err = tableColumns(ctx, db, "update_history"); err != nil {
			return nil, err
		}
	}

	for _, probe := range inStockSinceProbes {
		if s.HasVehicleColumn(probe) {
			s.InStockSinceColumn = probe
			break
		}
	}
	return s, nil
}

// tableColumns introspects one table's column names. Table names only ever
// come from the fixed set this package queries.
func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]struct{}, error) {
	cols, err := db.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return nil, fmt.Errorf("failed to introspect %s: %w", table, err)
	}
	defer func() { _ = cols.Close() }()

	names := make(map[string]struct{})
	for cols.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := cols.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		names[name] = struct{}{}
	}
	if err := cols.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// HasTable reports whether the named table exists.
func (s *Schema) HasTable(name string) bool {
	_, ok := s.tables[name]
	return ok
}

// HasVehicleColumn reports whether the vehicles table has the named column.
func (s *Schema) HasVehicleColumn(name string) bool {
	_, ok := s.vehicleColumns[name]
	return ok
}

// HasHistoryColumn reports whether the update_history table has the named
// column.
func (s *Schema) HasHistoryColumn(name string) bool {
	_, ok := s.historyColumns[name]
	return ok
}

// filterVehicleColumns keeps only the columns present in the live schema,
// preserving order.
func (s *Schema) filterVehicleColumns(names []string) columnList {
	kept := make([]string, 0, len(names))
	for _, name := range names {
		if s.HasVehicleColumn(name) {
			kept = append(kept, name)
		}
	}
	return columnList(kept)
}

// columnList is a validated, ordered set of column names used to build SQL
// fragments. Names only ever come from the fixed lists in this package or
// from PRAGMA introspection, never from user input.
type columnList []string

// selectClause renders "a, b, c".
func (c columnList) selectClause() string {
	return strings.Join(c, ", ")
}

// assignments renders "a = ?, b = ?, c = ?" for UPDATE statements.
func (c columnList) assignments() string {
	parts := make([]string, len(c))
	for i, name := range c {
		parts[i] = name + " = ?"
	}
	return strings.Join(parts, ", ")
}

// placeholders renders "?, ?, ?" matching the list's length.
func (c columnList) placeholders() string {
	parts := make([]string, len(c))
	for i := range c {
		parts[i] = "?"
	}
	return strings.Join(parts, ", ")
}

// index returns the position of name in the list, or -1.
func (c columnList) index(name string) int {
	for i, n := range c {
		if n == name {
			return i
		}
	}
	return -1
}

// DB wraps an open working copy of an embedded Z21 database together with its
// introspected schema.
type DB struct {
	db     *sql.DB
	schema *Schema
}

// Open opens the SQLite database at path and introspects its schema. The
// path is expected to be a scratch copy, never the archive member itself.
func Open(path string) (*DB, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection: the working copy has exactly one user, and the
	// file is read back as raw bytes after Close, so stay on the default
	// rollback journal instead of WAL.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	schema, err := loadSchema(context.Background(), db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	return &DB{db: db, schema: schema}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Schema returns the schema introspected when the database was opened.
func (d *DB) Schema() *Schema {
	return d.schema
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

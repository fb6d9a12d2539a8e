package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/modelrail/z21go/pkg/model"
)

const (
	// encodingMarkerOffset is the byte offset of the 4-byte big-endian
	// text-encoding marker in the SQLite file header region.
	encodingMarkerOffset = 60
	// encodingMarkerUTF16LE is the marker value the Z21 mobile app expects
	// in single-locomotive export databases.
	encodingMarkerUTF16LE = 16
)

// ExportLocomotive builds a fresh single-locomotive database at destPath:
// the source schema is cloned, update_history is carried over, and the one
// vehicle row travels with its functions, categories and category links.
//
// A locomotive without a persisted row is materialized from its in-memory
// fields; that requires an existing locomotive row in the source to serve as
// a column template, and fails with ErrNoTemplateRow when none exists.
func (d *DB) ExportLocomotive(ctx context.Context, loco *model.Locomotive, destPath string) error {
	dest, err := sql.Open(DriverName, destPath)
	if err != nil {
		return fmt.Errorf("failed to create export database: %w", err)
	}
	defer func() { _ = dest.Close() }()
	dest.SetMaxOpenConns(1)

	if err := d.cloneTableSchemas(ctx, dest); err != nil {
		return err
	}
	if d.schema.HasTable("update_history") {
		if err := d.copyTableRows(ctx, dest, "update_history", "", nil); err != nil {
			return err
		}
	}

	vehicleID, err := d.resolveVehicle(ctx, d.db, loco)
	if err != nil {
		return err
	}
	if vehicleID != 0 {
		if err := d.copyVehicleTree(ctx, dest, vehicleID); err != nil {
			return err
		}
	} else {
		if err := d.exportFromModel(ctx, dest, loco); err != nil {
			return err
		}
	}

	if err := dest.Close(); err != nil {
		return fmt.Errorf("failed to close export database: %w", err)
	}
	return stampEncodingMarker(destPath)
}

// cloneTableSchemas replays the source CREATE TABLE statements into dest.
func (d *DB) cloneTableSchemas(ctx context.Context, dest *sql.DB) error {
	rows, err := d.db.QueryContext(ctx,
		"SELECT name, sql FROM sqlite_master WHERE type = 'table' AND sql IS NOT NULL")
	if err != nil {
		return fmt.Errorf("failed to read source schema: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name, ddl string
		if err := rows.Scan(&name, &ddl); err != nil {
			return err
		}
		// Internal bookkeeping tables are created by SQLite itself.
		if strings.HasPrefix(name, "sqlite_") {
			continue
		}
		if _, err := dest.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to clone table %s: %w", name, err)
		}
	}
	return rows.Err()
}

// copyTableRows copies rows verbatim from the source table into dest. The
// optional where clause scopes the copy.
func (d *DB) copyTableRows(ctx context.Context, dest querier, table, where string, args []any) error {
	query := "SELECT * FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	names, err := rows.Columns()
	if err != nil {
		return err
	}
	cols := columnList(names)

	for rows.Next() {
		row, err := scanRowValues(rows, cols)
		if err != nil {
			return err
		}
		insert := "INSERT INTO " + table + " (" + cols.selectClause() + ") VALUES (" + cols.placeholders() + ")"
		if _, err := dest.ExecContext(ctx, insert, row.vals...); err != nil {
			return fmt.Errorf("failed to copy row into %s: %w", table, err)
		}
	}
	return rows.Err()
}

// copyVehicleTree copies the persisted vehicle row plus everything hanging
// off it.
func (d *DB) copyVehicleTree(ctx context.Context, dest *sql.DB, vehicleID int64) error {
	if err := d.copyTableRows(ctx, dest, "vehicles", "id = ?", []any{vehicleID}); err != nil {
		return err
	}
	if d.schema.HasTable("functions") {
		if err := d.copyTableRows(ctx, dest, "functions", "vehicle_id = ?", []any{vehicleID}); err != nil {
			return err
		}
	}
	if d.schema.HasTable("traction_list") {
		if err := d.copyTableRows(ctx, dest, "traction_list", "loco_id = ?", []any{vehicleID}); err != nil {
			return err
		}
	}
	return d.copyCategoryTree(ctx, dest, vehicleID)
}

func (d *DB) copyCategoryTree(ctx context.Context, dest *sql.DB, vehicleID int64) error {
	if !d.schema.HasTable("categories") || !d.schema.HasTable("vehicles_to_categories") {
		return nil
	}
	rows, err := d.db.QueryContext(ctx,
		"SELECT category_id FROM vehicles_to_categories WHERE vehicle_id = ? ORDER BY rowid", vehicleID)
	if err != nil {
		return fmt.Errorf("failed to read category links: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categoryIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		categoryIDs = append(categoryIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range categoryIDs {
		if err := d.copyTableRows(ctx, dest, "categories", "id = ?", []any{id}); err != nil {
			return err
		}
		if _, err := dest.ExecContext(ctx,
			"INSERT INTO vehicles_to_categories (vehicle_id, category_id) VALUES (?, ?)",
			vehicleID, id); err != nil {
			return fmt.Errorf("failed to copy category link: %w", err)
		}
	}
	return nil
}

// exportFromModel materializes a never-persisted locomotive into dest,
// taking unmapped column values from an existing locomotive row.
func (d *DB) exportFromModel(ctx context.Context, dest *sql.DB, loco *model.Locomotive) error {
	rows, err := d.db.QueryContext(ctx, "SELECT * FROM vehicles WHERE type = 0 LIMIT 1")
	if err != nil {
		return fmt.Errorf("failed to read template vehicle: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return ErrNoTemplateRow
	}
	names, err := rows.Columns()
	if err != nil {
		return err
	}
	sampleCols := columnList(names)
	sample, err := scanRowValues(rows, sampleCols)
	if err != nil {
		return err
	}

	insertCols := make(columnList, 0, len(sampleCols))
	args := make([]any, 0, len(sampleCols))
	mapped := d.schema.filterVehicleColumns(vehicleInsertColumns)
	for i, col := range sampleCols {
		if col == "id" {
			continue
		}
		insertCols = append(insertCols, col)
		if mapped.index(col) >= 0 || col == d.schema.InStockSinceColumn {
			args = append(args, d.vehicleColumnValue(loco, col, 1))
		} else {
			args = append(args, sample.vals[i])
		}
	}

	query := "INSERT INTO vehicles (" + insertCols.selectClause() + ") VALUES (" + insertCols.placeholders() + ")"
	result, err := dest.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert exported vehicle: %w", err)
	}
	vehicleID, err := result.LastInsertId()
	if err != nil {
		return err
	}

	if d.schema.HasTable("functions") {
		for _, num := range loco.FunctionNumbers() {
			if err := d.insertFunction(ctx, dest, vehicleID, loco.Functions[num]); err != nil {
				return err
			}
		}
	}
	return nil
}

// stampEncodingMarker rewrites the header marker the consuming app checks.
func stampEncodingMarker(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read export database: %w", err)
	}
	if len(data) < encodingMarkerOffset+4 {
		return fmt.Errorf("export database too short for header marker")
	}
	binary.BigEndian.PutUint32(data[encodingMarkerOffset:encodingMarkerOffset+4], encodingMarkerUTF16LE)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to rewrite export database: %w", err)
	}
	return nil
}

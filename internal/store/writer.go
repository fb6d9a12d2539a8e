package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/modelrail/z21go/pkg/model"
)

// ErrNoVehiclesTable is returned when a write is requested against a
// database that has no vehicles table to write into.
var ErrNoVehiclesTable = errors.New("database has no vehicles table")

// vehicleUpdateColumns is the model-owned column set rewritten on every
// update, in a fixed order. The introspected in-stock-since column is
// appended per session.
var vehicleUpdateColumns = []string{
	"name", "address", "max_speed", "traction_direction", "image_name",
	"full_name", "railway", "article_number", "decoder_type", "build_year",
	"buffer_lenght", "model_buffer_lenght", "service_weight", "model_weight",
	"rmin", "ip", "drivers_cab", "description", "active", "speed_display",
	"type", "crane",
}

// vehicleInsertColumns additionally carries the position a new vehicle is
// appended at.
var vehicleInsertColumns = []string{
	"type", "name", "address", "max_speed", "active", "traction_direction",
	"position", "image_name", "drivers_cab", "description", "full_name",
	"railway", "article_number", "decoder_type", "build_year",
	"buffer_lenght", "model_buffer_lenght", "service_weight", "model_weight",
	"rmin", "ip", "speed_display", "crane",
}

// WriteArchive reconciles the archive's locomotives against the persisted
// vehicle rows in one transaction. Resolved locomotives are updated in place
// and their function rows diffed; unresolved ones are inserted at the end of
// the persisted ordering. Vehicle rows are never deleted here; see
// DeleteLocomotive.
func (d *DB) WriteArchive(ctx context.Context, archive *model.Archive) error {
	if !d.schema.HasTable("vehicles") {
		return ErrNoVehiclesTable
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, loco := range archive.Locomotives {
		vehicleID, err := d.resolveVehicle(ctx, tx, loco)
		if err != nil {
			return err
		}
		if vehicleID != 0 {
			if err := d.updateVehicle(ctx, tx, loco, vehicleID); err != nil {
				return err
			}
		} else {
			if err := d.insertVehicle(ctx, tx, loco); err != nil {
				return err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// resolveVehicle maps a locomotive to its persisted row id, or 0 when it
// must be inserted as new. The identity token is the only stable key;
// address and name are user-editable fallbacks for locomotives that lost it,
// and the first matching row wins when addresses collide.
func (d *DB) resolveVehicle(ctx context.Context, q querier, loco *model.Locomotive) (int64, error) {
	var id int64

	if loco.PersistedID != 0 {
		err := q.QueryRowContext(ctx,
			"SELECT id FROM vehicles WHERE id = ? AND type = 0",
			loco.PersistedID).Scan(&id)
		if err == nil {
			return id, nil
		}
		if err != sql.ErrNoRows {
			return 0, fmt.Errorf("failed to resolve vehicle by id: %w", err)
		}
	}

	err := q.QueryRowContext(ctx,
		"SELECT id FROM vehicles WHERE type = 0 AND address = ? ORDER BY id LIMIT 1",
		loco.Address).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to resolve vehicle by address: %w", err)
	}

	err = q.QueryRowContext(ctx,
		"SELECT id FROM vehicles WHERE type = 0 AND name = ? ORDER BY id LIMIT 1",
		loco.Name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to resolve vehicle by name: %w", err)
	}
	return 0, nil
}

func (d *DB) updateVehicle(ctx context.Context, q querier, loco *model.Locomotive, vehicleID int64) error {
	cols := d.schema.filterVehicleColumns(vehicleUpdateColumns)
	if d.schema.InStockSinceColumn != "" {
		cols = append(cols, d.schema.InStockSinceColumn)
	}

	args := make([]any, 0, len(cols)+1)
	for _, col := range cols {
		args = append(args, d.vehicleColumnValue(loco, col, 0))
	}
	args = append(args, vehicleID)

	query := "UPDATE vehicles SET " + cols.assignments() + " WHERE id = ?"
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update vehicle %d: %w", vehicleID, err)
	}

	loco.PersistedID = vehicleID
	return d.syncFunctions(ctx, q, loco, vehicleID)
}

// syncFunctions diffs the persisted function rows against the in-memory set:
// numbers present only in the database are deleted, the rest are updated or
// inserted by (vehicle, function number).
func (d *DB) syncFunctions(ctx context.Context, q querier, loco *model.Locomotive, vehicleID int64) error {
	if !d.schema.HasTable("functions") {
		return nil
	}

	rows, err := q.QueryContext(ctx, "SELECT function FROM functions WHERE vehicle_id = ?", vehicleID)
	if err != nil {
		return fmt.Errorf("failed to list function rows: %w", err)
	}
	existing := make(map[int]struct{})
	for rows.Next() {
		var num int
		if err := rows.Scan(&num); err != nil {
			_ = rows.Close()
			return err
		}
		existing[num] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for num := range existing {
		if _, ok := loco.Functions[num]; ok {
			continue
		}
		_, err := q.ExecContext(ctx,
			"DELETE FROM functions WHERE vehicle_id = ? AND function = ?",
			vehicleID, num)
		if err != nil {
			return fmt.Errorf("failed to delete function %d: %w", num, err)
		}
	}

	for _, num := range loco.FunctionNumbers() {
		fn := loco.Functions[num]
		if _, ok := existing[num]; ok {
			_, err := q.ExecContext(ctx, `
				UPDATE functions
				SET position = ?, shortcut = ?, time = ?,
				    image_name = ?, button_type = ?,
				    is_configured = 1, show_function_number = 1
				WHERE vehicle_id = ? AND function = ?
			`, fn.Position, fn.Shortcut, timedValue(fn), fn.ImageName, int(fn.ButtonType), vehicleID, num)
			if err != nil {
				return fmt.Errorf("failed to update function %d: %w", num, err)
			}
			continue
		}
		if err := d.insertFunction(ctx, q, vehicleID, fn); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) insertFunction(ctx context.Context, q querier, vehicleID int64, fn *model.FunctionInfo) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO functions
		(vehicle_id, function, position, shortcut, time,
		 image_name, button_type, is_configured, show_function_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, 1)
	`, vehicleID, fn.Number, fn.Position, fn.Shortcut, timedValue(fn), fn.ImageName, int(fn.ButtonType))
	if err != nil {
		return fmt.Errorf("failed to insert function %d: %w", fn.Number, err)
	}
	return nil
}

func (d *DB) insertVehicle(ctx context.Context, q querier, loco *model.Locomotive) error {
	// New locomotives always append at the end of the persisted ordering;
	// the in-memory list order is not pushed back as a new position scheme.
	var maxPos sql.NullInt64
	err := q.QueryRowContext(ctx,
		"SELECT MAX(position) FROM vehicles WHERE type = 0").Scan(&maxPos)
	if err != nil {
		return fmt.Errorf("failed to determine insert position: %w", err)
	}
	nextPosition := maxPos.Int64 + 1

	cols := d.schema.filterVehicleColumns(vehicleInsertColumns)
	if d.schema.InStockSinceColumn != "" {
		cols = append(cols, d.schema.InStockSinceColumn)
	}

	args := make([]any, 0, len(cols))
	for _, col := range cols {
		args = append(args, d.vehicleColumnValue(loco, col, nextPosition))
	}

	query := "INSERT INTO vehicles (" + cols.selectClause() + ") VALUES (" + cols.placeholders() + ")"
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert vehicle: %w", err)
	}
	vehicleID, err := result.LastInsertId()
	if err != nil {
		return err
	}
	loco.PersistedID = vehicleID

	if err := d.insertCategoryLinks(ctx, q, loco, vehicleID); err != nil {
		return err
	}
	if loco.RegulationStep != 0 && d.schema.HasTable("traction_list") {
		_, err := q.ExecContext(ctx,
			"INSERT INTO traction_list (loco_id, regulation_step, time) VALUES (?, ?, 0.0)",
			vehicleID, int(loco.RegulationStep))
		if err != nil {
			return fmt.Errorf("failed to insert traction row: %w", err)
		}
	}
	for _, num := range loco.FunctionNumbers() {
		if !d.schema.HasTable("functions") {
			break
		}
		if err := d.insertFunction(ctx, q, vehicleID, loco.Functions[num]); err != nil {
			return err
		}
	}
	return nil
}

// insertCategoryLinks links the locomotive to categories that already exist.
// Unknown category names are skipped, never auto-created.
func (d *DB) insertCategoryLinks(ctx context.Context, q querier, loco *model.Locomotive, vehicleID int64) error {
	if !d.schema.HasTable("categories") || !d.schema.HasTable("vehicles_to_categories") {
		return nil
	}
	for _, name := range loco.Categories {
		var categoryID int64
		err := q.QueryRowContext(ctx, "SELECT id FROM categories WHERE name = ?", name).Scan(&categoryID)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to look up category %q: %w", name, err)
		}
		_, err = q.ExecContext(ctx,
			"INSERT INTO vehicles_to_categories (vehicle_id, category_id) VALUES (?, ?)",
			vehicleID, categoryID)
		if err != nil {
			return fmt.Errorf("failed to link category %q: %w", name, err)
		}
	}
	return nil
}

// DeleteLocomotive removes the vehicle row and cascades its function,
// category-link and traction rows in one transaction. Returns ErrNotFound
// when no such vehicle row exists.
func (d *DB) DeleteLocomotive(ctx context.Context, vehicleID int64) error {
	if !d.schema.HasTable("vehicles") {
		return ErrNoVehiclesTable
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if d.schema.HasTable("functions") {
		if _, err := tx.ExecContext(ctx, "DELETE FROM functions WHERE vehicle_id = ?", vehicleID); err != nil {
			return fmt.Errorf("failed to delete functions: %w", err)
		}
	}
	if d.schema.HasTable("vehicles_to_categories") {
		if _, err := tx.ExecContext(ctx, "DELETE FROM vehicles_to_categories WHERE vehicle_id = ?", vehicleID); err != nil {
			return fmt.Errorf("failed to delete category links: %w", err)
		}
	}
	if d.schema.HasTable("traction_list") {
		if _, err := tx.ExecContext(ctx, "DELETE FROM traction_list WHERE loco_id = ?", vehicleID); err != nil {
			return fmt.Errorf("failed to delete traction rows: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM vehicles WHERE id = ?", vehicleID)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// vehicleColumnValue maps a vehicle column name to the locomotive field it
// persists. Empty descriptive strings persist as NULL, matching how the app
// stores unset fields.
func (d *DB) vehicleColumnValue(loco *model.Locomotive, col string, position int64) any {
	if col == d.schema.InStockSinceColumn && col != "" {
		return nullIfEmpty(loco.InStockSince)
	}
	switch col {
	case "type":
		return int(loco.VehicleType)
	case "name":
		return loco.Name
	case "address":
		return loco.Address
	case "max_speed":
		return loco.Speed
	case "active":
		return boolValue(loco.Active)
	case "traction_direction":
		return boolValue(loco.Direction)
	case "position":
		return position
	case "image_name":
		return nullIfEmpty(loco.ImageName)
	case "drivers_cab":
		return nullIfEmpty(loco.DriversCab)
	case "description":
		return nullIfEmpty(loco.Description)
	case "full_name":
		return nullIfEmpty(loco.FullName)
	case "railway":
		return nullIfEmpty(loco.Railway)
	case "article_number":
		return nullIfEmpty(loco.ArticleNumber)
	case "decoder_type":
		return nullIfEmpty(loco.DecoderType)
	case "build_year":
		return nullIfEmpty(loco.BuildYear)
	case "buffer_lenght":
		return nullIfEmpty(loco.BufferLength)
	case "model_buffer_lenght":
		return nullIfEmpty(loco.ModelBufferLength)
	case "service_weight":
		return nullIfEmpty(loco.ServiceWeight)
	case "model_weight":
		return nullIfEmpty(loco.ModelWeight)
	case "rmin":
		return nullIfEmpty(loco.RMin)
	case "ip":
		return nullIfEmpty(loco.IP)
	case "speed_display":
		return int(loco.SpeedDisplay)
	case "crane":
		return boolValue(loco.Crane)
	default:
		return nil
	}
}

// timedValue converts a function's duration to its persisted form: NULL for
// the "0" sentinel or anything unparsable, the parsed decimal otherwise.
func timedValue(fn *model.FunctionInfo) any {
	if fn.Time == "" || fn.Time == "0" {
		return nil
	}
	secs, err := strconv.ParseFloat(fn.Time, 64)
	if err != nil {
		return nil
	}
	return secs
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolValue(b bool) int {
	if b {
		return 1
	}
	return 0
}

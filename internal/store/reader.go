package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/modelrail/z21go/pkg/model"
)

// vehicleReadColumns is the full set of vehicle columns the model maps.
// Schemas that lack some of them simply leave the matching fields at their
// zero values. Note the misspelled buffer columns: that is the on-disk
// spelling.
var vehicleReadColumns = []string{
	"id", "type", "name", "address", "max_speed", "active",
	"traction_direction", "image_name", "drivers_cab", "description",
	"full_name", "railway", "article_number", "decoder_type", "build_year",
	"buffer_lenght", "model_buffer_lenght", "service_weight", "model_weight",
	"rmin", "ip", "speed_display", "crane",
}

// ReadArchive builds the in-memory model from the working database copy.
// Missing tables and columns degrade to empty collections and zero values.
func (d *DB) ReadArchive(ctx context.Context) (*model.Archive, error) {
	archive := model.NewArchive()

	if err := d.readVersion(ctx, archive); err != nil {
		return nil, err
	}
	if err := d.readVehicles(ctx, archive); err != nil {
		return nil, err
	}
	if err := d.readLayouts(ctx, archive); err != nil {
		return nil, err
	}
	return archive, nil
}

func (d *DB) readVersion(ctx context.Context, archive *model.Archive) error {
	// A drifted history table without the version column means no version,
	// not a failed read.
	if !d.schema.HasTable("update_history") || !d.schema.HasHistoryColumn("to_database_version") {
		return nil
	}
	var version sql.NullInt64
	err := d.db.QueryRowContext(ctx, "SELECT MAX(to_database_version) FROM update_history").Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version.Valid && version.Int64 != 0 {
		v := int(version.Int64)
		archive.Version = &v
	}
	return nil
}

func (d *DB) readVehicles(ctx context.Context, archive *model.Archive) error {
	if !d.schema.HasTable("vehicles") {
		return nil
	}

	cols := d.schema.filterVehicleColumns(vehicleReadColumns)
	if d.schema.InStockSinceColumn != "" {
		cols = append(cols, d.schema.InStockSinceColumn)
	}

	// The position ordering is significant: it determines the order of the
	// Locomotives list and must round-trip.
	query := "SELECT " + cols.selectClause() + " FROM vehicles ORDER BY position"
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to read vehicles: %w", err)
	}

	for rows.Next() {
		row, err := scanRowValues(rows, cols)
		if err != nil {
			_ = rows.Close()
			return err
		}
		vehicleType := model.RailVehicleType(row.integer("type"))
		if vehicleType != model.VehicleLocomotive {
			archive.Accessories = append(archive.Accessories, &model.Accessory{
				PersistedID: row.integer("id"),
				Address:     int(row.integer("address")),
				Name:        row.text("name"),
				Type:        vehicleType,
				State:       int(row.integer("active")),
			})
			continue
		}

		loco := model.NewLocomotive()
		loco.PersistedID = row.integer("id")
		loco.Address = int(row.integer("address"))
		loco.Name = row.text("name")
		loco.Speed = int(row.integer("max_speed"))
		loco.Direction = row.integer("traction_direction") == 1
		loco.ImageName = row.text("image_name")
		loco.FullName = row.text("full_name")
		loco.Railway = row.text("railway")
		loco.Description = row.text("description")
		loco.ArticleNumber = row.text("article_number")
		loco.DecoderType = row.text("decoder_type")
		loco.BuildYear = row.text("build_year")
		loco.BufferLength = row.text("buffer_lenght")
		loco.ModelBufferLength = row.text("model_buffer_lenght")
		loco.ServiceWeight = row.text("service_weight")
		loco.ModelWeight = row.text("model_weight")
		loco.RMin = row.text("rmin")
		loco.IP = row.text("ip")
		loco.DriversCab = row.text("drivers_cab")
		loco.Active = row.boolean("active", true)
		loco.SpeedDisplay = model.SpeedDisplay(row.integer("speed_display"))
		loco.VehicleType = vehicleType
		loco.Crane = row.boolean("crane", false)
		if d.schema.InStockSinceColumn != "" {
			loco.InStockSince = row.text(d.schema.InStockSinceColumn)
		}
		archive.Locomotives = append(archive.Locomotives, loco)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// The pool holds a single connection, so the cursor must be released
	// before the per-locomotive queries below can run.
	if err := rows.Close(); err != nil {
		return err
	}

	for _, loco := range archive.Locomotives {
		if err := d.readCategories(ctx, loco); err != nil {
			return err
		}
		if err := d.readRegulationStep(ctx, loco); err != nil {
			return err
		}
		if err := d.readFunctions(ctx, loco); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) readCategories(ctx context.Context, loco *model.Locomotive) error {
	if !d.schema.HasTable("categories") || !d.schema.HasTable("vehicles_to_categories") {
		return nil
	}
	// Association rowid order is the category order the app shows.
	rows, err := d.db.QueryContext(ctx, `
		SELECT c.name
		FROM categories c
		INNER JOIN vehicles_to_categories vtc ON c.id = vtc.category_id
		WHERE vtc.vehicle_id = ?
		ORDER BY vtc.rowid
	`, loco.PersistedID)
	if err != nil {
		return fmt.Errorf("failed to read categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			return err
		}
		if name.Valid && name.String != "" {
			loco.Categories = append(loco.Categories, name.String)
		}
	}
	return rows.Err()
}

func (d *DB) readRegulationStep(ctx context.Context, loco *model.Locomotive) error {
	if !d.schema.HasTable("traction_list") {
		return nil
	}
	// Multiple rows can exist per locomotive; the smallest regulation_step
	// wins. This is a tie-break, not an aggregate.
	var step sql.NullInt64
	err := d.db.QueryRowContext(ctx, `
		SELECT regulation_step
		FROM traction_list
		WHERE loco_id = ?
		ORDER BY regulation_step
		LIMIT 1
	`, loco.PersistedID).Scan(&step)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read regulation step: %w", err)
	}
	if step.Valid {
		loco.RegulationStep = model.RegulationStep(step.Int64)
	}
	return nil
}

func (d *DB) readFunctions(ctx context.Context, loco *model.Locomotive) error {
	if !d.schema.HasTable("functions") {
		return nil
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT function, position, shortcut, time, image_name, button_type
		FROM functions
		WHERE vehicle_id = ?
		ORDER BY position
	`, loco.PersistedID)
	if err != nil {
		return fmt.Errorf("failed to read functions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			number     sql.NullInt64
			position   sql.NullInt64
			shortcut   sql.NullString
			timeValue  sql.NullString
			imageName  sql.NullString
			buttonType sql.NullInt64
		)
		if err := rows.Scan(&number, &position, &shortcut, &timeValue, &imageName, &buttonType); err != nil {
			return err
		}

		fn := model.NewFunctionInfo(int(number.Int64))
		fn.Position = int(position.Int64)
		fn.Shortcut = shortcut.String
		fn.ImageName = imageName.String
		fn.ButtonType = model.ButtonType(buttonType.Int64)
		if timeValue.Valid && timeValue.String != "" {
			fn.Time = timeValue.String
		}
		// Presence of the row is what makes the function active.
		fn.Active = true

		if err := loco.SetFunction(fn); err != nil {
			return fmt.Errorf("invalid function row %d: %w", number.Int64, err)
		}
	}
	return rows.Err()
}

func (d *DB) readLayouts(ctx context.Context, archive *model.Archive) error {
	if !d.schema.HasTable("layout_data") {
		return nil
	}
	rows, err := d.db.QueryContext(ctx, "SELECT id, name FROM layout_data")
	if err != nil {
		return fmt.Errorf("failed to read layouts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			id   sql.NullInt64
			name sql.NullString
		)
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		archive.Layouts = append(archive.Layouts, &model.Layout{Name: name.String})
	}
	return rows.Err()
}

// rowValues pairs a scanned row with its column list so fields are accessed
// by name, never by physical position.
type rowValues struct {
	cols columnList
	vals []any
}

func scanRowValues(rows *sql.Rows, cols columnList) (rowValues, error) {
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return rowValues{}, err
	}
	return rowValues{cols: cols, vals: vals}, nil
}

// text returns the named column as a string; NULL, absent columns and
// non-text values map to "".
func (r rowValues) text(name string) string {
	i := r.cols.index(name)
	if i < 0 {
		return ""
	}
	switch v := r.vals[i].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// integer returns the named column as an int64; NULL and absent columns map
// to 0.
func (r rowValues) integer(name string) int64 {
	i := r.cols.index(name)
	if i < 0 {
		return 0
	}
	switch v := r.vals[i].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// boolean returns the named column as a bool, with def covering NULL and
// absent columns.
func (r rowValues) boolean(name string, def bool) bool {
	i := r.cols.index(name)
	if i < 0 || r.vals[i] == nil {
		return def
	}
	return r.integer(name) != 0
}

package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelrail/z21go/pkg/model"
)

// fixtureDDL mirrors the app's database layout, misspelled buffer columns
// included. The in-stock-since column name is injected per test.
func fixtureDDL(inStockCol string) []string {
	vehicles := `CREATE TABLE vehicles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type INTEGER,
		name TEXT,
		address INTEGER,
		max_speed INTEGER,
		active INTEGER,
		position INTEGER,
		traction_direction INTEGER,
		image_name TEXT,
		drivers_cab TEXT,
		description TEXT,
		full_name TEXT,
		railway TEXT,
		article_number TEXT,
		decoder_type TEXT,
		build_year TEXT,
		buffer_lenght TEXT,
		model_buffer_lenght TEXT,
		service_weight TEXT,
		model_weight TEXT,
		rmin TEXT,
		ip TEXT,
		speed_display INTEGER,
		crane INTEGER`
	if inStockCol != "" {
		vehicles += ",\n\t\t" + inStockCol + " TEXT"
	}
	vehicles += ")"

	return []string{
		vehicles,
		`CREATE TABLE functions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			vehicle_id INTEGER,
			function INTEGER,
			position INTEGER,
			shortcut TEXT,
			time REAL,
			image_name TEXT,
			button_type INTEGER,
			is_configured INTEGER,
			show_function_number INTEGER)`,
		`CREATE TABLE categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT)`,
		`CREATE TABLE vehicles_to_categories (
			vehicle_id INTEGER,
			category_id INTEGER)`,
		`CREATE TABLE traction_list (
			loco_id INTEGER,
			regulation_step INTEGER,
			time REAL)`,
		`CREATE TABLE update_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			from_database_version INTEGER,
			to_database_version INTEGER)`,
		`CREATE TABLE layout_data (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT)`,
	}
}

// newFixtureDB creates a database file with the full app schema and returns
// its path together with a raw handle for seeding.
func newFixtureDB(t *testing.T, inStockCol string) (string, *sql.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Loco.sqlite")
	raw, err := sql.Open(DriverName, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	raw.SetMaxOpenConns(1)

	for _, ddl := range fixtureDDL(inStockCol) {
		_, err := raw.Exec(ddl)
		require.NoError(t, err)
	}
	return path, raw
}

func seedLocomotive(t *testing.T, raw *sql.DB, name string, address, position int) int64 {
	t.Helper()
	result, err := raw.Exec(`
		INSERT INTO vehicles (type, name, address, max_speed, active, position, traction_direction, speed_display, crane)
		VALUES (0, ?, ?, 120, 1, ?, 1, 0, 0)`,
		name, address, position)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func openFixture(t *testing.T, path string) *DB {
	t.Helper()
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenSchemaProbes(t *testing.T) {
	tests := []struct {
		name       string
		inStockCol string
		want       string
	}{
		{"modern name", "in_stock_since", "in_stock_since"},
		{"camel case variant", "inStockSince", "inStockSince"},
		{"date suffix variant", "in_stock_since_date", "in_stock_since_date"},
		{"no variant", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, _ := newFixtureDB(t, tt.inStockCol)
			db := openFixture(t, path)

			assert.Equal(t, tt.want, db.Schema().InStockSinceColumn)
			assert.True(t, db.Schema().HasTable("vehicles"))
			assert.True(t, db.Schema().HasVehicleColumn("buffer_lenght"))
			assert.False(t, db.Schema().HasVehicleColumn("buffer_length"))
		})
	}
}

func TestReadArchive(t *testing.T) {
	path, raw := newFixtureDB(t, "in_stock_since")

	_, err := raw.Exec(`
		INSERT INTO vehicles
		(type, name, address, max_speed, active, position, traction_direction,
		 image_name, full_name, railway, buffer_lenght, speed_display, crane, in_stock_since)
		VALUES (0, 'BR 212', 3, 100, 1, 2, 1, 'br212.png', 'BR 212 297-6', 'DB', '57', 1, 0, '2021-05-01')`)
	require.NoError(t, err)
	_, err = raw.Exec(`
		INSERT INTO vehicles (type, name, address, max_speed, active, position, traction_direction, speed_display, crane)
		VALUES (0, 'ICE 4', 12, 265, 0, 1, 0, 2, 1)`)
	require.NoError(t, err)
	// A turnout shares the table but not the locomotive list.
	_, err = raw.Exec(`
		INSERT INTO vehicles (type, name, address, active, position)
		VALUES (1, 'Yard turnout', 7, 1, 3)`)
	require.NoError(t, err)

	_, err = raw.Exec(`INSERT INTO functions (vehicle_id, function, position, shortcut, time, image_name, button_type, is_configured, show_function_number)
		VALUES (1, 0, 0, 'L', NULL, 'light', 0, 1, 1)`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO functions (vehicle_id, function, position, shortcut, time, image_name, button_type, is_configured, show_function_number)
		VALUES (1, 3, 1, 'H', 2.5, 'horn_high', 2, 1, 1)`)
	require.NoError(t, err)

	_, err = raw.Exec(`INSERT INTO categories (name) VALUES ('Diesel'), ('Mainline')`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO vehicles_to_categories (vehicle_id, category_id) VALUES (1, 2), (1, 1)`)
	require.NoError(t, err)

	_, err = raw.Exec(`INSERT INTO traction_list (loco_id, regulation_step, time) VALUES (1, 1, 0.0), (1, 0, 0.0)`)
	require.NoError(t, err)

	_, err = raw.Exec(`INSERT INTO update_history (from_database_version, to_database_version) VALUES (1, 2), (2, 3)`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO layout_data (name) VALUES ('Main layout')`)
	require.NoError(t, err)

	db := openFixture(t, path)
	archive, err := db.ReadArchive(context.Background())
	require.NoError(t, err)

	require.NotNil(t, archive.Version)
	assert.Equal(t, 3, *archive.Version)

	// Position ordering, not insertion ordering.
	require.Len(t, archive.Locomotives, 2)
	assert.Equal(t, "ICE 4", archive.Locomotives[0].Name)
	assert.Equal(t, "BR 212", archive.Locomotives[1].Name)

	ice := archive.Locomotives[0]
	assert.False(t, ice.Active)
	assert.False(t, ice.Direction)
	assert.True(t, ice.Crane)
	assert.Equal(t, model.SpeedDisplayMPH, ice.SpeedDisplay)

	br212 := archive.Locomotives[1]
	assert.Equal(t, int64(1), br212.PersistedID)
	assert.Equal(t, 3, br212.Address)
	assert.Equal(t, 100, br212.Speed)
	assert.Equal(t, "BR 212 297-6", br212.FullName)
	assert.Equal(t, "57", br212.BufferLength)
	assert.Equal(t, "2021-05-01", br212.InStockSince)
	assert.Equal(t, model.RegulationSteps128, br212.RegulationStep)
	assert.Equal(t, []string{"Mainline", "Diesel"}, br212.Categories)

	require.Len(t, br212.Functions, 2)
	assert.Equal(t, "0", br212.Functions[0].Time)
	assert.Equal(t, "2.5", br212.Functions[3].Time)
	assert.Equal(t, model.ButtonTime, br212.Functions[3].ButtonType)
	assert.True(t, br212.Functions[3].Active)
	secs, ok := br212.Functions[3].TimedSeconds()
	assert.True(t, ok)
	assert.Equal(t, 2.5, secs)

	require.Len(t, archive.Accessories, 1)
	assert.Equal(t, "Yard turnout", archive.Accessories[0].Name)

	require.Len(t, archive.Layouts, 1)
	assert.Equal(t, "Main layout", archive.Layouts[0].Name)
}

func TestReadArchive_ManyLocomotivesWithChildren(t *testing.T) {
	path, raw := newFixtureDB(t, "in_stock_since")

	// Several locomotives, each with function and category rows: the child
	// queries run while the vehicle result set has already been consumed,
	// all on the store's single pooled connection.
	names := []string{"BR 212", "ICE 4", "E 103"}
	for i, name := range names {
		id := seedLocomotive(t, raw, name, i+1, i+1)
		for fnum := 0; fnum <= i; fnum++ {
			_, err := raw.Exec(`INSERT INTO functions (vehicle_id, function, position, is_configured, show_function_number)
				VALUES (?, ?, ?, 1, 1)`, id, fnum, fnum)
			require.NoError(t, err)
		}
		_, err := raw.Exec(`INSERT INTO traction_list (loco_id, regulation_step, time) VALUES (?, 1, 0.0)`, id)
		require.NoError(t, err)
	}
	_, err := raw.Exec(`INSERT INTO categories (name) VALUES ('Diesel'), ('Electric')`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO vehicles_to_categories (vehicle_id, category_id) VALUES (1, 1), (2, 2), (3, 2)`)
	require.NoError(t, err)

	db := openFixture(t, path)
	archive, err := db.ReadArchive(context.Background())
	require.NoError(t, err)

	require.Len(t, archive.Locomotives, 3)
	for i, loco := range archive.Locomotives {
		assert.Equal(t, names[i], loco.Name)
		assert.Len(t, loco.Functions, i+1)
		assert.Len(t, loco.Categories, 1)
		assert.Equal(t, model.RegulationSteps28, loco.RegulationStep)
	}
	assert.Equal(t, []string{"Diesel"}, archive.Locomotives[0].Categories)
	assert.Equal(t, []string{"Electric"}, archive.Locomotives[2].Categories)
}

func TestReadArchive_DriftedHistoryTable(t *testing.T) {
	path, raw := newFixtureDB(t, "")
	seedLocomotive(t, raw, "BR 212", 3, 1)

	// An update_history table without the version column must degrade to an
	// absent version, not fail the read.
	_, err := raw.Exec("DROP TABLE update_history")
	require.NoError(t, err)
	_, err = raw.Exec("CREATE TABLE update_history (id INTEGER PRIMARY KEY AUTOINCREMENT, note TEXT)")
	require.NoError(t, err)
	_, err = raw.Exec("INSERT INTO update_history (note) VALUES ('migrated')")
	require.NoError(t, err)

	db := openFixture(t, path)
	assert.True(t, db.Schema().HasTable("update_history"))
	assert.False(t, db.Schema().HasHistoryColumn("to_database_version"))

	archive, err := db.ReadArchive(context.Background())
	require.NoError(t, err)
	assert.Nil(t, archive.Version)
	require.Len(t, archive.Locomotives, 1)
	assert.Equal(t, "BR 212", archive.Locomotives[0].Name)
}

func TestReadArchive_NoVersionRows(t *testing.T) {
	path, _ := newFixtureDB(t, "")
	db := openFixture(t, path)

	archive, err := db.ReadArchive(context.Background())
	require.NoError(t, err)
	assert.Nil(t, archive.Version)
	assert.Empty(t, archive.Locomotives)
}

func TestWriteArchive_Update(t *testing.T) {
	path, raw := newFixtureDB(t, "in_stock_since")
	id := seedLocomotive(t, raw, "BR 212", 3, 1)

	db := openFixture(t, path)
	ctx := context.Background()

	archive, err := db.ReadArchive(ctx)
	require.NoError(t, err)
	loco := archive.Locomotives[0]
	loco.Name = "BR 212 (weathered)"
	loco.Speed = 90
	loco.Description = "Sound decoder"
	loco.InStockSince = "2022-01-15"

	require.NoError(t, db.WriteArchive(ctx, archive))
	assert.Equal(t, id, loco.PersistedID)

	reread, err := db.ReadArchive(ctx)
	require.NoError(t, err)
	got := reread.Locomotives[0]
	assert.Equal(t, "BR 212 (weathered)", got.Name)
	assert.Equal(t, 90, got.Speed)
	assert.Equal(t, "Sound decoder", got.Description)
	assert.Equal(t, "2022-01-15", got.InStockSince)
	assert.Equal(t, id, got.PersistedID)
}

func TestWriteArchive_EmptyStringsPersistAsNull(t *testing.T) {
	path, raw := newFixtureDB(t, "in_stock_since")
	id := seedLocomotive(t, raw, "BR 212", 3, 1)
	_, err := raw.Exec("UPDATE vehicles SET railway = 'DB' WHERE id = ?", id)
	require.NoError(t, err)

	db := openFixture(t, path)
	ctx := context.Background()

	archive, err := db.ReadArchive(ctx)
	require.NoError(t, err)
	archive.Locomotives[0].Railway = ""
	require.NoError(t, db.WriteArchive(ctx, archive))

	var railway sql.NullString
	require.NoError(t, raw.QueryRow("SELECT railway FROM vehicles WHERE id = ?", id).Scan(&railway))
	assert.False(t, railway.Valid)
}

func TestResolveVehicle_Cascade(t *testing.T) {
	path, raw := newFixtureDB(t, "")
	first := seedLocomotive(t, raw, "BR 212", 3, 1)
	second := seedLocomotive(t, raw, "E 103", 5, 2)
	// A turnout with a colliding address must never resolve.
	_, err := raw.Exec(`INSERT INTO vehicles (type, name, address, position) VALUES (1, 'Turnout 3', 3, 3)`)
	require.NoError(t, err)

	db := openFixture(t, path)
	ctx := context.Background()

	t.Run("persisted id wins", func(t *testing.T) {
		loco := model.NewLocomotive()
		loco.PersistedID = second
		loco.Address = 3 // stale address pointing at the other row
		id, err := db.resolveVehicle(ctx, db.db, loco)
		require.NoError(t, err)
		assert.Equal(t, second, id)
	})

	t.Run("stale id falls back to address", func(t *testing.T) {
		loco := model.NewLocomotive()
		loco.PersistedID = 999
		loco.Address = 3
		id, err := db.resolveVehicle(ctx, db.db, loco)
		require.NoError(t, err)
		assert.Equal(t, first, id)
	})

	t.Run("address then name", func(t *testing.T) {
		loco := model.NewLocomotive()
		loco.Address = 42
		loco.Name = "E 103"
		id, err := db.resolveVehicle(ctx, db.db, loco)
		require.NoError(t, err)
		assert.Equal(t, second, id)
	})

	t.Run("nothing matches", func(t *testing.T) {
		loco := model.NewLocomotive()
		loco.Address = 42
		loco.Name = "V 100"
		id, err := db.resolveVehicle(ctx, db.db, loco)
		require.NoError(t, err)
		assert.Zero(t, id)
	})

	t.Run("duplicate addresses resolve to lowest id", func(t *testing.T) {
		dup := seedLocomotive(t, raw, "BR 212 twin", 3, 4)
		require.Greater(t, dup, first)

		loco := model.NewLocomotive()
		loco.Address = 3
		id, err := db.resolveVehicle(ctx, db.db, loco)
		require.NoError(t, err)
		assert.Equal(t, first, id)
	})
}

func TestWriteArchive_FunctionDiff(t *testing.T) {
	path, raw := newFixtureDB(t, "")
	id := seedLocomotive(t, raw, "BR 212", 3, 1)
	for _, num := range []int{0, 3, 5} {
		_, err := raw.Exec(`INSERT INTO functions (vehicle_id, function, position, is_configured, show_function_number)
			VALUES (?, ?, ?, 1, 1)`, id, num, num)
		require.NoError(t, err)
	}

	db := openFixture(t, path)
	ctx := context.Background()

	archive, err := db.ReadArchive(ctx)
	require.NoError(t, err)
	loco := archive.Locomotives[0]
	loco.RemoveFunction(3)
	f7 := model.NewFunctionInfo(7)
	f7.Time = "1.5"
	f7.ButtonType = model.ButtonTime
	require.NoError(t, loco.SetFunction(f7))
	loco.Functions[5].Shortcut = "W"

	require.NoError(t, db.WriteArchive(ctx, archive))

	reread, err := db.ReadArchive(ctx)
	require.NoError(t, err)
	got := reread.Locomotives[0]
	assert.ElementsMatch(t, []int{0, 5, 7}, got.FunctionNumbers())
	assert.Equal(t, "W", got.Functions[5].Shortcut)
	assert.Equal(t, "1.5", got.Functions[7].Time)

	// The surviving rows were updated, not recreated.
	var count int
	require.NoError(t, raw.QueryRow("SELECT COUNT(*) FROM functions WHERE vehicle_id = ?", id).Scan(&count))
	assert.Equal(t, 3, count)
}

func TestWriteArchive_InsertNew(t *testing.T) {
	path, raw := newFixtureDB(t, "")
	seedLocomotive(t, raw, "BR 212", 3, 5)
	_, err := raw.Exec(`INSERT INTO categories (name) VALUES ('Diesel')`)
	require.NoError(t, err)

	db := openFixture(t, path)
	ctx := context.Background()

	archive, err := db.ReadArchive(ctx)
	require.NoError(t, err)

	loco := model.NewLocomotive()
	loco.Name = "V 100"
	loco.Address = 8
	loco.Speed = 90
	loco.RegulationStep = model.RegulationSteps28
	loco.Categories = []string{"Diesel", "Never created"}
	require.NoError(t, loco.SetFunction(model.NewFunctionInfo(0)))
	archive.Locomotives = append(archive.Locomotives, loco)

	require.NoError(t, db.WriteArchive(ctx, archive))
	require.NotZero(t, loco.PersistedID)

	// Appended after the existing maximum position.
	var position int64
	require.NoError(t, raw.QueryRow("SELECT position FROM vehicles WHERE id = ?", loco.PersistedID).Scan(&position))
	assert.Equal(t, int64(6), position)

	var tractionStep int64
	require.NoError(t, raw.QueryRow("SELECT regulation_step FROM traction_list WHERE loco_id = ?", loco.PersistedID).Scan(&tractionStep))
	assert.Equal(t, int64(1), tractionStep)

	// Only the existing category got linked.
	var links int
	require.NoError(t, raw.QueryRow("SELECT COUNT(*) FROM vehicles_to_categories WHERE vehicle_id = ?", loco.PersistedID).Scan(&links))
	assert.Equal(t, 1, links)

	reread, err := db.ReadArchive(ctx)
	require.NoError(t, err)
	require.Len(t, reread.Locomotives, 2)
	assert.Equal(t, "V 100", reread.Locomotives[1].Name)
	assert.Equal(t, []string{"Diesel"}, reread.Locomotives[1].Categories)
}

func TestDeleteLocomotive(t *testing.T) {
	path, raw := newFixtureDB(t, "")
	id := seedLocomotive(t, raw, "BR 212", 3, 1)
	_, err := raw.Exec(`INSERT INTO functions (vehicle_id, function, is_configured, show_function_number) VALUES (?, 0, 1, 1)`, id)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO traction_list (loco_id, regulation_step, time) VALUES (?, 1, 0.0)`, id)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO categories (name) VALUES ('Diesel')`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO vehicles_to_categories (vehicle_id, category_id) VALUES (?, 1)`, id)
	require.NoError(t, err)

	db := openFixture(t, path)
	ctx := context.Background()

	require.NoError(t, db.DeleteLocomotive(ctx, id))

	for _, q := range []string{
		"SELECT COUNT(*) FROM vehicles WHERE id = ?",
		"SELECT COUNT(*) FROM functions WHERE vehicle_id = ?",
		"SELECT COUNT(*) FROM traction_list WHERE loco_id = ?",
		"SELECT COUNT(*) FROM vehicles_to_categories WHERE vehicle_id = ?",
	} {
		var count int
		require.NoError(t, raw.QueryRow(q, id).Scan(&count))
		assert.Zero(t, count, q)
	}

	// The category itself survives.
	var categories int
	require.NoError(t, raw.QueryRow("SELECT COUNT(*) FROM categories").Scan(&categories))
	assert.Equal(t, 1, categories)

	assert.ErrorIs(t, db.DeleteLocomotive(ctx, id), ErrNotFound)
}

func TestExportLocomotive_Persisted(t *testing.T) {
	path, raw := newFixtureDB(t, "in_stock_since")
	id := seedLocomotive(t, raw, "BR 212", 3, 1)
	keep := seedLocomotive(t, raw, "ICE 4", 12, 2)
	_, err := raw.Exec(`INSERT INTO functions (vehicle_id, function, position, time, is_configured, show_function_number)
		VALUES (?, 0, 0, NULL, 1, 1), (?, 3, 1, 2.5, 1, 1)`, id, id)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO categories (name) VALUES ('Diesel')`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO vehicles_to_categories (vehicle_id, category_id) VALUES (?, 1)`, id)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO update_history (from_database_version, to_database_version) VALUES (1, 3)`)
	require.NoError(t, err)

	db := openFixture(t, path)
	ctx := context.Background()

	loco := model.NewLocomotive()
	loco.PersistedID = id
	destPath := filepath.Join(t.TempDir(), "Loco.sqlite")
	require.NoError(t, db.ExportLocomotive(ctx, loco, destPath))

	// The consuming app checks this header marker before opening the file.
	data, err := os.ReadFile(destPath)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), 64)
	assert.Equal(t, []byte{0, 0, 0, 16}, data[60:64])

	exported := openFixture(t, destPath)
	got, err := exported.ReadArchive(ctx)
	require.NoError(t, err)

	require.Len(t, got.Locomotives, 1)
	assert.Equal(t, "BR 212", got.Locomotives[0].Name)
	assert.ElementsMatch(t, []int{0, 3}, got.Locomotives[0].FunctionNumbers())
	assert.Equal(t, "2.5", got.Locomotives[0].Functions[3].Time)
	assert.Equal(t, []string{"Diesel"}, got.Locomotives[0].Categories)
	require.NotNil(t, got.Version)
	assert.Equal(t, 3, *got.Version)

	_ = keep // the other locomotive must not travel
}

func TestExportLocomotive_FromModel(t *testing.T) {
	path, raw := newFixtureDB(t, "in_stock_since")
	seedLocomotive(t, raw, "Template", 1, 1)

	db := openFixture(t, path)
	ctx := context.Background()

	loco := model.NewLocomotive()
	loco.Name = "V 100"
	loco.Address = 8
	loco.Speed = 90
	require.NoError(t, loco.SetFunction(model.NewFunctionInfo(2)))

	destPath := filepath.Join(t.TempDir(), "Loco.sqlite")
	require.NoError(t, db.ExportLocomotive(ctx, loco, destPath))

	exported := openFixture(t, destPath)
	got, err := exported.ReadArchive(ctx)
	require.NoError(t, err)

	require.Len(t, got.Locomotives, 1)
	assert.Equal(t, "V 100", got.Locomotives[0].Name)
	assert.Equal(t, 8, got.Locomotives[0].Address)
	assert.ElementsMatch(t, []int{2}, got.Locomotives[0].FunctionNumbers())
}

func TestExportLocomotive_NoTemplateRow(t *testing.T) {
	path, _ := newFixtureDB(t, "")
	db := openFixture(t, path)

	loco := model.NewLocomotive()
	loco.Name = "V 100"

	destPath := filepath.Join(t.TempDir(), "Loco.sqlite")
	err := db.ExportLocomotive(context.Background(), loco, destPath)
	assert.ErrorIs(t, err, ErrNoTemplateRow)
}

func TestTimedValue(t *testing.T) {
	fn := model.NewFunctionInfo(3)
	assert.Nil(t, timedValue(fn), "sentinel persists as NULL")

	fn.Time = ""
	assert.Nil(t, timedValue(fn))

	fn.Time = "not a number"
	assert.Nil(t, timedValue(fn))

	fn.Time = "2.5"
	assert.Equal(t, 2.5, timedValue(fn))
}

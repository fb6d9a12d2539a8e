package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/modelrail/z21go/internal/container"
	"github.com/modelrail/z21go/internal/store"
	"github.com/modelrail/z21go/pkg/model"
)

// Export produces a .z21loco sub-archive at destPath carrying the single
// locomotive: an export/<UUID>/ directory with a freshly built Loco.sqlite
// (encoding marker set for the consuming app) and the locomotive's image
// when the source archive has one.
func (e *Engine) Export(ctx context.Context, srcPath string, loco *model.Locomotive, destPath string) error {
	c, err := container.Inspect(srcPath)
	if err != nil {
		return err
	}
	if c.Format() != container.FormatSQLite {
		return ErrUnsupportedWrite
	}

	scratch, err := c.ExtractMember(c.DataMember(), e.scratchDir)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(scratch) }()

	db, err := store.Open(scratch)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	workDir, err := os.MkdirTemp(e.scratchDir, "z21-export-")
	if err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	exportDB := filepath.Join(workDir, "Loco.sqlite")
	if err := db.ExportLocomotive(ctx, loco, exportDB); err != nil {
		return err
	}

	// The app reads exports from an export/<UUID>/ directory.
	exportDir := "export/" + strings.ToUpper(uuid.NewString())

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create export archive: %w", err)
	}
	zw := zip.NewWriter(out)
	cleanup := func() {
		_ = zw.Close()
		_ = out.Close()
		_ = os.Remove(destPath)
	}

	dbBytes, err := os.ReadFile(exportDB)
	if err != nil {
		cleanup()
		return fmt.Errorf("failed to read export database: %w", err)
	}
	w, err := zw.Create(exportDir + "/Loco.sqlite")
	if err != nil {
		cleanup()
		return fmt.Errorf("failed to write export database member: %w", err)
	}
	if _, err := w.Write(dbBytes); err != nil {
		cleanup()
		return fmt.Errorf("failed to write export database member: %w", err)
	}

	if member, ok := c.FindImage(loco.ImageName, fmt.Sprintf("lok_%d.png", loco.Address)); ok {
		img, err := c.ReadMember(member)
		if err != nil {
			cleanup()
			return err
		}
		w, err := zw.Create(exportDir + "/" + filepath.Base(member))
		if err != nil {
			cleanup()
			return fmt.Errorf("failed to write image member: %w", err)
		}
		if _, err := w.Write(img); err != nil {
			cleanup()
			return fmt.Errorf("failed to write image member: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		_ = out.Close()
		_ = os.Remove(destPath)
		return fmt.Errorf("failed to finalize export archive: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(destPath)
		return fmt.Errorf("failed to close export archive: %w", err)
	}
	return nil
}

package archive

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/modelrail/z21go/internal/container"
	"github.com/modelrail/z21go/internal/legacyxml"
	"github.com/modelrail/z21go/internal/store"
	"github.com/modelrail/z21go/pkg/model"
)

var (
	// ErrUnsupportedWrite is returned when a write targets an archive
	// whose format the engine cannot produce (legacy XML, raw blobs,
	// archives without a data member).
	ErrUnsupportedWrite = errors.New("archive format does not support writing")
)

// Engine is the archive persistence engine. The zero value uses the OS temp
// directory for scratch files.
type Engine struct {
	scratchDir string
}

// New returns an engine that keeps its scratch files under scratchDir ("" =
// OS temp directory).
func New(scratchDir string) *Engine {
	return &Engine{scratchDir: scratchDir}
}

// Open reads the archive at path into a fresh model.
//
// A file that is not a ZIP archive degrades to an archive holding one
// UnknownBlock spanning the whole file; a ZIP without a recognized data
// member yields an archive with empty collections. Neither is an error.
func (e *Engine) Open(ctx context.Context, path string) (*model.Archive, error) {
	c, err := container.Inspect(path)
	if err != nil {
		return nil, err
	}

	switch c.Format() {
	case container.FormatRaw:
		data, err := c.ReadRaw()
		if err != nil {
			return nil, err
		}
		archive := model.NewArchive()
		archive.UnknownBlocks = append(archive.UnknownBlocks, model.UnknownBlock{
			Offset: 0,
			Length: int64(len(data)),
			Data:   data,
		})
		return archive, nil

	case container.FormatEmpty:
		return model.NewArchive(), nil

	case container.FormatXML:
		data, err := c.ReadMember(c.DataMember())
		if err != nil {
			return nil, err
		}
		archive := model.NewArchive()
		legacyxml.Read(data, archive)
		return archive, nil

	case container.FormatSQLite:
		return e.openSQLite(ctx, c)

	default:
		return nil, fmt.Errorf("unhandled archive format %d", c.Format())
	}
}

func (e *Engine) openSQLite(ctx context.Context, c *container.Container) (*model.Archive, error) {
	scratch, err := c.ExtractMember(c.DataMember(), e.scratchDir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(scratch) }()

	db, err := store.Open(scratch)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	return db.ReadArchive(ctx)
}

// Write persists the archive's locomotives back into the container at
// srcPath and returns the path actually written. destPath selects a
// different output file; when empty the source archive is atomically
// replaced. The original archive is untouched on any failure.
func (e *Engine) Write(ctx context.Context, archive *model.Archive, srcPath, destPath string) (string, error) {
	return e.rewrite(srcPath, destPath, func(db *store.DB) error {
		return db.WriteArchive(ctx, archive)
	})
}

// DeleteLocomotive removes the persisted vehicle row (and its child rows)
// from the archive at srcPath, rebuilding the archive in place.
func (e *Engine) DeleteLocomotive(ctx context.Context, srcPath string, persistedID int64) (string, error) {
	return e.rewrite(srcPath, "", func(db *store.DB) error {
		return db.DeleteLocomotive(ctx, persistedID)
	})
}

// rewrite runs mutate against a scratch copy of the embedded database, then
// rebuilds the container with the updated database bytes.
func (e *Engine) rewrite(srcPath, destPath string, mutate func(*store.DB) error) (string, error) {
	c, err := container.Inspect(srcPath)
	if err != nil {
		return "", err
	}
	if c.Format() != container.FormatSQLite {
		return "", ErrUnsupportedWrite
	}

	scratch, err := c.ExtractMember(c.DataMember(), e.scratchDir)
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(scratch) }()

	db, err := store.Open(scratch)
	if err != nil {
		return "", err
	}
	if err := mutate(db); err != nil {
		_ = db.Close()
		return "", err
	}
	if err := db.Close(); err != nil {
		return "", fmt.Errorf("failed to close working database: %w", err)
	}

	updated, err := os.ReadFile(scratch)
	if err != nil {
		return "", fmt.Errorf("failed to read working database: %w", err)
	}
	return c.Rebuild(updated, destPath)
}

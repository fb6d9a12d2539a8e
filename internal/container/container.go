package container

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format classifies what Inspect found inside (or instead of) a ZIP archive.
type Format int

const (
	// FormatRaw means the file is not a valid ZIP archive at all.
	FormatRaw Format = iota
	// FormatEmpty means a valid ZIP with no recognized data member.
	FormatEmpty
	// FormatSQLite means the archive embeds a .sqlite database.
	FormatSQLite
	// FormatXML means the archive embeds a legacy .xml document.
	FormatXML
)

var (
	// ErrNoMember is returned when a requested member does not exist.
	ErrNoMember = errors.New("archive member not found")
)

// Container describes one archive on disk. It holds no open handles; every
// operation opens and closes the file within its own call.
type Container struct {
	path       string
	format     Format
	dataMember string
	members    []string
}

// Inspect opens the file at path and determines its format. A file that is
// not a ZIP archive is classified FormatRaw, not treated as an error; only
// I/O failures (missing file, unreadable file) are errors.
func Inspect(path string) (*Container, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	c := &Container{path: path, format: FormatRaw}

	zr, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	c.format = FormatEmpty
	for _, f := range zr.File {
		c.members = append(c.members, f.Name)
	}

	// SQLite is the newer format, so it wins when both are present.
	for _, name := range c.members {
		if strings.HasSuffix(name, ".sqlite") {
			c.format = FormatSQLite
			c.dataMember = name
			return c, nil
		}
	}
	for _, name := range c.members {
		if strings.HasSuffix(name, ".xml") {
			c.format = FormatXML
			c.dataMember = name
			return c, nil
		}
	}
	return c, nil
}

// Path returns the archive path on disk.
func (c *Container) Path() string { return c.path }

// Format returns the detected format.
func (c *Container) Format() Format { return c.format }

// DataMember returns the name of the embedded data member, or "" when the
// archive has none.
func (c *Container) DataMember() string { return c.dataMember }

// Members returns the archive member names in archive order.
func (c *Container) Members() []string { return c.members }

// ReadMember returns the decompressed content of the named member.
func (c *Container) ReadMember(name string) ([]byte, error) {
	zr, err := zip.OpenReader(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open member %s: %w", name, err)
		}
		defer func() { _ = rc.Close() }()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read member %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoMember, name)
}

// ReadRaw returns the whole file's bytes. Used when the file could not be
// understood as a ZIP and must be preserved opaquely.
func (c *Container) ReadRaw() ([]byte, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	return data, nil
}

// ExtractMember writes the named member to a fresh scratch file in dir (the
// OS temp dir when dir is empty) and returns its path. The caller owns the
// scratch file and must remove it on every exit path.
func (c *Container) ExtractMember(name, dir string) (string, error) {
	data, err := c.ReadMember(name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, "z21-*"+filepath.Ext(name))
	if err != nil {
		return "", fmt.Errorf("failed to create scratch file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write scratch file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close scratch file: %w", err)
	}
	return tmp.Name(), nil
}

// FindImage returns the first member whose path contains name, or whose path
// ends with fallbackSuffix when name is empty or unmatched. Images may live
// under a subdirectory, so this is a substring match, not an exact-path match.
func (c *Container) FindImage(name, fallbackSuffix string) (string, bool) {
	if name != "" {
		for _, member := range c.members {
			if strings.Contains(member, name) {
				return member, true
			}
		}
	}
	if fallbackSuffix != "" {
		for _, member := range c.members {
			if strings.HasSuffix(member, fallbackSuffix) {
				return member, true
			}
		}
	}
	return "", false
}

// Rebuild writes a new archive at destPath in which the data member's content
// is replaced by updated and every other member keeps its exact compressed
// bytes and metadata. When destPath equals the source path (or is empty), the
// new archive is assembled at a temporary path and renamed over the original
// only after it is fully written. Returns the path actually written.
func (c *Container) Rebuild(updated []byte, destPath string) (string, error) {
	if destPath == "" {
		destPath = c.path
	}
	sameTarget := destPath == c.path

	zr, err := zip.OpenReader(c.path)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	var out *os.File
	if sameTarget {
		out, err = os.CreateTemp(filepath.Dir(destPath), ".z21-rebuild-*")
	} else {
		out, err = os.Create(destPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create output archive: %w", err)
	}
	tmpPath := out.Name()

	cleanup := func() {
		_ = out.Close()
		_ = os.Remove(tmpPath)
	}

	zw := zip.NewWriter(out)
	for _, f := range zr.File {
		if f.Name == c.dataMember {
			// Only the content changes: name, compression method,
			// timestamp and attributes stay as in the original entry.
			hdr := &zip.FileHeader{
				Name:          f.Name,
				Method:        f.Method,
				Modified:      f.Modified,
				ExternalAttrs: f.ExternalAttrs,
			}
			w, err := zw.CreateHeader(hdr)
			if err != nil {
				cleanup()
				return "", fmt.Errorf("failed to write member %s: %w", f.Name, err)
			}
			if _, err := w.Write(updated); err != nil {
				cleanup()
				return "", fmt.Errorf("failed to write member %s: %w", f.Name, err)
			}
			continue
		}
		// Raw copy: no decompress/recompress round trip.
		if err := zw.Copy(f); err != nil {
			cleanup()
			return "", fmt.Errorf("failed to copy member %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close output archive: %w", err)
	}

	if sameTarget {
		if err := os.Rename(tmpPath, destPath); err != nil {
			_ = os.Remove(tmpPath)
			return "", fmt.Errorf("failed to replace archive: %w", err)
		}
	}
	return destPath, nil
}

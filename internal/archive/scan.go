package archive

import (
	"context"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/modelrail/z21go/pkg/model"
)

// ScanResult pairs one archive path with what Open produced for it.
type ScanResult struct {
	Path    string
	Archive *model.Archive
}

// OpenAll opens every archive in paths concurrently and returns the results
// in input order. Each archive is owned by exactly one goroutine; only
// distinct archives are read in parallel. workers <= 0 uses one worker per
// CPU.
func (e *Engine) OpenAll(ctx context.Context, paths []string, workers int) ([]ScanResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]ScanResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			a, err := e.Open(ctx, path)
			if err != nil {
				return err
			}
			results[i] = ScanResult{Path: path, Archive: a}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ScanDir opens every .z21 and .z21loco file directly under dir.
func (e *Engine) ScanDir(ctx context.Context, dir string, workers int) ([]ScanResult, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if strings.HasSuffix(entry, ".z21") || strings.HasSuffix(entry, ".z21loco") {
			paths = append(paths, entry)
		}
	}
	sort.Strings(paths)
	return e.OpenAll(ctx, paths, workers)
}

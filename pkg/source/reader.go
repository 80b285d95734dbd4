package source

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel reads when no limit is configured.
const DefaultConcurrency = 8

// Reader turns source paths into file records.
type Reader interface {
	ReadAll(ctx context.Context, paths []string) ([]any, error)
}

// Limited readers accept a concurrency limit.
type Limited interface {
	WithLimit(n int) Reader
}

// FSReader reads files and directory trees from the local filesystem.
type FSReader struct {
	// Concurrency bounds parallel file reads; zero uses DefaultConcurrency.
	Concurrency int
	// IncludeHidden keeps dot files and dot directories.
	IncludeHidden bool
}

var (
	_ Reader  = (*FSReader)(nil)
	_ Limited = (*FSReader)(nil)
)

// NewFSReader returns a filesystem reader with default settings.
func NewFSReader() *FSReader {
	return &FSReader{Concurrency: DefaultConcurrency}
}

// WithLimit returns a copy of r using n concurrent reads.
func (r *FSReader) WithLimit(n int) Reader {
	clone := *r
	clone.Concurrency = n
	return &clone
}

type entry struct {
	root string
	path string
}

// ReadAll walks every path and reads the files it finds. Records keep source
// order, then lexical order within each source; a file reachable from two
// sources is read once.
func (r *FSReader) ReadAll(ctx context.Context, paths []string) ([]any, error) {
	entries, err := r.collect(ctx, paths)
	if err != nil {
		return nil, err
	}

	records := make([]any, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limitOrDefault(r.Concurrency))

	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info, err := os.Stat(e.path)
			if err != nil {
				return &IOError{Op: "stat", Path: e.path, Err: err}
			}
			contents, err := os.ReadFile(e.path)
			if err != nil {
				return &IOError{Op: "read", Path: e.path, Err: err}
			}
			file := NewFile(e.root, e.path, contents)
			file.ModTime = info.ModTime()
			records[i] = file
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *FSReader) collect(ctx context.Context, paths []string) ([]entry, error) {
	seen := make(map[string]struct{})
	var entries []entry

	add := func(root, path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		entries = append(entries, entry{root: root, path: path})
	}

	for _, raw := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		loc, err := Parse(raw)
		if err != nil {
			return nil, &IOError{Op: "resolve", Path: raw, Err: err}
		}
		if loc.Kind != KindFile {
			return nil, &IOError{Op: "resolve", Path: raw, Err: errors.New("not a filesystem path")}
		}

		info, err := os.Stat(loc.Path)
		if err != nil {
			return nil, &IOError{Op: "stat", Path: loc.Path, Err: err}
		}
		if !info.IsDir() {
			add(filepath.Dir(loc.Path), loc.Path)
			continue
		}

		err = filepath.WalkDir(loc.Path, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if path != loc.Path && !r.IncludeHidden && isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				add(loc.Path, path)
			}
			return nil
		})
		if err != nil {
			return nil, &IOError{Op: "walk", Path: loc.Path, Err: err}
		}
	}
	return entries, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return DefaultConcurrency
	}
	return n
}

package source

import (
	"context"
	"errors"
)

// MultiReader routes s3:// sources to S3 and everything else to FS. Results
// are concatenated in source order.
type MultiReader struct {
	FS Reader
	S3 Reader
}

var (
	_ Reader  = (*MultiReader)(nil)
	_ Limited = (*MultiReader)(nil)
)

// NewMultiReader combines a filesystem reader with an optional S3 reader.
func NewMultiReader(fsReader, s3Reader Reader) *MultiReader {
	if fsReader == nil {
		fsReader = NewFSReader()
	}
	return &MultiReader{FS: fsReader, S3: s3Reader}
}

// WithLimit forwards n to the wrapped readers that accept it.
func (m *MultiReader) WithLimit(n int) Reader {
	clone := *m
	if l, ok := m.FS.(Limited); ok {
		clone.FS = l.WithLimit(n)
	}
	if l, ok := m.S3.(Limited); ok {
		clone.S3 = l.WithLimit(n)
	}
	return &clone
}

// ReadAll reads each source with its backend.
func (m *MultiReader) ReadAll(ctx context.Context, paths []string) ([]any, error) {
	var (
		records []any
		seen    = make(map[string]struct{})
	)
	for _, raw := range paths {
		reader := m.FS
		if IsS3(raw) {
			reader = m.S3
		}
		if reader == nil {
			return nil, &IOError{Op: "read", Path: raw, Err: errors.New("no reader configured for source")}
		}

		batch, err := reader.ReadAll(ctx, []string{raw})
		if err != nil {
			return nil, err
		}
		for _, record := range batch {
			if file, ok := record.(*File); ok {
				if _, dup := seen[file.Path]; dup {
					continue
				}
				seen[file.Path] = struct{}{}
			}
			records = append(records, record)
		}
	}
	if records == nil {
		records = []any{}
	}
	return records, nil
}

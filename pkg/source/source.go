// Package source reads source trees into file records and watches them for
// changes. Sources are filesystem paths or s3://bucket/prefix URLs.
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind enumerates the supported source backends.
type Kind string

const (
	KindFile Kind = "file"
	KindS3   Kind = "s3"
)

const s3Scheme = "s3://"

// Location is a parsed source path.
type Location struct {
	Kind Kind
	// Path is the cleaned absolute filesystem path for KindFile.
	Path string
	// Bucket and Prefix are set for KindS3.
	Bucket string
	Prefix string
}

// String returns the normalised source string.
func (l Location) String() string {
	if l.Kind == KindS3 {
		if l.Prefix == "" {
			return s3Scheme + l.Bucket
		}
		return s3Scheme + l.Bucket + "/" + l.Prefix
	}
	return l.Path
}

// Parse classifies raw and normalises it.
func Parse(raw string) (Location, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Location{}, errors.New("source: empty path")
	}

	if rest, ok := strings.CutPrefix(trimmed, s3Scheme); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return Location{}, fmt.Errorf("source: %q has no bucket", raw)
		}
		return Location{
			Kind:   KindS3,
			Bucket: bucket,
			Prefix: strings.Trim(prefix, "/"),
		}, nil
	}

	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return Location{}, fmt.Errorf("source: resolve %q: %w", raw, err)
	}
	return Location{Kind: KindFile, Path: filepath.Clean(abs)}, nil
}

// NormalizePath returns the canonical form of a source path: absolute and
// cleaned for filesystem paths, untouched apart from slash trimming for s3.
func NormalizePath(raw string) (string, error) {
	loc, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return loc.String(), nil
}

// IsS3 reports whether raw is an s3:// source.
func IsS3(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), s3Scheme)
}

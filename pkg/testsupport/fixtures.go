// Package testsupport holds fixture helpers shared by package tests.
package testsupport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/goliatone/go-partsbin/pkg/source"
)

// WriteTree creates files under a fresh temp dir and returns its path. Keys are
// slash separated relative paths.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	if err := WriteTreeAt(root, files); err != nil {
		t.Fatalf("write tree: %v", err)
	}
	return root
}

// WriteTreeAt writes files under root, returning an error for callers outside
// of *testing.T.
func WriteTreeAt(root string, files map[string]string) error {
	if root == "" {
		return errors.New("testsupport: tree root is required")
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("testsupport: mkdir %s: %w", name, err)
		}
		if err := os.WriteFile(path, []byte(files[name]), 0o644); err != nil {
			return fmt.Errorf("testsupport: write %s: %w", name, err)
		}
	}
	return nil
}

// Files builds in-memory file records rooted at root, in the given order.
// Entries are "relative/path", "contents" pairs.
func Files(root string, pairs ...string) []any {
	if len(pairs)%2 != 0 {
		panic("testsupport: Files expects path/contents pairs")
	}
	out := make([]any, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		path := filepath.Join(root, filepath.FromSlash(pairs[i]))
		out = append(out, source.NewFile(root, path, []byte(pairs[i+1])))
	}
	return out
}

// RelPaths lists the RelPath of every *source.File in records.
func RelPaths(records []any) []string {
	out := make([]string, 0, len(records))
	for _, record := range records {
		if file, ok := record.(*source.File); ok {
			out = append(out, file.RelPath)
		}
	}
	return out
}

// Context returns a context cancelled when the test finishes.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// CaptureRender runs a render function that writes to an io.Writer and
// returns both the string result and the writer contents.
func CaptureRender(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out, buf.String()
}

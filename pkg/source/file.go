package source

import (
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Taggable records accept metadata from plugins, e.g. the adapter that should
// render them.
type Taggable interface {
	SetMeta(key string, value any)
	GetMeta(key string) (any, bool)
}

// File is the record produced for every source file.
type File struct {
	// Path is the absolute path, or s3://bucket/key for remote files.
	Path string
	// RelPath is Path relative to Root, slash separated.
	RelPath string
	Root    string
	Dir     string
	// Base is the file name with extension; Name strips every extension
	// (button.config.yml -> button).
	Base     string
	Name     string
	Ext      string
	Size     int64
	ModTime  time.Time
	Contents []byte

	mu       sync.RWMutex
	Metadata map[string]any
}

var _ Taggable = (*File)(nil)

// NewFile fills the derived name fields for path under root.
func NewFile(root, path string, contents []byte) *File {
	rel := path
	if root != "" {
		if r, err := filepath.Rel(root, path); err == nil && !IsS3(path) {
			rel = r
		} else if after, ok := strings.CutPrefix(path, strings.TrimSuffix(root, "/")+"/"); ok {
			rel = after
		}
	}
	dir := filepath.Dir(path)
	if IsS3(path) {
		dir = path[:strings.LastIndex(path, "/")]
	}
	base := filepath.Base(path)
	name := base
	if idx := strings.Index(base, "."); idx > 0 {
		name = base[:idx]
	}
	return &File{
		Path:     path,
		RelPath:  filepath.ToSlash(rel),
		Root:     root,
		Dir:      dir,
		Base:     base,
		Name:     name,
		Ext:      strings.ToLower(filepath.Ext(base)),
		Size:     int64(len(contents)),
		Contents: contents,
		Metadata: make(map[string]any),
	}
}

// SetMeta stores a metadata value.
func (f *File) SetMeta(key string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Metadata == nil {
		f.Metadata = make(map[string]any)
	}
	f.Metadata[key] = value
}

// GetMeta reads a metadata value.
func (f *File) GetMeta(key string) (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	value, ok := f.Metadata[key]
	return value, ok
}

// MetaString returns the metadata value at key when it is a string.
func (f *File) MetaString(key string) string {
	value, ok := f.GetMeta(key)
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return s
}

// String returns the file contents.
func (f *File) String() string {
	return string(f.Contents)
}

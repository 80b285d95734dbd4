package source_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-partsbin/pkg/source"
	"github.com/goliatone/go-partsbin/pkg/testsupport"
)

type fakeBucket struct {
	mu       sync.Mutex
	objects  map[string]string
	pageSize int
	gets     []string
	failKey  string
}

func (f *fakeBucket) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	prefix := aws.ToString(in.Prefix)
	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		for i, key := range keys {
			if key == *in.ContinuationToken {
				start = i
			}
		}
	}
	end := len(keys)
	if f.pageSize > 0 && start+f.pageSize < end {
		end = start + f.pageSize
	}

	out := &s3.ListObjectsV2Output{}
	for _, key := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
	}
	if end < len(keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[end])
	}
	return out, nil
}

func (f *fakeBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	f.mu.Lock()
	f.gets = append(f.gets, key)
	f.mu.Unlock()
	if key == f.failKey {
		return nil, errors.New("access denied")
	}
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	modified := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &s3.GetObjectOutput{
		Body:         io.NopCloser(bytes.NewBufferString(body)),
		LastModified: &modified,
	}, nil
}

func TestS3Reader_ListsAllPages(t *testing.T) {
	bucket := &fakeBucket{
		pageSize: 1,
		objects: map[string]string{
			"library/button/button.html":       "<button/>",
			"library/button/button.config.yml": "label: Button",
			"library/.cache/x":                 "x",
			"library/":                         "",
			"library-old/card.html":            "<div/>",
		},
	}
	reader := source.NewS3Reader(bucket)

	records, err := reader.ReadAll(context.Background(), []string{"s3://assets/library"})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []string{"library/button/button.config.yml", "library/button/button.html"}
	if diff := cmp.Diff(want, testsupport.RelPaths(records)); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	file := records[1].(*source.File)
	if file.Path != "s3://assets/library/button/button.html" || file.Root != "s3://assets" {
		t.Fatalf("unexpected file identity: %s (root %s)", file.Path, file.Root)
	}
	if file.Name != "button" || file.String() != "<button/>" || file.ModTime.IsZero() {
		t.Fatalf("unexpected file record: %+v", file)
	}
}

func TestS3Reader_GetFailure(t *testing.T) {
	bucket := &fakeBucket{
		objects: map[string]string{"ui/card.html": "<div/>"},
		failKey: "ui/card.html",
	}
	_, err := source.NewS3Reader(bucket).ReadAll(context.Background(), []string{"s3://assets/ui"})
	var ioErr *source.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("want *source.IOError, got %v", err)
	}
	if ioErr.Path != "s3://assets/ui/card.html" {
		t.Fatalf("unexpected path %q", ioErr.Path)
	}
}

func TestS3Reader_NoClient(t *testing.T) {
	var reader *source.S3Reader
	if _, err := reader.ReadAll(context.Background(), []string{"s3://assets"}); err == nil {
		t.Fatalf("expected error without client")
	}
}

func TestMultiReader_RoutesBySource(t *testing.T) {
	root := testsupport.WriteTree(t, map[string]string{"local/card.html": "<div/>"})
	bucket := &fakeBucket{objects: map[string]string{"remote/badge.html": "<span/>"}}

	reader := source.NewMultiReader(nil, source.NewS3Reader(bucket)).WithLimit(2)
	records, err := reader.ReadAll(context.Background(), []string{
		"s3://assets/remote",
		root + "/local",
		root + "/local/card.html",
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []string{"remote/badge.html", "card.html"}
	if diff := cmp.Diff(want, testsupport.RelPaths(records)); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestMultiReader_S3WithoutReader(t *testing.T) {
	reader := source.NewMultiReader(nil, nil)
	_, err := reader.ReadAll(context.Background(), []string{"s3://assets"})
	var ioErr *source.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("want *source.IOError, got %v", err)
	}
}

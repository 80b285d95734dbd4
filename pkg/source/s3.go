package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"
)

// ObjectAPI is the subset of the S3 client used by S3Reader.
type ObjectAPI interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config holds client construction parameters. Credentials come from the
// default AWS chain.
type S3Config struct {
	Region    string
	Endpoint  string // optional, for S3-compatible stores such as MinIO
	PathStyle bool
}

// NewS3Client builds an S3 client from cfg.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("source: load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// S3Reader reads s3://bucket/prefix sources.
type S3Reader struct {
	client        ObjectAPI
	Concurrency   int
	IncludeHidden bool
}

var (
	_ Reader  = (*S3Reader)(nil)
	_ Limited = (*S3Reader)(nil)
)

// NewS3Reader wraps client.
func NewS3Reader(client ObjectAPI) *S3Reader {
	return &S3Reader{client: client, Concurrency: DefaultConcurrency}
}

// WithLimit returns a copy of r using n concurrent downloads.
func (r *S3Reader) WithLimit(n int) Reader {
	clone := *r
	clone.Concurrency = n
	return &clone
}

type object struct {
	bucket string
	key    string
}

// ReadAll lists every object under each prefix and downloads it. A prefix
// that names a single object reads just that object.
func (r *S3Reader) ReadAll(ctx context.Context, paths []string) ([]any, error) {
	if r == nil || r.client == nil {
		return nil, &IOError{Op: "read", Path: strings.Join(paths, ","), Err: errors.New("no s3 client configured")}
	}

	var objects []object
	seen := make(map[string]struct{})
	for _, raw := range paths {
		loc, err := Parse(raw)
		if err != nil {
			return nil, &IOError{Op: "resolve", Path: raw, Err: err}
		}
		if loc.Kind != KindS3 {
			return nil, &IOError{Op: "resolve", Path: raw, Err: errors.New("not an s3 path")}
		}
		keys, err := r.list(ctx, loc)
		if err != nil {
			return nil, &IOError{Op: "list", Path: loc.String(), Err: err}
		}
		for _, key := range keys {
			id := loc.Bucket + "/" + key
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			objects = append(objects, object{bucket: loc.Bucket, key: key})
		}
	}

	records := make([]any, len(objects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limitOrDefault(r.Concurrency))
	for i, obj := range objects {
		g.Go(func() error {
			file, err := r.get(gctx, obj)
			if err != nil {
				return &IOError{Op: "read", Path: s3Scheme + obj.bucket + "/" + obj.key, Err: err}
			}
			records[i] = file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *S3Reader) list(ctx context.Context, loc Location) ([]string, error) {
	var keys []string
	var token *string
	for {
		out, err := r.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(loc.Bucket),
			Prefix:            aws.String(loc.Prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if r.keep(loc.Prefix, key) {
				keys = append(keys, key)
			}
		}
		if aws.ToBool(out.IsTruncated) && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *S3Reader) keep(prefix, key string) bool {
	if key == "" || strings.HasSuffix(key, "/") {
		return false
	}
	if prefix != "" && key != prefix && !strings.HasPrefix(key, prefix+"/") {
		return false
	}
	if r.IncludeHidden {
		return true
	}
	for _, segment := range strings.Split(key, "/") {
		if isHidden(segment) {
			return false
		}
	}
	return true
}

func (r *S3Reader) get(ctx context.Context, obj object) (*File, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(obj.bucket),
		Key:    aws.String(obj.key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	contents, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}
	root := s3Scheme + obj.bucket
	file := NewFile(root, root+"/"+obj.key, contents)
	file.ModTime = aws.ToTime(out.LastModified)
	return file, nil
}

package s3downl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/zstd"
	"github.com/programme-lv/grader/internal/archive"
	"golang.org/x/sync/errgroup"
)

// API is the part of *s3.Client the fetcher needs.
type API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewClient loads the default AWS config, optionally pinned to a region and
// shared profile, and returns an S3 client.
func NewClient(ctx context.Context, region string, profile string) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// Fetcher downloads submission archives stored under a bucket prefix.
type Fetcher struct {
	client API
	logger *slog.Logger
	jobs   int
}

func New(client API, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, logger: logger, jobs: 4}
}

// FetchPrefix downloads every archive object under prefix into dest and
// returns the local paths in listing order. Objects that are not archives
// are skipped.
func (f *Fetcher) FetchPrefix(ctx context.Context, bucket string, prefix string, dest string) ([]string, error) {
	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, fmt.Errorf("failed to create destination dir: %w", err)
	}

	var keys []string
	pager := s3.NewListObjectsV2Paginator(f.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if _, ok := archive.TrimExt(path.Base(key)); !ok {
				f.logger.Debug("skipping non-archive object", "key", key)
				continue
			}
			keys = append(keys, key)
		}
	}

	// objects land flat in dest, so basenames must be unique
	paths := make([]string, len(keys))
	owner := make(map[string]string, len(keys))
	for i, key := range keys {
		name := path.Base(key)
		if prev, ok := owner[name]; ok {
			return nil, fmt.Errorf("objects %q and %q share the file name %q", prev, key, name)
		}
		owner[name] = key
		paths[i] = filepath.Join(dest, name)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(f.jobs)
	for i, key := range keys {
		eg.Go(func() error {
			return f.download(ctx, bucket, key, paths[i])
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// download writes one object to target. Objects stored zstd-compressed under
// their plain archive name are decompressed on the way.
func (f *Fetcher) download(ctx context.Context, bucket string, key string, target string) error {
	f.logger.Info("downloading submission", "bucket", bucket, "key", key)
	obj, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}
	defer obj.Body.Close()

	var body io.Reader = obj.Body
	if aws.ToString(obj.ContentType) == "application/zstd" && !strings.HasSuffix(key, ".zst") {
		d, err := zstd.NewReader(obj.Body)
		if err != nil {
			return fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer d.Close()
		body = d
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".fetch-*")
	if err != nil {
		return fmt.Errorf("failed to create file in %s: %w", filepath.Dir(target), err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file %s: %w", target, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", target, err)
	}
	return nil
}

package s3downl_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/klauspost/compress/zstd"
	"github.com/programme-lv/grader/internal/s3downl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type object struct {
	body        []byte
	contentType string
}

type fakeS3 struct {
	objects map[string]object
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input,
	optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput,
	optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	obj := f.objects[aws.ToString(in.Key)]
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(obj.body)),
		ContentType: aws.String(obj.contentType),
	}, nil
}

func compress(t *testing.T, data []byte) []byte {
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func TestFetchPrefix(t *testing.T) {
	plain := []byte("PK plain zip bytes")
	fake := &fakeS3{objects: map[string]object{
		"hw1/Assignment_1_a.zip":     {body: plain, contentType: "application/zip"},
		"hw1/Assignment_1_b.zip":     {body: compress(t, plain), contentType: "application/zstd"},
		"hw1/Assignment_1_c.tar.zst": {body: []byte("raw zstd tar"), contentType: "application/zstd"},
		"hw1/readme.txt":             {body: []byte("ignore me")},
		"hw2/Assignment_1_d.zip":     {body: plain},
	}}
	dest := filepath.Join(t.TempDir(), "subs")

	paths, err := s3downl.New(fake, nil).FetchPrefix(context.Background(), "bucket", "hw1/", dest)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dest, "Assignment_1_a.zip"),
		filepath.Join(dest, "Assignment_1_b.zip"),
		filepath.Join(dest, "Assignment_1_c.tar.zst"),
	}, paths)

	got, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	got, err = os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, plain, got, "zstd content under a plain name is decompressed")

	got, err = os.ReadFile(paths[2])
	require.NoError(t, err)
	assert.Equal(t, []byte("raw zstd tar"), got, ".zst objects are kept compressed")

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestFetchPrefixRejectsDuplicateNames(t *testing.T) {
	fake := &fakeS3{objects: map[string]object{
		"hw1/a/Assignment_1_x.zip": {body: []byte("first")},
		"hw1/b/Assignment_1_x.zip": {body: []byte("second")},
	}}
	dest := filepath.Join(t.TempDir(), "subs")

	_, err := s3downl.New(fake, nil).FetchPrefix(context.Background(), "bucket", "hw1/", dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hw1/a/Assignment_1_x.zip")
	assert.Contains(t, err.Error(), "hw1/b/Assignment_1_x.zip")

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

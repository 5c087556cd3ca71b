package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "labels.json"), []byte(`["apple"]`), 0o644))

	s := NewLocalStorage(dir)
	ctx := context.Background()

	data, err := ReadAll(ctx, s, "labels.json")
	require.NoError(t, err)
	assert.Equal(t, `["apple"]`, string(data))

	ok, err := s.Exists(ctx, "labels.json")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(ctx, "missing.json")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Open(ctx, "missing.json")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalStorageAbsoluteKey(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "guide.json")
	require.NoError(t, os.WriteFile(file, []byte(`{}`), 0o644))

	s := NewLocalStorage("/somewhere/else")
	assert.Equal(t, file, s.Location(file))

	data, err := ReadAll(context.Background(), s, file)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestNewStorageDefaultsToLocal(t *testing.T) {
	s, err := NewStorage(&Config{Root: "./data"})
	require.NoError(t, err)
	_, ok := s.(*LocalStorage)
	assert.True(t, ok)
}

func TestNewStorageUnknownType(t *testing.T) {
	_, err := NewStorage(&Config{Type: "ftp"})
	assert.Error(t, err)
}

func TestDetectStorageType(t *testing.T) {
	testCases := []struct {
		endpoint string
		want     StorageType
	}{
		{"https://abc.r2.cloudflarestorage.com", StorageTypeR2},
		{"s3.us-west-2.amazonaws.com", StorageTypeS3},
		{"localhost:9000", StorageTypeS3Compatible},
	}
	for _, tc := range testCases {
		t.Run(tc.endpoint, func(t *testing.T) {
			assert.Equal(t, tc.want, detectStorageType(tc.endpoint))
		})
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "minio:9000", normalizeEndpoint("http://minio:9000/"))
	assert.Equal(t, "bucket.example.com", normalizeEndpoint("https://bucket.example.com/path/x"))
}

func TestS3StorageKeys(t *testing.T) {
	s, err := NewS3Storage(&S3Config{
		Type:      StorageTypeS3Compatible,
		Endpoint:  "localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "reference",
		Prefix:    "/v2/",
	})
	require.NoError(t, err)
	assert.Equal(t, "s3://reference/v2/labels.json", s.Location("labels.json"))

	_, err = NewS3Storage(&S3Config{})
	assert.Error(t, err)
}

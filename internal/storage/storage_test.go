package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"fileapi/internal/config"
)

func TestStatResult(t *testing.T) {
	found := Found(ObjectInfo{Key: "a/b.txt", Size: 5})
	assert.True(t, found.Exists())
	assert.Equal(t, "found", found.Status.String())
	assert.Equal(t, int64(5), found.Info.Size)

	missing := NotFound("a/c.txt")
	assert.False(t, missing.Exists())
	assert.Equal(t, "not_found", missing.Status.String())
	assert.Equal(t, "a/c.txt", missing.Info.Key)

	var zero StatResult
	assert.False(t, zero.Exists())
}

func TestNew_UnsupportedDriver(t *testing.T) {
	st, err := New(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.Nil(t, st)
	assert.EqualError(t, err, `unsupported storage driver "ftp"`)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantErr string
	}{
		{"missing endpoint", config.StorageConfig{AccessKey: "a", SecretKey: "b", Bucket: "c"}, "storage endpoint is required"},
		{"missing keys", config.StorageConfig{Endpoint: "x:9000", Bucket: "c"}, "storage credentials are required"},
		{"missing bucket", config.StorageConfig{Endpoint: "x:9000", AccessKey: "a", SecretKey: "b"}, "storage bucket is required"},
		{"ok", config.StorageConfig{Endpoint: "x:9000", AccessKey: "a", SecretKey: "b", Bucket: "c"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestNewMinIO_InvalidConfig(t *testing.T) {
	st, err := NewMinIO(context.Background(), config.StorageConfig{})
	assert.Nil(t, st)
	assert.Error(t, err)
}

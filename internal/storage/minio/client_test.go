package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgdesk/orgdesk-server/internal/model"
)

// fakeMinio implements minioAPI for testing without network.
type fakeMinio struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error
	madeBucket      bool

	putOpts minioLib.PutObjectOptions
	putSize int64
	putErr  error

	getRC  io.ReadCloser
	getErr error

	removeErr error

	statInfo minioLib.ObjectInfo
	statErr  error
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}
func (f *fakeMinio) MakeBucket(_ context.Context, _ string, _ minioLib.MakeBucketOptions) error {
	f.madeBucket = true
	return f.makeBucketErr
}
func (f *fakeMinio) PutObject(_ context.Context, _ string, _ string, _ io.Reader, size int64, opts minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	f.putSize = size
	f.putOpts = opts
	return minioLib.UploadInfo{}, f.putErr
}
func (f *fakeMinio) GetObject(_ context.Context, _ string, _ string, _ minioLib.GetObjectOptions) (io.ReadCloser, error) {
	return f.getRC, f.getErr
}
func (f *fakeMinio) RemoveObject(_ context.Context, _ string, _ string, _ minioLib.RemoveObjectOptions) error {
	return f.removeErr
}
func (f *fakeMinio) StatObject(_ context.Context, _ string, _ string, _ minioLib.StatObjectOptions) (minioLib.ObjectInfo, error) {
	return f.statInfo, f.statErr
}

func TestNewClientWithAPI_BucketExists(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true}

	c, err := NewClientWithAPI(ctx, api, "avatars")
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.False(t, api.madeBucket)
}

func TestNewClientWithAPI_CreatesMissingBucket(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: false}

	_, err := NewClientWithAPI(ctx, api, "avatars")
	require.NoError(t, err)
	assert.True(t, api.madeBucket)
}

func TestNewClientWithAPI_BucketCheckError(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExistsErr: errors.New("connection refused")}

	_, err := NewClientWithAPI(ctx, api, "avatars")
	require.Error(t, err)
}

func TestClient_Upload_PassesContentTypeAndSize(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true}
	c, err := NewClientWithAPI(ctx, api, "avatars")
	require.NoError(t, err)

	err = c.Upload(ctx, "avatars/u1", "image/png", bytes.NewReader([]byte("png")), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), api.putSize)
	assert.Equal(t, "image/png", api.putOpts.ContentType)
}

func TestClient_Download(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{
		bucketExists: true,
		statInfo:     minioLib.ObjectInfo{ContentType: "image/png"},
		getRC:        io.NopCloser(bytes.NewReader([]byte("png-bytes"))),
	}
	c, err := NewClientWithAPI(ctx, api, "avatars")
	require.NoError(t, err)

	rc, contentType, err := c.Download(ctx, "avatars/u1")
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, "image/png", contentType)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestClient_Download_MissingKey(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{
		bucketExists: true,
		statErr:      minioLib.ErrorResponse{Code: "NoSuchKey"},
	}
	c, err := NewClientWithAPI(ctx, api, "avatars")
	require.NoError(t, err)

	_, _, err = c.Download(ctx, "avatars/missing")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestClient_Exists(t *testing.T) {
	ctx := context.Background()

	t.Run("present", func(t *testing.T) {
		api := &fakeMinio{bucketExists: true}
		c, err := NewClientWithAPI(ctx, api, "avatars")
		require.NoError(t, err)

		ok, err := c.Exists(ctx, "avatars/u1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing", func(t *testing.T) {
		api := &fakeMinio{
			bucketExists: true,
			statErr:      minioLib.ErrorResponse{Code: "NoSuchKey"},
		}
		c, err := NewClientWithAPI(ctx, api, "avatars")
		require.NoError(t, err)

		ok, err := c.Exists(ctx, "avatars/missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

package storage_test

import (
	"sync"
	"testing"

	"github.com/dejay09121/Noteapp/pkg/code"
	"github.com/dejay09121/Noteapp/pkg/storage"
	"github.com/dejay09121/Noteapp/pkg/storage/aws_s3"
	"github.com/dejay09121/Noteapp/pkg/storage/local_fs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Local(t *testing.T) {
	cfg := &storage.Config{
		Type:      storage.LOCAL,
		IsEnabled: true,
		SavePath:  t.TempDir(),
	}

	client, err := storage.NewClient(cfg, nil)
	require.NoError(t, err)
	_, ok := client.(*local_fs.LocalFS)
	assert.True(t, ok)
}

func TestNewClient_ReusesInstance(t *testing.T) {
	cfg := &storage.Config{Type: storage.LOCAL, IsEnabled: true, SavePath: t.TempDir()}

	var wg sync.WaitGroup
	got := make([]storage.Storager, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := storage.NewClient(cfg, nil)
			assert.NoError(t, err)
			got[i] = c
		}(i)
	}
	wg.Wait()
	for _, c := range got {
		assert.Same(t, got[0], c)
	}
}

func TestNewClient_Invalid(t *testing.T) {
	_, err := storage.NewClient(&storage.Config{Type: "invalid", IsEnabled: true}, nil)
	assert.ErrorIs(t, err, code.ErrorInvalidStorageType)

	_, err = storage.NewClient(&storage.Config{Type: storage.LOCAL}, nil)
	assert.ErrorIs(t, err, code.ErrorStorageNotConfigure)
}

func TestNewClient_MinIOPublicURL(t *testing.T) {
	client, err := storage.NewClient(&storage.Config{
		Type:            storage.MinIO,
		IsEnabled:       true,
		Endpoint:        "http://127.0.0.1:9000",
		BucketName:      storage.DefaultBucket,
		AccessKeyID:     "minio",
		AccessKeySecret: "minio123",
	}, nil)
	require.NoError(t, err)

	s3c, ok := client.(*aws_s3.S3)
	require.True(t, ok)
	assert.Equal(t, "http://127.0.0.1:9000/notes-media/private/1.mp4", s3c.PublicURL("private/1.mp4"))
}

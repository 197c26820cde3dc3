package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Kapsk2801/Lost-Found/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal(t *testing.T) {
	root := filepath.Join(t.TempDir(), "images")
	store, err := NewLocal(root, LocalURLPrefix)
	require.NoError(t, err)

	url, err := store.Put(context.Background(), ItemImageKey("42"), []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/images/items/42.jpg", url)
	assert.Equal(t, "items/42.jpg", store.Key(url))
	assert.Equal(t, "", store.Key("https://elsewhere/items/42.jpg"))

	data, err := os.ReadFile(filepath.Join(root, "items", "42.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	require.NoError(t, store.Delete(context.Background(), "items/42.jpg"))
	require.NoError(t, store.Delete(context.Background(), "items/42.jpg"))
	_, err = os.Stat(filepath.Join(root, "items", "42.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalRejectsTraversal(t *testing.T) {
	store, err := NewLocal(t.TempDir(), LocalURLPrefix)
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../etc/passwd", []byte("x"), "text/plain")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	cfg := config.Storage{Backend: "local"}
	cfg.Local.Path = t.TempDir()

	store, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &Local{}, store)

	_, err = New(context.Background(), config.Storage{Backend: "ftp"})
	assert.EqualError(t, err, "unknown storage backend: ftp")
}

func TestS3PublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.campus.edu", publicURL(config.S3{Bucket: "lf", PublicURL: "https://cdn.campus.edu/"}))
	assert.Equal(t, "http://minio:9000/lf", publicURL(config.S3{Bucket: "lf", Endpoint: "http://minio:9000"}))
	assert.Equal(t, "https://lf.s3.eu-west-1.amazonaws.com", publicURL(config.S3{Bucket: "lf", Region: "eu-west-1"}))

	store := &S3{public: "https://cdn.campus.edu"}
	assert.Equal(t, "items/1.jpg", store.Key("https://cdn.campus.edu/items/1.jpg"))
}

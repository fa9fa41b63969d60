package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodgram/internal/config"
)

func TestLocalStore_SaveDelete(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "/media/")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "recipes/images/a.png", []byte("png"), "image/png"))

	data, err := os.ReadFile(filepath.Join(root, "recipes", "images", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	require.NoError(t, store.Delete(ctx, "recipes/images/a.png"))
	assert.NoFileExists(t, filepath.Join(root, "recipes", "images", "a.png"))

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, "recipes/images/a.png"))
}

func TestLocalStore_KeysStayInsideRoot(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "/media")

	require.NoError(t, store.Save(context.Background(), "../../escape.png", []byte("x"), "image/png"))
	assert.FileExists(t, filepath.Join(root, "escape.png"))

	assert.Error(t, store.Save(context.Background(), "", []byte("x"), "image/png"))
}

func TestLocalStore_URL(t *testing.T) {
	store := NewLocalStore("/tmp", "/media/")
	assert.Equal(t, "/media/recipes/images/a.png", store.URL("recipes/images/a.png"))
	assert.Equal(t, "", store.URL(""))
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "https://cdn.test/k.png",
		objectURL(S3Options{Bucket: "b", PublicURL: "https://cdn.test/"}, "k.png"))
	assert.Equal(t, "http://minio:9000/b/k.png",
		objectURL(S3Options{Bucket: "b", Endpoint: "http://minio:9000"}, "k.png"))
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com/k.png",
		objectURL(S3Options{Bucket: "b", Region: "eu-west-1"}, "k.png"))
}

func TestNew_Local(t *testing.T) {
	store, err := New(context.Background(), &config.Config{StorageBackend: "local", MediaRoot: t.TempDir(), MediaURL: "/media/"})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	_, err = New(context.Background(), &config.Config{StorageBackend: "ftp"})
	assert.Error(t, err)
}

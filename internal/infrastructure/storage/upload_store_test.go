package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"agri-assistant/internal/domain/entity"
)

func TestDiskUploadStore_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "static", "uploads")
	store := NewDiskUploadStore(root)

	path, err := store.Save(context.Background(), &entity.UploadedImage{FileName: "leaf.jpg", Data: []byte("first")})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "leaf.jpg"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "first", string(data))
}

func TestDiskUploadStore_LastWriteWins(t *testing.T) {
	store := NewDiskUploadStore(t.TempDir())
	ctx := context.Background()

	_, err := store.Save(ctx, &entity.UploadedImage{FileName: "leaf.jpg", Data: []byte("first")})
	require.NoError(t, err)
	path, err := store.Save(ctx, &entity.UploadedImage{FileName: "leaf.jpg", Data: []byte("second")})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(data))
}

func TestDiskUploadStore_StripsDirectories(t *testing.T) {
	root := t.TempDir()
	store := NewDiskUploadStore(root)

	path, err := store.Save(context.Background(), &entity.UploadedImage{FileName: "../../etc/leaf.jpg", Data: []byte("x")})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "leaf.jpg"), path)
}

func TestDiskUploadStore_Empty(t *testing.T) {
	store := NewDiskUploadStore(t.TempDir())

	_, err := store.Save(context.Background(), &entity.UploadedImage{FileName: "leaf.jpg"})
	require.ErrorIs(t, err, ErrEmptyUpload)
}

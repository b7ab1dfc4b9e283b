package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"agri-assistant/internal/domain/entity"
)

func TestSQLiteHistoryRepository_AddAndRecent(t *testing.T) {
	repo, err := NewSQLiteHistoryRepository(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer repo.Close()
	ctx := context.Background()

	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Add(ctx, []entity.HistoryRecord{
		{FileName: "a.jpg", ClassName: "Leaf Blight", Confidence: 0.91, CreatedAt: created},
		{FileName: "a.jpg", ClassName: "Rust", Confidence: 0.5, CreatedAt: created},
	}))
	require.NoError(t, repo.Add(ctx, []entity.HistoryRecord{
		{FileName: "b.jpg", ClassName: "Healthy", Confidence: 0.7},
	}))

	records, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Healthy", records[0].ClassName)
	require.Equal(t, "Rust", records[1].ClassName)
	require.Equal(t, 0.5, records[1].Confidence)
	require.True(t, created.Equal(records[1].CreatedAt))
	require.False(t, records[0].CreatedAt.IsZero())
}

func TestSQLiteHistoryRepository_Empty(t *testing.T) {
	repo, err := NewSQLiteHistoryRepository(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer repo.Close()

	records, err := repo.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, records)
}

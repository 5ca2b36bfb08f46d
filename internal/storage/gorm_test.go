package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arnold/goalfence-api/internal/models"
)

func newSQLiteStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "goalfence.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Document{}))
	return NewGormStore(db)
}

func TestGormStore(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	_, err := store.Get(ctx, KeyActiveGoals)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, KeyActiveGoals, []byte(`[]`)))
	require.NoError(t, store.Set(ctx, KeyActiveGoals, []byte(`[{"id":"1","text":"x"}]`)))

	got, err := store.Get(ctx, KeyActiveGoals)
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"1","text":"x"}]`, string(got))

	require.NoError(t, store.Delete(ctx, KeyActiveGoals))
	_, err = store.Get(ctx, KeyActiveGoals)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "never-written"))
}

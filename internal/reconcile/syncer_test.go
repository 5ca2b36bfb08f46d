package reconcile

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/arnold/goalfence-api/internal/models"
	"github.com/arnold/goalfence-api/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCheckRefreshesOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewRepository(storage.NewMemoryStore(), nil)
	cache := NewCache()
	var calls int
	s := NewSyncer(repo, cache, WithOnChange(func(context.Context, Snapshot) { calls++ }))

	changed, err := s.Check(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, cache.Get().Goals)

	changed, err = s.Check(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	// a background completion rewrites both keys
	require.NoError(t, repo.SaveCompletedRecords(ctx, []models.CompletedRecord{
		{Goal: models.Goal{ID: "42", Text: "library"}, CompletedAt: 1, DateKey: "2026-05-04"},
	}))
	require.NoError(t, repo.SaveActiveGoals(ctx, nil))

	changed, err = s.Check(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	snap := cache.Get()
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "42", snap.Records[0].ID)
	assert.Equal(t, uint64(2), snap.Version)
	assert.Equal(t, 2, calls)
}

func TestCheckToleratesCorruptDocument(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeyActiveGoals, []byte("[{")))
	cache := NewCache()
	s := NewSyncer(storage.NewRepository(store, nil), cache)

	changed, err := s.Check(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, cache.Get().Goals)
}

func TestResumeTriggersImmediateCheck(t *testing.T) {
	repo := storage.NewRepository(storage.NewMemoryStore(), nil)
	var calls atomic.Int32
	s := NewSyncer(repo, NewCache(),
		WithInterval(time.Hour),
		WithOnChange(func(context.Context, Snapshot) { calls.Add(1) }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, repo.SaveActiveGoals(context.Background(), []models.Goal{{ID: "1", Text: "gym"}}))
	s.Resume()
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

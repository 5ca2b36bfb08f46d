package presence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnold/goalfence-api/internal/models"
	"github.com/arnold/goalfence-api/internal/storage"
)

func TestStateStoreSetAndReset(t *testing.T) {
	ctx := context.Background()
	st := NewStateStore(storage.NewRepository(storage.NewMemoryStore(), nil))

	v, err := st.Get(ctx, models.HomeRegionID)
	require.NoError(t, err)
	assert.Equal(t, models.PresenceUnknown, v)

	require.NoError(t, st.Set(ctx, models.HomeRegionID, models.PresenceInside))
	require.NoError(t, st.Set(ctx, "goal:1", models.PresenceOutside))

	all, err := st.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]models.PresenceValue{
		models.HomeRegionID: models.PresenceInside,
		"goal:1":            models.PresenceOutside,
	}, all)

	require.NoError(t, st.Reset(ctx, models.HomeRegionID, "goal:missing"))
	v, err = st.Get(ctx, models.HomeRegionID)
	require.NoError(t, err)
	assert.Equal(t, models.PresenceUnknown, v)

	v, err = st.Get(ctx, "goal:1")
	require.NoError(t, err)
	assert.Equal(t, models.PresenceOutside, v)
}

func TestStateStoreSurvivesCorruptDocument(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeyPresenceState, []byte("{not json")))
	st := NewStateStore(storage.NewRepository(store, nil))

	v, err := st.Get(ctx, models.HomeRegionID)
	require.NoError(t, err)
	assert.Equal(t, models.PresenceUnknown, v)

	require.NoError(t, st.Set(ctx, models.HomeRegionID, models.PresenceOutside))
	v, err = st.Get(ctx, models.HomeRegionID)
	require.NoError(t, err)
	assert.Equal(t, models.PresenceOutside, v)
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(5 * time.Second)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, d.Allow("home:exit", t0))
	assert.False(t, d.Allow("home:exit", t0.Add(2*time.Second)))
	assert.True(t, d.Allow("home:enter", t0.Add(2*time.Second)))
	assert.True(t, d.Allow("home:exit", t0.Add(5*time.Second)))

	off := NewDebouncer(0)
	assert.True(t, off.Allow("k", t0))
	assert.True(t, off.Allow("k", t0))
}

func TestDebouncerForget(t *testing.T) {
	d := NewDebouncer(5 * time.Second)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, d.Allow("goal:1:enter", t0))
	d.Forget("goal:1:enter")
	assert.True(t, d.Allow("goal:1:enter", t0.Add(time.Second)))
	assert.False(t, d.Allow("goal:1:enter", t0.Add(2*time.Second)))
}

func TestDebouncerEvictsExpiredKeys(t *testing.T) {
	d := NewDebouncer(5 * time.Second)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		assert.True(t, d.Allow(fmt.Sprintf("goal:%d:enter", i), t0))
	}
	assert.Equal(t, 50, d.Len())

	assert.True(t, d.Allow("home:exit", t0.Add(6*time.Second)))
	assert.Equal(t, 1, d.Len())
	assert.False(t, d.Allow("home:exit", t0.Add(7*time.Second)))
}

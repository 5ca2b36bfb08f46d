package poller

import (
	"context"
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

type fixture struct {
	repo      *storage.Repository
	positions *LatestPosition
	poller    *Poller
	now       time.Time
	published []Status
}

func newFixture(t *testing.T, home *models.Coordinate) *fixture {
	t.Helper()
	f := &fixture{
		repo: storage.NewRepository(storage.NewMemoryStore(), nil),
		now:  time.Date(2026, 5, 4, 8, 0, 0, 0, time.Local),
	}
	if home != nil {
		require.NoError(t, f.repo.SaveHome(context.Background(), *home))
	}
	f.positions = NewLatestPosition(time.Minute)
	f.positions.now = func() time.Time { return f.now }
	f.poller = New(f.repo, f.positions, 80,
		WithClock(func() time.Time { return f.now }),
		WithPublisher(func(s Status) { f.published = append(f.published, s) }))
	return f
}

func (f *fixture) at(lat, lng float64) {
	f.now = f.now.Add(10 * time.Second)
	f.positions.Report(models.Coordinate{Latitude: lat, Longitude: lng}, f.now)
}

func TestHomeDepartureFlipsOnce(t *testing.T) {
	f := newFixture(t, &models.Coordinate{Latitude: 37.5, Longitude: 127})
	ctx := context.Background()

	f.at(37.5, 127)
	first := f.poller.Sample(ctx)
	assert.Equal(t, StateHome, first.State)
	assert.Equal(t, MsgAtHome, first.Message)

	f.at(37.501, 127)
	second := f.poller.Sample(ctx)
	assert.Equal(t, StateAway, second.State)
	assert.Equal(t, MsgDeparted, second.Message)
	require.NotNil(t, second.DistanceMeters)
	assert.InDelta(t, 111, *second.DistanceMeters, 2)

	f.at(37.501, 127)
	third := f.poller.Sample(ctx)
	assert.Equal(t, StateAway, third.State)
	assert.Equal(t, MsgAway, third.Message)

	assert.Len(t, f.published, 3)
	assert.Equal(t, third, f.poller.Last())

	home, err := f.repo.Home(ctx)
	require.NoError(t, err)
	assert.Equal(t, &models.Coordinate{Latitude: 37.5, Longitude: 127}, home)
}

func TestFlipWithinCooldownShowsSteadyMessage(t *testing.T) {
	f := newFixture(t, &models.Coordinate{Latitude: 37.5, Longitude: 127})
	ctx := context.Background()

	f.at(37.5, 127)
	f.poller.Sample(ctx)
	f.at(37.501, 127)
	assert.Equal(t, MsgDeparted, f.poller.Sample(ctx).Message)

	f.now = f.now.Add(time.Second)
	f.positions.Report(models.Coordinate{Latitude: 37.5, Longitude: 127}, f.now)
	back := f.poller.Sample(ctx)
	assert.Equal(t, StateHome, back.State)
	assert.Equal(t, MsgAtHome, back.Message)
}

func TestHomeChangeResetsBaseline(t *testing.T) {
	f := newFixture(t, &models.Coordinate{Latitude: 37.5, Longitude: 127})
	ctx := context.Background()

	f.at(37.5, 127)
	f.poller.Sample(ctx)

	require.NoError(t, f.repo.SaveHome(ctx, models.Coordinate{Latitude: 10, Longitude: 10}))
	f.at(37.5, 127)
	st := f.poller.Sample(ctx)
	assert.Equal(t, StateAway, st.State)
	assert.Equal(t, MsgAway, st.Message)
}

func TestNoHomeAndUnavailable(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	st := f.poller.Sample(ctx)
	assert.Equal(t, StateUnavailable, st.State)
	assert.Equal(t, MsgUnavailable, st.Message)

	f.at(37.5, 127)
	st = f.poller.Sample(ctx)
	assert.Equal(t, StateNoHome, st.State)
	assert.Nil(t, st.DistanceMeters)

	f.positions.SetForeground(false)
	st = f.poller.Sample(ctx)
	assert.Equal(t, StateUnavailable, st.State)

	f.positions.SetForeground(true)
	f.now = f.now.Add(2 * time.Minute)
	st = f.poller.Sample(ctx)
	assert.Equal(t, StateUnavailable, st.State)
}

func TestGoalsSortedByDistance(t *testing.T) {
	f := newFixture(t, &models.Coordinate{Latitude: 37.5, Longitude: 127})
	ctx := context.Background()
	require.NoError(t, f.repo.SaveActiveGoals(ctx, []models.Goal{
		{ID: "far", Text: "beach", Coordinate: &models.Coordinate{Latitude: 35, Longitude: 129}},
		{ID: "none", Text: "read"},
		{ID: "near", Text: "cafe", Coordinate: &models.Coordinate{Latitude: 37.51, Longitude: 127}},
	}))

	f.at(37.5, 127)
	st := f.poller.Sample(ctx)
	require.Len(t, st.Goals, 2)
	assert.Equal(t, "near", st.Goals[0].GoalID)
	assert.Equal(t, "far", st.Goals[1].GoalID)
}

func TestRunStopsWithContext(t *testing.T) {
	f := newFixture(t, nil)
	f.poller.interval = 5 * time.Millisecond
	f.poller.publish = nil

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.poller.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}

func TestReportRejectsInvalidFix(t *testing.T) {
	l := NewLatestPosition(0)
	assert.False(t, l.Report(models.Coordinate{Latitude: 91, Longitude: 0}, time.Time{}))
	_, err := l.CurrentPosition(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/arnold/goalfence-api/internal/models"
	"github.com/arnold/goalfence-api/internal/storage"
)

// flakyStore fails writes to one key while failKey is set.
type flakyStore struct {
	*storage.MemoryStore
	failKey string
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

type BridgeSuite struct {
	suite.Suite
	store  *flakyStore
	repo   *storage.Repository
	bridge *Bridge
	now    time.Time
	ctx    context.Context
}

func TestBridgeSuite(t *testing.T) {
	suite.Run(t, new(BridgeSuite))
}

func (s *BridgeSuite) SetupTest() {
	s.store = &flakyStore{MemoryStore: storage.NewMemoryStore()}
	s.repo = storage.NewRepository(s.store, nil)
	s.now = time.Date(2026, 5, 4, 18, 30, 0, 0, time.Local)
	s.bridge = NewBridge(s.repo, WithClock(func() time.Time { return s.now }))
	s.ctx = context.Background()

	s.Require().NoError(s.repo.SaveActiveGoals(s.ctx, []models.Goal{
		{ID: "41", Text: "read", Type: models.GoalTypeDo, CreatedAt: 1},
		{ID: "42", Text: "go to library", Type: models.GoalTypeGo, Place: "library",
			Coordinate: &models.Coordinate{Latitude: 10, Longitude: 10}, CreatedAt: 2},
	}))
}

func (s *BridgeSuite) TestCompleteMovesGoalExactlyOnce() {
	rec, err := s.bridge.Complete(s.ctx, "42")
	s.Require().NoError(err)
	s.Equal("42", rec.ID)
	s.Equal("go to library", rec.Text)
	s.Equal(s.now.UnixMilli(), rec.CompletedAt)
	s.Equal("2026-05-04", rec.DateKey)
	s.Empty(rec.Memo)
	s.Empty(rec.PhotoURI)
	s.Require().NotNil(rec.Coordinate)

	active, err := s.repo.ActiveGoals(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal("41", active[0].ID)

	_, err = s.bridge.Complete(s.ctx, "42")
	s.ErrorIs(err, ErrNotFound)

	records, err := s.repo.CompletedRecords(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal("42", records[0].ID)
}

func (s *BridgeSuite) TestCompletePrependsRecords() {
	_, err := s.bridge.Complete(s.ctx, "41")
	s.Require().NoError(err)
	_, err = s.bridge.Complete(s.ctx, "42")
	s.Require().NoError(err)

	records, err := s.repo.CompletedRecords(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal("42", records[0].ID)
	s.Equal("41", records[1].ID)

	active, err := s.repo.ActiveGoals(s.ctx)
	s.Require().NoError(err)
	s.Empty(active)
}

func (s *BridgeSuite) TestUnknownGoalIsNotFound() {
	_, err := s.bridge.Complete(s.ctx, "nope")
	s.ErrorIs(err, ErrNotFound)
}

func (s *BridgeSuite) TestCrashBetweenWritesIsRecoverable() {
	s.store.failKey = storage.KeyActiveGoals
	_, err := s.bridge.Complete(s.ctx, "42")
	s.Require().Error(err)

	records, err := s.repo.CompletedRecords(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 1, "completed set is written first")
	active, err := s.repo.ActiveGoals(s.ctx)
	s.Require().NoError(err)
	s.Len(active, 2)

	s.store.failKey = ""
	s.now = s.now.Add(time.Hour)
	rec, err := s.bridge.Complete(s.ctx, "42")
	s.Require().NoError(err)
	s.Equal(s.now.Add(-time.Hour).UnixMilli(), rec.CompletedAt, "original record is kept")

	records, err = s.repo.CompletedRecords(s.ctx)
	s.Require().NoError(err)
	s.Len(records, 1)
	active, err = s.repo.ActiveGoals(s.ctx)
	s.Require().NoError(err)
	s.Len(active, 1)
}

package geofence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/arnold/goalfence-api/internal/geofence/mocks"
	"github.com/arnold/goalfence-api/internal/models"
	"github.com/arnold/goalfence-api/internal/storage"
)

type CoordinatorSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	monitor  *mocks.MockRegionMonitor
	perms    *mocks.MockPermissions
	presence *mocks.MockPresenceResetter
	repo     *storage.Repository
	coord    *Coordinator
	ctx      context.Context
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.monitor = mocks.NewMockRegionMonitor(s.ctrl)
	s.perms = mocks.NewMockPermissions(s.ctrl)
	s.presence = mocks.NewMockPresenceResetter(s.ctrl)
	s.repo = storage.NewRepository(storage.NewMemoryStore(), nil)
	s.coord = NewCoordinator(s.repo, s.monitor, s.perms, s.presence, DefaultOptions())
	s.ctx = context.Background()
}

func (s *CoordinatorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *CoordinatorSuite) granted() {
	s.perms.EXPECT().LocationPermissions(gomock.Any()).
		Return(models.LocationPermissions{Foreground: true, Background: true}, nil)
}

func (s *CoordinatorSuite) seed(home *models.Coordinate, goals ...models.Goal) {
	if home != nil {
		s.Require().NoError(s.repo.SaveHome(s.ctx, *home))
	}
	s.Require().NoError(s.repo.SaveActiveGoals(s.ctx, goals))
}

func (s *CoordinatorSuite) TestNoHomeStopsMonitoring() {
	s.seed(nil, models.Goal{ID: "1", Text: "gym", Coordinate: coord(10, 10)})
	s.monitor.EXPECT().Stop(gomock.Any()).Return(nil)

	set, err := s.coord.Sync(s.ctx)
	s.Require().NoError(err)
	s.True(set.Empty())
}

func (s *CoordinatorSuite) TestRegistersOnlyWhenSignatureChanges() {
	s.seed(coord(37.5, 127), models.Goal{ID: "1", Text: "gym", Coordinate: coord(10, 10)})

	s.granted()
	s.monitor.EXPECT().Start(gomock.Any(), gomock.Len(2)).Return(nil)
	first, err := s.coord.Sync(s.ctx)
	s.Require().NoError(err)
	s.Len(first.Regions, 2)

	s.granted()
	s.monitor.EXPECT().IsRunning().Return(true)
	second, err := s.coord.Sync(s.ctx)
	s.Require().NoError(err)
	s.Equal(first.Signature, second.Signature)

	s.seed(nil,
		models.Goal{ID: "1", Text: "gym", Coordinate: coord(10, 10)},
		models.Goal{ID: "2", Text: "cafe", Coordinate: coord(11, 11)})
	s.granted()
	s.monitor.EXPECT().Start(gomock.Any(), gomock.Len(3)).Return(nil)
	third, err := s.coord.Sync(s.ctx)
	s.Require().NoError(err)
	s.NotEqual(first.Signature, third.Signature)
}

func (s *CoordinatorSuite) TestReRegistersWhenMonitorStoppedExternally() {
	s.seed(coord(37.5, 127))

	s.granted()
	s.monitor.EXPECT().Start(gomock.Any(), gomock.Any()).Return(nil)
	_, err := s.coord.Sync(s.ctx)
	s.Require().NoError(err)

	s.granted()
	s.monitor.EXPECT().IsRunning().Return(false)
	s.monitor.EXPECT().Start(gomock.Any(), gomock.Any()).Return(nil)
	_, err = s.coord.Sync(s.ctx)
	s.Require().NoError(err)
}

func (s *CoordinatorSuite) TestPermissionDeniedLeavesMonitoringUntouched() {
	s.seed(coord(37.5, 127))

	s.perms.EXPECT().LocationPermissions(gomock.Any()).
		Return(models.LocationPermissions{Foreground: true, Background: false}, nil)

	_, err := s.coord.Sync(s.ctx)
	s.Require().ErrorIs(err, ErrPermissionDenied)
	s.True(s.coord.current.Empty())
}

func (s *CoordinatorSuite) TestStartFailureKeepsPreviousSignature() {
	s.seed(coord(37.5, 127))

	s.granted()
	s.monitor.EXPECT().Start(gomock.Any(), gomock.Any()).Return(errors.New("host refused"))
	_, err := s.coord.Sync(s.ctx)
	s.Require().Error(err)
	s.Empty(s.coord.lastSignature)
}

func (s *CoordinatorSuite) TestSetHomeResetsPresence() {
	gomock.InOrder(
		s.presence.EXPECT().Reset(gomock.Any(), models.HomeRegionID).Return(nil),
		s.perms.EXPECT().LocationPermissions(gomock.Any()).
			Return(models.LocationPermissions{Foreground: true, Background: true}, nil),
		s.monitor.EXPECT().Start(gomock.Any(), gomock.Len(1)).Return(nil),
	)

	set, err := s.coord.SetHome(s.ctx, models.Coordinate{Latitude: 37.5, Longitude: 127})
	s.Require().NoError(err)
	s.Equal(models.HomeRegionID, set.Regions[0].ID)

	home, err := s.repo.Home(s.ctx)
	s.Require().NoError(err)
	s.Equal(37.5, home.Latitude)
}

func (s *CoordinatorSuite) TestClearHomeStops() {
	s.seed(coord(37.5, 127))
	s.presence.EXPECT().Reset(gomock.Any(), models.HomeRegionID).Return(nil)
	s.monitor.EXPECT().Stop(gomock.Any()).Return(nil)

	set, err := s.coord.ClearHome(s.ctx)
	s.Require().NoError(err)
	s.True(set.Empty())
}

func (s *CoordinatorSuite) TestDisableStopsAndEnableRestarts() {
	s.seed(coord(37.5, 127))

	s.monitor.EXPECT().Stop(gomock.Any()).Return(nil)
	set, err := s.coord.SetEnabled(s.ctx, false)
	s.Require().NoError(err)
	s.True(set.Empty())

	s.granted()
	s.monitor.EXPECT().Start(gomock.Any(), gomock.Len(1)).Return(nil)
	set, err = s.coord.SetEnabled(s.ctx, true)
	s.Require().NoError(err)
	s.Len(set.Regions, 1)

	s.monitor.EXPECT().IsRunning().Return(true)
	status := s.coord.Status()
	s.True(status.Enabled)
	s.True(status.Running)
}

func (s *CoordinatorSuite) TestDisabledSwitchSurvivesRestart() {
	s.seed(coord(37.5, 127))

	s.monitor.EXPECT().Stop(gomock.Any()).Return(nil)
	_, err := s.coord.SetEnabled(s.ctx, false)
	s.Require().NoError(err)

	restarted := NewCoordinator(s.repo, s.monitor, s.perms, s.presence, DefaultOptions())
	s.monitor.EXPECT().Stop(gomock.Any()).Return(nil)
	set, err := restarted.Sync(s.ctx)
	s.Require().NoError(err)
	s.True(set.Empty())

	s.monitor.EXPECT().IsRunning().Return(false)
	s.False(restarted.Status().Enabled)
}

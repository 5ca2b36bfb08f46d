package geofence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/arnold/goalfence-api/internal/metrics"
	"github.com/arnold/goalfence-api/internal/models"
	"github.com/arnold/goalfence-api/internal/storage"
)

// ErrPermissionDenied is returned when foreground or background location is
// not granted. Monitoring is left as it was.
var ErrPermissionDenied = errors.New("geofence: location permission denied")

// Status is what the API reports about monitoring.
type Status struct {
	Enabled bool      `json:"enabled"`
	Running bool      `json:"running"`
	Set     RegionSet `json:"set"`
}

// Coordinator keeps the region monitor registered with the set derived from
// storage. It only re-registers when the set's signature changes, since a
// re-registration can briefly drop live monitoring.
type Coordinator struct {
	repo     *storage.Repository
	monitor  RegionMonitor
	perms    Permissions
	presence PresenceResetter
	opts     Options
	logger   *zap.Logger
	metrics  *metrics.Metrics

	mu            sync.Mutex
	enabled       bool
	lastSignature string
	current       RegionSet
}

type CoordinatorOption func(*Coordinator)

func WithLogger(l *zap.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = l }
}

func WithMetrics(m *metrics.Metrics) CoordinatorOption {
	return func(c *Coordinator) { c.metrics = m }
}

func NewCoordinator(repo *storage.Repository, monitor RegionMonitor, perms Permissions, presence PresenceResetter, opts Options, options ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		repo:     repo,
		monitor:  monitor,
		perms:    perms,
		presence: presence,
		opts:     opts,
		logger:   zap.NewNop(),
		enabled:  true,
		current:  RegionSet{Regions: []models.GeofenceRegion{}},
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Sync recomputes the region set from storage and brings the monitor in line
// with it.
func (c *Coordinator) Sync(ctx context.Context) (RegionSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncLocked(ctx)
}

func (c *Coordinator) syncLocked(ctx context.Context) (RegionSet, error) {
	home, err := c.repo.Home(ctx)
	if err != nil {
		return c.current, fmt.Errorf("load home: %w", err)
	}
	goals, err := c.repo.ActiveGoals(ctx)
	if err != nil {
		return c.current, fmt.Errorf("load active goals: %w", err)
	}

	enabled, err := c.repo.MonitoringEnabled(ctx)
	if err != nil {
		return c.current, fmt.Errorf("load monitoring switch: %w", err)
	}
	c.enabled = enabled

	set := Recompute(home, GoalPoints(goals), c.opts)
	if set.Truncated > 0 {
		c.logger.Debug("Goal regions truncated",
			zap.Int("kept", c.opts.MaxGoalRegions),
			zap.Int("dropped", set.Truncated))
	}

	if !c.enabled || set.Empty() {
		if !c.enabled {
			set = RegionSet{Regions: []models.GeofenceRegion{}}
		}
		if err := c.monitor.Stop(ctx); err != nil {
			return c.current, fmt.Errorf("stop monitoring: %w", err)
		}
		c.lastSignature = ""
		c.current = set
		c.metrics.ObserveStopped()
		return set, nil
	}

	if err := c.checkPermissions(ctx); err != nil {
		return c.current, err
	}

	if set.Signature == c.lastSignature && c.monitor.IsRunning() {
		return set, nil
	}

	if err := c.monitor.Start(ctx, set.Regions); err != nil {
		return c.current, fmt.Errorf("start monitoring: %w", err)
	}
	c.lastSignature = set.Signature
	c.current = set
	c.metrics.ObserveRegistration(len(set.Regions), set.Truncated)
	c.logger.Info("Regions registered",
		zap.Int("regions", len(set.Regions)),
		zap.String("signature", set.Signature))
	return set, nil
}

func (c *Coordinator) checkPermissions(ctx context.Context) error {
	p, err := c.perms.LocationPermissions(ctx)
	if err != nil {
		return fmt.Errorf("load permissions: %w", err)
	}
	if !p.Foreground || !p.Background {
		c.logger.Warn("Location permission missing, monitoring unchanged",
			zap.Bool("foreground", p.Foreground),
			zap.Bool("background", p.Background))
		return ErrPermissionDenied
	}
	return nil
}

// SetHome stores a new home point. The home region's presence goes back to
// unknown so the next event only establishes a baseline.
func (c *Coordinator) SetHome(ctx context.Context, home models.Coordinate) (RegionSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.repo.SaveHome(ctx, home); err != nil {
		return c.current, fmt.Errorf("save home: %w", err)
	}
	if err := c.presence.Reset(ctx, models.HomeRegionID); err != nil {
		return c.current, fmt.Errorf("reset home presence: %w", err)
	}
	return c.syncLocked(ctx)
}

// ClearHome removes the home point, which stops all monitoring.
func (c *Coordinator) ClearHome(ctx context.Context) (RegionSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.repo.ClearHome(ctx); err != nil {
		return c.current, fmt.Errorf("clear home: %w", err)
	}
	if err := c.presence.Reset(ctx, models.HomeRegionID); err != nil {
		return c.current, fmt.Errorf("reset home presence: %w", err)
	}
	return c.syncLocked(ctx)
}

// SetEnabled turns background detection on or off. The switch is persisted so
// it survives a restart.
func (c *Coordinator) SetEnabled(ctx context.Context, enabled bool) (RegionSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.repo.SaveMonitoringEnabled(ctx, enabled); err != nil {
		return c.current, fmt.Errorf("save monitoring switch: %w", err)
	}
	return c.syncLocked(ctx)
}

func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Enabled: c.enabled,
		Running: c.monitor.IsRunning(),
		Set:     c.current,
	}
}

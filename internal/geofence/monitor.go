package geofence

//go:generate mockgen -source=monitor.go -destination=mocks/mocks.go -package=mocks RegionMonitor,Permissions,PresenceResetter

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arnold/goalfence-api/internal/geo"
	"github.com/arnold/goalfence-api/internal/models"
)

// RegionMonitor is the host service watching regions. Start replaces the
// whole monitored set; Stop takes effect before it returns.
type RegionMonitor interface {
	Start(ctx context.Context, regions []models.GeofenceRegion) error
	Stop(ctx context.Context) error
	IsRunning() bool
}

// Permissions reports the location grants last seen from the device.
type Permissions interface {
	LocationPermissions(ctx context.Context) (models.LocationPermissions, error)
}

// PresenceResetter forgets the persisted presence of regions whose definition changed.
type PresenceResetter interface {
	Reset(ctx context.Context, regionIDs ...string) error
}

// HandlerFunc receives one Enter/Exit callback.
type HandlerFunc func(ctx context.Context, ev models.EventRecord)

const (
	queueSize      = 64
	handlerTimeout = 10 * time.Second
)

type delivery struct {
	gen uint64
	ev  models.EventRecord
}

// LocalMonitor is an in-process RegionMonitor fed with device position
// reports. It calls the handler from its own goroutine (see Run), one event
// at a time, the way a host delivers geofence callbacks to a background task.
type LocalMonitor struct {
	handler HandlerFunc
	logger  *zap.Logger
	now     func() time.Time
	queue   chan delivery

	mu      sync.Mutex
	running bool
	gen     uint64
	regions []models.GeofenceRegion
	inside  map[string]bool
	last    *models.Coordinate

	// held while the handler runs; Start and Stop wait on it
	callMu sync.Mutex
}

func NewLocalMonitor(handler HandlerFunc, logger *zap.Logger) *LocalMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalMonitor{
		handler: handler,
		logger:  logger,
		now:     time.Now,
		queue:   make(chan delivery, queueSize),
	}
}

// Start replaces the monitored set. If a position is already known, each new
// region reports its initial state right away.
func (m *LocalMonitor) Start(_ context.Context, regions []models.GeofenceRegion) error {
	m.mu.Lock()
	m.gen++
	m.running = true
	m.regions = append([]models.GeofenceRegion(nil), regions...)
	m.inside = make(map[string]bool, len(regions))
	var events []models.EventRecord
	if m.last != nil {
		events = m.evaluateLocked(*m.last)
	}
	gen := m.gen
	m.mu.Unlock()

	m.drain()
	for _, ev := range events {
		m.enqueue(gen, ev)
	}
	m.logger.Info("Region monitoring started", zap.Int("regions", len(regions)))
	return nil
}

// Stop drops the monitored set. Once it returns the handler is not running
// and will not be called for any event of the previous set.
func (m *LocalMonitor) Stop(_ context.Context) error {
	m.mu.Lock()
	wasRunning := m.running
	m.gen++
	m.running = false
	m.regions = nil
	m.inside = nil
	m.mu.Unlock()

	m.drain()
	if wasRunning {
		m.logger.Info("Region monitoring stopped")
	}
	return nil
}

func (m *LocalMonitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Regions returns a copy of the monitored set.
func (m *LocalMonitor) Regions() []models.GeofenceRegion {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.GeofenceRegion(nil), m.regions...)
}

// Observe feeds a device position and queues an event for every region
// boundary crossed since the previous position. It returns how many events
// were queued.
func (m *LocalMonitor) Observe(c models.Coordinate) int {
	m.mu.Lock()
	p := c
	m.last = &p
	if !m.running {
		m.mu.Unlock()
		return 0
	}
	events := m.evaluateLocked(c)
	gen := m.gen
	m.mu.Unlock()

	queued := 0
	for _, ev := range events {
		if m.enqueue(gen, ev) {
			queued++
		}
	}
	return queued
}

// Deliver queues a callback reported by the device itself. It is rejected
// when monitoring is stopped.
func (m *LocalMonitor) Deliver(ev models.EventRecord) bool {
	m.mu.Lock()
	running, gen := m.running, m.gen
	m.mu.Unlock()
	if !running {
		return false
	}
	if ev.ObservedAt.IsZero() {
		ev.ObservedAt = m.now()
	}
	return m.enqueue(gen, ev)
}

func (m *LocalMonitor) evaluateLocked(c models.Coordinate) []models.EventRecord {
	var events []models.EventRecord
	now := m.now()
	for _, r := range m.regions {
		in := geo.Within(r.Center, c, r.RadiusMeters)
		prev, known := m.inside[r.ID]
		m.inside[r.ID] = in
		if known && prev == in {
			continue
		}
		ev := models.EventRecord{RegionID: r.ID, EventType: models.EventExit, ObservedAt: now}
		if in {
			ev.EventType = models.EventEnter
		}
		events = append(events, ev)
	}
	return events
}

func (m *LocalMonitor) enqueue(gen uint64, ev models.EventRecord) bool {
	select {
	case m.queue <- delivery{gen: gen, ev: ev}:
		return true
	default:
		m.logger.Warn("Dropping geofence event, queue full",
			zap.String("region", ev.RegionID),
			zap.String("event", string(ev.EventType)))
		return false
	}
}

func (m *LocalMonitor) drain() {
	m.callMu.Lock()
	defer m.callMu.Unlock()
}

// Run delivers queued events to the handler until ctx is done.
func (m *LocalMonitor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d := <-m.queue:
			m.dispatch(ctx, d)
		}
	}
}

func (m *LocalMonitor) dispatch(ctx context.Context, d delivery) {
	m.callMu.Lock()
	defer m.callMu.Unlock()

	m.mu.Lock()
	current := m.running && d.gen == m.gen
	m.mu.Unlock()
	if !current {
		return
	}

	hctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()
	m.handler(hctx, d.ev)
}

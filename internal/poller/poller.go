// Package poller derives the foreground home status from the device's
// position. It never writes storage and never fires notifications; the
// background processor owns both.
package poller

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arnold/goalfence-api/internal/geo"
	"github.com/arnold/goalfence-api/internal/metrics"
	"github.com/arnold/goalfence-api/internal/models"
	"github.com/arnold/goalfence-api/internal/storage"
)

type State string

const (
	StateUnavailable State = "unavailable"
	StateNoHome      State = "no-home"
	StateHome        State = "home"
	StateAway        State = "away"
)

// Displayed messages.
const (
	MsgUnavailable = "Location is not available right now."
	MsgNoHome      = "Set your home location in your profile."
	MsgLocating    = "Checking your location..."
	MsgAtHome      = "You're near home."
	MsgAway        = "You're away from home."
	MsgDeparted    = "Off you go!"
	MsgArrived     = "You've arrived near home!"
)

type GoalDistance struct {
	GoalID         string  `json:"goalId"`
	Text           string  `json:"text"`
	DistanceMeters float64 `json:"distanceMeters"`
}

// Status is one foreground sample. DistanceMeters is nil unless both a home
// and a fix are known.
type Status struct {
	State          State          `json:"state"`
	Message        string         `json:"message"`
	DistanceMeters *float64       `json:"distanceMeters,omitempty"`
	Goals          []GoalDistance `json:"goals"`
	SampledAt      time.Time      `json:"sampledAt"`
}

type Poller struct {
	repo       *storage.Repository
	positions  PositionProvider
	homeRadius float64
	cooldown   time.Duration
	interval   time.Duration
	publish    func(Status)
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time

	mu          sync.Mutex
	wasInside   *bool
	home        *models.Coordinate
	lastTrigger time.Time
	last        Status
}

type Option func(*Poller)

func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Poller) { p.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

func WithMessageCooldown(d time.Duration) Option {
	return func(p *Poller) { p.cooldown = d }
}

// WithPublisher receives every sample, e.g. to push it to WebSocket clients.
func WithPublisher(fn func(Status)) Option {
	return func(p *Poller) { p.publish = fn }
}

func New(repo *storage.Repository, positions PositionProvider, homeRadius float64, opts ...Option) *Poller {
	p := &Poller{
		repo:       repo,
		positions:  positions,
		homeRadius: homeRadius,
		cooldown:   5 * time.Second,
		interval:   5 * time.Second,
		logger:     zap.NewNop(),
		now:        time.Now,
		last:       Status{State: StateUnavailable, Message: MsgUnavailable, Goals: []GoalDistance{}},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Last returns the most recent sample.
func (p *Poller) Last() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Sample takes one reading. Failures degrade to an unavailable status.
func (p *Poller) Sample(ctx context.Context) Status {
	p.mu.Lock()
	st := p.sampleLocked(ctx)
	p.last = st
	p.mu.Unlock()

	p.metrics.IncPresenceSample(string(st.State))
	if p.publish != nil {
		p.publish(st)
	}
	return st
}

func (p *Poller) sampleLocked(ctx context.Context) Status {
	now := p.now()
	st := Status{State: StateUnavailable, Message: MsgUnavailable, Goals: []GoalDistance{}, SampledAt: now}

	home, err := p.repo.Home(ctx)
	if err != nil {
		p.logger.Warn("Failed to read home", zap.Error(err))
		return st
	}
	if !sameHome(home, p.home) {
		p.wasInside = nil
	}
	p.home = home

	pos, err := p.positions.CurrentPosition(ctx)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) && !errors.Is(err, ErrPermissionDenied) {
			p.logger.Warn("Failed to get position", zap.Error(err))
		}
		if home != nil && errors.Is(err, ErrUnavailable) {
			st.Message = MsgLocating
		}
		return st
	}

	goals, err := p.repo.ActiveGoals(ctx)
	if err != nil {
		p.logger.Warn("Failed to read goals", zap.Error(err))
	}
	st.Goals = distances(pos, goals)

	if home == nil {
		st.State, st.Message = StateNoHome, MsgNoHome
		return st
	}

	d := geo.Distance(*home, pos)
	st.DistanceMeters = &d
	inside := d <= p.homeRadius
	st.State = StateAway
	if inside {
		st.State = StateHome
	}
	st.Message = p.message(inside, now)
	return st
}

func (p *Poller) message(inside bool, now time.Time) string {
	steady := MsgAway
	if inside {
		steady = MsgAtHome
	}
	if p.wasInside == nil {
		p.wasInside = &inside
		return steady
	}

	was := *p.wasInside
	p.wasInside = &inside
	if was == inside || now.Sub(p.lastTrigger) <= p.cooldown {
		return steady
	}
	p.lastTrigger = now
	if inside {
		return MsgArrived
	}
	return MsgDeparted
}

// Run samples every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	p.Sample(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			p.Sample(ctx)
		}
	}
}

func distances(pos models.Coordinate, goals []models.Goal) []GoalDistance {
	out := make([]GoalDistance, 0, len(goals))
	for _, g := range goals {
		if g.Coordinate == nil {
			continue
		}
		d := geo.Distance(pos, *g.Coordinate)
		if math.IsNaN(d) {
			continue
		}
		out = append(out, GoalDistance{GoalID: g.ID, Text: g.Text, DistanceMeters: d})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceMeters < out[j].DistanceMeters
	})
	return out
}

func sameHome(a, b *models.Coordinate) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

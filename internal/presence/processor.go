// Package presence turns geofence Enter/Exit callbacks into persisted
// presence transitions and their side effects.
package presence

//go:generate mockgen -source=processor.go -destination=mocks/mocks.go -package=mocks Notifier,Completer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arnold/goalfence-api/internal/lifecycle"
	"github.com/arnold/goalfence-api/internal/metrics"
	"github.com/arnold/goalfence-api/internal/models"
	"github.com/arnold/goalfence-api/internal/storage"
)

// Notifier shows a local notification right away.
type Notifier interface {
	NotifyNow(ctx context.Context, title, body string) error
}

// Completer migrates an active goal to the completed set.
type Completer interface {
	Complete(ctx context.Context, goalID string) (models.CompletedRecord, error)
}

type Outcome string

const (
	OutcomeIgnored    Outcome = "ignored"
	OutcomeDebounced  Outcome = "debounced"
	OutcomeBaseline   Outcome = "baseline"
	OutcomeUnchanged  Outcome = "unchanged"
	OutcomeTransition Outcome = "transition"
	OutcomeAborted    Outcome = "aborted"
)

const DefaultCooldown = 5 * time.Second

// Notification texts.
const (
	TitleArrivedHome  = "Welcome back!"
	BodyArrivedHome   = "You're near home."
	TitleDepartedHome = "Off you go!"
	BodyDepartedHome  = "You've left home. Have a great start!"
	TitleGoalReached  = "Goal reached"
)

// Processor handles one geofence callback at a time. Apart from the debounce
// cache it keeps no state between calls; everything else is read from and
// written to storage.
type Processor struct {
	state     *StateStore
	repo      *storage.Repository
	notifier  Notifier
	completer Completer
	debounce  *Debouncer
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

type Option func(*Processor)

func WithLogger(l *zap.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

func WithCooldown(d time.Duration) Option {
	return func(p *Processor) { p.debounce = NewDebouncer(d) }
}

func NewProcessor(state *StateStore, repo *storage.Repository, notifier Notifier, completer Completer, opts ...Option) *Processor {
	p := &Processor{
		state:     state,
		repo:      repo,
		notifier:  notifier,
		completer: completer,
		debounce:  NewDebouncer(DefaultCooldown),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Handle processes ev. It never panics and never returns an error: a failed
// storage read or write aborts the event without touching state, and the
// next physical event re-derives the truth.
func (p *Processor) Handle(ctx context.Context, ev models.EventRecord) (out Outcome) {
	log := p.logger.With(zap.String("region", ev.RegionID), zap.String("event", string(ev.EventType)))
	var debounceKey string
	defer func() {
		if r := recover(); r != nil {
			log.Error("Geofence handler panicked", zap.Any("panic", r))
			out = OutcomeAborted
		}
		// an aborted event must not suppress the host's redelivery
		if out == OutcomeAborted && debounceKey != "" {
			p.debounce.Forget(debounceKey)
		}
		p.metrics.IncPresenceEvent(string(out))
	}()

	kind, goalID, ok := models.ParseRegionID(ev.RegionID)
	next := ev.EventType.Presence()
	if !ok || next == models.PresenceUnknown {
		log.Warn("Ignoring unrecognized geofence event")
		return OutcomeIgnored
	}

	key := ev.RegionID + ":" + string(ev.EventType)
	if !p.debounce.Allow(key, p.now()) {
		log.Debug("Geofence event within cooldown")
		return OutcomeDebounced
	}
	debounceKey = key

	prev, err := p.state.Get(ctx, ev.RegionID)
	if err != nil {
		log.Error("Failed to read presence state", zap.Error(err))
		return OutcomeAborted
	}

	if prev == models.PresenceUnknown {
		if err := p.state.Set(ctx, ev.RegionID, next); err != nil {
			log.Error("Failed to store presence baseline", zap.Error(err))
			return OutcomeAborted
		}
		log.Info("Presence baseline established", zap.String("state", string(next)))
		return OutcomeBaseline
	}

	if prev == next {
		return OutcomeUnchanged
	}

	if kind == models.RegionGoal && next == models.PresenceInside {
		return p.reachGoal(ctx, log, ev.RegionID, goalID, prev)
	}

	if err := p.state.Set(ctx, ev.RegionID, next); err != nil {
		log.Error("Failed to store presence transition", zap.Error(err))
		return OutcomeAborted
	}
	log.Info("Presence changed",
		zap.String("from", string(prev)),
		zap.String("to", string(next)))

	if kind == models.RegionHome {
		if next == models.PresenceInside {
			p.notify(ctx, log, "home_arrived", TitleArrivedHome, BodyArrivedHome)
		} else {
			p.notify(ctx, log, "home_departed", TitleDepartedHome, BodyDepartedHome)
		}
	}
	return OutcomeTransition
}

// reachGoal completes the goal before recording Inside, so a storage failure
// leaves presence at prev and the next Enter retries the completion.
func (p *Processor) reachGoal(ctx context.Context, log *zap.Logger, regionID, goalID string, prev models.PresenceValue) Outcome {
	text, err := p.goalText(ctx, goalID)
	if err != nil {
		log.Error("Failed to look up goal", zap.Error(err))
		return OutcomeAborted
	}

	completed := true
	if _, err := p.completer.Complete(ctx, goalID); err != nil {
		if !errors.Is(err, lifecycle.ErrNotFound) {
			log.Error("Failed to complete goal", zap.String("goal", goalID), zap.Error(err))
			return OutcomeAborted
		}
		log.Debug("Goal already completed elsewhere", zap.String("goal", goalID))
		completed = false
	}
	if completed {
		p.metrics.IncGoalCompleted("arrival")
		if text != "" {
			p.notify(ctx, log, "goal_reached", TitleGoalReached, text)
		}
	}

	if err := p.state.Set(ctx, regionID, models.PresenceInside); err != nil {
		log.Error("Failed to store presence transition", zap.Error(err))
		return OutcomeAborted
	}
	log.Info("Presence changed",
		zap.String("from", string(prev)),
		zap.String("to", string(models.PresenceInside)))
	return OutcomeTransition
}

// goalText returns "" when the goal is no longer active.
func (p *Processor) goalText(ctx context.Context, goalID string) (string, error) {
	goals, err := p.repo.ActiveGoals(ctx)
	if err != nil {
		return "", fmt.Errorf("load active goals: %w", err)
	}
	for _, g := range goals {
		if g.ID == goalID {
			return g.Text, nil
		}
	}
	return "", nil
}

// notify is fire-and-forget: the persisted transition stands whether or not
// the notification goes out, so failures are only logged.
func (p *Processor) notify(ctx context.Context, log *zap.Logger, kind, title, body string) {
	err := p.notifier.NotifyNow(ctx, title, body)
	p.metrics.IncNotification(kind, err)
	if err != nil {
		log.Warn("Notification failed", zap.String("kind", kind), zap.Error(err))
	}
}

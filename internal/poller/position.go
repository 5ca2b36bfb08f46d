package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/arnold/goalfence-api/internal/geo"
	"github.com/arnold/goalfence-api/internal/models"
)

var (
	ErrUnavailable      = errors.New("poller: no current position")
	ErrPermissionDenied = errors.New("poller: foreground location denied")
)

// PositionProvider answers the device's current position.
type PositionProvider interface {
	CurrentPosition(ctx context.Context) (models.Coordinate, error)
}

// LatestPosition remembers the last fix the device reported. A fix older than
// maxAge counts as no fix at all.
type LatestPosition struct {
	maxAge time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	pos     *models.Coordinate
	at      time.Time
	allowed bool
}

func NewLatestPosition(maxAge time.Duration) *LatestPosition {
	return &LatestPosition{maxAge: maxAge, now: time.Now, allowed: true}
}

// Report stores a fix. Invalid coordinates are rejected.
func (l *LatestPosition) Report(c models.Coordinate, at time.Time) bool {
	clean := geo.Clean(&c)
	if clean == nil {
		return false
	}
	if at.IsZero() {
		at = l.now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pos, l.at = clean, at
	return true
}

// SetForeground records whether the device currently grants foreground location.
func (l *LatestPosition) SetForeground(granted bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowed = granted
}

func (l *LatestPosition) CurrentPosition(_ context.Context) (models.Coordinate, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.allowed {
		return models.Coordinate{}, ErrPermissionDenied
	}
	if l.pos == nil {
		return models.Coordinate{}, ErrUnavailable
	}
	if l.maxAge > 0 && l.now().Sub(l.at) > l.maxAge {
		return models.Coordinate{}, ErrUnavailable
	}
	return *l.pos, nil
}

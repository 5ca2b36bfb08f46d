// Package lifecycle moves goals from the active set to the completed set.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arnold/goalfence-api/internal/geo"
	"github.com/arnold/goalfence-api/internal/models"
	"github.com/arnold/goalfence-api/internal/storage"
)

// ErrNotFound means the goal is not active. It is the expected result when the
// goal was already completed through another path.
var ErrNotFound = errors.New("lifecycle: goal not in active set")

type Bridge struct {
	repo   *storage.Repository
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Bridge)

func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) { b.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(b *Bridge) { b.now = now }
}

func NewBridge(repo *storage.Repository, opts ...Option) *Bridge {
	b := &Bridge{repo: repo, logger: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Complete migrates goalID. The completed set is written before the goal is
// removed from the active set: a crash in between leaves the goal in both
// sets, and the next Complete for it only finishes the removal.
func (b *Bridge) Complete(ctx context.Context, goalID string) (models.CompletedRecord, error) {
	goals, err := b.repo.ActiveGoals(ctx)
	if err != nil {
		return models.CompletedRecord{}, fmt.Errorf("load active goals: %w", err)
	}
	idx := -1
	for i, g := range goals {
		if g.ID == goalID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.CompletedRecord{}, ErrNotFound
	}

	records, err := b.repo.CompletedRecords(ctx)
	if err != nil {
		return models.CompletedRecord{}, fmt.Errorf("load completed records: %w", err)
	}

	var rec models.CompletedRecord
	found := false
	for _, r := range records {
		if r.ID == goalID {
			rec, found = r, true
			break
		}
	}
	if found {
		b.logger.Warn("Goal already has a completed record, finishing removal",
			zap.String("goal", goalID))
	} else {
		now := b.now()
		rec = models.CompletedRecord{
			Goal:        goals[idx],
			CompletedAt: now.UnixMilli(),
			DateKey:     geo.DateKey(now),
		}
		records = append([]models.CompletedRecord{rec}, records...)
		if err := b.repo.SaveCompletedRecords(ctx, records); err != nil {
			return models.CompletedRecord{}, fmt.Errorf("save completed records: %w", err)
		}
	}

	remaining := append(goals[:idx:idx], goals[idx+1:]...)
	if err := b.repo.SaveActiveGoals(ctx, remaining); err != nil {
		return models.CompletedRecord{}, fmt.Errorf("save active goals: %w", err)
	}

	b.logger.Info("Goal completed", zap.String("goal", goalID), zap.String("dateKey", rec.DateKey))
	return rec, nil
}

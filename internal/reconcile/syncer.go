// Package reconcile keeps the foreground's view of goals and records in step
// with writes made by the background processor. Storage is the only channel
// between the two; there is no in-process signal.
package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arnold/goalfence-api/internal/metrics"
	"github.com/arnold/goalfence-api/internal/models"
	"github.com/arnold/goalfence-api/internal/storage"
)

// Snapshot is the foreground's cached copy of the goal collections.
type Snapshot struct {
	Goals   []models.Goal            `json:"goals"`
	Records []models.CompletedRecord `json:"records"`
	Version uint64                   `json:"version"`
}

// Cache holds the latest Snapshot. Replace swaps it wholesale.
type Cache struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewCache() *Cache {
	return &Cache{snap: Snapshot{Goals: []models.Goal{}, Records: []models.CompletedRecord{}}}
}

func (c *Cache) Get() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Cache) Replace(goals []models.Goal, records []models.CompletedRecord) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = Snapshot{Goals: goals, Records: records, Version: c.snap.Version + 1}
	return c.snap
}

type Syncer struct {
	repo     *storage.Repository
	cache    *Cache
	interval time.Duration
	onChange func(context.Context, Snapshot)
	logger   *zap.Logger
	metrics  *metrics.Metrics

	mu          sync.Mutex
	lastGoals   []byte
	lastRecords []byte
	primed      bool
	resume      chan struct{}
}

type Option func(*Syncer)

func WithLogger(l *zap.Logger) Option {
	return func(s *Syncer) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Syncer) { s.metrics = m }
}

func WithInterval(d time.Duration) Option {
	return func(s *Syncer) { s.interval = d }
}

// WithOnChange is called after every cache replacement.
func WithOnChange(fn func(context.Context, Snapshot)) Option {
	return func(s *Syncer) { s.onChange = fn }
}

func NewSyncer(repo *storage.Repository, cache *Cache, opts ...Option) *Syncer {
	s := &Syncer{
		repo:     repo,
		cache:    cache,
		interval: time.Second,
		logger:   zap.NewNop(),
		resume:   make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Check compares the stored collections byte-for-byte with the last snapshot
// and refreshes the cache when either differs.
func (s *Syncer) Check(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	goalsRaw, err := s.repo.Raw(ctx, storage.KeyActiveGoals)
	if err != nil {
		return false, fmt.Errorf("read active goals: %w", err)
	}
	recordsRaw, err := s.repo.Raw(ctx, storage.KeyCompletedRecords)
	if err != nil {
		return false, fmt.Errorf("read completed records: %w", err)
	}
	if s.primed && bytes.Equal(goalsRaw, s.lastGoals) && bytes.Equal(recordsRaw, s.lastRecords) {
		return false, nil
	}

	snap := s.cache.Replace(s.decodeGoals(goalsRaw), s.decodeRecords(recordsRaw))
	s.lastGoals, s.lastRecords, s.primed = goalsRaw, recordsRaw, true
	s.metrics.IncSyncRefresh()
	s.logger.Debug("Goal cache refreshed",
		zap.Int("goals", len(snap.Goals)),
		zap.Int("records", len(snap.Records)),
		zap.Uint64("version", snap.Version))

	if s.onChange != nil {
		s.onChange(ctx, snap)
	}
	return true, nil
}

func (s *Syncer) decodeGoals(raw []byte) []models.Goal {
	var goals []models.Goal
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &goals); err != nil {
			s.logger.Warn("falling back to default",
				zap.String("key", storage.KeyActiveGoals),
				zap.Error(fmt.Errorf("%w: %v", storage.ErrStorageCorrupt, err)))
			goals = nil
		}
	}
	return storage.DecodeGoals(goals)
}

func (s *Syncer) decodeRecords(raw []byte) []models.CompletedRecord {
	var records []models.CompletedRecord
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &records); err != nil {
			s.logger.Warn("falling back to default",
				zap.String("key", storage.KeyCompletedRecords),
				zap.Error(fmt.Errorf("%w: %v", storage.ErrStorageCorrupt, err)))
			records = nil
		}
	}
	return storage.DecodeRecords(records)
}

// Resume asks Run for an immediate check, as when the app returns to the
// foreground. It never blocks.
func (s *Syncer) Resume() {
	select {
	case s.resume <- struct{}{}:
	default:
	}
}

// Run checks every interval and on each Resume until ctx is done.
func (s *Syncer) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	s.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.check(ctx)
		case <-s.resume:
			s.check(ctx)
		}
	}
}

func (s *Syncer) check(ctx context.Context) {
	if _, err := s.Check(ctx); err != nil {
		s.logger.Warn("Goal sync failed", zap.Error(err))
	}
}

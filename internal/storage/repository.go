package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/arnold/goalfence-api/internal/geo"
	"github.com/arnold/goalfence-api/internal/models"
)

const DefaultReminderTime = "09:00"

// Repository decodes the persisted keys. A missing or corrupt document yields
// the key's default value; only backend failures are returned as errors.
type Repository struct {
	store  Store
	logger *zap.Logger
}

func NewRepository(store Store, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{store: store, logger: logger}
}

// Raw returns the stored bytes for key, or nil when the key is absent.
func (r *Repository) Raw(ctx context.Context, key string) ([]byte, error) {
	b, err := r.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return b, err
}

func (r *Repository) load(ctx context.Context, key string, dst any) error {
	b, err := r.Raw(ctx, key)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		r.logger.Warn("falling back to default",
			zap.String("key", key),
			zap.Error(fmt.Errorf("%w: %v", ErrStorageCorrupt, err)))
		return errCorrupt
	}
	return nil
}

// errCorrupt tells typed getters to discard whatever was partially decoded.
var errCorrupt = errors.New("corrupt")

func (r *Repository) save(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.store.Set(ctx, key, b)
}

func (r *Repository) ActiveGoals(ctx context.Context) ([]models.Goal, error) {
	var raw []models.Goal
	if err := r.load(ctx, KeyActiveGoals, &raw); err != nil {
		if errors.Is(err, errCorrupt) {
			return []models.Goal{}, nil
		}
		return nil, err
	}
	return DecodeGoals(raw), nil
}

// DecodeGoals drops entries without id or text and cleans coordinates.
func DecodeGoals(raw []models.Goal) []models.Goal {
	goals := make([]models.Goal, 0, len(raw))
	for _, g := range raw {
		if g.ID == "" || strings.TrimSpace(g.Text) == "" {
			continue
		}
		g.Coordinate = geo.Clean(g.Coordinate)
		goals = append(goals, g)
	}
	return goals
}

func (r *Repository) SaveActiveGoals(ctx context.Context, goals []models.Goal) error {
	if goals == nil {
		goals = []models.Goal{}
	}
	return r.save(ctx, KeyActiveGoals, goals)
}

func (r *Repository) CompletedRecords(ctx context.Context) ([]models.CompletedRecord, error) {
	var raw []models.CompletedRecord
	if err := r.load(ctx, KeyCompletedRecords, &raw); err != nil {
		if errors.Is(err, errCorrupt) {
			return []models.CompletedRecord{}, nil
		}
		return nil, err
	}
	return DecodeRecords(raw), nil
}

// DecodeRecords drops records without id or text.
func DecodeRecords(raw []models.CompletedRecord) []models.CompletedRecord {
	records := make([]models.CompletedRecord, 0, len(raw))
	for _, rec := range raw {
		if rec.ID == "" || strings.TrimSpace(rec.Text) == "" {
			continue
		}
		rec.Coordinate = geo.Clean(rec.Coordinate)
		records = append(records, rec)
	}
	return records
}

func (r *Repository) SaveCompletedRecords(ctx context.Context, records []models.CompletedRecord) error {
	if records == nil {
		records = []models.CompletedRecord{}
	}
	return r.save(ctx, KeyCompletedRecords, records)
}

// Home returns nil when no valid home coordinate is stored.
func (r *Repository) Home(ctx context.Context) (*models.Coordinate, error) {
	var c *models.Coordinate
	if err := r.load(ctx, KeyHomeCoordinate, &c); err != nil {
		if errors.Is(err, errCorrupt) {
			return nil, nil
		}
		return nil, err
	}
	return geo.Clean(c), nil
}

func (r *Repository) SaveHome(ctx context.Context, c models.Coordinate) error {
	return r.save(ctx, KeyHomeCoordinate, c)
}

func (r *Repository) ClearHome(ctx context.Context) error {
	return r.store.Delete(ctx, KeyHomeCoordinate)
}

// PresenceState maps region ids to inside/outside. Unknown regions are absent.
func (r *Repository) PresenceState(ctx context.Context) (map[string]models.PresenceValue, error) {
	raw := map[string]models.PresenceValue{}
	if err := r.load(ctx, KeyPresenceState, &raw); err != nil {
		if errors.Is(err, errCorrupt) {
			return map[string]models.PresenceValue{}, nil
		}
		return nil, err
	}
	state := make(map[string]models.PresenceValue, len(raw))
	for k, v := range raw {
		if v == models.PresenceInside || v == models.PresenceOutside {
			state[k] = v
		}
	}
	return state, nil
}

func (r *Repository) SavePresenceState(ctx context.Context, state map[string]models.PresenceValue) error {
	if state == nil {
		state = map[string]models.PresenceValue{}
	}
	return r.save(ctx, KeyPresenceState, state)
}

type reminderDoc struct {
	TimeHHMM string `json:"timeHHMM"`
}

func (r *Repository) ReminderTime(ctx context.Context) (string, error) {
	var doc reminderDoc
	if err := r.load(ctx, KeyReminderTime, &doc); err != nil && !errors.Is(err, errCorrupt) {
		return "", err
	}
	if doc.TimeHHMM == "" {
		return DefaultReminderTime, nil
	}
	return doc.TimeHHMM, nil
}

func (r *Repository) SaveReminderTime(ctx context.Context, hhmm string) error {
	return r.save(ctx, KeyReminderTime, reminderDoc{TimeHHMM: hhmm})
}

func (r *Repository) DailySetupMarker(ctx context.Context) (models.DailySetupMarker, error) {
	var m models.DailySetupMarker
	if err := r.load(ctx, KeyDailySetupMarker, &m); err != nil {
		if errors.Is(err, errCorrupt) {
			return models.DailySetupMarker{}, nil
		}
		return m, err
	}
	return m, nil
}

func (r *Repository) SaveDailySetupMarker(ctx context.Context, m models.DailySetupMarker) error {
	return r.save(ctx, KeyDailySetupMarker, m)
}

// UnachievedStats counts goals dropped by the daily rollover, per creation day.
func (r *Repository) UnachievedStats(ctx context.Context) (map[string]int, error) {
	stats := map[string]int{}
	if err := r.load(ctx, KeyUnachievedStats, &stats); err != nil {
		if errors.Is(err, errCorrupt) {
			return map[string]int{}, nil
		}
		return nil, err
	}
	return stats, nil
}

func (r *Repository) SaveUnachievedStats(ctx context.Context, stats map[string]int) error {
	return r.save(ctx, KeyUnachievedStats, stats)
}

func (r *Repository) DeviceToken(ctx context.Context) (string, error) {
	var token string
	if err := r.load(ctx, KeyDeviceToken, &token); err != nil && !errors.Is(err, errCorrupt) {
		return "", err
	}
	return token, nil
}

func (r *Repository) SaveDeviceToken(ctx context.Context, token string) error {
	return r.save(ctx, KeyDeviceToken, token)
}

func (r *Repository) LocationPermissions(ctx context.Context) (models.LocationPermissions, error) {
	var p models.LocationPermissions
	if err := r.load(ctx, KeyLocationPermissions, &p); err != nil {
		if errors.Is(err, errCorrupt) {
			return models.LocationPermissions{}, nil
		}
		return p, err
	}
	return p, nil
}

func (r *Repository) SaveLocationPermissions(ctx context.Context, p models.LocationPermissions) error {
	return r.save(ctx, KeyLocationPermissions, p)
}

// MonitoringEnabled defaults to true when the user never switched it.
func (r *Repository) MonitoringEnabled(ctx context.Context) (bool, error) {
	enabled := true
	if err := r.load(ctx, KeyMonitoringEnabled, &enabled); err != nil {
		if errors.Is(err, errCorrupt) {
			return true, nil
		}
		return true, err
	}
	return enabled, nil
}

func (r *Repository) SaveMonitoringEnabled(ctx context.Context, enabled bool) error {
	return r.save(ctx, KeyMonitoringEnabled, enabled)
}

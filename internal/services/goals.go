package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arnold/goalfence-api/internal/geo"
	"github.com/arnold/goalfence-api/internal/lifecycle"
	"github.com/arnold/goalfence-api/internal/metrics"
	"github.com/arnold/goalfence-api/internal/models"
	"github.com/arnold/goalfence-api/internal/storage"
)

var (
	ErrInvalidGoal     = errors.New("goal text is required")
	ErrDuplicateGoal   = errors.New("goal id already exists")
	ErrGoalNotFound    = errors.New("goal not found")
	ErrRecordNotFound  = errors.New("record not found")
	ErrInvalidReminder = errors.New("reminder time must be HH:MM")
)

// GoalService is the foreground side of the goal collections. Completion goes
// through the same lifecycle bridge the geofence processor uses.
type GoalService struct {
	repo    *storage.Repository
	bridge  *lifecycle.Bridge
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type GoalOption func(*GoalService)

func WithGoalLogger(l *zap.Logger) GoalOption {
	return func(s *GoalService) { s.logger = l }
}

func WithGoalMetrics(m *metrics.Metrics) GoalOption {
	return func(s *GoalService) { s.metrics = m }
}

func WithGoalClock(now func() time.Time) GoalOption {
	return func(s *GoalService) { s.now = now }
}

func NewGoalService(repo *storage.Repository, bridge *lifecycle.Bridge, opts ...GoalOption) *GoalService {
	s := &GoalService{repo: repo, bridge: bridge, logger: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *GoalService) Goals(ctx context.Context) ([]models.Goal, error) {
	return s.repo.ActiveGoals(ctx)
}

// NormalizeGoal fills the defaults of a new goal. ok is false when the goal
// has no usable text.
func NormalizeGoal(req models.CreateGoalRequest, now time.Time) (models.Goal, bool) {
	g := models.Goal{
		ID:         strings.TrimSpace(req.ID),
		Text:       strings.TrimSpace(req.Text),
		Type:       strings.TrimSpace(req.Type),
		Place:      strings.TrimSpace(req.Place),
		Title:      strings.TrimSpace(req.Title),
		Coordinate: geo.Clean(req.Coordinate),
		CreatedAt:  req.CreatedAt,
	}
	if g.Type == "" {
		g.Type = models.GoalTypeLegacy
	}
	if g.Text == "" {
		g.Text = deriveText(g)
	}
	if g.Text == "" {
		return models.Goal{}, false
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt <= 0 {
		g.CreatedAt = now.UnixMilli()
	}
	return g, true
}

func deriveText(g models.Goal) string {
	switch {
	case g.Type == models.GoalTypeDo && g.Title != "" && g.Place != "":
		return g.Title + " at " + g.Place
	case g.Type == models.GoalTypeDo && g.Title != "":
		return g.Title
	case g.Type == models.GoalTypeGo && g.Place != "":
		return "go to " + g.Place
	}
	return ""
}

// Add puts a new goal at the front of the active set.
func (s *GoalService) Add(ctx context.Context, req models.CreateGoalRequest) (models.Goal, error) {
	g, ok := NormalizeGoal(req, s.now())
	if !ok {
		return models.Goal{}, ErrInvalidGoal
	}

	goals, err := s.repo.ActiveGoals(ctx)
	if err != nil {
		return models.Goal{}, fmt.Errorf("load active goals: %w", err)
	}
	for _, existing := range goals {
		if existing.ID == g.ID {
			return models.Goal{}, ErrDuplicateGoal
		}
	}

	if err := s.repo.SaveActiveGoals(ctx, append([]models.Goal{g}, goals...)); err != nil {
		return models.Goal{}, fmt.Errorf("save active goals: %w", err)
	}
	s.logger.Info("Goal added", zap.String("goal", g.ID), zap.String("type", g.Type))
	return g, nil
}

func (s *GoalService) Remove(ctx context.Context, id string) error {
	goals, err := s.repo.ActiveGoals(ctx)
	if err != nil {
		return fmt.Errorf("load active goals: %w", err)
	}
	kept := goals[:0]
	for _, g := range goals {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(goals) {
		return ErrGoalNotFound
	}
	return s.repo.SaveActiveGoals(ctx, kept)
}

// Complete is the tap-to-complete path. A goal the background path already
// completed reports ErrGoalNotFound.
func (s *GoalService) Complete(ctx context.Context, id string) (models.CompletedRecord, error) {
	rec, err := s.bridge.Complete(ctx, id)
	if errors.Is(err, lifecycle.ErrNotFound) {
		return models.CompletedRecord{}, ErrGoalNotFound
	}
	if err != nil {
		return models.CompletedRecord{}, err
	}
	s.metrics.IncGoalCompleted("tap")
	return rec, nil
}

func (s *GoalService) Records(ctx context.Context) ([]models.CompletedRecord, error) {
	return s.repo.CompletedRecords(ctx)
}

func (s *GoalService) UpdateRecord(ctx context.Context, id string, req models.UpdateRecordRequest) (models.CompletedRecord, error) {
	records, err := s.repo.CompletedRecords(ctx)
	if err != nil {
		return models.CompletedRecord{}, fmt.Errorf("load completed records: %w", err)
	}
	for i := range records {
		if records[i].ID != id {
			continue
		}
		if req.Memo != nil {
			records[i].Memo = *req.Memo
		}
		if req.PhotoURI != nil {
			records[i].PhotoURI = *req.PhotoURI
		}
		if err := s.repo.SaveCompletedRecords(ctx, records); err != nil {
			return models.CompletedRecord{}, fmt.Errorf("save completed records: %w", err)
		}
		return records[i], nil
	}
	return models.CompletedRecord{}, ErrRecordNotFound
}

func (s *GoalService) RemoveRecord(ctx context.Context, id string) error {
	records, err := s.repo.CompletedRecords(ctx)
	if err != nil {
		return fmt.Errorf("load completed records: %w", err)
	}
	kept := records[:0]
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return ErrRecordNotFound
	}
	return s.repo.SaveCompletedRecords(ctx, kept)
}

// Rollover drops active goals created before today and counts them as
// unachieved under their creation day.
func (s *GoalService) Rollover(ctx context.Context) (int, error) {
	goals, err := s.repo.ActiveGoals(ctx)
	if err != nil {
		return 0, fmt.Errorf("load active goals: %w", err)
	}
	cutoff := geo.StartOfDay(s.now()).UnixMilli()

	var kept []models.Goal
	dropped := map[string]int{}
	n := 0
	for _, g := range goals {
		if g.CreatedAt < cutoff {
			dropped[geo.DateKey(time.UnixMilli(g.CreatedAt))]++
			n++
			continue
		}
		kept = append(kept, g)
	}
	if n == 0 {
		return 0, nil
	}

	stats, err := s.repo.UnachievedStats(ctx)
	if err != nil {
		return 0, fmt.Errorf("load unachieved stats: %w", err)
	}
	for day, c := range dropped {
		stats[day] += c
	}
	if err := s.repo.SaveUnachievedStats(ctx, stats); err != nil {
		return 0, fmt.Errorf("save unachieved stats: %w", err)
	}
	if err := s.repo.SaveActiveGoals(ctx, kept); err != nil {
		return 0, fmt.Errorf("save active goals: %w", err)
	}
	s.logger.Info("Previous days' goals rolled over", zap.Int("dropped", n))
	return n, nil
}

func (s *GoalService) UnachievedStats(ctx context.Context) (map[string]int, error) {
	return s.repo.UnachievedStats(ctx)
}

func (s *GoalService) ReminderTime(ctx context.Context) (string, error) {
	return s.repo.ReminderTime(ctx)
}

func (s *GoalService) SetReminderTime(ctx context.Context, hhmm string) error {
	if _, _, ok := parseHHMM(hhmm); !ok {
		return ErrInvalidReminder
	}
	return s.repo.SaveReminderTime(ctx, hhmm)
}

func parseHHMM(v string) (h, m int, ok bool) {
	t, err := time.Parse("15:04", v)
	if err != nil || len(v) != 5 {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}

// DailySetup reports whether the daily prompt is due: the reminder time has
// passed today and the prompt was not finished today. When it is due the
// rollover runs first, so the prompt starts from today's goals only.
func (s *GoalService) DailySetup(ctx context.Context) (models.DailySetupStatus, error) {
	now := s.now().Local()
	reminder, err := s.repo.ReminderTime(ctx)
	if err != nil {
		return models.DailySetupStatus{}, fmt.Errorf("load reminder time: %w", err)
	}
	marker, err := s.repo.DailySetupMarker(ctx)
	if err != nil {
		return models.DailySetupStatus{}, fmt.Errorf("load daily setup marker: %w", err)
	}

	st := models.DailySetupStatus{
		Today:        geo.DateKey(now),
		ReminderTime: reminder,
		LastDoneDate: marker.LastDoneDate,
	}
	h, m, ok := parseHHMM(reminder)
	if !ok {
		h, m, _ = parseHHMM(storage.DefaultReminderTime)
	}
	past := now.Hour() > h || (now.Hour() == h && now.Minute() >= m)
	st.Due = past && marker.LastDoneDate != st.Today
	if !st.Due {
		return st, nil
	}

	st.RolledOver, err = s.Rollover(ctx)
	if err != nil {
		return st, err
	}
	return st, nil
}

// CompleteDailySetup adds the day's todos and marks the prompt done. An empty
// list skips today's prompt.
func (s *GoalService) CompleteDailySetup(ctx context.Context, todos []string) ([]models.Goal, error) {
	added := []models.Goal{}
	for _, text := range todos {
		if strings.TrimSpace(text) == "" {
			continue
		}
		g, err := s.Add(ctx, models.CreateGoalRequest{Text: text, Type: models.GoalTypeTodo})
		if err != nil {
			return added, err
		}
		added = append(added, g)
	}
	marker := models.DailySetupMarker{LastDoneDate: geo.DateKey(s.now())}
	if err := s.repo.SaveDailySetupMarker(ctx, marker); err != nil {
		return added, fmt.Errorf("save daily setup marker: %w", err)
	}
	return added, nil
}

package presence

import (
	"context"
	"sync"

	"github.com/arnold/goalfence-api/internal/models"
	"github.com/arnold/goalfence-api/internal/storage"
)

// StateStore is the durable per-region presence. All regions share the
// presence-state document; mu only orders writers inside this process.
type StateStore struct {
	repo *storage.Repository
	mu   sync.Mutex
}

func NewStateStore(repo *storage.Repository) *StateStore {
	return &StateStore{repo: repo}
}

// Get returns PresenceUnknown for a region never observed since its last reset.
func (s *StateStore) Get(ctx context.Context, regionID string) (models.PresenceValue, error) {
	state, err := s.repo.PresenceState(ctx)
	if err != nil {
		return models.PresenceUnknown, err
	}
	return state[regionID], nil
}

func (s *StateStore) Set(ctx context.Context, regionID string, v models.PresenceValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.repo.PresenceState(ctx)
	if err != nil {
		return err
	}
	if v == models.PresenceUnknown {
		delete(state, regionID)
	} else {
		state[regionID] = v
	}
	return s.repo.SavePresenceState(ctx, state)
}

// Reset returns the given regions to unknown.
func (s *StateStore) Reset(ctx context.Context, regionIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.repo.PresenceState(ctx)
	if err != nil {
		return err
	}
	changed := false
	for _, id := range regionIDs {
		if _, ok := state[id]; ok {
			delete(state, id)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.repo.SavePresenceState(ctx, state)
}

func (s *StateStore) All(ctx context.Context) (map[string]models.PresenceValue, error) {
	return s.repo.PresenceState(ctx)
}

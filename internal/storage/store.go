// Package storage is the persistent key/document store shared by the
// foreground API and the background geofence handler. Every key holds one JSON
// document; there is no cross-key transaction and no lock between writers.
package storage

import (
	"context"
	"errors"
)

// Persisted keys.
const (
	KeyActiveGoals         = "active-goals"
	KeyCompletedRecords    = "completed-records"
	KeyHomeCoordinate      = "home-coordinate"
	KeyPresenceState       = "presence-state"
	KeyReminderTime        = "reminder-time"
	KeyDailySetupMarker    = "daily-setup-marker"
	KeyUnachievedStats     = "unachieved-stats"
	KeyDeviceToken         = "device-token"
	KeyLocationPermissions = "location-permissions"
	KeyMonitoringEnabled   = "monitoring-enabled"
)

var (
	ErrNotFound       = errors.New("storage: key not found")
	ErrStorageCorrupt = errors.New("storage: document is not valid JSON for its key")
)

// Store is a raw key/value backend. Get returns ErrNotFound for a missing key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

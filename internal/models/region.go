package models

import (
	"strings"
	"time"
)

type RegionKind string

const (
	RegionHome RegionKind = "home"
	RegionGoal RegionKind = "goal"
)

// GeofenceRegion is one circular area handed to the region monitor.
type GeofenceRegion struct {
	ID           string     `json:"id"`
	Kind         RegionKind `json:"kind"`
	GoalID       string     `json:"goalId,omitempty"`
	Center       Coordinate `json:"center"`
	RadiusMeters float64    `json:"radiusMeters"`
}

type EventType string

const (
	EventEnter EventType = "enter"
	EventExit  EventType = "exit"
)

// EventRecord is a single Enter/Exit callback. It is never persisted.
type EventRecord struct {
	RegionID   string    `json:"regionId"`
	EventType  EventType `json:"eventType"`
	ObservedAt time.Time `json:"observedAt"`
}

// PresenceValue is the tri-state presence of a region. The zero value is unknown.
type PresenceValue string

const (
	PresenceUnknown PresenceValue = ""
	PresenceInside  PresenceValue = "inside"
	PresenceOutside PresenceValue = "outside"
)

func (e EventType) Presence() PresenceValue {
	switch e {
	case EventEnter:
		return PresenceInside
	case EventExit:
		return PresenceOutside
	}
	return PresenceUnknown
}

const (
	HomeRegionID     = "home"
	goalRegionPrefix = "goal:"
)

func GoalRegionID(goalID string) string {
	return goalRegionPrefix + goalID
}

// ParseRegionID splits a region identifier into its kind and goal id.
// ok is false for anything other than "home" or "goal:<id>".
func ParseRegionID(id string) (kind RegionKind, goalID string, ok bool) {
	if id == HomeRegionID {
		return RegionHome, "", true
	}
	if strings.HasPrefix(id, goalRegionPrefix) {
		goalID = strings.TrimPrefix(id, goalRegionPrefix)
		if goalID == "" {
			return "", "", false
		}
		return RegionGoal, goalID, true
	}
	return "", "", false
}

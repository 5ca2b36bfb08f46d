// Package geofence derives the monitored region set from the home point and
// the active go-to goals, and keeps the region monitor registered with it.
package geofence

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"sort"
	"strconv"

	"github.com/arnold/goalfence-api/internal/geo"
	"github.com/arnold/goalfence-api/internal/models"
)

// Options bound the region set. MinRadiusMeters is the smallest radius the
// platform monitors reliably.
type Options struct {
	HomeRadiusMeters float64
	GoalRadiusMeters float64
	MinRadiusMeters  float64
	MaxGoalRegions   int
}

func DefaultOptions() Options {
	return Options{
		HomeRadiusMeters: 80,
		GoalRadiusMeters: 120,
		MinRadiusMeters:  100,
		MaxGoalRegions:   15,
	}
}

// GoalPoint is the part of a goal the region set cares about.
type GoalPoint struct {
	ID         string
	Coordinate *models.Coordinate
}

// GoalPoints extracts region candidates from active goals.
func GoalPoints(goals []models.Goal) []GoalPoint {
	points := make([]GoalPoint, 0, len(goals))
	for _, g := range goals {
		points = append(points, GoalPoint{ID: g.ID, Coordinate: g.Coordinate})
	}
	return points
}

// RegionSet is an ordered region list and its content signature. The empty
// set means "stop monitoring". Truncated counts coordinate-bearing goals left
// out by the cap.
type RegionSet struct {
	Regions   []models.GeofenceRegion `json:"regions"`
	Signature string                  `json:"signature"`
	Truncated int                     `json:"truncated"`
}

func (s RegionSet) Empty() bool {
	return len(s.Regions) == 0
}

// Recompute builds the region set. Identical inputs always give identical
// output: goal candidates are ordered by id before the cap is applied.
func Recompute(home *models.Coordinate, goals []GoalPoint, opts Options) RegionSet {
	h := geo.Clean(home)
	if h == nil {
		return RegionSet{Regions: []models.GeofenceRegion{}}
	}

	regions := []models.GeofenceRegion{{
		ID:           models.HomeRegionID,
		Kind:         models.RegionHome,
		Center:       *h,
		RadiusMeters: opts.HomeRadiusMeters,
	}}

	seen := make(map[string]bool, len(goals))
	candidates := make([]GoalPoint, 0, len(goals))
	for _, g := range goals {
		c := geo.Clean(g.Coordinate)
		if g.ID == "" || c == nil || seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		candidates = append(candidates, GoalPoint{ID: g.ID, Coordinate: c})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

	limit := opts.MaxGoalRegions
	if limit < 0 {
		limit = 0
	}
	truncated := 0
	if len(candidates) > limit {
		truncated = len(candidates) - limit
		candidates = candidates[:limit]
	}

	radius := math.Max(opts.GoalRadiusMeters, opts.MinRadiusMeters)
	for _, g := range candidates {
		regions = append(regions, models.GeofenceRegion{
			ID:           models.GoalRegionID(g.ID),
			Kind:         models.RegionGoal,
			GoalID:       g.ID,
			Center:       *g.Coordinate,
			RadiusMeters: radius,
		})
	}

	return RegionSet{Regions: regions, Signature: signature(regions), Truncated: truncated}
}

func signature(regions []models.GeofenceRegion) string {
	h := sha256.New()
	for _, r := range regions {
		h.Write([]byte(r.ID))
		h.Write([]byte{0})
		h.Write(strconv.AppendFloat(nil, r.Center.Latitude, 'f', -1, 64))
		h.Write([]byte{0})
		h.Write(strconv.AppendFloat(nil, r.Center.Longitude, 'f', -1, 64))
		h.Write([]byte{0})
		h.Write(strconv.AppendFloat(nil, r.RadiusMeters, 'f', -1, 64))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

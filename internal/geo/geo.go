// Package geo holds the coordinate math shared by the region set and the
// foreground poller.
package geo

import (
	"math"
	"time"

	"github.com/arnold/goalfence-api/internal/models"
)

const earthRadiusMeters = 6371000

// Clean returns nil for a missing, non-finite or out-of-range coordinate.
func Clean(c *models.Coordinate) *models.Coordinate {
	if c == nil {
		return nil
	}
	lat, lon := c.Latitude, c.Longitude
	if !finite(lat) || !finite(lon) || math.Abs(lat) > 90 || math.Abs(lon) > 180 {
		return nil
	}
	return &models.Coordinate{Latitude: lat, Longitude: lon}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Distance is the great-circle distance in meters (haversine).
func Distance(a, b models.Coordinate) float64 {
	dLat := toRad(b.Latitude - a.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)
	lat1 := toRad(a.Latitude)
	lat2 := toRad(b.Latitude)

	s1 := math.Sin(dLat / 2)
	s2 := math.Sin(dLon / 2)
	// rounding can push h just past 1 for near-antipodal points
	h := math.Min(1, math.Max(0, s1*s1+math.Cos(lat1)*math.Cos(lat2)*s2*s2))
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Within reports whether p lies inside the circle around center.
func Within(center, p models.Coordinate, radiusMeters float64) bool {
	return Distance(center, p) <= radiusMeters
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// DateKey formats t as a local YYYY-MM-DD day key.
func DateKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// StartOfDay is local midnight of the day containing t.
func StartOfDay(t time.Time) time.Time {
	l := t.Local()
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, l.Location())
}

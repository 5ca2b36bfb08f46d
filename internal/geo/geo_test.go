package geo

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnold/goalfence-api/internal/models"
)

func TestDistance(t *testing.T) {
	a := models.Coordinate{Latitude: 37.5, Longitude: 127.0}
	b := models.Coordinate{Latitude: 37.5009, Longitude: 127.0}

	t.Run("zero for identical points", func(t *testing.T) {
		assert.Equal(t, 0.0, Distance(a, a))
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
	})

	t.Run("0.0009 degrees of latitude is about 100m", func(t *testing.T) {
		d := Distance(a, b)
		assert.InEpsilon(t, 100.0, d, 0.01)
	})

	t.Run("0.001 degrees of latitude is about 111m", func(t *testing.T) {
		d := Distance(a, models.Coordinate{Latitude: 37.501, Longitude: 127.0})
		assert.InDelta(t, 111.2, d, 0.5)
	})

	t.Run("antipodal points stay finite", func(t *testing.T) {
		halfCircumference := math.Pi * earthRadiusMeters
		pairs := [][2]models.Coordinate{
			{{Latitude: 0, Longitude: 0}, {Latitude: 0, Longitude: 180}},
			{{Latitude: 90, Longitude: 0}, {Latitude: -90, Longitude: 0}},
			{{Latitude: 37.5, Longitude: 127.0}, {Latitude: -37.5, Longitude: -53.0}},
		}
		for _, p := range pairs {
			d := Distance(p[0], p[1])
			require.False(t, math.IsNaN(d))
			assert.InDelta(t, halfCircumference, d, 1)
		}
	})
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   *models.Coordinate
		ok   bool
	}{
		{"nil", nil, false},
		{"valid", &models.Coordinate{Latitude: 10, Longitude: 10}, true},
		{"nan latitude", &models.Coordinate{Latitude: math.NaN(), Longitude: 10}, false},
		{"infinite longitude", &models.Coordinate{Latitude: 10, Longitude: math.Inf(1)}, false},
		{"latitude out of range", &models.Coordinate{Latitude: 91, Longitude: 0}, false},
		{"longitude out of range", &models.Coordinate{Latitude: 0, Longitude: -181}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.in)
			if !tt.ok {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.in, *got)
			assert.NotSame(t, tt.in, got)
		})
	}
}

func TestDateKey(t *testing.T) {
	ts := time.Date(2026, 3, 7, 23, 30, 0, 0, time.Local)
	assert.Equal(t, "2026-03-07", DateKey(ts))
	assert.True(t, time.Date(2026, 3, 7, 0, 0, 0, 0, time.Local).Equal(StartOfDay(ts)))
}

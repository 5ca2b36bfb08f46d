package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRegionID(t *testing.T) {
	tests := []struct {
		id     string
		kind   RegionKind
		goalID string
		ok     bool
	}{
		{"home", RegionHome, "", true},
		{"goal:42", RegionGoal, "42", true},
		{"goal:a:b", RegionGoal, "a:b", true},
		{"goal:", "", "", false},
		{"", "", "", false},
		{"office", "", "", false},
		{"HOME", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			kind, goalID, ok := ParseRegionID(tt.id)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.goalID, goalID)
		})
	}
	assert.Equal(t, "goal:42", GoalRegionID("42"))
}

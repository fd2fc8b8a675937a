// file: internal/services/progression_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kudospot/internal/models"
)

func TestLevelForCount(t *testing.T) {
	tests := []struct {
		count int64
		level int
	}{
		{0, 1},
		{1, 1},
		{3, 1},
		{4, 2},
		{15, 2},
		{16, 3},
		{35, 3},
		{36, 4},
		{100, 6},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.level, LevelForCount(tt.count), "count=%d", tt.count)
	}
}

func TestLevelForCountNegativeClamped(t *testing.T) {
	assert.Equal(t, 1, LevelForCount(-5))
}

func TestProgressLevelNeverDecreases(t *testing.T) {
	// A user whose kudos were removed from the store keeps their level.
	result := Progress(0, 4, nil, time.Now())
	assert.Equal(t, 4, result.NewLevel)
}

func TestProgressFirstKudo(t *testing.T) {
	now := time.Now()
	result := Progress(1, 1, nil, now)

	assert.Equal(t, 1, result.NewLevel)
	require.Len(t, result.NewBadges, 1)
	assert.Equal(t, "First Kudos", result.NewBadges[0].Name)
	assert.Equal(t, "Received your first kudos!", result.NewBadges[0].Description)
	assert.Equal(t, now, result.NewBadges[0].DateEarned)
}

func TestProgressZeroCountGrantsNothing(t *testing.T) {
	result := Progress(0, 1, nil, time.Now())

	assert.Equal(t, 1, result.NewLevel)
	assert.Empty(t, result.NewBadges)
}

func TestProgressCrossesMultipleThresholds(t *testing.T) {
	// Jumping straight to 12 earns First Kudos and Rising Star together.
	result := Progress(12, 1, nil, time.Now())

	require.Len(t, result.NewBadges, 2)
	assert.Equal(t, "First Kudos", result.NewBadges[0].Name)
	assert.Equal(t, "Rising Star", result.NewBadges[1].Name)
	assert.Equal(t, 2, result.NewLevel)
}

func TestProgressBadgesGrantedOnce(t *testing.T) {
	earned := []models.Badge{{Name: "First Kudos"}}
	result := Progress(10, 2, earned, time.Now())

	require.Len(t, result.NewBadges, 1)
	assert.Equal(t, "Rising Star", result.NewBadges[0].Name)
}

func TestProgressIdempotent(t *testing.T) {
	// Running progression twice with the same state grants nothing new.
	now := time.Now()
	first := Progress(10, 1, nil, now)

	earned := append([]models.Badge{}, first.NewBadges...)
	second := Progress(10, first.NewLevel, earned, now)

	assert.Equal(t, first.NewLevel, second.NewLevel)
	assert.Empty(t, second.NewBadges)
}

func TestProgressAllThresholds(t *testing.T) {
	result := Progress(100, 1, nil, time.Now())

	require.Len(t, result.NewBadges, 4)
	names := make([]string, len(result.NewBadges))
	for i, b := range result.NewBadges {
		names[i] = b.Name
	}
	assert.Equal(t, []string{"First Kudos", "Rising Star", "Superstar", "Legend"}, names)
	assert.Equal(t, 6, result.NewLevel)
}

func TestProgressMonotonicInCount(t *testing.T) {
	prev := 0
	for count := int64(0); count <= 200; count++ {
		level := LevelForCount(count)
		assert.GreaterOrEqual(t, level, prev, "level dropped at count=%d", count)
		prev = level
	}
}

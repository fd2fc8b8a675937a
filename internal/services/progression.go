// file: internal/services/progression.go
package services

import (
	"math"
	"time"

	"kudospot/internal/models"
)

// ===============================
// PROGRESSION ENGINE
// ===============================

// BadgeCriterion maps a received-count threshold to a badge identity.
type BadgeCriterion struct {
	Threshold   int64
	Name        string
	Description string
}

// BadgeCriteria lists every badge, ascending by threshold. Thresholds
// are checked independently: a user jumping from 0 to 12 received kudos
// earns both "First Kudos" and "Rising Star" in one pass.
var BadgeCriteria = []BadgeCriterion{
	{Threshold: 1, Name: "First Kudos", Description: "Received your first kudos!"},
	{Threshold: 10, Name: "Rising Star", Description: "Received 10 kudos"},
	{Threshold: 50, Name: "Superstar", Description: "Received 50 kudos"},
	{Threshold: 100, Name: "Legend", Description: "Received 100 kudos"},
}

// LevelForCount derives the level implied by a received-kudo count.
func LevelForCount(receivedCount int64) int {
	if receivedCount < 0 {
		receivedCount = 0
	}
	return int(math.Floor(math.Sqrt(float64(receivedCount))/2)) + 1
}

// ProgressionResult is the outcome of one progression pass.
type ProgressionResult struct {
	NewLevel  int
	NewBadges []models.Badge
}

// Progress derives the level and badge grants implied by receivedCount.
// It is a pure function of its inputs: no store access, no side effects.
// The level never decreases, a badge is granted at most once, and
// DateEarned is stamped with now rather than backdated.
func Progress(receivedCount int64, currentLevel int, currentBadges []models.Badge, now time.Time) ProgressionResult {
	newLevel := LevelForCount(receivedCount)
	if newLevel < currentLevel {
		newLevel = currentLevel
	}

	var newBadges []models.Badge
	for _, criterion := range BadgeCriteria {
		if receivedCount < criterion.Threshold {
			continue
		}
		if models.HasBadge(currentBadges, criterion.Name) {
			continue
		}
		newBadges = append(newBadges, models.Badge{
			Name:        criterion.Name,
			Description: criterion.Description,
			DateEarned:  now,
		})
	}

	return ProgressionResult{
		NewLevel:  newLevel,
		NewBadges: newBadges,
	}
}

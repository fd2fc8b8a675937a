// file: internal/models/kudo.go
package models

import "time"

// ===============================
// KUDO CATEGORIES
// ===============================

// Kudo categories form a fixed enumeration; creation with any other
// value is rejected before anything is persisted.
const (
	CategoryTeamwork   = "Teamwork"
	CategoryInnovation = "Innovation"
	CategoryLeadership = "Leadership"
	CategoryExcellence = "Excellence"
	CategoryHelp       = "Help"
)

// Categories lists every valid kudo category in display order.
var Categories = []string{
	CategoryTeamwork,
	CategoryInnovation,
	CategoryLeadership,
	CategoryExcellence,
	CategoryHelp,
}

// IsValidCategory reports whether category is one of the fixed set.
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// ===============================
// KUDO ENTITY
// ===============================

// Kudo is a single recognition event from one user to another. A kudo is
// immutable after creation except for LikedBy, which is only mutated
// through the like toggle.
type Kudo struct {
	ID         int64  `json:"id" db:"id"`
	FromUserID int64  `json:"-" db:"from_user_id"`
	ToUserID   int64  `json:"-" db:"to_user_id"`
	Message    string `json:"message" db:"message" validate:"required,min=1,max=1000"`
	Category   string `json:"category" db:"category" validate:"required"`

	// LikedBy is the set of user IDs that currently like this kudo.
	// Membership is toggled atomically per (kudo, user); there are never
	// duplicates.
	LikedBy []int64 `json:"liked_by" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Joined fields: sender and recipient resolved to {id, name, department}
	From *UserRef `json:"from,omitempty" db:"-"`
	To   *UserRef `json:"to,omitempty" db:"-"`
}

// LikedByUser reports whether userID is in the kudo's liked-by set.
func (k *Kudo) LikedByUser(userID int64) bool {
	for _, id := range k.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// LeaderboardEntry is one ranked row of a leaderboard view.
type LeaderboardEntry struct {
	UserID     int64  `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	Department string `json:"department" db:"department"`
	Score      int64  `json:"score" db:"score"`
}

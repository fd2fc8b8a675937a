// file: internal/models/badge.go
package models

import "time"

// Badge represents an achievement badge a user has earned by reaching a
// received-kudos milestone. Badges are append-only and a user can hold a
// badge of a given name at most once.
type Badge struct {
	ID          int64     `json:"-" db:"id"`
	UserID      int64     `json:"-" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	DateEarned  time.Time `json:"date_earned" db:"date_earned"`
}

// HasBadge reports whether badges already contains a badge with the
// given name.
func HasBadge(badges []Badge, name string) bool {
	for _, b := range badges {
		if b.Name == name {
			return true
		}
	}
	return false
}

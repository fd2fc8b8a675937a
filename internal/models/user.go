// file: internal/models/user.go
package models

import "time"

// User represents a member of the organization together with their
// gamification state. Level and badges are a cached projection of the
// user's received-kudo count; they are always re-derivable by replaying
// that count through the progression engine.
type User struct {
	// Primary fields
	ID    int64  `json:"id" db:"id"`
	Email string `json:"email" db:"email" validate:"required,email,max=320"`
	Name  string `json:"name" db:"name" validate:"required,min=2,max=100"`

	// Authentication
	PasswordHash string `json:"-" db:"password_hash"`

	// Profile information
	Department string  `json:"department" db:"department" validate:"required,max=100"`
	Position   string  `json:"position" db:"position" validate:"omitempty,max=150"`
	Bio        string  `json:"bio" db:"bio" validate:"omitempty,max=1000"`
	AvatarURL  *string `json:"avatar_url,omitempty" db:"avatar_url"`
	// Cloudinary asset ID so an old avatar can be destroyed on replacement
	AvatarPublicID *string `json:"-" db:"avatar_public_id"`

	// Gamification state (projection, see above)
	Level int `json:"level" db:"level"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Joined fields (not in the users table)
	Badges []Badge `json:"badges" db:"-"`
}

// UserRef is the compact user representation embedded in kudos and
// leaderboard entries: just enough to render "who".
type UserRef struct {
	ID         int64  `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	Department string `json:"department" db:"department"`
}

// Ref returns the compact representation of the user.
func (u *User) Ref() *UserRef {
	return &UserRef{
		ID:         u.ID,
		Name:       u.Name,
		Department: u.Department,
	}
}

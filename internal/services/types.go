// file: internal/services/types.go
package services

import (
	"mime/multipart"
	"time"

	"kudospot/internal/models"
)

// ===============================
// AUTH TYPES
// ===============================

// RegisterRequest holds the data to create a new user account.
type RegisterRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Email      string `json:"email" validate:"required,email,max=320"`
	Password   string `json:"password" validate:"required,min=8,max=128"`
	Department string `json:"department" validate:"required,max=100"`
	Position   string `json:"position" validate:"omitempty,max=150"`
}

// LoginRequest holds login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned on successful register/login.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// ===============================
// KUDO TYPES
// ===============================

// CreateKudoRequest holds the data to send a kudo. FromUserID is the
// authenticated caller, never taken from the request body.
type CreateKudoRequest struct {
	FromUserID int64  `json:"-" validate:"required"`
	ToUserID   int64  `json:"to" validate:"required"`
	Message    string `json:"message" validate:"required,min=1,max=1000"`
	Category   string `json:"category" validate:"required"`
}

// StatsResponse summarizes a user's kudo activity.
type StatsResponse struct {
	ReceivedCount     int64            `json:"received_count"`
	GivenCount        int64            `json:"given_count"`
	CategoryBreakdown map[string]int64 `json:"category_breakdown"`
}

// LeaderboardResponse carries the fixed leaderboard views. Trending is
// omitted when the windowed view is disabled.
type LeaderboardResponse struct {
	Received []*models.LeaderboardEntry `json:"received"`
	Given    []*models.LeaderboardEntry `json:"given"`
	Trending []*models.LeaderboardEntry `json:"trending,omitempty"`
}

// ===============================
// USER TYPES
// ===============================

// UpdateProfileRequest holds profile fields a user may change.
type UpdateProfileRequest struct {
	UserID     int64  `json:"-" validate:"required"`
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Department string `json:"department" validate:"required,max=100"`
	Position   string `json:"position" validate:"omitempty,max=150"`
	Bio        string `json:"bio" validate:"omitempty,max=1000"`
}

// UploadAvatarRequest holds an avatar image upload.
type UploadAvatarRequest struct {
	UserID   int64
	File     multipart.File
	Filename string
	Size     int64
}

// file: internal/services/interfaces.go
package services

import (
	"context"

	"kudospot/internal/models"
)

// ===============================
// CORE SERVICE INTERFACES
// ===============================

// AuthService handles account creation and credential verification.
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
}

// KudoService is the recognition engine surface: sending kudos (which
// runs progression synchronously), listing, the like toggle and the
// scoring queries.
type KudoService interface {
	CreateKudo(ctx context.Context, req *CreateKudoRequest) (*models.Kudo, error)
	ListKudos(ctx context.Context) ([]*models.Kudo, error)
	ListUserKudos(ctx context.Context, userID int64) ([]*models.Kudo, error)
	ToggleLike(ctx context.Context, kudoID, userID int64) (*models.Kudo, error)
	GetStats(ctx context.Context, userID int64) (*StatsResponse, error)
}

// LeaderboardService computes the ranked top-N views.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, callerID int64) (*LeaderboardResponse, error)
}

// UserService handles profiles and the progression projection repair.
type UserService interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*models.User, error)
	UploadAvatar(ctx context.Context, req *UploadAvatarRequest) (*models.User, error)

	// RecomputeProgression rebuilds level and badges from the kudo
	// records, healing any drift in the cached projection.
	RecomputeProgression(ctx context.Context, userID int64) (*models.User, error)
}

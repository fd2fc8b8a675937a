// file: internal/services/user_service.go
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kudospot/internal/cache"
	"kudospot/internal/models"
	"kudospot/internal/repositories"
	"kudospot/internal/utils"
	"kudospot/internal/validation"

	"go.uber.org/zap"
)

// userService implements UserService
type userService struct {
	userRepo repositories.UserRepository
	kudoRepo repositories.KudoRepository
	tx       TxRunner
	cache    cache.Cache
	avatars  utils.AvatarStorage
	logger   *zap.Logger
}

// NewUserService creates a new user service. The avatar store may be
// nil when uploads are not configured; UploadAvatar then fails cleanly.
func NewUserService(
	userRepo repositories.UserRepository,
	kudoRepo repositories.KudoRepository,
	tx TxRunner,
	cacheInstance cache.Cache,
	avatars utils.AvatarStorage,
	logger *zap.Logger,
) UserService {
	return &userService{
		userRepo: userRepo,
		kudoRepo: kudoRepo,
		tx:       tx,
		cache:    cacheInstance,
		avatars:  avatars,
		logger:   logger,
	}
}

// ===============================
// PROFILES
// ===============================

// GetUserByID returns a user with their earned badges attached.
func (s *userService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewStoreError("failed to load user", err)
	}
	if user == nil {
		return nil, NewNotFoundError(fmt.Sprintf("user %d not found", id))
	}

	badges, err := s.userRepo.GetBadges(ctx, id)
	if err != nil {
		return nil, NewStoreError("failed to load badges", err)
	}
	user.Badges = badges
	return user, nil
}

// ListUsers returns every user, for recipient pickers and directories.
func (s *userService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, NewStoreError("failed to list users", err)
	}
	return users, nil
}

// UpdateProfile changes the caller's editable profile fields.
func (s *userService) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid profile update", err)
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, NewStoreError("failed to load user", err)
	}
	if user == nil {
		return nil, NewNotFoundError(fmt.Sprintf("user %d not found", req.UserID))
	}

	user.Name = req.Name
	user.Department = req.Department
	user.Position = req.Position
	user.Bio = req.Bio

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, NewStoreError("failed to update profile", err)
	}

	// Name and department are denormalized into leaderboard rows.
	if err := s.cache.DeletePattern(ctx, "leaderboard:*"); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", zap.Error(err))
	}

	s.logger.Info("Profile updated", zap.Int64("user_id", req.UserID))
	return s.GetUserByID(ctx, req.UserID)
}

// UploadAvatar stores a new avatar image and replaces the previous one.
func (s *userService) UploadAvatar(ctx context.Context, req *UploadAvatarRequest) (*models.User, error) {
	if s.avatars == nil {
		return nil, NewInternalError("avatar storage not configured")
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, NewStoreError("failed to load user", err)
	}
	if user == nil {
		return nil, NewNotFoundError(fmt.Sprintf("user %d not found", req.UserID))
	}

	result, err := s.avatars.Upload(ctx, req.File, req.Filename, req.Size)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("avatar upload rejected: %v", err), err)
	}

	previousPublicID := user.AvatarPublicID
	if err := s.userRepo.UpdateAvatar(ctx, req.UserID, result.URL, result.PublicID); err != nil {
		return nil, NewStoreError("failed to persist avatar", err)
	}

	// Best effort: the orphaned asset costs storage, not correctness.
	if previousPublicID != nil && *previousPublicID != result.PublicID {
		if err := s.avatars.Delete(ctx, *previousPublicID); err != nil {
			s.logger.Warn("Failed to delete replaced avatar",
				zap.Int64("user_id", req.UserID),
				zap.String("public_id", *previousPublicID),
				zap.Error(err))
		}
	}

	s.logger.Info("Avatar updated",
		zap.Int64("user_id", req.UserID),
		zap.String("public_id", result.PublicID))
	return s.GetUserByID(ctx, req.UserID)
}

// ===============================
// PROGRESSION REPAIR
// ===============================

// RecomputeProgression rebuilds a user's level and badges from their
// received kudo count, under the same row lock the kudo path takes.
// Levels and badges never regress even if kudos were deleted directly
// in the store.
func (s *userService) RecomputeProgression(ctx context.Context, userID int64) (*models.User, error) {
	err := s.tx.RunTx(ctx, func(tx *sql.Tx) error {
		locked, err := s.userRepo.GetForUpdateTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if locked == nil {
			return NewNotFoundError(fmt.Sprintf("user %d not found", userID))
		}

		receivedCount, err := s.kudoRepo.CountReceivedTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		badges, err := s.userRepo.GetBadgesTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		progression := Progress(receivedCount, locked.Level, badges, time.Now())
		return s.userRepo.ApplyProgressionTx(ctx, tx, userID, progression.NewLevel, progression.NewBadges)
	})
	if err != nil {
		if _, ok := IsServiceError(err); ok {
			return nil, err
		}
		return nil, NewStoreError("failed to recompute progression", err)
	}

	if err := s.cache.Delete(ctx, statsCacheKey(userID)); err != nil {
		s.logger.Warn("Failed to invalidate stats cache", zap.Int64("user_id", userID), zap.Error(err))
	}

	s.logger.Info("Progression recomputed", zap.Int64("user_id", userID))
	return s.GetUserByID(ctx, userID)
}

// file: internal/services/kudo_service.go
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kudospot/internal/cache"
	"kudospot/internal/database"
	"kudospot/internal/events"
	"kudospot/internal/models"
	"kudospot/internal/repositories"
	"kudospot/internal/validation"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// TxRunner executes a function within a database transaction.
type TxRunner interface {
	RunTx(ctx context.Context, fn func(*sql.Tx) error) error
}

// managerTxRunner runs transactions on the shared database manager.
type managerTxRunner struct {
	m *database.Manager
}

// NewManagerTxRunner wraps a database manager as a TxRunner.
func NewManagerTxRunner(m *database.Manager) TxRunner {
	return &managerTxRunner{m: m}
}

func (r *managerTxRunner) RunTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return database.ExecuteTransactionOn(ctx, r.m, fn)
}

// KudoServiceConfig holds kudo service configuration
type KudoServiceConfig struct {
	// MaxConflictRetries bounds internal retries of transient
	// serialization conflicts before a CONFLICT error surfaces.
	MaxConflictRetries uint64        `json:"max_conflict_retries"`
	StatsTTL           time.Duration `json:"stats_ttl"`
}

// DefaultKudoConfig returns default kudo service configuration
func DefaultKudoConfig() *KudoServiceConfig {
	return &KudoServiceConfig{
		MaxConflictRetries: 3,
		StatsTTL:           time.Minute,
	}
}

// kudoService implements KudoService
type kudoService struct {
	kudoRepo repositories.KudoRepository
	userRepo repositories.UserRepository
	tx       TxRunner
	cache    cache.Cache
	events   events.EventBus
	logger   *zap.Logger
	config   *KudoServiceConfig
}

// NewKudoService creates a new kudo service
func NewKudoService(
	kudoRepo repositories.KudoRepository,
	userRepo repositories.UserRepository,
	tx TxRunner,
	cacheInstance cache.Cache,
	eventBus events.EventBus,
	logger *zap.Logger,
	config *KudoServiceConfig,
) KudoService {
	if config == nil {
		config = DefaultKudoConfig()
	}
	return &kudoService{
		kudoRepo: kudoRepo,
		userRepo: userRepo,
		tx:       tx,
		cache:    cacheInstance,
		events:   eventBus,
		logger:   logger,
		config:   config,
	}
}

// ===============================
// KUDO CREATION + PROGRESSION
// ===============================

// CreateKudo appends a kudo and synchronously recomputes the recipient's
// progression in the same transaction: the kudo record and the
// level/badge write-back commit or fail together.
func (s *kudoService) CreateKudo(ctx context.Context, req *CreateKudoRequest) (*models.Kudo, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid create kudo request", err)
	}
	if !models.IsValidCategory(req.Category) {
		return nil, NewValidationError(
			fmt.Sprintf("invalid category %q, must be one of %v", req.Category, models.Categories), nil)
	}

	// Resolve the recipient up front so an unknown recipient is a clean
	// 404 before anything is written. Self-kudos (from == to) are
	// accepted.
	recipient, err := s.userRepo.GetByID(ctx, req.ToUserID)
	if err != nil {
		return nil, NewStoreError("failed to resolve recipient", err)
	}
	if recipient == nil {
		return nil, NewNotFoundError(fmt.Sprintf("recipient user %d not found", req.ToUserID))
	}

	kudo := &models.Kudo{
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Message:    req.Message,
		Category:   req.Category,
	}

	var progression ProgressionResult
	var previousLevel int

	err = s.retryOnConflict(ctx, func() error {
		return s.tx.RunTx(ctx, func(tx *sql.Tx) error {
			// Lock the recipient row so concurrent kudos to the same
			// user serialize their progression updates.
			locked, err := s.userRepo.GetForUpdateTx(ctx, tx, req.ToUserID)
			if err != nil {
				return err
			}
			if locked == nil {
				return NewNotFoundError(fmt.Sprintf("recipient user %d not found", req.ToUserID))
			}
			previousLevel = locked.Level

			if err := s.kudoRepo.CreateTx(ctx, tx, kudo); err != nil {
				return err
			}

			receivedCount, err := s.kudoRepo.CountReceivedTx(ctx, tx, req.ToUserID)
			if err != nil {
				return err
			}
			badges, err := s.userRepo.GetBadgesTx(ctx, tx, req.ToUserID)
			if err != nil {
				return err
			}

			progression = Progress(receivedCount, locked.Level, badges, time.Now())
			return s.userRepo.ApplyProgressionTx(ctx, tx, req.ToUserID, progression.NewLevel, progression.NewBadges)
		})
	})
	if err != nil {
		if _, ok := IsServiceError(err); ok {
			return nil, err
		}
		return nil, NewStoreError("failed to create kudo", err)
	}

	s.invalidateAfterWrite(ctx, req.FromUserID, req.ToUserID)
	s.publishCreateEvents(ctx, kudo, previousLevel, progression)

	s.logger.Info("Kudo created",
		zap.Int64("kudo_id", kudo.ID),
		zap.Int64("from", req.FromUserID),
		zap.Int64("to", req.ToUserID),
		zap.String("category", req.Category),
		zap.Int("recipient_level", progression.NewLevel),
		zap.Int("badges_awarded", len(progression.NewBadges)),
	)

	// Reload with the sender/recipient refs resolved.
	created, err := s.kudoRepo.GetByID(ctx, kudo.ID)
	if err != nil {
		return nil, NewStoreError("failed to load created kudo", err)
	}
	if created == nil {
		return nil, NewInternalError("created kudo vanished")
	}
	return created, nil
}

func (s *kudoService) publishCreateEvents(ctx context.Context, kudo *models.Kudo, previousLevel int, progression ProgressionResult) {
	s.events.PublishAsync(ctx, events.NewKudoCreatedEvent(kudo.ID, kudo.FromUserID, kudo.ToUserID, kudo.Category))
	for _, badge := range progression.NewBadges {
		s.events.PublishAsync(ctx, events.NewBadgeAwardedEvent(kudo.ToUserID, badge.Name))
	}
	if progression.NewLevel > previousLevel {
		s.events.PublishAsync(ctx, events.NewLevelUpEvent(kudo.ToUserID, previousLevel, progression.NewLevel))
	}
}

// ===============================
// LISTING
// ===============================

// ListKudos returns every kudo, newest first.
func (s *kudoService) ListKudos(ctx context.Context) ([]*models.Kudo, error) {
	kudos, err := s.kudoRepo.ListAll(ctx)
	if err != nil {
		return nil, NewStoreError("failed to list kudos", err)
	}
	return kudos, nil
}

// ListUserKudos returns kudos where the user is sender or recipient.
func (s *kudoService) ListUserKudos(ctx context.Context, userID int64) ([]*models.Kudo, error) {
	kudos, err := s.kudoRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewStoreError("failed to list user kudos", err)
	}
	return kudos, nil
}

// ===============================
// LIKE TOGGLE
// ===============================

// ToggleLike flips the caller's membership in the kudo's liked-by set
// and returns the updated kudo.
func (s *kudoService) ToggleLike(ctx context.Context, kudoID, userID int64) (*models.Kudo, error) {
	var liked bool
	err := s.retryOnConflict(ctx, func() error {
		var err error
		liked, err = s.kudoRepo.ToggleLike(ctx, kudoID, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewNotFoundError(fmt.Sprintf("kudo %d not found", kudoID))
		}
		return nil, NewStoreError("failed to toggle like", err)
	}

	s.events.PublishAsync(ctx, events.NewKudoLikeToggledEvent(kudoID, userID, liked))

	kudo, err := s.kudoRepo.GetByID(ctx, kudoID)
	if err != nil {
		return nil, NewStoreError("failed to load kudo after toggle", err)
	}
	if kudo == nil {
		return nil, NewNotFoundError(fmt.Sprintf("kudo %d not found", kudoID))
	}
	return kudo, nil
}

// ===============================
// SCORING
// ===============================

// GetStats returns received/given counts and the per-category breakdown
// for a user, served from cache when fresh.
func (s *kudoService) GetStats(ctx context.Context, userID int64) (*StatsResponse, error) {
	cacheKey := statsCacheKey(userID)
	var cached StatsResponse
	if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	breakdown, err := s.kudoRepo.CategoryBreakdown(ctx, userID)
	if err != nil {
		return nil, NewStoreError("failed to compute category breakdown", err)
	}

	// Received count is derived from the breakdown so both always agree
	// on one snapshot.
	var receivedCount int64
	for _, count := range breakdown {
		receivedCount += count
	}

	givenCount, err := s.kudoRepo.CountGiven(ctx, userID)
	if err != nil {
		return nil, NewStoreError("failed to count given kudos", err)
	}

	stats := &StatsResponse{
		ReceivedCount:     receivedCount,
		GivenCount:        givenCount,
		CategoryBreakdown: breakdown,
	}

	if err := s.cache.Set(ctx, cacheKey, stats, s.config.StatsTTL); err != nil {
		s.logger.Warn("Failed to cache stats", zap.Int64("user_id", userID), zap.Error(err))
	}
	return stats, nil
}

// ===============================
// INTERNAL HELPERS
// ===============================

// retryOnConflict retries op on transient serialization conflicts with
// exponential backoff, bounded by MaxConflictRetries. Anything else is
// permanent.
func (s *kudoService) retryOnConflict(ctx context.Context, op func() error) error {
	attempt := 0
	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if repositories.IsRetryableConflict(err) {
			attempt++
			s.logger.Warn("Retrying conflicting write",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.config.MaxConflictRetries),
		ctx,
	)
	if err := backoff.Retry(wrapped, policy); err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return permanent.Err
		}
		if repositories.IsRetryableConflict(err) {
			return NewConflictError("concurrent update conflict persisted after retries", "WRITE_CONFLICT")
		}
		return err
	}
	return nil
}

func (s *kudoService) invalidateAfterWrite(ctx context.Context, userIDs ...int64) {
	for _, id := range userIDs {
		if err := s.cache.Delete(ctx, statsCacheKey(id)); err != nil {
			s.logger.Warn("Failed to invalidate stats cache", zap.Int64("user_id", id), zap.Error(err))
		}
	}
	if err := s.cache.DeletePattern(ctx, "leaderboard:*"); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", zap.Error(err))
	}
}

func statsCacheKey(userID int64) string {
	return fmt.Sprintf("stats:user:%d", userID)
}

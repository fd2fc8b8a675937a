// file: internal/services/leaderboard_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"kudospot/internal/cache"
	"kudospot/internal/config"
	"kudospot/internal/models"
	"kudospot/internal/repositories"

	"go.uber.org/zap"
)

// leaderboardService implements LeaderboardService. Every view is one
// RankingQuery against the kudo records; the views differ only in their
// configuration, not in query code.
type leaderboardService struct {
	kudoRepo repositories.KudoRepository
	cache    cache.Cache
	logger   *zap.Logger
	config   config.LeaderboardConfig
	cacheTTL time.Duration
}

// NewLeaderboardService creates a new leaderboard service.
func NewLeaderboardService(
	kudoRepo repositories.KudoRepository,
	cacheInstance cache.Cache,
	logger *zap.Logger,
	cfg config.LeaderboardConfig,
	cacheTTL time.Duration,
) LeaderboardService {
	return &leaderboardService{
		kudoRepo: kudoRepo,
		cache:    cacheInstance,
		logger:   logger,
		config:   cfg,
		cacheTTL: cacheTTL,
	}
}

// GetLeaderboard computes the received, given and trending views.
//
// Received and given are global, all-time rankings. Trending groups by
// recipient over the configured window; when TrendingPersonal is set it
// is restricted to kudos the caller sent, answering "who have I
// energized recently". A zero window disables the trending view.
func (s *leaderboardService) GetLeaderboard(ctx context.Context, callerID int64) (*LeaderboardResponse, error) {
	cacheKey := s.cacheKey(callerID)
	var cached LeaderboardResponse
	if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	received, err := s.kudoRepo.Rank(ctx, repositories.RankingQuery{
		GroupKey: repositories.GroupByRecipient,
		Limit:    s.config.Limit,
	})
	if err != nil {
		return nil, NewStoreError("failed to rank received kudos", err)
	}

	given, err := s.kudoRepo.Rank(ctx, repositories.RankingQuery{
		GroupKey: repositories.GroupBySender,
		Limit:    s.config.Limit,
	})
	if err != nil {
		return nil, NewStoreError("failed to rank given kudos", err)
	}

	var trending []*models.LeaderboardEntry
	if s.config.TrendingWindow > 0 {
		q := repositories.RankingQuery{
			GroupKey: repositories.GroupByRecipient,
			Limit:    s.config.Limit,
		}
		since := time.Now().Add(-s.config.TrendingWindow)
		q.Since = &since
		if s.config.TrendingPersonal {
			q.FromUserID = &callerID
		}

		trending, err = s.kudoRepo.Rank(ctx, q)
		if err != nil {
			return nil, NewStoreError("failed to rank trending kudos", err)
		}
	}

	response := &LeaderboardResponse{
		Received: received,
		Given:    given,
		Trending: trending,
	}

	if err := s.cache.Set(ctx, cacheKey, response, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache leaderboard", zap.Error(err))
	}
	return response, nil
}

// cacheKey scopes the cache per caller only when the trending view is
// personalized; otherwise every caller shares one entry.
func (s *leaderboardService) cacheKey(callerID int64) string {
	if s.config.TrendingWindow > 0 && s.config.TrendingPersonal {
		return fmt.Sprintf("leaderboard:user:%d", callerID)
	}
	return "leaderboard:global"
}

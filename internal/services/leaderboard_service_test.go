// file: internal/services/leaderboard_service_test.go
package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kudospot/internal/config"
	"kudospot/internal/models"
)

func seedKudos(t *testing.T, kudos *fakeKudoRepo, from, to int64, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := kudos.CreateTx(context.Background(), nil, &models.Kudo{
			FromUserID: from,
			ToUserID:   to,
			Message:    "seed",
			Category:   models.CategoryTeamwork,
		})
		require.NoError(t, err)
	}
}

func newTestLeaderboard(t *testing.T, cfg config.LeaderboardConfig) (LeaderboardService, *fakeUserRepo, *fakeKudoRepo, *fakeCache) {
	t.Helper()
	users := newFakeUserRepo()
	kudos := newFakeKudoRepo(users)
	cacheInstance := newFakeCache()
	svc := NewLeaderboardService(kudos, cacheInstance, zap.NewNop(), cfg, time.Minute)
	return svc, users, kudos, cacheInstance
}

func defaultLeaderboardConfig() config.LeaderboardConfig {
	return config.LeaderboardConfig{
		Limit:            10,
		TrendingWindow:   7 * 24 * time.Hour,
		TrendingPersonal: true,
	}
}

func TestLeaderboardRankingAndTieBreak(t *testing.T) {
	svc, users, kudos, _ := newTestLeaderboard(t, defaultLeaderboardConfig())

	alice := users.addUser("Alice", "Engineering")
	bob := users.addUser("Bob", "Design")
	cara := users.addUser("Cara", "Sales")

	seedKudos(t, kudos, cara.ID, alice.ID, 3)
	seedKudos(t, kudos, cara.ID, bob.ID, 3)
	seedKudos(t, kudos, alice.ID, cara.ID, 5)

	board, err := svc.GetLeaderboard(context.Background(), cara.ID)
	require.NoError(t, err)

	require.Len(t, board.Received, 3)
	assert.Equal(t, cara.ID, board.Received[0].UserID)
	assert.Equal(t, int64(5), board.Received[0].Score)
	// Alice and Bob tie on 3; the lower user id wins.
	assert.Equal(t, alice.ID, board.Received[1].UserID)
	assert.Equal(t, bob.ID, board.Received[2].UserID)

	require.NotEmpty(t, board.Given)
	assert.Equal(t, cara.ID, board.Given[0].UserID)
	assert.Equal(t, int64(6), board.Given[0].Score)
}

func TestLeaderboardScoresNonIncreasing(t *testing.T) {
	svc, users, kudos, _ := newTestLeaderboard(t, defaultLeaderboardConfig())

	sender := users.addUser("Sender", "Ops")
	for i := 0; i < 6; i++ {
		u := users.addUser(fmt.Sprintf("User%d", i), "Eng")
		seedKudos(t, kudos, sender.ID, u.ID, i+1)
	}

	board, err := svc.GetLeaderboard(context.Background(), sender.ID)
	require.NoError(t, err)

	for i := 1; i < len(board.Received); i++ {
		assert.LessOrEqual(t, board.Received[i].Score, board.Received[i-1].Score)
	}
}

func TestLeaderboardLimitedToConfiguredSize(t *testing.T) {
	svc, users, kudos, _ := newTestLeaderboard(t, defaultLeaderboardConfig())

	sender := users.addUser("Sender", "Ops")
	for i := 0; i < 15; i++ {
		u := users.addUser(fmt.Sprintf("User%d", i), "Eng")
		seedKudos(t, kudos, sender.ID, u.ID, 1)
	}

	board, err := svc.GetLeaderboard(context.Background(), sender.ID)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(board.Received), 10)
	assert.LessOrEqual(t, len(board.Given), 10)
	assert.LessOrEqual(t, len(board.Trending), 10)
}

func TestLeaderboardTrendingPersonalizedToCaller(t *testing.T) {
	svc, users, kudos, _ := newTestLeaderboard(t, defaultLeaderboardConfig())

	alice := users.addUser("Alice", "Engineering")
	bob := users.addUser("Bob", "Design")
	cara := users.addUser("Cara", "Sales")

	// Alice recognized Bob; Cara recognized Alice.
	seedKudos(t, kudos, alice.ID, bob.ID, 2)
	seedKudos(t, kudos, cara.ID, alice.ID, 4)

	board, err := svc.GetLeaderboard(context.Background(), alice.ID)
	require.NoError(t, err)

	// Trending counts only kudos Alice sent.
	require.Len(t, board.Trending, 1)
	assert.Equal(t, bob.ID, board.Trending[0].UserID)
	assert.Equal(t, int64(2), board.Trending[0].Score)

	// The global received view still sees everything.
	assert.Equal(t, alice.ID, board.Received[0].UserID)
}

func TestLeaderboardTrendingDisabled(t *testing.T) {
	cfg := defaultLeaderboardConfig()
	cfg.TrendingWindow = 0
	svc, users, kudos, _ := newTestLeaderboard(t, cfg)

	alice := users.addUser("Alice", "Engineering")
	bob := users.addUser("Bob", "Design")
	seedKudos(t, kudos, alice.ID, bob.ID, 1)

	board, err := svc.GetLeaderboard(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Nil(t, board.Trending)
}

func TestLeaderboardServedFromCache(t *testing.T) {
	svc, users, kudos, _ := newTestLeaderboard(t, defaultLeaderboardConfig())

	alice := users.addUser("Alice", "Engineering")
	bob := users.addUser("Bob", "Design")
	seedKudos(t, kudos, alice.ID, bob.ID, 1)

	first, err := svc.GetLeaderboard(context.Background(), alice.ID)
	require.NoError(t, err)

	// New kudos are invisible until the cache entry is invalidated.
	seedKudos(t, kudos, alice.ID, bob.ID, 5)
	second, err := svc.GetLeaderboard(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Received[0].Score, second.Received[0].Score)
}

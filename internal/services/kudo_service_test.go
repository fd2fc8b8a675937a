// file: internal/services/kudo_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kudospot/internal/events"
	"kudospot/internal/models"
)

func newTestKudoService(t *testing.T) (KudoService, *fakeUserRepo, *fakeKudoRepo, *fakeCache) {
	t.Helper()
	users := newFakeUserRepo()
	kudos := newFakeKudoRepo(users)
	cacheInstance := newFakeCache()
	bus := events.NewInMemoryBus(zap.NewNop())
	t.Cleanup(func() { bus.Close() })

	svc := NewKudoService(kudos, users, fakeTxRunner{}, cacheInstance, bus, zap.NewNop(), nil)
	return svc, users, kudos, cacheInstance
}

func TestCreateKudoRunsProgression(t *testing.T) {
	svc, users, _, _ := newTestKudoService(t)
	alice := users.addUser("Alice", "Engineering")
	bob := users.addUser("Bob", "Design")

	kudo, err := svc.CreateKudo(context.Background(), &CreateKudoRequest{
		FromUserID: alice.ID,
		ToUserID:   bob.ID,
		Message:    "great design review",
		Category:   models.CategoryTeamwork,
	})
	require.NoError(t, err)

	assert.Equal(t, alice.ID, kudo.FromUserID)
	assert.Equal(t, bob.ID, kudo.ToUserID)
	require.NotNil(t, kudo.To)
	assert.Equal(t, "Bob", kudo.To.Name)

	// The recipient earned First Kudos in the same operation.
	badges, err := users.GetBadges(context.Background(), bob.ID)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, "First Kudos", badges[0].Name)
}

func TestCreateKudoUnknownRecipient(t *testing.T) {
	svc, users, kudos, _ := newTestKudoService(t)
	alice := users.addUser("Alice", "Engineering")

	_, err := svc.CreateKudo(context.Background(), &CreateKudoRequest{
		FromUserID: alice.ID,
		ToUserID:   999,
		Message:    "hello",
		Category:   models.CategoryHelp,
	})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	all, _ := kudos.ListAll(context.Background())
	assert.Empty(t, all, "nothing may be persisted for an unknown recipient")
}

func TestCreateKudoInvalidCategoryRejectedBeforeWrite(t *testing.T) {
	svc, users, kudos, _ := newTestKudoService(t)
	alice := users.addUser("Alice", "Engineering")
	bob := users.addUser("Bob", "Design")

	_, err := svc.CreateKudo(context.Background(), &CreateKudoRequest{
		FromUserID: alice.ID,
		ToUserID:   bob.ID,
		Message:    "nice",
		Category:   "Bravery",
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	all, _ := kudos.ListAll(context.Background())
	assert.Empty(t, all)

	badges, _ := users.GetBadges(context.Background(), bob.ID)
	assert.Empty(t, badges, "rejected kudo must not advance progression")
}

func TestCreateKudoEmptyMessageRejected(t *testing.T) {
	svc, users, _, _ := newTestKudoService(t)
	alice := users.addUser("Alice", "Engineering")
	bob := users.addUser("Bob", "Design")

	_, err := svc.CreateKudo(context.Background(), &CreateKudoRequest{
		FromUserID: alice.ID,
		ToUserID:   bob.ID,
		Message:    "",
		Category:   models.CategoryHelp,
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestCreateKudoSelfKudoAccepted(t *testing.T) {
	svc, users, _, _ := newTestKudoService(t)
	alice := users.addUser("Alice", "Engineering")

	kudo, err := svc.CreateKudo(context.Background(), &CreateKudoRequest{
		FromUserID: alice.ID,
		ToUserID:   alice.ID,
		Message:    "treat yourself",
		Category:   models.CategoryExcellence,
	})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, kudo.ToUserID)
}

func TestCreateKudoLevelsUpRecipient(t *testing.T) {
	svc, users, _, _ := newTestKudoService(t)
	alice := users.addUser("Alice", "Engineering")
	bob := users.addUser("Bob", "Design")

	for i := 0; i < 4; i++ {
		_, err := svc.CreateKudo(context.Background(), &CreateKudoRequest{
			FromUserID: alice.ID,
			ToUserID:   bob.ID,
			Message:    "solid work",
			Category:   models.CategoryTeamwork,
		})
		require.NoError(t, err)
	}

	reloaded, err := users.GetByID(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Level, "4 received kudos reach level 2")
}

func TestToggleLikeIsSelfInverse(t *testing.T) {
	svc, users, _, _ := newTestKudoService(t)
	alice := users.addUser("Alice", "Engineering")
	bob := users.addUser("Bob", "Design")

	kudo, err := svc.CreateKudo(context.Background(), &CreateKudoRequest{
		FromUserID: alice.ID,
		ToUserID:   bob.ID,
		Message:    "thanks",
		Category:   models.CategoryHelp,
	})
	require.NoError(t, err)

	liked, err := svc.ToggleLike(context.Background(), kudo.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{bob.ID}, liked.LikedBy)

	unliked, err := svc.ToggleLike(context.Background(), kudo.ID, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, unliked.LikedBy, "double toggle restores the original state")
}

func TestToggleLikeUnknownKudo(t *testing.T) {
	svc, users, _, _ := newTestKudoService(t)
	alice := users.addUser("Alice", "Engineering")

	_, err := svc.ToggleLike(context.Background(), 42, alice.ID)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestGetStatsBreakdownSumsToReceived(t *testing.T) {
	svc, users, _, _ := newTestKudoService(t)
	alice := users.addUser("Alice", "Engineering")
	bob := users.addUser("Bob", "Design")

	categories := []string{
		models.CategoryTeamwork,
		models.CategoryTeamwork,
		models.CategoryInnovation,
		models.CategoryHelp,
	}
	for _, category := range categories {
		_, err := svc.CreateKudo(context.Background(), &CreateKudoRequest{
			FromUserID: alice.ID,
			ToUserID:   bob.ID,
			Message:    "nice",
			Category:   category,
		})
		require.NoError(t, err)
	}

	stats, err := svc.GetStats(context.Background(), bob.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.ReceivedCount)
	assert.Equal(t, int64(0), stats.GivenCount)

	var sum int64
	for _, n := range stats.CategoryBreakdown {
		sum += n
	}
	assert.Equal(t, stats.ReceivedCount, sum)
	assert.Equal(t, int64(2), stats.CategoryBreakdown[models.CategoryTeamwork])
}

func TestGetStatsCachedUntilInvalidated(t *testing.T) {
	svc, users, _, cacheInstance := newTestKudoService(t)
	alice := users.addUser("Alice", "Engineering")
	bob := users.addUser("Bob", "Design")

	_, err := svc.CreateKudo(context.Background(), &CreateKudoRequest{
		FromUserID: alice.ID,
		ToUserID:   bob.ID,
		Message:    "first",
		Category:   models.CategoryHelp,
	})
	require.NoError(t, err)

	stats, err := svc.GetStats(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ReceivedCount)

	// A new kudo invalidates the recipient's cached stats.
	_, err = svc.CreateKudo(context.Background(), &CreateKudoRequest{
		FromUserID: alice.ID,
		ToUserID:   bob.ID,
		Message:    "second",
		Category:   models.CategoryHelp,
	})
	require.NoError(t, err)
	assert.Contains(t, cacheInstance.deleted, statsCacheKey(bob.ID))

	stats, err = svc.GetStats(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.ReceivedCount)
}

func TestListKudosNewestFirst(t *testing.T) {
	svc, users, _, _ := newTestKudoService(t)
	alice := users.addUser("Alice", "Engineering")
	bob := users.addUser("Bob", "Design")

	first, err := svc.CreateKudo(context.Background(), &CreateKudoRequest{
		FromUserID: alice.ID, ToUserID: bob.ID, Message: "one", Category: models.CategoryHelp,
	})
	require.NoError(t, err)
	second, err := svc.CreateKudo(context.Background(), &CreateKudoRequest{
		FromUserID: bob.ID, ToUserID: alice.ID, Message: "two", Category: models.CategoryHelp,
	})
	require.NoError(t, err)

	all, err := svc.ListKudos(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
}

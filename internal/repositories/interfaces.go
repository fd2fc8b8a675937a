// file: internal/repositories/interfaces.go
package repositories

import (
	"context"
	"database/sql"
	"time"

	"kudospot/internal/models"
)

// ===============================
// RANKING CONFIGURATION
// ===============================

// GroupKey selects which side of a kudo a ranking groups by.
type GroupKey string

const (
	// GroupByRecipient ranks users by kudos received.
	GroupByRecipient GroupKey = "recipient"
	// GroupBySender ranks users by kudos given.
	GroupBySender GroupKey = "sender"
)

// RankingQuery describes one leaderboard view: a grouped count over the
// kudo records, optionally restricted by a creation-time lower bound
// and/or a specific sender. All leaderboard views are expressed through
// this one configuration instead of per-view query code.
type RankingQuery struct {
	GroupKey   GroupKey
	Since      *time.Time // count only kudos created at or after this instant
	FromUserID *int64     // count only kudos sent by this user
	Limit      int
}

// ===============================
// REPOSITORY INTERFACES
// ===============================

// UserRepository persists users, their profile fields and their
// progression projection (level + badges).
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateAvatar(ctx context.Context, userID int64, url, publicID string) error

	GetBadges(ctx context.Context, userID int64) ([]models.Badge, error)

	// Transactional progression write-back: called inside the kudo
	// creation transaction so level/badge updates commit with the kudo.
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.User, error)
	GetBadgesTx(ctx context.Context, tx *sql.Tx, userID int64) ([]models.Badge, error)
	ApplyProgressionTx(ctx context.Context, tx *sql.Tx, userID int64, level int, newBadges []models.Badge) error
}

// KudoRepository is the kudo record store: append-mostly storage plus
// the counting and ranking queries the engine is built on.
type KudoRepository interface {
	CreateTx(ctx context.Context, tx *sql.Tx, kudo *models.Kudo) error
	GetByID(ctx context.Context, id int64) (*models.Kudo, error)
	ListAll(ctx context.Context) ([]*models.Kudo, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Kudo, error)

	// Scoring queries. CategoryBreakdown is computed in a single grouped
	// query so its counts always sum to the received count of the same
	// snapshot.
	CountReceived(ctx context.Context, userID int64) (int64, error)
	CountReceivedTx(ctx context.Context, tx *sql.Tx, userID int64) (int64, error)
	CountGiven(ctx context.Context, userID int64) (int64, error)
	CategoryBreakdown(ctx context.Context, userID int64) (map[string]int64, error)

	// ToggleLike atomically flips userID's membership in the kudo's
	// liked-by set and reports the resulting state.
	ToggleLike(ctx context.Context, kudoID, userID int64) (liked bool, err error)

	Rank(ctx context.Context, q RankingQuery) ([]*models.LeaderboardEntry, error)
}

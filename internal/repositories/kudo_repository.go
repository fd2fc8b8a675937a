// file: internal/repositories/kudo_repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"kudospot/internal/database"
	"kudospot/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// kudoRepository implements KudoRepository on PostgreSQL.
type kudoRepository struct {
	*BaseRepository
}

// NewKudoRepository creates a new kudo repository.
func NewKudoRepository(db *database.Manager, logger *zap.Logger) KudoRepository {
	return &kudoRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// kudoSelect joins sender/recipient refs and aggregates the liked-by set
// in one query to avoid N+1 lookups on listing.
const kudoSelect = `
	SELECT
		k.id, k.from_user_id, k.to_user_id, k.message, k.category, k.created_at,
		fu.name, fu.department,
		tu.name, tu.department,
		COALESCE(ARRAY_AGG(kl.user_id ORDER BY kl.user_id)
			FILTER (WHERE kl.user_id IS NOT NULL), '{}') AS liked_by
	FROM kudos k
	INNER JOIN users fu ON fu.id = k.from_user_id
	INNER JOIN users tu ON tu.id = k.to_user_id
	LEFT JOIN kudo_likes kl ON kl.kudo_id = k.id`

const kudoGroupBy = ` GROUP BY k.id, fu.name, fu.department, tu.name, tu.department`

// CreateTx appends a kudo record within the surrounding transaction.
// Validation of category and recipient existence happens in the service;
// the foreign keys are the last line of defense.
func (r *kudoRepository) CreateTx(ctx context.Context, tx *sql.Tx, kudo *models.Kudo) error {
	query := `
		INSERT INTO kudos (from_user_id, to_user_id, message, category)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := tx.QueryRowContext(
		ctx, query,
		kudo.FromUserID, kudo.ToUserID, kudo.Message, kudo.Category,
	).Scan(&kudo.ID, &kudo.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create kudo: %w", err)
	}

	kudo.LikedBy = []int64{}
	return nil
}

// GetByID retrieves a kudo with resolved refs, or nil when absent.
func (r *kudoRepository) GetByID(ctx context.Context, id int64) (*models.Kudo, error) {
	query := kudoSelect + ` WHERE k.id = $1` + kudoGroupBy

	kudo, err := r.scanKudo(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get kudo by ID: %w", err)
	}
	return kudo, nil
}

// ListAll returns every kudo, newest first.
func (r *kudoRepository) ListAll(ctx context.Context) ([]*models.Kudo, error) {
	query := kudoSelect + kudoGroupBy + ` ORDER BY k.created_at DESC, k.id DESC`

	return r.queryKudos(ctx, query)
}

// ListByUser returns kudos where the user is sender or recipient,
// newest first.
func (r *kudoRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Kudo, error) {
	query := kudoSelect +
		` WHERE k.from_user_id = $1 OR k.to_user_id = $1` +
		kudoGroupBy + ` ORDER BY k.created_at DESC, k.id DESC`

	return r.queryKudos(ctx, query, userID)
}

// ===============================
// SCORING QUERIES
// ===============================

// CountReceived counts kudos addressed to the user.
func (r *kudoRepository) CountReceived(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM kudos WHERE to_user_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count received kudos: %w", err)
	}
	return count, nil
}

// CountReceivedTx counts received kudos within the transaction, so the
// progression engine sees the count including the kudo just inserted.
func (r *kudoRepository) CountReceivedTx(ctx context.Context, tx *sql.Tx, userID int64) (int64, error) {
	var count int64
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM kudos WHERE to_user_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count received kudos in tx: %w", err)
	}
	return count, nil
}

// CountGiven counts kudos sent by the user.
func (r *kudoRepository) CountGiven(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM kudos WHERE from_user_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count given kudos: %w", err)
	}
	return count, nil
}

// CategoryBreakdown returns per-category received counts. Computed in a
// single grouped scan, so the values always sum to the received count of
// the same snapshot.
func (r *kudoRepository) CategoryBreakdown(ctx context.Context, userID int64) (map[string]int64, error) {
	rows, err := r.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM kudos WHERE to_user_id = $1 GROUP BY category`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute category breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := make(map[string]int64)
	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		breakdown[category] = count
	}
	return breakdown, rows.Err()
}

// ===============================
// LIKE TOGGLE
// ===============================

// ToggleLike flips the user's membership in the kudo's liked-by set.
// The composite primary key on kudo_likes makes the add side a single
// conditional insert; there is no read-modify-write window.
func (r *kudoRepository) ToggleLike(ctx context.Context, kudoID, userID int64) (bool, error) {
	result, err := r.ExecContext(ctx,
		`INSERT INTO kudo_likes (kudo_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (kudo_id, user_id) DO NOTHING`,
		kudoID, userID,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return false, sql.ErrNoRows
		}
		return false, fmt.Errorf("failed to add like: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n > 0 {
		return true, nil
	}

	// Already present: this toggle is a removal.
	if _, err := r.ExecContext(ctx,
		`DELETE FROM kudo_likes WHERE kudo_id = $1 AND user_id = $2`,
		kudoID, userID,
	); err != nil {
		return false, fmt.Errorf("failed to remove like: %w", err)
	}
	return false, nil
}

// ===============================
// RANKING
// ===============================

// Rank executes one leaderboard view described by q: a grouped count
// joined against users, descending by score with user id as the
// deterministic tie-break.
func (r *kudoRepository) Rank(ctx context.Context, q RankingQuery) ([]*models.LeaderboardEntry, error) {
	groupCol := "k.to_user_id"
	if q.GroupKey == GroupBySender {
		groupCol = "k.from_user_id"
	}

	where := ""
	args := []interface{}{}
	addCond := func(cond string, arg interface{}) {
		args = append(args, arg)
		placeholder := fmt.Sprintf("$%d", len(args))
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(cond, placeholder)
	}

	if q.Since != nil {
		addCond("k.created_at >= %s", *q.Since)
	}
	if q.FromUserID != nil {
		addCond("k.from_user_id = %s", *q.FromUserID)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT u.id, u.name, u.department, COUNT(*) AS score
		FROM kudos k
		INNER JOIN users u ON u.id = %s%s
		GROUP BY u.id, u.name, u.department
		ORDER BY score DESC, u.id ASC
		LIMIT $%d`, groupCol, where, len(args))

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to rank kudos: %w", err)
	}
	defer rows.Close()

	entries := []*models.LeaderboardEntry{}
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.Department, &e.Score); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// ===============================
// SCAN HELPERS
// ===============================

func (r *kudoRepository) queryKudos(ctx context.Context, query string, args ...interface{}) ([]*models.Kudo, error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query kudos: %w", err)
	}
	defer rows.Close()

	kudos := []*models.Kudo{}
	for rows.Next() {
		kudo, err := r.scanKudo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan kudo: %w", err)
		}
		kudos = append(kudos, kudo)
	}
	return kudos, rows.Err()
}

func (r *kudoRepository) scanKudo(row rowScanner) (*models.Kudo, error) {
	var kudo models.Kudo
	var from, to models.UserRef
	var likedBy pq.Int64Array

	err := row.Scan(
		&kudo.ID, &kudo.FromUserID, &kudo.ToUserID,
		&kudo.Message, &kudo.Category, &kudo.CreatedAt,
		&from.Name, &from.Department,
		&to.Name, &to.Department,
		&likedBy,
	)
	if err != nil {
		return nil, err
	}

	from.ID = kudo.FromUserID
	to.ID = kudo.ToUserID
	kudo.From = &from
	kudo.To = &to
	kudo.LikedBy = []int64(likedBy)
	return &kudo, nil
}

// file: internal/repositories/user_repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"kudospot/internal/database"
	"kudospot/internal/models"

	"go.uber.org/zap"
)

// userRepository implements UserRepository on PostgreSQL.
type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const userColumns = `id, email, name, password_hash, department, position, bio,
	avatar_url, avatar_public_id, level, created_at, updated_at`

// Create inserts a new user.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, name, password_hash, department, position, bio)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, level, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		user.Email, user.Name, user.PasswordHash,
		user.Department, user.Position, user.Bio,
	).Scan(&user.ID, &user.Level, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("email already registered: %w", err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.GetLogger().Info("User created",
		zap.Int64("user_id", user.ID),
		zap.String("department", user.Department),
	)
	return nil
}

// GetByID retrieves a user by ID, or nil when absent.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := r.scanUser(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email, or nil when absent.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)

	user, err := r.scanUser(r.QueryRowContext(ctx, query, email))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// List returns all users ordered by name.
func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY name ASC, id ASC`, userColumns)

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateProfile updates the descriptive profile fields.
func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $2, department = $3, position = $4, bio = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.QueryRowContext(
		ctx, query,
		user.ID, user.Name, user.Department, user.Position, user.Bio,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if r.IsNotFound(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// UpdateAvatar stores the uploaded avatar location.
func (r *userRepository) UpdateAvatar(ctx context.Context, userID int64, url, publicID string) error {
	query := `
		UPDATE users
		SET avatar_url = $2, avatar_public_id = $3, updated_at = NOW()
		WHERE id = $1`

	result, err := r.ExecContext(ctx, query, userID, url, publicID)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetBadges returns the user's badges in the order they were earned.
func (r *userRepository) GetBadges(ctx context.Context, userID int64) ([]models.Badge, error) {
	query := `
		SELECT id, user_id, name, description, date_earned
		FROM badges
		WHERE user_id = $1
		ORDER BY date_earned ASC, id ASC`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get badges: %w", err)
	}
	defer rows.Close()

	return scanBadges(rows)
}

// ===============================
// TRANSACTIONAL PROGRESSION WRITE-BACK
// ===============================

// GetForUpdateTx loads a user inside the transaction with a row lock, so
// concurrent progression updates for the same recipient serialize.
func (r *userRepository) GetForUpdateTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 FOR UPDATE`, userColumns)

	user, err := r.scanUser(tx.QueryRowContext(ctx, query, userID))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock user row: %w", err)
	}
	return user, nil
}

// GetBadgesTx returns the user's badges within the transaction.
func (r *userRepository) GetBadgesTx(ctx context.Context, tx *sql.Tx, userID int64) ([]models.Badge, error) {
	query := `
		SELECT id, user_id, name, description, date_earned
		FROM badges
		WHERE user_id = $1
		ORDER BY date_earned ASC, id ASC`

	rows, err := tx.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get badges in tx: %w", err)
	}
	defer rows.Close()

	return scanBadges(rows)
}

// ApplyProgressionTx writes the recomputed level and appends any newly
// earned badges. The UNIQUE(user_id, name) constraint on badges makes
// the grant idempotent even under concurrent recomputes.
func (r *userRepository) ApplyProgressionTx(ctx context.Context, tx *sql.Tx, userID int64, level int, newBadges []models.Badge) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET level = $2, updated_at = NOW() WHERE id = $1`,
		userID, level,
	); err != nil {
		return fmt.Errorf("failed to update level: %w", err)
	}

	for _, badge := range newBadges {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO badges (user_id, name, description, date_earned)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (user_id, name) DO NOTHING`,
			userID, badge.Name, badge.Description, badge.DateEarned,
		); err != nil {
			return fmt.Errorf("failed to award badge %q: %w", badge.Name, err)
		}
	}
	return nil
}

// ===============================
// SCAN HELPERS
// ===============================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *userRepository) scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash,
		&user.Department, &user.Position, &user.Bio,
		&user.AvatarURL, &user.AvatarPublicID,
		&user.Level, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func scanBadges(rows *sql.Rows) ([]models.Badge, error) {
	var badges []models.Badge
	for rows.Next() {
		var b models.Badge
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Description, &b.DateEarned); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

package repository

import (
	"context"
	"errors"

	"replyboost-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, plan, skill, niche, platform, experience,
		daily_usage, last_usage_date, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Plan,
		&user.Profile.Skill,
		&user.Profile.Niche,
		&user.Profile.Platform,
		&user.Profile.Experience,
		&user.DailyUsage,
		&user.LastUsageDate,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, plan, skill, niche, platform, experience)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return r.db.QueryRow(
		ctx, query,
		user.Email,
		user.PasswordHash,
		user.Plan,
		user.Profile.Skill,
		user.Profile.Niche,
		user.Profile.Platform,
		user.Profile.Experience,
	).Scan(&user.ID, &user.CreatedAt)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// UpdateProfile replaces a user's profile fields
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, profile models.UserProfile) error {
	query := `
		UPDATE users SET
			skill = $2,
			niche = $3,
			platform = $4,
			experience = $5
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, profile.Skill, profile.Niche, profile.Platform, profile.Experience)
	return err
}

// ReserveDailyUsage atomically resets the counter on a date change, checks
// the plan ceiling and increments, in one conditional update. It returns
// the usage count after the increment and whether the reservation was
// granted; a denied reservation leaves the row untouched.
func (r *UserRepository) ReserveDailyUsage(ctx context.Context, id uuid.UUID, day string, limit int) (int, bool, error) {
	query := `
		UPDATE users SET
			daily_usage = CASE WHEN last_usage_date = $2 THEN daily_usage + 1 ELSE 1 END,
			last_usage_date = $2
		WHERE id = $1
			AND (CASE WHEN last_usage_date = $2 THEN daily_usage ELSE 0 END) < $3
		RETURNING daily_usage`

	var used int
	err := r.db.QueryRow(ctx, query, id, day, limit).Scan(&used)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return used, true, nil
}

// RefundDailyUsage releases one reserved generation, used when the
// generation call failed after the quota was reserved
func (r *UserRepository) RefundDailyUsage(ctx context.Context, id uuid.UUID, day string) error {
	query := `
		UPDATE users SET
			daily_usage = GREATEST(daily_usage - 1, 0)
		WHERE id = $1 AND last_usage_date = $2`

	_, err := r.db.Exec(ctx, query, id, day)
	return err
}

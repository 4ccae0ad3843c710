package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"crypto-graves/internal/domain"
	"crypto-graves/internal/repository"
)

const userColumns = `id, uuid, wallet_address, username, email, role, total_loss, total_gain,
	profile_image_url, bio, is_active, created_at, updated_at`

// UserRepository implements repository.UserRepository for PostgreSQL.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository.
// Methods receive their DBExecutor so they can join the caller's transaction.
func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &UserRepository{}
}

// CreateUserIfNotExists inserts a user unless the wallet address is already registered.
func (r *UserRepository) CreateUserIfNotExists(ctx context.Context, q repository.DBExecutor, user *domain.User) (bool, error) {
	query := `INSERT INTO users (uuid, wallet_address, username, email, role, total_loss, total_gain,
                  profile_image_url, bio, is_active, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
              ON CONFLICT (wallet_address) DO NOTHING
              RETURNING id`
	err := q.QueryRowContext(ctx, query,
		user.UUID,
		user.WalletAddress,
		user.Username,
		user.Email,
		user.Role,
		user.TotalLoss,
		user.TotalGain,
		user.ProfileImageURL,
		user.Bio,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create user: %w", classifyError(err))
	}
	return true, nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := q.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, classifyError(err))
	}
	return &user, nil
}

// GetUserByWalletAddress retrieves a user by their wallet address.
func (r *UserRepository) GetUserByWalletAddress(ctx context.Context, q repository.DBExecutor, walletAddress string) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE wallet_address = $1`
	if err := q.GetContext(ctx, &user, query, walletAddress); err != nil {
		return nil, fmt.Errorf("failed to get user by wallet address %s: %w", walletAddress, classifyError(err))
	}
	return &user, nil
}

// UpdateProfile writes the editable profile fields of user.
func (r *UserRepository) UpdateProfile(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	query := `UPDATE users SET username = $1, email = $2, profile_image_url = $3, bio = $4, updated_at = $5
              WHERE id = $6`
	result, err := q.ExecContext(ctx, query, user.Username, user.Email, user.ProfileImageURL, user.Bio, user.UpdatedAt, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update profile of user %d: %w", user.ID, classifyError(err))
	}
	if err := requireOneRow(result); err != nil {
		return fmt.Errorf("failed to update profile of user %d: %w", user.ID, err)
	}
	return nil
}

// AddTotalLoss increments the verified loss total of a user.
func (r *UserRepository) AddTotalLoss(ctx context.Context, q repository.DBExecutor, userID int64, amount decimal.Decimal) error {
	query := `UPDATE users SET total_loss = total_loss + $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, amount, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to add total loss for user %d: %w", userID, classifyError(err))
	}
	if err := requireOneRow(result); err != nil {
		return fmt.Errorf("failed to add total loss for user %d: %w", userID, err)
	}
	return nil
}

package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"crypto-graves/internal/domain"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// CreateUserIfNotExists inserts user unless its wallet address is taken.
	// It reports whether a row was inserted; on insert the generated fields are set on user.
	CreateUserIfNotExists(ctx context.Context, q DBExecutor, user *domain.User) (bool, error)
	// GetUserByID retrieves a user by their ID.
	GetUserByID(ctx context.Context, q DBExecutor, id int64) (*domain.User, error)
	// GetUserByWalletAddress retrieves a user by their wallet address.
	GetUserByWalletAddress(ctx context.Context, q DBExecutor, walletAddress string) (*domain.User, error)
	// UpdateProfile persists the profile fields of user.
	UpdateProfile(ctx context.Context, q DBExecutor, user *domain.User) error
	// AddTotalLoss increments the user's total verified loss.
	AddTotalLoss(ctx context.Context, q DBExecutor, userID int64, amount decimal.Decimal) error
}

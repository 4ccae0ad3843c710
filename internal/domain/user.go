package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRole defines what a user may do beyond owning losses. Roles other
// than UserRoleUser are granted directly in the database.
type UserRole string

// UserRoleUser is the role of every newly registered wallet.
const UserRoleUser UserRole = "user"

// User represents a wallet-registered user.
type User struct {
	ID              int64           `db:"id" json:"id"`                         // Primary key, BIGSERIAL in DB
	UUID            uuid.UUID       `db:"uuid" json:"uuid"`                     // Public identifier
	WalletAddress   string          `db:"wallet_address" json:"wallet_address"` // Unique, EIP-55 checksummed
	Username        *string         `db:"username" json:"username"`
	Email           *string         `db:"email" json:"email"`
	Role            UserRole        `db:"role" json:"role"`
	TotalLoss       decimal.Decimal `db:"total_loss" json:"total_loss"` // Sum of verified losses, MON
	TotalGain       decimal.Decimal `db:"total_gain" json:"total_gain"`
	ProfileImageURL *string         `db:"profile_image_url" json:"profile_image_url"`
	Bio             *string         `db:"bio" json:"bio"`
	IsActive        bool            `db:"is_active" json:"is_active"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// NewUser creates a new User instance for a wallet address.
func NewUser(walletAddress string) *User {
	now := time.Now().UTC()
	return &User{
		UUID:          uuid.New(),
		WalletAddress: walletAddress,
		Role:          UserRoleUser,
		TotalLoss:     decimal.Zero,
		TotalGain:     decimal.Zero,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ProfileUpdate carries the optional profile fields a user may change.
type ProfileUpdate struct {
	Username        *string `json:"username"`
	Email           *string `json:"email"`
	ProfileImageURL *string `json:"profile_image_url"`
	Bio             *string `json:"bio"`
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.Username == nil && p.Email == nil && p.ProfileImageURL == nil && p.Bio == nil
}

// Apply copies the set fields onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.Username != nil {
		u.Username = p.Username
	}
	if p.Email != nil {
		u.Email = p.Email
	}
	if p.ProfileImageURL != nil {
		u.ProfileImageURL = p.ProfileImageURL
	}
	if p.Bio != nil {
		u.Bio = p.Bio
	}
	u.UpdatedAt = time.Now().UTC()
}

package repository

import (
	"context"

	"crypto-graves/internal/domain"
)

// PositionRepository defines the interface for wallet position data operations.
type PositionRepository interface {
	// UpsertPosition inserts the position or overwrites the stored one with the
	// same (wallet address, ticker). It reports whether a new row was created.
	UpsertPosition(ctx context.Context, q DBExecutor, position *domain.WalletPosition) (bool, error)
	// GetPosition retrieves the position of a wallet for a ticker.
	GetPosition(ctx context.Context, q DBExecutor, walletAddress, ticker string) (*domain.WalletPosition, error)
	// ListPositions retrieves positions, optionally for one wallet, newest first.
	ListPositions(ctx context.Context, q DBExecutor, walletAddress string, limit, offset int) ([]domain.WalletPosition, error)
	// GetLeaderboard ranks wallets by summed loss amount.
	GetLeaderboard(ctx context.Context, q DBExecutor, limit int) ([]domain.LeaderboardEntry, error)
}

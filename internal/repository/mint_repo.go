package repository

import (
	"context"

	"crypto-graves/internal/domain"
)

// MintRepository defines the interface for mint records.
type MintRepository interface {
	// CreateMint inserts the mint and sets its ID, which is the token id.
	CreateMint(ctx context.Context, q DBExecutor, mint *domain.Mint) error
	ListMintsByWallet(ctx context.Context, q DBExecutor, walletAddress string) ([]domain.Mint, error)
}

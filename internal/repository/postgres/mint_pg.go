package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"crypto-graves/internal/domain"
	"crypto-graves/internal/repository"
)

const mintColumns = `id, uuid, user_id, wallet_address, ticker, mint_type, loss_id, token_name, token_symbol,
	total_supply, contract_address, transaction_hash, metadata, created_at`

// MintRepository implements repository.MintRepository for PostgreSQL.
type MintRepository struct{}

// NewMintRepository creates a new MintRepository.
func NewMintRepository(db *sqlx.DB) repository.MintRepository {
	return &MintRepository{}
}

// CreateMint inserts a mint record and sets its generated ID.
func (r *MintRepository) CreateMint(ctx context.Context, q repository.DBExecutor, mint *domain.Mint) error {
	metadata := mint.Metadata
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}
	query := `INSERT INTO mints (uuid, user_id, wallet_address, ticker, mint_type, loss_id, token_name, token_symbol,
                  total_supply, contract_address, transaction_hash, metadata, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
              RETURNING id`
	err := q.QueryRowContext(ctx, query,
		mint.UUID,
		mint.UserID,
		mint.WalletAddress,
		mint.Ticker,
		mint.MintType,
		mint.LossID,
		mint.TokenName,
		mint.TokenSymbol,
		mint.TotalSupply,
		mint.ContractAddress,
		mint.TransactionHash,
		metadata,
		mint.CreatedAt,
	).Scan(&mint.ID)
	if err != nil {
		return fmt.Errorf("failed to create %s mint for %s/%s: %w", mint.MintType, mint.WalletAddress, mint.Ticker, classifyError(err))
	}
	return nil
}

// ListMintsByWallet retrieves the mints of a wallet, newest first.
func (r *MintRepository) ListMintsByWallet(ctx context.Context, q repository.DBExecutor, walletAddress string) ([]domain.Mint, error) {
	mints := []domain.Mint{}
	query := `SELECT ` + mintColumns + ` FROM mints WHERE wallet_address = $1 ORDER BY created_at DESC, id DESC`
	if err := q.SelectContext(ctx, &mints, query, walletAddress); err != nil {
		return nil, fmt.Errorf("failed to list mints of %s: %w", walletAddress, classifyError(err))
	}
	return mints, nil
}

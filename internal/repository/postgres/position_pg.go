package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"crypto-graves/internal/domain"
	"crypto-graves/internal/repository"
)

const positionColumns = `id, uuid, user_id, user_uuid, wallet_address, ticker,
	avg_buy_price, avg_sell_price, current_price, total_buy_amount, total_sell_amount,
	loss_rate, loss_amount, created_at, updated_at`

// PositionRepository implements repository.PositionRepository for PostgreSQL.
type PositionRepository struct{}

// NewPositionRepository creates a new PositionRepository.
func NewPositionRepository(db *sqlx.DB) repository.PositionRepository {
	return &PositionRepository{}
}

// UpsertPosition inserts a position or overwrites every input and derived
// field of the existing (wallet_address, ticker) row in one statement.
func (r *PositionRepository) UpsertPosition(ctx context.Context, q repository.DBExecutor, position *domain.WalletPosition) (bool, error) {
	query := `INSERT INTO wallet_positions (uuid, user_id, user_uuid, wallet_address, ticker,
                  avg_buy_price, avg_sell_price, current_price, total_buy_amount, total_sell_amount,
                  loss_rate, loss_amount, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
              ON CONFLICT (wallet_address, ticker) DO UPDATE SET
                  avg_buy_price     = EXCLUDED.avg_buy_price,
                  avg_sell_price    = EXCLUDED.avg_sell_price,
                  current_price     = EXCLUDED.current_price,
                  total_buy_amount  = EXCLUDED.total_buy_amount,
                  total_sell_amount = EXCLUDED.total_sell_amount,
                  loss_rate         = EXCLUDED.loss_rate,
                  loss_amount       = EXCLUDED.loss_amount,
                  updated_at        = EXCLUDED.updated_at
              RETURNING id, uuid, created_at, updated_at, (xmax = 0) AS inserted`

	var inserted bool
	err := q.QueryRowContext(ctx, query,
		position.UUID,
		position.UserID,
		position.UserUUID,
		position.WalletAddress,
		position.Ticker,
		position.AvgBuyPrice,
		position.AvgSellPrice,
		position.CurrentPrice,
		position.TotalBuyAmount,
		position.TotalSellAmount,
		position.LossRate,
		position.LossAmount,
		position.CreatedAt,
		position.UpdatedAt,
	).Scan(&position.ID, &position.UUID, &position.CreatedAt, &position.UpdatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert position %s/%s: %w", position.WalletAddress, position.Ticker, classifyError(err))
	}
	return inserted, nil
}

// GetPosition retrieves the position of a wallet for a ticker.
func (r *PositionRepository) GetPosition(ctx context.Context, q repository.DBExecutor, walletAddress, ticker string) (*domain.WalletPosition, error) {
	var position domain.WalletPosition
	query := `SELECT ` + positionColumns + ` FROM wallet_positions WHERE wallet_address = $1 AND ticker = $2`
	if err := q.GetContext(ctx, &position, query, walletAddress, ticker); err != nil {
		return nil, fmt.Errorf("failed to get position %s/%s: %w", walletAddress, ticker, classifyError(err))
	}
	return &position, nil
}

// ListPositions retrieves a page of positions, optionally for one wallet.
func (r *PositionRepository) ListPositions(ctx context.Context, q repository.DBExecutor, walletAddress string, limit, offset int) ([]domain.WalletPosition, error) {
	positions := []domain.WalletPosition{}

	var err error
	if walletAddress != "" {
		query := `SELECT ` + positionColumns + ` FROM wallet_positions
                  WHERE wallet_address = $1
                  ORDER BY updated_at DESC, id DESC
                  LIMIT $2 OFFSET $3`
		err = q.SelectContext(ctx, &positions, query, walletAddress, limit, offset)
	} else {
		query := `SELECT ` + positionColumns + ` FROM wallet_positions
                  ORDER BY updated_at DESC, id DESC
                  LIMIT $1 OFFSET $2`
		err = q.SelectContext(ctx, &positions, query, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", classifyError(err))
	}
	return positions, nil
}

type leaderboardRow struct {
	domain.LeaderboardEntry
	TopTickers pq.StringArray `db:"top_tickers"`
}

// GetLeaderboard aggregates positions per wallet and ranks wallets with a
// positive total loss. Top tickers are the three largest losing positions.
func (r *PositionRepository) GetLeaderboard(ctx context.Context, q repository.DBExecutor, limit int) ([]domain.LeaderboardEntry, error) {
	query := `SELECT wallet_address,
                     SUM(loss_amount)      AS total_loss_amount,
                     SUM(total_buy_amount) AS total_invested,
                     MAX(updated_at)       AS last_updated,
                     (ARRAY_AGG(ticker ORDER BY loss_amount DESC, ticker) FILTER (WHERE loss_amount > 0))[1:3] AS top_tickers
              FROM wallet_positions
              GROUP BY wallet_address
              HAVING SUM(loss_amount) > 0
              ORDER BY total_loss_amount DESC, wallet_address
              LIMIT $1`

	var rows []leaderboardRow
	if err := q.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", classifyError(err))
	}

	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entry := row.LeaderboardEntry
		entry.TopTickers = []string(row.TopTickers)
		entries = append(entries, entry)
	}
	return entries, nil
}

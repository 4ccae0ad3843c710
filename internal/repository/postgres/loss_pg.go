package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"crypto-graves/internal/domain"
	"crypto-graves/internal/repository"
)

const lossColumns = `id, uuid, user_id, user_uuid, asset_name, asset_ticker, loss_amount, loss_amount_mon,
	transaction_hash, transaction_data, signature, status, verified_at, verified_by, verified_by_uuid,
	nft_token_id, nft_contract_address, notes, created_at, updated_at`

// LossRepository implements repository.LossRepository for PostgreSQL.
type LossRepository struct{}

// NewLossRepository creates a new LossRepository.
func NewLossRepository(db *sqlx.DB) repository.LossRepository {
	return &LossRepository{}
}

// CreateLoss inserts a new loss record.
func (r *LossRepository) CreateLoss(ctx context.Context, q repository.DBExecutor, loss *domain.Loss) error {
	query := `INSERT INTO losses (uuid, user_id, user_uuid, asset_name, asset_ticker, loss_amount, loss_amount_mon,
                  transaction_hash, transaction_data, signature, status, notes, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
              RETURNING id`
	err := q.QueryRowContext(ctx, query,
		loss.UUID,
		loss.UserID,
		loss.UserUUID,
		loss.AssetName,
		loss.AssetTicker,
		loss.LossAmount,
		loss.LossAmountMon,
		loss.TransactionHash,
		loss.TransactionData,
		loss.Signature,
		loss.Status,
		loss.Notes,
		loss.CreatedAt,
		loss.UpdatedAt,
	).Scan(&loss.ID)
	if err != nil {
		return fmt.Errorf("failed to create loss: %w", classifyError(err))
	}
	return nil
}

// GetLossByID retrieves a loss by its ID.
func (r *LossRepository) GetLossByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Loss, error) {
	var loss domain.Loss
	query := `SELECT ` + lossColumns + ` FROM losses WHERE id = $1`
	if err := q.GetContext(ctx, &loss, query, id); err != nil {
		return nil, fmt.Errorf("failed to get loss by ID %d: %w", id, classifyError(err))
	}
	return &loss, nil
}

// GetLossByIDForUpdate retrieves a loss and locks its row until the transaction ends.
func (r *LossRepository) GetLossByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Loss, error) {
	var loss domain.Loss
	query := `SELECT ` + lossColumns + ` FROM losses WHERE id = $1 FOR UPDATE`
	if err := q.GetContext(ctx, &loss, query, id); err != nil {
		return nil, fmt.Errorf("failed to get loss by ID %d for update: %w", id, classifyError(err))
	}
	return &loss, nil
}

// ListLosses retrieves losses matching filter, newest first.
func (r *LossRepository) ListLosses(ctx context.Context, q repository.DBExecutor, filter domain.LossFilter) ([]domain.Loss, error) {
	var (
		conditions []string
		args       []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.UserID != nil {
		conditions = append(conditions, "user_id = "+arg(*filter.UserID))
	}
	if filter.UserUUID != nil {
		conditions = append(conditions, "user_uuid = "+arg(*filter.UserUUID))
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = "+arg(*filter.Status))
	}

	query := `SELECT ` + lossColumns + ` FROM losses`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	query += ` LIMIT ` + arg(filter.Limit) + ` OFFSET ` + arg(filter.Offset)

	losses := []domain.Loss{}
	if err := q.SelectContext(ctx, &losses, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list losses: %w", classifyError(err))
	}
	return losses, nil
}

// UpdateLoss writes the mutable fields of loss.
func (r *LossRepository) UpdateLoss(ctx context.Context, q repository.DBExecutor, loss *domain.Loss) error {
	query := `UPDATE losses SET status = $1, verified_at = $2, verified_by = $3, verified_by_uuid = $4,
                  nft_token_id = $5, nft_contract_address = $6, notes = $7, updated_at = $8
              WHERE id = $9`
	result, err := q.ExecContext(ctx, query,
		loss.Status,
		loss.VerifiedAt,
		loss.VerifiedBy,
		loss.VerifiedByUUID,
		loss.NFTTokenID,
		loss.NFTContractAddress,
		loss.Notes,
		loss.UpdatedAt,
		loss.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update loss %d: %w", loss.ID, classifyError(err))
	}
	if err := requireOneRow(result); err != nil {
		return fmt.Errorf("failed to update loss %d: %w", loss.ID, err)
	}
	return nil
}

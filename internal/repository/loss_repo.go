package repository

import (
	"context"

	"crypto-graves/internal/domain"
)

// LossRepository defines the interface for loss data operations.
type LossRepository interface {
	CreateLoss(ctx context.Context, q DBExecutor, loss *domain.Loss) error
	GetLossByID(ctx context.Context, q DBExecutor, id int64) (*domain.Loss, error)
	// GetLossByIDForUpdate locks the row for the rest of the transaction.
	GetLossByIDForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Loss, error)
	ListLosses(ctx context.Context, q DBExecutor, filter domain.LossFilter) ([]domain.Loss, error)
	// UpdateLoss persists status, verification, NFT linkage and notes of loss.
	UpdateLoss(ctx context.Context, q DBExecutor, loss *domain.Loss) error
}

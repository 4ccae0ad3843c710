package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"

	"crypto-graves/internal/domain"
	"crypto-graves/internal/metrics"
	"crypto-graves/internal/repository"
	"crypto-graves/internal/util"
	"crypto-graves/pkg/db"
	"crypto-graves/pkg/ethsig"
)

const (
	DefaultLossLimit = 50
	MaxLossLimit     = 200
)

// CreateLossInput carries the fields of a new loss record.
type CreateLossInput struct {
	UserID          int64
	AssetName       string
	AssetTicker     string
	LossAmount      decimal.Decimal
	LossAmountMon   decimal.Decimal
	TransactionHash string
	TransactionData types.JSONText
	Signature       string
}

// LossService defines the interface for loss records and their verification lifecycle.
type LossService interface {
	CreateLoss(ctx context.Context, in CreateLossInput) (*domain.Loss, error)
	ListLosses(ctx context.Context, filter domain.LossFilter) ([]domain.Loss, error)
	GetLoss(ctx context.Context, id int64) (*domain.Loss, error)
	UpdateLoss(ctx context.Context, id int64, update domain.LossUpdate) (*domain.Loss, error)
	VerifyLoss(ctx context.Context, id, verifierID int64) (*domain.Loss, error)
	RejectLoss(ctx context.Context, id int64, notes *string) (*domain.Loss, error)
	ParseTransactionUpload(filename string, content io.Reader) (types.JSONText, error)
}

// lossService implements the LossService interface.
type lossService struct {
	transactor
	dbExecutor    repository.DBExecutor
	userRepo      repository.UserRepository
	lossRepo      repository.LossRepository
	maxUploadSize int64
	now           func() time.Time
	logger        *slog.Logger
}

// NewLossService creates a new instance of LossService.
// maxUploadSize bounds transaction files accepted by ParseTransactionUpload.
func NewLossService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	lossRepo repository.LossRepository,
	maxUploadSize int64,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) LossService {
	return &lossService{
		transactor:    newTransactor(dbBeginner, beginTx, commitTx, rollbackTx),
		dbExecutor:    dbExecutor,
		userRepo:      userRepo,
		lossRepo:      lossRepo,
		maxUploadSize: maxUploadSize,
		now:           time.Now,
		logger:        util.GetLogger().With("component", "loss_service"),
	}
}

// CreateLoss records a pending loss for an existing user.
func (s *lossService) CreateLoss(ctx context.Context, in CreateLossInput) (*domain.Loss, error) {
	if err := validateCreateLoss(in); err != nil {
		return nil, fmt.Errorf("create loss: %w", err)
	}

	var loss *domain.Loss
	err := s.inTx(ctx, "create loss", func(q repository.DBExecutor) error {
		user, err := s.userRepo.GetUserByID(ctx, q, in.UserID)
		if err != nil {
			return fmt.Errorf("create loss: %w", mapNotFound(err, util.ErrUserNotFound))
		}

		loss = domain.NewLoss(user, strings.TrimSpace(in.AssetName), in.AssetTicker, in.LossAmount, in.LossAmountMon,
			in.TransactionHash, in.TransactionData, in.Signature)
		if err := s.lossRepo.CreateLoss(ctx, q, loss); err != nil {
			return fmt.Errorf("create loss: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.LossTransitions.WithLabelValues(string(domain.LossStatusPending)).Inc()
	s.logger.Info("Loss recorded", "loss_id", loss.ID, "user_id", loss.UserID, "asset_ticker", loss.AssetTicker)
	return loss, nil
}

func validateCreateLoss(in CreateLossInput) error {
	if strings.TrimSpace(in.AssetName) == "" || domain.NormalizeTicker(in.AssetTicker) == "" {
		return fmt.Errorf("asset name and ticker are required: %w", util.ErrInvalidInput)
	}
	if err := domain.CheckLength("asset_name", strings.TrimSpace(in.AssetName), domain.MaxAssetNameLength); err != nil {
		return err
	}
	if err := domain.CheckLength("asset_ticker", domain.NormalizeTicker(in.AssetTicker), domain.MaxTickerLength); err != nil {
		return err
	}
	if in.LossAmount.IsNegative() || in.LossAmountMon.IsNegative() {
		return util.ErrNegativeValue
	}
	if err := domain.CheckAmount("loss_amount", in.LossAmount); err != nil {
		return err
	}
	if err := domain.CheckAmount("loss_amount_mon", in.LossAmountMon); err != nil {
		return err
	}
	if !ethsig.IsValidTxHash(in.TransactionHash) {
		return fmt.Errorf("transaction hash must be 0x followed by 64 hex characters: %w", util.ErrInvalidInput)
	}
	if in.Signature == "" {
		return fmt.Errorf("signature is required: %w", util.ErrInvalidInput)
	}
	if len(in.TransactionData) > 0 {
		if _, err := decodeJSONObject(in.TransactionData); err != nil {
			return err
		}
	}
	return nil
}

// ListLosses retrieves a page of losses, newest first.
func (s *lossService) ListLosses(ctx context.Context, filter domain.LossFilter) ([]domain.Loss, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, fmt.Errorf("list losses: unknown status %q: %w", *filter.Status, util.ErrInvalidInput)
	}
	filter.Limit, filter.Offset = ClampPage(filter.Limit, filter.Offset, DefaultLossLimit, MaxLossLimit)

	losses, err := s.lossRepo.ListLosses(ctx, s.dbExecutor, filter)
	if err != nil {
		return nil, fmt.Errorf("list losses: %w", err)
	}
	return losses, nil
}

// GetLoss retrieves a loss by ID.
func (s *lossService) GetLoss(ctx context.Context, id int64) (*domain.Loss, error) {
	loss, err := s.lossRepo.GetLossByID(ctx, s.dbExecutor, id)
	if err != nil {
		return nil, mapNotFound(err, util.ErrLossNotFound)
	}
	return loss, nil
}

// UpdateLoss changes notes or NFT linkage. Status is never touched here.
func (s *lossService) UpdateLoss(ctx context.Context, id int64, update domain.LossUpdate) (*domain.Loss, error) {
	if update.Empty() {
		return nil, fmt.Errorf("update loss: no fields to update: %w", util.ErrInvalidInput)
	}
	if update.NFTContractAddress != nil {
		if !ethsig.IsValidAddress(*update.NFTContractAddress) {
			return nil, fmt.Errorf("update loss: %w", util.ErrInvalidWalletAddress)
		}
		normalized := ethsig.NormalizeAddress(*update.NFTContractAddress)
		update.NFTContractAddress = &normalized
	}

	return s.mutateLoss(ctx, "update loss", id, func(q repository.DBExecutor, loss *domain.Loss) error {
		return loss.ApplyUpdate(update, s.now())
	})
}

// VerifyLoss moves a pending loss to verified on behalf of verifierID and
// adds its MON amount to the owner's total loss. A missing verifier leaves
// the loss untouched.
func (s *lossService) VerifyLoss(ctx context.Context, id, verifierID int64) (*domain.Loss, error) {
	loss, err := s.mutateLoss(ctx, "verify loss", id, func(q repository.DBExecutor, loss *domain.Loss) error {
		verifier, err := s.userRepo.GetUserByID(ctx, q, verifierID)
		if err != nil {
			return mapNotFound(err, util.ErrVerifierNotFound)
		}
		if err := loss.Verify(verifier, s.now()); err != nil {
			return err
		}
		if err := s.userRepo.AddTotalLoss(ctx, q, loss.UserID, loss.LossAmountMon); err != nil {
			return fmt.Errorf("failed to credit user %d: %w", loss.UserID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.LossTransitions.WithLabelValues(string(domain.LossStatusVerified)).Inc()
	s.logger.Info("Loss verified", "loss_id", loss.ID, "verified_by", verifierID)
	return loss, nil
}

// RejectLoss moves a pending loss to rejected.
func (s *lossService) RejectLoss(ctx context.Context, id int64, notes *string) (*domain.Loss, error) {
	loss, err := s.mutateLoss(ctx, "reject loss", id, func(q repository.DBExecutor, loss *domain.Loss) error {
		return loss.Reject(notes, s.now())
	})
	if err != nil {
		return nil, err
	}

	metrics.LossTransitions.WithLabelValues(string(domain.LossStatusRejected)).Inc()
	s.logger.Info("Loss rejected", "loss_id", loss.ID)
	return loss, nil
}

// mutateLoss locks the loss row, applies change and persists the result in
// one transaction.
func (s *lossService) mutateLoss(ctx context.Context, op string, id int64, change func(q repository.DBExecutor, loss *domain.Loss) error) (*domain.Loss, error) {
	var loss *domain.Loss
	err := s.inTx(ctx, op, func(q repository.DBExecutor) error {
		var err error
		loss, err = s.lossRepo.GetLossByIDForUpdate(ctx, q, id)
		if err != nil {
			return fmt.Errorf("%s: %w", op, mapNotFound(err, util.ErrLossNotFound))
		}
		if err := change(q, loss); err != nil {
			return fmt.Errorf("%s %d: %w", op, id, err)
		}
		if err := s.lossRepo.UpdateLoss(ctx, q, loss); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loss, nil
}

// ParseTransactionUpload reads a .json transaction export and returns it as
// a JSON object ready to attach to a loss.
func (s *lossService) ParseTransactionUpload(filename string, content io.Reader) (types.JSONText, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".json") {
		return nil, fmt.Errorf("upload: only .json files are accepted: %w", util.ErrInvalidInput)
	}

	data, err := io.ReadAll(io.LimitReader(content, s.maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("upload: failed to read file: %w", err)
	}
	if int64(len(data)) > s.maxUploadSize {
		return nil, fmt.Errorf("upload: file exceeds %d bytes: %w", s.maxUploadSize, util.ErrInvalidInput)
	}

	return decodeJSONObject(data)
}

// decodeJSONObject accepts only a top-level JSON object.
func decodeJSONObject(data []byte) (types.JSONText, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("transaction data must be a JSON object: %w", util.ErrInvalidInput)
	}
	return types.JSONText(data), nil
}

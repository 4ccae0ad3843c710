package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"crypto-graves/internal/domain"
	"crypto-graves/internal/metrics"
	"crypto-graves/internal/repository"
	"crypto-graves/internal/util"
	"crypto-graves/pkg/db"
)

// MintSettings holds the simulated chain parameters used for minting.
type MintSettings struct {
	NFTContractAddress   string
	TokenContractAddress string
	NFTImageBaseURL      string
	ChainID              int64
}

// MintRequest describes one mint for a (wallet, ticker) position.
// Token mints need name, symbol and a positive supply. LossID links the
// minted NFT to a verified loss of the same user.
type MintRequest struct {
	WalletAddress string
	Ticker        string
	MintType      domain.MintType
	TokenName     *string
	TokenSymbol   *string
	TotalSupply   *int64
	LossID        *int64
}

// MintResult is a stored mint plus the NFT metadata, if any.
type MintResult struct {
	Mint     *domain.Mint
	Metadata *domain.NFTMetadata
	ChainID  int64
}

// MintService defines the interface for simulated NFT and meme-token minting.
type MintService interface {
	Mint(ctx context.Context, req MintRequest) (*MintResult, error)
	ListMints(ctx context.Context, walletAddress string) ([]domain.Mint, error)
}

// mintService implements the MintService interface.
type mintService struct {
	transactor
	dbExecutor   repository.DBExecutor
	positionRepo repository.PositionRepository
	lossRepo     repository.LossRepository
	mintRepo     repository.MintRepository
	settings     MintSettings
	now          func() time.Time
	logger       *slog.Logger
}

// NewMintService creates a new instance of MintService.
func NewMintService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	positionRepo repository.PositionRepository,
	lossRepo repository.LossRepository,
	mintRepo repository.MintRepository,
	settings MintSettings,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) MintService {
	return &mintService{
		transactor:   newTransactor(dbBeginner, beginTx, commitTx, rollbackTx),
		dbExecutor:   dbExecutor,
		positionRepo: positionRepo,
		lossRepo:     lossRepo,
		mintRepo:     mintRepo,
		settings:     settings,
		now:          time.Now,
		logger:       util.GetLogger().With("component", "mint_service"),
	}
}

// Mint records a simulated mint for an existing position. Nothing is
// broadcast; the transaction hash is derived from the mint itself.
func (s *mintService) Mint(ctx context.Context, req MintRequest) (*MintResult, error) {
	req.Ticker = domain.NormalizeTicker(req.Ticker)
	if err := validateMintRequest(req); err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}

	result := &MintResult{ChainID: s.settings.ChainID}
	err := s.inTx(ctx, "mint", func(q repository.DBExecutor) error {
		position, err := s.positionRepo.GetPosition(ctx, q, req.WalletAddress, req.Ticker)
		if err != nil {
			return fmt.Errorf("mint: %w", mapNotFound(err, util.ErrPositionNotFound))
		}

		var loss *domain.Loss
		if req.LossID != nil {
			loss, err = s.lossRepo.GetLossByIDForUpdate(ctx, q, *req.LossID)
			if err != nil {
				return fmt.Errorf("mint: %w", mapNotFound(err, util.ErrLossNotFound))
			}
			if loss.UserID != position.UserID {
				return fmt.Errorf("mint: loss %d does not belong to %s: %w", loss.ID, req.WalletAddress, util.ErrInvalidInput)
			}
			if loss.Status != domain.LossStatusVerified {
				return fmt.Errorf("mint: loss %d: %w", loss.ID, util.ErrLossNotVerified)
			}
			if loss.NFTTokenID != nil {
				return fmt.Errorf("mint: loss %d already linked to token %d: %w", loss.ID, *loss.NFTTokenID, util.ErrConflict)
			}
		}

		now := s.now().UTC()
		mint := &domain.Mint{
			UUID:          uuid.New(),
			UserID:        position.UserID,
			WalletAddress: position.WalletAddress,
			Ticker:        position.Ticker,
			MintType:      req.MintType,
			LossID:        req.LossID,
			TokenName:     req.TokenName,
			TokenSymbol:   req.TokenSymbol,
			TotalSupply:   req.TotalSupply,
			CreatedAt:     now,
		}
		switch req.MintType {
		case domain.MintTypeNFT:
			mint.ContractAddress = s.settings.NFTContractAddress
			metadata := domain.BuildNFTMetadata(position, s.settings.NFTImageBaseURL, now)
			if mint.Metadata, err = metadata.JSON(); err != nil {
				return fmt.Errorf("mint: failed to encode metadata: %w", err)
			}
			result.Metadata = &metadata
		case domain.MintTypeToken:
			mint.ContractAddress = s.settings.TokenContractAddress
		}
		mint.TransactionHash = domain.SimulatedTransactionHash(mint)

		if err := s.mintRepo.CreateMint(ctx, q, mint); err != nil {
			return fmt.Errorf("mint: %w", err)
		}

		if loss != nil {
			tokenID := mint.ID
			contract := mint.ContractAddress
			link := domain.LossUpdate{NFTTokenID: &tokenID, NFTContractAddress: &contract}
			if err := loss.ApplyUpdate(link, now); err != nil {
				return fmt.Errorf("mint: loss %d: %w", loss.ID, err)
			}
			if err := s.lossRepo.UpdateLoss(ctx, q, loss); err != nil {
				return fmt.Errorf("mint: %w", err)
			}
		}

		result.Mint = mint
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.MintsTotal.WithLabelValues(string(req.MintType)).Inc()
	s.logger.Info("Mint simulated",
		"token_id", result.Mint.ID,
		"mint_type", result.Mint.MintType,
		"wallet_address", result.Mint.WalletAddress,
		"ticker", result.Mint.Ticker,
		"transaction_hash", result.Mint.TransactionHash,
	)
	return result, nil
}

func validateMintRequest(req MintRequest) error {
	if !req.MintType.IsValid() {
		return fmt.Errorf("mint type must be nft or token: %w", util.ErrInvalidInput)
	}
	if req.Ticker == "" {
		return fmt.Errorf("ticker is required: %w", util.ErrInvalidInput)
	}
	if err := domain.CheckLength("ticker", req.Ticker, domain.MaxTickerLength); err != nil {
		return err
	}
	if req.MintType == domain.MintTypeToken {
		if req.TokenName == nil || strings.TrimSpace(*req.TokenName) == "" ||
			req.TokenSymbol == nil || strings.TrimSpace(*req.TokenSymbol) == "" {
			return fmt.Errorf("token name and symbol are required: %w", util.ErrInvalidInput)
		}
		if err := domain.CheckLength("token_name", *req.TokenName, domain.MaxTokenNameLength); err != nil {
			return err
		}
		if err := domain.CheckLength("token_symbol", *req.TokenSymbol, domain.MaxTokenSymbolLength); err != nil {
			return err
		}
		if req.TotalSupply == nil || *req.TotalSupply <= 0 {
			return fmt.Errorf("total supply must be positive: %w", util.ErrInvalidInput)
		}
		if req.LossID != nil {
			return fmt.Errorf("only nft mints can be linked to a loss: %w", util.ErrInvalidInput)
		}
	}
	return nil
}

// ListMints retrieves the mints of a wallet, newest first.
func (s *mintService) ListMints(ctx context.Context, walletAddress string) ([]domain.Mint, error) {
	mints, err := s.mintRepo.ListMintsByWallet(ctx, s.dbExecutor, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("list mints: %w", err)
	}
	return mints, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"crypto-graves/internal/domain"
	"crypto-graves/internal/metrics"
	"crypto-graves/internal/repository"
	"crypto-graves/internal/util"
	"crypto-graves/pkg/db"
)

const (
	DefaultPositionLimit    = 50
	MaxPositionLimit        = 200
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100

	// summaryScanLimit bounds how many positions of one wallet are aggregated.
	summaryScanLimit = 1000
)

// PositionService defines the interface for wallet position business logic.
type PositionService interface {
	SubmitPosition(ctx context.Context, walletAddress, ticker string, in domain.PositionInputs) (*domain.WalletPosition, bool, error)
	GetPosition(ctx context.Context, walletAddress, ticker string) (*domain.WalletPosition, error)
	ListPositions(ctx context.Context, walletAddress string, limit, offset int) ([]domain.WalletPosition, error)
	GetWalletSummary(ctx context.Context, walletAddress string) (*domain.WalletSummary, error)
	GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// positionService implements the PositionService interface.
type positionService struct {
	transactor
	dbExecutor   repository.DBExecutor
	userRepo     repository.UserRepository
	positionRepo repository.PositionRepository
	logger       *slog.Logger
}

// NewPositionService creates a new instance of PositionService.
func NewPositionService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	positionRepo repository.PositionRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) PositionService {
	return &positionService{
		transactor:   newTransactor(dbBeginner, beginTx, commitTx, rollbackTx),
		dbExecutor:   dbExecutor,
		userRepo:     userRepo,
		positionRepo: positionRepo,
		logger:       util.GetLogger().With("component", "position_service"),
	}
}

// SubmitPosition evaluates the inputs and upserts the (wallet, ticker)
// position, registering the wallet first if needed. All five inputs and
// both derived figures are overwritten together.
func (s *positionService) SubmitPosition(ctx context.Context, walletAddress, ticker string, in domain.PositionInputs) (*domain.WalletPosition, bool, error) {
	ticker = domain.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, false, fmt.Errorf("submit position: ticker is required: %w", util.ErrInvalidInput)
	}
	if err := domain.CheckLength("ticker", ticker, domain.MaxTickerLength); err != nil {
		return nil, false, fmt.Errorf("submit position: %w", err)
	}
	if err := in.Validate(); err != nil {
		return nil, false, fmt.Errorf("submit position: %w", err)
	}

	var (
		position *domain.WalletPosition
		created  bool
	)
	err := s.inTx(ctx, "submit position", func(q repository.DBExecutor) error {
		user, _, err := getOrCreateUser(ctx, q, s.userRepo, walletAddress)
		if err != nil {
			return fmt.Errorf("submit position: %w", err)
		}

		position, err = domain.NewWalletPosition(user, ticker, in)
		if err != nil {
			return fmt.Errorf("submit position: %w", err)
		}

		created, err = s.positionRepo.UpsertPosition(ctx, q, position)
		if err != nil {
			return fmt.Errorf("submit position: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	metrics.PositionsEvaluated.Inc()
	s.logger.Debug("Position evaluated",
		"wallet_address", position.WalletAddress,
		"ticker", position.Ticker,
		"loss_rate", position.LossRate.String(),
		"loss_amount", position.LossAmount.String(),
		"created", created,
	)
	return position, created, nil
}

// GetPosition retrieves the position of a wallet for a ticker.
func (s *positionService) GetPosition(ctx context.Context, walletAddress, ticker string) (*domain.WalletPosition, error) {
	position, err := s.positionRepo.GetPosition(ctx, s.dbExecutor, walletAddress, domain.NormalizeTicker(ticker))
	if err != nil {
		return nil, mapNotFound(err, util.ErrPositionNotFound)
	}
	return position, nil
}

// ListPositions retrieves a page of positions. An empty wallet lists all wallets.
func (s *positionService) ListPositions(ctx context.Context, walletAddress string, limit, offset int) ([]domain.WalletPosition, error) {
	limit, offset = ClampPage(limit, offset, DefaultPositionLimit, MaxPositionLimit)
	positions, err := s.positionRepo.ListPositions(ctx, s.dbExecutor, walletAddress, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	return positions, nil
}

// GetWalletSummary aggregates every position of a wallet.
func (s *positionService) GetWalletSummary(ctx context.Context, walletAddress string) (*domain.WalletSummary, error) {
	positions, err := s.positionRepo.ListPositions(ctx, s.dbExecutor, walletAddress, summaryScanLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("wallet summary: %w", err)
	}
	if len(positions) == 0 {
		return nil, util.ErrPositionNotFound
	}
	summary := domain.SummarizePositions(walletAddress, positions)
	return &summary, nil
}

// GetLeaderboard ranks wallets by their summed loss amount.
func (s *positionService) GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	limit, _ = ClampPage(limit, 0, DefaultLeaderboardLimit, MaxLeaderboardLimit)
	entries, err := s.positionRepo.GetLeaderboard(ctx, s.dbExecutor, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return domain.RankLeaderboard(entries), nil
}

// ClampPage applies the default when limit is not positive and caps it at max.
func ClampPage(limit, offset, def, maxLimit int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"crypto-graves/internal/domain"
	"crypto-graves/internal/repository"
	"crypto-graves/internal/util"
	"crypto-graves/pkg/db"
	"crypto-graves/pkg/ethsig"
)

// UserService defines the interface for user registration, profiles and wallet auth.
// Wallet addresses are expected to be validated and checksummed by the caller.
type UserService interface {
	RegisterUser(ctx context.Context, walletAddress string) (*domain.User, bool, error)
	GetUserByWallet(ctx context.Context, walletAddress string) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, update domain.ProfileUpdate) (*domain.User, error)
	AuthenticateWallet(ctx context.Context, walletAddress, message, signature string) (*domain.User, bool, error)
}

// userService implements the UserService interface.
type userService struct {
	transactor
	dbExecutor repository.DBExecutor // For non-transactional reads
	userRepo   repository.UserRepository
	verifier   ethsig.Verifier
	logger     *slog.Logger
}

// NewUserService creates a new instance of UserService.
func NewUserService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	verifier ethsig.Verifier,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) UserService {
	return &userService{
		transactor: newTransactor(dbBeginner, beginTx, commitTx, rollbackTx),
		dbExecutor: dbExecutor,
		userRepo:   userRepo,
		verifier:   verifier,
		logger:     util.GetLogger().With("component", "user_service"),
	}
}

// RegisterUser returns the user of walletAddress, creating it if needed.
// The boolean reports whether the user was created by this call.
func (s *userService) RegisterUser(ctx context.Context, walletAddress string) (*domain.User, bool, error) {
	var (
		user    *domain.User
		created bool
	)
	err := s.inTx(ctx, "register user", func(q repository.DBExecutor) error {
		var err error
		user, created, err = getOrCreateUser(ctx, q, s.userRepo, walletAddress)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.Info("User registered", "user_id", user.ID, "wallet_address", user.WalletAddress)
	}
	return user, created, nil
}

// GetUserByWallet retrieves the user registered for walletAddress.
func (s *userService) GetUserByWallet(ctx context.Context, walletAddress string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByWalletAddress(ctx, s.dbExecutor, walletAddress)
	if err != nil {
		return nil, mapNotFound(err, util.ErrUserNotFound)
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *userService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, id)
	if err != nil {
		return nil, mapNotFound(err, util.ErrUserNotFound)
	}
	return user, nil
}

// UpdateProfile applies the set fields of update to the user's profile.
func (s *userService) UpdateProfile(ctx context.Context, id int64, update domain.ProfileUpdate) (*domain.User, error) {
	if update.Empty() {
		return nil, fmt.Errorf("update profile: no fields to update: %w", util.ErrInvalidInput)
	}

	var user *domain.User
	err := s.inTx(ctx, "update profile", func(q repository.DBExecutor) error {
		var err error
		user, err = s.userRepo.GetUserByID(ctx, q, id)
		if err != nil {
			return fmt.Errorf("update profile: %w", mapNotFound(err, util.ErrUserNotFound))
		}
		update.Apply(user)
		if err := s.userRepo.UpdateProfile(ctx, q, user); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// AuthenticateWallet checks that signature is walletAddress's personal_sign
// signature of message, then registers the wallet if it is new.
func (s *userService) AuthenticateWallet(ctx context.Context, walletAddress, message, signature string) (*domain.User, bool, error) {
	if message == "" || signature == "" {
		return nil, false, fmt.Errorf("wallet auth: message and signature are required: %w", util.ErrInvalidInput)
	}
	if !s.verifier.Verify(walletAddress, message, signature) {
		s.logger.Warn("Wallet signature rejected", "wallet_address", walletAddress)
		return nil, false, util.ErrInvalidSignature
	}
	return s.RegisterUser(ctx, walletAddress)
}

// getOrCreateUser inserts the user unless the wallet is already registered,
// then loads the stored row. Safe under concurrent registration of one wallet.
func getOrCreateUser(ctx context.Context, q repository.DBExecutor, userRepo repository.UserRepository, walletAddress string) (*domain.User, bool, error) {
	user := domain.NewUser(walletAddress)
	created, err := userRepo.CreateUserIfNotExists(ctx, q, user)
	if err != nil {
		return nil, false, fmt.Errorf("failed to register wallet %s: %w", walletAddress, err)
	}
	if created {
		return user, true, nil
	}

	existing, err := userRepo.GetUserByWalletAddress(ctx, q, walletAddress)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load user of wallet %s: %w", walletAddress, err)
	}
	return existing, false, nil
}

// mapNotFound replaces a generic not-found error with the resource-specific kind.
func mapNotFound(err, notFound error) error {
	if util.IsError(err, util.ErrNotFound) {
		return notFound
	}
	return err
}

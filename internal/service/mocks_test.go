package service

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"crypto-graves/internal/domain"
	"crypto-graves/internal/repository"
	"crypto-graves/pkg/db"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	return &sqlx.Tx{}, args.Error(1)
}

// MockTxController is a mock implementation of db.TxController.
// It also implements repository.DBExecutor by embedding MockDBExecutor.
type MockTxController struct {
	mock.Mock
	MockDBExecutor
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// txFuncs returns begin/commit/rollback functions bound to tx.
func txFuncs(tx *MockTxController) (db.BeginTxFunc, db.CommitTxFunc, db.RollbackTxFunc) {
	return func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
			return tx, nil
		},
		func(db.TxController) error {
			return tx.Commit()
		},
		func(db.TxController) {
			_ = tx.Rollback()
		}
}

// expectCommit sets up a transaction that is committed; the deferred
// rollback still runs afterwards.
func expectCommit(tx *MockTxController) {
	tx.On("Commit").Return(nil).Once()
	tx.On("Rollback").Return(sql.ErrTxDone).Maybe()
}

// expectRollback sets up a transaction that must not be committed.
func expectRollback(tx *MockTxController) {
	tx.On("Rollback").Return(nil).Once()
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUserIfNotExists(ctx context.Context, q repository.DBExecutor, user *domain.User) (bool, error) {
	args := m.Called(ctx, q, user)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByWalletAddress(ctx context.Context, q repository.DBExecutor, walletAddress string) (*domain.User, error) {
	args := m.Called(ctx, q, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) AddTotalLoss(ctx context.Context, q repository.DBExecutor, userID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, q, userID, amount)
	return args.Error(0)
}

// MockPositionRepository is a mock implementation of repository.PositionRepository.
type MockPositionRepository struct {
	mock.Mock
}

func (m *MockPositionRepository) UpsertPosition(ctx context.Context, q repository.DBExecutor, position *domain.WalletPosition) (bool, error) {
	args := m.Called(ctx, q, position)
	return args.Bool(0), args.Error(1)
}

func (m *MockPositionRepository) GetPosition(ctx context.Context, q repository.DBExecutor, walletAddress, ticker string) (*domain.WalletPosition, error) {
	args := m.Called(ctx, q, walletAddress, ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletPosition), args.Error(1)
}

func (m *MockPositionRepository) ListPositions(ctx context.Context, q repository.DBExecutor, walletAddress string, limit, offset int) ([]domain.WalletPosition, error) {
	args := m.Called(ctx, q, walletAddress, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WalletPosition), args.Error(1)
}

func (m *MockPositionRepository) GetLeaderboard(ctx context.Context, q repository.DBExecutor, limit int) ([]domain.LeaderboardEntry, error) {
	args := m.Called(ctx, q, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LeaderboardEntry), args.Error(1)
}

// MockLossRepository is a mock implementation of repository.LossRepository.
type MockLossRepository struct {
	mock.Mock
}

func (m *MockLossRepository) CreateLoss(ctx context.Context, q repository.DBExecutor, loss *domain.Loss) error {
	args := m.Called(ctx, q, loss)
	return args.Error(0)
}

func (m *MockLossRepository) GetLossByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Loss, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loss), args.Error(1)
}

func (m *MockLossRepository) GetLossByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Loss, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loss), args.Error(1)
}

func (m *MockLossRepository) ListLosses(ctx context.Context, q repository.DBExecutor, filter domain.LossFilter) ([]domain.Loss, error) {
	args := m.Called(ctx, q, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Loss), args.Error(1)
}

func (m *MockLossRepository) UpdateLoss(ctx context.Context, q repository.DBExecutor, loss *domain.Loss) error {
	args := m.Called(ctx, q, loss)
	return args.Error(0)
}

// MockMintRepository is a mock implementation of repository.MintRepository.
type MockMintRepository struct {
	mock.Mock
}

func (m *MockMintRepository) CreateMint(ctx context.Context, q repository.DBExecutor, mint *domain.Mint) error {
	args := m.Called(ctx, q, mint)
	return args.Error(0)
}

func (m *MockMintRepository) ListMintsByWallet(ctx context.Context, q repository.DBExecutor, walletAddress string) ([]domain.Mint, error) {
	args := m.Called(ctx, q, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Mint), args.Error(1)
}

// MockVerifier is a mock implementation of ethsig.Verifier.
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(address, message, signature string) bool {
	args := m.Called(address, message, signature)
	return args.Bool(0)
}

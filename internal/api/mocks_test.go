package api_test

import (
	"context"
	"io"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/mock"

	"crypto-graves/internal/domain"
	"crypto-graves/internal/service"
)

// MockUserService is a mock implementation of service.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) RegisterUser(ctx context.Context, walletAddress string) (*domain.User, bool, error) {
	args := m.Called(ctx, walletAddress)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *MockUserService) GetUserByWallet(ctx context.Context, walletAddress string) (*domain.User, error) {
	args := m.Called(ctx, walletAddress)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id int64, update domain.ProfileUpdate) (*domain.User, error) {
	args := m.Called(ctx, id, update)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserService) AuthenticateWallet(ctx context.Context, walletAddress, message, signature string) (*domain.User, bool, error) {
	args := m.Called(ctx, walletAddress, message, signature)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Bool(1), args.Error(2)
}

// MockPositionService is a mock implementation of service.PositionService.
type MockPositionService struct {
	mock.Mock
}

func (m *MockPositionService) SubmitPosition(ctx context.Context, walletAddress, ticker string, in domain.PositionInputs) (*domain.WalletPosition, bool, error) {
	args := m.Called(ctx, walletAddress, ticker, in)
	position, _ := args.Get(0).(*domain.WalletPosition)
	return position, args.Bool(1), args.Error(2)
}

func (m *MockPositionService) GetPosition(ctx context.Context, walletAddress, ticker string) (*domain.WalletPosition, error) {
	args := m.Called(ctx, walletAddress, ticker)
	position, _ := args.Get(0).(*domain.WalletPosition)
	return position, args.Error(1)
}

func (m *MockPositionService) ListPositions(ctx context.Context, walletAddress string, limit, offset int) ([]domain.WalletPosition, error) {
	args := m.Called(ctx, walletAddress, limit, offset)
	positions, _ := args.Get(0).([]domain.WalletPosition)
	return positions, args.Error(1)
}

func (m *MockPositionService) GetWalletSummary(ctx context.Context, walletAddress string) (*domain.WalletSummary, error) {
	args := m.Called(ctx, walletAddress)
	summary, _ := args.Get(0).(*domain.WalletSummary)
	return summary, args.Error(1)
}

func (m *MockPositionService) GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]domain.LeaderboardEntry)
	return entries, args.Error(1)
}

// MockLossService is a mock implementation of service.LossService.
type MockLossService struct {
	mock.Mock
}

func (m *MockLossService) CreateLoss(ctx context.Context, in service.CreateLossInput) (*domain.Loss, error) {
	args := m.Called(ctx, in)
	loss, _ := args.Get(0).(*domain.Loss)
	return loss, args.Error(1)
}

func (m *MockLossService) ListLosses(ctx context.Context, filter domain.LossFilter) ([]domain.Loss, error) {
	args := m.Called(ctx, filter)
	losses, _ := args.Get(0).([]domain.Loss)
	return losses, args.Error(1)
}

func (m *MockLossService) GetLoss(ctx context.Context, id int64) (*domain.Loss, error) {
	args := m.Called(ctx, id)
	loss, _ := args.Get(0).(*domain.Loss)
	return loss, args.Error(1)
}

func (m *MockLossService) UpdateLoss(ctx context.Context, id int64, update domain.LossUpdate) (*domain.Loss, error) {
	args := m.Called(ctx, id, update)
	loss, _ := args.Get(0).(*domain.Loss)
	return loss, args.Error(1)
}

func (m *MockLossService) VerifyLoss(ctx context.Context, id, verifierID int64) (*domain.Loss, error) {
	args := m.Called(ctx, id, verifierID)
	loss, _ := args.Get(0).(*domain.Loss)
	return loss, args.Error(1)
}

func (m *MockLossService) RejectLoss(ctx context.Context, id int64, notes *string) (*domain.Loss, error) {
	args := m.Called(ctx, id, notes)
	loss, _ := args.Get(0).(*domain.Loss)
	return loss, args.Error(1)
}

func (m *MockLossService) ParseTransactionUpload(filename string, content io.Reader) (types.JSONText, error) {
	args := m.Called(filename, content)
	data, _ := args.Get(0).(types.JSONText)
	return data, args.Error(1)
}

// MockMintService is a mock implementation of service.MintService.
type MockMintService struct {
	mock.Mock
}

func (m *MockMintService) Mint(ctx context.Context, req service.MintRequest) (*service.MintResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*service.MintResult)
	return result, args.Error(1)
}

func (m *MockMintService) ListMints(ctx context.Context, walletAddress string) ([]domain.Mint, error) {
	args := m.Called(ctx, walletAddress)
	mints, _ := args.Get(0).([]domain.Mint)
	return mints, args.Error(1)
}

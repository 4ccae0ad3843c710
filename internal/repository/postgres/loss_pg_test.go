package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-graves/internal/domain"
	"crypto-graves/internal/util"
)

const testTxHash = "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b"

var lossColumnNames = []string{"id", "uuid", "user_id", "user_uuid", "asset_name", "asset_ticker", "loss_amount",
	"loss_amount_mon", "transaction_hash", "transaction_data", "signature", "status", "verified_at", "verified_by",
	"verified_by_uuid", "nft_token_id", "nft_contract_address", "notes", "created_at", "updated_at"}

func testLoss() *domain.Loss {
	user := domain.NewUser(testWallet)
	user.ID = 1
	return domain.NewLoss(user, "Ethereum", "eth", decimal.NewFromInt(2), decimal.NewFromInt(150),
		testTxHash, types.JSONText(`{"block":1}`), "0xsig")
}

func TestLossRepository_CreateLoss(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLossRepository(db)
	loss := testLoss()

	mock.ExpectQuery(`INSERT INTO losses .* RETURNING id`).
		WithArgs(loss.UUID, int64(1), loss.UserUUID, "Ethereum", "ETH", "2", "150",
			testTxHash, []byte(`{"block":1}`), "0xsig", "pending", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))

	require.NoError(t, repo.CreateLoss(context.Background(), db, loss))
	assert.Equal(t, int64(21), loss.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLossRepository_CreateLossDuplicateHash(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLossRepository(db)

	mock.ExpectQuery(`INSERT INTO losses .* RETURNING id`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint", Constraint: "losses_transaction_hash_key"})

	err := repo.CreateLoss(context.Background(), db, testLoss())
	assert.True(t, util.IsError(err, util.ErrConflict))
	assert.Contains(t, err.Error(), "losses_transaction_hash_key")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLossRepository_GetLossByID(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("Found verified", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewLossRepository(db)
		verifierUUID := uuid.New()

		mock.ExpectQuery(`SELECT .* FROM losses WHERE id = \$1$`).
			WithArgs(int64(21)).
			WillReturnRows(sqlmock.NewRows(lossColumnNames).AddRow(
				int64(21), uuid.NewString(), int64(1), uuid.NewString(), "Ethereum", "ETH", "2", "150",
				testTxHash, []byte(`{"block":1}`), "0xsig", "verified", now, int64(2),
				verifierUUID.String(), nil, nil, nil, now, now))

		loss, err := repo.GetLossByID(ctx, db, 21)
		require.NoError(t, err)
		assert.Equal(t, domain.LossStatusVerified, loss.Status)
		require.NotNil(t, loss.VerifiedBy)
		assert.Equal(t, int64(2), *loss.VerifiedBy)
		assert.Equal(t, uuid.NullUUID{UUID: verifierUUID, Valid: true}, loss.VerifiedByUUID)
		assert.JSONEq(t, `{"block":1}`, string(loss.TransactionData))
		assert.Nil(t, loss.NFTTokenID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewLossRepository(db)

		mock.ExpectQuery(`SELECT .* FROM losses WHERE id = \$1`).WillReturnError(sql.ErrNoRows)

		loss, err := repo.GetLossByID(ctx, db, 99)
		assert.Nil(t, loss)
		assert.True(t, util.IsError(err, util.ErrNotFound))
	})

	t.Run("For update locks the row", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewLossRepository(db)

		mock.ExpectQuery(`SELECT .* FROM losses WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(21)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetLossByIDForUpdate(ctx, db, 21)
		assert.True(t, util.IsError(err, util.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLossRepository_ListLosses(t *testing.T) {
	ctx := context.Background()

	t.Run("No filters", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewLossRepository(db)

		mock.ExpectQuery(`SELECT .* FROM losses ORDER BY created_at DESC, id DESC LIMIT \$1 OFFSET \$2`).
			WithArgs(50, 0).
			WillReturnRows(sqlmock.NewRows(lossColumnNames))

		losses, err := repo.ListLosses(ctx, db, domain.LossFilter{Limit: 50})
		require.NoError(t, err)
		assert.Empty(t, losses)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("All filters", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewLossRepository(db)
		userID := int64(5)
		userUUID := uuid.New()
		status := domain.LossStatusPending

		mock.ExpectQuery(`FROM losses WHERE user_id = \$1 AND user_uuid = \$2 AND status = \$3 ORDER BY .* LIMIT \$4 OFFSET \$5`).
			WithArgs(int64(5), userUUID, "pending", 20, 40).
			WillReturnRows(sqlmock.NewRows(lossColumnNames))

		_, err := repo.ListLosses(ctx, db, domain.LossFilter{
			UserID: &userID, UserUUID: &userUUID, Status: &status, Limit: 20, Offset: 40,
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLossRepository_UpdateLoss(t *testing.T) {
	ctx := context.Background()

	t.Run("Updated", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewLossRepository(db)
		loss := testLoss()
		loss.ID = 21
		verifier := domain.NewUser("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
		verifier.ID = 2
		require.NoError(t, loss.Verify(verifier, time.Now()))

		mock.ExpectExec(`UPDATE losses SET status = \$1`).
			WithArgs("verified", sqlmock.AnyArg(), int64(2), verifier.UUID.String(), nil, nil, nil, sqlmock.AnyArg(), int64(21)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateLoss(ctx, db, loss))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing row", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewLossRepository(db)
		loss := testLoss()
		loss.ID = 404

		mock.ExpectExec(`UPDATE losses`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateLoss(ctx, db, loss)
		assert.True(t, util.IsError(err, util.ErrNotFound))
	})
}

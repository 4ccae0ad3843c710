package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"crypto-graves/internal/util"
)

func TestClassifyError(t *testing.T) {
	t.Run("Nil stays nil", func(t *testing.T) {
		assert.NoError(t, classifyError(nil))
	})

	t.Run("No rows is not found", func(t *testing.T) {
		assert.True(t, util.IsError(classifyError(sql.ErrNoRows), util.ErrNotFound))
	})

	t.Run("Unique violation is a conflict", func(t *testing.T) {
		err := classifyError(&pq.Error{Code: "23505", Message: "duplicate key value", Constraint: "users_wallet_address_key"})
		assert.True(t, util.IsError(err, util.ErrConflict))
		assert.Contains(t, err.Error(), "users_wallet_address_key")
	})

	t.Run("Data exceptions are invalid input", func(t *testing.T) {
		tooLong := classifyError(&pq.Error{Code: "22001", Message: "value too long for type character varying(20)"})
		assert.True(t, util.IsError(tooLong, util.ErrInvalidInput))
		assert.False(t, util.IsError(tooLong, util.ErrStorage))
		assert.Contains(t, tooLong.Error(), "character varying(20)")

		overflow := classifyError(&pq.Error{Code: "22003", Message: "numeric field overflow"})
		assert.True(t, util.IsError(overflow, util.ErrInvalidInput))
	})

	t.Run("Other driver errors are storage errors", func(t *testing.T) {
		driverErr := errors.New("connection refused")
		err := classifyError(driverErr)
		assert.True(t, util.IsError(err, util.ErrStorage))
		assert.True(t, errors.Is(err, driverErr))

		fkErr := classifyError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})
		assert.True(t, util.IsError(fkErr, util.ErrStorage))
	})

	t.Run("Context errors pass through", func(t *testing.T) {
		err := classifyError(context.Canceled)
		assert.Equal(t, context.Canceled, err)
		assert.False(t, util.IsError(err, util.ErrStorage))
	})
}

func TestRequireOneRow(t *testing.T) {
	assert.NoError(t, requireOneRow(sqlmock.NewResult(0, 1)))
	assert.True(t, util.IsError(requireOneRow(sqlmock.NewResult(0, 0)), util.ErrNotFound))
	assert.True(t, util.IsError(requireOneRow(sqlmock.NewErrorResult(errors.New("boom"))), util.ErrStorage))
}

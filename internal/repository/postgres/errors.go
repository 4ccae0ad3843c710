package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"crypto-graves/internal/util"
)

const (
	uniqueViolation pq.ErrorCode  = "23505"
	dataException   pq.ErrorClass = "22"
)

// classifyError maps driver errors onto the application's error kinds.
// Context cancellation is passed through untouched.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return util.ErrNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == uniqueViolation:
			return fmt.Errorf("%w: %s (%s)", util.ErrConflict, pqErr.Message, pqErr.Constraint)
		case pqErr.Code.Class() == dataException:
			// Values the schema cannot store, such as an over-long string or numeric overflow.
			return fmt.Errorf("%w: %s", util.ErrInvalidInput, pqErr.Message)
		}
	}
	return fmt.Errorf("%w: %w", util.ErrStorage, err)
}

// requireOneRow turns a zero-row update into util.ErrNotFound.
func requireOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return classifyError(err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

package service

import (
	"context"
	"fmt"

	"crypto-graves/internal/repository"
	"crypto-graves/pkg/db"
)

// transactor runs a unit of work inside one database transaction using the
// injected begin/commit/rollback functions.
type transactor struct {
	dbBeginner db.DBTxBeginner
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
}

func newTransactor(dbBeginner db.DBTxBeginner, beginTx db.BeginTxFunc, commitTx db.CommitTxFunc, rollbackTx db.RollbackTxFunc) transactor {
	return transactor{
		dbBeginner: dbBeginner,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

// inTx commits when fn succeeds. The deferred rollback is a no-op after commit.
func (t transactor) inTx(ctx context.Context, op string, fn func(q repository.DBExecutor) error) error {
	txController, err := t.beginTx(ctx, t.dbBeginner)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer t.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("%s: transaction controller does not implement DBExecutor", op)
	}

	if err := fn(txExecutor); err != nil {
		return err
	}

	if err := t.commitTx(txController); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return nil
}

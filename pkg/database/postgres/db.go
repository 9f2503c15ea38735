package pg

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type txContextKey struct{}

type txState struct {
	tx        *sqlx.Tx
	isolation sql.IsolationLevel
}

var (
	ErrAlreadyInTx = errors.New("already executing in existing db tx")
	ErrNotInTx     = errors.New("not executing in existing db tx")
)

// ExecuteTxWithinCtx runs fn in a new transaction that's carried by the
// context passed to fn. Store calls made with that context join the
// transaction through ExecuteInTx. The transaction commits if fn succeeds and
// rolls back otherwise.
func ExecuteTxWithinCtx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(context.Context) error) error {
	isolation = normalizeIsolation(isolation)

	if ctx.Value(txContextKey{}) != nil {
		return ErrAlreadyInTx
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return err
	}

	ctx = context.WithValue(ctx, txContextKey{}, &txState{tx: tx, isolation: isolation})
	if err := fn(ctx); err != nil {
		// Rollback must always run so the connection is released
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return errors.Wrap(rollbackErr, "failed to rollback transaction")
		}
		return err
	}
	return tx.Commit()
}

// ExecuteInTx runs a store operation in the context's transaction when there
// is one, or in a new transaction it owns otherwise.
func ExecuteInTx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(tx *sqlx.Tx) error) error {
	isolation = normalizeIsolation(isolation)

	tx, err := getTxFromCtx(ctx, isolation)
	if err == nil {
		return fn(tx)
	} else if err != ErrNotInTx {
		return err
	}

	tx, err = db.BeginTxx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return errors.Wrap(rollbackErr, "failed to rollback transaction")
		}
		return err
	}
	return tx.Commit()
}

func getTxFromCtx(ctx context.Context, desiredIsolation sql.IsolationLevel) (*sqlx.Tx, error) {
	state, ok := ctx.Value(txContextKey{}).(*txState)
	if !ok {
		return nil, ErrNotInTx
	}

	if state.isolation < desiredIsolation {
		return nil, errors.Errorf("current tx isolation %s doesn't meet required %s", state.isolation, desiredIsolation)
	}
	return state.tx, nil
}

// Postgres runs read committed when no level is requested
func normalizeIsolation(isolation sql.IsolationLevel) sql.IsolationLevel {
	if isolation == sql.LevelDefault {
		return sql.LevelReadCommitted
	}
	return isolation
}

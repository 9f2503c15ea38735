package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgtype"
	"github.com/jmoiron/sqlx"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/transaction"
	pgutil "github.com/code-payments/bucky-bank-server/pkg/database/postgres"
)

const (
	tableName = "bucky__core_transaction"

	allColumns = `id, signature, slot, block_time, data, has_errors, transaction_error, logs, created_at`
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Signature string    `db:"signature"`
	Slot      uint64    `db:"slot"`
	BlockTime time.Time `db:"block_time"`

	Data []byte `db:"data"`

	HasErrors        bool   `db:"has_errors"`
	TransactionError string `db:"transaction_error"`

	Logs pgtype.TextArray `db:"logs"`

	CreatedAt time.Time `db:"created_at"`
}

func toModel(obj *transaction.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	logs := obj.Logs
	if logs == nil {
		logs = []string{}
	}

	m := &model{
		Signature: obj.Signature,
		Slot:      obj.Slot,
		BlockTime: obj.BlockTime.UTC(),

		Data: obj.Data,

		HasErrors:        obj.HasErrors,
		TransactionError: obj.Err,

		CreatedAt: obj.CreatedAt,
	}

	if err := m.Logs.Set(logs); err != nil {
		return nil, err
	}
	return m, nil
}

func fromModel(obj *model) (*transaction.Record, error) {
	var logs []string
	if err := obj.Logs.AssignTo(&logs); err != nil {
		return nil, err
	}

	return &transaction.Record{
		Id: uint64(obj.Id.Int64),

		Signature: obj.Signature,
		Slot:      obj.Slot,
		BlockTime: obj.BlockTime.UTC(),

		Data: obj.Data,

		HasErrors: obj.HasErrors,
		Err:       obj.TransactionError,

		Logs: logs,

		CreatedAt: obj.CreatedAt.UTC(),
	}, nil
}

func (m *model) dbPut(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + tableName + `
			(signature, slot, block_time, data, has_errors, transaction_error, logs, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING ` + allColumns

		m.CreatedAt = time.Now().UTC()

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Signature,
			m.Slot,
			m.BlockTime,
			m.Data,
			m.HasErrors,
			m.TransactionError,
			m.Logs,
			m.CreatedAt,
		).StructScan(m)
		return pgutil.CheckUniqueViolation(err, transaction.ErrExists)
	})
}

func dbGet(ctx context.Context, db *sqlx.DB, signature string) (*model, error) {
	res := &model{}

	query := `SELECT ` + allColumns + `
		FROM ` + tableName + `
		WHERE signature = $1
		LIMIT 1`

	err := db.GetContext(ctx, res, query, signature)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, transaction.ErrNotFound)
	}
	return res, nil
}

func dbGetLatestSlot(ctx context.Context, db *sqlx.DB) (uint64, error) {
	var res uint64

	query := `SELECT COALESCE(MAX(slot), 0) FROM ` + tableName

	err := db.GetContext(ctx, &res, query)
	if err != nil {
		return 0, err
	}
	return res, nil
}

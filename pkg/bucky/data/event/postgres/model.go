package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/event"
	pgutil "github.com/code-payments/bucky-bank-server/pkg/database/postgres"
	q "github.com/code-payments/bucky-bank-server/pkg/database/query"
)

const (
	tableName = "bucky__core_programevent"

	allColumns = `id, signature, slot, instruction_index, event_index, event_type, bank, data, created_at`
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Signature        string `db:"signature"`
	Slot             uint64 `db:"slot"`
	InstructionIndex uint8  `db:"instruction_index"`
	EventIndex       uint32 `db:"event_index"`

	EventType string `db:"event_type"`
	Bank      string `db:"bank"`

	Data []byte `db:"data"`

	CreatedAt time.Time `db:"created_at"`
}

func toModel(obj *event.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	return &model{
		Signature:        obj.Signature,
		Slot:             obj.Slot,
		InstructionIndex: obj.InstructionIndex,
		EventIndex:       obj.EventIndex,

		EventType: obj.EventType,
		Bank:      obj.Bank,

		Data: obj.Data,
	}, nil
}

func fromModel(obj *model) *event.Record {
	return &event.Record{
		Id: uint64(obj.Id.Int64),

		Signature:        obj.Signature,
		Slot:             obj.Slot,
		InstructionIndex: obj.InstructionIndex,
		EventIndex:       obj.EventIndex,

		EventType: obj.EventType,
		Bank:      obj.Bank,

		Data: obj.Data,

		CreatedAt: obj.CreatedAt.UTC(),
	}
}

func dbAppendAll(ctx context.Context, db *sqlx.DB, models []*model) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + tableName + `
			(signature, slot, instruction_index, event_index, event_type, bank, data, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING ` + allColumns

		now := time.Now().UTC()
		for _, m := range models {
			err := tx.QueryRowxContext(
				ctx,
				query,
				m.Signature,
				m.Slot,
				m.InstructionIndex,
				m.EventIndex,
				m.EventType,
				m.Bank,
				m.Data,
				now,
			).StructScan(m)
			if err != nil {
				return pgutil.CheckUniqueViolation(err, event.ErrEventExists)
			}
		}
		return nil
	})
}

func dbGetAll(ctx context.Context, db *sqlx.DB, cursor q.Cursor, limit uint64, direction q.Ordering) ([]*model, error) {
	res := []*model{}

	query := `SELECT ` + allColumns + `
		FROM ` + tableName + `
		WHERE (TRUE)
	`

	opts := []interface{}{}
	query, opts = q.PaginateQuery(query, opts, cursor, limit, direction)

	err := db.SelectContext(ctx, &res, query, opts...)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, event.ErrEventNotFound)
	}

	if len(res) == 0 {
		return nil, event.ErrEventNotFound
	}
	return res, nil
}

func dbGetAllByBank(ctx context.Context, db *sqlx.DB, bank string, cursor q.Cursor, limit uint64, direction q.Ordering) ([]*model, error) {
	res := []*model{}

	query := `SELECT ` + allColumns + `
		FROM ` + tableName + `
		WHERE (bank = $1)
	`

	opts := []interface{}{bank}
	query, opts = q.PaginateQuery(query, opts, cursor, limit, direction)

	err := db.SelectContext(ctx, &res, query, opts...)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, event.ErrEventNotFound)
	}

	if len(res) == 0 {
		return nil, event.ErrEventNotFound
	}
	return res, nil
}

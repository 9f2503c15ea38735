package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/ledger"
	pgutil "github.com/code-payments/bucky-bank-server/pkg/database/postgres"
	q "github.com/code-payments/bucky-bank-server/pkg/database/query"
)

const (
	tableName = "bucky__core_ledgeraccount"

	allColumns = `id, address, owner, lamports, data, slot, version, last_updated_at`
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Address  string `db:"address"`
	Owner    string `db:"owner"`
	Lamports uint64 `db:"lamports"`
	Data     []byte `db:"data"`

	Slot    uint64 `db:"slot"`
	Version uint64 `db:"version"`

	LastUpdatedAt time.Time `db:"last_updated_at"`
}

func toModel(obj *ledger.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	data := obj.Data
	if data == nil {
		data = []byte{}
	}

	return &model{
		Id: sql.NullInt64{Int64: int64(obj.Id), Valid: obj.Id > 0},

		Address:  obj.Address,
		Owner:    obj.Owner,
		Lamports: obj.Lamports,
		Data:     data,

		Slot:    obj.Slot,
		Version: obj.Version,

		LastUpdatedAt: obj.LastUpdatedAt,
	}, nil
}

func fromModel(obj *model) *ledger.Record {
	return &ledger.Record{
		Id: uint64(obj.Id.Int64),

		Address:  obj.Address,
		Owner:    obj.Owner,
		Lamports: obj.Lamports,
		Data:     obj.Data,

		Slot:    obj.Slot,
		Version: obj.Version,

		LastUpdatedAt: obj.LastUpdatedAt.UTC(),
	}
}

// dbSaveAll upserts every model within a single DB transaction. The stored
// version must match the model's version for the write to take effect, and
// a brand new account must be saved with version 0.
func dbSaveAll(ctx context.Context, db *sqlx.DB, models []*model) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + tableName + `
			(address, owner, lamports, data, slot, version, last_updated_at)
			VALUES ($1, $2, $3, $4, $5, $6 + 1, $7)

			ON CONFLICT (address)
			DO UPDATE
				SET owner = $2, lamports = $3, data = $4, slot = $5, version = $6 + 1, last_updated_at = $7
				WHERE ` + tableName + `.version = $6

			RETURNING ` + allColumns

		seen := make(map[string]struct{}, len(models))
		for _, m := range models {
			if _, ok := seen[m.Address]; ok {
				return errors.Errorf("duplicate account %s in save", m.Address)
			}
			seen[m.Address] = struct{}{}

			m.LastUpdatedAt = time.Now()

			err := tx.QueryRowxContext(
				ctx,
				query,
				m.Address,
				m.Owner,
				m.Lamports,
				m.Data,
				m.Slot,
				m.Version,
				m.LastUpdatedAt.UTC(),
			).StructScan(m)
			if err != nil {
				return pgutil.CheckNoRows(err, ledger.ErrStaleAccountState)
			}
		}

		return nil
	})
}

func dbGet(ctx context.Context, db *sqlx.DB, address string) (*model, error) {
	res := &model{}

	query := `SELECT ` + allColumns + `
		FROM ` + tableName + `
		WHERE address = $1
		LIMIT 1`

	err := db.GetContext(ctx, res, query, address)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, ledger.ErrAccountNotFound)
	}
	return res, nil
}

func dbGetBatch(ctx context.Context, db *sqlx.DB, addresses ...string) ([]*model, error) {
	res := []*model{}

	if len(addresses) == 0 {
		return res, nil
	}

	query, args, err := sqlx.In(`SELECT `+allColumns+`
		FROM `+tableName+`
		WHERE address IN (?)`,
		addresses,
	)
	if err != nil {
		return nil, err
	}

	err = db.SelectContext(ctx, &res, db.Rebind(query), args...)
	if err != nil && !pgutil.IsNoRows(err) {
		return nil, err
	}
	return res, nil
}

func dbGetAllByOwner(ctx context.Context, db *sqlx.DB, owner string, cursor q.Cursor, limit uint64, direction q.Ordering) ([]*model, error) {
	res := []*model{}

	query := `SELECT ` + allColumns + `
		FROM ` + tableName + `
		WHERE (owner = $1)
	`

	opts := []interface{}{owner}
	query, opts = q.PaginateQuery(query, opts, cursor, limit, direction)

	err := db.SelectContext(ctx, &res, query, opts...)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, ledger.ErrAccountNotFound)
	}

	if len(res) == 0 {
		return nil, ledger.ErrAccountNotFound
	}
	return res, nil
}

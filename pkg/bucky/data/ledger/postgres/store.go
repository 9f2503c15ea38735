package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/ledger"
	"github.com/code-payments/bucky-bank-server/pkg/database/query"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres-backed ledger.Store
func New(db *sql.DB) ledger.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Save implements ledger.Store.Save
func (s *store) Save(ctx context.Context, records ...*ledger.Record) error {
	models := make([]*model, len(records))
	for i, record := range records {
		m, err := toModel(record)
		if err != nil {
			return err
		}
		models[i] = m
	}

	if err := dbSaveAll(ctx, s.db, models); err != nil {
		return err
	}

	for i, m := range models {
		fromModel(m).CopyTo(records[i])
	}
	return nil
}

// Get implements ledger.Store.Get
func (s *store) Get(ctx context.Context, address string) (*ledger.Record, error) {
	m, err := dbGet(ctx, s.db, address)
	if err != nil {
		return nil, err
	}
	return fromModel(m), nil
}

// GetBatch implements ledger.Store.GetBatch
func (s *store) GetBatch(ctx context.Context, addresses ...string) (map[string]*ledger.Record, error) {
	models, err := dbGetBatch(ctx, s.db, addresses...)
	if err != nil {
		return nil, err
	}

	res := make(map[string]*ledger.Record, len(models))
	for _, m := range models {
		res[m.Address] = fromModel(m)
	}
	return res, nil
}

// GetAllByOwner implements ledger.Store.GetAllByOwner
func (s *store) GetAllByOwner(ctx context.Context, owner string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*ledger.Record, error) {
	models, err := dbGetAllByOwner(ctx, s.db, owner, cursor, limit, direction)
	if err != nil {
		return nil, err
	}

	res := make([]*ledger.Record, len(models))
	for i, m := range models {
		res[i] = fromModel(m)
	}
	return res, nil
}

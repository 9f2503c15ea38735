package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/transaction"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres-backed transaction.Store
func New(db *sql.DB) transaction.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Put implements transaction.Store.Put
func (s *store) Put(ctx context.Context, record *transaction.Record) error {
	m, err := toModel(record)
	if err != nil {
		return err
	}

	if err := m.dbPut(ctx, s.db); err != nil {
		return err
	}

	res, err := fromModel(m)
	if err != nil {
		return err
	}
	res.CopyTo(record)
	return nil
}

// Get implements transaction.Store.Get
func (s *store) Get(ctx context.Context, signature string) (*transaction.Record, error) {
	m, err := dbGet(ctx, s.db, signature)
	if err != nil {
		return nil, err
	}
	return fromModel(m)
}

// GetLatestSlot implements transaction.Store.GetLatestSlot
func (s *store) GetLatestSlot(ctx context.Context) (uint64, error) {
	return dbGetLatestSlot(ctx, s.db)
}

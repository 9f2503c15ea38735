package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/event"
	"github.com/code-payments/bucky-bank-server/pkg/database/query"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres-backed event.Store
func New(db *sql.DB) event.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Append implements event.Store.Append
func (s *store) Append(ctx context.Context, records ...*event.Record) error {
	if len(records) == 0 {
		return nil
	}

	models := make([]*model, len(records))
	for i, record := range records {
		m, err := toModel(record)
		if err != nil {
			return err
		}
		models[i] = m
	}

	if err := dbAppendAll(ctx, s.db, models); err != nil {
		return err
	}

	for i, m := range models {
		fromModel(m).CopyTo(records[i])
	}
	return nil
}

// GetAll implements event.Store.GetAll
func (s *store) GetAll(ctx context.Context, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*event.Record, error) {
	models, err := dbGetAll(ctx, s.db, cursor, limit, direction)
	if err != nil {
		return nil, err
	}
	return fromModels(models), nil
}

// GetAllByBank implements event.Store.GetAllByBank
func (s *store) GetAllByBank(ctx context.Context, bank string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*event.Record, error) {
	models, err := dbGetAllByBank(ctx, s.db, bank, cursor, limit, direction)
	if err != nil {
		return nil, err
	}
	return fromModels(models), nil
}

func fromModels(models []*model) []*event.Record {
	res := make([]*event.Record, len(models))
	for i, m := range models {
		res[i] = fromModel(m)
	}
	return res
}

package data

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/event"
	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/ledger"
	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/transaction"
	pg "github.com/code-payments/bucky-bank-server/pkg/database/postgres"
	"github.com/code-payments/bucky-bank-server/pkg/database/query"

	event_memory_client "github.com/code-payments/bucky-bank-server/pkg/bucky/data/event/memory"
	ledger_memory_client "github.com/code-payments/bucky-bank-server/pkg/bucky/data/ledger/memory"
	transaction_memory_client "github.com/code-payments/bucky-bank-server/pkg/bucky/data/transaction/memory"

	event_postgres_client "github.com/code-payments/bucky-bank-server/pkg/bucky/data/event/postgres"
	ledger_postgres_client "github.com/code-payments/bucky-bank-server/pkg/bucky/data/ledger/postgres"
	transaction_postgres_client "github.com/code-payments/bucky-bank-server/pkg/bucky/data/transaction/postgres"
)

const (
	maxLedgerReqSize = 1024
	maxEventReqSize  = 1024
)

type Provider interface {
	// Ledger Accounts
	// --------------------------------------------------------------------------------
	SaveLedgerAccounts(ctx context.Context, records ...*ledger.Record) error
	GetLedgerAccount(ctx context.Context, address string) (*ledger.Record, error)
	GetLedgerAccountBatch(ctx context.Context, addresses ...string) (map[string]*ledger.Record, error)
	GetAllLedgerAccountsByOwner(ctx context.Context, owner string, opts ...query.Option) ([]*ledger.Record, error)

	// Transactions
	// --------------------------------------------------------------------------------
	PutTransaction(ctx context.Context, record *transaction.Record) error
	GetTransaction(ctx context.Context, signature string) (*transaction.Record, error)
	GetLatestSlot(ctx context.Context) (uint64, error)

	// Events
	// --------------------------------------------------------------------------------
	AppendEvents(ctx context.Context, records ...*event.Record) error
	GetAllEvents(ctx context.Context, opts ...query.Option) ([]*event.Record, error)
	GetAllEventsByBank(ctx context.Context, bank string, opts ...query.Option) ([]*event.Record, error)

	// ExecuteInTx executes fn with a single DB transaction that is scoped to the call.
	// This enables more complex transactions that can span many calls across the provider.
	//
	// The in memory implementation executes fn directly, so atomicity is
	// only guaranteed for each individual store call.
	ExecuteInTx(ctx context.Context, isolation sql.IsolationLevel, fn func(ctx context.Context) error) error
}

type DatabaseProvider struct {
	ledger       ledger.Store
	transactions transaction.Store
	events       event.Store

	db *sqlx.DB
}

// NewDatabaseProvider returns a postgres-backed Provider
func NewDatabaseProvider(dbConfig *pg.Config) (Provider, error) {
	db, err := pg.Open(dbConfig)
	if err != nil {
		return nil, err
	}
	return NewDatabaseProviderFromDB(db), nil
}

// NewDatabaseProviderFromDB returns a postgres-backed Provider over an existing
// connection pool.
func NewDatabaseProviderFromDB(db *sql.DB) Provider {
	return &DatabaseProvider{
		ledger:       ledger_postgres_client.New(db),
		transactions: transaction_postgres_client.New(db),
		events:       event_postgres_client.New(db),

		db: sqlx.NewDb(db, "pgx"),
	}
}

func NewTestDatabaseProvider() Provider {
	return &DatabaseProvider{
		ledger:       ledger_memory_client.New(),
		transactions: transaction_memory_client.New(),
		events:       event_memory_client.New(),
	}
}

func (dp *DatabaseProvider) ExecuteInTx(ctx context.Context, isolation sql.IsolationLevel, fn func(ctx context.Context) error) error {
	if dp.db == nil {
		return fn(ctx)
	}

	return pg.ExecuteTxWithinCtx(ctx, dp.db, isolation, fn)
}

// Ledger Accounts
// --------------------------------------------------------------------------------
func (dp *DatabaseProvider) SaveLedgerAccounts(ctx context.Context, records ...*ledger.Record) error {
	return dp.ledger.Save(ctx, records...)
}
func (dp *DatabaseProvider) GetLedgerAccount(ctx context.Context, address string) (*ledger.Record, error) {
	return dp.ledger.Get(ctx, address)
}
func (dp *DatabaseProvider) GetLedgerAccountBatch(ctx context.Context, addresses ...string) (map[string]*ledger.Record, error) {
	return dp.ledger.GetBatch(ctx, addresses...)
}
func (dp *DatabaseProvider) GetAllLedgerAccountsByOwner(ctx context.Context, owner string, opts ...query.Option) ([]*ledger.Record, error) {
	req, err := query.DefaultPaginationHandlerWithLimit(maxLedgerReqSize, opts...)
	if err != nil {
		return nil, err
	}
	return dp.ledger.GetAllByOwner(ctx, owner, req.Cursor, req.Limit, req.SortBy)
}

// Transactions
// --------------------------------------------------------------------------------
func (dp *DatabaseProvider) PutTransaction(ctx context.Context, record *transaction.Record) error {
	return dp.transactions.Put(ctx, record)
}
func (dp *DatabaseProvider) GetTransaction(ctx context.Context, signature string) (*transaction.Record, error) {
	return dp.transactions.Get(ctx, signature)
}
func (dp *DatabaseProvider) GetLatestSlot(ctx context.Context) (uint64, error) {
	return dp.transactions.GetLatestSlot(ctx)
}

// Events
// --------------------------------------------------------------------------------
func (dp *DatabaseProvider) AppendEvents(ctx context.Context, records ...*event.Record) error {
	return dp.events.Append(ctx, records...)
}
func (dp *DatabaseProvider) GetAllEvents(ctx context.Context, opts ...query.Option) ([]*event.Record, error) {
	req, err := query.DefaultPaginationHandlerWithLimit(maxEventReqSize, opts...)
	if err != nil {
		return nil, err
	}
	return dp.events.GetAll(ctx, req.Cursor, req.Limit, req.SortBy)
}
func (dp *DatabaseProvider) GetAllEventsByBank(ctx context.Context, bank string, opts ...query.Option) ([]*event.Record, error) {
	req, err := query.DefaultPaginationHandlerWithLimit(maxEventReqSize, opts...)
	if err != nil {
		return nil, err
	}
	return dp.events.GetAllByBank(ctx, bank, req.Cursor, req.Limit, req.SortBy)
}

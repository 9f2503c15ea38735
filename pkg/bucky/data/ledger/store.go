package ledger

import (
	"context"

	"github.com/code-payments/bucky-bank-server/pkg/database/query"
)

type Store interface {
	// Save atomically persists all records. Each record's version must match
	// the stored version (0 for accounts that don't exist yet), otherwise
	// nothing is written and ErrStaleAccountState is returned. On success,
	// every record is updated with its new version and store metadata.
	Save(ctx context.Context, records ...*Record) error

	// Get gets the latest state of an account
	//
	// ErrAccountNotFound is returned if the account doesn't exist.
	Get(ctx context.Context, address string) (*Record, error)

	// GetBatch gets the latest state of a set of accounts, keyed by address.
	// Accounts that don't exist are omitted from the result.
	GetBatch(ctx context.Context, addresses ...string) (map[string]*Record, error)

	// GetAllByOwner gets all accounts owned by a program using a paged API
	//
	// ErrAccountNotFound is returned if no accounts are found.
	GetAllByOwner(ctx context.Context, owner string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*Record, error)
}

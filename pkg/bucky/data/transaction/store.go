package transaction

import (
	"context"
)

type Store interface {
	// Put saves a new transaction record
	//
	// ErrExists is returned if a record with the same signature already exists.
	Put(ctx context.Context, record *Record) error

	// Get gets a transaction record by its signature
	//
	// ErrNotFound is returned if no record exists.
	Get(ctx context.Context, signature string) (*Record, error)

	// GetLatestSlot gets the highest slot across all recorded transactions, or
	// 0 if nothing has been recorded.
	GetLatestSlot(ctx context.Context) (uint64, error)
}

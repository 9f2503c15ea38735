package event

import (
	"context"

	"github.com/code-payments/bucky-bank-server/pkg/database/query"
)

type Store interface {
	// Append atomically appends events to the log, assigning each an id in
	// the order provided.
	//
	// ErrEventExists is returned if any event was already appended.
	Append(ctx context.Context, records ...*Record) error

	// GetAll gets all events using a paged API
	//
	// ErrEventNotFound is returned if no events are found.
	GetAll(ctx context.Context, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*Record, error)

	// GetAllByBank gets all events for a bank using a paged API
	//
	// ErrEventNotFound is returned if no events are found.
	GetAllByBank(ctx context.Context, bank string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*Record, error)
}

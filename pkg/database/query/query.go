package query

import (
	"github.com/pkg/errors"
)

var (
	ErrQueryNotSupported = errors.New("the requested query option is not supported")
)

// QueryOptions are the paging parameters for a listing call
type QueryOptions struct {
	SortBy Ordering
	Limit  uint64
	Cursor Cursor
}

type Option func(*QueryOptions) error

func (qo *QueryOptions) Apply(opts ...Option) error {
	for _, o := range opts {
		if err := o(qo); err != nil {
			return err
		}
	}
	return nil
}

func WithDirection(val Ordering) Option {
	return func(qo *QueryOptions) error {
		if val != Ascending && val != Descending {
			return ErrQueryNotSupported
		}
		qo.SortBy = val
		return nil
	}
}

// WithLimit caps the number of results. A limit of 0 uses the call's maximum.
func WithLimit(val uint64) Option {
	return func(qo *QueryOptions) error {
		if val > 0 {
			qo.Limit = val
		}
		return nil
	}
}

// WithCursor resumes a listing after the record identified by val
func WithCursor(val Cursor) Option {
	return func(qo *QueryOptions) error {
		if len(val) != 0 && len(val) != cursorSize {
			return ErrQueryNotSupported
		}
		qo.Cursor = val
		return nil
	}
}

// DefaultPaginationHandlerWithLimit resolves opts into ascending, cursor
// paged options returning at most limit results.
func DefaultPaginationHandlerWithLimit(limit uint64, opts ...Option) (*QueryOptions, error) {
	req := QueryOptions{
		Limit:  limit,
		SortBy: Ascending,
	}
	if err := req.Apply(opts...); err != nil {
		return nil, err
	}

	if req.Limit > limit {
		return nil, ErrQueryNotSupported
	}
	return &req, nil
}

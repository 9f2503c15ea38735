package ledger

import (
	"bytes"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

var (
	ErrAccountNotFound   = errors.New("ledger account not found")
	ErrStaleAccountState = errors.New("ledger account state is stale")
)

// Record is the persisted state of a single ledger account.
//
// Version is the optimistic concurrency token. It is the version the state was
// read at (0 for an account that doesn't exist yet), and is bumped by the
// store on every successful save.
type Record struct {
	Id uint64

	Address  string
	Owner    string
	Lamports uint64
	Data     []byte

	Slot    uint64
	Version uint64

	LastUpdatedAt time.Time
}

// IsEmpty returns whether the account holds no lamports and no data
func (r *Record) IsEmpty() bool {
	return r.Lamports == 0 && len(r.Data) == 0
}

func (r *Record) Validate() error {
	if err := validateAddress(r.Address); err != nil {
		return errors.Wrap(err, "invalid address")
	}

	if err := validateAddress(r.Owner); err != nil {
		return errors.Wrap(err, "invalid owner")
	}

	return nil
}

func (r *Record) Clone() *Record {
	return &Record{
		Id: r.Id,

		Address:  r.Address,
		Owner:    r.Owner,
		Lamports: r.Lamports,
		Data:     cloneBytes(r.Data),

		Slot:    r.Slot,
		Version: r.Version,

		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id

	dst.Address = r.Address
	dst.Owner = r.Owner
	dst.Lamports = r.Lamports
	dst.Data = cloneBytes(r.Data)

	dst.Slot = r.Slot
	dst.Version = r.Version

	dst.LastUpdatedAt = r.LastUpdatedAt
}

// Equals returns whether two records carry the same account state, ignoring
// store bookkeeping fields.
func (r *Record) Equals(other *Record) bool {
	return r.Address == other.Address &&
		r.Owner == other.Owner &&
		r.Lamports == other.Lamports &&
		bytes.Equal(r.Data, other.Data)
}

func validateAddress(address string) error {
	if len(address) == 0 {
		return errors.New("address is required")
	}

	decoded, err := base58.Decode(address)
	if err != nil {
		return err
	}
	if len(decoded) != 32 {
		return errors.Errorf("address must be 32 bytes, got %d", len(decoded))
	}
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	cloned := make([]byte, len(b))
	copy(cloned, b)
	return cloned
}

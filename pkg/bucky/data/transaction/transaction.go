package transaction

import (
	"time"

	"github.com/pkg/errors"
)

var (
	ErrNotFound = errors.New("no transaction records could be found")
	ErrExists   = errors.New("transaction record already exists")
)

// Record is an entry in the append-only transaction log. Failed transactions
// are recorded alongside successful ones.
type Record struct {
	Id uint64

	Signature string
	Slot      uint64
	BlockTime time.Time

	Data []byte

	HasErrors bool
	Err       string // JSON encoded solana.TransactionError, empty on success

	Logs []string

	CreatedAt time.Time
}

func (r *Record) Validate() error {
	if len(r.Signature) == 0 {
		return errors.New("signature is required")
	}

	if len(r.Data) == 0 {
		return errors.New("transaction data is required")
	}

	if r.HasErrors != (len(r.Err) > 0) {
		return errors.New("error must be set iff the transaction has errors")
	}

	if r.BlockTime.IsZero() {
		return errors.New("block time is required")
	}

	return nil
}

func (r *Record) Clone() *Record {
	data := make([]byte, len(r.Data))
	copy(data, r.Data)

	var logs []string
	if r.Logs != nil {
		logs = make([]string, len(r.Logs))
		copy(logs, r.Logs)
	}

	return &Record{
		Id: r.Id,

		Signature: r.Signature,
		Slot:      r.Slot,
		BlockTime: r.BlockTime,

		Data: data,

		HasErrors: r.HasErrors,
		Err:       r.Err,

		Logs: logs,

		CreatedAt: r.CreatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	cloned := r.Clone()
	*dst = *cloned
}

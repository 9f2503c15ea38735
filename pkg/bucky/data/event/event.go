package event

import (
	"time"

	"github.com/pkg/errors"
)

var (
	ErrEventNotFound = errors.New("no event records could be found")
	ErrEventExists   = errors.New("event record already exists")
)

// Record is a single decoded program event, in the order it was emitted by a
// committed transaction.
type Record struct {
	Id uint64

	Signature        string
	Slot             uint64
	InstructionIndex uint8
	EventIndex       uint32

	EventType string
	Bank      string

	// Data is the raw event, including its 8 byte discriminator
	Data []byte

	CreatedAt time.Time
}

func (r *Record) Validate() error {
	if len(r.Signature) == 0 {
		return errors.New("signature is required")
	}

	if len(r.EventType) == 0 {
		return errors.New("event type is required")
	}

	if len(r.Bank) == 0 {
		return errors.New("bank is required")
	}

	if len(r.Data) < 8 {
		return errors.New("event data must include a discriminator")
	}

	return nil
}

func (r *Record) Clone() *Record {
	data := make([]byte, len(r.Data))
	copy(data, r.Data)

	return &Record{
		Id: r.Id,

		Signature:        r.Signature,
		Slot:             r.Slot,
		InstructionIndex: r.InstructionIndex,
		EventIndex:       r.EventIndex,

		EventType: r.EventType,
		Bank:      r.Bank,

		Data: data,

		CreatedAt: r.CreatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	*dst = *r.Clone()
}

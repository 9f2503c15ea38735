package buckybank

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/bucky-bank-server/pkg/solana/binary"
)

var (
	bankCreatedEventDiscriminator         = []byte{94, 162, 71, 209, 203, 17, 36, 29}
	depositMadeEventDiscriminator         = []byte{210, 201, 130, 183, 244, 203, 155, 199}
	withdrawalRequestedEventDiscriminator = []byte{127, 108, 117, 193, 156, 83, 208, 230}
	withdrawalApprovedEventDiscriminator  = []byte{110, 116, 106, 81, 22, 92, 18, 109}
	withdrawalRejectedEventDiscriminator  = []byte{86, 247, 83, 201, 215, 46, 197, 129}
	withdrawalCompletedEventDiscriminator = []byte{73, 44, 220, 56, 116, 7, 126, 222}
)

type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeBankCreated
	EventTypeDepositMade
	EventTypeWithdrawalRequested
	EventTypeWithdrawalApproved
	EventTypeWithdrawalRejected
	EventTypeWithdrawalCompleted
)

func (t EventType) String() string {
	switch t {
	case EventTypeBankCreated:
		return "BuckyBankCreated"
	case EventTypeDepositMade:
		return "DepositMade"
	case EventTypeWithdrawalRequested:
		return "EventWithdrawalRequested"
	case EventTypeWithdrawalApproved:
		return "EventWithdrawalApproved"
	case EventTypeWithdrawalRejected:
		return "EventWithdrawalRejected"
	case EventTypeWithdrawalCompleted:
		return "EventWithdrawalCompleted"
	}
	return "Unknown"
}

// Event is a decoded program event. Every state transition emits exactly one.
type Event interface {
	Type() EventType
	Bank() ed25519.PublicKey
	Marshal() []byte
}

type BankCreatedEvent struct {
	BankId         ed25519.PublicKey
	Name           string
	Parent         ed25519.PublicKey
	Child          ed25519.PublicKey
	TargetAmount   uint64
	CreatedAtMs    uint64
	DeadlineMs     uint64
	DurationDays   uint64
	CurrentBalance uint64
}

func (e *BankCreatedEvent) Type() EventType         { return EventTypeBankCreated }
func (e *BankCreatedEvent) Bank() ed25519.PublicKey { return e.BankId }

func (e *BankCreatedEvent) Marshal() []byte {
	enc := newEncoder(bankCreatedEventDiscriminator, 0)
	enc.PutKey32(e.BankId)
	enc.PutString(e.Name)
	enc.PutKey32(e.Parent)
	enc.PutKey32(e.Child)
	enc.PutUint64(e.TargetAmount)
	enc.PutUint64(e.CreatedAtMs)
	enc.PutUint64(e.DeadlineMs)
	enc.PutUint64(e.DurationDays)
	enc.PutUint64(e.CurrentBalance)
	return enc.Bytes()
}

func (e *BankCreatedEvent) unmarshal(d *binary.Decoder) {
	d.GetKey32(&e.BankId)
	d.GetString(&e.Name, MaxNameLength)
	d.GetKey32(&e.Parent)
	d.GetKey32(&e.Child)
	d.GetUint64(&e.TargetAmount)
	d.GetUint64(&e.CreatedAtMs)
	d.GetUint64(&e.DeadlineMs)
	d.GetUint64(&e.DurationDays)
	d.GetUint64(&e.CurrentBalance)
}

type DepositMadeEvent struct {
	BankId      ed25519.PublicKey
	Amount      uint64
	Depositor   ed25519.PublicKey
	CreatedAtMs uint64
}

func (e *DepositMadeEvent) Type() EventType         { return EventTypeDepositMade }
func (e *DepositMadeEvent) Bank() ed25519.PublicKey { return e.BankId }

func (e *DepositMadeEvent) Marshal() []byte {
	enc := newEncoder(depositMadeEventDiscriminator, 0)
	enc.PutKey32(e.BankId)
	enc.PutUint64(e.Amount)
	enc.PutKey32(e.Depositor)
	enc.PutUint64(e.CreatedAtMs)
	return enc.Bytes()
}

func (e *DepositMadeEvent) unmarshal(d *binary.Decoder) {
	d.GetKey32(&e.BankId)
	d.GetUint64(&e.Amount)
	d.GetKey32(&e.Depositor)
	d.GetUint64(&e.CreatedAtMs)
}

type WithdrawalRequestedEvent struct {
	RequestId ed25519.PublicKey
	BankId    ed25519.PublicKey
	Amount    uint64
	Requester ed25519.PublicKey
	Reason    string
	Status    WithdrawalStatus
	// ApprovedBy is the parent expected to decide on the request.
	ApprovedBy  ed25519.PublicKey
	CreatedAtMs uint64
}

func (e *WithdrawalRequestedEvent) Type() EventType         { return EventTypeWithdrawalRequested }
func (e *WithdrawalRequestedEvent) Bank() ed25519.PublicKey { return e.BankId }

func (e *WithdrawalRequestedEvent) Marshal() []byte {
	enc := newEncoder(withdrawalRequestedEventDiscriminator, 0)
	enc.PutKey32(e.RequestId)
	enc.PutKey32(e.BankId)
	enc.PutUint64(e.Amount)
	enc.PutKey32(e.Requester)
	enc.PutString(e.Reason)
	enc.PutUint8(uint8(e.Status))
	enc.PutKey32(e.ApprovedBy)
	enc.PutUint64(e.CreatedAtMs)
	return enc.Bytes()
}

func (e *WithdrawalRequestedEvent) unmarshal(d *binary.Decoder) {
	var status uint8
	d.GetKey32(&e.RequestId)
	d.GetKey32(&e.BankId)
	d.GetUint64(&e.Amount)
	d.GetKey32(&e.Requester)
	d.GetString(&e.Reason, MaxReasonLength)
	d.GetUint8(&status)
	d.GetKey32(&e.ApprovedBy)
	d.GetUint64(&e.CreatedAtMs)
	e.Status = WithdrawalStatus(status)
}

type WithdrawalApprovedEvent struct {
	RequestId   ed25519.PublicKey
	BankId      ed25519.PublicKey
	Amount      uint64
	ApprovedBy  ed25519.PublicKey
	Requester   ed25519.PublicKey
	Reason      string
	CreatedAtMs uint64
}

func (e *WithdrawalApprovedEvent) Type() EventType         { return EventTypeWithdrawalApproved }
func (e *WithdrawalApprovedEvent) Bank() ed25519.PublicKey { return e.BankId }

func (e *WithdrawalApprovedEvent) Marshal() []byte {
	enc := newEncoder(withdrawalApprovedEventDiscriminator, 0)
	enc.PutKey32(e.RequestId)
	enc.PutKey32(e.BankId)
	enc.PutUint64(e.Amount)
	enc.PutKey32(e.ApprovedBy)
	enc.PutKey32(e.Requester)
	enc.PutString(e.Reason)
	enc.PutUint64(e.CreatedAtMs)
	return enc.Bytes()
}

func (e *WithdrawalApprovedEvent) unmarshal(d *binary.Decoder) {
	d.GetKey32(&e.RequestId)
	d.GetKey32(&e.BankId)
	d.GetUint64(&e.Amount)
	d.GetKey32(&e.ApprovedBy)
	d.GetKey32(&e.Requester)
	d.GetString(&e.Reason, MaxReasonLength)
	d.GetUint64(&e.CreatedAtMs)
}

type WithdrawalRejectedEvent struct {
	RequestId   ed25519.PublicKey
	BankId      ed25519.PublicKey
	Amount      uint64
	Requester   ed25519.PublicKey
	RejectedBy  ed25519.PublicKey
	Reason      string
	CreatedAtMs uint64
}

func (e *WithdrawalRejectedEvent) Type() EventType         { return EventTypeWithdrawalRejected }
func (e *WithdrawalRejectedEvent) Bank() ed25519.PublicKey { return e.BankId }

func (e *WithdrawalRejectedEvent) Marshal() []byte {
	enc := newEncoder(withdrawalRejectedEventDiscriminator, 0)
	enc.PutKey32(e.RequestId)
	enc.PutKey32(e.BankId)
	enc.PutUint64(e.Amount)
	enc.PutKey32(e.Requester)
	enc.PutKey32(e.RejectedBy)
	enc.PutString(e.Reason)
	enc.PutUint64(e.CreatedAtMs)
	return enc.Bytes()
}

func (e *WithdrawalRejectedEvent) unmarshal(d *binary.Decoder) {
	d.GetKey32(&e.RequestId)
	d.GetKey32(&e.BankId)
	d.GetUint64(&e.Amount)
	d.GetKey32(&e.Requester)
	d.GetKey32(&e.RejectedBy)
	d.GetString(&e.Reason, MaxReasonLength)
	d.GetUint64(&e.CreatedAtMs)
}

type WithdrawalCompletedEvent struct {
	RequestId   ed25519.PublicKey
	BankId      ed25519.PublicKey
	Amount      uint64
	LeftBalance uint64
	Withdrawer  ed25519.PublicKey
	CreatedAtMs uint64
}

func (e *WithdrawalCompletedEvent) Type() EventType         { return EventTypeWithdrawalCompleted }
func (e *WithdrawalCompletedEvent) Bank() ed25519.PublicKey { return e.BankId }

func (e *WithdrawalCompletedEvent) Marshal() []byte {
	enc := newEncoder(withdrawalCompletedEventDiscriminator, 0)
	enc.PutKey32(e.RequestId)
	enc.PutKey32(e.BankId)
	enc.PutUint64(e.Amount)
	enc.PutUint64(e.LeftBalance)
	enc.PutKey32(e.Withdrawer)
	enc.PutUint64(e.CreatedAtMs)
	return enc.Bytes()
}

func (e *WithdrawalCompletedEvent) unmarshal(d *binary.Decoder) {
	d.GetKey32(&e.RequestId)
	d.GetKey32(&e.BankId)
	d.GetUint64(&e.Amount)
	d.GetUint64(&e.LeftBalance)
	d.GetKey32(&e.Withdrawer)
	d.GetUint64(&e.CreatedAtMs)
}

type eventDecoder interface {
	Event
	unmarshal(d *binary.Decoder)
}

// GetEventType identifies event data by its discriminator.
func GetEventType(data []byte) EventType {
	if len(data) < DiscriminatorSize {
		return EventTypeUnknown
	}

	prefix := data[:DiscriminatorSize]
	switch {
	case bytes.Equal(prefix, bankCreatedEventDiscriminator):
		return EventTypeBankCreated
	case bytes.Equal(prefix, depositMadeEventDiscriminator):
		return EventTypeDepositMade
	case bytes.Equal(prefix, withdrawalRequestedEventDiscriminator):
		return EventTypeWithdrawalRequested
	case bytes.Equal(prefix, withdrawalApprovedEventDiscriminator):
		return EventTypeWithdrawalApproved
	case bytes.Equal(prefix, withdrawalRejectedEventDiscriminator):
		return EventTypeWithdrawalRejected
	case bytes.Equal(prefix, withdrawalCompletedEventDiscriminator):
		return EventTypeWithdrawalCompleted
	}
	return EventTypeUnknown
}

// DecodeEvent decodes discriminated event data.
func DecodeEvent(data []byte) (Event, error) {
	var event eventDecoder
	switch GetEventType(data) {
	case EventTypeBankCreated:
		event = &BankCreatedEvent{}
	case EventTypeDepositMade:
		event = &DepositMadeEvent{}
	case EventTypeWithdrawalRequested:
		event = &WithdrawalRequestedEvent{}
	case EventTypeWithdrawalApproved:
		event = &WithdrawalApprovedEvent{}
	case EventTypeWithdrawalRejected:
		event = &WithdrawalRejectedEvent{}
	case EventTypeWithdrawalCompleted:
		event = &WithdrawalCompletedEvent{}
	default:
		return nil, ErrInvalidEventData
	}

	d := binary.NewDecoder(data[DiscriminatorSize:])
	event.unmarshal(d)
	if err := d.Err(); err != nil {
		return nil, errors.Wrapf(ErrInvalidEventData, "%s: %v", event.Type(), err)
	}
	return event, nil
}

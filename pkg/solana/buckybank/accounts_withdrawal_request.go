package buckybank

import (
	"crypto/ed25519"
	"fmt"

	"github.com/pkg/errors"
)

var WithdrawalRequestAccountDiscriminator = []byte{147, 251, 173, 62, 167, 179, 42, 159}

const WithdrawalRequestAccountSize = (DiscriminatorSize +
	32 + // bucky_bank_id
	32 + // requester
	8 + // amount
	4 + MaxReasonLength + // reason
	1 + // status
	32 + // approved_by
	8 + // created_at_ms
	8) // approved_at_ms

type WithdrawalRequestAccount struct {
	BankId    ed25519.PublicKey
	Requester ed25519.PublicKey
	Amount    uint64
	Reason    string
	Status    WithdrawalStatus

	// ApprovedBy is the zero address until the parent decides. It is set for
	// both approvals and rejections.
	ApprovedBy ed25519.PublicKey

	CreatedAtMs  uint64
	ApprovedAtMs uint64
}

func (obj *WithdrawalRequestAccount) Marshal() []byte {
	e := newEncoder(WithdrawalRequestAccountDiscriminator, WithdrawalRequestAccountSize)
	e.PutKey32(obj.BankId)
	e.PutKey32(obj.Requester)
	e.PutUint64(obj.Amount)
	e.PutString(obj.Reason)
	e.PutUint8(uint8(obj.Status))
	e.PutKey32(obj.ApprovedBy)
	e.PutUint64(obj.CreatedAtMs)
	e.PutUint64(obj.ApprovedAtMs)
	return padTo(e.Bytes(), WithdrawalRequestAccountSize)
}

func (obj *WithdrawalRequestAccount) Unmarshal(data []byte) error {
	d, err := newDecoder(data, WithdrawalRequestAccountDiscriminator, DiscriminatorSize, ErrInvalidAccountData)
	if err != nil {
		return err
	}

	var status uint8
	d.GetKey32(&obj.BankId)
	d.GetKey32(&obj.Requester)
	d.GetUint64(&obj.Amount)
	d.GetString(&obj.Reason, MaxReasonLength)
	d.GetUint8(&status)
	d.GetKey32(&obj.ApprovedBy)
	d.GetUint64(&obj.CreatedAtMs)
	d.GetUint64(&obj.ApprovedAtMs)
	if err := d.Err(); err != nil {
		return errors.Wrap(err, "invalid withdrawal request account")
	}

	obj.Status = WithdrawalStatus(status)
	if !obj.Status.IsValid() {
		return errors.Wrapf(ErrInvalidAccountData, "invalid withdrawal status %d", status)
	}
	return nil
}

func (obj *WithdrawalRequestAccount) Clone() *WithdrawalRequestAccount {
	cloned := *obj
	cloned.BankId = cloneKey(obj.BankId)
	cloned.Requester = cloneKey(obj.Requester)
	cloned.ApprovedBy = cloneKey(obj.ApprovedBy)
	return &cloned
}

func (obj *WithdrawalRequestAccount) String() string {
	return fmt.Sprintf(
		"WithdrawalRequest{bank=%s,requester=%s,amount=%d,reason=%q,status=%s,approved_by=%s,created_at_ms=%d,approved_at_ms=%d}",
		encodeKey(obj.BankId),
		encodeKey(obj.Requester),
		obj.Amount,
		obj.Reason,
		obj.Status,
		encodeKey(obj.ApprovedBy),
		obj.CreatedAtMs,
		obj.ApprovedAtMs,
	)
}

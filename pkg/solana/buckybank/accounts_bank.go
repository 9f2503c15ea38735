package buckybank

import (
	"crypto/ed25519"
	"fmt"

	"github.com/pkg/errors"
)

var BankAccountDiscriminator = []byte{30, 156, 155, 19, 76, 154, 184, 226}

const BankAccountSize = (DiscriminatorSize +
	32 + // parent
	4 + MaxNameLength + // config.name
	8 + // config.target_amount
	8 + // config.deadline_ms
	32 + // config.child_address
	8 + // current_balance
	1 + // status
	8 + // deposit_count
	8 + // created_at_ms
	8 + // last_deposit_ms
	8) // withdrawal_request_counter

// BankConfig is fixed at creation.
type BankConfig struct {
	Name         string
	TargetAmount uint64
	DeadlineMs   uint64
	ChildAddress ed25519.PublicKey
}

type BankAccount struct {
	Parent ed25519.PublicKey
	Config BankConfig

	CurrentBalance uint64
	Status         BankStatus

	DepositCount  uint64
	CreatedAtMs   uint64
	LastDepositMs uint64

	WithdrawalRequestCounter uint64
}

// EffectiveStatus is the status a reader should display. An active bank past
// its deadline that never reached its target reads as failed. Nothing on the
// ledger writes BankStatusFailed.
func (obj *BankAccount) EffectiveStatus(nowMs uint64) BankStatus {
	if obj.Status == BankStatusActive &&
		nowMs > obj.Config.DeadlineMs &&
		obj.CurrentBalance < obj.Config.TargetAmount {
		return BankStatusFailed
	}
	return obj.Status
}

func (obj *BankAccount) Marshal() []byte {
	e := newEncoder(BankAccountDiscriminator, BankAccountSize)
	e.PutKey32(obj.Parent)
	e.PutString(obj.Config.Name)
	e.PutUint64(obj.Config.TargetAmount)
	e.PutUint64(obj.Config.DeadlineMs)
	e.PutKey32(obj.Config.ChildAddress)
	e.PutUint64(obj.CurrentBalance)
	e.PutUint8(uint8(obj.Status))
	e.PutUint64(obj.DepositCount)
	e.PutUint64(obj.CreatedAtMs)
	e.PutUint64(obj.LastDepositMs)
	e.PutUint64(obj.WithdrawalRequestCounter)
	return padTo(e.Bytes(), BankAccountSize)
}

func (obj *BankAccount) Unmarshal(data []byte) error {
	d, err := newDecoder(data, BankAccountDiscriminator, DiscriminatorSize, ErrInvalidAccountData)
	if err != nil {
		return err
	}

	var status uint8
	d.GetKey32(&obj.Parent)
	d.GetString(&obj.Config.Name, MaxNameLength)
	d.GetUint64(&obj.Config.TargetAmount)
	d.GetUint64(&obj.Config.DeadlineMs)
	d.GetKey32(&obj.Config.ChildAddress)
	d.GetUint64(&obj.CurrentBalance)
	d.GetUint8(&status)
	d.GetUint64(&obj.DepositCount)
	d.GetUint64(&obj.CreatedAtMs)
	d.GetUint64(&obj.LastDepositMs)
	d.GetUint64(&obj.WithdrawalRequestCounter)
	if err := d.Err(); err != nil {
		return errors.Wrap(err, "invalid bank account")
	}

	obj.Status = BankStatus(status)
	if !obj.Status.IsValid() {
		return errors.Wrapf(ErrInvalidAccountData, "invalid bank status %d", status)
	}
	return nil
}

func (obj *BankAccount) Clone() *BankAccount {
	cloned := *obj
	cloned.Parent = cloneKey(obj.Parent)
	cloned.Config.ChildAddress = cloneKey(obj.Config.ChildAddress)
	return &cloned
}

func (obj *BankAccount) String() string {
	return fmt.Sprintf(
		"Bank{parent=%s,name=%s,target_amount=%d,deadline_ms=%d,child=%s,current_balance=%d,status=%s,deposit_count=%d,created_at_ms=%d,last_deposit_ms=%d,withdrawal_request_counter=%d}",
		encodeKey(obj.Parent),
		obj.Config.Name,
		obj.Config.TargetAmount,
		obj.Config.DeadlineMs,
		encodeKey(obj.Config.ChildAddress),
		obj.CurrentBalance,
		obj.Status,
		obj.DepositCount,
		obj.CreatedAtMs,
		obj.LastDepositMs,
		obj.WithdrawalRequestCounter,
	)
}

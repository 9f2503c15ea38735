package buckybank

import (
	"crypto/ed25519"
	"fmt"

	"github.com/pkg/errors"
)

var GlobalStatsAccountDiscriminator = []byte{99, 201, 148, 111, 113, 116, 70, 181}

const GlobalStatsAccountSize = (DiscriminatorSize +
	8 + // total_bucky_banks
	8 + // total_deposits
	8 + // total_withdrawals
	32) // admin

// GlobalStatsAccount is the program singleton. TotalBanks doubles as the
// sequence number of the next bank.
type GlobalStatsAccount struct {
	TotalBanks       uint64
	TotalDeposits    uint64
	TotalWithdrawals uint64
	Admin            ed25519.PublicKey
}

func (obj *GlobalStatsAccount) Marshal() []byte {
	e := newEncoder(GlobalStatsAccountDiscriminator, GlobalStatsAccountSize)
	e.PutUint64(obj.TotalBanks)
	e.PutUint64(obj.TotalDeposits)
	e.PutUint64(obj.TotalWithdrawals)
	e.PutKey32(obj.Admin)
	return e.Bytes()
}

func (obj *GlobalStatsAccount) Unmarshal(data []byte) error {
	d, err := newDecoder(data, GlobalStatsAccountDiscriminator, GlobalStatsAccountSize, ErrInvalidAccountData)
	if err != nil {
		return err
	}

	d.GetUint64(&obj.TotalBanks)
	d.GetUint64(&obj.TotalDeposits)
	d.GetUint64(&obj.TotalWithdrawals)
	d.GetKey32(&obj.Admin)
	return errors.Wrap(d.Err(), "invalid global stats account")
}

func (obj *GlobalStatsAccount) Clone() *GlobalStatsAccount {
	return &GlobalStatsAccount{
		TotalBanks:       obj.TotalBanks,
		TotalDeposits:    obj.TotalDeposits,
		TotalWithdrawals: obj.TotalWithdrawals,
		Admin:            cloneKey(obj.Admin),
	}
}

func (obj *GlobalStatsAccount) String() string {
	return fmt.Sprintf(
		"GlobalStats{total_banks=%d,total_deposits=%d,total_withdrawals=%d,admin=%s}",
		obj.TotalBanks,
		obj.TotalDeposits,
		obj.TotalWithdrawals,
		encodeKey(obj.Admin),
	)
}

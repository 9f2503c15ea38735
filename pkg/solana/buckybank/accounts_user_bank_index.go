package buckybank

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var UserBankIndexAccountDiscriminator = []byte{81, 225, 128, 17, 109, 63, 48, 203}

const userBankIndexAccountBaseSize = (DiscriminatorSize +
	32 + // owner
	4) // bucky_bank_ids length

// GetUserBankIndexAccountSize is the allocation needed to hold count bank ids.
// The account is reallocated by one entry on every bank creation.
func GetUserBankIndexAccountSize(count int) int {
	return userBankIndexAccountBaseSize + count*32
}

// UserBankIndexAccount lists, in creation order, the banks an owner created.
type UserBankIndexAccount struct {
	Owner   ed25519.PublicKey
	BankIds []ed25519.PublicKey
}

func (obj *UserBankIndexAccount) Marshal() []byte {
	e := newEncoder(UserBankIndexAccountDiscriminator, GetUserBankIndexAccountSize(len(obj.BankIds)))
	e.PutKey32(obj.Owner)
	e.PutKeyVec(obj.BankIds)
	return e.Bytes()
}

func (obj *UserBankIndexAccount) Unmarshal(data []byte) error {
	d, err := newDecoder(data, UserBankIndexAccountDiscriminator, userBankIndexAccountBaseSize, ErrInvalidAccountData)
	if err != nil {
		return err
	}

	d.GetKey32(&obj.Owner)
	d.GetKeyVec(&obj.BankIds, -1)
	return errors.Wrap(d.Err(), "invalid user bank index account")
}

func (obj *UserBankIndexAccount) Clone() *UserBankIndexAccount {
	cloned := &UserBankIndexAccount{
		Owner:   cloneKey(obj.Owner),
		BankIds: make([]ed25519.PublicKey, len(obj.BankIds)),
	}
	for i, id := range obj.BankIds {
		cloned.BankIds[i] = cloneKey(id)
	}
	return cloned
}

func (obj *UserBankIndexAccount) String() string {
	ids := make([]string, len(obj.BankIds))
	for i, id := range obj.BankIds {
		ids[i] = encodeKey(id)
	}
	return fmt.Sprintf(
		"UserBankIndex{owner=%s,bank_ids=[%s]}",
		encodeKey(obj.Owner),
		strings.Join(ids, ","),
	)
}

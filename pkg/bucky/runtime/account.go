package runtime

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/ledger"
	"github.com/code-payments/bucky-bank-server/pkg/solana"
	"github.com/code-payments/bucky-bank-server/pkg/solana/system"
)

var (
	// SystemProgramId owns every wallet account and every account that has
	// not been created yet.
	SystemProgramId = ed25519.PublicKey(system.ProgramKey[:])

	// NativeLoaderId owns program accounts.
	NativeLoaderId = solana.MustParseAddress("NativeLoader1111111111111111111111111111111")
)

// Account is the mutable state of a ledger account while a transaction is
// executing. Instructions that reference the same account share one Account.
type Account struct {
	Key      ed25519.PublicKey
	Owner    ed25519.PublicKey
	Lamports uint64
	Data     []byte

	executable bool
}

// IsOwnedBy returns whether program owns the account
func (a *Account) IsOwnedBy(program ed25519.PublicKey) bool {
	return bytes.Equal(a.Owner, program)
}

// IsEmpty returns whether the account has never been funded or allocated
func (a *Account) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && a.IsOwnedBy(SystemProgramId)
}

// Resize grows or shrinks the account's data, zero filling any new space.
func (a *Account) Resize(size int) {
	if size <= len(a.Data) {
		a.Data = a.Data[:size]
		return
	}

	resized := make([]byte, size)
	copy(resized, a.Data)
	a.Data = resized
}

func (a *Account) snapshot() accountSnapshot {
	return accountSnapshot{
		owner:    cloneKey(a.Owner),
		lamports: a.Lamports,
		data:     cloneBytes(a.Data),
	}
}

func (a *Account) matches(s accountSnapshot) bool {
	return bytes.Equal(a.Owner, s.owner) && a.Lamports == s.lamports && bytes.Equal(a.Data, s.data)
}

// AccountInfo is an account as seen by a single program invocation, along
// with the privileges the invocation was granted.
type AccountInfo struct {
	*Account

	IsSigner   bool
	IsWritable bool
}

type accountSnapshot struct {
	owner    ed25519.PublicKey
	lamports uint64
	data     []byte
}

func accountFromRecord(key ed25519.PublicKey, record *ledger.Record) (*Account, error) {
	owner, err := base58.Decode(record.Owner)
	if err != nil {
		return nil, err
	}

	return &Account{
		Key:      cloneKey(key),
		Owner:    owner,
		Lamports: record.Lamports,
		Data:     cloneBytes(record.Data),
	}, nil
}

func newEmptyAccount(key ed25519.PublicKey) *Account {
	return &Account{
		Key:   cloneKey(key),
		Owner: cloneKey(SystemProgramId),
	}
}

func newProgramAccount(key ed25519.PublicKey) *Account {
	return &Account{
		Key:        cloneKey(key),
		Owner:      cloneKey(NativeLoaderId),
		Lamports:   1,
		executable: true,
	}
}

func cloneKey(key ed25519.PublicKey) ed25519.PublicKey {
	cloned := make(ed25519.PublicKey, len(key))
	copy(cloned, key)
	return cloned
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	cloned := make([]byte, len(b))
	copy(cloned, b)
	return cloned
}

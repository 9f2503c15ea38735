package program

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"math/bits"
	"unicode/utf8"

	"github.com/mr-tron/base58"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/runtime"
	"github.com/code-payments/bucky-bank-server/pkg/solana"
	"github.com/code-payments/bucky-bank-server/pkg/solana/buckybank"
	"github.com/code-payments/bucky-bank-server/pkg/solana/system"
)

// accountDecoder is the common shape of the program's account layouts
type accountDecoder interface {
	Unmarshal(data []byte) error
}

func requireAccounts(accounts []*runtime.AccountInfo, count int) error {
	if len(accounts) < count {
		return buckybank.ErrAccountNotEnoughKeys
	}
	return nil
}

func requireSigner(info *runtime.AccountInfo) error {
	if !info.IsSigner {
		return buckybank.ErrAccountNotSigner
	}
	return nil
}

func requireWritable(info *runtime.AccountInfo) error {
	if !info.IsWritable {
		return buckybank.ErrConstraintMut
	}
	return nil
}

func requireWritableSigner(info *runtime.AccountInfo) error {
	if err := requireSigner(info); err != nil {
		return err
	}
	return requireWritable(info)
}

func requireSystemProgram(info *runtime.AccountInfo) error {
	if !bytes.Equal(info.Key, runtime.SystemProgramId) {
		return buckybank.ErrInvalidProgramId
	}
	return nil
}

func requireAddress(info *runtime.AccountInfo, expected ed25519.PublicKey) error {
	if !bytes.Equal(info.Key, expected) {
		return buckybank.ErrConstraintSeeds
	}
	return nil
}

// requireUninitialized guards accounts an instruction is about to create
func requireUninitialized(info *runtime.AccountInfo) error {
	if !info.IsEmpty() {
		return solana.InstructionErrorAccountAlreadyInitialized
	}
	return nil
}

// loadProgramAccount applies the account type checks to a program owned
// account and decodes it into dst.
func loadProgramAccount(info *runtime.AccountInfo, discriminator []byte, dst accountDecoder) error {
	if info.IsEmpty() {
		return buckybank.ErrAccountNotInitialized
	}
	if !info.IsOwnedBy(buckybank.PROGRAM_ID) {
		return buckybank.ErrAccountOwnedByWrongProgram
	}
	if len(info.Data) < buckybank.DiscriminatorSize || !bytes.Equal(info.Data[:buckybank.DiscriminatorSize], discriminator) {
		return buckybank.ErrAccountDiscriminatorMismatch
	}
	if err := dst.Unmarshal(info.Data); err != nil {
		return buckybank.ErrAccountDidNotDeserialize
	}
	return nil
}

func loadGlobalStats(info *runtime.AccountInfo) (*buckybank.GlobalStatsAccount, error) {
	address, _, err := buckybank.GetGlobalStatsAddress()
	if err != nil {
		return nil, err
	}
	if err := requireAddress(info, address); err != nil {
		return nil, err
	}

	var stats buckybank.GlobalStatsAccount
	if err := loadProgramAccount(info, buckybank.GlobalStatsAccountDiscriminator, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func loadBank(info *runtime.AccountInfo) (*buckybank.BankAccount, error) {
	var bank buckybank.BankAccount
	if err := loadProgramAccount(info, buckybank.BankAccountDiscriminator, &bank); err != nil {
		return nil, err
	}
	return &bank, nil
}

func loadUserBankIndex(info *runtime.AccountInfo) (*buckybank.UserBankIndexAccount, error) {
	var index buckybank.UserBankIndexAccount
	if err := loadProgramAccount(info, buckybank.UserBankIndexAccountDiscriminator, &index); err != nil {
		return nil, err
	}
	return &index, nil
}

// loadWithdrawalRequest loads a request and checks it was made against bank
func loadWithdrawalRequest(info *runtime.AccountInfo, bank ed25519.PublicKey) (*buckybank.WithdrawalRequestAccount, error) {
	var request buckybank.WithdrawalRequestAccount
	if err := loadProgramAccount(info, buckybank.WithdrawalRequestAccountDiscriminator, &request); err != nil {
		return nil, err
	}
	if !bytes.Equal(request.BankId, bank) {
		return nil, buckybank.ErrRequestNotFound
	}
	return &request, nil
}

// store writes an encoded account back into its working copy. The encoding
// must fit the account's allocation.
func store(info *runtime.AccountInfo, data []byte) {
	copy(info.Data, data)
}

func validateName(name string) error {
	if len(name) == 0 || len(name) > buckybank.MaxNameLength || !utf8.ValidString(name) {
		return buckybank.ErrInvalidName
	}
	return nil
}

func validateReason(reason string, required bool) error {
	if required && len(reason) == 0 {
		return buckybank.ErrInvalidReason
	}
	if len(reason) > buckybank.MaxReasonLength {
		return buckybank.ErrReasonTooLong
	}
	if !utf8.ValidString(reason) {
		return buckybank.ErrInvalidReason
	}
	return nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, buckybank.ErrOverflow
	}
	return sum, nil
}

func checkedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, buckybank.ErrOverflow
	}
	return diff, nil
}

func checkedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, buckybank.ErrOverflow
	}
	return lo, nil
}

// createProgramAccount allocates a program owned account at a derived
// address, funded to be rent exempt by payer.
func createProgramAccount(ctx *runtime.InvokeContext, payer, account *runtime.AccountInfo, size int, seeds ...[]byte) error {
	ix := system.CreateAccount(
		payer.Key,
		account.Key,
		buckybank.PROGRAM_ID,
		runtime.MinimumBalanceForRentExemption(size),
		uint64(size),
	)
	return ctx.InvokeSigned(ix, seeds)
}

// transfer moves lamports out of a system owned account
func transfer(ctx *runtime.InvokeContext, source, destination *runtime.AccountInfo, lamports uint64) error {
	return ctx.InvokeSigned(system.Transfer(source.Key, destination.Key, lamports))
}

func sequenceSeed(v uint64) []byte {
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], v)
	return seed[:]
}

func encodeKey(key ed25519.PublicKey) string {
	return base58.Encode(key)
}

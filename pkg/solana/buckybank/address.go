package buckybank

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/code-payments/bucky-bank-server/pkg/solana"
)

func GetGlobalStatsAddress() (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		GlobalStatsSeed,
	)
}

type GetBankAddressArgs struct {
	// Sequence is GlobalStats.TotalBanks at the time the bank is created.
	Sequence uint64
}

func GetBankAddress(args *GetBankAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		uint64Seed(args.Sequence),
	)
}

type GetUserBankIndexAddressArgs struct {
	Owner ed25519.PublicKey
}

func GetUserBankIndexAddress(args *GetUserBankIndexAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		UserBankIndexSeed,
		args.Owner,
	)
}

type GetWithdrawalRequestAddressArgs struct {
	Bank      ed25519.PublicKey
	Requester ed25519.PublicKey
	// Index is Bank.WithdrawalRequestCounter at the time the request is
	// created.
	Index uint64
}

func GetWithdrawalRequestAddress(args *GetWithdrawalRequestAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		WithdrawalRequestSeed,
		args.Bank,
		args.Requester,
		uint64Seed(args.Index),
	)
}

func uint64Seed(v uint64) []byte {
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], v)
	return seed[:]
}

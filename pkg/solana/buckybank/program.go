package buckybank

import (
	"crypto/ed25519"
	"errors"

	"github.com/mr-tron/base58"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
	ErrInvalidEventData       = errors.New("unexpected event data")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("5uykfXh94mwTz2Vxb2Y7RpntvanSkcWq4hENoDM4duVf")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("11111111111111111111111111111111"))
)

const (
	DiscriminatorSize = 8

	MaxNameLength   = 32
	MaxReasonLength = 200

	MillisecondsPerDay = 24 * 60 * 60 * 1000

	// DefaultMinDepositLamports is 0.01 SOL.
	DefaultMinDepositLamports = 10_000_000
)

var (
	GlobalStatsSeed       = []byte("global_stats")
	UserBankIndexSeed     = []byte("user_bucky_banks")
	WithdrawalRequestSeed = []byte("withdrawal_request")
)

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}

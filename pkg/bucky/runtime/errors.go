package runtime

import (
	"github.com/pkg/errors"

	"github.com/code-payments/bucky-bank-server/pkg/solana"
)

var (
	// ErrAccountInUse is returned when a transaction's accounts remain locked
	// by other transactions for longer than the configured lock timeout.
	ErrAccountInUse = solana.NewTransactionError(solana.TransactionErrorAccountInUse)

	ErrAirdropRateLimited = errors.New("airdrop rate limited")
	ErrInvalidAirdrop     = errors.New("invalid airdrop")
)

// toInstructionError maps an error returned by a program or the runtime's
// account checks to the instruction error reported for the transaction.
func toInstructionError(index int, err error) *solana.InstructionError {
	var coded codedError
	if errors.As(err, &coded) {
		return solana.NewCustomInstructionError(index, coded.Code())
	}

	var custom solana.CustomError
	if errors.As(err, &custom) {
		return solana.NewCustomInstructionError(index, uint32(custom))
	}

	var key solana.InstructionErrorKey
	if errors.As(err, &key) {
		return solana.NewInstructionError(index, key)
	}

	return solana.NewInstructionError(index, solana.InstructionErrorGenericError)
}

package buckybank

import (
	"crypto/ed25519"

	"github.com/code-payments/bucky-bank-server/pkg/solana"
)

var withdrawInstructionDiscriminator = []byte{
	183, 18, 70, 156, 148, 109, 161, 34,
}

const (
	WithdrawInstructionAccountsCount = 5
)

type WithdrawInstructionAccounts struct {
	GlobalStats       ed25519.PublicKey
	Bank              ed25519.PublicKey
	WithdrawalRequest ed25519.PublicKey
	Child             ed25519.PublicKey
}

func NewWithdrawInstruction(
	accounts *WithdrawInstructionAccounts,
) solana.Instruction {
	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: append([]byte(nil), withdrawInstructionDiscriminator...),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.GlobalStats,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Bank,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.WithdrawalRequest,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Child,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

package buckybank

import (
	"crypto/ed25519"

	"github.com/code-payments/bucky-bank-server/pkg/solana"
)

var initializeGlobalStatsInstructionDiscriminator = []byte{
	143, 138, 143, 246, 111, 29, 108, 54,
}

const (
	InitializeGlobalStatsInstructionAccountsCount = 3
)

type InitializeGlobalStatsInstructionAccounts struct {
	Admin       ed25519.PublicKey
	GlobalStats ed25519.PublicKey
}

func NewInitializeGlobalStatsInstruction(
	accounts *InitializeGlobalStatsInstructionAccounts,
) solana.Instruction {
	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: append([]byte(nil), initializeGlobalStatsInstructionDiscriminator...),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Admin,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.GlobalStats,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

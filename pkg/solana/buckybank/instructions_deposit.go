package buckybank

import (
	"crypto/ed25519"

	"github.com/code-payments/bucky-bank-server/pkg/solana"
)

var depositInstructionDiscriminator = []byte{
	242, 35, 198, 137, 82, 225, 242, 182,
}

const (
	DepositInstructionArgsSize = 8 // amount

	DepositInstructionAccountsCount = 4
)

type DepositInstructionArgs struct {
	Amount uint64
}

type DepositInstructionAccounts struct {
	GlobalStats ed25519.PublicKey
	Bank        ed25519.PublicKey
	Depositor   ed25519.PublicKey
}

func NewDepositInstruction(
	accounts *DepositInstructionAccounts,
	args *DepositInstructionArgs,
) solana.Instruction {
	// Serialize instruction arguments
	e := newEncoder(depositInstructionDiscriminator, DiscriminatorSize+DepositInstructionArgsSize)
	e.PutUint64(args.Amount)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: e.Bytes(),

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
				PublicKey:  accounts.Depositor,
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

func DepositInstructionArgsFromBinary(data []byte) (*DepositInstructionArgs, error) {
	d, err := newDecoder(data, depositInstructionDiscriminator, DiscriminatorSize+DepositInstructionArgsSize, ErrInvalidInstructionData)
	if err != nil {
		return nil, err
	}

	var args DepositInstructionArgs
	d.GetUint64(&args.Amount)
	return &args, nil
}

package buckybank

import (
	"crypto/ed25519"

	"github.com/code-payments/bucky-bank-server/pkg/solana"
)

var approveWithdrawalInstructionDiscriminator = []byte{
	75, 48, 146, 122, 201, 158, 210, 123,
}

const (
	ApproveWithdrawalInstructionAccountsCount = 3
)

type ApproveWithdrawalInstructionArgs struct {
	// Approve is false for a rejection.
	Approve bool
	Reason  string
}

type ApproveWithdrawalInstructionAccounts struct {
	Bank              ed25519.PublicKey
	WithdrawalRequest ed25519.PublicKey
	Parent            ed25519.PublicKey
}

func NewApproveWithdrawalInstruction(
	accounts *ApproveWithdrawalInstructionAccounts,
	args *ApproveWithdrawalInstructionArgs,
) solana.Instruction {
	// Serialize instruction arguments
	e := newEncoder(approveWithdrawalInstructionDiscriminator, DiscriminatorSize+1+4+len(args.Reason))
	e.PutBool(args.Approve)
	e.PutString(args.Reason)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: e.Bytes(),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
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
				PublicKey:  accounts.Parent,
				IsWritable: true,
				IsSigner:   true,
			},
		},
	}
}

func ApproveWithdrawalInstructionArgsFromBinary(data []byte) (*ApproveWithdrawalInstructionArgs, error) {
	d, err := newDecoder(data, approveWithdrawalInstructionDiscriminator, DiscriminatorSize, ErrInvalidInstructionData)
	if err != nil {
		return nil, err
	}

	var args ApproveWithdrawalInstructionArgs
	d.GetBool(&args.Approve)
	d.GetString(&args.Reason, -1)
	if d.Err() != nil {
		return nil, ErrInvalidInstructionData
	}
	return &args, nil
}

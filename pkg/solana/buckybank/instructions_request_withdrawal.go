package buckybank

import (
	"crypto/ed25519"

	"github.com/code-payments/bucky-bank-server/pkg/solana"
)

var requestWithdrawalInstructionDiscriminator = []byte{
	251, 85, 121, 205, 56, 201, 12, 177,
}

const (
	RequestWithdrawalInstructionAccountsCount = 4
)

type RequestWithdrawalInstructionArgs struct {
	Amount uint64
	Reason string
}

type RequestWithdrawalInstructionAccounts struct {
	Bank              ed25519.PublicKey
	WithdrawalRequest ed25519.PublicKey
	Requester         ed25519.PublicKey
}

func NewRequestWithdrawalInstruction(
	accounts *RequestWithdrawalInstructionAccounts,
	args *RequestWithdrawalInstructionArgs,
) solana.Instruction {
	// Serialize instruction arguments
	e := newEncoder(requestWithdrawalInstructionDiscriminator, DiscriminatorSize+8+4+len(args.Reason))
	e.PutUint64(args.Amount)
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
				PublicKey:  accounts.Requester,
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

func RequestWithdrawalInstructionArgsFromBinary(data []byte) (*RequestWithdrawalInstructionArgs, error) {
	d, err := newDecoder(data, requestWithdrawalInstructionDiscriminator, DiscriminatorSize, ErrInvalidInstructionData)
	if err != nil {
		return nil, err
	}

	var args RequestWithdrawalInstructionArgs
	d.GetUint64(&args.Amount)
	d.GetString(&args.Reason, -1)
	if d.Err() != nil {
		return nil, ErrInvalidInstructionData
	}
	return &args, nil
}

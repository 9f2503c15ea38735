package buckybank

import (
	"crypto/ed25519"

	"github.com/code-payments/bucky-bank-server/pkg/solana"
)

var createBankInstructionDiscriminator = []byte{
	253, 239, 86, 153, 43, 27, 85, 218,
}

const (
	CreateBankInstructionAccountsCount = 5
)

type CreateBankInstructionArgs struct {
	Name         string
	TargetAmount uint64
	DurationDays uint64
	ChildAddress ed25519.PublicKey
}

type CreateBankInstructionAccounts struct {
	Owner         ed25519.PublicKey
	GlobalStats   ed25519.PublicKey
	Bank          ed25519.PublicKey
	UserBankIndex ed25519.PublicKey
}

func NewCreateBankInstruction(
	accounts *CreateBankInstructionAccounts,
	args *CreateBankInstructionArgs,
) solana.Instruction {
	// Serialize instruction arguments
	e := newEncoder(createBankInstructionDiscriminator, DiscriminatorSize+4+len(args.Name)+8+8+32)
	e.PutString(args.Name)
	e.PutUint64(args.TargetAmount)
	e.PutUint64(args.DurationDays)
	e.PutKey32(args.ChildAddress)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: e.Bytes(),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Owner,
				IsWritable: true,
				IsSigner:   true,
			},
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
				PublicKey:  accounts.UserBankIndex,
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

func CreateBankInstructionArgsFromBinary(data []byte) (*CreateBankInstructionArgs, error) {
	d, err := newDecoder(data, createBankInstructionDiscriminator, DiscriminatorSize, ErrInvalidInstructionData)
	if err != nil {
		return nil, err
	}

	var args CreateBankInstructionArgs
	d.GetString(&args.Name, -1)
	d.GetUint64(&args.TargetAmount)
	d.GetUint64(&args.DurationDays)
	d.GetKey32(&args.ChildAddress)
	if d.Err() != nil {
		return nil, ErrInvalidInstructionData
	}
	return &args, nil
}

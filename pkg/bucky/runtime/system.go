package runtime

import (
	"github.com/code-payments/bucky-bank-server/pkg/solana"
	"github.com/code-payments/bucky-bank-server/pkg/solana/system"
)

// processSystemInstruction is the native system program. It supports the
// account creation and transfer commands.
func processSystemInstruction(_ *InvokeContext, accounts []*AccountInfo, data []byte) error {
	command, err := system.GetCommand(data)
	if err != nil {
		return solana.InstructionErrorInvalidInstructionData
	}

	switch command {
	case system.CommandCreateAccount:
		args, err := system.CreateAccountArgsFromBinary(data)
		if err != nil {
			return solana.InstructionErrorInvalidInstructionData
		}
		return processCreateAccount(accounts, args)
	case system.CommandTransfer:
		args, err := system.TransferArgsFromBinary(data)
		if err != nil {
			return solana.InstructionErrorInvalidInstructionData
		}
		return processTransfer(accounts, args)
	default:
		return solana.InstructionErrorInvalidInstructionData
	}
}

func processCreateAccount(accounts []*AccountInfo, args *system.CreateAccountArgs) error {
	if len(accounts) < 2 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}

	funder, created := accounts[0], accounts[1]
	if !funder.IsSigner || !created.IsSigner {
		return solana.InstructionErrorMissingRequiredSignature
	}
	if funder.Account == created.Account {
		return solana.InstructionErrorInvalidArgument
	}

	if !created.IsEmpty() {
		return solana.InstructionErrorAccountAlreadyInUse
	}
	if args.Size > MaxPermittedDataLength {
		return solana.InstructionErrorInvalidRealloc
	}

	if err := debitSystemAccount(funder, args.Lamports); err != nil {
		return err
	}

	created.Lamports += args.Lamports
	created.Data = make([]byte, args.Size)
	created.Owner = cloneKey(args.Owner)
	return nil
}

func processTransfer(accounts []*AccountInfo, args *system.TransferArgs) error {
	if len(accounts) < 2 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}

	source, destination := accounts[0], accounts[1]
	if !source.IsSigner {
		return solana.InstructionErrorMissingRequiredSignature
	}

	if err := debitSystemAccount(source, args.Lamports); err != nil {
		return err
	}

	if destination.Lamports+args.Lamports < destination.Lamports {
		return solana.InstructionErrorArithmeticOverflow
	}
	destination.Lamports += args.Lamports
	return nil
}

func debitSystemAccount(account *AccountInfo, lamports uint64) error {
	if len(account.Data) > 0 || !account.IsOwnedBy(SystemProgramId) {
		return solana.InstructionErrorInvalidArgument
	}
	if account.Lamports < lamports {
		return solana.InstructionErrorInsufficientFunds
	}

	account.Lamports -= lamports
	return nil
}

// Package system encodes and decodes the native system program instructions
// the ledger runtime executes.
package system

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/bucky-bank-server/pkg/solana"
	"github.com/code-payments/bucky-bank-server/pkg/solana/binary"
)

// ProgramKey is 11111111111111111111111111111111.
var ProgramKey [32]byte

// RentSysVar is SysvarRent111111111111111111111111111111111.
var RentSysVar = solana.MustParseAddress("SysvarRent111111111111111111111111111111111")

// ClockSysVar is SysvarC1ock11111111111111111111111111111111.
var ClockSysVar = solana.MustParseAddress("SysvarC1ock11111111111111111111111111111111")

type Command uint32

const (
	CommandCreateAccount Command = 0
	CommandAssign        Command = 1
	CommandTransfer      Command = 2
	CommandAllocate      Command = 8
)

const (
	createAccountDataSize = 4 + 8 + 8 + 32
	transferDataSize      = 4 + 8
)

var ErrUnsupportedCommand = errors.New("unsupported system program command")

// CreateAccount funds, allocates and assigns a new account.
//
//  0. [WRITE, SIGNER] Funding account
//  1. [WRITE, SIGNER] New account
func CreateAccount(funder, address, owner ed25519.PublicKey, lamports, size uint64) solana.Instruction {
	e := binary.NewEncoder(createAccountDataSize)
	e.PutUint32(uint32(CommandCreateAccount))
	e.PutUint64(lamports)
	e.PutUint64(size)
	e.PutKey32(owner)

	return solana.NewInstruction(
		ProgramKey[:],
		e.Bytes(),
		solana.NewAccountMeta(funder, true),
		solana.NewAccountMeta(address, true),
	)
}

// Transfer moves lamports between two system owned accounts.
//
//  0. [WRITE, SIGNER] Source
//  1. [WRITE] Destination
func Transfer(source, destination ed25519.PublicKey, lamports uint64) solana.Instruction {
	e := binary.NewEncoder(transferDataSize)
	e.PutUint32(uint32(CommandTransfer))
	e.PutUint64(lamports)

	return solana.NewInstruction(
		ProgramKey[:],
		e.Bytes(),
		solana.NewAccountMeta(source, true),
		solana.NewAccountMeta(destination, false),
	)
}

// CreateAccountArgs is the decoded CreateAccount payload.
type CreateAccountArgs struct {
	Lamports uint64
	Size     uint64
	Owner    ed25519.PublicKey
}

// TransferArgs is the decoded Transfer payload.
type TransferArgs struct {
	Lamports uint64
}

// GetCommand returns the command tag of system instruction data.
func GetCommand(data []byte) (Command, error) {
	var command uint32
	d := binary.NewDecoder(data)
	d.GetUint32(&command)
	if d.Err() != nil {
		return 0, solana.ErrIncorrectInstruction
	}
	return Command(command), nil
}

func CreateAccountArgsFromBinary(data []byte) (*CreateAccountArgs, error) {
	if len(data) != createAccountDataSize {
		return nil, errors.Errorf("invalid create account data size: %d", len(data))
	}
	if command, _ := GetCommand(data); command != CommandCreateAccount {
		return nil, solana.ErrIncorrectInstruction
	}

	var args CreateAccountArgs
	d := binary.NewDecoder(data[4:])
	d.GetUint64(&args.Lamports)
	d.GetUint64(&args.Size)
	d.GetKey32(&args.Owner)
	return &args, d.Err()
}

func TransferArgsFromBinary(data []byte) (*TransferArgs, error) {
	if len(data) != transferDataSize {
		return nil, errors.Errorf("invalid transfer data size: %d", len(data))
	}
	if command, _ := GetCommand(data); command != CommandTransfer {
		return nil, solana.ErrIncorrectInstruction
	}

	var args TransferArgs
	d := binary.NewDecoder(data[4:])
	d.GetUint64(&args.Lamports)
	return &args, d.Err()
}

type DecompiledCreateAccount struct {
	Funder  ed25519.PublicKey
	Address ed25519.PublicKey

	CreateAccountArgs
}

// DecompileCreateAccount extracts a CreateAccount from a compiled message.
func DecompileCreateAccount(m solana.Message, index int) (*DecompiledCreateAccount, error) {
	ix, err := decompile(m, index, 2)
	if err != nil {
		return nil, err
	}

	args, err := CreateAccountArgsFromBinary(ix.Data)
	if err != nil {
		return nil, err
	}
	return &DecompiledCreateAccount{
		Funder:            ix.Accounts[0].PublicKey,
		Address:           ix.Accounts[1].PublicKey,
		CreateAccountArgs: *args,
	}, nil
}

type DecompiledTransfer struct {
	Source      ed25519.PublicKey
	Destination ed25519.PublicKey
	Lamports    uint64
}

// DecompileTransfer extracts a Transfer from a compiled message.
func DecompileTransfer(m solana.Message, index int) (*DecompiledTransfer, error) {
	ix, err := decompile(m, index, 2)
	if err != nil {
		return nil, err
	}

	args, err := TransferArgsFromBinary(ix.Data)
	if err != nil {
		return nil, err
	}
	return &DecompiledTransfer{
		Source:      ix.Accounts[0].PublicKey,
		Destination: ix.Accounts[1].PublicKey,
		Lamports:    args.Lamports,
	}, nil
}

func decompile(m solana.Message, index, accounts int) (solana.Instruction, error) {
	ix, err := m.DecompileInstruction(index)
	if err != nil {
		return ix, err
	}
	if !bytes.Equal(ix.Program, ProgramKey[:]) {
		return ix, solana.ErrIncorrectProgram
	}
	if len(ix.Accounts) != accounts {
		return ix, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}
	return ix, nil
}

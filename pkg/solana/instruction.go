package solana

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"
)

var (
	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
)

// AccountMeta describes one account an instruction references.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool

	isPayer   bool
	isProgram bool
}

// NewAccountMeta returns a writable account reference.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: true,
	}
}

// NewReadonlyAccountMeta returns a read-only account reference.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey: pub,
		IsSigner:  isSigner,
	}
}

// accountOrder sorts account metas into message order: payer first, then
// signers before non-signers, writable before read-only, programs last and
// finally by key bytes.
type accountOrder []AccountMeta

func (s accountOrder) Len() int      { return len(s) }
func (s accountOrder) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s accountOrder) Less(i, j int) bool {
	a, b := s[i], s[j]
	switch {
	case a.isPayer != b.isPayer:
		return a.isPayer
	case a.isProgram != b.isProgram:
		return !a.isProgram
	case a.IsSigner != b.IsSigner:
		return a.IsSigner
	case a.IsWritable != b.IsWritable:
		return a.IsWritable
	}
	return bytes.Compare(a.PublicKey, b.PublicKey) < 0
}

// Instruction is a single program invocation prior to compilation.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

// NewInstruction creates a new instruction.
func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// CompiledInstruction is an instruction whose program and accounts have been
// replaced by indexes into the message's account list.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}

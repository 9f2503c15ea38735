package runtime

import (
	"crypto/ed25519"
)

// Program is an on-ledger program the runtime can dispatch instructions to.
type Program interface {
	// Id is the address instructions use to invoke the program
	Id() ed25519.PublicKey

	// Name is a human readable program name used in logs and metrics
	Name() string

	// Process executes a single instruction. Accounts are provided in the
	// order the instruction references them. Any returned error aborts the
	// entire transaction.
	//
	// Errors implementing Code() uint32 surface as custom instruction errors.
	// A solana.InstructionErrorKey surfaces as the matching built-in error.
	Process(ctx *InvokeContext, accounts []*AccountInfo, data []byte) error

	// DescribeEvent extracts the indexable fields of an event the program
	// emitted.
	DescribeEvent(data []byte) (eventType string, subject ed25519.PublicKey, err error)
}

type codedError interface {
	Code() uint32
}

package runtime

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"math/bits"

	"github.com/mr-tron/base58"

	"github.com/code-payments/bucky-bank-server/pkg/solana"
)

const (
	// MaxInvokeDepth bounds nested cross-program invocations, including the
	// top level instruction
	MaxInvokeDepth = 4

	programLogPrefix  = "Program log: "
	programDataPrefix = "Program data: "
)

// Event is raw event data emitted by a program
type Event struct {
	InstructionIndex uint8
	Index            uint32
	Program          ed25519.PublicKey
	Data             []byte
}

type processor func(ctx *InvokeContext, accounts []*AccountInfo, data []byte) error

type frame struct {
	program  ed25519.PublicKey
	accounts []*AccountInfo
	pre      map[*Account]accountSnapshot
}

func newFrame(program ed25519.PublicKey, accounts []*AccountInfo) *frame {
	f := &frame{
		program:  program,
		accounts: accounts,
	}
	f.snapshot()
	return f
}

func (f *frame) snapshot() {
	f.pre = make(map[*Account]accountSnapshot, len(f.accounts))
	for _, info := range f.accounts {
		if _, ok := f.pre[info.Account]; !ok {
			f.pre[info.Account] = info.snapshot()
		}
	}
}

func (f *frame) privileges(account *Account) (isSigner, isWritable bool) {
	for _, info := range f.accounts {
		if info.Account == account {
			isSigner = isSigner || info.IsSigner
			isWritable = isWritable || info.IsWritable
		}
	}
	return isSigner, isWritable
}

// verify enforces the account rules for everything the frame's program did
// since the last snapshot.
func (f *frame) verify() error {
	var preHi, preLo, postHi, postLo uint64
	var carry uint64

	for account, pre := range f.pre {
		_, isWritable := f.privileges(account)
		isOwner := bytes.Equal(pre.owner, f.program)

		preLo, carry = bits.Add64(preLo, pre.lamports, 0)
		preHi += carry
		postLo, carry = bits.Add64(postLo, account.Lamports, 0)
		postHi += carry

		if account.executable {
			if !account.matches(pre) {
				return solana.InstructionErrorExecutableModified
			}
			continue
		}

		if !bytes.Equal(pre.owner, account.Owner) {
			if !isWritable || !isOwner || !isZeroed(account.Data) {
				return solana.InstructionErrorModifiedProgramID
			}
		}

		if pre.lamports != account.Lamports {
			if !isWritable {
				return solana.InstructionErrorReadonlyLamportChange
			}
			if account.Lamports < pre.lamports && !isOwner {
				return solana.InstructionErrorExternalAccountLamportSpend
			}
		}

		if len(pre.data) != len(account.Data) {
			if !isWritable || !isOwner {
				return solana.InstructionErrorAccountDataSizeChanged
			}
			if len(account.Data) > len(pre.data)+MaxPermittedDataIncrease || len(account.Data) > MaxPermittedDataLength {
				return solana.InstructionErrorInvalidRealloc
			}
		}

		if !bytes.Equal(pre.data, account.Data) {
			if !isWritable {
				return solana.InstructionErrorReadonlyDataModified
			}
			if !isOwner {
				return solana.InstructionErrorExternalAccountDataModified
			}
		}
	}

	if preHi != postHi || preLo != postLo {
		return solana.InstructionErrorUnbalancedInstruction
	}
	return nil
}

// InvokeContext is the environment a program instruction executes within.
type InvokeContext struct {
	ctx     context.Context
	runtime *Runtime
	exec    *execution

	clock            ClockSysvar
	instructionIndex int
	stack            []*frame
}

type execution struct {
	logs   []string
	events []Event
}

// Context returns the context of the transaction being executed
func (c *InvokeContext) Context() context.Context {
	return c.ctx
}

// Clock returns the cluster time for the transaction
func (c *InvokeContext) Clock() ClockSysvar {
	return c.clock
}

// ProgramId returns the currently executing program
func (c *InvokeContext) ProgramId() ed25519.PublicKey {
	return c.currentFrame().program
}

// InstructionIndex returns the index of the top level instruction being
// executed
func (c *InvokeContext) InstructionIndex() int {
	return c.instructionIndex
}

// StackHeight returns the current invocation depth, starting at 1
func (c *InvokeContext) StackHeight() int {
	return len(c.stack)
}

// Log appends a program log line to the transaction
func (c *InvokeContext) Log(format string, args ...interface{}) {
	c.exec.logs = append(c.exec.logs, programLogPrefix+fmt.Sprintf(format, args...))
}

// EmitEvent records an event for the transaction and logs it in its base64
// form. Events are only persisted when the transaction succeeds.
func (c *InvokeContext) EmitEvent(data []byte) {
	var index uint32
	for _, event := range c.exec.events {
		if int(event.InstructionIndex) == c.instructionIndex {
			index++
		}
	}

	c.exec.events = append(c.exec.events, Event{
		InstructionIndex: uint8(c.instructionIndex),
		Index:            index,
		Program:          cloneKey(c.ProgramId()),
		Data:             cloneBytes(data),
	})
	c.exec.logs = append(c.exec.logs, programDataPrefix+base64.StdEncoding.EncodeToString(data))
}

// InvokeSigned invokes another program from within the current instruction.
//
// Each set of signer seeds derives a program address of the calling program,
// which is granted signer privileges for the callee.
func (c *InvokeContext) InvokeSigned(ix solana.Instruction, signerSeeds ...[][]byte) error {
	caller := c.currentFrame()

	if len(c.stack) >= MaxInvokeDepth {
		return solana.InstructionErrorCallDepth
	}

	process, ok := c.runtime.processorFor(ix.Program)
	if !ok {
		return solana.InstructionErrorUnsupportedProgramID
	}

	var programFound bool
	for _, info := range caller.accounts {
		if bytes.Equal(info.Key, ix.Program) {
			programFound = true
			break
		}
	}
	if !programFound {
		return solana.InstructionErrorMissingAccount
	}

	var pdaSigners []ed25519.PublicKey
	for _, seeds := range signerSeeds {
		pda, err := solana.CreateProgramAddress(caller.program, seeds...)
		if err != nil {
			return solana.InstructionErrorInvalidSeeds
		}
		pdaSigners = append(pdaSigners, pda)
	}

	callee := make([]*AccountInfo, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		var account *Account
		for _, info := range caller.accounts {
			if bytes.Equal(info.Key, meta.PublicKey) {
				account = info.Account
				break
			}
		}
		if account == nil {
			return solana.InstructionErrorMissingAccount
		}

		isSigner, isWritable := caller.privileges(account)
		if meta.IsWritable && !isWritable {
			return solana.InstructionErrorPrivilegeEscalation
		}
		if meta.IsSigner && !isSigner && !containsKey(pdaSigners, meta.PublicKey) {
			return solana.InstructionErrorPrivilegeEscalation
		}

		callee[i] = &AccountInfo{
			Account:    account,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
		}
	}

	if err := caller.verify(); err != nil {
		return err
	}

	err := c.invoke(ix.Program, process, callee, ix.Data)
	caller.snapshot()
	return err
}

func (c *InvokeContext) invoke(program ed25519.PublicKey, process processor, accounts []*AccountInfo, data []byte) error {
	f := newFrame(program, accounts)

	c.stack = append(c.stack, f)
	defer func() {
		c.stack = c.stack[:len(c.stack)-1]
	}()

	id := base58.Encode(program)
	c.exec.logs = append(c.exec.logs, fmt.Sprintf("Program %s invoke [%d]", id, len(c.stack)))

	err := process(c, accounts, data)
	if err == nil {
		err = f.verify()
	}

	if err != nil {
		c.exec.logs = append(c.exec.logs, fmt.Sprintf("Program %s failed: %s", id, describeError(err)))
		return err
	}

	c.exec.logs = append(c.exec.logs, fmt.Sprintf("Program %s success", id))
	return nil
}

func (c *InvokeContext) currentFrame() *frame {
	return c.stack[len(c.stack)-1]
}

func describeError(err error) string {
	return toInstructionError(0, err).Err.Error()
}

func containsKey(keys []ed25519.PublicKey, target ed25519.PublicKey) bool {
	for _, key := range keys {
		if bytes.Equal(key, target) {
			return true
		}
	}
	return false
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

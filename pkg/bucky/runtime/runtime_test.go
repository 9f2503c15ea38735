package runtime

import (
	"context"
	"crypto/ed25519"
	"sync"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data"
	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/ledger"
	"github.com/code-payments/bucky-bank-server/pkg/database/query"
	"github.com/code-payments/bucky-bank-server/pkg/solana"
	"github.com/code-payments/bucky-bank-server/pkg/solana/system"
)

const (
	testCommandWrite byte = iota
	testCommandSteal
	testCommandCreate
	testCommandFail
	testCommandPanic
	testCommandEmit
	testCommandBlock
)

var testSeed = []byte("test")

type testProgram struct {
	id ed25519.PublicKey

	blockOnce sync.Once
	blocked   chan struct{}
	release   chan struct{}
}

type testCodedError uint32

func (e testCodedError) Error() string { return "coded" }
func (e testCodedError) Code() uint32  { return uint32(e) }

func (p *testProgram) Id() ed25519.PublicKey { return p.id }
func (p *testProgram) Name() string          { return "test" }

func (p *testProgram) Process(ctx *InvokeContext, accounts []*AccountInfo, data []byte) error {
	switch data[0] {
	case testCommandWrite:
		accounts[0].Data = append([]byte{}, data[1:]...)
	case testCommandSteal:
		accounts[0].Lamports -= 1
		accounts[1].Lamports += 1
	case testCommandCreate:
		pda, bump, err := solana.FindProgramAddressAndBump(p.id, testSeed)
		if err != nil {
			return err
		}
		ix := system.CreateAccount(accounts[0].Key, pda, p.id, uint64(data[1])*1_000_000, 16)
		return ctx.InvokeSigned(ix, [][]byte{testSeed, {bump}})
	case testCommandFail:
		return testCodedError(6042)
	case testCommandPanic:
		panic("boom")
	case testCommandEmit:
		ctx.Log("emitting %d", len(data))
		ctx.EmitEvent(append([]byte{1, 2, 3, 4, 5, 6, 7, 8}, accounts[0].Key...))
	case testCommandBlock:
		p.blockOnce.Do(func() { close(p.blocked) })
		<-p.release
	}
	return nil
}

func (p *testProgram) DescribeEvent(data []byte) (string, ed25519.PublicKey, error) {
	if len(data) < 8+ed25519.PublicKeySize {
		return "", nil, errors.New("invalid event")
	}
	return "TestEvent", data[8:], nil
}

type testEnv struct {
	ctx     context.Context
	data    data.Provider
	clock   *ManualClock
	runtime *Runtime
	program *testProgram
	payer   ed25519.PrivateKey
}

func setup(t *testing.T, overrides *TestOverrides) *testEnv {
	ctx := context.Background()
	provider := data.NewTestDatabaseProvider()
	clock := NewManualClock(time.Unix(1_700_000_000, 0))

	if overrides == nil {
		overrides = &TestOverrides{}
	}

	r, err := New(ctx, provider, clock, WithTestOverrides(overrides))
	require.NoError(t, err)

	program := &testProgram{
		id:      newKey(t).Public().(ed25519.PublicKey),
		blocked: make(chan struct{}),
		release: make(chan struct{}),
	}
	require.NoError(t, r.RegisterProgram(program))

	payer := newKey(t)
	require.NoError(t, r.Airdrop(ctx, payer.Public().(ed25519.PublicKey), 10_000_000_000))

	return &testEnv{
		ctx:     ctx,
		data:    provider,
		clock:   clock,
		runtime: r,
		program: program,
		payer:   payer,
	}
}

func (e *testEnv) payerKey() ed25519.PublicKey {
	return e.payer.Public().(ed25519.PublicKey)
}

func (e *testEnv) newTransaction(t *testing.T, signers []ed25519.PrivateKey, instructions ...solana.Instruction) *solana.Transaction {
	txn := solana.NewTransaction(e.payerKey(), instructions...)
	txn.SetBlockhash(e.runtime.GetLatestBlockhash())
	require.NoError(t, txn.Sign(append([]ed25519.PrivateKey{e.payer}, signers...)...))
	return &txn
}

func (e *testEnv) testInstruction(data []byte, accounts ...solana.AccountMeta) solana.Instruction {
	return solana.NewInstruction(e.program.id, data, accounts...)
}

func (e *testEnv) balance(t *testing.T, key ed25519.PublicKey) uint64 {
	balance, err := e.runtime.GetBalance(e.ctx, key)
	require.NoError(t, err)
	return balance
}

func TestRuntime_SystemTransfer(t *testing.T) {
	env := setup(t, nil)
	destination := newKey(t).Public().(ed25519.PublicKey)

	startSlot := env.runtime.GetSlot()

	txn := env.newTransaction(t, nil, system.Transfer(env.payerKey(), destination, 1_000))
	result, err := env.runtime.Execute(env.ctx, txn)
	require.NoError(t, err)
	require.Nil(t, result.Err)

	assert.Equal(t, txn.Base58Signature(), result.Signature)
	assert.Equal(t, startSlot+1, result.Slot)
	assert.Equal(t, env.clock.Now(), result.BlockTime)
	assert.Equal(t, uint64(10_000_000_000-1_000), env.balance(t, env.payerKey()))
	assert.Equal(t, uint64(1_000), env.balance(t, destination))

	account, err := env.runtime.GetAccount(env.ctx, destination)
	require.NoError(t, err)
	assert.True(t, account.IsOwnedBy(SystemProgramId))

	record, err := env.runtime.GetTransaction(env.ctx, result.Signature)
	require.NoError(t, err)
	assert.False(t, record.HasErrors)
	assert.Equal(t, result.Slot, record.Slot)
	assert.Equal(t, result.Logs, record.Logs)
	assert.Equal(t, []string{
		"Program 11111111111111111111111111111111 invoke [1]",
		"Program 11111111111111111111111111111111 success",
	}, result.Logs)

	var decoded solana.Transaction
	require.NoError(t, decoded.Unmarshal(record.Data))
	assert.Equal(t, txn.Base58Signature(), decoded.Base58Signature())
}

func TestRuntime_InsufficientFunds(t *testing.T) {
	env := setup(t, nil)
	destination := newKey(t).Public().(ed25519.PublicKey)

	txn := env.newTransaction(t, nil, system.Transfer(env.payerKey(), destination, 10_000_000_001))
	result, err := env.runtime.Execute(env.ctx, txn)
	require.NoError(t, err)
	require.NotNil(t, result.Err)
	assert.Equal(t, solana.TransactionErrorInstructionError, result.Err.ErrorKey())
	assert.Equal(t, solana.InstructionErrorInsufficientFunds, result.Err.InstructionError().ErrorKey())

	assert.Equal(t, uint64(10_000_000_000), env.balance(t, env.payerKey()))
	assert.EqualValues(t, 0, env.balance(t, destination))

	record, err := env.runtime.GetTransaction(env.ctx, result.Signature)
	require.NoError(t, err)
	assert.True(t, record.HasErrors)

	parsed, err := solana.ParseTransactionErrorJSON(record.Err)
	require.NoError(t, err)
	assert.Equal(t, solana.InstructionErrorInsufficientFunds, parsed.InstructionError().ErrorKey())
}

func TestRuntime_FailedTransactionIsAtomic(t *testing.T) {
	env := setup(t, nil)
	destination := newKey(t).Public().(ed25519.PublicKey)

	txn := env.newTransaction(
		t,
		nil,
		system.Transfer(env.payerKey(), destination, 5_000),
		env.testInstruction([]byte{testCommandFail}, solana.NewAccountMeta(destination, false)),
	)
	result, err := env.runtime.Execute(env.ctx, txn)
	require.NoError(t, err)
	require.NotNil(t, result.Err)

	custom := result.Err.CustomError()
	require.NotNil(t, custom)
	assert.EqualValues(t, 6042, *custom)
	assert.Equal(t, 1, result.Err.InstructionError().Index)
	assert.Empty(t, result.Events)

	assert.Equal(t, uint64(10_000_000_000), env.balance(t, env.payerKey()))
	_, err = env.runtime.GetAccount(env.ctx, destination)
	assert.Equal(t, ledger.ErrAccountNotFound, err)
}

func TestRuntime_CreateProgramAccountViaInvokeSigned(t *testing.T) {
	env := setup(t, nil)
	pda, _, err := solana.FindProgramAddressAndBump(env.program.id, testSeed)
	require.NoError(t, err)

	txn := env.newTransaction(
		t,
		nil,
		env.testInstruction(
			[]byte{testCommandCreate, 10},
			solana.NewAccountMeta(env.payerKey(), true),
			solana.NewAccountMeta(pda, false),
			solana.NewReadonlyAccountMeta(SystemProgramId, false),
		),
	)
	result, err := env.runtime.Execute(env.ctx, txn)
	require.NoError(t, err)
	require.Nil(t, result.Err)

	account, err := env.runtime.GetAccount(env.ctx, pda)
	require.NoError(t, err)
	assert.True(t, account.IsOwnedBy(env.program.id))
	assert.Equal(t, uint64(10_000_000), account.Lamports)
	assert.Equal(t, make([]byte, 16), account.Data)

	programId := base58.Encode(env.program.id)
	assert.Equal(t, []string{
		"Program " + programId + " invoke [1]",
		"Program 11111111111111111111111111111111 invoke [2]",
		"Program 11111111111111111111111111111111 success",
		"Program " + programId + " success",
	}, result.Logs)

	accounts, err := env.runtime.GetProgramAccounts(env.ctx, env.program.id)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, pda, accounts[0].Key)

	accounts, err = env.runtime.GetProgramAccounts(env.ctx, env.program.id, query.WithLimit(1), query.WithDirection(query.Descending))
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	_, err = env.runtime.GetProgramAccounts(env.ctx, env.program.id, query.WithCursor([]byte{1}))
	assert.Equal(t, query.ErrQueryNotSupported, err)

	// The owning program can write to the account's data
	txn = env.newTransaction(
		t,
		nil,
		env.testInstruction([]byte{testCommandWrite, 1, 2, 3}, solana.NewAccountMeta(pda, false)),
	)
	result, err = env.runtime.Execute(env.ctx, txn)
	require.NoError(t, err)
	require.Nil(t, result.Err)

	account, err = env.runtime.GetAccount(env.ctx, pda)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, account.Data)

	record, err := env.data.GetLedgerAccount(env.ctx, base58.Encode(pda))
	require.NoError(t, err)
	assert.EqualValues(t, 2, record.Version)
	assert.Equal(t, result.Slot, record.Slot)

	// Creating the account again fails
	txn = env.newTransaction(
		t,
		nil,
		env.testInstruction(
			[]byte{testCommandCreate, 11},
			solana.NewAccountMeta(env.payerKey(), true),
			solana.NewAccountMeta(pda, false),
			solana.NewReadonlyAccountMeta(SystemProgramId, false),
		),
	)
	result, err = env.runtime.Execute(env.ctx, txn)
	require.NoError(t, err)
	require.NotNil(t, result.Err)
	assert.Equal(t, solana.InstructionErrorAccountAlreadyInUse, result.Err.InstructionError().ErrorKey())
}

func TestRuntime_RentExemption(t *testing.T) {
	env := setup(t, nil)
	pda, _, err := solana.FindProgramAddressAndBump(env.program.id, testSeed)
	require.NoError(t, err)

	require.True(t, MinimumBalanceForRentExemption(16) > 1_000_000)

	txn := env.newTransaction(
		t,
		nil,
		env.testInstruction(
			[]byte{testCommandCreate, 1},
			solana.NewAccountMeta(env.payerKey(), true),
			solana.NewAccountMeta(pda, false),
			solana.NewReadonlyAccountMeta(SystemProgramId, false),
		),
	)
	result, err := env.runtime.Execute(env.ctx, txn)
	require.NoError(t, err)
	require.NotNil(t, result.Err)
	assert.Equal(t, solana.TransactionErrorInvalidRentPayingAccount, result.Err.ErrorKey())

	_, err = env.runtime.GetAccount(env.ctx, pda)
	assert.Equal(t, ledger.ErrAccountNotFound, err)
}

func TestRuntime_AccountRules(t *testing.T) {
	env := setup(t, nil)
	other := newKey(t).Public().(ed25519.PublicKey)

	// External programs cannot debit accounts they don't own
	txn := env.newTransaction(
		t,
		nil,
		env.testInstruction(
			[]byte{testCommandSteal},
			solana.NewAccountMeta(env.payerKey(), true),
			solana.NewAccountMeta(other, false),
		),
	)
	result, err := env.runtime.Execute(env.ctx, txn)
	require.NoError(t, err)
	require.NotNil(t, result.Err)
	assert.Equal(t, solana.InstructionErrorExternalAccountLamportSpend, result.Err.InstructionError().ErrorKey())

	// Or modify their data
	txn = env.newTransaction(
		t,
		nil,
		env.testInstruction([]byte{testCommandWrite, 1}, solana.NewAccountMeta(other, false)),
	)
	result, err = env.runtime.Execute(env.ctx, txn)
	require.NoError(t, err)
	require.NotNil(t, result.Err)
	assert.Equal(t, solana.InstructionErrorAccountDataSizeChanged, result.Err.InstructionError().ErrorKey())

	// Readonly accounts cannot be modified
	txn = env.newTransaction(
		t,
		nil,
		env.testInstruction([]byte{testCommandWrite, 1}, solana.NewReadonlyAccountMeta(other, false)),
	)
	result, err = env.runtime.Execute(env.ctx, txn)
	require.NoError(t, err)
	require.NotNil(t, result.Err)
	assert.Equal(t, solana.InstructionErrorAccountDataSizeChanged, result.Err.InstructionError().ErrorKey())

	// Panics abort the transaction
	txn = env.newTransaction(
		t,
		nil,
		env.testInstruction([]byte{testCommandPanic}),
	)
	result, err = env.runtime.Execute(env.ctx, txn)
	require.NoError(t, err)
	require.NotNil(t, result.Err)
	assert.Equal(t, solana.InstructionErrorGenericError, result.Err.InstructionError().ErrorKey())

	assert.Equal(t, uint64(10_000_000_000), env.balance(t, env.payerKey()))
}

func TestRuntime_InvokeSignedPrivilegeEscalation(t *testing.T) {
	env := setup(t, nil)
	pda, _, err := solana.FindProgramAddressAndBump(env.program.id, testSeed)
	require.NoError(t, err)

	funder := newKey(t).Public().(ed25519.PublicKey)
	require.NoError(t, env.runtime.Airdrop(env.ctx, funder, 1_000_000_000))

	// The funder didn't sign the transaction
	txn := env.newTransaction(
		t,
		nil,
		env.testInstruction(
			[]byte{testCommandCreate, 10},
			solana.NewAccountMeta(funder, false),
			solana.NewAccountMeta(pda, false),
			solana.NewReadonlyAccountMeta(SystemProgramId, false),
		),
	)
	result, err := env.runtime.Execute(env.ctx, txn)
	require.NoError(t, err)
	require.NotNil(t, result.Err)
	assert.Equal(t, solana.InstructionErrorPrivilegeEscalation, result.Err.InstructionError().ErrorKey())

	// The system program isn't passed to the outer instruction
	txn = env.newTransaction(
		t,
		nil,
		env.testInstruction(
			[]byte{testCommandCreate, 10},
			solana.NewAccountMeta(env.payerKey(), true),
			solana.NewAccountMeta(pda, false),
		),
	)
	result, err = env.runtime.Execute(env.ctx, txn)
	require.NoError(t, err)
	require.NotNil(t, result.Err)
	assert.Equal(t, solana.InstructionErrorMissingAccount, result.Err.InstructionError().ErrorKey())
}

func TestRuntime_Events(t *testing.T) {
	env := setup(t, nil)
	subject := newKey(t).Public().(ed25519.PublicKey)

	txn := env.newTransaction(
		t,
		nil,
		env.testInstruction([]byte{testCommandEmit}, solana.NewReadonlyAccountMeta(subject, false)),
		env.testInstruction([]byte{testCommandEmit, 0}, solana.NewReadonlyAccountMeta(subject, false)),
	)
	result, err := env.runtime.Execute(env.ctx, txn)
	require.NoError(t, err)
	require.Nil(t, result.Err)
	require.Len(t, result.Events, 2)

	assert.EqualValues(t, 0, result.Events[0].InstructionIndex)
	assert.EqualValues(t, 1, result.Events[1].InstructionIndex)
	assert.EqualValues(t, 0, result.Events[1].Index)
	assert.Contains(t, result.Logs, "Program log: emitting 1")
	assert.Contains(t, result.Logs, "Program log: emitting 2")

	records, err := env.data.GetAllEventsByBank(env.ctx, base58.Encode(subject))
	require.NoError(t, err)
	require.Len(t, records, 2)
	for i, record := range records {
		assert.Equal(t, result.Signature, record.Signature)
		assert.Equal(t, result.Slot, record.Slot)
		assert.Equal(t, "TestEvent", record.EventType)
		assert.EqualValues(t, i, record.InstructionIndex)
		assert.Equal(t, result.Events[i].Data, record.Data)
	}
}

func TestRuntime_SanitizeFailures(t *testing.T) {
	env := setup(t, nil)
	destination := newKey(t).Public().(ed25519.PublicKey)

	// Tampered signature
	txn := env.newTransaction(t, nil, system.Transfer(env.payerKey(), destination, 1))
	txn.Signatures[0][0] ^= 0xff
	_, err := env.runtime.Execute(env.ctx, txn)
	assertTransactionError(t, err, solana.TransactionErrorSignatureFailure)

	// Unknown blockhash
	txn = env.newTransaction(t, nil, system.Transfer(env.payerKey(), destination, 1))
	txn.SetBlockhash(solana.Blockhash{1, 2, 3})
	require.NoError(t, txn.Sign(env.payer))
	_, err = env.runtime.Execute(env.ctx, txn)
	assertTransactionError(t, err, solana.TransactionErrorBlockhashNotFound)

	// Unknown program
	unknown := newKey(t).Public().(ed25519.PublicKey)
	txn = env.newTransaction(t, nil, solana.NewInstruction(unknown, []byte{0}))
	_, err = env.runtime.Execute(env.ctx, txn)
	assertTransactionError(t, err, solana.TransactionErrorProgramAccountNotFound)

	// Payer doesn't exist
	unfunded := newKey(t)
	unfundedTxn := solana.NewTransaction(unfunded.Public().(ed25519.PublicKey), system.Transfer(unfunded.Public().(ed25519.PublicKey), destination, 1))
	unfundedTxn.SetBlockhash(env.runtime.GetLatestBlockhash())
	require.NoError(t, unfundedTxn.Sign(unfunded))
	_, err = env.runtime.Execute(env.ctx, &unfundedTxn)
	assertTransactionError(t, err, solana.TransactionErrorAccountNotFound)

	// Too many accounts
	limited := setup(t, &TestOverrides{MaxTransactionAccounts: 2})
	txn = limited.newTransaction(t, nil, system.Transfer(limited.payerKey(), destination, 1))
	_, err = limited.runtime.Execute(limited.ctx, txn)
	assertTransactionError(t, err, solana.TransactionErrorTooManyAccountLocks)

	// Instruction indices past 255 can't be attributed to events
	transfers := make([]solana.Instruction, maxInstructions+1)
	for i := range transfers {
		transfers[i] = system.Transfer(env.payerKey(), destination, 1)
	}
	txn = env.newTransaction(t, nil, transfers...)
	_, err = env.runtime.Execute(env.ctx, txn)
	assertTransactionError(t, err, solana.TransactionErrorSanitizeFailure)

	// None of the rejected transactions were recorded
	assert.EqualValues(t, 0, env.balance(t, destination))
}

func TestRuntime_AlreadyProcessed(t *testing.T) {
	env := setup(t, nil)
	destination := newKey(t).Public().(ed25519.PublicKey)

	txn := env.newTransaction(t, nil, system.Transfer(env.payerKey(), destination, 1))
	result, err := env.runtime.Execute(env.ctx, txn)
	require.NoError(t, err)
	require.Nil(t, result.Err)

	_, err = env.runtime.Execute(env.ctx, txn)
	assertTransactionError(t, err, solana.TransactionErrorAlreadyProcessed)
	assert.EqualValues(t, 1, env.balance(t, destination))
}

func TestRuntime_BlockhashExpiry(t *testing.T) {
	env := setup(t, nil)
	destination := newKey(t).Public().(ed25519.PublicKey)

	stale := env.runtime.GetLatestBlockhash()
	for i := 0; i < MaxRecentBlockhashes; i++ {
		env.runtime.nextSlot()
	}

	txn := solana.NewTransaction(env.payerKey(), system.Transfer(env.payerKey(), destination, 1))
	txn.SetBlockhash(stale)
	require.NoError(t, txn.Sign(env.payer))

	_, err := env.runtime.Execute(env.ctx, &txn)
	assertTransactionError(t, err, solana.TransactionErrorBlockhashNotFound)
}

func TestRuntime_SlotResumesFromStore(t *testing.T) {
	env := setup(t, nil)
	destination := newKey(t).Public().(ed25519.PublicKey)

	txn := env.newTransaction(t, nil, system.Transfer(env.payerKey(), destination, 1))
	result, err := env.runtime.Execute(env.ctx, txn)
	require.NoError(t, err)

	restarted, err := New(env.ctx, env.data, env.clock, WithTestOverrides(&TestOverrides{}))
	require.NoError(t, err)
	assert.Equal(t, result.Slot, restarted.GetSlot())
	assert.Equal(t, env.runtime.GetLatestBlockhash(), restarted.GetLatestBlockhash())
}

func TestRuntime_AccountLocking(t *testing.T) {
	env := setup(t, &TestOverrides{LockTimeout: 50 * time.Millisecond})
	shared := newKey(t).Public().(ed25519.PublicKey)

	blocking := env.newTransaction(
		t,
		nil,
		env.testInstruction([]byte{testCommandBlock}, solana.NewAccountMeta(shared, false)),
	)

	done := make(chan error, 1)
	go func() {
		_, err := env.runtime.Execute(env.ctx, blocking)
		done <- err
	}()
	<-env.program.blocked

	// A conflicting transaction times out waiting for the lock
	conflicting := env.newTransaction(t, nil, system.Transfer(env.payerKey(), shared, 1))
	_, err := env.runtime.Execute(env.ctx, conflicting)
	assert.True(t, errors.Is(err, ErrAccountInUse))

	close(env.program.release)
	require.NoError(t, <-done)

	// And succeeds once the lock is released
	conflicting = env.newTransaction(t, nil, system.Transfer(env.payerKey(), shared, 2))
	result, err := env.runtime.Execute(env.ctx, conflicting)
	require.NoError(t, err)
	require.Nil(t, result.Err)
}

func TestRuntime_Airdrop(t *testing.T) {
	env := setup(t, &TestOverrides{AirdropRateLimit: 1})
	key := newKey(t).Public().(ed25519.PublicKey)

	require.NoError(t, env.runtime.Airdrop(env.ctx, key, 1_000))
	assert.EqualValues(t, 1_000, env.balance(t, key))

	assert.Equal(t, ErrAirdropRateLimited, env.runtime.Airdrop(env.ctx, key, 1_000))

	other := newKey(t).Public().(ed25519.PublicKey)
	assert.True(t, errors.Is(env.runtime.Airdrop(env.ctx, other, 0), ErrInvalidAirdrop))
	assert.True(t, errors.Is(env.runtime.Airdrop(env.ctx, other, defaultMaxAirdropLamports+1), ErrInvalidAirdrop))
	assert.True(t, errors.Is(env.runtime.Airdrop(env.ctx, env.program.id, 1), ErrInvalidAirdrop))
}

func TestRuntime_RegisterProgram(t *testing.T) {
	env := setup(t, nil)

	assert.Error(t, env.runtime.RegisterProgram(env.program))
	assert.Error(t, env.runtime.RegisterProgram(&testProgram{id: SystemProgramId}))
}

func assertTransactionError(t *testing.T, err error, expected solana.TransactionErrorKey) {
	require.Error(t, err)

	var txErr *solana.TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, expected, txErr.ErrorKey())
}

func newKey(t *testing.T) ed25519.PrivateKey {
	_, key, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return key
}

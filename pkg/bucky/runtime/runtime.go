package runtime

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data"
	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/event"
	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/ledger"
	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/transaction"
	"github.com/code-payments/bucky-bank-server/pkg/database/query"
	"github.com/code-payments/bucky-bank-server/pkg/metrics"
	"github.com/code-payments/bucky-bank-server/pkg/rate"
	"github.com/code-payments/bucky-bank-server/pkg/retry"
	"github.com/code-payments/bucky-bank-server/pkg/retry/backoff"
	"github.com/code-payments/bucky-bank-server/pkg/solana"
	sync_util "github.com/code-payments/bucky-bank-server/pkg/sync"
)

// Result is the outcome of a transaction that was executed and recorded.
// A non-nil Err means no account changes were committed.
type Result struct {
	Signature string
	Slot      uint64
	BlockTime time.Time

	Err *solana.TransactionError

	Logs   []string
	Events []Event
}

// Runtime executes signed transactions against the ledger account store.
//
// Transactions that touch disjoint writable accounts execute concurrently.
// Multiple runtimes may share a postgres-backed store, in which case
// conflicting commits are rejected with ledger.ErrStaleAccountState.
type Runtime struct {
	log  *logrus.Entry
	conf *conf
	data data.Provider

	clock Clock

	locks          *sync_util.StripedLock
	airdropLimiter rate.Limiter

	programsMu sync.RWMutex
	programs   map[string]Program

	slotMu      sync.Mutex
	slot        uint64
	blockhashes *recentBlockhashes
}

func New(ctx context.Context, data data.Provider, clock Clock, configProvider ConfigProvider) (*Runtime, error) {
	conf := configProvider()

	latestSlot, err := data.GetLatestSlot(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error getting latest slot")
	}

	return &Runtime{
		log:  logrus.StandardLogger().WithField("type", "bucky/runtime"),
		conf: conf,
		data: data,

		clock: clock,

		locks:          sync_util.NewStripedLock(uint(conf.lockStripes.Get(ctx))),
		airdropLimiter: rate.NewKeyedLimiter(conf.airdropRateLimit.Get(ctx)),

		programs: make(map[string]Program),

		slot:        latestSlot,
		blockhashes: newRecentBlockhashes(latestSlot),
	}, nil
}

// RegisterProgram makes a program invokable by transactions
func (r *Runtime) RegisterProgram(program Program) error {
	id := base58.Encode(program.Id())
	if bytes.Equal(program.Id(), SystemProgramId) {
		return errors.New("cannot replace the system program")
	}

	r.programsMu.Lock()
	defer r.programsMu.Unlock()

	if _, ok := r.programs[id]; ok {
		return errors.Errorf("program %s already registered", id)
	}

	r.programs[id] = program
	return nil
}

// Execute sanitizes, executes and commits a signed transaction.
//
// Transactions that are rejected before execution (invalid signatures,
// unknown blockhash, already processed, etc.) return a *solana.TransactionError
// error and are not recorded. Transactions that fail during execution are
// recorded and return a Result with Err set.
func (r *Runtime) Execute(ctx context.Context, txn *solana.Transaction) (*Result, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Execute")
	defer tracer.End()

	start := time.Now()
	signature := txn.Base58Signature()
	tracer.AddAttribute("signature", signature)

	log := r.log.WithFields(logrus.Fields{
		"method":    "Execute",
		"signature": signature,
	})

	instructions, err := r.sanitize(ctx, txn)
	if err != nil {
		log.WithError(err).Debug("transaction failed sanitization")
		tracer.OnError(err)
		return nil, err
	}

	unlock, err := r.lockAccounts(ctx, &txn.Message)
	if err != nil {
		log.WithError(err).Debug("failed to lock transaction accounts")
		tracer.OnError(err)
		return nil, err
	}
	defer unlock()

	_, err = r.data.GetTransaction(ctx, signature)
	if err == nil {
		return nil, solana.NewTransactionError(solana.TransactionErrorAlreadyProcessed)
	} else if err != transaction.ErrNotFound {
		log.WithError(err).Warn("failure checking for existing transaction")
		tracer.OnError(err)
		return nil, err
	}

	loaded, err := r.loadAccounts(ctx, &txn.Message)
	if err != nil {
		log.WithError(err).Warn("failure loading transaction accounts")
		tracer.OnError(err)
		return nil, err
	}
	if loaded.list[0].record == nil {
		return nil, solana.NewTransactionError(solana.TransactionErrorAccountNotFound)
	}

	blockTime := r.clock.Now()
	slot := r.nextSlot()

	exec := &execution{}
	txErr := r.process(ctx, instructions, loaded, ClockSysvar{Slot: slot, UnixTimestamp: blockTime.Unix()}, exec)
	if txErr == nil {
		txErr = loaded.checkRent()
	}

	record := &transaction.Record{
		Signature: signature,
		Slot:      slot,
		BlockTime: blockTime,
		Data:      txn.Marshal(),
		Logs:      exec.logs,
	}
	if txErr != nil {
		encoded, err := txErr.JSONString()
		if err != nil {
			return nil, errors.Wrap(err, "error encoding transaction error")
		}

		record.HasErrors = true
		record.Err = encoded
	}

	var events []*event.Record
	if txErr == nil {
		events = r.toEventRecords(log, signature, slot, exec.events)
	}

	err = r.data.ExecuteInTx(ctx, sql.LevelDefault, func(ctx context.Context) error {
		if txErr == nil {
			changed := loaded.changedRecords(slot)
			if len(changed) > 0 {
				if err := r.data.SaveLedgerAccounts(ctx, changed...); err != nil {
					return err
				}
			}
		}

		if err := r.data.PutTransaction(ctx, record); err != nil {
			return err
		}

		if len(events) > 0 {
			return r.data.AppendEvents(ctx, events...)
		}
		return nil
	})
	if err == transaction.ErrExists {
		return nil, solana.NewTransactionError(solana.TransactionErrorAlreadyProcessed)
	} else if err == ledger.ErrStaleAccountState {
		log.Debug("transaction accounts were modified concurrently")
		return nil, err
	} else if err != nil {
		log.WithError(err).Warn("failure committing transaction")
		tracer.OnError(err)
		return nil, err
	}

	result := &Result{
		Signature: signature,
		Slot:      slot,
		BlockTime: blockTime,
		Err:       txErr,
		Logs:      exec.logs,
	}
	if txErr == nil {
		result.Events = exec.events
	} else {
		log.WithError(txErr).Debug("transaction failed")
	}

	recordTransactionExecutedEvent(ctx, len(instructions), txErr, time.Since(start))
	return result, nil
}

// Airdrop credits lamports to an account. It's only intended for local and
// test ledgers.
func (r *Runtime) Airdrop(ctx context.Context, address ed25519.PublicKey, lamports uint64) error {
	log := r.log.WithFields(logrus.Fields{
		"method":   "Airdrop",
		"address":  base58.Encode(address),
		"lamports": lamports,
	})

	if len(address) != ed25519.PublicKeySize {
		return errors.Wrap(ErrInvalidAirdrop, "invalid address")
	}
	if lamports == 0 || lamports > r.conf.maxAirdropLamports.Get(ctx) {
		return errors.Wrapf(ErrInvalidAirdrop, "invalid lamports %d", lamports)
	}
	if r.isProgram(address) {
		return errors.Wrap(ErrInvalidAirdrop, "cannot airdrop to a program")
	}

	allowed, err := r.airdropLimiter.Allow(base58.Encode(address))
	if err != nil {
		return err
	} else if !allowed {
		return ErrAirdropRateLimited
	}

	set := r.locks.NewKeySet()
	r.locks.Add(set, address, true)
	unlock, err := r.acquire(ctx, set)
	if err != nil {
		return err
	}
	defer unlock()

	record, err := r.data.GetLedgerAccount(ctx, base58.Encode(address))
	if err == ledger.ErrAccountNotFound {
		record = &ledger.Record{
			Address: base58.Encode(address),
			Owner:   base58.Encode(SystemProgramId),
		}
	} else if err != nil {
		log.WithError(err).Warn("failure getting account")
		return err
	}

	if record.Lamports+lamports < record.Lamports {
		return errors.Wrap(ErrInvalidAirdrop, "balance overflow")
	}

	record.Lamports += lamports
	record.Slot = r.nextSlot()
	if err := r.data.SaveLedgerAccounts(ctx, record); err != nil {
		log.WithError(err).Warn("failure saving account")
		return err
	}

	recordAirdropEvent(ctx, lamports)
	return nil
}

// GetAccount gets the committed state of an account
//
// ledger.ErrAccountNotFound is returned if the account doesn't exist.
func (r *Runtime) GetAccount(ctx context.Context, address ed25519.PublicKey) (*Account, error) {
	record, err := r.data.GetLedgerAccount(ctx, base58.Encode(address))
	if err != nil {
		return nil, err
	}
	return accountFromRecord(address, record)
}

// GetBalance gets the lamports held by an account, which is 0 for accounts
// that don't exist.
func (r *Runtime) GetBalance(ctx context.Context, address ed25519.PublicKey) (uint64, error) {
	account, err := r.GetAccount(ctx, address)
	if err == ledger.ErrAccountNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return account.Lamports, nil
}

// GetProgramAccounts gets committed accounts owned by program using a paged API
func (r *Runtime) GetProgramAccounts(ctx context.Context, program ed25519.PublicKey, opts ...query.Option) ([]*Account, error) {
	records, err := r.data.GetAllLedgerAccountsByOwner(ctx, base58.Encode(program), opts...)
	if err != nil {
		return nil, err
	}

	res := make([]*Account, 0, len(records))
	for _, record := range records {
		key, err := base58.Decode(record.Address)
		if err != nil {
			return nil, err
		}

		account, err := accountFromRecord(key, record)
		if err != nil {
			return nil, err
		}
		res = append(res, account)
	}
	return res, nil
}

// GetTransaction gets a recorded transaction by signature
func (r *Runtime) GetTransaction(ctx context.Context, signature string) (*transaction.Record, error) {
	return r.data.GetTransaction(ctx, signature)
}

// GetSlot returns the latest slot
func (r *Runtime) GetSlot() uint64 {
	r.slotMu.Lock()
	defer r.slotMu.Unlock()
	return r.slot
}

// GetLatestBlockhash returns the blockhash new transactions should reference
func (r *Runtime) GetLatestBlockhash() solana.Blockhash {
	r.slotMu.Lock()
	defer r.slotMu.Unlock()
	return r.blockhashes.bySlot[r.slot]
}

func (r *Runtime) nextSlot() uint64 {
	r.slotMu.Lock()
	defer r.slotMu.Unlock()

	r.slot++
	r.blockhashes.add(r.slot)
	return r.slot
}

func (r *Runtime) isRecentBlockhash(hash solana.Blockhash) bool {
	r.slotMu.Lock()
	defer r.slotMu.Unlock()
	return r.blockhashes.contains(hash)
}

// maxInstructions keeps instruction indices within the uint8 recorded on events
const maxInstructions = 256

func (r *Runtime) sanitize(ctx context.Context, txn *solana.Transaction) ([]solana.Instruction, error) {
	m := &txn.Message

	if len(m.Instructions) > maxInstructions {
		return nil, solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}

	if len(m.Accounts) > int(r.conf.maxTransactionAccounts.Get(ctx)) {
		return nil, solana.NewTransactionError(solana.TransactionErrorTooManyAccountLocks)
	}

	if m.Header.NumSignatures == 0 || len(m.Accounts) == 0 || !m.IsWritable(0) {
		return nil, solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}

	seen := make(map[string]struct{}, len(m.Accounts))
	for _, account := range m.Accounts {
		if len(account) != ed25519.PublicKeySize {
			return nil, solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
		}

		if _, ok := seen[string(account)]; ok {
			return nil, solana.NewTransactionError(solana.TransactionErrorAccountLoadedTwice)
		}
		seen[string(account)] = struct{}{}
	}

	if err := txn.VerifySignatures(); err != nil {
		if errors.Is(err, solana.ErrInvalidSignature) {
			return nil, solana.NewTransactionError(solana.TransactionErrorSignatureFailure)
		}
		return nil, solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}

	if !r.isRecentBlockhash(m.RecentBlockhash) {
		return nil, solana.NewTransactionError(solana.TransactionErrorBlockhashNotFound)
	}

	instructions := make([]solana.Instruction, len(m.Instructions))
	for i := range m.Instructions {
		ix, err := m.DecompileInstruction(i)
		if err != nil {
			return nil, solana.NewTransactionError(solana.TransactionErrorInvalidAccountIndex)
		}

		if _, ok := r.processorFor(ix.Program); !ok {
			return nil, solana.NewTransactionError(solana.TransactionErrorProgramAccountNotFound)
		}

		instructions[i] = ix
	}

	return instructions, nil
}

func (r *Runtime) lockAccounts(ctx context.Context, m *solana.Message) (func(), error) {
	set := r.locks.NewKeySet()
	for i, account := range m.Accounts {
		r.locks.Add(set, account, m.IsWritable(i))
	}
	return r.acquire(ctx, set)
}

func (r *Runtime) acquire(ctx context.Context, set *sync_util.KeySet) (func(), error) {
	var unlock func()
	_, err := retry.Retry(
		func() error {
			var ok bool
			unlock, ok = r.locks.TryLock(set)
			if !ok {
				return ErrAccountInUse
			}
			return nil
		},
		retry.RetriableErrors(ErrAccountInUse),
		retry.Context(ctx),
		retry.Deadline(time.Now().Add(r.conf.lockTimeout.Get(ctx))),
		retry.BackoffWithJitter(backoff.BinaryExponential(time.Millisecond), 50*time.Millisecond, 0.1),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return unlock, nil
}

func (r *Runtime) loadAccounts(ctx context.Context, m *solana.Message) (*loadedAccounts, error) {
	addresses := make([]string, len(m.Accounts))
	for i, account := range m.Accounts {
		addresses[i] = base58.Encode(account)
	}

	records, err := r.data.GetLedgerAccountBatch(ctx, addresses...)
	if err != nil {
		return nil, err
	}

	loaded := &loadedAccounts{
		byKey: make(map[string]*loadedAccount, len(m.Accounts)),
	}
	for i, key := range m.Accounts {
		var account *Account
		record := records[addresses[i]]

		switch {
		case r.isProgram(key):
			account = newProgramAccount(key)
			record = nil
		case record != nil:
			account, err = accountFromRecord(key, record)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid stored account %s", addresses[i])
			}
		default:
			account = newEmptyAccount(key)
		}

		la := &loadedAccount{
			account:  account,
			record:   record,
			original: account.snapshot(),
		}
		loaded.list = append(loaded.list, la)
		loaded.byKey[string(key)] = la
	}
	return loaded, nil
}

func (r *Runtime) process(ctx context.Context, instructions []solana.Instruction, loaded *loadedAccounts, clock ClockSysvar, exec *execution) (txErr *solana.TransactionError) {
	for i, ix := range instructions {
		process, _ := r.processorFor(ix.Program)

		accounts := make([]*AccountInfo, len(ix.Accounts))
		for j, meta := range ix.Accounts {
			accounts[j] = &AccountInfo{
				Account:    loaded.byKey[string(meta.PublicKey)].account,
				IsSigner:   meta.IsSigner,
				IsWritable: meta.IsWritable,
			}
		}

		ictx := &InvokeContext{
			ctx:     ctx,
			runtime: r,
			exec:    exec,

			clock:            clock,
			instructionIndex: i,
		}

		if err := r.invokeTopLevel(ictx, ix, process, accounts); err != nil {
			return solana.TransactionErrorFromInstructionError(toInstructionError(i, err))
		}
	}
	return nil
}

func (r *Runtime) invokeTopLevel(ictx *InvokeContext, ix solana.Instruction, process processor, accounts []*AccountInfo) (err error) {
	defer func() {
		if p := recover(); p != nil {
			r.log.WithFields(logrus.Fields{
				"method":  "invokeTopLevel",
				"program": base58.Encode(ix.Program),
			}).Warn(fmt.Sprintf("program panicked: %v", p))
			err = solana.InstructionErrorGenericError
		}
	}()

	return ictx.invoke(ix.Program, process, accounts, ix.Data)
}

func (r *Runtime) processorFor(program ed25519.PublicKey) (processor, bool) {
	if bytes.Equal(program, SystemProgramId) {
		return processSystemInstruction, true
	}

	r.programsMu.RLock()
	p, ok := r.programs[base58.Encode(program)]
	r.programsMu.RUnlock()
	if !ok {
		return nil, false
	}
	return p.Process, true
}

func (r *Runtime) programFor(program ed25519.PublicKey) (Program, bool) {
	r.programsMu.RLock()
	defer r.programsMu.RUnlock()

	p, ok := r.programs[base58.Encode(program)]
	return p, ok
}

func (r *Runtime) isProgram(key ed25519.PublicKey) bool {
	_, ok := r.processorFor(key)
	return ok
}

func (r *Runtime) toEventRecords(log *logrus.Entry, signature string, slot uint64, events []Event) []*event.Record {
	var res []*event.Record
	for _, emitted := range events {
		program, ok := r.programFor(emitted.Program)
		if !ok {
			continue
		}

		eventType, subject, err := program.DescribeEvent(emitted.Data)
		if err != nil {
			log.WithError(err).Warn("program emitted an undescribable event")
			continue
		}

		res = append(res, &event.Record{
			Signature:        signature,
			Slot:             slot,
			InstructionIndex: emitted.InstructionIndex,
			EventIndex:       emitted.Index,
			EventType:        eventType,
			Bank:             base58.Encode(subject),
			Data:             emitted.Data,
		})
	}
	return res
}

type loadedAccount struct {
	account  *Account
	record   *ledger.Record
	original accountSnapshot
}

type loadedAccounts struct {
	list  []*loadedAccount
	byKey map[string]*loadedAccount
}

// checkRent rejects program owned accounts left below the rent exempt minimum
func (l *loadedAccounts) checkRent() *solana.TransactionError {
	for _, la := range l.list {
		account := la.account
		if account.executable || account.matches(la.original) || account.IsOwnedBy(SystemProgramId) {
			continue
		}

		if account.Lamports == 0 && len(account.Data) == 0 {
			continue
		}

		if !IsRentExempt(account.Lamports, len(account.Data)) {
			return solana.NewTransactionError(solana.TransactionErrorInvalidRentPayingAccount)
		}
	}
	return nil
}

func (l *loadedAccounts) changedRecords(slot uint64) []*ledger.Record {
	var res []*ledger.Record
	for _, la := range l.list {
		account := la.account
		if account.executable || account.matches(la.original) {
			continue
		}

		record := &ledger.Record{Address: base58.Encode(account.Key)}
		if la.record != nil {
			record = la.record.Clone()
		}

		record.Owner = base58.Encode(account.Owner)
		record.Lamports = account.Lamports
		record.Data = cloneBytes(account.Data)
		record.Slot = slot

		res = append(res, record)
	}
	return res
}

package program

import (
	"bytes"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/runtime"
	"github.com/code-payments/bucky-bank-server/pkg/solana/buckybank"
)

// deposit moves lamports from the depositor into the bank's custody. The
// bank completes once its balance reaches the target.
//
// Accounts: [global_stats (writable), bank (writable), depositor (writable,
// signer), system_program]
func (p *Program) deposit(ctx *runtime.InvokeContext, accounts []*runtime.AccountInfo, data []byte) error {
	if err := requireAccounts(accounts, buckybank.DepositInstructionAccountsCount); err != nil {
		return err
	}
	globalStatsInfo, bankInfo, depositor, systemProgram := accounts[0], accounts[1], accounts[2], accounts[3]

	args, err := buckybank.DepositInstructionArgsFromBinary(data)
	if err != nil {
		return buckybank.ErrInstructionDidNotDeserialize
	}

	if err := requireWritable(globalStatsInfo); err != nil {
		return err
	}
	if err := requireWritable(bankInfo); err != nil {
		return err
	}
	if err := requireWritableSigner(depositor); err != nil {
		return err
	}
	if err := requireSystemProgram(systemProgram); err != nil {
		return err
	}

	globalStats, err := loadGlobalStats(globalStatsInfo)
	if err != nil {
		return err
	}
	bank, err := loadBank(bankInfo)
	if err != nil {
		return err
	}

	if args.Amount == 0 {
		return buckybank.ErrInvalidDepositAmount
	}
	if args.Amount < p.conf.minDepositLamports.Get(ctx.Context()) {
		return buckybank.ErrDepositTooSmall
	}
	if bank.Status != buckybank.BankStatusActive {
		return buckybank.ErrBankNotActive
	}
	if p.conf.childOnlyDeposits.Get(ctx.Context()) && !bytes.Equal(depositor.Key, bank.Config.ChildAddress) {
		return buckybank.ErrNotChild
	}

	balance, err := checkedAdd(bank.CurrentBalance, args.Amount)
	if err != nil {
		return err
	}
	depositCount, err := checkedAdd(bank.DepositCount, 1)
	if err != nil {
		return err
	}
	totalDeposits, err := checkedAdd(globalStats.TotalDeposits, args.Amount)
	if err != nil {
		return err
	}

	if err := transfer(ctx, depositor, bankInfo, args.Amount); err != nil {
		return err
	}

	nowMs := ctx.Clock().UnixMilliseconds()

	bank.CurrentBalance = balance
	bank.DepositCount = depositCount
	bank.LastDepositMs = nowMs
	if bank.CurrentBalance >= bank.Config.TargetAmount {
		bank.Status = buckybank.BankStatusCompleted
		ctx.Log("Bank %s reached its target", encodeKey(bankInfo.Key))
	}
	store(bankInfo, bank.Marshal())

	globalStats.TotalDeposits = totalDeposits
	store(globalStatsInfo, globalStats.Marshal())

	p.emit(ctx, &buckybank.DepositMadeEvent{
		BankId:      bankInfo.Key,
		Amount:      args.Amount,
		Depositor:   depositor.Key,
		CreatedAtMs: nowMs,
	})
	return nil
}

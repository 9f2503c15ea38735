package program

import (
	"bytes"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/runtime"
	"github.com/code-payments/bucky-bank-server/pkg/solana/buckybank"
)

// withdraw pays out an approved request to the child. The balance is checked
// again since other withdrawals may have settled after approval.
//
// Accounts: [global_stats (writable), bank (writable), withdrawal_request
// (writable), child (writable, signer), system_program]
func (p *Program) withdraw(ctx *runtime.InvokeContext, accounts []*runtime.AccountInfo, _ []byte) error {
	if err := requireAccounts(accounts, buckybank.WithdrawInstructionAccountsCount); err != nil {
		return err
	}
	globalStatsInfo, bankInfo, requestInfo, child, systemProgram := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4]

	for _, info := range []*runtime.AccountInfo{globalStatsInfo, bankInfo, requestInfo} {
		if err := requireWritable(info); err != nil {
			return err
		}
	}
	if err := requireWritableSigner(child); err != nil {
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
	request, err := loadWithdrawalRequest(requestInfo, bankInfo.Key)
	if err != nil {
		return err
	}

	if !bytes.Equal(child.Key, bank.Config.ChildAddress) || !bytes.Equal(child.Key, request.Requester) {
		return buckybank.ErrNotChild
	}
	if request.Status != buckybank.WithdrawalStatusApproved {
		return buckybank.ErrInvalidRequestStatus
	}
	if !bytes.Equal(request.ApprovedBy, bank.Parent) {
		return buckybank.ErrNotParent
	}
	if request.Amount > bank.CurrentBalance {
		return buckybank.ErrInsufficientFunds
	}

	balance, err := checkedSub(bank.CurrentBalance, request.Amount)
	if err != nil {
		return err
	}
	bankLamports, err := checkedSub(bankInfo.Lamports, request.Amount)
	if err != nil {
		return buckybank.ErrInsufficientFunds
	}
	childLamports, err := checkedAdd(child.Lamports, request.Amount)
	if err != nil {
		return err
	}
	totalWithdrawals, err := checkedAdd(globalStats.TotalWithdrawals, request.Amount)
	if err != nil {
		return err
	}

	// The bank is program owned, so custody is released by debiting it
	// directly rather than through the system program.
	bankInfo.Lamports = bankLamports
	child.Lamports = childLamports

	bank.CurrentBalance = balance
	store(bankInfo, bank.Marshal())

	request.Status = buckybank.WithdrawalStatusWithdrawed
	store(requestInfo, request.Marshal())

	globalStats.TotalWithdrawals = totalWithdrawals
	store(globalStatsInfo, globalStats.Marshal())

	p.emit(ctx, &buckybank.WithdrawalCompletedEvent{
		RequestId:   requestInfo.Key,
		BankId:      bankInfo.Key,
		Amount:      request.Amount,
		LeftBalance: balance,
		Withdrawer:  child.Key,
		CreatedAtMs: ctx.Clock().UnixMilliseconds(),
	})
	return nil
}

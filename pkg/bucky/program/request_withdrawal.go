package program

import (
	"bytes"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/runtime"
	"github.com/code-payments/bucky-bank-server/pkg/solana/buckybank"
)

// requestWithdrawal opens a pending request for the parent to decide on. The
// request address is derived from the bank's request counter, so a child can
// hold any number of requests against the same bank.
//
// Accounts: [bank (writable), withdrawal_request (writable), requester
// (writable, signer), system_program]
func (p *Program) requestWithdrawal(ctx *runtime.InvokeContext, accounts []*runtime.AccountInfo, data []byte) error {
	if err := requireAccounts(accounts, buckybank.RequestWithdrawalInstructionAccountsCount); err != nil {
		return err
	}
	bankInfo, requestInfo, requester, systemProgram := accounts[0], accounts[1], accounts[2], accounts[3]

	args, err := buckybank.RequestWithdrawalInstructionArgsFromBinary(data)
	if err != nil {
		return buckybank.ErrInstructionDidNotDeserialize
	}

	if err := requireWritable(bankInfo); err != nil {
		return err
	}
	if err := requireWritable(requestInfo); err != nil {
		return err
	}
	if err := requireWritableSigner(requester); err != nil {
		return err
	}
	if err := requireSystemProgram(systemProgram); err != nil {
		return err
	}

	bank, err := loadBank(bankInfo)
	if err != nil {
		return err
	}

	requestAddress, requestBump, err := buckybank.GetWithdrawalRequestAddress(&buckybank.GetWithdrawalRequestAddressArgs{
		Bank:      bankInfo.Key,
		Requester: requester.Key,
		Index:     bank.WithdrawalRequestCounter,
	})
	if err != nil {
		return err
	}
	if err := requireAddress(requestInfo, requestAddress); err != nil {
		return err
	}
	if err := requireUninitialized(requestInfo); err != nil {
		return err
	}

	if !bytes.Equal(requester.Key, bank.Config.ChildAddress) {
		return buckybank.ErrNotChildForWithdrawal
	}
	if bank.Status == buckybank.BankStatusFailed {
		return buckybank.ErrBankNotActive
	}
	if args.Amount == 0 {
		return buckybank.ErrInvalidWithdrawalAmount
	}
	if args.Amount > bank.CurrentBalance {
		return buckybank.ErrInsufficientFunds
	}
	if err := validateReason(args.Reason, true); err != nil {
		return err
	}

	counter, err := checkedAdd(bank.WithdrawalRequestCounter, 1)
	if err != nil {
		return err
	}

	err = createProgramAccount(
		ctx,
		requester,
		requestInfo,
		buckybank.WithdrawalRequestAccountSize,
		buckybank.WithdrawalRequestSeed,
		bankInfo.Key,
		requester.Key,
		sequenceSeed(bank.WithdrawalRequestCounter),
		[]byte{requestBump},
	)
	if err != nil {
		return err
	}

	nowMs := ctx.Clock().UnixMilliseconds()

	request := &buckybank.WithdrawalRequestAccount{
		BankId:      bankInfo.Key,
		Requester:   requester.Key,
		Amount:      args.Amount,
		Reason:      args.Reason,
		Status:      buckybank.WithdrawalStatusPending,
		ApprovedBy:  make([]byte, 32),
		CreatedAtMs: nowMs,
	}
	store(requestInfo, request.Marshal())

	bank.WithdrawalRequestCounter = counter
	store(bankInfo, bank.Marshal())

	p.emit(ctx, &buckybank.WithdrawalRequestedEvent{
		RequestId:   requestInfo.Key,
		BankId:      bankInfo.Key,
		Amount:      args.Amount,
		Requester:   requester.Key,
		Reason:      args.Reason,
		Status:      buckybank.WithdrawalStatusPending,
		ApprovedBy:  bank.Parent,
		CreatedAtMs: nowMs,
	})
	return nil
}

package program

import (
	"bytes"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/runtime"
	"github.com/code-payments/bucky-bank-server/pkg/solana/buckybank"
)

// approveWithdrawal records the parent's decision on a pending request. No
// lamports move until the child withdraws.
//
// Accounts: [bank (writable), withdrawal_request (writable), parent
// (writable, signer)]
func (p *Program) approveWithdrawal(ctx *runtime.InvokeContext, accounts []*runtime.AccountInfo, data []byte) error {
	if err := requireAccounts(accounts, buckybank.ApproveWithdrawalInstructionAccountsCount); err != nil {
		return err
	}
	bankInfo, requestInfo, parent := accounts[0], accounts[1], accounts[2]

	args, err := buckybank.ApproveWithdrawalInstructionArgsFromBinary(data)
	if err != nil {
		return buckybank.ErrInstructionDidNotDeserialize
	}

	if err := requireWritable(bankInfo); err != nil {
		return err
	}
	if err := requireWritable(requestInfo); err != nil {
		return err
	}
	if err := requireWritableSigner(parent); err != nil {
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

	if !bytes.Equal(parent.Key, bank.Parent) {
		return buckybank.ErrNotParent
	}
	if request.Status != buckybank.WithdrawalStatusPending {
		return buckybank.ErrInvalidRequestStatus
	}
	if err := validateReason(args.Reason, false); err != nil {
		return err
	}
	if args.Approve && request.Amount > bank.CurrentBalance {
		return buckybank.ErrInsufficientFunds
	}

	nowMs := ctx.Clock().UnixMilliseconds()

	request.ApprovedBy = parent.Key
	request.ApprovedAtMs = nowMs
	if args.Approve {
		request.Status = buckybank.WithdrawalStatusApproved
	} else {
		request.Status = buckybank.WithdrawalStatusRejected
	}
	store(requestInfo, request.Marshal())

	if args.Approve {
		p.emit(ctx, &buckybank.WithdrawalApprovedEvent{
			RequestId:   requestInfo.Key,
			BankId:      bankInfo.Key,
			Amount:      request.Amount,
			ApprovedBy:  parent.Key,
			Requester:   request.Requester,
			Reason:      args.Reason,
			CreatedAtMs: nowMs,
		})
	} else {
		p.emit(ctx, &buckybank.WithdrawalRejectedEvent{
			RequestId:   requestInfo.Key,
			BankId:      bankInfo.Key,
			Amount:      request.Amount,
			Requester:   request.Requester,
			RejectedBy:  parent.Key,
			Reason:      args.Reason,
			CreatedAtMs: nowMs,
		})
	}
	return nil
}

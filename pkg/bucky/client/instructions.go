package client

import (
	"context"
	"crypto/ed25519"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/runtime"
	"github.com/code-payments/bucky-bank-server/pkg/solana/buckybank"
)

// InitializeGlobalStats creates the program's global stats account with
// admin as its administrator. It can only succeed once per ledger.
func (c *Client) InitializeGlobalStats(ctx context.Context, admin ed25519.PrivateKey) (*runtime.Result, error) {
	globalStats, err := c.getGlobalStatsAddress()
	if err != nil {
		return nil, err
	}

	return c.submit(ctx, "InitializeGlobalStats", admin, buckybank.NewInitializeGlobalStatsInstruction(
		&buckybank.InitializeGlobalStatsInstructionAccounts{
			Admin:       publicKey(admin),
			GlobalStats: globalStats,
		},
	))
}

type CreateBankArgs struct {
	Name         string
	TargetAmount uint64
	DurationDays uint64
	Child        ed25519.PublicKey
}

// CreateBank creates a bank owned by owner and returns its address. The
// address is derived from the current bank count, so a bank created
// concurrently by another owner is resolved by resubmitting against the new
// count.
func (c *Client) CreateBank(ctx context.Context, owner ed25519.PrivateKey, args *CreateBankArgs) (ed25519.PublicKey, *runtime.Result, error) {
	globalStatsAddress, err := c.getGlobalStatsAddress()
	if err != nil {
		return nil, nil, err
	}
	index, err := c.GetUserBankIndexAddress(publicKey(owner))
	if err != nil {
		return nil, nil, err
	}

	var bank ed25519.PublicKey
	var result *runtime.Result
	for attempt := uint64(0); ; attempt++ {
		stats, err := c.GetGlobalStats(ctx)
		if err != nil {
			return nil, nil, err
		}

		bank, err = c.GetBankAddress(stats.TotalBanks)
		if err != nil {
			return nil, nil, err
		}

		result, err = c.submit(ctx, "CreateBank", owner, buckybank.NewCreateBankInstruction(
			&buckybank.CreateBankInstructionAccounts{
				Owner:         publicKey(owner),
				GlobalStats:   globalStatsAddress,
				Bank:          bank,
				UserBankIndex: index,
			},
			&buckybank.CreateBankInstructionArgs{
				Name:         args.Name,
				TargetAmount: args.TargetAmount,
				DurationDays: args.DurationDays,
				ChildAddress: args.Child,
			},
		))
		if isProgramError(err, buckybank.ErrConstraintSeeds) && attempt+1 < c.conf.maxSubmitAttempts.Get(ctx) {
			continue
		} else if err != nil {
			return nil, result, err
		}
		return bank, result, nil
	}
}

// Deposit moves amount lamports from depositor into a bank
func (c *Client) Deposit(ctx context.Context, depositor ed25519.PrivateKey, bank ed25519.PublicKey, amount uint64) (*runtime.Result, error) {
	globalStats, err := c.getGlobalStatsAddress()
	if err != nil {
		return nil, err
	}

	return c.submit(ctx, "Deposit", depositor, buckybank.NewDepositInstruction(
		&buckybank.DepositInstructionAccounts{
			GlobalStats: globalStats,
			Bank:        bank,
			Depositor:   publicKey(depositor),
		},
		&buckybank.DepositInstructionArgs{Amount: amount},
	))
}

// RequestWithdrawal creates a pending withdrawal request from child and
// returns its address.
func (c *Client) RequestWithdrawal(ctx context.Context, child ed25519.PrivateKey, bank ed25519.PublicKey, amount uint64, reason string) (ed25519.PublicKey, *runtime.Result, error) {
	var request ed25519.PublicKey
	var result *runtime.Result
	for attempt := uint64(0); ; attempt++ {
		state, err := c.GetBank(ctx, bank)
		if err != nil {
			return nil, nil, err
		}

		request, err = c.GetWithdrawalRequestAddress(bank, publicKey(child), state.WithdrawalRequestCounter)
		if err != nil {
			return nil, nil, err
		}

		result, err = c.submit(ctx, "RequestWithdrawal", child, buckybank.NewRequestWithdrawalInstruction(
			&buckybank.RequestWithdrawalInstructionAccounts{
				Bank:              bank,
				WithdrawalRequest: request,
				Requester:         publicKey(child),
			},
			&buckybank.RequestWithdrawalInstructionArgs{
				Amount: amount,
				Reason: reason,
			},
		))
		if isProgramError(err, buckybank.ErrConstraintSeeds) && attempt+1 < c.conf.maxSubmitAttempts.Get(ctx) {
			continue
		} else if err != nil {
			return nil, result, err
		}
		return request, result, nil
	}
}

// ApproveWithdrawal records the parent's decision on a pending request
func (c *Client) ApproveWithdrawal(ctx context.Context, parent ed25519.PrivateKey, bank, request ed25519.PublicKey, approve bool, reason string) (*runtime.Result, error) {
	return c.submit(ctx, "ApproveWithdrawal", parent, buckybank.NewApproveWithdrawalInstruction(
		&buckybank.ApproveWithdrawalInstructionAccounts{
			Bank:              bank,
			WithdrawalRequest: request,
			Parent:            publicKey(parent),
		},
		&buckybank.ApproveWithdrawalInstructionArgs{
			Approve: approve,
			Reason:  reason,
		},
	))
}

// Withdraw executes an approved request, paying the child
func (c *Client) Withdraw(ctx context.Context, child ed25519.PrivateKey, bank, request ed25519.PublicKey) (*runtime.Result, error) {
	globalStats, err := c.getGlobalStatsAddress()
	if err != nil {
		return nil, err
	}

	return c.submit(ctx, "Withdraw", child, buckybank.NewWithdrawInstruction(
		&buckybank.WithdrawInstructionAccounts{
			GlobalStats:       globalStats,
			Bank:              bank,
			WithdrawalRequest: request,
			Child:             publicKey(child),
		},
	))
}

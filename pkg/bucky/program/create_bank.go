package program

import (
	"bytes"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/runtime"
	"github.com/code-payments/bucky-bank-server/pkg/solana"
	"github.com/code-payments/bucky-bank-server/pkg/solana/buckybank"
)

// createBank creates a bank at the address derived from the next bank
// sequence number and appends it to the owner's bank index.
//
// Accounts: [owner (writable, signer), global_stats (writable), bank (writable),
// user_bank_index (writable), system_program]
func (p *Program) createBank(ctx *runtime.InvokeContext, accounts []*runtime.AccountInfo, data []byte) error {
	if err := requireAccounts(accounts, buckybank.CreateBankInstructionAccountsCount); err != nil {
		return err
	}
	owner, globalStatsInfo, bankInfo, indexInfo, systemProgram := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4]

	args, err := buckybank.CreateBankInstructionArgsFromBinary(data)
	if err != nil {
		return buckybank.ErrInstructionDidNotDeserialize
	}

	if err := requireWritableSigner(owner); err != nil {
		return err
	}
	for _, info := range []*runtime.AccountInfo{globalStatsInfo, bankInfo, indexInfo} {
		if err := requireWritable(info); err != nil {
			return err
		}
	}
	if err := requireSystemProgram(systemProgram); err != nil {
		return err
	}

	globalStats, err := loadGlobalStats(globalStatsInfo)
	if err != nil {
		return err
	}

	sequence := globalStats.TotalBanks
	bankAddress, bankBump, err := buckybank.GetBankAddress(&buckybank.GetBankAddressArgs{Sequence: sequence})
	if err != nil {
		return err
	}
	if err := requireAddress(bankInfo, bankAddress); err != nil {
		return err
	}
	if err := requireUninitialized(bankInfo); err != nil {
		return err
	}

	indexAddress, indexBump, err := buckybank.GetUserBankIndexAddress(&buckybank.GetUserBankIndexAddressArgs{Owner: owner.Key})
	if err != nil {
		return err
	}
	if err := requireAddress(indexInfo, indexAddress); err != nil {
		return err
	}

	if err := validateName(args.Name); err != nil {
		return err
	}
	if args.TargetAmount == 0 {
		return buckybank.ErrInvalidAmount
	}
	if args.DurationDays == 0 {
		return buckybank.ErrInvalidDeadline
	}
	if len(args.ChildAddress) != 32 || solana.IsZeroAddress(args.ChildAddress) || bytes.Equal(args.ChildAddress, owner.Key) {
		return buckybank.ErrInvalidChildAddress
	}

	nowMs := ctx.Clock().UnixMilliseconds()
	durationMs, err := checkedMul(args.DurationDays, buckybank.MillisecondsPerDay)
	if err != nil {
		return err
	}
	deadlineMs, err := checkedAdd(nowMs, durationMs)
	if err != nil {
		return err
	}
	totalBanks, err := checkedAdd(globalStats.TotalBanks, 1)
	if err != nil {
		return err
	}

	err = createProgramAccount(
		ctx,
		owner,
		bankInfo,
		buckybank.BankAccountSize,
		sequenceSeed(sequence),
		[]byte{bankBump},
	)
	if err != nil {
		return err
	}

	bank := &buckybank.BankAccount{
		Parent: owner.Key,
		Config: buckybank.BankConfig{
			Name:         args.Name,
			TargetAmount: args.TargetAmount,
			DeadlineMs:   deadlineMs,
			ChildAddress: args.ChildAddress,
		},
		Status:      buckybank.BankStatusActive,
		CreatedAtMs: nowMs,
	}
	store(bankInfo, bank.Marshal())

	if err := p.appendToUserBankIndex(ctx, owner, indexInfo, indexBump, bankInfo); err != nil {
		return err
	}

	globalStats.TotalBanks = totalBanks
	store(globalStatsInfo, globalStats.Marshal())

	p.emit(ctx, &buckybank.BankCreatedEvent{
		BankId:         bankInfo.Key,
		Name:           args.Name,
		Parent:         owner.Key,
		Child:          args.ChildAddress,
		TargetAmount:   args.TargetAmount,
		CreatedAtMs:    nowMs,
		DeadlineMs:     deadlineMs,
		DurationDays:   args.DurationDays,
		CurrentBalance: 0,
	})
	return nil
}

// appendToUserBankIndex creates the owner's index on their first bank, and
// otherwise grows it by one entry with the owner funding the extra rent.
func (p *Program) appendToUserBankIndex(ctx *runtime.InvokeContext, owner, indexInfo *runtime.AccountInfo, bump uint8, bankInfo *runtime.AccountInfo) error {
	var index *buckybank.UserBankIndexAccount
	if indexInfo.IsEmpty() {
		err := createProgramAccount(
			ctx,
			owner,
			indexInfo,
			buckybank.GetUserBankIndexAccountSize(1),
			buckybank.UserBankIndexSeed,
			owner.Key,
			[]byte{bump},
		)
		if err != nil {
			return err
		}

		index = &buckybank.UserBankIndexAccount{Owner: owner.Key}
	} else {
		var err error
		index, err = loadUserBankIndex(indexInfo)
		if err != nil {
			return err
		}

		size := buckybank.GetUserBankIndexAccountSize(len(index.BankIds) + 1)
		required := runtime.MinimumBalanceForRentExemption(size)
		if indexInfo.Lamports < required {
			if err := transfer(ctx, owner, indexInfo, required-indexInfo.Lamports); err != nil {
				return err
			}
		}
		indexInfo.Resize(size)
	}

	index.BankIds = append(index.BankIds, bankInfo.Key)
	store(indexInfo, index.Marshal())
	return nil
}

package program

import (
	"github.com/code-payments/bucky-bank-server/pkg/bucky/runtime"
	"github.com/code-payments/bucky-bank-server/pkg/solana/buckybank"
)

// initializeGlobalStats creates the program singleton with the signer as admin
//
// Accounts: [admin (writable, signer), global_stats (writable), system_program]
func (p *Program) initializeGlobalStats(ctx *runtime.InvokeContext, accounts []*runtime.AccountInfo, _ []byte) error {
	if err := requireAccounts(accounts, buckybank.InitializeGlobalStatsInstructionAccountsCount); err != nil {
		return err
	}
	admin, globalStats, systemProgram := accounts[0], accounts[1], accounts[2]

	if err := requireWritableSigner(admin); err != nil {
		return err
	}
	if err := requireWritable(globalStats); err != nil {
		return err
	}
	if err := requireSystemProgram(systemProgram); err != nil {
		return err
	}

	address, bump, err := buckybank.GetGlobalStatsAddress()
	if err != nil {
		return err
	}
	if err := requireAddress(globalStats, address); err != nil {
		return err
	}
	if err := requireUninitialized(globalStats); err != nil {
		return err
	}

	err = createProgramAccount(
		ctx,
		admin,
		globalStats,
		buckybank.GlobalStatsAccountSize,
		buckybank.GlobalStatsSeed,
		[]byte{bump},
	)
	if err != nil {
		return err
	}

	stats := &buckybank.GlobalStatsAccount{
		Admin: admin.Key,
	}
	store(globalStats, stats.Marshal())

	ctx.Log("Global stats initialized, admin: %s", encodeKey(admin.Key))
	return nil
}

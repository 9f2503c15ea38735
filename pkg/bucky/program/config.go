package program

import (
	"github.com/code-payments/bucky-bank-server/pkg/config"
	"github.com/code-payments/bucky-bank-server/pkg/config/env"
	"github.com/code-payments/bucky-bank-server/pkg/config/memory"
	"github.com/code-payments/bucky-bank-server/pkg/config/wrapper"
	"github.com/code-payments/bucky-bank-server/pkg/solana/buckybank"
)

const (
	envConfigPrefix = "BUCKY_BANK_PROGRAM_"

	MinDepositLamportsConfigEnvName = envConfigPrefix + "MIN_DEPOSIT_LAMPORTS"
	defaultMinDepositLamports       = buckybank.DefaultMinDepositLamports

	ChildOnlyDepositsConfigEnvName = envConfigPrefix + "CHILD_ONLY_DEPOSITS"
	defaultChildOnlyDeposits       = false
)

type conf struct {
	minDepositLamports config.Uint64
	childOnlyDeposits  config.Bool
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			minDepositLamports: env.NewUint64Config(MinDepositLamportsConfigEnvName, defaultMinDepositLamports),
			childOnlyDeposits:  env.NewBoolConfig(ChildOnlyDepositsConfigEnvName, defaultChildOnlyDeposits),
		}
	}
}

type testOverrides struct {
	minDepositLamports uint64
	childOnlyDeposits  bool
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			minDepositLamports: wrapper.NewUint64Config(memory.NewConfig(overrides.minDepositLamports), defaultMinDepositLamports),
			childOnlyDeposits:  wrapper.NewBoolConfig(memory.NewConfig(overrides.childOnlyDeposits), defaultChildOnlyDeposits),
		}
	}
}

// WithDefaults returns the default configuration, independent of the
// environment
func WithDefaults() ConfigProvider {
	return withManualTestOverrides(&testOverrides{
		minDepositLamports: defaultMinDepositLamports,
		childOnlyDeposits:  defaultChildOnlyDeposits,
	})
}

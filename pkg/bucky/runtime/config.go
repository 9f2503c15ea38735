package runtime

import (
	"time"

	"github.com/code-payments/bucky-bank-server/pkg/config"
	"github.com/code-payments/bucky-bank-server/pkg/config/env"
	"github.com/code-payments/bucky-bank-server/pkg/config/memory"
	"github.com/code-payments/bucky-bank-server/pkg/config/wrapper"
)

const (
	envConfigPrefix = "BUCKY_RUNTIME_"

	LockTimeoutConfigEnvName = envConfigPrefix + "LOCK_TIMEOUT"
	defaultLockTimeout       = 5 * time.Second

	MaxTransactionAccountsConfigEnvName = envConfigPrefix + "MAX_TRANSACTION_ACCOUNTS"
	defaultMaxTransactionAccounts       = 64

	LockStripesConfigEnvName = envConfigPrefix + "LOCK_STRIPES"
	defaultLockStripes       = 1024

	AirdropRateLimitConfigEnvName = envConfigPrefix + "AIRDROP_RATE_LIMIT"
	defaultAirdropRateLimit       = 5.0

	MaxAirdropLamportsConfigEnvName = envConfigPrefix + "MAX_AIRDROP_LAMPORTS"
	defaultMaxAirdropLamports       = 100_000_000_000
)

type conf struct {
	lockTimeout            config.Duration
	maxTransactionAccounts config.Uint64
	lockStripes            config.Uint64
	airdropRateLimit       config.Float64
	maxAirdropLamports     config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			lockTimeout:            env.NewDurationConfig(LockTimeoutConfigEnvName, defaultLockTimeout),
			maxTransactionAccounts: env.NewUint64Config(MaxTransactionAccountsConfigEnvName, defaultMaxTransactionAccounts),
			lockStripes:            env.NewUint64Config(LockStripesConfigEnvName, defaultLockStripes),
			airdropRateLimit:       env.NewFloat64Config(AirdropRateLimitConfigEnvName, defaultAirdropRateLimit),
			maxAirdropLamports:     env.NewUint64Config(MaxAirdropLamportsConfigEnvName, defaultMaxAirdropLamports),
		}
	}
}

// TestOverrides are the values tests can set on a runtime's configuration.
// Zero values use the defaults.
type TestOverrides struct {
	LockTimeout            time.Duration
	MaxTransactionAccounts uint64
	AirdropRateLimit       float64
}

// WithTestOverrides returns an in memory configuration for tests
func WithTestOverrides(overrides *TestOverrides) ConfigProvider {
	return func() *conf {
		lockTimeout := defaultLockTimeout
		if overrides.LockTimeout > 0 {
			lockTimeout = overrides.LockTimeout
		}

		maxTransactionAccounts := uint64(defaultMaxTransactionAccounts)
		if overrides.MaxTransactionAccounts > 0 {
			maxTransactionAccounts = overrides.MaxTransactionAccounts
		}

		airdropRateLimit := 1_000_000.0
		if overrides.AirdropRateLimit > 0 {
			airdropRateLimit = overrides.AirdropRateLimit
		}

		return &conf{
			lockTimeout:            wrapper.NewDurationConfig(memory.NewConfig(lockTimeout), defaultLockTimeout),
			maxTransactionAccounts: wrapper.NewUint64Config(memory.NewConfig(maxTransactionAccounts), defaultMaxTransactionAccounts),
			lockStripes:            wrapper.NewUint64Config(memory.NewConfig(uint64(64)), defaultLockStripes),
			airdropRateLimit:       wrapper.NewFloat64Config(memory.NewConfig(airdropRateLimit), defaultAirdropRateLimit),
			maxAirdropLamports:     wrapper.NewUint64Config(memory.NewConfig(uint64(defaultMaxAirdropLamports)), defaultMaxAirdropLamports),
		}
	}
}

package client

import (
	"time"

	"github.com/code-payments/bucky-bank-server/pkg/config"
	"github.com/code-payments/bucky-bank-server/pkg/config/env"
	"github.com/code-payments/bucky-bank-server/pkg/config/memory"
	"github.com/code-payments/bucky-bank-server/pkg/config/wrapper"
)

const (
	envConfigPrefix = "BUCKY_CLIENT_"

	MaxSubmitAttemptsConfigEnvName = envConfigPrefix + "MAX_SUBMIT_ATTEMPTS"
	defaultMaxSubmitAttempts       = 5

	MaxRetryBackoffConfigEnvName = envConfigPrefix + "MAX_RETRY_BACKOFF"
	defaultMaxRetryBackoff       = 500 * time.Millisecond

	AddressCacheSizeConfigEnvName = envConfigPrefix + "ADDRESS_CACHE_SIZE"
	defaultAddressCacheSize       = 10_000
)

type conf struct {
	maxSubmitAttempts config.Uint64
	maxRetryBackoff   config.Duration
	addressCacheSize  config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			maxSubmitAttempts: env.NewUint64Config(MaxSubmitAttemptsConfigEnvName, defaultMaxSubmitAttempts),
			maxRetryBackoff:   env.NewDurationConfig(MaxRetryBackoffConfigEnvName, defaultMaxRetryBackoff),
			addressCacheSize:  env.NewUint64Config(AddressCacheSizeConfigEnvName, defaultAddressCacheSize),
		}
	}
}

type testOverrides struct {
	maxSubmitAttempts uint64
	maxRetryBackoff   time.Duration
	addressCacheSize  uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			maxSubmitAttempts: wrapper.NewUint64Config(memory.NewConfig(overrides.maxSubmitAttempts), defaultMaxSubmitAttempts),
			maxRetryBackoff:   wrapper.NewDurationConfig(memory.NewConfig(overrides.maxRetryBackoff), defaultMaxRetryBackoff),
			addressCacheSize:  wrapper.NewUint64Config(memory.NewConfig(overrides.addressCacheSize), defaultAddressCacheSize),
		}
	}
}

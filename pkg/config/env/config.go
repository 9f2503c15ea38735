package env

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/code-payments/bucky-bank-server/pkg/config"
	"github.com/code-payments/bucky-bank-server/pkg/config/wrapper"
)

type conf struct {
	val string
}

// NewConfig returns a config holding the environment variable's value at
// construction time. Keys are upper cased.
func NewConfig(key string) config.Config {
	return &conf{
		val: os.Getenv(strings.ToUpper(key)),
	}
}

func (c *conf) Get(_ context.Context) (interface{}, error) {
	if len(c.val) == 0 {
		return nil, config.ErrNoValue
	}
	return []byte(c.val), nil
}

func (c *conf) Shutdown() {
}

func NewBoolConfig(key string, defaultValue bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(key), defaultValue)
}

func NewUint64Config(key string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(key), defaultValue)
}

func NewFloat64Config(key string, defaultValue float64) config.Float64 {
	return wrapper.NewFloat64Config(NewConfig(key), defaultValue)
}

// NewDurationConfig parses values with time.ParseDuration, eg. "250ms"
func NewDurationConfig(key string, defaultValue time.Duration) config.Duration {
	return wrapper.NewDurationConfig(NewConfig(key), defaultValue)
}

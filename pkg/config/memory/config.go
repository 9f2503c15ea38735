package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/code-payments/bucky-bank-server/pkg/config"
)

var errInduced = errors.New("in memory config: induced error")

// Config is an in memory config used for testing
type Config struct {
	mu       sync.RWMutex
	value    interface{}
	err      error
	shutdown bool
}

// NewConfig returns a new in memory config. A nil value means no value is set.
func NewConfig(value interface{}) *Config {
	return &Config{value: value}
}

func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch {
	case c.shutdown:
		return nil, config.ErrShutdown
	case c.err != nil:
		return nil, c.err
	case c.value == nil:
		return nil, config.ErrNoValue
	}
	return c.value, nil
}

func (c *Config) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shutdown = true
}

// SetValue sets the value returned by subsequent Get calls. A nil value
// clears it.
func (c *Config) SetValue(value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
}

// InduceErrors toggles whether Get fails
func (c *Config) InduceErrors(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if enabled {
		c.err = errInduced
	} else {
		c.err = nil
	}
}

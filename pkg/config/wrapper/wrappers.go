package wrapper

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/code-payments/bucky-bank-server/pkg/config"
)

// ErrUnsupportedConversion indicates the source value has a type the wrapper
// can't convert
var ErrUnsupportedConversion = errors.New("config: wrapper conversion from source type not implemented")

type typed[T any] struct {
	override     config.Config
	defaultValue T
	convert      func(interface{}) (T, error)

	mu        sync.RWMutex
	lastValue T
}

func newTyped[T any](override config.Config, defaultValue T, convert func(interface{}) (T, error)) *typed[T] {
	return &typed[T]{
		override:     override,
		defaultValue: defaultValue,
		convert:      convert,
		lastValue:    defaultValue,
	}
}

// GetSafe pulls and converts the latest value. Unset values yield the
// default. On error, the last known good value is returned with it.
func (c *typed[T]) GetSafe(ctx context.Context) (T, error) {
	c.mu.RLock()
	lastValue := c.lastValue
	c.mu.RUnlock()

	raw, err := c.override.Get(ctx)
	if err == config.ErrNoValue {
		c.set(c.defaultValue)
		return c.defaultValue, nil
	} else if err != nil {
		return lastValue, err
	}

	value, err := c.convert(raw)
	if err != nil {
		return lastValue, err
	}

	c.set(value)
	return value, nil
}

func (c *typed[T]) Get(ctx context.Context) T {
	value, _ := c.GetSafe(ctx)
	return value
}

func (c *typed[T]) Shutdown() {
	c.override.Shutdown()
}

func (c *typed[T]) set(value T) {
	c.mu.Lock()
	c.lastValue = value
	c.mu.Unlock()
}

// NewBoolConfig wraps override as a bool config. Sources may provide bool
// values or strconv.ParseBool text.
func NewBoolConfig(override config.Config, defaultValue bool) config.Bool {
	return newTyped(override, defaultValue, func(raw interface{}) (bool, error) {
		switch v := raw.(type) {
		case bool:
			return v, nil
		case []byte:
			return strconv.ParseBool(string(v))
		case string:
			return strconv.ParseBool(v)
		}
		return false, ErrUnsupportedConversion
	})
}

// NewUint64Config wraps override as a uint64 config. Sources may provide
// unsigned or non-negative signed integers, or base 10 text. Underscore
// separators are allowed in text.
func NewUint64Config(override config.Config, defaultValue uint64) config.Uint64 {
	return newTyped(override, defaultValue, func(raw interface{}) (uint64, error) {
		switch v := raw.(type) {
		case uint64:
			return v, nil
		case uint:
			return uint64(v), nil
		case uint32:
			return uint64(v), nil
		case int:
			if v < 0 {
				return 0, errors.Errorf("config: negative value %d", v)
			}
			return uint64(v), nil
		case int64:
			if v < 0 {
				return 0, errors.Errorf("config: negative value %d", v)
			}
			return uint64(v), nil
		case []byte:
			return strconv.ParseUint(string(v), 0, 64)
		case string:
			return strconv.ParseUint(v, 0, 64)
		}
		return 0, ErrUnsupportedConversion
	})
}

// NewFloat64Config wraps override as a float64 config
func NewFloat64Config(override config.Config, defaultValue float64) config.Float64 {
	return newTyped(override, defaultValue, func(raw interface{}) (float64, error) {
		switch v := raw.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case []byte:
			return strconv.ParseFloat(string(v), 64)
		case string:
			return strconv.ParseFloat(v, 64)
		}
		return 0, ErrUnsupportedConversion
	})
}

// NewDurationConfig wraps override as a time.Duration config. Text is parsed
// with time.ParseDuration.
func NewDurationConfig(override config.Config, defaultValue time.Duration) config.Duration {
	return newTyped(override, defaultValue, func(raw interface{}) (time.Duration, error) {
		switch v := raw.(type) {
		case time.Duration:
			return v, nil
		case []byte:
			return time.ParseDuration(string(v))
		case string:
			return time.ParseDuration(v)
		}
		return 0, ErrUnsupportedConversion
	})
}

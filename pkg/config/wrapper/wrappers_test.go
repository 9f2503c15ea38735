package wrapper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/bucky-bank-server/pkg/config"
	"github.com/code-payments/bucky-bank-server/pkg/config/memory"
)

// testTyped runs the behaviour shared by every typed wrapper: defaults when
// unset, overrides when set, and the last known value on failures.
func testTyped[T any](t *testing.T, newConfig func(config.Config, T) config.Typed[T], defaultValue, overrideValue T, overrideText string) {
	ctx := context.Background()
	source := memory.NewConfig(nil)
	c := newConfig(source, defaultValue)

	val, err := c.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaultValue, val)

	source.SetValue(overrideValue)
	val, err = c.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, overrideValue, val)

	source.InduceErrors(true)
	val, err = c.GetSafe(ctx)
	assert.Error(t, err)
	assert.Equal(t, overrideValue, val)
	assert.Equal(t, overrideValue, c.Get(ctx))
	source.InduceErrors(false)

	source.SetValue(nil)
	assert.Equal(t, defaultValue, c.Get(ctx))

	source.SetValue([]byte(overrideText))
	val, err = c.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, overrideValue, val)

	source.SetValue(struct{}{})
	val, err = c.GetSafe(ctx)
	assert.Equal(t, ErrUnsupportedConversion, err)
	assert.Equal(t, overrideValue, val)

	source.SetValue([]byte("garbage"))
	_, err = c.GetSafe(ctx)
	assert.Error(t, err)
}

func TestBoolConfig(t *testing.T) {
	testTyped(t, NewBoolConfig, true, false, "false")
}

func TestUint64Config(t *testing.T) {
	testTyped(t, NewUint64Config, 10, 10_000_000, "10_000_000")

	ctx := context.Background()
	source := memory.NewConfig(7)
	c := NewUint64Config(source, 1)
	assert.EqualValues(t, 7, c.Get(ctx))

	source.SetValue(-1)
	val, err := c.GetSafe(ctx)
	assert.Error(t, err)
	assert.EqualValues(t, 7, val)
}

func TestFloat64Config(t *testing.T) {
	testTyped(t, NewFloat64Config, 5.0, 0.25, "0.25")
}

func TestDurationConfig(t *testing.T) {
	testTyped(t, NewDurationConfig, time.Second, 250*time.Millisecond, "250ms")
}

func TestShutdown(t *testing.T) {
	source := memory.NewConfig(true)
	c := NewBoolConfig(source, false)
	assert.True(t, c.Get(context.Background()))

	c.Shutdown()
	val, err := c.GetSafe(context.Background())
	assert.Equal(t, config.ErrShutdown, err)
	assert.True(t, val)
}

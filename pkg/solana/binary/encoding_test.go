package binary

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_Layout(t *testing.T) {
	e := NewEncoder(0)
	e.PutUint64(0x0102030405060708)
	e.PutUint32(7)
	e.PutUint8(9)
	e.PutBool(true)
	e.PutString("hi")

	assert.Equal(t, []byte{
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
		0x07, 0x00, 0x00, 0x00,
		0x09,
		0x01,
		0x02, 0x00, 0x00, 0x00, 'h', 'i',
	}, e.Bytes())
}

func TestDecoder_Fields(t *testing.T) {
	key1, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	key2, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	e := NewEncoder(128)
	e.PutKey32(key1)
	e.PutKey32(nil)
	e.PutString("savings")
	e.PutKeyVec([]ed25519.PublicKey{key1, key2})
	e.PutBool(false)
	e.PutUint64(42)

	var zero, first ed25519.PublicKey
	var name string
	var keys []ed25519.PublicKey
	var flag bool
	var value uint64

	d := NewDecoder(e.Bytes())
	d.GetKey32(&first)
	d.GetKey32(&zero)
	d.GetString(&name, 32)
	d.GetKeyVec(&keys, -1)
	d.GetBool(&flag)
	d.GetUint64(&value)
	require.NoError(t, d.Err())

	assert.EqualValues(t, key1, first)
	assert.EqualValues(t, make([]byte, 32), zero)
	assert.Equal(t, "savings", name)
	require.Len(t, keys, 2)
	assert.EqualValues(t, key2, keys[1])
	assert.False(t, flag)
	assert.EqualValues(t, 42, value)
	assert.Zero(t, d.Remaining())
}

func TestDecoder_Errors(t *testing.T) {
	var value uint64
	d := NewDecoder([]byte{1, 2, 3})
	d.GetUint64(&value)
	assert.True(t, errors.Is(d.Err(), ErrUnexpectedEnd))

	// Sticky: subsequent reads do not overwrite the first failure or the offset.
	var small uint8
	d.GetUint8(&small)
	assert.True(t, errors.Is(d.Err(), ErrUnexpectedEnd))
	assert.Zero(t, d.Offset())

	e := NewEncoder(0)
	e.PutString("too long")
	var s string
	d = NewDecoder(e.Bytes())
	d.GetString(&s, 3)
	assert.True(t, errors.Is(d.Err(), ErrLengthLimit))

	var b bool
	d = NewDecoder([]byte{2})
	d.GetBool(&b)
	assert.True(t, errors.Is(d.Err(), ErrInvalidBool))

	var keys []ed25519.PublicKey
	d = NewDecoder([]byte{5, 0, 0, 0})
	d.GetKeyVec(&keys, 10)
	assert.True(t, errors.Is(d.Err(), ErrUnexpectedEnd))
	assert.Nil(t, keys)
}

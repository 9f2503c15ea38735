package shortvec

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_AllLengths(t *testing.T) {
	for length := 0; length <= math.MaxUint16; length += 7 {
		var buf bytes.Buffer
		_, err := EncodeLen(&buf, length)
		require.NoError(t, err)

		decoded, err := DecodeLen(&buf)
		require.NoError(t, err)
		require.Equal(t, length, decoded)
		require.Zero(t, buf.Len())
	}
}

func TestEncodeLen_KnownVectors(t *testing.T) {
	for _, tc := range []struct {
		length  int
		encoded []byte
	}{
		{0x0, []byte{0x0}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{0x3fff, []byte{0xff, 0x7f}},
		{0x4000, []byte{0x80, 0x80, 0x01}},
		{0xffff, []byte{0xff, 0xff, 0x03}},
	} {
		var buf bytes.Buffer
		n, err := EncodeLen(&buf, tc.length)
		require.NoError(t, err)
		assert.Equal(t, len(tc.encoded), n)
		assert.Equal(t, tc.encoded, buf.Bytes())
	}
}

func TestInvalidLengths(t *testing.T) {
	_, err := EncodeLen(&bytes.Buffer{}, math.MaxUint16+1)
	assert.Error(t, err)

	_, err = EncodeLen(&bytes.Buffer{}, -1)
	assert.Error(t, err)

	_, err = DecodeLen(bytes.NewReader([]byte{0x80}))
	assert.Error(t, err)

	_, err = DecodeLen(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0x01}))
	assert.Error(t, err)
}

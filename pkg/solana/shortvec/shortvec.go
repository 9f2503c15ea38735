// Package shortvec implements the compact-u16 length prefix used by the
// transaction wire format.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

const maxEncodedBytes = 3

// EncodeLen writes length as a compact-u16 into w.
func EncodeLen(w io.Writer, length int) (int, error) {
	if length < 0 || length > math.MaxUint16 {
		return 0, errors.Errorf("length %d outside [0, %d]", length, math.MaxUint16)
	}

	var buf [maxEncodedBytes]byte
	n := 0
	for {
		buf[n] = byte(length & 0x7f)
		length >>= 7
		if length == 0 {
			n++
			break
		}
		buf[n] |= 0x80
		n++
	}
	return w.Write(buf[:n])
}

// DecodeLen reads a compact-u16 length from r.
func DecodeLen(r io.Reader) (int, error) {
	var length int
	var one [1]byte
	for i := 0; ; i++ {
		if i >= maxEncodedBytes {
			return 0, errors.Errorf("compact-u16 exceeds %d bytes", maxEncodedBytes)
		}
		if _, err := io.ReadFull(r, one[:]); err != nil {
			return 0, err
		}

		length |= int(one[0]&0x7f) << (7 * i)
		if one[0]&0x80 == 0 {
			break
		}
	}

	if length > math.MaxUint16 {
		return 0, errors.Errorf("decoded length %d exceeds %d", length, math.MaxUint16)
	}
	return length, nil
}

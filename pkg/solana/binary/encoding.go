// Package binary provides little-endian field encoding for program account
// and instruction layouts. Variable length fields follow Borsh: strings and
// vectors carry a u32 length prefix.
package binary

import (
	"crypto/ed25519"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

var (
	ErrUnexpectedEnd = errors.New("unexpected end of data")
	ErrInvalidBool   = errors.New("invalid bool encoding")
	ErrLengthLimit   = errors.New("length exceeds limit")
)

// Encoder appends fields to a growing buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an encoder with capacity preallocated.
func NewEncoder(capacity int) *Encoder {
	return &Encoder{buf: make([]byte, 0, capacity)}
}

func (e *Encoder) Bytes() []byte {
	return e.buf
}

func (e *Encoder) Len() int {
	return len(e.buf)
}

func (e *Encoder) PutRaw(b []byte) {
	e.buf = append(e.buf, b...)
}

// PutKey32 writes a 32-byte key. A nil key is written as all zeros.
func (e *Encoder) PutKey32(key ed25519.PublicKey) {
	var raw [ed25519.PublicKeySize]byte
	copy(raw[:], key)
	e.buf = append(e.buf, raw[:]...)
}

func (e *Encoder) PutUint64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

func (e *Encoder) PutUint32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *Encoder) PutUint8(v uint8) {
	e.buf = append(e.buf, v)
}

func (e *Encoder) PutBool(v bool) {
	if v {
		e.PutUint8(1)
	} else {
		e.PutUint8(0)
	}
}

func (e *Encoder) PutString(s string) {
	e.PutUint32(uint32(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *Encoder) PutKeyVec(keys []ed25519.PublicKey) {
	e.PutUint32(uint32(len(keys)))
	for _, key := range keys {
		e.PutKey32(key)
	}
}

// Decoder reads fields sequentially. The first failure is sticky: later reads
// are no-ops and Err reports it.
type Decoder struct {
	src    []byte
	offset int
	err    error
}

func NewDecoder(src []byte) *Decoder {
	return &Decoder{src: src}
}

func (d *Decoder) Err() error {
	return d.err
}

func (d *Decoder) Offset() int {
	return d.offset
}

func (d *Decoder) Remaining() int {
	return len(d.src) - d.offset
}

func (d *Decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.Remaining() < n {
		d.err = errors.Wrapf(ErrUnexpectedEnd, "need %d bytes at offset %d", n, d.offset)
		return nil
	}

	b := d.src[d.offset : d.offset+n]
	d.offset += n
	return b
}

func (d *Decoder) GetRaw(n int) []byte {
	b := d.take(n)
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

func (d *Decoder) GetKey32(dst *ed25519.PublicKey) {
	if b := d.take(ed25519.PublicKeySize); b != nil {
		*dst = append(ed25519.PublicKey(nil), b...)
	}
}

func (d *Decoder) GetUint64(dst *uint64) {
	if b := d.take(8); b != nil {
		*dst = binary.LittleEndian.Uint64(b)
	}
}

func (d *Decoder) GetUint32(dst *uint32) {
	if b := d.take(4); b != nil {
		*dst = binary.LittleEndian.Uint32(b)
	}
}

func (d *Decoder) GetUint8(dst *uint8) {
	if b := d.take(1); b != nil {
		*dst = b[0]
	}
}

func (d *Decoder) GetBool(dst *bool) {
	var v uint8
	d.GetUint8(&v)
	if d.err != nil {
		return
	}

	switch v {
	case 0:
		*dst = false
	case 1:
		*dst = true
	default:
		d.err = errors.Wrapf(ErrInvalidBool, "value %d at offset %d", v, d.offset-1)
	}
}

// GetString reads a length-prefixed string of at most maxLen bytes. A
// negative maxLen disables the limit.
func (d *Decoder) GetString(dst *string, maxLen int) {
	length := d.getLength(maxLen)
	if b := d.take(length); b != nil {
		*dst = string(b)
	} else if d.err == nil {
		*dst = ""
	}
}

func (d *Decoder) GetKeyVec(dst *[]ed25519.PublicKey, maxLen int) {
	length := d.getLength(maxLen)
	if d.err != nil {
		return
	}

	keys := make([]ed25519.PublicKey, length)
	for i := range keys {
		d.GetKey32(&keys[i])
	}
	if d.err == nil {
		*dst = keys
	}
}

func (d *Decoder) getLength(maxLen int) int {
	var length uint32
	d.GetUint32(&length)
	if d.err != nil {
		return 0
	}

	if maxLen >= 0 && uint64(length) > uint64(maxLen) {
		d.err = errors.Wrapf(ErrLengthLimit, "length %d exceeds %d", length, maxLen)
		return 0
	}
	if uint64(length) > math.MaxInt32 {
		d.err = errors.Wrapf(ErrLengthLimit, "length %d", length)
		return 0
	}
	return int(length)
}

package query

import (
	"encoding/binary"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const cursorSize = 8

// Cursor is an opaque position in a listing. It encodes the database id of
// the last record returned.
type Cursor []byte

var (
	EmptyCursor Cursor = Cursor([]byte{})
)

func ToCursor(val uint64) Cursor {
	b := make([]byte, cursorSize)
	binary.BigEndian.PutUint64(b, val)
	return b
}

// ParseCursor decodes the text form returned by Cursor.String
func ParseCursor(val string) (Cursor, error) {
	if len(val) == 0 {
		return EmptyCursor, nil
	}

	decoded, err := base58.Decode(val)
	if err != nil {
		return nil, errors.Wrap(err, "invalid cursor encoding")
	}
	if len(decoded) != cursorSize {
		return nil, errors.Errorf("invalid cursor length %d", len(decoded))
	}
	return decoded, nil
}

func (c Cursor) ToUint64() uint64 {
	return binary.BigEndian.Uint64(c)
}

func (c Cursor) String() string {
	return base58.Encode(c)
}

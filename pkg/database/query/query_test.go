package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPaginationHandlerWithLimit(t *testing.T) {
	req, err := DefaultPaginationHandlerWithLimit(100)
	require.NoError(t, err)
	assert.EqualValues(t, 100, req.Limit)
	assert.Equal(t, Ascending, req.SortBy)
	assert.Empty(t, req.Cursor)

	req, err = DefaultPaginationHandlerWithLimit(100, WithLimit(10), WithDirection(Descending), WithCursor(ToCursor(5)))
	require.NoError(t, err)
	assert.EqualValues(t, 10, req.Limit)
	assert.Equal(t, Descending, req.SortBy)
	assert.EqualValues(t, 5, req.Cursor.ToUint64())

	// A zero limit keeps the maximum
	req, err = DefaultPaginationHandlerWithLimit(100, WithLimit(0))
	require.NoError(t, err)
	assert.EqualValues(t, 100, req.Limit)

	_, err = DefaultPaginationHandlerWithLimit(100, WithLimit(101))
	assert.Equal(t, ErrQueryNotSupported, err)

	_, err = DefaultPaginationHandlerWithLimit(100, WithDirection(Ordering(5)))
	assert.Equal(t, ErrQueryNotSupported, err)

	_, err = DefaultPaginationHandlerWithLimit(100, WithCursor([]byte{1, 2, 3}))
	assert.Equal(t, ErrQueryNotSupported, err)
}

func TestCursor(t *testing.T) {
	cursor := ToCursor(1234)
	assert.EqualValues(t, 1234, cursor.ToUint64())

	parsed, err := ParseCursor(cursor.String())
	require.NoError(t, err)
	assert.Equal(t, cursor, parsed)

	parsed, err = ParseCursor("")
	require.NoError(t, err)
	assert.Empty(t, parsed)

	_, err = ParseCursor("0OIl")
	assert.Error(t, err)

	_, err = ParseCursor("2g")
	assert.Error(t, err)
}

func TestPaginateQuery(t *testing.T) {
	base := "SELECT * FROM events WHERE (bank = $1)"
	args := []interface{}{"bank1"}

	q, a := PaginateQuery(base, args, EmptyCursor, 10, Ascending)
	assert.Equal(t, base+" ORDER BY id ASC LIMIT $2", q)
	assert.Equal(t, []interface{}{"bank1", uint64(10)}, a)

	q, a = PaginateQuery(base, args, ToCursor(7), 10, Descending)
	assert.Equal(t, base+" AND id < $2 ORDER BY id DESC LIMIT $3", q)
	assert.Equal(t, []interface{}{"bank1", uint64(7), uint64(10)}, a)

	q, a = PaginateQuery(base, args, ToCursor(7), 0, Ascending)
	assert.Equal(t, base+" AND id > $2 ORDER BY id ASC", q)
	assert.Equal(t, []interface{}{"bank1", uint64(7)}, a)
}

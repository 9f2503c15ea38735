package tests

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/ledger"
	"github.com/code-payments/bucky-bank-server/pkg/database/query"
)

func RunTests(t *testing.T, s ledger.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s ledger.Store){
		testHappyPath,
		testOptimisticConcurrency,
		testAtomicSave,
		testGetBatch,
		testGetAllByOwner,
		testInvalidRecord,
	} {
		tf(t, s)
		teardown()
	}
}

func testHappyPath(t *testing.T, s ledger.Store) {
	t.Run("testHappyPath", func(t *testing.T) {
		ctx := context.Background()
		start := time.Now()

		expected := &ledger.Record{
			Address:  newAddress(t),
			Owner:    newAddress(t),
			Lamports: 1_000_000,
			Data:     []byte{1, 2, 3, 4},
			Slot:     10,
		}

		_, err := s.Get(ctx, expected.Address)
		assert.Equal(t, ledger.ErrAccountNotFound, err)

		require.NoError(t, s.Save(ctx, expected))
		assert.True(t, expected.Id > 0)
		assert.EqualValues(t, 1, expected.Version)
		assert.False(t, expected.LastUpdatedAt.Before(start.Add(-time.Second)))

		actual, err := s.Get(ctx, expected.Address)
		require.NoError(t, err)
		assertEquivalentRecords(t, expected, actual)

		actual.Lamports = 500
		actual.Data = []byte{5, 6}
		actual.Slot = 11
		require.NoError(t, s.Save(ctx, actual))
		assert.EqualValues(t, 2, actual.Version)
		assert.Equal(t, expected.Id, actual.Id)

		updated, err := s.Get(ctx, expected.Address)
		require.NoError(t, err)
		assertEquivalentRecords(t, actual, updated)
		assert.EqualValues(t, 11, updated.Slot)
	})
}

func testOptimisticConcurrency(t *testing.T, s ledger.Store) {
	t.Run("testOptimisticConcurrency", func(t *testing.T) {
		ctx := context.Background()

		record := &ledger.Record{
			Address:  newAddress(t),
			Owner:    newAddress(t),
			Lamports: 1,
		}
		require.NoError(t, s.Save(ctx, record))

		// Creating an account that already exists is stale
		duplicate := &ledger.Record{
			Address:  record.Address,
			Owner:    record.Owner,
			Lamports: 2,
		}
		assert.Equal(t, ledger.ErrStaleAccountState, s.Save(ctx, duplicate))

		// Two writers read the same version, only the first wins
		first, err := s.Get(ctx, record.Address)
		require.NoError(t, err)
		second, err := s.Get(ctx, record.Address)
		require.NoError(t, err)

		first.Lamports = 10
		require.NoError(t, s.Save(ctx, first))

		second.Lamports = 20
		assert.Equal(t, ledger.ErrStaleAccountState, s.Save(ctx, second))

		actual, err := s.Get(ctx, record.Address)
		require.NoError(t, err)
		assert.EqualValues(t, 10, actual.Lamports)
		assert.EqualValues(t, 2, actual.Version)
	})
}

func testAtomicSave(t *testing.T, s ledger.Store) {
	t.Run("testAtomicSave", func(t *testing.T) {
		ctx := context.Background()

		owner := newAddress(t)

		existing := &ledger.Record{Address: newAddress(t), Owner: owner, Lamports: 100}
		require.NoError(t, s.Save(ctx, existing))

		fresh := &ledger.Record{Address: newAddress(t), Owner: owner, Lamports: 50}
		stale := existing.Clone()
		stale.Version = 0
		stale.Lamports = 0

		assert.Equal(t, ledger.ErrStaleAccountState, s.Save(ctx, fresh, stale))

		_, err := s.Get(ctx, fresh.Address)
		assert.Equal(t, ledger.ErrAccountNotFound, err)

		actual, err := s.Get(ctx, existing.Address)
		require.NoError(t, err)
		assert.EqualValues(t, 100, actual.Lamports)
		assert.EqualValues(t, 1, actual.Version)

		// Duplicate addresses within a single save are rejected
		dup := existing.Clone()
		assert.Error(t, s.Save(ctx, existing.Clone(), dup))

		// Both succeed together
		updated := existing.Clone()
		updated.Lamports = 25
		require.NoError(t, s.Save(ctx, fresh, updated))
		assert.EqualValues(t, 1, fresh.Version)
		assert.EqualValues(t, 2, updated.Version)
	})
}

func testGetBatch(t *testing.T, s ledger.Store) {
	t.Run("testGetBatch", func(t *testing.T) {
		ctx := context.Background()

		owner := newAddress(t)

		var records []*ledger.Record
		for i := 0; i < 3; i++ {
			record := &ledger.Record{
				Address:  newAddress(t),
				Owner:    owner,
				Lamports: uint64(i + 1),
				Data:     []byte{byte(i)},
			}
			records = append(records, record)
		}
		require.NoError(t, s.Save(ctx, records...))

		missing := newAddress(t)

		actual, err := s.GetBatch(ctx, records[0].Address, missing, records[2].Address)
		require.NoError(t, err)
		require.Len(t, actual, 2)
		assertEquivalentRecords(t, records[0], actual[records[0].Address])
		assertEquivalentRecords(t, records[2], actual[records[2].Address])
		_, ok := actual[missing]
		assert.False(t, ok)

		actual, err = s.GetBatch(ctx)
		require.NoError(t, err)
		assert.Empty(t, actual)
	})
}

func testGetAllByOwner(t *testing.T, s ledger.Store) {
	t.Run("testGetAllByOwner", func(t *testing.T) {
		ctx := context.Background()

		owner := newAddress(t)
		other := newAddress(t)

		_, err := s.GetAllByOwner(ctx, owner, query.EmptyCursor, 10, query.Ascending)
		assert.Equal(t, ledger.ErrAccountNotFound, err)

		var saved []*ledger.Record
		for i := 0; i < 5; i++ {
			record := &ledger.Record{Address: newAddress(t), Owner: owner, Lamports: uint64(i)}
			require.NoError(t, s.Save(ctx, record))
			saved = append(saved, record)

			require.NoError(t, s.Save(ctx, &ledger.Record{Address: newAddress(t), Owner: other}))
		}

		actual, err := s.GetAllByOwner(ctx, owner, query.EmptyCursor, 10, query.Ascending)
		require.NoError(t, err)
		require.Len(t, actual, 5)
		for i, record := range actual {
			assertEquivalentRecords(t, saved[i], record)
		}

		actual, err = s.GetAllByOwner(ctx, owner, query.EmptyCursor, 10, query.Descending)
		require.NoError(t, err)
		require.Len(t, actual, 5)
		for i, record := range actual {
			assertEquivalentRecords(t, saved[4-i], record)
		}

		actual, err = s.GetAllByOwner(ctx, owner, query.ToCursor(saved[1].Id), 2, query.Ascending)
		require.NoError(t, err)
		require.Len(t, actual, 2)
		assertEquivalentRecords(t, saved[2], actual[0])
		assertEquivalentRecords(t, saved[3], actual[1])

		actual, err = s.GetAllByOwner(ctx, owner, query.ToCursor(saved[3].Id), 10, query.Descending)
		require.NoError(t, err)
		require.Len(t, actual, 3)
		assertEquivalentRecords(t, saved[2], actual[0])

		_, err = s.GetAllByOwner(ctx, owner, query.ToCursor(saved[4].Id), 10, query.Ascending)
		assert.Equal(t, ledger.ErrAccountNotFound, err)
	})
}

func testInvalidRecord(t *testing.T, s ledger.Store) {
	t.Run("testInvalidRecord", func(t *testing.T) {
		ctx := context.Background()

		assert.Error(t, s.Save(ctx, &ledger.Record{Owner: newAddress(t)}))
		assert.Error(t, s.Save(ctx, &ledger.Record{Address: newAddress(t)}))
		assert.Error(t, s.Save(ctx, &ledger.Record{Address: "invalid", Owner: newAddress(t)}))
	})
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *ledger.Record) {
	require.NotNil(t, obj2)
	assert.Equal(t, obj1.Id, obj2.Id)
	assert.True(t, obj1.Equals(obj2))
	assert.Equal(t, obj1.Slot, obj2.Slot)
	assert.Equal(t, obj1.Version, obj2.Version)
}

func newAddress(t *testing.T) string {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return base58.Encode(pub)
}

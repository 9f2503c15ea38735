package tests

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/event"
	"github.com/code-payments/bucky-bank-server/pkg/database/query"
)

func RunTests(t *testing.T, s event.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s event.Store){
		testHappyPath,
		testDuplicates,
		testPaging,
	} {
		tf(t, s)
		teardown()
	}
}

func testHappyPath(t *testing.T, s event.Store) {
	t.Run("testHappyPath", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetAll(ctx, query.EmptyCursor, 10, query.Ascending)
		assert.Equal(t, event.ErrEventNotFound, err)

		records := []*event.Record{
			newRecord("sig1", 0, 0, "bank1", "BuckyBankCreated"),
			newRecord("sig1", 1, 0, "bank1", "DepositMade"),
		}
		require.NoError(t, s.Append(ctx, records...))
		assert.True(t, records[0].Id > 0)
		assert.True(t, records[1].Id > records[0].Id)
		assert.False(t, records[0].CreatedAt.IsZero())

		actual, err := s.GetAll(ctx, query.EmptyCursor, 10, query.Ascending)
		require.NoError(t, err)
		require.Len(t, actual, 2)
		assertEquivalentRecords(t, records[0], actual[0])
		assertEquivalentRecords(t, records[1], actual[1])

		_, err = s.GetAllByBank(ctx, "bank2", query.EmptyCursor, 10, query.Ascending)
		assert.Equal(t, event.ErrEventNotFound, err)

		require.NoError(t, s.Append(ctx))
	})
}

func testDuplicates(t *testing.T, s event.Store) {
	t.Run("testDuplicates", func(t *testing.T) {
		ctx := context.Background()

		original := newRecord("sig1", 0, 0, "bank1", "DepositMade")
		require.NoError(t, s.Append(ctx, original))

		fresh := newRecord("sig2", 0, 0, "bank1", "DepositMade")
		duplicate := newRecord("sig1", 0, 0, "bank1", "DepositMade")
		assert.Equal(t, event.ErrEventExists, s.Append(ctx, fresh, duplicate))

		actual, err := s.GetAll(ctx, query.EmptyCursor, 10, query.Ascending)
		require.NoError(t, err)
		require.Len(t, actual, 1)
		assertEquivalentRecords(t, original, actual[0])

		assert.Error(t, s.Append(ctx, &event.Record{Signature: "sig3"}))
	})
}

func testPaging(t *testing.T, s event.Store) {
	t.Run("testPaging", func(t *testing.T) {
		ctx := context.Background()

		var bank1 []*event.Record
		for i := 0; i < 6; i++ {
			bank := "bank1"
			if i%2 == 1 {
				bank = "bank2"
			}

			record := newRecord(fmt.Sprintf("sig%d", i), 0, 0, bank, "DepositMade")
			require.NoError(t, s.Append(ctx, record))

			if bank == "bank1" {
				bank1 = append(bank1, record)
			}
		}

		actual, err := s.GetAll(ctx, query.EmptyCursor, 4, query.Ascending)
		require.NoError(t, err)
		assert.Len(t, actual, 4)

		actual, err = s.GetAll(ctx, query.ToCursor(actual[3].Id), 4, query.Ascending)
		require.NoError(t, err)
		assert.Len(t, actual, 2)

		actual, err = s.GetAllByBank(ctx, "bank1", query.EmptyCursor, 10, query.Ascending)
		require.NoError(t, err)
		require.Len(t, actual, 3)
		for i, record := range actual {
			assertEquivalentRecords(t, bank1[i], record)
		}

		actual, err = s.GetAllByBank(ctx, "bank1", query.EmptyCursor, 10, query.Descending)
		require.NoError(t, err)
		require.Len(t, actual, 3)
		assertEquivalentRecords(t, bank1[2], actual[0])

		actual, err = s.GetAllByBank(ctx, "bank1", query.ToCursor(bank1[0].Id), 1, query.Ascending)
		require.NoError(t, err)
		require.Len(t, actual, 1)
		assertEquivalentRecords(t, bank1[1], actual[0])

		_, err = s.GetAllByBank(ctx, "bank1", query.ToCursor(bank1[2].Id), 10, query.Ascending)
		assert.Equal(t, event.ErrEventNotFound, err)
	})
}

func newRecord(signature string, instructionIndex uint8, eventIndex uint32, bank, eventType string) *event.Record {
	return &event.Record{
		Signature:        signature,
		Slot:             1,
		InstructionIndex: instructionIndex,
		EventIndex:       eventIndex,
		EventType:        eventType,
		Bank:             bank,
		Data:             []byte{0, 1, 2, 3, 4, 5, 6, 7, 8},
	}
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *event.Record) {
	assert.Equal(t, obj1.Id, obj2.Id)
	assert.Equal(t, obj1.Signature, obj2.Signature)
	assert.Equal(t, obj1.Slot, obj2.Slot)
	assert.Equal(t, obj1.InstructionIndex, obj2.InstructionIndex)
	assert.Equal(t, obj1.EventIndex, obj2.EventIndex)
	assert.Equal(t, obj1.EventType, obj2.EventType)
	assert.Equal(t, obj1.Bank, obj2.Bank)
	assert.Equal(t, obj1.Data, obj2.Data)
}

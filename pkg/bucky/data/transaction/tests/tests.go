package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/transaction"
)

func RunTests(t *testing.T, s transaction.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s transaction.Store){
		testHappyPath,
		testFailedTransaction,
		testLatestSlot,
		testInvalidRecord,
	} {
		tf(t, s)
		teardown()
	}
}

func testHappyPath(t *testing.T, s transaction.Store) {
	t.Run("testHappyPath", func(t *testing.T) {
		ctx := context.Background()

		expected := &transaction.Record{
			Signature: "sig1",
			Slot:      42,
			BlockTime: time.Now().Truncate(time.Second),
			Data:      []byte{1, 2, 3},
			Logs: []string{
				"Program 5uykfXh94mwTz2Vxb2Y7RpntvanSkcWq4hENoDM4duVf invoke [1]",
				"Program log: Instruction: Deposit",
				"Program 5uykfXh94mwTz2Vxb2Y7RpntvanSkcWq4hENoDM4duVf success",
			},
		}

		_, err := s.Get(ctx, expected.Signature)
		assert.Equal(t, transaction.ErrNotFound, err)

		require.NoError(t, s.Put(ctx, expected))
		assert.True(t, expected.Id > 0)
		assert.False(t, expected.CreatedAt.IsZero())

		actual, err := s.Get(ctx, expected.Signature)
		require.NoError(t, err)
		assertEquivalentRecords(t, expected, actual)

		assert.Equal(t, transaction.ErrExists, s.Put(ctx, expected.Clone()))
	})
}

func testFailedTransaction(t *testing.T, s transaction.Store) {
	t.Run("testFailedTransaction", func(t *testing.T) {
		ctx := context.Background()

		expected := &transaction.Record{
			Signature: "failed",
			Slot:      7,
			BlockTime: time.Now().Truncate(time.Second),
			Data:      []byte{4, 5},
			HasErrors: true,
			Err:       `{"InstructionError":[0,{"Custom":6000}]}`,
		}
		require.NoError(t, s.Put(ctx, expected))

		actual, err := s.Get(ctx, expected.Signature)
		require.NoError(t, err)
		assertEquivalentRecords(t, expected, actual)
		assert.Empty(t, actual.Logs)
	})
}

func testLatestSlot(t *testing.T, s transaction.Store) {
	t.Run("testLatestSlot", func(t *testing.T) {
		ctx := context.Background()

		slot, err := s.GetLatestSlot(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 0, slot)

		for i, slot := range []uint64{3, 9, 5} {
			require.NoError(t, s.Put(ctx, &transaction.Record{
				Signature: fmt.Sprintf("sig%d", i),
				Slot:      slot,
				BlockTime: time.Now(),
				Data:      []byte{byte(i)},
			}))
		}

		slot, err = s.GetLatestSlot(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 9, slot)
	})
}

func testInvalidRecord(t *testing.T, s transaction.Store) {
	t.Run("testInvalidRecord", func(t *testing.T) {
		ctx := context.Background()

		valid := &transaction.Record{
			Signature: "valid",
			BlockTime: time.Now(),
			Data:      []byte{1},
		}
		require.NoError(t, valid.Validate())

		for _, modify := range []func(r *transaction.Record){
			func(r *transaction.Record) { r.Signature = "" },
			func(r *transaction.Record) { r.Data = nil },
			func(r *transaction.Record) { r.BlockTime = time.Time{} },
			func(r *transaction.Record) { r.HasErrors = true },
			func(r *transaction.Record) { r.Err = "{}" },
		} {
			cloned := valid.Clone()
			modify(cloned)
			assert.Error(t, s.Put(ctx, cloned))
		}
	})
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *transaction.Record) {
	assert.Equal(t, obj1.Id, obj2.Id)
	assert.Equal(t, obj1.Signature, obj2.Signature)
	assert.Equal(t, obj1.Slot, obj2.Slot)
	assert.Equal(t, obj1.BlockTime.Unix(), obj2.BlockTime.Unix())
	assert.Equal(t, obj1.Data, obj2.Data)
	assert.Equal(t, obj1.HasErrors, obj2.HasErrors)
	assert.Equal(t, obj1.Err, obj2.Err)
	assert.Equal(t, len(obj1.Logs), len(obj2.Logs))
	for i := range obj1.Logs {
		assert.Equal(t, obj1.Logs[i], obj2.Logs[i])
	}
}

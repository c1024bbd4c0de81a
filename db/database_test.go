package db

import (
	"testing"

	"github.com/stretchr/testify/require"

	"numahui/items"
	"numahui/txn"
)

func mkTx(pairs ...uint64) *txn.Transaction {
	tx := txn.NewBuilder(len(pairs) / 2)
	for i := 0; i < len(pairs); i += 2 {
		tx.Append(txn.Item(pairs[i]), txn.Utility(pairs[i+1]))
	}
	return tx
}

func TestPushBackFillsNamedPartition(t *testing.T) {
	d := New(2)
	d.PushBack(0, mkTx(1, 10))
	d.PushBack(1, mkTx(2, 1))
	require.Equal(t, 2, d.Len())
}

func TestAccumulateTWUPartitionSumsTransactionUtility(t *testing.T) {
	d := New(2)
	d.PushBack(0, mkTx(1, 10, 2, 5)) // total 15
	d.PushBack(1, mkTx(2, 3, 3, 7))  // total 10

	twu := items.NewDenseAccumulator(4)
	d.AccumulateTWUPartition(0, twu)
	d.AccumulateTWUPartition(1, twu)
	require.Equal(t, uint64(15), twu.Get(1))
	require.Equal(t, uint64(25), twu.Get(2))
	require.Equal(t, uint64(10), twu.Get(3))
}

func TestRenamePartitionDropsPrunedItemsAndReorders(t *testing.T) {
	d := New(1)
	d.PushBack(0, mkTx(1, 10, 2, 20, 3, 30))
	d.PushBack(0, mkTx(2, 20, 3, 30))

	twu := items.NewDenseAccumulator(4)
	d.AccumulateTWUPartition(0, twu)
	bij := items.Build(twu, 100) // item 1 (twu=60) pruned; items 2, 3 have twu=110

	d.RenamePartition(0, bij)
	d.DropEmpty()

	tx := d.Partition(0)[0]
	require.Equal(t, 2, tx.Len())
	id2, _ := bij.Forward(2)
	id3, _ := bij.Forward(3)
	if id2 < id3 {
		require.Equal(t, txn.Item(id2), tx.ItemAt(0))
		require.Equal(t, txn.Item(id3), tx.ItemAt(1))
	} else {
		require.Equal(t, txn.Item(id3), tx.ItemAt(0))
		require.Equal(t, txn.Item(id2), tx.ItemAt(1))
	}
}

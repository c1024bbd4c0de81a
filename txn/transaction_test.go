package txn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func build(pairs ...uint64) *Transaction {
	tx := NewBuilder(len(pairs) / 2)
	for i := 0; i < len(pairs); i += 2 {
		tx.Append(Item(pairs[i]), Utility(pairs[i+1]))
	}
	return tx
}

func TestProjectionMovesPivotUtilityToPrefix(t *testing.T) {
	tx := build(1, 10, 2, 20, 3, 30, 4, 40)
	total := tx.TotalUtility()

	// pivot at view-index 1 -> item 2; item 1 is skipped, so its utility
	// (10) leaves the total and only the pivot's 20 becomes prefix utility.
	proj := tx.Projection(1)
	require.Equal(t, total-10, proj.TotalUtility())
	require.Equal(t, 2, proj.Len())
	require.Equal(t, Item(3), proj.ItemAt(0))
	require.Equal(t, Utility(30+40), proj.TransactionUtility())
	require.Equal(t, Utility(0), tx.prefixUtil)
}

func TestProjectionIsAView(t *testing.T) {
	tx := build(1, 10, 2, 20, 3, 30)
	require.True(t, tx.Exclusive())
	proj := tx.Projection(0)
	require.False(t, tx.Exclusive())
	require.False(t, proj.Exclusive())
	proj.Release()
	tx.Release()
}

func TestCompareExtensionMatchesOnItemsOnly(t *testing.T) {
	a := build(5, 1, 6, 2)
	b := build(5, 99, 6, 100)
	require.True(t, a.CompareExtension(b))

	c := build(5, 1, 7, 2)
	require.False(t, a.CompareExtension(c))
}

func TestMergeSumsUtilitiesAndAggregates(t *testing.T) {
	a := build(1, 5, 2, 6)
	b := build(1, 7, 2, 8)

	err := a.Merge(b)
	require.NoError(t, err)
	require.Equal(t, Utility(12), a.UtilityAt(0))
	require.Equal(t, Utility(14), a.UtilityAt(1))
	require.Equal(t, Utility(5+6+7+8), a.TransactionUtility())
}

func TestMergeRejectsAliasedTarget(t *testing.T) {
	a := build(1, 5, 2, 6, 3, 7)
	// Projecting a bumps the shared payload's refcount, so a itself is no
	// longer exclusively owned until the projection is released.
	view := a.Projection(0)
	defer view.Release()

	b := build(2, 9, 3, 10)
	err := a.Merge(b)
	require.ErrorIs(t, err, ErrNotExclusive)
}

func TestCloneProducesExclusiveCopy(t *testing.T) {
	a := build(1, 5, 2, 6)
	view := a.Projection(0)
	defer view.Release()
	require.False(t, view.Exclusive())

	owned := view.Clone()
	require.True(t, owned.Exclusive())
	owned.UtilityAt(0)
}

func TestEraseIfCompactsInPlace(t *testing.T) {
	tx := build(1, 0, 2, 5, 3, 0, 4, 9)
	err := tx.EraseIf(func(item Item, utility Utility) bool { return utility == 0 })
	require.NoError(t, err)
	require.Equal(t, 2, tx.Len())
	require.Equal(t, Item(2), tx.ItemAt(0))
	require.Equal(t, Item(4), tx.ItemAt(1))
}

func TestBinarySearchFindsAndMisses(t *testing.T) {
	tx := build(2, 1, 4, 1, 6, 1, 8, 1)
	idx, ok := tx.BinarySearch(6)
	require.True(t, ok)
	require.Equal(t, 2, idx)

	_, ok = tx.BinarySearch(5)
	require.False(t, ok)
}

package efim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoinGroupFiresAfterAllChildrenDone(t *testing.T) {
	g := newJoinGroup(3)
	var fired bool
	var got error
	g.await(func(err error) {
		fired = true
		got = err
	})

	g.done(nil)
	require.False(t, fired)
	g.done(nil)
	require.False(t, fired)
	g.done(nil)
	require.True(t, fired)
	require.NoError(t, got)
}

func TestJoinGroupLatchesFirstError(t *testing.T) {
	g := newJoinGroup(2)
	boom := errors.New("boom")
	var got error
	g.await(func(err error) { got = err })

	g.done(boom)
	g.done(nil)
	require.Equal(t, boom, got)
}

func TestJoinGroupWithZeroChildrenFiresOnAwait(t *testing.T) {
	g := newJoinGroup(0)
	var fired bool
	g.await(func(error) { fired = true })
	require.True(t, fired)
}

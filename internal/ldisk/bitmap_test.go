package ldisk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitGetSet(t *testing.T) {
	var b Block
	require.False(t, bitGet(&b, 0))
	bitSet(&b, 0, true)
	require.True(t, bitGet(&b, 0))
	require.False(t, bitGet(&b, 1))

	bitSet(&b, 63, true)
	require.True(t, bitGet(&b, 63))

	bitSet(&b, 0, false)
	require.False(t, bitGet(&b, 0))
}

func TestInitReservesLayoutAndDirectoryBlocks(t *testing.T) {
	d := New()
	require.NoError(t, d.Init())

	for i := 0; i < DataBlockStart; i++ {
		require.True(t, d.blockUsed(i), "reserved block %d must be marked used", i)
	}

	desc, err := d.GetDescriptor(DirDescriptor)
	require.NoError(t, err)
	for _, b := range desc.Blocks {
		require.NotZero(t, b)
		require.True(t, d.blockUsed(int(b)))
	}
}

func TestFindFreeBlockExhaustion(t *testing.T) {
	d := New()
	require.NoError(t, d.Init())

	allocated := 0
	for {
		_, err := d.FindFreeBlock()
		if err != nil {
			require.ErrorIs(t, err, ErrDiskFull)
			break
		}
		allocated++
	}
	require.Equal(t, NumBlocks-DataBlockStart-MaxFileBlocks, allocated)
}

func TestReleaseBlockFreesIt(t *testing.T) {
	d := New()
	require.NoError(t, d.Init())

	b, err := d.FindFreeBlock()
	require.NoError(t, err)
	d.ReleaseBlock(b)
	require.False(t, d.blockUsed(b))
}

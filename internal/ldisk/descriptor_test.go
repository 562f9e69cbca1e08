package ldisk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescriptorEncodeDecodeRoundTrip(t *testing.T) {
	var buf Block
	in := Descriptor{Size: 42, Blocks: [MaxFileBlocks]int32{7, 8, 0}}
	encodeDescriptor(&buf, 16, in)
	out := decodeDescriptor(&buf, 16)
	require.Equal(t, in, out)
}

func TestInitDescriptorSetsSentinelSize(t *testing.T) {
	d := New()
	require.NoError(t, d.Init())

	idx, err := d.InitDescriptor(10)
	require.NoError(t, err)

	desc, err := d.GetDescriptor(idx)
	require.NoError(t, err)
	require.EqualValues(t, 1, desc.Size)
	require.EqualValues(t, 10, desc.Blocks[0])
}

func TestInitDescriptorExhaustion(t *testing.T) {
	d := New()
	require.NoError(t, d.Init())

	// Descriptor 0 is already used by the directory.
	for i := 1; i < NumDescriptors; i++ {
		_, err := d.InitDescriptor(0)
		require.NoError(t, err)
	}
	_, err := d.InitDescriptor(0)
	require.ErrorIs(t, err, ErrNoFreeDescriptor)
}

func TestDestroyDescriptorZeroesAllFields(t *testing.T) {
	d := New()
	require.NoError(t, d.Init())

	idx, err := d.InitDescriptor(10)
	require.NoError(t, err)
	require.NoError(t, d.DestroyDescriptor(idx))

	desc, err := d.GetDescriptor(idx)
	require.NoError(t, err)
	require.False(t, desc.InUse())
}

func TestUpdateDescriptorBlocksFillsFirstEmptySlot(t *testing.T) {
	d := New()
	require.NoError(t, d.Init())

	idx, err := d.InitDescriptor(10)
	require.NoError(t, err)
	require.NoError(t, d.UpdateDescriptorBlocks(idx, 11))

	desc, err := d.GetDescriptor(idx)
	require.NoError(t, err)
	require.EqualValues(t, 11, desc.Blocks[1])
}

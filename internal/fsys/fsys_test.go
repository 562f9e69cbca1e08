package fsys

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ldisksim/internal/ldisk"
)

func newMounted(t *testing.T) *FileSystem {
	t.Helper()
	d := ldisk.New()
	require.NoError(t, d.Init())
	fs := New(d)
	require.NoError(t, fs.Mount())
	return fs
}

func TestCreateAndDirectory(t *testing.T) {
	fs := newMounted(t)
	require.NoError(t, fs.Create("foo"))
	names, err := fs.Directory()
	require.NoError(t, err)
	require.Equal(t, []string{"foo"}, names)
}

func TestWriteThenReadAfterSeek(t *testing.T) {
	fs := newMounted(t)
	require.NoError(t, fs.Create("a"))
	slot, err := fs.Open("a")
	require.NoError(t, err)
	require.Equal(t, 1, slot)

	n, err := fs.Write(slot, []byte(strings.Repeat("x", 10)))
	require.NoError(t, err)
	require.Equal(t, 10, n)

	_, err = fs.Seek(slot, 0)
	require.NoError(t, err)

	out, err := fs.Read(slot, 10)
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("x", 10), out)
}

func TestDestroyRemovesFromDirectory(t *testing.T) {
	fs := newMounted(t)
	require.NoError(t, fs.Create("a"))
	require.NoError(t, fs.Create("b"))
	require.NoError(t, fs.Destroy("a"))

	names, err := fs.Directory()
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, names)
}

func TestWriteCapsAtMaxFileSize(t *testing.T) {
	fs := newMounted(t)
	require.NoError(t, fs.Create("a"))
	slot, err := fs.Open("a")
	require.NoError(t, err)

	n, err := fs.Write(slot, []byte(strings.Repeat("z", ldisk.MaxFileSize)))
	require.NoError(t, err)
	require.Equal(t, ldisk.MaxFileSize, n)

	n, err = fs.Write(slot, []byte("z"))
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestDoubleOpenRejected(t *testing.T) {
	fs := newMounted(t)
	require.NoError(t, fs.Create("a"))
	slot, err := fs.Open("a")
	require.NoError(t, err)
	require.Equal(t, 1, slot)

	_, err = fs.Open("a")
	require.ErrorIs(t, err, ErrAlreadyOpen)
}

func TestCloseTwiceErrors(t *testing.T) {
	fs := newMounted(t)
	require.NoError(t, fs.Create("a"))
	slot, err := fs.Open("a")
	require.NoError(t, err)
	require.NoError(t, fs.Close(slot))
	require.ErrorIs(t, fs.Close(slot), ErrSlotNotOpen)
}

func TestSeekAtEOFRejected(t *testing.T) {
	fs := newMounted(t)
	require.NoError(t, fs.Create("a"))
	slot, err := fs.Open("a")
	require.NoError(t, err)
	_, err = fs.Write(slot, []byte("hi"))
	require.NoError(t, err)

	_, err = fs.Seek(slot, 2)
	require.ErrorIs(t, err, ErrSeekPastEOF)
}

func TestNameTooLongRejected(t *testing.T) {
	fs := newMounted(t)
	require.ErrorIs(t, fs.Create("abcde"), ErrNameInvalid)
}

func TestCreate23FilesThenFail(t *testing.T) {
	fs := newMounted(t)
	// Descriptor 0 belongs to the directory; 23 remain.
	for i := 0; i < 23; i++ {
		name := string(rune('a' + i%26))
		if i >= 26 {
			name = string(rune('A' + i - 26))
		}
		require.NoError(t, fs.Create(name), "file %d", i)
	}
	err := fs.Create("zz")
	require.Error(t, err)
}

func TestReadSkipsZeroBytesButCountsThem(t *testing.T) {
	fs := newMounted(t)
	require.NoError(t, fs.Create("a"))
	slot, err := fs.Open("a")
	require.NoError(t, err)

	data := []byte{'x', 0, 'y'}
	n, err := fs.Write(slot, data)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	_, err = fs.Seek(slot, 0)
	require.NoError(t, err)
	out, err := fs.Read(slot, 3)
	require.NoError(t, err)
	require.Equal(t, "xy", out)
}

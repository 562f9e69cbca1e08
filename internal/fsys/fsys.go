// Package fsys implements the directory and open-file-table layer on
// top of internal/ldisk: the root directory as a byte-stream file, and
// the create/destroy/open/close/read/write/seek operations that keep
// the bitmap, descriptor table, and directory consistent.
package fsys

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"ldisksim/internal/ldisk"
)

// OFT layout constants.
const (
	OFTSize   = 4
	DirSlot   = 0
	FirstUserSlot = 1
	LastUserSlot  = OFTSize - 1

	MaxNameLen = 4
)

var (
	ErrNotMounted    = errors.New("not mounted")
	ErrNameInvalid   = errors.New("invalid file name")
	ErrNameExists    = errors.New("file already exists")
	ErrNameNotFound  = errors.New("file not found")
	ErrAlreadyOpen   = errors.New("file already open")
	ErrNoFreeSlot    = errors.New("no free open-file slot")
	ErrBadSlot       = errors.New("invalid open-file slot")
	ErrSlotNotOpen   = errors.New("slot not open")
	ErrSeekPastEOF   = errors.New("seek position at or past end of file")
	ErrNoDirSpace    = errors.New("no space in directory")
)

// oftEntry is one slot of the open-file table: a descriptor index, the
// disk block currently resident in buffer, and the cursor within it.
// descIndex == -1 marks a free slot.
type oftEntry struct {
	descIndex   int
	buffer      ldisk.Block
	bufferBlock int // which of desc.Blocks[...] is resident, -1 if none
	bufferIndex int // offset 0..BlockSize within buffer
}

func freeOFTEntry() oftEntry {
	return oftEntry{descIndex: -1, bufferBlock: -1}
}

// FileSystem owns the open-file table and drives a Disk through the
// create/destroy/open/close/read/write/seek/directory operations.
type FileSystem struct {
	disk *ldisk.Disk
	oft  [OFTSize]oftEntry
	log  *logrus.Entry
}

// New wraps an already-constructed Disk. The disk must be mounted
// (Init or Load) via Mount before file operations are accepted.
func New(disk *ldisk.Disk) *FileSystem {
	fs := &FileSystem{disk: disk, log: logrus.WithField("component", "fsys")}
	for i := range fs.oft {
		fs.oft[i] = freeOFTEntry()
	}
	return fs
}

// Mount binds OFT slot 0 to the directory descriptor and loads its
// first data block, per I7. Call after Disk.Init or Disk.Load.
func (fs *FileSystem) Mount() error {
	if !fs.disk.Mounted() {
		return ErrNotMounted
	}
	desc, err := fs.disk.GetDescriptor(ldisk.DirDescriptor)
	if err != nil {
		return errors.Wrap(err, "load directory descriptor")
	}
	entry := oftEntry{descIndex: ldisk.DirDescriptor, bufferBlock: 0}
	if err := fs.disk.ReadBlock(int(desc.Blocks[0]), &entry.buffer); err != nil {
		return errors.Wrap(err, "load directory block")
	}
	fs.oft[DirSlot] = entry
	return nil
}

// CloseAll flushes every occupied user OFT slot. Intended for shutdown
// (sv/exit); the directory slot is flushed directly since it is never
// reached by the user-facing Close path.
func (fs *FileSystem) CloseAll() error {
	for slot := FirstUserSlot; slot <= LastUserSlot; slot++ {
		if fs.oft[slot].descIndex != -1 {
			if err := fs.flushSlot(slot); err != nil {
				return err
			}
			fs.oft[slot] = freeOFTEntry()
		}
	}
	return fs.flushSlot(DirSlot)
}

// flushSlot writes a slot's resident buffer back to its disk block.
func (fs *FileSystem) flushSlot(slot int) error {
	e := &fs.oft[slot]
	if e.descIndex == -1 || e.bufferBlock < 0 {
		return nil
	}
	desc, err := fs.disk.GetDescriptor(e.descIndex)
	if err != nil {
		return err
	}
	return fs.disk.WriteBlock(int(desc.Blocks[e.bufferBlock]), &e.buffer)
}

// Disk exposes the underlying disk, e.g. for Save/invariant checks.
func (fs *FileSystem) Disk() *ldisk.Disk { return fs.disk }

// OFTEntry is a read-only snapshot of one open-file-table slot, for the
// "oft" debug dump command.
type OFTEntry struct {
	Slot        int
	DescIndex   int // -1 if free
	BufferBlock int
	BufferIndex int
}

// OFTSnapshot returns the current state of every OFT slot, slot 0 first.
func (fs *FileSystem) OFTSnapshot() []OFTEntry {
	out := make([]OFTEntry, OFTSize)
	for i, e := range fs.oft {
		out[i] = OFTEntry{Slot: i, DescIndex: e.descIndex, BufferBlock: e.bufferBlock, BufferIndex: e.bufferIndex}
	}
	return out
}

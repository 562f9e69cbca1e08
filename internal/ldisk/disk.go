// Package ldisk implements the block device layer of the simulator: a
// fixed array of blocks, a cached bitmap and descriptor table, and the
// text image checkpoint/restore format.
package ldisk

import (
	"github.com/sirupsen/logrus"
)

// Block is one physical unit of disk storage: 512 bits, stored here as
// 64 bytes. Bit i of a block is byte i/8, bit i%8, least-significant
// bit first within the byte — ascending bit position order, matching
// the wire format in image.go without any reversal step.
type Block [BlockSize]byte

const (
	// NumBlocks is the total number of addressable blocks on the disk.
	NumBlocks = 64
	// BlockSize is the size of one block in bytes (512 bits).
	BlockSize = 64

	// BitmapBlock is the index of the block bitmap.
	BitmapBlock = 0
	// DescTableStart and DescTableEnd bound the descriptor table blocks (inclusive).
	DescTableStart = 1
	DescTableEnd   = 6
	// CacheSize is the number of leading blocks (bitmap + descriptor table)
	// mirrored in the in-memory cache.
	CacheSize = DescTableEnd + 1

	// DescriptorsPerBlock and NumDescriptors describe the descriptor table layout.
	DescriptorsPerBlock = 4
	NumDescriptors       = (DescTableEnd - DescTableStart + 1) * DescriptorsPerBlock
	DescriptorSize       = 16 // 4 little-endian int32 words

	// DataBlockStart is the first block available for file data.
	DataBlockStart = DescTableEnd + 1

	// MaxFileBlocks and MaxFileSize bound a single file's size.
	MaxFileBlocks = 3
	MaxFileSize   = MaxFileBlocks * BlockSize

	// DirDescriptor is the descriptor index permanently bound to the root directory.
	DirDescriptor = 0
)

// Disk owns the physical block array and the cache mirroring blocks
// 0..CacheSize-1 (the bitmap and the descriptor table). The cache is
// the authoritative view of bitmap/descriptor state during operation;
// it is flushed to the physical array before Save and refreshed from it
// after Load.
type Disk struct {
	blocks [NumBlocks]Block
	cache  [CacheSize]Block

	mounted bool
	log     *logrus.Entry
}

// New returns an unmounted Disk. Call Init or Load before use.
func New() *Disk {
	return &Disk{log: logrus.WithField("component", "ldisk")}
}

// Mounted reports whether the disk has been initialized or restored.
func (d *Disk) Mounted() bool { return d.mounted }

// ReadBlock copies physical block i into buf.
func (d *Disk) ReadBlock(i int, buf *Block) error {
	if !d.mounted {
		return ErrNotMounted
	}
	if i < 0 || i >= NumBlocks {
		return ErrBadBlock
	}
	*buf = d.blocks[i]
	return nil
}

// WriteBlock copies buf into physical block i.
func (d *Disk) WriteBlock(i int, buf *Block) error {
	if !d.mounted {
		return ErrNotMounted
	}
	if i < 0 || i >= NumBlocks {
		return ErrBadBlock
	}
	d.blocks[i] = *buf
	return nil
}

// readCache mirrors blocks 0..CacheSize-1 from the physical array into the cache.
func (d *Disk) readCache() {
	for i := 0; i < CacheSize; i++ {
		d.cache[i] = d.blocks[i]
	}
}

// writeCache mirrors the cache back to blocks 0..CacheSize-1 of the physical array.
func (d *Disk) writeCache() {
	for i := 0; i < CacheSize; i++ {
		d.blocks[i] = d.cache[i]
	}
}

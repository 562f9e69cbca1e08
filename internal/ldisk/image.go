package ldisk

import (
	"bufio"
	"os"

	"github.com/pkg/errors"
)

// Init formats a fresh disk: the reserved area (bitmap + descriptor
// table) is marked allocated, the directory descriptor (I5) is given
// its three data blocks up front, and the cache is made authoritative.
func (d *Disk) Init() error {
	d.blocks = [NumBlocks]Block{}
	d.cache = [CacheSize]Block{}
	d.initBitmap()

	var blocks [MaxFileBlocks]int32
	for i := range blocks {
		b, err := d.FindFreeBlock()
		if err != nil {
			return errors.Wrap(err, "allocate directory block")
		}
		blocks[i] = int32(b)
	}
	d.putDescriptor(DirDescriptor, Descriptor{Size: 0, Blocks: blocks})

	d.writeCache()
	d.mounted = true
	d.log.Debug("disk initialized")
	return nil
}

// Save flushes the cache to the physical block array and writes the
// 64-line, 512-character-per-line bit-index-order text image to path.
func (d *Disk) Save(path string) error {
	d.writeCache()

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create image file")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	line := make([]byte, BlockSize*8)
	for i := 0; i < NumBlocks; i++ {
		for bit := 0; bit < BlockSize*8; bit++ {
			if bitGet(&d.blocks[i], bit) {
				line[bit] = '1'
			} else {
				line[bit] = '0'
			}
		}
		if _, err := w.Write(line); err != nil {
			return errors.Wrap(err, "write image line")
		}
		if err := w.WriteByte('\n'); err != nil {
			return errors.Wrap(err, "write image newline")
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "flush image file")
	}
	d.log.WithField("path", path).Debug("disk saved")
	return nil
}

// Load restores a disk image previously written by Save and makes the
// cache authoritative again.
func (d *Disk) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open image file")
	}
	defer f.Close()

	d.blocks = [NumBlocks]Block{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024), 1024)
	for i := 0; i < NumBlocks; i++ {
		if !scanner.Scan() {
			return errors.Errorf("image file %s: truncated at block %d", path, i)
		}
		line := scanner.Text()
		if len(line) != BlockSize*8 {
			return errors.Errorf("image file %s: block %d has %d characters, want %d", path, i, len(line), BlockSize*8)
		}
		for bit := 0; bit < BlockSize*8; bit++ {
			bitSet(&d.blocks[i], bit, line[bit] == '1')
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "read image file")
	}

	d.readCache()
	d.mounted = true
	d.log.WithField("path", path).Debug("disk restored")
	return nil
}

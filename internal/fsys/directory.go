package fsys

import (
	"strconv"

	"github.com/pkg/errors"

	"ldisksim/internal/ldisk"
)

// dirEntry is one decoded directory record: a name and the descriptor
// it maps to, plus the byte range it occupies in the directory's
// 192-byte content (used by destroy to erase exactly one entry).
type dirEntry struct {
	name       string
	desc       int
	start, end int // [start, end) within the flattened directory content
}

func isDigitByte(c byte) bool { return c >= '0' && c <= '9' }

// readDirBytes reads the directory file's full content (up to
// MaxFileBlocks*BlockSize bytes) directly from its descriptor's data
// blocks, independent of whatever the OFT slot 0 buffer currently holds.
func (fs *FileSystem) readDirBytes() ([]byte, error) {
	desc, err := fs.disk.GetDescriptor(ldisk.DirDescriptor)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, ldisk.MaxFileSize)
	for _, b := range desc.Blocks {
		if b == 0 {
			break
		}
		var block ldisk.Block
		if err := fs.disk.ReadBlock(int(b), &block); err != nil {
			return nil, err
		}
		buf = append(buf, block[:]...)
	}
	return buf, nil
}

// writeDirBytes writes back a modified directory content buffer (must
// be the same length readDirBytes returned) to the directory's blocks,
// and keeps OFT slot 0's resident buffer consistent if the written
// range overlaps it.
func (fs *FileSystem) writeDirBytes(data []byte) error {
	desc, err := fs.disk.GetDescriptor(ldisk.DirDescriptor)
	if err != nil {
		return err
	}
	for bi, b := range desc.Blocks {
		if b == 0 {
			break
		}
		lo := bi * ldisk.BlockSize
		hi := lo + ldisk.BlockSize
		if lo >= len(data) {
			break
		}
		if hi > len(data) {
			hi = len(data)
		}
		var block ldisk.Block
		copy(block[:], data[lo:hi])
		if err := fs.disk.WriteBlock(int(b), &block); err != nil {
			return err
		}
		if fs.oft[DirSlot].bufferBlock == bi {
			fs.oft[DirSlot].buffer = block
		}
	}
	return nil
}

// decodeDirectory scans the directory content per the digit-terminates-
// name rule (§3.3): a non-digit byte extends/starts the current name; a
// digit byte, while in a name, terminates it and is consumed along with
// every following consecutive digit byte as one descriptor index (the
// "longest digit run" resolution — a single character is not enough
// because descriptor indices 10..23 take two digits). Zero bytes are
// holes and are skipped.
// Stray digits seen outside a name are ignored.
func decodeDirectory(data []byte) []dirEntry {
	var entries []dirEntry
	var name []byte
	inName := false
	nameStart := 0

	i := 0
	for i < len(data) {
		c := data[i]
		switch {
		case c == 0:
			i++
		case !isDigitByte(c):
			if !inName {
				inName = true
				nameStart = i
				name = name[:0]
			}
			name = append(name, c)
			i++
		case inName:
			j := i
			for j < len(data) && isDigitByte(data[j]) {
				j++
			}
			id, _ := strconv.Atoi(string(data[i:j]))
			entries = append(entries, dirEntry{name: string(name), desc: id, start: nameStart, end: j})
			inName = false
			i = j
		default:
			// digit outside a name: stray, ignored.
			i++
		}
	}
	return entries
}

// Directory returns the names of every file currently in the root
// directory, in scan order.
func (fs *FileSystem) Directory() ([]string, error) {
	if !fs.disk.Mounted() {
		return nil, ErrNotMounted
	}
	data, err := fs.readDirBytes()
	if err != nil {
		return nil, err
	}
	entries := decodeDirectory(data)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names, nil
}

// findDirectoryEntry looks up name, returning its entry and true if present.
func (fs *FileSystem) findDirectoryEntry(name string) (dirEntry, bool, error) {
	data, err := fs.readDirBytes()
	if err != nil {
		return dirEntry{}, false, err
	}
	for _, e := range decodeDirectory(data) {
		if e.name == name {
			return e, true, nil
		}
	}
	return dirEntry{}, false, nil
}

// createDirectoryEntry appends name || ascii(descIndex) into the first
// byte-hole run in the directory content large enough to hold it.
func (fs *FileSystem) createDirectoryEntry(name string, descIndex int) error {
	idStr := strconv.Itoa(descIndex)
	need := len(name) + len(idStr)

	data, err := fs.readDirBytes()
	if err != nil {
		return err
	}

	run := 0
	for i := 0; i <= len(data); i++ {
		if i < len(data) && data[i] == 0 {
			run++
		} else {
			if run >= need {
				start := i - run
				copy(data[start:], name)
				copy(data[start+len(name):], idStr)
				if err := fs.writeDirBytes(data); err != nil {
					return err
				}
				return fs.growDirectorySize(start + need)
			}
			run = 0
		}
	}
	return ErrNoDirSpace
}

// growDirectorySize raises the directory descriptor's size field to
// end if the directory has grown past its previously recorded length,
// per I5. Holes left by destroy are not reclaimed, mirroring the
// append-only size bookkeeping files use on write.
func (fs *FileSystem) growDirectorySize(end int) error {
	desc, err := fs.disk.GetDescriptor(ldisk.DirDescriptor)
	if err != nil {
		return err
	}
	if end > int(desc.Size) {
		return fs.disk.UpdateDescriptorSize(ldisk.DirDescriptor, end)
	}
	return nil
}

// removeDirectoryEntry zeroes the byte range of e (name plus its
// descriptor-id digits) and defragments the directory block it lived
// in. The defrag step is a faithful reproduction of the source's
// compaction: it copies every non-zero byte to its own original
// position, which is a no-op given the scanner already tolerates holes
// — see destroy's design note in SPEC_FULL.md.
func (fs *FileSystem) removeDirectoryEntry(e dirEntry) error {
	data, err := fs.readDirBytes()
	if err != nil {
		return err
	}
	for i := e.start; i < e.end; i++ {
		data[i] = 0
	}
	defragBlock(data, e.start/ldisk.BlockSize)
	return fs.writeDirBytes(data)
}

// defragBlock compacts the single directory block containing byteOffset
// 0 of that block. Per the source material, compaction here means
// copying every non-zero byte to a scratch buffer at its original
// index and copying it back — positions never move.
func defragBlock(data []byte, blockIndex int) {
	lo := blockIndex * ldisk.BlockSize
	hi := lo + ldisk.BlockSize
	if hi > len(data) {
		hi = len(data)
	}
	scratch := make([]byte, hi-lo)
	for i := lo; i < hi; i++ {
		if data[i] != 0 {
			scratch[i-lo] = data[i]
		}
	}
	copy(data[lo:hi], scratch)
}

// validateName enforces the 1-4 ASCII, non-digit file name constraint.
func validateName(name string) error {
	if len(name) < 1 || len(name) > MaxNameLen {
		return errors.Wrapf(ErrNameInvalid, "%q: length must be 1-%d", name, MaxNameLen)
	}
	for _, c := range []byte(name) {
		if isDigitByte(c) {
			return errors.Wrapf(ErrNameInvalid, "%q: must not contain digits", name)
		}
	}
	return nil
}

package fsys

import (
	"github.com/pkg/errors"

	"ldisksim/internal/ldisk"
)

func validUserSlot(slot int) bool {
	return slot >= FirstUserSlot && slot <= LastUserSlot
}

func (fs *FileSystem) findOpenSlot(descIndex int) int {
	for slot := FirstUserSlot; slot <= LastUserSlot; slot++ {
		if fs.oft[slot].descIndex == descIndex {
			return slot
		}
	}
	return -1
}

func (fs *FileSystem) findFreeOFTSlot() int {
	for slot := FirstUserSlot; slot <= LastUserSlot; slot++ {
		if fs.oft[slot].descIndex == -1 {
			return slot
		}
	}
	return -1
}

// Create allocates a descriptor and a first data block for name and
// records it in the directory.
func (fs *FileSystem) Create(name string) error {
	if !fs.disk.Mounted() {
		return ErrNotMounted
	}
	if err := validateName(name); err != nil {
		return err
	}
	if _, found, err := fs.findDirectoryEntry(name); err != nil {
		return err
	} else if found {
		return errors.Wrapf(ErrNameExists, "%q", name)
	}

	block, err := fs.disk.FindFreeBlock()
	if err != nil {
		return err
	}
	descIdx, err := fs.disk.InitDescriptor(block)
	if err != nil {
		fs.disk.ReleaseBlock(block)
		return err
	}
	if err := fs.createDirectoryEntry(name, descIdx); err != nil {
		return err
	}
	fs.log.WithField("name", name).Debug("file created")
	return nil
}

// Destroy closes name if open, releases its blocks and descriptor, and
// removes its directory entry.
func (fs *FileSystem) Destroy(name string) error {
	if !fs.disk.Mounted() {
		return ErrNotMounted
	}
	entry, found, err := fs.findDirectoryEntry(name)
	if err != nil {
		return err
	}
	if !found {
		return errors.Wrapf(ErrNameNotFound, "%q", name)
	}

	if slot := fs.findOpenSlot(entry.desc); slot != -1 {
		if err := fs.flushSlot(slot); err != nil {
			return err
		}
		fs.oft[slot] = freeOFTEntry()
	}

	desc, err := fs.disk.GetDescriptor(entry.desc)
	if err != nil {
		return err
	}
	for _, b := range desc.Blocks {
		if b != 0 {
			fs.disk.ReleaseBlock(int(b))
		}
	}
	if err := fs.disk.DestroyDescriptor(entry.desc); err != nil {
		return err
	}
	if err := fs.removeDirectoryEntry(entry); err != nil {
		return err
	}
	fs.log.WithField("name", name).Debug("file destroyed")
	return nil
}

// Open binds the lowest free user OFT slot to name's descriptor and
// loads its first block. Returns the slot number.
func (fs *FileSystem) Open(name string) (int, error) {
	if !fs.disk.Mounted() {
		return 0, ErrNotMounted
	}
	entry, found, err := fs.findDirectoryEntry(name)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, errors.Wrapf(ErrNameNotFound, "%q", name)
	}
	if fs.findOpenSlot(entry.desc) != -1 {
		return 0, errors.Wrapf(ErrAlreadyOpen, "%q", name)
	}
	slot := fs.findFreeOFTSlot()
	if slot == -1 {
		return 0, ErrNoFreeSlot
	}

	desc, err := fs.disk.GetDescriptor(entry.desc)
	if err != nil {
		return 0, err
	}
	e := oftEntry{descIndex: entry.desc, bufferBlock: 0}
	if err := fs.disk.ReadBlock(int(desc.Blocks[0]), &e.buffer); err != nil {
		return 0, errors.Wrap(err, "load first block")
	}
	fs.oft[slot] = e
	fs.log.WithFields(map[string]interface{}{"name": name, "slot": slot}).Debug("file opened")
	return slot, nil
}

// Close flushes and frees a user OFT slot.
func (fs *FileSystem) Close(slot int) error {
	if !fs.disk.Mounted() {
		return ErrNotMounted
	}
	if !validUserSlot(slot) {
		return ErrBadSlot
	}
	if fs.oft[slot].descIndex == -1 {
		return ErrSlotNotOpen
	}
	if err := fs.flushSlot(slot); err != nil {
		return err
	}
	fs.oft[slot] = freeOFTEntry()
	return nil
}

// Write copies data into slot's resident buffer, flushing and
// allocating further blocks as it crosses block boundaries, up to the
// MaxFileSize cap. It returns the number of bytes actually written.
func (fs *FileSystem) Write(slot int, data []byte) (int, error) {
	if !fs.disk.Mounted() {
		return 0, ErrNotMounted
	}
	if !validUserSlot(slot) || fs.oft[slot].descIndex == -1 {
		return 0, ErrSlotNotOpen
	}
	e := &fs.oft[slot]
	desc, err := fs.disk.GetDescriptor(e.descIndex)
	if err != nil {
		return 0, err
	}

	blockSlot := e.bufferBlock
	written := 0
	for idx := 0; idx < len(data); {
		if e.bufferIndex == ldisk.BlockSize {
			if err := fs.disk.WriteBlock(int(desc.Blocks[blockSlot]), &e.buffer); err != nil {
				return written, errors.Wrap(err, "flush block")
			}
			blockSlot++
			if blockSlot >= ldisk.MaxFileBlocks {
				blockSlot--
				break
			}
			if desc.Blocks[blockSlot] == 0 {
				nb, err := fs.disk.FindFreeBlock()
				if err != nil {
					blockSlot--
					break
				}
				if err := fs.disk.UpdateDescriptorBlocks(e.descIndex, nb); err != nil {
					fs.disk.ReleaseBlock(nb)
					blockSlot--
					break
				}
				desc.Blocks[blockSlot] = int32(nb)
			}
			if err := fs.disk.ReadBlock(int(desc.Blocks[blockSlot]), &e.buffer); err != nil {
				return written, errors.Wrap(err, "load next block")
			}
			e.bufferIndex = 0
		}
		e.buffer[e.bufferIndex] = data[idx]
		e.bufferIndex++
		idx++
		written++
	}
	e.bufferBlock = blockSlot
	if err := fs.disk.WriteBlock(int(desc.Blocks[blockSlot]), &e.buffer); err != nil {
		return written, errors.Wrap(err, "flush block")
	}

	newSize := int(desc.Size) + written
	if desc.Size == 1 {
		newSize = written
	}
	if err := fs.disk.UpdateDescriptorSize(e.descIndex, newSize); err != nil {
		return written, err
	}
	return written, nil
}

// Read copies up to count bytes from slot's current position into the
// result. Zero bytes in the file are holes: they are skipped in the
// output but still advance the logical cursor and count against count.
func (fs *FileSystem) Read(slot int, count int) (string, error) {
	if !fs.disk.Mounted() {
		return "", ErrNotMounted
	}
	if !validUserSlot(slot) || fs.oft[slot].descIndex == -1 {
		return "", ErrSlotNotOpen
	}
	e := &fs.oft[slot]
	desc, err := fs.disk.GetDescriptor(e.descIndex)
	if err != nil {
		return "", err
	}

	blockSlot := e.bufferBlock
	out := make([]byte, 0, count)
	traversed := 0
	for traversed < count {
		if e.bufferIndex == ldisk.BlockSize {
			blockSlot++
			if blockSlot >= ldisk.MaxFileBlocks || desc.Blocks[blockSlot] == 0 {
				break
			}
			if err := fs.disk.ReadBlock(int(desc.Blocks[blockSlot]), &e.buffer); err != nil {
				return "", errors.Wrap(err, "load next block")
			}
			e.bufferBlock = blockSlot
			e.bufferIndex = 0
		}
		c := e.buffer[e.bufferIndex]
		e.bufferIndex++
		traversed++
		if c != 0 {
			out = append(out, c)
		}
	}
	return string(out), nil
}

// Seek repositions slot to pos, flushing the outgoing buffer before
// loading whatever block pos falls in (see SPEC_FULL.md's lseek-flush
// decision). pos must be strictly less than the file's current size.
func (fs *FileSystem) Seek(slot int, pos int) (int, error) {
	if !fs.disk.Mounted() {
		return 0, ErrNotMounted
	}
	if !validUserSlot(slot) || fs.oft[slot].descIndex == -1 {
		return 0, ErrSlotNotOpen
	}
	e := &fs.oft[slot]
	desc, err := fs.disk.GetDescriptor(e.descIndex)
	if err != nil {
		return 0, err
	}
	if pos < 0 || pos >= int(desc.Size) {
		return 0, ErrSeekPastEOF
	}

	blockSlot := pos / ldisk.BlockSize
	if blockSlot >= ldisk.MaxFileBlocks || desc.Blocks[blockSlot] == 0 {
		return 0, ErrSeekPastEOF
	}

	if e.bufferBlock >= 0 {
		if err := fs.disk.WriteBlock(int(desc.Blocks[e.bufferBlock]), &e.buffer); err != nil {
			return 0, errors.Wrap(err, "flush outgoing block")
		}
	}
	if err := fs.disk.ReadBlock(int(desc.Blocks[blockSlot]), &e.buffer); err != nil {
		return 0, errors.Wrap(err, "load target block")
	}
	e.bufferBlock = blockSlot
	e.bufferIndex = pos % ldisk.BlockSize
	return pos, nil
}

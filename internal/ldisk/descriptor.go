package ldisk

import "encoding/binary"

// Descriptor is the in-memory view of one 16-byte descriptor-table
// record: a file size and up to three data block numbers. A zero Size
// means the slot is free unless a Blocks entry is non-zero (freshly
// created descriptors carry the size-1 sentinel per I2).
type Descriptor struct {
	Size   int32
	Blocks [MaxFileBlocks]int32
}

// InUse reports whether the descriptor is occupied, per I2: size
// non-zero or any block slot non-zero.
func (desc Descriptor) InUse() bool {
	if desc.Size != 0 {
		return true
	}
	for _, b := range desc.Blocks {
		if b != 0 {
			return true
		}
	}
	return false
}

// descLocation returns the cache block and byte offset of descriptor d.
func descLocation(d int) (block int, offset int) {
	block = DescTableStart + d/DescriptorsPerBlock
	offset = (d % DescriptorsPerBlock) * DescriptorSize
	return
}

// encodeDescriptor writes desc as four little-endian int32 words into
// buf at the given byte offset — the byte-copy encoding recommended in
// place of bit-by-bit serialization.
func encodeDescriptor(buf *Block, offset int, desc Descriptor) {
	binary.LittleEndian.PutUint32(buf[offset:], uint32(desc.Size))
	for i, b := range desc.Blocks {
		binary.LittleEndian.PutUint32(buf[offset+4+4*i:], uint32(b))
	}
}

// decodeDescriptor reads a descriptor back out of buf at the given byte offset.
func decodeDescriptor(buf *Block, offset int) Descriptor {
	var desc Descriptor
	desc.Size = int32(binary.LittleEndian.Uint32(buf[offset:]))
	for i := range desc.Blocks {
		desc.Blocks[i] = int32(binary.LittleEndian.Uint32(buf[offset+4+4*i:]))
	}
	return desc
}

// GetDescriptor returns a copy of descriptor d from the cache.
func (d *Disk) GetDescriptor(idx int) (Descriptor, error) {
	if idx < 0 || idx >= NumDescriptors {
		return Descriptor{}, ErrBadDescriptor
	}
	block, offset := descLocation(idx)
	return decodeDescriptor(&d.cache[block], offset), nil
}

// putDescriptor writes desc into descriptor slot idx of the cache.
func (d *Disk) putDescriptor(idx int, desc Descriptor) {
	block, offset := descLocation(idx)
	encodeDescriptor(&d.cache[block], offset, desc)
}

// InitDescriptor finds the lowest-indexed free descriptor slot, binds
// it to firstBlock with the I2 size sentinel, and returns its index.
func (d *Disk) InitDescriptor(firstBlock int) (int, error) {
	for i := 0; i < NumDescriptors; i++ {
		desc, _ := d.GetDescriptor(i)
		if desc.InUse() {
			continue
		}
		desc.Size = 1
		desc.Blocks[0] = int32(firstBlock)
		d.putDescriptor(i, desc)
		return i, nil
	}
	return 0, ErrNoFreeDescriptor
}

// DestroyDescriptor zeroes all four words of descriptor idx.
func (d *Disk) DestroyDescriptor(idx int) error {
	if idx < 0 || idx >= NumDescriptors {
		return ErrBadDescriptor
	}
	d.putDescriptor(idx, Descriptor{})
	return nil
}

// UpdateDescriptorBlocks writes newBlock into the first empty block
// slot of descriptor idx.
func (d *Disk) UpdateDescriptorBlocks(idx int, newBlock int) error {
	desc, err := d.GetDescriptor(idx)
	if err != nil {
		return err
	}
	for i, b := range desc.Blocks {
		if b == 0 {
			desc.Blocks[i] = int32(newBlock)
			d.putDescriptor(idx, desc)
			return nil
		}
	}
	return ErrDiskFull
}

// UpdateDescriptorSize writes n into the size field of descriptor idx.
func (d *Disk) UpdateDescriptorSize(idx int, n int) error {
	desc, err := d.GetDescriptor(idx)
	if err != nil {
		return err
	}
	desc.Size = int32(n)
	d.putDescriptor(idx, desc)
	return nil
}

package shell

import (
	"fmt"

	"ldisksim/internal/ldisk"
)

// cmdDump prints, on one line, a "block:descriptor" pair for every data
// block (DataBlockStart..NumBlocks-1) that some descriptor references.
// It reads the descriptor table, not the bitmap.
func (s *Shell) cmdDump([]string) {
	for b := ldisk.DataBlockStart; b < ldisk.NumBlocks; b++ {
		if desc, used := s.blockOwner(b); used {
			fmt.Fprintf(s.out, "%d:%d ", b, desc)
		}
	}
	fmt.Fprintln(s.out)
}

// blockOwner reports whether data block b is referenced by a
// descriptor, and which one.
func (s *Shell) blockOwner(b int) (desc int, used bool) {
	for d := 0; d < ldisk.NumDescriptors; d++ {
		descriptor, err := s.disk.GetDescriptor(d)
		if err != nil {
			continue
		}
		for _, bl := range descriptor.Blocks {
			if int(bl) == b {
				return d, true
			}
		}
	}
	return 0, false
}

// cmdDesc prints every in-use descriptor: index, size, and block list.
func (s *Shell) cmdDesc([]string) {
	for d := 0; d < ldisk.NumDescriptors; d++ {
		descriptor, err := s.disk.GetDescriptor(d)
		if err != nil || !descriptor.InUse() {
			continue
		}
		fmt.Fprintf(s.out, "%d size=%d blocks=%v\n", d, descriptor.Size, descriptor.Blocks)
	}
}

// cmdOft prints the state of every open-file-table slot.
func (s *Shell) cmdOft([]string) {
	for _, e := range s.fs.OFTSnapshot() {
		if e.DescIndex == -1 {
			fmt.Fprintf(s.out, "%d free\n", e.Slot)
			continue
		}
		fmt.Fprintf(s.out, "%d desc=%d block=%d index=%d\n", e.Slot, e.DescIndex, e.BufferBlock, e.BufferIndex)
	}
}

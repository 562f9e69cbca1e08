package ldisk

import "fmt"

// CheckInvariants validates the bitmap/descriptor invariants P1 and P2
// against the current cache contents. It is read-only diagnostic
// tooling used by the offline image checker and by the test suite; it
// is never called from the hot command path.
func (d *Disk) CheckInvariants() []string {
	var problems []string

	owner := make(map[int]int) // data block -> owning descriptor
	for desc := 0; desc < NumDescriptors; desc++ {
		dd, _ := d.GetDescriptor(desc)
		if !dd.InUse() {
			continue
		}
		seen := make(map[int32]bool)
		for _, b := range dd.Blocks {
			if b == 0 {
				continue
			}
			if seen[b] {
				problems = append(problems, fmt.Sprintf("descriptor %d lists block %d twice", desc, b))
			}
			seen[b] = true
			if prev, ok := owner[int(b)]; ok && prev != desc {
				problems = append(problems, fmt.Sprintf("block %d claimed by descriptors %d and %d", b, prev, desc))
			}
			owner[int(b)] = desc
		}
	}

	for b := DataBlockStart; b < NumBlocks; b++ {
		_, inUse := owner[b]
		if d.blockUsed(b) != inUse {
			problems = append(problems, fmt.Sprintf("bitmap/descriptor mismatch at block %d (bitmap=%v, referenced=%v)", b, d.blockUsed(b), inUse))
		}
	}

	return problems
}

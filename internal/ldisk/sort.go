package ldisk

import "sort"

// blockSlice sorts a set of block numbers into ascending order for
// diagnostic output.
type blockSlice []int32

func (p blockSlice) Len() int           { return len(p) }
func (p blockSlice) Less(i, j int) bool { return p[i] < p[j] }
func (p blockSlice) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }

// AllocatedBlocks returns every data block currently marked used in the
// bitmap, sorted ascending. Used by the offline image checker to
// summarize disk occupancy.
func (d *Disk) AllocatedBlocks() []int32 {
	var blocks blockSlice
	for b := DataBlockStart; b < NumBlocks; b++ {
		if d.blockUsed(b) {
			blocks = append(blocks, int32(b))
		}
	}
	sort.Sort(blocks)
	return []int32(blocks)
}

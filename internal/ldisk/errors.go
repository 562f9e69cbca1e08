package ldisk

import "github.com/pkg/errors"

// Sentinel errors returned across the ldisk boundary. The source
// material leaves these cases undefined (find_free_block and
// init_descriptor both fall off the end on exhaustion); SPEC_FULL.md
// mandates returning them explicitly instead.
var (
	ErrDiskFull          = errors.New("no free data block")
	ErrNoFreeDescriptor  = errors.New("no free descriptor")
	ErrBadDescriptor     = errors.New("descriptor index out of range")
	ErrBadBlock          = errors.New("block index out of range")
	ErrNotMounted        = errors.New("disk not mounted")
)

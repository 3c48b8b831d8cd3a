package fabric

import "github.com/sarchlab/zeomap/dfg"

// Capability is a bitmask of dfg.Tag values a tile can execute. One bit
// test replaces the flag-per-capability chain (canAdd, canMul, ...) the
// mapper's original source used.
type Capability uint32

// CapabilityFor returns the Capability with one bit set for each given tag.
func CapabilityFor(tags ...dfg.Tag) Capability {
	var c Capability
	for _, t := range tags {
		c |= 1 << uint(t)
	}
	return c
}

// AllCapabilities returns a bitmask with every known tag set, the default
// capability for an interior, fully general tile.
func AllCapabilities() Capability {
	var c Capability
	for i := 0; i < dfg.NumTags(); i++ {
		c |= 1 << uint(i)
	}
	return c
}

// Has reports whether the capability set includes the given tag.
func (c Capability) Has(t dfg.Tag) bool {
	return c&(1<<uint(t)) != 0
}

// With returns a copy of c with the given tags added.
func (c Capability) With(tags ...dfg.Tag) Capability {
	return c | CapabilityFor(tags...)
}

// Without returns a copy of c with the given tags removed.
func (c Capability) Without(tags ...dfg.Tag) Capability {
	return c &^ CapabilityFor(tags...)
}

package fabric

import "github.com/sarchlab/zeomap/dfg"

// LinkID identifies a Link within a Fabric.
type LinkID int

type linkOccupant struct {
	Producer    dfg.NodeID
	Bypass      bool
	EmitsOutput bool
}

// Link is a directed connection from one tile to another.
type Link struct {
	ID       LinkID
	Src, Dst TileID
	// SrcSide/DstSide are this link's direction-id as seen from each
	// endpoint, used for register port bookkeeping on the owning tile.
	SrcSide, DstSide Side

	Disabled bool

	cycleBoundary int
	occupancy     []*linkOccupant
}

func (l *Link) reset(cycleBoundary int) {
	l.cycleBoundary = cycleBoundary
	l.occupancy = make([]*linkOccupant, cycleBoundary)
}

// CanOccupy reports whether producer may reserve this link at cycle (and
// all of its modulo-II periodic copies) without violating invariant I2: at
// most one DFG node's data may traverse a link in a given slot. A link
// already booked by the same producer is not a conflict — that's exactly
// the multicast-reuse case §4.2 gives a cost bonus for.
func (l *Link) CanOccupy(producer dfg.NodeID, cycle, ii int) bool {
	if l.Disabled {
		return false
	}
	start := ((cycle % ii) + ii) % ii
	for c := start; c < l.cycleBoundary; c += ii {
		if o := l.occupancy[c]; o != nil && o.Producer != producer {
			return false
		}
	}
	return true
}

// Occupy writes duration consecutive slots starting at startCycle, each
// repeating with stride ii (or 1 in static-elastic mode), per §4.2. Within
// each periodic copy only the first of the duration slots carries
// EmitsOutput; callers must set emitsOutput=false on any continuation call
// for the same logical edge.
func (l *Link) Occupy(producer dfg.NodeID, startCycle, duration, ii int, isBypass, emitsOutput, staticElastic bool) {
	write := func(base int) {
		for d := 0; d < duration; d++ {
			c := base + d
			if c < 0 || c >= l.cycleBoundary {
				continue
			}
			l.occupancy[c] = &linkOccupant{
				Producer:    producer,
				Bypass:      isBypass,
				EmitsOutput: emitsOutput && d == 0,
			}
		}
	}

	if staticElastic {
		write(startCycle)
		return
	}

	start := ((startCycle % ii) + ii) % ii
	for base := start; base < l.cycleBoundary; base += ii {
		write(base)
	}
}

// OccupantAt returns the occupant recorded at cycle c, or nil if free.
func (l *Link) OccupantAt(c int) *linkOccupant {
	if c < 0 || c >= len(l.occupancy) {
		return nil
	}
	return l.occupancy[c]
}

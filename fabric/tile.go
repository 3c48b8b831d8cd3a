package fabric

import "github.com/sarchlab/zeomap/dfg"

// TileID identifies a Tile within a Fabric. Dense, zero-based, so it can
// index arena slices directly instead of following pointers the way the
// mapper's original source chased CGRANode*.
type TileID int

type tileOccupant struct {
	Node        dfg.NodeID
	Phase       Phase
	Tag         dfg.Tag
	Pipelinable bool
}

// Tile is a functional unit at a fixed (X, Y) grid coordinate.
type Tile struct {
	ID         TileID
	X, Y       int
	Capability Capability

	// CtrlMemSize (S) bounds how many distinct DFG nodes may be mapped
	// onto this tile across one II window.
	CtrlMemSize int
	// RegisterCount (R) is the size of the tile's local register file.
	RegisterCount int

	Disabled bool

	ii            int
	cycleBoundary int
	occupancy     [][]tileOccupant
	mappedNodes   map[dfg.NodeID]bool

	// regDuration[cycle][reg] and regTiming[cycle][reg] hold the port-id
	// of the link currently resident in that register, or -1 if free.
	// AllocateReg's busy-scan reads regDuration, which covers every cycle
	// of a reservation; regTiming marks only each reservation's start
	// cycles and is written but not read within this package.
	regDuration [][]int
	regTiming   [][]int
}

// reset clears all time-expanded occupancy state and resizes it for a new
// II attempt. Called once per constructMRRG, never incrementally patched,
// per the arena-per-attempt discipline: there is no history to undo on a
// II retry or a DFS backtrack, so there must be nothing to undo.
func (t *Tile) reset(ii, cycleBoundary int) {
	t.ii = ii
	t.cycleBoundary = cycleBoundary
	t.occupancy = make([][]tileOccupant, cycleBoundary)
	t.mappedNodes = make(map[dfg.NodeID]bool)

	t.regDuration = make([][]int, cycleBoundary)
	t.regTiming = make([][]int, cycleBoundary)
	for c := 0; c < cycleBoundary; c++ {
		t.regDuration[c] = freeRegRow(t.RegisterCount)
		t.regTiming[c] = freeRegRow(t.RegisterCount)
	}
}

func freeRegRow(n int) []int {
	row := make([]int, n)
	for i := range row {
		row[i] = -1
	}
	return row
}

// CtrlMemItems returns the count of distinct DFG nodes currently mapped
// onto this tile.
func (t *Tile) CtrlMemItems() int {
	return len(t.mappedNodes)
}

// MappedNodes returns the set of DFG nodes currently mapped onto this tile.
func (t *Tile) MappedNodes() []dfg.NodeID {
	out := make([]dfg.NodeID, 0, len(t.mappedNodes))
	for n := range t.mappedNodes {
		out = append(out, n)
	}
	return out
}

func sharesFUAndBothPipelinable(a tileOccupant, tag dfg.Tag, pipelinable bool) bool {
	return a.Tag == tag && a.Pipelinable && pipelinable
}

// CanOccupy implements the MRRG occupancy rule of spec §4.1: it scans every
// modulo-II periodic copy of cycle and rejects if any of them conflicts
// with the node being placed.
func (t *Tile) CanOccupy(node dfg.Node, cycle, ii int) bool {
	if t.Disabled || !t.Capability.Has(node.Tag) {
		return false
	}
	if !t.mappedNodes[node.ID] && t.CtrlMemItems() >= t.CtrlMemSize {
		return false
	}

	latency := node.ExecLatency
	start := ((cycle % ii) + ii) % ii
	for c := start; c < t.cycleBoundary; c += ii {
		if latency <= 1 {
			for _, o := range t.occupancy[c] {
				if o.Phase != PipeIn {
					return false
				}
			}
			continue
		}

		for _, o := range t.occupancy[c] {
			if o.Phase == Single || o.Phase == PipeStart {
				return false
			}
			if (o.Phase == PipeIn || o.Phase == PipeEnd) &&
				!sharesFUAndBothPipelinable(o, node.Tag, node.IsPipelinable) {
				return false
			}
		}

		end := c + latency - 1
		if end < t.cycleBoundary {
			for _, o := range t.occupancy[end] {
				if o.Phase == Single || o.Phase == PipeEnd {
					return false
				}
				if (o.Phase == PipeIn || o.Phase == PipeStart) &&
					!sharesFUAndBothPipelinable(o, node.Tag, node.IsPipelinable) {
					return false
				}
			}
		}
		// Intermediate slots between start and end may freely overlap
		// PipeIn entries of any node: a drained pipeline stage doesn't
		// contend for the FU's decode/issue resources.
	}
	return true
}

// SetDFGNode writes the occupancy log for node starting at cycle, per
// spec §4.1. If staticElastic is true the write is a single, non-periodic
// occurrence (stride 1, no modulo wraparound); otherwise it repeats every
// ii cycles across the whole cycle-expanded window.
func (t *Tile) SetDFGNode(node dfg.Node, cycle, ii int, staticElastic bool) {
	latency := node.ExecLatency

	write := func(c int) {
		if c < 0 || c >= t.cycleBoundary {
			return
		}
		switch {
		case latency <= 1:
			t.occupancy[c] = append(t.occupancy[c], tileOccupant{
				Node: node.ID, Phase: Single, Tag: node.Tag, Pipelinable: node.IsPipelinable,
			})
		default:
			for off := 0; off < latency; off++ {
				cc := c + off
				if cc >= t.cycleBoundary {
					break
				}
				phase := PipeIn
				switch off {
				case 0:
					phase = PipeStart
				case latency - 1:
					phase = PipeEnd
				}
				t.occupancy[cc] = append(t.occupancy[cc], tileOccupant{
					Node: node.ID, Phase: phase, Tag: node.Tag, Pipelinable: node.IsPipelinable,
				})
			}
		}
	}

	if staticElastic {
		write(cycle)
	} else {
		start := ((cycle % ii) + ii) % ii
		for c := start; c < t.cycleBoundary; c += ii {
			write(c)
		}
	}

	if !t.mappedNodes[node.ID] {
		t.mappedNodes[node.ID] = true
	}
}

// AllocateReg binds portID into the first free register slot whose
// occupancy window is clear across every modulo-II copy of cycle, in both
// directions (forward toward cycleBoundary and backward toward 0), per
// §4.1 and invariant I3. It returns the chosen register index and true on
// success. Unlike the mapper's original source (open question, see
// DESIGN.md), this never allocates silently on failure: callers must
// check ok.
func (t *Tile) AllocateReg(portID, cycle, duration, ii int) (regIdx int, ok bool) {
	for i := 0; i < t.RegisterCount; i++ {
		if t.regWindowFree(i, cycle, duration, ii) {
			t.writeReg(i, portID, cycle, duration, ii)
			return i, true
		}
	}
	return -1, false
}

func (t *Tile) regWindowFree(reg, cycle, duration, ii int) bool {
	for c := cycle; c < t.cycleBoundary; c += ii {
		for d := 0; d < duration; d++ {
			if c+d < t.cycleBoundary && t.regDuration[c+d][reg] != -1 {
				return false
			}
		}
	}
	for c := cycle; c >= 0; c -= ii {
		for d := 0; d < duration; d++ {
			if c+d < t.cycleBoundary && t.regDuration[c+d][reg] != -1 {
				return false
			}
		}
	}
	return true
}

func (t *Tile) writeReg(reg, portID, cycle, duration, ii int) {
	for c := cycle; c < t.cycleBoundary; c += ii {
		t.regTiming[c][reg] = portID
		for d := 0; d < duration; d++ {
			if c+d < t.cycleBoundary {
				t.regDuration[c+d][reg] = portID
			}
		}
	}
	for c := cycle; c >= 0; c -= ii {
		t.regTiming[c][reg] = portID
		for d := 0; d < duration; d++ {
			if c+d < t.cycleBoundary {
				t.regDuration[c+d][reg] = portID
			}
		}
	}
}

// OccupantsAt returns the occupants recorded for this tile at cycle c, for
// introspection by tests and the ASCII renderer.
func (t *Tile) OccupantsAt(c int) []tileOccupant {
	if c < 0 || c >= len(t.occupancy) {
		return nil
	}
	return t.occupancy[c]
}

// CycleBoundary returns the time-expanded slot count currently allocated
// for this tile (set by the last reset/constructMRRG call).
func (t *Tile) CycleBoundary() int {
	return t.cycleBoundary
}

// Package cost implements the placement cost model of spec §4.4: a
// weighted scalar combining routing distance, congestion, capability fit
// and multicast reuse, used to rank candidate (tile, path) pairs.
package cost

import (
	"github.com/sarchlab/zeomap/dfg"
	"github.com/sarchlab/zeomap/fabric"
	"github.com/sarchlab/zeomap/router"
)

// PlacementView is the subset of the scheduler's mapping state the cost
// model needs: where each already-placed node landed. Expressed as an
// interface (not a direct dependency on the scheduler package) so this
// package and the scheduler don't form an import cycle, and so tests can
// supply a fake view via gomock.
type PlacementView interface {
	TileOf(id dfg.NodeID) (fabric.TileID, bool)
}

// Compute returns the placement cost of mapping node v onto tile at the
// current II, having routed path from its chosen producer. The headroom
// term is evaluated at v's specific candidate cycle (path.Arrival()) and the
// multicast reuse term at each hop's own cycle, not "ever, anywhere" in the
// MRRG.
func Compute(f *fabric.Fabric, g *dfg.Graph, view PlacementView, v dfg.Node, tile *fabric.Tile, path router.Path, ii int) float64 {
	c := float64(path.Arrival() + 1)
	c += 1.5 * float64(path.SlotGaps())
	if len(path) == 1 {
		c += 2
	}
	c += float64(tile.CtrlMemItems()) / 2

	if len(v.Succs) > 1 {
		c += 4 - float64(len(f.OutLinks(tile.ID))) +
			absInt(f.Cols/2-tile.X) + absInt(f.Rows/2-tile.X)
	}

	for _, p := range v.Preds {
		if pt, ok := view.TileOf(p); ok && pt == tile.ID {
			if len(g.Get(p).Succs) > 2 {
				c -= 0.5
			}
		}
	}

	for _, nb := range f.NeighborTiles(tile.ID) {
		for _, mapped := range f.Tile(nb).MappedNodes() {
			if len(g.Get(mapped).Succs) > 2 {
				c += 0.4
			}
		}
	}

	canLoadStore := tile.Capability.Has(dfg.Load) || tile.Capability.Has(dfg.Store)
	isLoadStore := v.Tag == dfg.Load || v.Tag == dfg.Store
	if canLoadStore && !isLoadStore {
		c += 2
	}

	c -= 0.5 * float64(reuseEligibleHops(f, path))

	arrival := path.Arrival()
	c -= 0.3 * float64(freeInLinks(f, tile.ID, v.ID, arrival, ii)+freeOutLinks(f, tile.ID, v.ID, arrival, ii))

	return c
}

func absInt(x int) float64 {
	if x < 0 {
		return float64(-x)
	}
	return float64(x)
}

// reuseEligibleHops counts path hops whose link is already occupied, at that
// specific hop's cycle, by some producer — a link in active use at that slot
// is one a concurrent multicast emission could ride along with, which is
// exactly the bonus §4.4 describes.
func reuseEligibleHops(f *fabric.Fabric, path router.Path) int {
	n := 0
	for i := 1; i < len(path); i++ {
		link, ok := f.GetLink(path[i-1].Tile, path[i].Tile)
		if ok && link.OccupantAt(path[i].Cycle) != nil {
			n++
		}
	}
	return n
}

// freeInLinks/freeOutLinks count the links at tile that v could still
// occupy at its candidate cycle — the headroom term of §4.4 — checked at
// that one cycle (and its modulo-II periodic copies), not across the whole
// MRRG.
func freeInLinks(f *fabric.Fabric, t fabric.TileID, v dfg.NodeID, cycle, ii int) int {
	n := 0
	for _, l := range f.InLinks(t) {
		if l.CanOccupy(v, cycle, ii) {
			n++
		}
	}
	return n
}

func freeOutLinks(f *fabric.Fabric, t fabric.TileID, v dfg.NodeID, cycle, ii int) int {
	n := 0
	for _, l := range f.OutLinks(t) {
		if l.CanOccupy(v, cycle, ii) {
			n++
		}
	}
	return n
}

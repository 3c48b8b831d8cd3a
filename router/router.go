// Package router implements the per-edge Dijkstra search over the MRRG
// (spec §4.3): given a producer already placed on a tile at a known cycle,
// find a time-expanded path of links to a candidate consumer tile.
package router

import (
	"container/heap"
	"errors"

	"github.com/sarchlab/zeomap/dfg"
	"github.com/sarchlab/zeomap/fabric"
)

// ErrUnroutable is returned when no path exists from the producer's tile to
// the requested consumer tile within the current MRRG's cycle boundary.
var ErrUnroutable = errors.New("router: no path within cycle boundary")

// FabricView is the subset of *fabric.Fabric the search needs. Expressed as
// an interface, not a direct struct dependency, so router_test.go can force
// an Infeasible/unreachable condition with a hand-built fake instead of a
// real mesh.
type FabricView interface {
	CycleBoundary() int
	NumTiles() int
	Tiles() []*fabric.Tile
	OutLinks(t fabric.TileID) []*fabric.Link
	Tile(id fabric.TileID) *fabric.Tile
}

// Hop is one stop along a routed Path: a tile and the cycle at which the
// producer's data arrives there. Replacing the mapper's original
// tile-to-cycle map plus a separate cycle-to-tile "reorder" map, Path is an
// explicit ordered sequence, so a tile visited twice by the same path is
// simply two distinct Hops rather than an ambiguous double map entry.
type Hop struct {
	Tile  fabric.TileID
	Cycle int
}

// Path is the ordered sequence of hops from a producer's tile to a
// consumer's tile.
type Path []Hop

// Request packages the inputs to a single Dijkstra search.
type Request struct {
	Producer          dfg.Node
	ProducerTile      fabric.TileID
	ProducerDoneCycle int // C_u + execLatency(u) - 1

	Consumer     dfg.Node
	ConsumerTile fabric.TileID

	// TargetCycle, when >= 0, is the consumer's already-committed
	// startCycle (used by predecessor/successor stitching in the
	// scheduler, where v's cycle was fixed by its primary producer's
	// path). When negative, the search's own earliest arrival becomes
	// the consumer's startCycle.
	TargetCycle int
}

type poolItem struct {
	tile fabric.TileID
	dist int
	seq  int
	idx  int
}

type pool []*poolItem

func (p pool) Len() int { return len(p) }
func (p pool) Less(i, j int) bool {
	if p[i].dist != p[j].dist {
		return p[i].dist < p[j].dist
	}
	return p[i].seq < p[j].seq
}
func (p pool) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
	p[i].idx, p[j].idx = i, j
}
func (p *pool) Push(x any) {
	item := x.(*poolItem)
	item.idx = len(*p)
	*p = append(*p, item)
}
func (p *pool) Pop() any {
	old := *p
	n := len(old)
	item := old[n-1]
	*p = old[:n-1]
	return item
}

// Route runs the per-edge Dijkstra search of spec §4.3.
func Route(f FabricView, ii int, req Request) (Path, error) {
	cycleBoundary := f.CycleBoundary()

	distance := make(map[fabric.TileID]int, f.NumTiles())
	timing := make(map[fabric.TileID]int, f.NumTiles())
	previous := make(map[fabric.TileID]fabric.TileID)
	visited := make(map[fabric.TileID]bool, f.NumTiles())
	items := make(map[fabric.TileID]*poolItem, f.NumTiles())

	for _, t := range f.Tiles() {
		distance[t.ID] = cycleBoundary
		timing[t.ID] = req.ProducerDoneCycle
	}
	distance[req.ProducerTile] = 0

	pq := &pool{}
	heap.Init(pq)
	seq := 0
	push := func(tile fabric.TileID) {
		item := &poolItem{tile: tile, dist: distance[tile], seq: seq}
		seq++
		items[tile] = item
		heap.Push(pq, item)
	}
	push(req.ProducerTile)

	var finalTile fabric.TileID
	found := false

	for pq.Len() > 0 {
		m := heap.Pop(pq).(*poolItem)
		if visited[m.tile] {
			continue
		}
		visited[m.tile] = true

		if m.tile == req.ConsumerTile {
			finalTile = m.tile
			found = true
			break
		}

		for _, link := range f.OutLinks(m.tile) {
			if link.Disabled || visited[link.Dst] {
				continue
			}

			c := timing[m.tile]
			for {
				if c > cycleBoundary {
					break
				}
				if link.CanOccupy(req.Producer.ID, c, ii) {
					tentative := distance[m.tile] + (c - timing[m.tile]) + 1
					if tentative < distance[link.Dst] {
						distance[link.Dst] = tentative
						timing[link.Dst] = c + 1
						previous[link.Dst] = m.tile
						push(link.Dst)
					}
					break
				}
				c++
			}
		}
	}

	if !found {
		return nil, ErrUnroutable
	}

	arrival := timing[finalTile]
	if arrival > cycleBoundary {
		return nil, ErrUnroutable
	}

	// A non-negative TargetCycle names an already-committed consumer
	// start cycle, which a back-edge route reaches by wrapping around
	// through mod-II arithmetic in the caller (scheduler.commitPath) —
	// arrival exceeding TargetCycle is the defining shape of that
	// wraparound, not a failure. Only an earliest-arrival search (a
	// negative TargetCycle) needs the consumer's slot checked here,
	// since it is the one choosing the consumer's start cycle.
	if req.TargetCycle < 0 {
		if !f.Tile(req.ConsumerTile).CanOccupy(req.Consumer, arrival, ii) {
			return nil, ErrUnroutable
		}
	}

	return buildPath(req.ProducerTile, req.ConsumerTile, previous, timing), nil
}

func buildPath(src, dst fabric.TileID, previous map[fabric.TileID]fabric.TileID, timing map[fabric.TileID]int) Path {
	var rev Path
	cur := dst
	for {
		rev = append(rev, Hop{Tile: cur, Cycle: timing[cur]})
		if cur == src {
			break
		}
		cur = previous[cur]
	}

	path := make(Path, len(rev))
	for i, h := range rev {
		path[len(rev)-1-i] = h
	}
	return path
}

// Arrival returns the cycle at which the producer's data reaches the last
// hop of the path.
func (p Path) Arrival() int {
	return p[len(p)-1].Cycle
}

// SlotGaps counts the number of consecutive hops whose cycle advances by
// more than one, the "forced stalls" term of the placement cost model.
func (p Path) SlotGaps() int {
	gaps := 0
	for i := 1; i < len(p); i++ {
		if p[i].Cycle-p[i-1].Cycle > 1 {
			gaps++
		}
	}
	return gaps
}

// Package fabric models the CGRA: a 2D mesh of Tiles joined by directional
// Links, plus the modulo-II time-expanded occupancy state (the MRRG) that
// the router, cost model and scheduler read and write. The MRRG is not a
// separate type — it is this collective state, owned by Tile and Link, in
// keeping with the mapper's data model.
package fabric

import "github.com/sarchlab/zeomap/dfg"

// Fabric is the CGRA grid: the set of Tiles, the set of Links between them,
// and their neighbor relationships.
type Fabric struct {
	Rows, Cols int

	tiles []Tile
	links []Link

	grid      [][]TileID // grid[y][x] = TileID
	outLinks  map[TileID][]LinkID
	inLinks   map[TileID][]LinkID
	linkIndex map[[2]TileID]LinkID

	ii            int
	cycleBoundary int
}

// TileAt returns the tile at grid coordinate (x, y).
func (f *Fabric) TileAt(x, y int) *Tile {
	return &f.tiles[f.grid[y][x]]
}

// Tile returns the tile with the given ID.
func (f *Fabric) Tile(id TileID) *Tile {
	return &f.tiles[id]
}

// Tiles returns every tile in row-major (y-major) order, the iteration
// order the II driver uses when enumerating placement candidates.
func (f *Fabric) Tiles() []*Tile {
	out := make([]*Tile, 0, len(f.tiles))
	for y := 0; y < f.Rows; y++ {
		for x := 0; x < f.Cols; x++ {
			out = append(out, &f.tiles[f.grid[y][x]])
		}
	}
	return out
}

// Link returns the link with the given ID.
func (f *Fabric) Link(id LinkID) *Link {
	return &f.links[id]
}

// Links returns every link in declaration order.
func (f *Fabric) Links() []*Link {
	out := make([]*Link, len(f.links))
	for i := range f.links {
		out[i] = &f.links[i]
	}
	return out
}

// GetLink returns the link directly connecting src to dst, if one exists.
func (f *Fabric) GetLink(src, dst TileID) (*Link, bool) {
	id, ok := f.linkIndex[[2]TileID{src, dst}]
	if !ok {
		return nil, false
	}
	return &f.links[id], true
}

// OutLinks returns the out-links of a tile in the order the fabric declared
// them when built — the neighbor iteration order §5 requires the router and
// the II driver to follow.
func (f *Fabric) OutLinks(t TileID) []*Link {
	ids := f.outLinks[t]
	out := make([]*Link, 0, len(ids))
	for _, id := range ids {
		out = append(out, &f.links[id])
	}
	return out
}

// InLinks returns the in-links of a tile in declaration order.
func (f *Fabric) InLinks(t TileID) []*Link {
	ids := f.inLinks[t]
	out := make([]*Link, 0, len(ids))
	for _, id := range ids {
		out = append(out, &f.links[id])
	}
	return out
}

// NeighborTiles returns the set of tiles directly reachable from or to t via
// a single link, used by the placement cost model's hub-crowding term.
func (f *Fabric) NeighborTiles(t TileID) []TileID {
	seen := map[TileID]bool{}
	var out []TileID
	for _, id := range f.outLinks[t] {
		dst := f.links[id].Dst
		if !seen[dst] {
			seen[dst] = true
			out = append(out, dst)
		}
	}
	for _, id := range f.inLinks[t] {
		src := f.links[id].Src
		if !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	return out
}

// FUCount returns the number of usable (non-disabled) tiles, used by the II
// driver's resMII computation.
func (f *Fabric) FUCount() int {
	n := 0
	for i := range f.tiles {
		if !f.tiles[i].Disabled {
			n++
		}
	}
	return n
}

// NumTiles returns the total tile count, including disabled tiles.
func (f *Fabric) NumTiles() int {
	return len(f.tiles)
}

// ConstructMRRG clears and re-sizes every tile's and link's time-expanded
// occupancy state for a new II attempt, per spec §4.6 step 1 and the
// arena-per-attempt discipline of §5/§9: there is nothing to roll back
// because nothing from the previous attempt survives.
func (f *Fabric) ConstructMRRG(ii int) {
	f.ii = ii
	f.cycleBoundary = f.NumTiles() * ii * ii

	for i := range f.tiles {
		f.tiles[i].reset(ii, f.cycleBoundary)
	}
	for i := range f.links {
		f.links[i].reset(f.cycleBoundary)
	}
}

// II returns the Initiation Interval of the current MRRG construction.
func (f *Fabric) II() int {
	return f.ii
}

// CycleBoundary returns the time-expanded slot index upper bound of the
// current MRRG construction.
func (f *Fabric) CycleBoundary() int {
	return f.cycleBoundary
}

// CapableTiles returns, in row-major order, every enabled tile whose
// capability bitset includes tag.
func (f *Fabric) CapableTiles(tag dfg.Tag) []*Tile {
	var out []*Tile
	for _, t := range f.Tiles() {
		if !t.Disabled && t.Capability.Has(tag) {
			out = append(out, t)
		}
	}
	return out
}

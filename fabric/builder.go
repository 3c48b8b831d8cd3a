package fabric

// Builder constructs a Fabric. It follows the same value-receiver With*
// chain zeonica's config.DeviceBuilder uses: every With* call returns an
// updated copy, and the chain terminates in Build.
type Builder struct {
	rows, cols        int
	defaultCapability Capability
	registerCount     int
	ctrlMemSize       int
	disabledTiles     map[[2]int]bool
	tileOverrides     map[[2]int]Capability
	fullyConnected    bool
	torus             bool
}

// NewBuilder returns a Builder seeded with sensible interior-tile defaults:
// every capability, 8 registers, and a ctrl-mem capacity of 4 — the values
// zeonica's own sample CGRAs use for their functional units.
func NewBuilder() Builder {
	return Builder{
		defaultCapability: AllCapabilities(),
		registerCount:     8,
		ctrlMemSize:       4,
		disabledTiles:     map[[2]int]bool{},
		tileOverrides:     map[[2]int]Capability{},
	}
}

// WithSize sets the mesh dimensions.
func (b Builder) WithSize(cols, rows int) Builder {
	b.cols, b.rows = cols, rows
	return b
}

// WithDefaultCapability sets the capability bitmask given to every tile
// that has no per-tile override.
func (b Builder) WithDefaultCapability(c Capability) Builder {
	b.defaultCapability = c
	return b
}

// WithRegisterCount sets the per-tile register file size R.
func (b Builder) WithRegisterCount(n int) Builder {
	b.registerCount = n
	return b
}

// WithCtrlMemSize sets the per-tile ctrl-mem capacity S.
func (b Builder) WithCtrlMemSize(n int) Builder {
	b.ctrlMemSize = n
	return b
}

// WithFullMesh makes every tile a neighbor of every other tile instead of
// only its four cardinal neighbors (used by small fully-connected test
// fabrics, e.g. scenario S1/S2 in spec §8).
func (b Builder) WithFullMesh() Builder {
	b.fullyConnected = true
	return b
}

// WithTorus wraps the mesh's cardinal links around the grid edges.
func (b Builder) WithTorus() Builder {
	b.torus = true
	return b
}

// DisableTile marks the tile at (x, y) globally unusable.
func (b Builder) DisableTile(x, y int) Builder {
	b.disabledTiles[[2]int{x, y}] = true
	return b
}

// WithTileCapability overrides the capability bitmask of a single tile,
// e.g. the load/store-only border tiles of spec scenario S3.
func (b Builder) WithTileCapability(x, y int, c Capability) Builder {
	b.tileOverrides[[2]int{x, y}] = c
	return b
}

// Build assembles the Fabric.
func (b Builder) Build() *Fabric {
	f := &Fabric{
		Rows:      b.rows,
		Cols:      b.cols,
		grid:      make([][]TileID, b.rows),
		outLinks:  map[TileID][]LinkID{},
		inLinks:   map[TileID][]LinkID{},
		linkIndex: map[[2]TileID]LinkID{},
	}

	f.tiles = make([]Tile, 0, b.rows*b.cols)
	for y := 0; y < b.rows; y++ {
		f.grid[y] = make([]TileID, b.cols)
		for x := 0; x < b.cols; x++ {
			cap := b.defaultCapability
			if c, ok := b.tileOverrides[[2]int{x, y}]; ok {
				cap = c
			}
			id := TileID(len(f.tiles))
			f.tiles = append(f.tiles, Tile{
				ID:            id,
				X:             x,
				Y:             y,
				Capability:    cap,
				CtrlMemSize:   b.ctrlMemSize,
				RegisterCount: b.registerCount,
				Disabled:      b.disabledTiles[[2]int{x, y}],
			})
			f.grid[y][x] = id
		}
	}

	if b.fullyConnected {
		b.connectFullMesh(f)
	} else {
		b.connectCardinal(f)
	}

	return f
}

func (b Builder) addLink(f *Fabric, src, dst TileID, srcSide, dstSide Side) {
	id := LinkID(len(f.links))
	f.links = append(f.links, Link{ID: id, Src: src, Dst: dst, SrcSide: srcSide, DstSide: dstSide})
	f.outLinks[src] = append(f.outLinks[src], id)
	f.inLinks[dst] = append(f.inLinks[dst], id)
	f.linkIndex[[2]TileID{src, dst}] = id
}

// connectCardinal wires each tile to its North/East/South/West neighbor,
// wrapping around the grid edges when WithTorus was set.
func (b Builder) connectCardinal(f *Fabric) {
	for y := 0; y < b.rows; y++ {
		for x := 0; x < b.cols; x++ {
			src := f.grid[y][x]

			if nx, ny, ok := b.step(x, y, 0, -1); ok {
				b.addLink(f, src, f.grid[ny][nx], North, South)
			}
			if nx, ny, ok := b.step(x, y, 1, 0); ok {
				b.addLink(f, src, f.grid[ny][nx], East, West)
			}
			if nx, ny, ok := b.step(x, y, 0, 1); ok {
				b.addLink(f, src, f.grid[ny][nx], South, North)
			}
			if nx, ny, ok := b.step(x, y, -1, 0); ok {
				b.addLink(f, src, f.grid[ny][nx], West, East)
			}
		}
	}
}

func (b Builder) step(x, y, dx, dy int) (nx, ny int, ok bool) {
	nx, ny = x+dx, y+dy
	if b.torus {
		nx = (nx + b.cols) % b.cols
		ny = (ny + b.rows) % b.rows
		return nx, ny, true
	}
	if nx < 0 || nx >= b.cols || ny < 0 || ny >= b.rows {
		return 0, 0, false
	}
	return nx, ny, true
}

// connectFullMesh wires every tile directly to every other tile, used for
// small test fabrics where routing distance should never be the limiting
// factor.
func (b Builder) connectFullMesh(f *Fabric) {
	for y := 0; y < b.rows; y++ {
		for x := 0; x < b.cols; x++ {
			src := f.grid[y][x]
			for oy := 0; oy < b.rows; oy++ {
				for ox := 0; ox < b.cols; ox++ {
					if ox == x && oy == y {
						continue
					}
					b.addLink(f, src, f.grid[oy][ox], East, West)
				}
			}
		}
	}
}

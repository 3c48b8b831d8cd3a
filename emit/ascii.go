package emit

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/zeomap/dfg"
	"github.com/sarchlab/zeomap/fabric"
	"github.com/sarchlab/zeomap/scheduler"
)

// RenderASCII writes a cycle-by-cycle rendering of the mesh: one table per
// cycle, each cell naming the op mapped to that tile and decorated with
// Unicode arrows for the link traffic leaving it this cycle, the way
// zeonica's core.PrintState renders register/buffer state via
// go-pretty/table.
func RenderASCII(w io.Writer, f *fabric.Fabric, g *dfg.Graph, session *scheduler.Session, ii int) {
	for cycle := 0; cycle < ii; cycle++ {
		fmt.Fprintf(w, "== cycle %d (mod %d) ==\n", cycle, ii)

		t := table.NewWriter()
		t.SetOutputMirror(w)

		header := table.Row{""}
		for x := 0; x < f.Cols; x++ {
			header = append(header, fmt.Sprintf("x=%d", x))
		}
		t.AppendHeader(header)

		for y := 0; y < f.Rows; y++ {
			row := table.Row{fmt.Sprintf("y=%d", y)}
			for x := 0; x < f.Cols; x++ {
				row = append(row, cellFor(f, g, f.TileAt(x, y), cycle))
			}
			t.AppendRow(row)
		}

		t.Render()
		fmt.Fprintln(w)
	}
}

func cellFor(f *fabric.Fabric, g *dfg.Graph, tile *fabric.Tile, cycle int) string {
	label := "."
	if occupants := tile.OccupantsAt(cycle); len(occupants) > 0 {
		node := g.Get(occupants[0].Node)
		label = node.Name
	}

	arrows := arrowsFor(f, tile, cycle)
	if arrows == "" {
		return label
	}
	return label + " " + arrows
}

func arrowsFor(f *fabric.Fabric, tile *fabric.Tile, cycle int) string {
	var hasN, hasS, hasE, hasW bool
	for _, link := range f.OutLinks(tile.ID) {
		if occ := link.OccupantAt(cycle); occ != nil {
			switch link.SrcSide {
			case fabric.North:
				hasN = true
			case fabric.South:
				hasS = true
			case fabric.East:
				hasE = true
			case fabric.West:
				hasW = true
			}
		}
	}

	vert := ""
	switch {
	case hasN && hasS:
		vert = "⇅" // ⇅
	case hasN:
		vert = "↑" // ↑
	case hasS:
		vert = "↓" // ↓
	}

	horiz := ""
	switch {
	case hasE && hasW:
		horiz = "⇄" // ⇄
	case hasE:
		horiz = "→" // →
	case hasW:
		horiz = "←" // ←
	}

	return vert + horiz
}

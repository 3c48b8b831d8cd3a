// Package emit writes the mapper's persisted artifacts: the two JSON
// documents of spec §6.2 and the ASCII cycle-by-cycle mesh dump of §6.4.
// None of this is part of the mapper's hard-part core — it's the
// boundary collaborators at the edge of the session consume.
package emit

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/rs/xid"

	"github.com/sarchlab/zeomap/dfg"
	"github.com/sarchlab/zeomap/fabric"
	"github.com/sarchlab/zeomap/scheduler"
)

// ConfigRecord is one tile's configuration for one cycle.
type ConfigRecord struct {
	Tile   string `json:"tile"`
	Cycle  int    `json:"cycle"`
	Op     string `json:"op,omitempty"`
	Phase  string `json:"phase,omitempty"`

	PredicateInputs []string `json:"predicate_inputs,omitempty"`
	Outputs         map[string]string `json:"outputs,omitempty"`

	// Static-elastic-only fields: a single non-modulo cycle's crossbar
	// wiring, matching the field names spec §6.2 names explicitly.
	SrcA     string   `json:"src_a,omitempty"`
	SrcB     string   `json:"src_b,omitempty"`
	Dst      string   `json:"dst,omitempty"`
	BypassSrc []string `json:"bps_src,omitempty"`
	BypassDst []string `json:"bps_dst,omitempty"`
}

// ConfigDoc is the top-level config.json document.
type ConfigDoc struct {
	RunID         string         `json:"run_id"`
	II            int            `json:"ii"`
	StaticElastic bool           `json:"static_elastic"`
	Records       []ConfigRecord `json:"records"`
}

// WriteConfig emits config.json for a completed mapping session. In
// parameterizable mode the record set spans cycles 0..II; in static-elastic
// mode it spans a single cycle.
func WriteConfig(w io.Writer, f *fabric.Fabric, g *dfg.Graph, session *scheduler.Session, ii int, staticElastic bool) error {
	doc := ConfigDoc{
		RunID:         xid.New().String(),
		II:            ii,
		StaticElastic: staticElastic,
	}

	cycles := ii
	if staticElastic {
		cycles = 1
	}

	for _, tile := range f.Tiles() {
		for c := 0; c < cycles; c++ {
			rec := configRecordFor(f, g, session, tile, c, staticElastic)
			if rec != nil {
				doc.Records = append(doc.Records, *rec)
			}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func configRecordFor(f *fabric.Fabric, g *dfg.Graph, session *scheduler.Session, tile *fabric.Tile, cycle int, staticElastic bool) *ConfigRecord {
	occupants := tile.OccupantsAt(cycle)
	if len(occupants) == 0 {
		return nil
	}

	o := occupants[0]
	node := g.Get(o.Node)
	rec := &ConfigRecord{
		Tile:  tileName(tile),
		Cycle: cycle,
		Op:    node.Tag.String(),
		Phase: o.Phase.String(),
	}

	if node.IsPredicater {
		for _, pe := range node.Predicatees {
			rec.PredicateInputs = append(rec.PredicateInputs, g.Get(pe).Name)
		}
	}

	outputs := map[string]string{}
	for _, link := range f.OutLinks(tile.ID) {
		if occ := link.OccupantAt(cycle); occ != nil && occ.Producer == o.Node {
			outputs[link.SrcSide.Name()] = tileName(f.Tile(link.Dst))
		}
	}
	if len(outputs) > 0 {
		rec.Outputs = outputs
	}

	if staticElastic {
		rec.Dst = firstOutputDst(outputs)
		if len(node.Preds) > 0 {
			rec.SrcA = g.Get(node.Preds[0]).Name
		}
		if len(node.Preds) > 1 {
			rec.SrcB = g.Get(node.Preds[1]).Name
		}
		for _, link := range f.OutLinks(tile.ID) {
			if occ := link.OccupantAt(cycle); occ != nil && occ.Bypass {
				rec.BypassSrc = append(rec.BypassSrc, link.SrcSide.Name())
				rec.BypassDst = append(rec.BypassDst, tileName(f.Tile(link.Dst)))
			}
		}
	}

	return rec
}

func firstOutputDst(outputs map[string]string) string {
	for _, v := range outputs {
		return v
	}
	return ""
}

func tileName(t *fabric.Tile) string {
	return coordName(t.X, t.Y)
}

func coordName(x, y int) string {
	return "(" + strconv.Itoa(x) + "," + strconv.Itoa(y) + ")"
}

// ScheduleDoc is the top-level schedule.json document, grouping occupancy
// by tile and by link for external visualization tools.
type ScheduleDoc struct {
	Tiles map[string]map[string][]string `json:"tiles"`
	Links map[string]map[string][]int    `json:"links"`
}

// WriteSchedule emits schedule.json for a completed mapping session.
func WriteSchedule(w io.Writer, f *fabric.Fabric, g *dfg.Graph, session *scheduler.Session) error {
	doc := ScheduleDoc{
		Tiles: map[string]map[string][]string{},
		Links: map[string]map[string][]int{},
	}

	for node, tileID := range session.Placement() {
		tile := f.Tile(tileID)
		cycle, _ := session.CycleOf(node)
		name := tileName(tile)
		if doc.Tiles[name] == nil {
			doc.Tiles[name] = map[string][]string{}
		}
		key := strconv.Itoa(cycle % max1(f.II()))
		doc.Tiles[name][key] = append(doc.Tiles[name][key], g.Get(node).Name)
	}

	for _, link := range f.Links() {
		srcName := tileName(f.Tile(link.Src))
		dstName := tileName(f.Tile(link.Dst))
		for c := 0; c < f.CycleBoundary(); c++ {
			if occ := link.OccupantAt(c); occ != nil {
				if doc.Links[srcName] == nil {
					doc.Links[srcName] = map[string][]int{}
				}
				doc.Links[srcName][dstName] = append(doc.Links[srcName][dstName], c)
			}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func max1(v int) int {
	if v <= 0 {
		return 1
	}
	return v
}
